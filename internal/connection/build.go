package connection

import (
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateAbout checks that name and region are filled in.
func ValidateAbout(a AboutData) error {
	return validate.Struct(a)
}

// ValidateCredentials checks that both key parts are filled in.
func ValidateCredentials(c CredentialsData) error {
	return validate.Struct(c)
}

// Build turns a validated draft into a Connection owned by userID.
//
// It fails with a *ValidationRequiredError unless validation succeeded and
// returned a container id. Fields are copied verbatim; accounts are never nil.
func Build(d Draft, userID string, now time.Time) (*Connection, error) {
	var reasons []string
	if userID == "" {
		reasons = append(reasons, "no user")
	}
	if !d.Validation.Valid() {
		reasons = append(reasons, "credentials not validated")
	}
	if d.Validation.ContainerID == "" {
		reasons = append(reasons, "missing container id")
	}
	if len(reasons) > 0 {
		return nil, &ValidationRequiredError{Reasons: reasons}
	}

	accounts := make([]string, len(d.Accounts.Accounts))
	copy(accounts, d.Accounts.Accounts)

	return &Connection{
		UserID:      userID,
		Name:        d.About.Name,
		Provider:    ProviderAWS,
		Description: d.About.Description,
		Credentials: Credentials{
			AccessKeyID:     d.Credentials.AccessKeyID,
			SecretAccessKey: d.Credentials.SecretAccessKey,
			Region:          d.About.Region,
		},
		Accounts:    accounts,
		IsValidated: true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}
