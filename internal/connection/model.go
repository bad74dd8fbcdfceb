package connection

import (
	"fmt"
	"time"

	"github.com/showup-events/showup/internal/util/ptr"
)

// ProviderAWS is the only provider the wizard creates.
const ProviderAWS = "aws"

// AboutData is the first wizard step.
type AboutData struct {
	Name        string `validate:"required"`
	Provider    string `validate:"eq=aws"`
	Region      string `validate:"required"`
	Description string
}

// CredentialsData is the second wizard step. It lives in memory only.
type CredentialsData struct {
	AccessKeyID     string `validate:"required"`
	SecretAccessKey string `validate:"required"`
}

// String redacts the secret.
func (c CredentialsData) String() string {
	return fmt.Sprintf("{AccessKeyID:%s SecretAccessKey:%s}", c.AccessKeyID, redact(c.SecretAccessKey))
}

// MarshalLog keeps the secret out of structured logs.
func (c CredentialsData) MarshalLog() any {
	return map[string]string{"accessKeyId": c.AccessKeyID, "secretAccessKey": redact(c.SecretAccessKey)}
}

// AccountsData is the account selection step.
type AccountsData struct {
	Accounts []string
}

// ValidationResult records the outcome of the validate step.
// IsValid is nil until validation has run.
type ValidationResult struct {
	IsValid     *bool
	ContainerID string
}

// Valid reports whether validation ran and succeeded.
func (v ValidationResult) Valid() bool {
	return v.IsValid != nil && *v.IsValid
}

// Validated builds a ValidationResult.
func Validated(ok bool, containerID string) ValidationResult {
	return ValidationResult{IsValid: ptr.To(ok), ContainerID: containerID}
}

// Draft holds one payload per wizard step.
type Draft struct {
	About       AboutData
	Credentials CredentialsData
	Accounts    AccountsData
	Validation  ValidationResult
}

// NewDraft returns an empty draft for the AWS provider.
func NewDraft() Draft {
	return Draft{
		About:    AboutData{Provider: ProviderAWS},
		Accounts: AccountsData{Accounts: []string{}},
	}
}

// Credentials is the stored credential set of a Connection.
type Credentials struct {
	AccessKeyID     string `json:"accessKeyId" validate:"required"`
	SecretAccessKey string `json:"secretAccessKey" validate:"required"`
	Region          string `json:"region" validate:"required"`
	SessionToken    string `json:"sessionToken,omitempty"`
}

// String redacts the secret and session token.
func (c Credentials) String() string {
	return fmt.Sprintf("{AccessKeyID:%s SecretAccessKey:%s Region:%s}", c.AccessKeyID, redact(c.SecretAccessKey), c.Region)
}

// MarshalLog keeps secrets out of structured logs.
func (c Credentials) MarshalLog() any {
	return map[string]string{
		"accessKeyId":     c.AccessKeyID,
		"secretAccessKey": redact(c.SecretAccessKey),
		"region":          c.Region,
	}
}

// Connection is a stored cloud credential set plus metadata, owned by a user.
type Connection struct {
	ID          string      `json:"_id,omitempty"`
	UserID      string      `json:"userId" validate:"required"`
	Name        string      `json:"name" validate:"required"`
	Provider    string      `json:"provider" validate:"eq=aws"`
	Description string      `json:"description,omitempty"`
	Credentials Credentials `json:"credentials"`
	Accounts    []string    `json:"accounts"`
	IsValidated bool        `json:"isValidated"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// Patch is a partial update. Nil fields are left alone.
type Patch struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Accounts    []string `json:"accounts,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Name == nil && p.Description == nil && p.Accounts == nil
}

func redact(s string) string {
	if s == "" {
		return ""
	}
	return "********"
}
