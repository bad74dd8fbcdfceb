package prompt

import (
	"context"

	"github.com/showup-events/showup/internal/accounts"
	"github.com/showup-events/showup/internal/connection"
)

// Scripted answers every question from fixed values. A failed validation
// is never retried.
type Scripted struct {
	Name            string
	Region          string
	Description     string
	AccessKeyID     string
	SecretAccessKey string
	AccountIDs      []string
}

// Validate checks that the values can get through the About and Credentials steps.
func (s *Scripted) Validate() error {
	if err := validateName(s.Name); err != nil {
		return err
	}
	if s.Region == "" {
		return errRegionRequired
	}
	if err := validateAccessKey(s.AccessKeyID); err != nil {
		return err
	}
	return validateSecret(s.SecretAccessKey)
}

// About implements Prompter.
func (s *Scripted) About(_ context.Context, d *connection.AboutData) error {
	d.Name = s.Name
	d.Region = s.Region
	d.Description = s.Description
	return nil
}

// Credentials implements Prompter.
func (s *Scripted) Credentials(_ context.Context, d *connection.CredentialsData) error {
	d.AccessKeyID = s.AccessKeyID
	d.SecretAccessKey = s.SecretAccessKey
	return nil
}

// Accounts keeps the requested ids that are actually available.
func (s *Scripted) Accounts(_ context.Context, available []accounts.Account, selected *[]string) error {
	known := make(map[string]bool, len(available))
	for _, a := range available {
		known[a.ID] = true
	}

	out := []string{}
	for _, id := range s.AccountIDs {
		if known[id] {
			out = append(out, id)
		}
	}
	*selected = out
	return nil
}

// Confirm implements Prompter.
func (s *Scripted) Confirm(_ context.Context, q Question, _ string) (bool, error) {
	return q == QuestionCreate, nil
}
