package prompt

import (
	"context"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/showup-events/showup/internal/accounts"
	"github.com/showup-events/showup/internal/connection"
)

// Question identifies a yes/no decision in the flow.
type Question int

const (
	// QuestionRetry follows a failed validation: edit the credentials and try again?
	QuestionRetry Question = iota
	// QuestionCreate follows the overview: create the connection?
	QuestionCreate
)

// Prompter collects answers for each wizard step.
type Prompter interface {
	About(ctx context.Context, d *connection.AboutData) error
	Credentials(ctx context.Context, d *connection.CredentialsData) error
	Accounts(ctx context.Context, available []accounts.Account, selected *[]string) error
	Confirm(ctx context.Context, q Question, detail string) (bool, error)
}

// Forms asks with huh forms.
type Forms struct{}

// About implements Prompter.
func (Forms) About(ctx context.Context, d *connection.AboutData) error {
	if d.Region == "" {
		d.Region = Regions[0]
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Connection Name").
				Description("A name to recognise this AWS connection").
				Placeholder("production").
				Value(&d.Name).
				Validate(validateName),
			huh.NewSelect[string]().
				Title("Region").
				Description("Default AWS region for this connection").
				Options(RegionOptions()...).
				Value(&d.Region),
			huh.NewInput().
				Title("Description (Optional)").
				Value(&d.Description),
		).Title("About"),
	).RunWithContext(ctx)
}

// Credentials implements Prompter.
func (Forms) Credentials(ctx context.Context, d *connection.CredentialsData) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Access Key ID").
				Placeholder("AKIA...").
				Value(&d.AccessKeyID).
				Validate(validateAccessKey),
			huh.NewInput().
				Title("Secret Access Key").
				EchoMode(huh.EchoModePassword).
				Value(&d.SecretAccessKey).
				Validate(validateSecret),
		).Title("Credentials").
			Description("Credentials are sent to the validation service and stored with the connection."),
	).RunWithContext(ctx)
}

// Accounts implements Prompter.
func (Forms) Accounts(ctx context.Context, available []accounts.Account, selected *[]string) error {
	opts := make([]huh.Option[string], len(available))
	for i, a := range available {
		label := a.ID
		if a.Name != "" {
			label = a.Name + " (" + a.ID + ")"
		}
		opts[i] = huh.NewOption(label, a.ID)
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("AWS Accounts").
				Description("Choose the accounts to connect. This step is optional.").
				Options(opts...).
				Value(selected),
		).Title("Accounts"),
	).RunWithContext(ctx)
}

// Confirm implements Prompter.
func (Forms) Confirm(ctx context.Context, q Question, detail string) (bool, error) {
	answer := true
	confirm := huh.NewConfirm().Value(&answer)

	switch q {
	case QuestionRetry:
		confirm.Title("Edit credentials and try again?").Description(detail)
	case QuestionCreate:
		confirm.Title("Create this connection?").Affirmative("Create").Negative("Cancel")
	}

	group := []huh.Field{confirm}
	if q == QuestionCreate && detail != "" {
		group = []huh.Field{huh.NewNote().Title("Overview").Description(detail), confirm}
	}

	if err := huh.NewForm(huh.NewGroup(group...)).RunWithContext(ctx); err != nil {
		return false, err
	}
	return answer, nil
}

func validateName(s string) error {
	if strings.TrimSpace(s) == "" {
		return errNameRequired
	}
	return nil
}

func validateAccessKey(s string) error {
	if strings.TrimSpace(s) == "" {
		return errKeyRequired
	}
	return nil
}

func validateSecret(s string) error {
	if s == "" {
		return errSecretRequired
	}
	return nil
}
