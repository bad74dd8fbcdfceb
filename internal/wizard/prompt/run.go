package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/showup-events/showup/internal/accounts"
	"github.com/showup-events/showup/internal/connection"
	"github.com/showup-events/showup/internal/gateway"
	"github.com/showup-events/showup/internal/logging"
	"github.com/showup-events/showup/internal/wizard"
)

// Run drives ctrl from its current step to a submitted connection.
// Progress messages go to out.
func Run(ctx context.Context, ctrl *wizard.Controller, p Prompter, out io.Writer) (*connection.Connection, error) {
	log := logging.FromContext(ctx)

	for {
		step := ctrl.Step()
		switch step {
		case wizard.StepAbout:
			d := ctrl.Draft().About
			if err := p.About(ctx, &d); err != nil {
				return nil, fmt.Errorf("about: %w", err)
			}
			if err := updateAndAdvance(ctx, ctrl, step, d); err != nil {
				return nil, err
			}

		case wizard.StepCredentials:
			d := ctrl.Draft().Credentials
			if err := p.Credentials(ctx, &d); err != nil {
				return nil, fmt.Errorf("credentials: %w", err)
			}
			if err := updateAndAdvance(ctx, ctrl, step, d); err != nil {
				return nil, err
			}

		case wizard.StepValidate:
			var res gateway.Result
			err := wait(ctx, p, out, "Validating credentials...", func(ctx context.Context) error {
				var err error
				res, err = ctrl.Validate(ctx)
				return err
			})
			if err != nil {
				if errors.Is(err, ErrAborted) {
					return nil, err
				}
				return nil, fmt.Errorf("validate: %w", err)
			}
			if res.Valid {
				fmt.Fprintln(out, okStyle.Render("✓ "+res.Message))
				if err := ctrl.WaitForStep(ctx, wizard.StepAccounts); err != nil {
					return nil, err
				}
				continue
			}

			fmt.Fprintln(out, errStyle.Render("✗ "+res.Message))
			retry, err := p.Confirm(ctx, QuestionRetry, res.Message)
			if err != nil {
				return nil, err
			}
			if !retry {
				return nil, ErrValidationFailed
			}
			if err := ctrl.Retreat(ctx); err != nil {
				return nil, err
			}

		case wizard.StepAccounts:
			var available []accounts.Account
			err := wait(ctx, p, out, "Loading AWS accounts...", func(ctx context.Context) error {
				var err error
				available, err = ctrl.ListAccounts(ctx)
				return err
			})
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				if errors.Is(err, ErrAborted) {
					return nil, err
				}
				log.Error(err, "Failed to list accounts")
				available = nil
			}

			selected := ctrl.Draft().Accounts.Accounts
			if len(available) == 0 {
				fmt.Fprintln(out, mutedStyle.Render("No AWS accounts found. You can add accounts later."))
				selected = []string{}
			} else if err := p.Accounts(ctx, available, &selected); err != nil {
				return nil, fmt.Errorf("accounts: %w", err)
			}
			if err := updateAndAdvance(ctx, ctrl, step, connection.AccountsData{Accounts: selected}); err != nil {
				return nil, err
			}

		case wizard.StepOverview:
			ok, err := p.Confirm(ctx, QuestionCreate, Summary(ctrl.Draft()))
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, ErrAborted
			}
			return ctrl.Submit(ctx)

		default:
			return nil, fmt.Errorf("unknown step %s", step)
		}
	}
}

func updateAndAdvance(ctx context.Context, ctrl *wizard.Controller, step wizard.Step, data any) error {
	if err := ctrl.UpdateStep(step, data); err != nil {
		return err
	}
	if err := ctrl.Advance(ctx); err != nil {
		return fmt.Errorf("%s: %w", step.Title(), err)
	}
	return nil
}
