package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/huh"

	"github.com/showup-events/showup/internal/accounts"
	"github.com/showup-events/showup/internal/connection"
	"github.com/showup-events/showup/internal/gateway"
	platformaws "github.com/showup-events/showup/internal/platform/aws"
	"github.com/showup-events/showup/internal/wizard"
	"github.com/showup-events/showup/internal/wizard/prompt"
)

// Factory function variables for connection commands - can be replaced in tests.
var (
	// runWizard drives the onboarding wizard.
	runWizard = prompt.Run

	// newPreflight builds the local STS credential check.
	newPreflight = func() gateway.Preflighter { return platformaws.NewChecker() }

	// confirmDelete asks before deleting a connection.
	confirmDelete = func(ctx context.Context, id string) (bool, error) {
		ok := false
		err := huh.NewForm(huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete connection %s?", id)).
				Description("This cannot be undone.").
				Value(&ok),
		)).RunWithContext(ctx)
		return ok, err
	}
)

// ListConnections prints the user's AWS connections.
func ListConnections(ctx context.Context, format string) error {
	if err := checkFormat(format); err != nil {
		return err
	}

	return withRuntime(ctx, func(rt *Runtime) error {
		if _, err := requireUser(ctx, rt); err != nil {
			return err
		}
		list := rt.Connections.List(ctx)

		if format != FormatTable {
			views := make([]connectionView, len(list))
			for i, c := range list {
				views[i] = viewOf(c)
			}
			return writeStructured(os.Stdout, format, views)
		}
		fmt.Println(renderConnectionTable(list))
		return nil
	})
}

// CreateOptions are the inputs of CreateConnection. Empty fields are asked
// for interactively unless NonInteractive is set.
type CreateOptions struct {
	Name            string
	Region          string
	Description     string
	AccessKeyID     string
	SecretAccessKey string
	Accounts        []string
	NonInteractive  bool
	Preflight       bool
}

// CreateConnection runs the onboarding wizard and stores the result.
func CreateConnection(ctx context.Context, opts CreateOptions) error {
	var p prompt.Prompter
	if opts.NonInteractive || !isInteractive() {
		scripted := &prompt.Scripted{
			Name:            opts.Name,
			Region:          opts.Region,
			Description:     opts.Description,
			AccessKeyID:     opts.AccessKeyID,
			SecretAccessKey: opts.SecretAccessKey,
			AccountIDs:      opts.Accounts,
		}
		if err := scripted.Validate(); err != nil {
			return fmt.Errorf("non-interactive create: %w", err)
		}
		p = scripted
	} else {
		printWelcome()
		p = prompt.Forms{}
	}

	return withRuntime(ctx, func(rt *Runtime) error {
		if _, err := requireUser(ctx, rt); err != nil {
			return err
		}

		ctrl := wizard.New(wizard.Options{
			Identity:         rt.Session,
			Gateway:          newGateway(rt, opts.Preflight),
			Lister:           accounts.NewStubLister(rt.Settings.Accounts.StubDelay),
			Creator:          rt.Connections,
			AutoAdvanceDelay: rt.Settings.Wizard.AutoAdvanceDelay,
			Metrics:          rt.Metrics,
			Logger:           rt.Log.WithName("wizard"),
		})
		defer ctrl.Close()

		// Interactive runs start with the flag values filled in.
		if opts.Name != "" || opts.Region != "" || opts.Description != "" {
			_ = ctrl.UpdateStep(wizard.StepAbout, connection.AboutData{
				Name: opts.Name, Region: opts.Region, Description: opts.Description,
			})
		}

		conn, err := runWizard(ctx, ctrl, p, os.Stdout)
		if err != nil {
			if errors.Is(err, connection.ErrValidationRequired) {
				return fmt.Errorf("%w: validate the credentials before creating the connection", err)
			}
			return err
		}

		fmt.Println()
		fmt.Println(renderConnection("Connection created", *conn))
		return nil
	})
}

func newGateway(rt *Runtime, preflight bool) *gateway.Gateway {
	opts := []gateway.Option{
		gateway.WithMetrics(rt.Metrics),
		gateway.WithLogger(rt.Log.WithName("gateway")),
	}
	if preflight {
		opts = append(opts, gateway.WithPreflight(newPreflight()))
	}
	return gateway.New(rt.Client, opts...)
}

// UpdateOptions are the inputs of UpdateConnection. Nil fields are left alone.
type UpdateOptions struct {
	Name        *string
	Description *string
	Accounts    []string
}

// UpdateConnection applies a partial update.
func UpdateConnection(ctx context.Context, id string, opts UpdateOptions) error {
	patch := connection.Patch{Name: opts.Name, Description: opts.Description, Accounts: opts.Accounts}
	if patch.Empty() {
		return errors.New("nothing to update: pass --name, --description or --account")
	}

	return withRuntime(ctx, func(rt *Runtime) error {
		if _, err := requireUser(ctx, rt); err != nil {
			return err
		}
		conn, err := rt.Connections.Update(ctx, id, patch)
		if err != nil {
			return err
		}
		fmt.Println(renderConnection("Connection updated", *conn))
		return nil
	})
}

// DeleteConnection removes a connection after confirmation.
func DeleteConnection(ctx context.Context, id string, yes bool) error {
	if !yes {
		if !isInteractive() {
			return errors.New("refusing to delete without --yes when not running in a terminal")
		}
		ok, err := confirmDelete(ctx, id)
		if err != nil {
			return fmt.Errorf("delete canceled: %w", err)
		}
		if !ok {
			fmt.Println("Aborted.")
			return nil
		}
	}

	return withRuntime(ctx, func(rt *Runtime) error {
		if _, err := requireUser(ctx, rt); err != nil {
			return err
		}
		if err := rt.Connections.Delete(ctx, id); err != nil {
			return err
		}
		fmt.Printf("Connection %s deleted.\n", id)
		return nil
	})
}

func printWelcome() {
	printWelcomeTo(os.Stdout)
}

func printWelcomeTo(w io.Writer) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, titleStyle.Render("showup - connect an AWS account"))
	fmt.Fprintln(w, dimStyle.Render("================================"))
	fmt.Fprintln(w)
	fmt.Fprintln(w, "This wizard walks you through naming the connection, entering")
	fmt.Fprintln(w, "credentials, validating them and choosing accounts.")
	fmt.Fprintln(w)
}
