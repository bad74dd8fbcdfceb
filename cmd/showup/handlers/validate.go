package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/showup-events/showup/internal/connection"
)

// ErrInvalidCredentials is returned when the validation service rejects the credentials.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ValidateOptions are the inputs of Validate.
type ValidateOptions struct {
	Credentials connection.Credentials
	Preflight   bool
}

// Validate checks credentials with the validation service without creating
// a connection.
func Validate(ctx context.Context, opts ValidateOptions) error {
	if err := connection.ValidateCredentials(connection.CredentialsData{
		AccessKeyID:     opts.Credentials.AccessKeyID,
		SecretAccessKey: opts.Credentials.SecretAccessKey,
	}); err != nil {
		return err
	}
	if opts.Credentials.Region == "" {
		return errors.New("region is required")
	}

	return withRuntime(ctx, func(rt *Runtime) error {
		userID, err := requireUser(ctx, rt)
		if err != nil {
			return err
		}

		res := newGateway(rt, opts.Preflight).Validate(ctx, userID, opts.Credentials)
		if !res.Valid {
			fmt.Println(redStyle.Render("✗ " + res.Message))
			return ErrInvalidCredentials
		}

		fmt.Println(greenStyle.Render("✓ " + res.Message))
		fmt.Printf("  Container ID: %s\n", res.ContainerID)
		return nil
	})
}
