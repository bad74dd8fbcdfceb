package handlers

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"

	"github.com/showup-events/showup/internal/api"
)

// LoginOptions are the inputs of Login.
type LoginOptions struct {
	Username  string
	Password  string
	AccountID string
}

// askPassword prompts for a password without echo. Replaced in tests.
var askPassword = func(ctx context.Context, username string) (string, error) {
	var password string
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Password for " + username).
				EchoMode(huh.EchoModePassword).
				Value(&password),
		),
	).RunWithContext(ctx)
	return password, err
}

// Login signs in with username and password and remembers the user.
func Login(ctx context.Context, opts LoginOptions) error {
	if opts.Username == "" {
		return errors.New("username is required")
	}
	if opts.Password == "" {
		if !isInteractive() {
			return errors.New("password is required when not running in a terminal")
		}
		password, err := askPassword(ctx, opts.Username)
		if err != nil {
			return fmt.Errorf("login canceled: %w", err)
		}
		opts.Password = password
	}

	return withRuntime(ctx, func(rt *Runtime) error {
		user, err := rt.Client.Login(ctx, api.Credentials{Username: opts.Username, Password: opts.Password})
		if err != nil {
			return err
		}
		rt.Session.SetUser(user)

		if opts.AccountID != "" {
			account, err := rt.Client.GetAccount(ctx, opts.AccountID)
			if err != nil {
				return err
			}
			rt.Session.SetAccount(account)
		}

		fmt.Println(greenStyle.Render("Logged in as " + user.Username))
		if a := rt.Session.Account(); a != nil {
			fmt.Printf("  Account: %s (%s)\n", a.Name, a.ID)
		}
		return nil
	})
}

// Logout ends the backend session and forgets the local one. The local
// session is cleared even when the backend call fails.
func Logout(ctx context.Context) error {
	return withRuntime(ctx, func(rt *Runtime) error {
		err := rt.Client.Logout(ctx)
		rt.Session.Clear()
		if err != nil && !errors.Is(err, api.ErrUnauthorized) {
			rt.Log.Info("Backend logout failed", "error", err.Error())
		}
		fmt.Println("Logged out.")
		return nil
	})
}

// whoamiView is the structured form of Whoami.
type whoamiView struct {
	User    *api.User    `json:"user" yaml:"user"`
	Account *api.Account `json:"account,omitempty" yaml:"account,omitempty"`
}

// Whoami prints the signed-in user and account.
func Whoami(ctx context.Context, format string) error {
	if err := checkFormat(format); err != nil {
		return err
	}

	return withRuntime(ctx, func(rt *Runtime) error {
		if _, err := requireUser(ctx, rt); err != nil {
			return err
		}
		view := whoamiView{User: rt.Session.User(), Account: rt.Session.Account()}

		if format != FormatTable {
			return writeStructured(os.Stdout, format, view)
		}

		fmt.Println(sectionStyle.Render("User"))
		fmt.Printf("  ID:       %s\n", view.User.ID)
		fmt.Printf("  Username: %s\n", view.User.Username)
		fmt.Printf("  Email:    %s\n", view.User.Email)
		if view.User.Role != "" {
			fmt.Printf("  Role:     %s\n", view.User.Role)
		}
		if view.Account != nil {
			fmt.Println(sectionStyle.Render("Account"))
			fmt.Printf("  ID:       %s\n", view.Account.ID)
			fmt.Printf("  Name:     %s\n", view.Account.Name)
		}
		return nil
	})
}

// OAuthURL prints the browser URL for an OAuth provider login.
func OAuthURL(ctx context.Context, provider string) error {
	s, err := settingsFrom(ctx)
	if err != nil {
		return err
	}
	u, err := api.OAuthURL(s.API.URL, provider)
	if err != nil {
		return err
	}
	fmt.Println("Open this URL in your browser to sign in:")
	fmt.Println("  " + u)
	return nil
}
