package commands

import (
	"github.com/spf13/cobra"

	"github.com/showup-events/showup/cmd/showup/handlers"
)

// Login returns the login command.
//
// Flags:
//
//	--username, -u: Account username (required)
//	--password, -p: Password (prompted when omitted in a terminal)
//	--account: Account id to act for
//	--oauth: Print the browser login URL for google or facebook instead
func Login() *cobra.Command {
	var (
		opts  handlers.LoginOptions
		oauth string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the showup backend",
		Long: `Sign in with a username and password.

The session cookie and the user id are stored in the state directory so
later commands run as the same user. Credentials are never written to disk.

Google and Facebook sign-in happen in the browser; use --oauth to print the
URL to open.

Example:
  showup login -u dana
  showup login --oauth google`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if oauth != "" {
				return handlers.OAuthURL(cmd.Context(), oauth)
			}
			return handlers.Login(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Username, "username", "u", "", "Account username")
	cmd.Flags().StringVarP(&opts.Password, "password", "p", "", "Password (prompted when omitted)")
	cmd.Flags().StringVar(&opts.AccountID, "account", "", "Account id to act for")
	cmd.Flags().StringVar(&oauth, "oauth", "", "Print the browser login URL for an OAuth provider (google, facebook)")
	cmd.MarkFlagsMutuallyExclusive("oauth", "username")

	return cmd
}

// Logout returns the logout command.
func Logout() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the local session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Logout(cmd.Context())
		},
	}
}

// Whoami returns the whoami command.
func Whoami() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user and account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Whoami(cmd.Context(), output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", handlers.FormatTable, "Output format (table, yaml, json)")

	return cmd
}
