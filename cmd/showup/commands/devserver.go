package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/showup-events/showup/cmd/showup/handlers"
	"github.com/showup-events/showup/internal/devserver"
)

// Devserver returns the devserver command.
//
// Flags:
//
//	--listen, -l: Address to listen on (default ":8080")
//	--user: username:password to seed (repeatable)
func Devserver() *cobra.Command {
	var (
		listen string
		users  []string
	)

	cmd := &cobra.Command{
		Use:   "devserver",
		Short: "Run an in-memory backend for local development",
		Long: `Run an in-memory stand-in for the showup backend.

It serves login, users, accounts, AWS connections and credential
validation. Access keys starting with AKIA or ASIA and a non-empty
secret are accepted as valid. All data is lost on exit.

Without --user a single user demo/demo is created.

Example:
  showup devserver --listen :8080 --user dana:secret`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			seeds, err := parseSeedUsers(users)
			if err != nil {
				return err
			}
			return handlers.Devserver(cmd.Context(), listen, seeds)
		},
	}

	cmd.Flags().StringVarP(&listen, "listen", "l", ":8080", "Address to listen on")
	cmd.Flags().StringArrayVar(&users, "user", nil, "username:password to seed (repeatable)")

	return cmd
}

// parseSeedUsers parses username:password pairs.
func parseSeedUsers(values []string) ([]devserver.SeedUser, error) {
	seeds := make([]devserver.SeedUser, 0, len(values))
	for _, v := range values {
		name, password, ok := strings.Cut(v, ":")
		if !ok || name == "" || password == "" {
			return nil, fmt.Errorf("invalid --user %q, expected username:password", v)
		}
		seeds = append(seeds, devserver.SeedUser{Username: name, Password: password, Email: name + "@showup.local"})
	}
	return seeds, nil
}
