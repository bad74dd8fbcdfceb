package commands

import (
	"github.com/spf13/cobra"

	"github.com/showup-events/showup/cmd/showup/handlers"
	"github.com/showup-events/showup/internal/util/ptr"
)

// Connections returns the connections command group.
func Connections() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "connections",
		Aliases: []string{"connection", "conn"},
		Short:   "Manage AWS connections",
	}

	cmd.AddCommand(connectionsList())
	cmd.AddCommand(connectionsCreate())
	cmd.AddCommand(connectionsUpdate())
	cmd.AddCommand(connectionsDelete())

	return cmd
}

func connectionsList() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List your AWS connections",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.ListConnections(cmd.Context(), output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", handlers.FormatTable, "Output format (table, yaml, json)")

	return cmd
}

// connectionsCreate runs the onboarding wizard.
//
// Flags:
//
//	--name, --region, --description: About step values
//	--access-key-id, --secret-access-key: Credentials step values
//	--account: Account ids to attach (repeatable)
//	--yes, -y: Do not prompt; all required values must come from flags
//	--preflight: Check the key pair against AWS STS before validating
func connectionsCreate() *cobra.Command {
	var opts handlers.CreateOptions

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Connect an AWS account with the onboarding wizard",
		Long: `Connect an AWS account step by step.

The wizard asks for:

  - About: connection name, region and an optional description
  - Credentials: access key id and secret access key
  - Validate: the backend checks the credentials
  - Accounts: which AWS accounts to attach (optional)
  - Overview: confirm and create

After a successful validation the wizard moves on by itself.

When stdin is not a terminal, or with --yes, nothing is asked and all
values come from flags.

Example:
  showup connections create
  showup connections create -y --name prod --region us-east-1 \
    --access-key-id AKIA... --secret-access-key ...`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.CreateConnection(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "Connection name")
	cmd.Flags().StringVar(&opts.Region, "region", "", "AWS region")
	cmd.Flags().StringVar(&opts.Description, "description", "", "Connection description")
	cmd.Flags().StringVar(&opts.AccessKeyID, "access-key-id", "", "AWS access key id")
	cmd.Flags().StringVar(&opts.SecretAccessKey, "secret-access-key", "", "AWS secret access key")
	cmd.Flags().StringSliceVar(&opts.Accounts, "account", nil, "AWS account id to attach (repeatable)")
	cmd.Flags().BoolVarP(&opts.NonInteractive, "yes", "y", false, "Do not prompt")
	cmd.Flags().BoolVar(&opts.Preflight, "preflight", false, "Check the key pair against AWS STS first")

	return cmd
}

func connectionsUpdate() *cobra.Command {
	var (
		name        string
		description string
		accounts    []string
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Rename or re-describe a connection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts handlers.UpdateOptions
			if cmd.Flags().Changed("name") {
				opts.Name = ptr.To(name)
			}
			if cmd.Flags().Changed("description") {
				opts.Description = ptr.To(description)
			}
			if cmd.Flags().Changed("account") {
				opts.Accounts = accounts
				if opts.Accounts == nil {
					opts.Accounts = []string{}
				}
			}
			return handlers.UpdateConnection(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New connection name")
	cmd.Flags().StringVar(&description, "description", "", "New description")
	cmd.Flags().StringSliceVar(&accounts, "account", nil, "Replace the attached account ids (repeatable)")

	return cmd
}

func connectionsDelete() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a connection",
		Long: `Delete a connection.

WARNING: This operation is irreversible.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.DeleteConnection(cmd.Context(), args[0], yes)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")

	return cmd
}
