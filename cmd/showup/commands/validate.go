package commands

import (
	"github.com/spf13/cobra"

	"github.com/showup-events/showup/cmd/showup/handlers"
)

// Validate returns the validate command.
//
// It sends credentials to the backend validation service without creating a
// connection.
func Validate() *cobra.Command {
	var opts handlers.ValidateOptions

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check AWS credentials without creating a connection",
		Long: `Check AWS credentials with the backend validation service.

Any failure is reported as "Invalid credentials"; run with -v 1 to see the
underlying cause in the logs.

Use --preflight to first ask AWS STS who the key pair belongs to. This
catches mistyped keys before they reach the backend.

Example:
  showup validate --region eu-west-1 --access-key-id AKIA... --secret-access-key ...`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Validate(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.Credentials.Region, "region", "", "AWS region (required)")
	cmd.Flags().StringVar(&opts.Credentials.AccessKeyID, "access-key-id", "", "AWS access key id (required)")
	cmd.Flags().StringVar(&opts.Credentials.SecretAccessKey, "secret-access-key", "", "AWS secret access key (required)")
	cmd.Flags().StringVar(&opts.Credentials.SessionToken, "session-token", "", "AWS session token for temporary credentials")
	cmd.Flags().BoolVar(&opts.Preflight, "preflight", false, "Check the key pair against AWS STS first")
	_ = cmd.MarkFlagRequired("region")
	_ = cmd.MarkFlagRequired("access-key-id")
	_ = cmd.MarkFlagRequired("secret-access-key")

	return cmd
}
