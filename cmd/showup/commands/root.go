// Package commands defines the CLI command structure and flag bindings.
//
// This package contains cobra command definitions that handle argument parsing,
// flag binding, and validation. Command execution is delegated to handler
// functions in the handlers package.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/showup-events/showup/cmd/showup/handlers"
	"github.com/showup-events/showup/internal/config"
	"github.com/showup-events/showup/internal/logging"
)

// Root returns the root command for the showup CLI.
//
// Persistent flags are resolved together with the config file and SHOWUP_*
// environment variables before any subcommand runs. The resulting settings
// and logger travel in the command context.
func Root() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "showup",
		Short:         "Manage cloud connections for showup",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := config.Load(configPath, cmd.Flags())
			if err != nil {
				return err
			}

			log, err := logging.New(logging.Options{
				Name:    "showup",
				Version: version,
				Level:   settings.Log.Level,
				Format:  settings.Log.Format,
				Output:  cmd.ErrOrStderr(),
			})
			if err != nil {
				return err
			}
			logging.LogMetadata(log, version)

			ctx := logging.IntoContext(cmd.Context(), log)
			cmd.SetContext(handlers.WithSettings(ctx, settings))
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "Path to config file (default "+config.DefaultDir()+"/"+config.DefaultConfigFilename+")")
	flags.String("api-url", "", "Backend base URL")
	flags.IntP("log-level", "v", 0, "Log verbosity, higher is more verbose")
	flags.String("log-format", logging.FormatConsole, "Log format (console, json)")
	flags.String("metrics-file", "", "Write Prometheus metrics to this file on exit")
	flags.String("state-dir", "", "Directory for session state")

	// Session
	cmd.AddCommand(Login())
	cmd.AddCommand(Logout())
	cmd.AddCommand(Whoami())

	// Connections
	cmd.AddCommand(Connections())
	cmd.AddCommand(Validate())

	// Utility commands
	cmd.AddCommand(Devserver())
	cmd.AddCommand(Version())
	cmd.AddCommand(Completion())

	return cmd
}
