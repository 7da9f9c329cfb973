// Package commands defines the CLI command structure and flag bindings.
//
// This package contains cobra command definitions that handle argument parsing,
// flag binding, and validation. Command execution is delegated to handler
// functions in the handlers package.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/inception/cmd/inception/handlers"
)

// logOptions is bound to the persistent logging flags of the root command.
var logOptions handlers.LogOptions

// Root returns the root command for the inception CLI.
func Root() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "inception",
		Short:         "Provision nested private clouds on Hetzner Cloud",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&logOptions.Level, "log-level", "info", "Log level: debug, info, warn or error")
	cmd.PersistentFlags().StringVar(&logOptions.File, "log-file", "", "Also write JSON logs to this file (rotated)")
	cmd.PersistentFlags().BoolVar(&logOptions.JSON, "log-json", false, "Write JSON logs to stderr even on a terminal")

	cmd.AddCommand(Create())
	cmd.AddCommand(Destroy())
	cmd.AddCommand(List())
	cmd.AddCommand(Show())
	cmd.AddCommand(Version())

	return cmd
}
