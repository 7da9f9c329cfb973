package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/inception/cmd/inception/handlers"
)

// List returns the list command.
func List() *cobra.Command {
	var (
		configPath string
		flags      clusterFlags
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded clusters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.List(cmd.Context(), handlers.RecordOptions{
				ConfigPath: configPath,
				Overrides:  flags.overrides(cmd),
			})
		},
	}

	addConfigFlag(cmd, &configPath)
	addStateDBFlag(cmd, &flags)

	return cmd
}

// Show returns the show command.
func Show() *cobra.Command {
	var (
		configPath string
		flags      clusterFlags
	)

	cmd := &cobra.Command{
		Use:   "show <prefix>",
		Short: "Show the record of one cluster",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.Show(cmd.Context(), handlers.RecordOptions{
				ConfigPath: configPath,
				Overrides:  flags.overrides(cmd),
			}, args[0])
		},
	}

	addConfigFlag(cmd, &configPath)
	addStateDBFlag(cmd, &flags)

	return cmd
}
