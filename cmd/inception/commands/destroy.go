package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/inception/cmd/inception/handlers"
)

// Destroy returns the destroy command.
func Destroy() *cobra.Command {
	var (
		configPath string
		flags      clusterFlags
	)

	cmd := &cobra.Command{
		Use:   "destroy [prefix]",
		Short: "Destroy a nested cloud and its cluster record",
		Long: `Destroy deletes every server named "<prefix>-*" and the gateway's
floating IP, then removes the cluster record.

When a deletion fails the remaining resources are still attempted and the
record is kept with status Error, so destroy can be run again.

Example:
  inception destroy lab
  inception destroy -c inception.yaml

WARNING: This operation is irreversible.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			overrides := flags.overrides(cmd)
			if len(args) == 1 {
				overrides.Prefix = &args[0]
			}
			return handlers.Destroy(cmd.Context(), handlers.DestroyOptions{
				ConfigPath: configPath,
				Overrides:  overrides,
				Log:        logOptions,
			})
		},
	}

	addConfigFlag(cmd, &configPath)
	addPrefixFlag(cmd, &flags)
	addStateDBFlag(cmd, &flags)

	return cmd
}
