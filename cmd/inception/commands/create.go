package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/inception/cmd/inception/handlers"
)

// Create returns the create command.
func Create() *cobra.Command {
	var (
		configPath  string
		metricsAddr string
		flags       clusterFlags
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a nested cloud",
		Long: `Create provisions a gateway, a configuration server, controllers and
workers on Hetzner Cloud and configures them with Chef.

The run proceeds through these stages:
  - Launch all servers and wait until they have booted
  - Assign a floating IP to the gateway
  - Install the Chef server and upload the cookbook repository
  - Bootstrap every node against the Chef server
  - Deploy the network overlay and name resolution
  - Configure the controllers, then the workers

Flags override values from the configuration file.

Example:
  inception create -c inception.yaml
  inception create -p lab -w 3 --atomic`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Create(cmd.Context(), handlers.CreateOptions{
				ConfigPath:  configPath,
				Overrides:   flags.overrides(cmd),
				Log:         logOptions,
				MetricsAddr: metricsAddr,
			})
		},
	}

	addConfigFlag(cmd, &configPath)
	addCreateFlags(cmd, &flags)
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address during the run")

	return cmd
}
