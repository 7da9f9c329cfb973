package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/inception/cmd/inception/handlers"
)

// clusterFlags holds the raw values of the configuration override flags.
type clusterFlags struct {
	prefix         string
	numWorkers     int
	numControllers int
	atomic         bool
	parallel       bool
	maxParallel    int
	timeout        int
	userDataFile   string
	stateDB        string
}

func addConfigFlag(cmd *cobra.Command, path *string) {
	cmd.Flags().StringVarP(path, "config", "c", "", "Path to cluster configuration file")
}

func addStateDBFlag(cmd *cobra.Command, f *clusterFlags) {
	cmd.Flags().StringVar(&f.stateDB, "state-db", "", "Path of the cluster record database")
}

func addPrefixFlag(cmd *cobra.Command, f *clusterFlags) {
	cmd.Flags().StringVarP(&f.prefix, "prefix", "p", "", "Cluster prefix (alphanumeric)")
}

func addCreateFlags(cmd *cobra.Command, f *clusterFlags) {
	addPrefixFlag(cmd, f)
	addStateDBFlag(cmd, f)
	cmd.Flags().IntVarP(&f.numWorkers, "workers", "w", 0, "Number of worker nodes")
	cmd.Flags().IntVar(&f.numControllers, "controllers", 0, "Number of controller nodes")
	cmd.Flags().BoolVar(&f.atomic, "atomic", false, "Tear the cluster down when any step fails")
	cmd.Flags().BoolVar(&f.parallel, "parallel", true, "Run per-node steps concurrently")
	cmd.Flags().IntVar(&f.maxParallel, "max-parallel", 0, "Maximum concurrent per-node steps")
	cmd.Flags().IntVar(&f.timeout, "timeout", 0, "Seconds to wait for servers to boot")
	cmd.Flags().StringVar(&f.userDataFile, "userdata", "", "Path of a first-boot script embedded in every server")
}

// overrides returns the flags the user set explicitly.
func (f *clusterFlags) overrides(cmd *cobra.Command) handlers.Overrides {
	var o handlers.Overrides
	changed := func(name string) bool {
		flag := cmd.Flags().Lookup(name)
		return flag != nil && flag.Changed
	}
	if changed("prefix") {
		o.Prefix = &f.prefix
	}
	if changed("workers") {
		o.NumWorkers = &f.numWorkers
	}
	if changed("controllers") {
		o.NumControllers = &f.numControllers
	}
	if changed("atomic") {
		o.Atomic = &f.atomic
	}
	if changed("parallel") {
		o.Parallel = &f.parallel
	}
	if changed("max-parallel") {
		o.MaxParallel = &f.maxParallel
	}
	if changed("timeout") {
		o.Timeout = &f.timeout
	}
	if changed("userdata") {
		o.UserDataFile = &f.userDataFile
	}
	if changed("state-db") {
		o.StateDB = &f.stateDB
	}
	return o
}
