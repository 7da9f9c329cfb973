// Package handlers implements the business logic for CLI commands.
//
// Each handler loads configuration, wires the cloud provisioner, remote
// executor, record store and logger, and delegates to the orchestrator.
// Constructors are package variables so tests can substitute fakes.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-logr/logr"

	"github.com/imamik/inception/internal/config"
	"github.com/imamik/inception/internal/logging"
	hcloudInternal "github.com/imamik/inception/internal/platform/hcloud"
	sshInternal "github.com/imamik/inception/internal/platform/ssh"
	"github.com/imamik/inception/internal/provisioning"
	"github.com/imamik/inception/internal/store"
	"github.com/imamik/inception/internal/util/labels"
	"github.com/imamik/inception/internal/util/prerequisites"
)

// LogOptions are the global logging flags.
type LogOptions struct {
	Level string
	File  string
	JSON  bool
}

// Overrides carries flag values that replace configuration file values.
// A nil field leaves the file value untouched.
type Overrides struct {
	Prefix         *string
	NumWorkers     *int
	NumControllers *int
	Atomic         *bool
	Parallel       *bool
	MaxParallel    *int
	Timeout        *int
	UserDataFile   *string
	StateDB        *string
}

// Apply writes the set overrides into cfg.
func (o Overrides) Apply(cfg *config.Config) {
	if o.Prefix != nil {
		cfg.Prefix = *o.Prefix
	}
	if o.NumWorkers != nil {
		cfg.NumWorkers = *o.NumWorkers
	}
	if o.NumControllers != nil {
		cfg.NumControllers = *o.NumControllers
	}
	if o.Atomic != nil {
		cfg.Atomic = *o.Atomic
	}
	if o.Parallel != nil {
		parallel := *o.Parallel
		cfg.Parallel = &parallel
	}
	if o.MaxParallel != nil {
		cfg.MaxParallel = *o.MaxParallel
	}
	if o.Timeout != nil {
		cfg.Timeout = *o.Timeout
	}
	if o.UserDataFile != nil {
		cfg.UserDataFile = *o.UserDataFile
	}
	if o.StateDB != nil {
		cfg.StateDB = *o.StateDB
	}
}

// recordStore is the subset of *store.Store the handlers use.
type recordStore interface {
	provisioning.StatusRecorder
	Get(ctx context.Context, prefix string) (*store.ClusterRecord, error)
	List(ctx context.Context) ([]*store.ClusterRecord, error)
	Close() error
}

// Factory function variables - can be replaced in tests.
var (
	// loadConfigFile reads a configuration file.
	loadConfigFile = config.LoadFile

	// defaultConfig is used when no configuration file is given.
	defaultConfig = config.Default

	// newLogger builds the process logger.
	newLogger = logging.New

	// newCloudProvisioner creates the hcloud-backed provisioner.
	newCloudProvisioner = func(cfg *config.Config, log logr.Logger) provisioning.CloudProvisioner {
		return hcloudInternal.NewProvisioner(cfg.HCloudToken,
			hcloudInternal.WithLocation(cfg.Location),
			hcloudInternal.WithLabels(labels.NewLabelBuilder(cfg.Prefix).Build()),
			hcloudInternal.WithLogger(log.WithName("hcloud")),
		)
	}

	// newRemoteExecutor creates the SSH executor. The returned function
	// releases the agent connection.
	newRemoteExecutor = defaultRemoteExecutor

	// openStore opens the cluster record database.
	openStore = func(path string) (recordStore, error) {
		return store.Open(path)
	}

	// checkPrereqs looks up local tools in PATH.
	checkPrereqs = prerequisites.Check

	// stdout receives rendered command output.
	stdout io.Writer = os.Stdout
)

// loadConfig reads configPath, or the defaults when it is empty, and
// applies the flag overrides.
func loadConfig(configPath string, overrides Overrides) (*config.Config, error) {
	var cfg *config.Config
	if configPath == "" {
		cfg = defaultConfig()
	} else {
		var err error
		cfg, err = loadConfigFile(configPath)
		if err != nil {
			return nil, err
		}
	}
	overrides.Apply(cfg)
	return cfg, nil
}

func requireToken(cfg *config.Config) error {
	if cfg.HCloudToken == "" {
		return fmt.Errorf("HCLOUD_TOKEN environment variable is required")
	}
	return nil
}

func checkPrerequisites(cfg *config.Config) error {
	results := checkPrereqs(prerequisites.Tools(cfg.StrictHostKeys))
	return results.Error()
}

func setupLogger(opts LogOptions) (*logging.Logger, error) {
	logger, err := newLogger(logging.Options{
		Level: opts.Level,
		File:  opts.File,
		JSON:  opts.JSON,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}
	return logger, nil
}

// defaultRemoteExecutor authenticates with the configured key file and, when
// SSH_AUTH_SOCK is set, the local agent. The agent is also forwarded so the
// configuration server can reach the other nodes. Without a local agent the
// key file is served from an in-process keyring instead.
func defaultRemoteExecutor(cfg *config.Config) (provisioning.RemoteExecutor, func() error, error) {
	execCfg := &sshInternal.Config{StrictHostKeys: cfg.StrictHostKeys}
	if cfg.SSHKeyFile != "" {
		// #nosec G304
		key, err := os.ReadFile(cfg.SSHKeyFile)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read SSH key: %w", err)
		}
		execCfg.PrivateKey = key
	}

	var opts []sshInternal.Option
	closeAgent := func() error { return nil }
	if os.Getenv("SSH_AUTH_SOCK") != "" {
		a, closeFn, err := sshInternal.ConnectAgent()
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, sshInternal.WithAgent(a))
		closeAgent = closeFn
	} else if len(execCfg.PrivateKey) > 0 {
		a, err := sshInternal.KeyringAgent(execCfg.PrivateKey)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, sshInternal.WithAgent(a))
	}

	exec, err := sshInternal.NewExecutor(execCfg, opts...)
	if err != nil {
		_ = closeAgent()
		return nil, nil, err
	}
	return exec, closeAgent, nil
}

// lookupRecord returns the stored record for prefix, or nil when none exists.
func lookupRecord(ctx context.Context, st recordStore, prefix string) (*store.ClusterRecord, error) {
	rec, err := st.Get(ctx, prefix)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	return rec, err
}
