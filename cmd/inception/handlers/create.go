package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/imamik/inception/internal/provisioning"
	"github.com/imamik/inception/internal/userdata"
)

// CreateOptions are the inputs of the create command.
type CreateOptions struct {
	ConfigPath  string
	Overrides   Overrides
	Log         LogOptions
	MetricsAddr string
}

// Create handles the create command.
//
// It loads the configuration, wires the hcloud provisioner, the SSH
// executor and the record store, and runs the orchestrator pipeline to
// completion. With atomic set, a failed run is torn down before Create
// returns and the teardown outcome is printed.
func Create(ctx context.Context, opts CreateOptions) error {
	cfg, err := loadConfig(opts.ConfigPath, opts.Overrides)
	if err != nil {
		return err
	}
	if err := requireToken(cfg); err != nil {
		return err
	}
	if err := checkPrerequisites(cfg); err != nil {
		return err
	}

	logger, err := setupLogger(opts.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Close() }()
	log := logger.Logr()

	if opts.MetricsAddr != "" {
		_, stop, err := serveMetrics(opts.MetricsAddr, log)
		if err != nil {
			return err
		}
		defer stop()
	}

	script, err := userdata.LoadScript(cfg.UserDataFile)
	if err != nil {
		return err
	}

	st, err := openStore(cfg.StateDB)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	exec, closeExec, err := newRemoteExecutor(cfg)
	if err != nil {
		return fmt.Errorf("failed to set up SSH: %w", err)
	}
	defer func() { _ = closeExec() }()

	orch := provisioning.New(cfg, newCloudProvisioner(cfg, log), exec,
		provisioning.WithObserver(provisioning.NewLogrObserver(log)),
		provisioning.WithRecorder(st),
		provisioning.WithUserDataScript(script),
	)

	log.Info("creating cluster", "prefix", cfg.Prefix, "workers", cfg.NumWorkers, "atomic", cfg.Atomic)
	summary, err := orch.Start(ctx)
	if err != nil {
		var pe *provisioning.PipelineError
		if errors.As(err, &pe) && pe.Rollback != nil {
			fmt.Fprint(stdout, renderCleanupReport(pe.Rollback))
		}
		return fmt.Errorf("create failed: %w", err)
	}

	fmt.Fprint(stdout, renderSummary(summary))
	return nil
}
