package handlers

import (
	"context"
	"fmt"

	"github.com/imamik/inception/internal/provisioning"
)

// DestroyOptions are the inputs of the destroy command.
type DestroyOptions struct {
	ConfigPath string
	Overrides  Overrides
	Log        LogOptions
}

// Destroy handles the destroy command.
//
// It deletes every instance named after the prefix and the gateway's
// floating IP, then removes the cluster record. When some deletions fail
// the record is kept with status Error so the run can be retried.
func Destroy(ctx context.Context, opts DestroyOptions) error {
	cfg, err := loadConfig(opts.ConfigPath, opts.Overrides)
	if err != nil {
		return err
	}
	if cfg.Prefix == "" {
		return fmt.Errorf("a cluster prefix is required")
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

	st, err := openStore(cfg.StateDB)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	rec, err := lookupRecord(ctx, st, cfg.Prefix)
	if err != nil {
		return err
	}

	exec, closeExec, err := newRemoteExecutor(cfg)
	if err != nil {
		return fmt.Errorf("failed to set up SSH: %w", err)
	}
	defer func() { _ = closeExec() }()

	orchOpts := []provisioning.Option{
		provisioning.WithObserver(provisioning.NewLogrObserver(log)),
	}
	var cluster *provisioning.Cluster
	if rec != nil {
		cluster = rec.Cluster()
		cluster.Status = provisioning.StatusDeleting
		if err := st.Save(ctx, cluster); err != nil {
			return err
		}
		orchOpts = append(orchOpts,
			provisioning.WithClusterID(rec.ID),
			provisioning.WithFloatingIP(rec.FloatingIP),
		)
	}

	log.Info("destroying cluster", "prefix", cfg.Prefix)
	orch := provisioning.New(cfg, newCloudProvisioner(cfg, log), exec, orchOpts...)
	report, cleanupErr := orch.Cleanup(ctx)
	if report != nil {
		fmt.Fprint(stdout, renderCleanupReport(report))
	}

	if cleanupErr != nil {
		if cluster != nil {
			cluster.Status = provisioning.StatusError
			if err := st.Save(ctx, cluster); err != nil {
				log.Error(err, "failed to update cluster record", "prefix", cfg.Prefix)
			}
		}
		return fmt.Errorf("destroy failed: %w", cleanupErr)
	}

	if err := st.Remove(ctx, cfg.Prefix); err != nil {
		return err
	}
	log.Info("cluster destroyed", "prefix", cfg.Prefix)
	return nil
}
