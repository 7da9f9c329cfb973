package handlers

import (
	"context"
	"fmt"
)

// RecordOptions locate the record database for list and show.
type RecordOptions struct {
	ConfigPath string
	Overrides  Overrides
}

// List handles the list command. It prints every recorded cluster.
func List(ctx context.Context, opts RecordOptions) error {
	cfg, err := loadConfig(opts.ConfigPath, opts.Overrides)
	if err != nil {
		return err
	}

	st, err := openStore(cfg.StateDB)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	recs, err := st.List(ctx)
	if err != nil {
		return err
	}
	fmt.Fprint(stdout, renderRecordList(recs))
	return nil
}

// Show handles the show command. It prints the record of one cluster.
func Show(ctx context.Context, opts RecordOptions, prefix string) error {
	cfg, err := loadConfig(opts.ConfigPath, opts.Overrides)
	if err != nil {
		return err
	}

	st, err := openStore(cfg.StateDB)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	rec, err := st.Get(ctx, prefix)
	if err != nil {
		return err
	}
	fmt.Fprint(stdout, renderRecord(rec))
	return nil
}
