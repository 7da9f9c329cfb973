package handlers

import (
	"bytes"
	"io"
	"path/filepath"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/require"

	"github.com/imamik/inception/internal/config"
	"github.com/imamik/inception/internal/logging"
	"github.com/imamik/inception/internal/provisioning"
	"github.com/imamik/inception/internal/store"
	itesting "github.com/imamik/inception/internal/testing"
	"github.com/imamik/inception/internal/util/prerequisites"
)

type handlerFixture struct {
	cloud  *itesting.FakeCloud
	exec   *itesting.FakeExecutor
	out    *bytes.Buffer
	dbPath string
	cfg    *config.Config
}

// withFakes swaps every factory variable for the duration of the test.
// Tests using it must not run in parallel.
func withFakes(t *testing.T) *handlerFixture {
	t.Helper()
	f := &handlerFixture{
		cloud:  itesting.NewFakeCloud(),
		exec:   itesting.NewFakeExecutor(),
		out:    &bytes.Buffer{},
		dbPath: filepath.Join(t.TempDir(), "inception.db"),
	}
	f.cfg = itesting.NewConfigBuilder().WithStrictHostKeys(false).Build()
	f.cfg.HCloudToken = "test-token"
	f.cfg.StateDB = f.dbPath

	origLoad, origDefault := loadConfigFile, defaultConfig
	origLogger, origCloud, origExec := newLogger, newCloudProvisioner, newRemoteExecutor
	origStore, origStdout, origPrereqs := openStore, stdout, checkPrereqs
	t.Cleanup(func() {
		loadConfigFile, defaultConfig = origLoad, origDefault
		newLogger, newCloudProvisioner, newRemoteExecutor = origLogger, origCloud, origExec
		openStore, stdout, checkPrereqs = origStore, origStdout, origPrereqs
	})

	loadConfigFile = func(string) (*config.Config, error) {
		c := *f.cfg
		return &c, nil
	}
	defaultConfig = func() *config.Config {
		c := *f.cfg
		return &c
	}
	newLogger = func(opts logging.Options) (*logging.Logger, error) {
		opts.Output = io.Discard
		opts.File = ""
		return logging.New(opts)
	}
	newCloudProvisioner = func(*config.Config, logr.Logger) provisioning.CloudProvisioner {
		return f.cloud
	}
	newRemoteExecutor = func(*config.Config) (provisioning.RemoteExecutor, func() error, error) {
		return f.exec, func() error { return nil }, nil
	}
	checkPrereqs = func([]prerequisites.Tool) *prerequisites.CheckResults {
		return &prerequisites.CheckResults{}
	}
	stdout = f.out
	return f
}

// openRecords opens the fixture database directly.
func (f *handlerFixture) openRecords(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(f.dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func ptr[T any](v T) *T {
	return &v
}
