package handlers

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/imamik/inception/internal/provisioning"
	"github.com/imamik/inception/internal/store"
)

func TestRenderSummary(t *testing.T) {
	t.Parallel()
	out := renderSummary(&provisioning.Summary{
		ClusterID:  "abc",
		Prefix:     "demo",
		FloatingIP: "203.0.113.1",
		Endpoints: map[string]string{
			"gateway":    "203.0.113.1",
			"chefserver": "https://10.0.0.2",
		},
		Nodes: provisioning.PlanNodes("demo", 1, 1),
	})

	assert.Contains(t, out, "inception: demo")
	assert.Contains(t, out, "https://10.0.0.2")
	assert.Contains(t, out, "demo-worker1")
	assert.Less(t, strings.Index(out, "chefserver "), strings.Index(out, "gateway "))
}

func TestRenderRecordList(t *testing.T) {
	t.Parallel()
	out := renderRecordList([]*store.ClusterRecord{{
		Prefix:     "demo",
		Status:     "Error",
		State:      "Error",
		NumWorkers: 3,
		UpdatedAt:  time.Date(2026, 1, 2, 3, 4, 0, 0, time.UTC),
	}})

	assert.Contains(t, out, "demo")
	assert.Contains(t, out, "2026-01-02 03:04")
	assert.Contains(t, out, " - ")
}

func TestRenderCleanupReport(t *testing.T) {
	t.Parallel()
	out := renderCleanupReport(&provisioning.CleanupReport{
		Prefix:   "demo",
		Deleted:  []string{"demo-gateway"},
		Failures: []provisioning.CleanupFailure{{Resource: "instance demo-worker1", Err: errors.New("locked")}},
	})

	assert.Contains(t, out, "Teardown of demo")
	assert.Contains(t, out, "demo-gateway")
	assert.Contains(t, out, "instance demo-worker1: locked")

	empty := renderCleanupReport(&provisioning.CleanupReport{Prefix: "demo"})
	assert.Contains(t, empty, "nothing to delete")
}
