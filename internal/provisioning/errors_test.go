package provisioning

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/inception/internal/config"
	"github.com/imamik/inception/internal/platform"
)

func TestAggregateTaskError(t *testing.T) {
	t.Parallel()
	agg := &AggregateTaskError{
		Batch: "chef-client",
		Total: 5,
		Errors: []*TaskError{
			{Task: "run", Host: "demo-worker1", Worker: 2, Index: 1, Err: nonZero("10.0.0.1", "sudo chef-client")},
			{Task: "run", Host: "demo-worker3", Worker: 1, Index: 3, Err: &platform.ConnectionFailure{Host: "10.0.0.3", Reason: "Connection refused"}},
		},
	}

	assert.Contains(t, agg.Error(), `batch "chef-client": 2 of 5 tasks failed`)
	assert.Contains(t, agg.Error(), "demo-worker1 (worker 2)")
	assert.Equal(t, []string{"demo-worker1", "demo-worker3"}, agg.Hosts())

	var exit *platform.NonZeroExit
	require.ErrorAs(t, agg, &exit)
	assert.Equal(t, "10.0.0.1", exit.Host)

	var conn *platform.ConnectionFailure
	require.ErrorAs(t, agg, &conn)
	assert.Equal(t, "Connection refused", conn.Reason)
}

func TestTaskError(t *testing.T) {
	t.Parallel()
	te := &TaskError{Task: "install", Host: "demo-chefserver", Err: ErrNodeNotReady}

	assert.Equal(t, `task "install" on demo-chefserver: node is not ready`, te.Error())
	assert.ErrorIs(t, te, ErrNodeNotReady)
}

func TestPipelineError(t *testing.T) {
	t.Parallel()
	cause := &ProvisioningError{Op: "create", Resource: "floating IP", Err: errors.New("quota exceeded")}
	pe := &PipelineError{Stage: "assign floating IP", State: StateServersReady, Err: cause}

	assert.Equal(t, "assign floating IP failed after ServersReady: failed to create floating IP: quota exceeded", pe.Error())

	var prov *ProvisioningError
	require.ErrorAs(t, pe, &prov)
	assert.Equal(t, "create", prov.Op)

	pe.Nodes = []string{"demo-worker1"}
	assert.Contains(t, pe.Error(), "(nodes: demo-worker1)")
}

func TestReadinessTimeoutError(t *testing.T) {
	t.Parallel()
	err := &ReadinessTimeoutError{Pending: []string{"demo-gateway", "demo-worker1"}, Timeout: time.Minute}
	assert.Equal(t, "nodes not ready after 1m0s: demo-gateway, demo-worker1", err.Error())
}

func TestCleanupError(t *testing.T) {
	t.Parallel()
	ce := &CleanupError{}
	assert.False(t, ce.HasErrors())

	ce.Add(nil)
	assert.False(t, ce.HasErrors())

	sentinel := errors.New("locked")
	ce.Add(sentinel)
	assert.True(t, ce.HasErrors())
	assert.Equal(t, "cleanup failed: locked", ce.Error())

	ce.Add(errors.New("gone"))
	assert.Equal(t, "cleanup failed with 2 errors: locked; gone", ce.Error())
	assert.ErrorIs(t, ce, sentinel)
}

func TestValidationErrorAlias(t *testing.T) {
	t.Parallel()
	err := error(&config.ValidationError{Field: "prefix", Message: "bad", Severity: config.SeverityError})

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "prefix", ve.Field)
}

func TestFailedNodes(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []string{"a", "b"}, failedNodes(&AggregateTaskError{Errors: []*TaskError{{Host: "a"}, {Host: "b"}}}))
	assert.Equal(t, []string{"c"}, failedNodes(&TaskError{Host: "c"}))
	assert.Equal(t, []string{"d"}, failedNodes(&ReadinessTimeoutError{Pending: []string{"d"}}))
	assert.Nil(t, failedNodes(errors.New("other")))
}
