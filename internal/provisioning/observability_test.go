package provisioning

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLogger(verbosity int) (logr.Logger, *[]string) {
	var lines []string
	log := funcr.New(func(prefix, args string) {
		lines = append(lines, args)
	}, funcr.Options{Verbosity: verbosity})
	return log, &lines
}

func TestLogrObserver_Printf(t *testing.T) {
	log, lines := captureLogger(0)
	obs := NewLogrObserver(log)

	obs.Printf("[%s] starting", "create servers (1/9)")

	require.Len(t, *lines, 1)
	assert.Contains(t, (*lines)[0], `"msg"="[create servers (1/9)] starting"`)
}

func TestLogrObserver_EventWithFields(t *testing.T) {
	log, lines := captureLogger(0)
	obs := NewLogrObserver(log).WithFields(map[string]string{"cluster": "demo"})

	obs.Event(Event{
		Type:     EventResourceCreated,
		Phase:    "servers",
		Resource: "demo-gateway",
		Message:  "instance created",
		Fields:   map[string]string{"id": "42"},
	})

	require.Len(t, *lines, 1)
	line := (*lines)[0]
	assert.Contains(t, line, `"event"="resource.created"`)
	assert.Contains(t, line, `"phase"="servers"`)
	assert.Contains(t, line, `"resource"="demo-gateway"`)
	assert.Contains(t, line, `"cluster"="demo"`)
	assert.Contains(t, line, `"id"="42"`)
}

func TestLogrObserver_Levels(t *testing.T) {
	log, lines := captureLogger(0)
	obs := NewLogrObserver(log)

	obs.Event(Event{Type: EventBatchStarted, Resource: "knife bootstrap", Message: "running 5 tasks"})
	obs.Progress("readiness", 2, 5)
	assert.Empty(t, *lines, "debug events hidden at verbosity 0")

	LogPhaseFailed(obs, "check in nodes", errors.New("boom"))
	require.Len(t, *lines, 1)
	assert.Contains(t, (*lines)[0], `"error"`)
	assert.Contains(t, (*lines)[0], "failed: boom")
}

func TestLogrObserver_Progress(t *testing.T) {
	log, lines := captureLogger(1)
	obs := NewLogrObserver(log)

	obs.Progress("readiness", 2, 4)
	obs.Progress("readiness", 0, 0)

	require.Len(t, *lines, 2)
	assert.Contains(t, (*lines)[0], `"percent"=50`)
	assert.Contains(t, (*lines)[1], `"percent"=0`)
}

func TestLogrObserver_WithFieldsDoesNotMutateParent(t *testing.T) {
	parent := NewLogrObserver(logr.Discard())
	child := parent.WithFields(map[string]string{"cluster": "demo"}).(*LogrObserver)
	grandchild := child.WithFields(map[string]string{"cluster": "other", "stage": "x"}).(*LogrObserver)

	assert.Empty(t, parent.fields)
	assert.Equal(t, map[string]string{"cluster": "demo"}, child.fields)
	assert.Equal(t, map[string]string{"cluster": "other", "stage": "x"}, grandchild.fields)
}

func TestEventHelpers(t *testing.T) {
	obs := newRecordingObserver()

	LogPhaseStart(obs, "create servers")
	LogPhaseComplete(obs, "create servers", 1500*time.Millisecond)
	LogStateChanged(obs, StateCreated, StateServersLaunching)
	LogResourceCreating(obs, "servers", "instance", "demo-gateway")
	LogResourceCreated(obs, "servers", "instance", "demo-gateway", "42")
	LogResourceFailed(obs, "servers", "instance", "demo-worker1", errors.New("quota"))
	LogResourceDeleting(obs, "cleanup", "instance", "demo-gateway")
	LogResourceDeleted(obs, "cleanup", "instance", "demo-gateway")

	require.Len(t, obs.events, 8)
	assert.Equal(t, EventPhaseStarted, obs.events[0].Type)
	assert.Equal(t, "completed in 1.5s", obs.events[1].Message)
	assert.Equal(t, "Created -> ServersLaunching", obs.events[2].Message)
	assert.Equal(t, "ServersLaunching", obs.events[2].Fields["to"])
	assert.Equal(t, "42", obs.events[4].Fields["id"])
	assert.True(t, strings.HasSuffix(obs.events[5].Message, "failed: quota"))
	assert.Equal(t, EventResourceDeleted, obs.events[7].Type)
}
