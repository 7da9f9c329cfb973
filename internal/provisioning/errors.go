package provisioning

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/imamik/inception/internal/config"
)

// ErrNodeNotReady is returned for tasks whose target has not passed the
// readiness probe.
var ErrNodeNotReady = errors.New("node is not ready")

// ValidationError is a configuration or precondition failure detected before
// any resource exists.
type ValidationError = config.ValidationError

// ProvisioningError is a failure at the cloud API boundary.
type ProvisioningError struct {
	Op       string
	Resource string
	Err      error
}

func (e *ProvisioningError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Resource, e.Err)
}

func (e *ProvisioningError) Unwrap() error {
	return e.Err
}

// ReadinessTimeoutError lists the nodes that never passed the readiness
// probe.
type ReadinessTimeoutError struct {
	Pending []string
	Timeout time.Duration
}

func (e *ReadinessTimeoutError) Error() string {
	return fmt.Sprintf("nodes not ready after %v: %s", e.Timeout, strings.Join(e.Pending, ", "))
}

// TaskError is the failure of a single task.
type TaskError struct {
	Task string
	Host string
	// Worker is the pool worker that ran the task, 0 for sequential runs.
	Worker int
	// Index is the task's position in its batch.
	Index int
	Err   error
}

func (e *TaskError) Error() string {
	if e.Worker > 0 {
		return fmt.Sprintf("task %q on %s (worker %d): %v", e.Task, e.Host, e.Worker, e.Err)
	}
	return fmt.Sprintf("task %q on %s: %v", e.Task, e.Host, e.Err)
}

func (e *TaskError) Unwrap() error {
	return e.Err
}

// AggregateTaskError collects every task failure of a concurrent batch.
type AggregateTaskError struct {
	Batch  string
	Total  int
	Errors []*TaskError
}

func (e *AggregateTaskError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, te := range e.Errors {
		msgs[i] = te.Error()
	}
	return fmt.Sprintf("batch %q: %d of %d tasks failed: %s",
		e.Batch, len(e.Errors), e.Total, strings.Join(msgs, "; "))
}

func (e *AggregateTaskError) Unwrap() []error {
	errs := make([]error, len(e.Errors))
	for i, te := range e.Errors {
		errs[i] = te
	}
	return errs
}

// Hosts returns the hosts of the failed tasks.
func (e *AggregateTaskError) Hosts() []string {
	hosts := make([]string, len(e.Errors))
	for i, te := range e.Errors {
		hosts[i] = te.Host
	}
	return hosts
}

// PipelineError reports the stage that aborted a Start.
type PipelineError struct {
	Stage string
	// State is the last state reached before the failure.
	State State
	// Nodes are the hostnames of the nodes involved in the failure.
	Nodes    []string
	Err      error
	Rollback *CleanupReport
}

func (e *PipelineError) Error() string {
	msg := fmt.Sprintf("%s failed after %s", e.Stage, e.State)
	if len(e.Nodes) > 0 {
		msg += fmt.Sprintf(" (nodes: %s)", strings.Join(e.Nodes, ", "))
	}
	return msg + ": " + e.Err.Error()
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// CleanupError collects the failures of a best-effort teardown.
type CleanupError struct {
	Errors []error
}

func (e *CleanupError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("cleanup failed: %v", e.Errors[0])
	}
	msgs := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("cleanup failed with %d errors: %s", len(e.Errors), strings.Join(msgs, "; "))
}

// Add appends a non-nil error.
func (e *CleanupError) Add(err error) {
	if err != nil {
		e.Errors = append(e.Errors, err)
	}
}

// HasErrors reports whether any error was collected.
func (e *CleanupError) HasErrors() bool {
	return len(e.Errors) > 0
}

func (e *CleanupError) Unwrap() error {
	return errors.Join(e.Errors...)
}

// failedNodes returns the hostnames named by a task or readiness failure.
func failedNodes(err error) []string {
	var agg *AggregateTaskError
	if errors.As(err, &agg) {
		return agg.Hosts()
	}
	var te *TaskError
	if errors.As(err, &te) {
		return []string{te.Host}
	}
	var rte *ReadinessTimeoutError
	if errors.As(err, &rte) {
		return rte.Pending
	}
	return nil
}
