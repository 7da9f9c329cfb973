package provisioning

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/imamik/inception/internal/platform"
	"github.com/imamik/inception/internal/util/async"
)

// RunnerOptions configures a Runner.
type RunnerOptions struct {
	// User is the remote login for every task.
	User string
	// Parallel runs non-sequential batches on the worker pool.
	Parallel bool
	// MaxParallel bounds the worker pool, 0 for one worker per task.
	MaxParallel int
	// CommandTimeout bounds each remote command, 0 for none.
	CommandTimeout time.Duration
	Observer       Observer
}

// Runner executes task batches against ready nodes.
type Runner struct {
	exec RemoteExecutor
	opts RunnerOptions
}

// NewRunner creates a Runner executing commands through exec.
func NewRunner(exec RemoteExecutor, opts RunnerOptions) *Runner {
	if opts.Observer == nil {
		opts.Observer = NewLogrObserver(discard)
	}
	return &Runner{exec: exec, opts: opts}
}

// RunStage runs the stage's batches in order. A failed batch aborts the
// stage.
func (r *Runner) RunStage(ctx context.Context, stage Stage) error {
	for _, batch := range stage.Batches {
		if err := r.RunBatch(ctx, batch); err != nil {
			return err
		}
	}
	return nil
}

// RunBatch runs every task of the batch. Sequential runs stop at the first
// failure and return its *TaskError. Concurrent runs execute every task and
// return an *AggregateTaskError listing all failures in task order.
func (r *Runner) RunBatch(ctx context.Context, batch Batch) error {
	r.opts.Observer.Event(Event{
		Type:     EventBatchStarted,
		Resource: batch.Name,
		Message:  fmt.Sprintf("running %d tasks", len(batch.Tasks)),
	})

	var err error
	if batch.Sequential || !r.opts.Parallel {
		err = r.runSequential(ctx, batch)
	} else {
		err = r.runConcurrent(ctx, batch)
	}
	if err != nil {
		return err
	}

	r.opts.Observer.Event(Event{
		Type:     EventBatchCompleted,
		Resource: batch.Name,
		Message:  "completed",
	})
	return nil
}

func (r *Runner) runSequential(ctx context.Context, batch Batch) error {
	for i, task := range batch.Tasks {
		if err := ctx.Err(); err != nil {
			return err
		}
		if te := r.runTask(ctx, batch.Name, i, task, 0); te != nil {
			return te
		}
	}
	return nil
}

func (r *Runner) runConcurrent(ctx context.Context, batch Batch) error {
	var (
		mu       sync.Mutex
		failures []*TaskError
	)

	tasks := make([]async.Task, len(batch.Tasks))
	for i, task := range batch.Tasks {
		tasks[i] = async.Task{
			Name: task.Name,
			Func: func(ctx context.Context) error {
				te := r.runTask(ctx, batch.Name, i, task, async.Worker(ctx))
				if te != nil {
					mu.Lock()
					failures = append(failures, te)
					mu.Unlock()
				}
				return nil
			},
		}
	}

	async.RunPool(ctx, tasks, r.opts.MaxParallel)

	if len(failures) == 0 {
		return nil
	}
	sort.Slice(failures, func(a, b int) bool { return failures[a].Index < failures[b].Index })
	return &AggregateTaskError{Batch: batch.Name, Total: len(batch.Tasks), Errors: failures}
}

func (r *Runner) runTask(ctx context.Context, batch string, index int, task Task, worker int) *TaskError {
	host := "<none>"
	if task.Target != nil {
		host = task.Target.Hostname
	}
	fail := func(err error) *TaskError {
		te := &TaskError{Task: task.Name, Host: host, Worker: worker, Index: index, Err: err}
		r.opts.Observer.Event(Event{
			Type:     EventTaskFailed,
			Resource: host,
			Message:  te.Error(),
			Fields:   map[string]string{"batch": batch},
		})
		return te
	}

	if task.Target == nil || !task.Target.Ready {
		return fail(ErrNodeNotReady)
	}

	if r.opts.CommandTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.CommandTimeout)
		defer cancel()
	}

	target := platform.Target{Host: task.Target.IPAddress, User: r.opts.User}
	start := time.Now()
	_, err := r.exec.Run(ctx, target, task.Command, task.Options)
	recordTaskMetric(batch, err, time.Since(start).Seconds())
	if err != nil {
		return fail(err)
	}
	return nil
}
