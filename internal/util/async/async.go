package async

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Task represents an asynchronous operation with a name and function.
type Task struct {
	Name string
	Func func(context.Context) error
}

type workerKey struct{}

// Worker returns the 1-based pool worker executing the current task, or 0
// outside a pool.
func Worker(ctx context.Context) int {
	w, _ := ctx.Value(workerKey{}).(int)
	return w
}

// Result is the outcome of one task. Worker identifies the pool worker
// (1-based) that executed it.
type Result struct {
	Name   string
	Index  int
	Worker int
	Err    error
}

// RunPool executes tasks on at most limit workers and waits for all of them.
// A limit of zero or less starts one worker per task. Results are returned
// in task order. A failing task never stops its siblings.
func RunPool(ctx context.Context, tasks []Task, limit int) []Result {
	results := make([]Result, len(tasks))
	if len(tasks) == 0 {
		return results
	}
	if limit <= 0 || limit > len(tasks) {
		limit = len(tasks)
	}

	queue := make(chan int, len(tasks))
	for i := range tasks {
		queue <- i
	}
	close(queue)

	var g errgroup.Group
	for w := 1; w <= limit; w++ {
		g.Go(func() error {
			wctx := context.WithValue(ctx, workerKey{}, w)
			for i := range queue {
				task := tasks[i]
				results[i] = Result{
					Name:   task.Name,
					Index:  i,
					Worker: w,
					Err:    runTask(wctx, task),
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// runTask shields the pool from a panicking task.
func runTask(ctx context.Context, task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task %s panicked: %v", task.Name, r)
		}
	}()
	return task.Func(ctx)
}

// RunParallel executes tasks on at most limit workers and returns every
// failure joined into one error, or nil.
func RunParallel(ctx context.Context, tasks []Task, limit int) error {
	var errs []error
	for _, res := range Failed(RunPool(ctx, tasks, limit)) {
		errs = append(errs, fmt.Errorf("%s: %w", res.Name, res.Err))
	}
	return errors.Join(errs...)
}

// Failed returns only the failed results, preserving task order.
func Failed(results []Result) []Result {
	var failed []Result
	for _, res := range results {
		if res.Err != nil {
			failed = append(failed, res)
		}
	}
	return failed
}
