// Package async provides helpers for running independent tasks in parallel.
//
// Reconciliation of independent nodes proceeds concurrently; the helpers here
// collect every task's outcome so failures stay scoped to the task that
// produced them instead of aborting the whole batch.
package async

import (
	"context"
	"fmt"
	"strings"
)

// Task is a named unit of work.
type Task struct {
	Name string
	Func func(context.Context) error
}

// TaskError records the failure of a single task.
type TaskError struct {
	Name string
	Err  error
}

func (e TaskError) Error() string {
	return fmt.Sprintf("%s: %v", e.Name, e.Err)
}

func (e TaskError) Unwrap() error {
	return e.Err
}

// BatchError aggregates the failures of a parallel batch. Tasks that
// succeeded are not represented; callers scope recovery to Failed.
type BatchError struct {
	Failed []TaskError
}

func (e *BatchError) Error() string {
	parts := make([]string, len(e.Failed))
	for i, f := range e.Failed {
		parts[i] = f.Error()
	}
	return fmt.Sprintf("%d of batch failed: %s", len(e.Failed), strings.Join(parts, "; "))
}

// RunParallel starts all tasks concurrently and waits for every one to
// finish. It returns nil when all succeed, or a *BatchError listing each
// failed task in completion order.
func RunParallel(ctx context.Context, tasks []Task) error {
	if len(tasks) == 0 {
		return nil
	}

	type result struct {
		name string
		err  error
	}

	resultChan := make(chan result, len(tasks))
	for _, task := range tasks {
		go func() {
			resultChan <- result{name: task.Name, err: task.Func(ctx)}
		}()
	}

	var failed []TaskError
	for range len(tasks) {
		res := <-resultChan
		if res.err != nil {
			failed = append(failed, TaskError{Name: res.name, Err: res.err})
		}
	}

	if len(failed) > 0 {
		return &BatchError{Failed: failed}
	}
	return nil
}
