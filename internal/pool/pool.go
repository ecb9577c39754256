// Package pool runs many fetch-and-normalize tasks under a concurrency cap
// with a cooperative, count-based throttle shared by every worker.
package pool

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"golang.org/x/sync/errgroup"
)

// ErrPanic wraps a panic recovered from a task.
var ErrPanic = errors.New("task panicked")

// Outcome is the result of one input: exactly one per input, success or error.
type Outcome[In, Out any] struct {
	Input In
	Value Out
	Err   error
}

// Options controls a Run.
type Options struct {
	// Concurrency caps the number of tasks in flight. Values < 1 mean 1.
	Concurrency int
	// PauseEvery and Pause configure the cooperative throttle: after every
	// PauseEvery completed tasks, all workers hold off for Pause before
	// starting their next task. Zero disables it.
	PauseEvery int
	Pause      time.Duration
	// Progress, if set, is called from the collector after each outcome.
	Progress func(done, total int)
}

// Run executes fn over inputs and returns one outcome per input, in
// completion order. A failing or panicking task never cancels its siblings.
// If ctx is cancelled, tasks not yet started report ctx.Err().
func Run[In, Out any](ctx context.Context, inputs []In, opts Options, fn func(context.Context, In) (Out, error)) []Outcome[In, Out] {
	workers := opts.Concurrency
	if workers < 1 {
		workers = 1
	}
	throttle := NewThrottle(opts.PauseEvery, opts.Pause)

	// Fan-in: workers send, a single collector owns the result slice.
	results := make(chan Outcome[In, Out])
	collected := make([]Outcome[In, Out], 0, len(inputs))
	done := make(chan struct{})
	go func() {
		defer close(done)
		for o := range results {
			collected = append(collected, o)
			if opts.Progress != nil {
				opts.Progress(len(collected), len(inputs))
			}
		}
	}()

	var g errgroup.Group
	g.SetLimit(workers)
	for _, in := range inputs {
		g.Go(func() error {
			if err := throttle.Wait(ctx); err != nil {
				results <- Outcome[In, Out]{Input: in, Err: err}
				return nil
			}
			if err := ctx.Err(); err != nil {
				results <- Outcome[In, Out]{Input: in, Err: err}
				return nil
			}
			v, err := call(ctx, fn, in)
			throttle.Done()
			results <- Outcome[In, Out]{Input: in, Value: v, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	close(results)
	<-done

	return collected
}

// call runs fn, converting a panic into an error for that input alone.
func call[In, Out any](ctx context.Context, fn func(context.Context, In) (Out, error), in In) (v Out, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v\n%s", ErrPanic, r, debug.Stack())
		}
	}()
	return fn(ctx, in)
}
