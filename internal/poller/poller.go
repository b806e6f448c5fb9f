// Package poller runs a fetch on a fixed interval until its owner stops it.
package poller

import (
	"context"
	"sync"
	"time"
)

// Handler receives each fetch result. Returning false stops the task.
type Handler[T any] func(v T, err error) bool

type options struct {
	immediate bool
}

// Option configures a Task.
type Option func(*options)

// WithImmediate runs the first fetch right away instead of after one interval.
func WithImmediate() Option {
	return func(o *options) { o.immediate = true }
}

// Task is a running poll loop. The caller that started it owns it and must
// call Stop when the view or flow it serves goes away.
type Task struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Start launches the loop. Fetch gets a context that is cancelled by Cancel
// and Stop; a result that arrives after cancellation is dropped and never
// reaches handle.
func Start[T any](ctx context.Context, interval time.Duration, fetch func(context.Context) (T, error), handle Handler[T], opts ...Option) *Task {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	ctx, cancel := context.WithCancel(ctx)
	t := &Task{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer close(t.done)
		defer cancel()

		tick := func() bool {
			v, err := fetch(ctx)
			if ctx.Err() != nil {
				return false
			}
			return handle(v, err)
		}

		if o.immediate && !tick() {
			return
		}

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if !tick() {
					return
				}
			}
		}
	}()

	return t
}

// Cancel stops the loop without waiting for it. It may be called from the
// task's own handler. A result that was already past its cancellation check
// can still reach handle once; use Stop to be sure none does.
func (t *Task) Cancel() {
	t.once.Do(t.cancel)
}

// Stop cancels the loop and waits for it to exit, so handle is never called
// after Stop returns. It is safe to call more than once, but not from inside
// the task's own handler.
func (t *Task) Stop() {
	t.Cancel()
	<-t.done
}

// Done is closed once the loop has exited.
func (t *Task) Done() <-chan struct{} {
	return t.done
}
