package async

import (
	"context"
	"time"
)

// Future holds the eventual result of a function started by Async or Exec.
type Future[U any] struct {
	value U
	err   error
	done  chan struct{}
}

// Async runs fn(ctx, param) in a new goroutine and returns a Future for its result.
func Async[T, U any](ctx context.Context, param T, fn func(context.Context, T) (U, error)) *Future[U] {
	f := &Future[U]{done: make(chan struct{})}

	go func() {
		defer close(f.done)

		if err := ctx.Err(); err != nil {
			f.err = err
			return
		}

		f.value, f.err = fn(ctx, param)
	}()

	return f
}

// Exec runs an error-only function asynchronously.
func Exec[T any](ctx context.Context, param T, fn func(context.Context, T) error) *Future[struct{}] {
	return Async(ctx, param, func(ctx context.Context, p T) (struct{}, error) {
		return struct{}{}, fn(ctx, p)
	})
}

// Await blocks until the future resolves.
func (f *Future[U]) Await() (U, error) {
	<-f.done
	return f.value, f.err
}

// AwaitWithTimeout waits at most timeout for the result.
// A non-positive timeout behaves like Await.
func (f *Future[U]) AwaitWithTimeout(timeout time.Duration) (U, error) {
	if timeout <= 0 {
		return f.Await()
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-f.done:
		return f.value, f.err
	case <-timer.C:
		var zero U
		return zero, ErrTimeout
	}
}

// AwaitContext waits for the result or until ctx is done, whichever comes first.
func (f *Future[U]) AwaitContext(ctx context.Context) (U, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero U
		return zero, ctx.Err()
	}
}

// Done returns a channel that is closed once the future resolves.
func (f *Future[U]) Done() <-chan struct{} {
	return f.done
}

// IsComplete reports whether the future has resolved, without blocking.
func (f *Future[U]) IsComplete() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}
