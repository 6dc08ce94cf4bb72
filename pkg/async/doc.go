// Package async provides a small Future type for running work in the
// background while the caller keeps control over how long it is willing to wait.
//
// The session manager uses it for best-effort remote calls: the call is started,
// the caller waits a bounded amount of time, and whatever happens afterwards is
// abandoned without blocking local teardown.
//
// # Usage
//
//	future := async.Async(ctx, userID, fetchUser)
//
//	user, err := future.AwaitWithTimeout(2 * time.Second)
//	if errors.Is(err, async.ErrTimeout) {
//		// the goroutine keeps running; its result is discarded
//	}
//
// Exec is the error-only variant:
//
//	err := async.Exec(ctx, struct{}{}, func(ctx context.Context, _ struct{}) error {
//		return client.Post(ctx, "/auth/logout", nil, nil)
//	}).AwaitContext(ctx)
//
// # Context Support
//
// If the context is already cancelled when Async is called, the function is not
// executed and the future resolves with the context error.
package async
