// Package session manages the client side of a token-based auth session.
//
// A Manager owns the in-memory session (status and cached User) and drives
// the protocol against the auth API: restore on startup, login, register,
// logout and transparent refresh when an authenticated request is rejected
// with 401.
//
// # Lifecycle
//
//	mgr := session.New(client, store, session.WithLogger(log))
//	defer mgr.Close()
//
//	if err := mgr.Restore(ctx); err != nil {
//		log.Warn("restore degraded", logger.Error(err))
//	}
//
//	if !mgr.IsAuthenticated() {
//		if _, err := mgr.Login(ctx, session.Credentials{Email: email, Password: pw}); err != nil {
//			return err // *apiclient.Error with the server's message
//		}
//	}
//
// A Manager starts in StatusRestoring. Restore runs at most once; Login and
// Register wait for a started Restore before touching the session.
//
// # Authenticated requests
//
// Do sends a request with the stored access token. On 401 it joins or starts
// a single refresh, then retries once with the new token. A second 401 is
// returned as is. Concurrent 401s share one POST /auth/refresh and observe
// its single outcome. When the refresh fails the session ends: the stored
// pair is cleared, the status becomes StatusUnauthenticated and callers get an
// error matching ErrSessionEnded.
//
//	var lessons []Lesson
//	err := mgr.Do(ctx, http.MethodGet, "/lessons", nil, &lessons)
//	if errors.Is(err, session.ErrSessionEnded) {
//		// route back to login
//	}
//
// Refresh coordination is per process. Two processes sharing one store and a
// server that rotates refresh tokens on use can still race each other.
//
// # Logout
//
// Logout calls POST /auth/logout with a bounded timeout, ignores its outcome
// and always clears the local session. It only fails when the token store
// cannot be cleared.
//
// # Observing state
//
// Snapshot returns a copy of the current state. Subscribe delivers a Snapshot
// after every change until its context is done:
//
//	sub := mgr.Subscribe(ctx)
//	for msg := range sub.Receive(ctx) {
//		render(msg.Data)
//	}
package session
