package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jonasv2/sessionkit/core/apiclient"
	"github.com/jonasv2/sessionkit/core/logger"
	"github.com/jonasv2/sessionkit/core/tokenstore"
	"github.com/jonasv2/sessionkit/pkg/async"
)

const (
	pathLogin    = "/auth/login"
	pathRegister = "/auth/register"
	pathRefresh  = "/auth/refresh"
	pathLogout   = "/auth/logout"
	pathMe       = "/users/me"
	pathMeLevel  = "/users/me/level"
)

// Restore resolves the initial state from the stored tokens. Only the first
// call does any work; later calls wait for it and return its result.
//
// A nil error means a definitive outcome (authenticated, or unauthenticated
// with the store cleared when the tokens were rejected). ErrRestoreIncomplete
// means restore gave up, typically on timeout: the manager is
// unauthenticated but the stored tokens were kept.
func (m *Manager) Restore(ctx context.Context) error {
	m.restoreOnce.Do(func() {
		m.restoreStarted.Store(true)
		m.restoreErr = m.restore(ctx)
		close(m.restored)
	})
	<-m.restored
	return m.restoreErr
}

// WaitRestored blocks until Restore finished or ctx is done.
func (m *Manager) WaitRestored(ctx context.Context) error {
	select {
	case <-m.restored:
		return m.restoreErr
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Manager) restore(ctx context.Context) error {
	gen := m.generation.Load()

	ctx, cancel := context.WithTimeout(ctx, m.cfg.RestoreTimeout)
	defer cancel()

	pair, ok, err := m.tokens.Load(ctx)
	if err != nil {
		m.setStateIf(ctx, gen, StatusUnauthenticated, nil)
		m.log.WarnContext(ctx, "Token store unavailable during restore", logger.Error(err))
		return fmt.Errorf("%w: %w", ErrRestoreIncomplete, joinErr(ErrLoadTokens, err))
	}
	if !ok {
		m.setStateIf(ctx, gen, StatusUnauthenticated, nil)
		return nil
	}

	user, err := m.fetchUser(ctx, pair.AccessToken)
	switch {
	case err == nil:
		m.setStateIf(ctx, gen, StatusAuthenticated, user)
		return nil

	case apiclient.IsUnauthorized(err):
		ferr := m.ensureFreshSession(ctx, pair.AccessToken)
		if ferr == nil || errors.Is(ferr, ErrSessionEnded) {
			return nil
		}
		return m.degradeRestore(ctx, gen, ferr)

	case ctx.Err() != nil:
		return m.degradeRestore(ctx, gen, err)

	default:
		m.log.InfoContext(ctx, "Stored session rejected", logger.Error(err))
		if _, cerr := m.end(ctx, gen, false); cerr != nil {
			m.log.ErrorContext(ctx, "Failed to clear tokens", logger.Error(cerr))
		}
		return nil
	}
}

func (m *Manager) degradeRestore(ctx context.Context, gen uint64, cause error) error {
	m.setStateIf(context.WithoutCancel(ctx), gen, StatusUnauthenticated, nil)
	m.log.WarnContext(ctx, "Session restore incomplete", logger.Error(cause))
	return fmt.Errorf("%w: %w", ErrRestoreIncomplete, cause)
}

// Login authenticates with credentials and caches the user. On failure the
// previous state and stored tokens are untouched and the API error is returned.
func (m *Manager) Login(ctx context.Context, creds Credentials) (*User, error) {
	return m.authenticate(ctx, "login", pathLogin, creds)
}

// Register creates an account and signs it in, like Login.
func (m *Manager) Register(ctx context.Context, data RegistrationData) (*User, error) {
	return m.authenticate(ctx, "register", pathRegister, data)
}

func (m *Manager) authenticate(ctx context.Context, action, path string, body any) (*User, error) {
	if err := m.waitRestoreIfStarted(ctx); err != nil {
		return nil, err
	}

	pair, err := m.requestPair(ctx, path, body)
	if err != nil {
		m.log.DebugContext(ctx, "Authentication failed", logger.Action(action), logger.Error(err))
		return nil, err
	}

	user, err := m.fetchUser(ctx, pair.AccessToken)
	if err != nil {
		return nil, err
	}

	if _, err := m.commit(ctx, 0, true, pair, user); err != nil {
		return nil, err
	}
	m.log.InfoContext(ctx, "Signed in", logger.Action(action), logger.UserID(user.ID))
	return copyUser(user), nil
}

// Logout ends the session. The remote call is best effort and bounded by the
// logout timeout; local teardown always runs and ctx cancellation is ignored.
// The only error is a failure to clear the token store.
func (m *Manager) Logout(ctx context.Context) error {
	ctx = context.WithoutCancel(ctx)

	pair, ok, err := m.tokens.Load(ctx)
	if err != nil {
		m.log.WarnContext(ctx, "Token store unavailable during logout", logger.Error(err))
	}
	if ok {
		m.remoteLogout(ctx, pair.AccessToken)
	}

	if _, err := m.end(ctx, 0, true); err != nil {
		m.log.ErrorContext(ctx, "Local logout failed", logger.Error(err))
		return err
	}
	m.log.InfoContext(ctx, "Signed out")
	return nil
}

func (m *Manager) remoteLogout(ctx context.Context, accessToken string) {
	callCtx, cancel := context.WithTimeout(ctx, m.cfg.LogoutTimeout)
	defer cancel()

	fut := async.Exec(callCtx, accessToken, func(ctx context.Context, token string) error {
		return m.api.Request(apiclient.WithAccessToken(ctx, token), http.MethodPost, pathLogout, nil, nil)
	})
	if _, err := fut.AwaitWithTimeout(m.cfg.LogoutTimeout); err != nil {
		m.log.WarnContext(ctx, "Remote logout failed", logger.Action("logout"), logger.Error(err))
	}
}

func (m *Manager) waitRestoreIfStarted(ctx context.Context) error {
	if !m.restoreStarted.Load() {
		return nil
	}
	select {
	case <-m.restored:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Manager) requestPair(ctx context.Context, path string, body any) (tokenstore.Pair, error) {
	var pair tokenstore.Pair
	if err := m.api.Request(ctx, http.MethodPost, path, body, &pair); err != nil {
		return tokenstore.Pair{}, err
	}
	if !pair.Valid() {
		return tokenstore.Pair{}, ErrMalformedTokenResponse
	}
	return pair, nil
}

// fetchUser reads /users/me with an explicit access token.
func (m *Manager) fetchUser(ctx context.Context, accessToken string) (*User, error) {
	var user User
	if err := m.api.Request(apiclient.WithAccessToken(ctx, accessToken), http.MethodGet, pathMe, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func joinErr(sentinel, err error) error {
	return errors.Join(sentinel, err)
}
