package session

import (
	"context"
	"fmt"

	"github.com/jonasv2/sessionkit/core/apiclient"
	"github.com/jonasv2/sessionkit/core/logger"
)

const refreshKey = "refresh"

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Do sends an authenticated request and decodes a 2xx body into out. A 401
// triggers one shared refresh followed by a single retry. Errors other than
// 401 are returned unchanged; a failed refresh returns ErrSessionEnded.
func (m *Manager) Do(ctx context.Context, method, path string, body, out any) error {
	sent, err := m.accessToken(ctx)
	if err != nil {
		return err
	}

	err = m.api.Request(apiclient.WithAccessToken(ctx, sent), method, path, body, out)
	if sent == "" || !apiclient.IsUnauthorized(err) {
		return err
	}
	m.log.DebugContext(ctx, "Access token rejected", logger.Method(method), logger.Path(path))

	if err := m.ensureFreshSession(ctx, sent); err != nil {
		return err
	}

	next, err := m.accessToken(ctx)
	if err != nil {
		return err
	}
	if next == "" {
		return ErrSessionEnded
	}
	return m.api.Request(apiclient.WithAccessToken(ctx, next), method, path, body, out)
}

// Refresh exchanges the stored refresh token for a new pair and re-reads the
// user. It joins a refresh that is already in flight.
func (m *Manager) Refresh(ctx context.Context) error {
	return m.ensureFreshSession(ctx, "")
}

// ensureFreshSession makes sure the stored access token is newer than stale.
// When the store already moved past stale the refresh is skipped. Otherwise
// the caller joins the single in-flight refresh. An empty stale forces a
// refresh.
func (m *Manager) ensureFreshSession(ctx context.Context, stale string) error {
	if stale != "" && m.superseded(ctx, stale) {
		m.metrics.refresh(resultSkipped)
		return nil
	}

	flightCtx := context.WithoutCancel(ctx)
	ch := m.flight.DoChan(refreshKey, func() (any, error) {
		rctx, cancel := context.WithTimeout(flightCtx, m.cfg.RefreshTimeout)
		defer cancel()
		return nil, m.refresh(rctx, stale)
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Manager) superseded(ctx context.Context, stale string) bool {
	pair, ok, err := m.tokens.Load(ctx)
	return err == nil && ok && pair.AccessToken != stale
}

func (m *Manager) refresh(ctx context.Context, stale string) error {
	m.commitMu.Lock()
	gen := m.generation.Load()
	pair, ok, err := m.tokens.Load(ctx)
	switch {
	case err != nil, !ok:
	case stale != "" && pair.AccessToken != stale:
		m.commitMu.Unlock()
		m.metrics.refresh(resultSkipped)
		return nil
	case m.Status() == StatusRestoring:
		// Restore stays loading until the refresh settles.
	default:
		m.setState(ctx, StatusRefreshingInFlight, m.CurrentUser())
	}
	m.commitMu.Unlock()

	if err != nil {
		return m.failRefresh(ctx, gen, joinErr(ErrLoadTokens, err))
	}
	if !ok {
		return m.failRefresh(ctx, gen, ErrNoRefreshToken)
	}

	next, err := m.requestPair(ctx, pathRefresh, refreshRequest{RefreshToken: pair.RefreshToken})
	if err != nil {
		return m.failRefresh(ctx, gen, err)
	}
	user, err := m.fetchUser(ctx, next.AccessToken)
	if err != nil {
		return m.failRefresh(ctx, gen, err)
	}

	committed, err := m.commit(ctx, gen, false, next, user)
	if err != nil {
		return m.failRefresh(ctx, gen, err)
	}
	if !committed {
		m.metrics.refresh(resultSuperseded)
		return m.supersededResult()
	}

	m.metrics.refresh(resultSuccess)
	m.log.DebugContext(ctx, "Tokens refreshed", logger.Result(resultSuccess))
	return nil
}

// failRefresh ends the session unless another operation already replaced it.
func (m *Manager) failRefresh(ctx context.Context, gen uint64, cause error) error {
	ended, err := m.end(ctx, gen, false)
	if err != nil {
		m.log.ErrorContext(ctx, "Failed to clear tokens", logger.Error(err))
	}
	if !ended {
		m.metrics.refresh(resultSuperseded)
		return m.supersededResult()
	}

	m.metrics.refresh(resultFailure)
	m.log.InfoContext(ctx, "Session ended after failed refresh", logger.Result(resultFailure), logger.Error(cause))
	return fmt.Errorf("%w: %w", ErrSessionEnded, cause)
}

// supersededResult reports the outcome of a refresh whose result was dropped
// because login, register or logout changed the session meanwhile.
func (m *Manager) supersededResult() error {
	if m.IsAuthenticated() {
		return nil
	}
	return ErrSessionEnded
}

func (m *Manager) accessToken(ctx context.Context) (string, error) {
	pair, ok, err := m.tokens.Load(ctx)
	if err != nil {
		return "", joinErr(ErrLoadTokens, err)
	}
	if !ok {
		return "", nil
	}
	return pair.AccessToken, nil
}
