package session

import (
	"context"
	"net/http"
)

type levelRequest struct {
	Level Level `json:"level"`
}

// UpdateLevel sets the user's level and replaces the cached user with the
// server's answer.
func (m *Manager) UpdateLevel(ctx context.Context, level Level) (*User, error) {
	if !level.Valid() {
		return nil, ErrInvalidLevel
	}
	return m.updateUser(ctx, http.MethodPatch, pathMeLevel, levelRequest{Level: level})
}

// ReloadUser re-reads /users/me into the cache.
func (m *Manager) ReloadUser(ctx context.Context) (*User, error) {
	return m.updateUser(ctx, http.MethodGet, pathMe, nil)
}

func (m *Manager) updateUser(ctx context.Context, method, path string, body any) (*User, error) {
	if !m.IsAuthenticated() {
		return nil, ErrNotAuthenticated
	}

	var user User
	if err := m.Do(ctx, method, path, body, &user); err != nil {
		return nil, err
	}

	m.commitMu.Lock()
	defer m.commitMu.Unlock()
	if status := m.Status(); status != StatusAuthenticated && status != StatusRefreshingInFlight {
		return nil, ErrNotAuthenticated
	}
	m.setState(ctx, m.Status(), &user)
	return copyUser(&user), nil
}
