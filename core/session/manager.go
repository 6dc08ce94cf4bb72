package session

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/jonasv2/sessionkit/core/logger"
	"github.com/jonasv2/sessionkit/core/tokenstore"
	"github.com/jonasv2/sessionkit/pkg/broadcast"
)

// API performs one request against the auth API. *apiclient.Client satisfies it.
type API interface {
	Request(ctx context.Context, method, path string, body, out any) error
}

// Manager owns the session state. It is safe for concurrent use.
type Manager struct {
	api     API
	tokens  tokenstore.Store
	cfg     Config
	log     *slog.Logger
	metrics *Metrics
	events  *broadcast.MemoryBroadcaster[Snapshot]

	mu     sync.RWMutex
	status Status
	user   *User

	// commitMu serializes token store writes with the state they imply.
	commitMu sync.Mutex
	// generation moves on every token store write made by the manager.
	generation atomic.Uint64

	flight singleflight.Group

	restoreOnce    sync.Once
	restoreStarted atomic.Bool
	restored       chan struct{}
	restoreErr     error
}

// New creates a Manager in StatusRestoring.
func New(api API, tokens tokenstore.Store, opts ...Option) *Manager {
	m := &Manager{
		api:      api,
		tokens:   tokens,
		cfg:      defaultConfig(),
		log:      logger.NewNop(),
		status:   StatusRestoring,
		restored: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.log = m.log.With(logger.Component("session"))
	m.events = broadcast.NewMemoryBroadcaster[Snapshot](m.cfg.EventBuffer)
	return m
}

// Snapshot returns a copy of the current state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Snapshot{Status: m.status, User: copyUser(m.user)}
}

// Status returns the current session status.
func (m *Manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

// CurrentUser returns a copy of the cached user, or nil.
func (m *Manager) CurrentUser() *User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return copyUser(m.user)
}

// IsAuthenticated reports whether a user is signed in.
func (m *Manager) IsAuthenticated() bool {
	return m.Snapshot().IsAuthenticated()
}

// Subscribe delivers a Snapshot after every state change until ctx is done
// or the subscriber is closed. Slow subscribers lose the oldest snapshots.
func (m *Manager) Subscribe(ctx context.Context) broadcast.Subscriber[Snapshot] {
	return m.events.Subscribe(ctx)
}

// Close stops all subscriptions. The manager stays usable.
func (m *Manager) Close() error {
	return m.events.Close()
}

// setState replaces the state and notifies subscribers. Callers hold commitMu.
func (m *Manager) setState(ctx context.Context, status Status, user *User) {
	m.mu.Lock()
	prev := m.status
	m.status = status
	m.user = copyUser(user)
	snap := Snapshot{Status: status, User: copyUser(user)}
	m.mu.Unlock()

	if prev != status {
		m.metrics.transition(prev, status)
		m.log.DebugContext(ctx, "Session state changed", logger.Transition(prev.String(), status.String()))
	}
	_ = m.events.Broadcast(context.WithoutCancel(ctx), broadcast.Message[Snapshot]{Data: snap})
}

// setStateIf applies the state only if no token write happened since gen.
func (m *Manager) setStateIf(ctx context.Context, gen uint64, status Status, user *User) bool {
	m.commitMu.Lock()
	defer m.commitMu.Unlock()
	if m.generation.Load() != gen {
		return false
	}
	m.setState(ctx, status, user)
	return true
}

// commit saves pair and marks the session authenticated. With force unset
// the commit is dropped when the generation moved past gen.
func (m *Manager) commit(ctx context.Context, gen uint64, force bool, pair tokenstore.Pair, user *User) (bool, error) {
	m.commitMu.Lock()
	defer m.commitMu.Unlock()
	if !force && m.generation.Load() != gen {
		return false, nil
	}
	if err := m.tokens.Save(ctx, pair); err != nil {
		return false, joinErr(ErrSaveTokens, err)
	}
	m.generation.Add(1)
	m.setState(ctx, StatusAuthenticated, user)
	return true, nil
}

// end clears the stored pair and marks the session unauthenticated. With
// force unset it is dropped when the generation moved past gen.
func (m *Manager) end(ctx context.Context, gen uint64, force bool) (bool, error) {
	m.commitMu.Lock()
	defer m.commitMu.Unlock()
	if !force && m.generation.Load() != gen {
		return false, nil
	}
	m.generation.Add(1)
	err := m.tokens.Clear(ctx)
	m.setState(ctx, StatusUnauthenticated, nil)
	if err != nil {
		return true, joinErr(ErrClearTokens, err)
	}
	return true, nil
}

func copyUser(u *User) *User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
