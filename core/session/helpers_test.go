package session_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/jonasv2/sessionkit/core/session"
	"github.com/jonasv2/sessionkit/core/tokenstore"
	"github.com/jonasv2/sessionkit/pkg/broadcast"
)

// scriptedAPI answers every request with respond.
type scriptedAPI struct {
	mu      sync.Mutex
	calls   []string
	respond func(path string, out any) error
}

func (a *scriptedAPI) Request(_ context.Context, method, path string, _, out any) error {
	a.mu.Lock()
	a.calls = append(a.calls, method+" "+path)
	a.mu.Unlock()
	return a.respond(path, out)
}

func (a *scriptedAPI) Calls() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.calls...)
}

func decodeInto(out any, body string) error {
	if out == nil {
		return nil
	}
	return json.Unmarshal([]byte(body), out)
}

// heldAPI forwards to next but holds back the first response for path
// until release is closed. arrived is closed once that response is in.
type heldAPI struct {
	next    session.API
	path    string
	once    sync.Once
	arrived chan struct{}
	release chan struct{}
}

func newHeldAPI(next session.API, path string) *heldAPI {
	return &heldAPI{next: next, path: path, arrived: make(chan struct{}), release: make(chan struct{})}
}

func (a *heldAPI) Request(ctx context.Context, method, path string, body, out any) error {
	err := a.next.Request(ctx, method, path, body, out)
	if path != a.path {
		return err
	}
	a.once.Do(func() {
		close(a.arrived)
		<-a.release
	})
	return err
}

// brokenStore fails the configured operations.
type brokenStore struct {
	*tokenstore.MemoryStore
	loadErr  error
	clearErr error
}

func (s *brokenStore) Load(ctx context.Context) (tokenstore.Pair, bool, error) {
	if s.loadErr != nil {
		return tokenstore.Pair{}, false, s.loadErr
	}
	return s.MemoryStore.Load(ctx)
}

func (s *brokenStore) Clear(ctx context.Context) error {
	if s.clearErr != nil {
		return s.clearErr
	}
	return s.MemoryStore.Clear(ctx)
}

func nextSnapshot(t *testing.T, ch <-chan broadcast.Message[session.Snapshot]) session.Snapshot {
	t.Helper()
	select {
	case msg, ok := <-ch:
		if !ok {
			t.Fatal("subscription closed")
		}
		return msg.Data
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot delivered")
	}
	return session.Snapshot{}
}
