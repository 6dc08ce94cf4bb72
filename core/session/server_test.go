package session_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jonasv2/sessionkit/core/apiclient"
	"github.com/jonasv2/sessionkit/core/session"
	"github.com/jonasv2/sessionkit/core/tokenstore"
)

type account struct {
	ID       int64
	Email    string
	Username string
	Password string
	Level    string
}

// authServer mimics the auth API. Refresh tokens are single use.
type authServer struct {
	t   *testing.T
	srv *httptest.Server

	mu       sync.Mutex
	seq      int
	accounts map[string]*account // by email
	access   map[string]int64
	refresh  map[string]int64

	requests     atomic.Int32
	refreshCalls atomic.Int32
	logoutCalls  atomic.Int32
	meCalls      atomic.Int32

	refreshDelay atomic.Int64 // nanoseconds
	meDelay      atomic.Int64
	meStatus     atomic.Int32 // forced /users/me status when non-zero
}

func newAuthServer(t *testing.T) *authServer {
	t.Helper()

	s := &authServer{
		t:        t,
		accounts: map[string]*account{},
		access:   map[string]int64{},
		refresh:  map[string]int64{},
	}
	s.accounts["ada@example.com"] = &account{ID: 1, Email: "ada@example.com", Username: "ada", Password: "secret"}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/auth/login", s.handleLogin)
	mux.HandleFunc("POST /api/v1/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/v1/auth/refresh", s.handleRefresh)
	mux.HandleFunc("POST /api/v1/auth/logout", s.handleLogout)
	mux.HandleFunc("GET /api/v1/users/me", s.handleMe)
	mux.HandleFunc("PATCH /api/v1/users/me/level", s.handleLevel)
	mux.HandleFunc("GET /api/v1/lessons", s.handleLessons)
	mux.HandleFunc("GET /api/v1/always-401", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Not allowed"})
	})
	mux.HandleFunc("GET /api/v1/boom", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "Internal error"})
	})

	s.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.requests.Add(1)
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(s.srv.Close)
	return s
}

func (s *authServer) baseURL() string {
	return s.srv.URL + "/api/v1"
}

// newManager wires a client and manager over store.
func (s *authServer) newManager(store tokenstore.Store, opts ...session.Option) *session.Manager {
	client := apiclient.New(store, apiclient.WithBaseURL(s.baseURL()))
	m := session.New(client, store, opts...)
	s.t.Cleanup(func() { _ = m.Close() })
	return m
}

// issue mints a pair for the account with email.
func (s *authServer) issue(email string) tokenstore.Pair {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issueLocked(s.accounts[email].ID)
}

func (s *authServer) issueLocked(id int64) tokenstore.Pair {
	s.seq++
	p := tokenstore.Pair{
		AccessToken:  fmt.Sprintf("access-%d", s.seq),
		RefreshToken: fmt.Sprintf("refresh-%d", s.seq),
		TokenType:    "bearer",
	}
	s.access[p.AccessToken] = id
	s.refresh[p.RefreshToken] = id
	return p
}

func (s *authServer) expireAccess(token string) {
	s.mu.Lock()
	delete(s.access, token)
	s.mu.Unlock()
}

func (s *authServer) revokeRefresh(token string) {
	s.mu.Lock()
	delete(s.refresh, token)
	s.mu.Unlock()
}

func (s *authServer) setRefreshDelay(d time.Duration) { s.refreshDelay.Store(int64(d)) }
func (s *authServer) setMeDelay(d time.Duration)      { s.meDelay.Store(int64(d)) }

func (s *authServer) userFor(r *http.Request) (*account, bool) {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.access[token]
	if !ok {
		return nil, false
	}
	for _, a := range s.accounts {
		if a.ID == id {
			return a, true
		}
	}
	return nil, false
}

func (s *authServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct{ Email, Password string }
	_ = json.NewDecoder(r.Body).Decode(&req)

	s.mu.Lock()
	a, ok := s.accounts[req.Email]
	if !ok || a.Password != req.Password {
		s.mu.Unlock()
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Incorrect email or password"})
		return
	}
	pair := s.issueLocked(a.ID)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, pair)
}

func (s *authServer) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct{ Email, Username, Password string }
	_ = json.NewDecoder(r.Body).Decode(&req)

	s.mu.Lock()
	if _, exists := s.accounts[req.Email]; exists {
		s.mu.Unlock()
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Email already registered"})
		return
	}
	a := &account{ID: int64(len(s.accounts) + 1), Email: req.Email, Username: req.Username, Password: req.Password}
	s.accounts[req.Email] = a
	pair := s.issueLocked(a.ID)
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, pair)
}

func (s *authServer) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.refreshCalls.Add(1)
	time.Sleep(time.Duration(s.refreshDelay.Load()))

	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	s.mu.Lock()
	id, ok := s.refresh[req.RefreshToken]
	if !ok {
		s.mu.Unlock()
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Invalid refresh token"})
		return
	}
	delete(s.refresh, req.RefreshToken)
	pair := s.issueLocked(id)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, pair)
}

func (s *authServer) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.logoutCalls.Add(1)
	if _, ok := s.userFor(r); !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Could not validate credentials"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Successfully logged out"})
}

func (s *authServer) handleMe(w http.ResponseWriter, r *http.Request) {
	s.meCalls.Add(1)
	if d := time.Duration(s.meDelay.Load()); d > 0 {
		select {
		case <-time.After(d):
		case <-r.Context().Done():
			return
		}
	}
	if status := s.meStatus.Load(); status != 0 {
		writeJSON(w, int(status), map[string]string{"detail": "Forced failure"})
		return
	}
	a, ok := s.userFor(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Could not validate credentials"})
		return
	}
	s.mu.Lock()
	body := userJSON(a)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, body)
}

func (s *authServer) handleLevel(w http.ResponseWriter, r *http.Request) {
	a, ok := s.userFor(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Could not validate credentials"})
		return
	}
	var req struct{ Level string }
	_ = json.NewDecoder(r.Body).Decode(&req)

	s.mu.Lock()
	a.Level = req.Level
	body := userJSON(a)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, body)
}

func (s *authServer) handleLessons(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.userFor(r); !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Could not validate credentials"})
		return
	}
	writeJSON(w, http.StatusOK, []map[string]any{{"id": 1, "title": "Greetings"}})
}

func userJSON(a *account) map[string]any {
	var level any
	if a.Level != "" {
		level = a.Level
	}
	return map[string]any{
		"id":           a.ID,
		"email":        a.Email,
		"username":     a.Username,
		"level":        level,
		"is_active":    true,
		"is_superuser": false,
		"created_at":   "2024-05-01T12:30:00.123456",
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type lesson struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

func loadPair(t *testing.T, store tokenstore.Store) (tokenstore.Pair, bool) {
	t.Helper()
	p, ok, err := store.Load(t.Context())
	require.NoError(t, err)
	return p, ok
}
