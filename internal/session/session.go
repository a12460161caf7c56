// Package session keeps the per-browser state that a single-page app would
// hold in local storage: the API bearer token and the theme flag.
//
// A Session lives for one request. It is restored from the store by
// Manager.Middleware, placed in the request context, and written back
// whenever one of its persisted fields changes. The validated admin user is
// cached in process memory only, so a restart re-runs the who-am-I check.
package session

import (
	"context"
	"sync"

	"github.com/sakif/portfolio-cms/internal/model"
)

const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

type Session struct {
	ID string

	mu    sync.Mutex
	token string
	theme string
	user  *model.User
	m     *Manager
}

type contextKey string

const sessionKey contextKey = "session"

// NewContext returns a copy of ctx carrying s.
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// FromContext returns the request's session, or nil outside the session
// middleware.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(sessionKey).(*Session)
	return s
}

// BearerToken returns the stored API token, or "" when signed out.
func (s *Session) BearerToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// ClearBearerToken evicts the token and the cached user. It is what the API
// client calls when the API answers 401, and what logout calls.
func (s *Session) ClearBearerToken(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token == "" && s.user == nil {
		return nil
	}
	s.token = ""
	s.user = nil
	s.remember(nil)
	return s.persist(ctx)
}

// SignIn stores a freshly issued token together with the user it belongs to.
func (s *Session) SignIn(ctx context.Context, token string, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token
	s.user = user
	s.remember(user)
	return s.persist(ctx)
}

// User returns the validated admin user, or nil when the token has not been
// checked (or there is no token).
func (s *Session) User() *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// SetUser records the result of a successful who-am-I check. It is ignored
// when the session holds no token.
func (s *Session) SetUser(user *model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token == "" {
		return
	}
	s.user = user
	s.remember(user)
}

// Theme returns "dark", "light" or "" when no choice was ever stored.
func (s *Session) Theme() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.theme
}

func (s *Session) SetTheme(ctx context.Context, theme string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.theme = theme
	return s.persist(ctx)
}

// NewDetached returns a session that is not backed by a store. Writes only
// change the in-memory value. Tests and CLI commands use it.
func NewDetached(id, token string, user *model.User) *Session {
	return &Session{ID: id, token: token, user: user}
}

func (s *Session) persist(ctx context.Context) error {
	if s.m == nil {
		return nil
	}
	return s.m.save(ctx, s)
}

func (s *Session) remember(user *model.User) {
	if s.m == nil {
		return
	}
	s.m.rememberUser(s.ID, user)
}
