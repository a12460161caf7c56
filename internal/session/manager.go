package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/portfolio-cms/internal/apperror"
	"github.com/sakif/portfolio-cms/internal/model"
	"github.com/sakif/portfolio-cms/internal/repository"
)

// Signer turns a session id into a tamper-proof cookie value and back.
type Signer interface {
	Generate(sessionID string) (string, error)
	Validate(token string) (string, error)
}

// Sealer encrypts the bearer token at rest.
type Sealer interface {
	Seal(plain string) (string, error)
	Open(sealed string) (string, error)
}

type Options struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// Manager restores sessions from the store and writes them back.
type Manager struct {
	repo   repository.SessionRepository
	signer Signer
	sealer Sealer
	opts   Options
	logger *slog.Logger

	mu    sync.RWMutex
	users map[string]cachedUser

	now func() time.Time
}

func NewManager(repo repository.SessionRepository, signer Signer, sealer Sealer, opts Options, logger *slog.Logger) *Manager {
	if opts.CookieName == "" {
		opts.CookieName = "sid"
	}
	return &Manager{
		repo:   repo,
		signer: signer,
		sealer: sealer,
		opts:   opts,
		logger: logger,
		users:  make(map[string]cachedUser),
		now:    time.Now,
	}
}

// Middleware attaches the browser's session to the request context. A
// browser without a valid cookie gets a new session id immediately; its row
// is only written once something worth keeping is stored.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := m.load(w, r)
		next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), sess)))
	})
}

func (m *Manager) load(w http.ResponseWriter, r *http.Request) *Session {
	if c, err := r.Cookie(m.opts.CookieName); err == nil {
		if id, err := m.signer.Validate(c.Value); err == nil {
			return m.restore(r.Context(), id)
		}
	}

	id := xid.New().String()
	value, err := m.signer.Generate(id)
	if err != nil {
		m.logger.Error("session: signing cookie", slog.String("error", err.Error()))
		return &Session{ID: id, m: m}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.opts.CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(m.opts.TTL.Seconds()),
		HttpOnly: true,
		Secure:   m.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return &Session{ID: id, m: m}
}

func (m *Manager) restore(ctx context.Context, id string) *Session {
	s := &Session{ID: id, m: m}

	rec, err := m.repo.Get(ctx, id)
	if err != nil {
		if !errors.Is(err, apperror.ErrNotFound) {
			m.logger.Warn("session: loading", slog.String("session", id), slog.String("error", err.Error()))
		}
		return s
	}

	token, err := m.sealer.Open(rec.SealedToken)
	if err != nil {
		m.logger.Warn("session: discarding unreadable token", slog.String("session", id), slog.String("error", err.Error()))
		token = ""
	}

	s.token = token
	s.theme = rec.Theme
	if token != "" {
		s.user = m.cachedUser(id)
	}
	return s
}

// save writes s to the store. The caller holds s.mu.
func (m *Manager) save(ctx context.Context, s *Session) error {
	sealed, err := m.sealer.Seal(s.token)
	if err != nil {
		return fmt.Errorf("session: sealing token: %w", err)
	}

	now := m.now().UTC()
	rec := &model.SessionRecord{
		ID:          s.ID,
		SealedToken: sealed,
		Theme:       s.theme,
		CreatedAt:   now,
		UpdatedAt:   now,
		ExpiresAt:   now.Add(m.opts.TTL),
	}
	if err := m.repo.Save(ctx, rec); err != nil {
		return fmt.Errorf("session: saving %s: %w", s.ID, err)
	}
	return nil
}

// Prune deletes every expired session row and forgets the cached users
// that expired with them.
func (m *Manager) Prune(ctx context.Context) (int64, error) {
	now := m.now().UTC()
	n, err := m.repo.DeleteExpired(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("session: pruning: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for id, c := range m.users {
		if !now.Before(c.expires) {
			delete(m.users, id)
		}
	}
	return n, nil
}

// cachedUser is a validated user kept for as long as the session row
// written alongside it.
type cachedUser struct {
	user    *model.User
	expires time.Time
}

func (m *Manager) cachedUser(id string) *model.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.users[id]
	if !ok || !m.now().UTC().Before(c.expires) {
		return nil
	}
	return c.user
}

func (m *Manager) rememberUser(id string, u *model.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u == nil {
		delete(m.users, id)
		return
	}
	m.users[id] = cachedUser{user: u, expires: m.now().UTC().Add(m.opts.TTL)}
}
