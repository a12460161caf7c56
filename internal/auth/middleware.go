package auth

import (
	"context"
	"net/http"

	"github.com/sakif/portfolio-cms/internal/session"
)

// Status is the admin authentication state of one browser session.
//
// It only moves loading → authenticated or loading → unauthenticated.
// There is no refresh and no expiry countdown: a token is trusted until
// the API answers 401.
type Status int

const (
	StatusLoading Status = iota
	StatusAuthenticated
	StatusUnauthenticated
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusAuthenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// StatusOf derives the status from what the session holds: no token means
// unauthenticated, a token without a validated user means the who-am-I
// check has not run yet.
func StatusOf(s *session.Session) Status {
	if s == nil || s.BearerToken() == "" {
		return StatusUnauthenticated
	}
	if s.User() == nil {
		return StatusLoading
	}
	return StatusAuthenticated
}

// Checker resolves a loading session into a final status.
type Checker interface {
	Check(ctx context.Context, s *session.Session) Status
}

// RequireAdmin guards the admin area. A loading session is resolved on the
// spot (the server-side stand-in for the spinner); anything but an
// authenticated result is redirected to loginPath before any admin content
// is rendered.
func RequireAdmin(checker Checker, loginPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := session.FromContext(r.Context())
			if sess == nil || checker.Check(r.Context(), sess) != StatusAuthenticated {
				http.Redirect(w, r, loginPath, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
