package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sakif/portfolio-cms/internal/auth"
	"github.com/sakif/portfolio-cms/internal/model"
	"github.com/sakif/portfolio-cms/internal/session"
)

// fakeChecker resolves loading sessions to a fixed result and counts calls.
type fakeChecker struct {
	result auth.Status
	calls  int
}

func (f *fakeChecker) Check(_ context.Context, s *session.Session) auth.Status {
	f.calls++
	if st := auth.StatusOf(s); st != auth.StatusLoading {
		return st
	}
	return f.result
}

func guarded(checker auth.Checker, sess *session.Session) *httptest.ResponseRecorder {
	h := auth.RequireAdmin(checker, "/admin/login")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("admin content"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/admin/skills", nil)
	if sess != nil {
		req = req.WithContext(session.NewContext(req.Context(), sess))
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, auth.StatusUnauthenticated, auth.StatusOf(nil))
	assert.Equal(t, auth.StatusUnauthenticated, auth.StatusOf(session.NewDetached("a", "", nil)))
	assert.Equal(t, auth.StatusLoading, auth.StatusOf(session.NewDetached("b", "tok", nil)))
	assert.Equal(t, auth.StatusAuthenticated, auth.StatusOf(session.NewDetached("c", "tok", &model.User{Name: "Admin"})))
}

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name         string
		sess         *session.Session
		checkResult  auth.Status
		wantStatus   int
		wantLocation string
		wantBody     string
	}{
		{
			name:         "no session redirects",
			sess:         nil,
			wantStatus:   http.StatusSeeOther,
			wantLocation: "/admin/login",
		},
		{
			name:         "no token redirects",
			sess:         session.NewDetached("s1", "", nil),
			wantStatus:   http.StatusSeeOther,
			wantLocation: "/admin/login",
		},
		{
			name:         "token rejected by check redirects",
			sess:         session.NewDetached("s2", "stale", nil),
			checkResult:  auth.StatusUnauthenticated,
			wantStatus:   http.StatusSeeOther,
			wantLocation: "/admin/login",
		},
		{
			name:        "token accepted by check renders",
			sess:        session.NewDetached("s3", "good", nil),
			checkResult: auth.StatusAuthenticated,
			wantStatus:  http.StatusOK,
			wantBody:    "admin content",
		},
		{
			name:       "already authenticated renders",
			sess:       session.NewDetached("s4", "good", &model.User{Name: "Admin"}),
			wantStatus: http.StatusOK,
			wantBody:   "admin content",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := guarded(&fakeChecker{result: tt.checkResult}, tt.sess)

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantLocation, rr.Header().Get("Location"))
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rr.Body.String())
			} else {
				assert.NotContains(t, rr.Body.String(), "admin content")
			}
		})
	}
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "loading", auth.StatusLoading.String())
	assert.Equal(t, "authenticated", auth.StatusAuthenticated.String())
	assert.Equal(t, "unauthenticated", auth.StatusUnauthenticated.String())
}
