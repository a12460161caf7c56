package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/sakif/portfolio-cms/internal/apperror"
	"github.com/sakif/portfolio-cms/internal/config"
	"github.com/sakif/portfolio-cms/internal/model"
	"github.com/sakif/portfolio-cms/internal/service"
	"github.com/sakif/portfolio-cms/web"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// flashRecorder stands in for the session manager's flash cookie.
type flashRecorder struct {
	queued  []model.Toast
	pending []model.Toast
}

func (f *flashRecorder) Flash(_ http.ResponseWriter, toasts ...model.Toast) {
	f.queued = append(f.queued, toasts...)
}

func (f *flashRecorder) PopFlash(http.ResponseWriter, *http.Request) []model.Toast {
	t := f.pending
	f.pending = nil
	return t
}

func (f *flashRecorder) messages() []string {
	out := make([]string, 0, len(f.queued))
	for _, t := range f.queued {
		out = append(out, t.Message)
	}
	return out
}

func newTestBase(t *testing.T) (*Base, *flashRecorder) {
	t.Helper()
	renderer, err := NewRenderer(web.Templates())
	require.NoError(t, err)

	flash := &flashRecorder{}
	site := config.Site{Name: "Test Portfolio", URL: "http://portfolio.test", Author: "Tester", Description: "A test site"}
	return NewBase(renderer, flash, service.NewThemeService(), site, discardLogger()), flash
}

// fakeService is an in-memory ResourceService.
type fakeService[T any] struct {
	noun    string
	items   []T
	listErr error
	getErr  error
	saveErr error
	delErr  error

	saved   []*T
	saveIDs []string
	deleted []string
}

func (f *fakeService[T]) Noun() string { return f.noun }

func (f *fakeService[T]) List(context.Context) ([]T, error) {
	return f.items, f.listErr
}

func (f *fakeService[T]) Get(_ context.Context, id string) (*T, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if item := findByKey(f.items, id); item != nil {
		return item, nil
	}
	return nil, apperror.NotFound(f.noun, id)
}

func (f *fakeService[T]) Save(_ context.Context, id string, item *T) (*T, bool, error) {
	if f.saveErr != nil {
		return nil, false, f.saveErr
	}
	f.saved = append(f.saved, item)
	f.saveIDs = append(f.saveIDs, id)
	return item, id == "", nil
}

func (f *fakeService[T]) Delete(_ context.Context, id string, confirmed bool) error {
	if !confirmed {
		return apperror.NotConfirmed("delete " + f.noun)
	}
	if f.delErr != nil {
		return f.delErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func serve(h interface{ Mount(chi.Router) }, req *http.Request) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	h.Mount(r)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func postForm(path string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func skill(id, name string) model.Skill {
	s := model.NewSkill()
	s.ID = id
	s.Name = name
	return s
}
