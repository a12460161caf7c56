package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sakif/portfolio-cms/internal/apperror"
	"github.com/sakif/portfolio-cms/internal/fetch"
	"github.com/sakif/portfolio-cms/internal/model"
)

func TestLoaded(t *testing.T) {
	base, flash := newTestBase(t)
	ctx := context.Background()

	t.Run("ready passes the value through", func(t *testing.T) {
		rr := httptest.NewRecorder()
		res := fetch.Load(ctx, func(context.Context) ([]string, error) { return []string{"a"}, nil })

		v, toasts, ok := loaded(base, rr, httptest.NewRequest(http.MethodGet, "/blog", nil), res, "Failed")

		assert.True(t, ok)
		assert.Equal(t, []string{"a"}, v)
		assert.Empty(t, toasts)
	})

	t.Run("failure leaves the zero value and a toast", func(t *testing.T) {
		rr := httptest.NewRecorder()
		res := fetch.Load(ctx, func(context.Context) (*model.About, error) { return nil, errors.New("dial tcp") })

		v, toasts, ok := loaded(base, rr, httptest.NewRequest(http.MethodGet, "/about", nil), res, "Failed to load portfolio data")

		assert.True(t, ok)
		assert.Nil(t, v)
		assert.Equal(t, []model.Toast{model.Failure("Failed to load portfolio data")}, toasts)
	})

	t.Run("401 redirects to login", func(t *testing.T) {
		rr := httptest.NewRecorder()
		res := fetch.Load(ctx, func(context.Context) (int, error) { return 0, apperror.Unauthorized("expired") })

		_, _, ok := loaded(base, rr, httptest.NewRequest(http.MethodGet, "/projects", nil), res, "Failed")

		assert.False(t, ok)
		assert.Equal(t, http.StatusSeeOther, rr.Code)
		assert.Equal(t, LoginPath, rr.Header().Get("Location"))
		assert.Contains(t, flash.messages(), "Your session has expired. Please log in again.")
	})
}

func TestHandleTheme_UnreadableForm(t *testing.T) {
	base, flash := newTestBase(t)
	h := NewAuthHandler(base, nil)

	req := httptest.NewRequest(http.MethodPost, "/theme", strings.NewReader("not multipart"))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=xyz")
	req.Header.Set("Referer", "http://portfolio.test/blog")
	rr := httptest.NewRecorder()
	h.HandleTheme(rr, req)

	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/blog", rr.Header().Get("Location"))
	assert.Equal(t, []string{"Failed to change theme"}, flash.messages())
}
