package apiclient_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/portfolio-cms/internal/apiclient"
	"github.com/sakif/portfolio-cms/internal/apiclient/apitest"
	"github.com/sakif/portfolio-cms/internal/apperror"
	"github.com/sakif/portfolio-cms/internal/model"
)

type memoryStore struct {
	token   string
	cleared int
}

func (m *memoryStore) BearerToken() string { return m.token }

func (m *memoryStore) ClearBearerToken(context.Context) error {
	m.token = ""
	m.cleared++
	return nil
}

func newClient(t *testing.T, api *apitest.Server, opts ...apiclient.Option) *apiclient.Client {
	t.Helper()
	c, err := apiclient.New(api.BaseURL(), slog.New(slog.NewTextHandler(io.Discard, nil)), opts...)
	require.NoError(t, err)
	return c
}

func withToken(token string) (context.Context, *memoryStore) {
	store := &memoryStore{token: token}
	return apiclient.WithTokenStore(context.Background(), store), store
}

func TestNew_RejectsRelativeURL(t *testing.T) {
	_, err := apiclient.New("/api", slog.Default())
	assert.Error(t, err)
}

func TestBearerHeader(t *testing.T) {
	api := apitest.NewServer()
	defer api.Close()
	c := newClient(t, api)

	ctx, _ := withToken(apitest.AdminToken)
	_, err := c.Skills().List(ctx, nil)
	require.NoError(t, err)

	_, err = c.Skills().List(context.Background(), nil)
	require.NoError(t, err)

	reqs := api.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, "Bearer "+apitest.AdminToken, reqs[0].Auth)
	assert.Empty(t, reqs[1].Auth, "no store means no header")
}

func TestUnauthorized_ClearsToken(t *testing.T) {
	api := apitest.NewServer()
	defer api.Close()
	c := newClient(t, api)

	ctx, store := withToken("stale")
	_, err := c.Auth().Me(ctx)

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrUnauthorized))
	assert.Empty(t, store.token)
	assert.Equal(t, 1, store.cleared)
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		target error
	}{
		{"not found", http.StatusNotFound, apperror.ErrNotFound},
		{"bad request", http.StatusBadRequest, apperror.ErrValidation},
		{"unprocessable", http.StatusUnprocessableEntity, apperror.ErrValidation},
		{"conflict", http.StatusConflict, apperror.ErrConflict},
		{"forbidden", http.StatusForbidden, apperror.ErrForbidden},
		{"server error", http.StatusInternalServerError, apperror.ErrUpstream},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := apitest.NewServer()
			defer api.Close()
			api.Fail(http.MethodGet, "/skills", tt.status, "server says no")

			_, err := newClient(t, api).Skills().List(context.Background(), nil)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.target), "got %v", err)
			assert.Equal(t, "server says no", apperror.Message(err, "fallback"))
		})
	}
}

func TestNetworkFailure(t *testing.T) {
	dead := httptest.NewServer(http.NotFoundHandler())
	base := dead.URL + "/api"
	dead.Close()

	c, err := apiclient.New(base, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	_, err = c.About().Get(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrUpstream))
}

func TestMissingEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"items":[]}`))
	}))
	defer srv.Close()

	c, err := apiclient.New(srv.URL, slog.Default())
	require.NoError(t, err)

	_, err = c.Skills().List(context.Background(), nil)
	assert.True(t, errors.Is(err, apperror.ErrUpstream))
}

func TestResourceCRUD(t *testing.T) {
	api := apitest.NewServer()
	defer api.Close()
	c := newClient(t, api)
	ctx, _ := withToken(apitest.AdminToken)

	created, err := c.Skills().Create(ctx, &model.Skill{Name: "Go", Category: model.SkillBackend, Proficiency: 90})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	created.Proficiency = 95
	updated, err := c.Skills().Update(ctx, created.ID, created)
	require.NoError(t, err)
	assert.Equal(t, 95, updated.Proficiency)

	got, err := c.Skills().Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Go", got.Name)

	require.NoError(t, c.Skills().Delete(ctx, created.ID))
	items, err := c.Skills().List(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestCatalogLookups(t *testing.T) {
	api := apitest.NewServer()
	defer api.Close()
	ids := api.Seed("projects", model.Project{Title: "My Site", Description: "d", IsVisible: true})
	c := newClient(t, api)

	bySlug, err := c.Projects().BySlug(context.Background(), "my-site")
	require.NoError(t, err)
	assert.Equal(t, ids[0], bySlug.ID)

	byID, err := c.Projects().ByID(context.Background(), ids[0])
	require.NoError(t, err)
	assert.Equal(t, "my-site", byID.Slug)

	assert.Equal(t, 1, api.Count(http.MethodGet, "/projects/id/"+ids[0]))
}

func TestListQuery(t *testing.T) {
	api := apitest.NewServer()
	defer api.Close()
	api.Seed("projects",
		model.Project{Title: "Shown", Description: "d", IsVisible: true, Featured: true},
		model.Project{Title: "Hidden", Description: "d"},
	)
	c := newClient(t, api)

	public, err := c.Projects().List(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, public, 1)

	all, err := c.Projects().List(context.Background(), url.Values{"visible": {"all"}})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestInboxTransitions(t *testing.T) {
	api := apitest.NewServer()
	defer api.Close()
	ids := api.Seed("contact", model.ContactMessage{Name: "A", Email: "a@b", Message: "hi"})
	c := newClient(t, api)
	ctx, _ := withToken(apitest.AdminToken)

	require.NoError(t, c.Contact().MarkRead(ctx, ids[0]))
	require.NoError(t, c.Contact().Archive(ctx, ids[0]))

	doc := api.Item("contact", ids[0])
	assert.Equal(t, true, doc["isRead"])
	assert.Equal(t, true, doc["isArchived"])
}

func TestAuthFlow(t *testing.T) {
	api := apitest.NewServer()
	defer api.Close()
	c := newClient(t, api)

	_, err := c.Auth().Login(context.Background(), model.Credentials{Email: apitest.AdminEmail, Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, "Invalid credentials", apperror.Message(err, ""))

	payload, err := c.Auth().Login(context.Background(), model.Credentials{Email: apitest.AdminEmail, Password: apitest.AdminPassword})
	require.NoError(t, err)
	assert.Equal(t, apitest.AdminToken, payload.Token)
	assert.Equal(t, apitest.AdminEmail, payload.Email)

	ctx, _ := withToken(payload.Token)
	require.NoError(t, c.Auth().UpdatePassword(ctx, apitest.AdminPassword, "newpass"))
	assert.Error(t, c.Auth().UpdatePassword(ctx, apitest.AdminPassword, "again"))
}

func TestUploads(t *testing.T) {
	api := apitest.NewServer()
	defer api.Close()
	c := newClient(t, api)
	ctx, _ := withToken(apitest.AdminToken)

	one, err := c.Upload().Image(ctx, apiclient.File{Name: "a.png", ContentType: "image/png", Body: strings.NewReader("png")})
	require.NoError(t, err)
	assert.Equal(t, "a.png", one.Filename)
	assert.NotEmpty(t, one.URL)

	many, err := c.Upload().Images(ctx, []apiclient.File{
		{Name: "b.png", Body: strings.NewReader("b")},
		{Name: "c.png", Body: strings.NewReader("c")},
	})
	require.NoError(t, err)
	assert.Len(t, many, 2)

	media, err := c.Upload().Media(ctx)
	require.NoError(t, err)
	assert.Len(t, media, 3)

	require.NoError(t, c.Upload().Delete(ctx, one.ID))
	media, err = c.Upload().Media(ctx)
	require.NoError(t, err)
	assert.Len(t, media, 2)
}

func TestMetrics(t *testing.T) {
	api := apitest.NewServer()
	defer api.Close()
	reg := prometheus.NewRegistry()
	c := newClient(t, api, apiclient.WithMetrics(apiclient.NewMetrics(reg)))

	_, err := c.Projects().ByID(context.Background(), "missing")
	require.Error(t, err)

	n, err := testutil.GatherAndCount(reg, "portfolio_api_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
