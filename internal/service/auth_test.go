package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/portfolio-cms/internal/apiclient/apitest"
	"github.com/sakif/portfolio-cms/internal/apperror"
	"github.com/sakif/portfolio-cms/internal/auth"
	"github.com/sakif/portfolio-cms/internal/model"
	"github.com/sakif/portfolio-cms/internal/session"
)

func newAuth(t *testing.T) (*apitest.Server, *AuthService) {
	api, client := newAPI(t)
	return api, NewAuthService(client.Auth(), NewValidator(), discardLogger())
}

func TestLogin(t *testing.T) {
	tests := []struct {
		name        string
		email       string
		password    string
		setup       func(*apitest.Server)
		wantOK      bool
		wantMessage string
	}{
		{
			name: "valid credentials", email: apitest.AdminEmail, password: apitest.AdminPassword,
			wantOK: true, wantMessage: "Login successful!",
		},
		{
			name: "server message is shown", email: apitest.AdminEmail, password: "nope",
			wantMessage: "Invalid credentials",
		},
		{
			name: "fallback when the server says nothing", email: apitest.AdminEmail, password: apitest.AdminPassword,
			setup:       func(api *apitest.Server) { api.Fail(http.MethodPost, "/auth/login", http.StatusInternalServerError, "") },
			wantMessage: "Login failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api, svc := newAuth(t)
			if tt.setup != nil {
				tt.setup(api)
			}
			sess := session.NewDetached("s1", "", nil)

			res := svc.Login(context.Background(), sess, tt.email, tt.password)

			assert.Equal(t, tt.wantOK, res.OK)
			assert.Equal(t, tt.wantMessage, res.Message)
			if tt.wantOK {
				assert.Equal(t, apitest.AdminToken, sess.BearerToken())
				assert.Equal(t, auth.StatusAuthenticated, auth.StatusOf(sess))
			} else {
				assert.Empty(t, sess.BearerToken())
			}
		})
	}
}

func TestLogin_InvalidFormIssuesNoRequest(t *testing.T) {
	api, svc := newAuth(t)

	res := svc.Login(context.Background(), session.NewDetached("s1", "", nil), "not-an-email", "")

	assert.False(t, res.OK)
	assert.Contains(t, res.Fields, "email")
	assert.Contains(t, res.Fields, "password")
	assert.Empty(t, api.Requests())
}

func TestRegister(t *testing.T) {
	api, svc := newAuth(t)
	sess := session.NewDetached("s1", "", nil)

	res := svc.Register(context.Background(), sess, "New Admin", "new@example.com", "secret1")
	require.True(t, res.OK, res.Message)
	assert.NotEmpty(t, sess.BearerToken())
	assert.Equal(t, "New Admin", sess.User().Name)

	res = svc.Register(context.Background(), session.NewDetached("s2", "", nil), "Dup", "new@example.com", "secret1")
	assert.False(t, res.OK)
	assert.Equal(t, "User already exists", res.Message)
	assert.Equal(t, 2, api.Count(http.MethodPost, "/auth/register"))
}

func TestCheck(t *testing.T) {
	t.Run("no token is unauthenticated without a request", func(t *testing.T) {
		api, svc := newAuth(t)
		assert.Equal(t, auth.StatusUnauthenticated, svc.Check(context.Background(), session.NewDetached("s", "", nil)))
		assert.Empty(t, api.Requests())
	})

	t.Run("valid token resolves to authenticated", func(t *testing.T) {
		_, svc := newAuth(t)
		sess := session.NewDetached("s", apitest.AdminToken, nil)
		require.Equal(t, auth.StatusLoading, auth.StatusOf(sess))

		assert.Equal(t, auth.StatusAuthenticated, svc.Check(context.Background(), sess))
		assert.Equal(t, apitest.AdminEmail, sess.User().Email)
	})

	t.Run("rejected token is discarded", func(t *testing.T) {
		api, svc := newAuth(t)
		api.Revoke()
		sess := session.NewDetached("s", apitest.AdminToken, nil)

		assert.Equal(t, auth.StatusUnauthenticated, svc.Check(context.Background(), sess))
		assert.Empty(t, sess.BearerToken())
	})

	t.Run("any failure discards the token", func(t *testing.T) {
		api, svc := newAuth(t)
		api.Fail(http.MethodGet, "/auth/me", http.StatusInternalServerError, "db down")
		sess := session.NewDetached("s", apitest.AdminToken, nil)

		assert.Equal(t, auth.StatusUnauthenticated, svc.Check(context.Background(), sess))
		assert.Empty(t, sess.BearerToken())
	})

	t.Run("authenticated session skips the request", func(t *testing.T) {
		api, svc := newAuth(t)
		sess := session.NewDetached("s", apitest.AdminToken, &model.User{Name: "Admin"})
		assert.Equal(t, auth.StatusAuthenticated, svc.Check(context.Background(), sess))
		assert.Empty(t, api.Requests())
	})
}

func TestLogout(t *testing.T) {
	api, svc := newAuth(t)
	sess := session.NewDetached("s", apitest.AdminToken, &model.User{Name: "Admin"})

	require.NoError(t, svc.Logout(context.Background(), sess))
	assert.Equal(t, auth.StatusUnauthenticated, auth.StatusOf(sess))
	assert.Nil(t, sess.User())
	assert.Empty(t, api.Requests(), "logout is local only")
}

func TestUpdateProfile_RefreshesUser(t *testing.T) {
	_, svc := newAuth(t)
	sess := session.NewDetached("s", apitest.AdminToken, &model.User{Name: "Admin"})

	require.NoError(t, svc.UpdateProfile(context.Background(), sess, "Renamed", apitest.AdminEmail))
	assert.Equal(t, "Renamed", sess.User().Name)
}

func TestChangePassword(t *testing.T) {
	t.Run("mismatch issues no request", func(t *testing.T) {
		api, svc := newAuth(t)
		sess := session.NewDetached("s", apitest.AdminToken, nil)

		err := svc.ChangePassword(context.Background(), sess, model.PasswordChange{
			CurrentPassword: apitest.AdminPassword, NewPassword: "newpass", ConfirmPassword: "other",
		})
		require.Error(t, err)
		assert.Equal(t, "Passwords do not match", apperror.Message(err, ""))
		assert.Empty(t, api.Requests())
	})

	t.Run("wrong current password shows server message", func(t *testing.T) {
		_, svc := newAuth(t)
		sess := session.NewDetached("s", apitest.AdminToken, nil)

		err := svc.ChangePassword(context.Background(), sess, model.PasswordChange{
			CurrentPassword: "wrong", NewPassword: "newpass", ConfirmPassword: "newpass",
		})
		assert.Equal(t, "Current password is incorrect", apperror.Message(err, ""))
	})

	t.Run("success", func(t *testing.T) {
		api, svc := newAuth(t)
		sess := session.NewDetached("s", apitest.AdminToken, nil)

		err := svc.ChangePassword(context.Background(), sess, model.PasswordChange{
			CurrentPassword: apitest.AdminPassword, NewPassword: "newpass", ConfirmPassword: "newpass",
		})
		require.NoError(t, err)
		assert.Equal(t, 1, api.Count(http.MethodPut, "/auth/password"))
	})

	t.Run("expired token is evicted", func(t *testing.T) {
		api, svc := newAuth(t)
		api.Revoke()
		sess := session.NewDetached("s", apitest.AdminToken, &model.User{Name: "Admin"})

		err := svc.ChangePassword(context.Background(), sess, model.PasswordChange{
			CurrentPassword: apitest.AdminPassword, NewPassword: "newpass", ConfirmPassword: "newpass",
		})
		assert.True(t, errors.Is(err, apperror.ErrUnauthorized))
		assert.Empty(t, sess.BearerToken())
	})
}
