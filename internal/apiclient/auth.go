package apiclient

import (
	"context"
	"net/http"

	"github.com/sakif/portfolio-cms/internal/model"
)

// AuthAPI wraps the /auth endpoints. Login and Register return the bearer
// token alongside the user; storing it is the caller's job.
type AuthAPI struct {
	c *Client
}

func (c *Client) Auth() *AuthAPI { return &AuthAPI{c: c} }

func (a *AuthAPI) Login(ctx context.Context, creds model.Credentials) (*model.AuthPayload, error) {
	return a.issue(ctx, "/auth/login", creds)
}

func (a *AuthAPI) Register(ctx context.Context, reg model.Registration) (*model.AuthPayload, error) {
	return a.issue(ctx, "/auth/register", reg)
}

func (a *AuthAPI) issue(ctx context.Context, path string, body any) (*model.AuthPayload, error) {
	req, err := jsonRequest(http.MethodPost, path, body)
	if err != nil {
		return nil, err
	}
	var payload model.AuthPayload
	if err := a.c.do(ctx, req, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// Me returns the user the current bearer token belongs to.
func (a *AuthAPI) Me(ctx context.Context) (*model.User, error) {
	var user model.User
	if err := a.c.do(ctx, request{method: http.MethodGet, path: "/auth/me"}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (a *AuthAPI) UpdateProfile(ctx context.Context, p model.ProfileUpdate) error {
	req, err := jsonRequest(http.MethodPut, "/auth/profile", p)
	if err != nil {
		return err
	}
	return a.c.do(ctx, req, nil)
}

// UpdatePassword sends only the current and new password; the confirmation
// never leaves the process.
func (a *AuthAPI) UpdatePassword(ctx context.Context, current, next string) error {
	req, err := jsonRequest(http.MethodPut, "/auth/password", map[string]string{
		"currentPassword": current,
		"newPassword":     next,
	})
	if err != nil {
		return err
	}
	return a.c.do(ctx, req, nil)
}
