package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/sakif/portfolio-cms/internal/apiclient"
	"github.com/sakif/portfolio-cms/internal/apperror"
	"github.com/sakif/portfolio-cms/internal/auth"
	"github.com/sakif/portfolio-cms/internal/model"
	"github.com/sakif/portfolio-cms/internal/session"
)

type AuthAPI interface {
	Login(ctx context.Context, creds model.Credentials) (*model.AuthPayload, error)
	Register(ctx context.Context, reg model.Registration) (*model.AuthPayload, error)
	Me(ctx context.Context) (*model.User, error)
	UpdateProfile(ctx context.Context, p model.ProfileUpdate) error
	UpdatePassword(ctx context.Context, current, next string) error
}

// Result is the outcome of login and register. They never return an error:
// the message is what the form shows.
type Result struct {
	OK      bool
	Message string
	Fields  map[string]string
}

// AuthService owns every transition of a session's auth status:
//
//	loading         → authenticated    (who-am-I succeeded)
//	loading         → unauthenticated  (who-am-I failed, token discarded)
//	unauthenticated → authenticated    (login or register)
//	authenticated   → unauthenticated  (logout, or any 401 from the API)
type AuthService struct {
	api       AuthAPI
	validator *Validator
	logger    *slog.Logger
}

var _ auth.Checker = (*AuthService)(nil)

func NewAuthService(api AuthAPI, v *Validator, logger *slog.Logger) *AuthService {
	return &AuthService{api: api, validator: v, logger: logger}
}

// bind makes sess the token store for the API calls made with ctx.
func bind(ctx context.Context, sess *session.Session) context.Context {
	return apiclient.WithTokenStore(ctx, sess)
}

func (s *AuthService) Login(ctx context.Context, sess *session.Session, email, password string) Result {
	creds := model.Credentials{Email: strings.TrimSpace(email), Password: password}
	if err := s.validator.Struct(&creds); err != nil {
		return failed(err, "Login failed")
	}

	payload, err := s.api.Login(bind(ctx, sess), creds)
	if err != nil {
		s.logger.Info("login rejected", slog.String("email", creds.Email), slog.String("error", err.Error()))
		return failed(err, "Login failed")
	}
	return s.signIn(ctx, sess, payload, "Login successful!")
}

func (s *AuthService) Register(ctx context.Context, sess *session.Session, name, email, password string) Result {
	reg := model.Registration{
		Name:     strings.TrimSpace(name),
		Email:    strings.TrimSpace(email),
		Password: password,
	}
	if err := s.validator.Struct(&reg); err != nil {
		return failed(err, "Registration failed")
	}

	payload, err := s.api.Register(bind(ctx, sess), reg)
	if err != nil {
		s.logger.Info("registration rejected", slog.String("email", reg.Email), slog.String("error", err.Error()))
		return failed(err, "Registration failed")
	}
	return s.signIn(ctx, sess, payload, "Registration successful!")
}

func (s *AuthService) signIn(ctx context.Context, sess *session.Session, payload *model.AuthPayload, msg string) Result {
	user := payload.User
	if err := sess.SignIn(ctx, payload.Token, &user); err != nil {
		s.logger.Error("storing session token", slog.String("session", sess.ID), slog.String("error", err.Error()))
		return Result{Message: "Could not start your session. Please try again."}
	}
	s.logger.Info("admin signed in", slog.String("email", user.Email), slog.String("session", sess.ID))
	return Result{OK: true, Message: msg}
}

// Logout is local only: the API has no logout endpoint and the token is
// simply forgotten.
func (s *AuthService) Logout(ctx context.Context, sess *session.Session) error {
	return sess.ClearBearerToken(ctx)
}

// Check resolves a loading session. Any failure of the who-am-I call
// discards the token.
func (s *AuthService) Check(ctx context.Context, sess *session.Session) auth.Status {
	status := auth.StatusOf(sess)
	if status != auth.StatusLoading {
		return status
	}

	user, err := s.api.Me(bind(ctx, sess))
	if err != nil {
		s.logger.Info("stored token rejected", slog.String("session", sess.ID), slog.String("error", err.Error()))
		if err := sess.ClearBearerToken(ctx); err != nil {
			s.logger.Error("clearing session token", slog.String("session", sess.ID), slog.String("error", err.Error()))
		}
		return auth.StatusUnauthenticated
	}

	sess.SetUser(user)
	return auth.StatusOf(sess)
}

// UpdateProfile saves name and email, then re-runs the who-am-I check so
// the cached user reflects the change.
func (s *AuthService) UpdateProfile(ctx context.Context, sess *session.Session, name, email string) error {
	p := model.ProfileUpdate{Name: strings.TrimSpace(name), Email: strings.TrimSpace(email)}
	if err := s.validator.Struct(&p); err != nil {
		return err
	}

	ctx = bind(ctx, sess)
	if err := s.api.UpdateProfile(ctx, p); err != nil {
		return err
	}

	user, err := s.api.Me(ctx)
	if err != nil {
		return err
	}
	sess.SetUser(user)
	return nil
}

// ChangePassword refuses locally, without a request, when the confirmation
// does not match. The confirmation is never sent.
func (s *AuthService) ChangePassword(ctx context.Context, sess *session.Session, pc model.PasswordChange) error {
	if pc.NewPassword != pc.ConfirmPassword {
		return apperror.ValidationFailed("confirmPassword", "Passwords do not match")
	}
	if err := s.validator.Struct(&pc); err != nil {
		return err
	}
	if err := s.api.UpdatePassword(bind(ctx, sess), pc.CurrentPassword, pc.NewPassword); err != nil {
		return err
	}
	s.logger.Info("password changed", slog.String("session", sess.ID))
	return nil
}

func failed(err error, fallback string) Result {
	return Result{
		Message: apperror.Message(err, fallback),
		Fields:  apperror.FieldErrors(err),
	}
}
