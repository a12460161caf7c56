package handler

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/sakif/portfolio-cms/internal/auth"
	"github.com/sakif/portfolio-cms/internal/model"
	"github.com/sakif/portfolio-cms/internal/service"
	"github.com/sakif/portfolio-cms/internal/session"
)

// AuthHandler serves login, register, logout and the theme switch.
//
// HANDLER RESPONSIBILITIES:
//   - HandleLoginPage / HandleLogin       → GET and POST /admin/login
//   - HandleRegisterPage / HandleRegister → GET and POST /admin/register
//   - HandleLogout                        → POST /admin/logout
//   - HandleTheme                         → POST /theme
type AuthHandler struct {
	*Base
	auth *service.AuthService
}

func NewAuthHandler(base *Base, auth *service.AuthService) *AuthHandler {
	return &AuthHandler{Base: base, auth: auth}
}

// AuthView is the Data of the login and register pages. Passwords are never
// echoed back.
type AuthView struct {
	Name  string
	Email string
}

// signedIn resolves the session so a stored token skips the login form.
func (h *AuthHandler) signedIn(r *http.Request) bool {
	sess := session.FromContext(r.Context())
	return sess != nil && h.auth.Check(r.Context(), sess) == auth.StatusAuthenticated
}

func (h *AuthHandler) HandleLoginPage(w http.ResponseWriter, r *http.Request) {
	if h.signedIn(r) {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}
	h.show(w, r, http.StatusOK, "auth/login", "Admin Login", &AuthView{}, service.Result{})
}

// HandleLogin signs in and sends the browser to the dashboard. A failure
// renders the form again with the API's message.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	email := r.PostForm.Get("email")

	res := h.auth.Login(r.Context(), session.FromContext(r.Context()), email, r.PostForm.Get("password"))
	if !res.OK {
		h.show(w, r, failedStatus(res), "auth/login", "Admin Login", &AuthView{Email: email}, res)
		return
	}
	h.redirect(w, r, "/admin", model.Success(res.Message))
}

func (h *AuthHandler) HandleRegisterPage(w http.ResponseWriter, r *http.Request) {
	if h.signedIn(r) {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}
	h.show(w, r, http.StatusOK, "auth/register", "Create Account", &AuthView{}, service.Result{})
}

func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	v := &AuthView{Name: r.PostForm.Get("name"), Email: r.PostForm.Get("email")}

	res := h.auth.Register(r.Context(), session.FromContext(r.Context()), v.Name, v.Email, r.PostForm.Get("password"))
	if !res.OK {
		h.show(w, r, failedStatus(res), "auth/register", "Create Account", v, res)
		return
	}
	h.redirect(w, r, "/admin", model.Success(res.Message))
}

// HandleLogout forgets the token. There is nothing to tell the API.
//
// HTTP: POST /admin/logout
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.Logout(r.Context(), session.FromContext(r.Context())); err != nil {
		h.logger.Error("logout: clearing session", slog.String("error", err.Error()))
	}
	h.redirect(w, r, LoginPath, model.Info("You have been logged out"))
}

// HandleTheme flips dark mode and returns to the page the toggle was on.
//
// HTTP: POST /theme
func (h *AuthHandler) HandleTheme(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		h.redirect(w, r, safeReturn(returnPath(r), "/"), model.Failure("Failed to change theme"))
		return
	}
	sess := session.FromContext(r.Context())
	if _, err := h.Base.theme.Toggle(r.Context(), sess, prefersDark(r)); err != nil {
		h.logger.Warn("saving theme", slog.String("error", err.Error()))
	}
	http.Redirect(w, r, safeReturn(returnPath(r), "/"), http.StatusSeeOther)
}

// returnPath prefers the form's "return" field and falls back to the path
// of the Referer.
func returnPath(r *http.Request) string {
	if v := r.PostForm.Get("return"); v != "" {
		return v
	}
	ref, err := url.Parse(r.Referer())
	if err != nil || ref.Path == "" {
		return ""
	}
	if ref.RawQuery != "" {
		return ref.Path + "?" + ref.RawQuery
	}
	return ref.Path
}

func (h *AuthHandler) show(w http.ResponseWriter, r *http.Request, status int, name, title string, v *AuthView, res service.Result) {
	p := h.page(w, r, title, "", v)
	p.Errors = res.Fields
	if !res.OK && res.Message != "" {
		p.Toasts = append(p.Toasts, model.Failure(res.Message))
	}
	h.render(w, r, status, name, p)
}

func failedStatus(res service.Result) int {
	if res.Fields != nil {
		return http.StatusUnprocessableEntity
	}
	return http.StatusUnauthorized
}
