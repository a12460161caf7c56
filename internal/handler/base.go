// Package handler turns HTTP requests into service calls and rendered
// pages.
//
// Handlers parse forms, call one service, and either render a template or
// redirect. They hold no business rules: validation, confirmation and API
// calls all live in the service layer. Outcomes are reported to the user as
// toasts, queued in a flash cookie across redirects.
package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/form/v4"

	"github.com/sakif/portfolio-cms/internal/apperror"
	"github.com/sakif/portfolio-cms/internal/config"
	"github.com/sakif/portfolio-cms/internal/fetch"
	"github.com/sakif/portfolio-cms/internal/model"
	"github.com/sakif/portfolio-cms/internal/service"
	"github.com/sakif/portfolio-cms/internal/session"
)

const (
	LoginPath    = "/admin/login"
	RegisterPath = "/admin/register"

	// prefersColorScheme is the client hint browsers send once the server
	// has asked for it with Accept-CH.
	prefersColorScheme = "Sec-CH-Prefers-Color-Scheme"
)

// Flasher queues toasts across a redirect.
type Flasher interface {
	Flash(w http.ResponseWriter, toasts ...model.Toast)
	PopFlash(w http.ResponseWriter, r *http.Request) []model.Toast
}

// Base carries what every handler needs to render a page.
type Base struct {
	renderer *Renderer
	flash    Flasher
	theme    *service.ThemeService
	decoder  *form.Decoder
	site     config.Site
	logger   *slog.Logger
}

func NewBase(renderer *Renderer, flash Flasher, theme *service.ThemeService, site config.Site, logger *slog.Logger) *Base {
	dec := form.NewDecoder()
	dec.SetTagName("json")
	return &Base{
		renderer: renderer,
		flash:    flash,
		theme:    theme,
		decoder:  dec,
		site:     site,
		logger:   logger,
	}
}

// page assembles the common page state. Queued toasts are consumed here.
func (b *Base) page(w http.ResponseWriter, r *http.Request, title, description string, data any) *Page {
	sess := session.FromContext(r.Context())
	p := &Page{
		Title:       title,
		Description: description,
		Path:        r.URL.Path,
		Site:        b.site,
		Dark:        b.theme.IsDark(sess, prefersDark(r)),
		Toasts:      b.flash.PopFlash(w, r),
		Data:        data,
	}
	if p.Description == "" {
		p.Description = b.site.Description
	}
	if sess != nil {
		p.User = sess.User()
	}
	return p
}

func (b *Base) render(w http.ResponseWriter, r *http.Request, status int, name string, p *Page) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Accept-CH", prefersColorScheme)
	w.Header().Add("Vary", prefersColorScheme)

	var buf strings.Builder
	if err := b.renderer.Render(&buf, name, p); err != nil {
		b.logger.Error("failed to render template",
			slog.String("template", name),
			slog.String("error", err.Error()),
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(status)
	_, _ = w.Write([]byte(buf.String()))
}

// redirect queues toasts and sends the browser to path with 303, so a
// refresh after a POST does not resubmit.
func (b *Base) redirect(w http.ResponseWriter, r *http.Request, path string, toasts ...model.Toast) {
	b.flash.Flash(w, toasts...)
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// expired handles a 401 from the API: the token is already gone, so the
// browser is sent to the login page. Requests made from the login and
// register pages are left alone, those pages show the error themselves.
// It reports whether it wrote a response.
func (b *Base) expired(w http.ResponseWriter, r *http.Request, err error) bool {
	if !errors.Is(err, apperror.ErrUnauthorized) {
		return false
	}
	if r.URL.Path == LoginPath || r.URL.Path == RegisterPath {
		return false
	}
	b.redirect(w, r, LoginPath, model.Info("Your session has expired. Please log in again."))
	return true
}

// loaded settles a page load. A failed load leaves the zero value and
// returns a toast built from fallback; ok is false when the failure was a
// 401 and the browser has already been sent to the login page.
func loaded[T any](b *Base, w http.ResponseWriter, r *http.Request, res fetch.Result[T], fallback string) (v T, toasts []model.Toast, ok bool) {
	if res.State != fetch.Failed {
		return res.Value, nil, true
	}
	if b.expired(w, r, res.Err) {
		return res.Value, nil, false
	}
	b.logger.Warn("loading page data",
		slog.String("path", r.URL.Path),
		slog.String("error", res.Err.Error()),
	)
	return res.Value, []model.Toast{model.Failure(fallback)}, true
}

// decode parses the request form into dst using the JSON field names.
func (b *Base) decode(r *http.Request, dst any) error {
	if err := parseForm(r); err != nil {
		return err
	}
	return b.decoder.Decode(dst, r.PostForm)
}

// parseForm handles both urlencoded and multipart bodies.
func parseForm(r *http.Request) error {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if r.MultipartForm != nil {
			return nil
		}
		return r.ParseMultipartForm(maxUploadMemory)
	}
	return r.ParseForm()
}

// prefersDark reads the OS color scheme client hint. The header value is a
// quoted string: "dark" or "light".
func prefersDark(r *http.Request) bool {
	return strings.Trim(r.Header.Get(prefersColorScheme), `" `) == "dark"
}

// safeReturn keeps redirects on this site.
func safeReturn(target, fallback string) string {
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.Contains(target, `\`) {
		return fallback
	}
	return target
}

// failure builds the toast for a failed action: the API's message when it
// sent one, else the fallback.
func failure(err error, fallback string) model.Toast {
	return model.Failure(apperror.Message(err, fallback))
}
