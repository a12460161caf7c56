package session

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/sakif/portfolio-cms/internal/model"
)

const flashCookie = "flash"

// Flash queues toasts for the next rendered page, typically right before a
// redirect. Toasts are not part of the stored session.
func (m *Manager) Flash(w http.ResponseWriter, toasts ...model.Toast) {
	if len(toasts) == 0 {
		return
	}
	b, err := json.Marshal(toasts)
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    base64.RawURLEncoding.EncodeToString(b),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		Secure:   m.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// PopFlash returns the queued toasts and clears them. A malformed cookie is
// dropped silently.
func (m *Manager) PopFlash(w http.ResponseWriter, r *http.Request) []model.Toast {
	c, err := r.Cookie(flashCookie)
	if err != nil || c.Value == "" {
		return nil
	}

	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	raw, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return nil
	}
	var toasts []model.Toast
	if err := json.Unmarshal(raw, &toasts); err != nil {
		return nil
	}
	return toasts
}
