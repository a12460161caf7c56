package service

import (
	"context"

	"github.com/sakif/portfolio-cms/internal/session"
)

// ThemeService resolves the dark/light flag: a stored choice wins,
// otherwise the browser's OS preference decides.
type ThemeService struct{}

func NewThemeService() *ThemeService { return &ThemeService{} }

func (t *ThemeService) IsDark(sess *session.Session, prefersDark bool) bool {
	if sess == nil {
		return prefersDark
	}
	switch sess.Theme() {
	case session.ThemeDark:
		return true
	case session.ThemeLight:
		return false
	}
	return prefersDark
}

// Toggle flips the effective theme and persists the explicit choice.
func (t *ThemeService) Toggle(ctx context.Context, sess *session.Session, prefersDark bool) (bool, error) {
	dark := !t.IsDark(sess, prefersDark)
	theme := session.ThemeLight
	if dark {
		theme = session.ThemeDark
	}
	if err := sess.SetTheme(ctx, theme); err != nil {
		return !dark, err
	}
	return dark, nil
}
