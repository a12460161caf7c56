package handler

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"
	"time"
	"unicode"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/sakif/portfolio-cms/internal/config"
	"github.com/sakif/portfolio-cms/internal/model"
)

// Page is the value every template executes against. Handlers fill Data
// with a page-specific view.
type Page struct {
	Title       string
	Description string
	Path        string
	Site        config.Site
	Dark        bool
	User        *model.User
	Toasts      []model.Toast
	Errors      map[string]string
	Data        any
}

// Canonical is the absolute URL of the page for SEO tags.
func (p *Page) Canonical() string { return p.Site.URL + p.Path }

// FullTitle is "<Title> | <Site>", or just the site name on the home page.
func (p *Page) FullTitle() string {
	if p.Title == "" {
		return p.Site.Name
	}
	return p.Title + " | " + p.Site.Name
}

// Renderer holds one parsed template set per page. Each set is a clone of
// the shared layouts and partials plus the page file, so every page can
// define its own "content" block.
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses templates/layouts, templates/partials and every
// templates/pages/<area>/<name>.html in fsys. Pages are addressed as
// "<area>/<name>", e.g. "admin/skills".
func NewRenderer(fsys fs.FS) (*Renderer, error) {
	common, err := template.New("").Funcs(funcs()).ParseFS(fsys,
		"templates/layouts/*.html",
		"templates/partials/*.html",
	)
	if err != nil {
		return nil, fmt.Errorf("handler: parsing layouts: %w", err)
	}

	files, err := fs.Glob(fsys, "templates/pages/*/*.html")
	if err != nil {
		return nil, fmt.Errorf("handler: listing pages: %w", err)
	}

	r := &Renderer{pages: make(map[string]*template.Template, len(files))}
	for _, file := range files {
		t, err := common.Clone()
		if err != nil {
			return nil, fmt.Errorf("handler: cloning layouts for %s: %w", file, err)
		}
		if t, err = t.ParseFS(fsys, file); err != nil {
			return nil, fmt.Errorf("handler: parsing %s: %w", file, err)
		}
		name := strings.TrimSuffix(strings.TrimPrefix(file, "templates/pages/"), path.Ext(file))
		r.pages[name] = t
	}
	return r, nil
}

// Render executes the page into a buffer first so a template error never
// leaves a half-written response.
func (r *Renderer) Render(w io.Writer, name string, p *Page) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("handler: no template %q", name)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "base", p); err != nil {
		return fmt.Errorf("handler: rendering %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

func funcs() template.FuncMap {
	return template.FuncMap{
		"date":      formatDate,
		"dateInput": dateInput,
		"markdown":  renderMarkdown,
		"truncate":  truncate,
		"title":     capitalize,
		"dict":      dict,
		"seq":       seq,
		"add":       func(a, b int) int { return a + b },
		"join":      strings.Join,
		"options":   options,
		"stars":     stars,
		"initial": func(s string) string {
			for _, r := range s {
				return string(unicode.ToUpper(r))
			}
			return "?"
		},
	}
}

// formatDate accepts the shapes dates arrive in: *time.Time from Base and
// RFC 3339 or YYYY-MM-DD strings from experience records.
func formatDate(v any) string {
	switch t := v.(type) {
	case *time.Time:
		if t == nil {
			return ""
		}
		return t.Format("Jan 2, 2006")
	case time.Time:
		return t.Format("Jan 2, 2006")
	case string:
		for _, layout := range []string{time.RFC3339, "2006-01-02"} {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed.Format("Jan 2006")
			}
		}
		if len(t) >= 10 {
			if parsed, err := time.Parse("2006-01-02", t[:10]); err == nil {
				return parsed.Format("Jan 2006")
			}
		}
		return t
	}
	return ""
}

// dateInput trims an API date to the YYYY-MM-DD an <input type="date">
// expects.
func dateInput(s string) string {
	if len(s) >= 10 {
		return s[:10]
	}
	return s
}

// renderMarkdown converts post content to HTML. goldmark escapes raw HTML
// unless told otherwise, so the result is safe to embed.
func renderMarkdown(src string) template.HTML {
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(buf.String()) //nolint:gosec
}

func truncate(n int, s string) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return strings.TrimSpace(string(runes[:n])) + "…"
}

func capitalize(s string) string {
	for i, r := range s {
		return string(unicode.ToUpper(r)) + s[i+len(string(r)):]
	}
	return s
}

// dict builds a map from alternating keys and values so partials can take
// several arguments.
func dict(pairs ...any) (map[string]any, error) {
	if len(pairs)%2 != 0 {
		return nil, fmt.Errorf("dict: odd number of arguments")
	}
	m := make(map[string]any, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict: key %v is not a string", pairs[i])
		}
		m[key] = pairs[i+1]
	}
	return m, nil
}

// seq returns 1..n, for star ratings.
func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

// options returns a named choice list for <select> fields.
func options(name string) []model.Option {
	switch name {
	case "skill":
		return model.SkillCategories
	case "project":
		return model.ProjectCategories
	case "blog":
		return model.BlogCategories
	case "experience":
		return model.ExperienceTypes
	}
	return nil
}

// stars returns five flags, the first n set, for a rating display.
func stars(n int) []bool {
	out := make([]bool, 5)
	for i := range out {
		out[i] = i < n
	}
	return out
}
