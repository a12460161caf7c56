package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/portfolio-cms/internal/apperror"
	"github.com/sakif/portfolio-cms/internal/fetch"
	"github.com/sakif/portfolio-cms/internal/model"
	"github.com/sakif/portfolio-cms/internal/service"
)

// PortfolioHandler serves the public site.
type PortfolioHandler struct {
	*Base
	svc      *service.PortfolioService
	messages *service.MessageService
}

func NewPortfolioHandler(base *Base, svc *service.PortfolioService, messages *service.MessageService) *PortfolioHandler {
	return &PortfolioHandler{Base: base, svc: svc, messages: messages}
}

func (h *PortfolioHandler) Mount(r chi.Router) {
	r.Get("/", h.HandleHome)
	r.Get("/about", h.HandleAbout)
	r.Get("/projects", h.HandleProjects)
	r.Get("/projects/{slug}", h.HandleProject)
	r.Get("/blog", h.HandleBlog)
	r.Get("/blog/{slug}", h.HandlePost)
	r.Get("/contact", h.HandleContact)
	r.Post("/contact", h.HandleSubmitContact)
}

const loadFailed = "Failed to load portfolio data"

func (h *PortfolioHandler) HandleHome(w http.ResponseWriter, r *http.Request) {
	data, toasts, ok := loaded(h.Base, w, r, fetch.Load(r.Context(), h.svc.Home), loadFailed)
	if !ok {
		return
	}
	if data == nil {
		data = &service.HomePage{}
	}

	p := h.page(w, r, "", data.About.Subtitle, data)
	p.Toasts = append(p.Toasts, toasts...)
	h.render(w, r, http.StatusOK, "public/home", p)
}

func (h *PortfolioHandler) HandleAbout(w http.ResponseWriter, r *http.Request) {
	data, toasts, ok := loaded(h.Base, w, r, fetch.Load(r.Context(), h.svc.AboutPage), loadFailed)
	if !ok {
		return
	}
	if data == nil {
		data = &service.AboutPage{}
	}

	p := h.page(w, r, "About", "", data)
	p.Toasts = append(p.Toasts, toasts...)
	h.render(w, r, http.StatusOK, "public/about", p)
}

func (h *PortfolioHandler) HandleProjects(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	res := fetch.Load(r.Context(), func(ctx context.Context) (*service.ProjectsPage, error) {
		return h.svc.Projects(ctx, category)
	})
	data, toasts, ok := loaded(h.Base, w, r, res, loadFailed)
	if !ok {
		return
	}
	if data == nil {
		data = &service.ProjectsPage{Categories: []string{service.AllCategories}, Selected: service.AllCategories}
	}

	p := h.page(w, r, "Projects", "A selection of things I have built.", data)
	p.Toasts = append(p.Toasts, toasts...)
	h.render(w, r, http.StatusOK, "public/projects", p)
}

func (h *PortfolioHandler) HandleProject(w http.ResponseWriter, r *http.Request) {
	project, err := h.svc.Project(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.missing(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "public/project",
		h.page(w, r, project.Title, project.ShortDescription, project))
}

func (h *PortfolioHandler) HandleBlog(w http.ResponseWriter, r *http.Request) {
	posts, toasts, ok := loaded(h.Base, w, r, fetch.Load(r.Context(), h.svc.Blog), loadFailed)
	if !ok {
		return
	}

	p := h.page(w, r, "Blog", "Notes, tutorials and news.", posts)
	p.Toasts = append(p.Toasts, toasts...)
	h.render(w, r, http.StatusOK, "public/blog", p)
}

func (h *PortfolioHandler) HandlePost(w http.ResponseWriter, r *http.Request) {
	post, err := h.svc.Post(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.missing(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "public/post",
		h.page(w, r, post.Title, post.Excerpt, post))
}

// ContactView is the Data of the contact page. Form keeps the visitor's
// values after a failed send.
type ContactView struct {
	About *model.About
	Form  model.ContactMessage
}

func (h *PortfolioHandler) HandleContact(w http.ResponseWriter, r *http.Request) {
	h.showContact(w, r, http.StatusOK, model.ContactMessage{}, nil)
}

func (h *PortfolioHandler) HandleSubmitContact(w http.ResponseWriter, r *http.Request) {
	var msg model.ContactMessage
	if err := h.decode(r, &msg); err != nil {
		h.redirect(w, r, "/contact", model.Failure("Failed to send message. Please try again."))
		return
	}

	if err := h.messages.Submit(r.Context(), msg); err != nil {
		if h.expired(w, r, err) {
			return
		}
		status, _ := statusFor(err)
		if fields := apperror.FieldErrors(err); fields != nil {
			h.showContact(w, r, status, msg, fields)
			return
		}
		h.logger.Warn("sending contact message", slog.String("error", err.Error()))
		h.showContact(w, r, status, msg, nil, model.Failure("Failed to send message. Please try again."))
		return
	}
	h.redirect(w, r, "/contact", model.Success("Message sent successfully!"))
}

// showContact renders the form. Contact details come from the about
// record; without them the page still works.
func (h *PortfolioHandler) showContact(w http.ResponseWriter, r *http.Request, status int, form model.ContactMessage, fields map[string]string, toasts ...model.Toast) {
	about, err := h.svc.ContactInfo(r.Context())
	if h.expired(w, r, err) {
		return
	}
	if err != nil {
		h.logger.Debug("contact info unavailable", slog.String("error", err.Error()))
	}

	p := h.page(w, r, "Contact", "Get in touch about a project or just to say hello.", &ContactView{About: about, Form: form})
	p.Errors = fields
	p.Toasts = append(p.Toasts, toasts...)
	h.render(w, r, status, "public/contact", p)
}

// missing renders the not-found page for a missing slug, or an empty page
// with a toast for any other failure.
func (h *PortfolioHandler) missing(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, apperror.ErrNotFound):
		h.NotFound(w, r)
	case h.expired(w, r, err):
	default:
		h.logger.Warn("loading public page",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		status, _ := statusFor(err)
		p := h.page(w, r, "Unavailable", "", nil)
		p.Toasts = append(p.Toasts, model.Failure(loadFailed))
		h.render(w, r, status, "public/notfound", p)
	}
}

// NotFound is the router's fallback page.
func (b *Base) NotFound(w http.ResponseWriter, r *http.Request) {
	b.render(w, r, http.StatusNotFound, "public/notfound",
		b.page(w, r, "Page not found", "The page you are looking for does not exist.", nil))
}
