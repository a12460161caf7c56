package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/portfolio-cms/internal/apperror"
	"github.com/sakif/portfolio-cms/internal/fetch"
	"github.com/sakif/portfolio-cms/internal/model"
	"github.com/sakif/portfolio-cms/internal/service"
	"github.com/sakif/portfolio-cms/internal/session"
)

// DashboardHandler serves the admin landing page.
type DashboardHandler struct {
	*Base
	svc *service.DashboardService
}

func NewDashboardHandler(base *Base, svc *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{Base: base, svc: svc}
}

func (h *DashboardHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	res := fetch.Load(r.Context(), h.svc.Summary)
	stats, toasts, ok := loaded(h.Base, w, r, res, "Failed to load dashboard data")
	if !ok {
		return
	}
	if stats == nil {
		stats = &service.DashboardStats{}
	}

	p := h.page(w, r, "Dashboard", "", stats)
	p.Toasts = append(p.Toasts, toasts...)
	h.render(w, r, http.StatusOK, "admin/dashboard", p)
}

// AboutHandler edits the singleton about record.
type AboutHandler struct {
	*Base
	svc    *service.AboutService
	upload Uploader
}

func NewAboutHandler(base *Base, svc *service.AboutService, upload Uploader) *AboutHandler {
	return &AboutHandler{Base: base, svc: svc, upload: upload}
}

func (h *AboutHandler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	about, toasts, ok := loaded(h.Base, w, r, fetch.Load(r.Context(), h.svc.Get), "Failed to load about section")
	if !ok {
		return
	}
	if about == nil {
		about = &model.About{}
	}
	h.show(w, r, http.StatusOK, about, nil, toasts...)
}

// HandleSave handles every button on the about form: stat rows and images
// are edited locally, "save" sends the whole record.
func (h *AboutHandler) HandleSave(w http.ResponseWriter, r *http.Request) {
	var about model.About
	if err := h.decode(r, &about); err != nil {
		h.redirect(w, r, "/admin/about", model.Failure("Failed to update about section"))
		return
	}

	if a := parseAction(r.PostForm.Get("action")); a.Kind != actionSave {
		toast, err := applyAction(r, h.upload, &about, a)
		if h.expired(w, r, err) {
			return
		}
		var toasts []model.Toast
		if err != nil {
			toasts = append(toasts, failure(err, "Failed to upload image"))
		} else if toast != nil {
			toasts = append(toasts, *toast)
		}
		h.show(w, r, http.StatusOK, &about, nil, toasts...)
		return
	}

	if _, err := h.svc.Save(r.Context(), &about); err != nil {
		if h.expired(w, r, err) {
			return
		}
		status, _ := statusFor(err)
		if fields := apperror.FieldErrors(err); fields != nil {
			h.show(w, r, status, &about, fields)
			return
		}
		h.show(w, r, status, &about, nil, model.Failure("Failed to update about section"))
		return
	}
	h.redirect(w, r, "/admin/about", model.Success("About section updated!"))
}

func (h *AboutHandler) show(w http.ResponseWriter, r *http.Request, status int, about *model.About, fields map[string]string, toasts ...model.Toast) {
	p := h.page(w, r, "About", "", about)
	p.Errors = fields
	p.Toasts = append(p.Toasts, toasts...)
	h.render(w, r, status, "admin/about", p)
}

// ProjectsHandler adds the visibility toggle to the generic project pages.
type ProjectsHandler struct {
	*ResourceHandler[model.Project]
	projects *service.ProjectService
}

func NewProjectsHandler(base *Base, svc *service.ProjectService, upload Uploader) *ProjectsHandler {
	return &ProjectsHandler{
		ResourceHandler: NewResourceHandler[model.Project](base, svc, upload, ResourceConfig[model.Project]{
			Title:    "Projects",
			Path:     "/admin/projects",
			Template: "admin/projects",
			Form:     "admin/project_form",
			New:      model.NewProject,
		}),
		projects: svc,
	}
}

func (h *ProjectsHandler) Mount(r chi.Router) {
	h.ResourceHandler.Mount(r)
	r.Post("/admin/projects/{id}/visibility", h.HandleToggleVisibility)
}

// HandleToggleVisibility flips isVisible. The form posts the value the
// list was showing.
func (h *ProjectsHandler) HandleToggleVisibility(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		h.redirect(w, r, "/admin/projects", model.Failure("Failed to update project"))
		return
	}
	current, _ := strconv.ParseBool(r.PostForm.Get("visible"))

	now, err := h.projects.ToggleVisibility(r.Context(), chi.URLParam(r, "id"), current)
	if err != nil {
		if h.expired(w, r, err) {
			return
		}
		h.redirect(w, r, "/admin/projects", failure(err, "Failed to update project"))
		return
	}

	msg := "Project hidden"
	if now {
		msg = "Project visible"
	}
	h.redirect(w, r, "/admin/projects", model.Success(msg))
}

// MessagesView is the Data of the inbox page.
type MessagesView struct {
	Archived bool
	Messages []model.ContactMessage
	Selected *model.ContactMessage
}

// MessagesHandler is the contact inbox.
type MessagesHandler struct {
	*Base
	svc *service.MessageService
}

func NewMessagesHandler(base *Base, svc *service.MessageService) *MessagesHandler {
	return &MessagesHandler{Base: base, svc: svc}
}

func (h *MessagesHandler) Mount(r chi.Router) {
	r.Get("/admin/messages", h.HandleList)
	r.Post("/admin/messages/{id}/archive", h.HandleArchive)
	r.Get("/admin/messages/{id}/delete", h.HandleConfirmDelete)
	r.Post("/admin/messages/{id}/delete", h.HandleDelete)
}

// HandleList shows one tab. ?open=<id> selects a message; an unread one is
// marked read first.
func (h *MessagesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	archived, open := q.Get("archived") == "true", q.Get("open")

	res := fetch.Load(r.Context(), func(ctx context.Context) (*MessagesView, error) {
		v := &MessagesView{Archived: archived}
		var err error
		if open != "" {
			v.Messages, v.Selected, err = h.svc.Open(ctx, archived, open)
		} else {
			v.Messages, err = h.svc.List(ctx, archived)
		}
		return v, err
	})
	v, toasts, ok := loaded(h.Base, w, r, res, "Failed to load messages")
	if !ok {
		return
	}
	if v == nil {
		v = &MessagesView{Archived: archived}
	}

	p := h.page(w, r, "Messages", "", v)
	p.Toasts = append(p.Toasts, toasts...)
	h.render(w, r, http.StatusOK, "admin/messages", p)
}

func (h *MessagesHandler) HandleArchive(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Archive(r.Context(), chi.URLParam(r, "id")); err != nil {
		if h.expired(w, r, err) {
			return
		}
		h.redirect(w, r, "/admin/messages", failure(err, "Failed to archive message"))
		return
	}
	h.redirect(w, r, "/admin/messages", model.Success("Message archived"))
}

func (h *MessagesHandler) HandleConfirmDelete(w http.ResponseWriter, r *http.Request) {
	h.confirm(w, r, ConfirmView{
		Title:   "Delete message",
		Message: "Are you sure you want to delete this message? This cannot be undone.",
		Action:  "/admin/messages/" + chi.URLParam(r, "id") + "/delete",
		Cancel:  "/admin/messages",
	})
}

func (h *MessagesHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		h.redirect(w, r, "/admin/messages", model.Failure("Failed to delete message"))
		return
	}
	err := h.svc.Delete(r.Context(), chi.URLParam(r, "id"), confirmed(r))
	switch {
	case err == nil:
		h.redirect(w, r, "/admin/messages", model.Success("Message deleted!"))
	case errors.Is(err, apperror.ErrNotConfirmed):
		h.redirect(w, r, "/admin/messages")
	case h.expired(w, r, err):
	default:
		h.redirect(w, r, "/admin/messages", failure(err, "Failed to delete message"))
	}
}

// MediaHandler is the media library.
type MediaHandler struct {
	*Base
	svc *service.MediaService
}

func NewMediaHandler(base *Base, svc *service.MediaService) *MediaHandler {
	return &MediaHandler{Base: base, svc: svc}
}

func (h *MediaHandler) Mount(r chi.Router) {
	r.Get("/admin/media", h.HandleList)
	r.Post("/admin/media", h.HandleUpload)
	r.Get("/admin/media/{id}/delete", h.HandleConfirmDelete)
	r.Post("/admin/media/{id}/delete", h.HandleDelete)
	r.Post("/admin/upload", h.HandleUploadJSON)
}

func (h *MediaHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	assets, toasts, ok := loaded(h.Base, w, r, fetch.Load(r.Context(), h.svc.List), "Failed to load media")
	if !ok {
		return
	}
	p := h.page(w, r, "Media", "", assets)
	p.Toasts = append(p.Toasts, toasts...)
	h.render(w, r, http.StatusOK, "admin/media", p)
}

// HandleUpload sends every chosen file in one request.
func (h *MediaHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		h.redirect(w, r, "/admin/media", model.Failure("Failed to upload images"))
		return
	}
	files, closeAll := formFiles(r, "files")
	defer closeAll()

	assets, err := h.svc.Upload(r.Context(), files)
	if err != nil {
		if h.expired(w, r, err) {
			return
		}
		h.redirect(w, r, "/admin/media", failure(err, "Failed to upload images"))
		return
	}

	msg := "Images uploaded!"
	if len(assets) == 1 {
		msg = "Image uploaded!"
	}
	h.redirect(w, r, "/admin/media", model.Success(msg))
}

func (h *MediaHandler) HandleConfirmDelete(w http.ResponseWriter, r *http.Request) {
	h.confirm(w, r, ConfirmView{
		Title:   "Delete image",
		Message: "Are you sure you want to delete this image? Pages using it will show a broken image.",
		Action:  "/admin/media/" + chi.URLParam(r, "id") + "/delete",
		Cancel:  "/admin/media",
	})
}

func (h *MediaHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		h.redirect(w, r, "/admin/media", model.Failure("Failed to delete image"))
		return
	}
	err := h.svc.Delete(r.Context(), chi.URLParam(r, "id"), confirmed(r))
	switch {
	case err == nil:
		h.redirect(w, r, "/admin/media", model.Success("Image deleted!"))
	case errors.Is(err, apperror.ErrNotConfirmed):
		h.redirect(w, r, "/admin/media")
	case h.expired(w, r, err):
	default:
		h.redirect(w, r, "/admin/media", failure(err, "Failed to delete image"))
	}
}

// HandleUploadJSON accepts one multipart "image" and answers {"url": ...}.
//
// HTTP: POST /admin/upload
func (h *MediaHandler) HandleUploadJSON(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		writeError(w, apperror.ValidationFailed("image", "Expected a multipart upload"))
		return
	}
	files, closeAll := formFiles(r, "image")
	defer closeAll()
	if len(files) == 0 {
		writeError(w, apperror.ValidationFailed("image", "Select an image to upload"))
		return
	}

	asset, err := h.svc.UploadImage(r.Context(), files[0])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"url": asset.URL})
}

// SettingsView is the Data of the settings page. Password fields are never
// echoed back.
type SettingsView struct {
	Profile model.ProfileUpdate
}

// SettingsHandler edits the signed-in admin's profile and password.
type SettingsHandler struct {
	*Base
	auth *service.AuthService
}

func NewSettingsHandler(base *Base, auth *service.AuthService) *SettingsHandler {
	return &SettingsHandler{Base: base, auth: auth}
}

func (h *SettingsHandler) Mount(r chi.Router) {
	r.Get("/admin/settings", h.HandleShow)
	r.Post("/admin/settings/profile", h.HandleProfile)
	r.Post("/admin/settings/password", h.HandlePassword)
}

func (h *SettingsHandler) HandleShow(w http.ResponseWriter, r *http.Request) {
	v := &SettingsView{}
	if u := session.FromContext(r.Context()).User(); u != nil {
		v.Profile = model.ProfileUpdate{Name: u.Name, Email: u.Email}
	}
	h.show(w, r, http.StatusOK, v, nil)
}

func (h *SettingsHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	var p model.ProfileUpdate
	if err := h.decode(r, &p); err != nil {
		h.redirect(w, r, "/admin/settings", model.Failure("Failed to update profile"))
		return
	}

	err := h.auth.UpdateProfile(r.Context(), session.FromContext(r.Context()), p.Name, p.Email)
	if err != nil {
		if h.expired(w, r, err) {
			return
		}
		h.fail(w, r, err, &SettingsView{Profile: p}, "Failed to update profile")
		return
	}
	h.redirect(w, r, "/admin/settings", model.Success("Profile updated!"))
}

func (h *SettingsHandler) HandlePassword(w http.ResponseWriter, r *http.Request) {
	var pc model.PasswordChange
	if err := h.decode(r, &pc); err != nil {
		h.redirect(w, r, "/admin/settings", model.Failure("Failed to update password"))
		return
	}

	sess := session.FromContext(r.Context())
	if err := h.auth.ChangePassword(r.Context(), sess, pc); err != nil {
		if h.expired(w, r, err) {
			return
		}
		v := &SettingsView{}
		if u := sess.User(); u != nil {
			v.Profile = model.ProfileUpdate{Name: u.Name, Email: u.Email}
		}
		h.fail(w, r, err, v, "Failed to update password")
		return
	}
	h.redirect(w, r, "/admin/settings", model.Success("Password updated!"))
}

// fail shows inline errors for local validation and a toast with the
// server's message otherwise.
func (h *SettingsHandler) fail(w http.ResponseWriter, r *http.Request, err error, v *SettingsView, fallback string) {
	status, _ := statusFor(err)
	if fields := apperror.FieldErrors(err); fields != nil {
		h.show(w, r, status, v, fields)
		return
	}
	h.show(w, r, status, v, nil, failure(err, fallback))
}

func (h *SettingsHandler) show(w http.ResponseWriter, r *http.Request, status int, v *SettingsView, fields map[string]string, toasts ...model.Toast) {
	p := h.page(w, r, "Settings", "", v)
	p.Errors = fields
	p.Toasts = append(p.Toasts, toasts...)
	h.render(w, r, status, "admin/settings", p)
}
