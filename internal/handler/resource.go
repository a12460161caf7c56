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
)

// ResourceService is the slice of service.ContentService a ResourceHandler
// drives.
type ResourceService[T any] interface {
	Noun() string
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id string) (*T, error)
	Save(ctx context.Context, id string, item *T) (*T, bool, error)
	Delete(ctx context.Context, id string, confirmed bool) error
}

// ResourceConfig describes one admin list page.
//
// With Form empty the create/edit form is a modal over the list, opened
// with ?new=1 or ?edit=<id>. With Form set the form is its own page at
// <Path>/new and <Path>/edit/{id}.
type ResourceConfig[T any] struct {
	Title    string
	Path     string
	Template string
	Form     string
	New      func() T

	// Extra derives additional view data from the list, e.g. skill groups.
	Extra func(items []T) any
}

// ResourceView is the Data of list and form pages.
type ResourceView[T any] struct {
	Title    string
	Path     string
	Noun     string
	PageMode bool
	Items    []T
	Extra    any

	// Form is nil while no form is open. FormID is empty when creating.
	Form   *T
	FormID string
}

// Action is the URL the open form posts to.
func (v *ResourceView[T]) Action() string {
	switch {
	case v.PageMode && v.FormID == "":
		return v.Path + "/new"
	case v.PageMode:
		return v.Path + "/edit/" + v.FormID
	case v.FormID == "":
		return v.Path
	}
	return v.Path + "/" + v.FormID
}

// Editing reports whether the open form edits an existing record.
func (v *ResourceView[T]) Editing() bool { return v.FormID != "" }

// ResourceHandler serves list, create, edit and delete pages for one
// content collection.
type ResourceHandler[T any] struct {
	*Base
	svc    ResourceService[T]
	upload Uploader
	cfg    ResourceConfig[T]
}

func NewResourceHandler[T any](base *Base, svc ResourceService[T], upload Uploader, cfg ResourceConfig[T]) *ResourceHandler[T] {
	return &ResourceHandler[T]{Base: base, svc: svc, upload: upload, cfg: cfg}
}

// Mount registers the routes under the configured path. r is the admin
// router, so paths are absolute.
func (h *ResourceHandler[T]) Mount(r chi.Router) {
	p := h.cfg.Path
	r.Get(p, h.HandleList)
	if h.pageMode() {
		r.Get(p+"/new", h.HandleNew)
		r.Post(p+"/new", h.HandleSave)
		r.Get(p+"/edit/{id}", h.HandleEdit)
		r.Post(p+"/edit/{id}", h.HandleSave)
	} else {
		r.Post(p, h.HandleSave)
		r.Post(p+"/{id}", h.HandleSave)
	}
	r.Get(p+"/{id}/delete", h.HandleConfirmDelete)
	r.Post(p+"/{id}/delete", h.HandleDelete)
}

func (h *ResourceHandler[T]) pageMode() bool { return h.cfg.Form != "" }

func (h *ResourceHandler[T]) noun() string { return capitalize(h.svc.Noun()) }

func (h *ResourceHandler[T]) view(items []T) *ResourceView[T] {
	v := &ResourceView[T]{
		Title:    h.cfg.Title,
		Path:     h.cfg.Path,
		Noun:     h.svc.Noun(),
		PageMode: h.pageMode(),
		Items:    items,
	}
	if h.cfg.Extra != nil {
		v.Extra = h.cfg.Extra(items)
	}
	return v
}

// HandleList renders the list. In modal mode ?new=1 opens a blank form and
// ?edit=<id> opens the matching list entry; no extra request is made.
func (h *ResourceHandler[T]) HandleList(w http.ResponseWriter, r *http.Request) {
	items, toasts, ok := loaded(h.Base, w, r, fetch.Load(r.Context(), h.svc.List), "Failed to load "+h.cfg.Title)
	if !ok {
		return
	}

	v := h.view(items)
	p := h.page(w, r, h.cfg.Title, "", v)
	p.Toasts = append(p.Toasts, toasts...)

	if !h.pageMode() {
		q := r.URL.Query()
		switch {
		case q.Get("new") != "":
			blank := h.cfg.New()
			v.Form = &blank
		case q.Get("edit") != "":
			if item := findByKey(items, q.Get("edit")); item != nil {
				v.Form, v.FormID = item, q.Get("edit")
			} else {
				p.Toasts = append(p.Toasts, model.Failure(h.noun()+" not found"))
			}
		}
	}
	h.render(w, r, http.StatusOK, h.cfg.Template, p)
}

func (h *ResourceHandler[T]) HandleNew(w http.ResponseWriter, r *http.Request) {
	blank := h.cfg.New()
	h.renderForm(w, r, http.StatusOK, "", &blank, nil)
}

// HandleEdit prefills the form from a single GET.
func (h *ResourceHandler[T]) HandleEdit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	item, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if h.expired(w, r, err) {
			return
		}
		h.redirect(w, r, h.cfg.Path, failure(err, "Failed to load "+h.svc.Noun()))
		return
	}
	h.renderForm(w, r, http.StatusOK, id, item, nil)
}

// HandleSave runs the form action. Only "save" reaches the API; the list
// and image actions edit the posted values and show the form again.
func (h *ResourceHandler[T]) HandleSave(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var item T
	if err := h.decode(r, &item); err != nil {
		h.logger.Warn("decoding form", slog.String("path", r.URL.Path), slog.String("error", err.Error()))
		h.redirect(w, r, h.cfg.Path, model.Failure("Failed to save "+h.svc.Noun()))
		return
	}

	if a := parseAction(r.PostForm.Get("action")); a.Kind != actionSave {
		toast, err := applyAction(r, h.upload, &item, a)
		if h.expired(w, r, err) {
			return
		}
		var toasts []model.Toast
		if err != nil {
			toasts = append(toasts, failure(err, "Failed to upload image"))
		} else if toast != nil {
			toasts = append(toasts, *toast)
		}
		h.renderForm(w, r, http.StatusOK, id, &item, nil, toasts...)
		return
	}

	_, created, err := h.svc.Save(r.Context(), id, &item)
	if err != nil {
		if h.expired(w, r, err) {
			return
		}
		status, _ := statusFor(err)
		if fields := apperror.FieldErrors(err); fields != nil {
			h.renderForm(w, r, status, id, &item, fields)
			return
		}
		h.renderForm(w, r, status, id, &item, nil, model.Failure("Failed to save "+h.svc.Noun()))
		return
	}

	verb := " updated!"
	if created {
		verb = " created!"
	}
	h.redirect(w, r, h.cfg.Path, model.Success(h.noun()+verb))
}

// renderForm shows the form with item. In modal mode the list behind it is
// fetched again; a failure there only empties the list, except a 401,
// which ends the session.
func (h *ResourceHandler[T]) renderForm(w http.ResponseWriter, r *http.Request, status int, id string, item *T, fields map[string]string, toasts ...model.Toast) {
	var items []T
	name := h.cfg.Form
	if !h.pageMode() {
		name = h.cfg.Template
		var ok bool
		if items, _, ok = loaded(h.Base, w, r, fetch.Load(r.Context(), h.svc.List), ""); !ok {
			return
		}
	}

	v := h.view(items)
	v.Form, v.FormID = item, id

	title := "New " + h.svc.Noun()
	if id != "" {
		title = "Edit " + h.svc.Noun()
	}
	p := h.page(w, r, title, "", v)
	p.Errors = fields
	p.Toasts = append(p.Toasts, toasts...)
	h.render(w, r, status, name, p)
}

func (h *ResourceHandler[T]) HandleConfirmDelete(w http.ResponseWriter, r *http.Request) {
	h.confirm(w, r, ConfirmView{
		Title:   "Delete " + h.svc.Noun(),
		Message: "Are you sure you want to delete this " + h.svc.Noun() + "? This cannot be undone.",
		Action:  h.cfg.Path + "/" + chi.URLParam(r, "id") + "/delete",
		Cancel:  h.cfg.Path,
	})
}

// HandleDelete deletes only when the confirmation button was pressed.
func (h *ResourceHandler[T]) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		h.redirect(w, r, h.cfg.Path, model.Failure("Failed to delete "+h.svc.Noun()))
		return
	}

	err := h.svc.Delete(r.Context(), chi.URLParam(r, "id"), confirmed(r))
	switch {
	case err == nil:
		h.redirect(w, r, h.cfg.Path, model.Success(h.noun()+" deleted!"))
	case errors.Is(err, apperror.ErrNotConfirmed):
		h.redirect(w, r, h.cfg.Path)
	case h.expired(w, r, err):
	default:
		h.redirect(w, r, h.cfg.Path, model.Failure("Failed to delete "+h.svc.Noun()))
	}
}

// ConfirmView is the Data of the shared delete confirmation page.
type ConfirmView struct {
	Title   string
	Message string
	Action  string
	Cancel  string
}

func (b *Base) confirm(w http.ResponseWriter, r *http.Request, v ConfirmView) {
	b.render(w, r, http.StatusOK, "admin/confirm", b.page(w, r, v.Title, "", v))
}

func confirmed(r *http.Request) bool {
	return r.PostForm.Get("confirm") == "yes"
}

func findByKey[T any](items []T, id string) *T {
	for i := range items {
		if k, ok := any(&items[i]).(model.Keyed); ok && k.Key() == id {
			return &items[i]
		}
	}
	return nil
}
