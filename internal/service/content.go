// Package service holds the admin and public page logic that sits between
// the HTTP handlers and the API client.
//
//	Handler (HTTP)  → parses forms, renders pages, sets toasts
//	Service         → validates DTOs, enforces confirmation, orchestrates calls
//	apiclient       → the single HTTP entry point to the REST API
//
// Services depend on small interfaces (Collection, Catalog, ...) rather
// than on *apiclient.Client, so tests can swap in the in-memory API or a
// hand-written fake. The bearer token is never passed around: it travels in
// the context as the request's apiclient.TokenStore.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/sakif/portfolio-cms/internal/apperror"
)

// Collection is the uniform CRUD surface of one API resource.
type Collection[T any] interface {
	List(ctx context.Context, query url.Values) ([]T, error)
	Get(ctx context.Context, id string) (*T, error)
	Create(ctx context.Context, item *T) (*T, error)
	Update(ctx context.Context, id string, body any) (*T, error)
	Delete(ctx context.Context, id string) error
}

// ContentService is the admin list/form/delete workflow shared by every
// editable resource.
type ContentService[T any] struct {
	api       Collection[T]
	validator *Validator
	noun      string
	listQuery url.Values
	lookup    func(ctx context.Context, id string) (*T, error)
	logger    *slog.Logger
}

type ContentOption[T any] func(*ContentService[T])

// WithListQuery sets the query the admin list is fetched with, e.g.
// visible=all so hidden projects still show up.
func WithListQuery[T any](q url.Values) ContentOption[T] {
	return func(s *ContentService[T]) { s.listQuery = q }
}

// WithLookup replaces Get, for resources whose id lookup lives at a
// separate path (GET /projects/id/:id).
func WithLookup[T any](fn func(ctx context.Context, id string) (*T, error)) ContentOption[T] {
	return func(s *ContentService[T]) { s.lookup = fn }
}

// NewContentService builds the workflow for one resource. noun is the
// singular, lowercase display name ("skill", "project").
func NewContentService[T any](api Collection[T], v *Validator, noun string, logger *slog.Logger, opts ...ContentOption[T]) *ContentService[T] {
	s := &ContentService[T]{
		api:       api,
		validator: v,
		noun:      noun,
		lookup:    api.Get,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *ContentService[T]) Noun() string { return s.noun }

func (s *ContentService[T]) List(ctx context.Context) ([]T, error) {
	items, err := s.api.List(ctx, s.listQuery)
	if err != nil {
		return nil, fmt.Errorf("service/%s: listing: %w", s.noun, err)
	}
	return items, nil
}

func (s *ContentService[T]) Get(ctx context.Context, id string) (*T, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", s.noun+" id is required")
	}
	item, err := s.lookup(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service/%s: loading %s: %w", s.noun, id, err)
	}
	return item, nil
}

// Save validates item and creates it when id is empty, otherwise replaces
// the record with that id. created reports which happened. A validation
// failure issues no request.
func (s *ContentService[T]) Save(ctx context.Context, id string, item *T) (saved *T, created bool, err error) {
	if err := s.validator.Struct(item); err != nil {
		return nil, false, err
	}

	id = strings.TrimSpace(id)
	if id == "" {
		saved, err = s.api.Create(ctx, item)
		created = true
	} else {
		saved, err = s.api.Update(ctx, id, item)
	}
	if err != nil {
		s.logger.Warn("save failed",
			slog.String("resource", s.noun),
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, created, fmt.Errorf("service/%s: saving: %w", s.noun, err)
	}

	s.logger.Info(s.noun+" saved",
		slog.String("id", keyOf(saved)),
		slog.Bool("created", created),
	)
	return saved, created, nil
}

// Delete removes the record only when the user confirmed; an unconfirmed
// call returns apperror.ErrNotConfirmed without touching the API.
func (s *ContentService[T]) Delete(ctx context.Context, id string, confirmed bool) error {
	if !confirmed {
		return apperror.NotConfirmed("deleting this " + s.noun)
	}
	if err := s.api.Delete(ctx, id); err != nil {
		return fmt.Errorf("service/%s: deleting %s: %w", s.noun, id, err)
	}
	s.logger.Info(s.noun+" deleted", slog.String("id", id))
	return nil
}

// keyOf returns the record's id for logging when T embeds model.Base.
func keyOf(v any) string {
	if k, ok := v.(interface{ Key() string }); ok {
		return k.Key()
	}
	return ""
}
