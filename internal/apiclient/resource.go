package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// Resource is a REST collection with the uniform CRUD shape:
// GET /path, GET /path/:id, POST /path, PUT /path/:id, DELETE /path/:id.
type Resource[T any] struct {
	c    *Client
	path string
}

func NewResource[T any](c *Client, path string) *Resource[T] {
	return &Resource[T]{c: c, path: "/" + strings.Trim(path, "/")}
}

func (r *Resource[T]) List(ctx context.Context, query url.Values) ([]T, error) {
	var items []T
	if err := r.c.do(ctx, request{method: http.MethodGet, path: r.path, query: query}, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *Resource[T]) Get(ctx context.Context, id string) (*T, error) {
	return r.Lookup(ctx, id)
}

// Lookup fetches one record under a sub-path, e.g. Lookup(ctx, "id", id)
// for GET /projects/id/:id.
func (r *Resource[T]) Lookup(ctx context.Context, parts ...string) (*T, error) {
	var item T
	if err := r.c.do(ctx, request{method: http.MethodGet, path: r.sub(parts...)}, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *Resource[T]) Create(ctx context.Context, item *T) (*T, error) {
	req, err := jsonRequest(http.MethodPost, r.path, item)
	if err != nil {
		return nil, err
	}
	var created T
	if err := r.c.do(ctx, req, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Update PUTs body to /path/:id. body is usually a *T, but partial payloads
// (a visibility toggle) are allowed.
func (r *Resource[T]) Update(ctx context.Context, id string, body any) (*T, error) {
	req, err := jsonRequest(http.MethodPut, r.sub(id), body)
	if err != nil {
		return nil, err
	}
	var updated T
	if err := r.c.do(ctx, req, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Action PUTs to a state-transition endpoint such as /contact/:id/read.
func (r *Resource[T]) Action(ctx context.Context, id, action string) error {
	return r.c.do(ctx, request{method: http.MethodPut, path: r.sub(id, action)}, nil)
}

func (r *Resource[T]) Delete(ctx context.Context, id string) error {
	return r.c.do(ctx, request{method: http.MethodDelete, path: r.sub(id)}, nil)
}

func (r *Resource[T]) sub(parts ...string) string {
	var b strings.Builder
	b.WriteString(r.path)
	for _, p := range parts {
		b.WriteByte('/')
		b.WriteString(segment(p))
	}
	return b.String()
}
