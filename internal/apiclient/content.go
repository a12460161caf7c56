package apiclient

import (
	"context"
	"net/http"

	"github.com/sakif/portfolio-cms/internal/model"
)

// Catalog is a collection addressable both by public slug (GET /path/:slug)
// and by id (GET /path/id/:id).
type Catalog[T any] struct {
	*Resource[T]
}

func (c *Catalog[T]) BySlug(ctx context.Context, slug string) (*T, error) {
	return c.Lookup(ctx, slug)
}

func (c *Catalog[T]) ByID(ctx context.Context, id string) (*T, error) {
	return c.Lookup(ctx, "id", id)
}

func (c *Client) Skills() *Resource[model.Skill] {
	return NewResource[model.Skill](c, "skills")
}

func (c *Client) Experience() *Resource[model.Experience] {
	return NewResource[model.Experience](c, "experience")
}

func (c *Client) Testimonials() *Resource[model.Testimonial] {
	return NewResource[model.Testimonial](c, "testimonials")
}

func (c *Client) Services() *Resource[model.Service] {
	return NewResource[model.Service](c, "services")
}

func (c *Client) Projects() *Catalog[model.Project] {
	return &Catalog[model.Project]{NewResource[model.Project](c, "projects")}
}

func (c *Client) Blogs() *Catalog[model.BlogPost] {
	return &Catalog[model.BlogPost]{NewResource[model.BlogPost](c, "blogs")}
}

// Inbox is the /contact collection: public visitors create, the admin reads
// and moves messages between states.
type Inbox struct {
	*Resource[model.ContactMessage]
}

func (c *Client) Contact() *Inbox {
	return &Inbox{NewResource[model.ContactMessage](c, "contact")}
}

func (i *Inbox) MarkRead(ctx context.Context, id string) error {
	return i.Action(ctx, id, "read")
}

func (i *Inbox) Archive(ctx context.Context, id string) error {
	return i.Action(ctx, id, "archive")
}

// AboutAPI is the singleton /about record.
type AboutAPI struct {
	c *Client
}

func (c *Client) About() *AboutAPI { return &AboutAPI{c: c} }

func (a *AboutAPI) Get(ctx context.Context) (*model.About, error) {
	var about model.About
	if err := a.c.do(ctx, request{method: http.MethodGet, path: "/about"}, &about); err != nil {
		return nil, err
	}
	return &about, nil
}

func (a *AboutAPI) Update(ctx context.Context, about *model.About) (*model.About, error) {
	req, err := jsonRequest(http.MethodPut, "/about", about)
	if err != nil {
		return nil, err
	}
	var updated model.About
	if err := a.c.do(ctx, req, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}
