package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/sakif/portfolio-cms/internal/model"
)

// Catalog is a Collection that can also be looked up by public slug and by
// id under /id/:id.
type Catalog[T any] interface {
	Collection[T]
	BySlug(ctx context.Context, slug string) (*T, error)
	ByID(ctx context.Context, id string) (*T, error)
}

// ProjectService is the admin project workflow. The admin list includes
// hidden projects.
type ProjectService struct {
	*ContentService[model.Project]
	api Catalog[model.Project]
}

func NewProjectService(api Catalog[model.Project], v *Validator, logger *slog.Logger) *ProjectService {
	return &ProjectService{
		ContentService: NewContentService[model.Project](api, v, "project", logger,
			WithListQuery[model.Project](url.Values{"visible": {"all"}}),
			WithLookup(api.ByID),
		),
		api: api,
	}
}

// ToggleVisibility flips isVisible with a partial PUT and returns the new
// value.
func (s *ProjectService) ToggleVisibility(ctx context.Context, id string, visible bool) (bool, error) {
	next := !visible
	if _, err := s.api.Update(ctx, id, map[string]bool{"isVisible": next}); err != nil {
		return visible, fmt.Errorf("service/project: toggling %s: %w", id, err)
	}
	s.logger.Info("project visibility changed", slog.String("id", id), slog.Bool("visible", next))
	return next, nil
}

// NewBlogService is the admin blog workflow; edits load by id.
func NewBlogService(api Catalog[model.BlogPost], v *Validator, logger *slog.Logger) *ContentService[model.BlogPost] {
	return NewContentService[model.BlogPost](api, v, "blog", logger, WithLookup(api.ByID))
}
