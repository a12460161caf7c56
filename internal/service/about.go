package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/portfolio-cms/internal/model"
)

type AboutStore interface {
	Get(ctx context.Context) (*model.About, error)
	Update(ctx context.Context, about *model.About) (*model.About, error)
}

// AboutService edits the singleton about record.
type AboutService struct {
	api       AboutStore
	validator *Validator
	logger    *slog.Logger
}

func NewAboutService(api AboutStore, v *Validator, logger *slog.Logger) *AboutService {
	return &AboutService{api: api, validator: v, logger: logger}
}

func (s *AboutService) Get(ctx context.Context) (*model.About, error) {
	about, err := s.api.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/about: loading: %w", err)
	}
	return about, nil
}

// Save sends the whole record, stats included, in one PUT.
func (s *AboutService) Save(ctx context.Context, about *model.About) (*model.About, error) {
	if err := s.validator.Struct(about); err != nil {
		return nil, err
	}
	saved, err := s.api.Update(ctx, about)
	if err != nil {
		return nil, fmt.Errorf("service/about: saving: %w", err)
	}
	s.logger.Info("about section updated", slog.Int("stats", len(saved.Stats)))
	return saved, nil
}
