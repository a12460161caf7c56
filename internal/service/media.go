package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/portfolio-cms/internal/apiclient"
	"github.com/sakif/portfolio-cms/internal/apperror"
	"github.com/sakif/portfolio-cms/internal/model"
)

type MediaStore interface {
	Image(ctx context.Context, f apiclient.File) (*model.MediaAsset, error)
	Images(ctx context.Context, files []apiclient.File) ([]model.MediaAsset, error)
	Media(ctx context.Context) ([]model.MediaAsset, error)
	Delete(ctx context.Context, id string) error
}

type MediaService struct {
	api    MediaStore
	logger *slog.Logger
}

func NewMediaService(api MediaStore, logger *slog.Logger) *MediaService {
	return &MediaService{api: api, logger: logger}
}

func (s *MediaService) List(ctx context.Context) ([]model.MediaAsset, error) {
	assets, err := s.api.Media(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/media: listing: %w", err)
	}
	return assets, nil
}

// Upload sends one file to /upload/image and several to /upload/images.
// No files is a validation error and issues no request.
func (s *MediaService) Upload(ctx context.Context, files []apiclient.File) ([]model.MediaAsset, error) {
	switch len(files) {
	case 0:
		return nil, apperror.ValidationFailed("files", "Select at least one file")
	case 1:
		asset, err := s.UploadImage(ctx, files[0])
		if err != nil {
			return nil, err
		}
		return []model.MediaAsset{*asset}, nil
	}

	assets, err := s.api.Images(ctx, files)
	if err != nil {
		return nil, fmt.Errorf("service/media: uploading %d images: %w", len(files), err)
	}
	s.logger.Info("images uploaded", slog.Int("count", len(assets)))
	return assets, nil
}

// UploadImage uploads a single image, e.g. a form's thumbnail.
func (s *MediaService) UploadImage(ctx context.Context, f apiclient.File) (*model.MediaAsset, error) {
	asset, err := s.api.Image(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("service/media: uploading %s: %w", f.Name, err)
	}
	s.logger.Info("image uploaded", slog.String("url", asset.URL))
	return asset, nil
}

func (s *MediaService) Delete(ctx context.Context, id string, confirmed bool) error {
	if !confirmed {
		return apperror.NotConfirmed("deleting this image")
	}
	if err := s.api.Delete(ctx, id); err != nil {
		return fmt.Errorf("service/media: deleting %s: %w", id, err)
	}
	return nil
}
