// Package repository declares the storage interfaces the rest of the
// application depends on. Implementations live in sub-packages (sqlite).
package repository

import (
	"context"
	"time"

	"github.com/sakif/portfolio-cms/internal/model"
)

// SessionRepository stores browser sessions.
//
// Get returns an apperror.ErrNotFound error for ids that were never saved
// and for rows that have expired, so callers treat both as a fresh session.
type SessionRepository interface {
	Save(ctx context.Context, rec *model.SessionRecord) error
	Get(ctx context.Context, id string) (*model.SessionRecord, error)
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
