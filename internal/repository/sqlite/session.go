package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sakif/portfolio-cms/internal/apperror"
	"github.com/sakif/portfolio-cms/internal/model"
	"github.com/sakif/portfolio-cms/internal/repository"
)

var _ repository.SessionRepository = (*DB)(nil)

// Save inserts rec or, when the id exists, replaces its token, theme and
// expiry. created_at is kept from the first insert.
func (db *DB) Save(ctx context.Context, rec *model.SessionRecord) error {
	if rec.ID == "" {
		return apperror.ValidationFailed("id", "session id must not be empty")
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO sessions (id, sealed_token, theme, created_at, updated_at, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			sealed_token = excluded.sealed_token,
			theme        = excluded.theme,
			updated_at   = excluded.updated_at,
			expires_at   = excluded.expires_at`,
		rec.ID,
		rec.SealedToken,
		rec.Theme,
		rec.CreatedAt,
		rec.UpdatedAt,
		rec.ExpiresAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("sqlite: saving session: %w", err)
	}
	return nil
}

// Get returns the live session with the given id.
func (db *DB) Get(ctx context.Context, id string) (*model.SessionRecord, error) {
	var (
		rec       model.SessionRecord
		expiresAt int64
	)

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, sealed_token, theme, created_at, updated_at, expires_at
		 FROM sessions
		 WHERE id = ? AND expires_at > ?`,
		id, time.Now().Unix(),
	).Scan(
		&rec.ID,
		&rec.SealedToken,
		&rec.Theme,
		&rec.CreatedAt,
		&rec.UpdatedAt,
		&expiresAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("session", id)
		}
		return nil, fmt.Errorf("sqlite: getting session %s: %w", id, err)
	}

	rec.ExpiresAt = time.Unix(expiresAt, 0).UTC()
	return &rec, nil
}

// Delete removes a session. Deleting a missing id is not an error.
func (db *DB) Delete(ctx context.Context, id string) error {
	if _, err := db.conn.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("sqlite: deleting session %s: %w", id, err)
	}
	return nil
}

// DeleteExpired removes every session whose expiry is at or before now and
// reports how many rows went.
func (db *DB) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, now.Unix())
	if err != nil {
		return 0, fmt.Errorf("sqlite: deleting expired sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sqlite: counting expired sessions: %w", err)
	}
	return n, nil
}
