package model

import "time"

// SessionRecord is the stored form of one browser session. The bearer
// token is sealed before it gets here; Theme is "", "dark" or "light".
type SessionRecord struct {
	ID          string
	SealedToken string
	Theme       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ExpiresAt   time.Time
}
