// Package model defines the data structures used throughout the application.
//
// Content types mirror the JSON records owned by the remote portfolio API.
// The `json` tags match the API field names exactly (MongoDB-style "_id"),
// and the same tags double as form field names when an admin form is
// decoded, so one struct serves as both the request and response DTO.
// The `validate` tags are checked before anything is sent to the API.
package model

import "time"

// Base carries the server-assigned identity and timestamps every API record
// has. Timestamps are pointers so an empty value is omitted on writes instead
// of being sent as the zero time.
type Base struct {
	ID        string     `json:"_id,omitempty"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// Key returns the server-assigned id.
func (b Base) Key() string { return b.ID }

// Keyed is satisfied by every type that embeds Base.
type Keyed interface {
	Key() string
}

// Option is one entry of a fixed choice list rendered as a <select>.
type Option struct {
	Value string
	Label string
}

// ListEditor is implemented by forms that carry append/remove sub-lists
// (technologies, tags, features, gallery images).
type ListEditor interface {
	TagList(field string) *TagList
}

// ImageEditor is implemented by forms with single-image URL fields.
type ImageEditor interface {
	ImageField(field string) *string
}
