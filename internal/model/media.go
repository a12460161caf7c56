package model

// MediaAsset is an uploaded file as reported by the API.
type MediaAsset struct {
	Base
	Filename string `json:"filename"`
	URL      string `json:"url"`
	Size     int64  `json:"size,omitempty"`
	MimeType string `json:"mimetype,omitempty"`
}
