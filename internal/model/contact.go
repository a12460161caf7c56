package model

// ContactMessage is created by public visitors through the contact form and
// only read, archived or deleted by the admin.
type ContactMessage struct {
	Base
	Name       string `json:"name"       validate:"required,max=100"`
	Email      string `json:"email"      validate:"required,loose_email"`
	Phone      string `json:"phone"`
	Subject    string `json:"subject"    validate:"max=200"`
	Message    string `json:"message"    validate:"required"`
	IsRead     bool   `json:"isRead"`
	IsArchived bool   `json:"isArchived"`
}
