package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/sakif/portfolio-cms/internal/apperror"
	"github.com/sakif/portfolio-cms/internal/model"
)

type Inbox interface {
	Collection[model.ContactMessage]
	MarkRead(ctx context.Context, id string) error
	Archive(ctx context.Context, id string) error
}

// MessageService covers both sides of the contact form: visitors submit,
// the admin reads, archives and deletes.
type MessageService struct {
	api       Inbox
	validator *Validator
	logger    *slog.Logger
}

func NewMessageService(api Inbox, v *Validator, logger *slog.Logger) *MessageService {
	return &MessageService{api: api, validator: v, logger: logger}
}

// List returns the inbox (archived=false) or the archive.
func (s *MessageService) List(ctx context.Context, archived bool) ([]model.ContactMessage, error) {
	msgs, err := s.api.List(ctx, url.Values{"archived": {strconv.FormatBool(archived)}})
	if err != nil {
		return nil, fmt.Errorf("service/messages: listing: %w", err)
	}
	return msgs, nil
}

// Open selects a message from the list. An unread message is marked read
// and the list refetched, so the returned list reflects the new state.
func (s *MessageService) Open(ctx context.Context, archived bool, id string) ([]model.ContactMessage, *model.ContactMessage, error) {
	msgs, err := s.List(ctx, archived)
	if err != nil {
		return nil, nil, err
	}

	selected := findMessage(msgs, id)
	if selected == nil {
		return msgs, nil, apperror.NotFound("message", id)
	}
	if selected.IsRead {
		return msgs, selected, nil
	}

	if err := s.api.MarkRead(ctx, id); err != nil {
		return msgs, selected, fmt.Errorf("service/messages: marking %s read: %w", id, err)
	}
	if msgs, err = s.List(ctx, archived); err != nil {
		return nil, nil, err
	}
	if refreshed := findMessage(msgs, id); refreshed != nil {
		selected = refreshed
	} else {
		selected.IsRead = true
	}
	return msgs, selected, nil
}

func (s *MessageService) Archive(ctx context.Context, id string) error {
	if err := s.api.Archive(ctx, id); err != nil {
		return fmt.Errorf("service/messages: archiving %s: %w", id, err)
	}
	s.logger.Info("message archived", slog.String("id", id))
	return nil
}

func (s *MessageService) Delete(ctx context.Context, id string, confirmed bool) error {
	if !confirmed {
		return apperror.NotConfirmed("deleting this message")
	}
	if err := s.api.Delete(ctx, id); err != nil {
		return fmt.Errorf("service/messages: deleting %s: %w", id, err)
	}
	s.logger.Info("message deleted", slog.String("id", id))
	return nil
}

// Submit is the public contact form. Only the visitor-editable fields are
// sent.
func (s *MessageService) Submit(ctx context.Context, msg model.ContactMessage) error {
	msg = model.ContactMessage{
		Name:    msg.Name,
		Email:   msg.Email,
		Phone:   msg.Phone,
		Subject: msg.Subject,
		Message: msg.Message,
	}
	if err := s.validator.Struct(&msg); err != nil {
		return err
	}
	if _, err := s.api.Create(ctx, &msg); err != nil {
		return fmt.Errorf("service/messages: submitting: %w", err)
	}
	s.logger.Info("contact message received", slog.String("subject", msg.Subject))
	return nil
}

func findMessage(msgs []model.ContactMessage, id string) *model.ContactMessage {
	for i := range msgs {
		if msgs[i].ID == id {
			return &msgs[i]
		}
	}
	return nil
}
