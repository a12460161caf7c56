package service

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/portfolio-cms/internal/apperror"
	"github.com/sakif/portfolio-cms/internal/model"
)

func TestMessageService_OpenMarksUnreadAsRead(t *testing.T) {
	api, client := newAPI(t)
	ids := api.Seed("contact",
		model.ContactMessage{Name: "A", Email: "a@x", Message: "hi"},
		model.ContactMessage{Name: "B", Email: "b@x", Message: "yo", IsRead: true},
	)
	svc := NewMessageService(client.Contact(), NewValidator(), discardLogger())
	ctx := adminCtx()

	msgs, selected, err := svc.Open(ctx, false, ids[0])
	require.NoError(t, err)
	assert.True(t, selected.IsRead)
	assert.Len(t, msgs, 2)
	assert.Equal(t, 1, api.Count(http.MethodPut, "/contact/"+ids[0]+"/read"))
	assert.Equal(t, 2, api.Count(http.MethodGet, "/contact"), "list is refetched after marking read")

	api.ResetRequests()
	_, _, err = svc.Open(ctx, false, ids[1])
	require.NoError(t, err)
	assert.Zero(t, api.Count(http.MethodPut, "/contact/"+ids[1]+"/read"))
}

func TestMessageService_ArchiveMovesBetweenTabs(t *testing.T) {
	api, client := newAPI(t)
	ids := api.Seed("contact", model.ContactMessage{Name: "A", Email: "a@x", Message: "hi"})
	svc := NewMessageService(client.Contact(), NewValidator(), discardLogger())
	ctx := adminCtx()

	require.NoError(t, svc.Archive(ctx, ids[0]))

	inbox, err := svc.List(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, inbox)

	archived, err := svc.List(ctx, true)
	require.NoError(t, err)
	assert.Len(t, archived, 1)
}

func TestMessageService_Submit(t *testing.T) {
	tests := []struct {
		name      string
		msg       model.ContactMessage
		wantField string
	}{
		{"valid", model.ContactMessage{Name: "Ann", Email: "ann@site", Message: "Hello"}, ""},
		{"missing name", model.ContactMessage{Email: "ann@site", Message: "Hello"}, "name"},
		{"email without at", model.ContactMessage{Name: "Ann", Email: "ann.site", Message: "Hello"}, "email"},
		{"email with space", model.ContactMessage{Name: "Ann", Email: "an n@site", Message: "Hello"}, "email"},
		{"missing message", model.ContactMessage{Name: "Ann", Email: "ann@site"}, "message"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api, client := newAPI(t)
			svc := NewMessageService(client.Contact(), NewValidator(), discardLogger())

			err := svc.Submit(t.Context(), tt.msg)
			if tt.wantField == "" {
				require.NoError(t, err)
				assert.Len(t, api.Items("contact"), 1)
				return
			}
			require.Error(t, err)
			assert.Contains(t, apperror.FieldErrors(err), tt.wantField)
			assert.Empty(t, api.Requests())
		})
	}
}

func TestMessageService_SubmitDropsAdminFields(t *testing.T) {
	api, client := newAPI(t)
	svc := NewMessageService(client.Contact(), NewValidator(), discardLogger())

	err := svc.Submit(t.Context(), model.ContactMessage{Name: "A", Email: "a@b", Message: "m", IsRead: true, IsArchived: true})
	require.NoError(t, err)

	items := api.Items("contact")
	require.Len(t, items, 1)
	assert.Equal(t, false, items[0]["isRead"])
}

func TestMessageService_DeleteNeedsConfirmation(t *testing.T) {
	api, client := newAPI(t)
	ids := api.Seed("contact", model.ContactMessage{Name: "A", Email: "a@x", Message: "hi"})
	svc := NewMessageService(client.Contact(), NewValidator(), discardLogger())

	assert.True(t, errors.Is(svc.Delete(adminCtx(), ids[0], false), apperror.ErrNotConfirmed))
	require.NoError(t, svc.Delete(adminCtx(), ids[0], true))
	assert.Empty(t, api.Items("contact"))
}
