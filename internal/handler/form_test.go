package handler

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/portfolio-cms/internal/apiclient"
	"github.com/sakif/portfolio-cms/internal/model"
)

func TestParseAction(t *testing.T) {
	tests := []struct {
		in   string
		want formAction
	}{
		{"", formAction{Kind: "save"}},
		{"save", formAction{Kind: "save"}},
		{"add:technologies", formAction{Kind: "add", Field: "technologies"}},
		{"remove:stats:2", formAction{Kind: "remove", Field: "stats", Index: 2}},
		{"remove:tags:x", formAction{Kind: "remove", Field: "tags", Index: -1}},
		{"upload:thumbnail", formAction{Kind: "upload", Field: "thumbnail"}},
		{"clear:avatar", formAction{Kind: "clear", Field: "avatar"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseAction(tt.in))
		})
	}
}

type fakeUploader struct {
	got  []string
	body string
	err  error
}

func (f *fakeUploader) UploadImage(_ context.Context, file apiclient.File) (*model.MediaAsset, error) {
	if f.err != nil {
		return nil, f.err
	}
	b, _ := io.ReadAll(file.Body)
	f.body = string(b)
	f.got = append(f.got, file.Name)
	return &model.MediaAsset{Filename: file.Name, URL: "/uploads/" + file.Name}, nil
}

func formRequest(t *testing.T, values url.Values) *http.Request {
	t.Helper()
	req := postForm("/", values)
	require.NoError(t, parseForm(req))
	return req
}

func multipartRequest(t *testing.T, field, filename, content string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if filename != "" {
		fw, err := mw.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	require.NoError(t, parseForm(req))
	return req
}

func TestApplyAction_Lists(t *testing.T) {
	t.Run("add appends the new value", func(t *testing.T) {
		p := model.Project{Technologies: model.TagList{"Go"}}
		req := formRequest(t, url.Values{"new-technologies": {"  Docker "}})

		toast, err := applyAction(req, nil, &p, parseAction("add:technologies"))

		require.NoError(t, err)
		assert.Nil(t, toast)
		assert.Equal(t, model.TagList{"Go", "Docker"}, p.Technologies)
	})

	t.Run("remove drops the entry", func(t *testing.T) {
		post := model.BlogPost{Tags: model.TagList{"go", "web", "cli"}}
		_, err := applyAction(formRequest(t, nil), nil, &post, parseAction("remove:tags:1"))

		require.NoError(t, err)
		assert.Equal(t, model.TagList{"go", "cli"}, post.Tags)
	})

	t.Run("about stats", func(t *testing.T) {
		about := model.About{Stats: []model.Stat{{Label: "Years", Value: "5"}}}

		_, err := applyAction(formRequest(t, nil), nil, &about, parseAction("add:stats"))
		require.NoError(t, err)
		assert.Len(t, about.Stats, 2)

		_, err = applyAction(formRequest(t, nil), nil, &about, parseAction("remove:stats:0"))
		require.NoError(t, err)
		assert.Equal(t, []model.Stat{{}}, about.Stats)
	})

	t.Run("malformed index removes nothing", func(t *testing.T) {
		post := model.BlogPost{Tags: model.TagList{"go", "web"}}
		_, err := applyAction(formRequest(t, nil), nil, &post, parseAction("remove:tags:first"))

		require.NoError(t, err)
		assert.Equal(t, model.TagList{"go", "web"}, post.Tags)
	})

	t.Run("unknown field is ignored", func(t *testing.T) {
		s := model.Service{Features: model.TagList{"a"}}
		_, err := applyAction(formRequest(t, url.Values{"new-nope": {"x"}}), nil, &s, parseAction("add:nope"))

		require.NoError(t, err)
		assert.Equal(t, model.TagList{"a"}, s.Features)
	})
}

func TestApplyAction_Images(t *testing.T) {
	t.Run("upload fills a single image field", func(t *testing.T) {
		up := &fakeUploader{}
		p := model.Project{}
		req := multipartRequest(t, "file-thumbnail", "cover.png", "png-bytes")

		toast, err := applyAction(req, up, &p, parseAction("upload:thumbnail"))

		require.NoError(t, err)
		require.NotNil(t, toast)
		assert.Equal(t, "Image uploaded!", toast.Message)
		assert.Equal(t, "/uploads/cover.png", p.Thumbnail)
		assert.Equal(t, "png-bytes", up.body)
	})

	t.Run("upload appends to a gallery", func(t *testing.T) {
		up := &fakeUploader{}
		p := model.Project{Images: model.TagList{"/uploads/a.png"}}
		req := multipartRequest(t, "file-images", "b.png", "x")

		_, err := applyAction(req, up, &p, parseAction("upload:images"))

		require.NoError(t, err)
		assert.Equal(t, model.TagList{"/uploads/a.png", "/uploads/b.png"}, p.Images)
	})

	t.Run("no file chosen sends nothing", func(t *testing.T) {
		up := &fakeUploader{}
		tm := model.Testimonial{}
		req := multipartRequest(t, "file-avatar", "", "")

		toast, err := applyAction(req, up, &tm, parseAction("upload:avatar"))

		require.NoError(t, err)
		require.NotNil(t, toast)
		assert.Equal(t, model.ToastError, toast.Level)
		assert.Empty(t, up.got)
	})

	t.Run("upload failure is returned and the field kept", func(t *testing.T) {
		up := &fakeUploader{err: errors.New("boom")}
		about := model.About{Image: "/old.png"}
		req := multipartRequest(t, "file-image", "new.png", "x")

		_, err := applyAction(req, up, &about, parseAction("upload:image"))

		assert.Error(t, err)
		assert.Equal(t, "/old.png", about.Image)
	})

	t.Run("clear empties the field", func(t *testing.T) {
		tm := model.Testimonial{Avatar: "/a.png"}
		_, err := applyAction(formRequest(t, nil), nil, &tm, parseAction("clear:avatar"))

		require.NoError(t, err)
		assert.Empty(t, tm.Avatar)
	})
}
