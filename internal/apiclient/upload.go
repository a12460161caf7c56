package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"

	"github.com/sakif/portfolio-cms/internal/model"
)

// File is one part of a multipart upload.
type File struct {
	Name        string
	ContentType string
	Body        io.Reader
}

// UploadAPI wraps /upload. Single images go under the "image" field,
// batches under "images".
type UploadAPI struct {
	c *Client
}

func (c *Client) Upload() *UploadAPI { return &UploadAPI{c: c} }

func (u *UploadAPI) Image(ctx context.Context, f File) (*model.MediaAsset, error) {
	req, err := multipartRequest("/upload/image", "image", f)
	if err != nil {
		return nil, err
	}
	var asset model.MediaAsset
	if err := u.c.do(ctx, req, &asset); err != nil {
		return nil, err
	}
	return &asset, nil
}

func (u *UploadAPI) Images(ctx context.Context, files []File) ([]model.MediaAsset, error) {
	req, err := multipartRequest("/upload/images", "images", files...)
	if err != nil {
		return nil, err
	}
	var assets []model.MediaAsset
	if err := u.c.do(ctx, req, &assets); err != nil {
		return nil, err
	}
	return assets, nil
}

func (u *UploadAPI) Media(ctx context.Context) ([]model.MediaAsset, error) {
	var assets []model.MediaAsset
	if err := u.c.do(ctx, request{method: http.MethodGet, path: "/upload/media"}, &assets); err != nil {
		return nil, err
	}
	return assets, nil
}

func (u *UploadAPI) Delete(ctx context.Context, id string) error {
	return u.c.do(ctx, request{method: http.MethodDelete, path: "/upload/" + segment(id)}, nil)
}

// multipartRequest buffers every file under field. Uploads are small
// admin images, so buffering keeps the request replayable by the transport.
func multipartRequest(path, field string, files ...File) (request, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, f.Name))
		ct := f.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)

		part, err := w.CreatePart(h)
		if err != nil {
			return request{}, fmt.Errorf("apiclient: creating part for %s: %w", f.Name, err)
		}
		if _, err := io.Copy(part, f.Body); err != nil {
			return request{}, fmt.Errorf("apiclient: copying %s: %w", f.Name, err)
		}
	}
	if err := w.Close(); err != nil {
		return request{}, fmt.Errorf("apiclient: closing multipart body: %w", err)
	}

	return request{
		method:      http.MethodPost,
		path:        path,
		body:        &buf,
		contentType: w.FormDataContentType(),
	}, nil
}
