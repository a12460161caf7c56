package handler

import (
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/sakif/portfolio-cms/internal/apiclient"
	"github.com/sakif/portfolio-cms/internal/model"
)

const maxUploadMemory = 10 << 20

// Admin forms post an "action" naming the button that was pressed. Only
// "save" reaches the API as a create or update; the others edit the form
// locally and render it again:
//
//	add:<list>           append the value of the "new-<list>" input
//	remove:<list>:<i>    drop entry i
//	upload:<field>       upload the "file-<field>" file, store the URL
//	clear:<field>        empty an image field
type formAction struct {
	Kind  string
	Field string
	Index int
}

const actionSave = "save"

func parseAction(v string) formAction {
	if v == "" || v == actionSave {
		return formAction{Kind: actionSave}
	}
	parts := strings.SplitN(v, ":", 3)
	a := formAction{Kind: parts[0]}
	if len(parts) > 1 {
		a.Field = parts[1]
	}
	if len(parts) > 2 {
		i, err := strconv.Atoi(parts[2])
		if err != nil {
			// Out of range for every list, so remove is a no-op.
			i = -1
		}
		a.Index = i
	}
	return a
}

// Uploader stores a single image and returns where it lives.
type Uploader interface {
	UploadImage(ctx context.Context, f apiclient.File) (*model.MediaAsset, error)
}

// applyAction performs a local edit on item. The returned toast may be
// nil; an error means an upload failed.
func applyAction(r *http.Request, up Uploader, item any, a formAction) (*model.Toast, error) {
	switch a.Kind {
	case "add":
		if about, ok := item.(*model.About); ok && a.Field == "stats" {
			about.AddStat()
			return nil, nil
		}
		if tl := tagList(item, a.Field); tl != nil {
			tl.Add(r.PostForm.Get("new-" + a.Field))
		}

	case "remove":
		if about, ok := item.(*model.About); ok && a.Field == "stats" {
			about.RemoveStat(a.Index)
			return nil, nil
		}
		if tl := tagList(item, a.Field); tl != nil {
			tl.Remove(a.Index)
		}

	case "upload":
		files, closeAll := formFiles(r, "file-"+a.Field)
		defer closeAll()
		if len(files) == 0 {
			t := model.Failure("Choose an image to upload")
			return &t, nil
		}

		asset, err := up.UploadImage(r.Context(), files[0])
		if err != nil {
			return nil, err
		}
		if field := imageField(item, a.Field); field != nil {
			*field = asset.URL
		} else if tl := tagList(item, a.Field); tl != nil {
			tl.Add(asset.URL)
		}
		t := model.Success("Image uploaded!")
		return &t, nil

	case "clear":
		if field := imageField(item, a.Field); field != nil {
			*field = ""
		}
	}
	return nil, nil
}

func tagList(item any, field string) *model.TagList {
	if le, ok := item.(model.ListEditor); ok {
		return le.TagList(field)
	}
	return nil
}

func imageField(item any, field string) *string {
	if ie, ok := item.(model.ImageEditor); ok {
		return ie.ImageField(field)
	}
	return nil
}

// formFiles opens every non-empty file posted under field. The returned
// func closes them.
func formFiles(r *http.Request, field string) ([]apiclient.File, func()) {
	if r.MultipartForm == nil {
		return nil, func() {}
	}

	var (
		files   []apiclient.File
		closers []io.Closer
	)
	for _, fh := range r.MultipartForm.File[field] {
		if fh.Size == 0 && fh.Filename == "" {
			continue
		}
		f, err := fh.Open()
		if err != nil {
			continue
		}
		closers = append(closers, f)
		files = append(files, apiclient.File{
			Name:        fh.Filename,
			ContentType: contentType(fh),
			Body:        f,
		})
	}
	return files, func() {
		for _, c := range closers {
			_ = c.Close()
		}
	}
}

func contentType(fh *multipart.FileHeader) string {
	if ct := fh.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
