// Package web embeds the HTML templates and static assets so the server
// ships as a single binary.
package web

import (
	"embed"
	"io/fs"
)

//go:embed templates static
var files embed.FS

// Templates is rooted so paths start with "templates/".
func Templates() fs.FS { return files }

// Static is rooted at static/ for http.FileServer.
func Static() fs.FS {
	sub, err := fs.Sub(files, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
