// Package site serves the embedded landing page with the upload form.
package site

import (
	"context"
	"net/http"
)

// Register attaches the landing page to the root path of mux. Other
// unmatched paths are left to the mux's 404.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}

	files := http.FileServer(FS())
	mux.Handle("GET /{$}", files)
}
