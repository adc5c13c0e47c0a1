// Package site serves the embedded landing page.
package site

import (
	"context"
	"net/http"
)

// Register serves the landing page at exactly "/".
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	files := http.FileServer(FS())
	mux.Handle("GET /{$}", files)
}
