package handlers

import (
	"net/http"
	"path/filepath"

	"github.com/notespace-app/notespace/internal/auth"
)

const maxUploadSize = 10 << 20 // 10 MiB

// UploadImage stores an image in the object store and returns its URL. The
// URL can then be used as the user's avatar or embedded in note content.
func (h *Handlers) UploadImage(w http.ResponseWriter, r *http.Request) {
	if h.uploader == nil {
		h.error(w, "Uploads are not configured", http.StatusServiceUnavailable)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	file, header, err := r.FormFile("image")
	if err != nil {
		h.error(w, "Failed to read image", http.StatusBadRequest)
		return
	}
	defer file.Close()

	url, err := h.uploader.Upload(r.Context(), file, header.Size,
		header.Header.Get("Content-Type"), filepath.Ext(header.Filename))
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	if r.URL.Query().Get("avatar") == "true" {
		userID := auth.GetUserIDFromContext(r.Context())
		if err := h.store.SetUserImage(r.Context(), userID, url); err != nil {
			h.serverError(w, r, err)
			return
		}
	}

	h.respond(w, map[string]string{"url": url}, http.StatusOK)
}
