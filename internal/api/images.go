package api

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/menushare/internal/imageembed"
	"github.com/starford/menushare/internal/menuservice"
)

// multipart framing on top of the image itself
const multipartOverhead = 1 << 20

// ImageHandler accepts image uploads and embeds them into the menu.
type ImageHandler struct {
	svc      *menuservice.Service
	maxBytes int64
}

// NewImageHandler creates a handler that accepts images up to maxBytes.
func NewImageHandler(svc *menuservice.Service, maxBytes int64) *ImageHandler {
	if maxBytes <= 0 {
		maxBytes = imageembed.DefaultOptions().MaxBytes
	}
	return &ImageHandler{svc: svc, maxBytes: maxBytes}
}

// formFile reads the "file" field of a multipart upload. It writes the
// error response itself and returns ok=false on failure.
func (h *ImageHandler) formFile(w http.ResponseWriter, r *http.Request) (io.ReadCloser, bool) {
	limit := h.maxBytes + multipartOverhead
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	if err := r.ParseMultipartForm(limit); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("file too large or invalid multipart"))
		return nil, false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("missing 'file' field in multipart form"))
		return nil, false
	}
	slog.Debug("image upload", slog.String("filename", header.Filename), slog.Int64("size", header.Size))
	return file, true
}

// UploadItemImage handles POST /api/menu/items/{id}/image (multipart/form-data, field "file").
func (h *ImageHandler) UploadItemImage(w http.ResponseWriter, r *http.Request) {
	file, ok := h.formFile(w, r)
	if !ok {
		return
	}
	defer file.Close()

	it, err := h.svc.SetItemImage(r.Context(), chi.URLParam(r, "id"), file)
	if err != nil {
		writeError(w, "upload item image", err)
		return
	}
	writeJSON(w, http.StatusOK, it)
}

// UploadLogo handles POST /api/menu/brand/logo (multipart/form-data, field "file").
func (h *ImageHandler) UploadLogo(w http.ResponseWriter, r *http.Request) {
	file, ok := h.formFile(w, r)
	if !ok {
		return
	}
	defer file.Close()

	b, err := h.svc.SetLogo(r.Context(), file)
	if err != nil {
		writeError(w, "upload logo", err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}
