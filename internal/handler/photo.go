package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"activityhub/internal/core"
	"activityhub/internal/httputil"
	"activityhub/internal/model"
	"activityhub/internal/service"
)

type PhotoHandler struct {
	*Dispatcher
}

func NewPhotoHandler(d *Dispatcher) *PhotoHandler {
	return &PhotoHandler{Dispatcher: d}
}

// Add handles POST /photos with a multipart "file" field.
func (h *PhotoHandler) Add(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}

	maxFormSize := int64(model.MaxPhotoSizeBytes) + 1024*1024 // allow form overhead
	r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
	if err := r.ParseMultipartForm(maxFormSize); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.Is(err, http.ErrNotMultipart):
			httputil.WriteBadRequest(w, "Content-Type must be multipart/form-data")
		case errors.As(err, &tooLarge):
			httputil.WriteBadRequestWithCode(w, model.CodeFileTooLarge, "Photo exceeds 10MB limit")
		default:
			httputil.WriteBadRequest(w, "Invalid form data")
		}
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.WriteBadRequest(w, "A file is required")
		return
	}
	defer file.Close()

	photo, ok := dispatch[model.Photo](h.Dispatcher, w, r, service.AddPhoto{
		Actor: a,
		Upload: model.PhotoUpload{
			File:        file,
			Size:        header.Size,
			ContentType: header.Header.Get("Content-Type"),
		},
	})
	if !ok {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, photo)
}

// SetMain handles POST /photos/{id}/setMain
func (h *PhotoHandler) SetMain(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := photoID(w, r)
	if !ok {
		return
	}

	if _, ok := dispatch[core.Unit](h.Dispatcher, w, r, service.SetMainPhoto{Actor: a, PhotoID: id}); !ok {
		return
	}
	w.WriteHeader(http.StatusOK)
}

// Delete handles DELETE /photos/{id}
func (h *PhotoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := photoID(w, r)
	if !ok {
		return
	}

	if _, ok := dispatch[core.Unit](h.Dispatcher, w, r, service.DeletePhoto{Actor: a, PhotoID: id}); !ok {
		return
	}
	w.WriteHeader(http.StatusOK)
}

// photoID reads the {id} segment. Photo ids contain a slash, so clients send
// them path-escaped ("photos%2Fabc.jpg").
func photoID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, err := url.PathUnescape(chi.URLParam(r, "id"))
	if err != nil || id == "" {
		httputil.WriteBadRequest(w, "Invalid photo ID")
		return "", false
	}
	return id, true
}
