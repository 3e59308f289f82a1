package controllers

import (
	"io"
	"net/http"

	"explore-api/middlewares"
	"explore-api/storage"
)

// UploadHandler serves the standalone image upload endpoint. It applies
// the same attachment policy as post create/update: an external URL is
// passed through, otherwise the file payload is sent to the storage
// collaborator.
type UploadHandler struct {
	resolver *storage.Resolver
}

func NewUploadHandler(resolver *storage.Resolver) *UploadHandler {
	return &UploadHandler{resolver: resolver}
}

func (h *UploadHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		middlewares.HttpError(w, "Invalid upload payload", http.StatusBadRequest, err)
		return
	}

	var file []byte
	f, _, err := r.FormFile("image")
	if err == nil {
		defer func() {
			_ = f.Close()
		}()
		file, err = io.ReadAll(f)
		if err != nil {
			middlewares.HttpError(w, "Invalid upload payload", http.StatusBadRequest, err)
			return
		}
	}

	ref, supplied, err := h.resolver.Resolve(ctx, file, r.FormValue("fileUrl"))
	if err != nil {
		middlewares.HttpError(w, "Upload failed", http.StatusInternalServerError, err)
		return
	}
	if !supplied {
		middlewares.HttpError(w, "No file uploaded", http.StatusBadRequest, nil)
		return
	}

	middlewares.RespondJSON(w, map[string]string{"url": ref}, http.StatusOK)
}
