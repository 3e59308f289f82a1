package controllers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"explore-api/db"
	"explore-api/middlewares"
	"explore-api/models"
	"explore-api/storage"
	"explore-api/validation"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// maxUploadBytes caps attachment payloads at 10 MiB.
const maxUploadBytes = 10 << 20

// PostHandler serves the post lifecycle endpoints against the entity
// store, with a read cache on the public endpoints and the attachment
// resolver for image references.
type PostHandler struct {
	store    models.PostStore
	cache    *db.PostCache
	resolver *storage.Resolver
}

func NewPostHandler(store models.PostStore, cache *db.PostCache, resolver *storage.Resolver) *PostHandler {
	return &PostHandler{store: store, cache: cache, resolver: resolver}
}

func (h *PostHandler) SetupRoutes(r *mux.Router) {
	postsRouter := r.PathPrefix("/posts").Subrouter()
	postsRouter.HandleFunc("", h.GetPublishedPosts).Methods("GET")

	authRouter := r.PathPrefix("/posts").Subrouter()
	authRouter.Use(middlewares.RequireAuth)
	authRouter.HandleFunc("/mine", h.GetMyPosts).Methods("GET")
	authRouter.HandleFunc("", h.CreatePost).Methods("POST")
	authRouter.HandleFunc("", h.UpdatePost).Methods("PUT").Queries("id", "{id}")
	authRouter.HandleFunc("", h.DeletePost).Methods("DELETE").Queries("id", "{id}")

	// The toggle has no in-handler authorization; the admin subrouter is
	// the access-controlled surface it is reachable through.
	adminRouter := r.PathPrefix("/admin/posts").Subrouter()
	adminRouter.Use(middlewares.RequireAdmin)
	adminRouter.HandleFunc("/toggle", h.TogglePublish).Methods("PUT").Queries("id", "{id}")
}

// postRequest is the inbound payload for create and update. Pointer
// fields distinguish "not supplied" from explicit values; a nil TagList
// behind a non-nil pointer means the tags field had an unusable shape.
type postRequest struct {
	Title    *string         `json:"title"`
	Body     *string         `json:"body"`
	HTMLBody *string         `json:"htmlBody"`
	Status   *string         `json:"status"`
	Tags     *models.TagList `json:"tags"`
	FileURL  *string         `json:"fileUrl"`
}

func (req *postRequest) fileURL() string {
	if req.FileURL == nil {
		return ""
	}
	return *req.FileURL
}

// parsePostRequest decodes either a JSON body or a multipart form
// carrying scalar fields plus an optional "image" file payload.
func parsePostRequest(r *http.Request) (*postRequest, []byte, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return parseMultipartPostRequest(r)
	}

	var req postRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, nil, err
	}
	return &req, nil, nil
}

func parseMultipartPostRequest(r *http.Request) (*postRequest, []byte, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, nil, err
	}

	req := &postRequest{}
	req.Title = formField(r, "title")
	req.Body = formField(r, "body")
	req.HTMLBody = formField(r, "htmlBody")
	req.Status = formField(r, "status")
	req.FileURL = formField(r, "fileUrl")
	if raw := formField(r, "tags"); raw != nil {
		tags := models.SplitTags(*raw)
		req.Tags = &tags
	}

	var file []byte
	f, _, err := r.FormFile("image")
	if err == nil {
		defer func() {
			_ = f.Close()
		}()
		file, err = io.ReadAll(f)
		if err != nil {
			return nil, nil, err
		}
	}

	return req, file, nil
}

func formField(r *http.Request, name string) *string {
	if r.MultipartForm == nil {
		return nil
	}
	vals, ok := r.MultipartForm.Value[name]
	if !ok || len(vals) == 0 {
		return nil
	}
	return &vals[0]
}

// canMutate is the shared mutation policy: only the post's author or an
// admin may update, delete, or toggle it.
func canMutate(actor *models.Actor, post *models.Post) bool {
	if actor == nil {
		return false
	}
	return post.AuthorID == actor.ID || actor.Role == models.RoleAdmin
}

func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor := middlewares.GetActor(r)
	if actor == nil {
		middlewares.HttpError(w, "Not authenticated", http.StatusUnauthorized, nil)
		return
	}

	req, file, err := parsePostRequest(r)
	if err != nil {
		middlewares.HttpError(w, "Invalid request payload", http.StatusBadRequest, err)
		return
	}

	var title, body string
	if req.Title != nil {
		title = *req.Title
	}
	if req.Body != nil {
		body = *req.Body
	}
	if err := validation.RequireTitle(title); err != nil {
		middlewares.HttpError(w, err.Error(), http.StatusBadRequest, err)
		return
	}
	if err := validation.RequireBody(body); err != nil {
		middlewares.HttpError(w, err.Error(), http.StatusBadRequest, err)
		return
	}

	status := models.StatusDraft
	if req.Status != nil && models.ValidStatus(*req.Status) {
		status = *req.Status
	}

	tags := []string{}
	if req.Tags != nil && *req.Tags != nil {
		tags = *req.Tags
	}

	// Resolve the attachment before touching the store so an upload
	// failure never leaves a half-created post behind.
	image := ""
	ref, supplied, err := h.resolver.Resolve(ctx, file, req.fileURL())
	if err != nil {
		middlewares.HttpError(w, "Error uploading image", http.StatusInternalServerError, err)
		return
	}
	if supplied {
		image = ref
	}

	htmlBody := body
	if req.HTMLBody != nil && strings.TrimSpace(*req.HTMLBody) != "" {
		htmlBody = *req.HTMLBody
	}

	post := &models.Post{
		Title:    title,
		Body:     body,
		HTMLBody: htmlBody,
		AuthorID: actor.ID,
		Image:    image,
		Status:   status,
		Tags:     tags,
	}

	if err := h.store.Create(ctx, post); err != nil {
		middlewares.HttpError(w, "Error creating post", http.StatusInternalServerError, err)
		return
	}

	h.invalidate(r, post.ID)
	middlewares.RespondJSON(w, post, http.StatusCreated)
}

func (h *PostHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(r.URL.Query().Get("id"))
	if err != nil {
		middlewares.HttpError(w, "Invalid post ID", http.StatusBadRequest, err)
		return
	}

	post, err := h.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrPostNotFound) {
			middlewares.HttpError(w, "Post not found", http.StatusNotFound, err)
			return
		}
		middlewares.HttpError(w, "Error fetching post", http.StatusInternalServerError, err)
		return
	}

	actor := middlewares.GetActor(r)
	if actor == nil {
		middlewares.HttpError(w, "Not authenticated", http.StatusUnauthorized, nil)
		return
	}
	if !canMutate(actor, post) {
		middlewares.HttpError(w, "Not authorized", http.StatusForbidden, nil)
		return
	}

	req, file, err := parsePostRequest(r)
	if err != nil {
		middlewares.HttpError(w, "Invalid request payload", http.StatusBadRequest, err)
		return
	}

	// Validate every supplied scalar before applying anything, so a bad
	// field rejects the whole update.
	if req.Title != nil {
		if err := validation.RequireTitle(*req.Title); err != nil {
			middlewares.HttpError(w, err.Error(), http.StatusBadRequest, err)
			return
		}
	}
	if req.Body != nil {
		if err := validation.RequireBody(*req.Body); err != nil {
			middlewares.HttpError(w, err.Error(), http.StatusBadRequest, err)
			return
		}
	}

	ref, supplied, err := h.resolver.Resolve(ctx, file, req.fileURL())
	if err != nil {
		middlewares.HttpError(w, "Error uploading image", http.StatusInternalServerError, err)
		return
	}

	if req.Title != nil {
		post.Title = *req.Title
	}
	if req.Body != nil {
		post.Body = *req.Body
	}
	if req.HTMLBody != nil && strings.TrimSpace(*req.HTMLBody) != "" {
		post.HTMLBody = *req.HTMLBody
	}
	if supplied {
		post.Image = ref
	}
	if req.Tags != nil && *req.Tags != nil {
		post.Tags = *req.Tags
	}
	if req.Status != nil && models.ValidStatus(*req.Status) {
		post.Status = *req.Status
	}

	if err := h.store.Save(ctx, post); err != nil {
		middlewares.HttpError(w, "Error updating post", http.StatusInternalServerError, err)
		return
	}

	h.invalidate(r, post.ID)
	middlewares.RespondJSON(w, post, http.StatusOK)
}

func (h *PostHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(r.URL.Query().Get("id"))
	if err != nil {
		middlewares.HttpError(w, "Invalid post ID", http.StatusBadRequest, err)
		return
	}

	post, err := h.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrPostNotFound) {
			middlewares.HttpError(w, "Post not found", http.StatusNotFound, err)
			return
		}
		middlewares.HttpError(w, "Error fetching post", http.StatusInternalServerError, err)
		return
	}

	if !canMutate(middlewares.GetActor(r), post) {
		middlewares.HttpError(w, "Not authorized", http.StatusForbidden, nil)
		return
	}

	if err := h.store.Delete(ctx, id); err != nil {
		middlewares.HttpError(w, "Error deleting post", http.StatusInternalServerError, err)
		return
	}

	h.invalidate(r, id)
	middlewares.RespondJSON(w, map[string]string{"message": "Post deleted successfully"}, http.StatusOK)
}

func (h *PostHandler) TogglePublish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(r.URL.Query().Get("id"))
	if err != nil {
		middlewares.HttpError(w, "Invalid post ID", http.StatusBadRequest, err)
		return
	}

	post, err := h.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrPostNotFound) {
			middlewares.HttpError(w, "Post not found", http.StatusNotFound, err)
			return
		}
		middlewares.HttpError(w, "Error fetching post", http.StatusInternalServerError, err)
		return
	}

	if post.Status == models.StatusPublished {
		post.Status = models.StatusDraft
	} else {
		post.Status = models.StatusPublished
	}

	if err := h.store.Save(ctx, post); err != nil {
		middlewares.HttpError(w, "Error toggling post status", http.StatusInternalServerError, err)
		return
	}

	h.invalidate(r, id)
	middlewares.RespondJSON(w, map[string]string{
		"message": "Post " + post.Status,
		"status":  post.Status,
	}, http.StatusOK)
}

// GetPublishedPosts lists published posts, or dispatches to the single
// post lookup when an id query parameter is present.
func (h *PostHandler) GetPublishedPosts(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("id") != "" {
		h.GetPublishedPost(w, r)
		return
	}

	ctx := r.Context()

	if h.cache != nil {
		if posts, ok, err := h.cache.GetPublished(ctx); err == nil && ok {
			middlewares.RespondJSON(w, posts, http.StatusOK)
			return
		}
	}

	posts, err := h.store.ListPublished(ctx)
	if err != nil {
		middlewares.HttpError(w, "Error fetching posts", http.StatusInternalServerError, err)
		return
	}
	if posts == nil {
		posts = []models.Post{}
	}

	if h.cache != nil {
		h.cache.SetPublished(ctx, posts)
	}

	middlewares.RespondJSON(w, posts, http.StatusOK)
}

func (h *PostHandler) GetPublishedPost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(r.URL.Query().Get("id"))
	if err != nil {
		middlewares.HttpError(w, "Invalid post ID", http.StatusBadRequest, err)
		return
	}

	if h.cache != nil {
		if post, ok, err := h.cache.GetPost(ctx, id); err == nil && ok {
			middlewares.RespondJSON(w, post, http.StatusOK)
			return
		}
	}

	post, err := h.store.GetPublishedByID(ctx, id)
	if err != nil {
		// Hidden drafts report the same outcome as missing rows.
		if errors.Is(err, models.ErrPostNotFound) {
			middlewares.HttpError(w, "Post not found", http.StatusNotFound, err)
			return
		}
		middlewares.HttpError(w, "Error fetching post", http.StatusInternalServerError, err)
		return
	}

	if h.cache != nil {
		h.cache.SetPost(ctx, post)
	}

	middlewares.RespondJSON(w, post, http.StatusOK)
}

func (h *PostHandler) GetMyPosts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor := middlewares.GetActor(r)
	if actor == nil {
		middlewares.HttpError(w, "Not authenticated", http.StatusUnauthorized, nil)
		return
	}

	posts, err := h.store.ListByAuthor(ctx, actor.ID)
	if err != nil {
		middlewares.HttpError(w, "Error loading your posts", http.StatusInternalServerError, err)
		return
	}
	if posts == nil {
		posts = []models.Post{}
	}

	middlewares.RespondJSON(w, posts, http.StatusOK)
}

func (h *PostHandler) invalidate(r *http.Request, id uuid.UUID) {
	if h.cache != nil {
		h.cache.Invalidate(r.Context(), id)
	}
}
