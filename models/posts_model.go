package models

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Post statuses. A post is always in exactly one of these states.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

// User roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// ErrPostNotFound is returned by stores when no matching post exists. A
// draft requested through a published-only lookup reports the same error.
var ErrPostNotFound = errors.New("post not found")

// Actor is the authenticated identity attached to a request.
type Actor struct {
	ID   uuid.UUID `json:"id"`
	Role string    `json:"role"`
}

// AuthorInfo carries the public-safe author fields attached to posts
// returned from read endpoints.
type AuthorInfo struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}

type Post struct {
	ID        uuid.UUID   `json:"id"`
	Title     string      `json:"title"`
	Body      string      `json:"body"`
	HTMLBody  string      `json:"htmlBody"`
	AuthorID  uuid.UUID   `json:"authorId"`
	Author    *AuthorInfo `json:"author,omitempty"`
	Image     string      `json:"image"`
	Status    string      `json:"status"`
	Tags      []string    `json:"tags"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// ValidStatus reports whether s is one of the two post states.
func ValidStatus(s string) bool {
	return s == StatusDraft || s == StatusPublished
}

// TagList accepts either a JSON array of strings or a single
// comma-separated string. Elements are trimmed. Any other JSON shape
// leaves the list nil, which callers treat as "not supplied".
type TagList []string

func (t *TagList) UnmarshalJSON(data []byte) error {
	var arr []string
	if err := json.Unmarshal(data, &arr); err == nil {
		for i := range arr {
			arr[i] = strings.TrimSpace(arr[i])
		}
		*t = arr
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = SplitTags(s)
		return nil
	}

	*t = nil
	return nil
}

// SplitTags splits a comma-separated tag string, trimming each element.
func SplitTags(s string) TagList {
	parts := strings.Split(s, ",")
	tags := make(TagList, 0, len(parts))
	for _, p := range parts {
		tags = append(tags, strings.TrimSpace(p))
	}
	return tags
}

// PostStore is the entity store contract for posts. Published lookups
// filter on status so callers cannot tell a hidden draft from a missing
// row; list results are ordered by creation time, most recent first.
type PostStore interface {
	Create(ctx context.Context, post *Post) error
	GetByID(ctx context.Context, id uuid.UUID) (*Post, error)
	GetPublishedByID(ctx context.Context, id uuid.UUID) (*Post, error)
	ListPublished(ctx context.Context) ([]Post, error)
	ListByAuthor(ctx context.Context, author uuid.UUID) ([]Post, error)
	Save(ctx context.Context, post *Post) error
	Delete(ctx context.Context, id uuid.UUID) error
}
