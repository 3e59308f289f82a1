package storage

import (
	"context"
	"fmt"
	"net/url"
)

// PostsFolder is the logical grouping images are uploaded under.
const PostsFolder = "blog-posts"

// Uploader transfers attachment bytes to the object-storage collaborator
// and returns the permanent public URL assigned by it.
type Uploader interface {
	Upload(ctx context.Context, data []byte, folder string) (string, error)
}

// Resolver decides the image reference to persist on a post. Backends are
// swappable through the Uploader interface.
type Resolver struct {
	uploader Uploader
}

func NewResolver(uploader Uploader) *Resolver {
	return &Resolver{uploader: uploader}
}

// Resolve applies the attachment policy in order: an absolute external URL
// is used verbatim, otherwise a file payload is uploaded under PostsFolder,
// otherwise nothing was supplied. supplied is false in the last case so
// callers can distinguish "leave empty / keep previous" from an explicit
// reference.
func (r *Resolver) Resolve(ctx context.Context, file []byte, fileURL string) (ref string, supplied bool, err error) {
	if IsExternalURL(fileURL) {
		return fileURL, true, nil
	}

	if len(file) > 0 {
		publicURL, err := r.uploader.Upload(ctx, file, PostsFolder)
		if err != nil {
			return "", false, fmt.Errorf("uploading attachment: %w", err)
		}
		return publicURL, true, nil
	}

	return "", false, nil
}

// IsExternalURL reports whether s is an absolute http(s) URL.
func IsExternalURL(s string) bool {
	if s == "" {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
