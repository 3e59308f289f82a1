package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUploader struct {
	url    string
	err    error
	folder string
	data   []byte
	calls  int
}

func (f *fakeUploader) Upload(_ context.Context, data []byte, folder string) (string, error) {
	f.calls++
	f.data = data
	f.folder = folder
	if f.err != nil {
		return "", f.err
	}
	return f.url, nil
}

func TestResolve_ExternalURLUsedVerbatim(t *testing.T) {
	uploader := &fakeUploader{url: "https://cdn.example.com/should-not-happen"}
	resolver := NewResolver(uploader)

	ref, supplied, err := resolver.Resolve(context.Background(), []byte("raw bytes"), "https://pics.example.com/cat.png")
	require.NoError(t, err)
	assert.True(t, supplied)
	assert.Equal(t, "https://pics.example.com/cat.png", ref)
	assert.Zero(t, uploader.calls, "external URLs must short-circuit the upload")
}

func TestResolve_FileUploadedUnderPostsFolder(t *testing.T) {
	uploader := &fakeUploader{url: "https://cdn.example.com/blog-posts/abc.png"}
	resolver := NewResolver(uploader)

	ref, supplied, err := resolver.Resolve(context.Background(), []byte{0x89, 0x50, 0x4e, 0x47}, "")
	require.NoError(t, err)
	assert.True(t, supplied)
	assert.Equal(t, "https://cdn.example.com/blog-posts/abc.png", ref)
	assert.Equal(t, PostsFolder, uploader.folder)
	assert.Equal(t, []byte{0x89, 0x50, 0x4e, 0x47}, uploader.data)
}

func TestResolve_NothingSupplied(t *testing.T) {
	resolver := NewResolver(&fakeUploader{})

	ref, supplied, err := resolver.Resolve(context.Background(), nil, "")
	require.NoError(t, err)
	assert.False(t, supplied)
	assert.Empty(t, ref)
}

func TestResolve_RelativeURLIgnored(t *testing.T) {
	resolver := NewResolver(&fakeUploader{})

	_, supplied, err := resolver.Resolve(context.Background(), nil, "/uploads/local.png")
	require.NoError(t, err)
	assert.False(t, supplied)
}

func TestResolve_UploadFailure(t *testing.T) {
	uploader := &fakeUploader{err: errors.New("connection reset")}
	resolver := NewResolver(uploader)

	_, supplied, err := resolver.Resolve(context.Background(), []byte("payload"), "")
	require.Error(t, err)
	assert.False(t, supplied)
}

func TestIsExternalURL(t *testing.T) {
	assert.True(t, IsExternalURL("https://example.com/a.png"))
	assert.True(t, IsExternalURL("http://example.com/a.png"))
	assert.False(t, IsExternalURL(""))
	assert.False(t, IsExternalURL("/uploads/a.png"))
	assert.False(t, IsExternalURL("ftp://example.com/a.png"))
	assert.False(t, IsExternalURL("https://"))
}
