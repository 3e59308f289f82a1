package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPUploader_Upload(t *testing.T) {
	var gotFolder string
	var gotFile []byte
	var gotAuth string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotFolder = r.FormValue("folder")
		gotAuth = r.Header.Get("Authorization")

		file, _, err := r.FormFile("file")
		require.NoError(t, err)
		gotFile, err = io.ReadAll(file)
		require.NoError(t, err)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"url":"https://cdn.example.com/blog-posts/xyz.png"}`))
	}))
	defer server.Close()

	uploader := NewHTTPUploader(StorageConfig{URL: server.URL, Token: "secret-token"})

	publicURL, err := uploader.Upload(context.Background(), []byte("image-bytes"), PostsFolder)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/blog-posts/xyz.png", publicURL)
	assert.Equal(t, PostsFolder, gotFolder)
	assert.Equal(t, []byte("image-bytes"), gotFile)
	assert.Equal(t, "Bearer secret-token", gotAuth)
}

func TestHTTPUploader_ServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bucket unavailable", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	uploader := NewHTTPUploader(StorageConfig{URL: server.URL})

	_, err := uploader.Upload(context.Background(), []byte("image-bytes"), PostsFolder)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestHTTPUploader_EmptyURLRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	uploader := NewHTTPUploader(StorageConfig{URL: server.URL})

	_, err := uploader.Upload(context.Background(), []byte("image-bytes"), PostsFolder)
	require.Error(t, err)
}

func TestLoadStorageConfig(t *testing.T) {
	t.Setenv("STORAGE_URL", "https://storage.example.com/upload")
	t.Setenv("STORAGE_TOKEN", "tok")

	config, err := LoadStorageConfig()
	require.NoError(t, err)
	assert.Equal(t, "https://storage.example.com/upload", config.URL)
	assert.Equal(t, "tok", config.Token)
}

func TestLoadStorageConfig_Missing(t *testing.T) {
	t.Setenv("STORAGE_URL", "")

	_, err := LoadStorageConfig()
	require.Error(t, err)
}
