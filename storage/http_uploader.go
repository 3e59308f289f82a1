package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"time"
)

// StorageConfig holds the object-storage service settings.
type StorageConfig struct {
	URL   string
	Token string
}

// LoadStorageConfig retrieves the object-storage settings from environment
// variables. STORAGE_TOKEN is optional.
func LoadStorageConfig() (StorageConfig, error) {
	storageURL := os.Getenv("STORAGE_URL")
	if storageURL == "" {
		return StorageConfig{}, errors.New("STORAGE_URL environment variable is not set")
	}

	return StorageConfig{
		URL:   storageURL,
		Token: os.Getenv("STORAGE_TOKEN"),
	}, nil
}

// HTTPUploader uploads attachment bytes to the object-storage service as a
// multipart POST and reads back the assigned public URL.
type HTTPUploader struct {
	endpoint string
	token    string
	client   *http.Client
}

func NewHTTPUploader(config StorageConfig) *HTTPUploader {
	return &HTTPUploader{
		endpoint: config.URL,
		token:    config.Token,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

func (u *HTTPUploader) Upload(ctx context.Context, data []byte, folder string) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if err := writer.WriteField("folder", folder); err != nil {
		return "", fmt.Errorf("error writing folder field: %w", err)
	}
	part, err := writer.CreateFormFile("file", "attachment")
	if err != nil {
		return "", fmt.Errorf("error creating form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("error writing file payload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("error finalizing multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.endpoint, &body)
	if err != nil {
		return "", fmt.Errorf("error building upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if u.token != "" {
		req.Header.Set("Authorization", "Bearer "+u.token)
	}

	resp, err := u.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("error calling storage service: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("storage service returned status %d: %s", resp.StatusCode, respBody)
	}

	var result struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("error decoding storage response: %w", err)
	}
	if result.URL == "" {
		return "", errors.New("storage service returned an empty URL")
	}

	return result.URL, nil
}
