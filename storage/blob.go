// Package storage fetches document files from blob storage.
package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/alexphommasathit/policyqa/helper"
)

// BlobStore downloads the raw bytes of a stored document file.
type BlobStore interface {
	Download(ctx context.Context, filePath string) ([]byte, error)
}

// HTTPBlobStore reads blobs from an HTTP object store. filePath is resolved
// relative to the configured base URL.
type HTTPBlobStore struct {
	baseURL string
	client  *http.Client
}

// NewHTTPBlobStore creates a blob store rooted at baseURL.
func NewHTTPBlobStore(baseURL string) *HTTPBlobStore {
	return &HTTPBlobStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// Download fetches one blob. A missing object or any non-OK status is an
// error, ingestion cannot proceed without the file.
func (s *HTTPBlobStore) Download(ctx context.Context, filePath string) ([]byte, error) {
	segments := strings.Split(strings.TrimLeft(filePath, "/"), "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	blobURL := s.baseURL + "/" + strings.Join(segments, "/")
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, blobURL, nil)
	if err != nil {
		return nil, helper.NewError("Download", err)
	}

	response, err := s.client.Do(request)
	if err != nil {
		return nil, helper.NewError("Download", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, helper.NewError("Download", fmt.Errorf("blob store returned status %d for %s", response.StatusCode, filePath))
	}

	data, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, helper.NewError("Download", err)
	}
	return data, nil
}
