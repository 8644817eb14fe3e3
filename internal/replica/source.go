// Package replica fetches a fresh copy of the replicated store and swaps it in.
package replica

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/masterc/wealthdesk/internal/config"
)

// ErrNotConfigured is returned when no replica source is set
var ErrNotConfigured = errors.New("replica source not configured")

// Source downloads a replica file to a local path
type Source interface {
	// Fetch writes the replica to destPath and returns the number of bytes written
	Fetch(ctx context.Context, destPath string) (int64, error)
	Name() string
}

// NewSource builds the source described by cfg
func NewSource(ctx context.Context, cfg config.ReplicaSource) (Source, error) {
	switch {
	case cfg.URL != "":
		return NewHTTPSource(cfg.URL, nil), nil
	case cfg.S3Bucket != "":
		return NewS3Source(ctx, cfg)
	default:
		return nil, ErrNotConfigured
	}
}

// HTTPSource fetches the replica with a plain GET
type HTTPSource struct {
	url    string
	client *http.Client
}

// NewHTTPSource creates an HTTP source; a nil client uses a 5 minute timeout
func NewHTTPSource(url string, client *http.Client) *HTTPSource {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Minute}
	}
	return &HTTPSource{url: url, client: client}
}

// Name returns the source URL
func (s *HTTPSource) Name() string {
	return s.url
}

// Fetch downloads the replica to destPath
func (s *HTTPSource) Fetch(ctx context.Context, destPath string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to build replica request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to download replica: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("failed to download replica: unexpected status %d", resp.StatusCode)
	}

	file, err := os.Create(destPath)
	if err != nil {
		return 0, fmt.Errorf("failed to create replica file: %w", err)
	}

	n, err := io.Copy(file, resp.Body)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return n, fmt.Errorf("failed to write replica file: %w", err)
	}
	return n, nil
}
