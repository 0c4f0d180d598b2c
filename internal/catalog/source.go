package catalog

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// maxDatasetBytes bounds a single dataset download.
const maxDatasetBytes = 32 << 20

// Source fetches the raw bytes of a dataset file.
type Source interface {
	Fetch(ctx context.Context, file string) ([]byte, error)
	// Describe names the source for logs.
	Describe() string
}

// DirSource reads datasets from a local directory.
type DirSource struct {
	dir string
}

// NewDirSource returns a source rooted at dir.
func NewDirSource(dir string) *DirSource {
	return &DirSource{dir: dir}
}

// Describe implements Source.
func (s *DirSource) Describe() string { return "dir:" + s.dir }

// Fetch implements Source.
func (s *DirSource) Fetch(ctx context.Context, file string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if filepath.Base(file) != file {
		return nil, fmt.Errorf("invalid dataset file %q", file)
	}
	return os.ReadFile(filepath.Join(s.dir, file)) //#nosec G304 -- file comes from the manifest
}

// HTTPSource reads datasets from an origin that serves /data/<file>.
type HTTPSource struct {
	baseURL string
	client  *http.Client
}

// NewHTTPSource returns a source for baseURL using client.
// A nil client gets NewHTTPClient(10s).
func NewHTTPSource(baseURL string, client *http.Client) *HTTPSource {
	if client == nil {
		client = NewHTTPClient(10 * time.Second)
	}
	return &HTTPSource{baseURL: baseURL, client: client}
}

// Describe implements Source.
func (s *HTTPSource) Describe() string { return "http:" + s.baseURL }

// Fetch implements Source.
func (s *HTTPSource) Fetch(ctx context.Context, file string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/data/"+file, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("GET %s: unexpected status %d", req.URL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDatasetBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", req.URL, err)
	}
	if len(body) > maxDatasetBytes {
		return nil, fmt.Errorf("GET %s: body exceeds %d bytes", req.URL, maxDatasetBytes)
	}
	return body, nil
}

// NewHTTPClient builds a client tuned for small JSON downloads from one origin.
func NewHTTPClient(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   5 * time.Second,
		ResponseHeaderTimeout: timeout,
		ExpectContinueTimeout: time.Second,
		MaxIdleConns:          32,
		MaxIdleConnsPerHost:   16,
		IdleConnTimeout:       90 * time.Second,
		ForceAttemptHTTP2:     true,
	}
	return &http.Client{Transport: transport, Timeout: timeout}
}
