// Package download retrieves ontology files over HTTP and caches them on
// disk. A cached file is reused on subsequent fetches; downloads are
// written to a temporary file and renamed into place so a failed
// transfer never leaves a partial file behind.
package download

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"
)

// DefaultTimeout bounds one download when the caller's context carries
// no deadline of its own.
const DefaultTimeout = 5 * time.Minute

// HTTPStatusError indicates a download request that came back non-2xx.
type HTTPStatusError struct {
	URL        string
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("download: GET %s returned %d", e.URL, e.StatusCode)
}

// Request names one file to fetch in a batch.
type Request struct {
	URL      string
	Filename string
}

// Fetcher downloads files into a cache directory.
type Fetcher struct {
	cacheDir string
	client   *http.Client
	logger   *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) { f.client = c }
}

// WithLogger sets the fetcher's logger.
func WithLogger(l *slog.Logger) Option {
	return func(f *Fetcher) { f.logger = l }
}

// NewFetcher creates a Fetcher caching into the given directory, which
// is created if missing.
func NewFetcher(cacheDir string, opts ...Option) (*Fetcher, error) {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("download: create cache dir: %w", err)
	}

	f := &Fetcher{
		cacheDir: cacheDir,
		client:   &http.Client{Timeout: DefaultTimeout},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// CacheDir returns the cache directory.
func (f *Fetcher) CacheDir() string {
	return f.cacheDir
}

// Fetch downloads a URL into the cache under the given filename and
// returns the cached path. A file already present in the cache is
// reused without touching the network.
func (f *Fetcher) Fetch(ctx context.Context, url, filename string) (string, error) {
	dest := filepath.Join(f.cacheDir, filename)
	if _, err := os.Stat(dest); err == nil {
		f.logger.Debug("cache hit", slog.String("file", filename))
		return dest, nil
	}

	f.logger.Info("downloading", slog.String("url", url), slog.String("file", filename))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("download: build request for %s: %w", url, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("download: GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &HTTPStatusError{URL: url, StatusCode: resp.StatusCode}
	}

	// Write to a uniquely named temp file in the cache dir, then rename.
	// Rename within one directory is atomic, so concurrent fetchers of
	// the same file cannot observe a partial download.
	tmp := dest + "." + uuid.NewString() + ".tmp"
	out, err := os.Create(tmp)
	if err != nil {
		return "", fmt.Errorf("download: create temp file: %w", err)
	}

	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(tmp)
		return "", fmt.Errorf("download: write %s: %w", filename, err)
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("download: close temp file: %w", err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("download: finalize %s: %w", filename, err)
	}

	return dest, nil
}

// FetchBatch downloads every request in order, returning the cached
// paths. The first failure aborts the batch.
func (f *Fetcher) FetchBatch(ctx context.Context, reqs []Request) ([]string, error) {
	paths := make([]string, 0, len(reqs))
	for _, r := range reqs {
		p, err := f.Fetch(ctx, r.URL, r.Filename)
		if err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}

// Cached returns the cached filenames matching a doublestar pattern, or
// every cached file for pattern "".
func (f *Fetcher) Cached(pattern string) ([]string, error) {
	if pattern == "" {
		pattern = "*"
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("download: invalid pattern %q", pattern)
	}

	entries, err := os.ReadDir(f.cacheDir)
	if err != nil {
		return nil, fmt.Errorf("download: read cache dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ok, err := doublestar.Match(pattern, e.Name())
		if err != nil {
			return nil, fmt.Errorf("download: match pattern %q: %w", pattern, err)
		}
		if ok {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// Purge removes the cached files matching a doublestar pattern and
// returns how many were removed.
func (f *Fetcher) Purge(pattern string) (int, error) {
	names, err := f.Cached(pattern)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, name := range names {
		if err := os.Remove(filepath.Join(f.cacheDir, name)); err != nil {
			return removed, fmt.Errorf("download: remove %s: %w", name, err)
		}
		f.logger.Debug("purged cached file", slog.String("file", name))
		removed++
	}
	return removed, nil
}
