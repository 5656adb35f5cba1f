package download

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, hits *atomic.Int64) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		switch r.URL.Path {
		case "/go.obo":
			_, _ = w.Write([]byte("format-version: 1.2\n"))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetcher_Fetch(t *testing.T) {
	var hits atomic.Int64
	srv := newTestServer(t, &hits)
	f, err := NewFetcher(t.TempDir())
	require.NoError(t, err)

	t.Run("downloads and caches", func(t *testing.T) {
		path, err := f.Fetch(context.Background(), srv.URL+"/go.obo", "go.obo")
		require.NoError(t, err)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "format-version: 1.2\n", string(data))
		assert.Equal(t, int64(1), hits.Load())
	})

	t.Run("cache hit skips the network", func(t *testing.T) {
		path, err := f.Fetch(context.Background(), srv.URL+"/go.obo", "go.obo")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(f.CacheDir(), "go.obo"), path)
		assert.Equal(t, int64(1), hits.Load(), "no second request")
	})

	t.Run("http error surfaces status", func(t *testing.T) {
		_, err := f.Fetch(context.Background(), srv.URL+"/missing.obo", "missing.obo")
		var statusErr *HTTPStatusError
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	})

	t.Run("no partial file left after failure", func(t *testing.T) {
		entries, err := os.ReadDir(f.CacheDir())
		require.NoError(t, err)
		for _, e := range entries {
			assert.NotContains(t, e.Name(), ".tmp")
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := f.Fetch(ctx, srv.URL+"/go.obo", "other.obo")
		require.Error(t, err)
	})
}

func TestFetcher_FetchBatch(t *testing.T) {
	srv := newTestServer(t, nil)
	f, err := NewFetcher(t.TempDir())
	require.NoError(t, err)

	t.Run("all succeed", func(t *testing.T) {
		paths, err := f.FetchBatch(context.Background(), []Request{
			{URL: srv.URL + "/go.obo", Filename: "go.obo"},
			{URL: srv.URL + "/go.obo", Filename: "go-copy.obo"},
		})
		require.NoError(t, err)
		assert.Len(t, paths, 2)
	})

	t.Run("first failure aborts", func(t *testing.T) {
		_, err := f.FetchBatch(context.Background(), []Request{
			{URL: srv.URL + "/missing.obo", Filename: "missing.obo"},
			{URL: srv.URL + "/go.obo", Filename: "never.obo"},
		})
		require.Error(t, err)
		_, statErr := os.Stat(filepath.Join(f.CacheDir(), "never.obo"))
		assert.True(t, os.IsNotExist(statErr))
	})
}

func TestFetcher_CachedAndPurge(t *testing.T) {
	f, err := NewFetcher(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{"go.obo", "go.owl", "chebi.obo", "obofoundry.yml"} {
		require.NoError(t, os.WriteFile(filepath.Join(f.CacheDir(), name), []byte("x"), 0o644))
	}

	t.Run("list all", func(t *testing.T) {
		names, err := f.Cached("")
		require.NoError(t, err)
		assert.Len(t, names, 4)
	})

	t.Run("list by pattern", func(t *testing.T) {
		names, err := f.Cached("*.obo")
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"go.obo", "chebi.obo"}, names)
	})

	t.Run("purge by pattern", func(t *testing.T) {
		removed, err := f.Purge("go.*")
		require.NoError(t, err)
		assert.Equal(t, 2, removed)

		names, err := f.Cached("")
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"chebi.obo", "obofoundry.yml"}, names)
	})

	t.Run("invalid pattern", func(t *testing.T) {
		_, err := f.Cached("[")
		require.Error(t, err)
	})
}
