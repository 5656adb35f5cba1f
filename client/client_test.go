package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ontograph/ontograph/config"
)

const fixtureOBO = `format-version: 1.2
ontology: test

[Term]
id: Z:0000001
name: root

[Term]
id: A:0000001
name: left
is_a: Z:0000001 ! root

[Term]
id: B:0000001
name: right
is_a: Z:0000001 ! root

[Term]
id: D:0000001
name: bottom
is_a: A:0000001 ! left
is_a: B:0000001 ! right
`

func newClient(t *testing.T) *Client {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Cache.Dir = t.TempDir()
	c, err := New(cfg, nil)
	require.NoError(t, err)
	return c
}

func writeFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.obo")
	require.NoError(t, os.WriteFile(path, []byte(fixtureOBO), 0o644))
	return path
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Cache.Dir = ""
	_, err := New(cfg, nil)
	require.Error(t, err)
}

func TestQueriesBeforeLoad(t *testing.T) {
	c := newClient(t)

	_, err := c.Parents("Z:0000001")
	assert.ErrorIs(t, err, ErrNotLoaded)
	_, err = c.Roots()
	assert.ErrorIs(t, err, ErrNotLoaded)
	_, err = c.Query("ancestors:Z:0000001")
	assert.ErrorIs(t, err, ErrNotLoaded)
}

func TestLoadFileAndQuery(t *testing.T) {
	c := newClient(t)
	require.NoError(t, c.LoadFile(writeFixture(t)))

	ok, err := c.TermExists("D:0000001")
	require.NoError(t, err)
	assert.True(t, ok)

	info, err := c.TermInfo("A:0000001")
	require.NoError(t, err)
	assert.Equal(t, "left", info.Name)

	parents, err := c.Parents("D:0000001")
	require.NoError(t, err)
	require.Len(t, parents, 2)

	ancestors, err := c.Ancestors("D:0000001")
	require.NoError(t, err)
	assert.Len(t, ancestors, 3)

	descendants, err := c.Descendants("Z:0000001")
	require.NoError(t, err)
	assert.Len(t, descendants, 3)

	siblings, err := c.Siblings("A:0000001")
	require.NoError(t, err)
	require.Len(t, siblings, 1)
	assert.Equal(t, "B:0000001", siblings[0].ID)

	roots, err := c.Roots()
	require.NoError(t, err)
	require.Len(t, roots, 1)
	assert.Equal(t, "Z:0000001", roots[0].ID)

	leaves, err := c.Leaves()
	require.NoError(t, err)
	require.Len(t, leaves, 1)
	assert.Equal(t, "D:0000001", leaves[0].ID)

	isDesc, err := c.IsDescendant("D:0000001", "Z:0000001")
	require.NoError(t, err)
	assert.True(t, isDesc)

	depth, err := c.Depth("D:0000001")
	require.NoError(t, err)
	assert.Equal(t, 2, depth)

	path, err := c.PathBetween("D:0000001", "Z:0000001")
	require.NoError(t, err)
	require.Len(t, path, 3)
	assert.Equal(t, "D:0000001", path[0].ID)
	assert.Equal(t, "Z:0000001", path[2].ID)

	lca, err := c.LowestCommonAncestors([]string{"A:0000001", "B:0000001"})
	require.NoError(t, err)
	require.Len(t, lca, 1)
	assert.Equal(t, "Z:0000001", lca[0].ID)

	trajectories, err := c.Trajectories("D:0000001")
	require.NoError(t, err)
	assert.Len(t, trajectories, 2)

	results, err := c.Query("children:Z:0000001")
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestLoadCatalog(t *testing.T) {
	var registry string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/registry.yml":
			_, _ = w.Write([]byte(registry))
		case "/test.obo":
			_, _ = w.Write([]byte(fixtureOBO))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()
	// The product PURL has to point at the test server.
	registry = `ontologies:
  - id: test
    title: Test Ontology
    products:
      - id: test.obo
        ontology_purl: ` + srv.URL + "/test.obo\n"

	cfg := config.DefaultConfig()
	cfg.Cache.Dir = t.TempDir()
	cfg.Catalog.RegistryURL = srv.URL + "/registry.yml"
	c, err := New(cfg, nil)
	require.NoError(t, err)

	summaries, err := c.ListOntologies(context.Background())
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "test", summaries[0].ID)

	require.NoError(t, c.LoadCatalog(context.Background(), "test", "obo"))

	roots, err := c.Roots()
	require.NoError(t, err)
	require.Len(t, roots, 1)
}

func TestLoadURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(fixtureOBO))
	}))
	defer srv.Close()

	c := newClient(t)
	require.NoError(t, c.LoadURL(context.Background(), srv.URL+"/any.obo", "any.obo"))

	ok, err := c.TermExists("Z:0000001")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPurgeCache(t *testing.T) {
	c := newClient(t)

	require.NoError(t, os.WriteFile(filepath.Join(c.fetcher.CacheDir(), "a.obo"), []byte("x"), 0o644))
	removed, err := c.PurgeCache("*.obo")
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
}
