// Package client provides the high-level facade over the catalog, the
// downloader, the loaders, and the query engine: list available
// ontologies, load one from a file, a URL, or a catalog ID, then query
// the resulting graph.
package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ontograph/ontograph/catalog"
	"github.com/ontograph/ontograph/config"
	"github.com/ontograph/ontograph/download"
	"github.com/ontograph/ontograph/graph"
	"github.com/ontograph/ontograph/loader"
	"github.com/ontograph/ontograph/ontology"
	"github.com/ontograph/ontograph/query"
)

// ErrNotLoaded is returned by query methods before any ontology has
// been loaded.
var ErrNotLoaded = errors.New("client: no ontology loaded")

// Client is the ontograph facade. Loading an ontology replaces the
// current graph snapshot; the previous snapshot, if still referenced by
// a caller, stays valid because graphs are immutable.
type Client struct {
	cfg     *config.Config
	logger  *slog.Logger
	fetcher *download.Fetcher
	formats *loader.Registry

	cat    *catalog.Catalog
	engine *query.Engine
}

// New creates a Client from a configuration. A nil logger selects
// slog.Default().
func New(cfg *config.Config, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("client: invalid config: %w", err)
	}

	fetcher, err := download.NewFetcher(cfg.Cache.Dir, download.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	return &Client{
		cfg:     cfg,
		logger:  logger,
		fetcher: fetcher,
		formats: loader.DefaultRegistry,
	}, nil
}

// Catalog returns the foundry catalog, fetching and caching the
// registry file on first use.
func (c *Client) Catalog(ctx context.Context) (*catalog.Catalog, error) {
	if c.cat != nil {
		return c.cat, nil
	}

	path, err := c.fetcher.Fetch(ctx, c.cfg.Catalog.RegistryURL, catalog.RegistryFilename)
	if err != nil {
		return nil, err
	}
	cat, err := catalog.LoadFile(path)
	if err != nil {
		return nil, err
	}
	c.cat = cat
	c.logger.Debug("catalog loaded", slog.Int("ontologies", cat.Len()))
	return cat, nil
}

// ListOntologies returns the id/title summaries of every catalog
// ontology.
func (c *Client) ListOntologies(ctx context.Context) ([]catalog.Summary, error) {
	cat, err := c.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	return cat.List(), nil
}

// LoadFile loads an ontology from a local file, replacing the current
// graph.
func (c *Client) LoadFile(path string) error {
	doc, err := c.formats.ParseFile(path)
	if err != nil {
		return err
	}
	return c.install(doc)
}

// LoadURL downloads an ontology (or reuses the cached copy) and loads
// it, replacing the current graph.
func (c *Client) LoadURL(ctx context.Context, url, filename string) error {
	path, err := c.fetcher.Fetch(ctx, url, filename)
	if err != nil {
		return err
	}
	return c.LoadFile(path)
}

// LoadCatalog resolves a catalog ontology ID to its download URL in the
// given format, fetches it, and loads it.
func (c *Client) LoadCatalog(ctx context.Context, id, format string) error {
	path, err := c.Fetch(ctx, id, format)
	if err != nil {
		return err
	}
	return c.LoadFile(path)
}

func (c *Client) install(doc *ontology.Document) error {
	g, err := graph.Build(doc)
	if err != nil {
		return err
	}
	c.engine = query.NewEngine(g)
	c.logger.Info("ontology loaded",
		slog.String("ontology", g.Ontology()),
		slog.Int("terms", g.Len()),
	)
	return nil
}

// Engine returns the query engine for the loaded ontology.
func (c *Client) Engine() (*query.Engine, error) {
	if c.engine == nil {
		return nil, ErrNotLoaded
	}
	return c.engine, nil
}

// Graph returns the loaded graph.
func (c *Client) Graph() (*graph.Graph, error) {
	e, err := c.Engine()
	if err != nil {
		return nil, err
	}
	return e.Graph(), nil
}

// TermExists reports whether a term ID is present in the loaded graph.
func (c *Client) TermExists(id string) (bool, error) {
	g, err := c.Graph()
	if err != nil {
		return false, err
	}
	return g.Contains(id), nil
}

// TermInfo returns the term metadata for an ID.
func (c *Client) TermInfo(id string) (ontology.Term, error) {
	g, err := c.Graph()
	if err != nil {
		return ontology.Term{}, err
	}
	return g.Term(id)
}

// Parents returns the direct parents of a term.
func (c *Client) Parents(id string) ([]ontology.Term, error) {
	e, err := c.Engine()
	if err != nil {
		return nil, err
	}
	return e.Navigator().Parents(id)
}

// Children returns the direct children of a term.
func (c *Client) Children(id string) ([]ontology.Term, error) {
	e, err := c.Engine()
	if err != nil {
		return nil, err
	}
	return e.Navigator().Children(id)
}

// Ancestors returns every transitive ancestor of a term.
func (c *Client) Ancestors(id string) ([]ontology.Term, error) {
	e, err := c.Engine()
	if err != nil {
		return nil, err
	}
	return e.Navigator().Ancestors(id)
}

// Descendants returns every transitive descendant of a term.
func (c *Client) Descendants(id string) ([]ontology.Term, error) {
	e, err := c.Engine()
	if err != nil {
		return nil, err
	}
	return e.Navigator().Descendants(id)
}

// Siblings returns the terms sharing a direct parent with the given
// term.
func (c *Client) Siblings(id string) ([]ontology.Term, error) {
	e, err := c.Engine()
	if err != nil {
		return nil, err
	}
	return e.Navigator().Siblings(id)
}

// Roots returns the root terms of the loaded graph.
func (c *Client) Roots() ([]ontology.Term, error) {
	g, err := c.Graph()
	if err != nil {
		return nil, err
	}
	return g.Roots(), nil
}

// Leaves returns the terms with no children.
func (c *Client) Leaves() ([]ontology.Term, error) {
	g, err := c.Graph()
	if err != nil {
		return nil, err
	}
	return g.Leaves(), nil
}

// IsDescendant reports whether child transitively descends from parent.
func (c *Client) IsDescendant(childID, parentID string) (bool, error) {
	e, err := c.Engine()
	if err != nil {
		return false, err
	}
	return e.Relations().IsDescendant(childID, parentID)
}

// CommonAncestors returns the shared ancestors of a set of terms.
func (c *Client) CommonAncestors(ids []string) ([]ontology.Term, error) {
	e, err := c.Engine()
	if err != nil {
		return nil, err
	}
	return e.Relations().CommonAncestors(ids)
}

// LowestCommonAncestors returns the closest shared ancestors of a set
// of terms.
func (c *Client) LowestCommonAncestors(ids []string) ([]ontology.Term, error) {
	e, err := c.Engine()
	if err != nil {
		return nil, err
	}
	return e.Relations().LowestCommonAncestors(ids)
}

// Depth returns the shortest distance from the nearest root to a term.
func (c *Client) Depth(id string) (int, error) {
	e, err := c.Engine()
	if err != nil {
		return 0, err
	}
	return e.Introspector().DistanceFromRoot(id)
}

// PathBetween returns one shortest path between two terms.
func (c *Client) PathBetween(a, b string) ([]ontology.Term, error) {
	e, err := c.Engine()
	if err != nil {
		return nil, err
	}
	return e.Introspector().PathBetween(a, b)
}

// Trajectories enumerates every root-to-term path, bounded by the
// configured budget.
func (c *Client) Trajectories(id string) ([][]ontology.Term, error) {
	e, err := c.Engine()
	if err != nil {
		return nil, err
	}
	return e.Introspector().TrajectoriesFromRoot(id, c.trajectoryOptions())
}

// Query evaluates an "op:term_id" expression against the loaded graph.
func (c *Client) Query(expression string) ([]ontology.Term, error) {
	e, err := c.Engine()
	if err != nil {
		return nil, err
	}
	return e.Execute(expression)
}

// Fetch downloads a catalog ontology into the cache without loading it
// and returns the cached file path.
func (c *Client) Fetch(ctx context.Context, id, format string) (string, error) {
	cat, err := c.Catalog(ctx)
	if err != nil {
		return "", err
	}
	url, err := cat.DownloadURL(id, format)
	if err != nil {
		return "", err
	}
	return c.fetcher.Fetch(ctx, url, id+"."+format)
}

// CachedFiles lists cached downloads matching a glob pattern. An empty
// pattern lists everything.
func (c *Client) CachedFiles(pattern string) ([]string, error) {
	return c.fetcher.Cached(pattern)
}

// PurgeCache removes cached downloads matching a glob pattern.
func (c *Client) PurgeCache(pattern string) (int, error) {
	return c.fetcher.Purge(pattern)
}

func (c *Client) trajectoryOptions() query.TrajectoryOptions {
	return query.TrajectoryOptions{
		MaxPaths: c.cfg.Query.MaxTrajectories,
		MaxSteps: c.cfg.Query.MaxTrajectorySteps,
	}
}
