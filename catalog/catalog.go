// Package catalog reads the OBO Foundry registry and resolves ontology
// metadata and download URLs from it. The registry is a YAML document
// listing every foundry ontology with its title, description, and
// downloadable products.
package catalog

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultRegistryURL is the published OBO Foundry registry.
const DefaultRegistryURL = "https://raw.githubusercontent.com/OBOFoundry/OBOFoundry.github.io/master/registry/ontologies.yml"

// RegistryFilename is the name the registry file is cached under.
const RegistryFilename = "obofoundry.yml"

// Product is one downloadable artifact of an ontology, e.g. go.obo.
type Product struct {
	ID           string `yaml:"id" json:"id"`
	OntologyPURL string `yaml:"ontology_purl" json:"ontology_purl"`
}

// Entry is one ontology in the foundry registry.
type Entry struct {
	ID          string    `yaml:"id" json:"id"`
	Title       string    `yaml:"title" json:"title"`
	Description string    `yaml:"description,omitempty" json:"description,omitempty"`
	Homepage    string    `yaml:"homepage,omitempty" json:"homepage,omitempty"`
	IsObsolete  bool      `yaml:"is_obsolete,omitempty" json:"is_obsolete,omitempty"`
	Products    []Product `yaml:"products,omitempty" json:"products,omitempty"`
}

// Formats returns the formats this entry can be downloaded in, derived
// from the product IDs (go.obo -> obo).
func (e Entry) Formats() []string {
	var formats []string
	for _, p := range e.Products {
		if idx := strings.LastIndexByte(p.ID, '.'); idx >= 0 {
			formats = append(formats, p.ID[idx+1:])
		}
	}
	return formats
}

// Summary is the id/title pair used for catalog listings.
type Summary struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// OntologyNotFoundError indicates a catalog lookup for an unknown
// ontology ID.
type OntologyNotFoundError struct {
	ID string
}

func (e *OntologyNotFoundError) Error() string {
	return fmt.Sprintf("catalog: ontology %q not in registry", e.ID)
}

// FormatUnavailableError indicates the ontology exists but has no
// product in the requested format.
type FormatUnavailableError struct {
	ID     string
	Format string
	Have   []string
}

func (e *FormatUnavailableError) Error() string {
	return fmt.Sprintf("catalog: ontology %q has no %q product (available: %s)",
		e.ID, e.Format, strings.Join(e.Have, ", "))
}

// Catalog is a parsed foundry registry. It is immutable after parsing.
type Catalog struct {
	entries map[string]Entry
	order   []string
}

// registryFile mirrors the top-level shape of the registry YAML.
type registryFile struct {
	Ontologies []Entry `yaml:"ontologies"`
}

// Parse reads a registry YAML stream. Entries without an ID and entries
// marked obsolete are skipped.
func Parse(r io.Reader) (*Catalog, error) {
	var file registryFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("catalog: parse registry: %w", err)
	}

	c := &Catalog{entries: make(map[string]Entry, len(file.Ontologies))}
	for _, e := range file.Ontologies {
		if e.ID == "" || e.IsObsolete {
			continue
		}
		if _, dup := c.entries[e.ID]; dup {
			continue
		}
		c.entries[e.ID] = e
		c.order = append(c.order, e.ID)
	}
	return c, nil
}

// LoadFile parses a registry YAML file from disk.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: open registry: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Len returns the number of catalog entries.
func (c *Catalog) Len() int {
	return len(c.order)
}

// List returns the id/title summaries of every ontology in registry
// order.
func (c *Catalog) List() []Summary {
	out := make([]Summary, 0, len(c.order))
	for _, id := range c.order {
		e := c.entries[id]
		out = append(out, Summary{ID: e.ID, Title: e.Title})
	}
	return out
}

// Get returns the registry entry for an ontology ID.
func (c *Catalog) Get(id string) (Entry, error) {
	e, ok := c.entries[id]
	if !ok {
		return Entry{}, &OntologyNotFoundError{ID: id}
	}
	return e, nil
}

// DownloadURL resolves the download URL for an ontology in the given
// format by matching the "<id>.<format>" product.
func (c *Catalog) DownloadURL(id, format string) (string, error) {
	e, ok := c.entries[id]
	if !ok {
		return "", &OntologyNotFoundError{ID: id}
	}

	want := id + "." + strings.ToLower(format)
	for _, p := range e.Products {
		if p.ID == want && p.OntologyPURL != "" {
			return p.OntologyPURL, nil
		}
	}
	return "", &FormatUnavailableError{ID: id, Format: format, Have: e.Formats()}
}

// WriteTable writes the catalog as an aligned two-column listing.
func (c *Catalog) WriteTable(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "%-20s %-40s\n", "ID", "Title"); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, strings.Repeat("-", 60)); err != nil {
		return err
	}
	for _, s := range c.List() {
		if _, err := fmt.Fprintf(w, "%-20s %-40s\n", s.ID, s.Title); err != nil {
			return err
		}
	}
	return nil
}
