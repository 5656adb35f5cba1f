// Package loader parses ontology serializations into the format-agnostic
// document shape the graph is built from. Parsers are looked up through a
// registry keyed by format name, with extension-based detection for file
// paths.
package loader

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ontograph/ontograph/ontology"
)

// Supported format names.
const (
	FormatOBO = "obo"
	FormatOWL = "owl"
)

// Parser defines the interface for ontology format parsers.
type Parser interface {
	// Parse reads one ontology serialization and returns its terms and
	// is-a relations in file order.
	Parse(r io.Reader) (*ontology.Document, error)

	// CanParse returns true if this parser handles the given format name.
	CanParse(format string) bool

	// Format returns the primary format name for this parser.
	Format() string
}

// Registry manages ontology parsers.
type Registry struct {
	mu      sync.RWMutex
	parsers map[string]Parser // keyed by primary format name
}

// DefaultRegistry is the global parser registry with default parsers.
var DefaultRegistry = NewRegistry()

// NewRegistry creates a new parser registry with the OBO and OWL parsers
// registered.
func NewRegistry() *Registry {
	r := &Registry{
		parsers: make(map[string]Parser),
	}
	r.Register(NewOBOParser())
	r.Register(NewOWLParser())
	return r
}

// Register adds a parser to the registry.
func (r *Registry) Register(p Parser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.parsers[p.Format()] = p
}

// GetByFormat returns a parser for the given format name, or nil.
func (r *Registry) GetByFormat(format string) Parser {
	r.mu.RLock()
	defer r.mu.RUnlock()

	format = strings.ToLower(format)
	if p, ok := r.parsers[format]; ok {
		return p
	}
	for _, p := range r.parsers {
		if p.CanParse(format) {
			return p
		}
	}
	return nil
}

// GetByPath returns a parser for a file based on its extension.
func (r *Registry) GetByPath(path string) Parser {
	return r.GetByFormat(FormatFromExtension(filepath.Ext(path)))
}

// Parse parses an ontology stream in the named format.
func (r *Registry) Parse(format string, reader io.Reader) (*ontology.Document, error) {
	p := r.GetByFormat(format)
	if p == nil {
		return nil, fmt.Errorf("loader: no parser for format %q", format)
	}
	return p.Parse(reader)
}

// ParseFile opens and parses an ontology file, detecting the format from
// the file extension.
func (r *Registry) ParseFile(path string) (*ontology.Document, error) {
	p := r.GetByPath(path)
	if p == nil {
		return nil, fmt.Errorf("loader: no parser for file type %q", filepath.Ext(path))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("loader: open %s: %w", path, err)
	}
	defer f.Close()

	doc, err := p.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("loader: parse %s: %w", path, err)
	}
	return doc, nil
}

// Formats returns all registered format names.
func (r *Registry) Formats() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	formats := make([]string, 0, len(r.parsers))
	for f := range r.parsers {
		formats = append(formats, f)
	}
	return formats
}

// FormatFromExtension returns the format name for a file extension.
func FormatFromExtension(ext string) string {
	switch strings.ToLower(ext) {
	case ".obo":
		return FormatOBO
	case ".owl", ".rdf", ".xml":
		return FormatOWL
	default:
		return ""
	}
}
