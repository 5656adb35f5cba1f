// Package ontology defines the value types shared between the loaders and
// the graph: terms, is-a relations, and the loader output document.
package ontology

// Synonym represents a term synonym with its scope.
type Synonym struct {
	Text  string `json:"text"`
	Scope string `json:"scope,omitempty"` // EXACT, BROAD, NARROW, RELATED
}

// Term represents a single ontology concept. The ID is globally unique
// within one ontology and immutable after construction; all other fields
// are optional descriptive metadata.
type Term struct {
	ID         string    `json:"id"`
	Name       string    `json:"name,omitempty"`
	Definition string    `json:"definition,omitempty"`
	Synonyms   []Synonym `json:"synonyms,omitempty"`
}

// Relation is a directed is-a edge from a child term to one of its
// parent terms.
type Relation struct {
	ChildID  string `json:"child_id"`
	ParentID string `json:"parent_id"`
}

// Document is the format-agnostic output of an ontology loader: the
// ordered term list and the ordered relation list, plus ontology-level
// metadata. Order is preserved from the source file and determines the
// iteration order of the graph built from it.
type Document struct {
	Ontology      string     `json:"ontology,omitempty"`
	FormatVersion string     `json:"format_version,omitempty"`
	DataVersion   string     `json:"data_version,omitempty"`
	Terms         []Term     `json:"terms"`
	Relations     []Relation `json:"relations"`
}
