// Package graph holds the immutable in-memory representation of one
// ontology: the term map and the parent/child adjacency indices built
// from a loader document. It is the single source of truth for structure;
// all traversal lives in the query package.
package graph

import (
	"sort"

	"github.com/ontograph/ontograph/ontology"
)

// Graph is an immutable ontology DAG. It is built once from a loader
// document and never mutated afterwards, so it is safe for concurrent
// readers without locking. Re-loading an ontology constructs a fresh
// Graph; existing instances remain valid.
type Graph struct {
	meta ontology.Document // Terms/Relations nilled out after indexing

	terms map[string]ontology.Term
	order []string // term IDs in first-seen insertion order

	parents  map[string][]string // child ID -> parent IDs, insertion order
	children map[string][]string // parent ID -> child IDs, insertion order

	roots []string // IDs with zero parents, insertion order
}

// Build constructs a Graph from a loader document. It fails with
// DuplicateTermError, DanglingReferenceError, CycleError, or NoRootError
// when the input violates a structural invariant; a partially valid graph
// is never produced.
func Build(doc *ontology.Document) (*Graph, error) {
	g := &Graph{
		meta: ontology.Document{
			Ontology:      doc.Ontology,
			FormatVersion: doc.FormatVersion,
			DataVersion:   doc.DataVersion,
		},
		terms:    make(map[string]ontology.Term, len(doc.Terms)),
		order:    make([]string, 0, len(doc.Terms)),
		parents:  make(map[string][]string),
		children: make(map[string][]string),
	}

	for _, t := range doc.Terms {
		if _, exists := g.terms[t.ID]; exists {
			return nil, &DuplicateTermError{ID: t.ID}
		}
		g.terms[t.ID] = t
		g.order = append(g.order, t.ID)
	}

	// Index relations, deduplicating repeated identical edges while
	// keeping first-seen order.
	parentSeen := make(map[string]map[string]struct{})
	for _, r := range doc.Relations {
		if _, ok := g.terms[r.ChildID]; !ok {
			return nil, &DanglingReferenceError{
				ChildID: r.ChildID, ParentID: r.ParentID, MissingID: r.ChildID,
			}
		}
		if _, ok := g.terms[r.ParentID]; !ok {
			return nil, &DanglingReferenceError{
				ChildID: r.ChildID, ParentID: r.ParentID, MissingID: r.ParentID,
			}
		}
		seen := parentSeen[r.ChildID]
		if seen == nil {
			seen = make(map[string]struct{})
			parentSeen[r.ChildID] = seen
		}
		if _, dup := seen[r.ParentID]; dup {
			continue
		}
		seen[r.ParentID] = struct{}{}
		g.parents[r.ChildID] = append(g.parents[r.ChildID], r.ParentID)
		g.children[r.ParentID] = append(g.children[r.ParentID], r.ChildID)
	}

	if err := g.checkAcyclic(); err != nil {
		return nil, err
	}

	for _, id := range g.order {
		if len(g.parents[id]) == 0 {
			g.roots = append(g.roots, id)
		}
	}
	if len(g.roots) == 0 {
		return nil, &NoRootError{}
	}

	return g, nil
}

// checkAcyclic runs Kahn's algorithm over the parent relation: terms with
// zero parents are removed repeatedly; any term left with remaining
// in-degree belongs to a cycle.
func (g *Graph) checkAcyclic() error {
	indeg := make(map[string]int, len(g.order))
	queue := make([]string, 0, len(g.order))
	for _, id := range g.order {
		indeg[id] = len(g.parents[id])
		if indeg[id] == 0 {
			queue = append(queue, id)
		}
	}

	processed := 0
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		processed++
		for _, child := range g.children[id] {
			indeg[child]--
			if indeg[child] == 0 {
				queue = append(queue, child)
			}
		}
	}

	if processed == len(g.order) {
		return nil
	}

	members := make([]string, 0, len(g.order)-processed)
	for _, id := range g.order {
		if indeg[id] > 0 {
			members = append(members, id)
		}
	}
	sort.Strings(members)
	return &CycleError{Members: members}
}

// Term returns the term with the given ID, or TermNotFoundError.
func (g *Graph) Term(id string) (ontology.Term, error) {
	t, ok := g.terms[id]
	if !ok {
		return ontology.Term{}, &TermNotFoundError{ID: id}
	}
	return t, nil
}

// Contains reports whether a term with the given ID exists in the graph.
func (g *Graph) Contains(id string) bool {
	_, ok := g.terms[id]
	return ok
}

// Len returns the number of terms in the graph.
func (g *Graph) Len() int {
	return len(g.order)
}

// Ontology returns the ontology name from the loader metadata.
func (g *Graph) Ontology() string { return g.meta.Ontology }

// DataVersion returns the data version from the loader metadata.
func (g *Graph) DataVersion() string { return g.meta.DataVersion }

// FormatVersion returns the format version from the loader metadata.
func (g *Graph) FormatVersion() string { return g.meta.FormatVersion }

// Roots returns the cached set of root terms, terms with zero parents,
// in insertion order. A built graph always has at least one root.
func (g *Graph) Roots() []ontology.Term {
	return g.resolve(g.roots)
}

// RootIDs returns the IDs of the root terms in insertion order.
func (g *Graph) RootIDs() []string {
	out := make([]string, len(g.roots))
	copy(out, g.roots)
	return out
}

// Terms returns every term in the graph in insertion order.
func (g *Graph) Terms() []ontology.Term {
	return g.resolve(g.order)
}

// Leaves returns the terms with zero children, in insertion order.
func (g *Graph) Leaves() []ontology.Term {
	var ids []string
	for _, id := range g.order {
		if len(g.children[id]) == 0 {
			ids = append(ids, id)
		}
	}
	return g.resolve(ids)
}

// ParentsOf returns the direct parents of a term in insertion order. The
// result is empty, not an error, for a root term.
func (g *Graph) ParentsOf(id string) ([]ontology.Term, error) {
	if _, ok := g.terms[id]; !ok {
		return nil, &TermNotFoundError{ID: id}
	}
	return g.resolve(g.parents[id]), nil
}

// ChildrenOf returns the direct children of a term in insertion order.
// The result is empty, not an error, for a leaf term.
func (g *Graph) ChildrenOf(id string) ([]ontology.Term, error) {
	if _, ok := g.terms[id]; !ok {
		return nil, &TermNotFoundError{ID: id}
	}
	return g.resolve(g.children[id]), nil
}

// ParentIDs returns the direct parent IDs of a term. The returned slice
// is a fresh copy; callers may not observe or mutate internal state.
func (g *Graph) ParentIDs(id string) ([]string, error) {
	if _, ok := g.terms[id]; !ok {
		return nil, &TermNotFoundError{ID: id}
	}
	out := make([]string, len(g.parents[id]))
	copy(out, g.parents[id])
	return out, nil
}

// ChildIDs returns the direct child IDs of a term as a fresh copy.
func (g *Graph) ChildIDs(id string) ([]string, error) {
	if _, ok := g.terms[id]; !ok {
		return nil, &TermNotFoundError{ID: id}
	}
	out := make([]string, len(g.children[id]))
	copy(out, g.children[id])
	return out, nil
}

// resolve maps a slice of IDs to their terms. Every ID passed here is
// known to exist.
func (g *Graph) resolve(ids []string) []ontology.Term {
	out := make([]ontology.Term, 0, len(ids))
	for _, id := range ids {
		out = append(out, g.terms[id])
	}
	return out
}
