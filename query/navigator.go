// Package query implements the traversal primitives, relational
// predicates, and path queries over an immutable ontology graph. Every
// operation is a pure read; results are fresh values, never views into
// the graph's internal indices, so concurrent callers need no locking.
package query

import (
	"github.com/ontograph/ontograph/graph"
	"github.com/ontograph/ontograph/ontology"
)

// TermDistance pairs a term with its edge distance from the query origin
// along the shortest discovered path.
type TermDistance struct {
	Term     ontology.Term `json:"term"`
	Distance int           `json:"distance"`
}

// Navigator provides the traversal primitives over one graph: direct
// neighbors, transitive closures, siblings, and the root accessor.
type Navigator struct {
	g *graph.Graph
}

// NewNavigator creates a Navigator over the given graph.
func NewNavigator(g *graph.Graph) *Navigator {
	return &Navigator{g: g}
}

// Graph returns the underlying graph.
func (n *Navigator) Graph() *graph.Graph {
	return n.g
}

// Parents returns the direct parents of a term in insertion order.
func (n *Navigator) Parents(id string) ([]ontology.Term, error) {
	return n.g.ParentsOf(id)
}

// Children returns the direct children of a term in insertion order.
func (n *Navigator) Children(id string) ([]ontology.Term, error) {
	return n.g.ChildrenOf(id)
}

// Ancestors returns the transitive closure over parent edges, the term
// itself excluded, in breadth-first discovery order. An ancestor
// reachable through multiple parents appears exactly once.
func (n *Navigator) Ancestors(id string) ([]ontology.Term, error) {
	pairs, err := n.traverse(id, n.g.ParentIDs)
	if err != nil {
		return nil, err
	}
	return stripDistances(pairs), nil
}

// AncestorsWithDistance returns every ancestor paired with the number of
// edges on the shortest path from the origin. Distances are
// non-decreasing in the returned order because the traversal is
// breadth-first; each ancestor appears once at its minimum distance. The
// result is recomputed on every call, with no shared cursor state.
func (n *Navigator) AncestorsWithDistance(id string) ([]TermDistance, error) {
	return n.traverse(id, n.g.ParentIDs)
}

// Descendants returns the transitive closure over child edges, the term
// itself excluded, in breadth-first discovery order.
func (n *Navigator) Descendants(id string) ([]ontology.Term, error) {
	pairs, err := n.traverse(id, n.g.ChildIDs)
	if err != nil {
		return nil, err
	}
	return stripDistances(pairs), nil
}

// DescendantsWithDistance returns every descendant paired with its
// shortest-path distance from the origin.
func (n *Navigator) DescendantsWithDistance(id string) ([]TermDistance, error) {
	return n.traverse(id, n.g.ChildIDs)
}

// Siblings returns the union, over every direct parent of the term, of
// that parent's other children. The term itself is excluded; a root term
// has an empty sibling set.
func (n *Navigator) Siblings(id string) ([]ontology.Term, error) {
	parentIDs, err := n.g.ParentIDs(id)
	if err != nil {
		return nil, err
	}

	seen := map[string]struct{}{id: {}}
	var siblings []ontology.Term
	for _, pid := range parentIDs {
		childIDs, err := n.g.ChildIDs(pid)
		if err != nil {
			return nil, err
		}
		for _, cid := range childIDs {
			if _, ok := seen[cid]; ok {
				continue
			}
			seen[cid] = struct{}{}
			t, err := n.g.Term(cid)
			if err != nil {
				return nil, err
			}
			siblings = append(siblings, t)
		}
	}
	return siblings, nil
}

// Root returns the single root of the graph. It fails with
// MultipleRootsError when the graph has more than one root; callers that
// can handle an ambiguous root set should use Graph.Roots instead. The
// distinction is deliberate: asking for "the" root on a multi-rooted
// ontology is an intent bug, not a case to guess through.
func (n *Navigator) Root() (ontology.Term, error) {
	roots := n.g.Roots()
	if len(roots) > 1 {
		ids := make([]string, len(roots))
		for i, r := range roots {
			ids[i] = r.ID
		}
		return ontology.Term{}, &MultipleRootsError{IDs: ids}
	}
	return roots[0], nil
}

// traverse runs a breadth-first walk from the term's direct neighbors
// with an explicit frontier queue and a seen set. The seen set is what
// makes the walk DAG-safe: a node reachable through multiple parents is
// emitted once, at the first (smallest) distance it is discovered.
func (n *Navigator) traverse(id string, next func(string) ([]string, error)) ([]TermDistance, error) {
	if _, err := n.g.Term(id); err != nil {
		return nil, err
	}

	type frame struct {
		id   string
		dist int
	}

	seen := map[string]struct{}{id: {}}
	queue := []frame{{id: id, dist: 0}}
	var out []TermDistance

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		neighbors, err := next(cur.id)
		if err != nil {
			return nil, err
		}
		for _, nid := range neighbors {
			if _, ok := seen[nid]; ok {
				continue
			}
			seen[nid] = struct{}{}
			t, err := n.g.Term(nid)
			if err != nil {
				return nil, err
			}
			out = append(out, TermDistance{Term: t, Distance: cur.dist + 1})
			queue = append(queue, frame{id: nid, dist: cur.dist + 1})
		}
	}
	return out, nil
}

func stripDistances(pairs []TermDistance) []ontology.Term {
	out := make([]ontology.Term, len(pairs))
	for i, p := range pairs {
		out[i] = p.Term
	}
	return out
}
