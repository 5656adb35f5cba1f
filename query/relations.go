package query

import (
	"github.com/ontograph/ontograph/ontology"
)

// Relations answers relational queries between terms: subsumption
// predicates, sibling checks, and common-ancestor resolution.
type Relations struct {
	nav *Navigator
}

// NewRelations creates a Relations analyzer over the given navigator.
func NewRelations(nav *Navigator) *Relations {
	return &Relations{nav: nav}
}

// IsAncestor reports whether ancestorID is a transitive ancestor of
// descendantID. A term is not its own ancestor.
func (r *Relations) IsAncestor(ancestorID, descendantID string) (bool, error) {
	if _, err := r.nav.Graph().Term(ancestorID); err != nil {
		return false, err
	}
	set, err := r.ancestorSet(descendantID)
	if err != nil {
		return false, err
	}
	_, ok := set[ancestorID]
	return ok, nil
}

// IsDescendant reports whether descendantID is a transitive descendant
// of ancestorID. IsDescendant(d, a) == IsAncestor(a, d) for all a, d.
func (r *Relations) IsDescendant(descendantID, ancestorID string) (bool, error) {
	return r.IsAncestor(ancestorID, descendantID)
}

// IsSibling reports whether b shares at least one direct parent with a.
// The relation is symmetric by construction.
func (r *Relations) IsSibling(a, b string) (bool, error) {
	if _, err := r.nav.Graph().Term(b); err != nil {
		return false, err
	}
	siblings, err := r.nav.Siblings(a)
	if err != nil {
		return false, err
	}
	for _, s := range siblings {
		if s.ID == b {
			return true, nil
		}
	}
	return false, nil
}

// CommonAncestors returns the intersection of the ancestor sets of every
// given term, ordered by the first term's breadth-first discovery order.
// A single ID degenerates to that term's full ancestor set. An empty
// input set fails with ErrEmptyInput; an empty result is valid and means
// the terms share no ancestor.
func (r *Relations) CommonAncestors(ids []string) ([]ontology.Term, error) {
	if len(ids) == 0 {
		return nil, ErrEmptyInput
	}

	first, err := r.nav.Ancestors(ids[0])
	if err != nil {
		return nil, err
	}

	common := first
	for _, id := range ids[1:] {
		set, err := r.ancestorSet(id)
		if err != nil {
			return nil, err
		}
		kept := common[:0]
		for _, t := range common {
			if _, ok := set[t.ID]; ok {
				kept = append(kept, t)
			}
		}
		common = kept
		if len(common) == 0 {
			break
		}
	}
	return common, nil
}

// LowestCommonAncestors returns the maximal elements of the
// common-ancestor set under the descendant partial order: every common
// ancestor that has no other common ancestor among its descendants. A
// DAG can hold several incomparable lowest common ancestors at once,
// which is why the result is a set rather than a single term.
func (r *Relations) LowestCommonAncestors(ids []string) ([]ontology.Term, error) {
	candidates, err := r.CommonAncestors(ids)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	// candidate c is not lowest when another candidate descends from it,
	// i.e. c is an ancestor of that other candidate.
	ancestorsOf := make(map[string]map[string]struct{}, len(candidates))
	for _, c := range candidates {
		set, err := r.ancestorSet(c.ID)
		if err != nil {
			return nil, err
		}
		ancestorsOf[c.ID] = set
	}

	var lowest []ontology.Term
	for _, c := range candidates {
		dominated := false
		for _, other := range candidates {
			if other.ID == c.ID {
				continue
			}
			if _, ok := ancestorsOf[other.ID][c.ID]; ok {
				dominated = true
				break
			}
		}
		if !dominated {
			lowest = append(lowest, c)
		}
	}
	return lowest, nil
}

// ancestorSet returns the ancestor IDs of a term as a membership set.
func (r *Relations) ancestorSet(id string) (map[string]struct{}, error) {
	ancestors, err := r.nav.Ancestors(id)
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(ancestors))
	for _, t := range ancestors {
		set[t.ID] = struct{}{}
	}
	return set, nil
}
