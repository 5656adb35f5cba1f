package graph

import (
	"fmt"
	"strings"
)

// DuplicateTermError indicates two input terms share the same ID.
type DuplicateTermError struct {
	ID string
}

func (e *DuplicateTermError) Error() string {
	return fmt.Sprintf("graph: duplicate term ID %q", e.ID)
}

// DanglingReferenceError indicates a relation names a term that is not
// present in the term set.
type DanglingReferenceError struct {
	ChildID   string
	ParentID  string
	MissingID string
}

func (e *DanglingReferenceError) Error() string {
	return fmt.Sprintf("graph: relation %s -> %s references unknown term %q",
		e.ChildID, e.ParentID, e.MissingID)
}

// CycleError indicates the relation set is not acyclic. Members lists the
// term IDs that participate in at least one cycle.
type CycleError struct {
	Members []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("graph: relation set contains a cycle involving [%s]",
		strings.Join(e.Members, ", "))
}

// NoRootError indicates that an acyclic graph has no term with zero
// parents. This only occurs for an empty term set; any non-empty acyclic
// graph has at least one root.
type NoRootError struct{}

func (e *NoRootError) Error() string {
	return "graph: ontology has no root term"
}

// TermNotFoundError indicates a lookup for an ID that is not in the graph.
type TermNotFoundError struct {
	ID string
}

func (e *TermNotFoundError) Error() string {
	return fmt.Sprintf("graph: term %q not found", e.ID)
}
