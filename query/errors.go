package query

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyInput is returned by CommonAncestors and LowestCommonAncestors
// when the input ID set is empty.
var ErrEmptyInput = errors.New("query: empty term ID set")

// MultipleRootsError is returned by Navigator.Root when the single-root
// convenience accessor is used on a graph with more than one root. Use
// Graph.Roots for the full root set.
type MultipleRootsError struct {
	IDs []string
}

func (e *MultipleRootsError) Error() string {
	return fmt.Sprintf("query: graph has multiple roots [%s], use Roots for the full set",
		strings.Join(e.IDs, ", "))
}

// NoPathError is returned by PathBetween when no common ancestor connects
// the two terms.
type NoPathError struct {
	A string
	B string
}

func (e *NoPathError) Error() string {
	return fmt.Sprintf("query: no path between %q and %q", e.A, e.B)
}

// UnreachableError is returned by DistanceFromRoot when a term cannot
// reach any root. The construction invariants make this impossible for a
// valid graph; the error exists for defensive testing.
type UnreachableError struct {
	ID string
}

func (e *UnreachableError) Error() string {
	return fmt.Sprintf("query: term %q cannot reach any root", e.ID)
}

// TrajectoryLimitExceededError is returned by TrajectoriesFromRoot when
// the traversal budget is exhausted before every root-to-term path has
// been enumerated.
type TrajectoryLimitExceededError struct {
	ID       string
	MaxPaths int
	MaxSteps int
}

func (e *TrajectoryLimitExceededError) Error() string {
	return fmt.Sprintf("query: trajectory enumeration for %q exceeded budget (max paths %d, max steps %d)",
		e.ID, e.MaxPaths, e.MaxSteps)
}

// UnsupportedOperationError is returned by Engine.Execute for an unknown
// query operation.
type UnsupportedOperationError struct {
	Op string
}

func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("query: unsupported operation %q", e.Op)
}
