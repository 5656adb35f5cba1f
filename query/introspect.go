package query

import (
	"sort"

	"github.com/ontograph/ontograph/ontology"
)

// Default traversal budget for TrajectoriesFromRoot. Trajectory
// enumeration is exponential in the number of diamond-shaped sub-DAGs,
// so an unbudgeted call on a pathological graph could run effectively
// forever; the budget turns that into a reported error.
const (
	DefaultMaxTrajectories    = 1000
	DefaultMaxTrajectorySteps = 1_000_000
)

// TrajectoryOptions bounds the path enumeration of TrajectoriesFromRoot.
// A zero value selects the package default; a negative value disables
// that limit.
type TrajectoryOptions struct {
	// MaxPaths caps the number of enumerated root-to-term paths.
	MaxPaths int
	// MaxSteps caps the total number of traversal steps.
	MaxSteps int
}

func (o TrajectoryOptions) withDefaults() TrajectoryOptions {
	if o.MaxPaths == 0 {
		o.MaxPaths = DefaultMaxTrajectories
	}
	if o.MaxSteps == 0 {
		o.MaxSteps = DefaultMaxTrajectorySteps
	}
	return o
}

// Introspector answers path and metric queries: distance from the root,
// shortest paths between terms, and full root-to-term trajectory
// enumeration.
type Introspector struct {
	nav *Navigator
}

// NewIntrospector creates an Introspector over the given navigator.
func NewIntrospector(nav *Navigator) *Introspector {
	return &Introspector{nav: nav}
}

// DistanceFromRoot returns the shortest-path edge count from the nearest
// root to the term, minimized over all roots and all paths. It fails
// with UnreachableError only when the term cannot reach any root, which
// the construction invariants rule out for a valid graph.
func (i *Introspector) DistanceFromRoot(id string) (int, error) {
	g := i.nav.Graph()
	if _, err := g.Term(id); err != nil {
		return 0, err
	}

	seen := map[string]struct{}{id: {}}
	type frame struct {
		id   string
		dist int
	}
	queue := []frame{{id: id, dist: 0}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		parents, err := g.ParentIDs(cur.id)
		if err != nil {
			return 0, err
		}
		if len(parents) == 0 {
			return cur.dist, nil
		}
		for _, pid := range parents {
			if _, ok := seen[pid]; ok {
				continue
			}
			seen[pid] = struct{}{}
			queue = append(queue, frame{id: pid, dist: cur.dist + 1})
		}
	}
	return 0, &UnreachableError{ID: id}
}

// PathBetween returns one shortest path from a to b through their
// nearest common ancestor: the up-path from a to that ancestor followed
// by the down-path from the ancestor to b. When a is an ancestor of b
// (or vice versa) the ancestor is a (or b) itself and the path runs in
// one direction. When several shortest paths tie, the lexically smaller
// term ID wins at each branch, so repeated calls on the same graph
// return the same path. It fails with NoPathError when the terms share
// no common ancestor.
func (i *Introspector) PathBetween(a, b string) ([]ontology.Term, error) {
	g := i.nav.Graph()
	if _, err := g.Term(a); err != nil {
		return nil, err
	}
	if _, err := g.Term(b); err != nil {
		return nil, err
	}

	distA, predA, err := i.climb(a)
	if err != nil {
		return nil, err
	}
	distB, predB, err := i.climb(b)
	if err != nil {
		return nil, err
	}

	// Pick the meeting ancestor minimizing the combined path length,
	// breaking ties on the smaller ID.
	meet := ""
	best := -1
	for id, da := range distA {
		db, ok := distB[id]
		if !ok {
			continue
		}
		total := da + db
		if best < 0 || total < best || (total == best && id < meet) {
			best = total
			meet = id
		}
	}
	if best < 0 {
		return nil, &NoPathError{A: a, B: b}
	}

	up := chain(predA, meet)     // meet .. a
	down := chain(predB, meet)   // meet .. b
	ids := make([]string, 0, len(up)+len(down)-1)
	for idx := len(up) - 1; idx >= 0; idx-- {
		ids = append(ids, up[idx]) // a .. meet
	}
	ids = append(ids, down[1:]...) // .. b

	path := make([]ontology.Term, len(ids))
	for idx, id := range ids {
		t, err := g.Term(id)
		if err != nil {
			return nil, err
		}
		path[idx] = t
	}
	return path, nil
}

// TrajectoriesFromRoot enumerates every simple path from any root down
// to the term, each path listed root-first. This is a full
// path-enumeration query, not a shortest-path query: a DAG node behind k
// stacked diamonds has 2^k trajectories, so the cost is potentially
// exponential and the traversal is bounded by opts. When the budget runs
// out before enumeration completes, the call fails with
// TrajectoryLimitExceededError instead of hanging.
func (i *Introspector) TrajectoriesFromRoot(id string, opts TrajectoryOptions) ([][]ontology.Term, error) {
	g := i.nav.Graph()
	if _, err := g.Term(id); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()

	type frame struct {
		id   string
		path []string // ids from the origin upward, origin first
	}

	stack := []frame{{id: id, path: []string{id}}}
	var trajectories [][]ontology.Term
	steps := 0

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		steps++
		if opts.MaxSteps > 0 && steps > opts.MaxSteps {
			return nil, &TrajectoryLimitExceededError{ID: id, MaxPaths: opts.MaxPaths, MaxSteps: opts.MaxSteps}
		}

		parents, err := g.ParentIDs(cur.id)
		if err != nil {
			return nil, err
		}
		if len(parents) == 0 {
			if opts.MaxPaths > 0 && len(trajectories) >= opts.MaxPaths {
				return nil, &TrajectoryLimitExceededError{ID: id, MaxPaths: opts.MaxPaths, MaxSteps: opts.MaxSteps}
			}
			traj := make([]ontology.Term, len(cur.path))
			for idx, pid := range cur.path {
				t, err := g.Term(pid)
				if err != nil {
					return nil, err
				}
				// reverse: stored origin-first, emitted root-first
				traj[len(cur.path)-1-idx] = t
			}
			trajectories = append(trajectories, traj)
			continue
		}

		// Push in reverse so parents are explored in insertion order.
		for idx := len(parents) - 1; idx >= 0; idx-- {
			next := make([]string, len(cur.path)+1)
			copy(next, cur.path)
			next[len(cur.path)] = parents[idx]
			stack = append(stack, frame{id: parents[idx], path: next})
		}
	}
	return trajectories, nil
}

// climb runs a layered breadth-first walk up the parent edges from the
// origin, recording the shortest distance to every reachable ancestor
// and, for path reconstruction, the predecessor toward the origin. Nodes
// within a layer and parent lists are expanded in lexical order, which
// is what pins the tie-break of PathBetween.
func (i *Introspector) climb(origin string) (map[string]int, map[string]string, error) {
	g := i.nav.Graph()

	dist := map[string]int{origin: 0}
	pred := map[string]string{origin: ""}
	layer := []string{origin}

	for depth := 1; len(layer) > 0; depth++ {
		sort.Strings(layer)
		var next []string
		for _, id := range layer {
			parents, err := g.ParentIDs(id)
			if err != nil {
				return nil, nil, err
			}
			sort.Strings(parents)
			for _, pid := range parents {
				if _, ok := dist[pid]; ok {
					continue
				}
				dist[pid] = depth
				pred[pid] = id
				next = append(next, pid)
			}
		}
		layer = next
	}
	return dist, pred, nil
}

// chain follows predecessors from a node back to the climb origin,
// returning the IDs from the node down to the origin.
func chain(pred map[string]string, from string) []string {
	var out []string
	for id := from; id != ""; id = pred[id] {
		out = append(out, id)
	}
	return out
}
