package query

import (
	"strings"

	"github.com/ontograph/ontograph/graph"
	"github.com/ontograph/ontograph/ontology"
)

// Engine composes the Navigator, Relations, and Introspector behind one
// façade. It is the surface consumed by the client, the CLI, and the
// HTTP server.
type Engine struct {
	nav   *Navigator
	rel   *Relations
	intro *Introspector
}

// NewEngine creates an Engine over the given graph.
func NewEngine(g *graph.Graph) *Engine {
	nav := NewNavigator(g)
	return &Engine{
		nav:   nav,
		rel:   NewRelations(nav),
		intro: NewIntrospector(nav),
	}
}

// Graph returns the underlying graph.
func (e *Engine) Graph() *graph.Graph { return e.nav.Graph() }

// Navigator returns the traversal primitives.
func (e *Engine) Navigator() *Navigator { return e.nav }

// Relations returns the relational analyzer.
func (e *Engine) Relations() *Relations { return e.rel }

// Introspector returns the path and metric queries.
func (e *Engine) Introspector() *Introspector { return e.intro }

// Execute evaluates a textual query expression of the form "op:term_id"
// and returns the matching terms. Supported operations: ancestors,
// descendants, parents, children, siblings, and roots (which takes no
// term ID). The split happens on the first colon only, so OBO-style IDs
// such as "GO:0008150" pass through intact.
func (e *Engine) Execute(expression string) ([]ontology.Term, error) {
	op, arg, _ := strings.Cut(expression, ":")
	op = strings.TrimSpace(op)
	arg = strings.TrimSpace(arg)

	switch op {
	case "ancestors":
		return e.nav.Ancestors(arg)
	case "descendants":
		return e.nav.Descendants(arg)
	case "parents":
		return e.nav.Parents(arg)
	case "children":
		return e.nav.Children(arg)
	case "siblings":
		return e.nav.Siblings(arg)
	case "roots":
		return e.Graph().Roots(), nil
	default:
		return nil, &UnsupportedOperationError{Op: op}
	}
}
