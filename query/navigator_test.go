package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ontograph/ontograph/graph"
	"github.com/ontograph/ontograph/ontology"
)

// buildGraph constructs a graph from a term ID list and child->parent
// edge pairs, failing the test on any construction error.
func buildGraph(t *testing.T, termIDs []string, edges [][2]string) *graph.Graph {
	t.Helper()
	d := &ontology.Document{Ontology: "test"}
	for _, id := range termIDs {
		d.Terms = append(d.Terms, ontology.Term{ID: id, Name: "term " + id})
	}
	for _, e := range edges {
		d.Relations = append(d.Relations, ontology.Relation{ChildID: e[0], ParentID: e[1]})
	}
	g, err := graph.Build(d)
	require.NoError(t, err)
	return g
}

// diamondGraph is the Z <- {A,B} <- D shape: D has two parents that share
// one root.
func diamondGraph(t *testing.T) *graph.Graph {
	t.Helper()
	return buildGraph(t,
		[]string{"Z", "A", "B", "D"},
		[][2]string{{"A", "Z"}, {"B", "Z"}, {"D", "A"}, {"D", "B"}},
	)
}

func termIDs(terms []ontology.Term) []string {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		out = append(out, t.ID)
	}
	return out
}

func TestNavigator_Ancestors(t *testing.T) {
	nav := NewNavigator(buildGraph(t,
		[]string{"Z", "A", "B", "C", "D"},
		[][2]string{{"A", "Z"}, {"B", "Z"}, {"C", "Z"}, {"D", "A"}},
	))

	t.Run("transitive closure, self excluded", func(t *testing.T) {
		ancestors, err := nav.Ancestors("D")
		require.NoError(t, err)
		assert.Equal(t, []string{"A", "Z"}, termIDs(ancestors))
		assert.NotContains(t, termIDs(ancestors), "D")
	})

	t.Run("root has no ancestors", func(t *testing.T) {
		ancestors, err := nav.Ancestors("Z")
		require.NoError(t, err)
		assert.Empty(t, ancestors)
	})

	t.Run("unknown term", func(t *testing.T) {
		_, err := nav.Ancestors("missing")
		var notFound *graph.TermNotFoundError
		require.ErrorAs(t, err, &notFound)
	})
}

func TestNavigator_Ancestors_DiamondDeduplicated(t *testing.T) {
	nav := NewNavigator(diamondGraph(t))

	ancestors, err := nav.Ancestors("D")
	require.NoError(t, err)

	// Z is reachable through both A and B but must appear exactly once.
	assert.ElementsMatch(t, []string{"A", "B", "Z"}, termIDs(ancestors))
	assert.Len(t, ancestors, 3)
}

func TestNavigator_AncestorsWithDistance(t *testing.T) {
	// E sits below the diamond; Z is at distance 2 via A or B, never 3.
	nav := NewNavigator(buildGraph(t,
		[]string{"Z", "A", "B", "D", "E"},
		[][2]string{{"A", "Z"}, {"B", "Z"}, {"D", "A"}, {"D", "B"}, {"E", "D"}, {"E", "Z"}},
	))

	pairs, err := nav.AncestorsWithDistance("E")
	require.NoError(t, err)

	byID := map[string]int{}
	prev := 0
	for _, p := range pairs {
		_, dup := byID[p.Term.ID]
		assert.False(t, dup, "ancestor %s emitted twice", p.Term.ID)
		byID[p.Term.ID] = p.Distance
		assert.GreaterOrEqual(t, p.Distance, prev, "distances must be non-decreasing")
		prev = p.Distance
	}

	assert.Equal(t, map[string]int{"D": 1, "Z": 1, "A": 2, "B": 2}, byID,
		"each ancestor appears at its minimum distance")
}

func TestNavigator_WithDistanceIsRestartable(t *testing.T) {
	nav := NewNavigator(diamondGraph(t))

	first, err := nav.AncestorsWithDistance("D")
	require.NoError(t, err)
	second, err := nav.AncestorsWithDistance("D")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestNavigator_Descendants(t *testing.T) {
	nav := NewNavigator(diamondGraph(t))

	t.Run("from root", func(t *testing.T) {
		descendants, err := nav.Descendants("Z")
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"A", "B", "D"}, termIDs(descendants))
	})

	t.Run("with distance", func(t *testing.T) {
		pairs, err := nav.DescendantsWithDistance("Z")
		require.NoError(t, err)
		byID := map[string]int{}
		for _, p := range pairs {
			byID[p.Term.ID] = p.Distance
		}
		assert.Equal(t, map[string]int{"A": 1, "B": 1, "D": 2}, byID)
	})

	t.Run("leaf has none", func(t *testing.T) {
		descendants, err := nav.Descendants("D")
		require.NoError(t, err)
		assert.Empty(t, descendants)
	})
}

func TestNavigator_Siblings(t *testing.T) {
	nav := NewNavigator(buildGraph(t,
		[]string{"Z", "A", "B", "C", "D"},
		[][2]string{{"A", "Z"}, {"B", "Z"}, {"C", "Z"}, {"D", "A"}},
	))

	t.Run("shared parent", func(t *testing.T) {
		siblings, err := nav.Siblings("A")
		require.NoError(t, err)
		assert.Equal(t, []string{"B", "C"}, termIDs(siblings))
	})

	t.Run("root has no siblings", func(t *testing.T) {
		siblings, err := nav.Siblings("Z")
		require.NoError(t, err)
		assert.Empty(t, siblings)
	})

	t.Run("only child", func(t *testing.T) {
		siblings, err := nav.Siblings("D")
		require.NoError(t, err)
		assert.Empty(t, siblings)
	})
}

func TestNavigator_Siblings_MultipleParentsUnion(t *testing.T) {
	nav := NewNavigator(buildGraph(t,
		[]string{"Z", "A", "B", "D", "E", "F"},
		[][2]string{{"A", "Z"}, {"B", "Z"}, {"D", "A"}, {"D", "B"}, {"E", "A"}, {"F", "B"}},
	))

	siblings, err := nav.Siblings("D")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"E", "F"}, termIDs(siblings))
}

func TestNavigator_Root(t *testing.T) {
	t.Run("single root", func(t *testing.T) {
		nav := NewNavigator(diamondGraph(t))
		root, err := nav.Root()
		require.NoError(t, err)
		assert.Equal(t, "Z", root.ID)
	})

	t.Run("multiple roots", func(t *testing.T) {
		nav := NewNavigator(buildGraph(t,
			[]string{"R1", "R2", "X"},
			[][2]string{{"X", "R1"}, {"X", "R2"}},
		))
		_, err := nav.Root()
		var multi *MultipleRootsError
		require.ErrorAs(t, err, &multi)
		assert.Equal(t, []string{"R1", "R2"}, multi.IDs)

		// The general root set accessor still works.
		assert.Len(t, nav.Graph().Roots(), 2)
	})
}
