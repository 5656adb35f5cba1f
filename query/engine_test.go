package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ontograph/ontograph/ontology"
)

func TestEngine_Execute(t *testing.T) {
	e := NewEngine(buildGraph(t,
		[]string{"GO:0001", "GO:0002", "GO:0003", "GO:0004"},
		[][2]string{{"GO:0002", "GO:0001"}, {"GO:0003", "GO:0001"}, {"GO:0004", "GO:0002"}},
	))

	tests := []struct {
		expr string
		want []string
	}{
		{"ancestors:GO:0004", []string{"GO:0002", "GO:0001"}},
		{"descendants:GO:0001", []string{"GO:0002", "GO:0003", "GO:0004"}},
		{"parents:GO:0004", []string{"GO:0002"}},
		{"children:GO:0001", []string{"GO:0002", "GO:0003"}},
		{"siblings:GO:0002", []string{"GO:0003"}},
		{"roots", []string{"GO:0001"}},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			terms, err := e.Execute(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, termIDs(terms))
		})
	}

	t.Run("unsupported operation", func(t *testing.T) {
		_, err := e.Execute("cousins:GO:0004")
		var unsupported *UnsupportedOperationError
		require.ErrorAs(t, err, &unsupported)
		assert.Equal(t, "cousins", unsupported.Op)
	})
}

func TestFormatTrajectories(t *testing.T) {
	term := func(id, name string) ontology.Term {
		return ontology.Term{ID: id, Name: name}
	}

	t.Run("empty", func(t *testing.T) {
		assert.Equal(t, "No trajectories to display.\n", FormatTrajectories(nil))
	})

	t.Run("single trajectory prints flat", func(t *testing.T) {
		out := FormatTrajectories([][]ontology.Term{
			{term("Z", "root"), term("A", "middle"), term("D", "leaf")},
		})
		assert.Equal(t, "Z: root\nA: middle\nD: leaf\n", out)
	})

	t.Run("diamond prints as merged tree", func(t *testing.T) {
		out := FormatTrajectories([][]ontology.Term{
			{term("Z", "root"), term("A", "left"), term("D", "leaf")},
			{term("Z", "root"), term("B", "right"), term("D", "leaf")},
		})
		assert.Contains(t, out, "Z: root (distance=0)")
		assert.Contains(t, out, "├── A: left (distance=1)")
		assert.Contains(t, out, "└── B: right (distance=1)")
		assert.Contains(t, out, "└── D: leaf (distance=2)")
	})
}
