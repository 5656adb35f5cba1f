package query

import (
	"fmt"
	"strings"

	"github.com/ontograph/ontograph/ontology"
)

// trajectoryNode is one node of the merged trajectory tree. Children are
// keyed by term ID and kept in first-seen order.
type trajectoryNode struct {
	term     ontology.Term
	depth    int
	order    []string
	children map[string]*trajectoryNode
}

func newTrajectoryNode(term ontology.Term, depth int) *trajectoryNode {
	return &trajectoryNode{
		term:     term,
		depth:    depth,
		children: make(map[string]*trajectoryNode),
	}
}

func (n *trajectoryNode) child(term ontology.Term, depth int) *trajectoryNode {
	c, ok := n.children[term.ID]
	if !ok {
		c = newTrajectoryNode(term, depth)
		n.children[term.ID] = c
		n.order = append(n.order, term.ID)
	}
	return c
}

// FormatTrajectories renders a trajectory set as text. A single
// trajectory prints as a flat "id: name" list; several trajectories are
// merged into one ASCII tree from the shared root down to the term. This
// is presentation only and makes no graph queries of its own.
func FormatTrajectories(trajectories [][]ontology.Term) string {
	if len(trajectories) == 0 {
		return "No trajectories to display.\n"
	}

	var sb strings.Builder
	if len(trajectories) == 1 {
		for _, t := range trajectories[0] {
			fmt.Fprintf(&sb, "%s: %s\n", t.ID, t.Name)
		}
		return sb.String()
	}

	root := newTrajectoryNode(trajectories[0][0], 0)
	for _, traj := range trajectories {
		node := root
		for depth, term := range traj[1:] {
			node = node.child(term, depth+1)
		}
	}

	fmt.Fprintf(&sb, "%s: %s (distance=%d)\n", root.term.ID, root.term.Name, root.depth)
	writeTrajectoryChildren(&sb, root, "")
	return sb.String()
}

func writeTrajectoryChildren(sb *strings.Builder, node *trajectoryNode, prefix string) {
	for i, id := range node.order {
		child := node.children[id]
		last := i == len(node.order)-1

		connector := "├── "
		childPrefix := prefix + "│   "
		if last {
			connector = "└── "
			childPrefix = prefix + "    "
		}
		fmt.Fprintf(sb, "%s%s%s: %s (distance=%d)\n",
			prefix, connector, child.term.ID, child.term.Name, child.depth)
		writeTrajectoryChildren(sb, child, childPrefix)
	}
}
