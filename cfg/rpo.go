package cfg

import "github.com/pkg/errors"

// ReversePostOrder returns the CFG nodes reachable from entry in reverse
// post-order: a DFS from entry, each node preceding all of its
// non-back-edge successors. Back-edges are exactly the edges whose target
// precedes its source in this ordering — this function doesn't flag them
// specially, callers can recover them by comparing positions.
func (g *Graph) ReversePostOrder(entry NodeIndex) ([]NodeIndex, error) {
	if int(entry) < 0 || int(entry) >= len(g.Nodes) {
		return nil, errors.Errorf("cfg: entry node %d out of range", entry)
	}
	visited := make([]bool, len(g.Nodes))
	var post []NodeIndex

	var visit func(n NodeIndex)
	visit = func(n NodeIndex) {
		if visited[n] {
			return
		}
		visited[n] = true
		for _, e := range g.Successors(n) {
			visit(e.To)
		}
		post = append(post, n)
	}
	visit(entry)

	rpo := make([]NodeIndex, len(post))
	for i, n := range post {
		rpo[len(post)-1-i] = n
	}
	return rpo, nil
}

// Position returns the index of n within order, or -1.
func Position(order []NodeIndex, n NodeIndex) int {
	for i, o := range order {
		if o == n {
			return i
		}
	}
	return -1
}

// IsBackEdge reports whether e is a back-edge given a reverse-post-order
// traversal: its target precedes its source, or is its source (a self-loop).
func IsBackEdge(order []NodeIndex, e Edge) bool {
	from, to := Position(order, e.From), Position(order, e.To)
	if from < 0 || to < 0 {
		return false
	}
	return to <= from
}
