package cfg_test

import (
	"testing"

	"github.com/gridforge/rreil/cfg"
	"github.com/gridforge/rreil/il"
	"github.com/stretchr/testify/require"
)

func TestReversePostOrderSelfLoop(t *testing.T) {
	g := cfg.New()
	n0 := g.AddBlockNode(0)
	g.AddEdge(n0, n0, il.Constant{Value: 1, Width: 1})

	order, err := g.ReversePostOrder(n0)
	require.NoError(t, err)
	require.Equal(t, []cfg.NodeIndex{n0}, order)
	require.True(t, cfg.IsBackEdge(order, g.Edges[0]))
}

func TestReversePostOrderBranch(t *testing.T) {
	g := cfg.New()
	n0 := g.AddBlockNode(0)
	n1 := g.AddBlockNode(1)
	n2 := g.AddBlockNode(2)
	g.AddEdge(n0, n1, il.Constant{Value: 1, Width: 1})
	g.AddEdge(n0, n2, il.Constant{Value: 1, Width: 1})
	g.AddEdge(n2, n1, il.Constant{Value: 1, Width: 1})

	order, err := g.ReversePostOrder(n0)
	require.NoError(t, err)
	require.Equal(t, n0, order[0])
	require.Less(t, cfg.Position(order, n2), cfg.Position(order, n1))
}
