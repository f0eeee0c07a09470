package function_test

import (
	"testing"

	"github.com/gridforge/rreil/archdemo"
	"github.com/gridforge/rreil/disasm"
	"github.com/gridforge/rreil/function"
	"github.com/gridforge/rreil/il"
	"github.com/gridforge/rreil/region"
	"github.com/stretchr/testify/require"
)

// S1 - single instruction: one mnemonic, no jumps, one block, no edges.
func TestSingleInstruction(t *testing.T) {
	a, err := archdemo.New(map[byte]archdemo.InstrSpec{
		0x00: {Opcode: "A"},
	}, 0)
	require.NoError(t, err)

	reg := region.NewBytes([]byte{0x00}, 0)
	fn, err := function.New(a, 0, reg, nil)
	require.NoError(t, err)

	require.Len(t, fn.BasicBlocks, 1)
	require.Equal(t, uint64(0), fn.BasicBlocks[0].AreaStart)
	require.Equal(t, uint64(1), fn.BasicBlocks[0].AreaEnd)
	require.Len(t, fn.Mnemonics, 1)
	require.Equal(t, "A", fn.Mnemonics[0].Opcode)
	require.Len(t, fn.CFG.Nodes, 1)
	require.Len(t, fn.CFG.Edges, 0)
}

func constJump(target uint64) archdemo.JumpSpec {
	return archdemo.JumpSpec{Target: il.Constant{Value: target, Width: 64}, Guard: disasm.AlwaysGuard}
}

// S2 - straight line of six: one block containing all six, plus an
// out-of-function target node for the address just past the end.
func TestStraightLineOfSix(t *testing.T) {
	instrs := make(map[byte]archdemo.InstrSpec)
	for b := byte(0); b < 6; b++ {
		instrs[b] = archdemo.InstrSpec{
			Opcode: string(rune('A' + b)),
			Jumps:  []archdemo.JumpSpec{constJump(uint64(b) + 1)},
		}
	}
	a, err := archdemo.New(instrs, 0)
	require.NoError(t, err)

	reg := region.NewBytes([]byte{0, 1, 2, 3, 4, 5}, 0)
	fn, err := function.New(a, 0, reg, nil)
	require.NoError(t, err)

	require.Len(t, fn.BasicBlocks, 1)
	require.Equal(t, uint64(0), fn.BasicBlocks[0].AreaStart)
	require.Equal(t, uint64(6), fn.BasicBlocks[0].AreaEnd)
	require.Len(t, fn.Mnemonics, 6)
	require.Len(t, fn.CFG.Nodes, 2)
	require.Len(t, fn.CFG.Edges, 1)
}

// S3 - branch: three single-mnemonic blocks, an unresolved node for the
// address never reached, and the four documented edges.
func TestBranch(t *testing.T) {
	instrs := map[byte]archdemo.InstrSpec{
		0: {Opcode: "B0", Jumps: []archdemo.JumpSpec{constJump(1), constJump(2)}},
		1: {Opcode: "B1", Jumps: []archdemo.JumpSpec{constJump(3)}},
		2: {Opcode: "B2", Jumps: []archdemo.JumpSpec{constJump(1)}},
	}
	a, err := archdemo.New(instrs, 0)
	require.NoError(t, err)

	reg := region.NewBytes([]byte{0, 1, 2}, 0)
	fn, err := function.New(a, 0, reg, nil)
	require.NoError(t, err)

	require.Len(t, fn.BasicBlocks, 3)
	require.Equal(t, uint64(0), fn.BasicBlocks[0].AreaStart)
	require.Equal(t, uint64(1), fn.BasicBlocks[0].AreaEnd)
	require.Len(t, fn.CFG.Nodes, 4) // 3 blocks + 1 unresolved
	require.Len(t, fn.CFG.Edges, 4)
}

// S4 - self-loop: one block containing all three mnemonics with a
// self-loop edge.
func TestSelfLoop(t *testing.T) {
	instrs := map[byte]archdemo.InstrSpec{
		0: {Opcode: "L0", Jumps: []archdemo.JumpSpec{constJump(1)}},
		1: {Opcode: "L1", Jumps: []archdemo.JumpSpec{constJump(2)}},
		2: {Opcode: "L2", Jumps: []archdemo.JumpSpec{constJump(0)}},
	}
	a, err := archdemo.New(instrs, 0)
	require.NoError(t, err)

	reg := region.NewBytes([]byte{0, 1, 2}, 0)
	fn, err := function.New(a, 0, reg, nil)
	require.NoError(t, err)

	require.Len(t, fn.BasicBlocks, 1)
	require.Equal(t, uint64(0), fn.BasicBlocks[0].AreaStart)
	require.Equal(t, uint64(3), fn.BasicBlocks[0].AreaEnd)
	require.Len(t, fn.CFG.Nodes, 1)
	require.Len(t, fn.CFG.Edges, 1)
	require.Equal(t, fn.CFG.Edges[0].From, fn.CFG.Edges[0].To)
}

// S5 - indirect jump resolved: an unresolved edge that, once resolved
// via ResolveIndirectJump and Extend, folds into a single linear block.
func TestIndirectJumpResolved(t *testing.T) {
	varA := il.Variable{Name: "A", Width: 64}
	instrs := map[byte]archdemo.InstrSpec{
		0: {Opcode: "J0", Jumps: []archdemo.JumpSpec{constJump(1)}},
		1: {Opcode: "J1", Jumps: []archdemo.JumpSpec{{Target: varA, Guard: disasm.AlwaysGuard}}},
		2: {Opcode: "J2", Jumps: []archdemo.JumpSpec{constJump(3)}},
		3: {Opcode: "J3", Jumps: []archdemo.JumpSpec{constJump(4)}},
	}
	a, err := archdemo.New(instrs, 0)
	require.NoError(t, err)

	reg := region.NewBytes([]byte{0, 1, 2, 3}, 0)
	fn, err := function.New(a, 0, reg, nil)
	require.NoError(t, err)

	// Before resolution there is exactly one unresolved node, reachable
	// by one edge from the block containing mnemonics 0 and 1.
	var unresolvedNodes int
	for _, n := range fn.CFG.Nodes {
		if !n.IsBlock {
			unresolvedNodes++
			require.Equal(t, varA, n.Unresolved)
		}
	}
	require.Equal(t, 1, unresolvedNodes)

	replaced := fn.ResolveIndirectJump(varA, il.Constant{Value: 2, Width: 64})
	require.True(t, replaced)
	require.NoError(t, fn.Extend(a, reg, nil))

	require.Len(t, fn.BasicBlocks, 1)
	require.Equal(t, uint64(0), fn.BasicBlocks[0].AreaStart)
	require.Equal(t, uint64(4), fn.BasicBlocks[0].AreaEnd)
	require.Len(t, fn.CFG.Edges, 1)
}

func TestRewriteMnemonicsPreservesCountAndOrder(t *testing.T) {
	a, err := archdemo.New(map[byte]archdemo.InstrSpec{
		0x00: {Opcode: "A"},
	}, 0)
	require.NoError(t, err)
	reg := region.NewBytes([]byte{0x00}, 0)
	fn, err := function.New(a, 0, reg, nil)
	require.NoError(t, err)

	before := len(fn.Mnemonics)
	err = fn.RewriteMnemonics(fn.EntryPoint, func(s il.Statement) il.Statement { return s })
	require.NoError(t, err)
	require.Equal(t, before, len(fn.Mnemonics))
	require.Equal(t, "A", fn.Mnemonics[0].Opcode)
}

func TestPrependThenRemoveMnemonic(t *testing.T) {
	a, err := archdemo.New(map[byte]archdemo.InstrSpec{
		0x00: {Opcode: "A"},
	}, 0)
	require.NoError(t, err)
	reg := region.NewBytes([]byte{0x00}, 0)
	fn, err := function.New(a, 0, reg, nil)
	require.NoError(t, err)

	stmt := il.Initialize{Name: "flags", Bits: 8, Result: il.Variable{Name: "flags", Width: 8}}
	require.NoError(t, fn.PrependMnemonic(fn.EntryPoint, "INIT", []il.Statement{stmt}))
	require.Len(t, fn.Mnemonics, 2)
	require.Equal(t, "INIT", fn.Mnemonics[0].Opcode)
	require.Equal(t, fn.Mnemonics[0].AreaStart, fn.Mnemonics[0].AreaEnd)

	require.NoError(t, fn.RemoveMnemonic(fn.EntryPoint))
	require.Len(t, fn.Mnemonics, 1)
	require.Equal(t, "A", fn.Mnemonics[0].Opcode)
}
