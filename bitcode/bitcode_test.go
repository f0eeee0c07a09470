package bitcode_test

import (
	"testing"

	"github.com/gridforge/rreil/bitcode"
	"github.com/gridforge/rreil/il"
	"github.com/stretchr/testify/require"
)

func v(name string, bits uint8) il.Variable {
	return il.Variable{Name: name, Width: bits}
}

func sampleStatements() []il.Statement {
	return []il.Statement{
		il.Move{Src: il.Constant{Value: 5, Width: 32}, Result: v("r0", 32)},
		il.Expression{Op: il.Add, Left: v("r0", 32), Right: v("r1", 32), Result: v("r2", 32)},
		il.Expression{Op: il.Xor, Left: il.Undefined{}, Right: v("r1", 32), Result: v("r3", 32)},
		il.Load{RegionName: "ram", Endian: 0, ByteCount: 4, Address: v("r2", 32), Result: v("r4", 32)},
		il.Store{RegionName: "ram", Endian: 0, ByteCount: 4, Address: v("r2", 32), Value: v("r4", 32)},
		il.Phi{Inputs: [3]il.Variable{v("r4", 32), v("r5", 32)}, NumIn: 2, Result: v("r6", 32)},
		il.Return{},
	}
}

func TestRoundTrip(t *testing.T) {
	want := sampleStatements()
	bc := bitcode.New(want)
	got, err := bc.Iter().Collect()
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestUndefUndefNormalizesToMove(t *testing.T) {
	stmt := il.Expression{Op: il.Add, Left: il.Undefined{}, Right: il.Undefined{}, Result: v("r0", 32)}
	bc := bitcode.New([]il.Statement{stmt})
	got, err := bc.Iter().Collect()
	require.NoError(t, err)
	require.Equal(t, []il.Statement{il.Move{Src: il.Undefined{}, Result: v("r0", 32)}}, got)
}

func TestAppendThenIterRange(t *testing.T) {
	bc := bitcode.New(nil)
	extra := sampleStatements()
	r := bc.Append(extra)
	got, err := bc.IterRange(r).Collect()
	require.NoError(t, err)
	require.Equal(t, extra, got)
}

func TestRewriteIdentityIsNoOp(t *testing.T) {
	want := sampleStatements()
	bc := bitcode.New(want)
	before := append([]byte{}, bc.Buf...)
	full := bitcode.Range{Start: 0, End: len(bc.Buf)}
	r, err := bc.Rewrite(full, func(s il.Statement) il.Statement { return s })
	require.NoError(t, err)
	require.Equal(t, full, r)
	require.Equal(t, before, bc.Buf)
}

func TestRewriteGrows(t *testing.T) {
	stmts := []il.Statement{
		il.Move{Src: il.Constant{Value: 1, Width: 8}, Result: v("a", 8)},
		il.Return{},
		il.Move{Src: il.Constant{Value: 2, Width: 8}, Result: v("c", 8)},
	}
	bc := bitcode.New(stmts)

	// Locate the middle (Return) statement's byte range by iterating.
	it := bc.Iter()
	_, _, err := it.Next()
	require.NoError(t, err)
	midStart := it.Pos()
	_, ok, err := it.Next()
	require.NoError(t, err)
	require.True(t, ok)
	midEnd := it.Pos()
	midRange := bitcode.Range{Start: midStart, End: midEnd}

	newRange, err := bc.Rewrite(midRange, func(il.Statement) il.Statement {
		return il.Expression{Op: il.Add, Left: v("a", 8), Right: v("b", 8), Result: v("d", 8)}
	})
	require.NoError(t, err)
	require.Equal(t, midRange.Start, newRange.Start)
	require.Greater(t, newRange.End, midRange.End)

	got, err := bc.Iter().Collect()
	require.NoError(t, err)
	require.Equal(t, stmts[0], got[0])
	require.IsType(t, il.Expression{}, got[1])
	require.Equal(t, stmts[2], got[2])
}

func TestInsertThenRemoveRestoresContent(t *testing.T) {
	want := sampleStatements()
	bc := bitcode.New(want)
	before := append([]byte{}, bc.Buf...)

	r, err := bc.Insert(3, []il.Statement{il.Return{}})
	require.NoError(t, err)
	require.NoError(t, bc.Remove(r))
	require.Equal(t, before, bc.Buf)
}
