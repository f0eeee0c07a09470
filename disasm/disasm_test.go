package disasm_test

import (
	"testing"

	"github.com/gridforge/rreil/disasm"
	"github.com/gridforge/rreil/il"
	"github.com/gridforge/rreil/pattern"
	"github.com/gridforge/rreil/region"
	"github.com/gridforge/rreil/token"
	"github.com/stretchr/testify/require"
)

func byteReader(t *testing.T) *token.Reader {
	t.Helper()
	r, err := token.NewReader(1, token.LittleEndian)
	require.NoError(t, err)
	return r
}

func TestCaptureGroupExtraction(t *testing.T) {
	term, err := pattern.Compile("001 a@.....", 8)
	require.NoError(t, err)

	d := disasm.New(8, nil)
	require.NoError(t, d.AddPath([]disasm.Rule{term}, func(s *disasm.State) bool {
		require.Equal(t, uint64(0b10111), s.GetGroup("a"))
		return true
	}))

	reg := region.NewBytes([]byte{0b00110111}, 0)
	st, err := d.TryMatch(reg, 0, byteReader(t), nil)
	require.NoError(t, err)
	require.NotNil(t, st)
}

func TestLongestMatchWins(t *testing.T) {
	prefix, err := pattern.Compile("00000000", 8)
	require.NoError(t, err)
	anyByte, err := pattern.Compile("........", 8)
	require.NoError(t, err)

	sub := disasm.New(8, nil)
	require.NoError(t, sub.AddPath([]disasm.Rule{anyByte}, func(s *disasm.State) bool { return true }))

	d := disasm.New(8, nil)
	require.NoError(t, d.AddPath([]disasm.Rule{prefix}, func(s *disasm.State) bool {
		return emitMnemonic(s, "short")
	}))
	require.NoError(t, d.AddPath([]disasm.Rule{prefix, disasm.SubDisassembler{Graph: sub}}, func(s *disasm.State) bool {
		return emitMnemonic(s, "long")
	}))

	reg := region.NewBytes([]byte{0x00, 0x05}, 0)
	st, err := d.TryMatch(reg, 0, byteReader(t), nil)
	require.NoError(t, err)
	require.NotNil(t, st)
	require.Equal(t, 2, len(st.Tokens))
	require.Equal(t, "long", st.Mnemonics[0].Opcode)
}

func emitMnemonic(s *disasm.State, opcode string) bool {
	return s.Mnemonic(1, opcode, "", nil, func() ([]il.Statement, error) { return nil, nil }) == nil
}

func TestDefaultActionRunsOnlyWhenNothingAccepts(t *testing.T) {
	term, err := pattern.Compile("11111111", 8)
	require.NoError(t, err)

	ran := false
	d := disasm.New(8, func(s *disasm.State) bool {
		ran = true
		return true
	})
	require.NoError(t, d.AddPath([]disasm.Rule{term}, func(s *disasm.State) bool { return true }))

	reg := region.NewBytes([]byte{0x00}, 0)
	_, err = d.TryMatch(reg, 0, byteReader(t), nil)
	require.NoError(t, err)
	require.True(t, ran, "default action should run when no accepting path matches")

	ran = false
	reg2 := region.NewBytes([]byte{0xFF}, 0)
	_, err = d.TryMatch(reg2, 0, byteReader(t), nil)
	require.NoError(t, err)
	require.False(t, ran, "default action must not run once a real path accepts")
}

func TestEmptyInputNeverMatches(t *testing.T) {
	term, err := pattern.Compile("00000000", 8)
	require.NoError(t, err)
	d := disasm.New(8, nil)
	require.NoError(t, d.AddPath([]disasm.Rule{term}, func(s *disasm.State) bool { return true }))

	reg := region.NewBytes(nil, 0)
	st, err := d.TryMatch(reg, 0, byteReader(t), nil)
	require.NoError(t, err)
	require.Nil(t, st)
}
