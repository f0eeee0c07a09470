package pattern_test

import (
	"testing"

	"github.com/gridforge/rreil/pattern"
	"github.com/stretchr/testify/require"
)

func TestCompileValidPattern(t *testing.T) {
	term, err := pattern.Compile("0011 name@.... ", 8)
	require.NoError(t, err)
	require.Equal(t, 1, len(term.Groups))
	require.Equal(t, "name", term.Groups[0].Name)
}

func TestCompileRejectsWrongLength(t *testing.T) {
	_, err := pattern.Compile("0011", 8)
	require.Error(t, err)

	_, err = pattern.Compile("001100001", 8)
	require.Error(t, err)
}

func TestCompileRejectsBadBitCharacter(t *testing.T) {
	_, err := pattern.Compile("0011xxxx", 8)
	require.Error(t, err)
}

func TestCompileRejectsUnnamedCaptureGroup(t *testing.T) {
	_, err := pattern.Compile("0011 @....", 8)
	require.Error(t, err)
}

func TestCompileRejectsMisplacedAt(t *testing.T) {
	_, err := pattern.Compile("0011 na@me@....", 8)
	require.Error(t, err)
}

func TestCompileMatchesMaskAndPattern(t *testing.T) {
	term, err := pattern.Compile("1010....", 8)
	require.NoError(t, err)
	require.Equal(t, uint64(0xF0), uint64(term.Mask))
	require.Equal(t, uint64(0xA0), uint64(term.Pattern))
}
