// Package token reassembles fixed-width ISA tokens from a byte region in a
// configurable endianness. A token is the indivisible decode unit for an
// ISA: one byte for x86, two for AVR/Thumb, four for ARM A32.
package token

import (
	"encoding/binary"

	"github.com/gridforge/rreil/region"
	"github.com/pkg/errors"
)

// Token is an unsigned integer of ISA-specific width.
type Token uint64

// Mask returns t with only the bits selected by m set.
func (t Token) Mask(m Token) Token { return t & m }

// Shifted returns t logically shifted right by n bits (tokens are
// unsigned).
func (t Token) Shifted(n uint) Token { return t >> n }

// Endian selects byte order for multi-byte token reassembly: a per-
// architecture knob, since ISAs disagree on it (m68k reads big-endian
// words, x86 reads little-endian).
type Endian int

const (
	LittleEndian Endian = iota
	BigEndian
)

// Reader reads successive width-byte tokens from a Region.
type Reader struct {
	Width  int // bytes per token: 1, 2, 4, or 8
	Endian Endian
}

// NewReader returns a Reader for tokens of the given byte width.
func NewReader(width int, endian Endian) (*Reader, error) {
	if width != 1 && width != 2 && width != 4 && width != 8 {
		return nil, errors.Errorf("token: unsupported width %d", width)
	}
	return &Reader{Width: width, Endian: endian}, nil
}

// Read assembles one token starting at addr. It fails if any byte in the
// token's span is undefined or out of range; the caller is expected to
// treat that as "no match here", not abort.
func (r *Reader) Read(reg region.Region, addr uint64) (Token, error) {
	raw, err := region.ReadN(reg, addr, r.Width)
	if err != nil {
		return 0, errors.Wrapf(err, "token: reading %d-byte token at %#x", r.Width, addr)
	}
	if r.Endian == BigEndian {
		return Token(readBE(raw)), nil
	}
	return Token(readLE(raw)), nil
}

func readLE(b []byte) uint64 {
	switch len(b) {
	case 1:
		return uint64(b[0])
	case 2:
		return uint64(binary.LittleEndian.Uint16(b))
	case 4:
		return uint64(binary.LittleEndian.Uint32(b))
	case 8:
		return binary.LittleEndian.Uint64(b)
	}
	return 0
}

func readBE(b []byte) uint64 {
	switch len(b) {
	case 1:
		return uint64(b[0])
	case 2:
		return uint64(binary.BigEndian.Uint16(b))
	case 4:
		return uint64(binary.BigEndian.Uint32(b))
	case 8:
		return binary.BigEndian.Uint64(b)
	}
	return 0
}
