// Package region provides the opaque, seekable byte stream the core reads
// machine code from. A Region never interprets its contents; it only answers
// "what's the byte at this address" and "how long are you".
package region

import "github.com/pkg/errors"

// Region is the interface the core consumes. Holes in the address space
// (unmapped memory) are representable: Iter yields io.EOF-free streams of
// *byte, and a nil element means "no byte defined here".
type Region interface {
	// Len reports the addressable length of the region.
	Len() uint64
	// At returns the byte at addr, or ok=false if addr is out of range or
	// falls in an undefined hole.
	At(addr uint64) (b byte, ok bool)
	// Iter returns a stream of bytes starting at addr, one *byte per
	// position; a nil entry marks an undefined hole. The stream ends when
	// the region's length is exhausted.
	Iter(from uint64) Stream
}

// Stream yields successive (possibly undefined) bytes from a Region.
type Stream interface {
	// Next returns the next byte, or ok=false once the stream is exhausted.
	// A returned b of nil with ok=true marks an undefined hole.
	Next() (b *byte, ok bool)
}

// Bytes is a Region backed by an in-memory byte slice. Every address in
// [base,base+len) is defined; nothing outside it is.
type Bytes struct {
	data []byte
	base uint64
}

// NewBytes wraps data as a Region starting at address base.
func NewBytes(data []byte, base uint64) *Bytes {
	return &Bytes{data: data, base: base}
}

func (r *Bytes) Len() uint64 { return uint64(len(r.data)) }

func (r *Bytes) At(addr uint64) (byte, bool) {
	if addr < r.base {
		return 0, false
	}
	off := addr - r.base
	if off >= uint64(len(r.data)) {
		return 0, false
	}
	return r.data[off], true
}

func (r *Bytes) Iter(from uint64) Stream {
	return &bytesStream{r: r, pos: from}
}

type bytesStream struct {
	r   *Bytes
	pos uint64
}

func (s *bytesStream) Next() (*byte, bool) {
	if s.pos >= s.r.base+s.r.Len() || s.pos < s.r.base {
		return nil, false
	}
	b := s.r.data[s.pos-s.r.base]
	s.pos++
	return &b, true
}

// ErrOutOfRange is returned by helpers in this package (not by Region
// methods themselves, which report absence via ok=false) when an address is
// demonstrably outside every region a caller knows about.
var ErrOutOfRange = errors.New("region: address out of range")

// ReadN reads exactly n contiguous defined bytes starting at addr. It fails
// if any byte in the range is undefined or out of range.
func ReadN(r Region, addr uint64, n int) ([]byte, error) {
	out := make([]byte, n)
	s := r.Iter(addr)
	for i := 0; i < n; i++ {
		b, ok := s.Next()
		if !ok || b == nil {
			return nil, errors.Wrapf(ErrOutOfRange, "reading %d bytes at %#x", n, addr)
		}
		out[i] = *b
	}
	return out, nil
}
