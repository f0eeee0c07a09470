// Package bitcode implements a compact binary encoding for RREIL
// statement sequences: a byte buffer plus a per-function interned string
// table, supporting append/insert/remove and in-place rewrite with
// automatic grow/shrink.
package bitcode

import (
	"github.com/gridforge/rreil/il"
	"github.com/pkg/errors"
)

// Range is a half-open byte range [Start, End) into a Bitcode's buffer.
type Range struct {
	Start, End int
}

// Len reports the range's width in bytes.
func (r Range) Len() int { return r.End - r.Start }

// Bitcode holds an encoded statement stream and its string table.
type Bitcode struct {
	Buf     []byte
	Strings *StringTable
}

// New encodes statements from scratch.
func New(statements []il.Statement) *Bitcode {
	bc := &Bitcode{Strings: NewStringTable()}
	for _, s := range statements {
		bc.Buf = EncodeStatement(bc.Buf, bc.Strings, s)
	}
	return bc
}

// Append encodes statements onto the end of the buffer, returning the byte
// range they occupy.
func (bc *Bitcode) Append(statements []il.Statement) Range {
	start := len(bc.Buf)
	for _, s := range statements {
		bc.Buf = EncodeStatement(bc.Buf, bc.Strings, s)
	}
	return Range{Start: start, End: len(bc.Buf)}
}

// Insert splices statements in at byte position pos, shifting everything
// from pos onward to the right. Returns the byte range the new statements
// occupy.
func (bc *Bitcode) Insert(pos int, statements []il.Statement) (Range, error) {
	if pos < 0 || pos > len(bc.Buf) {
		return Range{}, errors.Errorf("bitcode: insert position %d out of range [0,%d]", pos, len(bc.Buf))
	}
	var enc []byte
	for _, s := range statements {
		enc = EncodeStatement(enc, bc.Strings, s)
	}
	bc.Buf = spliceBytes(bc.Buf, pos, 0, enc)
	return Range{Start: pos, End: pos + len(enc)}, nil
}

// Remove drops the byte range r, shifting everything after it left.
func (bc *Bitcode) Remove(r Range) error {
	if r.Start < 0 || r.End > len(bc.Buf) || r.Start > r.End {
		return errors.Errorf("bitcode: remove range %v out of bounds (len %d)", r, len(bc.Buf))
	}
	bc.Buf = spliceBytes(bc.Buf, r.Start, r.End-r.Start, nil)
	return nil
}

// spliceBytes replaces the delLen bytes at buf[pos:pos+delLen] with ins,
// returning the resulting slice. The tail is first copied aside, then
// appended after ins into a freshly allocated slice.
func spliceBytes(buf []byte, pos, delLen int, ins []byte) []byte {
	tail := append([]byte{}, buf[pos+delLen:]...)
	out := append(buf[:pos:pos], ins...)
	out = append(out, tail...)
	return out
}

// RewriteFunc mutates a decoded statement in place before it is re-encoded.
type RewriteFunc func(il.Statement) il.Statement

// Rewrite decodes every statement in r, applies f, re-encodes the result
// and splices it back in, growing or contracting the buffer as needed.
// Returns the (possibly different-width) range now covering the rewritten
// statements.
func (bc *Bitcode) Rewrite(r Range, f RewriteFunc) (Range, error) {
	if r.Start < 0 || r.End > len(bc.Buf) || r.Start > r.End {
		return Range{}, errors.Errorf("bitcode: rewrite range %v out of bounds (len %d)", r, len(bc.Buf))
	}
	var newEnc []byte
	pos := r.Start
	for pos < r.End {
		st, n, err := DecodeStatement(bc.Buf[pos:r.End], bc.Strings)
		if err != nil {
			return Range{}, errors.Wrap(err, "bitcode: rewrite decode")
		}
		newEnc = EncodeStatement(newEnc, bc.Strings, f(st))
		pos += n
	}
	bc.Buf = spliceBytes(bc.Buf, r.Start, r.Len(), newEnc)
	return Range{Start: r.Start, End: r.Start + len(newEnc)}, nil
}

// Iterator lazily decodes statements from a byte range.
type Iterator struct {
	bc       *Bitcode
	pos, end int
}

// Iter returns an iterator over the whole buffer.
func (bc *Bitcode) Iter() *Iterator { return &Iterator{bc: bc, pos: 0, end: len(bc.Buf)} }

// IterRange returns an iterator over r.
func (bc *Bitcode) IterRange(r Range) *Iterator { return &Iterator{bc: bc, pos: r.Start, end: r.End} }

// Pos reports the iterator's current byte offset into the buffer.
func (it *Iterator) Pos() int { return it.pos }

// Next decodes and returns the next statement, or ok=false at end of range.
func (it *Iterator) Next() (il.Statement, bool, error) {
	if it.pos >= it.end {
		return nil, false, nil
	}
	st, n, err := DecodeStatement(it.bc.Buf[it.pos:it.end], it.bc.Strings)
	if err != nil {
		return nil, false, err
	}
	it.pos += n
	return st, true, nil
}

// Collect drains the iterator into a slice.
func (it *Iterator) Collect() ([]il.Statement, error) {
	var out []il.Statement
	for {
		st, ok, err := it.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, st)
	}
}
