package function

import (
	"github.com/gridforge/rreil/bitcode"
	"github.com/gridforge/rreil/il"
	"github.com/pkg/errors"
)

// recomputeBlockRanges derives every block's StmtRange from the StmtRange
// of its first and last mnemonic. Block ranges are never shifted
// directly; they're always a view onto the mnemonic they bound, so
// recomputing them after any bitcode mutation is simpler and harder to
// get wrong than propagating a byte delta by hand.
func (fn *Function) recomputeBlockRanges() {
	for i := range fn.BasicBlocks {
		b := &fn.BasicBlocks[i]
		if b.MneStart >= b.MneEnd {
			b.StmtRange = bitcode.Range{Start: b.StmtRange.Start, End: b.StmtRange.Start}
			continue
		}
		b.StmtRange = bitcode.Range{
			Start: fn.Mnemonics[b.MneStart].StmtRange.Start,
			End:   fn.Mnemonics[b.MneEnd-1].StmtRange.End,
		}
	}
}

// RewriteMnemonics rewrites every mnemonic in block in place via rf. It
// preserves the number and ordering of mnemonics; as each rewrite grows
// or shrinks its byte range, the ranges of every later mnemonic (and the
// block ranges derived from them) are kept consistent.
func (fn *Function) RewriteMnemonics(blockIdx int, rf bitcode.RewriteFunc) error {
	block := fn.BasicBlocks[blockIdx]
	for mi := block.MneStart; mi < block.MneEnd; mi++ {
		m := &fn.Mnemonics[mi]
		oldRange := m.StmtRange
		newRange, err := fn.Bitcode.Rewrite(oldRange, rf)
		if err != nil {
			return errors.Wrapf(err, "function: rewrite mnemonic %d", mi)
		}
		delta := newRange.Len() - oldRange.Len()
		m.StmtRange = newRange
		stmts, err := fn.Bitcode.IterRange(newRange).Collect()
		if err != nil {
			return errors.Wrapf(err, "function: redecode mnemonic %d after rewrite", mi)
		}
		m.Statements = stmts

		if delta != 0 {
			for j := range fn.Mnemonics {
				if j == mi {
					continue
				}
				r := &fn.Mnemonics[j].StmtRange
				if r.Start >= oldRange.End {
					r.Start += delta
					r.End += delta
				}
			}
		}
	}
	fn.recomputeBlockRanges()
	return nil
}

// PrependMnemonic inserts a synthesized, zero-length mnemonic carrying
// stmts at the start of block: its area is [block.area.start,
// block.area.start) because it has no corresponding bytes in the
// original image.
func (fn *Function) PrependMnemonic(blockIdx int, opcode string, stmts []il.Statement) error {
	block := fn.BasicBlocks[blockIdx]
	pos := fn.Mnemonics[block.MneStart].StmtRange.Start

	r, err := fn.Bitcode.Insert(pos, stmts)
	if err != nil {
		return errors.Wrap(err, "function: prepend mnemonic")
	}
	delta := r.Len()
	for j := range fn.Mnemonics {
		rr := &fn.Mnemonics[j].StmtRange
		if rr.Start >= pos {
			rr.Start += delta
			rr.End += delta
		}
	}

	decoded, err := fn.Bitcode.IterRange(r).Collect()
	if err != nil {
		return errors.Wrap(err, "function: redecode prepended mnemonic")
	}

	insertIdx := block.MneStart
	fn.Mnemonics = append(fn.Mnemonics, Mnemonic{})
	copy(fn.Mnemonics[insertIdx+1:], fn.Mnemonics[insertIdx:])
	fn.Mnemonics[insertIdx] = Mnemonic{
		AreaStart:  block.AreaStart,
		AreaEnd:    block.AreaStart,
		Opcode:     opcode,
		StmtRange:  r,
		Statements: decoded,
	}

	for i := range fn.BasicBlocks {
		if fn.BasicBlocks[i].MneStart > insertIdx {
			fn.BasicBlocks[i].MneStart++
		}
		if fn.BasicBlocks[i].MneEnd > insertIdx {
			fn.BasicBlocks[i].MneEnd++
		}
	}
	fn.recomputeBlockRanges()
	return nil
}

// RemoveMnemonic drops the first mnemonic of block and its statements.
func (fn *Function) RemoveMnemonic(blockIdx int) error {
	block := fn.BasicBlocks[blockIdx]
	mi := block.MneStart
	m := fn.Mnemonics[mi]

	if err := fn.Bitcode.Remove(m.StmtRange); err != nil {
		return errors.Wrap(err, "function: remove mnemonic")
	}
	delta := -m.StmtRange.Len()
	oldEnd := m.StmtRange.End

	fn.Mnemonics = append(fn.Mnemonics[:mi], fn.Mnemonics[mi+1:]...)
	for j := range fn.Mnemonics {
		r := &fn.Mnemonics[j].StmtRange
		if r.Start >= oldEnd {
			r.Start += delta
			r.End += delta
		}
	}

	for i := range fn.BasicBlocks {
		if fn.BasicBlocks[i].MneStart > mi {
			fn.BasicBlocks[i].MneStart--
		}
		if fn.BasicBlocks[i].MneEnd > mi {
			fn.BasicBlocks[i].MneEnd--
		}
	}
	fn.recomputeBlockRanges()
	return nil
}
