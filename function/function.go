// Package function implements the builder that turns a stream of decoded
// instructions into a lifted function: it drives a disassembler worklist
// to a fixed point, partitions the resulting mnemonics into basic blocks,
// builds a control-flow graph, orders it in reverse post-order, and emits
// each block's IL as a bitcode stream. It also supports incremental
// extension after an indirect jump is resolved, and in-place rewriting of
// mnemonic bodies.
package function

import (
	"github.com/google/uuid"
	"github.com/gridforge/rreil/bitcode"
	"github.com/gridforge/rreil/cfg"
	"github.com/gridforge/rreil/il"
	"go.uber.org/zap"
)

// Mnemonic is a disassembled instruction as stored by a Function: its
// byte area, opcode, operands, and the span of its IL body within the
// owning function's bitcode.
type Mnemonic struct {
	AreaStart, AreaEnd uint64
	Opcode             string
	Format             string
	Operands           []il.Value
	Statements         []il.Statement
	StmtRange          bitcode.Range
}

// Len reports the mnemonic's byte length.
func (m Mnemonic) Len() uint64 { return m.AreaEnd - m.AreaStart }

// BasicBlock is a maximal straight-line run of mnemonics with one entry
// and one exit.
type BasicBlock struct {
	AreaStart, AreaEnd uint64
	MneStart, MneEnd   int // half-open range into Function.Mnemonics
	StmtRange          bitcode.Range
	CFGNode            cfg.NodeIndex
}

// transfer is one outgoing control transfer recorded during disassembly,
// keyed by the address it originates from (the end of the mnemonic that
// produced it).
type transfer struct {
	Origin uint64
	Target il.Value
	Guard  il.Value
}

// Function is the lifted result: a bitcode stream, its mnemonics sorted
// by start address, its basic blocks in reverse post-order, and the CFG
// tying them together.
type Function struct {
	Name        string
	UUID        uuid.UUID
	Bitcode     *bitcode.Bitcode
	Mnemonics   []Mnemonic // sorted by AreaStart, disjoint
	BasicBlocks []BasicBlock
	CFG         *cfg.Graph
	EntryPoint  int // index into BasicBlocks

	entryAddr uint64
	// bySource maps an origin address to every transfer recorded there.
	bySource map[uint64][]transfer
	// byDest maps a constant target address to the transfers that name it.
	byDest map[uint64][]transfer
	logger *zap.Logger
}

// valueKey returns a comparable key for deduplicating unresolved CFG
// target nodes: same logical Value, same node.
func valueKey(v il.Value) string {
	switch x := v.(type) {
	case il.Constant:
		return "c:" + itoa(x.Value) + "/" + itoa(uint64(x.Width))
	case il.Variable:
		sub := "n"
		if x.Subscript != nil {
			sub = itoa(*x.Subscript)
		}
		return "v:" + x.Name + "/" + sub + "/" + itoa(uint64(x.Width))
	default:
		return "u"
	}
}

func itoa(v uint64) string {
	if v == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}

// mnemonicAt returns the index of the mnemonic whose AreaStart equals
// addr, or -1.
func (f *Function) mnemonicAt(addr uint64) int {
	lo, hi := 0, len(f.Mnemonics)
	for lo < hi {
		mid := (lo + hi) / 2
		if f.Mnemonics[mid].AreaStart < addr {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo < len(f.Mnemonics) && f.Mnemonics[lo].AreaStart == addr {
		return lo
	}
	return -1
}

// mnemonicContaining returns the index of the mnemonic whose area
// strictly contains addr (addr falls inside it but isn't its start), or
// -1.
func (f *Function) mnemonicContaining(addr uint64) int {
	lo, hi := 0, len(f.Mnemonics)
	for lo < hi {
		mid := (lo + hi) / 2
		if f.Mnemonics[mid].AreaStart <= addr {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	idx := lo - 1
	if idx >= 0 && f.Mnemonics[idx].AreaStart < addr && addr < f.Mnemonics[idx].AreaEnd {
		return idx
	}
	return -1
}

// insertMnemonic inserts m at its sorted position by AreaStart.
func (f *Function) insertMnemonic(m Mnemonic) {
	lo, hi := 0, len(f.Mnemonics)
	for lo < hi {
		mid := (lo + hi) / 2
		if f.Mnemonics[mid].AreaStart < m.AreaStart {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	f.Mnemonics = append(f.Mnemonics, Mnemonic{})
	copy(f.Mnemonics[lo+1:], f.Mnemonics[lo:])
	f.Mnemonics[lo] = m
}

// blockContaining returns the index into blocks of the block whose area
// contains addr, or -1.
func blockContaining(blocks []BasicBlock, addr uint64) int {
	for i, b := range blocks {
		if b.AreaStart <= addr && addr < b.AreaEnd {
			return i
		}
	}
	return -1
}
