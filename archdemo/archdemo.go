// Package archdemo is a minimal, single-byte-token fixture architecture
// implementing arch.Architecture. It exists so the function package's
// tests and cmd/rreildump can exercise the builder end-to-end without depending
// on any real ISA's decode tables, which are explicitly out of scope of
// the core.
package archdemo

import (
	"github.com/gridforge/rreil/arch"
	"github.com/gridforge/rreil/disasm"
	"github.com/gridforge/rreil/il"
	"github.com/gridforge/rreil/region"
	"github.com/gridforge/rreil/token"
	"github.com/pkg/errors"
)

// JumpSpec describes one outgoing transfer a demo instruction emits.
type JumpSpec struct {
	Target il.Value
	Guard  il.Value
}

// InstrSpec describes a single-byte demo instruction: its opcode name
// and the transfers it emits (recorded from the end of its own area).
type InstrSpec struct {
	Opcode string
	Jumps  []JumpSpec
}

// Demo is a fixture architecture over a byte -> InstrSpec table: each
// matching byte decodes to a length-1 mnemonic carrying exactly the
// jumps configured for it.
type Demo struct {
	instrs  map[byte]InstrSpec
	entry   uint64
	d       *disasm.Disassembler
	tokRead *token.Reader
}

// New builds a Demo from a table of byte -> InstrSpec and a single entry
// address used by Prepare.
func New(instrs map[byte]InstrSpec, entry uint64) (*Demo, error) {
	d := disasm.New(8, nil)
	for b, spec := range instrs {
		spec := spec
		term := disasm.Terminal{Mask: 0xFF, Pattern: token.Token(b)}
		err := d.AddPath([]disasm.Rule{term}, func(s *disasm.State) bool {
			err := s.Mnemonic(1, spec.Opcode, spec.Opcode, nil, func() ([]il.Statement, error) {
				return nil, nil
			})
			if err != nil {
				return false
			}
			for _, j := range spec.Jumps {
				if err := s.Jump(j.Target, j.Guard); err != nil {
					return false
				}
			}
			return true
		})
		if err != nil {
			return nil, errors.Wrapf(err, "archdemo: registering byte %#x", b)
		}
	}
	reader, err := token.NewReader(1, token.LittleEndian)
	if err != nil {
		return nil, err
	}
	return &Demo{instrs: instrs, entry: entry, d: d, tokRead: reader}, nil
}

var _ arch.Architecture = (*Demo)(nil)

// TokenWidth is always 1 byte for the demo ISA.
func (a *Demo) TokenWidth() int { return 1 }

// Endian is little-endian.
func (a *Demo) Endian() token.Endian { return token.LittleEndian }

// Prepare returns the single configured entry point.
func (a *Demo) Prepare(reg region.Region, config any) ([]arch.EntryPoint, error) {
	return []arch.EntryPoint{{Name: "entry", Address: a.entry}}, nil
}

// Decode matches one byte at address against the instruction table.
func (a *Demo) Decode(reg region.Region, address uint64, config any) (*disasm.State, error) {
	return a.d.TryMatch(reg, address, a.tokRead, config)
}
