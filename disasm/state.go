package disasm

import (
	"github.com/gridforge/rreil/il"
	"github.com/gridforge/rreil/token"
	"github.com/pkg/errors"
)

// Guard is the boolean predicate attached to a CFG edge.
type Guard = il.Value

// AlwaysGuard is the guard value meaning "always taken".
var AlwaysGuard = il.Constant{Value: 1, Width: 1}

// Mnemonic is one decoded instruction: its byte area, opcode, formatted
// operand string, operand values and IL body.
type Mnemonic struct {
	AreaStart, AreaEnd uint64
	Opcode             string
	Format             string
	Operands           []il.Value
	Statements         []il.Statement
}

// Len reports the mnemonic's byte length.
func (m Mnemonic) Len() uint64 { return m.AreaEnd - m.AreaStart }

// Jump is an outgoing control transfer recorded by a semantic action.
type Jump struct {
	Origin uint64
	Target il.Value
	Guard  Guard
}

// State is the mutable context threaded through a semantic action.
// Configuration holds the ISA-defined CPU-mode struct; each architecture
// adapter knows its own concrete type and type-asserts it.
type State struct {
	Address       uint64
	Tokens        []token.Token
	Groups        map[string]uint64
	Mnemonics     []Mnemonic
	Jumps         []Jump
	Configuration any

	cursor uint64 // address just past the last emitted mnemonic
}

func newState(addr uint64, cfg any) *State {
	return &State{
		Address:       addr,
		Groups:        make(map[string]uint64),
		Configuration: cfg,
		cursor:        addr,
	}
}

// clone deep-copies the parts of State that diverge between alternative
// match attempts, so one thread's speculative emission can't leak into
// another's.
func (s *State) clone() *State {
	ns := &State{
		Address:       s.Address,
		Tokens:        append([]token.Token{}, s.Tokens...),
		Groups:        make(map[string]uint64, len(s.Groups)),
		Mnemonics:     append([]Mnemonic{}, s.Mnemonics...),
		Jumps:         append([]Jump{}, s.Jumps...),
		Configuration: s.Configuration,
		cursor:        s.cursor,
	}
	for k, v := range s.Groups {
		ns.Groups[k] = v
	}
	return ns
}

// GetGroup returns the accumulated integer value of capture group name. It
// panics if the group was never populated — a programmer error, since an
// action should only reference groups its own rule path declares.
func (s *State) GetGroup(name string) uint64 {
	v, ok := s.Groups[name]
	if !ok {
		panic("disasm: GetGroup: no such capture group " + name)
	}
	return v
}

// HasGroup reports whether name was populated by the matched path.
func (s *State) HasGroup(name string) bool {
	_, ok := s.Groups[name]
	return ok
}

// Mnemonic pushes a new mnemonic of lenBytes starting at the current
// cursor, then advances the cursor past it. body computes the mnemonic's
// IL statements and may fail (a decode error for this alternative).
func (s *State) Mnemonic(lenBytes uint64, opcode, format string, operands []il.Value, body func() ([]il.Statement, error)) error {
	stmts, err := body()
	if err != nil {
		return errors.Wrapf(err, "disasm: mnemonic %s body", opcode)
	}
	start := s.cursor
	s.Mnemonics = append(s.Mnemonics, Mnemonic{
		AreaStart:  start,
		AreaEnd:    start + lenBytes,
		Opcode:     opcode,
		Format:     format,
		Operands:   operands,
		Statements: stmts,
	})
	s.cursor = start + lenBytes
	return nil
}

// MnemonicDynArgs is Mnemonic with operands computed alongside statements,
// for opcodes whose operand list isn't known until the body runs.
func (s *State) MnemonicDynArgs(lenBytes uint64, opcode, format string, body func() ([]il.Value, []il.Statement, error)) error {
	operands, stmts, err := body()
	if err != nil {
		return errors.Wrapf(err, "disasm: mnemonic %s body", opcode)
	}
	start := s.cursor
	s.Mnemonics = append(s.Mnemonics, Mnemonic{
		AreaStart:  start,
		AreaEnd:    start + lenBytes,
		Opcode:     opcode,
		Format:     format,
		Operands:   operands,
		Statements: stmts,
	})
	s.cursor = start + lenBytes
	return nil
}

// Jump records an outgoing transfer from the end of the last emitted
// mnemonic. It fails if there is no mnemonic yet, or the last one has zero
// length — preserving the invariant that a basic block never ends on a
// zero-length mnemonic.
func (s *State) Jump(target il.Value, guard Guard) error {
	if len(s.Mnemonics) == 0 {
		return errors.New("disasm: Jump: no mnemonic emitted yet")
	}
	last := s.Mnemonics[len(s.Mnemonics)-1]
	if last.Len() == 0 {
		return errors.New("disasm: Jump: last mnemonic has zero length")
	}
	return s.JumpFrom(last.AreaEnd, target, guard)
}

// JumpFrom records an outgoing transfer with an explicit originating
// address.
func (s *State) JumpFrom(origin uint64, target il.Value, guard Guard) error {
	s.Jumps = append(s.Jumps, Jump{Origin: origin, Target: target, Guard: guard})
	return nil
}
