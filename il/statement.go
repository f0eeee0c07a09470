package il

import "github.com/google/uuid"

// BinOp enumerates the binary expression operators encodable in bitcode.
type BinOp uint8

const (
	Add BinOp = iota
	Sub
	Mul
	DivU
	DivS
	Mod
	ShiftLeft
	ShiftRightU
	ShiftRightS
	And
	Or
	Xor
	Equal
	LessOrEqualU
	LessOrEqualS
	LessU
	LessS
)

// Statement is the sum type of RREIL statements.
type Statement interface {
	isStatement()
}

// Expression computes Op over Left and Right into Result. Move, ZeroExtend,
// SignExtend, Select, Load, Initialize and Phi are represented as distinct
// Statement variants below rather than folded into Expression: a
// binary-expression opcode byte only ever carries a BinOp plus two
// argument variants.
type Expression struct {
	Op          BinOp
	Left, Right Value
	Result      Variable
}

func (Expression) isStatement() {}

// Move assigns Src to Result verbatim.
type Move struct {
	Src    Value
	Result Variable
}

func (Move) isStatement() {}

// ZeroExtend widens Src to TargetBits with zero fill.
type ZeroExtend struct {
	TargetBits uint8
	Src        Value
	Result     Variable
}

func (ZeroExtend) isStatement() {}

// SignExtend widens Src to TargetBits with sign fill.
type SignExtend struct {
	TargetBits uint8
	Src        Value
	Result     Variable
}

func (SignExtend) isStatement() {}

// Select overwrites StartValue at BitOffset with Source's low bits.
type Select struct {
	BitOffset          uint8
	StartValue, Source Value
	Result             Variable
}

func (Select) isStatement() {}

// Load reads ByteCount bytes from RegionName at Address.
type Load struct {
	RegionName string
	Endian     uint8 // 0 = little, 1 = big
	ByteCount  uint8
	Address    Value
	Result     Variable
}

func (Load) isStatement() {}

// Store writes Value to ByteCount bytes of RegionName at Address.
type Store struct {
	RegionName string
	Endian     uint8
	ByteCount  uint8
	Address    Value
	Value      Value
}

func (Store) isStatement() {}

// Initialize declares a fresh, otherwise-undefined variable of Bits width.
type Initialize struct {
	Name   string
	Bits   uint8
	Result Variable
}

func (Initialize) isStatement() {}

// Phi merges between 0 and 3 variable inputs at a CFG join point.
type Phi struct {
	Inputs [3]Variable
	NumIn  uint8 // 0..=3, how many of Inputs are meaningful
	Result Variable
}

func (Phi) isStatement() {}

// Call transfers control to a statically known target: either another
// function in this program (by UUID) or an external symbol by name.
type Call struct {
	Target   uuid.UUID
	Extern   string // non-empty iff this is an extern-name call
	IsExtern bool
}

func (Call) isStatement() {}

// IndirectCall transfers control to a computed target.
type IndirectCall struct {
	Target Value
}

func (IndirectCall) isStatement() {}

// Return exits the current function.
type Return struct{}

func (Return) isStatement() {}
