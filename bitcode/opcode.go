package bitcode

import "github.com/gridforge/rreil/il"

// Argument-variant codes, shared by every opcode class below.
const (
	vConst uint8 = 0
	vVar   uint8 = 1
	vUndef uint8 = 2
)

func variantOf(v il.Value) uint8 {
	switch v.(type) {
	case il.Constant:
		return vConst
	case il.Variable:
		return vVar
	default:
		return vUndef
	}
}

// Opcode byte values. Expression occupies 0..7: for binary expression
// opcodes the low 3 bits select one of eight combinations of
// (lhs-variant, rhs-variant) from {C,V,U}x{C,V,U} minus the (U,U) case —
// these eight values fit exactly in opcodes 0..7, so no extra bits are
// needed to carry the variant class.
const (
	opExprCC uint8 = iota // 0: Const op Const
	opExprCV              // 1: Const op Var
	opExprCU              // 2: Const op Undef
	opExprVC              // 3: Var   op Const
	opExprVV              // 4: Var   op Var
	opExprVU              // 5: Var   op Undef
	opExprUC              // 6: Undef op Const
	opExprUV              // 7: Undef op Var
	// (Undef,Undef) is never encoded: it normalizes to Move(Undefined).

	opMoveC // 8:  Move(Const)
	opMoveV // 9:  Move(Var)
	opMoveU // 10: Move(Undef)

	opZextC // 11
	opZextV // 12
	opZextU // 13

	opSextC // 14
	opSextV // 15
	opSextU // 16
)

// Select, Load and Store need contiguous ranges wider than plain iota
// slots; their bases are computed explicitly.
const (
	selectBase uint8 = opSextU + 1 // 17; 9 combos: (start-variant*3 + src-variant)
	loadBase   uint8 = selectBase + 9 // 26; 3 combos: (addr-variant)
	storeBase  uint8 = loadBase + 3   // 29; 9 combos: (addr-variant*3 + val-variant)

	opInitialize uint8 = storeBase + 9 // 38

	opPhi uint8 = opInitialize + 1 // 39

	opCallLocal  uint8 = opPhi + 1 // 40
	opCallExtern uint8 = opPhi + 2 // 41

	indirectBase uint8 = opCallExtern + 1 // 42; 3 combos: (target-variant)

	opReturn uint8 = indirectBase + 3 // 45
)

func moveOpcode(srcVariant uint8) uint8 { return opMoveC + srcVariant }
func zextOpcode(srcVariant uint8) uint8 { return opZextC + srcVariant }
func sextOpcode(srcVariant uint8) uint8 { return opSextC + srcVariant }

func selectOpcode(startVariant, srcVariant uint8) uint8 {
	return selectBase + startVariant*3 + srcVariant
}

func loadOpcode(addrVariant uint8) uint8 { return loadBase + addrVariant }

func storeOpcode(addrVariant, valVariant uint8) uint8 {
	return storeBase + addrVariant*3 + valVariant
}

func indirectOpcode(targetVariant uint8) uint8 { return indirectBase + targetVariant }

// exprOpcode returns the Expression opcode for a (left,right) variant pair,
// or ok=false for the excluded (Undef,Undef) case.
func exprOpcode(left, right uint8) (uint8, bool) {
	if left == vUndef && right == vUndef {
		return 0, false
	}
	return left*3 + right, true
}

func exprVariants(op uint8) (left, right uint8) {
	return op / 3, op % 3
}
