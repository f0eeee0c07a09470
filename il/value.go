// Package il defines the RREIL value and statement algebra: a small,
// ISA-agnostic three-address language over fixed-width bit vectors.
package il

// Value is the sum type Constant | Variable | Undefined.
type Value interface {
	isValue()
	// Bits reports the value's bit width, or 0 for Undefined.
	Bits() uint8
}

// Constant is a fixed-width unsigned integer literal.
type Constant struct {
	Value uint64
	Width uint8 // 1..=64
}

func (Constant) isValue()      {}
func (c Constant) Bits() uint8 { return c.Width }

// Variable is a named, fixed-width value, optionally carrying an SSA
// subscript. Subscript == nil means the statement has not been converted
// to SSA form.
type Variable struct {
	Name      string
	Width     uint8
	Subscript *uint64
}

func (Variable) isValue()      {}
func (v Variable) Bits() uint8 { return v.Width }

// WithSubscript returns a copy of v carrying subscript n.
func (v Variable) WithSubscript(n uint64) Variable {
	v.Subscript = &n
	return v
}

// Equal reports whether two variables name the same SSA value.
func (v Variable) Equal(o Variable) bool {
	if v.Name != o.Name || v.Width != o.Width {
		return false
	}
	switch {
	case v.Subscript == nil && o.Subscript == nil:
		return true
	case v.Subscript == nil || o.Subscript == nil:
		return false
	default:
		return *v.Subscript == *o.Subscript
	}
}

// Undefined marks a value with no known definition.
type Undefined struct{}

func (Undefined) isValue()    {}
func (Undefined) Bits() uint8 { return 0 }

// IsConstant, IsVariable and IsUndefined are convenience type assertions,
// used by the function builder to classify jump targets.
func IsConstant(v Value) (Constant, bool) { c, ok := v.(Constant); return c, ok }
func IsVariable(v Value) (Variable, bool) { vv, ok := v.(Variable); return vv, ok }
func IsUndefined(v Value) bool            { _, ok := v.(Undefined); return ok }
