package bitcode

import (
	"github.com/gridforge/rreil/il"
	"github.com/pkg/errors"
)

// encodeValuePayload appends v's payload (everything after the opcode byte
// that already carries v's variant) to buf.
func encodeValuePayload(buf []byte, strs *StringTable, v il.Value) []byte {
	switch val := v.(type) {
	case il.Constant:
		buf = appendUvarint(buf, uint64(val.Width))
		buf = appendUvarint(buf, val.Value)
	case il.Variable:
		buf = appendUvarint(buf, strs.Intern(val.Name))
		if val.Subscript == nil {
			buf = appendUvarint(buf, 0)
		} else {
			buf = appendUvarint(buf, *val.Subscript+1)
		}
		buf = appendUvarint(buf, uint64(val.Width))
	case il.Undefined:
		// no payload
	}
	return buf
}

// decodeValuePayload reads a value of the given variant from buf, returning
// the value and the number of bytes consumed.
func decodeValuePayload(buf []byte, strs *StringTable, variant uint8) (il.Value, int, error) {
	switch variant {
	case vConst:
		width, n1, err := readUvarint(buf)
		if err != nil {
			return nil, 0, errors.Wrap(err, "bitcode: constant width")
		}
		value, n2, err := readUvarint(buf[n1:])
		if err != nil {
			return nil, 0, errors.Wrap(err, "bitcode: constant value")
		}
		return il.Constant{Value: value, Width: uint8(width)}, n1 + n2, nil
	case vVar:
		nameIdx, n1, err := readUvarint(buf)
		if err != nil {
			return nil, 0, errors.Wrap(err, "bitcode: variable name index")
		}
		subPlus1, n2, err := readUvarint(buf[n1:])
		if err != nil {
			return nil, 0, errors.Wrap(err, "bitcode: variable subscript")
		}
		width, n3, err := readUvarint(buf[n1+n2:])
		if err != nil {
			return nil, 0, errors.Wrap(err, "bitcode: variable width")
		}
		name, ok := strs.String(nameIdx)
		if !ok {
			return nil, 0, errors.Errorf("bitcode: unknown string index %d", nameIdx)
		}
		var sub *uint64
		if subPlus1 != 0 {
			s := subPlus1 - 1
			sub = &s
		}
		return il.Variable{Name: name, Width: uint8(width), Subscript: sub}, n1 + n2 + n3, nil
	case vUndef:
		return il.Undefined{}, 0, nil
	default:
		return nil, 0, errors.Errorf("bitcode: unknown value variant %d", variant)
	}
}

// sentinelVariable is the all-zero "absent" variable used to pad Phi
// statement slots that have fewer than 3 real inputs.
var sentinelVariable = il.Variable{Name: "", Width: 0, Subscript: nil}
