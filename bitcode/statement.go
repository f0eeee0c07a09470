package bitcode

import (
	"github.com/google/uuid"
	"github.com/gridforge/rreil/il"
	"github.com/pkg/errors"
)

// EncodeStatement appends st's encoding to buf using (and possibly
// extending) strs, returning the new buffer.
func EncodeStatement(buf []byte, strs *StringTable, st il.Statement) []byte {
	switch s := st.(type) {
	case il.Expression:
		lv, rv := variantOf(s.Left), variantOf(s.Right)
		op, ok := exprOpcode(lv, rv)
		if !ok {
			// Undef op Undef normalizes to Move(Undefined).
			return EncodeStatement(buf, strs, il.Move{Src: il.Undefined{}, Result: s.Result})
		}
		buf = append(buf, op)
		buf = appendUvarint(buf, uint64(s.Op))
		buf = encodeValuePayload(buf, strs, s.Left)
		buf = encodeValuePayload(buf, strs, s.Right)
		buf = encodeValuePayload(buf, strs, s.Result)
		return buf
	case il.Move:
		v := variantOf(s.Src)
		buf = append(buf, moveOpcode(v))
		buf = encodeValuePayload(buf, strs, s.Src)
		buf = encodeValuePayload(buf, strs, s.Result)
		return buf
	case il.ZeroExtend:
		v := variantOf(s.Src)
		buf = append(buf, zextOpcode(v))
		buf = appendUvarint(buf, uint64(s.TargetBits))
		buf = encodeValuePayload(buf, strs, s.Src)
		buf = encodeValuePayload(buf, strs, s.Result)
		return buf
	case il.SignExtend:
		v := variantOf(s.Src)
		buf = append(buf, sextOpcode(v))
		buf = appendUvarint(buf, uint64(s.TargetBits))
		buf = encodeValuePayload(buf, strs, s.Src)
		buf = encodeValuePayload(buf, strs, s.Result)
		return buf
	case il.Select:
		sv, rv := variantOf(s.StartValue), variantOf(s.Source)
		buf = append(buf, selectOpcode(sv, rv))
		buf = appendUvarint(buf, uint64(s.BitOffset))
		buf = encodeValuePayload(buf, strs, s.StartValue)
		buf = encodeValuePayload(buf, strs, s.Source)
		buf = encodeValuePayload(buf, strs, s.Result)
		return buf
	case il.Load:
		av := variantOf(s.Address)
		buf = append(buf, loadOpcode(av))
		buf = appendUvarint(buf, strs.Intern(s.RegionName))
		buf = append(buf, s.Endian)
		buf = appendUvarint(buf, uint64(s.ByteCount))
		buf = encodeValuePayload(buf, strs, s.Address)
		buf = encodeValuePayload(buf, strs, s.Result)
		return buf
	case il.Store:
		av, vv := variantOf(s.Address), variantOf(s.Value)
		buf = append(buf, storeOpcode(av, vv))
		buf = appendUvarint(buf, strs.Intern(s.RegionName))
		buf = append(buf, s.Endian)
		buf = appendUvarint(buf, uint64(s.ByteCount))
		buf = encodeValuePayload(buf, strs, s.Address)
		buf = encodeValuePayload(buf, strs, s.Value)
		return buf
	case il.Initialize:
		buf = append(buf, opInitialize)
		buf = appendUvarint(buf, strs.Intern(s.Name))
		buf = appendUvarint(buf, uint64(s.Bits))
		buf = encodeValuePayload(buf, strs, s.Result)
		return buf
	case il.Phi:
		buf = append(buf, opPhi)
		buf = encodeValuePayload(buf, strs, s.Result)
		buf = append(buf, s.NumIn)
		// Each slot's encoding is same-size as sentinelVariable's 3-byte
		// form only while its name index, subscript+1, and width stay
		// below 128; beyond that an in-place rewrite falls back to the
		// ordinary grow/shrink splice.
		for i := 0; i < 3; i++ {
			in := sentinelVariable
			if uint8(i) < s.NumIn {
				in = s.Inputs[i]
			}
			buf = encodeValuePayload(buf, strs, in)
		}
		return buf
	case il.Call:
		if s.IsExtern {
			buf = append(buf, opCallExtern)
			buf = appendUvarint(buf, strs.Intern(s.Extern))
			return buf
		}
		buf = append(buf, opCallLocal)
		buf = append(buf, s.Target[:]...)
		return buf
	case il.IndirectCall:
		tv := variantOf(s.Target)
		buf = append(buf, indirectOpcode(tv))
		buf = encodeValuePayload(buf, strs, s.Target)
		return buf
	case il.Return:
		buf = append(buf, opReturn)
		return buf
	}
	panic("bitcode: unencodable statement type")
}

// DecodeStatement reads one statement from the front of buf, returning it
// and the number of bytes consumed.
func DecodeStatement(buf []byte, strs *StringTable) (il.Statement, int, error) {
	if len(buf) == 0 {
		return nil, 0, errors.New("bitcode: empty buffer")
	}
	op := buf[0]
	pos := 1
	switch {
	case op <= opExprUV:
		binOp, n, err := readUvarint(buf[pos:])
		if err != nil {
			return nil, 0, errors.Wrap(err, "bitcode: expression op")
		}
		pos += n
		lv, rv := exprVariants(op)
		left, n, err := decodeValuePayload(buf[pos:], strs, lv)
		if err != nil {
			return nil, 0, err
		}
		pos += n
		right, n, err := decodeValuePayload(buf[pos:], strs, rv)
		if err != nil {
			return nil, 0, err
		}
		pos += n
		result, n, err := decodeValuePayload(buf[pos:], strs, vVar)
		if err != nil {
			return nil, 0, err
		}
		pos += n
		return il.Expression{Op: il.BinOp(binOp), Left: left, Right: right, Result: result.(il.Variable)}, pos, nil

	case op >= opMoveC && op <= opMoveU:
		src, n, err := decodeValuePayload(buf[pos:], strs, op-opMoveC)
		if err != nil {
			return nil, 0, err
		}
		pos += n
		result, n, err := decodeValuePayload(buf[pos:], strs, vVar)
		if err != nil {
			return nil, 0, err
		}
		pos += n
		return il.Move{Src: src, Result: result.(il.Variable)}, pos, nil

	case op >= opZextC && op <= opZextU:
		bits, n, err := readUvarint(buf[pos:])
		if err != nil {
			return nil, 0, err
		}
		pos += n
		src, n, err := decodeValuePayload(buf[pos:], strs, op-opZextC)
		if err != nil {
			return nil, 0, err
		}
		pos += n
		result, n, err := decodeValuePayload(buf[pos:], strs, vVar)
		if err != nil {
			return nil, 0, err
		}
		pos += n
		return il.ZeroExtend{TargetBits: uint8(bits), Src: src, Result: result.(il.Variable)}, pos, nil

	case op >= opSextC && op <= opSextU:
		bits, n, err := readUvarint(buf[pos:])
		if err != nil {
			return nil, 0, err
		}
		pos += n
		src, n, err := decodeValuePayload(buf[pos:], strs, op-opSextC)
		if err != nil {
			return nil, 0, err
		}
		pos += n
		result, n, err := decodeValuePayload(buf[pos:], strs, vVar)
		if err != nil {
			return nil, 0, err
		}
		pos += n
		return il.SignExtend{TargetBits: uint8(bits), Src: src, Result: result.(il.Variable)}, pos, nil

	case op >= selectBase && op < loadBase:
		rel := op - selectBase
		sv, rv := rel/3, rel%3
		offset, n, err := readUvarint(buf[pos:])
		if err != nil {
			return nil, 0, err
		}
		pos += n
		start, n, err := decodeValuePayload(buf[pos:], strs, sv)
		if err != nil {
			return nil, 0, err
		}
		pos += n
		src, n, err := decodeValuePayload(buf[pos:], strs, rv)
		if err != nil {
			return nil, 0, err
		}
		pos += n
		result, n, err := decodeValuePayload(buf[pos:], strs, vVar)
		if err != nil {
			return nil, 0, err
		}
		pos += n
		return il.Select{BitOffset: uint8(offset), StartValue: start, Source: src, Result: result.(il.Variable)}, pos, nil

	case op >= loadBase && op < storeBase:
		av := op - loadBase
		regionIdx, n, err := readUvarint(buf[pos:])
		if err != nil {
			return nil, 0, err
		}
		pos += n
		endian := buf[pos]
		pos++
		count, n, err := readUvarint(buf[pos:])
		if err != nil {
			return nil, 0, err
		}
		pos += n
		addr, n, err := decodeValuePayload(buf[pos:], strs, av)
		if err != nil {
			return nil, 0, err
		}
		pos += n
		result, n, err := decodeValuePayload(buf[pos:], strs, vVar)
		if err != nil {
			return nil, 0, err
		}
		pos += n
		region, ok := strs.String(regionIdx)
		if !ok {
			return nil, 0, errors.Errorf("bitcode: unknown region index %d", regionIdx)
		}
		return il.Load{RegionName: region, Endian: endian, ByteCount: uint8(count), Address: addr, Result: result.(il.Variable)}, pos, nil

	case op >= storeBase && op < opInitialize:
		rel := op - storeBase
		av, vv := rel/3, rel%3
		regionIdx, n, err := readUvarint(buf[pos:])
		if err != nil {
			return nil, 0, err
		}
		pos += n
		endian := buf[pos]
		pos++
		count, n, err := readUvarint(buf[pos:])
		if err != nil {
			return nil, 0, err
		}
		pos += n
		addr, n, err := decodeValuePayload(buf[pos:], strs, av)
		if err != nil {
			return nil, 0, err
		}
		pos += n
		val, n, err := decodeValuePayload(buf[pos:], strs, vv)
		if err != nil {
			return nil, 0, err
		}
		pos += n
		region, ok := strs.String(regionIdx)
		if !ok {
			return nil, 0, errors.Errorf("bitcode: unknown region index %d", regionIdx)
		}
		return il.Store{RegionName: region, Endian: endian, ByteCount: uint8(count), Address: addr, Value: val}, pos, nil

	case op == opInitialize:
		nameIdx, n, err := readUvarint(buf[pos:])
		if err != nil {
			return nil, 0, err
		}
		pos += n
		bits, n, err := readUvarint(buf[pos:])
		if err != nil {
			return nil, 0, err
		}
		pos += n
		result, n, err := decodeValuePayload(buf[pos:], strs, vVar)
		if err != nil {
			return nil, 0, err
		}
		pos += n
		name, ok := strs.String(nameIdx)
		if !ok {
			return nil, 0, errors.Errorf("bitcode: unknown string index %d", nameIdx)
		}
		return il.Initialize{Name: name, Bits: uint8(bits), Result: result.(il.Variable)}, pos, nil

	case op == opPhi:
		result, n, err := decodeValuePayload(buf[pos:], strs, vVar)
		if err != nil {
			return nil, 0, err
		}
		pos += n
		numIn := buf[pos]
		pos++
		var inputs [3]il.Variable
		for i := 0; i < 3; i++ {
			v, n, err := decodeValuePayload(buf[pos:], strs, vVar)
			if err != nil {
				return nil, 0, err
			}
			pos += n
			inputs[i] = v.(il.Variable)
		}
		return il.Phi{Inputs: inputs, NumIn: numIn, Result: result.(il.Variable)}, pos, nil

	case op == opCallLocal:
		if len(buf) < pos+16 {
			return nil, 0, errors.New("bitcode: truncated call target")
		}
		var id uuid.UUID
		copy(id[:], buf[pos:pos+16])
		pos += 16
		return il.Call{Target: id}, pos, nil

	case op == opCallExtern:
		nameIdx, n, err := readUvarint(buf[pos:])
		if err != nil {
			return nil, 0, err
		}
		pos += n
		name, ok := strs.String(nameIdx)
		if !ok {
			return nil, 0, errors.Errorf("bitcode: unknown string index %d", nameIdx)
		}
		return il.Call{Extern: name, IsExtern: true}, pos, nil

	case op >= indirectBase && op < opReturn:
		tv := op - indirectBase
		target, n, err := decodeValuePayload(buf[pos:], strs, tv)
		if err != nil {
			return nil, 0, err
		}
		pos += n
		return il.IndirectCall{Target: target}, pos, nil

	case op == opReturn:
		return il.Return{}, pos, nil

	default:
		return nil, 0, errors.Errorf("bitcode: unknown opcode %d", op)
	}
}
