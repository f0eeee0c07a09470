package bitcode

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// No pack example ships a LEB128 library; encoding/binary's Uvarint and
// PutUvarint already implement the LEB128 unsigned format byte-for-byte, so
// this stays on the standard library (see DESIGN.md).

func appendUvarint(buf []byte, v uint64) []byte {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	return append(buf, tmp[:n]...)
}

func readUvarint(buf []byte) (uint64, int, error) {
	v, n := binary.Uvarint(buf)
	if n <= 0 {
		return 0, 0, errors.New("bitcode: truncated or invalid varint")
	}
	return v, n, nil
}
