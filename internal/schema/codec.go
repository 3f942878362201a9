package schema

import (
	"encoding/binary"
	"fmt"
	"math"

	"tupledb/internal/engineerr"
	"tupledb/internal/field"
)

// Encode serializes t into a freshly allocated td.Length()-byte buffer.
// Int and Double use host byte order (little-endian on every platform this
// module targets); Char is NUL-padded to field.CharWidth. Strings exceeding
// field.CharWidth fail with ErrInvalidArgument, per spec.md §4.1.
func Encode(td *TupleDesc, t Tuple) ([]byte, error) {
	if !Compatible(td, t) {
		return nil, fmt.Errorf("schema: tuple not compatible with schema: %w", engineerr.ErrInvalidArgument)
	}
	buf := make([]byte, td.Length())
	for i, f := range t.Fields {
		off := td.Offset(i)
		switch f.Tag {
		case field.Int:
			binary.LittleEndian.PutUint32(buf[off:], uint32(f.I))
		case field.Double:
			binary.LittleEndian.PutUint64(buf[off:], math.Float64bits(f.D))
		case field.Char:
			if len(f.S) > field.CharWidth {
				return nil, fmt.Errorf("schema: char value %q exceeds width %d: %w", f.S, field.CharWidth, engineerr.ErrInvalidArgument)
			}
			copy(buf[off:off+field.CharWidth], f.S)
			// The rest of the CharWidth window is already zero from make().
		default:
			return nil, fmt.Errorf("schema: encode: %w", engineerr.ErrTypeMismatch)
		}
	}
	return buf, nil
}

// Decode is the inverse of Encode: decode(encode(t)) == t modulo Char
// trailing NULs, per spec.md §4.1's invariant.
func Decode(td *TupleDesc, buf []byte) (Tuple, error) {
	if len(buf) != td.Length() {
		return Tuple{}, fmt.Errorf("schema: decode: buffer is %d bytes, want %d: %w", len(buf), td.Length(), engineerr.ErrInvalidArgument)
	}
	fields := make([]field.Field, td.NumFields())
	for i := 0; i < td.NumFields(); i++ {
		off := td.Offset(i)
		switch td.TypeAt(i) {
		case field.Int:
			v := int32(binary.LittleEndian.Uint32(buf[off:]))
			fields[i] = field.NewInt(v)
		case field.Double:
			v := math.Float64frombits(binary.LittleEndian.Uint64(buf[off:]))
			fields[i] = field.NewDouble(v)
		case field.Char:
			raw := buf[off : off+field.CharWidth]
			n := 0
			for n < len(raw) && raw[n] != 0 {
				n++
			}
			fields[i] = field.NewChar(string(raw[:n]))
		default:
			return Tuple{}, fmt.Errorf("schema: decode: %w", engineerr.ErrTypeMismatch)
		}
	}
	return NewTuple(fields...), nil
}
