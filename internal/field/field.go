// Package field implements the tagged scalar value that a Tuple is built
// from: an Int, a Double, or a fixed-length Char. Equality and ordering are
// defined within a tag; comparing across tags is an error.
package field

import (
	"fmt"

	"tupledb/internal/engineerr"
)

// Type tags a Field's underlying Go value. The set is closed: the engine
// never needs a fourth scalar kind, so there is no registration mechanism.
type Type uint8

const (
	Int Type = iota
	Double
	Char
)

// CharWidth is the fixed width, in bytes, of a Char field (W in spec.md §3).
const CharWidth = 64

// Width returns the fixed encoded width of a field of the given type.
func Width(t Type) int {
	switch t {
	case Int:
		return 4
	case Double:
		return 8
	case Char:
		return CharWidth
	default:
		panic(fmt.Sprintf("field: unknown type %d", t))
	}
}

func (t Type) String() string {
	switch t {
	case Int:
		return "Int"
	case Double:
		return "Double"
	case Char:
		return "Char"
	default:
		return fmt.Sprintf("Type(%d)", uint8(t))
	}
}

// Field is a single typed value. Exactly one of the three fields below is
// meaningful, selected by Tag.
type Field struct {
	Tag Type
	I   int32
	D   float64
	S   string // Char payload, already stripped of trailing NULs
}

// NewInt builds an Int field.
func NewInt(v int32) Field { return Field{Tag: Int, I: v} }

// NewDouble builds a Double field.
func NewDouble(v float64) Field { return Field{Tag: Double, D: v} }

// NewChar builds a Char field. The caller is responsible for ensuring the
// string fits CharWidth bytes; Encode enforces it at write time.
func NewChar(v string) Field { return Field{Tag: Char, S: v} }

// Equal reports whether two fields of the same tag carry the same value.
// Cross-tag comparisons report false rather than panicking; callers that
// need a hard failure should check tags first (see Compare).
func (f Field) Equal(o Field) bool {
	if f.Tag != o.Tag {
		return false
	}
	switch f.Tag {
	case Int:
		return f.I == o.I
	case Double:
		return f.D == o.D
	case Char:
		return f.S == o.S
	default:
		return false
	}
}

// Compare orders two fields of the same tag: -1, 0, or 1. Cross-tag
// comparisons fail with ErrTypeMismatch, per spec.md §3 ("cross-tag
// comparisons are undefined (error)").
func Compare(a, b Field) (int, error) {
	if a.Tag != b.Tag {
		return 0, fmt.Errorf("compare %s with %s: %w", a.Tag, b.Tag, engineerr.ErrTypeMismatch)
	}
	switch a.Tag {
	case Int:
		switch {
		case a.I < b.I:
			return -1, nil
		case a.I > b.I:
			return 1, nil
		default:
			return 0, nil
		}
	case Double:
		switch {
		case a.D < b.D:
			return -1, nil
		case a.D > b.D:
			return 1, nil
		default:
			return 0, nil
		}
	case Char:
		switch {
		case a.S < b.S:
			return -1, nil
		case a.S > b.S:
			return 1, nil
		default:
			return 0, nil
		}
	default:
		return 0, fmt.Errorf("compare: %w", engineerr.ErrTypeMismatch)
	}
}
