package schema

import "tupledb/internal/field"

// Tuple is an ordered sequence of fields. Its length and per-position tags
// are not self-describing; they come from the owning TupleDesc.
type Tuple struct {
	Fields []field.Field
}

// NewTuple wraps a slice of fields into a Tuple.
func NewTuple(fields ...field.Field) Tuple {
	return Tuple{Fields: fields}
}

// FieldTypeAt returns the tag of the stored value at position i.
func (t Tuple) FieldTypeAt(i int) field.Type {
	return t.Fields[i].Tag
}

// Compatible reports whether t has the same length as td and every
// position's tag matches td's declared type.
func Compatible(td *TupleDesc, t Tuple) bool {
	if len(t.Fields) != td.NumFields() {
		return false
	}
	for i, f := range t.Fields {
		if f.Tag != td.TypeAt(i) {
			return false
		}
	}
	return true
}
