// Package schema implements the TupleDesc (schema) and Tuple types from
// spec.md §3/§4.1: an ordered list of typed, uniquely-named columns with a
// stable fixed-width byte layout, and the rows built against it.
package schema

import (
	"fmt"

	"tupledb/internal/engineerr"
	"tupledb/internal/field"
)

// TupleDesc is the schema shared by every row in a file: parallel arrays of
// types and names, same length, names pairwise distinct and non-empty.
type TupleDesc struct {
	types []field.Type
	names []string
}

// New builds a TupleDesc, validating the invariants in spec.md §3.
func New(types []field.Type, names []string) (*TupleDesc, error) {
	if len(types) != len(names) {
		return nil, fmt.Errorf("schema: %d types but %d names: %w", len(types), len(names), engineerr.ErrInvalidArgument)
	}
	if len(types) == 0 {
		return nil, fmt.Errorf("schema: empty schema: %w", engineerr.ErrInvalidArgument)
	}
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if n == "" {
			return nil, fmt.Errorf("schema: empty column name: %w", engineerr.ErrInvalidArgument)
		}
		if _, dup := seen[n]; dup {
			return nil, fmt.Errorf("schema: duplicate column name %q: %w", n, engineerr.ErrInvalidArgument)
		}
		seen[n] = struct{}{}
	}
	td := &TupleDesc{
		types: append([]field.Type(nil), types...),
		names: append([]string(nil), names...),
	}
	return td, nil
}

// NumFields returns the column count n.
func (td *TupleDesc) NumFields() int { return len(td.types) }

// TypeAt returns types[i].
func (td *TupleDesc) TypeAt(i int) field.Type { return td.types[i] }

// NameAt returns names[i].
func (td *TupleDesc) NameAt(i int) string { return td.names[i] }

// Offset returns offset(i) = Σ_{j<i} width(types[j]).
func (td *TupleDesc) Offset(i int) int {
	off := 0
	for j := 0; j < i; j++ {
		off += field.Width(td.types[j])
	}
	return off
}

// Length returns the fixed encoded length of any tuple compatible with td.
func (td *TupleDesc) Length() int {
	total := 0
	for _, t := range td.types {
		total += field.Width(t)
	}
	return total
}

// IndexOf returns the position of name, or ErrNotFound if absent.
func (td *TupleDesc) IndexOf(name string) (int, error) {
	for i, n := range td.names {
		if n == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("schema: field %q: %w", name, engineerr.ErrNotFound)
}

// Merge concatenates two schemas' types and names, failing if the result
// would have duplicate names.
func Merge(a, b *TupleDesc) (*TupleDesc, error) {
	types := append(append([]field.Type(nil), a.types...), b.types...)
	names := append(append([]string(nil), a.names...), b.names...)
	return New(types, names)
}
