package schema

import (
	"errors"
	"strings"
	"testing"

	"tupledb/internal/engineerr"
	"tupledb/internal/field"
)

func mustSchema(t *testing.T, types []field.Type, names []string) *TupleDesc {
	t.Helper()
	td, err := New(types, names)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return td
}

func TestCodec_RoundTrip(t *testing.T) {
	td := mustSchema(t, []field.Type{field.Int, field.Char, field.Double}, []string{"id", "name", "score"})

	tests := []Tuple{
		NewTuple(field.NewInt(7), field.NewChar("ada"), field.NewDouble(1.5)),
		NewTuple(field.NewInt(-1), field.NewChar(""), field.NewDouble(-0.25)),
		NewTuple(field.NewInt(0), field.NewChar(strings.Repeat("x", field.CharWidth)), field.NewDouble(0)),
	}

	for i, tup := range tests {
		enc, err := Encode(td, tup)
		if err != nil {
			t.Fatalf("[%d] encode: %v", i, err)
		}
		if len(enc) != td.Length() {
			t.Fatalf("[%d] encoded length = %d, want %d", i, len(enc), td.Length())
		}
		dec, err := Decode(td, enc)
		if err != nil {
			t.Fatalf("[%d] decode: %v", i, err)
		}
		for j := range tup.Fields {
			if !tup.Fields[j].Equal(dec.Fields[j]) {
				t.Errorf("[%d] field %d: got %+v, want %+v", i, j, dec.Fields[j], tup.Fields[j])
			}
		}
	}
}

func TestCodec_ScenarioOne(t *testing.T) {
	// spec.md §8 scenario 1: codec round-trip.
	td := mustSchema(t, []field.Type{field.Int, field.Char, field.Double}, []string{"id", "name", "score"})
	tup := NewTuple(field.NewInt(7), field.NewChar("ada"), field.NewDouble(1.5))

	enc, err := Encode(td, tup)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if got, want := len(enc), 4+64+8; got != want {
		t.Fatalf("encoded length = %d, want %d", got, want)
	}
	dec, err := Decode(td, enc)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if dec.Fields[0].I != 7 || dec.Fields[1].S != "ada" || dec.Fields[2].D != 1.5 {
		t.Fatalf("decode mismatch: %+v", dec)
	}
}

func TestCodec_CharTooLong(t *testing.T) {
	td := mustSchema(t, []field.Type{field.Char}, []string{"s"})
	tup := NewTuple(field.NewChar(strings.Repeat("x", field.CharWidth+1)))
	if _, err := Encode(td, tup); !errors.Is(err, engineerr.ErrInvalidArgument) {
		t.Fatalf("encode: got %v, want ErrInvalidArgument", err)
	}
}

func TestCodec_IncompatibleTuple(t *testing.T) {
	td := mustSchema(t, []field.Type{field.Int}, []string{"id"})
	tup := NewTuple(field.NewDouble(1.0))
	if _, err := Encode(td, tup); !errors.Is(err, engineerr.ErrInvalidArgument) {
		t.Fatalf("encode: got %v, want ErrInvalidArgument", err)
	}
}

func TestSchema_Invariants(t *testing.T) {
	if _, err := New([]field.Type{field.Int, field.Int}, []string{"a", "a"}); !errors.Is(err, engineerr.ErrInvalidArgument) {
		t.Fatalf("duplicate names: got %v", err)
	}
	if _, err := New([]field.Type{field.Int}, []string{""}); !errors.Is(err, engineerr.ErrInvalidArgument) {
		t.Fatalf("empty name: got %v", err)
	}
	if _, err := New([]field.Type{field.Int, field.Int}, []string{"a"}); !errors.Is(err, engineerr.ErrInvalidArgument) {
		t.Fatalf("length mismatch: got %v", err)
	}
}

func TestSchema_IndexOf(t *testing.T) {
	td := mustSchema(t, []field.Type{field.Int, field.Char}, []string{"id", "name"})
	i, err := td.IndexOf("name")
	if err != nil || i != 1 {
		t.Fatalf("IndexOf(name) = %d, %v", i, err)
	}
	if _, err := td.IndexOf("missing"); !errors.Is(err, engineerr.ErrNotFound) {
		t.Fatalf("IndexOf(missing): got %v, want ErrNotFound", err)
	}
}

func TestSchema_Merge(t *testing.T) {
	a := mustSchema(t, []field.Type{field.Int}, []string{"id"})
	b := mustSchema(t, []field.Type{field.Char}, []string{"name"})
	merged, err := Merge(a, b)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if merged.NumFields() != 2 || merged.NameAt(0) != "id" || merged.NameAt(1) != "name" {
		t.Fatalf("merge result: %+v", merged)
	}

	c := mustSchema(t, []field.Type{field.Int}, []string{"id"})
	if _, err := Merge(a, c); !errors.Is(err, engineerr.ErrInvalidArgument) {
		t.Fatalf("merge duplicate: got %v, want ErrInvalidArgument", err)
	}
}

func TestSchema_OffsetAndLength(t *testing.T) {
	td := mustSchema(t, []field.Type{field.Int, field.Char, field.Double}, []string{"a", "b", "c"})
	if td.Offset(0) != 0 || td.Offset(1) != 4 || td.Offset(2) != 4+64 {
		t.Fatalf("offsets: %d %d %d", td.Offset(0), td.Offset(1), td.Offset(2))
	}
	if td.Length() != 4+64+8 {
		t.Fatalf("length = %d", td.Length())
	}
}
