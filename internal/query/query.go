// Package query implements the relational operators of spec.md §4.9:
// projection, selection, aggregation, and natural-join, expressed against
// the Table capability rather than any one file implementation (grounded on
// original_source/src/db/Query.cpp's free-function shape).
package query

import (
	"fmt"

	"tupledb/internal/engineerr"
	"tupledb/internal/field"
	"tupledb/internal/schema"
)

// Table is the capability every scannable source of tuples exposes: a
// schema, a cursor range [Begin, End), and random Get. Both heapfile.File
// and btreefile.File satisfy Table[C] for their own cursor type C.
type Table[C comparable] interface {
	Schema() *schema.TupleDesc
	Begin() (C, error)
	End() (C, error)
	Next(cur C) (C, error)
	Get(cur C) (schema.Tuple, error)
}

// Sink is anything that accepts newly produced tuples. btreefile.File
// satisfies it; heapfile.File does not, because its Insert returns a
// (Cursor, error) pair rather than a bare error.
type Sink interface {
	Insert(t schema.Tuple) error
}

// forEach scans t from Begin to End, calling fn on every tuple.
func forEach[C comparable](t Table[C], fn func(schema.Tuple) error) error {
	cur, err := t.Begin()
	if err != nil {
		return err
	}
	end, err := t.End()
	if err != nil {
		return err
	}
	for cur != end {
		tup, err := t.Get(cur)
		if err != nil {
			return err
		}
		if err := fn(tup); err != nil {
			return err
		}
		cur, err = t.Next(cur)
		if err != nil {
			return err
		}
	}
	return nil
}

// Project writes, for every tuple of input, a new tuple holding only the
// named columns, preserving their order.
func Project[C comparable](input Table[C], output Sink, columns []string) error {
	td := input.Schema()
	idx := make([]int, len(columns))
	for i, name := range columns {
		pos, err := td.IndexOf(name)
		if err != nil {
			return err
		}
		idx[i] = pos
	}
	return forEach(input, func(tup schema.Tuple) error {
		fields := make([]field.Field, len(idx))
		for i, pos := range idx {
			fields[i] = tup.Fields[pos]
		}
		return output.Insert(schema.Tuple{Fields: fields})
	})
}

// PredicateOp is a scalar comparison operator (spec.md §4.9).
type PredicateOp int

const (
	EQ PredicateOp = iota
	NE
	LT
	LE
	GT
	GE
)

// Predicate tests one column of a scanned tuple against a fixed value.
type Predicate struct {
	Column string
	Op     PredicateOp
	Value  field.Field
}

func evaluate(f field.Field, op PredicateOp, value field.Field) (bool, error) {
	cmp, err := field.Compare(f, value)
	if err != nil {
		return false, err
	}
	switch op {
	case EQ:
		return cmp == 0, nil
	case NE:
		return cmp != 0, nil
	case LT:
		return cmp < 0, nil
	case LE:
		return cmp <= 0, nil
	case GT:
		return cmp > 0, nil
	case GE:
		return cmp >= 0, nil
	default:
		return false, fmt.Errorf("query: unknown predicate op %d: %w", op, engineerr.ErrInvalidArgument)
	}
}

// Select writes every tuple of input that satisfies all of predicates to
// output, unchanged (spec.md §4.9's selection operator).
func Select[C comparable](input Table[C], output Sink, predicates []Predicate) error {
	td := input.Schema()
	idx := make([]int, len(predicates))
	for i, p := range predicates {
		pos, err := td.IndexOf(p.Column)
		if err != nil {
			return err
		}
		idx[i] = pos
	}
	return forEach(input, func(tup schema.Tuple) error {
		for i, p := range predicates {
			ok, err := evaluate(tup.Fields[idx[i]], p.Op, p.Value)
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
		}
		return output.Insert(tup)
	})
}

// AggregateOp names a reducer applied to one numeric column (spec.md §4.9).
type AggregateOp int

const (
	Sum AggregateOp = iota
	Avg
	Min
	Max
	Count
)

// Aggregate describes one aggregation: reduce Column by Op, optionally
// grouped by GroupBy.
type Aggregate struct {
	Column  string
	Op      AggregateOp
	GroupBy string // group column; read only when Grouped is true
	Grouped bool
}

type accumulator struct {
	sum   float64
	count int
	min   float64
	max   float64
	seen  bool
}

func (a *accumulator) add(v float64) {
	if !a.seen {
		a.min, a.max = v, v
		a.seen = true
	} else {
		if v < a.min {
			a.min = v
		}
		if v > a.max {
			a.max = v
		}
	}
	a.sum += v
	a.count++
}

func (a *accumulator) result(op AggregateOp) float64 {
	switch op {
	case Sum:
		return a.sum
	case Avg:
		if a.count == 0 {
			return 0
		}
		return a.sum / float64(a.count)
	case Min:
		if !a.seen {
			return 0
		}
		return a.min
	case Max:
		if !a.seen {
			return 0
		}
		return a.max
	case Count:
		return float64(a.count)
	default:
		return 0
	}
}

func asFloat(f field.Field) (float64, error) {
	switch f.Tag {
	case field.Int:
		return float64(f.I), nil
	case field.Double:
		return f.D, nil
	default:
		return 0, fmt.Errorf("query: aggregate over non-numeric field %s: %w", f.Tag, engineerr.ErrTypeMismatch)
	}
}

// RunAggregate computes agg over input and writes one result tuple
// (ungrouped) or one per distinct group key (grouped) to output. An
// ungrouped aggregate over zero input rows still writes one result tuple —
// SUM/COUNT default to 0, MIN/MAX default to 0, AVG defaults to 0 (spec.md
// §4.9's degenerate empty-input case; grounded on Query.cpp's
// has_data-gated defaults).
func RunAggregate[C comparable](input Table[C], output Sink, agg Aggregate) error {
	td := input.Schema()
	valueIdx, err := td.IndexOf(agg.Column)
	if err != nil {
		return err
	}
	valueType := td.TypeAt(valueIdx)
	var groupIdx int
	if agg.Grouped {
		groupIdx, err = td.IndexOf(agg.GroupBy)
		if err != nil {
			return err
		}
	}

	if !agg.Grouped {
		acc := &accumulator{}
		if err := forEach(input, func(tup schema.Tuple) error {
			v, err := asFloat(tup.Fields[valueIdx])
			if err != nil {
				return err
			}
			acc.add(v)
			return nil
		}); err != nil {
			return err
		}
		return output.Insert(resultTuple(acc, agg.Op, valueType))
	}

	type groupState struct {
		key field.Field
		acc *accumulator
	}
	order := make([]string, 0)
	groups := make(map[string]*groupState)
	if err := forEach(input, func(tup schema.Tuple) error {
		v, err := asFloat(tup.Fields[valueIdx])
		if err != nil {
			return err
		}
		key := tup.Fields[groupIdx]
		k := groupKeyString(key)
		gs, ok := groups[k]
		if !ok {
			gs = &groupState{key: key, acc: &accumulator{}}
			groups[k] = gs
			order = append(order, k)
		}
		gs.acc.add(v)
		return nil
	}); err != nil {
		return err
	}
	for _, k := range order {
		gs := groups[k]
		fields := []field.Field{gs.key, field.NewDouble(gs.acc.result(agg.Op))}
		if err := output.Insert(schema.Tuple{Fields: fields}); err != nil {
			return err
		}
	}
	return nil
}

// resultTuple builds the single-field ungrouped result for one accumulator.
// Per spec.md §4.9, the ungrouped output schema is Double for AVG, Int for
// COUNT, and the input field's own type for SUM/MIN/MAX. The grouped path
// does not use this helper: per §4.9 its output schema is unconditionally
// (group_type, Double) regardless of op, so the grouped loop above always
// emits field.NewDouble directly instead.
func resultTuple(acc *accumulator, op AggregateOp, valueType field.Type) schema.Tuple {
	v := acc.result(op)
	switch op {
	case Count:
		return schema.NewTuple(field.NewInt(int32(acc.count)))
	case Avg:
		return schema.NewTuple(field.NewDouble(v))
	default:
		if valueType == field.Double {
			return schema.NewTuple(field.NewDouble(v))
		}
		return schema.NewTuple(field.NewInt(int32(v)))
	}
}

func groupKeyString(f field.Field) string {
	switch f.Tag {
	case field.Int:
		return fmt.Sprintf("i:%d", f.I)
	case field.Double:
		return fmt.Sprintf("d:%g", f.D)
	default:
		return fmt.Sprintf("s:%s", f.S)
	}
}

// JoinPredicate names the two columns (one from each input) to compare and
// the comparison operator. Natural-join deduplication (dropping Right from
// the combined row) applies only when Op is EQ (spec.md §4.9, grounded on
// Query.cpp's eliminate_duplicates flag).
type JoinPredicate struct {
	Left  string
	Right string
	Op    PredicateOp
}

// Join performs a nested-loop join of left against right, writing one
// combined tuple to output for every pair satisfying predicate.
func Join[L comparable, R comparable](left Table[L], right Table[R], output Sink, predicate JoinPredicate) error {
	leftTD, rightTD := left.Schema(), right.Schema()
	leftIdx, err := leftTD.IndexOf(predicate.Left)
	if err != nil {
		return err
	}
	rightIdx, err := rightTD.IndexOf(predicate.Right)
	if err != nil {
		return err
	}
	dedup := predicate.Op == EQ

	return forEach(left, func(leftTup schema.Tuple) error {
		leftField := leftTup.Fields[leftIdx]
		return forEach(right, func(rightTup schema.Tuple) error {
			ok, err := evaluate(leftField, predicate.Op, rightTup.Fields[rightIdx])
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
			combined := make([]field.Field, 0, len(leftTup.Fields)+len(rightTup.Fields))
			combined = append(combined, leftTup.Fields...)
			for i, f := range rightTup.Fields {
				if dedup && i == rightIdx {
					continue
				}
				combined = append(combined, f)
			}
			return output.Insert(schema.Tuple{Fields: combined})
		})
	})
}
