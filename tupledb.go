// Package tupledb is a single-node, disk-backed storage engine for
// fixed-schema relational tables: a tuple/schema codec, slotted heap pages,
// a B+-tree index, a buffer-pooled file layer, and a small set of
// relational operators (projection, selection, aggregation, join).
//
// # Basic usage
//
//	pool := tupledb.NewPool(tupledb.DefaultBufferPoolFrames)
//	td, _ := tupledb.NewSchema(
//		[]tupledb.FieldType{tupledb.Int, tupledb.Char},
//		[]string{"id", "name"},
//	)
//	heap, _ := tupledb.OpenHeapFile("employees.db", td, pool)
//	cur, _ := heap.Insert(tupledb.NewTuple(tupledb.NewInt(1), tupledb.NewChar("Ada")))
//	row, _ := heap.Get(cur)
//
// A B+-tree file additionally requires an Int-typed key column:
//
//	tree, _ := tupledb.OpenBTreeFile("employees.idx", td, 0, pool)
//	_ = tree.Insert(tupledb.NewTuple(tupledb.NewInt(1), tupledb.NewChar("Ada")))
//
// Both file types satisfy the same Begin/End/Next/Get/Schema cursor
// protocol, so the relational operators (Project, Select, RunAggregate,
// Join) run identically over either.
package tupledb

import (
	"tupledb/internal/bufferpool"
	"tupledb/internal/btreefile"
	"tupledb/internal/config"
	"tupledb/internal/field"
	"tupledb/internal/heapfile"
	"tupledb/internal/query"
	"tupledb/internal/schema"
)

// ============================================================================
// Data model — re-exported from internal packages for public API
// ============================================================================

// FieldType enumerates the closed set of column types: Int, Double, Char.
type FieldType = field.Type

// Field type constants.
const (
	Int    = field.Int
	Double = field.Double
	Char   = field.Char
)

// Field is one tagged scalar value.
type Field = field.Field

// NewInt builds an Int field.
func NewInt(v int32) Field { return field.NewInt(v) }

// NewDouble builds a Double field.
func NewDouble(v float64) Field { return field.NewDouble(v) }

// NewChar builds a Char field. It is NUL-padded to the fixed width when
// encoded; a string longer than that width is not truncated, and encoding
// it fails with an invalid-argument error.
func NewChar(v string) Field { return field.NewChar(v) }

// TupleDesc is an ordered list of typed, uniquely-named columns shared by
// every row in a file.
type TupleDesc = schema.TupleDesc

// NewSchema validates and builds a TupleDesc.
func NewSchema(types []FieldType, names []string) (*TupleDesc, error) {
	return schema.New(types, names)
}

// Tuple is one row: a slice of Fields matching a TupleDesc in order.
type Tuple = schema.Tuple

// NewTuple builds a Tuple from its fields in schema order.
func NewTuple(fields ...Field) Tuple { return schema.NewTuple(fields...) }

// ============================================================================
// Buffer pool and configuration
// ============================================================================

// Pool is the bounded, LRU page cache shared by every file opened against
// it. A single Pool may back any number of heap and B+-tree files.
type Pool = bufferpool.Pool

// DefaultBufferPoolFrames is the frame count a Pool uses when no explicit
// configuration is given.
const DefaultBufferPoolFrames = bufferpool.DefaultCapacity

// NewPool builds a Pool holding at most capacity pages at once.
func NewPool(capacity int) *Pool { return bufferpool.NewPool(capacity) }

// EngineConfig holds the ambient tuning knobs (currently just the buffer
// pool's frame count) loadable from an optional YAML file.
type EngineConfig = config.EngineConfig

// LoadConfig reads an EngineConfig from a YAML file at path, falling back
// to DefaultBufferPoolFrames for any field the file omits.
func LoadConfig(path string) (EngineConfig, error) { return config.Load(path) }

// DefaultConfig returns the engine's built-in configuration.
func DefaultConfig() EngineConfig { return config.Default() }

// ============================================================================
// Heap files
// ============================================================================

// HeapFile is an append-oriented table file with no secondary ordering.
type HeapFile = heapfile.File

// HeapCursor identifies one tuple within a HeapFile.
type HeapCursor = heapfile.Cursor

// OpenHeapFile opens or creates the heap file at path, keyed by schema td
// and registered with pool.
func OpenHeapFile(path string, td *TupleDesc, pool *Pool) (*HeapFile, error) {
	return heapfile.Open(path, td, pool)
}

// ============================================================================
// B+-tree files
// ============================================================================

// BTreeFile is a table file ordered on one Int column, backed by a B+-tree
// whose root is fixed at page 0.
type BTreeFile = btreefile.File

// BTreeCursor identifies one tuple within a BTreeFile.
type BTreeCursor = btreefile.Cursor

// OpenBTreeFile opens or creates the B+-tree file at path, keyed by schema
// td's keyIndex-th field (which must be Int) and registered with pool.
func OpenBTreeFile(path string, td *TupleDesc, keyIndex int, pool *Pool) (*BTreeFile, error) {
	return btreefile.Open(path, td, keyIndex, pool)
}

// ============================================================================
// Relational operators
// ============================================================================

// Table is the capability every scannable table file exposes. HeapFile and
// BTreeFile each satisfy Table for their own cursor type.
type Table[C comparable] = query.Table[C]

// Sink accepts the tuples a relational operator produces. A BTreeFile
// satisfies Sink directly. A HeapFile does not: its Insert also returns a
// HeapCursor, so its signature differs from Sink's Insert.
type Sink = query.Sink

// CompareOp is a scalar comparison operator used by Predicate and
// JoinPredicate.
type CompareOp = query.PredicateOp

// Comparison operator constants.
const (
	EQ = query.EQ
	NE = query.NE
	LT = query.LT
	LE = query.LE
	GT = query.GT
	GE = query.GE
)

// Predicate tests one column of a scanned tuple against a fixed value.
type Predicate = query.Predicate

// Project writes, for every tuple of input, a new tuple holding only the
// named columns, preserving their order.
func Project[C comparable](input Table[C], output Sink, columns []string) error {
	return query.Project(input, output, columns)
}

// Select writes every tuple of input satisfying all predicates to output,
// unchanged.
func Select[C comparable](input Table[C], output Sink, predicates []Predicate) error {
	return query.Select(input, output, predicates)
}

// AggregateOp names a reducer applied to one numeric column.
type AggregateOp = query.AggregateOp

// Aggregate reducer constants.
const (
	Sum   = query.Sum
	Avg   = query.Avg
	Min   = query.Min
	Max   = query.Max
	Count = query.Count
)

// Aggregate describes one aggregation: reduce Column by Op, optionally
// grouped by GroupBy.
type Aggregate = query.Aggregate

// RunAggregate computes agg over input and writes one result tuple
// (ungrouped) or one per distinct group key (grouped) to output.
func RunAggregate[C comparable](input Table[C], output Sink, agg Aggregate) error {
	return query.RunAggregate(input, output, agg)
}

// JoinPredicate names the two columns (one from each input) to compare and
// the comparison operator. Natural-join deduplication applies only when Op
// is EQ.
type JoinPredicate = query.JoinPredicate

// Join performs a nested-loop join of left against right, writing one
// combined tuple to output for every pair satisfying predicate.
func Join[L comparable, R comparable](left Table[L], right Table[R], output Sink, predicate JoinPredicate) error {
	return query.Join(left, right, output, predicate)
}
