package tupledb_test

import (
	"path/filepath"
	"testing"

	"tupledb"
)

func peopleSchema(t *testing.T) *tupledb.TupleDesc {
	t.Helper()
	td, err := tupledb.NewSchema(
		[]tupledb.FieldType{tupledb.Int, tupledb.Char, tupledb.Int},
		[]string{"id", "name", "age"},
	)
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	return td
}

func TestHeapFile_InsertGetScan(t *testing.T) {
	pool := tupledb.NewPool(tupledb.DefaultBufferPoolFrames)
	td := peopleSchema(t)
	path := filepath.Join(t.TempDir(), "people.db")

	hf, err := tupledb.OpenHeapFile(path, td, pool)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	rows := []struct {
		id  int32
		nm  string
		age int32
	}{
		{1, "Ada", 36},
		{2, "Grace", 85},
		{3, "Alan", 41},
	}
	for _, r := range rows {
		if _, err := hf.Insert(tupledb.NewTuple(tupledb.NewInt(r.id), tupledb.NewChar(r.nm), tupledb.NewInt(r.age))); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	var got []int32
	cur, _ := hf.Begin()
	end, _ := hf.End()
	for cur != end {
		tup, err := hf.Get(cur)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		got = append(got, tup.Fields[0].I)
		cur, err = hf.Next(cur)
		if err != nil {
			t.Fatalf("next: %v", err)
		}
	}
	if len(got) != 3 {
		t.Fatalf("scanned %d rows, want 3", len(got))
	}

	n, err := hf.NumPages()
	if err != nil || n < 1 {
		t.Fatalf("NumPages() = %d, %v", n, err)
	}
	if hf.Writes() == 0 {
		t.Fatalf("Writes() = 0, want > 0 after inserts")
	}
}

func TestBTreeFile_InsertSearchOrderedScan(t *testing.T) {
	pool := tupledb.NewPool(tupledb.DefaultBufferPoolFrames)
	td := peopleSchema(t)
	path := filepath.Join(t.TempDir(), "people.idx")

	bt, err := tupledb.OpenBTreeFile(path, td, 0, pool)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	ids := []int32{30, 10, 20, 5, 25}
	for _, id := range ids {
		if err := bt.Insert(tupledb.NewTuple(tupledb.NewInt(id), tupledb.NewChar("x"), tupledb.NewInt(0))); err != nil {
			t.Fatalf("insert %d: %v", id, err)
		}
	}

	cur, err := bt.Search(20)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	tup, err := bt.Get(cur)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if tup.Fields[0].I != 20 {
		t.Fatalf("searched key = %d, want 20", tup.Fields[0].I)
	}

	var got []int32
	c, _ := bt.Begin()
	end, _ := bt.End()
	for c != end {
		tup, err := bt.Get(c)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		got = append(got, tup.Fields[0].I)
		c, err = bt.Next(c)
		if err != nil {
			t.Fatalf("next: %v", err)
		}
	}
	want := []int32{5, 10, 20, 25, 30}
	if len(got) != len(want) {
		t.Fatalf("scanned %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("scanned %v, want %v", got, want)
		}
	}
}

func TestOperators_SelectIntoHeapFile(t *testing.T) {
	pool := tupledb.NewPool(tupledb.DefaultBufferPoolFrames)
	td := peopleSchema(t)

	in, err := tupledb.OpenHeapFile(filepath.Join(t.TempDir(), "in.db"), td, pool)
	if err != nil {
		t.Fatalf("open in: %v", err)
	}
	out, err := tupledb.OpenHeapFile(filepath.Join(t.TempDir(), "out.db"), td, pool)
	if err != nil {
		t.Fatalf("open out: %v", err)
	}

	for _, age := range []int32{10, 40, 70} {
		if _, err := in.Insert(tupledb.NewTuple(tupledb.NewInt(age), tupledb.NewChar("p"), tupledb.NewInt(age))); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	preds := []tupledb.Predicate{{Column: "age", Op: tupledb.GE, Value: tupledb.NewInt(40)}}
	if err := tupledb.Select[tupledb.HeapCursor](in, out, preds); err != nil {
		t.Fatalf("select: %v", err)
	}

	var ages []int32
	cur, _ := out.Begin()
	end, _ := out.End()
	for cur != end {
		tup, err := out.Get(cur)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		ages = append(ages, tup.Fields[2].I)
		cur, err = out.Next(cur)
		if err != nil {
			t.Fatalf("next: %v", err)
		}
	}
	if len(ages) != 2 || ages[0] != 40 || ages[1] != 70 {
		t.Fatalf("selected ages = %v, want [40 70]", ages)
	}
}

func TestConfig_Default(t *testing.T) {
	cfg := tupledb.DefaultConfig()
	if cfg.BufferPoolFrames != tupledb.DefaultBufferPoolFrames {
		t.Fatalf("DefaultConfig().BufferPoolFrames = %d, want %d", cfg.BufferPoolFrames, tupledb.DefaultBufferPoolFrames)
	}
}
