package btreefile

import (
	"path/filepath"
	"testing"

	"tupledb/internal/bufferpool"
	"tupledb/internal/field"
	"tupledb/internal/schema"
)

func openTestTree(t *testing.T) *File {
	t.Helper()
	td, err := schema.New([]field.Type{field.Int, field.Int}, []string{"key", "val"})
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	pool := bufferpool.NewPool(64)
	name := filepath.Join(t.TempDir(), "tree.db")
	bf, err := Open(name, td, 0, pool)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	return bf
}

func scanAll(t *testing.T, bf *File) []int32 {
	t.Helper()
	var got []int32
	cur, err := bf.Begin()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	end, err := bf.End()
	if err != nil {
		t.Fatalf("end: %v", err)
	}
	for cur != end {
		tup, err := bf.Get(cur)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		got = append(got, tup.Fields[0].I)
		cur, err = bf.Next(cur)
		if err != nil {
			t.Fatalf("next: %v", err)
		}
	}
	return got
}

func TestBTreeFile_InsertAndOrderedScan(t *testing.T) {
	bf := openTestTree(t)
	keys := []int32{50, 10, 40, 20, 30}
	for _, k := range keys {
		if err := bf.Insert(schema.NewTuple(field.NewInt(k), field.NewInt(k*2))); err != nil {
			t.Fatalf("insert %d: %v", k, err)
		}
	}
	got := scanAll(t, bf)
	want := []int32{10, 20, 30, 40, 50}
	if len(got) != len(want) {
		t.Fatalf("scan returned %d keys, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("scan[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestBTreeFile_UpsertOverwritesValue(t *testing.T) {
	bf := openTestTree(t)
	if err := bf.Insert(schema.NewTuple(field.NewInt(1), field.NewInt(100))); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := bf.Insert(schema.NewTuple(field.NewInt(1), field.NewInt(200))); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	cur, err := bf.Search(1)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	tup, err := bf.Get(cur)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if tup.Fields[1].I != 200 {
		t.Fatalf("value after upsert = %d, want 200", tup.Fields[1].I)
	}
}

func TestBTreeFile_SearchMissingKey(t *testing.T) {
	bf := openTestTree(t)
	if err := bf.Insert(schema.NewTuple(field.NewInt(5), field.NewInt(5))); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := bf.Search(999); err == nil {
		t.Fatalf("search for missing key should fail")
	}
}

// 2000 keys split the leaves several times; the index root (capacity 339)
// does not overflow at this size.
func TestBTreeFile_LeafSplitsAfterManyInserts(t *testing.T) {
	bf := openTestTree(t)

	const n = 2000
	for i := 0; i < n; i++ {
		k := int32((i * 7919) % n) // scatter insertion order
		if err := bf.Insert(schema.NewTuple(field.NewInt(k), field.NewInt(k))); err != nil {
			t.Fatalf("insert %d: %v", k, err)
		}
	}
	numPages, err := bf.sf.NumPages()
	if err != nil {
		t.Fatalf("num pages: %v", err)
	}
	if numPages < 3 {
		t.Fatalf("expected leaf splits to have allocated extra pages, got %d pages", numPages)
	}

	got := scanAll(t, bf)
	if len(got) != n {
		t.Fatalf("scanned %d keys after leaf splits, want %d", len(got), n)
	}
	for i := 1; i < len(got); i++ {
		if got[i-1] >= got[i] {
			t.Fatalf("scan not strictly ascending at %d: %d >= %d", i, got[i-1], got[i])
		}
	}
}

func TestBTreeFile_DeleteUnsupported(t *testing.T) {
	bf := openTestTree(t)
	if err := bf.Insert(schema.NewTuple(field.NewInt(1), field.NewInt(1))); err != nil {
		t.Fatalf("insert: %v", err)
	}
	cur, err := bf.Search(1)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if err := bf.Delete(cur); err == nil {
		t.Fatalf("delete should be unsupported")
	}
}
