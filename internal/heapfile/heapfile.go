// Package heapfile implements the append-oriented heap file of spec.md
// §4.7: a sequence of page.HeapPage pages addressed through a
// bufferpool.Pool, with cursor-stable insert/delete/scan.
package heapfile

import (
	"fmt"

	"tupledb/internal/bufferpool"
	"tupledb/internal/engineerr"
	"tupledb/internal/page"
	"tupledb/internal/schema"
	"tupledb/internal/storagefile"
)

// Cursor identifies one tuple slot within a heap file: a page number and a
// slot within that page. The end cursor has Page == NumPages() and Slot ==
// 0 and is stable across deletes of other tuples (spec.md §4.7).
type Cursor struct {
	Page int
	Slot int
}

// File is a heap file: fixed schema, backed by one bufferpool-managed
// storagefile.File.
type File struct {
	name string
	td   *schema.TupleDesc
	sf   *storagefile.File
	pool *bufferpool.Pool
}

// Open opens or creates the heap file at path, registering it with pool
// under name.
func Open(name string, td *schema.TupleDesc, pool *bufferpool.Pool) (*File, error) {
	sf, err := storagefile.Open(name)
	if err != nil {
		return nil, err
	}
	pool.Register(name, sf)
	return &File{name: name, td: td, sf: sf, pool: pool}, nil
}

// Name returns the file name this heap file is registered under.
func (f *File) Name() string { return f.name }

// NumPages returns the current page count.
func (f *File) NumPages() (int, error) { return f.sf.NumPages() }

// Reads returns the number of page reads observed on the backing file
// (spec.md §4.5/§6).
func (f *File) Reads() uint64 { return f.sf.Reads() }

// Writes returns the number of page writes observed on the backing file
// (spec.md §4.5/§6).
func (f *File) Writes() uint64 { return f.sf.Writes() }

func (f *File) pageID(n int) page.ID { return page.ID{File: f.name, Number: n} }

func (f *File) loadHeap(n int) (*page.HeapPage, error) {
	buf, err := f.pool.GetPage(f.pageID(n))
	if err != nil {
		return nil, err
	}
	return page.WrapHeapPage(buf, f.td), nil
}

// Insert appends t, preferring the last page if it has room, else
// allocating a fresh page (spec.md §4.7, grounded on HeapFile::insertTuple).
func (f *File) Insert(t schema.Tuple) (Cursor, error) {
	n, err := f.NumPages()
	if err != nil {
		return Cursor{}, err
	}
	if n > 0 {
		hp, err := f.loadHeap(n - 1)
		if err != nil {
			return Cursor{}, err
		}
		target := firstFreeSlot(hp)
		ok, err := hp.Insert(t)
		if err != nil {
			return Cursor{}, err
		}
		if ok {
			id := f.pageID(n - 1)
			if err := f.pool.MarkDirty(id); err != nil {
				return Cursor{}, err
			}
			return Cursor{Page: n - 1, Slot: target}, nil
		}
	}
	buf := make([]byte, page.Size)
	hp := page.InitHeapPage(buf, f.td)
	ok, err := hp.Insert(t)
	if err != nil {
		return Cursor{}, err
	}
	if !ok {
		return Cursor{}, fmt.Errorf("heapfile: insert into fresh page failed: %w", engineerr.ErrInvalidArgument)
	}
	id, err := f.pool.AllocatePage(f.name, buf)
	if err != nil {
		return Cursor{}, err
	}
	if err := f.pool.MarkDirty(id); err != nil {
		return Cursor{}, err
	}
	return Cursor{Page: id.Number, Slot: 0}, nil
}

// firstFreeSlot returns the lowest-index unoccupied slot, or hp.Capacity()
// if the page is full. HeapPage.Insert places a new tuple exactly here, so
// callers that need the slot a pending insert will land in compute it
// beforehand.
func firstFreeSlot(hp *page.HeapPage) int {
	for s := 0; s < hp.Capacity(); s++ {
		if !hp.IsOccupied(s) {
			return s
		}
	}
	return hp.Capacity()
}

// Delete clears the slot at cur. The cursor becomes invalid; other cursors
// are unaffected (no slot shifting).
func (f *File) Delete(cur Cursor) error {
	hp, err := f.loadHeap(cur.Page)
	if err != nil {
		return err
	}
	if err := hp.Delete(cur.Slot); err != nil {
		return err
	}
	return f.pool.MarkDirty(f.pageID(cur.Page))
}

// Get decodes the tuple at cur.
func (f *File) Get(cur Cursor) (schema.Tuple, error) {
	hp, err := f.loadHeap(cur.Page)
	if err != nil {
		return schema.Tuple{}, err
	}
	return hp.Get(cur.Slot)
}

// End returns the end cursor: (NumPages(), 0).
func (f *File) End() (Cursor, error) {
	n, err := f.NumPages()
	if err != nil {
		return Cursor{}, err
	}
	return Cursor{Page: n, Slot: 0}, nil
}

// Begin returns the first occupied cursor, or End() if the file has no
// tuples (grounded on HeapFile::begin: scan pages in order for the first
// non-empty one).
func (f *File) Begin() (Cursor, error) {
	n, err := f.NumPages()
	if err != nil {
		return Cursor{}, err
	}
	for p := 0; p < n; p++ {
		hp, err := f.loadHeap(p)
		if err != nil {
			return Cursor{}, err
		}
		if s := hp.Begin(); s != hp.End() {
			return Cursor{Page: p, Slot: s}, nil
		}
	}
	return Cursor{Page: n, Slot: 0}, nil
}

// Next advances cur to the next occupied slot, rolling over to subsequent
// pages as needed, and returns End() once no tuples remain (grounded on
// HeapFile::next).
func (f *File) Next(cur Cursor) (Cursor, error) {
	n, err := f.NumPages()
	if err != nil {
		return Cursor{}, err
	}
	hp, err := f.loadHeap(cur.Page)
	if err != nil {
		return Cursor{}, err
	}
	slot := hp.Advance(cur.Slot)
	pageNum := cur.Page
	for slot == hp.End() && pageNum < n {
		pageNum++
		if pageNum == n {
			return Cursor{Page: n, Slot: 0}, nil
		}
		hp, err = f.loadHeap(pageNum)
		if err != nil {
			return Cursor{}, err
		}
		slot = hp.Begin()
	}
	return Cursor{Page: pageNum, Slot: slot}, nil
}

// Schema returns the file's tuple schema.
func (f *File) Schema() *schema.TupleDesc { return f.td }
