// Package btreefile implements the B+-tree file of spec.md §4.8: search and
// insert that descend from a root fixed at page 0, splitting leaves and
// index pages and growing the root in place when it overflows, plus an
// ordered scan via the leaf sibling chain. Deletion is not supported.
package btreefile

import (
	"fmt"

	"tupledb/internal/bufferpool"
	"tupledb/internal/btreepage"
	"tupledb/internal/engineerr"
	"tupledb/internal/field"
	"tupledb/internal/page"
	"tupledb/internal/schema"
	"tupledb/internal/storagefile"
)

// Cursor identifies one tuple within the tree: a leaf page number and a
// slot within that leaf.
type Cursor struct {
	Page int
	Slot int
}

// File is a B+-tree file keyed on one Int field, with its root always at
// page 0.
type File struct {
	name     string
	td       *schema.TupleDesc
	keyIndex int
	pool     *bufferpool.Pool
	sf       *storagefile.File
}

// Open opens or creates the B+-tree file at path, registering it with pool
// under name. keyIndex must name an Int field of td. A brand-new file's
// root (page 0) is an index page throughout the tree's life (spec.md §4.8);
// it starts with no keys and a single child, an empty leaf at page 1.
func Open(name string, td *schema.TupleDesc, keyIndex int, pool *bufferpool.Pool) (*File, error) {
	if td.TypeAt(keyIndex) != field.Int {
		return nil, fmt.Errorf("btreefile: key field %d is %s, not Int: %w", keyIndex, td.TypeAt(keyIndex), engineerr.ErrInvalidArgument)
	}
	sf, err := storagefile.Open(name)
	if err != nil {
		return nil, err
	}
	pool.Register(name, sf)
	f := &File{name: name, td: td, keyIndex: keyIndex, pool: pool, sf: sf}
	n, err := sf.NumPages()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		// Root must land on page 0, so it is allocated first with a
		// placeholder child and patched once the leaf's real page number
		// (necessarily 1) is known.
		rootBuf := make([]byte, page.Size)
		btreepage.InitIndexPage(rootBuf, false)
		rootID, err := pool.AllocatePage(name, rootBuf)
		if err != nil {
			return nil, err
		}

		leafBuf := make([]byte, page.Size)
		btreepage.InitLeafPage(leafBuf, td, keyIndex)
		leafID, err := pool.AllocatePage(name, leafBuf)
		if err != nil {
			return nil, err
		}

		cachedRoot, err := pool.GetPage(rootID)
		if err != nil {
			return nil, err
		}
		btreepage.WrapIndexPage(cachedRoot).SetChild(0, btreepage.PageNo(leafID.Number))
		if err := pool.MarkDirty(rootID); err != nil {
			return nil, err
		}
		if err := pool.FlushPage(rootID); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// NumPages returns the current page count.
func (f *File) NumPages() (int, error) { return f.sf.NumPages() }

// Reads returns the number of page reads observed on the backing file
// (spec.md §4.5/§6).
func (f *File) Reads() uint64 { return f.sf.Reads() }

// Writes returns the number of page writes observed on the backing file
// (spec.md §4.5/§6).
func (f *File) Writes() uint64 { return f.sf.Writes() }

func (f *File) pageID(n int) page.ID { return page.ID{File: f.name, Number: n} }

func (f *File) markDirty(n int) error { return f.pool.MarkDirty(f.pageID(n)) }

func keyOf(t schema.Tuple, keyIndex int) int32 { return t.Fields[keyIndex].I }

// descend walks from the root to the leaf that would hold key, returning
// the visited index page numbers (root first) and the leaf page number.
func (f *File) descend(key int32) ([]int, int, error) {
	var stack []int
	cur := 0
	for {
		buf, err := f.pool.GetPage(f.pageID(cur))
		if err != nil {
			return nil, 0, err
		}
		if btreepage.PageKind(buf) == btreepage.KindLeaf {
			return stack, cur, nil
		}
		ip := btreepage.WrapIndexPage(buf)
		stack = append(stack, cur)
		cur = int(ip.FindChild(key))
	}
}

// Search returns the cursor of the first tuple with the given key, or
// ErrNotFound.
func (f *File) Search(key int32) (Cursor, error) {
	_, leafNo, err := f.descend(key)
	if err != nil {
		return Cursor{}, err
	}
	buf, err := f.pool.GetPage(f.pageID(leafNo))
	if err != nil {
		return Cursor{}, err
	}
	lp := btreepage.WrapLeafPage(buf, f.td, f.keyIndex)
	for s := 0; s < lp.Size(); s++ {
		k, err := lp.KeyAt(s)
		if err != nil {
			return Cursor{}, err
		}
		if k == key {
			return Cursor{Page: leafNo, Slot: s}, nil
		}
		if k > key {
			break
		}
	}
	return Cursor{}, fmt.Errorf("btreefile: key %d: %w", key, engineerr.ErrNotFound)
}

// Get decodes the tuple at cur.
func (f *File) Get(cur Cursor) (schema.Tuple, error) {
	buf, err := f.pool.GetPage(f.pageID(cur.Page))
	if err != nil {
		return schema.Tuple{}, err
	}
	lp := btreepage.WrapLeafPage(buf, f.td, f.keyIndex)
	return lp.Get(cur.Slot)
}

// Insert inserts or upserts t, splitting leaves and index pages and
// growing the root as needed (spec.md §4.8).
func (f *File) Insert(t schema.Tuple) error {
	key := keyOf(t, f.keyIndex)
	stack, leafNo, err := f.descend(key)
	if err != nil {
		return err
	}
	buf, err := f.pool.GetPage(f.pageID(leafNo))
	if err != nil {
		return err
	}
	lp := btreepage.WrapLeafPage(buf, f.td, f.keyIndex)
	full, err := lp.Insert(t)
	if err != nil {
		return err
	}
	if err := f.markDirty(leafNo); err != nil {
		return err
	}
	if !full {
		return nil
	}
	return f.splitLeaf(stack, leafNo, lp)
}

// splitLeaf splits the overfull leaf at leafNo and propagates the promoted
// key up the given ancestor stack, growing the root if the stack is empty.
func (f *File) splitLeaf(stack []int, leafNo int, lp *btreepage.LeafPage) error {
	newBuf := make([]byte, page.Size)
	newLeaf := btreepage.InitLeafPage(newBuf, f.td, f.keyIndex)
	if err := lp.Split(newLeaf); err != nil {
		return err
	}
	newID, err := f.pool.AllocatePage(f.name, newBuf)
	if err != nil {
		return err
	}
	lp.SetNextLeaf(btreepage.PageNo(newID.Number), true)
	if err := f.markDirty(leafNo); err != nil {
		return err
	}
	if err := f.markDirty(newID.Number); err != nil {
		return err
	}
	promoted, err := newLeaf.KeyAt(0)
	if err != nil {
		return err
	}
	return f.bubbleUp(stack, leafNo, btreepage.KindLeaf, promoted, btreepage.PageNo(newID.Number))
}

// bubbleUp inserts (key, child) into the parent named by the top of stack.
// If stack is empty, the node that just split (splitNodePageNo) was the
// root itself, and the root is grown in place instead.
func (f *File) bubbleUp(stack []int, splitNodePageNo int, childKind btreepage.Kind, key int32, child btreepage.PageNo) error {
	if len(stack) == 0 {
		return f.growRoot(splitNodePageNo, childKind, key, child)
	}
	parentNo := stack[len(stack)-1]
	rest := stack[:len(stack)-1]

	buf, err := f.pool.GetPage(f.pageID(parentNo))
	if err != nil {
		return err
	}
	ip := btreepage.WrapIndexPage(buf)

	if ip.Size() < ip.Capacity() {
		if _, err := ip.Insert(key, child); err != nil {
			return err
		}
		return f.markDirty(parentNo)
	}

	// Parent is full: split it first, then insert into whichever half the
	// new key belongs in.
	newBuf := make([]byte, page.Size)
	newIP := btreepage.InitIndexPage(newBuf, ip.IndexChildren())
	promoted, err := ip.Split(newIP)
	if err != nil {
		return err
	}
	newID, err := f.pool.AllocatePage(f.name, newBuf)
	if err != nil {
		return err
	}
	target := ip
	if key > promoted {
		target = newIP
	}
	if _, err := target.Insert(key, child); err != nil {
		return err
	}
	if err := f.markDirty(parentNo); err != nil {
		return err
	}
	if err := f.markDirty(newID.Number); err != nil {
		return err
	}
	return f.bubbleUp(rest, parentNo, btreepage.KindIndex, promoted, btreepage.PageNo(newID.Number))
}

// growRoot handles the case where the page that just split was the root
// (always page 0). Root content already holds the left half in place; that
// content is relocated to a freshly allocated page, and page 0 is
// re-initialized as a new index root with two children.
func (f *File) growRoot(rootPageNo int, childKind btreepage.Kind, key int32, rightChild btreepage.PageNo) error {
	if rootPageNo != 0 {
		return fmt.Errorf("btreefile: growRoot called on non-root page %d: %w", rootPageNo, engineerr.ErrCorrupt)
	}
	rootBuf, err := f.pool.GetPage(f.pageID(0))
	if err != nil {
		return err
	}
	leftContent := append([]byte(nil), rootBuf...)
	leftID, err := f.pool.AllocatePage(f.name, leftContent)
	if err != nil {
		return err
	}

	newRoot := btreepage.InitIndexPage(rootBuf, childKind == btreepage.KindIndex)
	newRoot.SetChild(0, btreepage.PageNo(leftID.Number))
	if _, err := newRoot.Insert(key, rightChild); err != nil {
		return err
	}
	if err := f.markDirty(0); err != nil {
		return err
	}
	return f.markDirty(leftID.Number)
}

// Delete is not supported by this tree (spec.md §9).
func (f *File) Delete(Cursor) error {
	return fmt.Errorf("btreefile: delete: %w", engineerr.ErrUnsupported)
}

// leftmostLeaf descends from the root always taking child 0, returning the
// leftmost leaf's page number.
func (f *File) leftmostLeaf() (int, error) {
	cur := 0
	for {
		buf, err := f.pool.GetPage(f.pageID(cur))
		if err != nil {
			return 0, err
		}
		if btreepage.PageKind(buf) == btreepage.KindLeaf {
			return cur, nil
		}
		ip := btreepage.WrapIndexPage(buf)
		cur = int(ip.ChildAt(0))
	}
}

// Begin returns the cursor of the smallest key in the tree, or End() if the
// tree is empty.
func (f *File) Begin() (Cursor, error) {
	leafNo, err := f.leftmostLeaf()
	if err != nil {
		return Cursor{}, err
	}
	buf, err := f.pool.GetPage(f.pageID(leafNo))
	if err != nil {
		return Cursor{}, err
	}
	lp := btreepage.WrapLeafPage(buf, f.td, f.keyIndex)
	if lp.Size() == 0 {
		return f.End()
	}
	return Cursor{Page: leafNo, Slot: 0}, nil
}

// End returns the sentinel past-the-end cursor.
func (f *File) End() (Cursor, error) {
	return Cursor{Page: -1, Slot: 0}, nil
}

// Next advances cur to the next tuple in ascending key order, following the
// leaf sibling chain, and returns End() once exhausted.
func (f *File) Next(cur Cursor) (Cursor, error) {
	buf, err := f.pool.GetPage(f.pageID(cur.Page))
	if err != nil {
		return Cursor{}, err
	}
	lp := btreepage.WrapLeafPage(buf, f.td, f.keyIndex)
	if cur.Slot+1 < lp.Size() {
		return Cursor{Page: cur.Page, Slot: cur.Slot + 1}, nil
	}
	next, ok := lp.NextLeaf()
	if !ok {
		return f.End()
	}
	nextBuf, err := f.pool.GetPage(f.pageID(int(next)))
	if err != nil {
		return Cursor{}, err
	}
	nextLP := btreepage.WrapLeafPage(nextBuf, f.td, f.keyIndex)
	if nextLP.Size() == 0 {
		return f.End()
	}
	return Cursor{Page: int(next), Slot: 0}, nil
}

// Schema returns the file's tuple schema.
func (f *File) Schema() *schema.TupleDesc { return f.td }

// KeyIndex returns the index of the key field within the schema.
func (f *File) KeyIndex() int { return f.keyIndex }
