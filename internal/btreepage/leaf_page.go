package btreepage

import (
	"encoding/binary"
	"fmt"

	"tupledb/internal/engineerr"
	"tupledb/internal/field"
	"tupledb/internal/schema"
)

// Leaf-page header layout:
//
//	[0:2] size        uint16 LE
//	[2]   hasNext     byte (1 = next_leaf present)
//	[3]   kind        byte (KindLeaf, see PageKind)
//	[4:8] nextLeaf    uint32 LE (meaningful only when hasNext == 1)
const (
	leafHeaderSize = 8
	leafSizeOff    = 0
	leafHasNextOff = 2
	leafNextOff    = 4
)

// LeafCapacity returns L = floor((bufLen - header) / T).
func LeafCapacity(bufLen, rowWidth int) int {
	return (bufLen - leafHeaderSize) / rowWidth
}

// LeafPage is a view over a buffer holding tuples in ascending order of
// one key field, plus a right-sibling pointer.
type LeafPage struct {
	buf      []byte
	td       *schema.TupleDesc
	keyIndex int
	capacity int
}

// WrapLeafPage views an existing buffer as a leaf page keyed on
// td.TypeAt(keyIndex), which must be field.Int.
func WrapLeafPage(buf []byte, td *schema.TupleDesc, keyIndex int) *LeafPage {
	return &LeafPage{buf: buf, td: td, keyIndex: keyIndex, capacity: LeafCapacity(len(buf), td.Length())}
}

// InitLeafPage zeroes buf's header (empty page, no sibling) and returns a
// LeafPage view.
func InitLeafPage(buf []byte, td *schema.TupleDesc, keyIndex int) *LeafPage {
	lp := WrapLeafPage(buf, td, keyIndex)
	binary.LittleEndian.PutUint16(buf[leafSizeOff:], 0)
	buf[leafHasNextOff] = 0
	buf[kindOffset] = byte(KindLeaf)
	return lp
}

// Capacity returns L for this page.
func (lp *LeafPage) Capacity() int { return lp.capacity }

// Size returns the number of tuples currently stored.
func (lp *LeafPage) Size() int {
	return int(binary.LittleEndian.Uint16(lp.buf[leafSizeOff:]))
}

func (lp *LeafPage) setSize(n int) {
	binary.LittleEndian.PutUint16(lp.buf[leafSizeOff:], uint16(n))
}

// NextLeaf returns the right-sibling page number and whether one is set.
func (lp *LeafPage) NextLeaf() (PageNo, bool) {
	if lp.buf[leafHasNextOff] == 0 {
		return NoPage, false
	}
	return PageNo(binary.LittleEndian.Uint32(lp.buf[leafNextOff:])), true
}

// SetNextLeaf sets (or clears, passing ok=false) the right-sibling pointer.
func (lp *LeafPage) SetNextLeaf(p PageNo, ok bool) {
	if !ok {
		lp.buf[leafHasNextOff] = 0
		return
	}
	lp.buf[leafHasNextOff] = 1
	binary.LittleEndian.PutUint32(lp.buf[leafNextOff:], uint32(p))
}

func (lp *LeafPage) rowOffset(slot int) int {
	return leafHeaderSize + slot*lp.td.Length()
}

// Get decodes the tuple at slot.
func (lp *LeafPage) Get(slot int) (schema.Tuple, error) {
	if slot < 0 || slot >= lp.Size() {
		return schema.Tuple{}, fmt.Errorf("leaf page: get slot %d: %w", slot, engineerr.ErrOutOfRange)
	}
	off := lp.rowOffset(slot)
	return schema.Decode(lp.td, lp.buf[off:off+lp.td.Length()])
}

// KeyAt returns the key field's value at slot.
func (lp *LeafPage) KeyAt(slot int) (int32, error) {
	t, err := lp.Get(slot)
	if err != nil {
		return 0, err
	}
	return t.Fields[lp.keyIndex].I, nil
}

func (lp *LeafPage) writeAt(slot int, t schema.Tuple) error {
	enc, err := schema.Encode(lp.td, t)
	if err != nil {
		return err
	}
	off := lp.rowOffset(slot)
	copy(lp.buf[off:off+lp.td.Length()], enc)
	return nil
}

func keyOf(t schema.Tuple, keyIndex int) (int32, error) {
	f := t.Fields[keyIndex]
	if f.Tag != field.Int {
		return 0, fmt.Errorf("leaf page: key field is %s, not Int: %w", f.Tag, engineerr.ErrTypeMismatch)
	}
	return f.I, nil
}

// Insert locates the first position whose key is >= tuple's key. An equal
// key overwrites in place (size unchanged, upsert semantics per spec.md
// §3/§4.4); otherwise later tuples shift right and the new one is written
// at that position. Returns true iff size == L afterward.
func (lp *LeafPage) Insert(t schema.Tuple) (bool, error) {
	key, err := keyOf(t, lp.keyIndex)
	if err != nil {
		return false, err
	}
	size := lp.Size()
	pos := size
	overwrite := false
	for i := 0; i < size; i++ {
		k, err := lp.KeyAt(i)
		if err != nil {
			return false, err
		}
		if k >= key {
			pos = i
			overwrite = k == key
			break
		}
	}
	if overwrite {
		if err := lp.writeAt(pos, t); err != nil {
			return false, err
		}
		return lp.Size() == lp.capacity, nil
	}
	if size >= lp.capacity {
		return false, fmt.Errorf("leaf page: insert: page already full: %w", engineerr.ErrInvalidArgument)
	}
	for i := size; i > pos; i-- {
		prev, err := lp.Get(i - 1)
		if err != nil {
			return false, err
		}
		if err := lp.writeAt(i, prev); err != nil {
			return false, err
		}
	}
	if err := lp.writeAt(pos, t); err != nil {
		return false, err
	}
	lp.setSize(size + 1)
	return lp.Size() == lp.capacity, nil
}

// Split moves the upper half of tuples into newPage; left-half size is
// floor(L/2) (spec.md §4.4). newPage.next_leaf is set to this page's
// current next_leaf; this page's next_leaf is left for the caller to set
// once newPage's real page number is known.
func (lp *LeafPage) Split(newPage *LeafPage) error {
	size := lp.Size()
	leftSize := size / 2
	rightSize := size - leftSize
	for i := 0; i < rightSize; i++ {
		t, err := lp.Get(leftSize + i)
		if err != nil {
			return err
		}
		if err := newPage.writeAt(i, t); err != nil {
			return err
		}
	}
	newPage.setSize(rightSize)
	if next, ok := lp.NextLeaf(); ok {
		newPage.SetNextLeaf(next, true)
	}
	lp.setSize(leftSize)
	return nil
}

// Bytes returns the underlying page buffer.
func (lp *LeafPage) Bytes() []byte { return lp.buf }
