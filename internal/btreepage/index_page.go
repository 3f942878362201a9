package btreepage

import (
	"encoding/binary"
	"fmt"

	"tupledb/internal/engineerr"
)

// Index-page header layout (spec.md §6: "implementation must fix a concrete
// byte layout and document it"):
//
//	[0:2] size            uint16 LE
//	[2]   indexChildren   byte (1 = true, 0 = false)
//	[3]   kind            byte (KindIndex, see PageKind)
//	[4:8] reserved
const (
	indexHeaderSize  = 8
	indexSizeOff     = 0
	indexChildOff    = 2
	indexKeyWidth    = 4 // an Int key
	indexChildWidth  = 8 // a page number, stored wide per spec.md §3's formula
	indexEntryStride = indexKeyWidth + indexChildWidth
)

// IndexCapacity returns K = floor((bufLen - header) / (4+8)) - 1, the
// number of keys an index page of the given buffer length can hold
// (spec.md §3).
func IndexCapacity(bufLen int) int {
	return (bufLen-indexHeaderSize)/indexEntryStride - 1
}

// IndexPage is a view over a buffer holding ordered keys and K+1 child
// pointers.
type IndexPage struct {
	buf      []byte
	capacity int
}

// WrapIndexPage views an existing buffer as an index page.
func WrapIndexPage(buf []byte) *IndexPage {
	return &IndexPage{buf: buf, capacity: IndexCapacity(len(buf))}
}

// InitIndexPage zeroes buf's header and marks whether its children are
// index pages (true) or leaf pages (false).
func InitIndexPage(buf []byte, indexChildren bool) *IndexPage {
	ip := WrapIndexPage(buf)
	binary.LittleEndian.PutUint16(buf[indexSizeOff:], 0)
	if indexChildren {
		buf[indexChildOff] = 1
	} else {
		buf[indexChildOff] = 0
	}
	buf[kindOffset] = byte(KindIndex)
	return ip
}

// Capacity returns K for this page.
func (ip *IndexPage) Capacity() int { return ip.capacity }

// Size returns the number of keys currently stored.
func (ip *IndexPage) Size() int {
	return int(binary.LittleEndian.Uint16(ip.buf[indexSizeOff:]))
}

func (ip *IndexPage) setSize(n int) {
	binary.LittleEndian.PutUint16(ip.buf[indexSizeOff:], uint16(n))
}

// IndexChildren reports whether this page's children are index pages
// (true) or leaf pages (false).
func (ip *IndexPage) IndexChildren() bool {
	return ip.buf[indexChildOff] == 1
}

func (ip *IndexPage) keyOffset(i int) int {
	return indexHeaderSize + i*indexKeyWidth
}

func (ip *IndexPage) childOffset(i int) int {
	return indexHeaderSize + ip.capacity*indexKeyWidth + i*indexChildWidth
}

// KeyAt returns keys[i].
func (ip *IndexPage) KeyAt(i int) int32 {
	return int32(binary.LittleEndian.Uint32(ip.buf[ip.keyOffset(i):]))
}

func (ip *IndexPage) setKeyAt(i int, k int32) {
	binary.LittleEndian.PutUint32(ip.buf[ip.keyOffset(i):], uint32(k))
}

// ChildAt returns children[i].
func (ip *IndexPage) ChildAt(i int) PageNo {
	return PageNo(binary.LittleEndian.Uint64(ip.buf[ip.childOffset(i):]))
}

func (ip *IndexPage) setChildAt(i int, c PageNo) {
	binary.LittleEndian.PutUint64(ip.buf[ip.childOffset(i):], uint64(c))
}

// Insert places (key, child) preserving ascending key order and returns
// true iff the page is full (size == K) afterward.
//
// child is the newly created RIGHT sibling produced by the split of the
// subtree the caller just descended into; it is inserted one slot to the
// right of that subtree's existing pointer, which is what keeps the
// invariant in spec.md §8 intact (every key in children[i] is < keys[i],
// every key in children[i+1] is >= keys[i]).
func (ip *IndexPage) Insert(key int32, child PageNo) (bool, error) {
	size := ip.Size()
	if size >= ip.capacity {
		return false, fmt.Errorf("index page: insert: page already full: %w", engineerr.ErrInvalidArgument)
	}
	pos := size
	for i := 0; i < size; i++ {
		if ip.KeyAt(i) > key {
			pos = i
			break
		}
	}
	// Shift keys[pos:size) right by one.
	for i := size; i > pos; i-- {
		ip.setKeyAt(i, ip.KeyAt(i-1))
	}
	ip.setKeyAt(pos, key)
	// Shift children[pos+1:size] right by one, then place the new child at
	// pos+1; children[pos] (the existing left subtree) is untouched.
	for i := size + 1; i > pos+1; i-- {
		ip.setChildAt(i, ip.ChildAt(i-1))
	}
	ip.setChildAt(pos+1, child)
	ip.setSize(size + 1)
	return ip.Size() == ip.capacity, nil
}

// Split moves the upper half of keys/children into newPage, leaving
// newPage.Size() == K-1-K/2, and returns the key at the split boundary —
// which is removed from both halves and must be inserted into the parent
// alongside a pointer to newPage (spec.md §4.3).
//
// original_source/src/db/IndexPage.cpp::split uses capacity/2,
// capacity/2-1, which only conserves all K+1 children when K is even; at
// the spec's literal page layout K is odd (339), and that arithmetic drops
// the rightmost (key, child) pair on every real split (leftSize + 1 +
// rightSize == K-1 keys and K children, one short of each). leftSize = k/2,
// rightSize = k-1-leftSize keeps all K keys (leftSize+1+rightSize == K) and
// all K+1 children ((leftSize+1) + (rightSize+1) == K+1) for both
// parities, matching LeafPage.Split's floor(L/2) left-half rule.
func (ip *IndexPage) Split(newPage *IndexPage) (int32, error) {
	k := ip.capacity
	leftSize := k / 2
	rightSize := k - 1 - leftSize
	if rightSize < 0 {
		return 0, fmt.Errorf("index page: split: capacity %d too small to split", k)
	}
	promoted := ip.KeyAt(leftSize)
	for i := 0; i < rightSize; i++ {
		newPage.setKeyAt(i, ip.KeyAt(leftSize+1+i))
	}
	for i := 0; i <= rightSize; i++ {
		newPage.setChildAt(i, ip.ChildAt(leftSize+1+i))
	}
	newPage.setSize(rightSize)
	ip.setSize(leftSize)
	return promoted, nil
}

// FindChild returns children[i] where i is the smallest index with
// keys[i] > key, or children[size] if no such key exists. Because the
// comparison is strict, a key equal to keys[i] goes to children[i+1], the
// subtree holding keys >= keys[i] (spec.md §4.3).
func (ip *IndexPage) FindChild(key int32) PageNo {
	size := ip.Size()
	for i := 0; i < size; i++ {
		if ip.KeyAt(i) > key {
			return ip.ChildAt(i)
		}
	}
	return ip.ChildAt(size)
}

// SetChild sets children[i] directly, bypassing Insert's shifting logic.
// Only meaningful for bootstrapping a fresh root page's sole left child
// before any key has been inserted.
func (ip *IndexPage) SetChild(i int, c PageNo) {
	ip.setChildAt(i, c)
}

// Bytes returns the underlying page buffer.
func (ip *IndexPage) Bytes() []byte { return ip.buf }
