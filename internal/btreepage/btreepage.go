// Package btreepage implements the two page kinds of a B⁺-tree file:
// IndexPage (ordered keys and child pointers) and LeafPage (ordered tuples
// keyed on one field, with a right-sibling link). See spec.md §3, §4.3, §4.4.
package btreepage

// PageNo identifies a page within the owning B⁺-tree file. NoPage marks an
// absent pointer — the rightmost leaf's next_leaf, for instance.
type PageNo int32

// NoPage is the sentinel for "no such page" (spec.md §3's "absent" next_leaf).
const NoPage PageNo = -1

// Kind distinguishes an IndexPage from a LeafPage when a caller only has a
// raw page buffer and a page number — e.g. a B+-tree file descending from
// the root without already knowing each level's shape. Both page headers
// reserve the same header byte for this tag.
type Kind byte

const (
	KindLeaf  Kind = 0
	KindIndex Kind = 1
)

const kindOffset = 3

// PageKind reads the tag written by InitIndexPage/InitLeafPage.
func PageKind(buf []byte) Kind {
	return Kind(buf[kindOffset])
}
