// Package page implements the heap page: a slotted page of fixed-width rows
// with a bit-packed occupancy header (spec.md §3, §4.2).
package page

import "fmt"

// Size is the fixed page size P in bytes, per spec.md §3.
const Size = 4096

// ID identifies a page within a named file: (file_name, page_number).
type ID struct {
	File   string
	Number int
}

func (id ID) String() string {
	return fmt.Sprintf("%s:%d", id.File, id.Number)
}
