// Package storagefile is the positional page-I/O layer: a single OS file
// addressed strictly by page number, with no WAL, free list, or superblock
// (spec.md §4.5). Growth only ever appends; no page is ever reclaimed.
package storagefile

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"tupledb/internal/engineerr"
	"tupledb/internal/page"
)

// File is a fixed-page-size backing store for exactly one on-disk file.
type File struct {
	mu     sync.Mutex
	f      *os.File
	path   string
	reads  uint64
	writes uint64
}

// Open opens path for read/write, creating it if absent. An existing file
// whose length is not a multiple of page.Size is reported as corrupt.
func Open(path string) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("storagefile: open %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("storagefile: stat %s: %w", path, err)
	}
	if info.Size()%int64(page.Size) != 0 {
		f.Close()
		return nil, fmt.Errorf("storagefile: %s: size %d not a multiple of page size %d: %w", path, info.Size(), page.Size, engineerr.ErrCorrupt)
	}
	return &File{f: f, path: path}, nil
}

// Path returns the backing OS file path.
func (sf *File) Path() string { return sf.path }

// NumPages returns N, the current page count, derived from file size.
func (sf *File) NumPages() (int, error) {
	sf.mu.Lock()
	defer sf.mu.Unlock()
	return sf.numPagesLocked()
}

func (sf *File) numPagesLocked() (int, error) {
	info, err := sf.f.Stat()
	if err != nil {
		return 0, fmt.Errorf("storagefile: stat: %w", err)
	}
	return int(info.Size() / int64(page.Size)), nil
}

// ReadPage reads page n into a freshly allocated page.Size buffer.
func (sf *File) ReadPage(n int) ([]byte, error) {
	sf.mu.Lock()
	defer sf.mu.Unlock()
	count, err := sf.numPagesLocked()
	if err != nil {
		return nil, err
	}
	if n < 0 || n >= count {
		return nil, fmt.Errorf("storagefile: read page %d: out of range [0,%d): %w", n, count, engineerr.ErrOutOfRange)
	}
	buf := make([]byte, page.Size)
	if _, err := sf.f.ReadAt(buf, int64(n)*int64(page.Size)); err != nil {
		return nil, fmt.Errorf("storagefile: read page %d: %w", n, engineerr.ErrIO)
	}
	atomic.AddUint64(&sf.reads, 1)
	return buf, nil
}

// WritePage writes buf (which must be exactly page.Size bytes) to page n.
// n must be an existing page; growth happens only through AppendPage.
func (sf *File) WritePage(n int, buf []byte) error {
	if len(buf) != page.Size {
		return fmt.Errorf("storagefile: write page %d: buffer is %d bytes, want %d: %w", n, len(buf), page.Size, engineerr.ErrInvalidArgument)
	}
	sf.mu.Lock()
	defer sf.mu.Unlock()
	count, err := sf.numPagesLocked()
	if err != nil {
		return err
	}
	if n < 0 || n >= count {
		return fmt.Errorf("storagefile: write page %d: out of range [0,%d): %w", n, count, engineerr.ErrOutOfRange)
	}
	if _, err := sf.f.WriteAt(buf, int64(n)*int64(page.Size)); err != nil {
		return fmt.Errorf("storagefile: write page %d: %w", n, engineerr.ErrIO)
	}
	atomic.AddUint64(&sf.writes, 1)
	return nil
}

// AppendPage grows the file by one page, writing buf (page.Size bytes) as
// the new last page, and returns its page number. This is the only way a
// page's number is ever allocated (spec.md §3: "Growth appends pages... and
// increments N").
func (sf *File) AppendPage(buf []byte) (int, error) {
	if len(buf) != page.Size {
		return 0, fmt.Errorf("storagefile: append: buffer is %d bytes, want %d: %w", len(buf), page.Size, engineerr.ErrInvalidArgument)
	}
	sf.mu.Lock()
	defer sf.mu.Unlock()
	count, err := sf.numPagesLocked()
	if err != nil {
		return 0, err
	}
	if _, err := sf.f.WriteAt(buf, int64(count)*int64(page.Size)); err != nil {
		return 0, fmt.Errorf("storagefile: append page %d: %w", count, engineerr.ErrIO)
	}
	atomic.AddUint64(&sf.writes, 1)
	return count, nil
}

// Reads returns the number of ReadPage calls that reached the OS file.
func (sf *File) Reads() uint64 { return atomic.LoadUint64(&sf.reads) }

// Writes returns the number of WritePage/AppendPage calls that reached the
// OS file.
func (sf *File) Writes() uint64 { return atomic.LoadUint64(&sf.writes) }

// Sync flushes the OS file to stable storage.
func (sf *File) Sync() error {
	sf.mu.Lock()
	defer sf.mu.Unlock()
	if err := sf.f.Sync(); err != nil {
		return fmt.Errorf("storagefile: sync: %w", err)
	}
	return nil
}

// Close closes the underlying OS file.
func (sf *File) Close() error {
	sf.mu.Lock()
	defer sf.mu.Unlock()
	return sf.f.Close()
}
