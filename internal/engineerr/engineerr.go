// Package engineerr defines the error kinds shared by every layer of the
// storage engine. Call sites wrap one of the sentinels below with
// fmt.Errorf("%s: %w", ...) so callers can still recover the kind with
// errors.Is while getting a useful message.
package engineerr

import "errors"

var (
	// ErrIO covers syscall failures and short reads/writes from the file layer.
	ErrIO = errors.New("io error")

	// ErrOutOfRange covers a bad page number or slot index.
	ErrOutOfRange = errors.New("out of range")

	// ErrNotFound covers an unknown field name or a missing file.
	ErrNotFound = errors.New("not found")

	// ErrTypeMismatch covers a bad tag in the codec, a predicate, or an aggregate.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrInvalidArgument covers an oversized Char value, duplicate schema
	// names, or a tuple/schema length mismatch.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrCorrupt covers a structural invariant violated on read, such as an
	// index page whose index_children flag doesn't match its children.
	ErrCorrupt = errors.New("corrupt")

	// ErrUnsupported covers operations the spec declines to define, such as
	// B+Tree key deletion.
	ErrUnsupported = errors.New("unsupported")
)
