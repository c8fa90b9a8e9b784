// Package errs defines the sentinel errors returned by htscodec packages.
//
// Operations wrap these with additional context using fmt.Errorf and %w, so
// callers should compare with errors.Is rather than ==.
package errs

import "errors"

// Bit-level errors.
var (
	// ErrInvalidWidth is returned when a bit width falls outside [0, 32).
	ErrInvalidWidth = errors.New("invalid bit width")
	// ErrShortRead is returned when fewer bytes or bits remain than a fixed-size read requires.
	ErrShortRead = errors.New("short read")
	// ErrWriterFinished is returned when a bit writer is used after Finish.
	ErrWriterFinished = errors.New("bit writer already finished")
)

// BGZF block errors.
var (
	ErrInvalidVirtualPosition = errors.New("invalid virtual position")
	ErrInvalidBlockHeader     = errors.New("invalid bgzf block header")
	ErrInvalidBlockSize       = errors.New("invalid bgzf block size")
	ErrChecksumMismatch       = errors.New("checksum mismatch")
	ErrWriterClosed           = errors.New("writer already closed")
	ErrNotSeekable            = errors.New("source is not seekable")
)

// Data block errors.
var (
	ErrUnsupportedCompression = errors.New("unsupported compression type")
	ErrInvalidDataBlock       = errors.New("invalid data block")
)
