package bgzf

import (
	"fmt"

	"github.com/arloliu/htscodec/endian"
	"github.com/arloliu/htscodec/errs"
)

// blockSizeLen is the width of the little-endian length prefix read by ReadBlockSize.
const blockSizeLen = 4

// Block holds the decompressed content of one BGZF block together with the
// file offset of the compressed block it came from.
//
// A Block is readable until its cursor reaches the end of the content and is
// exhausted from then on; there is no way back for the same unit. The owning
// reader moves on to the next unit with Reset, which may reuse the storage.
//
// Block is not safe for concurrent use. The content slice belongs to the Block
// once handed to Reset and must not be modified by the caller afterwards.
type Block struct {
	cOffset uint64
	data    []byte
	pos     int
}

// NewBlock returns an empty, exhausted block at compressed offset 0.
func NewBlock() *Block {
	return &Block{}
}

// Reset replaces the block content for a newly decompressed unit and rewinds
// the cursor.
//
// Parameters:
//   - cOffset: File offset where the unit's compressed block begins
//   - data: Decompressed content; ownership passes to the Block
func (b *Block) Reset(cOffset uint64, data []byte) {
	b.cOffset = cOffset
	b.data = data
	b.pos = 0
}

// Position returns the number of content bytes already consumed.
func (b *Block) Position() uint64 {
	return uint64(b.pos) //nolint:gosec // G115: pos is never negative
}

// VirtualPosition returns COffset()<<16 | Position().
//
// The in-block offset is not range checked: a block built from a conforming
// file never exceeds 64 KiB of content.
func (b *Block) VirtualPosition() VirtualPosition {
	return VirtualPosition(b.cOffset<<uncompressedBits | b.Position())
}

// COffset returns the file offset of the compressed block.
func (b *Block) COffset() uint64 {
	return b.cOffset
}

// SetCOffset sets the file offset of the compressed block. The owning reader
// calls it once, before consumers read any content.
func (b *Block) SetCOffset(cOffset uint64) {
	b.cOffset = cOffset
}

// Len returns the length of the decompressed content.
func (b *Block) Len() int {
	return len(b.data)
}

// Remaining returns the number of unread content bytes.
func (b *Block) Remaining() int {
	return len(b.data) - b.pos
}

// IsEOF reports whether every content byte has been consumed.
func (b *Block) IsEOF() bool {
	return b.pos >= len(b.data)
}

// Read copies up to len(p) unread content bytes into p and advances the cursor.
//
// Once the block is exhausted Read returns 0 and a nil error. A short or zero
// count means "fetch the next block", not a failure, so callers must check
// IsEOF after any read that came back short.
//
// Returns:
//   - int: Number of bytes copied
//   - error: Always nil
func (b *Block) Read(p []byte) (int, error) {
	n := copy(p, b.data[b.pos:])
	b.pos += n

	return n, nil
}

// ReadBlockSize reads a 4-byte little-endian signed length prefix from the
// cursor.
//
// When fewer than 4 bytes remain it fails with errs.ErrShortRead and leaves
// the cursor where it was. Whether that means truncation or a prefix split
// across blocks is for the caller to decide.
func (b *Block) ReadBlockSize() (int32, error) {
	if b.Remaining() < blockSizeLen {
		return 0, fmt.Errorf("%w: block size prefix needs %d bytes, %d remain",
			errs.ErrShortRead, blockSizeLen, b.Remaining())
	}

	v := endian.Int32(endian.GetLittleEndianEngine(), b.data[b.pos:b.pos+blockSizeLen])
	b.pos += blockSizeLen

	return v, nil
}

// Seek moves the cursor to an absolute in-block offset. The reader uses it to
// land on the uncompressed half of a virtual position.
func (b *Block) Seek(uPos uint16) error {
	if int(uPos) > len(b.data) {
		return fmt.Errorf("%w: in-block offset %d beyond block length %d",
			errs.ErrInvalidVirtualPosition, uPos, len(b.data))
	}

	b.pos = int(uPos)

	return nil
}
