package bgzf

import (
	"fmt"

	"github.com/arloliu/htscodec/errs"
)

const (
	// uncompressedBits is the width of the in-block offset inside a virtual position.
	uncompressedBits = 16
	uncompressedMask = 1<<uncompressedBits - 1
	// MaxCompressedOffset is the largest compressed offset a virtual position can carry.
	MaxCompressedOffset = 1<<(64-uncompressedBits) - 1
)

// VirtualPosition addresses a byte in a BGZF file without decompressing from
// the start: the upper 48 bits hold the file offset of the compressed block,
// the lower 16 bits the offset inside that block's decompressed content.
//
// The layout is shared with index tooling and must not change. Ordinary integer
// ordering of two positions from the same file matches file order because a
// block never decompresses to more than 64 KiB.
type VirtualPosition uint64

// NewVirtualPosition composes a virtual position.
//
// Parameters:
//   - compressed: File offset of the compressed block, at most MaxCompressedOffset
//   - uncompressed: Offset inside the block's decompressed content
//
// Returns:
//   - VirtualPosition: compressed<<16 | uncompressed
//   - error: errs.ErrInvalidVirtualPosition if compressed does not fit in 48 bits
func NewVirtualPosition(compressed uint64, uncompressed uint16) (VirtualPosition, error) {
	if compressed > MaxCompressedOffset {
		return 0, fmt.Errorf("%w: compressed offset %d exceeds 48 bits", errs.ErrInvalidVirtualPosition, compressed)
	}

	return VirtualPosition(compressed<<uncompressedBits | uint64(uncompressed)), nil
}

// Compressed returns the file offset of the compressed block.
func (vp VirtualPosition) Compressed() uint64 {
	return uint64(vp) >> uncompressedBits
}

// Uncompressed returns the offset inside the block's decompressed content.
func (vp VirtualPosition) Uncompressed() uint16 {
	return uint16(vp & uncompressedMask)
}

func (vp VirtualPosition) String() string {
	return fmt.Sprintf("%d/%d", vp.Compressed(), vp.Uncompressed())
}
