package bgzf

import (
	"fmt"

	"github.com/arloliu/htscodec/endian"
	"github.com/arloliu/htscodec/errs"
)

// BGZF member layout (RFC 1952 gzip member with a "BC" extra subfield):
//
//	offset  size  field
//	0       1     ID1 (0x1f)
//	1       1     ID2 (0x8b)
//	2       1     CM  (8, deflate)
//	3       1     FLG (4, FEXTRA)
//	4       4     MTIME
//	8       1     XFL
//	9       1     OS
//	10      2     XLEN
//	12      XLEN  extra subfields, one of them SI1='B' SI2='C' SLEN=2 BSIZE
//	...     ...   CDATA (raw deflate)
//	-8      4     CRC32 of the decompressed data
//	-4      4     ISIZE, decompressed length
//
// BSIZE is the total member size minus one.
const (
	gzipID1       = 0x1f
	gzipID2       = 0x8b
	gzipCMFlate   = 8
	gzipFExtra    = 4
	gzipOSUnknown = 0xff

	fixedHeaderLen = 12
	bcSubfieldLen  = 6
	headerLen      = fixedHeaderLen + bcSubfieldLen
	footerLen      = 8

	// MaxBlockSize is the largest total member size a BSIZE field can describe.
	MaxBlockSize = 1 << 16
	// MaxUncompressedBlockSize caps a block's decompressed content.
	MaxUncompressedBlockSize = 1 << 16
	// DefaultBlockDataSize is how much uncompressed data the writer packs per
	// block, leaving room for deflate overhead on incompressible input.
	DefaultBlockDataSize = MaxBlockSize - 256
)

// eofMarker is the empty block that terminates a well-formed BGZF file.
var eofMarker = []byte{
	0x1f, 0x8b, 0x08, 0x04, 0x00, 0x00, 0x00, 0x00,
	0x00, 0xff, 0x06, 0x00, 0x42, 0x43, 0x02, 0x00,
	0x1b, 0x00, 0x03, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00,
}

// EOFMarker returns a copy of the 28-byte BGZF end-of-file block.
func EOFMarker() []byte {
	return append([]byte(nil), eofMarker...)
}

// appendHeader appends a BGZF member header for a member of blockSize bytes.
func appendHeader(dst []byte, blockSize int) []byte {
	engine := endian.GetLittleEndianEngine()

	dst = append(dst,
		gzipID1, gzipID2, gzipCMFlate, gzipFExtra,
		0, 0, 0, 0, // MTIME
		0,             // XFL
		gzipOSUnknown, // OS
	)
	dst = engine.AppendUint16(dst, bcSubfieldLen)
	dst = append(dst, 'B', 'C')
	dst = engine.AppendUint16(dst, 2)

	return engine.AppendUint16(dst, uint16(blockSize-1)) //nolint:gosec // G115: blockSize <= MaxBlockSize
}

// parseFixedHeader validates the first 12 bytes of a member and returns XLEN.
func parseFixedHeader(hdr []byte) (int, error) {
	if hdr[0] != gzipID1 || hdr[1] != gzipID2 {
		return 0, fmt.Errorf("%w: bad magic %#02x %#02x", errs.ErrInvalidBlockHeader, hdr[0], hdr[1])
	}

	if hdr[2] != gzipCMFlate {
		return 0, fmt.Errorf("%w: compression method %d", errs.ErrInvalidBlockHeader, hdr[2])
	}

	if hdr[3]&gzipFExtra == 0 {
		return 0, fmt.Errorf("%w: FEXTRA flag not set", errs.ErrInvalidBlockHeader)
	}

	return int(endian.GetLittleEndianEngine().Uint16(hdr[10:12])), nil
}

// findBlockSize scans the gzip extra field for the BC subfield and returns the
// total member size it declares.
func findBlockSize(extra []byte) (int, error) {
	engine := endian.GetLittleEndianEngine()

	for i := 0; i+4 <= len(extra); {
		si1, si2 := extra[i], extra[i+1]
		slen := int(engine.Uint16(extra[i+2 : i+4]))
		end := i + 4 + slen
		if end > len(extra) {
			break
		}

		if si1 == 'B' && si2 == 'C' && slen == 2 {
			return int(engine.Uint16(extra[i+4:end])) + 1, nil
		}

		i = end
	}

	return 0, fmt.Errorf("%w: missing BC subfield", errs.ErrInvalidBlockHeader)
}
