package compress

import (
	"errors"
	"fmt"
	"sync"

	"github.com/pierrec/lz4/v4"
)

// maxLZ4Output bounds the adaptive decompression buffer.
const maxLZ4Output = 128 * 1024 * 1024

// lz4CompressorPool pools lz4.Compressor instances, whose hash tables are worth reusing.
var lz4CompressorPool = sync.Pool{
	New: func() any {
		return &lz4.Compressor{}
	},
}

// SizedDecompressor is implemented by codecs whose format does not record the
// decompressed size. Callers that know the size, such as data blocks carrying
// a raw size field, should prefer DecompressSized.
type SizedDecompressor interface {
	DecompressSized(data []byte, rawSize int) ([]byte, error)
}

// LZ4Compressor provides raw LZ4 block compression.
type LZ4Compressor struct{}

var (
	_ Codec             = (*LZ4Compressor)(nil)
	_ SizedDecompressor = (*LZ4Compressor)(nil)
)

// NewLZ4Compressor creates a new LZ4 compressor.
func NewLZ4Compressor() LZ4Compressor {
	return LZ4Compressor{}
}

// Compress compresses the input data as one LZ4 block.
func (c LZ4Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	dst := make([]byte, lz4.CompressBlockBound(len(data)))

	lc, _ := lz4CompressorPool.Get().(*lz4.Compressor)
	defer lz4CompressorPool.Put(lc)

	n, err := lc.CompressBlock(data, dst)
	if err != nil {
		return nil, fmt.Errorf("lz4 compression failed: %w", err)
	}

	return dst[:n], nil
}

// DecompressSized decompresses data into a buffer of exactly rawSize bytes.
func (c LZ4Compressor) DecompressSized(data []byte, rawSize int) ([]byte, error) {
	if len(data) == 0 || rawSize == 0 {
		return nil, nil
	}

	buf := make([]byte, rawSize)
	n, err := lz4.UncompressBlock(data, buf)
	if err != nil {
		return nil, fmt.Errorf("lz4 decompression failed: %w", err)
	}

	if n != rawSize {
		return nil, fmt.Errorf("lz4 decompression failed: got %d bytes, want %d", n, rawSize)
	}

	return buf, nil
}

// Decompress decompresses an LZ4 block of unknown decompressed size.
//
// It starts with a buffer 4x the compressed size and doubles it on
// lz4.ErrInvalidSourceShortBuffer, up to 128MiB.
func (c LZ4Compressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	for bufSize := len(data) * 4; bufSize <= maxLZ4Output; bufSize *= 2 {
		buf := make([]byte, bufSize)
		n, err := lz4.UncompressBlock(data, buf)
		if err == nil {
			return buf[:n], nil
		}

		if !errors.Is(err, lz4.ErrInvalidSourceShortBuffer) {
			return nil, fmt.Errorf("lz4 decompression failed: %w", err)
		}
	}

	return nil, fmt.Errorf("lz4 decompression failed: %w", lz4.ErrInvalidSourceShortBuffer)
}
