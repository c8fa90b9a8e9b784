package compress

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/gzip"
)

var gzipWriterPool = sync.Pool{
	New: func() any {
		return gzip.NewWriter(nil)
	},
}

var gzipReaderPool sync.Pool

// GzipCompressor provides gzip compression, the deflate method every CRAM
// reader understands.
type GzipCompressor struct{}

var _ Codec = (*GzipCompressor)(nil)

// NewGzipCompressor creates a new gzip compressor at the default level.
func NewGzipCompressor() GzipCompressor {
	return GzipCompressor{}
}

// Compress compresses the input data as a single gzip member.
func (c GzipCompressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var buf bytes.Buffer
	buf.Grow(len(data)/2 + 32)

	zw, _ := gzipWriterPool.Get().(*gzip.Writer)
	defer gzipWriterPool.Put(zw)
	zw.Reset(&buf)

	if _, err := zw.Write(data); err != nil {
		return nil, fmt.Errorf("gzip compression failed: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("gzip compression failed: %w", err)
	}

	return buf.Bytes(), nil
}

// Decompress decompresses gzip data, including concatenated members.
func (c GzipCompressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	src := bytes.NewReader(data)

	zr, ok := gzipReaderPool.Get().(*gzip.Reader)
	if ok {
		if err := zr.Reset(src); err != nil {
			gzipReaderPool.Put(zr)
			return nil, fmt.Errorf("gzip decompression failed: %w", err)
		}
	} else {
		var err error
		if zr, err = gzip.NewReader(src); err != nil {
			return nil, fmt.Errorf("gzip decompression failed: %w", err)
		}
	}
	defer gzipReaderPool.Put(zr)

	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("gzip decompression failed: %w", err)
	}

	return out, nil
}
