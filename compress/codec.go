package compress

import (
	"fmt"

	"github.com/arloliu/htscodec/errs"
	"github.com/arloliu/htscodec/format"
)

// Compressor compresses a complete data block payload.
//
// Memory management:
//   - Returned slice is newly allocated and owned by the caller (NoOp returns its input)
//   - Input slice is not modified
type Compressor interface {
	Compress(data []byte) ([]byte, error)
}

// Decompressor restores a payload produced by the matching Compressor.
//
// Implementations return an error for corrupted input or data produced by a
// different algorithm, and must be safe for concurrent use.
type Decompressor interface {
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both compression and decompression capabilities.
type Codec interface {
	Compressor
	Decompressor
}

// CreateCodec creates a new Codec for the given compression type.
//
// Parameters:
//   - compressionType: None, Gzip, Zstd, S2 or LZ4
//
// Returns:
//   - Codec: Codec instance for the specified type
//   - error: errs.ErrUnsupportedCompression for unknown types
func CreateCodec(compressionType format.CompressionType) (Codec, error) {
	switch compressionType {
	case format.CompressionNone:
		return NewNoOpCompressor(), nil
	case format.CompressionGzip:
		return NewGzipCompressor(), nil
	case format.CompressionZstd:
		return NewZstdCompressor(), nil
	case format.CompressionS2:
		return NewS2Compressor(), nil
	case format.CompressionLZ4:
		return NewLZ4Compressor(), nil
	default:
		return nil, fmt.Errorf("%w: %s (%d)", errs.ErrUnsupportedCompression, compressionType, uint8(compressionType))
	}
}

var builtinCodecs = map[format.CompressionType]Codec{
	format.CompressionNone: NewNoOpCompressor(),
	format.CompressionGzip: NewGzipCompressor(),
	format.CompressionZstd: NewZstdCompressor(),
	format.CompressionS2:   NewS2Compressor(),
	format.CompressionLZ4:  NewLZ4Compressor(),
}

// GetCodec retrieves the shared built-in Codec for the specified compression type.
func GetCodec(compressionType format.CompressionType) (Codec, error) {
	if codec, ok := builtinCodecs[compressionType]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("%w: %s (%d)", errs.ErrUnsupportedCompression, compressionType, uint8(compressionType))
}
