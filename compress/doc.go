// Package compress provides the payload codecs for htscodec data blocks.
//
// A data block records which method compressed its payload; this package maps
// each format.CompressionType to a Codec:
//
//   - None: payload stored as-is
//   - Gzip: gzip member (deflate), readable by any CRAM implementation
//   - Zstd: Zstandard frame, best ratio for archival data
//   - S2: Snappy-compatible, fast with moderate ratio
//   - LZ4: raw LZ4 block, fastest decompression
//
// BGZF blocks themselves are always deflate and do not go through this
// package; see the bgzf package.
//
// # Usage
//
//	codec, err := compress.GetCodec(format.CompressionZstd)
//	if err != nil {
//	    return err
//	}
//	payload, err := codec.Compress(raw)
//
// LZ4 blocks do not store their decompressed length. When the caller knows it,
// type-assert to SizedDecompressor to decompress into an exact-size buffer:
//
//	if sd, ok := codec.(compress.SizedDecompressor); ok {
//	    raw, err = sd.DecompressSized(payload, rawSize)
//	}
//
// # Thread Safety
//
// All codecs are stateless values backed by sync.Pool encoders and decoders,
// and are safe for concurrent use.
package compress
