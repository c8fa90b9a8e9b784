package container

import (
	"errors"
	"fmt"
	"hash/crc32"
	"io"

	"github.com/cespare/xxhash/v2"

	"github.com/arloliu/htscodec/compress"
	"github.com/arloliu/htscodec/endian"
	"github.com/arloliu/htscodec/errs"
	"github.com/arloliu/htscodec/format"
	"github.com/arloliu/htscodec/internal/pool"
)

const (
	lengthPrefixSize = 4
	// dataBlockHeaderSize is method(1) + contentType(1) + contentID(4) + rawSize(4).
	dataBlockHeaderSize = 10
	checksumSize        = 4
	// minBlockLen is the smallest valid value of the length prefix: an empty payload.
	minBlockLen = dataBlockHeaderSize + checksumSize

	// MaxDataBlockSize bounds both the raw payload and the encoded body of a data block.
	MaxDataBlockSize = 1 << 28
)

// DataBlock is one typed, optionally compressed payload in a container stream.
//
// Data always holds the raw payload; compression happens on write and is undone
// on read, so Method only records how the payload travels on the wire.
type DataBlock struct {
	Method      format.CompressionType
	ContentType format.ContentType
	ContentID   int32
	Data        []byte
}

// LengthPrefixedReader is a byte stream that can read the 4-byte little-endian
// length prefix in front of each data block. *bgzf.Reader satisfies it, with
// prefixes allowed to span BGZF blocks.
type LengthPrefixedReader interface {
	io.Reader
	ReadBlockSize() (int32, error)
}

// ContentID derives a stable content ID from a data series name.
//
// The xxHash64 of the name is masked to 31 bits so the ID is always a
// non-negative int32.
func ContentID(series string) int32 {
	return int32(xxhash.Sum64String(series) & 0x7fffffff) //nolint:gosec // G115: masked to 31 bits
}

// MarshalBinary encodes the block, compressing Data with Method.
func (b *DataBlock) MarshalBinary() ([]byte, error) {
	return b.AppendBinary(nil)
}

// AppendBinary appends the encoded block, including its length prefix, to dst.
//
// Parameters:
//   - dst: Buffer to append to (may be nil)
//
// Returns:
//   - []byte: dst extended with the encoded block
//   - error: Unsupported method, invalid content type, oversized payload or codec failure
func (b *DataBlock) AppendBinary(dst []byte) ([]byte, error) {
	if !b.ContentType.Valid() {
		return dst, fmt.Errorf("%w: content %d: unknown content type %d", errs.ErrInvalidDataBlock, b.ContentID, b.ContentType)
	}
	if len(b.Data) > MaxDataBlockSize {
		return dst, fmt.Errorf("%w: content %d: payload is %d bytes", errs.ErrInvalidDataBlock, b.ContentID, len(b.Data))
	}

	codec, err := compress.GetCodec(b.Method)
	if err != nil {
		return dst, fmt.Errorf("content %d: %w", b.ContentID, err)
	}

	payload, err := codec.Compress(b.Data)
	if err != nil {
		return dst, fmt.Errorf("content %d: %w", b.ContentID, err)
	}

	blockLen := dataBlockHeaderSize + len(payload) + checksumSize
	if blockLen > MaxDataBlockSize {
		return dst, fmt.Errorf("%w: content %d: encoded block is %d bytes", errs.ErrInvalidDataBlock, b.ContentID, blockLen)
	}

	engine := endian.GetLittleEndianEngine()
	dst = endian.AppendInt32(engine, dst, int32(blockLen)) //nolint:gosec // G115: bounded by MaxDataBlockSize
	start := len(dst)

	dst = append(dst, byte(b.Method), byte(b.ContentType))
	dst = endian.AppendInt32(engine, dst, b.ContentID)
	dst = endian.AppendInt32(engine, dst, int32(len(b.Data))) //nolint:gosec // G115: bounded by MaxDataBlockSize
	dst = append(dst, payload...)
	dst = engine.AppendUint32(dst, crc32.ChecksumIEEE(dst[start:]))

	return dst, nil
}

// UnmarshalBinary decodes a block encoded by MarshalBinary, length prefix included.
func (b *DataBlock) UnmarshalBinary(data []byte) error {
	if len(data) < lengthPrefixSize {
		return fmt.Errorf("%w: %w: missing length prefix", errs.ErrInvalidDataBlock, errs.ErrShortRead)
	}

	blockLen := endian.Int32(endian.GetLittleEndianEngine(), data)
	if err := checkBlockLen(blockLen); err != nil {
		return err
	}

	body := data[lengthPrefixSize:]
	if len(body) != int(blockLen) {
		return fmt.Errorf("%w: length prefix says %d bytes, got %d", errs.ErrInvalidDataBlock, blockLen, len(body))
	}

	return b.decodeBody(body)
}

// WriteDataBlock encodes b and writes it to w in a single Write call.
//
// Returns the number of bytes written to w.
func WriteDataBlock(w io.Writer, b *DataBlock) (int, error) {
	bb := pool.GetDataBlockBuffer()
	defer pool.PutDataBlockBuffer(bb)

	var err error
	bb.B, err = b.AppendBinary(bb.B)
	if err != nil {
		return 0, err
	}

	n, err := w.Write(bb.B)
	if err != nil {
		return n, fmt.Errorf("content %d: write data block: %w", b.ContentID, err)
	}

	return n, nil
}

// ReadDataBlock reads the next data block from src.
//
// The length prefix is read through ReadBlockSize, then the body is read in
// full, checksummed and decompressed.
//
// Parameters:
//   - src: Stream positioned at a length prefix
//
// Returns:
//   - *DataBlock: Decoded block with its raw payload
//   - error: io.EOF when src ends cleanly before a prefix; otherwise
//     errs.ErrInvalidDataBlock, errs.ErrChecksumMismatch or a wrapped I/O error
func ReadDataBlock(src LengthPrefixedReader) (*DataBlock, error) {
	blockLen, err := src.ReadBlockSize()
	if err != nil {
		if err == io.EOF { //nolint:errorlint // io.EOF is returned unwrapped
			return nil, io.EOF
		}

		return nil, fmt.Errorf("%w: read length prefix: %w", errs.ErrInvalidDataBlock, err)
	}

	if err := checkBlockLen(blockLen); err != nil {
		return nil, err
	}

	bb := pool.GetDataBlockBuffer()
	defer pool.PutDataBlockBuffer(bb)

	// The prefix is unverified until the checksum matches, so the buffer grows
	// with the bytes actually read rather than with blockLen.
	n, err := io.CopyN(bb, src, int64(blockLen))
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}

		return nil, fmt.Errorf("%w: read %d byte body, got %d: %w", errs.ErrInvalidDataBlock, blockLen, n, err)
	}

	b := &DataBlock{}
	if err := b.decodeBody(bb.B); err != nil {
		return nil, err
	}

	return b, nil
}

func checkBlockLen(blockLen int32) error {
	if blockLen < minBlockLen || blockLen > MaxDataBlockSize {
		return fmt.Errorf("%w: block length %d out of range [%d, %d]",
			errs.ErrInvalidDataBlock, blockLen, minBlockLen, MaxDataBlockSize)
	}

	return nil
}

// decodeBody decodes everything after the length prefix. The payload is
// decompressed into a fresh slice, so body may be reused afterwards.
func (b *DataBlock) decodeBody(body []byte) error {
	engine := endian.GetLittleEndianEngine()

	covered := body[:len(body)-checksumSize]
	want := engine.Uint32(body[len(body)-checksumSize:])

	method := format.CompressionType(body[0])
	contentType := format.ContentType(body[1])
	contentID := endian.Int32(engine, body[2:6])
	rawSize := endian.Int32(engine, body[6:10])
	payload := covered[dataBlockHeaderSize:]

	if got := crc32.ChecksumIEEE(covered); got != want {
		return fmt.Errorf("%w: content %d: crc32 %08x, want %08x", errs.ErrChecksumMismatch, contentID, got, want)
	}

	if !contentType.Valid() {
		return fmt.Errorf("%w: content %d: unknown content type %d", errs.ErrInvalidDataBlock, contentID, contentType)
	}
	if rawSize < 0 || rawSize > MaxDataBlockSize {
		return fmt.Errorf("%w: content %d: raw size %d", errs.ErrInvalidDataBlock, contentID, rawSize)
	}

	codec, err := compress.GetCodec(method)
	if err != nil {
		return fmt.Errorf("content %d: %w", contentID, err)
	}

	var data []byte
	if sd, ok := codec.(compress.SizedDecompressor); ok {
		data, err = sd.DecompressSized(payload, int(rawSize))
	} else {
		data, err = codec.Decompress(payload)
	}
	if err != nil {
		return fmt.Errorf("%w: content %d: %w", errs.ErrInvalidDataBlock, contentID, err)
	}

	if len(data) != int(rawSize) {
		return fmt.Errorf("%w: content %d: decompressed %d bytes, want %d",
			errs.ErrInvalidDataBlock, contentID, len(data), rawSize)
	}

	if method == format.CompressionNone {
		// NoOp hands back the body buffer, which the caller may recycle.
		data = append([]byte(nil), data...)
	}

	b.Method = method
	b.ContentType = contentType
	b.ContentID = contentID
	b.Data = data

	return nil
}
