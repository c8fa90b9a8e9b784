package container

import (
	"fmt"

	"github.com/arloliu/htscodec/bitio"
	"github.com/arloliu/htscodec/errs"
	"github.com/arloliu/htscodec/format"
	"github.com/arloliu/htscodec/internal/pool"
)

// CoreContentID is the content ID of the core data block.
const CoreContentID int32 = 0

// CoreEncoder packs bit-level core data series and seals them into a data block.
//
// Fields are written through a bitio.Writer into a pooled buffer; Finish pads
// the last byte with zero bits and hands the bytes to a DataBlock. The encoder
// cannot be reused after Finish.
type CoreEncoder struct {
	buf *pool.ByteBuffer
	bw  *bitio.Writer
}

// NewCoreEncoder creates an empty core data encoder.
func NewCoreEncoder() *CoreEncoder {
	buf := pool.GetDataBlockBuffer()

	return &CoreEncoder{
		buf: buf,
		bw:  bitio.NewWriter(buf),
	}
}

// WriteBits appends the low width bits of v, most-significant bit first.
func (e *CoreEncoder) WriteBits(v uint32, width int) error {
	if e.buf == nil {
		return errs.ErrWriterFinished
	}

	return e.bw.WriteBits(v, width)
}

// WriteBit appends a single bit.
func (e *CoreEncoder) WriteBit(set bool) error {
	if e.buf == nil {
		return errs.ErrWriterFinished
	}

	return e.bw.WriteBit(set)
}

// Len returns the number of bits written so far.
func (e *CoreEncoder) Len() int {
	if e.buf == nil {
		return 0
	}

	return e.buf.Len()*8 + e.bw.Pending()
}

// Finish pads the pending bits and returns them as a core data block.
//
// Parameters:
//   - method: Compression applied when the block is written
//
// Returns:
//   - *DataBlock: Block of content type CoreData with ContentID CoreContentID
//   - error: errs.ErrWriterFinished on a second call
func (e *CoreEncoder) Finish(method format.CompressionType) (*DataBlock, error) {
	if e.buf == nil {
		return nil, errs.ErrWriterFinished
	}

	defer func() {
		pool.PutDataBlockBuffer(e.buf)
		e.buf = nil
		e.bw = nil
	}()

	if _, err := e.bw.Finish(); err != nil {
		return nil, fmt.Errorf("core data: %w", err)
	}

	return &DataBlock{
		Method:      method,
		ContentType: format.ContentCoreData,
		ContentID:   CoreContentID,
		Data:        append([]byte(nil), e.buf.Bytes()...),
	}, nil
}

// NewCoreDecoder returns a bit reader over the payload of a core data block.
func NewCoreDecoder(b *DataBlock) (*bitio.Reader, error) {
	if b.ContentType != format.ContentCoreData {
		return nil, fmt.Errorf("%w: content %d is %s, not CoreData", errs.ErrInvalidDataBlock, b.ContentID, b.ContentType)
	}

	return bitio.NewReader(b.Data), nil
}
