package bitio

import (
	"fmt"

	"github.com/arloliu/htscodec/errs"
)

// Reader reads bit fields written by Writer from a byte slice.
//
// Bits are consumed most-significant first, matching Writer. A read that asks
// for more bits than remain fails with errs.ErrShortRead and consumes nothing.
type Reader struct {
	data    []byte
	bytePos int  // next byte to load
	cur     byte // current byte, consumed bits shifted out to the left
	left    int  // unread bits in cur
}

// NewReader creates a Reader over data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// BitsRemaining returns the number of unread bits, including trailing padding.
func (r *Reader) BitsRemaining() int {
	return (len(r.data)-r.bytePos)*8 + r.left
}

// ReadBit reads a single bit.
func (r *Reader) ReadBit() (bool, error) {
	if r.left == 0 {
		if r.bytePos >= len(r.data) {
			return false, errs.ErrShortRead
		}
		r.load()
	}

	bit := r.cur&0x80 != 0
	r.cur <<= 1
	r.left--

	return bit, nil
}

// ReadBits reads a width-bit field and returns it right-aligned.
//
// Parameters:
//   - width: Number of bits to read, 0-31
//
// Returns:
//   - uint32: The field value (0 when width is 0)
//   - error: errs.ErrInvalidWidth or errs.ErrShortRead
func (r *Reader) ReadBits(width int) (uint32, error) {
	if width < 0 || width >= MaxWidth {
		return 0, fmt.Errorf("%w: %d", errs.ErrInvalidWidth, width)
	}

	if width > r.BitsRemaining() {
		return 0, fmt.Errorf("%w: need %d bits, have %d", errs.ErrShortRead, width, r.BitsRemaining())
	}

	var v uint32
	for width > 0 {
		if r.left == 0 {
			r.load()
		}

		// Take as many bits as possible from the current byte at once.
		take := min(width, r.left)
		v = v<<take | uint32(r.cur>>(8-take))
		r.cur <<= take
		r.left -= take
		width -= take
	}

	return v, nil
}

// Align discards the remaining bits of the current byte.
func (r *Reader) Align() {
	r.cur = 0
	r.left = 0
}

func (r *Reader) load() {
	r.cur = r.data[r.bytePos]
	r.bytePos++
	r.left = 8
}
