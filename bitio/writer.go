package bitio

import (
	"fmt"
	"io"

	"github.com/arloliu/htscodec/errs"
)

// MaxWidth is the exclusive upper bound for a single bit field width.
const MaxWidth = 32

// Writer packs bit fields narrower than a byte, or spanning byte boundaries,
// into a byte stream.
//
// Bits are written most-significant first within each field and fields are
// packed contiguously with no alignment padding between them. Only the final
// byte of the stream is zero-padded, by TryFinish or Finish.
//
// The Writer owns its sink for its whole lifetime: nothing else may write to
// the sink while bits are pending, or the packing breaks. Writer is not safe
// for concurrent use.
type Writer struct {
	sink     io.Writer
	bw       io.ByteWriter // non-nil when sink implements io.ByteWriter
	one      [1]byte       // scratch for sinks without WriteByte
	buf      byte          // byte currently being assembled
	n        int           // valid bits in buf, always in [0, 8) between calls
	finished bool
}

// NewWriter creates a Writer that emits packed bytes to w.
//
// Parameters:
//   - w: Sink receiving one byte each time eight bits have accumulated
//
// Returns:
//   - *Writer: A writer with no pending bits
func NewWriter(w io.Writer) *Writer {
	bw, _ := w.(io.ByteWriter)

	return &Writer{
		sink: w,
		bw:   bw,
	}
}

// Sink returns the underlying sink for inspection.
//
// Bytes still pending in the accumulator are not visible in the sink until
// they are completed or TryFinish pads them out.
func (w *Writer) Sink() io.Writer {
	return w.sink
}

// Pending returns the number of bits buffered for the byte being assembled.
func (w *Writer) Pending() int {
	return w.n
}

// WriteBits writes the low width bits of value, most-significant bit first.
//
// A width of 0 is a no-op. Widths outside [0, 32) fail with errs.ErrInvalidWidth
// before anything is written, so the accumulator is left untouched.
//
// A single call may flush zero, one, or several bytes to the sink and may leave
// bits pending for the next call. A sink failure is returned as-is (wrapped) and
// is not retried.
//
// Parameters:
//   - value: Field value; bits above width are ignored
//   - width: Number of bits to write, 0-31
//
// Returns:
//   - error: errs.ErrInvalidWidth, errs.ErrWriterFinished, or a sink write error
func (w *Writer) WriteBits(value uint32, width int) error {
	if w.finished {
		return errs.ErrWriterFinished
	}

	if width < 0 || width >= MaxWidth {
		return fmt.Errorf("%w: %d", errs.ErrInvalidWidth, width)
	}

	if width == 0 {
		return nil
	}

	mask := uint32(1) << (width - 1)
	for range width {
		if err := w.writeBit(value&mask != 0); err != nil {
			return err
		}
		mask >>= 1
	}

	return nil
}

// WriteBit writes a single bit.
func (w *Writer) WriteBit(set bool) error {
	if w.finished {
		return errs.ErrWriterFinished
	}

	return w.writeBit(set)
}

// TryFinish pads any pending bits with zeros and flushes the final byte.
//
// It is a no-op when no bits are pending, so calling it more than once is safe.
// The writer stays usable afterwards; new bits start a fresh byte.
func (w *Writer) TryFinish() error {
	if w.finished {
		return errs.ErrWriterFinished
	}

	if w.n == 0 {
		return nil
	}

	return w.flush()
}

// Finish pads and flushes pending bits, then hands the sink back to the caller.
//
// The writer is consumed: any further call returns errs.ErrWriterFinished.
//
// Returns:
//   - io.Writer: The sink passed to NewWriter
//   - error: Sink write error or errs.ErrWriterFinished
func (w *Writer) Finish() (io.Writer, error) {
	if err := w.TryFinish(); err != nil {
		return nil, err
	}

	sink := w.sink
	w.finished = true
	w.sink = nil
	w.bw = nil

	return sink, nil
}

func (w *Writer) writeBit(set bool) error {
	if set {
		w.buf |= 0x01 << (8 - w.n - 1)
	}

	w.n++

	if w.n == 8 {
		return w.flush()
	}

	return nil
}

// flush emits buf and resets the accumulator even when the sink fails,
// keeping n inside [0, 8).
func (w *Writer) flush() error {
	b := w.buf
	w.buf = 0
	w.n = 0

	var err error
	if w.bw != nil {
		err = w.bw.WriteByte(b)
	} else {
		w.one[0] = b
		_, err = w.sink.Write(w.one[:])
	}

	if err != nil {
		return fmt.Errorf("bitio: write packed byte: %w", err)
	}

	return nil
}
