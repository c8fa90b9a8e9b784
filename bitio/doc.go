// Package bitio packs and unpacks bit fields that are narrower than a byte or
// span byte boundaries.
//
// # Bit Order
//
// Fields are written most-significant bit first and packed back to back. Only
// the last byte of a stream is padded, with zero bits, when the writer is
// finished:
//
//	var buf bytes.Buffer
//	w := bitio.NewWriter(&buf)
//	_ = w.WriteBits(0x0C, 4) // 1100
//	_ = w.WriteBits(0x03, 2) //     11
//	_ = w.WriteBits(0x34, 6) //       11 0100
//	_, _ = w.Finish()
//	// buf.Bytes() == []byte{0b11001111, 0b01000000}
//
// # Widths
//
// A field width must be in [0, 32). Width 0 writes nothing and succeeds, which
// lets callers that derive widths at runtime encode absent fields without a
// special case. Any other width fails with errs.ErrInvalidWidth before touching
// the accumulator.
//
// # Ownership
//
// A Writer holds the only reference to its sink until Finish returns it. Go has
// no move semantics, so a finished Writer rejects further calls with
// errs.ErrWriterFinished instead.
package bitio
