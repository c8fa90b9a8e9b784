package bgzf

import (
	"bytes"
	"errors"
	"fmt"
	"hash/crc32"
	"io"

	"github.com/klauspost/compress/flate"
	"go.uber.org/zap"

	"github.com/arloliu/htscodec/endian"
	"github.com/arloliu/htscodec/errs"
	"github.com/arloliu/htscodec/internal/options"
	"github.com/arloliu/htscodec/internal/pool"
)

// Reader decompresses a BGZF stream one block at a time and exposes it as a
// plain io.Reader, tracking the virtual position of every byte it returns.
//
// Each block is inflated in full into the current Block before any of its bytes
// are handed out. Empty blocks, including the end-of-file marker, are skipped.
// When the source also implements io.Seeker, Seek jumps straight to a virtual
// position.
//
// A malformed or unreadable block stops the Reader: every later Read and
// ReadBlockSize returns the same error until a successful Seek.
//
// Reader is not safe for concurrent use.
type Reader struct {
	src    io.Reader
	cfg    *ReaderConfig
	block  *Block
	next   uint64 // file offset of the next member
	header [fixedHeaderLen]byte
	extra  []byte
	cdata  *pool.ByteBuffer // compressed member body and footer
	data   *pool.ByteBuffer // decompressed content handed to block
	cr     *bytes.Reader
	flate  io.ReadCloser
	err    error // first decode or I/O error, cleared by Seek

	sawEOFMarker bool
}

// NewReader creates a Reader over src.
//
// Parameters:
//   - src: BGZF-compressed input; an io.ReadSeeker enables Seek
//   - opts: Optional configuration, e.g. WithReaderLogger
//
// Returns:
//   - *Reader: Reader positioned at virtual position 0
//   - error: Invalid option
func NewReader(src io.Reader, opts ...ReaderOption) (*Reader, error) {
	cfg := defaultReaderConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	cr := bytes.NewReader(nil)

	return &Reader{
		src:   src,
		cfg:   cfg,
		block: NewBlock(),
		cdata: pool.GetBlockBuffer(),
		data:  pool.GetBlockBuffer(),
		cr:    cr,
		flate: flate.NewReader(cr),
	}, nil
}

// Block returns the block currently being read. It is owned by the Reader and
// replaced in place when the next block is loaded.
func (r *Reader) Block() *Block {
	return r.block
}

// Read reads decompressed bytes into p, crossing block boundaries as needed.
//
// A single call returns bytes from at most one block. Read returns io.EOF
// only once the source ends cleanly at a block boundary.
func (r *Reader) Read(p []byte) (int, error) {
	if r.err != nil {
		return 0, r.err
	}

	if len(p) == 0 {
		return 0, nil
	}

	if r.block.IsEOF() {
		if err := r.nextBlock(); err != nil {
			return 0, err
		}
	}

	return r.block.Read(p)
}

// VirtualPosition returns the virtual position of the next byte Read returns.
//
// When the current block is exhausted the position points at the start of the
// next member, so the value is the same whether or not that block was loaded.
func (r *Reader) VirtualPosition() VirtualPosition {
	if !r.block.IsEOF() {
		return r.block.VirtualPosition()
	}

	return VirtualPosition(r.next << uncompressedBits)
}

// ReadBlockSize reads a 4-byte little-endian signed length prefix.
//
// Unlike Block.ReadBlockSize, the prefix may straddle two blocks. It returns
// io.EOF when the stream ends before the first byte, and errs.ErrShortRead when
// it ends partway through the prefix.
func (r *Reader) ReadBlockSize() (int32, error) {
	if r.err != nil {
		return 0, r.err
	}

	if r.block.Remaining() >= blockSizeLen {
		return r.block.ReadBlockSize()
	}

	var buf [blockSizeLen]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return 0, fmt.Errorf("%w: block size prefix truncated at %s", errs.ErrShortRead, r.VirtualPosition())
		}

		return 0, err
	}

	return endian.Int32(endian.GetLittleEndianEngine(), buf[:]), nil
}

// Seek positions the reader at vp. The source must implement io.Seeker.
//
// Seeking to the start of a block past the last one (end of file) is allowed;
// any other position outside the file fails with errs.ErrInvalidVirtualPosition.
func (r *Reader) Seek(vp VirtualPosition) error {
	seeker, ok := r.src.(io.Seeker)
	if !ok {
		return errs.ErrNotSeekable
	}

	cOffset := vp.Compressed()
	if _, err := seeker.Seek(int64(cOffset), io.SeekStart); err != nil { //nolint:gosec // G115: 48-bit offset
		return fmt.Errorf("bgzf: seek to %s: %w", vp, err)
	}

	r.next = cOffset
	r.block.Reset(cOffset, nil)
	r.err = nil

	data, size, err := r.readBlock()
	if errors.Is(err, io.EOF) {
		if vp.Uncompressed() == 0 {
			return nil
		}

		return fmt.Errorf("%w: %s is past end of file", errs.ErrInvalidVirtualPosition, vp)
	}
	if err != nil {
		r.err = err
		return err
	}

	r.next += uint64(size) //nolint:gosec // G115: size is positive
	r.sawEOFMarker = isEOFMarker(data, size)
	r.block.Reset(cOffset, data)

	return r.block.Seek(vp.Uncompressed())
}

// Close releases the reader's buffers. It does not close the source.
func (r *Reader) Close() error {
	if r.cdata == nil {
		return nil
	}

	r.block.Reset(r.next, nil)
	pool.PutBlockBuffer(r.cdata)
	pool.PutBlockBuffer(r.data)
	r.cdata = nil
	r.data = nil

	// The inflater only reports the last block's decode error here, which was
	// already returned to the caller.
	_ = r.flate.Close()

	return nil
}

// nextBlock loads the next non-empty block into r.block.
func (r *Reader) nextBlock() error {
	for {
		cOffset := r.next

		data, size, err := r.readBlock()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				r.err = err
			} else if !r.sawEOFMarker {
				r.cfg.logger.Warn("bgzf stream ended without EOF marker", zap.Uint64("coffset", cOffset))
			}

			return err
		}

		r.next += uint64(size) //nolint:gosec // G115: size is positive
		r.sawEOFMarker = isEOFMarker(data, size)
		r.block.Reset(cOffset, data)

		if len(data) > 0 {
			return nil
		}
	}
}

// readBlock reads and inflates one member at the current source position.
//
// Returns:
//   - []byte: Decompressed content, backed by r.data
//   - int: Total member size in the file
//   - error: io.EOF at a clean end of stream, otherwise a wrapped format or I/O error
func (r *Reader) readBlock() ([]byte, int, error) {
	if r.cdata == nil {
		return nil, 0, fmt.Errorf("bgzf: read from closed reader: %w", io.ErrClosedPipe)
	}

	cOffset := r.next

	if _, err := io.ReadFull(r.src, r.header[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, 0, io.EOF
		}

		return nil, 0, fmt.Errorf("%w: header at %d: %w", errs.ErrInvalidBlockHeader, cOffset, err)
	}

	xlen, err := parseFixedHeader(r.header[:])
	if err != nil {
		return nil, 0, fmt.Errorf("block at %d: %w", cOffset, err)
	}

	if cap(r.extra) < xlen {
		r.extra = make([]byte, xlen)
	}
	r.extra = r.extra[:xlen]

	if _, err = io.ReadFull(r.src, r.extra); err != nil {
		return nil, 0, fmt.Errorf("%w: extra field at %d: %w", errs.ErrInvalidBlockHeader, cOffset, err)
	}

	size, err := findBlockSize(r.extra)
	if err != nil {
		return nil, 0, fmt.Errorf("block at %d: %w", cOffset, err)
	}

	bodyLen := size - fixedHeaderLen - xlen
	if bodyLen < footerLen {
		return nil, 0, fmt.Errorf("%w: block at %d declares %d bytes", errs.ErrInvalidBlockSize, cOffset, size)
	}

	r.cdata.Reset()
	r.cdata.Grow(bodyLen)
	r.cdata.SetLength(bodyLen)
	body := r.cdata.Bytes()

	if _, err = io.ReadFull(r.src, body); err != nil {
		return nil, 0, fmt.Errorf("%w: block at %d truncated: %w", errs.ErrInvalidBlockSize, cOffset, err)
	}

	engine := endian.GetLittleEndianEngine()
	footer := body[len(body)-footerLen:]
	wantCRC := engine.Uint32(footer[0:4])
	isize := int(engine.Uint32(footer[4:8]))

	if isize > MaxUncompressedBlockSize {
		return nil, 0, fmt.Errorf("%w: block at %d inflates to %d bytes", errs.ErrInvalidBlockSize, cOffset, isize)
	}

	data, err := r.inflate(body[:len(body)-footerLen], isize)
	if err != nil {
		return nil, 0, fmt.Errorf("block at %d: %w", cOffset, err)
	}

	if got := crc32.ChecksumIEEE(data); got != wantCRC {
		return nil, 0, fmt.Errorf("%w: block at %d crc32 %#08x, want %#08x", errs.ErrChecksumMismatch, cOffset, got, wantCRC)
	}

	r.cfg.logger.Debug("bgzf block read",
		zap.Uint64("coffset", cOffset),
		zap.Int("csize", size),
		zap.Int("usize", isize),
	)

	return data, size, nil
}

func (r *Reader) inflate(cdata []byte, isize int) ([]byte, error) {
	r.cr.Reset(cdata)
	if err := r.flate.(flate.Resetter).Reset(r.cr, nil); err != nil {
		return nil, fmt.Errorf("reset inflater: %w", err)
	}

	r.data.Reset()
	r.data.Grow(isize)
	r.data.SetLength(isize)
	data := r.data.Bytes()

	if _, err := io.ReadFull(r.flate, data); err != nil {
		return nil, fmt.Errorf("%w: inflate: %w", errs.ErrInvalidBlockSize, err)
	}

	// The deflate stream must end, with its final block, exactly at ISIZE.
	var extra [1]byte
	n, err := r.flate.Read(extra[:])
	if n != 0 {
		return nil, fmt.Errorf("%w: deflate data exceeds ISIZE %d", errs.ErrInvalidBlockSize, isize)
	}
	if !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: deflate stream not terminated after %d bytes: %w", errs.ErrInvalidBlockSize, isize, err)
	}

	return data, nil
}

func isEOFMarker(data []byte, size int) bool {
	return len(data) == 0 && size == len(eofMarker)
}
