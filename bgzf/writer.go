package bgzf

import (
	"fmt"
	"hash/crc32"
	"io"
	"sync"

	"github.com/klauspost/compress/flate"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/arloliu/htscodec/endian"
	"github.com/arloliu/htscodec/errs"
	"github.com/arloliu/htscodec/internal/options"
	"github.com/arloliu/htscodec/internal/pool"
)

// Writer compresses a byte stream into BGZF blocks.
//
// Input is cut into blocks of at most the configured block data size; each
// block becomes an independent gzip member. With WithWorkers(n) up to n full
// blocks are queued and compressed in parallel, then written in order.
// Close flushes the last partial block and appends the EOF marker.
//
// A failed compression or destination write stops the Writer. Blocks still
// queued at that point are discarded, so bytes counted by earlier Write calls
// may never reach the destination; every later call returns the same error.
//
// Writer is not safe for concurrent use. It never closes the destination.
type Writer struct {
	dst     io.Writer
	cfg     *WriterConfig
	buf     []byte   // block being filled
	queue   [][]byte // full blocks awaiting compression
	spare   [][]byte // recycled block buffers
	cOffset uint64   // compressed bytes written so far
	flaters sync.Pool
	err     error // first compression or destination error
	closed  bool
}

// NewWriter creates a Writer that emits BGZF members to dst.
//
// Parameters:
//   - dst: Destination for compressed output
//   - opts: Optional configuration (level, workers, block size, logger)
//
// Returns:
//   - *Writer: Writer at virtual position 0
//   - error: Invalid option
func NewWriter(dst io.Writer, opts ...WriterOption) (*Writer, error) {
	cfg := defaultWriterConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	w := &Writer{
		dst: dst,
		cfg: cfg,
		buf: make([]byte, 0, cfg.blockDataSize),
	}
	w.flaters.New = func() any {
		// The level was validated by WithCompressionLevel.
		fw, _ := flate.NewWriter(nil, cfg.level)
		return fw
	}

	return w, nil
}

// Write buffers p, emitting a block every time the current one fills up.
func (w *Writer) Write(p []byte) (int, error) {
	if w.err != nil {
		return 0, w.err
	}
	if w.closed {
		return 0, errs.ErrWriterClosed
	}

	written := 0
	for len(p) > 0 {
		n := min(len(p), w.cfg.blockDataSize-len(w.buf))
		w.buf = append(w.buf, p[:n]...)
		p = p[n:]
		written += n

		if len(w.buf) == w.cfg.blockDataSize {
			if err := w.enqueue(); err != nil {
				return written, err
			}
		}
	}

	return written, nil
}

// VirtualPosition returns the virtual position the next written byte will have.
//
// Queued blocks are compressed and written first, since the compressed offset
// of the current block is unknown until they are.
func (w *Writer) VirtualPosition() (VirtualPosition, error) {
	if err := w.drain(); err != nil {
		return 0, err
	}

	return NewVirtualPosition(w.cOffset, uint16(len(w.buf))) //nolint:gosec // G115: len(buf) < blockDataSize
}

// Flush compresses and writes everything buffered so far, ending the current
// block early if it is partially filled.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	if w.closed {
		return errs.ErrWriterClosed
	}

	if len(w.buf) > 0 {
		w.queue = append(w.queue, w.buf)
		w.buf = w.takeSpare()
	}

	return w.drain()
}

// Close flushes pending data and appends the EOF marker. The destination is
// left open. Calling Close twice is a no-op. After a write error Close returns
// that error and writes no EOF marker.
func (w *Writer) Close() error {
	if w.err != nil {
		return w.err
	}
	if w.closed {
		return nil
	}

	if err := w.Flush(); err != nil {
		return err
	}

	w.closed = true

	if _, err := w.dst.Write(eofMarker); err != nil {
		w.err = fmt.Errorf("bgzf: write eof marker: %w", err)
		return w.err
	}
	w.cOffset += uint64(len(eofMarker))

	return nil
}

func (w *Writer) enqueue() error {
	w.queue = append(w.queue, w.buf)
	w.buf = w.takeSpare()

	if len(w.queue) >= w.cfg.workers {
		return w.drain()
	}

	return nil
}

// drain compresses every queued block, in parallel when workers > 1, and
// writes the members in queue order. A failure is recorded in w.err.
func (w *Writer) drain() error {
	if w.err != nil {
		return w.err
	}
	if len(w.queue) == 0 {
		return nil
	}

	if err := w.drainQueue(); err != nil {
		w.err = err
		return err
	}

	return nil
}

func (w *Writer) drainQueue() error {
	members := make([]*pool.ByteBuffer, len(w.queue))
	defer func() {
		for _, bb := range members {
			pool.PutBlockBuffer(bb)
		}
		for _, data := range w.queue {
			w.spare = append(w.spare, data[:0])
		}
		w.queue = w.queue[:0]
	}()

	if len(w.queue) == 1 {
		members[0] = pool.GetBlockBuffer()
		if err := w.compressBlock(w.queue[0], members[0]); err != nil {
			return err
		}
	} else {
		var g errgroup.Group
		g.SetLimit(w.cfg.workers)

		for i, data := range w.queue {
			members[i] = pool.GetBlockBuffer()
			g.Go(func() error {
				return w.compressBlock(data, members[i])
			})
		}

		if err := g.Wait(); err != nil {
			return err
		}
	}

	for i, bb := range members {
		if _, err := bb.WriteTo(w.dst); err != nil {
			return fmt.Errorf("bgzf: write block at %d: %w", w.cOffset, err)
		}

		w.cfg.logger.Debug("bgzf block written",
			zap.Uint64("coffset", w.cOffset),
			zap.Int("csize", bb.Len()),
			zap.Int("usize", len(w.queue[i])),
		)
		w.cOffset += uint64(bb.Len()) //nolint:gosec // G115: length is positive
	}

	return nil
}

// compressBlock deflates data into a complete BGZF member in dst.
func (w *Writer) compressBlock(data []byte, dst *pool.ByteBuffer) error {
	dst.Reset()
	dst.B = appendHeader(dst.B, 0) // BSIZE patched below

	fw, _ := w.flaters.Get().(*flate.Writer)
	defer w.flaters.Put(fw)

	fw.Reset(dst)
	if _, err := fw.Write(data); err != nil {
		return fmt.Errorf("bgzf: deflate: %w", err)
	}
	if err := fw.Close(); err != nil {
		return fmt.Errorf("bgzf: deflate: %w", err)
	}

	engine := endian.GetLittleEndianEngine()
	dst.B = engine.AppendUint32(dst.B, crc32.ChecksumIEEE(data))
	dst.B = engine.AppendUint32(dst.B, uint32(len(data))) //nolint:gosec // G115: len(data) <= DefaultBlockDataSize

	size := dst.Len()
	if size > MaxBlockSize {
		return fmt.Errorf("%w: compressed block is %d bytes", errs.ErrInvalidBlockSize, size)
	}
	engine.PutUint16(dst.B[headerLen-2:headerLen], uint16(size-1)) //nolint:gosec // G115: size <= MaxBlockSize

	return nil
}

func (w *Writer) takeSpare() []byte {
	if n := len(w.spare); n > 0 {
		buf := w.spare[n-1]
		w.spare = w.spare[:n-1]

		return buf
	}

	return make([]byte, 0, w.cfg.blockDataSize)
}
