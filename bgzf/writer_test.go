package bgzf

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/klauspost/compress/flate"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/arloliu/htscodec/errs"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type failAfterWriter struct {
	limit int
	n     int
}

var errDiskFull = errors.New("disk full")

func (f *failAfterWriter) Write(p []byte) (int, error) {
	if f.n+len(p) > f.limit {
		return 0, errDiskFull
	}
	f.n += len(p)

	return len(p), nil
}

func TestWriter_EmptyStreamIsEOFMarker(t *testing.T) {
	var out bytes.Buffer
	w, err := NewWriter(&out)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	require.Equal(t, EOFMarker(), out.Bytes())
}

func TestWriter_BlockHeaderLayout(t *testing.T) {
	file := compressBGZF(t, []byte("ACGT"))

	require.Equal(t, []byte{0x1f, 0x8b, 0x08, 0x04}, file[:4])
	require.Equal(t, []byte{0x06, 0x00, 'B', 'C', 0x02, 0x00}, file[10:16])

	bsize := int(file[16]) | int(file[17])<<8
	require.Equal(t, len(file)-len(eofMarker), bsize+1)
	require.Equal(t, eofMarker, file[bsize+1:])

	// ISIZE of the data block.
	require.Equal(t, []byte{4, 0, 0, 0}, file[bsize-3:bsize+1])
}

func TestWriter_SplitsBlocksAtDataSize(t *testing.T) {
	var out bytes.Buffer
	w, err := NewWriter(&out, WithBlockDataSize(100))
	require.NoError(t, err)

	n, err := w.Write(testPayload(250))
	require.NoError(t, err)
	require.Equal(t, 250, n)

	vp, err := w.VirtualPosition()
	require.NoError(t, err)
	require.Equal(t, uint16(50), vp.Uncompressed())
	require.Equal(t, uint64(out.Len()), vp.Compressed())
	require.NoError(t, w.Close())

	r, err := NewReader(bytes.NewReader(out.Bytes()))
	require.NoError(t, err)
	defer r.Close()

	var sizes []int
	buf := make([]byte, 1024)
	for {
		_, err := r.Read(buf)
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		sizes = append(sizes, r.Block().Len())
	}
	require.Equal(t, []int{100, 100, 50}, sizes)
}

func TestWriter_ParallelMatchesSequential(t *testing.T) {
	data := testPayload(10*DefaultBlockDataSize + 99)

	sequential := compressBGZF(t, data, WithWorkers(1))
	parallel := compressBGZF(t, data, WithWorkers(4))
	require.Equal(t, sequential, parallel)

	r, err := NewReader(bytes.NewReader(parallel))
	require.NoError(t, err)
	defer r.Close()

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, data, got)
}

func TestWriter_VirtualPositionDrainsQueue(t *testing.T) {
	var out bytes.Buffer
	w, err := NewWriter(&out, WithWorkers(8), WithBlockDataSize(64))
	require.NoError(t, err)

	_, err = w.Write(testPayload(64*3 + 10))
	require.NoError(t, err)
	require.Zero(t, out.Len(), "blocks should still be queued")

	vp, err := w.VirtualPosition()
	require.NoError(t, err)
	require.Equal(t, uint64(out.Len()), vp.Compressed())
	require.Equal(t, uint16(10), vp.Uncompressed())
	require.NoError(t, w.Close())
}

func TestWriter_Flush(t *testing.T) {
	var out bytes.Buffer
	w, err := NewWriter(&out)
	require.NoError(t, err)

	_, err = w.Write([]byte("first"))
	require.NoError(t, err)
	require.NoError(t, w.Flush())
	firstLen := out.Len()
	require.Positive(t, firstLen)

	vp, err := w.VirtualPosition()
	require.NoError(t, err)
	require.Equal(t, VirtualPosition(uint64(firstLen)<<16), vp)

	_, err = w.Write([]byte("second"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	r, err := NewReader(bytes.NewReader(out.Bytes()))
	require.NoError(t, err)
	defer r.Close()

	require.NoError(t, r.Seek(vp))
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, "second", string(got))
}

func TestWriter_WriteAfterClose(t *testing.T) {
	var out bytes.Buffer
	w, err := NewWriter(&out)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	_, err = w.Write([]byte("late"))
	require.ErrorIs(t, err, errs.ErrWriterClosed)
	require.ErrorIs(t, w.Flush(), errs.ErrWriterClosed)
	require.Equal(t, EOFMarker(), out.Bytes())
}

func TestWriter_DestinationErrorPropagates(t *testing.T) {
	w, err := NewWriter(&failAfterWriter{limit: 10}, WithBlockDataSize(16))
	require.NoError(t, err)

	_, err = w.Write(testPayload(16))
	require.ErrorIs(t, err, errDiskFull)
}

func TestWriter_ErrorIsSticky(t *testing.T) {
	dst := &failAfterWriter{limit: 10}
	w, err := NewWriter(dst, WithBlockDataSize(16))
	require.NoError(t, err)

	_, err = w.Write(testPayload(16))
	require.ErrorIs(t, err, errDiskFull)

	n, err := w.Write([]byte("more"))
	require.Zero(t, n)
	require.ErrorIs(t, err, errDiskFull)
	require.ErrorIs(t, w.Flush(), errDiskFull)

	_, err = w.VirtualPosition()
	require.ErrorIs(t, err, errDiskFull)

	require.ErrorIs(t, w.Close(), errDiskFull)
	require.ErrorIs(t, w.Close(), errDiskFull)
	require.Zero(t, dst.n, "no EOF marker after a failed block")
}

func TestWriter_ParallelDestinationError(t *testing.T) {
	w, err := NewWriter(&failAfterWriter{limit: 10}, WithWorkers(4), WithBlockDataSize(16))
	require.NoError(t, err)

	_, err = w.Write(testPayload(16 * 3))
	require.NoError(t, err)
	require.ErrorIs(t, w.Close(), errDiskFull)
	require.ErrorIs(t, w.Close(), errDiskFull)
}

func TestWriter_CompressionLevels(t *testing.T) {
	data := testPayload(20000)

	for _, level := range []int{flate.HuffmanOnly, flate.NoCompression, flate.BestSpeed, flate.BestCompression} {
		file := compressBGZF(t, data, WithCompressionLevel(level))

		r, err := NewReader(bytes.NewReader(file))
		require.NoError(t, err)

		got, err := io.ReadAll(r)
		require.NoError(t, err)
		require.Equal(t, data, got, "level %d", level)
		require.NoError(t, r.Close())
	}
}

func TestWriter_LogsBlocks(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)

	var out bytes.Buffer
	w, err := NewWriter(&out, WithWriterLogger(zap.New(core)), WithBlockDataSize(10))
	require.NoError(t, err)

	_, err = w.Write(testPayload(25))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	require.Equal(t, 3, logs.FilterMessage("bgzf block written").Len())
}

func TestNewWriter_InvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opt  WriterOption
	}{
		{"level too high", WithCompressionLevel(10)},
		{"level too low", WithCompressionLevel(-3)},
		{"negative workers", WithWorkers(-1)},
		{"zero block size", WithBlockDataSize(0)},
		{"oversized block", WithBlockDataSize(MaxBlockSize)},
		{"nil logger", WithWriterLogger(nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewWriter(io.Discard, tt.opt)
			require.Error(t, err)
		})
	}
}

func TestNewWriter_ZeroWorkersUsesGOMAXPROCS(t *testing.T) {
	w, err := NewWriter(io.Discard, WithWorkers(0))
	require.NoError(t, err)
	require.Positive(t, w.cfg.workers)
}
