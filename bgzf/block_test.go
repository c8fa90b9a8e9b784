package bgzf

import (
	"testing"

	"github.com/arloliu/htscodec/errs"
	"github.com/stretchr/testify/require"
)

func TestNewBlock(t *testing.T) {
	b := NewBlock()

	require.Zero(t, b.COffset())
	require.Zero(t, b.Position())
	require.Zero(t, b.Len())
	require.True(t, b.IsEOF())
	require.Equal(t, VirtualPosition(0), b.VirtualPosition())

	n, err := b.Read(make([]byte, 8))
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestBlock_Read_Exhaustion(t *testing.T) {
	data := []byte("noodles")
	b := NewBlock()
	b.Reset(0, data)

	buf := make([]byte, 3)
	total := 0
	for total < len(data) {
		require.False(t, b.IsEOF(), "exhausted after %d of %d bytes", total, len(data))

		n, err := b.Read(buf)
		require.NoError(t, err)
		require.Positive(t, n)
		require.Equal(t, data[total:total+n], buf[:n])
		total += n
	}

	require.True(t, b.IsEOF())
	require.Equal(t, uint64(len(data)), b.Position())

	for range 3 {
		n, err := b.Read(buf)
		require.NoError(t, err)
		require.Zero(t, n)
	}
}

func TestBlock_Read_ShortCountAtBoundary(t *testing.T) {
	b := NewBlock()
	b.Reset(0, []byte{1, 2, 3, 4, 5})

	buf := make([]byte, 4)
	n, err := b.Read(buf)
	require.NoError(t, err)
	require.Equal(t, 4, n)

	n, err = b.Read(buf)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, byte(5), buf[0])
	require.True(t, b.IsEOF())
}

func TestBlock_VirtualPosition(t *testing.T) {
	tests := []struct {
		name     string
		cOffset  uint64
		position int
		expected uint64
	}{
		{"origin", 0, 0, 0},
		{"small offsets", 5, 10, 5<<16 | 10},
		{"max in-block offset", 5, 65535, 5*65536 + 65535},
		{"large compressed offset", 1 << 40, 7, 1<<56 | 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBlock()
			b.Reset(0, make([]byte, tt.position))
			b.SetCOffset(tt.cOffset)

			_, err := b.Read(make([]byte, tt.position))
			require.NoError(t, err)

			require.Equal(t, uint64(tt.position), b.Position())
			require.Equal(t, VirtualPosition(tt.expected), b.VirtualPosition())
			require.Equal(t, tt.cOffset*65536+uint64(tt.position), uint64(b.VirtualPosition()))
		})
	}
}

func TestBlock_SetCOffset(t *testing.T) {
	b := NewBlock()
	b.SetCOffset(1234)
	require.Equal(t, uint64(1234), b.COffset())
}

func TestBlock_ReadBlockSize(t *testing.T) {
	b := NewBlock()
	b.Reset(0, []byte{0x08, 0x00, 0x00, 0x00, 0xfe, 0xff, 0xff, 0xff, 0xaa})

	size, err := b.ReadBlockSize()
	require.NoError(t, err)
	require.Equal(t, int32(8), size)
	require.Equal(t, uint64(4), b.Position())

	size, err = b.ReadBlockSize()
	require.NoError(t, err)
	require.Equal(t, int32(-2), size)
	require.Equal(t, uint64(8), b.Position())
}

func TestBlock_ReadBlockSize_ShortRead(t *testing.T) {
	for remaining := range 4 {
		b := NewBlock()
		b.Reset(0, make([]byte, 10))
		_, err := b.Read(make([]byte, 10-remaining))
		require.NoError(t, err)

		before := b.Position()
		_, err = b.ReadBlockSize()
		require.ErrorIs(t, err, errs.ErrShortRead)
		require.Equal(t, before, b.Position(), "cursor moved with %d bytes remaining", remaining)
		require.Equal(t, remaining, b.Remaining())
	}
}

func TestBlock_Reset_ReusesForNextUnit(t *testing.T) {
	b := NewBlock()
	b.Reset(0, []byte("first"))
	_, _ = b.Read(make([]byte, 5))
	require.True(t, b.IsEOF())

	b.Reset(100, []byte("second"))
	require.False(t, b.IsEOF())
	require.Equal(t, uint64(100), b.COffset())
	require.Zero(t, b.Position())
	require.Equal(t, VirtualPosition(100<<16), b.VirtualPosition())
}

func TestBlock_Seek(t *testing.T) {
	b := NewBlock()
	b.Reset(0, []byte("abcdef"))

	require.NoError(t, b.Seek(4))
	buf := make([]byte, 4)
	n, _ := b.Read(buf)
	require.Equal(t, "ef", string(buf[:n]))

	require.NoError(t, b.Seek(6))
	require.True(t, b.IsEOF())

	require.ErrorIs(t, b.Seek(7), errs.ErrInvalidVirtualPosition)
}
