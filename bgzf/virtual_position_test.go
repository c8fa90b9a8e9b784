package bgzf

import (
	"testing"

	"github.com/arloliu/htscodec/errs"
	"github.com/stretchr/testify/require"
)

func TestNewVirtualPosition(t *testing.T) {
	vp, err := NewVirtualPosition(5, 10)
	require.NoError(t, err)
	require.Equal(t, VirtualPosition(5<<16|10), vp)
	require.Equal(t, uint64(5), vp.Compressed())
	require.Equal(t, uint16(10), vp.Uncompressed())
	require.Equal(t, "5/10", vp.String())
}

func TestNewVirtualPosition_Bounds(t *testing.T) {
	vp, err := NewVirtualPosition(MaxCompressedOffset, 0xFFFF)
	require.NoError(t, err)
	require.Equal(t, VirtualPosition(^uint64(0)), vp)
	require.Equal(t, uint64(MaxCompressedOffset), vp.Compressed())
	require.Equal(t, uint16(0xFFFF), vp.Uncompressed())

	_, err = NewVirtualPosition(MaxCompressedOffset+1, 0)
	require.ErrorIs(t, err, errs.ErrInvalidVirtualPosition)
}

func TestVirtualPosition_Ordering(t *testing.T) {
	positions := []struct {
		c uint64
		u uint16
	}{
		{0, 0}, {0, 1}, {0, 65535}, {1, 0}, {28, 500}, {65536, 0},
	}

	var prev VirtualPosition
	for i, p := range positions {
		vp, err := NewVirtualPosition(p.c, p.u)
		require.NoError(t, err)
		if i > 0 {
			require.Greater(t, vp, prev)
		}
		prev = vp
	}
}
