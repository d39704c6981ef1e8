package endian

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBig32RoundTrip(t *testing.T) {
	buf := make([]byte, 4)
	PutBig32(buf, 0xDEADBEEF)
	require.Equal(t, []byte{0xDE, 0xAD, 0xBE, 0xEF}, buf)
	require.Equal(t, uint32(0xDEADBEEF), Big32(buf))
}

func TestAlignUp(t *testing.T) {
	tests := []struct {
		n, a, want int
	}{
		{0, 4, 0},
		{1, 4, 4},
		{4, 4, 4},
		{5, 4, 8},
		{7, 4, 8},
		{5, 0, 5},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, AlignUp(tt.n, tt.a))
	}
}

func TestCellsForBytes(t *testing.T) {
	require.Equal(t, 0, CellsForBytes(0))
	require.Equal(t, 1, CellsForBytes(1))
	require.Equal(t, 1, CellsForBytes(4))
	require.Equal(t, 2, CellsForBytes(5))
}

func TestExtractCellsSingleWidth(t *testing.T) {
	buf := []byte{0x00, 0x00, 0x00, 0x2A}
	require.Equal(t, uint64(42), ExtractCells(buf, 1))
}

func TestExtractCellsDoubleWidth(t *testing.T) {
	buf := []byte{0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00}
	require.Equal(t, uint64(1)<<32, ExtractCells(buf, 2))
}

func TestPutCellsRoundTripsWithExtractCells(t *testing.T) {
	for _, width := range []int{1, 2} {
		buf := make([]byte, width*CellBytes)
		var value uint64 = 0x1122334455
		if width == 1 {
			value = 0x11223344
		}
		PutCells(buf, width, value)
		require.Equal(t, value, ExtractCells(buf, width))
	}
}
