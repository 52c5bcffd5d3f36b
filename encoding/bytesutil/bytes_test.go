package bytesutil_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eth2-core/beacon-engine/encoding/bytesutil"
)

func TestBytes8RoundTrip(t *testing.T) {
	b := bytesutil.Bytes8(1234567890)
	require.Len(t, b, 8)
	require.Equal(t, uint64(1234567890), bytesutil.FromBytes8(b))
}

func TestBytes4RoundTrip(t *testing.T) {
	b := bytesutil.Bytes4(12345)
	require.Len(t, b, 4)
	require.Equal(t, uint64(12345), bytesutil.FromBytes4(b))
}

func TestToBytesPadsShorterThanEight(t *testing.T) {
	b := bytesutil.ToBytes(1, 2)
	require.Equal(t, []byte{1, 0}, b)
}

func TestToBytesPadsLongerThanEight(t *testing.T) {
	b := bytesutil.ToBytes(1, 16)
	require.Len(t, b, 16)
	require.Equal(t, byte(1), b[0])
	for _, x := range b[8:] {
		require.Equal(t, byte(0), x)
	}
}

func TestToBytes32TruncatesAndPads(t *testing.T) {
	short := bytesutil.ToBytes32([]byte{1, 2, 3})
	require.Equal(t, byte(1), short[0])
	require.Equal(t, byte(0), short[31])

	long := bytesutil.ToBytes32(make([]byte, 40))
	require.Len(t, long, 32)
}

func TestSetBitAndBitAt(t *testing.T) {
	bitfield := make([]byte, 1)
	bytesutil.SetBit(bitfield, 3)
	require.True(t, bytesutil.BitAt(bitfield, 3))
	require.False(t, bytesutil.BitAt(bitfield, 2))
}
