package util

import (
	"bytes"
	"math/rand"
	"testing"
	"time"

	"github.com/alecthomas/unsafeslice"
	"github.com/stretchr/testify/require"
)

var prng = rand.New(rand.NewSource(time.Now().UnixNano()))

func sampleUint64Slice(prng *rand.Rand, u []uint64) {
	for i := range u {
		u[i] = prng.Uint64()
	}
}

func TestBitSetInByte(t *testing.T) {
	b := []byte{1}
	for i := 0; i < 8; i++ {
		require.Equal(t, i == 0, BitSetInByte(b, i), "bit %d", i)
	}

	b = []byte{161, 0x80}
	for i := 0; i < 16; i++ {
		want := i == 0 || i == 5 || i == 7 || i == 15
		require.Equal(t, want, BitSetInByte(b, i), "bit %d", i)
		if want {
			require.Equal(t, uint8(1), BitExtract(b, i))
		} else {
			require.Equal(t, uint8(0), BitExtract(b, i))
		}
	}
}

func TestSetBit(t *testing.T) {
	b := make([]byte, 3)
	for _, i := range []int{0, 3, 9, 23} {
		SetBit(b, i, 1)
		require.True(t, BitSetInByte(b, i))
	}
	require.Equal(t, []byte{0x09, 0x02, 0x80}, b)

	SetBit(b, 3, 0)
	require.Equal(t, []byte{0x01, 0x02, 0x80}, b)
}

func TestSampleBitSlice(t *testing.T) {
	for _, n := range []int{1, 7, 8, 13, 80, 107} {
		b, err := SampleBitSlice(prng, n)
		require.NoError(t, err)
		require.Len(t, b, PackedLen(n))
		for i := n; i < len(b)*8; i++ {
			require.False(t, BitSetInByte(b, i), "padding bit %d set for n=%d", i, n)
		}
	}
}

func TestXorInvolution(t *testing.T) {
	for _, l := range []int{0, 1, 7, 8, 9, 63, 64, 1000} {
		a := make([]byte, l)
		b := make([]byte, l)
		prng.Read(a)
		prng.Read(b)

		c, err := XorBytes(a, b)
		require.NoError(t, err)
		d, err := XorBytes(c, b)
		require.NoError(t, err)
		require.True(t, bytes.Equal(a, d), "xor(xor(a, b), b) != a for length %d", l)

		// in place
		e := make([]byte, l)
		copy(e, a)
		Xor(e, b)
		require.Equal(t, c, e)
		Xor(e, b)
		require.Equal(t, a, e)
	}

	_, err := XorBytes(make([]byte, 3), make([]byte, 4))
	require.ErrorIs(t, err, ErrByteLengthMissMatch)
	require.Panics(t, func() { Xor(make([]byte, 3), make([]byte, 4)) })
}

func TestDoubleXor(t *testing.T) {
	for _, l := range []int{0, 5, 16, 21} {
		a := make([]byte, l)
		b := make([]byte, l)
		c := make([]byte, l)
		prng.Read(a)
		prng.Read(b)
		prng.Read(c)

		want := make([]byte, l)
		for i := range want {
			want[i] = a[i] ^ b[i] ^ c[i]
		}

		DoubleXor(a, b, c)
		require.Equal(t, want, a)
	}
}

func TestZeroize(t *testing.T) {
	m, err := SampleRandomBitMatrix(prng, 4, 80)
	require.NoError(t, err)
	Zeroize(m)
	for _, row := range m {
		require.Equal(t, make([]byte, 10), row)
	}
}

// Note the double conversion of bytes to uint64s to bytes does
// result in added 0s.
func TestSliceConversions(t *testing.T) {
	for _, l := range []int{8, 16, 24, 32, 40, 48} {
		b := make([]byte, l)
		prng.Read(b)
		u := unsafeslice.Uint64SliceFromByteSlice(b)
		require.Equal(t, b, unsafeslice.ByteSliceFromUint64Slice(u))
	}

	for _, l := range []int{2, 8, 16, 34, 100} {
		u := make([]uint64, l)
		sampleUint64Slice(prng, u)
		b := unsafeslice.ByteSliceFromUint64Slice(u)
		require.Equal(t, u, unsafeslice.Uint64SliceFromByteSlice(b))
	}
}

func BenchmarkXor(b *testing.B) {
	a := make([]byte, 10000000)
	prng.Read(a)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Xor(a, a)
	}
}
