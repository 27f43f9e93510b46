package hash

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

var xxx = []byte("k=80 m=8000 variant=iknp lengths=0000000400000004")

func makeSalt(t testing.TB) []byte {
	s := make([]byte, SaltLength)
	_, err := rand.Read(s)
	require.NoError(t, err)
	return s
}

func TestHashers(t *testing.T) {
	for _, ht := range []int{Murmur3, Metro, Highway} {
		salt := makeSalt(t)
		h, err := New(ht, salt)
		require.NoError(t, err)

		// same salt, same input
		h2, err := New(ht, append([]byte(nil), salt...))
		require.NoError(t, err)
		require.Equal(t, h.Hash64(xxx), h2.Hash64(xxx), "hasher %d is not stable", ht)

		// different salt
		h3, err := New(ht, makeSalt(t))
		require.NoError(t, err)
		require.NotEqual(t, h.Hash64(xxx), h3.Hash64(xxx), "hasher %d ignores its salt", ht)

		// different input
		require.NotEqual(t, h.Hash64(xxx), h.Hash64(xxx[1:]))
	}
}

func TestHasherErrors(t *testing.T) {
	_, err := New(Murmur3, make([]byte, 3))
	require.ErrorIs(t, err, ErrSaltLengthMismatch)
	_, err = New(Highway, make([]byte, 31))
	require.ErrorIs(t, err, ErrSaltLengthMismatch)
	_, err = New(99, makeSalt(t))
	require.ErrorIs(t, err, ErrUnknownHash)
}

func BenchmarkMurmur3(b *testing.B) {
	h, _ := NewMurmur3Hasher(makeSalt(b))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		h.Hash64(xxx)
	}
}

func BenchmarkMetro(b *testing.B) {
	h, _ := NewMetroHasher(makeSalt(b))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		h.Hash64(xxx)
	}
}

func BenchmarkHighway(b *testing.B) {
	h, _ := NewHighwayHasher(makeSalt(b))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		h.Hash64(xxx)
	}
}
