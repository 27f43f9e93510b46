package crypto

import (
	"bytes"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/zeebo/blake3"
)

var (
	p      = []byte("example testing plaintext that holds important secrets: %QWEQW$##%Y^&%^*(*)&, []m")
	aesKey = make([]byte, 32)
	xorKey = make([]byte, 32)
	prng   = rand.New(rand.NewSource(time.Now().UnixNano()))
)

func init() {
	prng.Read(aesKey)
	prng.Read(xorKey)
}

func TestGCMEncryptDecrypt(t *testing.T) {
	ciphertext, err := Encrypt(GCM, aesKey, 0, p)
	require.NoError(t, err)
	require.Len(t, ciphertext, EncryptLen(GCM, len(p)))

	plain, err := Decrypt(GCM, aesKey, 0, ciphertext)
	require.NoError(t, err)
	require.Equal(t, p, plain)

	// tampering is detected
	ciphertext[len(ciphertext)-1] ^= 1
	_, err = Decrypt(GCM, aesKey, 0, ciphertext)
	require.Error(t, err)

	_, err = Decrypt(GCM, aesKey, 0, ciphertext[:nonceSize])
	require.ErrorIs(t, err, ErrShortCiphertext)
}

func TestXOREncryptDecrypt(t *testing.T) {
	for _, mode := range []int{XORBlake2, XORBlake3} {
		ciphertext, err := Encrypt(mode, xorKey, 0, p)
		require.NoError(t, err)
		require.Len(t, ciphertext, EncryptLen(mode, len(p)))

		// the wrong branch index does not decrypt
		plain, err := Decrypt(mode, xorKey, 1, ciphertext)
		require.NoError(t, err)
		require.False(t, bytes.Equal(p, plain), "mode %d decrypted with the wrong index", mode)

		plain, err = Decrypt(mode, xorKey, 0, ciphertext)
		require.NoError(t, err)
		require.Equal(t, p, plain)
	}

	_, err := Encrypt(42, xorKey, 0, p)
	require.ErrorIs(t, err, ErrUnknownCipherMode)
}

func TestCRHashMask(t *testing.T) {
	for _, mode := range []int{XORBlake3, XORBlake2} {
		h, err := NewCRHash(mode)
		require.NoError(t, err)

		dst := append([]byte(nil), p...)
		require.NoError(t, h.Mask(dst, 7, 1, xorKey))
		require.False(t, bytes.Equal(p, dst))

		// masking twice with the same inputs is the identity
		require.NoError(t, h.Mask(dst, 7, 1, xorKey))
		require.Equal(t, p, dst)

		// the index and the branch both change the mask
		a := make([]byte, 32)
		b := make([]byte, 32)
		c := make([]byte, 32)
		require.NoError(t, h.Mask(a, 7, 0, xorKey))
		require.NoError(t, h.Mask(b, 8, 0, xorKey))
		require.NoError(t, h.Mask(c, 7, 1, xorKey))
		require.NotEqual(t, a, b)
		require.NotEqual(t, a, c)

		require.NoError(t, h.Mask(nil, 0, 0, xorKey))
	}

	_, err := NewCRHash(GCM)
	require.ErrorIs(t, err, ErrUnknownHashMode)
}

func TestPRG(t *testing.T) {
	seed := make([]byte, 16)
	prng.Read(seed)

	for _, mode := range []int{PRGBlake3, PRGAESCTR} {
		g, err := NewPRG(mode)
		require.NoError(t, err)

		a := make([]byte, 1000)
		b := make([]byte, 1000)
		require.NoError(t, g.Expand(a, seed))
		require.NoError(t, g.Expand(b, seed))
		require.Equal(t, a, b, "mode %d is not deterministic", mode)

		// prefix consistency: shorter outputs are prefixes of longer ones
		c := make([]byte, 100)
		require.NoError(t, g.Expand(c, seed))
		require.Equal(t, a[:100], c)

		other := append([]byte(nil), seed...)
		other[0] ^= 1
		require.NoError(t, g.Expand(b, other))
		require.NotEqual(t, a, b)
	}

	x := make([]byte, 64)
	y := make([]byte, 64)
	g0, _ := NewPRG(PRGBlake3)
	g1, _ := NewPRG(PRGAESCTR)
	require.NoError(t, g0.Expand(x, seed))
	require.NoError(t, g1.Expand(y, seed))
	require.NotEqual(t, x, y)

	_, err := NewPRG(9)
	require.ErrorIs(t, err, ErrUnknownPRGMode)
}

func BenchmarkBlake3(b *testing.B) {
	for i := 0; i < b.N; i++ {
		blake3.Sum256(p)
	}
}

func BenchmarkCRHashBlake3(b *testing.B) {
	h, _ := NewCRHash(XORBlake3)
	dst := make([]byte, 64)
	for i := 0; i < b.N; i++ {
		h.Mask(dst, uint64(i), 0, xorKey)
	}
}

func BenchmarkPRGAESCTR(b *testing.B) {
	g, _ := NewPRG(PRGAESCTR)
	dst := make([]byte, 1<<16)
	for i := 0; i < b.N; i++ {
		g.Expand(dst, xorKey)
	}
}
