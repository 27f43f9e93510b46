//go:build amd64 && !generic

package util

import (
	"github.com/alecthomas/unsafeslice"
)

// Xor performs dst ^= a in place. The part of the slices whose
// length is divisible by 8 is reinterpreted as uint64 words; the
// trailing bytes are handled one at a time. Panic if a and dst do
// not have the same length.
func Xor(dst, a []byte) {
	if len(dst) != len(a) {
		panic(ErrByteLengthMissMatch)
	}
	// the casts take the address of the first byte
	if len(dst) == 0 {
		return
	}

	castDst := unsafeslice.Uint64SliceFromByteSlice(dst)
	castA := unsafeslice.Uint64SliceFromByteSlice(a)

	for i := range castDst {
		castDst[i] ^= castA[i]
	}

	for j := len(castDst) * 8; j < len(dst); j++ {
		dst[j] ^= a[j]
	}
}

// DoubleXor performs dst ^= a ^ b in place, word by word when
// possible. Panic if a, b and dst do not have the same length.
func DoubleXor(dst, a, b []byte) {
	if len(dst) != len(a) || len(dst) != len(b) {
		panic(ErrByteLengthMissMatch)
	}
	if len(dst) == 0 {
		return
	}

	castDst := unsafeslice.Uint64SliceFromByteSlice(dst)
	castA := unsafeslice.Uint64SliceFromByteSlice(a)
	castB := unsafeslice.Uint64SliceFromByteSlice(b)

	for i := range castDst {
		castDst[i] ^= castA[i] ^ castB[i]
	}

	for j := len(castDst) * 8; j < len(dst); j++ {
		dst[j] ^= a[j] ^ b[j]
	}
}
