package util

import (
	"errors"
	"io"
)

var ErrByteLengthMissMatch = errors.New("provided bytes do not have the same length for bit operations")

// PackedLen returns the number of bytes needed to hold n bits.
func PackedLen(n int) int {
	return (n + 7) / 8
}

// XorBytes returns a fresh slice holding a ^ b
// if a and b are the same length
func XorBytes(a, b []byte) (dst []byte, err error) {
	if len(a) != len(b) {
		return nil, ErrByteLengthMissMatch
	}

	dst = make([]byte, len(a))
	copy(dst, a)
	Xor(dst, b)
	return dst, nil
}

// BitSetInByte reports whether the i-th bit of the packed bit
// slice b is set. Bits are numbered least significant first
// within each byte.
func BitSetInByte(b []byte, i int) bool {
	return b[i/8]&(1<<(i%8)) != 0
}

// BitExtract returns the i-th bit of b as 0 or 1.
func BitExtract(b []byte, i int) uint8 {
	return (b[i/8] >> (i % 8)) & 1
}

// SetBit sets the i-th bit of b to the low bit of v.
func SetBit(b []byte, i int, v uint8) {
	if v&1 == 1 {
		b[i/8] |= 1 << (i % 8)
	} else {
		b[i/8] &^= 1 << (i % 8)
	}
}

// SampleBitSlice returns n pseudorandom bits packed into
// PackedLen(n) bytes, with the unused high bits of the
// last byte cleared.
// prng is a reader from either crypto/rand.Reader
// or math/rand.Rand
func SampleBitSlice(prng io.Reader, n int) ([]byte, error) {
	b := make([]byte, PackedLen(n))
	if _, err := io.ReadFull(prng, b); err != nil {
		return nil, err
	}

	if r := n % 8; r != 0 {
		b[len(b)-1] &= byte(1<<r) - 1
	}

	return b, nil
}

// SampleRandomBitMatrix returns rows packed bit strings of
// cols bits each, read from prng.
func SampleRandomBitMatrix(prng io.Reader, rows, cols int) ([][]byte, error) {
	matrix := make([][]byte, rows)
	for row := range matrix {
		var err error
		if matrix[row], err = SampleBitSlice(prng, cols); err != nil {
			return nil, err
		}
	}

	return matrix, nil
}

// Zeroize overwrites every row of matrix with zeros.
func Zeroize(matrix [][]byte) {
	for _, row := range matrix {
		clear(row)
	}
}
