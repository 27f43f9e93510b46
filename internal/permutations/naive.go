package permutations

import (
	"crypto/rand"
	"math/big"
)

type naive struct {
	p []int64
}

// NewNaive draws a uniform permutation of [0, n) with a
// Fisher-Yates shuffle fed by crypto/rand
func NewNaive(n int64) (naive, error) {
	var p = make([]int64, n)
	// Initialize a trivial permutation
	for i := int64(0); i < n; i++ {
		p[i] = i
	}

	// and then shuffle it, swapping each position with a
	// uniformly chosen position at or below it
	for i := n - 1; i > 0; i-- {
		j, err := rand.Int(rand.Reader, big.NewInt(i+1))
		if err != nil {
			return naive{}, err
		}
		p[i], p[j.Int64()] = p[j.Int64()], p[i]
	}

	return naive{p: p}, nil
}

// Shuffle using the naive method
// with n the number to permute/the index of the permutation vector.
func (k naive) Shuffle(n int64) int64 {
	return k.p[n]
}
