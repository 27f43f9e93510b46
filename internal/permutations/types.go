package permutations

import "errors"

// Permutations is an interface satisfied by anything with a proper
// Shuffle method: a bijection on [0, n) for the n it was built with.
type Permutations interface {
	Shuffle(n int64) int64
}

const (
	Kensler = iota
	Naive
	Nil
)

var ErrUnknownPermutation = errors.New("cannot create a permutation of unknown type")

// New returns a random permutation of [0, n) of type t
func New(t int, n int64) (Permutations, error) {
	switch t {
	case Kensler:
		return NewKensler(n)
	case Naive:
		return NewNaive(n)
	case Nil:
		return NewNil(n)
	default:
		return nil, ErrUnknownPermutation
	}
}
