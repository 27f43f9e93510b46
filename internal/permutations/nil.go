package permutations

type null int

// NewNil returns the identity permutation. It makes pairings
// deterministic, which tests rely on.
func NewNil(n int64) (null, error) {
	return 0, nil
}

// Shuffle using the nil method
// just return the same value
func (k null) Shuffle(n int64) int64 {
	return n
}
