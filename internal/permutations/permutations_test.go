package permutations

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

const xxx = 214

func genSequence(p Permutations, n int64) (data []int64) {
	for i := int64(0); i < n; i++ {
		data = append(data, p.Shuffle(i))
	}
	return
}

func TestBijection(t *testing.T) {
	for _, pt := range []int{Kensler, Naive, Nil} {
		for _, n := range []int64{1, 2, 3, 107, xxx} {
			p, err := New(pt, n)
			require.NoError(t, err)

			seen := make([]bool, n)
			for _, v := range genSequence(p, n) {
				require.True(t, v >= 0 && v < n, "type %d: %d out of range [0, %d)", pt, v, n)
				require.False(t, seen[v], "type %d: %d produced twice", pt, v)
				seen[v] = true
			}
		}
	}
}

func TestModelSingle(t *testing.T) {
	var seq, sent int64
	var max int64 = xxx
	// make a cache
	var cache = make([]int64, xxx)
	// create the permutations
	p, err := NewKensler(xxx)
	require.NoError(t, err)
	// create the sequence to compare to
	shuffle := genSequence(p, xxx)
	// output
	var output = make([]int64, xxx)
	// input
	var input = make([]int64, xxx)

	// run it the same way a streaming shuffler runs it
	for i := 0; i < xxx; i++ {
		input[i] = int64(i)
		next := p.Shuffle(sent)

		if next == seq {
			// we fall perfectly in sequence, write it out
			output[sent] = int64(i)
			sent++
		} else {
			// cache the current sequence
			cache[seq] = int64(i)
		}
		seq++

		if seq == max {
			for i := sent; i < max; i++ {
				pos := p.Shuffle(i)
				output[i] = cache[pos]
			}
		}
	}

	// output & sequence should be the same
	require.Equal(t, shuffle, output)

	// should be able to reverse the sequence
	for k, v := range output {
		require.Equal(t, input[p.Shuffle(int64(k))], v)
	}
}

func TestUnknown(t *testing.T) {
	_, err := New(42, 10)
	require.ErrorIs(t, err, ErrUnknownPermutation)
}

func TestKenslerSeedRange(t *testing.T) {
	// a seed drawn from [0, l) would leave only l distinct shuffles
	var wide bool
	for i := 0; i < 64 && !wide; i++ {
		p, err := NewKensler(xxx)
		require.NoError(t, err)
		wide = p.p >= xxx
	}
	require.True(t, wide, "every seed fell below %d", xxx)
}

func TestKenslerLargeSeed(t *testing.T) {
	for _, n := range []uint32{3, 107, xxx} {
		p := kensler{l: n, p: math.MaxUint32}
		seen := make([]bool, n)
		for _, v := range genSequence(p, int64(n)) {
			require.False(t, seen[v], "n=%d: %d produced twice", n, v)
			seen[v] = true
		}
	}
}
