package otext

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"testing"

	"github.com/optable/otext/internal/permutations"
	"github.com/optable/otext/internal/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNNOBCorrelation(t *testing.T) {
	m := 160
	cfg := NewConfig(k)
	num := BaseCount(NNOB, k)
	base := newTrustedOT()
	sender := &nnobSender{cfg: cfg, baseOT: base}
	receiver := &nnobReceiver{cfg: cfg, baseOT: base}
	choices := genChoices(t, m)

	sconn, rconn := net.Pipe()
	defer sconn.Close()
	defer rconn.Close()

	type result struct {
		s   []byte
		Q   [][]byte
		err error
	}
	res := make(chan result, 1)
	go func() {
		s, Q, err := sender.correlate(num, m, sconn)
		res <- result{s, Q, err}
	}()

	T0, err := receiver.correlate(choices, num, m, rconn)
	require.NoError(t, err)
	r := <-res
	require.NoError(t, r.err)

	require.Len(t, r.Q, num)
	for i := range T0 {
		want := append([]byte(nil), T0[i]...)
		if util.BitSetInByte(r.s, i) {
			util.Xor(want, choices)
		}
		require.Equal(t, want, r.Q[i], "row %d", i)
	}
}

func TestNNOB(t *testing.T) {
	// 79 gives an odd number of base OTs
	for _, sec := range []int{79, 80, 128} {
		for _, m := range []int{136, 800} {
			t.Run(fmt.Sprintf("k=%d/m=%d", sec, m), func(t *testing.T) {
				base := newTrustedOT()
				cfg := NewConfig(sec)
				sender, err := NewSender(NNOB, cfg, base)
				require.NoError(t, err)
				receiver, err := NewReceiver(NNOB, cfg, base)
				require.NoError(t, err)

				messages := genMessages(t, m, 8)
				choices := genChoices(t, m)

				out, serr, rerr := run(sender, receiver, messages, choices, lengths(messages))
				require.NoError(t, serr)
				require.NoError(t, rerr)
				requireChosen(t, messages, choices, out)
				assert.EqualValues(t, BaseCount(NNOB, sec), base.instances.Load())
			})
		}
	}
}

func TestNNOBKenslerPermutation(t *testing.T) {
	base := newTrustedOT()
	cfg := NewConfig(k)
	cfg.Permutation = permutations.Kensler

	sender, err := NewSender(NNOB, cfg, base)
	require.NoError(t, err)
	receiver, err := NewReceiver(NNOB, cfg, base)
	require.NoError(t, err)

	messages := genMessages(t, 256, 8)
	choices := genChoices(t, 256)

	out, serr, rerr := run(sender, receiver, messages, choices, lengths(messages))
	require.NoError(t, serr)
	require.NoError(t, rerr)
	requireChosen(t, messages, choices, out)
}

func TestNNOBPairingsDiffer(t *testing.T) {
	num := BaseCount(NNOB, k)
	s := make([]byte, util.PackedLen(num))
	for _, pt := range []int{permutations.Naive, permutations.Kensler} {
		cfg := NewConfig(k)
		cfg.Permutation = pt
		sender := &nnobSender{cfg: cfg}

		first, err := sender.pair(num, s, io.Discard)
		require.NoError(t, err)
		second, err := sender.pair(num, s, io.Discard)
		require.NoError(t, err)
		assert.NotEqual(t, first, second, "permutation type %d", pt)
	}
}

func TestNNOBCheatingReceiver(t *testing.T) {
	m := 160
	base := newTrustedOT()
	cfg := NewConfig(k)
	cfg.Permutation = permutations.Nil

	// with s all ones every row of U is folded into Q, and row 0 is
	// paired with row 1
	sender := &nnobSender{cfg: cfg, baseOT: base, rand: bytes.NewReader(bytes.Repeat([]byte{0xff}, 64))}
	receiver := &nnobReceiver{cfg: cfg, baseOT: base, tamper: func(u [][]byte) {
		u[0][0] ^= 1
	}}

	messages := genMessages(t, m, 8)
	choices := genChoices(t, m)

	out, serr, rerr := run(sender, receiver, messages, choices, lengths(messages))
	assert.ErrorIs(t, serr, ErrConsistencyCheck)
	assert.ErrorIs(t, serr, ErrProtocolAbort)
	assert.ErrorIs(t, rerr, ErrConsistencyCheck)
	assert.Nil(t, out)
}

func TestNNOBPreconditions(t *testing.T) {
	base := newTrustedOT()
	cfg := NewConfig(k)
	sender, err := NewSender(NNOB, cfg, base)
	require.NoError(t, err)
	receiver, err := NewReceiver(NNOB, cfg, base)
	require.NoError(t, err)

	// m <= k
	err = sender.Send(context.TODO(), genMessages(t, 80, 4), nil)
	assert.ErrorIs(t, err, ErrPreconditionViolation)
	_, err = receiver.Receive(context.TODO(), make([]uint8, 10), make([]int, 80), nil)
	assert.ErrorIs(t, err, ErrPreconditionViolation)

	// m not a multiple of 8
	err = sender.Send(context.TODO(), genMessages(t, 87, 4), nil)
	assert.ErrorIs(t, err, ErrPreconditionViolation)

	assert.Zero(t, base.instances.Load())
}

func TestReadPairs(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0, 0, 0, 2, 0, 0, 0, 1, 0})
	_, _, err := readPairs(3, &buf)
	assert.ErrorIs(t, err, ErrProtocolAbort)

	buf.Reset()
	buf.Write([]byte{0, 0, 0, 0, 0, 0, 0, 1, 0, 0, 0, 1, 0, 0, 0, 2, 0})
	_, _, err = readPairs(4, &buf)
	assert.ErrorIs(t, err, ErrProtocolAbort)

	buf.Reset()
	buf.Write([]byte{0, 0, 0, 1, 0, 0, 0, 3, 0, 0, 0, 0, 0, 0, 0, 2, 2})
	pairs, d, err := readPairs(5, &buf)
	require.NoError(t, err)
	assert.Equal(t, [][2]int{{1, 3}, {0, 2}}, pairs)
	assert.Equal(t, []byte{2}, d)
}
