package otext

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"

	"github.com/optable/otext/internal/util"
	"github.com/optable/otext/pkg/log"
	"github.com/optable/otext/pkg/ot"
)

// seedLen is the byte length of the seeds expanded into matrix rows.
const seedLen = 16

// stage 1: agree on the session parameters
// stage 2: k base OTs, with roles reversed, build the correlated
//          matrices Q = T ^ s*r and transpose them
// stage 3: mask and send, or receive and unmask, the messages

type iknpSender struct {
	cfg    Config
	baseOT ot.Receiver
}

type iknpReceiver struct {
	cfg    Config
	baseOT ot.Sender
}

// Send transfers messages using the IKNP extension.
func (e *iknpSender) Send(ctx context.Context, messages []ot.OTMessage, rw io.ReadWriter) error {
	msgLen, err := checkMessages(messages)
	if err != nil {
		return err
	}

	logger := log.ProtocolLogger(ctx, IKNP.String())
	var s []byte
	var q [][]byte
	cleanup := func() {
		clear(s)
		util.Zeroize(q)
	}

	stage1 := func() error {
		return senderHandshake(rw, IKNP, e.cfg, msgLen)
	}

	stage2 := func() (err error) {
		s, q, err = e.correlate(len(messages), rw)
		return err
	}

	stage3 := func() error {
		return maskMessages(e.cfg.Hash, q, s, messages, rw)
	}

	return runStages(ctx, logger, cleanup, stage1, stage2, stage3)
}

// correlate samples s, runs the base OTs as receiver and returns s with
// the m transposed rows q_j = t_j ^ s*r_j.
func (e *iknpSender) correlate(m int, rw io.ReadWriter) ([]byte, [][]byte, error) {
	k := e.cfg.SecurityParameter
	s, err := util.SampleBitSlice(rand.Reader, k)
	if err != nil {
		return nil, nil, err
	}

	Q := make([][]byte, k)
	defer util.Zeroize(Q)
	if err := e.baseOT.Receive(s, Q, m/8, rw); err != nil {
		clear(s)
		return nil, nil, fmt.Errorf("base OT: %w", err)
	}

	return s, util.TransposeBits(Q, m), nil
}

// Receive obtains one message per pair using the IKNP extension.
func (e *iknpReceiver) Receive(ctx context.Context, choices []uint8, msgLen []int, rw io.ReadWriter) ([][]byte, error) {
	if err := checkChoices(choices, msgLen); err != nil {
		return nil, err
	}

	logger := log.ProtocolLogger(ctx, IKNP.String())
	var t, out [][]byte
	cleanup := func() { util.Zeroize(t) }

	stage1 := func() error {
		return receiverHandshake(rw, IKNP, e.cfg, msgLen)
	}

	stage2 := func() (err error) {
		t, err = e.correlate(choices, len(msgLen), rw)
		return err
	}

	stage3 := func() (err error) {
		out, err = unmaskMessages(e.cfg.Hash, t, choices, msgLen, rw)
		return err
	}

	if err := runStages(ctx, logger, cleanup, stage1, stage2, stage3); err != nil {
		return nil, err
	}
	return out, nil
}

// correlate builds the seed matrix T, runs the base OTs as sender with
// pairs (T_i, T_i ^ r) and returns the m transposed rows t_j.
func (e *iknpReceiver) correlate(choices []uint8, m int, rw io.ReadWriter) ([][]byte, error) {
	k := e.cfg.SecurityParameter
	T, err := expandSeeds(e.cfg.PRG, k, m/8)
	if err != nil {
		return nil, err
	}
	defer util.Zeroize(T)

	pairs := make([]ot.OTMessage, k)
	for i := range pairs {
		masked, err := util.XorBytes(T[i], choices)
		if err != nil {
			return nil, err
		}
		pairs[i] = ot.OTMessage{T[i], masked}
	}
	defer func() {
		for i := range pairs {
			clear(pairs[i][1])
		}
	}()

	if err := e.baseOT.Send(pairs, m/8, rw); err != nil {
		return nil, fmt.Errorf("base OT: %w", err)
	}

	return util.TransposeBits(T, m), nil
}

// expandSeeds returns rows fresh random seeds, each expanded by prg
// to rowLen bytes.
func expandSeeds(prg PRG, rows, rowLen int) (_ [][]byte, err error) {
	seed := make([]byte, seedLen)
	defer clear(seed)

	T := make([][]byte, rows)
	defer func() {
		if err != nil {
			util.Zeroize(T)
		}
	}()

	for i := range T {
		if _, err := rand.Read(seed); err != nil {
			return nil, err
		}
		T[i] = make([]byte, rowLen)
		if err := prg.Expand(T[i], seed); err != nil {
			return nil, err
		}
	}
	return T, nil
}
