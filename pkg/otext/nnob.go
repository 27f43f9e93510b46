package otext

import (
	"bufio"
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/optable/otext/internal/permutations"
	"github.com/optable/otext/internal/util"
	"github.com/optable/otext/pkg/log"
	"github.com/optable/otext/pkg/ot"
)

// stage 1: agree on the session parameters
// stage 2: num base OTs on short seeds, expanded with the PRG, and the
//          correction matrix U = T0 ^ T1 ^ r
// stage 3: pair the rows at random and check that the receiver used
//          the same r in every row of U
// stage 4: keep one row of each pair and finalize as IKNP does

type nnobSender struct {
	cfg    Config
	baseOT ot.Receiver
	// rand is the source of s, crypto/rand when nil. NewSender never
	// sets it; only tests inject a fixed s through it.
	rand io.Reader
}

type nnobReceiver struct {
	cfg    Config
	baseOT ot.Sender
	// tamper rewrites U before it is sent. NewReceiver never sets it;
	// tests use it to play a cheating receiver.
	tamper func(u [][]byte)
}

// checkNNOB adds the NNOB precondition m > k.
func checkNNOB(cfg Config, m int) error {
	if m <= cfg.SecurityParameter {
		return fmt.Errorf("%w: NNOB needs more than %d messages, got %d", ErrPreconditionViolation, cfg.SecurityParameter, m)
	}
	return nil
}

// Send transfers messages using the NNOB extension.
func (e *nnobSender) Send(ctx context.Context, messages []ot.OTMessage, rw io.ReadWriter) error {
	msgLen, err := checkMessages(messages)
	if err != nil {
		return err
	}
	if err := checkNNOB(e.cfg, len(messages)); err != nil {
		return err
	}

	logger := log.ProtocolLogger(ctx, NNOB.String())
	m := len(messages)
	num := BaseCount(NNOB, e.cfg.SecurityParameter)
	var s []byte
	var Q, q [][]byte
	var pairs [][2]int
	cleanup := func() {
		clear(s)
		util.Zeroize(Q)
		util.Zeroize(q)
	}

	stage1 := func() error {
		return senderHandshake(rw, NNOB, e.cfg, msgLen)
	}

	stage2 := func() (err error) {
		s, Q, err = e.correlate(num, m, rw)
		return err
	}

	stage3 := func() (err error) {
		if pairs, err = e.pair(num, s, rw); err != nil {
			return err
		}

		z := make([][]byte, len(pairs))
		for p, ab := range pairs {
			if z[p], err = util.XorBytes(Q[ab[0]], Q[ab[1]]); err != nil {
				return err
			}
		}
		defer util.Zeroize(z)

		return e.cfg.Verifier.Verify(pairs, z, rw)
	}

	stage4 := func() error {
		kept, sKept := keepRows(Q, pairs), make([]byte, util.PackedLen(len(pairs)))
		for p, ab := range pairs {
			util.SetBit(sKept, p, util.BitExtract(s, ab[0]))
		}

		q = util.TransposeBits(kept, m)
		err := maskMessages(e.cfg.Hash, q, sKept, messages, rw)
		clear(sKept)
		return err
	}

	return runStages(ctx, logger, cleanup, stage1, stage2, stage3, stage4)
}

// correlate receives one seed of each base OT pair and the correction
// matrix U and returns s with Q_i = G(seed_i) ^ s_i*U_i = T0_i ^ s_i*r.
func (e *nnobSender) correlate(num, m int, rw io.ReadWriter) (_ []byte, _ [][]byte, err error) {
	prng := e.rand
	if prng == nil {
		prng = rand.Reader
	}

	s, err := util.SampleBitSlice(prng, num)
	if err != nil {
		return nil, nil, err
	}

	seeds := make([][]byte, num)
	defer util.Zeroize(seeds)
	if err := e.baseOT.Receive(s, seeds, nnobSeedLen(e.cfg), rw); err != nil {
		clear(s)
		return nil, nil, fmt.Errorf("base OT: %w", err)
	}

	Q := make([][]byte, num)
	defer func() {
		if err != nil {
			clear(s)
			util.Zeroize(Q)
		}
	}()

	u := make([]byte, m/8)
	for i := range Q {
		Q[i] = make([]byte, m/8)
		if err := e.cfg.PRG.Expand(Q[i], seeds[i]); err != nil {
			return nil, nil, err
		}

		if _, err := io.ReadFull(rw, u); err != nil {
			return nil, nil, err
		}
		if util.BitSetInByte(s, i) {
			util.Xor(Q[i], u)
		}
	}

	return s, Q, nil
}

// pair draws a random pairing of the num rows, sends it along with
// d_p = s_a ^ s_b and returns it. For odd num the last drawn row is
// left out.
func (e *nnobSender) pair(num int, s []byte, w io.Writer) ([][2]int, error) {
	perm, err := permutations.New(e.cfg.Permutation, int64(num))
	if err != nil {
		return nil, err
	}

	pairs := make([][2]int, num/2)
	d := make([]byte, util.PackedLen(len(pairs)))
	buf := make([]byte, 0, 8*len(pairs)+len(d))
	for p := range pairs {
		a, b := int(perm.Shuffle(int64(2*p))), int(perm.Shuffle(int64(2*p+1)))
		if a > b {
			a, b = b, a
		}
		pairs[p] = [2]int{a, b}
		util.SetBit(d, p, util.BitExtract(s, a)^util.BitExtract(s, b))

		buf = binary.BigEndian.AppendUint32(buf, uint32(a))
		buf = binary.BigEndian.AppendUint32(buf, uint32(b))
	}
	buf = append(buf, d...)

	if _, err := w.Write(buf); err != nil {
		return nil, err
	}
	return pairs, nil
}

// Receive obtains one message per pair using the NNOB extension.
func (e *nnobReceiver) Receive(ctx context.Context, choices []uint8, msgLen []int, rw io.ReadWriter) ([][]byte, error) {
	if err := checkChoices(choices, msgLen); err != nil {
		return nil, err
	}
	if err := checkNNOB(e.cfg, len(msgLen)); err != nil {
		return nil, err
	}

	logger := log.ProtocolLogger(ctx, NNOB.String())
	m := len(msgLen)
	num := BaseCount(NNOB, e.cfg.SecurityParameter)
	var T0, t, out [][]byte
	cleanup := func() {
		util.Zeroize(T0)
		util.Zeroize(t)
	}

	stage1 := func() error {
		return receiverHandshake(rw, NNOB, e.cfg, msgLen)
	}

	stage2 := func() (err error) {
		T0, err = e.correlate(choices, num, m, rw)
		return err
	}

	stage3 := func() error {
		pairs, d, err := readPairs(num, rw)
		if err != nil {
			return err
		}

		z := make([][]byte, len(pairs))
		for p, ab := range pairs {
			if z[p], err = util.XorBytes(T0[ab[0]], T0[ab[1]]); err != nil {
				return err
			}
			if util.BitSetInByte(d, p) {
				util.Xor(z[p], choices)
			}
		}
		defer util.Zeroize(z)

		if err := e.cfg.Verifier.Prove(pairs, z, rw); err != nil {
			return err
		}

		t = util.TransposeBits(keepRows(T0, pairs), m)
		return nil
	}

	stage4 := func() (err error) {
		out, err = unmaskMessages(e.cfg.Hash, t, choices, msgLen, rw)
		return err
	}

	if err := runStages(ctx, logger, cleanup, stage1, stage2, stage3, stage4); err != nil {
		return nil, err
	}
	return out, nil
}

// correlate sends num seed pairs through the base OTs, expands them to
// T0 and T1 and sends U_i = T0_i ^ T1_i ^ r. It returns T0.
func (e *nnobReceiver) correlate(choices []uint8, num, m int, rw io.ReadWriter) (_ [][]byte, err error) {
	byteLen := nnobSeedLen(e.cfg)
	seeds := make([]ot.OTMessage, num)
	defer func() {
		for i := range seeds {
			clear(seeds[i][0])
			clear(seeds[i][1])
		}
	}()
	for i := range seeds {
		for b := range seeds[i] {
			seeds[i][b] = make([]byte, byteLen)
			if _, err := rand.Read(seeds[i][b]); err != nil {
				return nil, err
			}
		}
	}

	if err := e.baseOT.Send(seeds, byteLen, rw); err != nil {
		return nil, fmt.Errorf("base OT: %w", err)
	}

	T0 := make([][]byte, num)
	defer func() {
		if err != nil {
			util.Zeroize(T0)
		}
	}()

	U := make([][]byte, num)
	for i := range T0 {
		T0[i] = make([]byte, m/8)
		U[i] = make([]byte, m/8)
		if err := e.cfg.PRG.Expand(T0[i], seeds[i][0]); err != nil {
			return nil, err
		}
		if err := e.cfg.PRG.Expand(U[i], seeds[i][1]); err != nil {
			return nil, err
		}
		util.DoubleXor(U[i], T0[i], choices)
	}

	if e.tamper != nil {
		e.tamper(U)
	}

	bw := bufio.NewWriterSize(rw, bufferSize)
	for _, u := range U {
		if _, err := bw.Write(u); err != nil {
			return nil, err
		}
	}
	if err := bw.Flush(); err != nil {
		return nil, err
	}

	return T0, nil
}

// readPairs reads the pairing of the num rows and the packed d bits.
// Each row may appear in at most one pair.
func readPairs(num int, r io.Reader) ([][2]int, []byte, error) {
	pairs := make([][2]int, num/2)
	buf := make([]byte, 8*len(pairs)+util.PackedLen(len(pairs)))
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, nil, err
	}

	used := make([]bool, num)
	for p := range pairs {
		a := int(binary.BigEndian.Uint32(buf[8*p:]))
		b := int(binary.BigEndian.Uint32(buf[8*p+4:]))
		if a >= b || b >= num || used[a] || used[b] {
			return nil, nil, fmt.Errorf("%w: invalid pair (%d, %d)", ErrProtocolAbort, a, b)
		}
		used[a], used[b] = true, true
		pairs[p] = [2]int{a, b}
	}

	return pairs, buf[8*len(pairs):], nil
}

// keepRows returns the first row of every pair.
func keepRows(matrix [][]byte, pairs [][2]int) [][]byte {
	kept := make([][]byte, len(pairs))
	for p, ab := range pairs {
		kept[p] = matrix[ab[0]]
	}
	return kept
}

// nnobSeedLen is the byte length of the base OT seeds, one bit of seed
// per bit of security.
func nnobSeedLen(cfg Config) int {
	return util.PackedLen(cfg.SecurityParameter)
}
