package ot

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/optable/otext/internal/crypto"
)

/*
1 out of N base OT
from the same Naor Pinkas paper: the sender publishes N-1 random points
C_1..C_{N-1} and the receiver hides its choice in the single point PK_0
it sends back.
*/

// MaxN bounds the number of messages per N-choose-one instance, so that
// the message index fits the cipher's one byte domain separator.
const MaxN = math.MaxUint8 + 1

var ErrInvalidN = errors.New("N-choose-one OT needs 2 <= N <= 256 messages and choices below N")

// NSender is the sending role of an N-choose-one OT. Every
// messages[i] holds the same number N of byteLen byte messages.
type NSender interface {
	SendN(messages [][][]byte, byteLen int, rw io.ReadWriter) error
}

// NReceiver is the receiving role of an N-choose-one OT. choices[i] is
// an index below n. On success messages[i] holds the chosen message.
type NReceiver interface {
	ReceiveN(choices []int, n int, messages [][]byte, byteLen int, rw io.ReadWriter) error
}

// NOT implements both roles of an N-choose-one OT
type NOT interface {
	NSender
	NReceiver
}

// NewNaorPinkasN returns the N-choose-one Naor Pinkas OT on the elliptic
// curve named curveName.
func NewNaorPinkasN(curveName string, cipherMode int) (NOT, error) {
	if cipherMode != crypto.GCM && cipherMode != crypto.XORBlake2 && cipherMode != crypto.XORBlake3 {
		return nil, crypto.ErrUnknownCipherMode
	}
	return newNaorPinkas(curveName, cipherMode)
}

func checkN(n int) error {
	if n < 2 || n > MaxN {
		return ErrInvalidN
	}
	return nil
}

func (n naorPinkas) SendN(messages [][][]byte, byteLen int, rw io.ReadWriter) error {
	if len(messages) == 0 {
		return ErrEmptyMessage
	}
	if byteLen <= 0 {
		return ErrByteLengthMissMatch
	}
	N := len(messages[0])
	if err := checkN(N); err != nil {
		return err
	}
	for _, m := range messages {
		if len(m) != N {
			return ErrInvalidN
		}
		for _, msg := range m {
			if len(msg) != byteLen {
				return ErrByteLengthMissMatch
			}
		}
	}

	reader := crypto.NewPointsReader(rw, n.encodeLen)
	writer := crypto.NewPointsWriter(rw)

	// C_1..C_{N-1}, whose discrete logs nobody needs
	pointC := make([]crypto.Points, N)
	for i := 1; i < N; i++ {
		_, c, err := crypto.GenerateKeyWithPoints(n.curve)
		if err != nil {
			return err
		}
		if err := writer.Write(c); err != nil {
			return err
		}
		pointC[i] = c
	}

	secretR, pointR, err := crypto.GenerateKeyWithPoints(n.curve)
	if err != nil {
		return err
	}
	if err := writer.Write(pointR); err != nil {
		return err
	}

	// precompute rC_i
	for i := 1; i < N; i++ {
		pointC[i] = pointC[i].ScalarMult(secretR)
	}

	pointK0 := make([]crypto.Points, len(messages))
	for i := range pointK0 {
		pointK0[i] = crypto.NewPoints(n.curve)
		if err := reader.Read(pointK0[i]); err != nil {
			return err
		}
	}

	pointK := make([]crypto.Points, N)
	for i := range messages {
		// K_0 = rPK_0, K_j = rC_j - rPK_0
		pointK[0] = pointK0[i].ScalarMult(secretR)
		for j := 1; j < N; j++ {
			pointK[j] = pointC[j].Sub(pointK[0])
		}

		for j, plaintext := range messages[i] {
			ciphertext, err := crypto.Encrypt(n.cipherMode, pointK[j].DeriveKey(), uint8(j), plaintext)
			if err != nil {
				return fmt.Errorf("error encrypting sender message: %w", err)
			}
			if _, err := rw.Write(ciphertext); err != nil {
				return err
			}
		}
	}

	return nil
}

func (n naorPinkas) ReceiveN(choices []int, N int, messages [][]byte, byteLen int, rw io.ReadWriter) error {
	if len(messages) == 0 {
		return ErrEmptyMessage
	}
	if len(choices) != len(messages) {
		return ErrBaseCountMissMatch
	}
	if byteLen <= 0 {
		return ErrByteLengthMissMatch
	}
	if err := checkN(N); err != nil {
		return err
	}
	for _, c := range choices {
		if c < 0 || c >= N {
			return ErrInvalidN
		}
	}

	reader := crypto.NewPointsReader(rw, n.encodeLen)
	writer := crypto.NewPointsWriter(rw)

	pointC := make([]crypto.Points, N)
	for i := 1; i < N; i++ {
		pointC[i] = crypto.NewPoints(n.curve)
		if err := reader.Read(pointC[i]); err != nil {
			return err
		}
	}
	pointR := crypto.NewPoints(n.curve)
	if err := reader.Read(pointR); err != nil {
		return err
	}

	secrets := make([][]byte, len(messages))
	for i, c := range choices {
		secret, pk, err := crypto.GenerateKeyWithPoints(n.curve)
		if err != nil {
			return err
		}
		secrets[i] = secret

		// PK_c = kG, and PK_0 = C_c - PK_c when c > 0
		if c > 0 {
			pk = pointC[c].Sub(pk)
		}
		if err := writer.Write(pk); err != nil {
			return err
		}
	}

	l := crypto.EncryptLen(n.cipherMode, byteLen)
	e := make([]byte, l)
	for i, c := range choices {
		var chosen []byte
		for j := 0; j < N; j++ {
			if _, err := io.ReadFull(rw, e); err != nil {
				return err
			}
			if j == c {
				chosen = append([]byte(nil), e...)
			}
		}

		// K = kR
		key := pointR.ScalarMult(secrets[i]).DeriveKey()
		msg, err := crypto.Decrypt(n.cipherMode, key, uint8(c), chosen)
		if err != nil {
			return fmt.Errorf("error decrypting sender message: %w", err)
		}
		if len(msg) != byteLen {
			return ErrByteLengthMissMatch
		}
		messages[i] = msg
	}

	return nil
}
