package ot

import (
	"crypto/elliptic"
	"fmt"
	"io"

	"github.com/optable/otext/internal/crypto"
	"github.com/optable/otext/internal/util"
)

/*
1 out of 2 base OT
from the paper: Efficient Oblivious Transfer Protocol
by Moni Naor and Benny Pinkas in 2001.
reference: https://dl.acm.org/doi/abs/10.5555/365411.365502
*/

type naorPinkas struct {
	curve      elliptic.Curve
	encodeLen  int
	cipherMode int
}

func newNaorPinkas(curveName string, cipherMode int) (naorPinkas, error) {
	curve, encodeLen, err := crypto.InitCurve(curveName)
	if err != nil {
		return naorPinkas{}, err
	}
	return naorPinkas{curve: curve, encodeLen: encodeLen, cipherMode: cipherMode}, nil
}

func (n naorPinkas) Send(messages []OTMessage, byteLen int, rw io.ReadWriter) (err error) {
	if err := checkMessages(messages, byteLen); err != nil {
		return err
	}

	// Instantiate Reader, Writer
	reader := crypto.NewPointsReader(rw, n.encodeLen)
	writer := crypto.NewPointsWriter(rw)

	// generate sender point A w/o secret, since a is never used.
	_, pointA, err := crypto.GenerateKeyWithPoints(n.curve)
	if err != nil {
		return err
	}

	// generate sender secret public key pairs used for encryption.
	secretR, pointR, err := crypto.GenerateKeyWithPoints(n.curve)
	if err != nil {
		return err
	}

	// send point A and point R to receiver
	if err := writer.Write(pointA); err != nil {
		return err
	}
	if err := writer.Write(pointR); err != nil {
		return err
	}

	// precompute A = rA
	pointA = pointA.ScalarMult(secretR)

	// receive K0 for every OT
	pointK0 := make([]crypto.Points, len(messages))
	for i := range pointK0 {
		pointK0[i] = crypto.NewPoints(n.curve)
		if err := reader.Read(pointK0[i]); err != nil {
			return err
		}
	}

	var pointK [2]crypto.Points
	// encrypt plaintext messages and send them.
	for i := range messages {
		// compute K0 = rK0
		pointK[0] = pointK0[i].ScalarMult(secretR)
		// compute K1 = rA - rK0
		pointK[1] = pointA.Sub(pointK[0])

		// encrypt plaintext message with key derived from K0, K1
		for choice, plaintext := range messages[i] {
			ciphertext, err := crypto.Encrypt(n.cipherMode, pointK[choice].DeriveKey(), uint8(choice), plaintext)
			if err != nil {
				return fmt.Errorf("error encrypting sender message: %w", err)
			}

			if _, err = rw.Write(ciphertext); err != nil {
				return err
			}
		}
	}

	return nil
}

func (n naorPinkas) Receive(choices []uint8, messages [][]byte, byteLen int, rw io.ReadWriter) (err error) {
	if err := checkChoices(choices, messages, byteLen); err != nil {
		return err
	}

	// instantiate Reader, Writer
	reader := crypto.NewPointsReader(rw, n.encodeLen)
	writer := crypto.NewPointsWriter(rw)

	// receive point A and point R from sender
	pointA := crypto.NewPoints(n.curve)
	if err := reader.Read(pointA); err != nil {
		return err
	}
	pointR := crypto.NewPoints(n.curve)
	if err := reader.Read(pointR); err != nil {
		return err
	}

	// Generate points B, 1 for each OT
	bSecrets := make([][]byte, len(messages))
	var pointB crypto.Points
	for i := range messages {
		bSecrets[i], pointB, err = crypto.GenerateKeyWithPoints(n.curve)
		if err != nil {
			return err
		}

		// for each choice bit, compute the resultant point Kc, K1-c and send K0
		if !util.BitSetInByte(choices, i) {
			// K0 = Kc = B
			if err := writer.Write(pointB); err != nil {
				return err
			}
		} else {
			// K1 = Kc = B
			// K0 = K1-c = A - B
			if err := writer.Write(pointA.Sub(pointB)); err != nil {
				return err
			}
		}
	}

	// receive encrypted messages, and decrypt the chosen one.
	for i := range messages {
		e, err := readCiphertexts(rw, n.cipherMode, byteLen)
		if err != nil {
			return err
		}

		// K = bR
		key := pointR.ScalarMult(bSecrets[i]).DeriveKey()
		if messages[i], err = decryptChosen(n.cipherMode, key, util.BitExtract(choices, i), e, byteLen); err != nil {
			return fmt.Errorf("error decrypting sender message: %w", err)
		}
	}

	return nil
}
