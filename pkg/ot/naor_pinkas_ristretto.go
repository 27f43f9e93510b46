package ot

import (
	"fmt"
	"io"

	gr "github.com/bwesterb/go-ristretto"
	"github.com/optable/otext/internal/crypto"
	"github.com/optable/otext/internal/util"
)

/*
Naor-Pinkas OT implemented using Ristretto points for the elliptic curve operations.
*/

type naorPinkasRistretto struct {
	cipherMode int
}

func newNaorPinkasRistretto(cipherMode int) naorPinkasRistretto {
	return naorPinkasRistretto{cipherMode: cipherMode}
}

func (n naorPinkasRistretto) Send(messages []OTMessage, byteLen int, rw io.ReadWriter) (err error) {
	if err := checkMessages(messages, byteLen); err != nil {
		return err
	}

	// Instantiate Reader, Writer
	reader := crypto.NewRistrettoReader(rw)
	writer := crypto.NewRistrettoWriter(rw)

	// generate sender A point w/o secret, since a is never used.
	var pointA = crypto.GeneratePublicRistrettoKey()

	// generate sender secret public key pairs used for encryption
	secretR, pointR := crypto.GenerateRistrettoKeys()

	// send both public keys to receiver
	if err := writer.Write(&pointA); err != nil {
		return err
	}
	if err := writer.Write(&pointR); err != nil {
		return err
	}

	// precompute A = rA
	pointA.ScalarMult(&pointA, &secretR)

	// receive K0 for every OT
	pointK0 := make([]gr.Point, len(messages))
	for i := range pointK0 {
		if err := reader.Read(&pointK0[i]); err != nil {
			return err
		}
	}

	var pointK [2]gr.Point
	// encrypt plaintext message and send them.
	for i := range messages {
		// compute K0 = rK0
		pointK[0].ScalarMult(&pointK0[i], &secretR)
		// compute K1 = rA - rK0
		pointK[1].Sub(&pointA, &pointK[0])

		for choice, plaintext := range messages[i] {
			key, err := crypto.DeriveRistrettoKey(&pointK[choice])
			if err != nil {
				return err
			}

			ciphertext, err := crypto.Encrypt(n.cipherMode, key, uint8(choice), plaintext)
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

func (n naorPinkasRistretto) Receive(choices []uint8, messages [][]byte, byteLen int, rw io.ReadWriter) (err error) {
	if err := checkChoices(choices, messages, byteLen); err != nil {
		return err
	}

	// instantiate Reader, Writer
	reader := crypto.NewRistrettoReader(rw)
	writer := crypto.NewRistrettoWriter(rw)

	// Receive point A and point R from sender
	var pointA, pointR gr.Point
	if err := reader.Read(&pointA); err != nil {
		return err
	}
	if err := reader.Read(&pointR); err != nil {
		return err
	}

	// Generate points B, 1 for each OT,
	bSecrets := make([]gr.Scalar, len(messages))
	var pointB gr.Point
	for i := range messages {
		bSecrets[i], pointB = crypto.GenerateRistrettoKeys()

		// for each choice bit, compute the resultant point Kc, K1-c and send K0
		if util.BitSetInByte(choices, i) {
			// K1 = Kc = B
			// K0 = K1-c = A - B
			pointB.Sub(&pointA, &pointB)
		}
		if err := writer.Write(&pointB); err != nil {
			return err
		}
	}

	var pointK gr.Point
	// receive encrypted messages, and decrypt the chosen one.
	for i := range messages {
		e, err := readCiphertexts(rw, n.cipherMode, byteLen)
		if err != nil {
			return err
		}

		// K = bR
		pointK.ScalarMult(&pointR, &bSecrets[i])
		key, err := crypto.DeriveRistrettoKey(&pointK)
		if err != nil {
			return err
		}

		if messages[i], err = decryptChosen(n.cipherMode, key, util.BitExtract(choices, i), e, byteLen); err != nil {
			return fmt.Errorf("error decrypting sender message: %w", err)
		}
	}

	return nil
}
