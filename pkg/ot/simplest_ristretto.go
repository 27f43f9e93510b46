package ot

import (
	"fmt"
	"io"

	gr "github.com/bwesterb/go-ristretto"
	"github.com/optable/otext/internal/crypto"
	"github.com/optable/otext/internal/util"
)

/*
Chou-Orlandi simplest OT implemented using Ristretto points.
*/

type simplestRistretto struct {
	cipherMode int
}

func newSimplestRistretto(cipherMode int) simplestRistretto {
	return simplestRistretto{cipherMode: cipherMode}
}

func (s simplestRistretto) Send(messages []OTMessage, byteLen int, rw io.ReadWriter) (err error) {
	if err := checkMessages(messages, byteLen); err != nil {
		return err
	}

	// Instantiate Reader, Writer
	r := crypto.NewRistrettoReader(rw)
	w := crypto.NewRistrettoWriter(rw)

	// generate sender secret public key pairs
	a, A := crypto.GenerateRistrettoKeys()
	// T = aA
	var T gr.Point
	T.ScalarMult(&A, &a)

	// send point A to receiver
	if err := w.Write(&A); err != nil {
		return err
	}

	// make a slice of ristretto points to receive B from receiver.
	B := make([]gr.Point, len(messages))
	for i := range B {
		if err := r.Read(&B[i]); err != nil {
			return err
		}
	}

	var K [2]gr.Point
	// encrypt plaintext messages and send it.
	for i := range messages {
		// k0 = aB
		K[0].ScalarMult(&B[i], &a)
		// k1 = a(B - A) = aB - aA
		K[1].Sub(&K[0], &T)

		for choice, plaintext := range messages[i] {
			key, err := crypto.DeriveRistrettoKey(&K[choice])
			if err != nil {
				return err
			}

			ciphertext, err := crypto.Encrypt(s.cipherMode, key, uint8(choice), plaintext)
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

func (s simplestRistretto) Receive(choices []uint8, messages [][]byte, byteLen int, rw io.ReadWriter) (err error) {
	if err := checkChoices(choices, messages, byteLen); err != nil {
		return err
	}

	// instantiate Reader, Writer
	r := crypto.NewRistrettoReader(rw)
	w := crypto.NewRistrettoWriter(rw)

	// Receive point A from sender
	var A gr.Point
	if err := r.Read(&A); err != nil {
		return err
	}

	// Generate points B, 1 for each OT,
	bSecrets := make([]gr.Scalar, len(messages))
	for i := range messages {
		b, B := crypto.GenerateRistrettoKeys()
		bSecrets[i] = b

		// B = A + bG when the choice bit is set
		if util.BitSetInByte(choices, i) {
			B.Add(&A, &B)
		}
		if err := w.Write(&B); err != nil {
			return err
		}
	}

	// receive encrypted messages, and decrypt the chosen one.
	var K gr.Point
	for i := range messages {
		e, err := readCiphertexts(rw, s.cipherMode, byteLen)
		if err != nil {
			return err
		}

		// K = bA
		K.ScalarMult(&A, &bSecrets[i])
		key, err := crypto.DeriveRistrettoKey(&K)
		if err != nil {
			return err
		}

		if messages[i], err = decryptChosen(s.cipherMode, key, util.BitExtract(choices, i), e, byteLen); err != nil {
			return fmt.Errorf("error decrypting sender message: %w", err)
		}
	}

	return nil
}
