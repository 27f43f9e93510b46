package ot

import (
	"fmt"
	"io"

	"github.com/optable/otext/internal/crypto"
	"github.com/optable/otext/internal/util"
	"go.dedis.ch/kyber/v3"
)

/*
1 out of 2 base OT
from the paper: The Simplest Protocol for Oblivious Transfer
by Tung Chou and Claudio Orlandi in 2015.
reference: https://eprint.iacr.org/2015/267.pdf

Implemented over the kyber Ed25519 group.
*/

type simplest struct {
	group      crypto.Group
	cipherMode int
}

func newSimplest(cipherMode int) simplest {
	return simplest{group: crypto.NewEd25519Group(), cipherMode: cipherMode}
}

func (s simplest) Send(messages []OTMessage, byteLen int, rw io.ReadWriter) (err error) {
	if err := checkMessages(messages, byteLen); err != nil {
		return err
	}

	// generate sender secret public key pairs
	a, A := s.group.GenerateKeys()
	// T = aA
	T := s.group.Point().Mul(a, A)

	// send point A to receiver
	if err := s.group.Write(rw, A); err != nil {
		return err
	}

	// receive B from receiver, one per OT
	B := make([]kyber.Point, len(messages))
	for i := range B {
		if B[i], err = s.group.Read(rw); err != nil {
			return err
		}
	}

	var K [2]kyber.Point
	// encrypt plaintext messages and send it.
	for i := range messages {
		// k0 = aB
		K[0] = s.group.Point().Mul(a, B[i])
		// k1 = a(B - A) = aB - aA
		K[1] = s.group.Point().Sub(K[0], T)

		for choice, plaintext := range messages[i] {
			key, err := crypto.DeriveGroupKey(K[choice])
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

func (s simplest) Receive(choices []uint8, messages [][]byte, byteLen int, rw io.ReadWriter) (err error) {
	if err := checkChoices(choices, messages, byteLen); err != nil {
		return err
	}

	// receive point A from sender
	A, err := s.group.Read(rw)
	if err != nil {
		return err
	}

	// generate points B, 1 for each OT
	bSecrets := make([]kyber.Scalar, len(messages))
	for i := range messages {
		var B kyber.Point
		bSecrets[i], B = s.group.GenerateKeys()

		// B = A + bG when the choice bit is set
		if util.BitSetInByte(choices, i) {
			B = s.group.Point().Add(A, B)
		}
		if err := s.group.Write(rw, B); err != nil {
			return err
		}
	}

	// receive encrypted messages, and decrypt the chosen one.
	for i := range messages {
		e, err := readCiphertexts(rw, s.cipherMode, byteLen)
		if err != nil {
			return err
		}

		// K = bA
		key, err := crypto.DeriveGroupKey(s.group.Point().Mul(bSecrets[i], A))
		if err != nil {
			return err
		}

		if messages[i], err = decryptChosen(s.cipherMode, key, util.BitExtract(choices, i), e, byteLen); err != nil {
			return fmt.Errorf("error decrypting sender message: %w", err)
		}
	}

	return nil
}
