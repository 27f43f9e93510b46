package ot

import (
	"fmt"
	"io"

	"github.com/gtank/ristretto255"
	"github.com/optable/otext/internal/crypto"
	"github.com/optable/otext/internal/util"
)

/*
1 out of 2 base OT secure against malicious adversaries
from the paper: A Framework for Efficient and Composable Oblivious Transfer
by Chris Peikert, Vinod Vaikuntanathan and Brent Waters in 2008,
instantiated in messy mode over the DDH group ristretto255.
reference: https://eprint.iacr.org/2007/348.pdf

The common reference string (g0, h0, g1, h1) is hashed to the group so
that no party knows a discrete log relation between its elements.
*/

const pvwDomain = "otext/pvw/crs/v1"

type pvw struct {
	g, h       [2]*ristretto255.Element
	cipherMode int
}

func newPVW(cipherMode int) pvw {
	return pvw{
		g: [2]*ristretto255.Element{
			crypto.HashToR255(pvwDomain, "g0"),
			crypto.HashToR255(pvwDomain, "g1"),
		},
		h: [2]*ristretto255.Element{
			crypto.HashToR255(pvwDomain, "h0"),
			crypto.HashToR255(pvwDomain, "h1"),
		},
		cipherMode: cipherMode,
	}
}

// readKey reads one receiver public key and rejects the identity.
func readKey(r io.Reader) (*ristretto255.Element, error) {
	e, err := crypto.ReadR255(r)
	if err != nil {
		return nil, err
	}
	if e.Equal(ristretto255.NewElement().Zero()) == 1 {
		return nil, ErrInvalidPoint
	}
	return e, nil
}

func (p pvw) Send(messages []OTMessage, byteLen int, rw io.ReadWriter) (err error) {
	if err := checkMessages(messages, byteLen); err != nil {
		return err
	}

	// receive the public key (g, h) of each OT
	gs := make([]*ristretto255.Element, len(messages))
	hs := make([]*ristretto255.Element, len(messages))
	for i := range messages {
		if gs[i], err = readKey(rw); err != nil {
			return err
		}
		if hs[i], err = readKey(rw); err != nil {
			return err
		}
	}

	var keys [2][]byte
	for i := range messages {
		// u_b = g_b^s h_b^t and v_b = g^s h^t for fresh s, t
		for b := range keys {
			s, err := crypto.RandomR255Scalar()
			if err != nil {
				return err
			}
			t, err := crypto.RandomR255Scalar()
			if err != nil {
				return err
			}

			u := ristretto255.NewElement().Add(
				ristretto255.NewElement().ScalarMult(s, p.g[b]),
				ristretto255.NewElement().ScalarMult(t, p.h[b]),
			)
			v := ristretto255.NewElement().Add(
				ristretto255.NewElement().ScalarMult(s, gs[i]),
				ristretto255.NewElement().ScalarMult(t, hs[i]),
			)

			if err := crypto.WriteR255(rw, u); err != nil {
				return err
			}
			keys[b] = crypto.DeriveR255Key(v)
		}

		for choice, plaintext := range messages[i] {
			ciphertext, err := crypto.Encrypt(p.cipherMode, keys[choice], uint8(choice), plaintext)
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

func (p pvw) Receive(choices []uint8, messages [][]byte, byteLen int, rw io.ReadWriter) (err error) {
	if err := checkChoices(choices, messages, byteLen); err != nil {
		return err
	}

	// send (g_σ^r, h_σ^r) for each OT
	secrets := make([]*ristretto255.Scalar, len(messages))
	for i := range messages {
		if secrets[i], err = crypto.RandomR255Scalar(); err != nil {
			return err
		}

		bit := util.BitExtract(choices, i)
		if err := crypto.WriteR255(rw, ristretto255.NewElement().ScalarMult(secrets[i], p.g[bit])); err != nil {
			return err
		}
		if err := crypto.WriteR255(rw, ristretto255.NewElement().ScalarMult(secrets[i], p.h[bit])); err != nil {
			return err
		}
	}

	var u [2]*ristretto255.Element
	for i := range messages {
		for b := range u {
			if u[b], err = crypto.ReadR255(rw); err != nil {
				return err
			}
		}

		e, err := readCiphertexts(rw, p.cipherMode, byteLen)
		if err != nil {
			return err
		}

		// v = u_σ^r
		bit := util.BitExtract(choices, i)
		key := crypto.DeriveR255Key(ristretto255.NewElement().ScalarMult(secrets[i], u[bit]))

		if messages[i], err = decryptChosen(p.cipherMode, key, bit, e, byteLen); err != nil {
			return fmt.Errorf("error decrypting sender message: %w", err)
		}
	}

	return nil
}
