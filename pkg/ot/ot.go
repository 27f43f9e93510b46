package ot

import (
	"errors"
	"io"

	"github.com/optable/otext/internal/crypto"
	"github.com/optable/otext/internal/util"
)

/*
1 out of 2 base OT.

Every protocol implements both roles. An OT extension picks the role it
needs explicitly: the extension sender acts as base OT receiver and the
extension receiver acts as base OT sender.
*/

// Protocol selects a base OT construction
type Protocol int

const (
	NaorPinkas Protocol = iota
	Simplest
	PVW
)

var (
	ErrUnknownOT           = errors.New("cannot create an OT that follows an unknown protocol")
	ErrBaseCountMissMatch  = errors.New("provided slices is not the same length as the number of base OT")
	ErrByteLengthMissMatch = errors.New("base OT message does not have the agreed byte length")
	ErrEmptyMessage        = errors.New("attempt to perform OT on empty messages")
	ErrInvalidPoint        = errors.New("peer sent an invalid group element")
)

// OTMessage represent a pair of messages
// where an OT receiver with choice bit 0 will
// correctly decode the first message
// and an OT receiver with choice bit 1 will
// correctly decode the second message
type OTMessage [2][]byte

// Sender is the sending role of a base OT: it transfers len(messages)
// pairs whose members are all exactly byteLen bytes long.
type Sender interface {
	Send(messages []OTMessage, byteLen int, rw io.ReadWriter) error
}

// Receiver is the receiving role of a base OT. choices holds one bit per
// instance packed least significant bit first, and len(messages) sets the
// number of instances. On success messages[i] holds the chosen byteLen
// byte message of instance i.
type Receiver interface {
	Receive(choices []uint8, messages [][]byte, byteLen int, rw io.ReadWriter) error
}

// OT implements both roles of a base OT
type OT interface {
	Sender
	Receiver
}

// String returns the name of the protocol
func (p Protocol) String() string {
	switch p {
	case NaorPinkas:
		return "naorpinkas"
	case Simplest:
		return "simplest"
	case PVW:
		return "pvw"
	default:
		return "unknown"
	}
}

// Malicious reports whether the protocol stays secure against an actively
// cheating peer.
func (p Protocol) Malicious() bool {
	return p == PVW
}

// NewBaseOT returns an OT of type t. ristretto selects the ristretto
// backend of NaorPinkas and Simplest, otherwise NaorPinkas runs on the
// elliptic curve named curveName and Simplest on the kyber Ed25519 group.
// PVW always runs on ristretto255. cipherMode is one of the
// crypto cipher modes and protects the transferred messages.
func NewBaseOT(t Protocol, ristretto bool, curveName string, cipherMode int) (OT, error) {
	if cipherMode != crypto.GCM && cipherMode != crypto.XORBlake2 && cipherMode != crypto.XORBlake3 {
		return nil, crypto.ErrUnknownCipherMode
	}

	switch t {
	case NaorPinkas:
		if ristretto {
			return newNaorPinkasRistretto(cipherMode), nil
		}
		return newNaorPinkas(curveName, cipherMode)
	case Simplest:
		if ristretto {
			return newSimplestRistretto(cipherMode), nil
		}
		return newSimplest(cipherMode), nil
	case PVW:
		return newPVW(cipherMode), nil
	default:
		return nil, ErrUnknownOT
	}
}

// checkMessages validates the sender inputs before any I/O
func checkMessages(messages []OTMessage, byteLen int) error {
	if len(messages) == 0 {
		return ErrEmptyMessage
	}
	if byteLen <= 0 {
		return ErrByteLengthMissMatch
	}

	for _, m := range messages {
		if len(m[0]) != byteLen || len(m[1]) != byteLen {
			return ErrByteLengthMissMatch
		}
	}

	return nil
}

// checkChoices validates the receiver inputs before any I/O
func checkChoices(choices []uint8, messages [][]byte, byteLen int) error {
	if len(messages) == 0 {
		return ErrEmptyMessage
	}
	if len(choices) != util.PackedLen(len(messages)) {
		return ErrBaseCountMissMatch
	}
	if byteLen <= 0 {
		return ErrByteLengthMissMatch
	}

	return nil
}

// readCiphertexts reads both ciphertexts of one OT pair.
func readCiphertexts(r io.Reader, cipherMode, byteLen int) ([2][]byte, error) {
	var e [2][]byte
	l := crypto.EncryptLen(cipherMode, byteLen)
	for j := range e {
		e[j] = make([]byte, l)
		if _, err := io.ReadFull(r, e[j]); err != nil {
			return e, err
		}
	}
	return e, nil
}

// decryptChosen decrypts the branch selected by bit and checks its length.
func decryptChosen(cipherMode int, key []byte, bit uint8, e [2][]byte, byteLen int) ([]byte, error) {
	msg, err := crypto.Decrypt(cipherMode, key, bit, e[bit])
	if err != nil {
		return nil, err
	}
	if len(msg) != byteLen {
		return nil, ErrByteLengthMissMatch
	}
	return msg, nil
}
