package otext

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/optable/otext/internal/crypto"
	"github.com/optable/otext/internal/hash"
	"github.com/optable/otext/internal/permutations"
	"github.com/optable/otext/pkg/ot"
)

/*
OT extension: amortize a handful of base OTs into as many
1 out of 2 OTs as needed.

IKNP from the paper: Extending Oblivious Transfers Efficiently
by Yuval Ishai, Joe Kilian, Kobbi Nissim and Erez Petrank in 2003.
reference: https://www.iacr.org/archive/crypto2003/27290145/27290145.pdf

NNOB from the paper: A New Approach to Practical Active-Secure Two-Party Computation
by Jesper Buus Nielsen, Peter Sebastian Nordholt, Claudio Orlandi and Sai Sheshank Burra in 2012.
reference: https://eprint.iacr.org/2011/091.pdf
*/

// Variant selects an OT extension construction
type Variant int

const (
	IKNP Variant = iota
	NNOB
)

// DefaultSecurityParameter is the number of base OTs used by NewConfig
// for IKNP, in bits.
const DefaultSecurityParameter = 80

var (
	ErrPreconditionViolation     = errors.New("OT extension precondition violated")
	ErrProtocolAbort             = errors.New("OT extension aborted")
	ErrSecurityParameterMismatch = errors.New("peers disagree on the OT extension parameters")
	ErrConsistencyCheck          = fmt.Errorf("%w: receiver failed the consistency check", ErrProtocolAbort)
	ErrUnknownVariant            = errors.New("cannot create an OT extension of unknown variant")
)

// String returns the name of the variant
func (v Variant) String() string {
	switch v {
	case IKNP:
		return "iknp"
	case NNOB:
		return "nnob"
	default:
		return "unknown"
	}
}

// PRG deterministically expands seed into len(dst) pseudorandom bytes.
type PRG interface {
	Expand(dst, seed []byte) error
}

// Hash is a correlation robust hash. Mask XORs H(index, ind, key)
// expanded to len(dst) bytes into dst.
type Hash interface {
	Mask(dst []byte, index uint64, ind uint8, key []byte) error
}

// Config holds everything both peers of an extension must agree on,
// except the base OT which is handed to the constructors.
type Config struct {
	// SecurityParameter is k, the number of columns of the seed matrix.
	SecurityParameter int
	PRG               PRG
	Hash              Hash
	// Verifier runs the NNOB consistency check. Unused by IKNP.
	Verifier ConsistencyVerifier
	// Permutation is the internal/permutations type used to pair
	// NNOB base OTs.
	Permutation int
	// Fingerprint is the internal/hash type used by the handshake to
	// compare message lengths.
	Fingerprint int
}

// NewConfig returns a Config with security parameter k and the default
// collaborators: a blake3 PRG, a blake3 correlation robust hash, the
// hash based consistency verifier and a uniform Fisher-Yates pairing.
func NewConfig(k int) Config {
	prg, _ := crypto.NewPRG(crypto.PRGBlake3)
	h, _ := crypto.NewCRHash(crypto.XORBlake3)
	return Config{
		SecurityParameter: k,
		PRG:               prg,
		Hash:              h,
		Verifier:          NewHashVerifier(),
		Permutation:       permutations.Naive,
		Fingerprint:       hash.Highway,
	}
}

func (c Config) validate() error {
	if c.SecurityParameter <= 0 {
		return fmt.Errorf("%w: security parameter %d is not positive", ErrPreconditionViolation, c.SecurityParameter)
	}
	if c.PRG == nil || c.Hash == nil || c.Verifier == nil {
		return fmt.Errorf("%w: missing PRG, hash or verifier", ErrPreconditionViolation)
	}
	if _, err := permutations.New(c.Permutation, 2); err != nil {
		return fmt.Errorf("%w: %w", ErrPreconditionViolation, err)
	}
	if _, err := hash.New(c.Fingerprint, make([]byte, hash.SaltLength)); err != nil {
		return fmt.Errorf("%w: %w", ErrPreconditionViolation, err)
	}
	return nil
}

// Sender is the sending side of an OT extension. It transfers one of
// each message pair to the peer Receiver, without learning which.
type Sender interface {
	Send(ctx context.Context, messages []ot.OTMessage, rw io.ReadWriter) error
}

// Receiver is the receiving side of an OT extension. choices holds
// len(msgLen) bits packed least significant bit first and msgLen[j]
// is the byte length of both messages of pair j.
type Receiver interface {
	Receive(ctx context.Context, choices []uint8, msgLen []int, rw io.ReadWriter) ([][]byte, error)
}

// NewSender returns the sending side of variant v. The extension
// sender acts as the receiver of the base OT.
func NewSender(v Variant, cfg Config, baseOT ot.Receiver) (Sender, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if baseOT == nil {
		return nil, fmt.Errorf("%w: nil base OT", ErrPreconditionViolation)
	}

	switch v {
	case IKNP:
		return &iknpSender{cfg: cfg, baseOT: baseOT}, nil
	case NNOB:
		return &nnobSender{cfg: cfg, baseOT: baseOT}, nil
	default:
		return nil, ErrUnknownVariant
	}
}

// NewReceiver returns the receiving side of variant v. The extension
// receiver acts as the sender of the base OT.
func NewReceiver(v Variant, cfg Config, baseOT ot.Sender) (Receiver, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if baseOT == nil {
		return nil, fmt.Errorf("%w: nil base OT", ErrPreconditionViolation)
	}

	switch v {
	case IKNP:
		return &iknpReceiver{cfg: cfg, baseOT: baseOT}, nil
	case NNOB:
		return &nnobReceiver{cfg: cfg, baseOT: baseOT}, nil
	default:
		return nil, ErrUnknownVariant
	}
}

// BaseCount returns the number of base OTs variant v runs for
// security parameter k.
func BaseCount(v Variant, k int) int {
	if v == NNOB {
		return (8*k + 2) / 3
	}
	return k
}

// abort tags err with the stage it happened in, classifying anything
// that is not already one of the package errors as a protocol abort.
func abort(stage string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrProtocolAbort),
		errors.Is(err, ErrSecurityParameterMismatch),
		errors.Is(err, ErrPreconditionViolation):
		return fmt.Errorf("%s: %w", stage, err)
	default:
		return fmt.Errorf("%s: %w: %w", stage, ErrProtocolAbort, err)
	}
}

// checkMessages verifies the sender inputs and returns the per pair
// message lengths.
func checkMessages(messages []ot.OTMessage) ([]int, error) {
	if len(messages) == 0 || len(messages)%8 != 0 {
		return nil, fmt.Errorf("%w: %d messages is not a positive multiple of 8", ErrPreconditionViolation, len(messages))
	}

	msgLen := make([]int, len(messages))
	for j, m := range messages {
		if len(m[0]) != len(m[1]) {
			return nil, fmt.Errorf("%w: messages of pair %d differ in length", ErrPreconditionViolation, j)
		}
		msgLen[j] = len(m[0])
	}
	return msgLen, nil
}

// checkChoices verifies the receiver inputs.
func checkChoices(choices []uint8, msgLen []int) error {
	m := len(msgLen)
	if m == 0 || m%8 != 0 {
		return fmt.Errorf("%w: %d messages is not a positive multiple of 8", ErrPreconditionViolation, m)
	}
	if len(choices) != m/8 {
		return fmt.Errorf("%w: %d choice bytes for %d messages", ErrPreconditionViolation, len(choices), m)
	}
	for j, l := range msgLen {
		if l < 0 {
			return fmt.Errorf("%w: negative length for message %d", ErrPreconditionViolation, j)
		}
	}
	return nil
}
