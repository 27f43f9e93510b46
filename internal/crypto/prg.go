package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"errors"

	"github.com/zeebo/blake3"
)

const (
	PRGBlake3 = iota
	PRGAESCTR
)

var ErrUnknownPRGMode = errors.New("unknown pseudorandom generator mode")

// A PRG deterministically expands a seed to fill dst.
// Implementations are safe for concurrent use.
type PRG interface {
	Expand(dst, seed []byte) error
}

// NewPRG returns the pseudorandom generator for mode.
func NewPRG(mode int) (PRG, error) {
	switch mode {
	case PRGBlake3:
		return blake3PRG{}, nil
	case PRGAESCTR:
		return aesCTRPRG{}, nil
	default:
		return nil, ErrUnknownPRGMode
	}
}

// blake3PRG reads the blake3 XOF of the seed.
type blake3PRG struct{}

func (blake3PRG) Expand(dst, seed []byte) error {
	h := blake3.New()
	if _, err := h.Write(seed); err != nil {
		return err
	}

	_, err := h.Digest().Read(dst)
	return err
}

// aesCTRPRG runs AES-128 in counter mode from a zero IV. The key
// is the first 16 bytes of the blake3 digest of the seed, so seeds
// of any length are accepted.
type aesCTRPRG struct{}

func (aesCTRPRG) Expand(dst, seed []byte) error {
	key := blake3.Sum256(seed)
	block, err := aes.NewCipher(key[:aes.BlockSize])
	if err != nil {
		return err
	}

	var iv [aes.BlockSize]byte
	stream := cipher.NewCTR(block, iv[:])

	clear(dst)
	stream.XORKeyStream(dst, dst)
	return nil
}
