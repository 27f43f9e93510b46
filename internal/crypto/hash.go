package crypto

import (
	"encoding/binary"
	"errors"

	"github.com/optable/otext/internal/util"
	"github.com/zeebo/blake3"
	"golang.org/x/crypto/blake2b"
)

var ErrUnknownHashMode = errors.New("unknown correlation robust hash mode")

// A CRHash is a correlation robust hash used to mask the messages
// of an extended OT. Mask XORs H(index, ind, key), expanded to
// len(dst) bytes, into dst. index binds the mask to one extended
// OT and ind to one branch of it, so equal keys never share a mask
// across items. Implementations are safe for concurrent use.
type CRHash interface {
	Mask(dst []byte, index uint64, ind uint8, key []byte) error
}

// NewCRHash returns the correlation robust hash for mode, one of
// XORBlake3 or XORBlake2.
func NewCRHash(mode int) (CRHash, error) {
	switch mode {
	case XORBlake3:
		return blake3Hash{}, nil
	case XORBlake2:
		return blake2Hash{}, nil
	default:
		return nil, ErrUnknownHashMode
	}
}

// header encodes index as a big endian uint64 followed by ind.
func header(index uint64, ind uint8) []byte {
	var h [9]byte
	binary.BigEndian.PutUint64(h[:8], index)
	h[8] = ind
	return h[:]
}

type blake3Hash struct{}

func (blake3Hash) Mask(dst []byte, index uint64, ind uint8, key []byte) error {
	h := blake3.New()
	h.Write(header(index, ind))
	h.Write(key)

	mask := make([]byte, len(dst))
	if _, err := h.Digest().Read(mask); err != nil {
		return err
	}

	util.Xor(dst, mask)
	return nil
}

type blake2Hash struct{}

func (blake2Hash) Mask(dst []byte, index uint64, ind uint8, key []byte) error {
	if len(dst) == 0 {
		return nil
	}

	d, err := blake2b.NewXOF(uint32(len(dst)), nil)
	if err != nil {
		return err
	}
	d.Write(header(index, ind))
	d.Write(key)

	mask := make([]byte, len(dst))
	if _, err := d.Read(mask); err != nil {
		return err
	}

	util.Xor(dst, mask)
	return nil
}
