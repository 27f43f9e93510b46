package crypto

import (
	"crypto/rand"
	"io"

	"github.com/gtank/ristretto255"
	"github.com/zeebo/blake3"
)

// R255EncodeLen is the canonical encoding length of a ristretto255 element.
const R255EncodeLen = 32

// HashToR255 maps label, under domain, to a ristretto255 element whose
// discrete log relative to any other hashed element is unknown.
func HashToR255(domain, label string) *ristretto255.Element {
	h := blake3.New()
	h.Write([]byte(domain))
	h.Write([]byte{0})
	h.Write([]byte(label))

	var uniform [64]byte
	h.Digest().Read(uniform[:])

	return ristretto255.NewElement().FromUniformBytes(uniform[:])
}

// RandomR255Scalar returns a uniformly random scalar.
func RandomR255Scalar() (*ristretto255.Scalar, error) {
	var uniform [64]byte
	if _, err := rand.Read(uniform[:]); err != nil {
		return nil, err
	}

	return ristretto255.NewScalar().FromUniformBytes(uniform[:]), nil
}

// WriteR255 writes the canonical encoding of e to w.
func WriteR255(w io.Writer, e *ristretto255.Element) error {
	_, err := w.Write(e.Encode(nil))
	return err
}

// ReadR255 reads one canonically encoded element from r.
func ReadR255(r io.Reader) (*ristretto255.Element, error) {
	buf := make([]byte, R255EncodeLen)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}

	e := ristretto255.NewElement()
	if err := e.Decode(buf); err != nil {
		return nil, ErrInvalidPoint
	}
	return e, nil
}

// DeriveR255Key returns a 32 byte key from a ristretto255 element.
func DeriveR255Key(e *ristretto255.Element) []byte {
	key := blake3.Sum256(e.Encode(nil))
	return key[:]
}
