package crypto

import (
	"io"

	gr "github.com/bwesterb/go-ristretto"
	"github.com/zeebo/blake3"
)

const RistrettoEncodeLen = 32 // ristretto point encoded length, as well as derived key length

// RistrettoWriter writes marshaled go-ristretto points
type RistrettoWriter struct {
	w io.Writer
}

// RistrettoReader reads marshaled go-ristretto points
type RistrettoReader struct {
	r io.Reader
}

func NewRistrettoWriter(w io.Writer) *RistrettoWriter {
	return &RistrettoWriter{w: w}
}

func NewRistrettoReader(r io.Reader) *RistrettoReader {
	return &RistrettoReader{r: r}
}

// Write writes the marshaled point p to the writer
func (w *RistrettoWriter) Write(p *gr.Point) error {
	pByte, err := p.MarshalBinary()
	if err != nil {
		return err
	}

	_, err = w.w.Write(pByte)
	return err
}

// Read reads a marshaled point from the reader and stores it in p
func (r *RistrettoReader) Read(p *gr.Point) error {
	pt := make([]byte, RistrettoEncodeLen)
	if _, err := io.ReadFull(r.r, pt); err != nil {
		return err
	}

	return p.UnmarshalBinary(pt)
}

// GenerateRistrettoKeys returns a secret key scalar
// and its public key point
func GenerateRistrettoKeys() (secretKey gr.Scalar, publicKey gr.Point) {
	secretKey.Rand()
	publicKey.ScalarMultBase(&secretKey)

	return
}

// GeneratePublicRistrettoKey returns a random point whose
// discrete log is unknown to the caller
func GeneratePublicRistrettoKey() (publicKey gr.Point) {
	publicKey.Rand()
	return
}

// DeriveRistrettoKey returns a 32 byte key from a ristretto point
func DeriveRistrettoKey(point *gr.Point) ([]byte, error) {
	buf, err := point.MarshalBinary()
	if err != nil {
		return nil, err
	}

	key := blake3.Sum256(buf)
	return key[:], nil
}
