package crypto

import (
	"crypto/elliptic"
	"crypto/rand"
	"errors"
	"io"
	"math/big"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/zeebo/blake3"
)

/*
High level api for operating on elliptic curve Points.
*/

const (
	P256      = "P256"
	P384      = "P384"
	P521      = "P521"
	Secp256k1 = "secp256k1"
)

var (
	ErrUnknownCurve = errors.New("unknown elliptic curve")
	ErrInvalidPoint = errors.New("received point is not on the curve")
)

// InitCurve instantiates the elliptic curve named curveName and returns the
// number of bytes needed to encode an uncompressed point on it.
func InitCurve(curveName string) (curve elliptic.Curve, encodeLen int, err error) {
	switch curveName {
	case P256:
		curve = elliptic.P256()
	case P384:
		curve = elliptic.P384()
	case P521:
		curve = elliptic.P521()
	case Secp256k1:
		curve = secp256k1.S256()
	default:
		return nil, 0, ErrUnknownCurve
	}
	encodeLen = len(elliptic.Marshal(curve, curve.Params().Gx, curve.Params().Gy))
	return curve, encodeLen, nil
}

// Points represents a point on an elliptic curve
type Points struct {
	curve elliptic.Curve
	x     *big.Int
	y     *big.Int
}

// NewPoints returns a blank point on curve
func NewPoints(curve elliptic.Curve) Points {
	return Points{curve: curve, x: new(big.Int), y: new(big.Int)}
}

func newPoints(curve elliptic.Curve, x, y *big.Int) Points {
	return Points{curve: curve, x: x, y: y}
}

// Marshal converts a point to its uncompressed byte representation
func (p Points) Marshal() []byte {
	return elliptic.Marshal(p.curve, p.x, p.y)
}

// Unmarshal decodes marshaledPoint into p, rejecting points that are
// not on the curve.
func (p Points) Unmarshal(marshaledPoint []byte) error {
	x, y := elliptic.Unmarshal(p.curve, marshaledPoint)
	// on error of unmarshal, x is nil
	if x == nil {
		return ErrInvalidPoint
	}

	p.x.Set(x)
	p.y.Set(y)
	return nil
}

// Add adds two points on the same curve
func (p Points) Add(q Points) Points {
	x, y := p.curve.Add(p.x, p.y, q.x, q.y)
	return newPoints(p.curve, x, y)
}

// ScalarMult multiplies a point with a big endian scalar
func (p Points) ScalarMult(scalar []byte) Points {
	x, y := p.curve.ScalarMult(p.x, p.y, scalar)
	return newPoints(p.curve, x, y)
}

// Sub returns p - q. The negation of q is (x, P - y) so the operand
// stays a valid, reduced point.
func (p Points) Sub(q Points) Points {
	negY := new(big.Int).Sub(p.curve.Params().P, q.y)
	negY.Mod(negY, p.curve.Params().P)
	x, y := p.curve.Add(p.x, p.y, q.x, negY)
	return newPoints(p.curve, x, y)
}

// DeriveKey returns a 32 byte key from an elliptic curve point
func (p Points) DeriveKey() []byte {
	key := blake3.Sum256(p.Marshal())
	return key[:]
}

// GenerateKeyWithPoints returns a secret scalar and its public point
func GenerateKeyWithPoints(curve elliptic.Curve) ([]byte, Points, error) {
	secret, x, y, err := elliptic.GenerateKey(curve, rand.Reader)
	if err != nil {
		return nil, Points{}, err
	}

	return secret, newPoints(curve, x, y), nil
}

// PointsWriter writes marshaled points to w
type PointsWriter struct {
	w io.Writer
}

// PointsReader reads marshaled points of a fixed encoded length from r
type PointsReader struct {
	r         io.Reader
	encodeLen int
}

func NewPointsWriter(w io.Writer) *PointsWriter {
	return &PointsWriter{w: w}
}

func NewPointsReader(r io.Reader, encodeLen int) *PointsReader {
	return &PointsReader{r: r, encodeLen: encodeLen}
}

// Write writes the marshaled point p
func (w *PointsWriter) Write(p Points) error {
	_, err := w.w.Write(p.Marshal())
	return err
}

// Read reads one marshaled point into p
func (r *PointsReader) Read(p Points) error {
	pt := make([]byte, r.encodeLen)
	if _, err := io.ReadFull(r.r, pt); err != nil {
		return err
	}

	return p.Unmarshal(pt)
}
