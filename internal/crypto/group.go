package crypto

import (
	"io"

	"github.com/zeebo/blake3"
	"go.dedis.ch/kyber/v3"
	"go.dedis.ch/kyber/v3/suites"
)

// Group wraps a kyber suite for the base OTs that are written
// against an abstract prime order group rather than a concrete
// curve library.
type Group struct {
	suite suites.Suite
}

// NewEd25519Group returns the Ed25519 kyber group.
func NewEd25519Group() Group {
	return Group{suite: suites.MustFind("Ed25519")}
}

// Point returns a new, unset point of the group.
func (g Group) Point() kyber.Point {
	return g.suite.Point()
}

// GenerateKeys returns a random secret scalar and its public point.
func (g Group) GenerateKeys() (kyber.Scalar, kyber.Point) {
	secret := g.suite.Scalar().Pick(g.suite.RandomStream())
	return secret, g.suite.Point().Mul(secret, nil)
}

// Write writes the marshaled point p to w.
func (g Group) Write(w io.Writer, p kyber.Point) error {
	_, err := p.MarshalTo(w)
	return err
}

// Read reads one marshaled point from r.
func (g Group) Read(r io.Reader) (kyber.Point, error) {
	p := g.suite.Point()
	if _, err := p.UnmarshalFrom(r); err != nil {
		return nil, err
	}
	return p, nil
}

// DeriveGroupKey returns a 32 byte key from a group element.
func DeriveGroupKey(p kyber.Point) ([]byte, error) {
	buf, err := p.MarshalBinary()
	if err != nil {
		return nil, err
	}

	key := blake3.Sum256(buf)
	return key[:], nil
}
