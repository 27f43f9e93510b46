package otext

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/zeebo/blake3"
)

const (
	verdictFail byte = iota
	verdictPass
)

// digestLen is the length of a blake3 pair digest.
const digestLen = 32

// ConsistencyVerifier runs the pairwise check of NNOB. For pair p of
// pairs, z[p] is the XOR of the two paired rows as computed locally:
// T0_a ^ T0_b ^ d_p*r on the receiver and Q_a ^ Q_b on the sender. An
// honest receiver produces the same z as the sender on every pair.
type ConsistencyVerifier interface {
	// Prove is run by the extension receiver.
	Prove(pairs [][2]int, z [][]byte, rw io.ReadWriter) error
	// Verify is run by the extension sender and returns
	// ErrConsistencyCheck if any pair disagrees.
	Verify(pairs [][2]int, z [][]byte, rw io.ReadWriter) error
}

// hashVerifier commits to every z[p] with blake3 and lets the sender
// compare the digests with its own. The sender answers with a one byte
// verdict so that both sides abort together.
type hashVerifier struct{}

// NewHashVerifier returns the default ConsistencyVerifier.
func NewHashVerifier() ConsistencyVerifier {
	return hashVerifier{}
}

func pairDigest(p int, z []byte) []byte {
	var idx [4]byte
	binary.BigEndian.PutUint32(idx[:], uint32(p))

	h := blake3.New()
	h.Write(idx[:])
	h.Write(z)
	return h.Sum(nil)
}

func (hashVerifier) Prove(pairs [][2]int, z [][]byte, rw io.ReadWriter) error {
	buf := make([]byte, 0, len(pairs)*digestLen)
	for p := range pairs {
		buf = append(buf, pairDigest(p, z[p])...)
	}
	if _, err := rw.Write(buf); err != nil {
		return err
	}

	var verdict [1]byte
	if _, err := io.ReadFull(rw, verdict[:]); err != nil {
		return err
	}
	if verdict[0] != verdictPass {
		return ErrConsistencyCheck
	}
	return nil
}

func (hashVerifier) Verify(pairs [][2]int, z [][]byte, rw io.ReadWriter) error {
	digest := make([]byte, digestLen)
	var failed int
	for p := range pairs {
		if _, err := io.ReadFull(rw, digest); err != nil {
			return err
		}
		if !bytes.Equal(digest, pairDigest(p, z[p])) {
			failed++
		}
	}

	verdict := verdictPass
	if failed > 0 {
		verdict = verdictFail
	}
	if _, err := rw.Write([]byte{verdict}); err != nil {
		return err
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d pairs disagree", ErrConsistencyCheck, failed, len(pairs))
	}
	return nil
}
