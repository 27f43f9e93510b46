package otext

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
	"github.com/optable/otext/internal/hash"
)

// maxParamsLen bounds the encoded Params a peer may announce.
const maxParamsLen = 1 << 10

// Params are the session parameters both peers announce before any
// base OT runs.
type Params struct {
	Variant            Variant
	SecurityParameter  int
	ItemCount          int
	LengthsFingerprint uint64
}

func newParams(v Variant, cfg Config, salt []byte, msgLen []int) (Params, error) {
	h, err := hash.New(cfg.Fingerprint, salt)
	if err != nil {
		return Params{}, err
	}

	lengths := make([]byte, 8*len(msgLen))
	for j, l := range msgLen {
		binary.BigEndian.PutUint64(lengths[8*j:], uint64(l))
	}

	return Params{
		Variant:            v,
		SecurityParameter:  cfg.SecurityParameter,
		ItemCount:          len(msgLen),
		LengthsFingerprint: h.Hash64(lengths),
	}, nil
}

// match returns an ErrSecurityParameterMismatch naming the first
// field on which p and q differ.
func (p Params) match(q Params) error {
	switch {
	case p.Variant != q.Variant:
		return fmt.Errorf("%w: variant %s, peer has %s", ErrSecurityParameterMismatch, p.Variant, q.Variant)
	case p.SecurityParameter != q.SecurityParameter:
		return fmt.Errorf("%w: security parameter %d, peer has %d", ErrSecurityParameterMismatch, p.SecurityParameter, q.SecurityParameter)
	case p.ItemCount != q.ItemCount:
		return fmt.Errorf("%w: item count %d, peer has %d", ErrSecurityParameterMismatch, p.ItemCount, q.ItemCount)
	case p.LengthsFingerprint != q.LengthsFingerprint:
		return fmt.Errorf("%w: message lengths differ", ErrSecurityParameterMismatch)
	}
	return nil
}

func writeParams(w io.Writer, p Params) error {
	b, err := cbor.Marshal(p)
	if err != nil {
		return err
	}

	if err := binary.Write(w, binary.BigEndian, uint32(len(b))); err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

func readParams(r io.Reader) (p Params, err error) {
	var l uint32
	if err := binary.Read(r, binary.BigEndian, &l); err != nil {
		return p, err
	}
	if l > maxParamsLen {
		return p, fmt.Errorf("peer announced %d bytes of parameters", l)
	}

	b := make([]byte, l)
	if _, err := io.ReadFull(r, b); err != nil {
		return p, err
	}

	err = cbor.Unmarshal(b, &p)
	return p, err
}

// senderHandshake writes a fresh salt and the local Params, then reads
// and compares the peer's.
func senderHandshake(rw io.ReadWriter, v Variant, cfg Config, msgLen []int) error {
	salt := make([]byte, hash.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return err
	}
	if _, err := rw.Write(salt); err != nil {
		return err
	}

	local, err := newParams(v, cfg, salt, msgLen)
	if err != nil {
		return err
	}
	if err := writeParams(rw, local); err != nil {
		return err
	}

	remote, err := readParams(rw)
	if err != nil {
		return err
	}
	return local.match(remote)
}

// receiverHandshake reads the salt and the peer's Params, answers with
// the local Params and compares them. The peer's Params are read
// before answering so the two sides never write at the same time.
func receiverHandshake(rw io.ReadWriter, v Variant, cfg Config, msgLen []int) error {
	salt := make([]byte, hash.SaltLength)
	if _, err := io.ReadFull(rw, salt); err != nil {
		return err
	}

	remote, err := readParams(rw)
	if err != nil {
		return err
	}

	local, err := newParams(v, cfg, salt, msgLen)
	if err != nil {
		return err
	}
	if err := writeParams(rw, local); err != nil {
		return err
	}
	return local.match(remote)
}
