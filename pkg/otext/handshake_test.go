package otext

import (
	"bytes"
	"net"
	"strconv"
	"testing"

	"github.com/optable/otext/internal/hash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func handshake(sv Variant, scfg Config, sLen []int, rv Variant, rcfg Config, rLen []int) (error, error) {
	sconn, rconn := net.Pipe()
	errs := make(chan error, 1)
	go func() {
		defer sconn.Close()
		errs <- senderHandshake(sconn, sv, scfg, sLen)
	}()

	rerr := receiverHandshake(rconn, rv, rcfg, rLen)
	rconn.Close()
	return <-errs, rerr
}

func TestHandshake(t *testing.T) {
	cfg := NewConfig(k)
	msgLen := []int{4, 4, 4, 4, 4, 4, 4, 4}

	serr, rerr := handshake(IKNP, cfg, msgLen, IKNP, cfg, msgLen)
	require.NoError(t, serr)
	require.NoError(t, rerr)

	for _, fingerprint := range []int{hash.Murmur3, hash.Metro, hash.Highway} {
		cfg.Fingerprint = fingerprint
		serr, rerr := handshake(NNOB, cfg, msgLen, NNOB, cfg, msgLen)
		assert.NoError(t, serr)
		assert.NoError(t, rerr)
	}
}

func TestHandshakeMismatch(t *testing.T) {
	cfg := NewConfig(k)
	other := NewConfig(128)
	msgLen := []int{4, 4, 4, 4, 4, 4, 4, 4}
	longer := []int{4, 4, 4, 4, 4, 4, 4, 5}
	more := append([]int{4, 4, 4, 4, 4, 4, 4, 4}, msgLen...)

	type testCase struct {
		name  string
		field string
		rv    Variant
		rcfg  Config
		rLen  []int
	}

	for _, tc := range []testCase{
		{"variant", "variant", NNOB, cfg, msgLen},
		{"security parameter", "security parameter", IKNP, other, msgLen},
		{"item count", "item count", IKNP, cfg, more},
		{"lengths", "message lengths", IKNP, cfg, longer},
	} {
		t.Run(tc.name, func(t *testing.T) {
			serr, rerr := handshake(IKNP, cfg, msgLen, tc.rv, tc.rcfg, tc.rLen)
			require.ErrorIs(t, serr, ErrSecurityParameterMismatch)
			require.ErrorIs(t, rerr, ErrSecurityParameterMismatch)
			assert.Contains(t, serr.Error(), tc.field)
			assert.Contains(t, rerr.Error(), tc.field)
		})
	}
}

func TestHandshakeOversizedParams(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0, 0, 0x10, 0})
	_, err := readParams(&buf)
	assert.Error(t, err)
}

func TestParamsRoundTrip(t *testing.T) {
	salt := bytes.Repeat([]byte{7}, hash.SaltLength)
	p, err := newParams(NNOB, NewConfig(k), salt, []int{1, 2, 3})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, writeParams(&buf, p))
	q, err := readParams(&buf)
	require.NoError(t, err)
	assert.Equal(t, p, q)

	// the fingerprint depends on the salt
	salt[0] = 8
	r, err := newParams(NNOB, NewConfig(k), salt, []int{1, 2, 3})
	require.NoError(t, err)
	assert.NotEqual(t, p.LengthsFingerprint, r.LengthsFingerprint)
}

func TestParamsWideLengths(t *testing.T) {
	if strconv.IntSize < 64 {
		t.Skip("int cannot hold 1<<32")
	}
	salt := bytes.Repeat([]byte{7}, hash.SaltLength)
	wide := 1
	wide <<= 32

	p, err := newParams(IKNP, NewConfig(k), salt, []int{0})
	require.NoError(t, err)
	q, err := newParams(IKNP, NewConfig(k), salt, []int{wide})
	require.NoError(t, err)
	assert.NotEqual(t, p.LengthsFingerprint, q.LengthsFingerprint)
	assert.ErrorIs(t, p.match(q), ErrSecurityParameterMismatch)
}
