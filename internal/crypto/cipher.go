package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"

	"github.com/optable/otext/internal/util"
	"github.com/zeebo/blake3"
	"golang.org/x/crypto/blake2b"
)

/*
Cipher suites used to carry base OT payloads under a key
derived from a shared group element.
*/

const (
	GCM = iota
	XORBlake2
	XORBlake3

	nonceSize = 12 // aesgcm NonceSize
)

var (
	ErrUnknownCipherMode = errors.New("unknown cipher mode")
	ErrShortCiphertext   = errors.New("ciphertext is shorter than the gcm nonce and tag")
)

// Encrypt encrypts plaintext under key. ind is the branch of the
// OT pair the plaintext belongs to and tweaks the XOR modes.
func Encrypt(mode int, key []byte, ind uint8, plaintext []byte) ([]byte, error) {
	switch mode {
	case GCM:
		return gcmEncrypt(key, plaintext)
	case XORBlake2:
		return xorCipherWithBlake2(key, ind, plaintext)
	case XORBlake3:
		return xorCipherWithBlake3(key, ind, plaintext)
	}

	return nil, ErrUnknownCipherMode
}

// Decrypt reverses Encrypt.
func Decrypt(mode int, key []byte, ind uint8, ciphertext []byte) ([]byte, error) {
	switch mode {
	case GCM:
		return gcmDecrypt(key, ciphertext)
	case XORBlake2:
		return xorCipherWithBlake2(key, ind, ciphertext)
	case XORBlake3:
		return xorCipherWithBlake3(key, ind, ciphertext)
	}

	return nil, ErrUnknownCipherMode
}

// EncryptLen returns the ciphertext length in bytes for a
// plaintext of msgLen bytes.
func EncryptLen(mode int, msgLen int) int {
	if mode == GCM {
		return nonceSize + aes.BlockSize + msgLen
	}
	return msgLen
}

// xorCipherWithBlake3 returns H(key, ind) XOR src where H is the
// blake3 XOF. Encryption and decryption are the same operation.
func xorCipherWithBlake3(key []byte, ind uint8, src []byte) ([]byte, error) {
	h := blake3.New()
	h.Write(key)
	h.Write([]byte{ind})

	dst := make([]byte, len(src))
	if _, err := h.Digest().Read(dst); err != nil {
		return nil, err
	}

	util.Xor(dst, src)
	return dst, nil
}

// xorCipherWithBlake2 is the blake2b XOF analogue of xorCipherWithBlake3.
func xorCipherWithBlake2(key []byte, ind uint8, src []byte) ([]byte, error) {
	dst := make([]byte, len(src))
	if len(src) == 0 {
		return dst, nil
	}

	d, err := blake2b.NewXOF(uint32(len(dst)), nil)
	if err != nil {
		return nil, err
	}
	d.Write(key)
	d.Write([]byte{ind})
	if _, err := d.Read(dst); err != nil {
		return nil, err
	}

	util.Xor(dst, src)
	return dst, nil
}

func gcmEncrypt(key []byte, plaintext []byte) ([]byte, error) {
	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}

	// encrypted cipher text is appended after nonce
	return aesgcm.Seal(nonce, nonce, plaintext, nil), nil
}

func gcmDecrypt(key []byte, ciphertext []byte) ([]byte, error) {
	if len(ciphertext) < nonceSize+aes.BlockSize {
		return nil, ErrShortCiphertext
	}

	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce, enc := ciphertext[:nonceSize], ciphertext[nonceSize:]
	return aesgcm.Open(nil, nonce, enc, nil)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	return cipher.NewGCM(block)
}
