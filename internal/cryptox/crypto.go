// Package cryptox holds the cryptographic building blocks of the account
// engine: at-rest encryption of TOTP secrets, secret generation, encryption
// key handling and password hashing.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/totpkeeper/internal/common"
)

// KeySize is the AES-256 key length in bytes.
const KeySize = 32

var (
	ErrInvalidKeyLength = errors.New("encryption key must be 32 bytes")
	ErrCiphertextShort  = errors.New("ciphertext too short")
)

// Encrypt seals plaintext with AES-256-GCM under key. The output is
// nonce || ciphertext || tag, with a fresh random nonce on every call, so
// encrypting the same input twice yields different bytes.
func Encrypt(plaintext, key []byte) ([]byte, error) {
	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("%w: nonce: %v", common.ErrCrypto, err)
	}

	return aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Decrypt reverses Encrypt. Tampered input or a wrong key fail
// authentication and return an error matching common.ErrCrypto.
func Decrypt(ciphertext, key []byte) ([]byte, error) {
	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	ns := aead.NonceSize()
	if len(ciphertext) < ns+aead.Overhead() {
		return nil, fmt.Errorf("%w: %w", common.ErrCrypto, ErrCiphertextShort)
	}

	plaintext, err := aead.Open(nil, ciphertext[:ns], ciphertext[ns:], nil)
	if err != nil {
		return nil, fmt.Errorf("%w: open: %v", common.ErrCrypto, err)
	}
	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: %w", common.ErrCrypto, ErrInvalidKeyLength)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrCrypto, err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrCrypto, err)
	}
	return aead, nil
}

// Encryptor binds Encrypt and Decrypt to one process-wide key.
type Encryptor struct {
	key []byte
}

// NewEncryptor copies key, so the caller may wipe its own buffer.
func NewEncryptor(key []byte) (*Encryptor, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: %w", common.ErrCrypto, ErrInvalidKeyLength)
	}
	k := make([]byte, KeySize)
	copy(k, key)
	return &Encryptor{key: k}, nil
}

func (e *Encryptor) Encrypt(plaintext []byte) ([]byte, error) {
	return Encrypt(plaintext, e.key)
}

func (e *Encryptor) Decrypt(ciphertext []byte) ([]byte, error) {
	return Decrypt(ciphertext, e.key)
}
