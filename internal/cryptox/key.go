package cryptox

import (
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/totpkeeper/internal/common"
)

var ErrKeyNotSet = errors.New("encryption key not set")

// ParseKey decodes the configured encryption key. Standard base64 and
// 64-character hex are accepted; anything not decoding to 32 bytes is
// rejected.
func ParseKey(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, ErrKeyNotSet
	}

	if len(s) == hex.EncodedLen(KeySize) {
		if k, err := hex.DecodeString(s); err == nil {
			return k, nil
		}
	}

	k, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode encryption key: %w", err)
	}
	if len(k) != KeySize {
		return nil, ErrInvalidKeyLength
	}
	return k, nil
}

// GenerateKey returns a fresh random AES-256 key.
func GenerateKey() []byte {
	return common.GenerateRandByteArray(KeySize)
}

// GenerateEncodedKey returns a fresh key in the base64 form ParseKey reads.
func GenerateEncodedKey() string {
	k := GenerateKey()
	defer common.WipeByteArray(k)
	return base64.StdEncoding.EncodeToString(k)
}
