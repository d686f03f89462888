package common

import (
	"encoding/hex"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeRandHexString_LengthAndHex(t *testing.T) {
	const n = 16
	s, err := MakeRandHexString(n)
	require.NoError(t, err)
	assert.Len(t, s, n*2)

	_, err = hex.DecodeString(s)
	assert.NoError(t, err, "string is not valid hex")
}

func TestMakeRandHexString_ZeroSize(t *testing.T) {
	s, err := MakeRandHexString(0)
	require.NoError(t, err)
	assert.Empty(t, s)
}

func TestGenerateRandByteArray_LengthAndEntropy(t *testing.T) {
	const n = 32
	a := GenerateRandByteArray(n)
	b := GenerateRandByteArray(n)

	require.Len(t, a, n)
	require.Len(t, b, n)
	assert.NotEqual(t, a, b)
}

func TestWipeByteArray(t *testing.T) {
	buf := []byte{1, 2, 3, 4, 5}
	WipeByteArray(buf)
	assert.Equal(t, []byte{0, 0, 0, 0, 0}, buf)

	// nil must not panic
	WipeByteArray(nil)
}

func TestSentinelErrors_MatchThroughWrapping(t *testing.T) {
	sentinels := []error{
		ErrorNotFound,
		ErrorAlreadyExists,
		ErrorInternal,
		ErrInvalidInput,
		ErrDuplicateAccount,
		ErrAccountNotFound,
		ErrInvalidCredentials,
		ErrCrypto,
	}

	for i, s := range sentinels {
		wrapped := fmt.Errorf("layer: %w", s)
		assert.ErrorIs(t, wrapped, s)

		for j, other := range sentinels {
			if i != j {
				assert.False(t, errors.Is(wrapped, other), "%v must not match %v", s, other)
			}
		}
	}
}
