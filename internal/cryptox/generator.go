package cryptox

import (
	"crypto/rand"
	"fmt"
	"io"

	"github.com/dmitrijs2005/totpkeeper/internal/common"
)

// SecretSize is the length of a generated TOTP shared secret (256 bits).
const SecretSize = 32

// SecretGenerator produces TOTP shared secrets from a CSPRNG.
type SecretGenerator struct {
	r io.Reader
}

// NewSecretGenerator reads from crypto/rand. A nil reader selects the default;
// tests pass their own to force failures.
func NewSecretGenerator(r io.Reader) *SecretGenerator {
	if r == nil {
		r = rand.Reader
	}
	return &SecretGenerator{r: r}
}

// Generate returns SecretSize fresh random bytes.
func (g *SecretGenerator) Generate() ([]byte, error) {
	b := make([]byte, SecretSize)
	if _, err := io.ReadFull(g.r, b); err != nil {
		common.WipeByteArray(b)
		return nil, fmt.Errorf("%w: generate secret: %v", common.ErrCrypto, err)
	}
	return b, nil
}
