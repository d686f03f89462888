package cryptox

import (
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/totpkeeper/internal/common"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher turns a plaintext password into a self-describing salted
// encoding and checks candidates against it. Encodings never reveal the
// password and two hashes of the same password differ.
type PasswordHasher interface {
	Hash(password string) (string, error)
	// Verify reports a mismatch as (false, nil). An error means the stored
	// encoding could not be interpreted.
	Verify(password, encoded string) (bool, error)
}

const (
	HasherBcrypt   = "bcrypt"
	HasherArgon2id = "argon2id"
)

// NewPasswordHasher selects the hashing implementation by name. The result
// verifies encodings of either scheme, so switching the configured name keeps
// existing accounts usable.
func NewPasswordHasher(name string, bcryptCost int) (PasswordHasher, error) {
	switch name {
	case HasherBcrypt, "":
		return NewSchemeHasher(NewBcryptHasher(bcryptCost)), nil
	case HasherArgon2id:
		return NewSchemeHasher(NewArgon2Hasher()), nil
	default:
		return nil, fmt.Errorf("unknown password hasher %q", name)
	}
}

// SchemeHasher hashes with one implementation and verifies with whichever
// implementation produced the stored encoding, told apart by its prefix.
// Verification parameters always come from the encoding itself.
type SchemeHasher struct {
	hash   PasswordHasher
	bcrypt *BcryptHasher
	argon2 *Argon2Hasher
}

func NewSchemeHasher(hash PasswordHasher) *SchemeHasher {
	return &SchemeHasher{hash: hash, bcrypt: NewBcryptHasher(bcrypt.MinCost), argon2: NewArgon2Hasher()}
}

func (h *SchemeHasher) Hash(password string) (string, error) {
	return h.hash.Hash(password)
}

func (h *SchemeHasher) Verify(password, encoded string) (bool, error) {
	switch {
	case strings.HasPrefix(encoded, "$argon2id$"):
		return h.argon2.Verify(password, encoded)
	case strings.HasPrefix(encoded, "$2a$"), strings.HasPrefix(encoded, "$2b$"), strings.HasPrefix(encoded, "$2y$"):
		return h.bcrypt.Verify(password, encoded)
	default:
		return false, fmt.Errorf("%w: unrecognised password hash scheme", common.ErrCrypto)
	}
}

type BcryptHasher struct {
	cost int
}

// NewBcryptHasher clamps cost into bcrypt's accepted range.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", fmt.Errorf("%w: password longer than 72 bytes", common.ErrInvalidInput)
		}
		return "", fmt.Errorf("%w: bcrypt: %v", common.ErrCrypto, err)
	}
	return string(b), nil
}

func (h *BcryptHasher) Verify(password, encoded string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(encoded), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword), errors.Is(err, bcrypt.ErrPasswordTooLong):
		return false, nil
	default:
		return false, fmt.Errorf("%w: bcrypt: %v", common.ErrCrypto, err)
	}
}

// Argon2Hasher stores hashes in the PHC string format:
//
//	$argon2id$v=19$m=65536,t=1,p=4$<salt>$<hash>
type Argon2Hasher struct {
	time    uint32
	memory  uint32
	threads uint8
	keyLen  uint32
	saltLen int
}

func NewArgon2Hasher() *Argon2Hasher {
	return &Argon2Hasher{time: 1, memory: 64 * 1024, threads: 4, keyLen: 32, saltLen: 16}
}

var errMalformedHash = errors.New("malformed argon2id hash")

func (h *Argon2Hasher) Hash(password string) (string, error) {
	salt := common.GenerateRandByteArray(h.saltLen)
	key := argon2.IDKey([]byte(password), salt, h.time, h.memory, h.threads, h.keyLen)

	b64 := base64.RawStdEncoding
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, h.memory, h.time, h.threads,
		b64.EncodeToString(salt), b64.EncodeToString(key)), nil
}

func (h *Argon2Hasher) Verify(password, encoded string) (bool, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false, fmt.Errorf("%w: %w", common.ErrCrypto, errMalformedHash)
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return false, fmt.Errorf("%w: %w", common.ErrCrypto, errMalformedHash)
	}

	var memory, iterations uint32
	var threads uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &threads); err != nil || iterations == 0 || threads == 0 {
		return false, fmt.Errorf("%w: %w", common.ErrCrypto, errMalformedHash)
	}

	b64 := base64.RawStdEncoding
	salt, err := b64.DecodeString(parts[4])
	if err != nil {
		return false, fmt.Errorf("%w: %w", common.ErrCrypto, errMalformedHash)
	}
	want, err := b64.DecodeString(parts[5])
	if err != nil || len(want) == 0 {
		return false, fmt.Errorf("%w: %w", common.ErrCrypto, errMalformedHash)
	}

	got := argon2.IDKey([]byte(password), salt, iterations, memory, threads, uint32(len(want)))
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}
