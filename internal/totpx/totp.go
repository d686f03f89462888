// Package totpx computes RFC 6238 codes (HMAC-SHA1, 6 digits, 30 s step)
// from raw secret bytes and builds otpauth:// provisioning URIs and QR
// images for authenticator apps.
package totpx

import (
	"encoding/base32"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/totpkeeper/internal/common"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	skipqrcode "github.com/skip2/go-qrcode"
)

const (
	Period = 30
	Digits = otp.DigitsSix
	// Skew is the number of steps either side of now accepted by Validate.
	Skew = 1
)

var (
	ErrEmptySecret  = errors.New("empty totp secret")
	ErrEmptyContent = errors.New("empty qr content")
)

var b32 = base32.StdEncoding.WithPadding(base32.NoPadding)

// EncodeSecret renders raw secret bytes the way authenticator apps expect:
// upper-case base32 without padding.
func EncodeSecret(secret []byte) string {
	return b32.EncodeToString(secret)
}

func opts() totp.ValidateOpts {
	return totp.ValidateOpts{
		Period:    Period,
		Skew:      Skew,
		Digits:    Digits,
		Algorithm: otp.AlgorithmSHA1,
	}
}

// Code returns the 6-digit code for secret at t.
func Code(secret []byte, t time.Time) (string, error) {
	if len(secret) == 0 {
		return "", fmt.Errorf("%w: %w", common.ErrCrypto, ErrEmptySecret)
	}
	o := opts()
	o.Skew = 0
	code, err := totp.GenerateCodeCustom(EncodeSecret(secret), t, o)
	if err != nil {
		return "", fmt.Errorf("%w: totp: %v", common.ErrCrypto, err)
	}
	return code, nil
}

// Validate reports whether code matches secret at t, tolerating Skew steps
// of clock drift.
func Validate(code string, secret []byte, t time.Time) (bool, error) {
	if len(secret) == 0 {
		return false, fmt.Errorf("%w: %w", common.ErrCrypto, ErrEmptySecret)
	}
	ok, err := totp.ValidateCustom(strings.TrimSpace(code), EncodeSecret(secret), t, opts())
	if err != nil {
		if errors.Is(err, otp.ErrValidateInputInvalidLength) {
			return false, nil
		}
		return false, fmt.Errorf("%w: totp: %v", common.ErrCrypto, err)
	}
	return ok, nil
}

// ProvisioningURI builds the otpauth://totp/ URI that enrolls secret in an
// authenticator app under issuer:account.
func ProvisioningURI(issuer, account string, secret []byte) (string, error) {
	if len(secret) == 0 {
		return "", fmt.Errorf("%w: %w", common.ErrCrypto, ErrEmptySecret)
	}
	if issuer == "" {
		issuer = common.DefaultIssuer
	}
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: account,
		Period:      Period,
		Secret:      secret,
		Digits:      Digits,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return "", fmt.Errorf("%w: totp: %v", common.ErrCrypto, err)
	}
	return key.URL(), nil
}

// QRCode encodes content as a size x size PNG.
func QRCode(content string, size int) ([]byte, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	if size <= 0 {
		size = 256
	}
	png, err := skipqrcode.Encode(content, skipqrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("qrcode: %w", err)
	}
	return png, nil
}
