// Package services contains server-side business logic. This file implements
// AccountService, the credential and TOTP secret lifecycle: sign-up,
// password authentication with secret rotation, and code provisioning.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/totpkeeper/internal/common"
	"github.com/dmitrijs2005/totpkeeper/internal/cryptox"
	"github.com/dmitrijs2005/totpkeeper/internal/logging"
	"github.com/dmitrijs2005/totpkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/totpkeeper/internal/server/models"
	"github.com/dmitrijs2005/totpkeeper/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/totpkeeper/internal/totpx"
)

// SecretEncryptor seals TOTP secrets under the server key.
type SecretEncryptor interface {
	Encrypt(plaintext []byte) ([]byte, error)
	Decrypt(ciphertext []byte) ([]byte, error)
}

// SecretGenerator produces fresh TOTP secret material.
type SecretGenerator interface {
	Generate() ([]byte, error)
}

// EventRecorder counts account lifecycle events. *metrics.Metrics satisfies it.
type EventRecorder interface {
	AccountEvent(event string)
}

type noEvents struct{}

func (noEvents) AccountEvent(string) {}

type AccountService struct {
	repo      accounts.Repository
	hasher    cryptox.PasswordHasher
	generator SecretGenerator
	encryptor SecretEncryptor
	logger    logging.Logger
	events    EventRecorder
	issuer    string
	now       func() time.Time
	code      func(secret []byte, t time.Time) (string, error)
	validate  func(code string, secret []byte, t time.Time) (bool, error)

	// dummyHash is verified against when the username is unknown so the
	// miss costs as much as a wrong password.
	dummyHash string
}

type Option func(*AccountService)

func WithIssuer(issuer string) Option {
	return func(s *AccountService) { s.issuer = issuer }
}

func WithClock(now func() time.Time) Option {
	return func(s *AccountService) { s.now = now }
}

func WithEvents(r EventRecorder) Option {
	return func(s *AccountService) { s.events = r }
}

func NewAccountService(
	repo accounts.Repository,
	hasher cryptox.PasswordHasher,
	generator SecretGenerator,
	encryptor SecretEncryptor,
	logger logging.Logger,
	opts ...Option,
) (*AccountService, error) {
	s := &AccountService{
		repo:      repo,
		hasher:    hasher,
		generator: generator,
		encryptor: encryptor,
		logger:    logger.With("module", "accounts"),
		events:    noEvents{},
		issuer:    common.DefaultIssuer,
		now:       time.Now,
		code:      totpx.Code,
		validate:  totpx.Validate,
	}
	for _, opt := range opts {
		opt(s)
	}

	filler, err := common.MakeRandHexString(16)
	if err != nil {
		return nil, fmt.Errorf("dummy password: %w", err)
	}
	if s.dummyHash, err = hasher.Hash(filler); err != nil {
		return nil, fmt.Errorf("dummy hash: %w", err)
	}
	return s, nil
}

// CreateAccount registers username with a hashed password and a freshly
// generated, encrypted TOTP secret. Surrounding whitespace is trimmed from
// the username; the password is used verbatim.
func (s *AccountService) CreateAccount(ctx context.Context, username, password string) (*models.Account, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", common.ErrInvalidInput)
	}

	exists, err := s.repo.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if exists {
		s.events.AccountEvent(metrics.EventRejected)
		return nil, common.ErrDuplicateAccount
	}

	encrypted, err := s.newEncryptedSecret()
	if err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	saved, err := s.repo.Save(ctx, &models.Account{
		Username:        username,
		PasswordHash:    hash,
		EncryptedSecret: encrypted,
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			s.events.AccountEvent(metrics.EventRejected)
			return nil, common.ErrDuplicateAccount
		}
		return nil, fmt.Errorf("save account: %w", err)
	}

	s.events.AccountEvent(metrics.EventCreated)
	s.logger.Info(ctx, "account created", "account_id", saved.ID, "username", saved.Username)
	return saved, nil
}

// Authenticate checks the password and, on success, rotates the account's
// TOTP secret and returns the rotated account. An empty username is simply
// an unknown one.
func (s *AccountService) Authenticate(ctx context.Context, username, password string) (*models.Account, error) {
	username = strings.TrimSpace(username)

	account, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			_, _ = s.hasher.Verify(password, s.dummyHash)
			s.events.AccountEvent(metrics.EventRejected)
			return nil, common.ErrAccountNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}

	ok, err := s.hasher.Verify(password, account.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		s.events.AccountEvent(metrics.EventRejected)
		s.logger.Warn(ctx, "authentication failed", "account_id", account.ID)
		return nil, common.ErrInvalidCredentials
	}

	s.events.AccountEvent(metrics.EventAuthenticated)
	return s.RotateSecret(ctx, account.ID)
}

// RotateSecret replaces the account's TOTP secret with a fresh one. The new
// ciphertext is fully prepared before the single store write, so a crypto
// failure leaves the stored account untouched.
func (s *AccountService) RotateSecret(ctx context.Context, accountID string) (*models.Account, error) {
	if strings.TrimSpace(accountID) == "" {
		return nil, fmt.Errorf("%w: account id is required", common.ErrInvalidInput)
	}

	current, err := s.repo.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrAccountNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}

	encrypted, err := s.newEncryptedSecret()
	if err != nil {
		return nil, err
	}

	next := current.Clone()
	next.EncryptedSecret = encrypted

	saved, err := s.repo.Save(ctx, next)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrAccountNotFound
		}
		return nil, fmt.Errorf("save account: %w", err)
	}

	s.events.AccountEvent(metrics.EventRotated)
	s.logger.Info(ctx, "secret rotated", "account_id", saved.ID)
	return saved, nil
}

// ProvisionTOTPCode returns the code the account's authenticator shows now.
func (s *AccountService) ProvisionTOTPCode(ctx context.Context, account *models.Account) (string, error) {
	secret, err := s.decryptSecret(account)
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(secret)

	return s.code(secret, s.now())
}

// ProvisioningURI returns the otpauth:// enrollment URI for account's
// current secret.
func (s *AccountService) ProvisioningURI(ctx context.Context, account *models.Account) (string, error) {
	secret, err := s.decryptSecret(account)
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(secret)

	return totpx.ProvisioningURI(s.issuer, account.Username, secret)
}

// VerifyCode checks a code typed by the user against their current secret.
func (s *AccountService) VerifyCode(ctx context.Context, username, code string) (bool, error) {
	username = strings.TrimSpace(username)
	code = strings.TrimSpace(code)
	if username == "" || code == "" {
		return false, fmt.Errorf("%w: username and code are required", common.ErrInvalidInput)
	}

	account, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return false, common.ErrAccountNotFound
		}
		return false, fmt.Errorf("find account: %w", err)
	}

	secret, err := s.decryptSecret(account)
	if err != nil {
		return false, err
	}
	defer common.WipeByteArray(secret)

	ok, err := s.validate(code, secret, s.now())
	if err != nil {
		return false, err
	}
	if ok {
		s.events.AccountEvent(metrics.EventCodeVerified)
	}
	return ok, nil
}

func (s *AccountService) newEncryptedSecret() ([]byte, error) {
	secret, err := s.generator.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate secret: %w", err)
	}
	defer common.WipeByteArray(secret)

	encrypted, err := s.encryptor.Encrypt(secret)
	if err != nil {
		return nil, fmt.Errorf("encrypt secret: %w", err)
	}
	return encrypted, nil
}

func (s *AccountService) decryptSecret(account *models.Account) ([]byte, error) {
	if account == nil || len(account.EncryptedSecret) == 0 {
		return nil, fmt.Errorf("%w: account has no secret", common.ErrInvalidInput)
	}
	secret, err := s.encryptor.Decrypt(account.EncryptedSecret)
	if err != nil {
		return nil, fmt.Errorf("decrypt secret: %w", err)
	}
	return secret, nil
}
