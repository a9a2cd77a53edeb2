package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"math"
	"math/big"
	"strconv"
	"time"
	"umbrella-relay/internal/config"
	"umbrella-relay/internal/models"
	"umbrella-relay/internal/mq"
)

// OtpService gates registration with short-lived numeric codes. At most one
// code is live per account: issuing replaces any earlier code, registering
// consumes it.
type OtpService struct {
	directory Directory
	notifier  Notifier
	publisher Publisher
	topics    *mq.TopicManager
	cfg       config.OtpConfig
	now       func() time.Time
	logger    zerolog.Logger
}

func NewOtpService(
	directory Directory,
	notifier Notifier,
	publisher Publisher,
	topics *mq.TopicManager,
	cfg config.OtpConfig,
	logger zerolog.Logger,
) *OtpService {
	return &OtpService{
		directory: directory,
		notifier:  notifier,
		publisher: publisher,
		topics:    topics,
		cfg:       cfg,
		now:       time.Now,
		logger:    logger,
	}
}

// SetClock replaces the time source, used by tests to drive expiry.
func (s *OtpService) SetClock(now func() time.Time) {
	s.now = now
}

// Issue generates a fresh code for the email and mails it to the account's
// own address. The account is created on first issuance. The call succeeds
// once the code is persisted, even if the mail delivery fails.
func (s *OtpService) Issue(ctx context.Context, email string) error {
	code, err := s.generateCode()
	if err != nil {
		return fmt.Errorf("failed to generate code: %w", err)
	}

	expiresAt := s.now().Add(s.cfg.CodeTTL)

	if err := s.directory.UpsertCode(ctx, email, code, expiresAt); err != nil {
		return fmt.Errorf("failed to store code for %s: %w", email, err)
	}

	body := fmt.Sprintf("Your OTP: %s (valid for %d minutes)", code, int(s.cfg.CodeTTL.Minutes()))
	if err := s.notifier.Send(email, "Your Smart Umbrella OTP", body); err != nil {
		s.logger.Error().Err(err).
			Str("email", email).
			Msg("Failed to deliver OTP mail")
	}

	s.logger.Info().
		Str("email", email).
		Time("expires_at", expiresAt).
		Msg("OTP issued")

	return nil
}

// Register validates the supplied code, stores the hashed credential and the
// emergency contact, and clears the code so it cannot be reused.
func (s *OtpService) Register(ctx context.Context, email, password, emergencyEmail, code string) error {
	account, err := s.directory.FindByEmail(ctx, email)
	if errors.Is(err, ErrAccountNotFound) {
		return ErrNoPendingCode
	}
	if err != nil {
		return fmt.Errorf("failed to look up %s: %w", email, err)
	}

	if !account.HasPendingCode() {
		return ErrNoPendingCode
	}

	if code != account.OtpCode || s.now().After(*account.OtpExpiresAt) {
		return ErrCodeInvalidOrExpired
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash credential: %w", err)
	}

	if err := s.directory.CompleteRegistration(ctx, email, string(hash), emergencyEmail); err != nil {
		return fmt.Errorf("failed to complete registration for %s: %w", email, err)
	}

	s.announceContact(email, emergencyEmail)

	s.logger.Info().
		Str("email", email).
		Msg("Account registered")

	return nil
}

// Authenticate compares the credential against the stored bcrypt hash and
// returns the account's public fields.
func (s *OtpService) Authenticate(ctx context.Context, email, password string) (models.AccountDto, error) {
	account, err := s.directory.FindByEmail(ctx, email)
	if errors.Is(err, ErrAccountNotFound) {
		return models.AccountDto{}, ErrUnauthorized
	}
	if err != nil {
		return models.AccountDto{}, fmt.Errorf("failed to look up %s: %w", email, err)
	}

	if !account.IsRegistered() {
		return models.AccountDto{}, ErrUnauthorized
	}

	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		return models.AccountDto{}, ErrUnauthorized
	}

	return account.ToDto(), nil
}

func (s *OtpService) generateCode() (string, error) {
	low := int64(math.Pow10(s.cfg.CodeDigits - 1))

	n, err := rand.Int(rand.Reader, big.NewInt(9*low))
	if err != nil {
		return "", err
	}

	return strconv.FormatInt(low+n.Int64(), 10), nil
}

func (s *OtpService) announceContact(email, emergencyEmail string) {
	announcement := models.ContactAnnouncement{
		UserEmail:      email,
		EmergencyEmail: emergencyEmail,
	}

	if err := s.publisher.PublishRetainedJson(s.topics.GetEmailsTopic(), announcement); err != nil {
		s.logger.Error().Err(err).
			Str("email", email).
			Msg("Failed to publish contact announcement")
	}
}
