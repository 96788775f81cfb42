package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"tryout-service/internal/hashing"
	"tryout-service/internal/mailer"
	"tryout-service/internal/model"
	redisrepo "tryout-service/internal/repository/redis"
	"tryout-service/internal/util"
)

// OTPService owns the issue/verify workflow over the short-lived ledger.
// One live code per email; a new issuance overwrites any unconsumed code.
type OTPService struct {
	ledger model.OTPLedger
	mailer mailer.Mailer
	secret string
	ttl    time.Duration

	clock        func() time.Time
	generateCode func() (string, error)
}

func NewOTPService(ledger model.OTPLedger, m mailer.Mailer, secret string, ttl time.Duration) *OTPService {
	return &OTPService{
		ledger:       ledger,
		mailer:       m,
		secret:       secret,
		ttl:          ttl,
		clock:        time.Now,
		generateCode: hashing.GenerateOTPCode,
	}
}

// Issue generates a fresh 6-digit code, upserts its hash into the ledger and
// emails the plaintext. A failed dispatch rolls the ledger entry back so no
// undelivered code stays live server-side.
func (s *OTPService) Issue(email, nama string) error {
	if s.secret == "" {
		return fmt.Errorf("%w: otp secret missing", ErrConfiguration)
	}
	email = strings.ToLower(strings.TrimSpace(email))

	code, err := s.generateCode()
	if err != nil {
		return fmt.Errorf("failed to issue otp: %w", err)
	}

	rec := &model.OTPRecord{
		Hash:      hashing.HashOTPCode(code, s.secret),
		ExpiresAt: s.clock().Add(s.ttl),
	}
	if err := s.ledger.Put(email, rec, s.ttl); err != nil {
		return fmt.Errorf("failed to issue otp: %w", err)
	}

	if err := s.mailer.SendOTP(email, nama, code); err != nil {
		// Roll back so no code exists server-side that was never delivered.
		if delErr := s.ledger.Delete(email); delErr != nil {
			util.Error("Failed to roll back OTP after delivery failure",
				util.String("email", email),
				util.ErrorField(delErr))
		}
		if errors.Is(err, mailer.ErrNotConfigured) {
			return fmt.Errorf("%w: %v", ErrConfiguration, err)
		}
		return fmt.Errorf("%w: %v", ErrDelivery, err)
	}

	util.Info("OTP issued", util.String("email", email))
	return nil
}

// Verify consumes the live code for email. Exactly one successful
// verification is possible per issuance.
func (s *OTPService) Verify(email, code string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	rec, err := s.ledger.Get(email)
	if err != nil {
		if errors.Is(err, redisrepo.ErrNoRecord) {
			return ErrOTPNotFound
		}
		return fmt.Errorf("failed to verify otp: %w", err)
	}

	if rec.Expired(s.clock()) {
		if delErr := s.ledger.Delete(email); delErr != nil {
			util.Warn("Failed to delete expired OTP",
				util.String("email", email),
				util.ErrorField(delErr))
		}
		return ErrOTPExpired
	}

	if !hashing.VerifyOTPCode(code, s.secret, rec.Hash) {
		return ErrOTPInvalid
	}

	// Single use.
	if err := s.ledger.Delete(email); err != nil {
		return fmt.Errorf("failed to consume otp: %w", err)
	}

	util.Info("OTP verified", util.String("email", email))
	return nil
}
