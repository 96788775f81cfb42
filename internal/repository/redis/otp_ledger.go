package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"tryout-service/internal/client"
	"tryout-service/internal/model"
	"tryout-service/internal/util"
)

const otpPrefix = "otp:"

// OTPLedger keeps one live code hash per (lowercased) email. Entries carry
// their own expires_at so an expired-but-still-cached entry can be reported
// as expired rather than missing; the Redis TTL is padded past the logical
// expiry and only garbage-collects.
type OTPLedger struct {
	client *client.RedisClient
}

const expiryGrace = 10 * time.Minute

func NewOTPLedger(client *client.RedisClient) *OTPLedger {
	return &OTPLedger{client: client}
}

// Put upserts the ledger entry for email, invalidating any prior code.
func (l *OTPLedger) Put(email string, rec *model.OTPRecord, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode otp record: %w", err)
	}

	key := otpKey(email)
	if err := l.client.Set(ctx, key, string(payload), ttl+expiryGrace); err != nil {
		util.Error("Failed to store OTP record",
			util.String("email", email),
			util.Duration("ttl", ttl),
			util.ErrorField(err))
		return fmt.Errorf("failed to store otp record: %w", err)
	}

	util.Debug("OTP record stored",
		util.String("email", email),
		util.Duration("ttl", ttl))
	return nil
}

// Get returns the live entry for email, or ErrNoRecord when absent.
func (l *OTPLedger) Get(email string) (*model.OTPRecord, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	key := otpKey(email)
	payload, err := l.client.Get(ctx, key)
	if err != nil {
		if l.client.IsNotFound(err, key) {
			return nil, ErrNoRecord
		}
		util.Error("Failed to read OTP record",
			util.String("email", email),
			util.ErrorField(err))
		return nil, fmt.Errorf("failed to read otp record: %w", err)
	}

	rec := &model.OTPRecord{}
	if err := json.Unmarshal([]byte(payload), rec); err != nil {
		return nil, fmt.Errorf("failed to decode otp record: %w", err)
	}
	return rec, nil
}

// Delete removes the ledger entry for email. Missing keys are not an error.
func (l *OTPLedger) Delete(email string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := l.client.Del(ctx, otpKey(email)); err != nil {
		util.Error("Failed to delete OTP record",
			util.String("email", email),
			util.ErrorField(err))
		return fmt.Errorf("failed to delete otp record: %w", err)
	}

	util.Debug("OTP record deleted", util.String("email", email))
	return nil
}

func otpKey(email string) string {
	return otpPrefix + strings.ToLower(email)
}
