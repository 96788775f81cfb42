package service

import (
	"errors"
	"testing"
	"time"

	"tryout-service/internal/mailer"
)

const testOTPSecret = "test-secret"

func newTestOTPService(ledger *fakeLedger, m *fakeMailer) *OTPService {
	s := NewOTPService(ledger, m, testOTPSecret, 5*time.Minute)
	s.clock = func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) }
	s.generateCode = func() (string, error) { return "123456", nil }
	return s
}

func TestOTPIssueAndVerify(t *testing.T) {
	ledger := newFakeLedger()
	m := &fakeMailer{}
	s := newTestOTPService(ledger, m)

	if err := s.Issue("Peserta@Example.com", "Peserta"); err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if len(m.sentOTPs) != 1 || m.sentOTPs[0] != "123456" {
		t.Fatalf("sent codes = %v, want [123456]", m.sentOTPs)
	}
	// The ledger keys on the lowercased address and stores only the hash.
	rec, ok := ledger.records["peserta@example.com"]
	if !ok {
		t.Fatal("no ledger record under the lowercased email")
	}
	if rec.Hash == "123456" {
		t.Fatal("ledger stores the plaintext code")
	}

	// Wrong code: rejected, record survives.
	if err := s.Verify("peserta@example.com", "000000"); !errors.Is(err, ErrOTPInvalid) {
		t.Fatalf("Verify(wrong code) = %v, want ErrOTPInvalid", err)
	}
	if _, ok := ledger.records["peserta@example.com"]; !ok {
		t.Fatal("record removed after a failed attempt")
	}

	// Correct code: accepted and consumed.
	if err := s.Verify("peserta@example.com", "123456"); err != nil {
		t.Fatalf("Verify(correct code): %v", err)
	}
	if _, ok := ledger.records["peserta@example.com"]; ok {
		t.Fatal("record survives a successful verification")
	}

	// Replay of the consumed code.
	if err := s.Verify("peserta@example.com", "123456"); !errors.Is(err, ErrOTPNotFound) {
		t.Fatalf("Verify(replayed code) = %v, want ErrOTPNotFound", err)
	}
}

func TestOTPVerifyWithoutIssue(t *testing.T) {
	s := newTestOTPService(newFakeLedger(), &fakeMailer{})

	if err := s.Verify("nobody@example.com", "123456"); !errors.Is(err, ErrOTPNotFound) {
		t.Fatalf("Verify = %v, want ErrOTPNotFound", err)
	}
}

func TestOTPExpiry(t *testing.T) {
	ledger := newFakeLedger()
	s := newTestOTPService(ledger, &fakeMailer{})

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	s.clock = func() time.Time { return now }

	if err := s.Issue("peserta@example.com", "Peserta"); err != nil {
		t.Fatalf("Issue: %v", err)
	}

	// One second past the 5 minute window.
	now = now.Add(5*time.Minute + time.Second)
	if err := s.Verify("peserta@example.com", "123456"); !errors.Is(err, ErrOTPExpired) {
		t.Fatalf("Verify = %v, want ErrOTPExpired", err)
	}
	if _, ok := ledger.records["peserta@example.com"]; ok {
		t.Fatal("expired record not removed")
	}

	// A further attempt sees no record at all.
	if err := s.Verify("peserta@example.com", "123456"); !errors.Is(err, ErrOTPNotFound) {
		t.Fatalf("Verify = %v, want ErrOTPNotFound", err)
	}
}

func TestOTPReissueInvalidatesPrevious(t *testing.T) {
	ledger := newFakeLedger()
	s := newTestOTPService(ledger, &fakeMailer{})

	if err := s.Issue("peserta@example.com", "Peserta"); err != nil {
		t.Fatalf("Issue: %v", err)
	}
	s.generateCode = func() (string, error) { return "654321", nil }
	if err := s.Issue("peserta@example.com", "Peserta"); err != nil {
		t.Fatalf("second Issue: %v", err)
	}

	if err := s.Verify("peserta@example.com", "123456"); !errors.Is(err, ErrOTPInvalid) {
		t.Fatalf("Verify(old code) = %v, want ErrOTPInvalid", err)
	}
	if err := s.Verify("peserta@example.com", "654321"); err != nil {
		t.Fatalf("Verify(new code): %v", err)
	}
}

func TestOTPIssueRollsBackOnDeliveryFailure(t *testing.T) {
	ledger := newFakeLedger()
	m := &fakeMailer{otpErr: errors.New("smtp down")}
	s := newTestOTPService(ledger, m)

	err := s.Issue("peserta@example.com", "Peserta")
	if !errors.Is(err, ErrDelivery) {
		t.Fatalf("Issue = %v, want ErrDelivery", err)
	}
	if _, ok := ledger.records["peserta@example.com"]; ok {
		t.Fatal("undelivered code left live in the ledger")
	}
}

func TestOTPIssueWithoutMailCredentials(t *testing.T) {
	ledger := newFakeLedger()
	m := &fakeMailer{otpErr: mailer.ErrNotConfigured}
	s := newTestOTPService(ledger, m)

	if err := s.Issue("peserta@example.com", "Peserta"); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("Issue = %v, want ErrConfiguration", err)
	}
}

func TestOTPIssueWithoutSecret(t *testing.T) {
	s := NewOTPService(newFakeLedger(), &fakeMailer{}, "", 5*time.Minute)

	if err := s.Issue("peserta@example.com", "Peserta"); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("Issue = %v, want ErrConfiguration", err)
	}
}
