package service

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"tryout-service/internal/audit"
	"tryout-service/internal/hashing"
	"tryout-service/internal/mailer"
	"tryout-service/internal/model"
	"tryout-service/internal/repository/scylla"
	"tryout-service/internal/util"
)

var (
	nisnPattern  = regexp.MustCompile(`^\d{10}$`)
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// RegistrationService orchestrates registration, login and credential
// (re-)issuance against the credential store.
type RegistrationService struct {
	participants model.ParticipantRepository
	mailer       mailer.Mailer
	audit        *audit.Publisher
}

func NewRegistrationService(participants model.ParticipantRepository, m mailer.Mailer, publisher *audit.Publisher) *RegistrationService {
	return &RegistrationService{
		participants: participants,
		mailer:       m,
		audit:        publisher,
	}
}

type RegisterRequest struct {
	Nama         string `json:"nama"`
	NISN         string `json:"nisn"`
	TanggalLahir string `json:"tanggal_lahir"`
	AsalSekolah  string `json:"asal_sekolah"`
	Whatsapp     string `json:"whatsapp"`
	Email        string `json:"email"`
}

type RegisterResult struct {
	ParticipantID uuid.UUID
	// EmailSent is false when the row was persisted but the credential email
	// failed; the participant must use the recovery flow.
	EmailSent bool
}

// Register validates input, enforces uniqueness, generates and hashes the
// initial password and emails it. The plaintext password never appears in
// the result: it travels only to the registrant's verified address. A mail
// failure after the insert does not roll the registration back.
func (s *RegistrationService) Register(req *RegisterRequest) (*RegisterResult, error) {
	if err := validateRegisterRequest(req); err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	// Fast-path duplicate check. The store's own conflict on insert is the
	// authoritative signal; this only saves the password generation work.
	taken, err := s.participants.EmailOrNISNTaken(email, req.NISN)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing registration: %w", err)
	}
	if taken {
		return nil, ErrConflict
	}

	password, err := hashing.GeneratePassword()
	if err != nil {
		return nil, fmt.Errorf("failed to register: %w", err)
	}
	passwordHash, err := hashing.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to register: %w", err)
	}

	p := &model.Participant{
		Nama:         strings.TrimSpace(req.Nama),
		NISN:         req.NISN,
		TanggalLahir: req.TanggalLahir,
		AsalSekolah:  strings.TrimSpace(req.AsalSekolah),
		Whatsapp:     strings.TrimSpace(req.Whatsapp),
		Email:        email,
		PasswordHash: passwordHash,
	}
	if err := s.participants.CreateParticipant(p); err != nil {
		if errors.Is(err, scylla.ErrAlreadyExists) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("failed to register: %w", err)
	}

	// The registration is committed; a mail failure only degrades the
	// result, it never loses the slot.
	emailSent := true
	if err := s.mailer.SendPassword(email, p.Nama, password, false); err != nil {
		emailSent = false
		util.Error("Failed to email initial password",
			util.String("email", email),
			util.String("participant_id", p.ID.String()),
			util.ErrorField(err))
	}

	s.audit.Publish(audit.EventParticipantRegistered, map[string]string{
		"participant_id": p.ID.String(),
		"email":          email,
	})

	return &RegisterResult{ParticipantID: p.ID, EmailSent: emailSent}, nil
}

// Login verifies credentials. Unknown email and wrong password both return
// ErrInvalidCredentials so responses cannot be used for enumeration. The
// returned participant never carries the password hash.
func (s *RegistrationService) Login(email, password string) (*model.Participant, error) {
	if email == "" || password == "" {
		return nil, ErrMissingFields
	}

	p, err := s.participants.GetByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, scylla.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to log in: %w", err)
	}

	ph, err := hashing.ParsePasswordHash(p.PasswordHash)
	if err != nil || !ph.Verify(password) {
		return nil, ErrInvalidCredentials
	}

	util.Info("Participant logged in",
		util.String("participant_id", p.ID.String()))
	return p.Public(), nil
}

// IssuePassword generates a fresh password for an existing account, stores
// its salted hash and emails the plaintext. Used both for re-issuing initial
// credentials and for the forced reset; reset only changes the email copy.
// Ownership of the inbox is the only gate.
func (s *RegistrationService) IssuePassword(email string, reset bool) error {
	if email == "" {
		return ErrMissingFields
	}

	p, err := s.participants.GetByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, scylla.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to issue password: %w", err)
	}

	password, err := hashing.GeneratePassword()
	if err != nil {
		return fmt.Errorf("failed to issue password: %w", err)
	}
	// Same salted contract as registration.
	passwordHash, err := hashing.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to issue password: %w", err)
	}

	if err := s.participants.UpdatePasswordHash(p, passwordHash); err != nil {
		return fmt.Errorf("failed to issue password: %w", err)
	}

	if err := s.mailer.SendPassword(p.Email, p.Nama, password, reset); err != nil {
		if errors.Is(err, mailer.ErrNotConfigured) {
			return fmt.Errorf("%w: %v", ErrConfiguration, err)
		}
		return fmt.Errorf("%w: %v", ErrDelivery, err)
	}

	s.audit.Publish(audit.EventPasswordReset, map[string]string{
		"participant_id": p.ID.String(),
	})

	return nil
}

func validateRegisterRequest(req *RegisterRequest) error {
	if req.Nama == "" || req.NISN == "" || req.TanggalLahir == "" ||
		req.AsalSekolah == "" || req.Whatsapp == "" || req.Email == "" {
		return ErrMissingFields
	}
	if !nisnPattern.MatchString(req.NISN) {
		return ErrBadNISN
	}
	if !emailPattern.MatchString(req.Email) {
		return ErrBadEmail
	}
	return nil
}
