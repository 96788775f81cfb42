package service

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"tryout-service/internal/model"
	redisrepo "tryout-service/internal/repository/redis"
	"tryout-service/internal/repository/scylla"
)

// In-memory doubles for the store and mail interfaces. They mimic the
// sentinel errors of the real implementations so the services' error
// translation is exercised for real.

type fakeLedger struct {
	records map[string]*model.OTPRecord
	putErr  error
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{records: make(map[string]*model.OTPRecord)}
}

func (l *fakeLedger) Put(email string, rec *model.OTPRecord, _ time.Duration) error {
	if l.putErr != nil {
		return l.putErr
	}
	cp := *rec
	l.records[email] = &cp
	return nil
}

func (l *fakeLedger) Get(email string) (*model.OTPRecord, error) {
	rec, ok := l.records[email]
	if !ok {
		return nil, redisrepo.ErrNoRecord
	}
	cp := *rec
	return &cp, nil
}

func (l *fakeLedger) Delete(email string) error {
	delete(l.records, email)
	return nil
}

type fakeMailer struct {
	otpErr      error
	passwordErr error

	sentOTPs      []string
	sentPasswords []string
	lastReset     bool
}

func (m *fakeMailer) SendOTP(toEmail, nama, code string) error {
	if m.otpErr != nil {
		return m.otpErr
	}
	m.sentOTPs = append(m.sentOTPs, code)
	return nil
}

func (m *fakeMailer) SendPassword(toEmail, nama, password string, reset bool) error {
	if m.passwordErr != nil {
		return m.passwordErr
	}
	m.sentPasswords = append(m.sentPasswords, password)
	m.lastReset = reset
	return nil
}

type fakeParticipants struct {
	byEmail map[string]*model.Participant
	byNISN  map[string]*model.Participant

	takenCalls  int
	createCalls int
	createErr   error
}

func newFakeParticipants() *fakeParticipants {
	return &fakeParticipants{
		byEmail: make(map[string]*model.Participant),
		byNISN:  make(map[string]*model.Participant),
	}
}

func (r *fakeParticipants) CreateParticipant(p *model.Participant) error {
	r.createCalls++
	if r.createErr != nil {
		return r.createErr
	}
	email := strings.ToLower(p.Email)
	if _, ok := r.byEmail[email]; ok {
		return scylla.ErrAlreadyExists
	}
	if _, ok := r.byNISN[p.NISN]; ok {
		return scylla.ErrAlreadyExists
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.RegisteredAt = time.Now().UTC()
	cp := *p
	r.byEmail[email] = &cp
	r.byNISN[p.NISN] = &cp
	return nil
}

func (r *fakeParticipants) GetByEmail(email string) (*model.Participant, error) {
	p, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, scylla.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeParticipants) EmailOrNISNTaken(email, nisn string) (bool, error) {
	r.takenCalls++
	if _, ok := r.byEmail[strings.ToLower(email)]; ok {
		return true, nil
	}
	_, ok := r.byNISN[nisn]
	return ok, nil
}

func (r *fakeParticipants) UpdatePasswordHash(p *model.Participant, passwordHash string) error {
	stored, ok := r.byEmail[strings.ToLower(p.Email)]
	if !ok {
		return scylla.ErrNotFound
	}
	stored.PasswordHash = passwordHash
	stored.UpdatedAt = time.Now().UTC()
	p.PasswordHash = passwordHash
	return nil
}

func (r *fakeParticipants) CountParticipants() (int, error) {
	return len(r.byEmail), nil
}

type fakePayments struct {
	proofs []*model.PaymentProof

	createErr error
}

func (r *fakePayments) CreateProof(proof *model.PaymentProof) error {
	if r.createErr != nil {
		return r.createErr
	}
	proof.ID = uuid.New()
	proof.Status = model.PaymentStatusPending
	proof.CreatedAt = time.Now().UTC()
	cp := *proof
	r.proofs = append(r.proofs, &cp)
	return nil
}

func (r *fakePayments) GetProof(id uuid.UUID) (*model.PaymentProof, error) {
	for _, p := range r.proofs {
		if p.ID == id {
			cp := *p
			return &cp, nil
		}
	}
	return nil, scylla.ErrNotFound
}

func (r *fakePayments) LatestProof(participantID uuid.UUID) (*model.PaymentProof, error) {
	var latest *model.PaymentProof
	for _, p := range r.proofs {
		if p.ParticipantID != participantID {
			continue
		}
		if latest == nil || p.CreatedAt.After(latest.CreatedAt) {
			latest = p
		}
	}
	if latest == nil {
		return nil, scylla.ErrNotFound
	}
	cp := *latest
	return &cp, nil
}

func (r *fakePayments) ListByStatus(status string, limit int) ([]*model.PaymentProof, error) {
	var out []*model.PaymentProof
	for _, p := range r.proofs {
		if p.Status != status {
			continue
		}
		cp := *p
		out = append(out, &cp)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *fakePayments) MarkReviewed(proof *model.PaymentProof, status, notes, reviewedBy string, reviewedAt time.Time) error {
	for _, p := range r.proofs {
		if p.ID == proof.ID {
			p.Status = status
			p.AdminNotes = notes
			p.VerifiedBy = reviewedBy
			p.VerifiedAt = reviewedAt
			proof.Status = status
			proof.AdminNotes = notes
			proof.VerifiedBy = reviewedBy
			proof.VerifiedAt = reviewedAt
			return nil
		}
	}
	return scylla.ErrNotFound
}

func (r *fakePayments) CountByStatus(status string) (int, error) {
	n := 0
	for _, p := range r.proofs {
		if p.Status == status {
			n++
		}
	}
	return n, nil
}

type fakeProofStore struct {
	saved   []string
	removed []string
	saveErr error
}

func (s *fakeProofStore) Save(participantID, originalName string, _ io.Reader) (string, error) {
	if s.saveErr != nil {
		return "", s.saveErr
	}
	path := "uploads/" + participantID + "-" + originalName
	s.saved = append(s.saved, path)
	return path, nil
}

func (s *fakeProofStore) Remove(path string) {
	s.removed = append(s.removed, path)
}

type fakeAdmins struct {
	accounts map[string]*model.AdminUser
}

func newFakeAdmins() *fakeAdmins {
	return &fakeAdmins{accounts: make(map[string]*model.AdminUser)}
}

func (r *fakeAdmins) CreateAdmin(a *model.AdminUser) error {
	if _, ok := r.accounts[a.Username]; ok {
		return scylla.ErrAlreadyExists
	}
	cp := *a
	r.accounts[a.Username] = &cp
	return nil
}

func (r *fakeAdmins) GetAdmin(username string) (*model.AdminUser, error) {
	a, ok := r.accounts[username]
	if !ok {
		return nil, scylla.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

type fakeSessions struct {
	sessions map[string]string
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{sessions: make(map[string]string)}
}

func (c *fakeSessions) PutSession(token, username string, _ time.Duration) error {
	c.sessions[token] = username
	return nil
}

func (c *fakeSessions) GetSession(token string) (string, error) {
	username, ok := c.sessions[token]
	if !ok {
		return "", redisrepo.ErrNoRecord
	}
	return username, nil
}

func (c *fakeSessions) DeleteSession(token string) error {
	delete(c.sessions, token)
	return nil
}

var errStoreDown = errors.New("store unavailable")

// errStoreConflict mimics the store losing a race after the pre-check.
func errStoreConflict() error {
	return fmt.Errorf("claim email mapping: %w", scylla.ErrAlreadyExists)
}

func legacySHA256(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}
