package model

import (
	"time"

	"github.com/google/uuid"
)

// Payment proof review states. A proof starts pending and is moved exactly
// once, by an admin, to verified or rejected.
const (
	PaymentStatusPending  = "pending"
	PaymentStatusVerified = "verified"
	PaymentStatusRejected = "rejected"
)

// -------------------- PARTICIPANT --------------------

// Participant is a registered tryout participant. Email and NISN are unique;
// email is stored case-folded. PasswordHash carries either the legacy
// unsalted form or the current "salt:hash" form (see hashing package).
type Participant struct {
	Bucket       int       `json:"-" db:"bucket"`
	ID           uuid.UUID `json:"id" db:"id"`
	Nama         string    `json:"nama" db:"nama"`
	NISN         string    `json:"nisn" db:"nisn"`
	TanggalLahir string    `json:"tanggal_lahir" db:"tanggal_lahir"`
	AsalSekolah  string    `json:"asal_sekolah" db:"asal_sekolah"`
	Whatsapp     string    `json:"whatsapp" db:"whatsapp"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	RegisteredAt time.Time `json:"registered_at" db:"registered_at"`
	UpdatedAt    time.Time `json:"-" db:"updated_at"`
}

// Public returns a copy safe to hand across the workflow boundary: the
// password hash never leaves the service layer.
func (p *Participant) Public() *Participant {
	out := *p
	out.PasswordHash = ""
	return &out
}

// -------------------- OTP LEDGER --------------------

// OTPRecord is one live ledger entry per (lowercased) email. Only the hash
// of the code is stored; issuing a new code overwrites any prior entry.
type OTPRecord struct {
	Hash      string    `json:"hash"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (r *OTPRecord) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

// -------------------- PAYMENT PROOF --------------------

// PaymentProof is one uploaded transfer receipt. Records are never mutated
// after review; a rejected participant uploads a new proof and the newest
// record decides whether the participant card is unlocked.
type PaymentProof struct {
	ID            uuid.UUID `json:"id" db:"id"`
	ParticipantID uuid.UUID `json:"participant_id" db:"participant_id"`
	FilePath      string    `json:"file_path" db:"file_path"`
	AmountIDR     int       `json:"amount" db:"amount"`
	Status        string    `json:"status" db:"status"`
	AdminNotes    string    `json:"admin_notes,omitempty" db:"admin_notes"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	VerifiedAt    time.Time `json:"verified_at,omitempty" db:"verified_at"`
	VerifiedBy    string    `json:"verified_by,omitempty" db:"verified_by"`
}

// Unlocks reports whether this proof, as the newest record, unlocks the
// participant card.
func (p *PaymentProof) Unlocks() bool {
	return p.Status == PaymentStatusVerified
}

// -------------------- ADMIN --------------------

// AdminUser gates the payment review actions. Passwords are bcrypt hashes;
// only the "admin" role may review proofs.
type AdminUser struct {
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         string    `json:"role" db:"role"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

const AdminRole = "admin"

// -------------------- STORE INTERFACES --------------------

// ParticipantRepository is the credential store. CreateParticipant must make
// the store's own uniqueness check authoritative: it returns a conflict when
// the email or NISN mapping already exists, regardless of any pre-check the
// caller ran.
type ParticipantRepository interface {
	CreateParticipant(p *Participant) error
	GetByEmail(email string) (*Participant, error)
	EmailOrNISNTaken(email, nisn string) (bool, error)
	UpdatePasswordHash(p *Participant, passwordHash string) error
	CountParticipants() (int, error)
}

// PaymentRepository stores proof records, newest first per participant.
type PaymentRepository interface {
	CreateProof(proof *PaymentProof) error
	GetProof(id uuid.UUID) (*PaymentProof, error)
	LatestProof(participantID uuid.UUID) (*PaymentProof, error)
	ListByStatus(status string, limit int) ([]*PaymentProof, error)
	MarkReviewed(proof *PaymentProof, status, notes, reviewedBy string, reviewedAt time.Time) error
	CountByStatus(status string) (int, error)
}

// AdminRepository stores admin accounts.
type AdminRepository interface {
	CreateAdmin(a *AdminUser) error
	GetAdmin(username string) (*AdminUser, error)
}

// -------------------- CACHE INTERFACES --------------------

// OTPLedger is the short-lived single-code-per-email store.
type OTPLedger interface {
	Put(email string, rec *OTPRecord, ttl time.Duration) error
	Get(email string) (*OTPRecord, error)
	Delete(email string) error
}

// SessionCache holds opaque admin session tokens.
type SessionCache interface {
	PutSession(token, username string, ttl time.Duration) error
	GetSession(token string) (string, error)
	DeleteSession(token string) error
}
