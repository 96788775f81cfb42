package service

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"tryout-service/internal/audit"
	"tryout-service/internal/model"
	"tryout-service/internal/repository/scylla"
	"tryout-service/internal/storage"
	"tryout-service/internal/util"
)

// ProofStore persists uploaded proof images.
type ProofStore interface {
	Save(participantID, originalName string, content io.Reader) (string, error)
	Remove(path string)
}

// PaymentService runs the manual payment-verification gate: participants
// upload proofs, admins move them pending to verified or rejected.
type PaymentService struct {
	payments  model.PaymentRepository
	files     ProofStore
	amountIDR int
	audit     *audit.Publisher

	clock func() time.Time
}

func NewPaymentService(payments model.PaymentRepository, files ProofStore, amountIDR int, publisher *audit.Publisher) *PaymentService {
	return &PaymentService{
		payments:  payments,
		files:     files,
		amountIDR: amountIDR,
		audit:     publisher,
		clock:     time.Now,
	}
}

// ProofStatus is what the participant-facing status endpoint returns.
type ProofStatus struct {
	Proof        *model.PaymentProof `json:"proof"`
	CardUnlocked bool                `json:"card_unlocked"`
}

// UploadProof stores the image and inserts a pending record. Uploading after
// a rejection layers a new pending record on top; earlier records stay
// untouched.
func (s *PaymentService) UploadProof(participantID uuid.UUID, originalName string, content io.Reader) (*model.PaymentProof, error) {
	path, err := s.files.Save(participantID.String(), originalName, content)
	if err != nil {
		if errors.Is(err, storage.ErrUnsupportedType) {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		return nil, fmt.Errorf("failed to store proof: %w", err)
	}

	proof := &model.PaymentProof{
		ParticipantID: participantID,
		FilePath:      path,
		AmountIDR:     s.amountIDR,
	}
	if err := s.payments.CreateProof(proof); err != nil {
		s.files.Remove(path)
		return nil, fmt.Errorf("failed to record proof: %w", err)
	}

	s.audit.Publish(audit.EventPaymentUploaded, map[string]string{
		"proof_id":       proof.ID.String(),
		"participant_id": participantID.String(),
	})

	return proof, nil
}

// Status reports the newest proof for a participant. The card unlocks only
// when that record is verified.
func (s *PaymentService) Status(participantID uuid.UUID) (*ProofStatus, error) {
	proof, err := s.payments.LatestProof(participantID)
	if err != nil {
		if errors.Is(err, scylla.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load payment status: %w", err)
	}

	return &ProofStatus{
		Proof:        proof,
		CardUnlocked: proof.Unlocks(),
	}, nil
}

// Review applies the admin decision. Only pending records may transition,
// and only to verified or rejected; reviewed records are immutable.
func (s *PaymentService) Review(proofID uuid.UUID, status, notes, reviewedBy string) (*model.PaymentProof, error) {
	if status != model.PaymentStatusVerified && status != model.PaymentStatusRejected {
		return nil, fmt.Errorf("%w: status must be verified or rejected", ErrValidation)
	}

	proof, err := s.payments.GetProof(proofID)
	if err != nil {
		if errors.Is(err, scylla.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load proof: %w", err)
	}

	if proof.Status != model.PaymentStatusPending {
		return nil, fmt.Errorf("%w: proof already reviewed", ErrConflict)
	}

	if err := s.payments.MarkReviewed(proof, status, notes, reviewedBy, s.clock().UTC()); err != nil {
		return nil, fmt.Errorf("failed to review proof: %w", err)
	}

	s.audit.Publish(audit.EventPaymentReviewed, map[string]string{
		"proof_id":    proof.ID.String(),
		"status":      status,
		"verified_by": reviewedBy,
	})

	return proof, nil
}

// List returns the review queue, filtered by state. An empty status means
// pending, the state admins actually work through.
func (s *PaymentService) List(status string, limit int) ([]*model.PaymentProof, error) {
	if status == "" {
		status = model.PaymentStatusPending
	}
	if status != model.PaymentStatusPending && status != model.PaymentStatusVerified && status != model.PaymentStatusRejected {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	proofs, err := s.payments.ListByStatus(status, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list proofs: %w", err)
	}
	util.Debug("Proofs listed",
		util.String("status", status),
		util.Int("count", len(proofs)))
	return proofs, nil
}
