package scylla

import (
	"fmt"
	"time"

	"github.com/gocql/gocql"
	"github.com/google/uuid"

	"tryout-service/internal/model"
	"tryout-service/internal/util"
)

// PaymentRepository stores proof records twice: by id for review actions and
// by participant (clustered newest first) so the latest record per
// participant is a single-partition LIMIT 1 read. Both tables are written in
// one logged batch.
type PaymentRepository struct {
	client *ScyllaClient
}

func NewPaymentRepository(client *ScyllaClient) *PaymentRepository {
	return &PaymentRepository{client: client}
}

func (r *PaymentRepository) CreateProof(proof *model.PaymentProof) error {
	if proof.ID == uuid.Nil {
		proof.ID = uuid.New()
	}
	proof.CreatedAt = time.Now().UTC()
	proof.Status = model.PaymentStatusPending

	batch := r.client.Batch(gocql.LoggedBatch)

	batch.Query(r.client.Prepared.CreateProofByID.Statement(),
		proof.ID, proof.ParticipantID, proof.FilePath, proof.AmountIDR,
		proof.Status, proof.AdminNotes, proof.CreatedAt, proof.VerifiedAt,
		proof.VerifiedBy)

	batch.Query(r.client.Prepared.CreateProofByParticipant.Statement(),
		proof.ParticipantID, proof.CreatedAt, proof.ID, proof.FilePath,
		proof.AmountIDR, proof.Status, proof.AdminNotes, proof.VerifiedAt,
		proof.VerifiedBy)

	if err := r.client.ExecuteBatch(batch); err != nil {
		util.Error("Failed to create payment proof",
			util.String("participant_id", proof.ParticipantID.String()),
			util.ErrorField(err))
		return fmt.Errorf("failed to create payment proof: %w", err)
	}

	util.Info("Payment proof created",
		util.String("proof_id", proof.ID.String()),
		util.String("participant_id", proof.ParticipantID.String()))
	return nil
}

func (r *PaymentRepository) GetProof(id uuid.UUID) (*model.PaymentProof, error) {
	proof := &model.PaymentProof{}

	err := r.client.ScanWithRetry(
		r.client.Prepared.GetProofByID.Bind(id),
		&proof.ID, &proof.ParticipantID, &proof.FilePath, &proof.AmountIDR,
		&proof.Status, &proof.AdminNotes, &proof.CreatedAt, &proof.VerifiedAt,
		&proof.VerifiedBy)
	if err != nil {
		if err == gocql.ErrNotFound {
			return nil, ErrNotFound
		}
		util.Error("Failed to load payment proof",
			util.String("proof_id", id.String()),
			util.ErrorField(err))
		return nil, fmt.Errorf("failed to load payment proof: %w", err)
	}

	return proof, nil
}

// LatestProof returns the newest record for the participant, or ErrNotFound
// when none was ever uploaded.
func (r *PaymentRepository) LatestProof(participantID uuid.UUID) (*model.PaymentProof, error) {
	proof := &model.PaymentProof{}

	err := r.client.ScanWithRetry(
		r.client.Prepared.LatestProofByParticipant.Bind(participantID),
		&proof.ID, &proof.ParticipantID, &proof.FilePath, &proof.AmountIDR,
		&proof.Status, &proof.AdminNotes, &proof.CreatedAt, &proof.VerifiedAt,
		&proof.VerifiedBy)
	if err != nil {
		if err == gocql.ErrNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load latest payment proof: %w", err)
	}

	return proof, nil
}

// ListByStatus scans proofs in a given state for the review queue. Admin
// traffic is tiny, so the filtering scan is acceptable here.
func (r *PaymentRepository) ListByStatus(status string, limit int) ([]*model.PaymentProof, error) {
	iter := r.client.Query(
		`SELECT id, participant_id, file_path, amount, status, admin_notes,
            created_at, verified_at, verified_by
         FROM payment_proofs_by_id WHERE status = ? LIMIT ? ALLOW FILTERING`,
		status, limit).Iter()

	var proofs []*model.PaymentProof
	for {
		proof := &model.PaymentProof{}
		if !iter.Scan(&proof.ID, &proof.ParticipantID, &proof.FilePath,
			&proof.AmountIDR, &proof.Status, &proof.AdminNotes,
			&proof.CreatedAt, &proof.VerifiedAt, &proof.VerifiedBy) {
			break
		}
		proofs = append(proofs, proof)
	}
	if err := iter.Close(); err != nil {
		util.Error("Failed to list payment proofs",
			util.String("status", status),
			util.ErrorField(err))
		return nil, fmt.Errorf("failed to list payment proofs: %w", err)
	}

	return proofs, nil
}

// MarkReviewed writes the admin decision to both tables.
func (r *PaymentRepository) MarkReviewed(proof *model.PaymentProof, status, notes, reviewedBy string, reviewedAt time.Time) error {
	batch := r.client.Batch(gocql.LoggedBatch)

	batch.Query(`UPDATE payment_proofs_by_id
        SET status = ?, admin_notes = ?, verified_at = ?, verified_by = ?
        WHERE id = ?`,
		status, notes, reviewedAt, reviewedBy, proof.ID)

	batch.Query(`UPDATE payment_proofs_by_participant
        SET status = ?, admin_notes = ?, verified_at = ?, verified_by = ?
        WHERE participant_id = ? AND created_at = ? AND id = ?`,
		status, notes, reviewedAt, reviewedBy,
		proof.ParticipantID, proof.CreatedAt, proof.ID)

	if err := r.client.ExecuteBatch(batch); err != nil {
		util.Error("Failed to mark payment proof reviewed",
			util.String("proof_id", proof.ID.String()),
			util.String("status", status),
			util.ErrorField(err))
		return fmt.Errorf("failed to mark payment proof reviewed: %w", err)
	}

	proof.Status = status
	proof.AdminNotes = notes
	proof.VerifiedAt = reviewedAt
	proof.VerifiedBy = reviewedBy

	util.Info("Payment proof reviewed",
		util.String("proof_id", proof.ID.String()),
		util.String("status", status),
		util.String("verified_by", reviewedBy))
	return nil
}

func (r *PaymentRepository) CountByStatus(status string) (int, error) {
	var count int64
	if err := r.client.Query(
		`SELECT COUNT(*) FROM payment_proofs_by_id WHERE status = ? ALLOW FILTERING`,
		status).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count payment proofs: %w", err)
	}
	return int(count), nil
}
