package scylla

import (
	"fmt"
	"strings"
	"time"

	"github.com/gocql/gocql"
	"github.com/google/uuid"

	"tryout-service/internal/bucketing"
	"tryout-service/internal/model"
	"tryout-service/internal/util"
)

// ParticipantRepository persists participants across three tables: the main
// bucketed participants table plus email and NISN mapping tables. The
// mapping inserts use LWT so the store's own conflict result, not the
// caller's pre-check, decides uniqueness.
type ParticipantRepository struct {
	client    *ScyllaClient
	bucketing *bucketing.Manager
}

func NewParticipantRepository(client *ScyllaClient, bucketing *bucketing.Manager) *ParticipantRepository {
	return &ParticipantRepository{
		client:    client,
		bucketing: bucketing,
	}
}

// CreateParticipant claims the email and NISN mappings, then writes the
// participant row. Returns ErrAlreadyExists when either mapping is taken; a
// claimed email mapping is released again if the NISN claim loses.
func (r *ParticipantRepository) CreateParticipant(p *model.Participant) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.Email = strings.ToLower(p.Email)
	p.Bucket = r.bucketing.ParticipantBucket(p.ID.String())

	now := time.Now().UTC()
	p.RegisteredAt = now
	p.UpdatedAt = now

	applied, err := r.claimMapping(
		`INSERT INTO email_to_participant (email, bucket, participant_id, created_at)
         VALUES (?, ?, ?, ?) IF NOT EXISTS`,
		p.Email, p.Bucket, p.ID, now)
	if err != nil {
		return fmt.Errorf("failed to claim email mapping: %w", err)
	}
	if !applied {
		return ErrAlreadyExists
	}

	applied, err = r.claimMapping(
		`INSERT INTO nisn_to_participant (nisn, bucket, participant_id, created_at)
         VALUES (?, ?, ?, ?) IF NOT EXISTS`,
		p.NISN, p.Bucket, p.ID, now)
	if err != nil || !applied {
		// Release the email claim so the address is not burned by a NISN
		// conflict.
		if delErr := r.client.Query(
			`DELETE FROM email_to_participant WHERE email = ?`, p.Email).Exec(); delErr != nil {
			util.Error("Failed to release email mapping after NISN conflict",
				util.String("email", p.Email),
				util.ErrorField(delErr))
		}
		if err != nil {
			return fmt.Errorf("failed to claim nisn mapping: %w", err)
		}
		return ErrAlreadyExists
	}

	if err := r.client.Prepared.CreateParticipant.Bind(
		p.Bucket, p.ID, p.Nama, p.NISN, p.TanggalLahir, p.AsalSekolah,
		p.Whatsapp, p.Email, p.PasswordHash, p.RegisteredAt, p.UpdatedAt,
	).Exec(); err != nil {
		util.Error("Failed to create participant",
			util.String("email", p.Email),
			util.String("participant_id", p.ID.String()),
			util.ErrorField(err))
		return fmt.Errorf("failed to create participant: %w", err)
	}

	util.Info("Participant created",
		util.String("participant_id", p.ID.String()),
		util.String("email", p.Email),
		util.Int("bucket", p.Bucket))
	return nil
}

// GetByEmail resolves the email mapping and loads the participant row.
func (r *ParticipantRepository) GetByEmail(email string) (*model.Participant, error) {
	email = strings.ToLower(email)

	var bucket int
	var id uuid.UUID
	err := r.client.ScanWithRetry(
		r.client.Prepared.GetParticipantByMail.Bind(email), &bucket, &id)
	if err != nil {
		if err == gocql.ErrNotFound {
			return nil, ErrNotFound
		}
		util.Error("Failed to resolve email mapping",
			util.String("email", email),
			util.ErrorField(err))
		return nil, fmt.Errorf("failed to resolve email mapping: %w", err)
	}

	p := &model.Participant{}
	err = r.client.ScanWithRetry(
		r.client.Prepared.GetParticipant.Bind(bucket, id),
		&p.Bucket, &p.ID, &p.Nama, &p.NISN, &p.TanggalLahir, &p.AsalSekolah,
		&p.Whatsapp, &p.Email, &p.PasswordHash, &p.RegisteredAt, &p.UpdatedAt)
	if err != nil {
		if err == gocql.ErrNotFound {
			return nil, ErrNotFound
		}
		util.Error("Failed to load participant",
			util.String("participant_id", id.String()),
			util.ErrorField(err))
		return nil, fmt.Errorf("failed to load participant: %w", err)
	}

	return p, nil
}

// EmailOrNISNTaken is the combined fast-path duplicate check. The LWT claims
// in CreateParticipant remain the authoritative backstop.
func (r *ParticipantRepository) EmailOrNISNTaken(email, nisn string) (bool, error) {
	var bucket int
	var id uuid.UUID

	err := r.client.Query(
		`SELECT bucket, participant_id FROM email_to_participant WHERE email = ? LIMIT 1`,
		strings.ToLower(email)).Scan(&bucket, &id)
	if err == nil {
		return true, nil
	}
	if err != gocql.ErrNotFound {
		return false, fmt.Errorf("failed to check email: %w", err)
	}

	err = r.client.Query(
		`SELECT bucket, participant_id FROM nisn_to_participant WHERE nisn = ? LIMIT 1`,
		nisn).Scan(&bucket, &id)
	if err == nil {
		return true, nil
	}
	if err != gocql.ErrNotFound {
		return false, fmt.Errorf("failed to check nisn: %w", err)
	}

	return false, nil
}

// UpdatePasswordHash overwrites the stored hash and stamps updated_at.
func (r *ParticipantRepository) UpdatePasswordHash(p *model.Participant, passwordHash string) error {
	now := time.Now().UTC()

	if err := r.client.Prepared.UpdatePasswordHash.Bind(
		passwordHash, now, p.Bucket, p.ID,
	).Exec(); err != nil {
		util.Error("Failed to update password hash",
			util.String("participant_id", p.ID.String()),
			util.ErrorField(err))
		return fmt.Errorf("failed to update password hash: %w", err)
	}

	p.PasswordHash = passwordHash
	p.UpdatedAt = now

	util.Info("Participant password hash updated",
		util.String("participant_id", p.ID.String()))
	return nil
}

// CountParticipants returns the advisory registration count used by the
// slot cap. It is not transactional with registration.
func (r *ParticipantRepository) CountParticipants() (int, error) {
	var count int64
	if err := r.client.Query(
		`SELECT COUNT(*) FROM email_to_participant`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count participants: %w", err)
	}
	return int(count), nil
}

func (r *ParticipantRepository) claimMapping(stmt string, values ...interface{}) (bool, error) {
	applied, err := r.client.Query(stmt, values...).MapScanCAS(map[string]interface{}{})
	if err != nil {
		return false, err
	}
	return applied, nil
}
