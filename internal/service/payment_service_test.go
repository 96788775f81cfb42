package service

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"tryout-service/internal/model"
	"tryout-service/internal/storage"
)

const testAmountIDR = 10000

func newTestPaymentService(repo *fakePayments, files *fakeProofStore) *PaymentService {
	s := NewPaymentService(repo, files, testAmountIDR, nil)
	s.clock = func() time.Time { return time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC) }
	return s
}

func TestUploadProof(t *testing.T) {
	repo := &fakePayments{}
	files := &fakeProofStore{}
	s := newTestPaymentService(repo, files)
	participantID := uuid.New()

	proof, err := s.UploadProof(participantID, "bukti.jpg", strings.NewReader("image-bytes"))
	if err != nil {
		t.Fatalf("UploadProof: %v", err)
	}
	if proof.Status != model.PaymentStatusPending {
		t.Errorf("status = %q, want pending", proof.Status)
	}
	if proof.AmountIDR != testAmountIDR {
		t.Errorf("amount = %d, want %d", proof.AmountIDR, testAmountIDR)
	}
	if proof.ID == uuid.Nil {
		t.Error("proof has no ID")
	}
	if len(files.saved) != 1 {
		t.Fatalf("saved %d files, want 1", len(files.saved))
	}
}

func TestUploadProofRejectsUnsupportedType(t *testing.T) {
	s := newTestPaymentService(&fakePayments{}, &fakeProofStore{saveErr: storage.ErrUnsupportedType})

	_, err := s.UploadProof(uuid.New(), "virus.exe", strings.NewReader("x"))
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("UploadProof = %v, want ErrValidation", err)
	}
}

func TestUploadProofCompensatesFailedInsert(t *testing.T) {
	repo := &fakePayments{createErr: errStoreDown}
	files := &fakeProofStore{}
	s := newTestPaymentService(repo, files)

	if _, err := s.UploadProof(uuid.New(), "bukti.png", strings.NewReader("x")); err == nil {
		t.Fatal("UploadProof succeeded despite insert failure")
	}
	if len(files.removed) != 1 {
		t.Fatalf("removed %d files, want 1 (orphan cleanup)", len(files.removed))
	}
	if files.removed[0] != files.saved[0] {
		t.Errorf("removed %q, saved %q", files.removed[0], files.saved[0])
	}
}

func TestReviewTransitions(t *testing.T) {
	tests := []struct {
		name    string
		status  string
		wantErr error
	}{
		{"verify", model.PaymentStatusVerified, nil},
		{"reject", model.PaymentStatusRejected, nil},
		{"back to pending", model.PaymentStatusPending, ErrValidation},
		{"unknown status", "approved", ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakePayments{}
			s := newTestPaymentService(repo, &fakeProofStore{})

			proof, err := s.UploadProof(uuid.New(), "bukti.jpg", strings.NewReader("x"))
			if err != nil {
				t.Fatalf("UploadProof: %v", err)
			}

			reviewed, err := s.Review(proof.ID, tt.status, "catatan", "admin1")
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Review = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Review: %v", err)
			}
			if reviewed.Status != tt.status {
				t.Errorf("status = %q, want %q", reviewed.Status, tt.status)
			}
			if reviewed.VerifiedBy != "admin1" {
				t.Errorf("verified_by = %q", reviewed.VerifiedBy)
			}
			if reviewed.VerifiedAt.IsZero() {
				t.Error("verified_at not stamped")
			}
			if reviewed.AdminNotes != "catatan" {
				t.Errorf("admin_notes = %q", reviewed.AdminNotes)
			}
		})
	}
}

func TestReviewedProofIsImmutable(t *testing.T) {
	repo := &fakePayments{}
	s := newTestPaymentService(repo, &fakeProofStore{})

	proof, err := s.UploadProof(uuid.New(), "bukti.jpg", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("UploadProof: %v", err)
	}
	if _, err := s.Review(proof.ID, model.PaymentStatusRejected, "", "admin1"); err != nil {
		t.Fatalf("Review: %v", err)
	}

	// Neither a repeat decision nor a flip is allowed.
	if _, err := s.Review(proof.ID, model.PaymentStatusRejected, "", "admin2"); !errors.Is(err, ErrConflict) {
		t.Fatalf("Review(repeat) = %v, want ErrConflict", err)
	}
	if _, err := s.Review(proof.ID, model.PaymentStatusVerified, "", "admin2"); !errors.Is(err, ErrConflict) {
		t.Fatalf("Review(flip) = %v, want ErrConflict", err)
	}

	stored, err := repo.GetProof(proof.ID)
	if err != nil {
		t.Fatalf("GetProof: %v", err)
	}
	if stored.Status != model.PaymentStatusRejected || stored.VerifiedBy != "admin1" {
		t.Errorf("reviewed record mutated: status=%q by=%q", stored.Status, stored.VerifiedBy)
	}
}

func TestReviewUnknownProof(t *testing.T) {
	s := newTestPaymentService(&fakePayments{}, &fakeProofStore{})

	if _, err := s.Review(uuid.New(), model.PaymentStatusVerified, "", "admin1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Review = %v, want ErrNotFound", err)
	}
}

func TestStatusGatesCardOnNewestProof(t *testing.T) {
	repo := &fakePayments{}
	s := newTestPaymentService(repo, &fakeProofStore{})
	participantID := uuid.New()

	if _, err := s.Status(participantID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Status(no proofs) = %v, want ErrNotFound", err)
	}

	first, err := s.UploadProof(participantID, "bukti.jpg", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("UploadProof: %v", err)
	}

	status, err := s.Status(participantID)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if status.CardUnlocked {
		t.Error("card unlocked while pending")
	}

	if _, err := s.Review(first.ID, model.PaymentStatusRejected, "buram", "admin1"); err != nil {
		t.Fatalf("Review: %v", err)
	}
	status, err = s.Status(participantID)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if status.CardUnlocked {
		t.Error("card unlocked after rejection")
	}

	// Re-upload after rejection: a fresh pending record on top, the earlier
	// rejected record untouched.
	repo.proofs[0].CreatedAt = repo.proofs[0].CreatedAt.Add(-time.Minute)
	second, err := s.UploadProof(participantID, "bukti2.jpg", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("second UploadProof: %v", err)
	}
	status, err = s.Status(participantID)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if status.Proof.ID != second.ID {
		t.Fatalf("status shows proof %s, want newest %s", status.Proof.ID, second.ID)
	}
	if status.Proof.Status != model.PaymentStatusPending {
		t.Errorf("newest proof status = %q, want pending", status.Proof.Status)
	}
	old, err := repo.GetProof(first.ID)
	if err != nil {
		t.Fatalf("GetProof: %v", err)
	}
	if old.Status != model.PaymentStatusRejected {
		t.Errorf("earlier record mutated by re-upload: %q", old.Status)
	}

	if _, err := s.Review(second.ID, model.PaymentStatusVerified, "", "admin1"); err != nil {
		t.Fatalf("Review: %v", err)
	}
	status, err = s.Status(participantID)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if !status.CardUnlocked {
		t.Error("card locked after verification of the newest proof")
	}
}

func TestListProofs(t *testing.T) {
	repo := &fakePayments{}
	s := newTestPaymentService(repo, &fakeProofStore{})

	for i := 0; i < 3; i++ {
		if _, err := s.UploadProof(uuid.New(), "bukti.jpg", strings.NewReader("x")); err != nil {
			t.Fatalf("UploadProof: %v", err)
		}
	}
	verified, err := s.UploadProof(uuid.New(), "bukti.jpg", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("UploadProof: %v", err)
	}
	if _, err := s.Review(verified.ID, model.PaymentStatusVerified, "", "admin1"); err != nil {
		t.Fatalf("Review: %v", err)
	}

	// Empty status defaults to the pending queue.
	proofs, err := s.List("", 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(proofs) != 3 {
		t.Fatalf("listed %d proofs, want 3", len(proofs))
	}
	for _, p := range proofs {
		if p.Status != model.PaymentStatusPending {
			t.Errorf("non-pending proof %s in the queue", p.ID)
		}
	}

	proofs, err = s.List(model.PaymentStatusPending, 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(proofs) != 2 {
		t.Fatalf("listed %d proofs with limit 2", len(proofs))
	}

	proofs, err = s.List(model.PaymentStatusVerified, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(proofs) != 1 {
		t.Fatalf("listed %d verified proofs, want 1", len(proofs))
	}

	if _, err := s.List("approved", 0); !errors.Is(err, ErrValidation) {
		t.Fatalf("List(bad status) = %v, want ErrValidation", err)
	}
}
