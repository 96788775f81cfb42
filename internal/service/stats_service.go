package service

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	"tryout-service/internal/model"
)

// StatsService backs the public slot counter. Counts are advisory reads; a
// registration racing a count at the cap boundary can still slip in.
type StatsService struct {
	participants model.ParticipantRepository
	payments     model.PaymentRepository
	slotLimit    int
}

func NewStatsService(participants model.ParticipantRepository, payments model.PaymentRepository, slotLimit int) *StatsService {
	return &StatsService{
		participants: participants,
		payments:     payments,
		slotLimit:    slotLimit,
	}
}

type SlotUsage struct {
	Total            int `json:"total"`
	Used             int `json:"used"`
	Available        int `json:"available"`
	VerifiedPayments int `json:"verified_payments"`
}

// Slots runs the two counts in parallel.
func (s *StatsService) Slots() (*SlotUsage, error) {
	var used, verified int

	var g errgroup.Group
	g.Go(func() error {
		n, err := s.participants.CountParticipants()
		if err != nil {
			return err
		}
		used = n
		return nil
	})
	g.Go(func() error {
		n, err := s.payments.CountByStatus(model.PaymentStatusVerified)
		if err != nil {
			return err
		}
		verified = n
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to count slots: %w", err)
	}

	available := s.slotLimit - used
	if available < 0 {
		available = 0
	}
	return &SlotUsage{
		Total:            s.slotLimit,
		Used:             used,
		Available:        available,
		VerifiedPayments: verified,
	}, nil
}

// SlotsFull is the advisory cap check the registration handler runs before
// invoking the workflow.
func (s *StatsService) SlotsFull() (bool, error) {
	used, err := s.participants.CountParticipants()
	if err != nil {
		return false, fmt.Errorf("failed to count participants: %w", err)
	}
	return used >= s.slotLimit, nil
}
