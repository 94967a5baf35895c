package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Seyramize/BE-sub000/internal/domain"
)

// InMemoryInstallmentRepository is a mutex-guarded implementation of
// domain.InstallmentRepository used by the unit tests. It mirrors the
// conditional-update semantics of the Postgres repository.
type InMemoryInstallmentRepository struct {
	mu        sync.RWMutex
	records   map[string]*domain.InstallmentPayment
	byBooking map[string][]string
}

func NewInMemoryInstallmentRepository() *InMemoryInstallmentRepository {
	return &InMemoryInstallmentRepository{
		records:   make(map[string]*domain.InstallmentPayment),
		byBooking: make(map[string][]string),
	}
}

func (s *InMemoryInstallmentRepository) Create(ctx context.Context, installment *domain.InstallmentPayment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *installment
	s.records[installment.ID] = &clone
	s.byBooking[installment.BookingID] = append(s.byBooking[installment.BookingID], installment.ID)

	return nil
}

func (s *InMemoryInstallmentRepository) GetById(ctx context.Context, id string) (*domain.InstallmentPayment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[id]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}

	clone := *record
	return &clone, nil
}

func (s *InMemoryInstallmentRepository) GetByChargeId(ctx context.Context, chargeID string) (*domain.InstallmentPayment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, record := range s.records {
		if record.ChargeID != nil && *record.ChargeID == chargeID {
			clone := *record
			return &clone, nil
		}
	}

	return nil, domain.ErrRecordNotFound
}

func (s *InMemoryInstallmentRepository) ListByBooking(ctx context.Context, bookingID string) ([]*domain.InstallmentPayment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byBooking[bookingID]

	records := make([]*domain.InstallmentPayment, 0, len(ids))
	for _, id := range ids {
		clone := *s.records[id]
		records = append(records, &clone)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Number < records[j].Number
	})

	return records, nil
}

func (s *InMemoryInstallmentRepository) ListDuePending(ctx context.Context, now time.Time) ([]*domain.InstallmentPayment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var due []*domain.InstallmentPayment

	for _, record := range s.records {
		if record.Status == domain.InstallmentStatusPending && !record.DueAt.After(now) {
			clone := *record
			due = append(due, &clone)
		}
	}

	sort.Slice(due, func(i, j int) bool {
		return due[i].DueAt.Before(due[j].DueAt)
	})

	return due, nil
}

func (s *InMemoryInstallmentRepository) RecordAttempt(ctx context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[id]
	if !ok {
		return domain.ErrRecordNotFound
	}

	if record.Status == domain.InstallmentStatusPending {
		record.Attempts++
		record.DueAt = at
		record.UpdatedAt = &at
	}

	return nil
}

func (s *InMemoryInstallmentRepository) RecordCharge(ctx context.Context, id string, chargeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[id]
	if !ok {
		return domain.ErrRecordNotFound
	}

	record.ChargeID = &chargeID

	return nil
}

func (s *InMemoryInstallmentRepository) MarkPaid(ctx context.Context, id string, chargeID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[id]
	if !ok {
		return false, domain.ErrRecordNotFound
	}

	if record.Status != domain.InstallmentStatusPending {
		return false, nil
	}

	record.Status = domain.InstallmentStatusPaid
	record.ChargeID = &chargeID
	record.FailureReason = nil

	return true, nil
}

func (s *InMemoryInstallmentRepository) MarkFailed(ctx context.Context, id string, reason string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[id]
	if !ok {
		return false, domain.ErrRecordNotFound
	}

	if record.Status != domain.InstallmentStatusPending {
		return false, nil
	}

	record.Status = domain.InstallmentStatusFailed
	record.FailureReason = &reason

	return true, nil
}

func (s *InMemoryInstallmentRepository) Reschedule(ctx context.Context, id string, dueAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[id]
	if !ok {
		return domain.ErrRecordNotFound
	}

	if record.Status == domain.InstallmentStatusPending {
		record.DueAt = dueAt
	}

	return nil
}

func (s *InMemoryInstallmentRepository) CancelPending(ctx context.Context, bookingID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cancelled := 0

	for _, id := range s.byBooking[bookingID] {
		record := s.records[id]
		if record.Status == domain.InstallmentStatusPending {
			record.Status = domain.InstallmentStatusCancelled
			cancelled++
		}
	}

	return cancelled, nil
}
