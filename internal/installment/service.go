// Package installment implements the installment payment plan orchestration:
// scheduling future charges, processing due installments against the payment
// gateway, and the periodic sweep over pending records.
package installment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Seyramize/BE-sub000/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/teambition/rrule-go"
)

const (
	MinCount    = 2
	MaxCount    = 24
	MinInterval = 1
	MaxInterval = 90
	MaxAttempts = 3
	baseBackoff = 24 * time.Hour
)

// Notifier receives plan-level escalation events from the processor.
type Notifier interface {
	InstallmentEscalated(installment *domain.InstallmentPayment)
}

type Service struct {
	logger   *slog.Logger
	repo     domain.InstallmentRepository
	provider domain.PaymentProvider
	notifier Notifier

	now func() time.Time
}

func NewService(logger *slog.Logger, repo domain.InstallmentRepository, provider domain.PaymentProvider, notifier Notifier) *Service {
	return &Service{
		logger:   logger,
		repo:     repo,
		provider: provider,
		notifier: notifier,
		now:      time.Now,
	}
}

// CreatePlan creates the installment records 2..N of a new payment plan.
// Installment 1 is collected by the initial checkout session and never gets a
// record. Returns the ids of the created records in installment order.
func (s *Service) CreatePlan(ctx context.Context, plan domain.PlanDescriptor) ([]string, error) {
	err := validatePlan(plan)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	amount := plan.Total.Div(decimal.NewFromInt(int64(plan.Count))).Round(2)

	// One occurrence per installment, starting at plan creation. Occurrence
	// n-1 is the due date of installment n.
	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:     rrule.DAILY,
		Interval: plan.IntervalDays,
		Dtstart:  now,
		Count:    plan.Count,
	})
	if err != nil {
		return nil, fmt.Errorf("building due date recurrence: %w", err)
	}

	dueDates := rule.All()

	ids := make([]string, 0, plan.Count-1)

	for n := 2; n <= plan.Count; n++ {
		record := &domain.InstallmentPayment{
			ID:                installmentID(plan.BookingID, n, now),
			BookingID:         plan.BookingID,
			CheckoutSessionID: plan.CheckoutSessionID,
			CustomerEmail:     plan.CustomerEmail,
			CustomerName:      plan.CustomerName,
			ExperienceName:    plan.ExperienceName,
			PlanTotal:         plan.Total,
			InstallmentCount:  plan.Count,
			IntervalDays:      plan.IntervalDays,
			Number:            n,
			Amount:            amount,
			Status:            domain.InstallmentStatusPending,
			DueAt:             dueDates[n-1],
			CreatedAt:         now,
		}

		if plan.PaymentMethodID != "" {
			record.PaymentMethodID = &plan.PaymentMethodID
		}
		if plan.StripeCustomerID != "" {
			record.StripeCustomerID = &plan.StripeCustomerID
		}

		err = s.repo.Create(ctx, record)
		if err != nil {
			return nil, fmt.Errorf("creating installment %d: %w", n, err)
		}

		ids = append(ids, record.ID)
	}

	s.logger.Info("installment plan scheduled",
		"bookingId", plan.BookingID,
		"count", plan.Count,
		"intervalDays", plan.IntervalDays,
		"amount", amount.StringFixed(2),
	)

	return ids, nil
}

func validatePlan(plan domain.PlanDescriptor) error {
	switch {
	case plan.BookingID == "":
		return fmt.Errorf("%w: missing booking id", domain.ErrInvalidPlan)
	case plan.Count < MinCount || plan.Count > MaxCount:
		return fmt.Errorf("%w: installment count %d outside [%d, %d]", domain.ErrInvalidPlan, plan.Count, MinCount, MaxCount)
	case plan.IntervalDays < MinInterval || plan.IntervalDays > MaxInterval:
		return fmt.Errorf("%w: interval %d days outside [%d, %d]", domain.ErrInvalidPlan, plan.IntervalDays, MinInterval, MaxInterval)
	case !plan.Total.IsPositive():
		return fmt.Errorf("%w: non-positive total %s", domain.ErrInvalidPlan, plan.Total)
	}

	return nil
}

func installmentID(bookingID string, number int, at time.Time) string {
	return fmt.Sprintf("inst_%s_%d_%d", bookingID, number, at.UnixMilli())
}

// Process charges a single pending installment. A record that is not PENDING
// is a logged no-op. The updated record is returned together with the gateway
// error, if any, so the sweep can report per-item outcomes.
func (s *Service) Process(ctx context.Context, id string) (*domain.InstallmentPayment, error) {
	record, err := s.repo.GetById(ctx, id)
	if err != nil {
		return nil, err
	}

	if record.Status != domain.InstallmentStatusPending {
		s.logger.Info("skipping non-pending installment", "installmentId", id, "status", record.Status)
		return record, nil
	}

	now := s.now().UTC()

	err = s.repo.RecordAttempt(ctx, id, now)
	if err != nil {
		return nil, err
	}
	record.Attempts++
	record.DueAt = now

	result, err := s.provider.ChargeInstallment(ctx, record)
	if err != nil {
		return record, s.handleChargeError(ctx, record, now, err)
	}

	if result.ChargeID != "" {
		if rcErr := s.repo.RecordCharge(ctx, id, result.ChargeID); rcErr != nil {
			s.logger.Error("failed to record charge id", "installmentId", id, "error", rcErr)
		}
		record.ChargeID = &result.ChargeID
	}

	if !result.Succeeded {
		// The gateway accepted the request but the charge has not settled.
		// Leave the record PENDING; the webhook or a later sweep finishes it.
		s.logger.Info("installment charge not yet settled",
			"installmentId", id, "chargeId", result.ChargeID)
		return record, nil
	}

	updated, err := s.repo.MarkPaid(ctx, id, result.ChargeID)
	if err != nil {
		return record, err
	}

	if !updated {
		// A concurrent processor or webhook settled this record first.
		s.logger.Warn("lost conditional update race, installment already settled", "installmentId", id)
		return record, nil
	}

	record.Status = domain.InstallmentStatusPaid

	s.logger.Info("installment paid",
		"installmentId", id,
		"bookingId", record.BookingID,
		"number", record.Number,
		"amount", record.Amount.StringFixed(2),
	)

	return record, nil
}

// handleChargeError applies the retry policy: exponential backoff of the due
// date while attempts remain, FAILED plus escalation once exhausted. The
// original gateway error is always returned to the caller.
func (s *Service) handleChargeError(ctx context.Context, record *domain.InstallmentPayment, now time.Time, chargeErr error) error {
	reason := chargeErr.Error()
	record.FailureReason = &reason

	if record.Attempts < MaxAttempts {
		backoff := baseBackoff << (record.Attempts - 1)
		nextDue := now.Add(backoff)

		err := s.repo.Reschedule(ctx, record.ID, nextDue)
		if err != nil {
			s.logger.Error("failed to reschedule installment", "installmentId", record.ID, "error", err)
		}
		record.DueAt = nextDue

		s.logger.Warn("installment charge failed, rescheduled",
			"installmentId", record.ID,
			"attempt", record.Attempts,
			"nextDue", nextDue,
			"error", reason,
		)

		return chargeErr
	}

	_, err := s.repo.MarkFailed(ctx, record.ID, reason)
	if err != nil {
		s.logger.Error("failed to mark installment failed", "installmentId", record.ID, "error", err)
	}
	record.Status = domain.InstallmentStatusFailed

	s.logger.Error("installment charge failed permanently, escalating",
		"installmentId", record.ID,
		"bookingId", record.BookingID,
		"attempts", record.Attempts,
		"error", reason,
	)

	if s.notifier != nil {
		s.notifier.InstallmentEscalated(record)
	}

	return chargeErr
}

// Result is the per-item outcome of a sweep.
type Result struct {
	InstallmentID string
	BookingID     string
	Number        int
	Err           error
}

// ListDue returns every PENDING installment whose due date has passed, oldest
// first.
func (s *Service) ListDue(ctx context.Context) ([]*domain.InstallmentPayment, error) {
	return s.repo.ListDuePending(ctx, s.now().UTC())
}

// ProcessAllDue sweeps the due pending installments sequentially. A failure on
// one item never halts the rest of the batch.
func (s *Service) ProcessAllDue(ctx context.Context) ([]Result, error) {
	due, err := s.ListDue(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(due))

	for _, record := range due {
		_, err := s.Process(ctx, record.ID)

		results = append(results, Result{
			InstallmentID: record.ID,
			BookingID:     record.BookingID,
			Number:        record.Number,
			Err:           err,
		})
	}

	return results, nil
}

// PlanStatus aggregates a booking's installments. The first installment of a
// plan has no record, so it counts as paid implicitly.
func (s *Service) PlanStatus(ctx context.Context, bookingID string) (*domain.PlanStatus, error) {
	records, err := s.repo.ListByBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if len(records) == 0 {
		return nil, domain.ErrRecordNotFound
	}

	status := &domain.PlanStatus{
		BookingID:         bookingID,
		TotalInstallments: records[0].InstallmentCount,
		TotalAmount:       records[0].PlanTotal,

		// Installment 1 was collected at checkout.
		PaidInstallments: 1,
		PaidAmount:       records[0].Amount,
	}

	for _, record := range records {
		switch record.Status {
		case domain.InstallmentStatusPaid:
			status.PaidInstallments++
			status.PaidAmount = status.PaidAmount.Add(record.Amount)
		case domain.InstallmentStatusPending:
			status.PendingInstallments++
		case domain.InstallmentStatusFailed:
			status.FailedInstallments++
		}
	}

	status.IsComplete = status.PaidInstallments == status.TotalInstallments

	return status, nil
}

// CancelPlan transitions a booking's remaining PENDING installments to
// CANCELLED and returns the number of records transitioned. PAID and FAILED
// records are untouched.
func (s *Service) CancelPlan(ctx context.Context, bookingID string) (int, error) {
	cancelled, err := s.repo.CancelPending(ctx, bookingID)
	if err != nil {
		return 0, err
	}

	s.logger.Info("installment plan cancelled", "bookingId", bookingID, "cancelled", cancelled)

	return cancelled, nil
}

// ConfirmCharge settles the installment matching a gateway charge id after an
// asynchronous success event. Returns the record and whether this call
// performed the PENDING -> PAID transition.
func (s *Service) ConfirmCharge(ctx context.Context, chargeID string) (*domain.InstallmentPayment, bool, error) {
	record, err := s.repo.GetByChargeId(ctx, chargeID)
	if err != nil {
		return nil, false, err
	}

	updated, err := s.repo.MarkPaid(ctx, record.ID, chargeID)
	if err != nil {
		return record, false, err
	}

	if updated {
		record.Status = domain.InstallmentStatusPaid
	}

	return record, updated, nil
}

// FailCharge marks the installment matching a gateway charge id FAILED after
// an asynchronous failure event.
func (s *Service) FailCharge(ctx context.Context, chargeID, reason string) (*domain.InstallmentPayment, bool, error) {
	record, err := s.repo.GetByChargeId(ctx, chargeID)
	if err != nil {
		return nil, false, err
	}

	updated, err := s.repo.MarkFailed(ctx, record.ID, reason)
	if err != nil {
		return record, false, err
	}

	if updated {
		record.Status = domain.InstallmentStatusFailed
		record.FailureReason = &reason
	}

	return record, updated, nil
}
