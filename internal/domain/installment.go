package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type InstallmentStatus string

const (
	InstallmentStatusPending   InstallmentStatus = "PENDING"
	InstallmentStatusPaid      InstallmentStatus = "PAID"
	InstallmentStatusFailed    InstallmentStatus = "FAILED"
	InstallmentStatusCancelled InstallmentStatus = "CANCELLED"
)

// InstallmentPayment is one scheduled charge within a payment plan. The first
// installment of a plan is collected by the initial checkout session, so
// records exist only for numbers 2..N.
type InstallmentPayment struct {
	ID                string
	BookingID         string
	CheckoutSessionID string
	CustomerEmail     string
	CustomerName      string
	ExperienceName    string
	PlanTotal         decimal.Decimal
	InstallmentCount  int
	IntervalDays      int
	Number            int
	Amount            decimal.Decimal
	Status            InstallmentStatus
	DueAt             time.Time
	ChargeID          *string
	PaymentMethodID   *string
	StripeCustomerID  *string
	Attempts          int
	FailureReason     *string
	CreatedAt         time.Time
	UpdatedAt         *time.Time
}

// PlanDescriptor carries the parameters of a new installment plan into the
// scheduler.
type PlanDescriptor struct {
	BookingID         string
	CheckoutSessionID string
	CustomerEmail     string
	CustomerName      string
	ExperienceName    string
	Total             decimal.Decimal
	Count             int
	IntervalDays      int
	PaymentMethodID   string
	StripeCustomerID  string
}

// PlanStatus is the aggregate view of a booking's installment plan.
type PlanStatus struct {
	BookingID           string
	TotalInstallments   int
	PaidInstallments    int
	PendingInstallments int
	FailedInstallments  int
	TotalAmount         decimal.Decimal
	PaidAmount          decimal.Decimal
	IsComplete          bool
}

type InstallmentRepository interface {
	Create(ctx context.Context, installment *InstallmentPayment) error
	GetById(ctx context.Context, id string) (*InstallmentPayment, error)
	GetByChargeId(ctx context.Context, chargeID string) (*InstallmentPayment, error)
	ListByBooking(ctx context.Context, bookingID string) ([]*InstallmentPayment, error)
	ListDuePending(ctx context.Context, now time.Time) ([]*InstallmentPayment, error)

	// RecordAttempt increments the attempt counter and stamps the time of the
	// attempt on a PENDING record.
	RecordAttempt(ctx context.Context, id string, at time.Time) error

	// RecordCharge stores the gateway charge id without changing status, so
	// a charge that is still settling can be matched by a later webhook.
	RecordCharge(ctx context.Context, id string, chargeID string) error

	// MarkPaid transitions PENDING -> PAID and stores the gateway charge id.
	// Returns false when the record was not PENDING, so a processor that lost
	// a race can tell it did not perform the transition.
	MarkPaid(ctx context.Context, id string, chargeID string) (bool, error)

	// MarkFailed transitions PENDING -> FAILED with the captured reason.
	MarkFailed(ctx context.Context, id string, reason string) (bool, error)

	// Reschedule pushes a PENDING record's due date forward.
	Reschedule(ctx context.Context, id string, dueAt time.Time) error

	// CancelPending transitions every PENDING record of a booking to
	// CANCELLED and returns the number of records transitioned.
	CancelPending(ctx context.Context, bookingID string) (int, error)
}

// NotificationRepository records durable idempotency markers so duplicate
// webhook deliveries or repeated completion checks cannot double-send email.
type NotificationRepository interface {
	// Claim inserts a marker for (sessionID, notificationType). It returns
	// ErrDuplicateNotification when the marker already exists.
	Claim(ctx context.Context, sessionID, notificationType string) error
}
