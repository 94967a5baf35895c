package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Seyramize/BE-sub000/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresInstallmentRepository struct {
	db *pgxpool.Pool
}

func NewPostgresInstallmentRepository(db *pgxpool.Pool) *PostgresInstallmentRepository {
	return &PostgresInstallmentRepository{
		db: db,
	}
}

const installmentColumns = `
	id,
	booking_id,
	checkout_session_id,
	customer_email,
	customer_name,
	experience_name,
	plan_total,
	installment_count,
	interval_days,
	number,
	amount,
	status,
	due_at,
	charge_id,
	payment_method_id,
	stripe_customer_id,
	attempts,
	failure_reason,
	created_at,
	updated_at
`

func (p *PostgresInstallmentRepository) Create(ctx context.Context, installment *domain.InstallmentPayment) error {
	query := `
		INSERT INTO installment_payments (
			id,
			booking_id,
			checkout_session_id,
			customer_email,
			customer_name,
			experience_name,
			plan_total,
			installment_count,
			interval_days,
			number,
			amount,
			status,
			due_at,
			payment_method_id,
			stripe_customer_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING created_at
	`

	err := p.db.QueryRow(
		ctx,
		query,
		installment.ID,
		installment.BookingID,
		installment.CheckoutSessionID,
		installment.CustomerEmail,
		installment.CustomerName,
		installment.ExperienceName,
		installment.PlanTotal,
		installment.InstallmentCount,
		installment.IntervalDays,
		installment.Number,
		installment.Amount,
		installment.Status,
		installment.DueAt,
		installment.PaymentMethodID,
		installment.StripeCustomerID,
	).Scan(&installment.CreatedAt)

	return err
}

func (p *PostgresInstallmentRepository) GetById(ctx context.Context, id string) (*domain.InstallmentPayment, error) {
	query := `SELECT ` + installmentColumns + ` FROM installment_payments WHERE id = $1`

	return p.scanOne(p.db.QueryRow(ctx, query, id))
}

func (p *PostgresInstallmentRepository) GetByChargeId(ctx context.Context, chargeID string) (*domain.InstallmentPayment, error) {
	query := `SELECT ` + installmentColumns + ` FROM installment_payments WHERE charge_id = $1`

	return p.scanOne(p.db.QueryRow(ctx, query, chargeID))
}

func (p *PostgresInstallmentRepository) ListByBooking(ctx context.Context, bookingID string) ([]*domain.InstallmentPayment, error) {
	query := `
		SELECT ` + installmentColumns + `
		FROM installment_payments
		WHERE booking_id = $1
		ORDER BY number ASC
	`

	rows, err := p.db.Query(ctx, query, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return p.scanAll(rows)
}

func (p *PostgresInstallmentRepository) ListDuePending(ctx context.Context, now time.Time) ([]*domain.InstallmentPayment, error) {
	query := `
		SELECT ` + installmentColumns + `
		FROM installment_payments
		WHERE status = 'PENDING' AND due_at <= $1
		ORDER BY due_at ASC
	`

	rows, err := p.db.Query(ctx, query, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return p.scanAll(rows)
}

func (p *PostgresInstallmentRepository) RecordAttempt(ctx context.Context, id string, at time.Time) error {
	query := `
		UPDATE installment_payments
		SET attempts = attempts + 1, due_at = $1, updated_at = now()
		WHERE id = $2 AND status = 'PENDING'
	`

	_, err := p.db.Exec(ctx, query, at, id)
	return err
}

func (p *PostgresInstallmentRepository) RecordCharge(ctx context.Context, id string, chargeID string) error {
	query := `
		UPDATE installment_payments
		SET charge_id = $1, updated_at = now()
		WHERE id = $2
	`

	_, err := p.db.Exec(ctx, query, chargeID, id)
	return err
}

// MarkPaid is a conditional update: only one caller can win the
// PENDING -> PAID transition, so concurrent processors cannot both settle the
// same installment.
func (p *PostgresInstallmentRepository) MarkPaid(ctx context.Context, id string, chargeID string) (bool, error) {
	query := `
		UPDATE installment_payments
		SET status = 'PAID', charge_id = $1, failure_reason = NULL, updated_at = now()
		WHERE id = $2 AND status = 'PENDING'
	`

	tag, err := p.db.Exec(ctx, query, chargeID, id)
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() == 1, nil
}

func (p *PostgresInstallmentRepository) MarkFailed(ctx context.Context, id string, reason string) (bool, error) {
	query := `
		UPDATE installment_payments
		SET status = 'FAILED', failure_reason = $1, updated_at = now()
		WHERE id = $2 AND status = 'PENDING'
	`

	tag, err := p.db.Exec(ctx, query, reason, id)
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() == 1, nil
}

func (p *PostgresInstallmentRepository) Reschedule(ctx context.Context, id string, dueAt time.Time) error {
	query := `
		UPDATE installment_payments
		SET due_at = $1, updated_at = now()
		WHERE id = $2 AND status = 'PENDING'
	`

	_, err := p.db.Exec(ctx, query, dueAt, id)
	return err
}

func (p *PostgresInstallmentRepository) CancelPending(ctx context.Context, bookingID string) (int, error) {
	query := `
		UPDATE installment_payments
		SET status = 'CANCELLED', updated_at = now()
		WHERE booking_id = $1 AND status = 'PENDING'
	`

	tag, err := p.db.Exec(ctx, query, bookingID)
	if err != nil {
		return 0, err
	}

	return int(tag.RowsAffected()), nil
}

func (p *PostgresInstallmentRepository) scanOne(row pgx.Row) (*domain.InstallmentPayment, error) {
	var installment domain.InstallmentPayment

	err := row.Scan(
		&installment.ID,
		&installment.BookingID,
		&installment.CheckoutSessionID,
		&installment.CustomerEmail,
		&installment.CustomerName,
		&installment.ExperienceName,
		&installment.PlanTotal,
		&installment.InstallmentCount,
		&installment.IntervalDays,
		&installment.Number,
		&installment.Amount,
		&installment.Status,
		&installment.DueAt,
		&installment.ChargeID,
		&installment.PaymentMethodID,
		&installment.StripeCustomerID,
		&installment.Attempts,
		&installment.FailureReason,
		&installment.CreatedAt,
		&installment.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, err
	}

	return &installment, nil
}

func (p *PostgresInstallmentRepository) scanAll(rows pgx.Rows) ([]*domain.InstallmentPayment, error) {
	var installments []*domain.InstallmentPayment

	for rows.Next() {
		installment, err := p.scanOne(rows)
		if err != nil {
			return nil, err
		}
		installments = append(installments, installment)
	}

	return installments, rows.Err()
}
