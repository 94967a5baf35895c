package repository

import (
	"context"
	"errors"

	"github.com/Seyramize/BE-sub000/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresBookingRepository struct {
	db *pgxpool.Pool
}

func NewPostgresBookingRepository(db *pgxpool.Pool) *PostgresBookingRepository {
	return &PostgresBookingRepository{
		db: db,
	}
}

const bookingColumns = `
	id,
	experience_id,
	experience_name,
	experience_slug,
	customer_name,
	customer_email,
	customer_phone,
	guests,
	preferred_date,
	alternate_date,
	payment_style,
	checkout_session_id,
	amount,
	currency,
	status,
	mobile_money_provider,
	created_at,
	updated_at
`

func (p *PostgresBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	query := `
		INSERT INTO bookings (
			id,
			experience_id,
			experience_name,
			experience_slug,
			customer_name,
			customer_email,
			customer_phone,
			guests,
			preferred_date,
			alternate_date,
			payment_style,
			checkout_session_id,
			amount,
			currency,
			status,
			mobile_money_provider
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING created_at
	`

	err := p.db.QueryRow(
		ctx,
		query,
		booking.ID,
		booking.ExperienceID,
		booking.ExperienceName,
		booking.ExperienceSlug,
		booking.CustomerName,
		booking.CustomerEmail,
		booking.CustomerPhone,
		booking.Guests,
		booking.PreferredDate,
		booking.AlternateDate,
		booking.PaymentStyle,
		booking.CheckoutSessionID,
		booking.Amount,
		booking.Currency,
		booking.Status,
		booking.MobileMoneyProvider,
	).Scan(&booking.CreatedAt)

	return err
}

func (p *PostgresBookingRepository) GetById(ctx context.Context, id string) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	return p.scanOne(p.db.QueryRow(ctx, query, id))
}

func (p *PostgresBookingRepository) GetByCheckoutSessionId(ctx context.Context, sessionID string) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE checkout_session_id = $1`

	return p.scanOne(p.db.QueryRow(ctx, query, sessionID))
}

func (p *PostgresBookingRepository) UpdateStatus(ctx context.Context, checkoutSessionID string, status domain.BookingStatus) error {
	query := `
		UPDATE bookings
		SET status = $1, updated_at = now()
		WHERE checkout_session_id = $2
	`

	_, err := p.db.Exec(ctx, query, status, checkoutSessionID)
	return err
}

func (p *PostgresBookingRepository) CountConfirmedGuests(ctx context.Context, experienceID string) (int, error) {
	query := `
		SELECT COALESCE(SUM(guests), 0)
		FROM bookings
		WHERE experience_id = $1 AND status = 'confirmed'
	`

	var total int
	err := p.db.QueryRow(ctx, query, experienceID).Scan(&total)

	return total, err
}

func (p *PostgresBookingRepository) scanOne(row pgx.Row) (*domain.Booking, error) {
	var booking domain.Booking

	err := row.Scan(
		&booking.ID,
		&booking.ExperienceID,
		&booking.ExperienceName,
		&booking.ExperienceSlug,
		&booking.CustomerName,
		&booking.CustomerEmail,
		&booking.CustomerPhone,
		&booking.Guests,
		&booking.PreferredDate,
		&booking.AlternateDate,
		&booking.PaymentStyle,
		&booking.CheckoutSessionID,
		&booking.Amount,
		&booking.Currency,
		&booking.Status,
		&booking.MobileMoneyProvider,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, err
	}

	return &booking, nil
}
