package repository

import (
	"context"
	"errors"

	"github.com/Seyramize/BE-sub000/internal/domain"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresNotificationRepository stores durable idempotency markers for sent
// notifications. The primary key on (session_id, notification_type) is what
// makes Claim exactly-once.
type PostgresNotificationRepository struct {
	db *pgxpool.Pool
}

func NewPostgresNotificationRepository(db *pgxpool.Pool) *PostgresNotificationRepository {
	return &PostgresNotificationRepository{
		db: db,
	}
}

func (p *PostgresNotificationRepository) Claim(ctx context.Context, sessionID, notificationType string) error {
	query := `
		INSERT INTO notification_markers (session_id, notification_type)
		VALUES ($1, $2)
	`

	_, err := p.db.Exec(ctx, query, sessionID, notificationType)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return domain.ErrDuplicateNotification
		}
		return err
	}

	return nil
}
