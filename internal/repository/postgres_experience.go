package repository

import (
	"context"
	"errors"

	"github.com/Seyramize/BE-sub000/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresExperienceRepository struct {
	db *pgxpool.Pool
}

func NewPostgresExperienceRepository(db *pgxpool.Pool) *PostgresExperienceRepository {
	return &PostgresExperienceRepository{
		db: db,
	}
}

const experienceColumns = `
	id,
	slug,
	title,
	location,
	description,
	price,
	capacity,
	is_group,
	active,
	created_at,
	updated_at
`

func (p *PostgresExperienceRepository) GetAll(ctx context.Context) ([]*domain.Experience, error) {
	query := `
		SELECT ` + experienceColumns + `
		FROM experiences
		WHERE active = true
		ORDER BY title ASC
	`

	rows, err := p.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var experiences []*domain.Experience

	for rows.Next() {
		experience, err := p.scanOne(rows)
		if err != nil {
			return nil, err
		}
		experiences = append(experiences, experience)
	}

	return experiences, rows.Err()
}

func (p *PostgresExperienceRepository) GetById(ctx context.Context, id string) (*domain.Experience, error) {
	query := `SELECT ` + experienceColumns + ` FROM experiences WHERE id = $1`

	return p.scanOne(p.db.QueryRow(ctx, query, id))
}

func (p *PostgresExperienceRepository) GetBySlug(ctx context.Context, slug string) (*domain.Experience, error) {
	query := `SELECT ` + experienceColumns + ` FROM experiences WHERE slug = $1`

	return p.scanOne(p.db.QueryRow(ctx, query, slug))
}

func (p *PostgresExperienceRepository) GetByTitle(ctx context.Context, title string) (*domain.Experience, error) {
	query := `SELECT ` + experienceColumns + ` FROM experiences WHERE lower(title) = lower($1)`

	return p.scanOne(p.db.QueryRow(ctx, query, title))
}

func (p *PostgresExperienceRepository) scanOne(row pgx.Row) (*domain.Experience, error) {
	var experience domain.Experience

	err := row.Scan(
		&experience.ID,
		&experience.Slug,
		&experience.Title,
		&experience.Location,
		&experience.Description,
		&experience.Price,
		&experience.Capacity,
		&experience.IsGroup,
		&experience.Active,
		&experience.CreatedAt,
		&experience.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, err
	}

	return &experience, nil
}
