package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Experience struct {
	ID          string
	Slug        string
	Title       string
	Location    string
	Description string
	Price       decimal.Decimal
	Capacity    int
	IsGroup     bool
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

type ExperienceRepository interface {
	GetAll(ctx context.Context) ([]*Experience, error)
	GetById(ctx context.Context, id string) (*Experience, error)
	GetBySlug(ctx context.Context, slug string) (*Experience, error)
	GetByTitle(ctx context.Context, title string) (*Experience, error)
}
