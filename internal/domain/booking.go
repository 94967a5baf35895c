package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCanceled  BookingStatus = "canceled"
)

type PaymentStyle string

const (
	PaymentStyleFull        PaymentStyle = "Full Payment"
	PaymentStyleInstallment PaymentStyle = "Installment Payment"
)

type Booking struct {
	ID                  string
	ExperienceID        string
	ExperienceName      string
	ExperienceSlug      string
	CustomerName        string
	CustomerEmail       string
	CustomerPhone       string
	Guests              int
	PreferredDate       string
	AlternateDate       string
	PaymentStyle        PaymentStyle
	CheckoutSessionID   *string
	Amount              decimal.Decimal
	Currency            string
	Status              BookingStatus
	MobileMoneyProvider string
	CreatedAt           time.Time
	UpdatedAt           *time.Time
}

type BookingRepository interface {
	Create(ctx context.Context, booking *Booking) error
	GetById(ctx context.Context, id string) (*Booking, error)
	GetByCheckoutSessionId(ctx context.Context, sessionID string) (*Booking, error)
	UpdateStatus(ctx context.Context, checkoutSessionID string, status BookingStatus) error
	CountConfirmedGuests(ctx context.Context, experienceID string) (int, error)
}
