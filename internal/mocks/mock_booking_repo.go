package mocks

import (
	"context"

	"github.com/Seyramize/BE-sub000/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockBookingRepo struct {
	mock.Mock
	domain.BookingRepository
}

func (m *MockBookingRepo) Create(ctx context.Context, booking *domain.Booking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}

func (m *MockBookingRepo) GetByCheckoutSessionId(ctx context.Context, sessionID string) (*domain.Booking, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepo) UpdateStatus(ctx context.Context, checkoutSessionID string, status domain.BookingStatus) error {
	args := m.Called(ctx, checkoutSessionID, status)
	return args.Error(0)
}

func (m *MockBookingRepo) CountConfirmedGuests(ctx context.Context, experienceID string) (int, error) {
	args := m.Called(ctx, experienceID)
	return args.Int(0), args.Error(1)
}
