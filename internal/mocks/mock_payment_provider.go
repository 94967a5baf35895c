package mocks

import (
	"context"

	"github.com/Seyramize/BE-sub000/internal/domain"
	"github.com/stretchr/testify/mock"
	"github.com/stripe/stripe-go/v82"
)

type MockPaymentProvider struct {
	mock.Mock
	domain.PaymentProvider
}

func (m *MockPaymentProvider) CreateCheckoutSession(ctx context.Context, booking *domain.Booking) (*stripe.CheckoutSession, error) {
	args := m.Called(ctx, booking)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stripe.CheckoutSession), args.Error(1)
}

func (m *MockPaymentProvider) CreateInstallmentCheckoutSession(
	ctx context.Context,
	booking *domain.Booking,
	plan domain.PlanDescriptor) (*stripe.CheckoutSession, error) {

	args := m.Called(ctx, booking, plan)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stripe.CheckoutSession), args.Error(1)
}

func (m *MockPaymentProvider) ChargeInstallment(ctx context.Context, installment *domain.InstallmentPayment) (*domain.ChargeResult, error) {
	args := m.Called(ctx, installment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ChargeResult), args.Error(1)
}

func (m *MockPaymentProvider) GetCheckoutSession(ctx context.Context, sessionID string) (*stripe.CheckoutSession, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stripe.CheckoutSession), args.Error(1)
}
