package payment

import (
	"context"

	"github.com/Seyramize/BE-sub000/internal/domain"
	"github.com/stripe/stripe-go/v82"
)

// MockPaymentProvider is a PaymentProvider that never talks to Stripe; every
// call succeeds with canned data. Used by the integration suite.
type MockPaymentProvider struct{}

func NewMockPaymentProvider() *MockPaymentProvider {
	return &MockPaymentProvider{}
}

func (m *MockPaymentProvider) CreateCheckoutSession(
	ctx context.Context,
	booking *domain.Booking) (*stripe.CheckoutSession, error) {

	return &stripe.CheckoutSession{
		ID:  "cs_test_" + booking.ID,
		URL: "https://checkout.stripe.com/test/" + booking.ID,
	}, nil
}

func (m *MockPaymentProvider) CreateInstallmentCheckoutSession(
	ctx context.Context,
	booking *domain.Booking,
	plan domain.PlanDescriptor) (*stripe.CheckoutSession, error) {

	return &stripe.CheckoutSession{
		ID:  "cs_test_" + booking.ID,
		URL: "https://checkout.stripe.com/test/" + booking.ID,
	}, nil
}

func (m *MockPaymentProvider) ChargeInstallment(
	ctx context.Context,
	installment *domain.InstallmentPayment) (*domain.ChargeResult, error) {

	return &domain.ChargeResult{
		ChargeID:  "pi_test_" + installment.ID,
		Succeeded: true,
	}, nil
}

func (m *MockPaymentProvider) GetCheckoutSession(ctx context.Context, sessionID string) (*stripe.CheckoutSession, error) {
	return &stripe.CheckoutSession{
		ID:            sessionID,
		PaymentStatus: stripe.CheckoutSessionPaymentStatusPaid,
	}, nil
}
