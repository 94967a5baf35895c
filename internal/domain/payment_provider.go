package domain

import (
	"context"

	"github.com/stripe/stripe-go/v82"
)

// ChargeResult is the synchronous outcome of an off-session installment
// charge.
type ChargeResult struct {
	ChargeID  string
	Succeeded bool
}

type PaymentProvider interface {
	CreateCheckoutSession(ctx context.Context, booking *Booking) (*stripe.CheckoutSession, error)
	CreateInstallmentCheckoutSession(ctx context.Context, booking *Booking, plan PlanDescriptor) (*stripe.CheckoutSession, error)
	ChargeInstallment(ctx context.Context, installment *InstallmentPayment) (*ChargeResult, error)
	GetCheckoutSession(ctx context.Context, sessionID string) (*stripe.CheckoutSession, error)
}
