package payment

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Seyramize/BE-sub000/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/paymentintent"
)

type StripePaymentProvider struct {
	successUrl string
	cancelUrl  string
}

func NewStripePaymentProvider(successUrl, cancelUrl string) *StripePaymentProvider {
	return &StripePaymentProvider{
		successUrl: successUrl,
		cancelUrl:  cancelUrl,
	}
}

func (s *StripePaymentProvider) CreateCheckoutSession(
	ctx context.Context,
	booking *domain.Booking) (*stripe.CheckoutSession, error) {

	priceCents := booking.Amount.Mul(decimal.NewFromInt(100)).IntPart()

	lineItem := &stripe.CheckoutSessionLineItemParams{
		PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
			Currency:   stripe.String(string(stripe.CurrencyUSD)),
			UnitAmount: stripe.Int64(priceCents),
			ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
				Name: stripe.String(fmt.Sprintf("%s", booking.ExperienceName)),
				Description: stripe.String(fmt.Sprintf(
					"Guests: %d • Preferred date: %s",
					booking.Guests,
					booking.PreferredDate,
				)),
			},
		},
		Quantity: stripe.Int64(1),
	}

	params := &stripe.CheckoutSessionParams{
		Params:     stripe.Params{Context: ctx},
		LineItems:  []*stripe.CheckoutSessionLineItemParams{lineItem},
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(s.successUrl + "?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:  stripe.String(s.cancelUrl),
		Metadata:   bookingMetadata(booking),

		CustomerEmail:     &booking.CustomerEmail,
		ClientReferenceID: stripe.String(booking.ID),
	}

	return session.New(params)
}

// CreateInstallmentCheckoutSession charges the first installment now and
// stores the payment method so installments 2..N can be charged off-session
// later.
func (s *StripePaymentProvider) CreateInstallmentCheckoutSession(
	ctx context.Context,
	booking *domain.Booking,
	plan domain.PlanDescriptor) (*stripe.CheckoutSession, error) {

	firstAmount := plan.Total.Div(decimal.NewFromInt(int64(plan.Count)))
	priceCents := firstAmount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()

	lineItem := &stripe.CheckoutSessionLineItemParams{
		PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
			Currency:   stripe.String(string(stripe.CurrencyUSD)),
			UnitAmount: stripe.Int64(priceCents),
			ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
				Name: stripe.String(fmt.Sprintf("%s - installment 1 of %d", booking.ExperienceName, plan.Count)),
				Description: stripe.String(fmt.Sprintf(
					"Payment plan: %d installments of %s USD every %d days",
					plan.Count,
					firstAmount.StringFixed(2),
					plan.IntervalDays,
				)),
			},
		},
		Quantity: stripe.Int64(1),
	}

	metadata := bookingMetadata(booking)
	metadata["payment_style"] = string(domain.PaymentStyleInstallment)
	metadata["installment_total"] = plan.Total.StringFixed(2)
	metadata["installment_count"] = strconv.Itoa(plan.Count)
	metadata["installment_interval"] = strconv.Itoa(plan.IntervalDays)

	params := &stripe.CheckoutSessionParams{
		Params:     stripe.Params{Context: ctx},
		LineItems:  []*stripe.CheckoutSessionLineItemParams{lineItem},
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(s.successUrl + "?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:  stripe.String(s.cancelUrl),
		Metadata:   metadata,

		CustomerCreation: stripe.String(string(stripe.CheckoutSessionCustomerCreationAlways)),
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			SetupFutureUsage: stripe.String(string(stripe.PaymentIntentSetupFutureUsageOffSession)),
			Metadata:         metadata,
		},

		CustomerEmail:     &booking.CustomerEmail,
		ClientReferenceID: stripe.String(booking.ID),
	}

	return session.New(params)
}

// ChargeInstallment creates and confirms an off-session PaymentIntent against
// the customer's stored payment method.
func (s *StripePaymentProvider) ChargeInstallment(
	ctx context.Context,
	installment *domain.InstallmentPayment) (*domain.ChargeResult, error) {

	if installment.StripeCustomerID == nil || installment.PaymentMethodID == nil {
		return nil, fmt.Errorf("installment %s has no stored payment method", installment.ID)
	}

	amountCents := installment.Amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()

	params := &stripe.PaymentIntentParams{
		Params:        stripe.Params{Context: ctx},
		Amount:        stripe.Int64(amountCents),
		Currency:      stripe.String(string(stripe.CurrencyUSD)),
		Customer:      installment.StripeCustomerID,
		PaymentMethod: installment.PaymentMethodID,
		OffSession:    stripe.Bool(true),
		Confirm:       stripe.Bool(true),
		Description: stripe.String(fmt.Sprintf(
			"%s - installment %d of %d",
			installment.ExperienceName,
			installment.Number,
			installment.InstallmentCount,
		)),
		Metadata: map[string]string{
			"booking_id":         installment.BookingID,
			"installment_id":     installment.ID,
			"installment_number": strconv.Itoa(installment.Number),
		},
	}

	intent, err := paymentintent.New(params)
	if err != nil {
		return nil, err
	}

	return &domain.ChargeResult{
		ChargeID:  intent.ID,
		Succeeded: intent.Status == stripe.PaymentIntentStatusSucceeded,
	}, nil
}

func (s *StripePaymentProvider) GetCheckoutSession(ctx context.Context, sessionID string) (*stripe.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Params: stripe.Params{Context: ctx},
		Expand: []*string{
			stripe.String("customer"),
			stripe.String("payment_intent"),
			stripe.String("payment_intent.payment_method"),
		},
	}

	return session.Get(sessionID, params)
}

func bookingMetadata(booking *domain.Booking) map[string]string {
	return map[string]string{
		"booking_id":      booking.ID,
		"experience_id":   booking.ExperienceID,
		"experience_name": booking.ExperienceName,
		"experience_slug": booking.ExperienceSlug,
		"customer_name":   booking.CustomerName,
		"customer_phone":  booking.CustomerPhone,
		"guests":          strconv.Itoa(booking.Guests),
		"preferred_date":  booking.PreferredDate,
		"alternate_date":  booking.AlternateDate,
		"payment_style":   string(booking.PaymentStyle),
	}
}
