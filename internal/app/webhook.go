package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/Seyramize/BE-sub000/api"
	"github.com/Seyramize/BE-sub000/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

const maxWebhookBodyBytes = 65536

// StripeWebhookHandler consumes asynchronous payment gateway events. Signature
// verification fails closed: a request with a bad signature is rejected before
// any state is touched. Unknown event types are acknowledged so the gateway
// does not retry them.
func (app *Application) StripeWebhookHandler(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBodyBytes))
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("reading webhook payload: %w", err))
		return
	}

	event, err := webhook.ConstructEventWithOptions(
		payload,
		r.Header.Get("Stripe-Signature"),
		app.config.Stripe.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
	if err != nil {
		app.logger.Warn("stripe signature verification failed", "error", err)
		app.badRequestResponse(w, r, errors.New("signature verification failed"))
		return
	}

	err = app.dispatchStripeEvent(r.Context(), event)
	if err != nil {
		app.serverErrorResponse(w, r, fmt.Errorf("handling %s: %w", event.Type, err))
		return
	}

	app.writeJSON(w, http.StatusOK, api.WebhookResponse{Received: true}, nil)
}

func (app *Application) dispatchStripeEvent(ctx context.Context, event stripe.Event) error {
	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return fmt.Errorf("parsing checkout session: %w", err)
		}
		return app.handleCheckoutCompleted(ctx, &session)

	case stripe.EventTypePaymentIntentSucceeded:
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			return fmt.Errorf("parsing payment intent: %w", err)
		}
		return app.handlePaymentSucceeded(ctx, &intent)

	case stripe.EventTypePaymentIntentPaymentFailed:
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			return fmt.Errorf("parsing payment intent: %w", err)
		}
		return app.handlePaymentFailed(ctx, &intent)

	case stripe.EventTypeInvoicePaid:
		var invoice stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
			return fmt.Errorf("parsing invoice: %w", err)
		}
		return app.handleInvoicePaid(ctx, &invoice)

	case stripe.EventTypeInvoicePaymentFailed:
		var invoice stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
			return fmt.Errorf("parsing invoice: %w", err)
		}
		return app.handleInvoiceFailed(ctx, &invoice)

	case stripe.EventTypeCustomerSubscriptionDeleted:
		var subscription stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &subscription); err != nil {
			return fmt.Errorf("parsing subscription: %w", err)
		}
		return app.handleSubscriptionDeleted(ctx, &subscription)

	default:
		app.logger.Info("ignoring unhandled stripe event", "type", event.Type)
		return nil
	}
}

// handleCheckoutCompleted confirms the booking, appends the guestlist row,
// schedules the installment plan when the session describes one, and sends the
// confirmation emails once per session.
func (app *Application) handleCheckoutCompleted(ctx context.Context, session *stripe.CheckoutSession) error {
	meta := session.Metadata
	bookingID := meta["booking_id"]
	if bookingID == "" {
		app.logger.Warn("checkout session has no booking metadata, skipping", "sessionId", session.ID)
		return nil
	}

	err := app.bookingRepo.UpdateStatus(ctx, session.ID, domain.BookingStatusConfirmed)
	if err != nil {
		return fmt.Errorf("confirming booking %s: %w", bookingID, err)
	}

	guests, _ := strconv.Atoi(meta["guests"])
	amount := decimal.NewFromInt(session.AmountTotal).Div(decimal.NewFromInt(100))

	app.background(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		err := app.guestlist.Append(ctx, domain.GuestlistEntry{
			BookingID:      bookingID,
			CustomerName:   meta["customer_name"],
			CustomerEmail:  customerEmail(session),
			CustomerPhone:  meta["customer_phone"],
			ExperienceName: meta["experience_name"],
			Guests:         guests,
			PreferredDate:  meta["preferred_date"],
			AlternateDate:  meta["alternate_date"],
			PaymentStyle:   meta["payment_style"],
			Amount:         amount.StringFixed(2),
		})
		if err != nil {
			app.logger.Error("guestlist append failed", "bookingId", bookingID, "error", err)
		}
	})

	if domain.PaymentStyle(meta["payment_style"]) == domain.PaymentStyleInstallment {
		err = app.scheduleInstallmentPlan(ctx, session)
		if err != nil {
			return err
		}
	}

	app.sendBookingConfirmation(session, amount)

	return nil
}

// scheduleInstallmentPlan reads the plan parameters back out of the session
// metadata and creates the future installment records. The expanded session is
// fetched so the stored payment method and customer can be charged off-session
// later.
func (app *Application) scheduleInstallmentPlan(ctx context.Context, session *stripe.CheckoutSession) error {
	meta := session.Metadata

	total, err := decimal.NewFromString(meta["installment_total"])
	if err != nil {
		return fmt.Errorf("parsing installment total %q: %w", meta["installment_total"], err)
	}

	count, _ := strconv.Atoi(meta["installment_count"])
	interval, _ := strconv.Atoi(meta["installment_interval"])

	plan := domain.PlanDescriptor{
		BookingID:         meta["booking_id"],
		CheckoutSessionID: session.ID,
		CustomerEmail:     customerEmail(session),
		CustomerName:      meta["customer_name"],
		ExperienceName:    meta["experience_name"],
		Total:             total,
		Count:             count,
		IntervalDays:      interval,
	}

	full, err := app.paymentProvider.GetCheckoutSession(ctx, session.ID)
	if err != nil {
		app.logger.Error("failed to fetch expanded checkout session", "sessionId", session.ID, "error", err)
	} else {
		if full.Customer != nil {
			plan.StripeCustomerID = full.Customer.ID
		}
		if full.PaymentIntent != nil && full.PaymentIntent.PaymentMethod != nil {
			plan.PaymentMethodID = full.PaymentIntent.PaymentMethod.ID
		}
	}

	_, err = app.installments.CreatePlan(ctx, plan)
	if err != nil {
		return fmt.Errorf("scheduling installment plan for booking %s: %w", plan.BookingID, err)
	}

	return nil
}

// handlePaymentSucceeded settles the installment matching the charge. Payment
// intents that do not belong to an installment (such as the initial checkout
// charge) are ignored.
func (app *Application) handlePaymentSucceeded(ctx context.Context, intent *stripe.PaymentIntent) error {
	record, updated, err := app.installments.ConfirmCharge(ctx, intent.ID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			app.logger.Info("payment intent does not match an installment, ignoring", "paymentIntentId", intent.ID)
			return nil
		}
		return err
	}

	if !updated {
		app.logger.Info("installment already settled", "installmentId", record.ID)
		return nil
	}

	app.sendInstallmentReceipt(record)

	return app.checkPlanCompletion(ctx, record)
}

func (app *Application) handlePaymentFailed(ctx context.Context, intent *stripe.PaymentIntent) error {
	reason := "payment failed"
	if intent.LastPaymentError != nil && intent.LastPaymentError.Msg != "" {
		reason = intent.LastPaymentError.Msg
	}

	record, err := app.installmentRepo.GetByChargeId(ctx, intent.ID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			app.logger.Info("failed payment intent does not match an installment, ignoring", "paymentIntentId", intent.ID)
			return nil
		}
		return err
	}

	// The processor's retry policy owns the PENDING -> FAILED transition
	// while attempts remain; the async event only adds the customer-facing
	// notification. Once the retry budget is gone the event is authoritative.
	willRetry := record.Status == domain.InstallmentStatusPending
	if !willRetry {
		_, _, err = app.installments.FailCharge(ctx, intent.ID, reason)
		if err != nil && !errors.Is(err, domain.ErrRecordNotFound) {
			return err
		}
	}

	app.sendInstallmentFailed(record, reason, willRetry)

	return nil
}

// handleInvoicePaid covers the gateway's native recurring-billing mode, the
// alternative installment mechanism. The current installment number is derived
// from elapsed billing periods; the final period triggers the completion
// notification.
func (app *Application) handleInvoicePaid(ctx context.Context, invoice *stripe.Invoice) error {
	meta := invoiceMetadata(invoice)

	bookingID := meta["booking_id"]
	if bookingID == "" {
		app.logger.Info("invoice has no booking metadata, ignoring", "invoiceId", invoice.ID)
		return nil
	}

	count, _ := strconv.Atoi(meta["installment_count"])
	interval, _ := strconv.Atoi(meta["installment_interval"])
	number := currentInstallmentNumber(invoice, meta, interval, count)

	app.logger.Info("recurring installment paid",
		"bookingId", bookingID,
		"invoiceId", invoice.ID,
		"number", number,
		"count", count,
	)

	amount := decimal.NewFromInt(invoice.AmountPaid).Div(decimal.NewFromInt(100))

	app.sendRecurringReceipt(invoice, meta, number, count, amount)

	if count > 0 && number >= count {
		app.sendRecurringPlanCompleted(invoice, meta, count)
	}

	return nil
}

func (app *Application) handleInvoiceFailed(ctx context.Context, invoice *stripe.Invoice) error {
	meta := invoiceMetadata(invoice)

	bookingID := meta["booking_id"]
	if bookingID == "" {
		app.logger.Info("failed invoice has no booking metadata, ignoring", "invoiceId", invoice.ID)
		return nil
	}

	count, _ := strconv.Atoi(meta["installment_count"])
	interval, _ := strconv.Atoi(meta["installment_interval"])
	number := currentInstallmentNumber(invoice, meta, interval, count)

	amount := decimal.NewFromInt(invoice.AmountDue).Div(decimal.NewFromInt(100))

	app.sendRecurringFailed(invoice, meta, number, count, amount)

	return nil
}

// handleSubscriptionDeleted cancels the remaining plan when a recurring
// installment subscription ends.
func (app *Application) handleSubscriptionDeleted(ctx context.Context, subscription *stripe.Subscription) error {
	bookingID := subscription.Metadata["booking_id"]
	if bookingID == "" {
		return nil
	}

	cancelled, err := app.installments.CancelPlan(ctx, bookingID)
	if err != nil {
		return err
	}

	app.logger.Info("subscription ended, remaining installments cancelled",
		"bookingId", bookingID,
		"subscriptionId", subscription.ID,
		"cancelled", cancelled,
	)

	return nil
}

// checkPlanCompletion sends the plan-completed notification when every
// installment is paid. The durable marker makes the send idempotent even when
// the check fires more than once.
func (app *Application) checkPlanCompletion(ctx context.Context, record *domain.InstallmentPayment) error {
	status, err := app.installments.PlanStatus(ctx, record.BookingID)
	if err != nil {
		return err
	}

	if !status.IsComplete {
		return nil
	}

	app.sendPlanCompleted(record, status)

	return nil
}

func customerEmail(session *stripe.CheckoutSession) string {
	if session.CustomerDetails != nil && session.CustomerDetails.Email != "" {
		return session.CustomerDetails.Email
	}
	return session.CustomerEmail
}

func invoiceMetadata(invoice *stripe.Invoice) map[string]string {
	if invoice.Parent != nil && invoice.Parent.SubscriptionDetails != nil && len(invoice.Parent.SubscriptionDetails.Metadata) > 0 {
		return invoice.Parent.SubscriptionDetails.Metadata
	}
	return invoice.Metadata
}

// currentInstallmentNumber derives the 1-based installment number of an
// invoice from the elapsed billing periods since the plan started.
func currentInstallmentNumber(invoice *stripe.Invoice, meta map[string]string, intervalDays, count int) int {
	if intervalDays <= 0 {
		return 1
	}

	startUnix, _ := strconv.ParseInt(meta["plan_started_at"], 10, 64)
	if startUnix == 0 {
		startUnix = invoice.Created
	}

	elapsed := time.Unix(invoice.PeriodEnd, 0).Sub(time.Unix(startUnix, 0))
	number := int(elapsed.Hours()/(24*float64(intervalDays))) + 1

	if number < 1 {
		number = 1
	}
	if count > 0 && number > count {
		number = count
	}

	return number
}
