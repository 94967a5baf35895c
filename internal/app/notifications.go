package app

import (
	"context"
	"errors"
	"time"

	"github.com/Seyramize/BE-sub000/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v82"
)

// Durable notification marker types. A marker for (session, type) is claimed
// exactly once, so emails survive webhook redelivery and concurrent triggers
// without duplication.
const (
	notificationBookingConfirmation = "booking_confirmation"
	notificationInstallmentReceipt  = "installment_receipt"
	notificationInstallmentFailed   = "installment_failed"
	notificationPlanCompleted       = "plan_completed"
	notificationPlanEscalated       = "plan_escalated"
)

// Seen-cache entries only need to outlive webhook redelivery windows.
const notificationCacheTTL = 72 * time.Hour

// claimNotification reports whether this process is the first to claim the
// (key, notificationType) marker. Redis acts as a fast seen-cache in front of
// the durable marker; the Postgres row stays authoritative. Errors fail open:
// a broken marker store should degrade to possibly-duplicated email, not
// silence.
func (app *Application) claimNotification(ctx context.Context, key, notificationType string) bool {
	cacheKey := "notification:" + notificationType + ":" + key

	if app.redis != nil {
		seen, err := app.redis.Exists(ctx, cacheKey).Result()
		if err == nil && seen > 0 {
			app.logger.Info("notification already sent, skipping",
				"key", key,
				"type", notificationType,
			)
			return false
		}
	}

	err := app.notificationRepo.Claim(ctx, key, notificationType)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateNotification) {
			app.logger.Info("notification already sent, skipping",
				"key", key,
				"type", notificationType,
			)
			if app.redis != nil {
				app.redis.Set(ctx, cacheKey, 1, notificationCacheTTL)
			}
			return false
		}
		app.logger.Error("claiming notification marker failed", "key", key, "type", notificationType, "error", err)
		return true
	}

	if app.redis != nil {
		app.redis.Set(ctx, cacheKey, 1, notificationCacheTTL)
	}
	return true
}

func (app *Application) sendEmail(recipient, templateFile string, data map[string]any) {
	app.background(func() {
		err := app.mailer.Send(recipient, templateFile, data)
		if err != nil {
			app.logger.Error("sending email failed", "recipient", recipient, "template", templateFile, "error", err)
		}
	})
}

// sendBookingConfirmation emails the customer and alerts the team after a
// completed checkout. Both the webhook and the booking-details endpoint call
// this; the marker guarantees a single send per session.
func (app *Application) sendBookingConfirmation(session *stripe.CheckoutSession, amount decimal.Decimal) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if !app.claimNotification(ctx, session.ID, notificationBookingConfirmation) {
		return
	}

	meta := session.Metadata

	data := map[string]any{
		"bookingId":      meta["booking_id"],
		"customerName":   meta["customer_name"],
		"customerEmail":  customerEmail(session),
		"customerPhone":  meta["customer_phone"],
		"experienceName": meta["experience_name"],
		"guests":         meta["guests"],
		"preferredDate":  meta["preferred_date"],
		"alternateDate":  meta["alternate_date"],
		"paymentStyle":   meta["payment_style"],
		"amount":         amount.StringFixed(2),
		"currency":       "USD",
	}

	if domain.PaymentStyle(meta["payment_style"]) == domain.PaymentStyleInstallment {
		data["installmentCount"] = meta["installment_count"]
		data["intervalDays"] = meta["installment_interval"]
		data["installmentAmount"] = amount.StringFixed(2)
	}

	if recipient := customerEmail(session); recipient != "" {
		app.sendEmail(recipient, "booking_confirmation.tmpl", data)
	}
	app.sendEmail(app.config.TeamEmail, "team_booking_alert.tmpl", data)
}

func (app *Application) sendInstallmentReceipt(record *domain.InstallmentPayment) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if !app.claimNotification(ctx, record.ID, notificationInstallmentReceipt) {
		return
	}

	app.sendEmail(record.CustomerEmail, "installment_receipt.tmpl", map[string]any{
		"bookingId":      record.BookingID,
		"customerName":   record.CustomerName,
		"experienceName": record.ExperienceName,
		"number":         record.Number,
		"count":          record.InstallmentCount,
		"amount":         record.Amount.StringFixed(2),
		"currency":       "USD",
		"remaining":      record.InstallmentCount - record.Number,
	})
}

func (app *Application) sendInstallmentFailed(record *domain.InstallmentPayment, reason string, willRetry bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if !app.claimNotification(ctx, record.ID, notificationInstallmentFailed) {
		return
	}

	app.sendEmail(record.CustomerEmail, "installment_failed.tmpl", map[string]any{
		"bookingId":      record.BookingID,
		"customerName":   record.CustomerName,
		"experienceName": record.ExperienceName,
		"number":         record.Number,
		"count":          record.InstallmentCount,
		"amount":         record.Amount.StringFixed(2),
		"currency":       "USD",
		"reason":         reason,
		"willRetry":      willRetry,
	})
}

func (app *Application) sendPlanCompleted(record *domain.InstallmentPayment, status *domain.PlanStatus) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if !app.claimNotification(ctx, record.BookingID, notificationPlanCompleted) {
		return
	}

	data := map[string]any{
		"bookingId":      record.BookingID,
		"customerName":   record.CustomerName,
		"experienceName": record.ExperienceName,
		"count":          status.TotalInstallments,
		"total":          status.TotalAmount.StringFixed(2),
		"currency":       "USD",
	}

	app.sendEmail(record.CustomerEmail, "plan_completed.tmpl", data)
	app.sendEmail(app.config.TeamEmail, "plan_completed.tmpl", data)
}

// InstallmentEscalated alerts the team when an installment has exhausted its
// retry budget and needs manual follow-up.
func (app *Application) InstallmentEscalated(record *domain.InstallmentPayment) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if !app.claimNotification(ctx, record.ID, notificationPlanEscalated) {
		return
	}

	reason := ""
	if record.FailureReason != nil {
		reason = *record.FailureReason
	}

	app.sendEmail(app.config.TeamEmail, "plan_escalated.tmpl", map[string]any{
		"bookingId":      record.BookingID,
		"customerName":   record.CustomerName,
		"customerEmail":  record.CustomerEmail,
		"experienceName": record.ExperienceName,
		"number":         record.Number,
		"count":          record.InstallmentCount,
		"amount":         record.Amount.StringFixed(2),
		"currency":       "USD",
		"attempts":       record.Attempts,
		"failureReason":  reason,
	})
}

// sendRecurringReceipt mirrors the installment receipt for plans billed by the
// gateway's native subscription machinery, where no local installment records
// exist.
func (app *Application) sendRecurringReceipt(invoice *stripe.Invoice, meta map[string]string, number, count int, amount decimal.Decimal) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if !app.claimNotification(ctx, invoice.ID, notificationInstallmentReceipt) {
		return
	}

	recipient := invoice.CustomerEmail
	if recipient == "" {
		return
	}

	app.sendEmail(recipient, "installment_receipt.tmpl", map[string]any{
		"bookingId":      meta["booking_id"],
		"customerName":   invoice.CustomerName,
		"experienceName": meta["experience_name"],
		"number":         number,
		"count":          count,
		"amount":         amount.StringFixed(2),
		"currency":       "USD",
		"remaining":      count - number,
	})
}

func (app *Application) sendRecurringFailed(invoice *stripe.Invoice, meta map[string]string, number, count int, amount decimal.Decimal) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if !app.claimNotification(ctx, invoice.ID, notificationInstallmentFailed) {
		return
	}

	data := map[string]any{
		"bookingId":      meta["booking_id"],
		"customerName":   invoice.CustomerName,
		"experienceName": meta["experience_name"],
		"number":         number,
		"count":          count,
		"amount":         amount.StringFixed(2),
		"currency":       "USD",
	}

	if invoice.CustomerEmail != "" {
		app.sendEmail(invoice.CustomerEmail, "installment_failed.tmpl", data)
	}
	app.sendEmail(app.config.TeamEmail, "installment_failed.tmpl", data)
}

func (app *Application) sendRecurringPlanCompleted(invoice *stripe.Invoice, meta map[string]string, count int) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	bookingID := meta["booking_id"]
	if !app.claimNotification(ctx, bookingID, notificationPlanCompleted) {
		return
	}

	total := ""
	if t, err := decimal.NewFromString(meta["installment_total"]); err == nil {
		total = t.StringFixed(2)
	}

	data := map[string]any{
		"bookingId":      bookingID,
		"customerName":   invoice.CustomerName,
		"experienceName": meta["experience_name"],
		"count":          count,
		"total":          total,
		"currency":       "USD",
	}

	if invoice.CustomerEmail != "" {
		app.sendEmail(invoice.CustomerEmail, "plan_completed.tmpl", data)
	}
	app.sendEmail(app.config.TeamEmail, "plan_completed.tmpl", data)
}
