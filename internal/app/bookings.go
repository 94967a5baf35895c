package app

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Seyramize/BE-sub000/api"
	"github.com/Seyramize/BE-sub000/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v82"
)

// GetBookingDetailsHandler resolves a completed checkout session into the
// details shown on the confirmation page. Because customers can land here
// before the webhook has been delivered, a paid session also triggers the
// confirmation emails; the durable marker keeps the two paths from sending
// twice.
func (app *Application) GetBookingDetailsHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		app.badRequestResponse(w, r, errors.New("session_id query parameter is required"))
		return
	}

	session, err := app.paymentProvider.GetCheckoutSession(r.Context(), sessionID)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.HTTPStatusCode == http.StatusNotFound {
			app.notFoundResponse(w, r)
			return
		}
		app.serverErrorResponse(w, r, fmt.Errorf("fetching checkout session %s: %w", sessionID, err))
		return
	}

	meta := session.Metadata
	guests, _ := strconv.Atoi(meta["guests"])
	amount := decimal.NewFromInt(session.AmountTotal).Div(decimal.NewFromInt(100))
	amountTotal, _ := amount.Float64()

	resp := api.BookingDetailsResponse{
		SessionId:      session.ID,
		PaymentStatus:  string(session.PaymentStatus),
		CustomerName:   meta["customer_name"],
		CustomerEmail:  customerEmail(session),
		ExperienceName: meta["experience_name"],
		Guests:         guests,
		PreferredDate:  meta["preferred_date"],
		AlternateDate:  meta["alternate_date"],
		AmountTotal:    amountTotal,
		Currency:       "USD",
		PaymentStyle:   meta["payment_style"],
		CreatedAt:      time.Unix(session.Created, 0).UTC(),
	}

	experience := app.resolveExperience(r, meta)
	if experience != nil {
		resp.ExperienceId = experience.ID
		resp.ExperienceSlug = experience.Slug
		resp.Location = experience.Location
	}

	if session.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid {
		app.sendBookingConfirmation(session, amount)
	}

	app.writeJSON(w, http.StatusOK, resp, nil)
}

// resolveExperience looks the experience up by the id stored in the session
// metadata, falling back to a title match for sessions created before ids were
// recorded. A miss is not an error; the response just omits the experience
// fields.
func (app *Application) resolveExperience(r *http.Request, meta map[string]string) *domain.Experience {
	if id := meta["experience_id"]; id != "" {
		experience, err := app.experienceRepo.GetById(r.Context(), id)
		if err == nil {
			return experience
		}
		if !errors.Is(err, domain.ErrRecordNotFound) {
			app.logError(r, err)
			return nil
		}
	}

	if title := meta["experience_name"]; title != "" {
		experience, err := app.experienceRepo.GetByTitle(r.Context(), title)
		if err == nil {
			return experience
		}
		if !errors.Is(err, domain.ErrRecordNotFound) {
			app.logError(r, err)
		}
	}

	return nil
}
