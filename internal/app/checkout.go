package app

import (
	"errors"
	"net/http"

	"github.com/Seyramize/BE-sub000/api"
	"github.com/Seyramize/BE-sub000/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	DefaultInstallmentCount    = 3
	DefaultInstallmentInterval = 30
)

func (app *Application) CreateCheckoutSessionHandler(w http.ResponseWriter, r *http.Request) {
	var req api.CheckoutRequest

	err := app.readJSON(w, r, &req)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(req)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	booking, err := app.buildBooking(r, req, domain.PaymentStyleFull)
	if err != nil {
		if errors.Is(err, domain.ErrExperienceNotFound) {
			app.notFoundResponseWithErr(w, r, err)
			return
		}
		app.serverErrorResponse(w, r, err)
		return
	}

	checkoutSession, err := app.paymentProvider.CreateCheckoutSession(r.Context(), booking)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	booking.CheckoutSessionID = &checkoutSession.ID

	err = app.bookingRepo.Create(r.Context(), booking)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.CheckoutResponse{
		Url: checkoutSession.URL,
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) CreateInstallmentCheckoutSessionHandler(w http.ResponseWriter, r *http.Request) {
	var req api.InstallmentCheckoutRequest

	err := app.readJSON(w, r, &req)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	// Plan defaults are applied before validation so the bounds checks see
	// the effective values.
	if req.InstallmentCount == 0 {
		req.InstallmentCount = DefaultInstallmentCount
	}
	if req.InstallmentInterval == 0 {
		req.InstallmentInterval = DefaultInstallmentInterval
	}
	if req.InstallmentTotal == 0 {
		req.InstallmentTotal = req.Amount
	}

	err = app.validator.Struct(req)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	style := domain.PaymentStyle(req.PaymentStyle)

	booking, err := app.buildBooking(r, req.CheckoutRequest, style)
	if err != nil {
		if errors.Is(err, domain.ErrExperienceNotFound) {
			app.notFoundResponseWithErr(w, r, err)
			return
		}
		app.serverErrorResponse(w, r, err)
		return
	}

	if style != domain.PaymentStyleInstallment {
		checkoutSession, err := app.paymentProvider.CreateCheckoutSession(r.Context(), booking)
		if err != nil {
			app.serverErrorResponse(w, r, err)
			return
		}

		booking.CheckoutSessionID = &checkoutSession.ID

		err = app.bookingRepo.Create(r.Context(), booking)
		if err != nil {
			app.serverErrorResponse(w, r, err)
			return
		}

		app.writeJSON(w, http.StatusOK, api.InstallmentCheckoutResponse{
			Url:       checkoutSession.URL,
			SessionId: checkoutSession.ID,
			Type:      "full",
		}, nil)
		return
	}

	plan := domain.PlanDescriptor{
		BookingID:      booking.ID,
		CustomerEmail:  booking.CustomerEmail,
		CustomerName:   booking.CustomerName,
		ExperienceName: booking.ExperienceName,
		Total:          decimal.NewFromFloat(req.InstallmentTotal),
		Count:          req.InstallmentCount,
		IntervalDays:   req.InstallmentInterval,
	}

	checkoutSession, err := app.paymentProvider.CreateInstallmentCheckoutSession(r.Context(), booking, plan)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	booking.CheckoutSessionID = &checkoutSession.ID
	booking.Amount = plan.Total.Div(decimal.NewFromInt(int64(plan.Count))).Round(2)

	err = app.bookingRepo.Create(r.Context(), booking)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.InstallmentCheckoutResponse{
		Url:       checkoutSession.URL,
		SessionId: checkoutSession.ID,
		Type:      "installment",
	}

	if checkoutSession.Customer != nil {
		resp.CustomerId = checkoutSession.Customer.ID
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// buildBooking resolves the experience and assembles a pending booking from
// the request. The experience lookup falls back to the submitted name so
// bookings from stale storefront builds still resolve.
func (app *Application) buildBooking(r *http.Request, req api.CheckoutRequest, style domain.PaymentStyle) (*domain.Booking, error) {
	experience, err := app.experienceRepo.GetById(r.Context(), req.ExperienceId)
	if err != nil {
		if !errors.Is(err, domain.ErrRecordNotFound) {
			return nil, err
		}

		experience, err = app.experienceRepo.GetByTitle(r.Context(), req.ExperienceName)
		if err != nil {
			if errors.Is(err, domain.ErrRecordNotFound) {
				return nil, domain.ErrExperienceNotFound
			}
			return nil, err
		}
	}

	return &domain.Booking{
		ID:                  uuid.New().String(),
		ExperienceID:        experience.ID,
		ExperienceName:      experience.Title,
		ExperienceSlug:      experience.Slug,
		CustomerName:        req.FullName,
		CustomerEmail:       req.Email,
		CustomerPhone:       req.Phone,
		Guests:              req.Guests,
		PreferredDate:       req.PreferredDate,
		AlternateDate:       req.AlternateDate,
		PaymentStyle:        style,
		Amount:              decimal.NewFromFloat(req.Amount),
		Currency:            "USD",
		Status:              domain.BookingStatusPending,
		MobileMoneyProvider: req.MobileMoneyProvider,
	}, nil
}
