package app

import (
	"errors"
	"net/http"

	"github.com/Seyramize/BE-sub000/api"
	"github.com/Seyramize/BE-sub000/internal/domain"
	"github.com/go-chi/chi/v5"
)

// ProcessInstallmentsHandler runs the due-installment sweep. It is invoked by
// the platform scheduler and guarded by the cron bearer token. Per-installment
// failures are reported in the result list without failing the sweep.
func (app *Application) ProcessInstallmentsHandler(w http.ResponseWriter, r *http.Request) {
	results, err := app.installments.ProcessAllDue(r.Context())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.SweepResponse{
		Success:   true,
		Processed: len(results),
		Results:   make([]api.SweepResultItem, 0, len(results)),
	}

	for _, result := range results {
		item := api.SweepResultItem{
			InstallmentId: result.InstallmentID,
			BookingId:     result.BookingID,
			Number:        result.Number,
			Success:       result.Err == nil,
		}
		if result.Err != nil {
			item.Error = result.Err.Error()
		}
		resp.Results = append(resp.Results, item)
	}

	app.writeJSON(w, http.StatusOK, resp, nil)
}

// GetPlanStatusHandler reports the aggregate state of a booking's installment
// plan.
func (app *Application) GetPlanStatusHandler(w http.ResponseWriter, r *http.Request) {
	bookingID := chi.URLParam(r, "bookingId")

	status, err := app.installments.PlanStatus(r.Context(), bookingID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			app.notFoundResponse(w, r)
			return
		}
		app.serverErrorResponse(w, r, err)
		return
	}

	totalAmount, _ := status.TotalAmount.Float64()
	paidAmount, _ := status.PaidAmount.Float64()

	app.writeJSON(w, http.StatusOK, api.PlanStatusResponse{
		BookingId:           status.BookingID,
		TotalInstallments:   status.TotalInstallments,
		PaidInstallments:    status.PaidInstallments,
		PendingInstallments: status.PendingInstallments,
		FailedInstallments:  status.FailedInstallments,
		TotalAmount:         totalAmount,
		PaidAmount:          paidAmount,
		IsComplete:          status.IsComplete,
	}, nil)
}
