package app

import (
	"errors"
	"net/http"

	"github.com/Seyramize/BE-sub000/api"
	"github.com/Seyramize/BE-sub000/internal/domain"
	"github.com/go-chi/chi/v5"
)

// GetSlotsHandler reports remaining capacity for a group experience. Private
// experiences have no shared capacity, so they always accept bookings.
func (app *Application) GetSlotsHandler(w http.ResponseWriter, r *http.Request) {
	experienceID := chi.URLParam(r, "experienceId")

	experience, err := app.experienceRepo.GetById(r.Context(), experienceID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			app.notFoundResponse(w, r)
			return
		}
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.SlotsResponse{
		ExperienceId:   experience.ID,
		Capacity:       experience.Capacity,
		AcceptBookings: experience.Active,
	}

	if experience.IsGroup {
		booked, err := app.bookingRepo.CountConfirmedGuests(r.Context(), experience.ID)
		if err != nil {
			app.serverErrorResponse(w, r, err)
			return
		}

		resp.Booked = booked
		resp.Available = experience.Capacity - booked
		if resp.Available < 0 {
			resp.Available = 0
		}
		resp.AcceptBookings = experience.Active && resp.Available > 0
	} else {
		resp.Available = experience.Capacity
	}

	app.writeJSON(w, http.StatusOK, resp, nil)
}
