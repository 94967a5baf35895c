package app

import (
	"errors"
	"net/http"

	"github.com/Seyramize/BE-sub000/api"
	"github.com/Seyramize/BE-sub000/internal/domain"
	"github.com/go-chi/chi/v5"
)

func (app *Application) GetExperiencesHandler(w http.ResponseWriter, r *http.Request) {
	experiences, err := app.experienceRepo.GetAll(r.Context())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.ExperienceListResponse{
		Experiences: make([]api.ExperienceSummary, 0, len(experiences)),
	}

	for _, experience := range experiences {
		resp.Experiences = append(resp.Experiences, toExperienceSummary(experience))
	}

	app.writeJSON(w, http.StatusOK, resp, nil)
}

func (app *Application) GetExperienceHandler(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	experience, err := app.experienceRepo.GetBySlug(r.Context(), slug)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			app.notFoundResponse(w, r)
			return
		}
		app.serverErrorResponse(w, r, err)
		return
	}

	app.writeJSON(w, http.StatusOK, api.ExperienceResponse{
		ExperienceSummary: toExperienceSummary(experience),
		Description:       experience.Description,
		Capacity:          experience.Capacity,
	}, nil)
}

func toExperienceSummary(experience *domain.Experience) api.ExperienceSummary {
	price, _ := experience.Price.Float64()

	return api.ExperienceSummary{
		Id:       experience.ID,
		Slug:     experience.Slug,
		Title:    experience.Title,
		Location: experience.Location,
		Price:    price,
		IsGroup:  experience.IsGroup,
	}
}
