package app

import (
	"net/http"

	"github.com/Seyramize/BE-sub000/api"
)

func (app *Application) GetHealth(w http.ResponseWriter, r *http.Request) {
	resp := api.HealthcheckResponse{
		Status: "UP",
		SystemInfo: api.SystemInfo{
			Version:     version,
			Environment: app.config.Env,
		},
	}

	app.writeJSON(w, http.StatusOK, resp, nil)
}
