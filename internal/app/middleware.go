package app

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"
)

func (app *Application) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				w.Header().Set("Connection", "close")

				app.serverErrorResponse(w, r, fmt.Errorf("%s", err))
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// requireCronSecret guards the sweep endpoint with a shared-secret bearer
// token. The comparison is constant-time.
func (app *Application) requireCronSecret(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if app.config.CronSecret == "" {
			app.logger.Error("cron secret is not configured, rejecting sweep request")
			app.unauthorizedAccessResponse(w, r)
			return
		}

		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok {
			app.unauthorizedAccessResponse(w, r)
			return
		}

		if subtle.ConstantTimeCompare([]byte(token), []byte(app.config.CronSecret)) != 1 {
			app.unauthorizedAccessResponse(w, r)
			return
		}

		next.ServeHTTP(w, r)
	})
}
