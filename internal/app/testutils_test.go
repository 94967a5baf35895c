package app

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Seyramize/BE-sub000/api"
	"github.com/Seyramize/BE-sub000/internal/installment"
	"github.com/Seyramize/BE-sub000/internal/mailer"
	"github.com/Seyramize/BE-sub000/internal/mocks"
	"github.com/Seyramize/BE-sub000/internal/repository"
	"github.com/Seyramize/BE-sub000/internal/validator"
)

func newTestApplication(opts ...func(*Application)) *Application {
	app := &Application{
		config: Config{
			BaseURL:    "http://localhost:3000",
			TeamEmail:  "team@example.com",
			CronSecret: "test-cron-secret",
			Stripe: StripeConfig{
				WebhookSecret: "whsec_test",
			},
		},
		logger:           slog.New(slog.NewTextHandler(io.Discard, nil)),
		validator:        validator.NewValidator(),
		mailer:           mailer.NewMockMailer(),
		guestlist:        &mocks.MockGuestlist{},
		experienceRepo:   &mocks.MockExperienceRepo{},
		bookingRepo:      &mocks.MockBookingRepo{},
		installmentRepo:  repository.NewInMemoryInstallmentRepository(),
		notificationRepo: mocks.NewMockNotificationRepo(),
		paymentProvider:  &mocks.MockPaymentProvider{},
	}

	for _, opt := range opts {
		opt(app)
	}

	app.installments = installment.NewService(app.logger, app.installmentRepo, app.paymentProvider, app)

	return app
}

func executeRequest(t *testing.T, method, url string, body any) (*httptest.ResponseRecorder, *http.Request) {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(jsonData)
	}

	r := httptest.NewRequest(method, url, reader)
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	return w, r
}

func checkErrorResponse(t *testing.T, w *httptest.ResponseRecorder, wantStatus int, wantErrMessage string) {
	t.Helper()

	if wantStatus >= 200 && wantStatus < 300 {
		return
	}

	switch wantStatus {
	case http.StatusUnprocessableEntity:
		var validationResp api.ValidationErrorResponse
		if err := json.NewDecoder(w.Body).Decode(&validationResp); err != nil {
			t.Fatalf("Failed to decode validation error response: %v", err)
		}

		errorSet := make(map[string]bool)
		for _, vErr := range validationResp.ValidationErrors {
			errorSet[vErr.Issue] = true
		}

		if !errorSet[wantErrMessage] {
			t.Errorf("Expected validation error message '%s' not found in response", wantErrMessage)
		}

	default:
		var errorResp api.ErrorResponse
		if err := json.NewDecoder(w.Body).Decode(&errorResp); err != nil {
			t.Fatalf("Failed to decode error response: %v", err)
		}

		if wantErrMessage != "" && errorResp.Message != wantErrMessage {
			t.Errorf("Error message = %v, want %v", errorResp.Message, wantErrMessage)
		}
	}
}

func ptr[T any](v T) *T {
	return &v
}
