package app

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/Seyramize/BE-sub000/api"
	"github.com/Seyramize/BE-sub000/internal/domain"
	"github.com/Seyramize/BE-sub000/internal/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stripe/stripe-go/v82"
)

func testExperience() *domain.Experience {
	return &domain.Experience{
		ID:       "exp_1",
		Slug:     "cape-coast-heritage-tour",
		Title:    "Cape Coast Heritage Tour",
		Location: "Cape Coast",
		Price:    decimal.NewFromInt(300),
		Capacity: 12,
		IsGroup:  true,
		Active:   true,
	}
}

func validCheckoutRequest() api.CheckoutRequest {
	return api.CheckoutRequest{
		Amount:         300,
		Email:          "ama@example.com",
		FullName:       "Ama Mensah",
		ExperienceId:   "exp_1",
		ExperienceName: "Cape Coast Heritage Tour",
		ExperienceSlug: "cape-coast-heritage-tour",
		Guests:         2,
		PreferredDate:  "2030-03-15",
	}
}

func TestCreateCheckoutSession(t *testing.T) {
	tests := []struct {
		name           string
		mutateReq      func(*api.CheckoutRequest)
		setupMocks     func(*mocks.MockExperienceRepo, *mocks.MockBookingRepo, *mocks.MockPaymentProvider)
		wantStatus     int
		wantErrMessage string
	}{
		{
			name: "successful checkout",
			setupMocks: func(experiences *mocks.MockExperienceRepo, bookings *mocks.MockBookingRepo, provider *mocks.MockPaymentProvider) {
				experiences.On("GetById", mock.Anything, "exp_1").Return(testExperience(), nil)
				provider.On("CreateCheckoutSession", mock.Anything, mock.Anything).
					Return(&stripe.CheckoutSession{ID: "cs_test_1", URL: "https://checkout.stripe.com/pay/cs_test_1"}, nil)
				bookings.On("Create", mock.Anything, mock.Anything).Return(nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "experience resolved by title when id is stale",
			setupMocks: func(experiences *mocks.MockExperienceRepo, bookings *mocks.MockBookingRepo, provider *mocks.MockPaymentProvider) {
				experiences.On("GetById", mock.Anything, "exp_1").Return(nil, domain.ErrRecordNotFound)
				experiences.On("GetByTitle", mock.Anything, "Cape Coast Heritage Tour").Return(testExperience(), nil)
				provider.On("CreateCheckoutSession", mock.Anything, mock.Anything).
					Return(&stripe.CheckoutSession{ID: "cs_test_1", URL: "https://checkout.stripe.com/pay/cs_test_1"}, nil)
				bookings.On("Create", mock.Anything, mock.Anything).Return(nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:      "missing email",
			mutateReq: func(req *api.CheckoutRequest) { req.Email = "" },
			setupMocks: func(*mocks.MockExperienceRepo, *mocks.MockBookingRepo, *mocks.MockPaymentProvider) {
			},
			wantStatus:     http.StatusUnprocessableEntity,
			wantErrMessage: "is required",
		},
		{
			name:      "preferred date in the past",
			mutateReq: func(req *api.CheckoutRequest) { req.PreferredDate = "2020-01-01" },
			setupMocks: func(*mocks.MockExperienceRepo, *mocks.MockBookingRepo, *mocks.MockPaymentProvider) {
			},
			wantStatus:     http.StatusUnprocessableEntity,
			wantErrMessage: "must be a valid date (YYYY-MM-DD) that is not in the past",
		},
		{
			name:      "invalid mobile money provider",
			mutateReq: func(req *api.CheckoutRequest) { req.MobileMoneyProvider = "orange" },
			setupMocks: func(*mocks.MockExperienceRepo, *mocks.MockBookingRepo, *mocks.MockPaymentProvider) {
			},
			wantStatus:     http.StatusUnprocessableEntity,
			wantErrMessage: "must be one of: mtn vodafone airteltigo",
		},
		{
			name: "unknown experience",
			setupMocks: func(experiences *mocks.MockExperienceRepo, bookings *mocks.MockBookingRepo, provider *mocks.MockPaymentProvider) {
				experiences.On("GetById", mock.Anything, "exp_1").Return(nil, domain.ErrRecordNotFound)
				experiences.On("GetByTitle", mock.Anything, "Cape Coast Heritage Tour").Return(nil, domain.ErrRecordNotFound)
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name: "payment gateway error",
			setupMocks: func(experiences *mocks.MockExperienceRepo, bookings *mocks.MockBookingRepo, provider *mocks.MockPaymentProvider) {
				experiences.On("GetById", mock.Anything, "exp_1").Return(testExperience(), nil)
				provider.On("CreateCheckoutSession", mock.Anything, mock.Anything).
					Return(nil, errors.New("gateway unavailable"))
			},
			wantStatus:     http.StatusInternalServerError,
			wantErrMessage: ErrInternalServer,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			experiences := &mocks.MockExperienceRepo{}
			bookings := &mocks.MockBookingRepo{}
			provider := &mocks.MockPaymentProvider{}
			tt.setupMocks(experiences, bookings, provider)

			app := newTestApplication(func(a *Application) {
				a.experienceRepo = experiences
				a.bookingRepo = bookings
				a.paymentProvider = provider
			})

			req := validCheckoutRequest()
			if tt.mutateReq != nil {
				tt.mutateReq(&req)
			}

			w, r := executeRequest(t, http.MethodPost, "/api/create-checkout-session", req)
			app.CreateCheckoutSessionHandler(w, r)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}

			if tt.wantStatus == http.StatusOK {
				var resp api.CheckoutResponse
				if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
					t.Fatalf("Failed to decode response: %v", err)
				}
				if resp.Url != "https://checkout.stripe.com/pay/cs_test_1" {
					t.Errorf("url = %q, want checkout url", resp.Url)
				}

				bookings.AssertExpectations(t)
			}

			checkErrorResponse(t, w, tt.wantStatus, tt.wantErrMessage)
		})
	}
}

func TestCreateInstallmentCheckoutSession(t *testing.T) {
	newInstallmentRequest := func() api.InstallmentCheckoutRequest {
		return api.InstallmentCheckoutRequest{
			CheckoutRequest:     validCheckoutRequest(),
			PaymentStyle:        "Installment Payment",
			InstallmentTotal:    300,
			InstallmentCount:    3,
			InstallmentInterval: 30,
		}
	}

	t.Run("successful installment checkout", func(t *testing.T) {
		experiences := &mocks.MockExperienceRepo{}
		bookings := &mocks.MockBookingRepo{}
		provider := &mocks.MockPaymentProvider{}

		experiences.On("GetById", mock.Anything, "exp_1").Return(testExperience(), nil)
		provider.On("CreateInstallmentCheckoutSession", mock.Anything, mock.Anything, mock.MatchedBy(func(plan domain.PlanDescriptor) bool {
			return plan.Count == 3 && plan.IntervalDays == 30 && plan.Total.Equal(decimal.NewFromInt(300))
		})).Return(&stripe.CheckoutSession{
			ID:       "cs_test_2",
			URL:      "https://checkout.stripe.com/pay/cs_test_2",
			Customer: &stripe.Customer{ID: "cus_1"},
		}, nil)
		bookings.On("Create", mock.Anything, mock.MatchedBy(func(b *domain.Booking) bool {
			// The charge taken at checkout is the first installment, not
			// the full amount.
			return b.Amount.StringFixed(2) == "100.00"
		})).Return(nil)

		app := newTestApplication(func(a *Application) {
			a.experienceRepo = experiences
			a.bookingRepo = bookings
			a.paymentProvider = provider
		})

		w, r := executeRequest(t, http.MethodPost, "/api/create-installment-checkout-session", newInstallmentRequest())
		app.CreateInstallmentCheckoutSessionHandler(w, r)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d, body: %s", w.Code, http.StatusOK, w.Body.String())
		}

		var resp api.InstallmentCheckoutResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}

		if resp.Type != "installment" {
			t.Errorf("type = %q, want installment", resp.Type)
		}
		if resp.SessionId != "cs_test_2" {
			t.Errorf("sessionId = %q, want cs_test_2", resp.SessionId)
		}
		if resp.CustomerId != "cus_1" {
			t.Errorf("customerId = %q, want cus_1", resp.CustomerId)
		}

		bookings.AssertExpectations(t)
		provider.AssertExpectations(t)
	})

	t.Run("defaults applied when plan fields omitted", func(t *testing.T) {
		experiences := &mocks.MockExperienceRepo{}
		bookings := &mocks.MockBookingRepo{}
		provider := &mocks.MockPaymentProvider{}

		experiences.On("GetById", mock.Anything, "exp_1").Return(testExperience(), nil)
		provider.On("CreateInstallmentCheckoutSession", mock.Anything, mock.Anything, mock.MatchedBy(func(plan domain.PlanDescriptor) bool {
			return plan.Count == DefaultInstallmentCount && plan.IntervalDays == DefaultInstallmentInterval
		})).Return(&stripe.CheckoutSession{ID: "cs_test_3", URL: "https://example.com"}, nil)
		bookings.On("Create", mock.Anything, mock.Anything).Return(nil)

		app := newTestApplication(func(a *Application) {
			a.experienceRepo = experiences
			a.bookingRepo = bookings
			a.paymentProvider = provider
		})

		req := newInstallmentRequest()
		req.InstallmentCount = 0
		req.InstallmentInterval = 0
		req.InstallmentTotal = 0

		w, r := executeRequest(t, http.MethodPost, "/api/create-installment-checkout-session", req)
		app.CreateInstallmentCheckoutSessionHandler(w, r)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d, body: %s", w.Code, http.StatusOK, w.Body.String())
		}

		provider.AssertExpectations(t)
	})

	t.Run("full payment style falls back to one-time checkout", func(t *testing.T) {
		experiences := &mocks.MockExperienceRepo{}
		bookings := &mocks.MockBookingRepo{}
		provider := &mocks.MockPaymentProvider{}

		experiences.On("GetById", mock.Anything, "exp_1").Return(testExperience(), nil)
		provider.On("CreateCheckoutSession", mock.Anything, mock.Anything).
			Return(&stripe.CheckoutSession{ID: "cs_test_4", URL: "https://example.com"}, nil)
		bookings.On("Create", mock.Anything, mock.Anything).Return(nil)

		app := newTestApplication(func(a *Application) {
			a.experienceRepo = experiences
			a.bookingRepo = bookings
			a.paymentProvider = provider
		})

		req := newInstallmentRequest()
		req.PaymentStyle = "Full Payment"

		w, r := executeRequest(t, http.MethodPost, "/api/create-installment-checkout-session", req)
		app.CreateInstallmentCheckoutSessionHandler(w, r)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d, body: %s", w.Code, http.StatusOK, w.Body.String())
		}

		var resp api.InstallmentCheckoutResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if resp.Type != "full" {
			t.Errorf("type = %q, want full", resp.Type)
		}

		provider.AssertExpectations(t)
	})

	t.Run("installment count out of range", func(t *testing.T) {
		app := newTestApplication()

		req := newInstallmentRequest()
		req.InstallmentCount = 30

		w, r := executeRequest(t, http.MethodPost, "/api/create-installment-checkout-session", req)
		app.CreateInstallmentCheckoutSessionHandler(w, r)

		if w.Code != http.StatusUnprocessableEntity {
			t.Fatalf("status = %d, want %d", w.Code, http.StatusUnprocessableEntity)
		}

		checkErrorResponse(t, w, http.StatusUnprocessableEntity, "must be between 2 and 24 installments")
	})
}
