// Package api defines the request and response types of the public HTTP API.
package api

import "time"

type ErrorResponse struct {
	Message   string    `json:"message"`
	RequestId string    `json:"requestId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type ValidationError struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

type ValidationErrorResponse struct {
	Message          string            `json:"message"`
	ValidationErrors []ValidationError `json:"validationErrors"`
	RequestId        string            `json:"requestId,omitempty"`
	Timestamp        time.Time         `json:"timestamp"`
}

type SystemInfo struct {
	Version     string `json:"version"`
	Environment string `json:"environment"`
}

type HealthcheckResponse struct {
	Status     string     `json:"status"`
	SystemInfo SystemInfo `json:"systemInfo"`
}

type CheckoutRequest struct {
	Amount              float64 `json:"amount" validate:"required,gt=0"`
	Email               string  `json:"email" validate:"required,email"`
	FullName            string  `json:"fullName" validate:"required,min=2,max=100"`
	ExperienceId        string  `json:"experienceId" validate:"required"`
	ExperienceName      string  `json:"experienceName" validate:"required"`
	ExperienceSlug      string  `json:"experienceSlug" validate:"required"`
	Guests              int     `json:"guests" validate:"required,min=1,max=50"`
	PreferredDate       string  `json:"preferredDate" validate:"required,booking_date"`
	AlternateDate       string  `json:"alternateDate" validate:"omitempty,booking_date"`
	Phone               string  `json:"phone" validate:"omitempty,min=7,max=20"`
	MobileMoneyProvider string  `json:"mobileMoneyProvider" validate:"omitempty,oneof=mtn vodafone airteltigo"`
}

type CheckoutResponse struct {
	Url string `json:"url"`
}

type InstallmentCheckoutRequest struct {
	CheckoutRequest

	PaymentStyle        string  `json:"paymentStyle" validate:"required,oneof='Installment Payment' 'Full Payment'"`
	InstallmentTotal    float64 `json:"installmentTotal" validate:"omitempty,gt=0"`
	InstallmentCount    int     `json:"installmentCount" validate:"omitempty,installment_count"`
	InstallmentInterval int     `json:"installmentInterval" validate:"omitempty,installment_interval"`
}

type InstallmentCheckoutResponse struct {
	Url            string `json:"url"`
	SessionId      string `json:"sessionId"`
	SubscriptionId string `json:"subscriptionId,omitempty"`
	CustomerId     string `json:"customerId,omitempty"`
	Type           string `json:"type"`
}

type WebhookResponse struct {
	Received bool `json:"received"`
}

type SweepResultItem struct {
	InstallmentId string `json:"installmentId"`
	BookingId     string `json:"bookingId"`
	Number        int    `json:"number"`
	Success       bool   `json:"success"`
	Error         string `json:"error,omitempty"`
}

type SweepResponse struct {
	Success   bool              `json:"success"`
	Processed int               `json:"processed"`
	Results   []SweepResultItem `json:"results"`
}

type BookingDetailsResponse struct {
	SessionId      string    `json:"sessionId"`
	PaymentStatus  string    `json:"paymentStatus"`
	CustomerName   string    `json:"customerName"`
	CustomerEmail  string    `json:"customerEmail"`
	ExperienceId   string    `json:"experienceId,omitempty"`
	ExperienceName string    `json:"experienceName"`
	ExperienceSlug string    `json:"experienceSlug,omitempty"`
	Location       string    `json:"location,omitempty"`
	Guests         int       `json:"guests"`
	PreferredDate  string    `json:"preferredDate"`
	AlternateDate  string    `json:"alternateDate,omitempty"`
	AmountTotal    float64   `json:"amountTotal"`
	Currency       string    `json:"currency"`
	PaymentStyle   string    `json:"paymentStyle"`
	CreatedAt      time.Time `json:"createdAt"`
}

type ExperienceSummary struct {
	Id       string  `json:"id"`
	Slug     string  `json:"slug"`
	Title    string  `json:"title"`
	Location string  `json:"location"`
	Price    float64 `json:"price"`
	IsGroup  bool    `json:"isGroup"`
}

type ExperienceListResponse struct {
	Experiences []ExperienceSummary `json:"experiences"`
}

type ExperienceResponse struct {
	ExperienceSummary

	Description string `json:"description"`
	Capacity    int    `json:"capacity"`
}

type SlotsResponse struct {
	ExperienceId   string `json:"experienceId"`
	Capacity       int    `json:"capacity"`
	Booked         int    `json:"booked"`
	Available      int    `json:"available"`
	AcceptBookings bool   `json:"acceptBookings"`
}

type PlanStatusResponse struct {
	BookingId           string  `json:"bookingId"`
	TotalInstallments   int     `json:"totalInstallments"`
	PaidInstallments    int     `json:"paidInstallments"`
	PendingInstallments int     `json:"pendingInstallments"`
	FailedInstallments  int     `json:"failedInstallments"`
	TotalAmount         float64 `json:"totalAmount"`
	PaidAmount          float64 `json:"paidAmount"`
	IsComplete          bool    `json:"isComplete"`
}
