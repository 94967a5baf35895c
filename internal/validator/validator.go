package validator

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	minInstallmentCount = 2
	maxInstallmentCount = 24
	minIntervalDays     = 1
	maxIntervalDays     = 90
)

func NewValidator() *validator.Validate {
	validator := validator.New(validator.WithRequiredStructEnabled())

	validator.RegisterValidation("booking_date", validateBookingDate)
	validator.RegisterValidation("installment_count", validateInstallmentCount)
	validator.RegisterValidation("installment_interval", validateInstallmentInterval)

	return validator
}

// validateBookingDate accepts ISO dates that are today or later. Bookings for
// past dates are always form mistakes.
func validateBookingDate(fl validator.FieldLevel) bool {
	raw := fl.Field().String()

	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return false
	}

	today := time.Now().Truncate(24 * time.Hour)

	return !date.Before(today)
}

func validateInstallmentCount(fl validator.FieldLevel) bool {
	count := fl.Field().Int()
	return count >= minInstallmentCount && count <= maxInstallmentCount
}

func validateInstallmentInterval(fl validator.FieldLevel) bool {
	interval := fl.Field().Int()
	return interval >= minIntervalDays && interval <= maxIntervalDays
}

// ValidationMessage converts validator errors into readable messages
func ValidationMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s", err.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", err.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", err.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", err.Param())
	case "booking_date":
		return "must be a valid date (YYYY-MM-DD) that is not in the past"
	case "installment_count":
		return fmt.Sprintf("must be between %d and %d installments", minInstallmentCount, maxInstallmentCount)
	case "installment_interval":
		return fmt.Sprintf("must be between %d and %d days", minIntervalDays, maxIntervalDays)
	default:
		return "is invalid"
	}
}
