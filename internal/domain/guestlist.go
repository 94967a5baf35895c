package domain

import "context"

// GuestlistEntry is one row appended to the guestlist spreadsheet after a
// completed checkout.
type GuestlistEntry struct {
	BookingID      string
	CustomerName   string
	CustomerEmail  string
	CustomerPhone  string
	ExperienceName string
	Guests         int
	PreferredDate  string
	AlternateDate  string
	PaymentStyle   string
	Amount         string
}

type Guestlist interface {
	Append(ctx context.Context, entry GuestlistEntry) error
}
