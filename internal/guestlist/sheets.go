// Package guestlist appends confirmed bookings to the team's Google Sheets
// guestlist.
package guestlist

import (
	"context"
	"strings"
	"time"

	"github.com/Seyramize/BE-sub000/internal/domain"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const appendRange = "Guestlist!A:K"

type SheetsGuestlist struct {
	service *sheets.Service
	sheetID string
}

// NewSheetsGuestlist builds a Sheets client from service-account credentials.
// The private key arrives with literal "\n" sequences when set through an env
// var, so they are unescaped here.
func NewSheetsGuestlist(ctx context.Context, serviceAccountEmail, privateKey, sheetID string) (*SheetsGuestlist, error) {
	conf := &jwt.Config{
		Email:      serviceAccountEmail,
		PrivateKey: []byte(strings.ReplaceAll(privateKey, `\n`, "\n")),
		Scopes:     []string{sheets.SpreadsheetsScope},
		TokenURL:   google.JWTTokenURL,
	}

	service, err := sheets.NewService(ctx, option.WithHTTPClient(conf.Client(ctx)))
	if err != nil {
		return nil, err
	}

	return &SheetsGuestlist{
		service: service,
		sheetID: sheetID,
	}, nil
}

func (g *SheetsGuestlist) Append(ctx context.Context, entry domain.GuestlistEntry) error {
	row := []any{
		time.Now().UTC().Format(time.RFC3339),
		entry.BookingID,
		entry.CustomerName,
		entry.CustomerEmail,
		entry.CustomerPhone,
		entry.ExperienceName,
		entry.Guests,
		entry.PreferredDate,
		entry.AlternateDate,
		entry.PaymentStyle,
		entry.Amount,
	}

	values := &sheets.ValueRange{
		Values: [][]any{row},
	}

	_, err := g.service.Spreadsheets.Values.
		Append(g.sheetID, appendRange, values).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()

	return err
}

// NoopGuestlist is used when Sheets credentials are not configured.
type NoopGuestlist struct{}

func (NoopGuestlist) Append(ctx context.Context, entry domain.GuestlistEntry) error {
	return nil
}
