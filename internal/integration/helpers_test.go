package integration_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Seyramize/BE-sub000/internal/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func prepareRequest(method, path string, body io.Reader, headers map[string]string) (*http.Request, error) {
	req := httptest.NewRequest(method, path, body)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req, nil
}

func compareResponse(t *testing.T, body io.Reader, expectedResponse string) {
	var actual map[string]any
	require.NoError(t, json.NewDecoder(body).Decode(&actual))

	var expected map[string]any
	require.NoError(t, json.Unmarshal([]byte(expectedResponse), &expected))

	// ignore indeterministic fields while comparing
	opts := cmpopts.IgnoreMapEntries(func(k string, _ any) bool {
		return k == "timestamp" || k == "requestId" || k == "createdAt" || k == "url" || k == "sessionId"
	})

	if diff := cmp.Diff(expected, actual, opts); diff != "" {
		t.Errorf("response mismatch (-want +got):\n%s", diff)
	}
}

func truncateTables(t testing.TB, app *TestApp) {
	t.Helper()

	_, err := app.DB.Exec(context.Background(),
		`TRUNCATE bookings, installment_payments, notification_markers`)
	require.NoError(t, err)
}

func seedExperience(t testing.TB, app *TestApp, experience *domain.Experience) {
	t.Helper()

	_, err := app.DB.Exec(context.Background(), `
		INSERT INTO experiences (id, slug, title, location, description, price, capacity, is_group, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING
	`,
		experience.ID,
		experience.Slug,
		experience.Title,
		experience.Location,
		experience.Description,
		experience.Price,
		experience.Capacity,
		experience.IsGroup,
		experience.Active,
	)
	require.NoError(t, err)
}

func defaultExperience() *domain.Experience {
	return &domain.Experience{
		ID:          "exp_1",
		Slug:        "cape-coast-heritage-tour",
		Title:       "Cape Coast Heritage Tour",
		Location:    "Cape Coast",
		Description: "A full-day guided heritage tour.",
		Price:       decimal.NewFromInt(300),
		Capacity:    12,
		IsGroup:     true,
		Active:      true,
	}
}
