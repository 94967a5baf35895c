package integration_test

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type ExperienceTestSuite struct {
	BaseSuite
}

func TestExperienceSuite(t *testing.T) {
	if testing.Short() {
		t.Skip()
	}

	suite.Run(t, new(ExperienceTestSuite))
}

func (s *ExperienceTestSuite) TestGetExperiences() {
	scenarios := []Scenario{
		{
			Name:           "returns seeded experience",
			Method:         "GET",
			URL:            "/api/experiences",
			ExpectedStatus: 200,
			ExpectedResponse: `{
				"experiences": [
					{
						"id": "exp_1",
						"slug": "cape-coast-heritage-tour",
						"title": "Cape Coast Heritage Tour",
						"location": "Cape Coast",
						"price": 300,
						"isGroup": true
					}
				]
			}`,
			BeforeTestFunc: func(t testing.TB, app *TestApp) {
				seedExperience(t, app, defaultExperience())
			},
		},
	}

	for _, scenario := range scenarios {
		scenario.Run(s.T(), s.app)
	}
}

func (s *ExperienceTestSuite) TestGetExperienceBySlug() {
	scenarios := []Scenario{
		{
			Name:           "returns experience details",
			Method:         "GET",
			URL:            "/api/experiences/cape-coast-heritage-tour",
			ExpectedStatus: 200,
			ExpectedResponse: `{
				"id": "exp_1",
				"slug": "cape-coast-heritage-tour",
				"title": "Cape Coast Heritage Tour",
				"location": "Cape Coast",
				"price": 300,
				"isGroup": true,
				"description": "A full-day guided heritage tour.",
				"capacity": 12
			}`,
			BeforeTestFunc: func(t testing.TB, app *TestApp) {
				seedExperience(t, app, defaultExperience())
			},
		},
		{
			Name:           "unknown slug returns 404",
			Method:         "GET",
			URL:            "/api/experiences/nonexistent-tour",
			ExpectedStatus: 404,
		},
	}

	for _, scenario := range scenarios {
		scenario.Run(s.T(), s.app)
	}
}

func (s *ExperienceTestSuite) TestGetSlots() {
	scenarios := []Scenario{
		{
			Name:           "group experience with no bookings has full capacity",
			Method:         "GET",
			URL:            "/api/slots/exp_1",
			ExpectedStatus: 200,
			ExpectedResponse: `{
				"experienceId": "exp_1",
				"capacity": 12,
				"booked": 0,
				"available": 12,
				"acceptBookings": true
			}`,
			BeforeTestFunc: func(t testing.TB, app *TestApp) {
				seedExperience(t, app, defaultExperience())
				truncateTables(t, app)
			},
		},
		{
			Name:           "unknown experience returns 404",
			Method:         "GET",
			URL:            "/api/slots/exp_unknown",
			ExpectedStatus: 404,
		},
	}

	for _, scenario := range scenarios {
		scenario.Run(s.T(), s.app)
	}
}
