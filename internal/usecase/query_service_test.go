package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/soccer-fixtures/internal/domain/fixture"
	"github.com/riskibarqy/soccer-fixtures/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/soccer-fixtures/internal/platform/logging"
)

func seedQueryFixtures(t *testing.T, repo fixture.Repository) {
	t.Helper()
	ctx := context.Background()

	fixtures := []fixture.Fixture{
		{
			HomeTeam:    "Arsenal",
			AwayTeam:    "Chelsea",
			Competition: "Premier League",
			Date:        time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC),
			Time:        "15:00",
			Broadcasters: []fixture.Broadcaster{
				{Country: "UK", Channel: "Sky Sports"},
				{Country: "USA", Channel: "NBC Sports"},
			},
		},
		{
			HomeTeam:    "Barcelona",
			AwayTeam:    "Real Madrid",
			Competition: "La Liga",
			Date:        time.Date(2026, 1, 21, 0, 0, 0, 0, time.UTC),
			Time:        "20:00",
			Broadcasters: []fixture.Broadcaster{
				{Country: "Spain", Channel: "DAZN España"},
			},
		},
		{
			HomeTeam:    "Milan",
			AwayTeam:    "Inter",
			Competition: "Serie A",
			Date:        time.Date(2026, 1, 21, 0, 0, 0, 0, time.UTC),
			Time:        "19:45",
		},
	}
	for _, f := range fixtures {
		_, err := repo.Upsert(ctx, f)
		require.NoError(t, err)
	}
}

func TestQueryService_OnAndShorthands(t *testing.T) {
	repo := memory.NewFixtureRepository()
	seedQueryFixtures(t, repo)

	svc := NewQueryService(repo, logging.NewNop())
	svc.now = func() time.Time {
		return time.Date(2026, 1, 20, 9, 0, 0, 0, time.UTC)
	}

	today, err := svc.Today(context.Background())
	require.NoError(t, err)
	require.Len(t, today, 1)
	assert.Equal(t, "Arsenal", today[0].HomeTeam)

	tomorrow, err := svc.Tomorrow(context.Background())
	require.NoError(t, err)
	require.Len(t, tomorrow, 2)
	assert.Equal(t, "Milan", tomorrow[0].HomeTeam)
	assert.Equal(t, "Barcelona", tomorrow[1].HomeTeam)

	_, err = svc.On(context.Background(), time.Time{})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestQueryService_ByCountryAndCompetition(t *testing.T) {
	repo := memory.NewFixtureRepository()
	seedQueryFixtures(t, repo)
	svc := NewQueryService(repo, logging.NewNop())

	byCountry, err := svc.ByCountry(context.Background(), "spain")
	require.NoError(t, err)
	require.Len(t, byCountry, 1)
	assert.Equal(t, "Barcelona", byCountry[0].HomeTeam)

	_, err = svc.ByCountry(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrInvalidInput)

	byCompetition, err := svc.ByCompetition(context.Background(), "Premier League")
	require.NoError(t, err)
	require.Len(t, byCompetition, 1)
	assert.Equal(t, "Arsenal", byCompetition[0].HomeTeam)

	_, err = svc.ByCompetition(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestGroupByCountry(t *testing.T) {
	fixtures := []fixture.Fixture{
		{
			HomeTeam: "Arsenal", AwayTeam: "Chelsea",
			Broadcasters: []fixture.Broadcaster{
				{Country: "UK", Channel: "Sky Sports"},
				{Country: "USA", Channel: "NBC Sports"},
			},
		},
		{
			HomeTeam: "Milan", AwayTeam: "Inter",
		},
		{
			HomeTeam: "Lyon", AwayTeam: "Lille",
			Broadcasters: []fixture.Broadcaster{
				// Unresolved label falls back to the channel classifier.
				{Country: "Various", Channel: "Canal+ Sport"},
			},
		},
	}

	groups := GroupByCountry(fixtures)
	require.Len(t, groups, 4)
	assert.Equal(t, "France", groups[0].Country)
	assert.Equal(t, "UK", groups[1].Country)
	assert.Equal(t, "USA", groups[2].Country)
	assert.Equal(t, "Various", groups[3].Country)
	require.Len(t, groups[3].Fixtures, 1)
	assert.Equal(t, "Milan", groups[3].Fixtures[0].HomeTeam)
}

func TestQueryService_ExportJSON(t *testing.T) {
	repo := memory.NewFixtureRepository()
	seedQueryFixtures(t, repo)

	svc := NewQueryService(repo, logging.NewNop())
	svc.now = func() time.Time {
		return time.Date(2026, 1, 22, 8, 0, 0, 0, time.UTC)
	}

	payload, err := svc.ExportJSON(context.Background(), fixture.QueryFilter{Competition: "La Liga"})
	require.NoError(t, err)

	var doc struct {
		GeneratedAt string `json:"generated_at"`
		Count       int    `json:"count"`
		Fixtures    []struct {
			HomeTeam     string `json:"home_team"`
			Date         string `json:"date"`
			Broadcasters []struct {
				Country string `json:"country"`
				Channel string `json:"channel"`
			} `json:"broadcasters"`
		} `json:"fixtures"`
	}
	require.NoError(t, sonic.Unmarshal(payload, &doc))

	assert.Equal(t, "2026-01-22T08:00:00Z", doc.GeneratedAt)
	assert.Equal(t, 1, doc.Count)
	require.Len(t, doc.Fixtures, 1)
	assert.Equal(t, "Barcelona", doc.Fixtures[0].HomeTeam)
	assert.Equal(t, "2026-01-21", doc.Fixtures[0].Date)
	require.Len(t, doc.Fixtures[0].Broadcasters, 1)
	assert.Equal(t, "Spain", doc.Fixtures[0].Broadcasters[0].Country)
}
