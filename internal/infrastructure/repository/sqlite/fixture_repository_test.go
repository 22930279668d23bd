package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/soccer-fixtures/internal/domain/fixture"
	"github.com/riskibarqy/soccer-fixtures/internal/platform/logging"
)

func newTestRepository(t *testing.T) *FixtureRepository {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "fixtures.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})

	return NewFixtureRepository(db, logging.NewNop())
}

func testFixture(date string) fixture.Fixture {
	d, err := time.Parse(fixture.DateLayout, date)
	if err != nil {
		panic(err)
	}
	return fixture.Fixture{
		HomeTeam:    "Arsenal",
		AwayTeam:    "Chelsea",
		Competition: "Premier League",
		Date:        d,
		Time:        "15:00",
		Venue:       "Emirates Stadium",
		Broadcasters: []fixture.Broadcaster{
			{Country: "UK", Channel: "Sky Sports"},
			{Country: "USA", Channel: "NBC Sports"},
		},
	}
}

func TestUpsertIsIdempotent(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	f := testFixture("2026-01-20")

	firstID, err := repo.Upsert(ctx, f)
	require.NoError(t, err)
	secondID, err := repo.Upsert(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, firstID, secondID)

	results, err := repo.Query(ctx, fixture.QueryFilter{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Len(t, results[0].Broadcasters, 2)
}

func TestUpsertUpdatesMutableFields(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	f := testFixture("2026-01-20")
	id, err := repo.Upsert(ctx, f)
	require.NoError(t, err)

	f.Time = "17:30"
	f.Venue = "Wembley"
	updatedID, err := repo.Upsert(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, id, updatedID)

	results, err := repo.Query(ctx, fixture.QueryFilter{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "17:30", results[0].Time)
	assert.Equal(t, "Wembley", results[0].Venue)
}

func TestUpsertReplacesBroadcasters(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	f := testFixture("2026-01-20")
	_, err := repo.Upsert(ctx, f)
	require.NoError(t, err)

	f.Broadcasters = []fixture.Broadcaster{
		{Country: "Spain", Channel: "DAZN"},
	}
	_, err = repo.Upsert(ctx, f)
	require.NoError(t, err)

	results, err := repo.Query(ctx, fixture.QueryFilter{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Len(t, results[0].Broadcasters, 1)
	assert.Equal(t, "DAZN", results[0].Broadcasters[0].Channel)
}

func TestUpsertDefaultsUnknownTime(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	f := testFixture("2026-01-20")
	f.Time = ""
	_, err := repo.Upsert(ctx, f)
	require.NoError(t, err)

	results, err := repo.Query(ctx, fixture.QueryFilter{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, fixture.TimeUnknown, results[0].Time)
}

func TestUpsertRejectsIncompleteRecords(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*fixture.Fixture)
	}{
		{"missing home team", func(f *fixture.Fixture) { f.HomeTeam = "" }},
		{"missing away team", func(f *fixture.Fixture) { f.AwayTeam = " " }},
		{"missing competition", func(f *fixture.Fixture) { f.Competition = "" }},
		{"missing date", func(f *fixture.Fixture) { f.Date = time.Time{} }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := testFixture("2026-01-20")
			tc.mutate(&f)
			_, err := repo.Upsert(ctx, f)
			assert.Error(t, err)
		})
	}
}

func TestBulkUpsertCounts(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	a := testFixture("2026-01-20")
	b := testFixture("2026-01-21")
	b.HomeTeam = "Liverpool"
	b.AwayTeam = "Everton"
	invalid := testFixture("2026-01-22")
	invalid.HomeTeam = ""

	counts, err := repo.BulkUpsert(ctx, []fixture.Fixture{a, b, invalid})
	require.NoError(t, err)
	assert.Equal(t, 2, counts.Inserted)
	assert.Equal(t, 0, counts.Updated)
	assert.Equal(t, 1, counts.Failed)

	a.Venue = "Neutral Ground"
	counts, err = repo.BulkUpsert(ctx, []fixture.Fixture{a})
	require.NoError(t, err)
	assert.Equal(t, 0, counts.Inserted)
	assert.Equal(t, 1, counts.Updated)
}

func TestQueryFilters(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	a := testFixture("2026-01-20")
	b := testFixture("2026-01-21")
	b.HomeTeam = "Barcelona"
	b.AwayTeam = "Real Madrid"
	b.Competition = "La Liga"
	b.Broadcasters = []fixture.Broadcaster{{Country: "Spain", Channel: "DAZN"}}

	_, err := repo.Upsert(ctx, a)
	require.NoError(t, err)
	_, err = repo.Upsert(ctx, b)
	require.NoError(t, err)

	date := a.Date
	byDate, err := repo.Query(ctx, fixture.QueryFilter{Date: &date})
	require.NoError(t, err)
	require.Len(t, byDate, 1)
	assert.Equal(t, "Arsenal", byDate[0].HomeTeam)

	byCompetition, err := repo.Query(ctx, fixture.QueryFilter{Competition: "La Liga"})
	require.NoError(t, err)
	require.Len(t, byCompetition, 1)
	assert.Equal(t, "Barcelona", byCompetition[0].HomeTeam)

	byCountry, err := repo.Query(ctx, fixture.QueryFilter{Country: "spain"})
	require.NoError(t, err)
	require.Len(t, byCountry, 1)
	assert.Equal(t, "Barcelona", byCountry[0].HomeTeam)

	all, err := repo.Query(ctx, fixture.QueryFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "2026-01-20", all[0].DateString())
	assert.Equal(t, "2026-01-21", all[1].DateString())
}

func TestDetectAndRemoveDuplicates(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	f := testFixture("2026-01-20")
	id, err := repo.Upsert(ctx, f)
	require.NoError(t, err)

	// Databases imported from before the unique indexes existed can hold
	// duplicate rows. Recreate that state by dropping the indexes.
	_, err = repo.db.ExecContext(ctx, "DROP INDEX idx_fixtures_natural_key")
	require.NoError(t, err)
	_, err = repo.db.ExecContext(ctx, "DROP INDEX idx_broadcasters_unique")
	require.NoError(t, err)

	now := time.Now().UTC().Format(timestampLayout)
	res, err := repo.db.ExecContext(ctx, `
INSERT INTO fixtures (home_team, away_team, competition, fixture_date, fixture_time, scraped_at, last_updated)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
		f.HomeTeam, f.AwayTeam, f.Competition, f.DateString(), "15:00", now, now)
	require.NoError(t, err)
	copyID, err := res.LastInsertId()
	require.NoError(t, err)

	// Two identical broadcaster rows on the copy that will survive dedup.
	for i := 0; i < 2; i++ {
		_, err = repo.db.ExecContext(ctx,
			"INSERT INTO broadcasters (fixture_id, country, channel) VALUES (?, ?, ?)",
			copyID, "UK", "Sky Sports")
		require.NoError(t, err)
	}

	report, err := repo.DetectDuplicates(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.FixtureGroups)
	assert.Equal(t, 1, report.BroadcasterGroups)
	assert.True(t, report.HasDuplicates())

	fixturesDeleted, broadcastersDeleted, err := repo.RemoveDuplicates(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), fixturesDeleted)
	assert.Equal(t, int64(1), broadcastersDeleted)

	report, err = repo.DetectDuplicates(ctx)
	require.NoError(t, err)
	assert.False(t, report.HasDuplicates())

	// The surviving row is the newer one, not the original.
	results, err := repo.Query(ctx, fixture.QueryFilter{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Greater(t, results[0].ID, id)
}

func TestPruneOlderThan(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	now := time.Date(2026, 1, 20, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return now }

	old := testFixture("2026-01-12")
	boundary := testFixture("2026-01-13")
	boundary.HomeTeam = "Liverpool"
	recent := testFixture("2026-01-19")
	recent.HomeTeam = "Everton"

	for _, f := range []fixture.Fixture{old, boundary, recent} {
		_, err := repo.Upsert(ctx, f)
		require.NoError(t, err)
	}

	deleted, err := repo.PruneOlderThan(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	results, err := repo.Query(ctx, fixture.QueryFilter{})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "2026-01-13", results[0].DateString())
}

func TestRecordAndListRuns(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	first := fixture.ScrapeRun{
		Date:          time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC),
		RunAt:         time.Date(2026, 1, 20, 9, 0, 0, 0, time.UTC),
		FixturesCount: 12,
		Source:        "livesoccertv",
		Status:        fixture.RunStatusSuccess,
	}
	second := first
	second.RunAt = first.RunAt.Add(time.Hour)
	second.FixturesCount = 0
	second.Status = fixture.RunStatusNoData

	require.NoError(t, repo.RecordRun(ctx, first))
	require.NoError(t, repo.RecordRun(ctx, second))

	runs, err := repo.RecentRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, fixture.RunStatusNoData, runs[0].Status)
	assert.Equal(t, fixture.RunStatusSuccess, runs[1].Status)

	one, err := repo.RecentRuns(ctx, 1)
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Equal(t, fixture.RunStatusNoData, one[0].Status)
}

func TestStats(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	a := testFixture("2026-01-20")
	b := testFixture("2026-01-25")
	b.HomeTeam = "Barcelona"
	b.AwayTeam = "Real Madrid"
	b.Competition = "La Liga"
	b.Broadcasters = []fixture.Broadcaster{
		{Country: "Spain", Channel: "DAZN"},
		{Country: "UK", Channel: "Premier Sports"},
	}

	_, err := repo.Upsert(ctx, a)
	require.NoError(t, err)
	_, err = repo.Upsert(ctx, b)
	require.NoError(t, err)
	require.NoError(t, repo.RecordRun(ctx, fixture.ScrapeRun{
		Date:          a.Date,
		RunAt:         time.Date(2026, 1, 20, 9, 0, 0, 0, time.UTC),
		FixturesCount: 2,
		Source:        "livesoccertv",
		Status:        fixture.RunStatusSuccess,
	}))

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalFixtures)
	assert.Equal(t, 4, stats.TotalBroadcasters)
	assert.Equal(t, 3, stats.UniqueCountries)
	assert.Equal(t, map[string]int{"Premier League": 1, "La Liga": 1}, stats.ByCompetition)
	assert.Equal(t, "2026-01-20", stats.EarliestDate)
	assert.Equal(t, "2026-01-25", stats.LatestDate)
	require.NotNil(t, stats.LastRun)
	assert.Equal(t, 2, stats.LastRun.FixturesCount)
}
