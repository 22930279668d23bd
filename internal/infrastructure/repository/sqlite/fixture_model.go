package sqlite

import (
	"database/sql"
	"errors"
	"time"

	"github.com/riskibarqy/soccer-fixtures/internal/domain/fixture"
)

// Timestamps are stored as RFC 3339 text; sqlite has no native time type.
const timestampLayout = time.RFC3339

type fixtureTableModel struct {
	ID          int64          `db:"id"`
	HomeTeam    string         `db:"home_team"`
	AwayTeam    string         `db:"away_team"`
	Competition string         `db:"competition"`
	FixtureDate string         `db:"fixture_date"`
	FixtureTime sql.NullString `db:"fixture_time"`
	Venue       sql.NullString `db:"venue"`
	ScrapedAt   string         `db:"scraped_at"`
	LastUpdated string         `db:"last_updated"`
}

func (m fixtureTableModel) toDomain() fixture.Fixture {
	f := fixture.Fixture{
		ID:          m.ID,
		HomeTeam:    m.HomeTeam,
		AwayTeam:    m.AwayTeam,
		Competition: m.Competition,
		Time:        fixture.TimeUnknown,
		Venue:       m.Venue.String,
	}
	if m.FixtureTime.Valid && m.FixtureTime.String != "" {
		f.Time = m.FixtureTime.String
	}
	if d, err := time.Parse(fixture.DateLayout, m.FixtureDate); err == nil {
		f.Date = d
	}
	if t, err := time.Parse(timestampLayout, m.ScrapedAt); err == nil {
		f.ScrapedAt = t
	}
	if t, err := time.Parse(timestampLayout, m.LastUpdated); err == nil {
		f.LastUpdated = t
	}
	return f
}

type broadcasterTableModel struct {
	ID        int64  `db:"id"`
	FixtureID int64  `db:"fixture_id"`
	Country   string `db:"country"`
	Channel   string `db:"channel"`
}

type scrapeRunTableModel struct {
	ID            int64  `db:"id"`
	RunDate       string `db:"run_date"`
	RunAt         string `db:"run_at"`
	FixturesCount int    `db:"fixtures_count"`
	Source        string `db:"source"`
	Status        string `db:"status"`
}

func (m scrapeRunTableModel) toDomain() fixture.ScrapeRun {
	run := fixture.ScrapeRun{
		ID:            m.ID,
		FixturesCount: m.FixturesCount,
		Source:        m.Source,
		Status:        m.Status,
	}
	if d, err := time.Parse(fixture.DateLayout, m.RunDate); err == nil {
		run.Date = d
	}
	if t, err := time.Parse(timestampLayout, m.RunAt); err == nil {
		run.RunAt = t
	}
	return run
}

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
