package fixture

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the canonical calendar-date form used across the store,
// the export format, and all query parameters.
const DateLayout = "2006-01-02"

// TimeUnknown is the kickoff-time value for fixtures whose listing carried
// no parsable time.
const TimeUnknown = "unknown"

// Fixture is one scheduled match. The tuple
// (HomeTeam, AwayTeam, Competition, Date) is its natural key: the store
// keeps exactly one row per key across repeated ingestion runs.
type Fixture struct {
	ID           int64
	HomeTeam     string `validate:"required"`
	AwayTeam     string `validate:"required"`
	Competition  string `validate:"required"`
	Date         time.Time
	Time         string
	Venue        string
	Broadcasters []Broadcaster
	ScrapedAt    time.Time
	LastUpdated  time.Time
}

// Broadcaster is one (country, channel) coverage entry owned by a fixture.
// The owning fixture's broadcaster set is replaced wholesale on every upsert.
type Broadcaster struct {
	Country string
	Channel string
}

// Key returns the natural key in a comparable form.
func (f Fixture) Key() string {
	return strings.Join([]string{
		f.HomeTeam,
		f.AwayTeam,
		f.Competition,
		f.Date.Format(DateLayout),
	}, "|")
}

func (f Fixture) DateString() string {
	return f.Date.Format(DateLayout)
}

func (f Fixture) String() string {
	return fmt.Sprintf("%s vs %s (%s, %s)", f.HomeTeam, f.AwayTeam, f.Competition, f.DateString())
}

// Scrape-run statuses recorded in the audit log.
const (
	RunStatusSuccess     = "success"
	RunStatusNoData      = "no_data"
	RunStatusInterrupted = "interrupted"
	RunStatusError       = "error"
)

// ScrapeRun is one append-only audit record of an ingestion attempt.
type ScrapeRun struct {
	ID            int64
	Date          time.Time
	RunAt         time.Time
	FixturesCount int
	Source        string
	Status        string
}

// UpsertCounts reports the outcome of a bulk upsert. Failed records are
// counted and skipped, never fatal to the rest of the batch.
type UpsertCounts struct {
	Inserted int
	Updated  int
	Failed   int
}

func (c UpsertCounts) Total() int {
	return c.Inserted + c.Updated
}

// DuplicateReport is the result of a natural-key duplicate scan. Both counts
// are zero whenever the store's uniqueness constraints have been enforced;
// anything else signals an invariant violation.
type DuplicateReport struct {
	FixtureGroups     int
	BroadcasterGroups int
}

func (r DuplicateReport) HasDuplicates() bool {
	return r.FixtureGroups > 0 || r.BroadcasterGroups > 0
}

// Stats aggregates the persisted dataset for reporting.
type Stats struct {
	TotalFixtures     int
	ByCompetition     map[string]int
	TotalBroadcasters int
	UniqueCountries   int
	EarliestDate      string
	LatestDate        string
	LastRun           *ScrapeRun
}
