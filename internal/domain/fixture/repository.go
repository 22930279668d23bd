package fixture

import (
	"context"
	"time"
)

// QueryFilter narrows fixture reads. Zero values mean "no filter".
// Country is matched case-insensitively as a substring of the stored
// broadcaster country values.
type QueryFilter struct {
	Date        *time.Time
	Competition string
	Country     string
}

// Repository is the system of record for fixtures, their broadcasters, and
// the scrape-run audit log.
type Repository interface {
	// Upsert inserts or updates one fixture by natural key and returns its
	// id. The fixture write and the broadcaster delete-then-insert happen in
	// one transaction; the stored broadcaster set always equals the set on
	// the incoming record.
	Upsert(ctx context.Context, f Fixture) (int64, error)

	// BulkUpsert applies Upsert to each record independently. A failing
	// record is counted and skipped.
	BulkUpsert(ctx context.Context, fixtures []Fixture) (UpsertCounts, error)

	// Query returns matching fixtures with their broadcaster sets attached,
	// ordered by date then time.
	Query(ctx context.Context, filter QueryFilter) ([]Fixture, error)

	// DetectDuplicates scans for natural-key groups with more than one
	// member. Empty under correct operation.
	DetectDuplicates(ctx context.Context) (DuplicateReport, error)

	// RemoveDuplicates keeps the highest-id row of each offending group and
	// deletes the rest. Returns (fixtures deleted, broadcasters deleted).
	RemoveDuplicates(ctx context.Context) (int64, int64, error)

	// PruneOlderThan deletes fixtures dated strictly before now minus the
	// given number of days, cascading their broadcasters.
	PruneOlderThan(ctx context.Context, days int) (int64, error)

	// RecordRun appends one scrape-run audit row.
	RecordRun(ctx context.Context, run ScrapeRun) error

	// RecentRuns returns the latest audit rows, newest first.
	RecentRuns(ctx context.Context, limit int) ([]ScrapeRun, error)

	// Stats aggregates the stored dataset.
	Stats(ctx context.Context) (Stats, error)
}
