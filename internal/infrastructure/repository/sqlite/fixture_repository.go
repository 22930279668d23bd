package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/soccer-fixtures/internal/domain/fixture"
	"github.com/riskibarqy/soccer-fixtures/internal/platform/logging"
	qb "github.com/riskibarqy/soccer-fixtures/internal/platform/querybuilder"
)

type FixtureRepository struct {
	db     *sqlx.DB
	logger *logging.Logger
	now    func() time.Time
}

func NewFixtureRepository(db *sqlx.DB, logger *logging.Logger) *FixtureRepository {
	if logger == nil {
		logger = logging.Default()
	}
	return &FixtureRepository{
		db:     db,
		logger: logger,
		now:    time.Now,
	}
}

var _ fixture.Repository = (*FixtureRepository)(nil)

// Upsert inserts or updates one fixture by natural key. The fixture write and
// the broadcaster delete-then-insert run in one transaction, so a reader never
// observes a partially-replaced broadcaster set.
func (r *FixtureRepository) Upsert(ctx context.Context, f fixture.Fixture) (int64, error) {
	if err := validateRecord(f); err != nil {
		return 0, err
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx for fixture upsert: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	id, err := r.upsertFixtureRow(ctx, tx, f)
	if err != nil {
		return 0, err
	}

	if err := replaceBroadcasters(ctx, tx, id, f.Broadcasters); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit fixture upsert: %w", err)
	}
	return id, nil
}

func (r *FixtureRepository) upsertFixtureRow(ctx context.Context, tx *sqlx.Tx, f fixture.Fixture) (int64, error) {
	now := r.now().UTC().Format(timestampLayout)
	scrapedAt := now
	if !f.ScrapedAt.IsZero() {
		scrapedAt = f.ScrapedAt.UTC().Format(timestampLayout)
	}

	kickoff := strings.TrimSpace(f.Time)
	if kickoff == "" {
		kickoff = fixture.TimeUnknown
	}

	query, args, err := qb.InsertInto("fixtures").
		Columns("home_team", "away_team", "competition", "fixture_date", "fixture_time", "venue", "scraped_at", "last_updated").
		Values(f.HomeTeam, f.AwayTeam, f.Competition, f.DateString(), kickoff, nullString(f.Venue), scrapedAt, now).
		Suffix(`ON CONFLICT(home_team, away_team, competition, fixture_date)
DO UPDATE SET
    fixture_time = excluded.fixture_time,
    venue = excluded.venue,
    last_updated = excluded.last_updated
RETURNING id`).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build fixture upsert query: %w", err)
	}

	var id int64
	if err := tx.QueryRowxContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("upsert fixture %s: %w", f, err)
	}
	return id, nil
}

// replaceBroadcasters deletes the fixture's current broadcaster rows and
// inserts the incoming set. Duplicate (country, channel) pairs inside one
// record collapse through the uniqueness constraint.
func replaceBroadcasters(ctx context.Context, tx *sqlx.Tx, fixtureID int64, entries []fixture.Broadcaster) error {
	query, args, err := qb.DeleteFrom("broadcasters").
		Where(qb.Eq("fixture_id", fixtureID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build broadcaster delete query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete broadcasters for fixture %d: %w", fixtureID, err)
	}

	if len(entries) == 0 {
		return nil
	}

	insert := qb.InsertInto("broadcasters").Columns("fixture_id", "country", "channel")
	for _, b := range entries {
		insert.Values(fixtureID, b.Country, b.Channel)
	}
	query, args, err = insert.
		Suffix("ON CONFLICT(fixture_id, country, channel) DO NOTHING").
		ToSQL()
	if err != nil {
		return fmt.Errorf("build broadcaster insert query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert broadcasters for fixture %d: %w", fixtureID, err)
	}
	return nil
}

// BulkUpsert applies Upsert per record. A failing record is counted and
// logged at debug; the rest of the batch proceeds.
func (r *FixtureRepository) BulkUpsert(ctx context.Context, fixtures []fixture.Fixture) (fixture.UpsertCounts, error) {
	var counts fixture.UpsertCounts

	for _, f := range fixtures {
		existing, err := r.findIDByKey(ctx, f)
		if err != nil {
			counts.Failed++
			r.logger.Debug("bulk upsert key lookup failed", "fixture", f.String(), "error", err)
			continue
		}

		if _, err := r.Upsert(ctx, f); err != nil {
			counts.Failed++
			r.logger.Debug("bulk upsert record failed", "fixture", f.String(), "error", err)
			continue
		}

		if existing > 0 {
			counts.Updated++
		} else {
			counts.Inserted++
		}
	}

	return counts, nil
}

func (r *FixtureRepository) findIDByKey(ctx context.Context, f fixture.Fixture) (int64, error) {
	query, args, err := qb.Select("id").From("fixtures").
		Where(
			qb.Eq("home_team", f.HomeTeam),
			qb.Eq("away_team", f.AwayTeam),
			qb.Eq("competition", f.Competition),
			qb.Eq("fixture_date", f.DateString()),
		).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build fixture key lookup query: %w", err)
	}

	var id int64
	if err := r.db.GetContext(ctx, &id, query, args...); err != nil {
		if isNotFound(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("lookup fixture by key: %w", err)
	}
	return id, nil
}

// Query returns matching fixtures with their broadcaster sets, ordered by
// date then time. Country matches broadcaster country values
// case-insensitively as a substring.
func (r *FixtureRepository) Query(ctx context.Context, filter fixture.QueryFilter) ([]fixture.Fixture, error) {
	builder := qb.Select("DISTINCT f.id", "f.home_team", "f.away_team", "f.competition",
		"f.fixture_date", "f.fixture_time", "f.venue", "f.scraped_at", "f.last_updated").
		From("fixtures f")

	if filter.Country != "" {
		builder.Join("broadcasters b ON b.fixture_id = f.id").
			Where(qb.Like("UPPER(b.country)", "%"+strings.ToUpper(filter.Country)+"%"))
	}
	if filter.Date != nil {
		builder.Where(qb.Eq("f.fixture_date", filter.Date.Format(fixture.DateLayout)))
	}
	if filter.Competition != "" {
		builder.Where(qb.Eq("f.competition", filter.Competition))
	}

	query, args, err := builder.
		OrderBy("f.fixture_date", "f.fixture_time").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build fixture query: %w", err)
	}

	var rows []fixtureTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select fixtures: %w", err)
	}

	out := make([]fixture.Fixture, 0, len(rows))
	for _, row := range rows {
		f := row.toDomain()
		broadcasters, err := r.broadcastersFor(ctx, row.ID)
		if err != nil {
			return nil, err
		}
		f.Broadcasters = broadcasters
		out = append(out, f)
	}
	return out, nil
}

func (r *FixtureRepository) broadcastersFor(ctx context.Context, fixtureID int64) ([]fixture.Broadcaster, error) {
	query, args, err := qb.Select("country", "channel").
		From("broadcasters").
		Where(qb.Eq("fixture_id", fixtureID)).
		OrderBy("country", "channel").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build broadcaster query: %w", err)
	}

	var rows []broadcasterTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select broadcasters for fixture %d: %w", fixtureID, err)
	}

	out := make([]fixture.Broadcaster, 0, len(rows))
	for _, row := range rows {
		out = append(out, fixture.Broadcaster{Country: row.Country, Channel: row.Channel})
	}
	return out, nil
}

// DetectDuplicates counts natural-key groups with more than one member.
// Non-empty output means a uniqueness constraint has been bypassed.
func (r *FixtureRepository) DetectDuplicates(ctx context.Context) (fixture.DuplicateReport, error) {
	var report fixture.DuplicateReport

	fixtureGroups, err := r.countGroups(ctx,
		"fixtures", []string{"home_team", "away_team", "competition", "fixture_date"})
	if err != nil {
		return report, err
	}
	broadcasterGroups, err := r.countGroups(ctx,
		"broadcasters", []string{"fixture_id", "country", "channel"})
	if err != nil {
		return report, err
	}

	report.FixtureGroups = fixtureGroups
	report.BroadcasterGroups = broadcasterGroups
	return report, nil
}

func (r *FixtureRepository) countGroups(ctx context.Context, table string, key []string) (int, error) {
	inner, _, err := qb.Select(key[0]).From(table).
		GroupBy(key...).
		Having("COUNT(*) > 1").
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build duplicate scan for %s: %w", table, err)
	}

	var count int
	query := "SELECT COUNT(*) FROM (" + inner + ")"
	if err := r.db.GetContext(ctx, &count, query); err != nil {
		return 0, fmt.Errorf("scan duplicates in %s: %w", table, err)
	}
	return count, nil
}

// RemoveDuplicates keeps the highest-id row per offending natural-key group.
// Fixture deletion cascades to broadcasters.
func (r *FixtureRepository) RemoveDuplicates(ctx context.Context) (int64, int64, error) {
	const deleteFixtureDupes = `
DELETE FROM fixtures
WHERE id NOT IN (
    SELECT MAX(id) FROM fixtures
    GROUP BY home_team, away_team, competition, fixture_date
)`
	res, err := r.db.ExecContext(ctx, deleteFixtureDupes)
	if err != nil {
		return 0, 0, fmt.Errorf("remove duplicate fixtures: %w", err)
	}
	fixturesDeleted, _ := res.RowsAffected()

	const deleteBroadcasterDupes = `
DELETE FROM broadcasters
WHERE id NOT IN (
    SELECT MAX(id) FROM broadcasters
    GROUP BY fixture_id, country, channel
)`
	res, err = r.db.ExecContext(ctx, deleteBroadcasterDupes)
	if err != nil {
		return 0, 0, fmt.Errorf("remove duplicate broadcasters: %w", err)
	}
	broadcastersDeleted, _ := res.RowsAffected()

	return fixturesDeleted, broadcastersDeleted, nil
}

// PruneOlderThan deletes fixtures dated strictly before now minus days,
// cascading their broadcasters.
func (r *FixtureRepository) PruneOlderThan(ctx context.Context, days int) (int64, error) {
	cutoff := r.now().UTC().AddDate(0, 0, -days).Format(fixture.DateLayout)

	query, args, err := qb.DeleteFrom("fixtures").
		Where(qb.Lt("fixture_date", cutoff)).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build prune query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("prune fixtures older than %s: %w", cutoff, err)
	}
	deleted, _ := res.RowsAffected()
	return deleted, nil
}

// RecordRun appends one audit row.
func (r *FixtureRepository) RecordRun(ctx context.Context, run fixture.ScrapeRun) error {
	runAt := run.RunAt
	if runAt.IsZero() {
		runAt = r.now()
	}
	runDate := run.Date
	if runDate.IsZero() {
		runDate = runAt
	}

	query, args, err := qb.InsertInto("scrape_runs").
		Columns("run_date", "run_at", "fixtures_count", "source", "status").
		Values(
			runDate.UTC().Format(fixture.DateLayout),
			runAt.UTC().Format(timestampLayout),
			run.FixturesCount,
			run.Source,
			run.Status,
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build scrape run insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("record scrape run: %w", err)
	}
	return nil
}

func (r *FixtureRepository) RecentRuns(ctx context.Context, limit int) ([]fixture.ScrapeRun, error) {
	if limit <= 0 {
		limit = 10
	}

	query, args, err := qb.Select("id", "run_date", "run_at", "fixtures_count", "source", "status").
		From("scrape_runs").
		OrderBy("run_at DESC", "id DESC").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build recent runs query: %w", err)
	}

	var rows []scrapeRunTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select recent runs: %w", err)
	}

	out := make([]fixture.ScrapeRun, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

// Stats aggregates the stored dataset for reporting.
func (r *FixtureRepository) Stats(ctx context.Context) (fixture.Stats, error) {
	stats := fixture.Stats{ByCompetition: map[string]int{}}

	if err := r.db.GetContext(ctx, &stats.TotalFixtures, "SELECT COUNT(*) FROM fixtures"); err != nil {
		return stats, fmt.Errorf("count fixtures: %w", err)
	}
	if err := r.db.GetContext(ctx, &stats.TotalBroadcasters, "SELECT COUNT(*) FROM broadcasters"); err != nil {
		return stats, fmt.Errorf("count broadcasters: %w", err)
	}
	if err := r.db.GetContext(ctx, &stats.UniqueCountries, "SELECT COUNT(DISTINCT country) FROM broadcasters"); err != nil {
		return stats, fmt.Errorf("count countries: %w", err)
	}

	type competitionCount struct {
		Competition string `db:"competition"`
		Count       int    `db:"count"`
	}
	var byCompetition []competitionCount
	query, _, err := qb.Select("competition", "COUNT(*) AS count").
		From("fixtures").
		GroupBy("competition").
		OrderBy("competition").
		ToSQL()
	if err != nil {
		return stats, fmt.Errorf("build competition counts query: %w", err)
	}
	if err := r.db.SelectContext(ctx, &byCompetition, query); err != nil {
		return stats, fmt.Errorf("count fixtures by competition: %w", err)
	}
	for _, row := range byCompetition {
		stats.ByCompetition[row.Competition] = row.Count
	}

	type dateRange struct {
		Min sql.NullString `db:"min_date"`
		Max sql.NullString `db:"max_date"`
	}
	var dr dateRange
	if err := r.db.GetContext(ctx, &dr,
		"SELECT MIN(fixture_date) AS min_date, MAX(fixture_date) AS max_date FROM fixtures"); err != nil {
		return stats, fmt.Errorf("fixture date range: %w", err)
	}
	stats.EarliestDate = dr.Min.String
	stats.LatestDate = dr.Max.String

	runs, err := r.RecentRuns(ctx, 1)
	if err != nil {
		return stats, err
	}
	if len(runs) > 0 {
		stats.LastRun = &runs[0]
	}

	return stats, nil
}

func validateRecord(f fixture.Fixture) error {
	if strings.TrimSpace(f.HomeTeam) == "" || strings.TrimSpace(f.AwayTeam) == "" {
		return fmt.Errorf("fixture teams are required")
	}
	if strings.TrimSpace(f.Competition) == "" {
		return fmt.Errorf("fixture competition is required")
	}
	if f.Date.IsZero() {
		return fmt.Errorf("fixture date is required")
	}
	return nil
}
