// Package memory holds an in-memory fixture repository used by service tests
// and dry runs. Behavior mirrors the sqlite engine, minus persistence.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/riskibarqy/soccer-fixtures/internal/domain/fixture"
)

type FixtureRepository struct {
	mu       sync.RWMutex
	nextID   int64
	fixtures map[int64]fixture.Fixture
	runs     []fixture.ScrapeRun
	now      func() time.Time
}

func NewFixtureRepository() *FixtureRepository {
	return &FixtureRepository{
		nextID:   1,
		fixtures: make(map[int64]fixture.Fixture),
		now:      time.Now,
	}
}

var _ fixture.Repository = (*FixtureRepository)(nil)

func (r *FixtureRepository) Upsert(_ context.Context, f fixture.Fixture) (int64, error) {
	if strings.TrimSpace(f.HomeTeam) == "" || strings.TrimSpace(f.AwayTeam) == "" {
		return 0, fmt.Errorf("fixture teams are required")
	}
	if strings.TrimSpace(f.Competition) == "" {
		return 0, fmt.Errorf("fixture competition is required")
	}
	if f.Date.IsZero() {
		return 0, fmt.Errorf("fixture date is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.upsertLocked(f), nil
}

func (r *FixtureRepository) upsertLocked(f fixture.Fixture) int64 {
	now := r.now().UTC()
	if f.Time == "" {
		f.Time = fixture.TimeUnknown
	}
	f.LastUpdated = now
	if f.ScrapedAt.IsZero() {
		f.ScrapedAt = now
	}
	f.Broadcasters = dedupeBroadcasters(f.Broadcasters)

	for id, existing := range r.fixtures {
		if existing.Key() == f.Key() {
			f.ID = id
			f.ScrapedAt = existing.ScrapedAt
			r.fixtures[id] = f
			return id
		}
	}

	f.ID = r.nextID
	r.nextID++
	r.fixtures[f.ID] = f
	return f.ID
}

func dedupeBroadcasters(entries []fixture.Broadcaster) []fixture.Broadcaster {
	seen := make(map[fixture.Broadcaster]struct{}, len(entries))
	out := make([]fixture.Broadcaster, 0, len(entries))
	for _, b := range entries {
		if _, ok := seen[b]; ok {
			continue
		}
		seen[b] = struct{}{}
		out = append(out, b)
	}
	return out
}

func (r *FixtureRepository) BulkUpsert(ctx context.Context, fixtures []fixture.Fixture) (fixture.UpsertCounts, error) {
	var counts fixture.UpsertCounts
	for _, f := range fixtures {
		r.mu.RLock()
		existing := false
		for _, stored := range r.fixtures {
			if stored.Key() == f.Key() {
				existing = true
				break
			}
		}
		r.mu.RUnlock()

		if _, err := r.Upsert(ctx, f); err != nil {
			counts.Failed++
			continue
		}
		if existing {
			counts.Updated++
		} else {
			counts.Inserted++
		}
	}
	return counts, nil
}

func (r *FixtureRepository) Query(_ context.Context, filter fixture.QueryFilter) ([]fixture.Fixture, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]fixture.Fixture, 0, len(r.fixtures))
	for _, f := range r.fixtures {
		if filter.Date != nil && f.DateString() != filter.Date.Format(fixture.DateLayout) {
			continue
		}
		if filter.Competition != "" && f.Competition != filter.Competition {
			continue
		}
		if filter.Country != "" && !matchesCountry(f, filter.Country) {
			continue
		}
		out = append(out, f)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].DateString() != out[j].DateString() {
			return out[i].DateString() < out[j].DateString()
		}
		return out[i].Time < out[j].Time
	})
	return out, nil
}

func matchesCountry(f fixture.Fixture, country string) bool {
	needle := strings.ToUpper(country)
	for _, b := range f.Broadcasters {
		if strings.Contains(strings.ToUpper(b.Country), needle) {
			return true
		}
	}
	return false
}

// DetectDuplicates always reports a clean store. Upsert keys on the natural
// key, so the map cannot hold duplicate fixtures.
func (r *FixtureRepository) DetectDuplicates(_ context.Context) (fixture.DuplicateReport, error) {
	return fixture.DuplicateReport{}, nil
}

func (r *FixtureRepository) RemoveDuplicates(_ context.Context) (int64, int64, error) {
	return 0, 0, nil
}

func (r *FixtureRepository) PruneOlderThan(_ context.Context, days int) (int64, error) {
	cutoff := r.now().UTC().AddDate(0, 0, -days).Format(fixture.DateLayout)

	r.mu.Lock()
	defer r.mu.Unlock()

	var deleted int64
	for id, f := range r.fixtures {
		if f.DateString() < cutoff {
			delete(r.fixtures, id)
			deleted++
		}
	}
	return deleted, nil
}

func (r *FixtureRepository) RecordRun(_ context.Context, run fixture.ScrapeRun) error {
	if run.RunAt.IsZero() {
		run.RunAt = r.now()
	}
	if run.Date.IsZero() {
		run.Date = run.RunAt
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	run.ID = int64(len(r.runs) + 1)
	r.runs = append(r.runs, run)
	return nil
}

func (r *FixtureRepository) RecentRuns(_ context.Context, limit int) ([]fixture.ScrapeRun, error) {
	if limit <= 0 {
		limit = 10
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]fixture.ScrapeRun, 0, limit)
	for i := len(r.runs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.runs[i])
	}
	return out, nil
}

func (r *FixtureRepository) Stats(_ context.Context) (fixture.Stats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := fixture.Stats{ByCompetition: map[string]int{}}
	countries := make(map[string]struct{})

	for _, f := range r.fixtures {
		stats.TotalFixtures++
		stats.TotalBroadcasters += len(f.Broadcasters)
		stats.ByCompetition[f.Competition]++
		for _, b := range f.Broadcasters {
			countries[b.Country] = struct{}{}
		}

		date := f.DateString()
		if stats.EarliestDate == "" || date < stats.EarliestDate {
			stats.EarliestDate = date
		}
		if stats.LatestDate == "" || date > stats.LatestDate {
			stats.LatestDate = date
		}
	}
	stats.UniqueCountries = len(countries)

	if len(r.runs) > 0 {
		last := r.runs[len(r.runs)-1]
		stats.LastRun = &last
	}
	return stats, nil
}
