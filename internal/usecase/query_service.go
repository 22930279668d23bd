package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"github.com/riskibarqy/soccer-fixtures/internal/domain/broadcast"
	"github.com/riskibarqy/soccer-fixtures/internal/domain/fixture"
	"github.com/riskibarqy/soccer-fixtures/internal/platform/logging"
)

type QueryService struct {
	repo   fixture.Repository
	logger *logging.Logger
	now    func() time.Time
}

func NewQueryService(repo fixture.Repository, logger *logging.Logger) *QueryService {
	if logger == nil {
		logger = logging.Default()
	}
	return &QueryService{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// On returns the fixtures scheduled on the given calendar day.
func (s *QueryService) On(ctx context.Context, date time.Time) ([]fixture.Fixture, error) {
	if date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	out, err := s.repo.Query(ctx, fixture.QueryFilter{Date: &date})
	if err != nil {
		return nil, fmt.Errorf("query fixtures on %s: %w", date.Format(fixture.DateLayout), err)
	}
	return out, nil
}

// Today and Tomorrow are date shorthands relative to the current day.
func (s *QueryService) Today(ctx context.Context) ([]fixture.Fixture, error) {
	return s.On(ctx, s.now().UTC())
}

func (s *QueryService) Tomorrow(ctx context.Context) ([]fixture.Fixture, error) {
	return s.On(ctx, s.now().UTC().AddDate(0, 0, 1))
}

// ByCountry returns fixtures with at least one broadcaster in a matching
// country. Matching is case-insensitive on a substring.
func (s *QueryService) ByCountry(ctx context.Context, country string) ([]fixture.Fixture, error) {
	country = strings.TrimSpace(country)
	if country == "" {
		return nil, fmt.Errorf("%w: country is required", ErrInvalidInput)
	}
	out, err := s.repo.Query(ctx, fixture.QueryFilter{Country: country})
	if err != nil {
		return nil, fmt.Errorf("query fixtures by country %q: %w", country, err)
	}
	return out, nil
}

func (s *QueryService) ByCompetition(ctx context.Context, competition string) ([]fixture.Fixture, error) {
	competition = strings.TrimSpace(competition)
	if competition == "" {
		return nil, fmt.Errorf("%w: competition is required", ErrInvalidInput)
	}
	out, err := s.repo.Query(ctx, fixture.QueryFilter{Competition: competition})
	if err != nil {
		return nil, fmt.Errorf("query fixtures by competition %q: %w", competition, err)
	}
	return out, nil
}

func (s *QueryService) Stats(ctx context.Context) (fixture.Stats, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return fixture.Stats{}, fmt.Errorf("load stats: %w", err)
	}
	return stats, nil
}

// CountryGroup is one country's slice of a fixture list, for display grouped
// by broadcast coverage.
type CountryGroup struct {
	Country  string
	Fixtures []fixture.Fixture
}

// GroupByCountry buckets fixtures under each country that broadcasts them.
// A fixture covered in several countries appears in each bucket; fixtures
// with no resolved coverage land under the unresolved marker. Groups are
// sorted alphabetically, the unresolved marker last.
func GroupByCountry(fixtures []fixture.Fixture) []CountryGroup {
	buckets := make(map[string][]fixture.Fixture)
	for _, f := range fixtures {
		countries := make(map[string]struct{})
		for _, b := range f.Broadcasters {
			country := b.Country
			if !broadcast.Resolved(country) {
				country = broadcast.CountryForChannel(b.Channel)
			}
			countries[country] = struct{}{}
		}
		if len(countries) == 0 {
			countries[broadcast.CountryVarious] = struct{}{}
		}
		for country := range countries {
			buckets[country] = append(buckets[country], f)
		}
	}

	out := make([]CountryGroup, 0, len(buckets))
	for country, items := range buckets {
		out = append(out, CountryGroup{Country: country, Fixtures: items})
	}
	sort.Slice(out, func(i, j int) bool {
		if (out[i].Country == broadcast.CountryVarious) != (out[j].Country == broadcast.CountryVarious) {
			return out[j].Country == broadcast.CountryVarious
		}
		return out[i].Country < out[j].Country
	})
	return out
}

type exportBroadcaster struct {
	Country string `json:"country"`
	Channel string `json:"channel"`
}

type exportFixture struct {
	HomeTeam     string              `json:"home_team"`
	AwayTeam     string              `json:"away_team"`
	Competition  string              `json:"competition"`
	Date         string              `json:"date"`
	Time         string              `json:"time"`
	Venue        string              `json:"venue,omitempty"`
	Broadcasters []exportBroadcaster `json:"broadcasters"`
}

type exportDocument struct {
	GeneratedAt string          `json:"generated_at"`
	Count       int             `json:"count"`
	Fixtures    []exportFixture `json:"fixtures"`
}

// ExportJSON renders the matching fixtures as a pretty-printed JSON document.
func (s *QueryService) ExportJSON(ctx context.Context, filter fixture.QueryFilter) ([]byte, error) {
	fixtures, err := s.repo.Query(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("query fixtures for export: %w", err)
	}

	doc := exportDocument{
		GeneratedAt: s.now().UTC().Format(time.RFC3339),
		Count:       len(fixtures),
		Fixtures:    make([]exportFixture, 0, len(fixtures)),
	}
	for _, f := range fixtures {
		row := exportFixture{
			HomeTeam:     f.HomeTeam,
			AwayTeam:     f.AwayTeam,
			Competition:  f.Competition,
			Date:         f.DateString(),
			Time:         f.Time,
			Venue:        f.Venue,
			Broadcasters: make([]exportBroadcaster, 0, len(f.Broadcasters)),
		}
		for _, b := range f.Broadcasters {
			row.Broadcasters = append(row.Broadcasters, exportBroadcaster{
				Country: b.Country,
				Channel: b.Channel,
			})
		}
		doc.Fixtures = append(doc.Fixtures, row)
	}

	payload, err := sonic.ConfigDefault.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal export document: %w", err)
	}
	return payload, nil
}
