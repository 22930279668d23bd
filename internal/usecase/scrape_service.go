package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-playground/validator/v10"
	"github.com/panjf2000/ants/v2"

	"github.com/riskibarqy/soccer-fixtures/internal/domain/broadcast"
	"github.com/riskibarqy/soccer-fixtures/internal/domain/fixture"
	"github.com/riskibarqy/soccer-fixtures/internal/extract"
	"github.com/riskibarqy/soccer-fixtures/internal/normalize"
	"github.com/riskibarqy/soccer-fixtures/internal/platform/logging"
)

// League is one competition page to scrape: the site's URL slug and the
// competition name stored on its fixtures.
type League struct {
	Slug string
	Name string
}

// DocumentSource fetches one competition page as parsed markup.
type DocumentSource interface {
	CompetitionPage(ctx context.Context, slug string) (*goquery.Document, error)
}

type ScrapeService struct {
	source       DocumentSource
	repo         fixture.Repository
	leagues      []League
	parseWorkers int
	sourceName   string
	validate     *validator.Validate
	logger       *logging.Logger
	now          func() time.Time
}

func NewScrapeService(
	source DocumentSource,
	repo fixture.Repository,
	leagues []League,
	parseWorkers int,
	sourceName string,
	logger *logging.Logger,
) *ScrapeService {
	if logger == nil {
		logger = logging.Default()
	}
	if parseWorkers <= 0 {
		parseWorkers = 1
	}
	if sourceName == "" {
		sourceName = "livesoccertv"
	}
	return &ScrapeService{
		source:       source,
		repo:         repo,
		leagues:      leagues,
		parseWorkers: parseWorkers,
		sourceName:   sourceName,
		validate:     validator.New(),
		logger:       logger,
		now:          time.Now,
	}
}

type ScrapeInput struct {
	// Date anchors relative date text and the ingestion window. Zero means
	// the current day.
	Date time.Time
}

type ScrapeResult struct {
	Date    string               `json:"date"`
	Status  string               `json:"status"`
	Counts  fixture.UpsertCounts `json:"counts"`
	Skipped int                  `json:"skipped"`
	Leagues []LeagueResult       `json:"leagues"`
}

// LeagueResult describes how one competition page was read.
type LeagueResult struct {
	Slug        string `json:"slug"`
	Competition string `json:"competition"`
	Strategy    string `json:"strategy,omitempty"`
	Candidates  int    `json:"candidates"`
	Records     int    `json:"records"`
	Skipped     int    `json:"skipped"`
	Error       string `json:"error,omitempty"`
}

// Run fetches every configured competition page, extracts and normalizes
// fixture records, and upserts them. Pages are fetched one at a time; parsing
// runs on a bounded worker pool. A failing page or record never aborts the
// run, and the outcome is recorded in the audit log regardless.
func (s *ScrapeService) Run(ctx context.Context, input ScrapeInput) (ScrapeResult, error) {
	if s.source == nil || s.repo == nil {
		return ScrapeResult{}, fmt.Errorf("%w: scrape service is not fully configured", ErrDependencyUnavailable)
	}
	if len(s.leagues) == 0 {
		return ScrapeResult{}, fmt.Errorf("%w: at least one league is required", ErrInvalidInput)
	}

	reference := input.Date
	if reference.IsZero() {
		reference = s.now().UTC()
	}

	type fetched struct {
		league League
		doc    *goquery.Document
	}
	docs := make([]fetched, 0, len(s.leagues))
	leagueResults := make(map[string]*LeagueResult, len(s.leagues))
	for _, league := range s.leagues {
		leagueResults[league.Slug] = &LeagueResult{Slug: league.Slug, Competition: league.Name}

		doc, err := s.source.CompetitionPage(ctx, league.Slug)
		if err != nil {
			leagueResults[league.Slug].Error = err.Error()
			s.logger.Warn("competition page fetch failed", "slug", league.Slug, "error", err)
			continue
		}
		docs = append(docs, fetched{league: league, doc: doc})
	}

	var (
		mu      sync.Mutex
		records []fixture.Fixture
	)

	workerCount := s.parseWorkers
	if workerCount > len(docs) && len(docs) > 0 {
		workerCount = len(docs)
	}
	if len(docs) > 0 {
		pool, err := ants.NewPool(workerCount)
		if err != nil {
			return ScrapeResult{}, fmt.Errorf("create parse pool: %w", err)
		}
		defer pool.Release()

		var workers sync.WaitGroup
		for _, item := range docs {
			item := item
			workers.Add(1)
			if err := pool.Submit(func() {
				defer workers.Done()

				built, report := s.parseDocument(item.doc, item.league, reference)

				mu.Lock()
				records = append(records, built...)
				row := leagueResults[item.league.Slug]
				row.Strategy = report.Strategy
				row.Candidates = report.Candidates
				row.Records = report.Records
				row.Skipped = report.Skipped
				mu.Unlock()
			}); err != nil {
				workers.Done()
				return ScrapeResult{}, fmt.Errorf("submit parse task: %w", err)
			}
		}
		workers.Wait()
	}

	result := ScrapeResult{Date: reference.Format(fixture.DateLayout)}
	for _, league := range s.leagues {
		row := leagueResults[league.Slug]
		result.Skipped += row.Skipped
		result.Leagues = append(result.Leagues, *row)
	}

	if len(records) > 0 {
		counts, err := s.repo.BulkUpsert(ctx, records)
		if err != nil {
			s.recordRun(ctx, reference, 0, fixture.RunStatusError)
			return ScrapeResult{}, fmt.Errorf("store scraped fixtures: %w", err)
		}
		result.Counts = counts
	}

	switch {
	case ctx.Err() != nil:
		result.Status = fixture.RunStatusInterrupted
	case len(docs) == 0:
		result.Status = fixture.RunStatusError
	case result.Counts.Total() == 0:
		result.Status = fixture.RunStatusNoData
	default:
		result.Status = fixture.RunStatusSuccess
	}
	s.recordRun(ctx, reference, result.Counts.Total(), result.Status)

	return result, nil
}

// recordRun appends the audit row. Audit failures are logged and swallowed;
// they never fail a scrape that already stored its data.
func (s *ScrapeService) recordRun(ctx context.Context, reference time.Time, count int, status string) {
	// Interrupted runs still get their audit row.
	err := s.repo.RecordRun(context.WithoutCancel(ctx), fixture.ScrapeRun{
		Date:          reference,
		RunAt:         s.now(),
		FixturesCount: count,
		Source:        s.sourceName,
		Status:        status,
	})
	if err != nil {
		s.logger.Warn("scrape run audit write failed", "error", err)
	}
}

type parseReport struct {
	Strategy   string
	Candidates int
	Records    int
	Skipped    int
}

// parseDocument tries extraction strategies in priority order. A strategy
// wins when at least one of its candidate blocks builds into a valid record;
// candidates from losing strategies are discarded entirely.
func (s *ScrapeService) parseDocument(doc *goquery.Document, league League, reference time.Time) ([]fixture.Fixture, parseReport) {
	var report parseReport

	for _, strategy := range extract.Strategies() {
		candidates := strategy.Extract(doc)
		if len(candidates) == 0 {
			continue
		}

		records := make([]fixture.Fixture, 0, len(candidates))
		skipped := 0
		for _, candidate := range candidates {
			record, err := s.buildRecord(candidate, league.Name, reference)
			if err != nil {
				skipped++
				s.logger.Debug("candidate rejected",
					"slug", league.Slug, "strategy", strategy.Name(), "error", err)
				continue
			}
			records = append(records, record)
		}

		if len(records) == 0 {
			continue
		}

		report.Strategy = strategy.Name()
		report.Candidates = len(candidates)
		report.Records = len(records)
		report.Skipped = skipped
		return records, report
	}

	return nil, report
}

// buildRecord turns one raw candidate block into a validated fixture.
// Records with unreadable team names or date text, and records dated outside
// the reference month, are rejected.
func (s *ScrapeService) buildRecord(c extract.Candidate, competition string, reference time.Time) (fixture.Fixture, error) {
	var home, away string
	var err error
	if c.MatchText != "" {
		home, away, err = normalize.SplitTeams(c.MatchText)
		if err != nil {
			return fixture.Fixture{}, err
		}
	} else {
		home = normalize.Team(c.HomeText)
		away = normalize.Team(c.AwayText)
		if home == "" || away == "" {
			return fixture.Fixture{}, normalize.ErrUnsplittableTeams
		}
	}

	// A block with no date text belongs to the page date; non-empty text that
	// resolves to nothing rejects the block.
	date := midnightUTC(reference)
	if strings.TrimSpace(c.DateText) != "" {
		date, err = normalize.ResolveDate(c.DateText, reference)
		if err != nil {
			return fixture.Fixture{}, err
		}
	}

	start, end := normalize.MonthWindow(reference)
	if date.Before(start) || date.After(end) {
		return fixture.Fixture{}, fmt.Errorf("fixture date %s outside ingestion window", date.Format(fixture.DateLayout))
	}

	kickoff := strings.TrimSpace(c.TimeText)
	if kickoff == "" {
		kickoff = fixture.TimeUnknown
	}

	record := fixture.Fixture{
		HomeTeam:     home,
		AwayTeam:     away,
		Competition:  competition,
		Date:         date,
		Time:         kickoff,
		Venue:        strings.TrimSpace(c.VenueText),
		Broadcasters: buildBroadcasters(c.Channels),
		ScrapedAt:    s.now().UTC(),
	}
	if err := s.validate.Struct(record); err != nil {
		return fixture.Fixture{}, fmt.Errorf("validate record %s: %w", record, err)
	}
	return record, nil
}

// buildBroadcasters keeps the page's own country label, unresolved marker
// included. Classification from channel names happens on the read side, so
// the stored rows stay faithful to the markup.
func buildBroadcasters(channels []extract.Channel) []fixture.Broadcaster {
	seen := make(map[fixture.Broadcaster]struct{}, len(channels))
	out := make([]fixture.Broadcaster, 0, len(channels))
	for _, ch := range channels {
		name := strings.TrimSpace(ch.Name)
		if name == "" {
			continue
		}

		country := strings.TrimSpace(ch.CountryText)
		if country == "" {
			country = broadcast.CountryVarious
		}

		entry := fixture.Broadcaster{Country: country, Channel: name}
		if _, ok := seen[entry]; ok {
			continue
		}
		seen[entry] = struct{}{}
		out = append(out, entry)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Country != out[j].Country {
			return out[i].Country < out[j].Country
		}
		return out[i].Channel < out[j].Channel
	})
	return out
}

func midnightUTC(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
