package cli

import (
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/riskibarqy/soccer-fixtures/internal/domain/fixture"
	"github.com/riskibarqy/soccer-fixtures/internal/usecase"
)

func printScrapeResult(cmd *cobra.Command, result usecase.ScrapeResult) {
	cmd.Printf("Scrape %s: %s\n", result.Date, result.Status)
	for _, league := range result.Leagues {
		if league.Error != "" {
			cmd.Printf("  %-40s failed: %s\n", league.Competition, league.Error)
			continue
		}
		if league.Strategy == "" {
			cmd.Printf("  %-40s no fixtures found\n", league.Competition)
			continue
		}
		cmd.Printf("  %-40s %d fixtures (%s)\n", league.Competition, league.Records, league.Strategy)
	}
	cmd.Printf("Stored: %d inserted, %d updated, %d failed, %d skipped\n",
		result.Counts.Inserted, result.Counts.Updated, result.Counts.Failed, result.Skipped)
}

func printFixtures(cmd *cobra.Command, fixtures []fixture.Fixture, byCountry bool) {
	if len(fixtures) == 0 {
		cmd.Println("No fixtures found.")
		return
	}

	if byCountry {
		for _, group := range usecase.GroupByCountry(fixtures) {
			cmd.Printf("%s\n", group.Country)
			for _, f := range group.Fixtures {
				printFixtureLine(cmd, f, "  ")
			}
		}
		return
	}

	for _, f := range fixtures {
		printFixtureLine(cmd, f, "")
	}
}

func printFixtureLine(cmd *cobra.Command, f fixture.Fixture, indent string) {
	line := indent + f.DateString() + " " + f.Time + "  " + f.HomeTeam + " vs " + f.AwayTeam + "  [" + f.Competition + "]"
	if f.Venue != "" {
		line += " @ " + f.Venue
	}
	cmd.Println(line)

	if len(f.Broadcasters) == 0 {
		return
	}
	channels := make([]string, 0, len(f.Broadcasters))
	for _, b := range f.Broadcasters {
		channels = append(channels, b.Channel+" ("+b.Country+")")
	}
	cmd.Println(indent + "    TV: " + strings.Join(channels, ", "))
}

func printStats(cmd *cobra.Command, stats fixture.Stats) {
	cmd.Printf("Fixtures:      %d\n", stats.TotalFixtures)
	cmd.Printf("Broadcasters:  %d\n", stats.TotalBroadcasters)
	cmd.Printf("Countries:     %d\n", stats.UniqueCountries)
	if stats.EarliestDate != "" {
		cmd.Printf("Date range:    %s to %s\n", stats.EarliestDate, stats.LatestDate)
	}
	if len(stats.ByCompetition) > 0 {
		cmd.Println("By competition:")
		for _, competition := range sortedKeys(stats.ByCompetition) {
			cmd.Printf("  %-40s %d\n", competition, stats.ByCompetition[competition])
		}
	}
	if stats.LastRun != nil {
		cmd.Printf("Last run:      %s (%s, %d fixtures, source %s)\n",
			stats.LastRun.RunAt.Format("2006-01-02 15:04:05"),
			stats.LastRun.Status,
			stats.LastRun.FixturesCount,
			stats.LastRun.Source)
	}
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
