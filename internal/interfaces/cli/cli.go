// Package cli defines the fixtures command tree.
package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/riskibarqy/soccer-fixtures/internal/app"
	"github.com/riskibarqy/soccer-fixtures/internal/config"
	"github.com/riskibarqy/soccer-fixtures/internal/domain/fixture"
	"github.com/riskibarqy/soccer-fixtures/internal/platform/logging"
	"github.com/riskibarqy/soccer-fixtures/internal/usecase"
)

// NewRootCmd builds the command tree. The application is wired once in the
// root's PersistentPreRunE and torn down in PersistentPostRunE, so every
// subcommand shares one database handle. Flag storage is local to each
// command.
func NewRootCmd() *cobra.Command {
	var application *app.App

	root := &cobra.Command{
		Use:           "fixtures",
		Short:         "Scrape, store and query soccer fixtures with TV coverage",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}

			logger := logging.NewJSON(cfg.LogLevel)
			logging.SetDefault(logger)

			application, err = app.New(cfg, logger)
			if err != nil {
				return err
			}
			return nil
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			if application == nil {
				return nil
			}
			return application.Close()
		},
	}

	var scrapeDate string
	scrapeCmd := &cobra.Command{
		Use:   "scrape",
		Short: "Fetch configured competition pages and store their fixtures",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			input := usecase.ScrapeInput{}
			if scrapeDate != "" {
				date, err := time.Parse(fixture.DateLayout, scrapeDate)
				if err != nil {
					return fmt.Errorf("parse --date: %w", err)
				}
				input.Date = date
			}

			result, err := application.Scraper.Run(cmd.Context(), input)
			if err != nil {
				return err
			}
			printScrapeResult(cmd, result)
			if result.Status == fixture.RunStatusError {
				return fmt.Errorf("no competition page could be fetched")
			}
			return nil
		},
	}
	scrapeCmd.Flags().StringVar(&scrapeDate, "date", "", "Reference date (YYYY-MM-DD, default today)")

	var todayByCountry bool
	todayCmd := &cobra.Command{
		Use:   "today",
		Short: "Show fixtures scheduled today",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fixtures, err := application.Queries.Today(cmd.Context())
			if err != nil {
				return err
			}
			printFixtures(cmd, fixtures, todayByCountry)
			return nil
		},
	}
	todayCmd.Flags().BoolVar(&todayByCountry, "by-country", false, "Group output by broadcast country")

	var tomorrowByCountry bool
	tomorrowCmd := &cobra.Command{
		Use:   "tomorrow",
		Short: "Show fixtures scheduled tomorrow",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fixtures, err := application.Queries.Tomorrow(cmd.Context())
			if err != nil {
				return err
			}
			printFixtures(cmd, fixtures, tomorrowByCountry)
			return nil
		},
	}
	tomorrowCmd.Flags().BoolVar(&tomorrowByCountry, "by-country", false, "Group output by broadcast country")

	countryCmd := &cobra.Command{
		Use:   "country <name>",
		Short: "Show fixtures with TV coverage in a country",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fixtures, err := application.Queries.ByCountry(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printFixtures(cmd, fixtures, false)
			return nil
		},
	}

	competitionCmd := &cobra.Command{
		Use:   "competition <name>",
		Short: "Show fixtures in one competition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fixtures, err := application.Queries.ByCompetition(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printFixtures(cmd, fixtures, false)
			return nil
		},
	}

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show dataset statistics and the last scrape run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			stats, err := application.Queries.Stats(cmd.Context())
			if err != nil {
				return err
			}
			printStats(cmd, stats)
			return nil
		},
	}

	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Scan the store for duplicate rows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			report, err := application.Maintenance.Check(cmd.Context())
			if err != nil {
				return err
			}
			if !report.HasDuplicates() {
				cmd.Println("No duplicates found.")
				return nil
			}
			cmd.Printf("Duplicate groups: %d fixtures, %d broadcasters. Run 'fixtures clean' to remove them.\n",
				report.FixtureGroups, report.BroadcasterGroups)
			return nil
		},
	}

	var cleanPruneDays int
	cleanCmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove duplicate rows and optionally prune old fixtures",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			result, err := application.Maintenance.Clean(cmd.Context())
			if err != nil {
				return err
			}
			cmd.Printf("Removed %d duplicate fixtures and %d duplicate broadcasters.\n",
				result.FixturesDeleted, result.BroadcastersDeleted)

			if cleanPruneDays > 0 {
				pruned, err := application.Maintenance.Prune(cmd.Context(), cleanPruneDays)
				if err != nil {
					return err
				}
				cmd.Printf("Pruned %d fixtures older than %d days.\n", pruned, cleanPruneDays)
			}
			return nil
		},
	}
	cleanCmd.Flags().IntVar(&cleanPruneDays, "prune-days", 0, "Also prune fixtures older than this many days")

	var exportDate, exportCountry, exportCompetition string
	exportCmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Export fixtures as JSON to a file, or stdout when no file is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := fixture.QueryFilter{
				Country:     exportCountry,
				Competition: exportCompetition,
			}
			if exportDate != "" {
				date, err := time.Parse(fixture.DateLayout, exportDate)
				if err != nil {
					return fmt.Errorf("parse --date: %w", err)
				}
				filter.Date = &date
			}

			payload, err := application.Queries.ExportJSON(cmd.Context(), filter)
			if err != nil {
				return err
			}

			if len(args) == 0 {
				cmd.Println(string(payload))
				return nil
			}
			if err := os.WriteFile(args[0], append(payload, '\n'), 0o644); err != nil {
				return fmt.Errorf("write export file: %w", err)
			}
			cmd.Printf("Wrote %s\n", args[0])
			return nil
		},
	}
	exportCmd.Flags().StringVar(&exportDate, "date", "", "Only fixtures on this date (YYYY-MM-DD)")
	exportCmd.Flags().StringVar(&exportCountry, "country", "", "Only fixtures with coverage in this country")
	exportCmd.Flags().StringVar(&exportCompetition, "competition", "", "Only fixtures in this competition")

	root.AddCommand(
		scrapeCmd,
		todayCmd,
		tomorrowCmd,
		countryCmd,
		competitionCmd,
		statsCmd,
		checkCmd,
		cleanCmd,
		exportCmd,
	)
	return root
}
