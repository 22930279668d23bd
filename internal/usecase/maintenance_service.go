package usecase

import (
	"context"
	"fmt"

	"github.com/riskibarqy/soccer-fixtures/internal/domain/fixture"
	"github.com/riskibarqy/soccer-fixtures/internal/platform/logging"
)

// MaintenanceService owns integrity checks and destructive cleanup of the
// fixture store.
type MaintenanceService struct {
	repo   fixture.Repository
	logger *logging.Logger
}

func NewMaintenanceService(repo fixture.Repository, logger *logging.Logger) *MaintenanceService {
	if logger == nil {
		logger = logging.Default()
	}
	return &MaintenanceService{repo: repo, logger: logger}
}

// Check scans for natural-key duplicates without modifying anything.
func (s *MaintenanceService) Check(ctx context.Context) (fixture.DuplicateReport, error) {
	report, err := s.repo.DetectDuplicates(ctx)
	if err != nil {
		return fixture.DuplicateReport{}, fmt.Errorf("detect duplicates: %w", err)
	}
	if report.HasDuplicates() {
		s.logger.Warn("duplicate rows detected",
			"fixture_groups", report.FixtureGroups,
			"broadcaster_groups", report.BroadcasterGroups)
	}
	return report, nil
}

type CleanResult struct {
	FixturesDeleted     int64 `json:"fixtures_deleted"`
	BroadcastersDeleted int64 `json:"broadcasters_deleted"`
}

// Clean removes duplicate rows, keeping the newest of each group.
func (s *MaintenanceService) Clean(ctx context.Context) (CleanResult, error) {
	fixturesDeleted, broadcastersDeleted, err := s.repo.RemoveDuplicates(ctx)
	if err != nil {
		return CleanResult{}, fmt.Errorf("remove duplicates: %w", err)
	}
	if fixturesDeleted > 0 || broadcastersDeleted > 0 {
		s.logger.Info("duplicates removed",
			"fixtures", fixturesDeleted, "broadcasters", broadcastersDeleted)
	}
	return CleanResult{
		FixturesDeleted:     fixturesDeleted,
		BroadcastersDeleted: broadcastersDeleted,
	}, nil
}

// Prune deletes fixtures older than the retention window.
func (s *MaintenanceService) Prune(ctx context.Context, days int) (int64, error) {
	if days <= 0 {
		return 0, fmt.Errorf("%w: retention days must be greater than zero", ErrInvalidInput)
	}
	deleted, err := s.repo.PruneOlderThan(ctx, days)
	if err != nil {
		return 0, fmt.Errorf("prune fixtures: %w", err)
	}
	if deleted > 0 {
		s.logger.Info("old fixtures pruned", "deleted", deleted, "retention_days", days)
	}
	return deleted, nil
}
