package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/soccer-fixtures/internal/platform/logging"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDev, cfg.AppEnv)
	assert.Equal(t, "soccer-fixtures", cfg.ServiceName)
	assert.Equal(t, "fixtures.db", cfg.DBPath)
	assert.Equal(t, "https://www.livesoccertv.com", cfg.ScrapeBaseURL)
	assert.Equal(t, 20*time.Second, cfg.ScrapeTimeout)
	assert.Equal(t, 2, cfg.ScrapeMaxRetries)
	assert.Equal(t, 2*time.Second, cfg.ScrapePacingDelay)
	assert.True(t, cfg.ScrapeCircuitEnabled)
	assert.Equal(t, 4, cfg.ParseWorkers)
	assert.Equal(t, 30, cfg.PruneRetentionDays)
	assert.Equal(t, logging.LevelInfo, cfg.LogLevel)

	require.NotEmpty(t, cfg.Leagues)
	assert.Equal(t, League{Slug: "england/premier-league", Name: "Premier League"}, cfg.Leagues[0])
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("DB_PATH", "/var/lib/fixtures/fixtures.db")
	t.Setenv("SCRAPE_LEAGUES", "england/premier-league=Premier League,spain/la-liga=La Liga")
	t.Setenv("SCRAPE_PACING_DELAY", "500ms")
	t.Setenv("SCRAPE_PARSE_WORKERS", "8")
	t.Setenv("APP_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvProd, cfg.AppEnv)
	assert.Equal(t, "/var/lib/fixtures/fixtures.db", cfg.DBPath)
	require.Len(t, cfg.Leagues, 2)
	assert.Equal(t, "spain/la-liga", cfg.Leagues[1].Slug)
	assert.Equal(t, 500*time.Millisecond, cfg.ScrapePacingDelay)
	assert.Equal(t, 8, cfg.ParseWorkers)
	assert.Equal(t, logging.LevelDebug, cfg.LogLevel)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad app env", "APP_ENV", "production"},
		{"bad league item", "SCRAPE_LEAGUES", "premier-league"},
		{"duplicate league slug", "SCRAPE_LEAGUES", "a=A,a=B"},
		{"zero timeout", "SCRAPE_TIMEOUT", "0s"},
		{"negative retries", "SCRAPE_MAX_RETRIES", "-1"},
		{"zero workers", "SCRAPE_PARSE_WORKERS", "0"},
		{"zero retention", "PRUNE_RETENTION_DAYS", "0"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestParseLeaguesPreservesOrder(t *testing.T) {
	leagues, err := parseLeagues("b/two=Two, a/one=One ,c/three=Three")
	require.NoError(t, err)
	require.Len(t, leagues, 3)
	assert.Equal(t, "b/two", leagues[0].Slug)
	assert.Equal(t, "a/one", leagues[1].Slug)
	assert.Equal(t, "c/three", leagues[2].Slug)
}
