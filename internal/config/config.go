package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/soccer-fixtures/internal/platform/logging"
)

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

// defaultLeagues is the out-of-the-box scrape target list, in display order.
const defaultLeagues = "england/premier-league=Premier League," +
	"spain/la-liga=La Liga," +
	"italy/serie-a=Serie A," +
	"germany/bundesliga=Bundesliga," +
	"france/ligue-1=Ligue 1," +
	"international/uefa-champions-league=UEFA Champions League"

// League is one scrape target: the schedule site's URL slug and the
// competition name stored on its fixtures.
type League struct {
	Slug string
	Name string
}

// Config stores runtime configuration for the scraper.
type Config struct {
	AppEnv         string
	ServiceName    string
	ServiceVersion string

	DBPath string

	Leagues []League

	ScrapeBaseURL               string
	ScrapeUserAgent             string
	ScrapeTimeout               time.Duration
	ScrapeMaxRetries            int
	ScrapePacingDelay           time.Duration
	ScrapeCacheTTL              time.Duration
	ScrapeCircuitEnabled        bool
	ScrapeCircuitFailureCount   int
	ScrapeCircuitOpenTimeout    time.Duration
	ScrapeCircuitHalfOpenMaxReq int
	ParseWorkers                int

	PruneRetentionDays int
	LogLevel           logging.Level
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	leagues, err := parseLeagues(getEnv("SCRAPE_LEAGUES", defaultLeagues))
	if err != nil {
		return Config{}, fmt.Errorf("parse SCRAPE_LEAGUES: %w", err)
	}
	if len(leagues) == 0 {
		return Config{}, fmt.Errorf("SCRAPE_LEAGUES cannot be empty")
	}

	scrapeTimeout, err := time.ParseDuration(getEnv("SCRAPE_TIMEOUT", "20s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SCRAPE_TIMEOUT: %w", err)
	}
	if scrapeTimeout <= 0 {
		return Config{}, fmt.Errorf("SCRAPE_TIMEOUT must be > 0")
	}

	scrapeMaxRetries, err := getEnvAsInt("SCRAPE_MAX_RETRIES", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse SCRAPE_MAX_RETRIES: %w", err)
	}
	if scrapeMaxRetries < 0 {
		return Config{}, fmt.Errorf("SCRAPE_MAX_RETRIES must be >= 0")
	}

	scrapePacingDelay, err := time.ParseDuration(getEnv("SCRAPE_PACING_DELAY", "2s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SCRAPE_PACING_DELAY: %w", err)
	}
	if scrapePacingDelay < 0 {
		return Config{}, fmt.Errorf("SCRAPE_PACING_DELAY must be >= 0")
	}

	scrapeCacheTTL, err := time.ParseDuration(getEnv("SCRAPE_CACHE_TTL", "10m"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SCRAPE_CACHE_TTL: %w", err)
	}
	if scrapeCacheTTL <= 0 {
		return Config{}, fmt.Errorf("SCRAPE_CACHE_TTL must be > 0")
	}

	scrapeCircuitEnabled, err := strconv.ParseBool(getEnv("SCRAPE_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SCRAPE_CIRCUIT_ENABLED: %w", err)
	}
	scrapeCircuitFailureCount, err := getEnvAsInt("SCRAPE_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse SCRAPE_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if scrapeCircuitFailureCount < 1 {
		return Config{}, fmt.Errorf("SCRAPE_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	scrapeCircuitOpenTimeout, err := time.ParseDuration(getEnv("SCRAPE_CIRCUIT_OPEN_TIMEOUT", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SCRAPE_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if scrapeCircuitOpenTimeout <= 0 {
		return Config{}, fmt.Errorf("SCRAPE_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	scrapeCircuitHalfOpenMaxReq, err := getEnvAsInt("SCRAPE_CIRCUIT_HALF_OPEN_MAX_REQ", 1)
	if err != nil {
		return Config{}, fmt.Errorf("parse SCRAPE_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if scrapeCircuitHalfOpenMaxReq < 1 {
		return Config{}, fmt.Errorf("SCRAPE_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	parseWorkers, err := getEnvAsInt("SCRAPE_PARSE_WORKERS", 4)
	if err != nil {
		return Config{}, fmt.Errorf("parse SCRAPE_PARSE_WORKERS: %w", err)
	}
	if parseWorkers < 1 {
		return Config{}, fmt.Errorf("SCRAPE_PARSE_WORKERS must be >= 1")
	}

	pruneRetentionDays, err := getEnvAsInt("PRUNE_RETENTION_DAYS", 30)
	if err != nil {
		return Config{}, fmt.Errorf("parse PRUNE_RETENTION_DAYS: %w", err)
	}
	if pruneRetentionDays < 1 {
		return Config{}, fmt.Errorf("PRUNE_RETENTION_DAYS must be >= 1")
	}

	return Config{
		AppEnv:                      appEnv,
		ServiceName:                 getEnv("APP_SERVICE_NAME", "soccer-fixtures"),
		ServiceVersion:              getEnv("APP_SERVICE_VERSION", "dev"),
		DBPath:                      getEnv("DB_PATH", "fixtures.db"),
		Leagues:                     leagues,
		ScrapeBaseURL:               strings.TrimSpace(getEnv("SCRAPE_BASE_URL", "https://www.livesoccertv.com")),
		ScrapeUserAgent:             strings.TrimSpace(getEnv("SCRAPE_USER_AGENT", "")),
		ScrapeTimeout:               scrapeTimeout,
		ScrapeMaxRetries:            scrapeMaxRetries,
		ScrapePacingDelay:           scrapePacingDelay,
		ScrapeCacheTTL:              scrapeCacheTTL,
		ScrapeCircuitEnabled:        scrapeCircuitEnabled,
		ScrapeCircuitFailureCount:   scrapeCircuitFailureCount,
		ScrapeCircuitOpenTimeout:    scrapeCircuitOpenTimeout,
		ScrapeCircuitHalfOpenMaxReq: scrapeCircuitHalfOpenMaxReq,
		ParseWorkers:                parseWorkers,
		PruneRetentionDays:          pruneRetentionDays,
		LogLevel:                    parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),
	}, nil
}

// parseLeagues reads a comma-separated "slug=Name" list, preserving order.
func parseLeagues(raw string) ([]League, error) {
	parts := strings.Split(raw, ",")
	out := make([]League, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}

		segments := strings.SplitN(item, "=", 2)
		if len(segments) != 2 {
			return nil, fmt.Errorf("invalid league item %q, expected slug=Name", item)
		}
		slug := strings.Trim(strings.TrimSpace(segments[0]), "/")
		name := strings.TrimSpace(segments[1])
		if slug == "" || name == "" {
			return nil, fmt.Errorf("empty slug or name in league item %q", item)
		}
		if _, ok := seen[slug]; ok {
			return nil, fmt.Errorf("duplicate league slug %q", slug)
		}
		seen[slug] = struct{}{}
		out = append(out, League{Slug: slug, Name: name})
	}
	return out, nil
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
