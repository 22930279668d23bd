// Package livesoccertv fetches competition schedule pages from
// livesoccertv.com. The site sits behind bot protection, so the client sends
// realistic browser headers, paces its requests, retries transient failures,
// and trips a circuit breaker when the site keeps refusing it.
package livesoccertv

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	crerr "github.com/cockroachdb/errors"

	"github.com/riskibarqy/soccer-fixtures/internal/extract"
	"github.com/riskibarqy/soccer-fixtures/internal/platform/cache"
	"github.com/riskibarqy/soccer-fixtures/internal/platform/logging"
	"github.com/riskibarqy/soccer-fixtures/internal/platform/resilience"
	"github.com/riskibarqy/soccer-fixtures/internal/usecase"
)

const (
	defaultBaseURL   = "https://www.livesoccertv.com"
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	defaultPacing = 2 * time.Second
	maxBodyBytes  = 4 << 20
)

var errTransient = crerr.New("livesoccertv transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	UserAgent      string
	Timeout        time.Duration
	MaxRetries     int
	PacingDelay    time.Duration
	CacheTTL       time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

type Client struct {
	httpClient     *http.Client
	baseURL        string
	userAgent      string
	maxRetries     int
	pacingDelay    time.Duration
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	pages          *cache.Store

	mu        sync.Mutex
	lastFetch time.Time
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 20 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	pacing := cfg.PacingDelay
	if pacing < 0 {
		pacing = defaultPacing
	}
	cacheTTL := cfg.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = 10 * time.Minute
	}

	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)
	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		userAgent:      userAgent,
		maxRetries:     maxRetries,
		pacingDelay:    pacing,
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
		pages:          cache.NewStore(cacheTTL),
	}
}

var _ usecase.DocumentSource = (*Client)(nil)

// CompetitionPage fetches and parses one competition schedule page. Pages are
// cached for the configured TTL so repeated commands inside one run do not
// refetch.
func (c *Client) CompetitionPage(ctx context.Context, slug string) (*goquery.Document, error) {
	slug = strings.Trim(strings.TrimSpace(slug), "/")
	if slug == "" {
		return nil, fmt.Errorf("%w: competition slug is required", usecase.ErrInvalidInput)
	}

	fullURL := c.baseURL + "/competitions/" + slug + "/"
	if cached, ok := c.pages.Get(fullURL); ok {
		if html, ok := cached.(string); ok {
			return extract.Document(html)
		}
	}

	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.Warn("schedule source circuit breaker rejected request", "state", c.breaker.State())
			return nil, fmt.Errorf("%w: schedule source is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	if err := c.pace(ctx); err != nil {
		return nil, err
	}

	raw, err := c.executeRequest(ctx, fullURL)
	if c.circuitEnabled {
		if err != nil && crerr.Is(err, errTransient) {
			c.breaker.RecordFailure()
		} else {
			c.breaker.RecordSuccess()
		}
	}
	if err != nil {
		return nil, err
	}

	html := string(raw)
	c.pages.Set(fullURL, html)
	return extract.Document(html)
}

// pace enforces the minimum delay between outgoing requests.
func (c *Client) pace(ctx context.Context) error {
	if c.pacingDelay <= 0 {
		return nil
	}

	c.mu.Lock()
	wait := c.pacingDelay - time.Since(c.lastFetch)
	c.lastFetch = time.Now()
	if wait > 0 {
		c.lastFetch = c.lastFetch.Add(wait)
	}
	c.mu.Unlock()

	if wait <= 0 {
		return nil
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = crerr.Wrapf(errTransient, "send request: %v", err)
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = crerr.Wrapf(errTransient, "read response body: %v", readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case isRetryableStatus(resp.StatusCode):
				lastErr = crerr.Wrapf(errTransient, "status=%d url=%s", resp.StatusCode, fullURL)
			default:
				return nil, fmt.Errorf("status=%d url=%s", resp.StatusCode, fullURL)
			}
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("schedule request failed")
	}
	c.logger.Warn("schedule page fetch failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

// isRetryableStatus covers rate limiting, bot challenges and upstream
// hiccups. 403 is retryable here because the site's protection layer
// sometimes rejects a first request and accepts the next.
func isRetryableStatus(status int) bool {
	switch status {
	case http.StatusForbidden,
		http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
