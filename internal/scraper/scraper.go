package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
)

// defaultRetryAfter is used when a 429 response carries no parsable
// Retry-After header.
const defaultRetryAfter = 30 * time.Second

// Config holds the settings for a scrape run.
type Config struct {
	BaseURL       string
	Paths         []string
	Delay         time.Duration
	MaxRetries429 int
}

// Scraper drives the fetch pipeline for every configured path in
// order: policy gate, delay pacing, headless fetch with bounded 429
// retries, then Markdown conversion. One request is in flight at a
// time.
type Scraper struct {
	cfg       Config
	gate      PolicyGate
	limiter   *DelayLimiter
	fetcher   Fetcher
	converter Converter
	ids       IDGenerator
	logger    *zap.Logger
}

// New assembles a Scraper from its collaborators.
func New(
	cfg Config,
	gate PolicyGate,
	limiter *DelayLimiter,
	fetcher Fetcher,
	converter Converter,
	ids IDGenerator,
	logger *zap.Logger,
) *Scraper {
	return &Scraper{
		cfg:       cfg,
		gate:      gate,
		limiter:   limiter,
		fetcher:   fetcher,
		converter: converter,
		ids:       ids,
		logger:    logger,
	}
}

// Run fetches every configured path and returns Markdown keyed by the
// requested path. Paths that are blocked, time out, or receive a hard
// HTTP error are omitted; only unexpected failures return an error.
func (s *Scraper) Run(ctx context.Context) (map[string]string, error) {
	runID, err := s.ids.NewID()
	if err != nil {
		return nil, fmt.Errorf("generate run id: %w", err)
	}
	logger := s.logger.With(zap.String("run_id", runID))
	logger.Info("scrape run started",
		zap.String("base_url", s.cfg.BaseURL),
		zap.Int("paths", len(s.cfg.Paths)),
		zap.Duration("delay", s.cfg.Delay),
	)

	results := make(map[string]string, len(s.cfg.Paths))
	for _, path := range s.cfg.Paths {
		if err := ctx.Err(); err != nil {
			return results, fmt.Errorf("run canceled: %w", err)
		}
		target, err := joinURL(s.cfg.BaseURL, path)
		if err != nil {
			return nil, fmt.Errorf("resolve path %q: %w", path, err)
		}

		html, outcome, err := s.fetchPage(ctx, logger, target)
		if err != nil {
			return results, err
		}
		if outcome != OutcomeSuccess {
			continue
		}

		markdown, err := s.converter.Convert(html)
		if err != nil {
			return results, fmt.Errorf("convert %s: %w", target, err)
		}
		results[path] = markdown
		TotalScrapes.Inc()
		logger.Info("converted",
			zap.String("path", path),
			zap.Int("chars", utf8.RuneCountInString(markdown)),
		)
	}
	return results, nil
}

// fetchPage runs the per-URL state machine: policy check, delay wait,
// navigation, and a bounded retry loop for 429 responses. Terminal
// outcomes other than success return empty HTML and a nil error.
func (s *Scraper) fetchPage(ctx context.Context, logger *zap.Logger, target string) (string, Outcome, error) {
	if !s.gate.Allowed(ctx, target) {
		TotalBlocked.Inc()
		logger.Warn("blocked by robots.txt", zap.String("url", target))
		return "", OutcomeBlocked, nil
	}

	for attempt := 0; ; attempt++ {
		if err := s.limiter.Wait(ctx); err != nil {
			return "", "", fmt.Errorf("delay wait: %w", err)
		}

		result, err := s.fetcher.Fetch(ctx, target)
		if err != nil {
			if errors.Is(err, ErrNavigationTimeout) {
				TotalTimeouts.Inc()
				logger.Error("navigation timeout", zap.String("url", target), zap.Error(err))
				return "", OutcomeTimedOut, nil
			}
			return "", "", fmt.Errorf("fetch %s: %w", target, err)
		}
		s.limiter.MarkCompleted()

		if result.StatusCode == 429 {
			TotalRateLimitHits.Inc()
			if attempt >= s.cfg.MaxRetries429 {
				logger.Error("429 retries exhausted",
					zap.String("url", target), zap.Int("attempts", attempt+1))
				return "", OutcomeHTTPError, nil
			}
			backoff := retryAfter(result.Headers.Get("Retry-After"))
			logger.Warn("429 Too Many Requests",
				zap.String("url", target), zap.Duration("retry_after", backoff))
			if err := pause(ctx, backoff); err != nil {
				return "", "", fmt.Errorf("retry backoff: %w", err)
			}
			continue
		}

		if result.StatusCode >= 400 && result.StatusCode < 600 {
			TotalHTTPErrors.Inc()
			logger.Error("http error response",
				zap.String("url", target), zap.Int("status_code", result.StatusCode))
			return "", OutcomeHTTPError, nil
		}

		return result.Body, OutcomeSuccess, nil
	}
}

// retryAfter parses an integer-seconds Retry-After value, falling back
// to the default on absent or unparsable input.
func retryAfter(raw string) time.Duration {
	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds < 0 {
		return defaultRetryAfter
	}
	return time.Duration(seconds) * time.Second
}

// joinURL resolves a relative path against the base URL.
func joinURL(base, path string) (string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	ref, err := url.Parse(path)
	if err != nil {
		return "", fmt.Errorf("parse path: %w", err)
	}
	return baseURL.ResolveReference(ref).String(), nil
}
