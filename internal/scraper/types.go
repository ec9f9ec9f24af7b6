// Package scraper implements the polite page-fetch pipeline: robots
// gate, inter-fetch delay pacing, headless rendering, and Markdown
// conversion for a fixed list of paths on a single host.
package scraper

import (
	"context"
	"net/http"
	"time"
)

// Outcome classifies the terminal state of a single path fetch.
type Outcome string

// Terminal fetch outcomes.
const (
	OutcomeSuccess   Outcome = "success"
	OutcomeBlocked   Outcome = "blocked"
	OutcomeTimedOut  Outcome = "timed_out"
	OutcomeHTTPError Outcome = "http_error"
)

// FetchResult is the rendered document returned by a Fetcher.
// StatusCode is 0 when the navigation produced no document response
// (for example a same-document navigation); callers treat that as
// success.
type FetchResult struct {
	URL        string
	StatusCode int
	Headers    http.Header
	Body       string
	Duration   time.Duration
}

// PolicyGate decides whether a URL may be fetched at all.
type PolicyGate interface {
	Allowed(ctx context.Context, rawURL string) bool
}

// Fetcher loads a URL in a rendering engine and returns the final DOM.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (FetchResult, error)
	Close()
}

// Converter turns rendered HTML into Markdown text.
type Converter interface {
	Convert(html string) (string, error)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// IDGenerator produces run IDs.
type IDGenerator interface {
	NewID() (string, error)
}
