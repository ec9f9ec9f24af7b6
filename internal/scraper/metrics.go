package scraper

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TotalScrapes tracks the number of pages successfully fetched and converted.
	TotalScrapes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scraper_pages_total",
		Help: "The total number of pages successfully fetched and converted.",
	})
	// TotalBlocked tracks the number of paths denied by robots.txt.
	TotalBlocked = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scraper_blocked_total",
		Help: "The total number of paths blocked by the robots policy.",
	})
	// TotalTimeouts tracks the number of navigations that exceeded the timeout.
	TotalTimeouts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scraper_navigation_timeouts_total",
		Help: "The total number of navigations that timed out.",
	})
	// TotalHTTPErrors tracks the number of terminal HTTP error responses.
	TotalHTTPErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scraper_http_errors_total",
		Help: "The total number of terminal HTTP error responses.",
	})
	// TotalRateLimitHits tracks the number of 429 responses honored via Retry-After.
	TotalRateLimitHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scraper_rate_limit_hits_total",
		Help: "The total number of times the scraper was rate limited.",
	})
)
