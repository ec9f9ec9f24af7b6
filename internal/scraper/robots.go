package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/temoto/robotstxt"
	"go.uber.org/zap"
)

// RobotsStrategy selects how robots.txt directives are interpreted.
type RobotsStrategy string

// Supported robots.txt interpretations.
const (
	// RobotsStrategyPermissive reproduces the legacy behavior: a
	// wildcard group containing an empty Disallow line opens the whole
	// site, regardless of any other directive anywhere in the file.
	RobotsStrategyPermissive RobotsStrategy = "permissive"
	// RobotsStrategyStandard applies ordinary robots.txt semantics.
	RobotsStrategyStandard RobotsStrategy = "standard"
)

// ParseRobotsStrategy validates a strategy name from configuration.
func ParseRobotsStrategy(raw string) (RobotsStrategy, error) {
	switch RobotsStrategy(strings.ToLower(strings.TrimSpace(raw))) {
	case RobotsStrategyPermissive:
		return RobotsStrategyPermissive, nil
	case RobotsStrategyStandard:
		return RobotsStrategyStandard, nil
	default:
		return "", fmt.Errorf("unknown robots strategy %q", raw)
	}
}

// RobotsGate enforces robots.txt for a single base URL. The document is
// re-fetched on every Allowed call rather than cached; retrieval or
// parse failures always resolve to allow.
type RobotsGate struct {
	client    *http.Client
	robotsURL string
	strategy  RobotsStrategy
	userAgent string
	logger    *zap.Logger
}

// NewRobotsGate builds a gate for the host of baseURL.
func NewRobotsGate(baseURL string, strategy RobotsStrategy, userAgent string, logger *zap.Logger) (*RobotsGate, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("base url %q must include scheme and host", baseURL)
	}
	robotsURL := *parsed
	robotsURL.Path = "/robots.txt"
	robotsURL.RawQuery = ""
	robotsURL.Fragment = ""
	return &RobotsGate{
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
		robotsURL: robotsURL.String(),
		strategy:  strategy,
		userAgent: userAgent,
		logger:    logger,
	}, nil
}

// Allowed implements PolicyGate.
func (g *RobotsGate) Allowed(ctx context.Context, rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	body, err := g.fetchRobots(ctx)
	if err != nil {
		g.logger.Debug("robots fetch failed; allowing access",
			zap.String("robots_url", g.robotsURL), zap.Error(err))
		return true
	}
	if g.strategy == RobotsStrategyPermissive && hasWildcardAllowAll(body) {
		return true
	}
	data, err := robotstxt.FromBytes(body)
	if err != nil {
		g.logger.Debug("robots parse failed; allowing access", zap.Error(err))
		return true
	}
	group := data.FindGroup(g.userAgent)
	if group == nil {
		return true
	}
	return group.Test(parsed.Path)
}

func (g *RobotsGate) fetchRobots(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.robotsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("new robots request: %w", err)
	}
	req.Header.Set("User-Agent", g.userAgent)
	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch robots: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			g.logger.Debug("Failed to close robots response body", zap.Error(cerr))
		}
	}()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("robots status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read robots body: %w", err)
	}
	return body, nil
}

// hasWildcardAllowAll scans user-agent groups for a wildcard group that
// carries an empty Disallow directive. Groups run from a User-agent
// line to the next User-agent line or end of document.
func hasWildcardAllowAll(body []byte) bool {
	var (
		groups  [][]string
		current []string
	)
	for _, line := range strings.Split(string(body), "\n") {
		line = strings.TrimSpace(line)
		lower := strings.ToLower(line)
		if strings.HasPrefix(lower, "user-agent:") {
			if len(current) > 0 {
				groups = append(groups, current)
			}
			current = []string{line}
			continue
		}
		if len(current) > 0 {
			current = append(current, line)
		}
	}
	if len(current) > 0 {
		groups = append(groups, current)
	}

	for _, group := range groups {
		token := strings.TrimSpace(strings.TrimPrefix(strings.ToLower(group[0]), "user-agent:"))
		if !strings.Contains(token, "*") {
			continue
		}
		for _, directive := range group[1:] {
			lower := strings.ToLower(directive)
			if strings.HasPrefix(lower, "disallow:") &&
				strings.TrimSpace(strings.TrimPrefix(lower, "disallow:")) == "" {
				return true
			}
		}
	}
	return false
}

type allowAllGate struct{}

// NewAllowAllGate returns a gate that admits every URL. Used when
// robots enforcement is disabled via configuration.
func NewAllowAllGate() PolicyGate {
	return &allowAllGate{}
}

func (allowAllGate) Allowed(context.Context, string) bool { return true }
