package cmd

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sitemark/sitemark/internal/config"
)

func TestBuildViperBindsFlags(t *testing.T) {
	cmd := newScrapeCmd()
	require.NoError(t, cmd.Flags().Set("delay", "4s"))
	require.NoError(t, cmd.Flags().Set("out", "docs_md"))
	require.NoError(t, cmd.Flags().Set("robots", "standard"))
	require.NoError(t, cmd.Flags().Set("retries-429", "1"))
	require.NoError(t, cmd.Flags().Set("no-robots", "true"))

	v, err := buildViper(cmd)
	require.NoError(t, err)
	v.Set("scraper.base_url", "https://example.org")
	v.Set("scraper.paths", []string{"/"})

	cfg, err := config.Load(v)
	require.NoError(t, err)
	require.Equal(t, 4*time.Second, cfg.Scraper.Delay)
	require.Equal(t, "docs_md", cfg.Scraper.OutputDir)
	require.Equal(t, "standard", cfg.Scraper.RobotsStrategy)
	require.Equal(t, 1, cfg.Scraper.MaxRetries429)
	require.False(t, cfg.Scraper.RespectRobots)
}

func TestBuildViperDefaultsWithoutFlags(t *testing.T) {
	cmd := newScrapeCmd()

	v, err := buildViper(cmd)
	require.NoError(t, err)
	v.Set("scraper.base_url", "https://example.org")
	v.Set("scraper.paths", []string{"/", "/about"})

	cfg, err := config.Load(v)
	require.NoError(t, err)
	require.Equal(t, 2500*time.Millisecond, cfg.Scraper.Delay)
	require.True(t, cfg.Scraper.RespectRobots)
}

func TestScrapeCommandRequiresBaseURL(t *testing.T) {
	cmd := newScrapeCmd()
	require.Error(t, cmd.Args(cmd, nil))
	require.NoError(t, cmd.Args(cmd, []string{"https://example.org"}))
}
