package cmd

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/sitemark/sitemark/internal/clock/system"
	"github.com/sitemark/sitemark/internal/config"
	"github.com/sitemark/sitemark/internal/id/uuid"
	"github.com/sitemark/sitemark/internal/logging"
	"github.com/sitemark/sitemark/internal/scraper"
)

// newScrapeCmd creates and configures the 'scrape' subcommand.
func newScrapeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape BASE_URL [PATH...]",
		Short: "Fetches the given paths and writes Markdown files",
		Long: `Fetches each PATH under BASE_URL with a headless browser, waiting at
least the configured delay between fetches and honoring robots.txt
and Retry-After, then converts the rendered HTML to Markdown.`,
		Example: `  sitemark scrape https://example.org / /about /products --delay 2.5s`,
		Args:    cobra.MinimumNArgs(1),
		RunE:    runScrapeCommand,
	}

	cmd.Flags().Duration("delay", 2500*time.Millisecond, "minimum delay between fetches")
	cmd.Flags().Duration("timeout", 15*time.Second, "navigation timeout")
	cmd.Flags().String("out", "markdown_out", "directory for .md files")
	cmd.Flags().String("user-agent", "", "user-agent string")
	cmd.Flags().String("robots", string(scraper.RobotsStrategyPermissive),
		"robots.txt interpretation: permissive or standard")
	cmd.Flags().Bool("no-robots", false, "skip the robots.txt check entirely")
	cmd.Flags().Int("retries-429", 3, "maximum retries after a 429 response")
	cmd.Flags().Bool("dev-logging", true, "human-readable log output")

	return cmd
}

func runScrapeCommand(cmd *cobra.Command, args []string) error {
	v, err := buildViper(cmd)
	if err != nil {
		return err
	}
	v.Set("scraper.base_url", args[0])
	if len(args) > 1 {
		v.Set("scraper.paths", args[1:])
	}

	cfg, err := config.Load(v)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck // best-effort flush

	return runScrape(cmd, cfg, logger)
}

func runScrape(cmd *cobra.Command, cfg config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gate, err := buildGate(cfg, logger)
	if err != nil {
		return err
	}

	fetcher, err := scraper.NewChromedpFetcher(scraper.FetcherConfig{
		UserAgent:         cfg.Scraper.UserAgent,
		NavigationTimeout: cfg.Scraper.NavTimeout,
	}, logger.Named("fetcher"))
	if err != nil {
		return fmt.Errorf("launch browser: %w", err)
	}
	defer fetcher.Close()

	engine := scraper.New(
		scraper.Config{
			BaseURL:       cfg.Scraper.BaseURL,
			Paths:         cfg.Scraper.Paths,
			Delay:         cfg.Scraper.Delay,
			MaxRetries429: cfg.Scraper.MaxRetries429,
		},
		gate,
		scraper.NewDelayLimiter(cfg.Scraper.Delay, system.New()),
		fetcher,
		scraper.NewMarkdownConverter(),
		uuid.New(),
		logger.Named("scraper"),
	)

	results, err := engine.Run(ctx)
	if err != nil {
		return fmt.Errorf("scrape run: %w", err)
	}

	sink, err := scraper.NewFileSystemSink(cfg.Scraper.OutputDir, logger.Named("sink"))
	if err != nil {
		return err
	}
	if err := sink.WriteAll(ctx, results); err != nil {
		return err
	}

	logger.Info("scrape run finished",
		zap.Int("requested", len(cfg.Scraper.Paths)),
		zap.Int("written", len(results)),
	)
	return nil
}

func buildGate(cfg config.Config, logger *zap.Logger) (scraper.PolicyGate, error) {
	if !cfg.Scraper.RespectRobots {
		return scraper.NewAllowAllGate(), nil
	}
	strategy, err := scraper.ParseRobotsStrategy(cfg.Scraper.RobotsStrategy)
	if err != nil {
		return nil, err
	}
	gate, err := scraper.NewRobotsGate(cfg.Scraper.BaseURL, strategy, cfg.Scraper.UserAgent, logger.Named("robots"))
	if err != nil {
		return nil, fmt.Errorf("build robots gate: %w", err)
	}
	return gate, nil
}

func buildViper(cmd *cobra.Command) (*viper.Viper, error) {
	v := config.NewViper()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	bindings := map[string]string{
		"scraper.delay":           "delay",
		"scraper.nav_timeout":     "timeout",
		"scraper.output_dir":      "out",
		"scraper.robots_strategy": "robots",
		"scraper.max_retries_429": "retries-429",
		"logging.development":     "dev-logging",
	}
	for key, flag := range bindings {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return nil, fmt.Errorf("bind flag %s: %w", flag, err)
		}
	}
	// A config file may supply the user agent; only an explicitly set
	// flag should override it.
	if cmd.Flags().Changed("user-agent") {
		ua, err := cmd.Flags().GetString("user-agent")
		if err != nil {
			return nil, fmt.Errorf("read user-agent flag: %w", err)
		}
		v.Set("scraper.user_agent", ua)
	}
	if cmd.Flags().Changed("no-robots") {
		noRobots, err := cmd.Flags().GetBool("no-robots")
		if err != nil {
			return nil, fmt.Errorf("read no-robots flag: %w", err)
		}
		v.Set("scraper.respect_robots", !noRobots)
	}
	return v, nil
}
