// Package config loads and validates scraper configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/sitemark/sitemark/internal/scraper"
)

// Config captures all configuration knobs loaded via Viper.
type Config struct {
	Scraper ScraperConfig `mapstructure:"scraper"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ScraperConfig governs the fetch pipeline.
type ScraperConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	Paths          []string      `mapstructure:"paths"`
	Delay          time.Duration `mapstructure:"delay"`
	UserAgent      string        `mapstructure:"user_agent"`
	NavTimeout     time.Duration `mapstructure:"nav_timeout"`
	OutputDir      string        `mapstructure:"output_dir"`
	RobotsStrategy string        `mapstructure:"robots_strategy"`
	RespectRobots  bool          `mapstructure:"respect_robots"`
	MaxRetries429  int           `mapstructure:"max_retries_429"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from the given Viper instance, which may carry
// values from a config file, SITEMARK_* env vars, and bound CLI flags.
func Load(v *viper.Viper) (Config, error) {
	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// NewViper creates a Viper instance wired to the sitemark env prefix.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("SITEMARK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("scraper.delay", 2500*time.Millisecond)
	v.SetDefault("scraper.user_agent", "sitemark/1.0 (+https://github.com/sitemark/sitemark)")
	v.SetDefault("scraper.nav_timeout", 15*time.Second)
	v.SetDefault("scraper.output_dir", "markdown_out")
	v.SetDefault("scraper.robots_strategy", string(scraper.RobotsStrategyPermissive))
	v.SetDefault("scraper.respect_robots", true)
	v.SetDefault("scraper.max_retries_429", 3)
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Scraper.BaseURL == "" {
		return fmt.Errorf("scraper.base_url must be set")
	}
	if len(c.Scraper.Paths) == 0 {
		return fmt.Errorf("scraper.paths must include at least one path")
	}
	if c.Scraper.Delay < 0 {
		return fmt.Errorf("scraper.delay must be >= 0")
	}
	if c.Scraper.UserAgent == "" {
		return fmt.Errorf("scraper.user_agent must be set")
	}
	if c.Scraper.NavTimeout <= 0 {
		return fmt.Errorf("scraper.nav_timeout must be > 0")
	}
	if c.Scraper.OutputDir == "" {
		return fmt.Errorf("scraper.output_dir must be set")
	}
	if c.Scraper.MaxRetries429 < 0 {
		return fmt.Errorf("scraper.max_retries_429 must be >= 0")
	}
	if _, err := scraper.ParseRobotsStrategy(c.Scraper.RobotsStrategy); err != nil {
		return fmt.Errorf("scraper.robots_strategy: %w", err)
	}
	return nil
}
