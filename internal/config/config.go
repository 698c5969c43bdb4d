// Package config loads application configuration from config.yaml and the
// SITELINT_* environment, and wires the global zap logger.
package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Site    SiteConfig    `yaml:"site" mapstructure:"site"`
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Content ContentConfig `yaml:"content" mapstructure:"content"`
	Rules   RulesConfig   `yaml:"rules" mapstructure:"rules"`
	Batch   BatchConfig   `yaml:"batch" mapstructure:"batch"`
	Reaper  ReaperConfig  `yaml:"reaper" mapstructure:"reaper"`
	Stats   StatsConfig   `yaml:"stats" mapstructure:"stats"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// SiteConfig identifies the site whose content is scanned.
type SiteConfig struct {
	ID string `yaml:"id" mapstructure:"id"`
}

// StoreConfig configures the issue store backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	Path        string `yaml:"path" mapstructure:"path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ContentConfig configures where markup and media are read from.
type ContentConfig struct {
	Root  string   `yaml:"root" mapstructure:"root"`
	Types []string `yaml:"types" mapstructure:"types"`
}

// RulesConfig configures rule evaluation.
type RulesConfig struct {
	KeywordsFile   string `yaml:"keywords_file" mapstructure:"keywords_file"`
	MinWordCount   int    `yaml:"min_word_count" mapstructure:"min_word_count"`
	LinkTextMinLen int    `yaml:"link_text_min_len" mapstructure:"link_text_min_len"`
	MediaChecks    bool   `yaml:"media_checks" mapstructure:"media_checks"`
}

// BatchConfig configures full-site batch scans.
type BatchConfig struct {
	MaxConcurrentScans int `yaml:"max_concurrent_scans" mapstructure:"max_concurrent_scans"`
}

// ReaperConfig configures the orphan sweep.
type ReaperConfig struct {
	BatchSize        int     `yaml:"batch_size" mapstructure:"batch_size"`
	BatchesPerSecond float64 `yaml:"batches_per_second" mapstructure:"batches_per_second"`
}

// StatsConfig configures the stats cache.
type StatsConfig struct {
	TTLHours int `yaml:"ttl_hours" mapstructure:"ttl_hours"`
}

// TTL converts the configured hours into a duration.
func (c StatsConfig) TTL() time.Duration {
	return time.Duration(c.TTLHours) * time.Hour
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Validate checks the fields required by the given mode ("scan", "serve",
// or "reap"). Errors list every missing or out-of-range field at once.
func (c *Config) Validate(mode string) error {
	var problems []string

	check := func(ok bool, msg string) {
		if !ok {
			problems = append(problems, msg)
		}
	}

	check(c.Site.ID != "", "site.id is required")
	switch c.Store.Driver {
	case "sqlite":
		check(c.Store.Path != "", "store.path is required for the sqlite driver")
	case "postgres":
		check(c.Store.DatabaseURL != "", "store.database_url is required for the postgres driver")
	default:
		problems = append(problems, "store.driver must be sqlite or postgres")
	}

	switch mode {
	case "scan", "reap":
		check(c.Content.Root != "", "content.root is required")
	case "serve":
		check(c.Content.Root != "", "content.root is required")
		check(c.Server.Port > 0, "server.port must be > 0")
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	check(c.Batch.MaxConcurrentScans >= 1 && c.Batch.MaxConcurrentScans <= 50,
		"batch.max_concurrent_scans must be between 1 and 50")

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
	}
	return nil
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("SITELINT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("site.id", "default")
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "sitelint.db")
	v.SetDefault("content.root", ".")
	v.SetDefault("content.types", []string{"page", "post"})
	v.SetDefault("rules.min_word_count", 400)
	v.SetDefault("rules.link_text_min_len", 5)
	v.SetDefault("rules.media_checks", true)
	v.SetDefault("batch.max_concurrent_scans", 4)
	v.SetDefault("reaper.batch_size", 50)
	v.SetDefault("reaper.batches_per_second", 1.0)
	v.SetDefault("stats.ttl_hours", 24)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
