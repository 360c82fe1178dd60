// Package config loads application configuration from file and environment
// and owns global logger setup.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kindseek/leadscout/internal/dedup"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Sources   SourcesConfig   `yaml:"sources" mapstructure:"sources"`
	Dedup     dedup.Config    `yaml:"dedup" mapstructure:"dedup"`
	Scoring   ScoringConfig   `yaml:"scoring" mapstructure:"scoring"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Notify    NotifyConfig    `yaml:"notify" mapstructure:"notify"`
	Export    ExportConfig    `yaml:"export" mapstructure:"export"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
	DryRun    bool            `yaml:"dry_run" mapstructure:"dry_run"`
}

// StoreConfig configures the tracker database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"` // "sqlite" or "postgres"
	Path        string `yaml:"path" mapstructure:"path"`     // sqlite file path
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// SourceConfig holds the settings of a single data source.
type SourceConfig struct {
	URL string `yaml:"url" mapstructure:"url"`
}

// SourcesConfig configures the source adapters.
type SourcesConfig struct {
	Enabled     []string     `yaml:"enabled" mapstructure:"enabled"`
	TimeoutSecs int          `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	UserAgent   string       `yaml:"user_agent" mapstructure:"user_agent"`
	Ontario     SourceConfig `yaml:"ontario" mapstructure:"ontario"`
	BC          SourceConfig `yaml:"bc" mapstructure:"bc"`
	ACECQA      SourceConfig `yaml:"acecqa" mapstructure:"acecqa"`
}

// ScoringConfig configures the scoring engine.
type ScoringConfig struct {
	RulesetPath string `yaml:"ruleset_path" mapstructure:"ruleset_path"`
}

// AnthropicConfig holds Claude API settings for AI-assisted scoring.
type AnthropicConfig struct {
	Enabled     bool   `yaml:"enabled" mapstructure:"enabled"`
	Key         string `yaml:"key" mapstructure:"key"`
	Model       string `yaml:"model" mapstructure:"model"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxParallel int    `yaml:"max_parallel" mapstructure:"max_parallel"`
}

// ChannelConfig holds one notification channel's settings.
type ChannelConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Webhook string `yaml:"webhook" mapstructure:"webhook"`
	Secret  string `yaml:"secret" mapstructure:"secret"`
	Token   string `yaml:"token" mapstructure:"token"`
	Topic   string `yaml:"topic" mapstructure:"topic"`
}

// NotifyConfig configures the notification sinks.
type NotifyConfig struct {
	DingTalk          ChannelConfig `yaml:"dingtalk" mapstructure:"dingtalk"`
	PushPlus          ChannelConfig `yaml:"pushplus" mapstructure:"pushplus"`
	InstantAlerts     bool          `yaml:"instant_alerts" mapstructure:"instant_alerts"`
	MaxInstantPerHour int           `yaml:"max_instant_per_hour" mapstructure:"max_instant_per_hour"`
}

// ExportConfig configures the XLSX tracker export sink.
type ExportConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Path    string `yaml:"path" mapstructure:"path"`
}

// ServerConfig configures the webhook server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LEADSCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "leadscout.db")
	v.SetDefault("sources.enabled", []string{"ontario", "acecqa"})
	v.SetDefault("sources.timeout_secs", 30)
	v.SetDefault("sources.user_agent", "leadscout/1.0")
	v.SetDefault("sources.ontario.url", "https://data.ontario.ca/dataset/licensed-child-care-facilities/download/lcc_facilities.csv")
	v.SetDefault("sources.bc.url", "https://catalogue.data.gov.bc.ca/dataset/child-care-map-data/download/childcarebc.csv")
	v.SetDefault("sources.acecqa.url", "https://www.acecqa.gov.au/resources/national-registers/services.xlsx")
	v.SetDefault("dedup.address_threshold", 0.90)
	v.SetDefault("dedup.name_threshold", 0.70)
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.timeout_secs", 30)
	v.SetDefault("anthropic.max_parallel", 4)
	v.SetDefault("notify.instant_alerts", true)
	v.SetDefault("notify.max_instant_per_hour", 20)
	v.SetDefault("export.path", "leads.xlsx")
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

// Validate checks that the configuration can support the given mode ("run",
// "serve", "rescore"). Configuration problems are fatal before any batch work.
func (c *Config) Validate(mode string) error {
	if err := c.Dedup.Validate(); err != nil {
		return err
	}

	switch c.Store.Driver {
	case "sqlite":
		if c.Store.Path == "" {
			return eris.New("config: store.path required for sqlite driver")
		}
	case "postgres":
		if c.Store.DatabaseURL == "" {
			return eris.New("config: store.database_url required for postgres driver")
		}
	default:
		return eris.Errorf("config: unknown store driver %q", c.Store.Driver)
	}

	if c.Anthropic.Enabled && c.Anthropic.Key == "" {
		return eris.New("config: anthropic.key required when AI scoring is enabled")
	}
	if c.Notify.DingTalk.Enabled && c.Notify.DingTalk.Webhook == "" {
		return eris.New("config: notify.dingtalk.webhook required when dingtalk is enabled")
	}
	if c.Notify.PushPlus.Enabled && c.Notify.PushPlus.Token == "" {
		return eris.New("config: notify.pushplus.token required when pushplus is enabled")
	}

	switch mode {
	case "run", "rescore":
		if mode == "run" && len(c.Sources.Enabled) == 0 {
			return eris.New("config: no sources enabled")
		}
	case "serve":
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			return eris.Errorf("config: invalid server port %d", c.Server.Port)
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	return nil
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
