package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store        StoreConfig        `yaml:"store" mapstructure:"store"`
	Catalog      CatalogConfig      `yaml:"catalog" mapstructure:"catalog"`
	OpenTrip     OpenTripConfig     `yaml:"opentrip" mapstructure:"opentrip"`
	Amadeus      AmadeusConfig      `yaml:"amadeus" mapstructure:"amadeus"`
	Anthropic    AnthropicConfig    `yaml:"anthropic" mapstructure:"anthropic"`
	Retrieval    RetrievalConfig    `yaml:"retrieval" mapstructure:"retrieval"`
	Orchestrator OrchestratorConfig `yaml:"orchestrator" mapstructure:"orchestrator"`
	Verify       VerifyConfig       `yaml:"verify" mapstructure:"verify"`
	Server       ServerConfig       `yaml:"server" mapstructure:"server"`
	Log          LogConfig          `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	Path        string `yaml:"path" mapstructure:"path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// CatalogConfig configures the static seed dataset.
type CatalogConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// OpenTripConfig holds OpenTrip API settings (destination Tier-1).
type OpenTripConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// AmadeusConfig holds Amadeus flight API settings (transport Tier-1).
type AmadeusConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	Secret  string `yaml:"secret" mapstructure:"secret"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// AnthropicConfig holds the generative-fallback backend settings.
type AnthropicConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// RetrievalConfig configures the tiered retriever.
type RetrievalConfig struct {
	LiveTimeoutSecs  int     `yaml:"live_timeout_secs" mapstructure:"live_timeout_secs"`
	LiveMaxAttempts  int     `yaml:"live_max_attempts" mapstructure:"live_max_attempts"`
	InitialBackoffMs int     `yaml:"initial_backoff_ms" mapstructure:"initial_backoff_ms"`
	FailureThreshold int     `yaml:"failure_threshold" mapstructure:"failure_threshold"`
	ResetTimeoutSecs int     `yaml:"reset_timeout_secs" mapstructure:"reset_timeout_secs"`
	GenTimeoutSecs   int     `yaml:"gen_timeout_secs" mapstructure:"gen_timeout_secs"`
	FuzzyThreshold   float64 `yaml:"fuzzy_threshold" mapstructure:"fuzzy_threshold"`
}

// OrchestratorConfig configures the planning run.
type OrchestratorConfig struct {
	DeadlineSecs int `yaml:"deadline_secs" mapstructure:"deadline_secs"`
}

// VerifyConfig configures the verification pass.
type VerifyConfig struct {
	BudgetTolerancePct float64 `yaml:"budget_tolerance_pct" mapstructure:"budget_tolerance_pct"`
}

// ServerConfig configures the HTTP API server.
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
	v.SetEnvPrefix("TRIPCRAFT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "tripcraft.db")
	v.SetDefault("catalog.dir", "seed")
	v.SetDefault("opentrip.base_url", "https://api.opentripmap.io/v1")
	v.SetDefault("amadeus.base_url", "https://api.amadeus.com")
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 4096)
	v.SetDefault("retrieval.live_timeout_secs", 10)
	v.SetDefault("retrieval.live_max_attempts", 3)
	v.SetDefault("retrieval.initial_backoff_ms", 500)
	v.SetDefault("retrieval.failure_threshold", 5)
	v.SetDefault("retrieval.reset_timeout_secs", 30)
	v.SetDefault("retrieval.gen_timeout_secs", 60)
	v.SetDefault("retrieval.fuzzy_threshold", 0.5)
	v.SetDefault("orchestrator.deadline_secs", 120)
	v.SetDefault("verify.budget_tolerance_pct", 10)
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
