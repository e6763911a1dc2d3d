// Package config loads application configuration from config.yaml and
// OUTREACH_* environment variables, and initializes the global logger.
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
	Store       StoreConfig    `yaml:"store" mapstructure:"store"`
	Anymail     ProviderConfig `yaml:"anymail" mapstructure:"anymail"`
	Hunter      ProviderConfig `yaml:"hunter" mapstructure:"hunter"`
	Apollo      ProviderConfig `yaml:"apollo" mapstructure:"apollo"`
	NeverBounce ProviderConfig `yaml:"neverbounce" mapstructure:"neverbounce"`
	Notion      NotionConfig   `yaml:"notion" mapstructure:"notion"`
	Enrich      EnrichConfig   `yaml:"enrich" mapstructure:"enrich"`
	Routing     RoutingConfig  `yaml:"routing" mapstructure:"routing"`
	Server      ServerConfig   `yaml:"server" mapstructure:"server"`
	Log         LogConfig      `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ProviderConfig holds one lookup service's credentials and tuning. A
// provider with an empty key is simply not configured; the router skips it.
type ProviderConfig struct {
	Key       string  `yaml:"key" mapstructure:"key"`
	BaseURL   string  `yaml:"base_url" mapstructure:"base_url"`
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// NotionConfig holds Notion API credentials and the lead queue database ID.
type NotionConfig struct {
	Token  string `yaml:"token" mapstructure:"token"`
	LeadDB string `yaml:"lead_db" mapstructure:"lead_db"`
}

// EnrichConfig tunes the resolution engine.
type EnrichConfig struct {
	Concurrency    int  `yaml:"concurrency" mapstructure:"concurrency"`
	BudgetMs       int  `yaml:"budget_ms" mapstructure:"budget_ms"`
	CacheTTLDays   int  `yaml:"cache_ttl_days" mapstructure:"cache_ttl_days"`
	CacheEnabled   bool `yaml:"cache_enabled" mapstructure:"cache_enabled"`
	VerifyExisting bool `yaml:"verify_existing" mapstructure:"verify_existing"`
}

// RoutingConfig points at an optional routing-table override file.
type RoutingConfig struct {
	Table string `yaml:"table" mapstructure:"table"`
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
	v.SetEnvPrefix("OUTREACH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "postgres")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("enrich.concurrency", 5)
	v.SetDefault("enrich.budget_ms", 30000)
	v.SetDefault("enrich.cache_ttl_days", 90)
	v.SetDefault("enrich.cache_enabled", true)
	v.SetDefault("anymail.base_url", "https://api.anymailfinder.com/v5.0")
	v.SetDefault("anymail.rate_limit", 2)
	v.SetDefault("hunter.base_url", "https://api.hunter.io/v2")
	v.SetDefault("hunter.rate_limit", 10)
	v.SetDefault("apollo.base_url", "https://api.apollo.io/v1")
	v.SetDefault("apollo.rate_limit", 1)
	v.SetDefault("neverbounce.base_url", "https://api.neverbounce.com/v4.2")
	v.SetDefault("neverbounce.rate_limit", 10)

	// Credential keys default to empty so env-only values bind on Unmarshal.
	for _, key := range []string{
		"store.database_url",
		"anymail.key", "hunter.key", "apollo.key", "neverbounce.key",
		"notion.token", "notion.lead_db",
		"routing.table",
	} {
		v.SetDefault(key, "")
	}

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

// ConfiguredProviders lists the providers with credentials present.
func (c *Config) ConfiguredProviders() []string {
	var out []string
	for _, p := range []struct {
		name string
		cfg  ProviderConfig
	}{
		{"anymail", c.Anymail},
		{"hunter", c.Hunter},
		{"apollo", c.Apollo},
		{"neverbounce", c.NeverBounce},
	} {
		if p.cfg.Key != "" {
			out = append(out, p.name)
		}
	}
	return out
}

// Validate checks required keys for the given command mode.
func (c *Config) Validate(mode string) error {
	var missing []string

	switch mode {
	case "enrichment":
		if c.Store.Driver == "postgres" && c.Store.DatabaseURL == "" {
			missing = append(missing, "store.database_url")
		}
		if len(c.ConfiguredProviders()) == 0 {
			missing = append(missing, "at least one provider key (anymail.key, hunter.key, apollo.key, neverbounce.key)")
		}
	case "notion":
		if c.Notion.Token == "" {
			missing = append(missing, "notion.token")
		}
		if c.Notion.LeadDB == "" {
			missing = append(missing, "notion.lead_db")
		}
	case "store":
		if c.Store.Driver == "postgres" && c.Store.DatabaseURL == "" {
			missing = append(missing, "store.database_url")
		}
	}

	if len(missing) > 0 {
		return eris.Errorf("config: missing required settings: %s", strings.Join(missing, ", "))
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
