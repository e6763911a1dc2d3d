package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 5, cfg.Enrich.Concurrency)
	assert.Equal(t, 30000, cfg.Enrich.BudgetMs)
	assert.Equal(t, 90, cfg.Enrich.CacheTTLDays)
	assert.True(t, cfg.Enrich.CacheEnabled)
	assert.False(t, cfg.Enrich.VerifyExisting)
	assert.Equal(t, "https://api.anymailfinder.com/v5.0", cfg.Anymail.BaseURL)
	assert.InDelta(t, 2, cfg.Anymail.RateLimit, 0.001)
	assert.Equal(t, "https://api.hunter.io/v2", cfg.Hunter.BaseURL)
	assert.InDelta(t, 10, cfg.Hunter.RateLimit, 0.001)
	assert.Equal(t, "https://api.apollo.io/v1", cfg.Apollo.BaseURL)
	assert.InDelta(t, 1, cfg.Apollo.RateLimit, 0.001)
	assert.Equal(t, "https://api.neverbounce.com/v4.2", cfg.NeverBounce.BaseURL)
	assert.InDelta(t, 10, cfg.NeverBounce.RateLimit, 0.001)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
store:
  driver: sqlite
log:
  level: debug
  format: console
server:
  port: 9090
enrich:
  concurrency: 10
  budget_ms: 5000
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 10, cfg.Enrich.Concurrency)
	assert.Equal(t, 5000, cfg.Enrich.BudgetMs)
	// Defaults still apply for unset values
	assert.Equal(t, 90, cfg.Enrich.CacheTTLDays)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
store:
  driver: sqlite
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("OUTREACH_STORE_DRIVER", "postgres")
	t.Setenv("OUTREACH_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	t.Setenv("OUTREACH_SERVER_PORT", "3000")
	t.Setenv("OUTREACH_HUNTER_KEY", "hk_test")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "hk_test", cfg.Hunter.Key)
}

func TestConfiguredProviders(t *testing.T) {
	cfg := &Config{}
	assert.Empty(t, cfg.ConfiguredProviders())

	cfg.Hunter.Key = "hk"
	cfg.NeverBounce.Key = "nb"
	assert.Equal(t, []string{"hunter", "neverbounce"}, cfg.ConfiguredProviders())

	cfg.Anymail.Key = "am"
	cfg.Apollo.Key = "ap"
	assert.Equal(t, []string{"anymail", "hunter", "apollo", "neverbounce"}, cfg.ConfiguredProviders())
}

func TestValidateEnrichment_AllPresent(t *testing.T) {
	cfg := &Config{}
	cfg.Store.Driver = "postgres"
	cfg.Store.DatabaseURL = "postgres://localhost/test"
	cfg.Hunter.Key = "hk_test"

	assert.NoError(t, cfg.Validate("enrichment"))
}

func TestValidateEnrichment_SQLiteNeedsNoURL(t *testing.T) {
	cfg := &Config{}
	cfg.Store.Driver = "sqlite"
	cfg.Anymail.Key = "am_test"

	assert.NoError(t, cfg.Validate("enrichment"))
}

func TestValidateEnrichment_MissingFields(t *testing.T) {
	cfg := &Config{}
	cfg.Store.Driver = "postgres"

	err := cfg.Validate("enrichment")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "store.database_url")
	assert.Contains(t, err.Error(), "at least one provider key")
}

func TestValidateNotion(t *testing.T) {
	cfg := &Config{}
	err := cfg.Validate("notion")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "notion.token")
	assert.Contains(t, err.Error(), "notion.lead_db")

	cfg.Notion.Token = "ntn_token"
	cfg.Notion.LeadDB = "lead-db-id"
	assert.NoError(t, cfg.Validate("notion"))
}

func TestValidateStore(t *testing.T) {
	cfg := &Config{}
	cfg.Store.Driver = "postgres"
	err := cfg.Validate("store")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "store.database_url")

	cfg.Store.DatabaseURL = "postgres://localhost/test"
	assert.NoError(t, cfg.Validate("store"))
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}
