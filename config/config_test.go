package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("DOTENV_FILE", filepath.Join(dir, "missing.env"))
	t.Setenv("SECRETS_DIR", dir)
	t.Setenv("ENV", "test")
	t.Setenv("CI", "")
	for _, key := range []string{
		"SERVER_PORT", "STORE_BACKEND", "GENERATOR_ENDPOINT", "GENERATOR_PROVIDER",
		"EXTRACTOR_MODE", "EXTRACT_DELAY", "DB_HOST", "DB_NAME", "DB_USER", "REDIS_URL",
		"REDIS_HOST", "S3_BUCKET_NAME", "OPENAI_API_KEY", "SESSION_SECRET", "RATE_LIMIT",
		"SESSION_CACHE_SIZE", "SESSION_IDLE_TIMEOUT",
	} {
		t.Setenv(key, "")
	}
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoadConfigWithDefaults(t *testing.T) {
	isolate(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, StoreSQLite, cfg.StoreBackend)
	assert.Equal(t, PlaceholderEndpoint, cfg.GeneratorEndpoint)
	assert.Equal(t, 1500, cfg.GeneratorMaxTokens)
	assert.Equal(t, ExtractorSimulated, cfg.ExtractorMode)
	assert.Equal(t, time.Second, cfg.ExtractDelay)
	assert.True(t, cfg.IsPlaceholderEndpoint())
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	isolate(t)
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("STORE_BACKEND", "redis")
	t.Setenv("REDIS_URL", "redis://localhost:6379")
	t.Setenv("GENERATOR_ENDPOINT", "https://recipes.example.com/generate")
	t.Setenv("EXTRACT_DELAY", "250ms")
	t.Setenv("RATE_LIMIT", "5")
	t.Setenv("SESSION_CACHE_SIZE", "50")
	t.Setenv("SESSION_IDLE_TIMEOUT", "10m")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.ServerPort)
	assert.Equal(t, StoreRedis, cfg.StoreBackend)
	assert.Equal(t, "redis://localhost:6379", cfg.RedisURL)
	assert.False(t, cfg.IsPlaceholderEndpoint())
	assert.Equal(t, 250*time.Millisecond, cfg.ExtractDelay)
	assert.Equal(t, 5, cfg.RateLimit)
	assert.Equal(t, 50, cfg.SessionCacheSize)
	assert.Equal(t, 10*time.Minute, cfg.SessionIdleTimeout)
}

func TestLoadConfigFileAndSecrets(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server_port: \"7070\"\nstore_backend: memory\nextract_delay: 2s\n"), 0o644))
	t.Setenv("CONFIG_FILE", path)

	secrets := os.Getenv("SECRETS_DIR")
	require.NoError(t, os.WriteFile(filepath.Join(secrets, "session_secret"), []byte("from-secret\n"), 0o600))

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.ServerPort)
	assert.Equal(t, StoreMemory, cfg.StoreBackend)
	assert.Equal(t, 2*time.Second, cfg.ExtractDelay)
	assert.Equal(t, "from-secret", cfg.SessionSecret)
}

func TestLoadConfigMissingNamedFile(t *testing.T) {
	isolate(t)
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "nope.yaml"))

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestValidateConfig(t *testing.T) {
	isolate(t)

	cfg := Defaults()
	cfg.StoreBackend = StorePostgres
	cfg.GeneratorProvider = ProviderOpenAI

	err := ValidateConfig(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_HOST")
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")

	cfg = Defaults()
	cfg.StoreBackend = "floppy"
	assert.ErrorContains(t, ValidateConfig(cfg), `unknown backend "floppy"`)

	assert.NoError(t, ValidateConfig(Defaults()))
}

func TestValidateConfigProductionNeedsSessionSecret(t *testing.T) {
	isolate(t)
	t.Setenv("ENV", "production")

	cfg := Defaults()
	assert.ErrorContains(t, ValidateConfig(cfg), "session_secret")

	cfg.SessionSecret = "s3cr3t"
	assert.NoError(t, ValidateConfig(cfg))
}

func TestIsPlaceholder(t *testing.T) {
	assert.True(t, IsPlaceholder(""))
	assert.True(t, IsPlaceholder("  "))
	assert.True(t, IsPlaceholder(PlaceholderEndpoint))
	assert.False(t, IsPlaceholder("https://api.example.com/generate"))
}
