package config

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var (
	storeBackends = map[string]bool{
		StoreMemory:   true,
		StoreSQLite:   true,
		StorePostgres: true,
		StoreRedis:    true,
		StoreS3:       true,
	}
	generatorProviders = map[string]bool{
		ProviderHTTP:   true,
		ProviderOpenAI: true,
	}
	extractorModes = map[string]bool{
		ExtractorSimulated: true,
		ExtractorPDF:       true,
	}
)

// ValidateConfig checks if the configuration is usable for the selected
// backends and the current environment.
func ValidateConfig(cfg *Config) error {
	var errs []ValidationError

	if cfg.ServerPort == "" {
		errs = append(errs, ValidationError{"SERVER_PORT", "is required"})
	}
	if !storeBackends[cfg.StoreBackend] {
		errs = append(errs, ValidationError{"STORE_BACKEND", fmt.Sprintf("unknown backend %q", cfg.StoreBackend)})
	}
	if !generatorProviders[cfg.GeneratorProvider] {
		errs = append(errs, ValidationError{"GENERATOR_PROVIDER", fmt.Sprintf("unknown provider %q", cfg.GeneratorProvider)})
	}
	if !extractorModes[cfg.ExtractorMode] {
		errs = append(errs, ValidationError{"EXTRACTOR_MODE", fmt.Sprintf("unknown mode %q", cfg.ExtractorMode)})
	}
	if cfg.GeneratorMaxTokens <= 0 {
		errs = append(errs, ValidationError{"GENERATOR_MAX_TOKENS", "must be positive"})
	}
	if cfg.ExtractDelay < 0 {
		errs = append(errs, ValidationError{"EXTRACT_DELAY", "must not be negative"})
	}
	if cfg.SessionCacheSize <= 0 {
		errs = append(errs, ValidationError{"SESSION_CACHE_SIZE", "must be positive"})
	}
	if cfg.SessionIdleTimeout <= 0 {
		errs = append(errs, ValidationError{"SESSION_IDLE_TIMEOUT", "must be positive"})
	}
	if cfg.RateLimit < 0 {
		errs = append(errs, ValidationError{"RATE_LIMIT", "must not be negative"})
	}

	switch cfg.StoreBackend {
	case StoreSQLite:
		if cfg.SQLitePath == "" {
			errs = append(errs, ValidationError{"SQLITE_PATH", "is required for the sqlite store"})
		}
	case StorePostgres:
		for field, value := range map[string]string{"DB_HOST": cfg.DBHost, "DB_NAME": cfg.DBName, "DB_USER": cfg.DBUser} {
			if value == "" {
				errs = append(errs, ValidationError{field, "is required for the postgres store"})
			}
		}
	case StoreRedis:
		if cfg.RedisURL == "" && cfg.RedisHost == "" {
			errs = append(errs, ValidationError{"REDIS_URL", "REDIS_URL or REDIS_HOST is required for the redis store"})
		}
	case StoreS3:
		if cfg.S3Bucket == "" {
			errs = append(errs, ValidationError{"S3_BUCKET_NAME", "is required for the s3 store"})
		}
	}

	if cfg.GeneratorProvider == ProviderOpenAI && cfg.OpenAIKey == "" {
		errs = append(errs, ValidationError{"OPENAI_API_KEY", "is required for the openai provider"})
	}
	if IsProduction() && cfg.SessionSecret == "" {
		errs = append(errs, ValidationError{"session_secret", "secret is required in production"})
	}

	if len(errs) == 0 {
		return nil
	}
	lines := make([]string, len(errs))
	for i, e := range errs {
		lines[i] = e.Error()
	}
	// map iteration above is unordered
	sort.Strings(lines)
	return fmt.Errorf("configuration validation failed:\n%s", strings.Join(lines, "\n"))
}
