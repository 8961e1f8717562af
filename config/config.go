package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Store backends
const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
	StoreS3       = "s3"
)

// Generator providers
const (
	ProviderHTTP   = "http"
	ProviderOpenAI = "openai"
)

// Extractor modes
const (
	ExtractorSimulated = "simulated"
	ExtractorPDF       = "pdf"
)

// PlaceholderEndpoint is the unconfigured generation endpoint. While it is in
// place the generator serves the built-in fallback batch.
const PlaceholderEndpoint = "https://your-serverless-function.com/api/generate"

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	ServerPort  string   `yaml:"server_port"`
	ServerHost  string   `yaml:"server_host"`
	CORSOrigins []string `yaml:"cors_origins"`

	// Logging
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// Persistence store
	StoreBackend string `yaml:"store_backend"`
	SQLitePath   string `yaml:"sqlite_path"`

	// Database configuration
	DBHost     string `yaml:"db_host"`
	DBPort     string `yaml:"db_port"`
	DBUser     string `yaml:"db_user"`
	DBPassword string `yaml:"-"`
	DBName     string `yaml:"db_name"`
	DBSSLMode  string `yaml:"db_ssl_mode"`

	// Redis configuration
	RedisHost     string `yaml:"redis_host"`
	RedisPort     string `yaml:"redis_port"`
	RedisPassword string `yaml:"-"`
	RedisDB       int    `yaml:"redis_db"`
	RedisURL      string `yaml:"redis_url"`

	// S3 configuration
	S3Bucket   string `yaml:"s3_bucket"`
	S3Prefix   string `yaml:"s3_prefix"`
	S3Endpoint string `yaml:"s3_endpoint"`
	AWSRegion  string `yaml:"aws_region"`

	// Generation backend
	GeneratorProvider  string `yaml:"generator_provider"`
	GeneratorEndpoint  string `yaml:"generator_endpoint"`
	GeneratorMaxTokens int    `yaml:"generator_max_tokens"`
	OpenAIKey          string `yaml:"-"`
	OpenAIModel        string `yaml:"openai_model"`
	OpenAIBaseURL      string `yaml:"openai_base_url"`

	// Text extraction
	ExtractorMode  string        `yaml:"extractor_mode"`
	ExtractDelay   time.Duration `yaml:"extract_delay"`
	MaxUploadBytes int64         `yaml:"max_upload_bytes"`

	// Sessions
	SessionSecret string        `yaml:"-"`
	SessionTTL    time.Duration `yaml:"session_ttl"`
	// Live session controllers kept in memory, and how long an unused one is kept
	SessionCacheSize   int           `yaml:"session_cache_size"`
	SessionIdleTimeout time.Duration `yaml:"session_idle_timeout"`

	// Rate limiting of suggestion requests, 0 disables it
	RateLimit  int           `yaml:"rate_limit"`
	RateWindow time.Duration `yaml:"rate_window"`
}

// Defaults returns the configuration used when nothing else is set.
func Defaults() *Config {
	return &Config{
		ServerPort:         "8080",
		ServerHost:         "0.0.0.0",
		CORSOrigins:        []string{"http://localhost:5173"},
		LogLevel:           "info",
		LogFormat:          "json",
		StoreBackend:       StoreSQLite,
		SQLitePath:         "recipe-assistant.db",
		DBPort:             "5432",
		DBSSLMode:          "disable",
		RedisPort:          "6379",
		S3Prefix:           "recipe-assistant/",
		GeneratorProvider:  ProviderHTTP,
		GeneratorEndpoint:  PlaceholderEndpoint,
		GeneratorMaxTokens: 1500,
		OpenAIModel:        "gpt-4o-mini",
		ExtractorMode:      ExtractorSimulated,
		ExtractDelay:       time.Second,
		MaxUploadBytes:     10 << 20,
		SessionTTL:         30 * 24 * time.Hour,
		SessionCacheSize:   10000,
		SessionIdleTimeout: time.Hour,
		RateWindow:         time.Hour,
	}
}

// LoadConfig creates a new Config from defaults, the optional YAML file, a .env
// file, environment variables and secrets, in that order of precedence.
func LoadConfig() (*Config, error) {
	env := GetEnvironment()
	cfg := Defaults()

	if err := loadFile(cfg, configFilePath()); err != nil {
		return nil, fmt.Errorf("failed to load configuration file: %w", err)
	}
	loadDotEnv()

	if err := loadEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load %s configuration: %w", env, err)
	}
	loadSecrets(cfg)

	// Validate the configuration
	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// IsPlaceholderEndpoint reports whether the generation endpoint is still unconfigured.
func (c *Config) IsPlaceholderEndpoint() bool {
	return IsPlaceholder(c.GeneratorEndpoint)
}

// IsPlaceholder reports whether endpoint is empty or the placeholder URL.
func IsPlaceholder(endpoint string) bool {
	endpoint = strings.TrimSpace(endpoint)
	return endpoint == "" || strings.Contains(endpoint, "your-serverless-function")
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}

func loadEnv(cfg *Config) error {
	setString(&cfg.ServerPort, "SERVER_PORT")
	setString(&cfg.ServerHost, "SERVER_HOST")
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		cfg.CORSOrigins = splitList(v)
	}
	setString(&cfg.LogLevel, "LOG_LEVEL")
	setString(&cfg.LogFormat, "LOG_FORMAT")

	setString(&cfg.StoreBackend, "STORE_BACKEND")
	setString(&cfg.SQLitePath, "SQLITE_PATH")

	setString(&cfg.DBHost, "DB_HOST")
	setString(&cfg.DBPort, "DB_PORT")
	setString(&cfg.DBUser, "DB_USER")
	setString(&cfg.DBPassword, "DB_PASSWORD")
	setString(&cfg.DBName, "DB_NAME")
	setString(&cfg.DBSSLMode, "DB_SSL_MODE")

	setString(&cfg.RedisHost, "REDIS_HOST")
	setString(&cfg.RedisPort, "REDIS_PORT")
	setString(&cfg.RedisPassword, "REDIS_PASSWORD")
	setString(&cfg.RedisURL, "REDIS_URL")
	if err := setInt(&cfg.RedisDB, "REDIS_DB"); err != nil {
		return err
	}

	setString(&cfg.S3Bucket, "S3_BUCKET_NAME")
	setString(&cfg.S3Prefix, "S3_PREFIX")
	setString(&cfg.S3Endpoint, "S3_ENDPOINT")
	setString(&cfg.AWSRegion, "AWS_REGION")

	setString(&cfg.GeneratorProvider, "GENERATOR_PROVIDER")
	setString(&cfg.GeneratorEndpoint, "GENERATOR_ENDPOINT")
	if err := setInt(&cfg.GeneratorMaxTokens, "GENERATOR_MAX_TOKENS"); err != nil {
		return err
	}
	setString(&cfg.OpenAIKey, "OPENAI_API_KEY")
	setString(&cfg.OpenAIModel, "OPENAI_MODEL")
	setString(&cfg.OpenAIBaseURL, "OPENAI_BASE_URL")

	setString(&cfg.ExtractorMode, "EXTRACTOR_MODE")
	if err := setDuration(&cfg.ExtractDelay, "EXTRACT_DELAY"); err != nil {
		return err
	}
	if v := os.Getenv("MAX_UPLOAD_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("MAX_UPLOAD_BYTES: %w", err)
		}
		cfg.MaxUploadBytes = n
	}

	setString(&cfg.SessionSecret, "SESSION_SECRET")
	if err := setDuration(&cfg.SessionTTL, "SESSION_TTL"); err != nil {
		return err
	}
	if err := setInt(&cfg.SessionCacheSize, "SESSION_CACHE_SIZE"); err != nil {
		return err
	}
	if err := setDuration(&cfg.SessionIdleTimeout, "SESSION_IDLE_TIMEOUT"); err != nil {
		return err
	}

	if err := setInt(&cfg.RateLimit, "RATE_LIMIT"); err != nil {
		return err
	}
	return setDuration(&cfg.RateWindow, "RATE_WINDOW")
}

// loadSecrets fills sensitive values from the secrets directory when they are
// not already set by the environment.
func loadSecrets(cfg *Config) {
	secrets := map[string]*string{
		"db_password":    &cfg.DBPassword,
		"redis_password": &cfg.RedisPassword,
		"session_secret": &cfg.SessionSecret,
		"openai_api_key": &cfg.OpenAIKey,
	}
	for name, dst := range secrets {
		if *dst != "" {
			continue
		}
		if v := readSecret(name); v != "" {
			*dst = v
		}
	}
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
