// Package config provides centralized configuration management
// using Viper for configuration loading and validation
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Cache      CacheConfig      `mapstructure:"cache"`
	AI         AIConfig         `mapstructure:"ai"`
	Unsplash   UnsplashConfig   `mapstructure:"unsplash"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	Drafts     DraftsConfig     `mapstructure:"drafts"`

	v *viper.Viper
}

// AppConfig contains application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	Debug       bool   `mapstructure:"debug"`
	LogLevel    string `mapstructure:"log_level"`
	LogFormat   string `mapstructure:"log_format"`
	TestMode    bool   `mapstructure:"test_mode"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	PublicURL         string        `mapstructure:"public_url"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout    time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
	AllowedOrigins    []string      `mapstructure:"allowed_origins"`
	EnableCompression bool          `mapstructure:"enable_compression"`
}

// DatabaseConfig contains document store configuration
type DatabaseConfig struct {
	Driver         string        `mapstructure:"driver"`
	URI            string        `mapstructure:"uri"`
	Name           string        `mapstructure:"name"`
	TestURI        string        `mapstructure:"test_uri"`
	TestName       string        `mapstructure:"test_name"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	MaxPoolSize    uint64        `mapstructure:"max_pool_size"`
}

// RedisConfig contains Redis configuration
type RedisConfig struct {
	URL      string `mapstructure:"url"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	Database int    `mapstructure:"database"`
	PoolSize int    `mapstructure:"pool_size"`
}

// CacheConfig selects the cache backend and its TTLs
type CacheConfig struct {
	Driver    string        `mapstructure:"driver"`
	RecipeTTL time.Duration `mapstructure:"recipe_ttl"`
	PhotoTTL  time.Duration `mapstructure:"photo_ttl"`
}

// AIConfig contains completion API configuration
type AIConfig struct {
	APIKey                string        `mapstructure:"api_key"`
	BaseURL               string        `mapstructure:"base_url"`
	Model                 string        `mapstructure:"model"`
	Timeout               time.Duration `mapstructure:"timeout"`
	MaxTokens             int           `mapstructure:"max_tokens"`
	RegenerationMaxTokens int           `mapstructure:"regeneration_max_tokens"`
	Temperature           float64       `mapstructure:"temperature"`
	MaxRetries            uint64        `mapstructure:"max_retries"`
}

// UnsplashConfig contains photo search configuration
type UnsplashConfig struct {
	AccessKey         string        `mapstructure:"access_key"`
	BaseURL           string        `mapstructure:"base_url"`
	AppName           string        `mapstructure:"app_name"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	MinJitter         time.Duration `mapstructure:"min_jitter"`
	MaxJitter         time.Duration `mapstructure:"max_jitter"`
	MaxRetries        uint64        `mapstructure:"max_retries"`
}

// MonitoringConfig contains monitoring configuration
type MonitoringConfig struct {
	EnableMetrics bool    `mapstructure:"enable_metrics"`
	EnableTracing bool    `mapstructure:"enable_tracing"`
	OTLPEndpoint  string  `mapstructure:"otlp_endpoint"`
	SamplingRate  float64 `mapstructure:"sampling_rate"`

	HealthCacheTTL time.Duration `mapstructure:"health_cache_ttl"`
}

// RateLimitConfig bounds the per-client rate on the AI endpoints
type RateLimitConfig struct {
	AIRequestsPerMin int           `mapstructure:"ai_requests_per_min"`
	AIBurst          int           `mapstructure:"ai_burst"`
	CleanupInterval  time.Duration `mapstructure:"cleanup_interval"`
}

// DraftsConfig contains draft store configuration
type DraftsConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()

	setDefaults(v)
	bindEnv(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/cookbook")
	}

	v.SetEnvPrefix("COOKBOOK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	config.v = v
	config.applyTestDatabase()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "Cookbook")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.debug", false)
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.log_format", "json")
	v.SetDefault("app.test_mode", false)

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.public_url", "http://localhost:8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "90s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.request_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.enable_compression", true)

	v.SetDefault("database.driver", "mongo")
	v.SetDefault("database.uri", "")
	v.SetDefault("database.name", "cookbook")
	v.SetDefault("database.test_uri", "")
	v.SetDefault("database.test_name", "")
	v.SetDefault("database.connect_timeout", "10s")
	v.SetDefault("database.max_pool_size", 0)

	v.SetDefault("redis.url", "")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.database", 0)
	v.SetDefault("redis.pool_size", 10)

	v.SetDefault("cache.driver", "memory")
	v.SetDefault("cache.recipe_ttl", "10m")
	v.SetDefault("cache.photo_ttl", "1h")

	v.SetDefault("ai.api_key", "")
	v.SetDefault("ai.base_url", "https://api.openai.com/v1")
	v.SetDefault("ai.model", "gpt-4o-mini")
	v.SetDefault("ai.timeout", "60s")
	v.SetDefault("ai.max_tokens", 1200)
	v.SetDefault("ai.regeneration_max_tokens", 2000)
	v.SetDefault("ai.temperature", 0.7)
	v.SetDefault("ai.max_retries", 3)

	v.SetDefault("unsplash.access_key", "")
	v.SetDefault("unsplash.base_url", "https://api.unsplash.com")
	v.SetDefault("unsplash.app_name", "cookbook")
	v.SetDefault("unsplash.timeout", "15s")
	v.SetDefault("unsplash.requests_per_second", 3)
	v.SetDefault("unsplash.min_jitter", "250ms")
	v.SetDefault("unsplash.max_jitter", "500ms")
	v.SetDefault("unsplash.max_retries", 3)

	v.SetDefault("monitoring.enable_metrics", true)
	v.SetDefault("monitoring.enable_tracing", false)
	v.SetDefault("monitoring.otlp_endpoint", "localhost:4318")
	v.SetDefault("monitoring.sampling_rate", 0.1)
	v.SetDefault("monitoring.health_cache_ttl", "5s")

	v.SetDefault("rate_limit.ai_requests_per_min", 20)
	v.SetDefault("rate_limit.ai_burst", 5)
	v.SetDefault("rate_limit.cleanup_interval", "1m")

	v.SetDefault("drafts.ttl", "168h")
}

// bindEnv wires the conventional unprefixed variables next to the
// COOKBOOK_ ones. The first variable that is set wins.
func bindEnv(v *viper.Viper) {
	_ = v.BindEnv("app.environment", "COOKBOOK_APP_ENVIRONMENT", "APP_ENV")
	_ = v.BindEnv("database.uri", "COOKBOOK_DATABASE_URI", "MONGODB_URI")
	_ = v.BindEnv("database.name", "COOKBOOK_DATABASE_NAME", "MONGODB_DB")
	_ = v.BindEnv("database.test_uri", "COOKBOOK_DATABASE_TEST_URI", "MONGODB_URI_TEST")
	_ = v.BindEnv("database.test_name", "COOKBOOK_DATABASE_TEST_NAME", "MONGODB_DB_TEST")
	_ = v.BindEnv("ai.api_key", "COOKBOOK_AI_API_KEY", "OPENAI_API_KEY")
	_ = v.BindEnv("ai.model", "COOKBOOK_AI_MODEL", "OPENAI_MODEL")
	_ = v.BindEnv("unsplash.access_key", "COOKBOOK_UNSPLASH_ACCESS_KEY", "UNSPLASH_ACCESS_KEY")
	_ = v.BindEnv("redis.url", "COOKBOOK_REDIS_URL", "REDIS_URL")
}

// applyTestDatabase swaps in the test connection when running under test.
// Without an explicit test database name the regular name gets a _test suffix.
func (c *Config) applyTestDatabase() {
	if !c.IsTest() {
		return
	}
	if c.Database.TestURI != "" {
		c.Database.URI = c.Database.TestURI
	}
	if c.Database.TestName != "" {
		c.Database.Name = c.Database.TestName
	} else if !strings.HasSuffix(c.Database.Name, "_test") {
		c.Database.Name += "_test"
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app.name is required")
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}

	switch c.Database.Driver {
	case "mongo":
		if c.Database.URI == "" {
			return fmt.Errorf("database.uri (MONGODB_URI) is required for the mongo driver")
		}
		if c.Database.Name == "" {
			return fmt.Errorf("database.name (MONGODB_DB) is required for the mongo driver")
		}
	case "memory":
	default:
		return fmt.Errorf("database.driver must be one of mongo, memory; got %q", c.Database.Driver)
	}

	switch c.Cache.Driver {
	case "redis", "memory", "none":
	default:
		return fmt.Errorf("cache.driver must be one of redis, memory, none; got %q", c.Cache.Driver)
	}

	if c.AI.Model == "" {
		return fmt.Errorf("ai.model is required")
	}

	if c.IsProduction() {
		if c.AI.APIKey == "" {
			return fmt.Errorf("ai.api_key (OPENAI_API_KEY) is required in production")
		}
		if c.Unsplash.AccessKey == "" {
			return fmt.Errorf("unsplash.access_key (UNSPLASH_ACCESS_KEY) is required in production")
		}
	}

	return nil
}

// OnLogLevelChange watches the config file and reports the log level after
// every change. It is a no-op when no config file was loaded.
func (c *Config) OnLogLevelChange(fn func(level string)) {
	if c.v == nil || c.v.ConfigFileUsed() == "" {
		return
	}
	c.v.OnConfigChange(func(_ fsnotify.Event) {
		level := c.v.GetString("app.log_level")
		c.App.LogLevel = level
		fn(level)
	})
	c.v.WatchConfig()
}

// IsProduction returns true if running in production
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// IsTest reports whether the test database should be used
func (c *Config) IsTest() bool {
	return c.App.TestMode || c.App.Environment == "test"
}

// ListenAddr returns the host:port the HTTP server binds to
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Addr returns the host:port of the Redis server
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
