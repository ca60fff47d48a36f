package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"

	"github.com/jwalitptl/frontdesk-scheduler/internal/model"
	"github.com/jwalitptl/frontdesk-scheduler/internal/repository/memory"
)

const (
	DataSourceMemory   = "memory"
	DataSourcePostgres = "postgres"

	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"

	// EnvPrefix namespaces the environment overrides, e.g. SCHEDULER_PORT
	EnvPrefix = "SCHEDULER"
)

type Config struct {
	Server     ServerConfig         `mapstructure:"server"`
	Calendar   model.CalendarConfig `mapstructure:"calendar"`
	Data       DataConfig           `mapstructure:"data"`
	Database   DatabaseConfig       `mapstructure:"database"`
	Cache      CacheConfig          `mapstructure:"cache"`
	Redis      RedisConfig          `mapstructure:"redis"`
	RateLimit  RateLimitConfig      `mapstructure:"rate_limit"`
	CORS       CORSConfig           `mapstructure:"cors"`
	Log        LogConfig            `mapstructure:"log"`
	Prefetch   PrefetchConfig       `mapstructure:"prefetch"`
	Monitoring MonitoringConfig     `mapstructure:"monitoring"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port" validate:"gt=0,lte=65535"`
	Mode            string        `mapstructure:"mode" validate:"oneof=debug release test"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxHeaderBytes  int           `mapstructure:"max_header_bytes" validate:"gte=0"`
}

// DataConfig selects where appointments come from
type DataConfig struct {
	Source       string        `mapstructure:"source" validate:"oneof=memory postgres"`
	Latency      time.Duration `mapstructure:"latency" validate:"gte=0"`
	FetchTimeout time.Duration `mapstructure:"fetch_timeout" validate:"gte=0"`
	Timezone     string        `mapstructure:"timezone"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host" validate:"required_if=Enabled true"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	Enabled         bool          `mapstructure:"-"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

// CacheConfig controls memoisation of appointment range queries
type CacheConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Backend         string        `mapstructure:"backend" validate:"oneof=memory redis"`
	TTL             time.Duration `mapstructure:"ttl" validate:"gte=0"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval" validate:"gte=0"`
}

type RedisConfig struct {
	URL          string        `mapstructure:"url"`
	Prefix       string        `mapstructure:"prefix"`
	MaxRetries   int           `mapstructure:"max_retries"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
}

type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second" validate:"gte=0"`
	Burst             int     `mapstructure:"burst" validate:"gte=0"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
	MaxAge         int      `mapstructure:"max_age"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format" validate:"oneof=console json"`
}

// PrefetchConfig drives the worker that warms the memo cache
type PrefetchConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	Interval      time.Duration `mapstructure:"interval" validate:"gte=0"`
	RetryAttempts int           `mapstructure:"retry_attempts" validate:"gte=0"`
	RetryDelay    time.Duration `mapstructure:"retry_delay" validate:"gte=0"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool   `mapstructure:"prometheus_enabled"`
	MetricsPath       string `mapstructure:"metrics_path"`
}

// env lists the variables that override the config file
type env struct {
	Port         int    `envconfig:"PORT"`
	Mode         string `envconfig:"MODE"`
	DataSource   string `envconfig:"DATA_SOURCE"`
	Latency      string `envconfig:"LATENCY"`
	Timezone     string `envconfig:"TIMEZONE"`
	DBHost       string `envconfig:"DB_HOST"`
	DBPort       int    `envconfig:"DB_PORT"`
	DBUser       string `envconfig:"DB_USER"`
	DBPassword   string `envconfig:"DB_PASSWORD"`
	DBName       string `envconfig:"DB_NAME"`
	CacheBackend string `envconfig:"CACHE_BACKEND"`
	RedisURL     string `envconfig:"REDIS_URL"`
	LogLevel     string `envconfig:"LOG_LEVEL"`
	LogFormat    string `envconfig:"LOG_FORMAT"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.request_timeout", "10s")
	v.SetDefault("server.shutdown_timeout", "5s")
	v.SetDefault("server.max_header_bytes", 1<<20)

	v.SetDefault("calendar.start_hour", model.DefaultCalendarConfig.StartHour)
	v.SetDefault("calendar.end_hour", model.DefaultCalendarConfig.EndHour)
	v.SetDefault("calendar.slot_duration", model.DefaultCalendarConfig.SlotDuration)

	v.SetDefault("data.source", DataSourceMemory)
	v.SetDefault("data.latency", memory.DefaultLatency.String())
	v.SetDefault("data.fetch_timeout", "5s")
	v.SetDefault("data.timezone", "Local")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.name", "scheduler")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "5m")

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.backend", CacheBackendMemory)
	v.SetDefault("cache.ttl", "30s")
	v.SetDefault("cache.cleanup_interval", "1m")

	v.SetDefault("redis.url", "redis://localhost:6379/0")
	v.SetDefault("redis.prefix", "scheduler:")
	v.SetDefault("redis.max_retries", 3)
	v.SetDefault("redis.retry_backoff", "100ms")
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.min_idle_conns", 2)

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests_per_second", 20)
	v.SetDefault("rate_limit.burst", 40)

	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{"Origin", "Content-Type", "Accept", "X-Request-ID"})
	v.SetDefault("cors.max_age", 86400)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("prefetch.enabled", false)
	v.SetDefault("prefetch.interval", "1m")
	v.SetDefault("prefetch.retry_attempts", 3)
	v.SetDefault("prefetch.retry_delay", "2s")

	v.SetDefault("monitoring.prometheus_enabled", true)
	v.SetDefault("monitoring.metrics_path", "/api/v1/health/metrics")
}

// Load reads configFile, or config.yml from the usual locations when it is
// empty, then applies .env and SCHEDULER_* overrides. A missing default
// config file is not an error.
func Load(configFile string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/app/config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.Database.Enabled = cfg.Data.Source == DataSourcePostgres

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() error {
	var e env
	if err := envconfig.Process(EnvPrefix, &e); err != nil {
		return fmt.Errorf("failed to process environment: %w", err)
	}

	if e.Port != 0 {
		c.Server.Port = e.Port
	}
	if e.Mode != "" {
		c.Server.Mode = e.Mode
	}
	if e.DataSource != "" {
		c.Data.Source = strings.ToLower(e.DataSource)
	}
	if e.Latency != "" {
		d, err := time.ParseDuration(e.Latency)
		if err != nil {
			return fmt.Errorf("invalid %s_LATENCY: %w", EnvPrefix, err)
		}
		c.Data.Latency = d
	}
	if e.Timezone != "" {
		c.Data.Timezone = e.Timezone
	}
	if e.DBHost != "" {
		c.Database.Host = e.DBHost
	}
	if e.DBPort != 0 {
		c.Database.Port = e.DBPort
	}
	if e.DBUser != "" {
		c.Database.User = e.DBUser
	}
	if e.DBPassword != "" {
		c.Database.Password = e.DBPassword
	}
	if e.DBName != "" {
		c.Database.Name = e.DBName
	}
	if e.CacheBackend != "" {
		c.Cache.Backend = strings.ToLower(e.CacheBackend)
	}
	if e.RedisURL != "" {
		c.Redis.URL = e.RedisURL
	}
	if e.LogLevel != "" {
		c.Log.Level = e.LogLevel
	}
	if e.LogFormat != "" {
		c.Log.Format = strings.ToLower(e.LogFormat)
	}
	return nil
}

// Validate checks field constraints and the timezone
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Location resolves data.timezone; empty and "Local" mean the host zone
func (c *Config) Location() (*time.Location, error) {
	switch c.Data.Timezone {
	case "", "Local":
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Data.Timezone)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", c.Data.Timezone, err)
	}
	return loc, nil
}
