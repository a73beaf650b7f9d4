package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. SCHED_DATABASE_HOST.
const EnvPrefix = "SCHED"

type Config struct {
	Server     ServerConfig     `mapstructure:"server" envconfig:"SERVER"`
	Database   DatabaseConfig   `mapstructure:"database" envconfig:"DATABASE"`
	Redis      RedisConfig      `mapstructure:"redis" envconfig:"REDIS"`
	Broker     BrokerConfig     `mapstructure:"broker" envconfig:"BROKER"`
	Auth       AuthConfig       `mapstructure:"auth" envconfig:"AUTH"`
	Scheduling SchedulingConfig `mapstructure:"scheduling" envconfig:"SCHEDULING"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit" envconfig:"RATE_LIMIT"`
	Sentry     SentryConfig     `mapstructure:"sentry" envconfig:"SENTRY"`
	Outbox     OutboxConfig     `mapstructure:"outbox" envconfig:"OUTBOX"`
	Worker     WorkerConfig     `mapstructure:"worker" envconfig:"WORKER"`
	Log        LogConfig        `mapstructure:"log" envconfig:"LOG"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port" envconfig:"PORT"`
	Mode            string        `mapstructure:"mode" envconfig:"MODE"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout" envconfig:"REQUEST_TIMEOUT"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	CORSOrigins     []string      `mapstructure:"cors_origins" envconfig:"CORS_ORIGINS"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes" envconfig:"MAX_BODY_BYTES"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host" envconfig:"HOST"`
	Port            int           `mapstructure:"port" envconfig:"PORT"`
	User            string        `mapstructure:"user" envconfig:"USER"`
	Password        string        `mapstructure:"password" envconfig:"PASSWORD"`
	Name            string        `mapstructure:"name" envconfig:"NAME"`
	SSLMode         string        `mapstructure:"sslmode" envconfig:"SSLMODE"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" envconfig:"MAX_OPEN_CONNS"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" envconfig:"MAX_IDLE_CONNS"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" envconfig:"CONN_MAX_LIFETIME"`
}

// DSN renders the lib/pq connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// RedisConfig leaves Redis disabled when URL is empty.
type RedisConfig struct {
	URL          string        `mapstructure:"url" envconfig:"URL"`
	PoolSize     int           `mapstructure:"pool_size" envconfig:"POOL_SIZE"`
	MinIdleConns int           `mapstructure:"min_idle_conns" envconfig:"MIN_IDLE_CONNS"`
	MaxRetries   int           `mapstructure:"max_retries" envconfig:"MAX_RETRIES"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff" envconfig:"RETRY_BACKOFF"`
}

type BrokerConfig struct {
	// Driver is redis, kafka or none.
	Driver       string   `mapstructure:"driver" envconfig:"DRIVER"`
	TopicPrefix  string   `mapstructure:"topic_prefix" envconfig:"TOPIC_PREFIX"`
	KafkaBrokers []string `mapstructure:"kafka_brokers" envconfig:"KAFKA_BROKERS"`
	KafkaGroupID string   `mapstructure:"kafka_group_id" envconfig:"KAFKA_GROUP_ID"`
}

type AuthConfig struct {
	JWTSecret            string        `mapstructure:"jwt_secret" envconfig:"JWT_SECRET"`
	JWTIssuer            string        `mapstructure:"jwt_issuer" envconfig:"JWT_ISSUER"`
	SessionTTL           time.Duration `mapstructure:"session_ttl" envconfig:"SESSION_TTL"`
	SessionCookie        string        `mapstructure:"session_cookie" envconfig:"SESSION_COOKIE"`
	IntegrationTokenHash string        `mapstructure:"integration_token_hash" envconfig:"INTEGRATION_TOKEN_HASH"`
	TokenCacheTTL        time.Duration `mapstructure:"token_cache_ttl" envconfig:"TOKEN_CACHE_TTL"`
}

type SchedulingConfig struct {
	DefaultTimezone    string        `mapstructure:"default_timezone" envconfig:"DEFAULT_TIMEZONE"`
	CancelledRetention time.Duration `mapstructure:"cancelled_retention" envconfig:"CANCELLED_RETENTION"`
	RetentionInterval  time.Duration `mapstructure:"retention_interval" envconfig:"RETENTION_INTERVAL"`
	ClinicCacheTTL     time.Duration `mapstructure:"clinic_cache_ttl" envconfig:"CLINIC_CACHE_TTL"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64       `mapstructure:"requests_per_second" envconfig:"REQUESTS_PER_SECOND"`
	Burst             int           `mapstructure:"burst" envconfig:"BURST"`
	IntegrationLimit  int           `mapstructure:"integration_limit" envconfig:"INTEGRATION_LIMIT"`
	IntegrationWindow time.Duration `mapstructure:"integration_window" envconfig:"INTEGRATION_WINDOW"`
	FailOpen          bool          `mapstructure:"fail_open" envconfig:"FAIL_OPEN"`
}

type SentryConfig struct {
	DSN              string  `mapstructure:"dsn" envconfig:"DSN"`
	Environment      string  `mapstructure:"environment" envconfig:"ENVIRONMENT"`
	Release          string  `mapstructure:"release" envconfig:"RELEASE"`
	TracesSampleRate float64 `mapstructure:"traces_sample_rate" envconfig:"TRACES_SAMPLE_RATE"`
}

type OutboxConfig struct {
	BatchSize          int           `mapstructure:"batch_size" envconfig:"BATCH_SIZE"`
	PollInterval       time.Duration `mapstructure:"poll_interval" envconfig:"POLL_INTERVAL"`
	RetryAttempts      int           `mapstructure:"retry_attempts" envconfig:"RETRY_ATTEMPTS"`
	RetryDelay         time.Duration `mapstructure:"retry_delay" envconfig:"RETRY_DELAY"`
	Lease              time.Duration `mapstructure:"lease" envconfig:"LEASE"`
	ProcessedRetention time.Duration `mapstructure:"processed_retention" envconfig:"PROCESSED_RETENTION"`
}

type WorkerConfig struct {
	HealthPort int `mapstructure:"health_port" envconfig:"HEALTH_PORT"`
}

type LogConfig struct {
	Level string `mapstructure:"level" envconfig:"LEVEL"`
	JSON  bool   `mapstructure:"json" envconfig:"JSON"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.request_timeout", 10*time.Second)
	v.SetDefault("server.shutdown_timeout", 5*time.Second)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.max_body_bytes", 1<<20)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.name", "scheduling")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 30*time.Minute)

	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.max_retries", 3)
	v.SetDefault("redis.retry_backoff", 100*time.Millisecond)

	v.SetDefault("broker.driver", "redis")
	v.SetDefault("broker.topic_prefix", "scheduling")
	v.SetDefault("broker.kafka_group_id", "scheduling-api")

	v.SetDefault("auth.jwt_issuer", "scheduling-api")
	v.SetDefault("auth.session_ttl", 12*time.Hour)
	v.SetDefault("auth.session_cookie", "session")
	v.SetDefault("auth.token_cache_ttl", 5*time.Minute)

	v.SetDefault("scheduling.default_timezone", "UTC")
	v.SetDefault("scheduling.cancelled_retention", 7*24*time.Hour)
	v.SetDefault("scheduling.retention_interval", time.Hour)
	v.SetDefault("scheduling.clinic_cache_ttl", time.Minute)

	v.SetDefault("rate_limit.requests_per_second", 50.0)
	v.SetDefault("rate_limit.burst", 100)
	v.SetDefault("rate_limit.integration_limit", 120)
	v.SetDefault("rate_limit.integration_window", time.Minute)
	v.SetDefault("rate_limit.fail_open", true)

	v.SetDefault("sentry.environment", "development")
	v.SetDefault("sentry.traces_sample_rate", 0.2)

	v.SetDefault("outbox.batch_size", 100)
	v.SetDefault("outbox.poll_interval", 2*time.Second)
	v.SetDefault("outbox.retry_attempts", 5)
	v.SetDefault("outbox.retry_delay", 5*time.Second)
	v.SetDefault("outbox.lease", time.Minute)
	v.SetDefault("outbox.processed_retention", 24*time.Hour)

	v.SetDefault("worker.health_port", 8081)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", true)
}

// LoadConfig reads config.yml from configPaths (default ".", "./config",
// "/app/config"), falls back to defaults when no file exists, then applies
// SCHED_* environment overrides.
func LoadConfig(configPaths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if len(configPaths) == 0 {
		configPaths = []string{".", "./config", "/app/config"}
	}
	for _, p := range configPaths {
		v.AddConfigPath(p)
	}
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := envconfig.Process(EnvPrefix, &config); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate checks settings that would otherwise fail at first use.
func (c *Config) Validate() error {
	if _, err := time.LoadLocation(c.Scheduling.DefaultTimezone); err != nil {
		return fmt.Errorf("invalid scheduling.default_timezone %q: %w", c.Scheduling.DefaultTimezone, err)
	}
	switch strings.ToLower(c.Broker.Driver) {
	case "redis", "kafka", "none":
	default:
		return fmt.Errorf("unsupported broker.driver %q", c.Broker.Driver)
	}
	if c.Broker.Driver == "kafka" && len(c.Broker.KafkaBrokers) == 0 {
		return errors.New("broker.kafka_brokers is required for the kafka driver")
	}
	if c.Outbox.BatchSize <= 0 || c.Outbox.PollInterval <= 0 || c.Outbox.RetryAttempts <= 0 {
		return errors.New("outbox batch_size, poll_interval and retry_attempts must be positive")
	}
	return nil
}
