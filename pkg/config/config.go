package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string           `yaml:"environment" default:"development"`
	Server      ServerConfig     `yaml:"server"`
	Metrics     MetricsConfig    `yaml:"metrics"`
	Backend     BackendConfig    `yaml:"backend"`
	Kafka       KafkaConfig      `yaml:"kafka"`
	ClickHouse  ClickHouseConfig `yaml:"clickhouse"`
	Postgres    PostgresConfig   `yaml:"postgres"`
	Redis       RedisConfig      `yaml:"redis"`
	Cache       CacheConfig      `yaml:"cache"`
	RateLimit   RateLimitConfig  `yaml:"rate_limit"`
	Breaker     BreakerConfig    `yaml:"breaker"`
	Analytics   AnalyticsConfig  `yaml:"analytics"`
	Logging     LoggingConfig    `yaml:"logging"`
}

type ServerConfig struct {
	Port            int           `yaml:"port" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" default:"30s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"15s"`
	// RequestTimeout bounds one analytics request end to end.
	RequestTimeout time.Duration `yaml:"request_timeout" default:"20s"`
	// CORSOrigins may read the API from a browser; empty disables CORS.
	CORSOrigins []string `yaml:"cors_origins" default:"[\"*\"]"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" default:"true"`
	Path    string `yaml:"path" default:"/metrics"`
}

// BackendConfig selects the transaction store.
type BackendConfig struct {
	Type         string        `yaml:"type" default:"clickhouse"` // clickhouse, postgres or memory
	BatchSize    int           `yaml:"batch_size" default:"500"`
	BatchTimeout time.Duration `yaml:"batch_timeout" default:"2s"`
	// SeedFile is a JSON array of transactions loaded into the memory backend.
	SeedFile string `yaml:"seed_file"`
}

type KafkaConfig struct {
	Brokers      []string `yaml:"brokers"`
	Topic        string   `yaml:"topic" default:"insider-transactions"`
	LogTopic     string   `yaml:"log_topic" default:"insiderpulse-logs"`
	RequiredAcks int      `yaml:"required_acks" default:"-1"`
	Compression  string   `yaml:"compression" default:"gzip"`
	Producer     struct {
		MaxAttempts  int           `yaml:"max_attempts" default:"3"`
		Linger       time.Duration `yaml:"linger" default:"1s"`
		BatchSize    int           `yaml:"batch_size" default:"100"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
		Async        bool          `yaml:"async"`
	} `yaml:"producer"`
	Consumer struct {
		Enabled    bool          `yaml:"enabled"`
		GroupID    string        `yaml:"group_id" default:"insiderpulse-ingest"`
		Workers    int           `yaml:"workers" default:"4"`
		BufferSize int           `yaml:"buffer_size" default:"256"`
		RetryMax   int           `yaml:"retry_max" default:"3"`
		BackoffMin time.Duration `yaml:"backoff_min" default:"50ms"`
		BackoffMax time.Duration `yaml:"backoff_max" default:"2s"`
		DLQTopic   string        `yaml:"dlq_topic" default:"insider-transactions-dlq"`
		MinBytes   int           `yaml:"min_bytes" default:"10000"`
		MaxBytes   int           `yaml:"max_bytes" default:"10000000"`
	} `yaml:"consumer"`
}

type ClickHouseConfig struct {
	Host             string        `yaml:"host" default:"localhost"`
	Port             int           `yaml:"port" default:"9000"`
	Database         string        `yaml:"database" default:"insiderpulse"`
	Table            string        `yaml:"table" default:"insider_transactions"`
	User             string        `yaml:"user" default:"default"`
	Password         string        `yaml:"password"`
	UseHTTP          bool          `yaml:"use_http"`
	AsyncInsert      bool          `yaml:"async_insert"`
	WaitForAsync     bool          `yaml:"wait_for_async_insert" default:"true"`
	DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
	ReadTimeout      time.Duration `yaml:"read_timeout" default:"30s"`
	WriteTimeout     time.Duration `yaml:"write_timeout" default:"30s"`
	MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"60s"`
}

type PostgresConfig struct {
	DSN             string        `yaml:"dsn"`
	MaxConns        int32         `yaml:"max_conns" default:"10"`
	MinConns        int32         `yaml:"min_conns" default:"1"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime" default:"1h"`
}

type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr" default:"localhost:6379"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// CacheConfig controls caching of computed responses. Redis is used when
// enabled, otherwise an in-process TTL cache.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled" default:"true"`
	TTL     time.Duration `yaml:"ttl" default:"5m"`
	// CurrentTTL applies to the "current sentiment" fast path.
	CurrentTTL time.Duration `yaml:"current_ttl" default:"1m"`
}

type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" default:"true"`
	RPS     float64 `yaml:"rps" default:"20"`
	Burst   int     `yaml:"burst" default:"40"`
}

// BreakerConfig guards the transaction store.
type BreakerConfig struct {
	Enabled     bool          `yaml:"enabled" default:"true"`
	MaxFailures uint32        `yaml:"max_failures" default:"5"`
	OpenTimeout time.Duration `yaml:"open_timeout" default:"30s"`
	HalfOpenMax uint32        `yaml:"half_open_max" default:"1"`
}

type AnalyticsConfig struct {
	ShortWindowDays     int     `yaml:"short_window_days" default:"28"`
	ReferenceDays       int     `yaml:"reference_days" default:"365"`
	BarometerScale      float64 `yaml:"barometer_scale" default:"25"`
	HighVolumeThreshold float64 `yaml:"high_volume_threshold" default:"100000"`
	MomentumThreshold   float64 `yaml:"momentum_threshold" default:"5"`
	TrendWindows        []int   `yaml:"trend_windows" default:"[7,28,90,365]"`
	TrendSmoothingDays  int     `yaml:"trend_smoothing_days" default:"7"`
	TopActiveCompanies  int     `yaml:"top_active_companies" default:"20"`
	DedupPolicy         string  `yaml:"dedup_policy" default:"keep_first"`
	MinWindowDays       int     `yaml:"min_window_days" default:"1"`
	MaxWindowDays       int     `yaml:"max_window_days" default:"730"`
}

type LoggingConfig struct {
	Level      string `yaml:"level" default:"info"`
	Format     string `yaml:"format" default:"json"`
	Output     string `yaml:"output" default:"stdout"`
	MaxSizeMB  int    `yaml:"max_size_mb" default:"100"`
	MaxBackups int    `yaml:"max_backups" default:"5"`
	MaxAgeDays int    `yaml:"max_age_days" default:"14"`
	Compress   bool   `yaml:"compress"`
	Collector  struct {
		Enabled   bool          `yaml:"enabled"`
		Interval  time.Duration `yaml:"interval" default:"30s"`
		Threshold int           `yaml:"threshold" default:"100"`
	} `yaml:"collector"`
}

// Default returns a config with every default applied.
func Default() *Config {
	var c Config
	if err := defaults.Set(&c); err != nil {
		panic(fmt.Sprintf("config defaults: %v", err))
	}
	return &c
}

// Load reads a YAML file over the defaults. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	c := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads config from YAML and overrides it with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}
	c.applyEnv(os.Getenv)
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv("ENVIRONMENT"); v != "" {
		c.Environment = v
	}
	if v := getenv("HTTP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Server.Port = p
		}
	}
	if v := getenv("BACKEND"); v != "" {
		c.Backend.Type = v
	}
	if v := getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	if v := getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := getenv("CLICKHOUSE_PASSWORD"); v != "" {
		c.ClickHouse.Password = v
	}
	if v := getenv("POSTGRES_DSN"); v != "" {
		c.Postgres.DSN = v
	}
	if v := getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
		c.Redis.Enabled = true
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	switch c.Backend.Type {
	case "clickhouse":
		if c.ClickHouse.Host == "" || c.ClickHouse.Database == "" {
			return fmt.Errorf("clickhouse.host and clickhouse.database are required")
		}
	case "postgres":
		if c.Postgres.DSN == "" {
			return fmt.Errorf("postgres.dsn is required for the postgres backend")
		}
	case "memory":
	default:
		return fmt.Errorf("backend.type must be 'clickhouse', 'postgres' or 'memory', got '%s'", c.Backend.Type)
	}
	if c.Kafka.Consumer.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers are required when the consumer is enabled")
	}
	if c.Logging.Collector.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers are required for the log collector")
	}

	a := c.Analytics
	switch a.DedupPolicy {
	case "keep_first", "sum_volume", "keep_first_qualifying":
	default:
		return fmt.Errorf("analytics.dedup_policy must be 'keep_first', 'sum_volume' or 'keep_first_qualifying', got '%s'", a.DedupPolicy)
	}
	if a.MinWindowDays < 1 || a.MaxWindowDays < a.MinWindowDays {
		return fmt.Errorf("analytics window bounds invalid: min=%d max=%d", a.MinWindowDays, a.MaxWindowDays)
	}
	if a.ShortWindowDays < 1 || a.ReferenceDays < a.ShortWindowDays {
		return fmt.Errorf("analytics.reference_days must be >= short_window_days")
	}
	if a.BarometerScale <= 0 {
		return fmt.Errorf("analytics.barometer_scale must be positive")
	}
	for _, w := range a.TrendWindows {
		if w < 1 {
			return fmt.Errorf("analytics.trend_windows must be positive, got %d", w)
		}
	}
	if c.RateLimit.Enabled && c.RateLimit.RPS <= 0 {
		return fmt.Errorf("rate_limit.rps must be positive")
	}
	return nil
}
