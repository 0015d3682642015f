package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	HTTP    HTTPConfig    `mapstructure:"http"`
	DB      DBConfig      `mapstructure:"db"`
	Ingest  IngestConfig  `mapstructure:"ingest"`
	Logging LoggingConfig `mapstructure:"logging"`
}

type HTTPConfig struct {
	Port           int           `mapstructure:"port"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

type DBConfig struct {
	DatabaseURL string `mapstructure:"url"`

	MinConns          int32         `mapstructure:"min_conns"`
	MaxConns          int32         `mapstructure:"max_conns"`
	MaxConnIdleTime   time.Duration `mapstructure:"max_conn_idle_time"`
	MaxConnLifetime   time.Duration `mapstructure:"max_conn_lifetime"`
	HealthCheckPeriod time.Duration `mapstructure:"healthcheck_period"`

	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

type IngestConfig struct {
	Capacity int `mapstructure:"capacity"`

	BatchSize    int           `mapstructure:"batch_size"`
	BatchTimeout time.Duration `mapstructure:"batch_timeout"`

	PollInterval  time.Duration `mapstructure:"poll_interval"`
	FlushDeadline time.Duration `mapstructure:"flush_deadline"`

	ShutdownDeadline time.Duration `mapstructure:"shutdown_deadline"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from an optional yaml file with environment
// variable overrides (prefix FIREHOSE, e.g. FIREHOSE_DB_URL, FIREHOSE_HTTP_PORT).
func Load(configPath string) (Config, error) {
	v := viper.New()

	v.SetDefault("http.port", 8080)
	v.SetDefault("http.request_timeout", "3s")

	// Empty default keeps the key known to viper so FIREHOSE_DB_URL applies.
	v.SetDefault("db.url", "")
	v.SetDefault("db.min_conns", 5)
	v.SetDefault("db.max_conns", 20)
	v.SetDefault("db.max_conn_idle_time", "2m")
	v.SetDefault("db.max_conn_lifetime", "30m")
	v.SetDefault("db.healthcheck_period", "30s")
	v.SetDefault("db.connect_timeout", "3s")

	v.SetDefault("ingest.capacity", 100_000)
	v.SetDefault("ingest.batch_size", 100)
	v.SetDefault("ingest.batch_timeout", "1s")
	v.SetDefault("ingest.poll_interval", "100ms")
	v.SetDefault("ingest.flush_deadline", "5s")
	v.SetDefault("ingest.shutdown_deadline", "5s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/firehose")
	}

	v.SetEnvPrefix("FIREHOSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// An explicit path must exist; a missing discovered file is fine,
		// defaults plus env are enough.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func validate(cfg Config) error {
	// HTTP
	if cfg.HTTP.Port < 1 || cfg.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535 (got %d)", cfg.HTTP.Port)
	}
	if cfg.HTTP.RequestTimeout <= 0 {
		return fmt.Errorf("http.request_timeout must be > 0 (got %s)", cfg.HTTP.RequestTimeout)
	}

	// DB
	if cfg.DB.DatabaseURL == "" {
		return fmt.Errorf("db.url is required (FIREHOSE_DB_URL)")
	}
	if cfg.DB.MaxConns <= 0 {
		return fmt.Errorf("db.max_conns must be > 0 (got %d)", cfg.DB.MaxConns)
	}
	if cfg.DB.MinConns < 0 {
		return fmt.Errorf("db.min_conns must be >= 0 (got %d)", cfg.DB.MinConns)
	}
	if cfg.DB.MinConns > cfg.DB.MaxConns {
		return fmt.Errorf("db.min_conns must be <= db.max_conns (min=%d max=%d)", cfg.DB.MinConns, cfg.DB.MaxConns)
	}
	if cfg.DB.HealthCheckPeriod <= 0 {
		return fmt.Errorf("db.healthcheck_period must be > 0 (got %s)", cfg.DB.HealthCheckPeriod)
	}
	if cfg.DB.ConnectTimeout <= 0 {
		return fmt.Errorf("db.connect_timeout must be > 0 (got %s)", cfg.DB.ConnectTimeout)
	}

	// Ingest
	if cfg.Ingest.Capacity <= 0 {
		return fmt.Errorf("ingest.capacity must be > 0 (got %d)", cfg.Ingest.Capacity)
	}
	if cfg.Ingest.BatchSize <= 0 {
		return fmt.Errorf("ingest.batch_size must be > 0 (got %d)", cfg.Ingest.BatchSize)
	}
	if cfg.Ingest.BatchSize > cfg.Ingest.Capacity {
		return fmt.Errorf("ingest.batch_size must be <= ingest.capacity (batch=%d capacity=%d)", cfg.Ingest.BatchSize, cfg.Ingest.Capacity)
	}
	if cfg.Ingest.BatchTimeout <= 0 {
		return fmt.Errorf("ingest.batch_timeout must be > 0 (got %s)", cfg.Ingest.BatchTimeout)
	}
	if cfg.Ingest.PollInterval <= 0 {
		return fmt.Errorf("ingest.poll_interval must be > 0 (got %s)", cfg.Ingest.PollInterval)
	}
	if cfg.Ingest.FlushDeadline <= 0 {
		return fmt.Errorf("ingest.flush_deadline must be > 0 (got %s)", cfg.Ingest.FlushDeadline)
	}
	if cfg.Ingest.ShutdownDeadline <= 0 {
		return fmt.Errorf("ingest.shutdown_deadline must be > 0 (got %s)", cfg.Ingest.ShutdownDeadline)
	}

	return nil
}
