package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config holds the application configuration.
type Config struct {
	AppPort string

	DBDriver    string // postgres or sqlite
	DatabaseDSN string

	RedisAddr     string // empty keeps rendered views in process memory
	RedisPassword string
	RedisDB       int
	ViewCacheTTL  time.Duration

	RabbitMQURL        string // empty disables the revalidation broadcast
	ViewEventsExchange string

	SessionSecret  string
	RequestTimeout time.Duration

	SeedData  bool
	LogLevel  string
	LogFormat string // text or json
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("DB_DRIVER", DriverPostgres)
	v.SetDefault("DATABASE_DSN", "host=127.0.0.1 user=postgres password=postgres dbname=coffee_trucks port=5432 sslmode=disable")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("VIEW_CACHE_TTL", 5*time.Minute)
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("VIEW_EVENTS_EXCHANGE", "coffee_truck_views")
	v.SetDefault("SESSION_SECRET", "")
	v.SetDefault("REQUEST_TIMEOUT", 5*time.Second)
	v.SetDefault("SEED_DATA", false)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
}

// loadDotEnv loads the given env files, or .env by default. A missing file is
// not an error.
func loadDotEnv(filenames ...string) error {
	err := godotenv.Load(filenames...)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// Load reads configuration from the environment, after loading a .env file
// when one is present. An unreadable or malformed .env is logged and skipped.
func Load() (*Config, error) {
	if err := loadDotEnv(); err != nil {
		logrus.WithError(err).Warn("ignoring .env file")
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	cfg := &Config{
		AppPort:            v.GetString("APP_PORT"),
		DBDriver:           v.GetString("DB_DRIVER"),
		DatabaseDSN:        v.GetString("DATABASE_DSN"),
		RedisAddr:          v.GetString("REDIS_ADDR"),
		RedisPassword:      v.GetString("REDIS_PASSWORD"),
		RedisDB:            v.GetInt("REDIS_DB"),
		ViewCacheTTL:       v.GetDuration("VIEW_CACHE_TTL"),
		RabbitMQURL:        v.GetString("RABBITMQ_URL"),
		ViewEventsExchange: v.GetString("VIEW_EVENTS_EXCHANGE"),
		SessionSecret:      v.GetString("SESSION_SECRET"),
		RequestTimeout:     v.GetDuration("REQUEST_TIMEOUT"),
		SeedData:           v.GetBool("SEED_DATA"),
		LogLevel:           v.GetString("LOG_LEVEL"),
		LogFormat:          v.GetString("LOG_FORMAT"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that have no usable fallback.
func (c *Config) Validate() error {
	var errs []error
	if c.DBDriver != DriverPostgres && c.DBDriver != DriverSQLite {
		errs = append(errs, fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver))
	}
	if c.DatabaseDSN == "" {
		errs = append(errs, errors.New("DATABASE_DSN is required"))
	}
	if c.SessionSecret == "" {
		errs = append(errs, errors.New("SESSION_SECRET is required"))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("REQUEST_TIMEOUT must be positive"))
	}
	if c.ViewCacheTTL <= 0 {
		errs = append(errs, errors.New("VIEW_CACHE_TTL must be positive"))
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("unsupported LOG_FORMAT %q", c.LogFormat))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}
