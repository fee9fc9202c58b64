package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var (
	ErrMissingVisitorSecret = errors.New("VISITOR_SECRET is required in production")
	ErrMissingDatabaseURL   = errors.New("DATABASE_URL is required for the postgres driver")
	ErrUnknownDriver        = errors.New("storage.driver must be sqlite, postgres or memory")
)

const (
	EnvProduction = "production"

	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"

	devVisitorSecret = "dev-visitor-secret"
)

// Config holds application configuration loaded from files and environment variables.
type Config struct {
	Env     string  `mapstructure:"env"`     // local, dev, production
	HTTP    HTTP    `mapstructure:"http"`    // listener and request logging
	Content Content `mapstructure:"content"` // content catalog location
	Storage Storage `mapstructure:"storage"` // progress store selection
	Visitor Visitor `mapstructure:"visitor"` // anonymous visitor cookie
}

type HTTP struct {
	Addr            string        `mapstructure:"addr"`
	MaxLogBytes     int           `mapstructure:"max_log_bytes"` // cap on error bodies copied into request logs
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Content.Dir overrides the embedded catalog when set.
type Content struct {
	Dir string `mapstructure:"dir"`
}

type Storage struct {
	Driver          string        `mapstructure:"driver"`
	SQLitePath      string        `mapstructure:"sqlite_path"`
	PostgresURL     string        `mapstructure:"-"` // loaded from DATABASE_URL
	MaxConnections  int           `mapstructure:"max_connections"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

type Visitor struct {
	Secret     string        `mapstructure:"-"` // loaded from VISITOR_SECRET
	CookieName string        `mapstructure:"cookie_name"`
	MaxAge     time.Duration `mapstructure:"max_age"`
}

func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// Load reads .env (if present), config/config.yaml (if present) and the
// environment, in increasing priority.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")

	v.SetDefault("env", "local")
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.max_log_bytes", 4096)
	v.SetDefault("http.shutdown_timeout", "10s")
	v.SetDefault("content.dir", "")
	v.SetDefault("storage.driver", DriverSQLite)
	v.SetDefault("storage.sqlite_path", "prep.db")
	v.SetDefault("storage.max_connections", 10)
	v.SetDefault("storage.max_conn_lifetime", "30m")
	v.SetDefault("visitor.cookie_name", "prep_visitor")
	v.SetDefault("visitor.max_age", "8760h")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("env", "APP_ENV")
	_ = v.BindEnv("database_url", "DATABASE_URL")
	_ = v.BindEnv("visitor_secret", "VISITOR_SECRET")

	if err := v.ReadInConfig(); err != nil {
		var fileLookupErr viper.ConfigFileNotFoundError
		if !errors.As(err, &fileLookupErr) {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	cfg.Storage.Driver = strings.ToLower(strings.TrimSpace(cfg.Storage.Driver))
	cfg.Storage.PostgresURL = v.GetString("database_url")
	cfg.Visitor.Secret = v.GetString("visitor_secret")

	switch cfg.Storage.Driver {
	case DriverSQLite, DriverMemory:
	case DriverPostgres:
		if cfg.Storage.PostgresURL == "" {
			return nil, ErrMissingDatabaseURL
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Storage.Driver)
	}

	if cfg.Visitor.Secret == "" {
		if cfg.IsProduction() {
			return nil, ErrMissingVisitorSecret
		}
		cfg.Visitor.Secret = devVisitorSecret
	}

	return &cfg, nil
}
