// Package config resolves service settings from defaults, an optional TOML
// file, the environment and command line flags, in that order.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/labstack/gommon/bytes"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

type Config struct {
	ListenAddr        string        `toml:"listen_addr"`
	APIPrefix         string        `toml:"api_prefix"`
	DatabaseURL       string        `toml:"database_url"`
	DBMaxOpenConns    int           `toml:"db_max_open_conns"`
	DBMaxIdleConns    int           `toml:"db_max_idle_conns"`
	DBConnMaxLifetime time.Duration `toml:"db_conn_max_lifetime"`
	RedisURL          string        `toml:"redis_url"`
	CacheTTL          time.Duration `toml:"cache_ttl"`
	LogFormat         string        `toml:"log_format"`
	Debug             bool          `toml:"debug"`
	TraceSampleRatio  float64       `toml:"trace_sample_ratio"`
	ShutdownTimeout   time.Duration `toml:"shutdown_timeout"`
	BodyLimit         string        `toml:"body_limit"`
	Environment       string        `toml:"environment"`
}

func defaults() *Config {
	return &Config{
		ListenAddr:        ":8080",
		APIPrefix:         "/api",
		DBMaxOpenConns:    10,
		DBMaxIdleConns:    5,
		DBConnMaxLifetime: 30 * time.Minute,
		CacheTTL:          5 * time.Minute,
		LogFormat:         "text",
		TraceSampleRatio:  1,
		ShutdownTimeout:   10 * time.Second,
		BodyLimit:         "1M",
		Environment:       EnvDevelopment,
	}
}

// Load resolves the configuration. Flags are registered on fs and parsed
// from args; the TOML file comes from -config or TASKLY_CONFIG.
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	var (
		file   = fs.String("config", "", "path to a TOML config file")
		listen = fs.String("listen", "", "listen address, e.g. :8080")
		dbURL  = fs.String("database-url", "", "database connection string")
		debug  = fs.Bool("debug", false, "enable debug logging")
	)
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}

	cfg := defaults()

	path := *file
	if path == "" {
		path = os.Getenv("TASKLY_CONFIG")
	}
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	if err := loadFromEnv(cfg); err != nil {
		return nil, err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "listen":
			cfg.ListenAddr = *listen
		case "database-url":
			cfg.DatabaseURL = *dbURL
		case "debug":
			cfg.Debug = *debug
		}
	})

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFromEnv(cfg *Config) error {
	if v := os.Getenv("PORT"); v != "" {
		cfg.ListenAddr = ":" + v
	}
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	str := map[string]*string{
		"API_PREFIX":              &cfg.APIPrefix,
		"DATABASE_URL":            &cfg.DatabaseURL,
		"REDIS_CONNECTION_STRING": &cfg.RedisURL,
		"LOG_FORMAT":              &cfg.LogFormat,
		"BODY_LIMIT":              &cfg.BodyLimit,
		"ENVIRONMENT":             &cfg.Environment,
	}
	for name, dst := range str {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}

	ints := map[string]*int{
		"DB_MAX_OPEN_CONNS": &cfg.DBMaxOpenConns,
		"DB_MAX_IDLE_CONNS": &cfg.DBMaxIdleConns,
	}
	for name, dst := range ints {
		if v := os.Getenv(name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", name, err)
			}
			*dst = n
		}
	}

	durations := map[string]*time.Duration{
		"DB_CONN_MAX_LIFETIME": &cfg.DBConnMaxLifetime,
		"CACHE_TTL":            &cfg.CacheTTL,
		"SHUTDOWN_TIMEOUT":     &cfg.ShutdownTimeout,
	}
	for name, dst := range durations {
		if v := os.Getenv(name); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", name, err)
			}
			*dst = d
		}
	}

	if v := os.Getenv("DEBUG"); v != "" {
		dbg, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid DEBUG: %w", err)
		}
		cfg.Debug = dbg
	}
	if v := os.Getenv("TRACE_SAMPLE_RATIO"); v != "" {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid TRACE_SAMPLE_RATIO: %w", err)
		}
		cfg.TraceSampleRatio = r
	}
	return nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return errors.New("missing DATABASE_URL")
	}
	if c.ListenAddr == "" {
		return errors.New("listen address must not be empty")
	}
	if c.APIPrefix != "" && (!strings.HasPrefix(c.APIPrefix, "/") || strings.HasSuffix(c.APIPrefix, "/")) {
		return fmt.Errorf("invalid api_prefix %q: must start and must not end with /", c.APIPrefix)
	}
	if c.DBMaxOpenConns < 0 || c.DBMaxIdleConns < 0 {
		return errors.New("connection pool sizes must not be negative")
	}
	if c.CacheTTL < 0 {
		return errors.New("cache_ttl must not be negative")
	}
	if c.ShutdownTimeout <= 0 {
		return errors.New("shutdown_timeout must be greater than zero")
	}
	if c.TraceSampleRatio < 0 || c.TraceSampleRatio > 1 {
		return fmt.Errorf("invalid trace_sample_ratio %v: must be within [0, 1]", c.TraceSampleRatio)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log_format %q: want text or json", c.LogFormat)
	}
	switch c.Environment {
	case EnvDevelopment, EnvProduction, EnvTest:
	default:
		return fmt.Errorf("invalid environment %q", c.Environment)
	}
	if _, err := bytes.Parse(c.BodyLimit); err != nil {
		return fmt.Errorf("invalid body_limit %q: %w", c.BodyLimit, err)
	}
	return nil
}
