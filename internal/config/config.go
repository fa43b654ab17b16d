// Package config resolves runtime settings from flags, the environment and
// an optional .env file, in that order of precedence.
package config

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
)

// Postgres holds the PostgreSQL connection settings.
type Postgres struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
}

func (p Postgres) ConnString() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(p.User, p.Password),
		Host:     p.Host + ":" + p.Port,
		Path:     "/" + p.Database,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

type Config struct {
	Addr            string
	Store           string
	Postgres        Postgres
	SQLitePath      string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	MaxBodyBytes    int64
	CORSOrigins     []string
	LogLevel        slog.Level

	// Args holds the positional arguments left after the flags.
	Args []string
}

// LoadEnv reads .env into the process environment. A missing file is fine;
// variables already set are never overridden.
func LoadEnv() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to read .env file", "error", err)
	}
}

// Load parses args on top of environment defaults. Call LoadEnv first when a
// .env file should be honored.
func Load(name string, args []string) (Config, error) {
	var (
		cfg       Config
		origins   string
		logLevel  string
		reqTO     string
		shutTO    string
		bodyBytes string
	)

	fs := flag.NewFlagSet(name, flag.ContinueOnError)

	fs.StringVar(&cfg.Addr, "addr", envOr("VOTE_ADDR", "0.0.0.0:8081"), "Listen address")
	fs.StringVar(&cfg.Store, "store", envOr("VOTE_STORE", StoreMemory), "Tally store: memory, postgres or sqlite")

	fs.StringVar(&cfg.Postgres.Host, "db-host", envOr("POSTGRES_HOST", "localhost"), "Database host")
	fs.StringVar(&cfg.Postgres.Port, "db-port", envOr("POSTGRES_PORT", "5432"), "Database port")
	fs.StringVar(&cfg.Postgres.User, "db-user", os.Getenv("POSTGRES_USER"), "Database user")
	fs.StringVar(&cfg.Postgres.Password, "db-pass", os.Getenv("POSTGRES_PASSWORD"), "Database password")
	fs.StringVar(&cfg.Postgres.Database, "db-name", os.Getenv("POSTGRES_DB"), "Database name")
	fs.StringVar(&cfg.SQLitePath, "sqlite-path", envOr("SQLITE_PATH", "vote.db"), "SQLite database file")

	fs.StringVar(&reqTO, "request-timeout", envOr("VOTE_REQUEST_TIMEOUT", "10s"), "Per-request timeout")
	fs.StringVar(&shutTO, "shutdown-timeout", envOr("VOTE_SHUTDOWN_TIMEOUT", "30s"), "Graceful shutdown timeout")
	fs.StringVar(&bodyBytes, "max-body-bytes", envOr("VOTE_MAX_BODY_BYTES", strconv.Itoa(10<<20)), "Maximum request body size")
	fs.StringVar(&origins, "cors-origins", envOr("VOTE_CORS_ORIGINS", "*"), "Comma separated allowed CORS origins")
	fs.StringVar(&logLevel, "log-level", envOr("VOTE_LOG_LEVEL", "info"), "Log level: debug, info, warn or error")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	cfg.Args = fs.Args()

	var err error
	if cfg.RequestTimeout, err = parsePositiveDuration("request timeout", reqTO); err != nil {
		return Config{}, err
	}
	if cfg.ShutdownTimeout, err = parsePositiveDuration("shutdown timeout", shutTO); err != nil {
		return Config{}, err
	}

	cfg.MaxBodyBytes, err = strconv.ParseInt(bodyBytes, 10, 64)
	if err != nil || cfg.MaxBodyBytes <= 0 {
		return Config{}, fmt.Errorf("invalid max body bytes %q", bodyBytes)
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(logLevel)); err != nil {
		return Config{}, fmt.Errorf("invalid log level %q", logLevel)
	}

	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, o)
		}
	}

	switch cfg.Store {
	case StoreMemory:
	case StorePostgres:
		if cfg.Postgres.User == "" || cfg.Postgres.Database == "" {
			return Config{}, errors.New("postgres store requires POSTGRES_USER and POSTGRES_DB")
		}
	case StoreSQLite:
		if cfg.SQLitePath == "" {
			return Config{}, errors.New("sqlite store requires SQLITE_PATH")
		}
	default:
		return Config{}, fmt.Errorf("unknown store %q", cfg.Store)
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parsePositiveDuration(name, value string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s %q", name, value)
	}
	return d, nil
}
