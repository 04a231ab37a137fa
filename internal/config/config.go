package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"boqrate/internal/rate"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Port           string
	StoreDriver    string
	DatabaseURL    string
	SQLitePath     string
	SeedSampleData bool
	Classifier     string
	HandlingMethod rate.HandlingMethod

	LogLevel       string
	LogFormat      string
	LogDevelopment bool

	OpenAIAPIKey   string
	OpenAIModel    string
	OpenAIEndpoint string
	ExplainTimeout time.Duration
}

// Load reads .env (when present) and then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function.
func FromEnv(getenv func(string) string) (Config, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}
	cfg := Config{
		Port:           get("PORT", "8080"),
		DatabaseURL:    get("DATABASE_URL", ""),
		SQLitePath:     get("SQLITE_PATH", "./boqrate.db"),
		Classifier:     get("CLASSIFIER", "keyword"),
		LogLevel:       get("LOG_LEVEL", "info"),
		LogFormat:      get("LOG_FORMAT", "json"),
		OpenAIAPIKey:   get("OPENAI_API_KEY", ""),
		OpenAIModel:    get("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIEndpoint: get("OPENAI_ENDPOINT", ""),
	}

	defaultDriver := DriverSQLite
	if cfg.DatabaseURL != "" {
		defaultDriver = DriverPostgres
	}
	switch d := strings.ToLower(get("STORE_DRIVER", defaultDriver)); d {
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, errors.New("STORE_DRIVER=postgres requires DATABASE_URL")
		}
		cfg.StoreDriver = d
	case DriverSQLite, "sqlite3":
		cfg.StoreDriver = DriverSQLite
	default:
		return Config{}, fmt.Errorf("unknown STORE_DRIVER %q", d)
	}

	cfg.Classifier = strings.ToLower(cfg.Classifier)
	if !rate.KnownClassifier(cfg.Classifier) {
		return Config{}, fmt.Errorf("unknown CLASSIFIER %q (want one of %s)", cfg.Classifier, strings.Join(rate.ClassifierNames, ", "))
	}

	switch m := rate.HandlingMethod(strings.ToLower(get("HANDLING_METHOD", string(rate.Mechanical)))); m {
	case rate.Mechanical, rate.Manual:
		cfg.HandlingMethod = m
	default:
		return Config{}, fmt.Errorf("unknown HANDLING_METHOD %q", m)
	}

	var err error
	if cfg.SeedSampleData, err = parseBool(get("SEED_SAMPLE_DATA", "false")); err != nil {
		return Config{}, fmt.Errorf("parse SEED_SAMPLE_DATA: %w", err)
	}
	if cfg.LogDevelopment, err = parseBool(get("LOG_DEVELOPMENT", "false")); err != nil {
		return Config{}, fmt.Errorf("parse LOG_DEVELOPMENT: %w", err)
	}
	if cfg.ExplainTimeout, err = time.ParseDuration(get("EXPLAIN_TIMEOUT", "20s")); err != nil {
		return Config{}, fmt.Errorf("parse EXPLAIN_TIMEOUT: %w", err)
	}
	if cfg.ExplainTimeout <= 0 {
		return Config{}, fmt.Errorf("EXPLAIN_TIMEOUT must be positive, got %s", cfg.ExplainTimeout)
	}
	return cfg, nil
}

func parseBool(s string) (bool, error) {
	return strconv.ParseBool(strings.ToLower(s))
}
