package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type LookupFunc func(string) (string, bool)

type Profile string

const (
	ProfileDev  Profile = "dev"
	ProfileTest Profile = "test"
	ProfileProd Profile = "prod"
)

const (
	envFileKey     = "CINEQUERY_ENV_FILE"
	defaultEnvFile = ".env"
)

type Config struct {
	Profile       Profile
	Service       ServiceConfig
	HTTP          HTTPConfig
	Store         StoreConfig
	ObjectStore   ObjectStoreConfig
	Query         QueryConfig
	Loader        LoaderConfig
	UI            UIConfig
	AI            AIConfig
	Observability ObservabilityConfig
	Auth          AuthConfig
}

type ServiceConfig struct {
	Name string
}

type HTTPConfig struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// StoreConfig selects the relational store holding the movies table. For
// sqlite and duckdb the DSN is a file path.
type StoreConfig struct {
	Driver          string
	DSN             string
	Table           string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxIdleTime time.Duration
	ConnMaxLifetime time.Duration
}

type ObjectStoreConfig struct {
	Endpoint         string
	Region           string
	Bucket           string
	AccessKeyID      string
	SecretAccessKey  string
	UseSSL           bool
	Prefix           string
	AutoCreateBucket bool
}

type QueryConfig struct {
	ReadOnly bool
	RowLimit int
	Timeout  time.Duration
}

type LoaderConfig struct {
	BatchSize   int
	SampleRows  int
	Lock        bool
	LockTimeout time.Duration
}

type UIConfig struct {
	Enabled bool
}

type AIConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	// Timeout of zero keeps the HTTP client default.
	Timeout time.Duration
	Referer string
	Title   string
}

type ObservabilityConfig struct {
	LogLevel slog.Level
	LogJSON  bool
}

type AuthConfig struct {
	Required   bool
	StaticKeys string
}

// LoadFromEnv reads the process environment after merging the optional env
// file. Variables already set win over the file.
func LoadFromEnv(serviceName string) (Config, error) {
	if err := loadEnvFile(os.LookupEnv); err != nil {
		return Config{}, err
	}
	return Load(serviceName, os.LookupEnv)
}

func loadEnvFile(lookup LookupFunc) error {
	path, explicit := lookup(envFileKey)
	path = strings.TrimSpace(path)
	if path == "" {
		path = defaultEnvFile
		explicit = false
	}
	if err := godotenv.Load(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s %q: %w", envFileKey, path, err)
	}
	return nil
}

func Load(serviceName string, lookup LookupFunc) (Config, error) {
	if lookup == nil {
		return Config{}, fmt.Errorf("lookup function is required")
	}

	profile := ProfileDev
	if raw, ok := lookup("CINEQUERY_PROFILE"); ok {
		profile = Profile(strings.ToLower(strings.TrimSpace(raw)))
	}
	if !isValidProfile(profile) {
		return Config{}, fmt.Errorf("invalid CINEQUERY_PROFILE: %q", profile)
	}

	cfg := defaultsForProfile(profile)
	if serviceName != "" {
		cfg.Service.Name = serviceName
	}

	appliers := []func() error{
		func() error { return applyString(lookup, "CINEQUERY_SERVICE_NAME", &cfg.Service.Name) },
		func() error { return applyString(lookup, "CINEQUERY_HTTP_ADDR", &cfg.HTTP.Address) },
		func() error { return applyDuration(lookup, "CINEQUERY_HTTP_READ_TIMEOUT", &cfg.HTTP.ReadTimeout) },
		func() error { return applyDuration(lookup, "CINEQUERY_HTTP_WRITE_TIMEOUT", &cfg.HTTP.WriteTimeout) },
		func() error { return applyDuration(lookup, "CINEQUERY_HTTP_IDLE_TIMEOUT", &cfg.HTTP.IdleTimeout) },

		func() error { return applyString(lookup, "CINEQUERY_STORE_DRIVER", &cfg.Store.Driver) },
		func() error { return applyString(lookup, "CINEQUERY_STORE_DSN", &cfg.Store.DSN) },
		func() error { return applyString(lookup, "CINEQUERY_STORE_TABLE", &cfg.Store.Table) },
		func() error { return applyInt(lookup, "CINEQUERY_STORE_MAX_OPEN_CONNS", &cfg.Store.MaxOpenConns) },
		func() error { return applyInt(lookup, "CINEQUERY_STORE_MAX_IDLE_CONNS", &cfg.Store.MaxIdleConns) },
		func() error {
			return applyDuration(lookup, "CINEQUERY_STORE_CONN_MAX_IDLE_TIME", &cfg.Store.ConnMaxIdleTime)
		},
		func() error {
			return applyDuration(lookup, "CINEQUERY_STORE_CONN_MAX_LIFETIME", &cfg.Store.ConnMaxLifetime)
		},

		func() error { return applyString(lookup, "CINEQUERY_OBJECTSTORE_ENDPOINT", &cfg.ObjectStore.Endpoint) },
		func() error { return applyString(lookup, "CINEQUERY_OBJECTSTORE_REGION", &cfg.ObjectStore.Region) },
		func() error { return applyString(lookup, "CINEQUERY_OBJECTSTORE_BUCKET", &cfg.ObjectStore.Bucket) },
		func() error { return applyString(lookup, "CINEQUERY_OBJECTSTORE_ACCESS_KEY", &cfg.ObjectStore.AccessKeyID) },
		func() error {
			return applyString(lookup, "CINEQUERY_OBJECTSTORE_SECRET_KEY", &cfg.ObjectStore.SecretAccessKey)
		},
		func() error { return applyBool(lookup, "CINEQUERY_OBJECTSTORE_USE_SSL", &cfg.ObjectStore.UseSSL) },
		func() error { return applyString(lookup, "CINEQUERY_OBJECTSTORE_PREFIX", &cfg.ObjectStore.Prefix) },
		func() error {
			return applyBool(lookup, "CINEQUERY_OBJECTSTORE_AUTO_CREATE_BUCKET", &cfg.ObjectStore.AutoCreateBucket)
		},

		func() error { return applyBool(lookup, "CINEQUERY_QUERY_READ_ONLY", &cfg.Query.ReadOnly) },
		func() error { return applyInt(lookup, "CINEQUERY_QUERY_ROW_LIMIT", &cfg.Query.RowLimit) },
		func() error { return applyDuration(lookup, "CINEQUERY_QUERY_TIMEOUT", &cfg.Query.Timeout) },

		func() error { return applyInt(lookup, "CINEQUERY_LOADER_BATCH_SIZE", &cfg.Loader.BatchSize) },
		func() error { return applyInt(lookup, "CINEQUERY_LOADER_SAMPLE_ROWS", &cfg.Loader.SampleRows) },
		func() error { return applyBool(lookup, "CINEQUERY_LOADER_LOCK", &cfg.Loader.Lock) },
		func() error {
			return applyDuration(lookup, "CINEQUERY_LOADER_LOCK_TIMEOUT", &cfg.Loader.LockTimeout)
		},

		func() error { return applyBool(lookup, "CINEQUERY_UI_ENABLED", &cfg.UI.Enabled) },

		func() error { return applyFirstString(lookup, &cfg.AI.APIKey, "CINEQUERY_AI_API_KEY", "OPENROUTER_API_KEY") },
		func() error { return applyString(lookup, "CINEQUERY_AI_BASE_URL", &cfg.AI.BaseURL) },
		func() error { return applyString(lookup, "CINEQUERY_AI_MODEL", &cfg.AI.Model) },
		func() error { return applyFloat(lookup, "CINEQUERY_AI_TEMPERATURE", &cfg.AI.Temperature) },
		func() error { return applyDuration(lookup, "CINEQUERY_AI_TIMEOUT", &cfg.AI.Timeout) },
		func() error { return applyString(lookup, "CINEQUERY_AI_REFERER", &cfg.AI.Referer) },
		func() error { return applyString(lookup, "CINEQUERY_AI_TITLE", &cfg.AI.Title) },

		func() error { return applyBool(lookup, "CINEQUERY_LOG_JSON", &cfg.Observability.LogJSON) },
		func() error { return applyLogLevel(lookup, "CINEQUERY_LOG_LEVEL", &cfg.Observability.LogLevel) },
		func() error { return applyBool(lookup, "CINEQUERY_AUTH_REQUIRED", &cfg.Auth.Required) },
		func() error { return applyString(lookup, "CINEQUERY_AUTH_STATIC_KEYS", &cfg.Auth.StaticKeys) },
	}
	for _, apply := range appliers {
		if err := apply(); err != nil {
			return Config{}, err
		}
	}

	if cfg.Service.Name == "" {
		return Config{}, fmt.Errorf("service name is required")
	}
	if cfg.HTTP.Address == "" {
		return Config{}, fmt.Errorf("http address is required")
	}
	if cfg.Store.Driver == "" {
		return Config{}, fmt.Errorf("store driver is required")
	}
	if cfg.Store.Table == "" {
		return Config{}, fmt.Errorf("store table is required")
	}
	if cfg.Query.RowLimit < 0 {
		return Config{}, fmt.Errorf("invalid CINEQUERY_QUERY_ROW_LIMIT: must be >= 0")
	}
	if cfg.AI.Timeout < 0 {
		return Config{}, fmt.Errorf("invalid CINEQUERY_AI_TIMEOUT: must be >= 0")
	}
	return cfg, nil
}

func defaultsForProfile(profile Profile) Config {
	cfg := Config{
		Profile: profile,
		Service: ServiceConfig{Name: "cinequery-api"},
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 90 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Store: StoreConfig{
			Driver:          "sqlite",
			DSN:             "movies.db",
			Table:           "movies",
			MaxIdleConns:    2,
			ConnMaxIdleTime: 5 * time.Minute,
			ConnMaxLifetime: 30 * time.Minute,
		},
		ObjectStore: ObjectStoreConfig{
			Endpoint:         "localhost:9000",
			Region:           "us-east-1",
			Bucket:           "cinequery",
			AccessKeyID:      "minio",
			SecretAccessKey:  "miniostorage",
			AutoCreateBucket: true,
		},
		Query: QueryConfig{
			ReadOnly: false,
			RowLimit: 0,
			Timeout:  30 * time.Second,
		},
		Loader: LoaderConfig{
			BatchSize:   200,
			SampleRows:  5,
			Lock:        true,
			LockTimeout: 5 * time.Second,
		},
		UI: UIConfig{
			Enabled: true,
		},
		AI: AIConfig{
			BaseURL:     "https://openrouter.ai/api/v1",
			Model:       "mistralai/mistral-7b-instruct",
			Temperature: 0,
		},
		Observability: ObservabilityConfig{
			LogLevel: slog.LevelDebug,
			LogJSON:  true,
		},
		Auth: AuthConfig{
			Required:   false,
			StaticKeys: "",
		},
	}

	switch profile {
	case ProfileTest:
		cfg.HTTP.Address = ":18080"
		cfg.Observability.LogLevel = slog.LevelWarn
		cfg.Loader.Lock = false
	case ProfileProd:
		cfg.Observability.LogLevel = slog.LevelInfo
		cfg.Auth.Required = true
		cfg.ObjectStore.UseSSL = true
		cfg.ObjectStore.AutoCreateBucket = false
	}

	return cfg
}

func isValidProfile(profile Profile) bool {
	switch profile {
	case ProfileDev, ProfileTest, ProfileProd:
		return true
	default:
		return false
	}
}

func applyString(lookup LookupFunc, key string, dst *string) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	*dst = strings.TrimSpace(raw)
	return nil
}

// applyFirstString takes the first key holding a non-blank value.
func applyFirstString(lookup LookupFunc, dst *string, keys ...string) error {
	for _, key := range keys {
		raw, ok := lookup(key)
		if !ok || strings.TrimSpace(raw) == "" {
			continue
		}
		*dst = strings.TrimSpace(raw)
		return nil
	}
	return nil
}

func applyDuration(lookup LookupFunc, key string, dst *time.Duration) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyBool(lookup LookupFunc, key string, dst *bool) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyInt(lookup LookupFunc, key string, dst *int) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyFloat(lookup LookupFunc, key string, dst *float64) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyLogLevel(lookup LookupFunc, key string, dst *slog.Level) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	level := strings.ToLower(strings.TrimSpace(raw))
	switch level {
	case "debug":
		*dst = slog.LevelDebug
	case "info":
		*dst = slog.LevelInfo
	case "warn", "warning":
		*dst = slog.LevelWarn
	case "error":
		*dst = slog.LevelError
	default:
		return fmt.Errorf("invalid %s: %q", key, raw)
	}
	return nil
}
