package dataset

import (
	"fmt"
	"strconv"
	"strings"
)

type LookupFunc func(string) (string, bool)

const (
	FormatCSV     = "csv"
	FormatParquet = "parquet"
)

type Config struct {
	Rows    int
	Seed    int64
	Format  string
	Output  string
	Dataset string
	Table   string
	Upload  bool
	// Bucket only labels the published location; the object store decides
	// where the upload lands.
	Bucket string
}

func DefaultConfig() Config {
	return Config{
		Rows:    250,
		Seed:    1,
		Format:  FormatCSV,
		Output:  "movies.csv",
		Dataset: "cinequery-demo",
		Table:   "movies",
	}
}

func LoadConfigFromEnv(lookup LookupFunc) (Config, error) {
	if lookup == nil {
		return Config{}, fmt.Errorf("lookup function is required")
	}

	cfg := DefaultConfig()
	if err := applyInt(lookup, "CINEQUERY_DEMO_ROWS", &cfg.Rows); err != nil {
		return Config{}, err
	}
	if err := applyInt64(lookup, "CINEQUERY_DEMO_SEED", &cfg.Seed); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "CINEQUERY_DEMO_FORMAT", &cfg.Format); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "CINEQUERY_DEMO_OUTPUT", &cfg.Output); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "CINEQUERY_DEMO_DATASET", &cfg.Dataset); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "CINEQUERY_DEMO_TABLE", &cfg.Table); err != nil {
		return Config{}, err
	}
	if err := applyBool(lookup, "CINEQUERY_DEMO_UPLOAD", &cfg.Upload); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate normalizes the format and checks the fields a run needs.
func (c *Config) Validate() error {
	c.Format = strings.ToLower(strings.TrimSpace(c.Format))
	switch c.Format {
	case FormatCSV, FormatParquet:
	default:
		return fmt.Errorf("CINEQUERY_DEMO_FORMAT must be csv or parquet, got %q", c.Format)
	}
	if c.Rows <= 0 {
		return fmt.Errorf("CINEQUERY_DEMO_ROWS must be > 0")
	}
	if !c.Upload && strings.TrimSpace(c.Output) == "" {
		return fmt.Errorf("CINEQUERY_DEMO_OUTPUT is required unless uploading")
	}
	if c.Upload && strings.TrimSpace(c.Dataset) == "" {
		return fmt.Errorf("CINEQUERY_DEMO_DATASET is required when uploading")
	}
	if strings.TrimSpace(c.Table) == "" {
		return fmt.Errorf("CINEQUERY_DEMO_TABLE is required")
	}
	c.Output = strings.TrimSpace(c.Output)
	c.Dataset = strings.TrimSpace(c.Dataset)
	c.Table = strings.TrimSpace(c.Table)
	return nil
}

func applyString(lookup LookupFunc, key string, dst *string) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	*dst = strings.TrimSpace(raw)
	return nil
}

func applyBool(lookup LookupFunc, key string, dst *bool) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	v, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = v
	return nil
}

func applyInt(lookup LookupFunc, key string, dst *int) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = v
	return nil
}

func applyInt64(lookup LookupFunc, key string, dst *int64) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = v
	return nil
}
