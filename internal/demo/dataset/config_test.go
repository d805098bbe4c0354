package dataset

import (
	"strings"
	"testing"
)

func TestLoadConfigFromEnvDefaults(t *testing.T) {
	cfg, err := LoadConfigFromEnv(mapLookup(map[string]string{}))
	if err != nil {
		t.Fatalf("LoadConfigFromEnv() error = %v", err)
	}
	if cfg.Format != FormatCSV {
		t.Fatalf("Format = %q", cfg.Format)
	}
	if cfg.Output != "movies.csv" {
		t.Fatalf("Output = %q", cfg.Output)
	}
	if cfg.Rows <= 0 {
		t.Fatalf("Rows = %d", cfg.Rows)
	}
	if cfg.Upload {
		t.Fatal("Upload = true, want false")
	}
}

func TestLoadConfigFromEnvOverrides(t *testing.T) {
	cfg, err := LoadConfigFromEnv(mapLookup(map[string]string{
		"CINEQUERY_DEMO_ROWS":    "40",
		"CINEQUERY_DEMO_SEED":    "12345",
		"CINEQUERY_DEMO_FORMAT":  " Parquet ",
		"CINEQUERY_DEMO_OUTPUT":  "out/movies.parquet",
		"CINEQUERY_DEMO_DATASET": "bollywood",
		"CINEQUERY_DEMO_TABLE":   "titles",
		"CINEQUERY_DEMO_UPLOAD":  "true",
	}))
	if err != nil {
		t.Fatalf("LoadConfigFromEnv() error = %v", err)
	}
	if cfg.Rows != 40 || cfg.Seed != 12345 {
		t.Fatalf("rows=%d seed=%d", cfg.Rows, cfg.Seed)
	}
	if cfg.Format != FormatParquet {
		t.Fatalf("Format = %q", cfg.Format)
	}
	if cfg.Dataset != "bollywood" || cfg.Table != "titles" {
		t.Fatalf("dataset=%q table=%q", cfg.Dataset, cfg.Table)
	}
	if !cfg.Upload {
		t.Fatal("Upload = false, want true")
	}
}

func TestLoadConfigFromEnvRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{name: "format", env: map[string]string{"CINEQUERY_DEMO_FORMAT": "json"}, want: "CINEQUERY_DEMO_FORMAT"},
		{name: "rows", env: map[string]string{"CINEQUERY_DEMO_ROWS": "0"}, want: "CINEQUERY_DEMO_ROWS"},
		{name: "rows parse", env: map[string]string{"CINEQUERY_DEMO_ROWS": "many"}, want: "invalid CINEQUERY_DEMO_ROWS"},
		{name: "output", env: map[string]string{"CINEQUERY_DEMO_OUTPUT": " "}, want: "CINEQUERY_DEMO_OUTPUT"},
		{name: "upload", env: map[string]string{"CINEQUERY_DEMO_UPLOAD": "maybe"}, want: "invalid CINEQUERY_DEMO_UPLOAD"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadConfigFromEnv(mapLookup(tc.env))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error = %v, want mention of %s", err, tc.want)
			}
		})
	}
}

func mapLookup(values map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		value, ok := values[key]
		return value, ok
	}
}
