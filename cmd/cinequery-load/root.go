package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cinequery/cinequery/internal/config"
	"github.com/cinequery/cinequery/internal/loader"
	"github.com/cinequery/cinequery/internal/observability"
	"github.com/cinequery/cinequery/internal/storage"
	s3store "github.com/cinequery/cinequery/internal/storage/s3"
	"github.com/cinequery/cinequery/internal/store"
)

type loadFlags struct {
	table      string
	driver     string
	dsn        string
	format     string
	sampleRows int
	noLock     bool
}

func newRootCommand() *cobra.Command {
	var flags loadFlags

	cmd := &cobra.Command{
		Use:           "cinequery-load <source>",
		Short:         "Replace the movies table with a CSV or Parquet file",
		Long:          "Loads a local file or an s3://bucket/key object into the configured store,\nreplacing any existing table of the same name.",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFromEnv("cinequery-load")
			if err != nil {
				return err
			}
			return runLoad(cmd.Context(), cfg, flags, args[0], cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVar(&flags.table, "table", "", "Target table (defaults to CINEQUERY_STORE_TABLE)")
	cmd.Flags().StringVar(&flags.driver, "driver", "", "Store driver: sqlite, duckdb, postgres or mysql")
	cmd.Flags().StringVar(&flags.dsn, "dsn", "", "Store DSN (a file path for sqlite and duckdb)")
	cmd.Flags().StringVar(&flags.format, "format", "", "Input format, csv or parquet (defaults to the file extension)")
	cmd.Flags().IntVar(&flags.sampleRows, "sample-rows", 0, "Rows to print after loading")
	cmd.Flags().BoolVar(&flags.noLock, "no-lock", false, "Skip the advisory lock next to file-backed stores")

	return cmd
}

func runLoad(ctx context.Context, cfg config.Config, flags loadFlags, source string, stdout, stderr io.Writer) error {
	if flags.driver != "" {
		cfg.Store.Driver = flags.driver
	}
	if flags.dsn != "" {
		cfg.Store.DSN = flags.dsn
	}
	if flags.table != "" {
		cfg.Store.Table = flags.table
	}
	if flags.sampleRows > 0 {
		cfg.Loader.SampleRows = flags.sampleRows
	}
	if flags.noLock {
		cfg.Loader.Lock = false
	}

	logger := observability.NewLogger(cfg, stderr)
	storeCfg := store.Config{
		Driver:          store.Driver(cfg.Store.Driver),
		DSN:             cfg.Store.DSN,
		MaxOpenConns:    cfg.Store.MaxOpenConns,
		MaxIdleConns:    cfg.Store.MaxIdleConns,
		ConnMaxIdleTime: cfg.Store.ConnMaxIdleTime,
		ConnMaxLifetime: cfg.Store.ConnMaxLifetime,
	}
	db, dialect, err := store.Open(ctx, storeCfg)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	l := &loader.Loader{
		DB:          db,
		Dialect:     dialect,
		Logger:      logger,
		BatchSize:   cfg.Loader.BatchSize,
		LockTimeout: cfg.Loader.LockTimeout,
	}
	if cfg.Loader.Lock {
		if path, ok := storeCfg.FilePath(); ok {
			l.LockPath = path + ".lock"
		}
	}
	if storage.IsObjectURI(source) {
		objects, err := s3store.New(ctx, s3store.Config{
			Endpoint:        cfg.ObjectStore.Endpoint,
			Region:          cfg.ObjectStore.Region,
			Bucket:          cfg.ObjectStore.Bucket,
			AccessKeyID:     cfg.ObjectStore.AccessKeyID,
			SecretAccessKey: cfg.ObjectStore.SecretAccessKey,
			UseSSL:          cfg.ObjectStore.UseSSL,
			Prefix:          cfg.ObjectStore.Prefix,
		})
		if err != nil {
			return fmt.Errorf("initialize object store: %w", err)
		}
		l.Objects = objects
	}

	summary, err := l.Load(ctx, loader.LoadRequest{
		Source:     source,
		Table:      cfg.Store.Table,
		Format:     loader.Format(strings.ToLower(strings.TrimSpace(flags.format))),
		SampleRows: cfg.Loader.SampleRows,
	})
	if err != nil {
		logger.Error("load failed", slog.String("source", source), slog.Any("error", err))
		return err
	}

	printSummary(stdout, summary)
	return nil
}

func printSummary(w io.Writer, summary loader.Summary) {
	_, _ = fmt.Fprintf(w, "Loaded %d rows into %s from %s (%s) in %s\n\n",
		summary.RowCount, summary.Table, summary.Source, summary.Format, summary.Duration.Round(time.Millisecond))

	columnRows := make([][]string, 0, len(summary.Columns))
	for i, column := range summary.Columns {
		columnRows = append(columnRows, []string{strconv.Itoa(i + 1), column.Name, string(column.Type)})
	}
	_, _ = fmt.Fprintln(w, renderTable([]string{"#", "Column", "Type"}, columnRows, []columnAlignment{alignRight}))

	if len(summary.Sample.Columns) == 0 {
		return
	}
	sampleRows := make([][]string, 0, len(summary.Sample.Rows))
	for _, row := range summary.Sample.Rows {
		cells := make([]string, len(row))
		for i, value := range row {
			cells[i] = formatCell(value)
		}
		sampleRows = append(sampleRows, cells)
	}
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, renderTable(summary.Sample.Columns, sampleRows, nil))
}

func formatCell(value any) string {
	switch typed := value.(type) {
	case nil:
		return "NULL"
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case []byte:
		return string(typed)
	default:
		return fmt.Sprint(typed)
	}
}
