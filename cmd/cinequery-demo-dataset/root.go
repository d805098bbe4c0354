package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cinequery/cinequery/internal/config"
	"github.com/cinequery/cinequery/internal/demo/dataset"
	"github.com/cinequery/cinequery/internal/observability"
	"github.com/cinequery/cinequery/internal/storage"
	s3store "github.com/cinequery/cinequery/internal/storage/s3"
)

func newRootCommand() *cobra.Command {
	var (
		rows   int
		seed   int64
		format string
		output string
		name   string
		table  string
		upload bool
	)

	cmd := &cobra.Command{
		Use:           "cinequery-demo-dataset",
		Short:         "Write a synthetic movies dataset for local loading",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			demoCfg, err := dataset.LoadConfigFromEnv(os.LookupEnv)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("rows") {
				demoCfg.Rows = rows
			}
			if flags.Changed("seed") {
				demoCfg.Seed = seed
			}
			if flags.Changed("format") {
				demoCfg.Format = format
			}
			if flags.Changed("output") {
				demoCfg.Output = output
			}
			if flags.Changed("dataset") {
				demoCfg.Dataset = name
			}
			if flags.Changed("table") {
				demoCfg.Table = table
			}
			if flags.Changed("upload") {
				demoCfg.Upload = upload
			}
			if err := demoCfg.Validate(); err != nil {
				return err
			}

			cfg, err := config.LoadFromEnv("cinequery-demo-dataset")
			if err != nil {
				return err
			}
			logger := observability.NewLogger(cfg, cmd.ErrOrStderr())

			var objects storage.ObjectStore
			if demoCfg.Upload {
				store, err := s3store.New(cmd.Context(), s3store.Config{
					Endpoint:         cfg.ObjectStore.Endpoint,
					Region:           cfg.ObjectStore.Region,
					Bucket:           cfg.ObjectStore.Bucket,
					AccessKeyID:      cfg.ObjectStore.AccessKeyID,
					SecretAccessKey:  cfg.ObjectStore.SecretAccessKey,
					UseSSL:           cfg.ObjectStore.UseSSL,
					Prefix:           cfg.ObjectStore.Prefix,
					AutoCreateBucket: cfg.ObjectStore.AutoCreateBucket,
				})
				if err != nil {
					return fmt.Errorf("initialize object store: %w", err)
				}
				objects = store
				demoCfg.Bucket = cfg.ObjectStore.Bucket
			}

			service, err := dataset.NewService(demoCfg, logger, objects)
			if err != nil {
				return err
			}
			result, err := service.Run(cmd.Context())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "wrote %d %s rows to %s\n", result.Rows, result.Format, result.Location)
			return nil
		},
	}

	defaults := dataset.DefaultConfig()
	cmd.Flags().IntVar(&rows, "rows", defaults.Rows, "Number of rows to generate")
	cmd.Flags().Int64Var(&seed, "seed", defaults.Seed, "Random seed; the same seed yields the same rows")
	cmd.Flags().StringVar(&format, "format", defaults.Format, "Output format: csv or parquet")
	cmd.Flags().StringVarP(&output, "output", "o", defaults.Output, "Output file path")
	cmd.Flags().StringVar(&name, "dataset", defaults.Dataset, "Dataset name used in the object key when uploading")
	cmd.Flags().StringVar(&table, "table", defaults.Table, "Table name used in the object key when uploading")
	cmd.Flags().BoolVar(&upload, "upload", false, "Upload to the configured object store instead of writing a file")
	return cmd
}
