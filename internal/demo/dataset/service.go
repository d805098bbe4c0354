package dataset

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/cinequery/cinequery/internal/storage"
)

type Service struct {
	cfg       Config
	log       *slog.Logger
	objects   storage.ObjectStore
	generator *Generator
	now       func() time.Time
}

// Result describes one written dataset. Location is a file path or, for
// uploads, the object key (an s3:// URI when the bucket is known).
type Result struct {
	Rows     int
	Format   string
	Location string
	Bytes    int64
}

func NewService(cfg Config, logger *slog.Logger, objects storage.ObjectStore) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Upload && objects == nil {
		return nil, fmt.Errorf("object storage is required for uploads")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{
		cfg:       cfg,
		log:       logger,
		objects:   objects,
		generator: NewGenerator(cfg.Seed),
		now:       func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *Service) Run(ctx context.Context) (Result, error) {
	movies := s.generator.Generate(s.cfg.Rows)

	var buf bytes.Buffer
	if err := Write(&buf, s.cfg.Format, movies); err != nil {
		return Result{}, err
	}
	result := Result{Rows: len(movies), Format: s.cfg.Format, Bytes: int64(buf.Len())}

	if s.cfg.Upload {
		location, err := s.upload(ctx, buf.Bytes())
		if err != nil {
			return Result{}, err
		}
		result.Location = location
	} else {
		if err := writeFile(s.cfg.Output, buf.Bytes()); err != nil {
			return Result{}, err
		}
		result.Location = s.cfg.Output
	}

	s.log.Info(
		"demo dataset written",
		slog.Int("rows", result.Rows),
		slog.String("format", result.Format),
		slog.String("location", result.Location),
		slog.Int64("bytes", result.Bytes),
	)
	return result, nil
}

func (s *Service) upload(ctx context.Context, body []byte) (string, error) {
	key, err := storage.BuildDatasetKey(s.cfg.Dataset, s.cfg.Table, s.cfg.Format, s.now())
	if err != nil {
		return "", err
	}
	info, err := s.objects.Put(ctx, key, bytes.NewReader(body), int64(len(body)), storage.PutOptions{
		ContentType: contentType(s.cfg.Format),
	})
	if err != nil {
		return "", fmt.Errorf("upload demo dataset: %w", err)
	}
	if info.Key != "" {
		key = info.Key
	}
	if s.cfg.Bucket == "" {
		return key, nil
	}
	return storage.Location{Bucket: s.cfg.Bucket, Key: key}.String(), nil
}

func writeFile(path string, body []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return fmt.Errorf("write demo dataset: %w", err)
	}
	return nil
}
