package dataset

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/parquet-go/parquet-go"

	"github.com/cinequery/cinequery/internal/schema"
)

// Write encodes movies in the given format with columns in documented order.
func Write(w io.Writer, format string, movies []schema.Movie) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, movies)
	case FormatParquet:
		return WriteParquet(w, movies)
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

func WriteCSV(w io.Writer, movies []schema.Movie) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(schema.Movies().ColumnNames()); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, movie := range movies {
		if err := writer.Write(movie.Record()); err != nil {
			return fmt.Errorf("write csv record: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func WriteParquet(w io.Writer, movies []schema.Movie) error {
	writer := parquet.NewGenericWriter[schema.Movie](w)
	if _, err := writer.Write(movies); err != nil {
		_ = writer.Close()
		return fmt.Errorf("write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("close parquet writer: %w", err)
	}
	return nil
}

func contentType(format string) string {
	if format == FormatParquet {
		return "application/vnd.apache.parquet"
	}
	return "text/csv"
}
