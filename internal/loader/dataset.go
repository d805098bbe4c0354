package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/parquet-go/parquet-go"

	"github.com/cinequery/cinequery/internal/schema"
)

// Format names a supported input file layout.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatParquet Format = "parquet"
)

// FormatFor picks the input format from a path or object key extension.
func FormatFor(source string) (Format, error) {
	lower := strings.ToLower(strings.TrimSpace(source))
	switch {
	case strings.HasSuffix(lower, ".csv"):
		return FormatCSV, nil
	case strings.HasSuffix(lower, ".parquet"):
		return FormatParquet, nil
	default:
		return "", fmt.Errorf("cannot infer format of %q: expected .csv or .parquet", source)
	}
}

// dataset is a fully read input file: typed columns and rows of driver
// values in column order. A nil value is stored as NULL.
type dataset struct {
	columns []schema.Column
	rows    [][]any
}

func readCSV(r io.Reader) (dataset, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return dataset{}, fmt.Errorf("csv header row is required")
	}
	if err != nil {
		return dataset{}, fmt.Errorf("read csv header: %w", err)
	}
	names, err := headerNames(header)
	if err != nil {
		return dataset{}, err
	}

	records := make([][]string, 0, 128)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return dataset{}, fmt.Errorf("read csv record: %w", err)
		}
		records = append(records, record)
	}

	columns := make([]schema.Column, len(names))
	for i, name := range names {
		columns[i] = schema.Column{Name: name, Type: inferType(records, i)}
	}

	rows := make([][]any, len(records))
	for r, record := range records {
		row := make([]any, len(columns))
		for i, column := range columns {
			value, err := convertCell(record[i], column.Type)
			if err != nil {
				return dataset{}, fmt.Errorf("record %d column %q: %w", r+1, column.Name, err)
			}
			row[i] = value
		}
		rows[r] = row
	}
	return dataset{columns: columns, rows: rows}, nil
}

func headerNames(header []string) ([]string, error) {
	names := make([]string, len(header))
	seen := make(map[string]struct{}, len(header))
	for i, raw := range header {
		name := strings.TrimSpace(raw)
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		if name == "" {
			return nil, fmt.Errorf("csv header column %d is empty", i+1)
		}
		key := strings.ToLower(name)
		if _, ok := seen[key]; ok {
			return nil, fmt.Errorf("duplicate csv header column %q", name)
		}
		seen[key] = struct{}{}
		names[i] = name
	}
	return names, nil
}

// missingTokens are the cell spellings read as NULL, matching the default
// NA markers of common dataframe tooling.
var missingTokens = map[string]struct{}{
	"":         {},
	"#N/A":     {},
	"#N/A N/A": {},
	"#NA":      {},
	"-1.#IND":  {},
	"-1.#QNAN": {},
	"-NaN":     {},
	"-nan":     {},
	"1.#IND":   {},
	"1.#QNAN":  {},
	"<NA>":     {},
	"N/A":      {},
	"NA":       {},
	"NULL":     {},
	"NaN":      {},
	"None":     {},
	"n/a":      {},
	"nan":      {},
	"null":     {},
}

func isMissing(cell string) bool {
	_, ok := missingTokens[cell]
	return ok
}

// isNonFinite reports infinities and NaN spellings the NA markers miss. In a
// numeric column they are read as NULL, since JSON cannot carry them.
func isNonFinite(cell string) bool {
	value, err := strconv.ParseFloat(cell, 64)
	return err == nil && (math.IsInf(value, 0) || math.IsNaN(value))
}

// inferType widens from integer to float to string over the non-missing
// cells of one column. A column without values is a string column.
func inferType(records [][]string, index int) schema.ValueType {
	valueType := schema.TypeInteger
	sawValue := false
	sawNonFinite := false
	for _, record := range records {
		cell := strings.TrimSpace(record[index])
		if isMissing(cell) {
			continue
		}
		if isNonFinite(cell) {
			sawNonFinite = true
			continue
		}
		sawValue = true
		if valueType == schema.TypeInteger {
			if _, err := strconv.ParseInt(cell, 10, 64); err == nil {
				continue
			}
			valueType = schema.TypeFloat
		}
		if _, err := strconv.ParseFloat(cell, 64); err != nil {
			return schema.TypeString
		}
	}
	if !sawValue {
		return schema.TypeString
	}
	if sawNonFinite {
		return schema.TypeFloat
	}
	return valueType
}

func convertCell(cell string, valueType schema.ValueType) (any, error) {
	trimmed := strings.TrimSpace(cell)
	if isMissing(trimmed) {
		return nil, nil
	}
	switch valueType {
	case schema.TypeInteger:
		return strconv.ParseInt(trimmed, 10, 64)
	case schema.TypeFloat:
		if isNonFinite(trimmed) {
			return nil, nil
		}
		return strconv.ParseFloat(trimmed, 64)
	default:
		return cell, nil
	}
}

func readParquet(input io.ReaderAt, size int64) (dataset, error) {
	movies, err := parquet.Read[schema.Movie](input, size)
	if err != nil {
		return dataset{}, fmt.Errorf("read parquet rows: %w", err)
	}

	table := schema.Movies()
	columns := make([]schema.Column, len(table.Columns))
	for i, column := range table.Columns {
		columns[i] = schema.Column{Name: column.Name, Type: column.Type}
	}
	rows := make([][]any, len(movies))
	for i, movie := range movies {
		rows[i] = movie.Values()
	}
	return dataset{columns: columns, rows: rows}, nil
}
