package store

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cinequery/cinequery/internal/schema"
)

type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverDuckDB   Driver = "duckdb"
	DriverPostgres Driver = "postgres"
	DriverMySQL    Driver = "mysql"
)

// Dialect captures the few syntax differences the loader has to care about.
type Dialect struct {
	Driver     Driver
	driverName string
}

func DialectFor(driver Driver) (Dialect, error) {
	switch driver {
	case DriverSQLite:
		return Dialect{Driver: driver, driverName: "sqlite"}, nil
	case DriverDuckDB:
		return Dialect{Driver: driver, driverName: "duckdb"}, nil
	case DriverPostgres:
		return Dialect{Driver: driver, driverName: "pgx"}, nil
	case DriverMySQL:
		return Dialect{Driver: driver, driverName: "mysql"}, nil
	default:
		return Dialect{}, fmt.Errorf("unsupported store driver %q", driver)
	}
}

func (d Dialect) QuoteIdent(value string) string {
	if d.Driver == DriverMySQL {
		return "`" + strings.ReplaceAll(value, "`", "``") + "`"
	}
	return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
}

// Placeholder returns the bind parameter marker for the 1-based position n.
func (d Dialect) Placeholder(n int) string {
	if d.Driver == DriverPostgres {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

func (d Dialect) ColumnType(valueType schema.ValueType) string {
	switch valueType {
	case schema.TypeInteger:
		if d.Driver == DriverSQLite {
			return "INTEGER"
		}
		return "BIGINT"
	case schema.TypeFloat:
		switch d.Driver {
		case DriverSQLite:
			return "REAL"
		case DriverPostgres:
			return "DOUBLE PRECISION"
		default:
			return "DOUBLE"
		}
	default:
		return "TEXT"
	}
}
