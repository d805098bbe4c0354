package loader

import (
	"strconv"
	"strings"

	"github.com/cinequery/cinequery/internal/schema"
	"github.com/cinequery/cinequery/internal/store"
)

var sampleColumns = []string{
	schema.ColumnTitle,
	schema.ColumnIMDbRating,
	schema.ColumnAudienceScore,
	schema.ColumnBoxOfficeMillions,
}

func createTableSQL(dialect store.Dialect, table string, columns []schema.Column) string {
	defs := make([]string, len(columns))
	for i, column := range columns {
		defs[i] = dialect.QuoteIdent(column.Name) + " " + dialect.ColumnType(column.Type)
	}
	return "CREATE TABLE " + dialect.QuoteIdent(table) + " (" + strings.Join(defs, ", ") + ")"
}

func insertSQL(dialect store.Dialect, table string, columns []schema.Column, rows int) string {
	names := make([]string, len(columns))
	for i, column := range columns {
		names[i] = dialect.QuoteIdent(column.Name)
	}

	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(dialect.QuoteIdent(table))
	b.WriteString(" (")
	b.WriteString(strings.Join(names, ", "))
	b.WriteString(") VALUES ")
	position := 1
	for r := 0; r < rows; r++ {
		if r > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('(')
		for c := range columns {
			if c > 0 {
				b.WriteString(", ")
			}
			b.WriteString(dialect.Placeholder(position))
			position++
		}
		b.WriteByte(')')
	}
	return b.String()
}

// sampleSQL reports false when the table lacks any of the sample columns.
func sampleSQL(dialect store.Dialect, table string, columns []schema.Column, limit int) (string, bool) {
	loaded := schema.Table{Columns: columns}
	quoted := make([]string, len(sampleColumns))
	for i, name := range sampleColumns {
		column, ok := loaded.Column(name)
		if !ok {
			return "", false
		}
		quoted[i] = dialect.QuoteIdent(column.Name)
	}
	return "SELECT " + strings.Join(quoted, ", ") +
		" FROM " + dialect.QuoteIdent(table) +
		" ORDER BY " + quoted[1] + " DESC LIMIT " + strconv.Itoa(limit), true
}
