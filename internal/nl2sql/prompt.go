package nl2sql

import (
	"fmt"
	"strings"

	"github.com/cinequery/cinequery/internal/schema"
)

const promptPreamble = `You are an intelligent assistant that helps convert natural language questions into SQL queries.
Your task is to take a natural language question and return only the SQL query. Do not provide any explanations, just return the query.

IMPORTANT:
- Only return the SQL query.
- Do not include any text, explanations, or commentary before or after the SQL query.
- Ensure the SQL query is clean and without any additional symbols, text, or commentary.
`

// BuildPrompt renders the instruction sent to the completion service. The
// question is substituted verbatim; an empty question is accepted.
func BuildPrompt(table schema.Table, question string) string {
	var b strings.Builder
	b.WriteString(promptPreamble)
	b.WriteString("\n")
	_, _ = fmt.Fprintf(&b, "The table you are working with is named `%s`", table.Name)
	if table.Subject != "" {
		_, _ = fmt.Fprintf(&b, " and holds %s", table.Subject)
	}
	b.WriteString(". Here are the details of the table and its columns:\n\n")
	_, _ = fmt.Fprintf(&b, "Table Name: %s\n\n", table.Name)
	for i, column := range table.Columns {
		_, _ = fmt.Fprintf(&b, "%d. %s: %s. %s\n", i+1, column.Name, column.Type, column.Description)
	}
	b.WriteString("\nNow, based on the information provided, convert the following natural language question into an SQL query.\n\n")
	b.WriteString("Ensure that you return ONLY the SQL query as plain text, nothing else. Start with SELECT and end with the semicolon.\n\n")
	_, _ = fmt.Fprintf(&b, "Question: %s\n\nSQL Query:", question)
	return b.String()
}
