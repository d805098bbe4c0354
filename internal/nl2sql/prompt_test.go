package nl2sql

import (
	"strings"
	"testing"

	"github.com/cinequery/cinequery/internal/schema"
)

func TestBuildPromptMentionsEveryColumnOnce(t *testing.T) {
	question := "Which Netflix thrillers released after 2018 have the best audience score?"
	prompt := BuildPrompt(schema.Movies(), question)

	if strings.Count(prompt, question) != 1 {
		t.Fatalf("question appears %d times", strings.Count(prompt, question))
	}
	for _, name := range schema.Movies().ColumnNames() {
		if got := strings.Count(prompt, name); got != 1 {
			t.Fatalf("column %q appears %d times, want 1", name, got)
		}
	}
}

func TestBuildPromptDescribesTableAndOutputFormat(t *testing.T) {
	prompt := BuildPrompt(schema.Movies(), "anything")

	for _, want := range []string{
		"Table Name: movies",
		"14. IMDb_Rating: Float.",
		"Start with SELECT and end with the semicolon.",
		"Only return the SQL query.",
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q", want)
		}
	}
	if !strings.HasSuffix(prompt, "Question: anything\n\nSQL Query:") {
		t.Fatalf("prompt tail = %q", prompt[len(prompt)-40:])
	}
}

func TestBuildPromptAcceptsEmptyQuestion(t *testing.T) {
	prompt := BuildPrompt(schema.Movies(), "")
	if !strings.HasSuffix(prompt, "Question: \n\nSQL Query:") {
		t.Fatalf("prompt tail = %q", prompt[len(prompt)-40:])
	}
}

func TestBuildPromptIsDeterministic(t *testing.T) {
	table := schema.Movies()
	if BuildPrompt(table, "q") != BuildPrompt(table, "q") {
		t.Fatal("BuildPrompt() is not deterministic")
	}
}

func TestBuildPromptUsesSuppliedTable(t *testing.T) {
	table := schema.Table{
		Name:    "shows",
		Columns: []schema.Column{{Name: "Name", Type: schema.TypeString, Description: "Show name."}},
	}
	prompt := BuildPrompt(table, "list shows")
	if !strings.Contains(prompt, "named `shows`.") {
		t.Fatalf("prompt = %q", prompt)
	}
	if !strings.Contains(prompt, "1. Name: String. Show name.") {
		t.Fatalf("prompt = %q", prompt)
	}
}
