package nl2sql

import (
	"context"
	"strings"
)

type CompletionStatus string

const (
	CompletionOK    CompletionStatus = "ok"
	CompletionEmpty CompletionStatus = "empty"
)

// Completion is the outcome of one call to the completion service. Status
// is CompletionEmpty when the service answered but produced no usable text.
type Completion struct {
	Text     string           `json:"text"`
	Status   CompletionStatus `json:"status"`
	Provider string           `json:"provider"`
	Model    string           `json:"model"`
}

func (c Completion) Succeeded() bool {
	return c.Status == CompletionOK && strings.TrimSpace(c.Text) != ""
}

type Completer interface {
	Complete(ctx context.Context, prompt string) (Completion, error)
}
