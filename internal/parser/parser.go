// Package parser wraps the outbound AI text-parsing call. The auth core
// treats it as an opaque remote operation with its own retry semantics;
// nothing here inspects or reshapes the structured result.
package parser

import (
	"context"
	"encoding/json"
)

// Result is the upstream's structured output, passed through untouched.
type Result struct {
	Structured json.RawMessage `json:"structured"`
	Model      string          `json:"model,omitempty"`
}

// Parser is the remote parse operation. Implement this interface to add
// new upstream providers.
type Parser interface {
	Parse(ctx context.Context, text, parseContext string) (*Result, error)
}
