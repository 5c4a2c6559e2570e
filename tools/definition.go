package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
)

// LookupInput is the structured form of an Action Input.
type LookupInput struct {
	Query string `json:"query" jsonschema_description:"Free-form natural-language search query."`
}

// Limits caps what a tool returns.
type Limits struct {
	MaxResults      int // top matches to consider
	MaxExcerptRunes int // hard cap applied after retrieval
}

// ToolDefinition is immutable after construction.
type ToolDefinition struct {
	Name        string
	Description string
	InputSchema *jsonschema.Schema
	Limits      Limits
	Function    func(ctx context.Context, query string) (string, error)
}

var LookupInputSchema = GenerateSchema[LookupInput]()

// GenerateSchema reflects a JSON Schema for T with inlined definitions.
func GenerateSchema[T any]() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return reflector.Reflect(v)
}

// Error codes carried by ToolError.
const (
	ErrCodeEmptyQuery = "ERR_EMPTY_QUERY"
	ErrCodeBadInput   = "ERR_BAD_INPUT"
	ErrCodeBackend    = "ERR_BACKEND"
)

// ToolError is a machine-readable error body surfaced back to the agent as JSON.
type ToolError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	err     error
}

// Error returns a compact, single-line JSON string to keep observations small.
func (e ToolError) Error() string {
	b, _ := json.Marshal(e)
	return string(b)
}

func (e ToolError) Unwrap() error { return e.err }

// Lookup resolves name by exact match against defs.
func Lookup(defs []ToolDefinition, name string) (ToolDefinition, bool) {
	for _, d := range defs {
		if d.Name == name {
			return d, true
		}
	}
	return ToolDefinition{}, false
}

// Names lists tool names in registry order.
func Names(defs []ToolDefinition) []string {
	out := make([]string, 0, len(defs))
	for _, d := range defs {
		out = append(out, d.Name)
	}
	return out
}

// Signature renders "name(query: string)" from the tool's input schema.
func (d ToolDefinition) Signature() string {
	if d.InputSchema == nil || d.InputSchema.Properties == nil {
		return d.Name + "(input)"
	}
	var params []string
	for pair := d.InputSchema.Properties.Oldest(); pair != nil; pair = pair.Next() {
		params = append(params, fmt.Sprintf("%s: %s", pair.Key, pair.Value.Type))
	}
	return fmt.Sprintf("%s(%s)", d.Name, strings.Join(params, ", "))
}

// DecodeQuery turns a raw Action Input into a query string. A JSON object is
// decoded against LookupInput; anything else is taken as the query verbatim,
// minus surrounding whitespace and quotes.
func DecodeQuery(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "{") {
		var in LookupInput
		if err := json.Unmarshal([]byte(s), &in); err != nil {
			return "", ToolError{Code: ErrCodeBadInput, Message: fmt.Sprintf("invalid JSON input: %v", err), err: err}
		}
		s = in.Query
	}
	return strings.TrimSpace(strings.Trim(s, "\"")), nil
}

// fetchFunc returns up to n formatted documents for query.
type fetchFunc func(ctx context.Context, query string, n int) ([]string, error)

// newLookupTool wraps fetch with validation, the no-result sentinel and excerpt capping.
func newLookupTool(name, source, description string, limits Limits, fetch fetchFunc) ToolDefinition {
	return ToolDefinition{
		Name:        name,
		Description: description,
		InputSchema: LookupInputSchema,
		Limits:      limits,
		Function: func(ctx context.Context, query string) (string, error) {
			q := strings.TrimSpace(query)
			if q == "" {
				return "", ToolError{Code: ErrCodeEmptyQuery, Message: "query must not be empty"}
			}
			docs, err := fetch(ctx, q, limits.MaxResults)
			if err != nil {
				return "", ToolError{Code: ErrCodeBackend, Message: fmt.Sprintf("%s: %v", name, err), err: err}
			}
			if len(docs) == 0 {
				return NoResult(source), nil
			}
			if limits.MaxResults > 0 && len(docs) > limits.MaxResults {
				docs = docs[:limits.MaxResults]
			}
			out, _ := clampRunes(strings.Join(docs, "\n\n"), limits.MaxExcerptRunes)
			return out, nil
		},
	}
}

// NoResult is the sentinel returned when a backend finds nothing.
func NoResult(source string) string {
	return fmt.Sprintf("No good %s Result was found", source)
}
