// Package provider adapts language-model APIs to a single text-generation contract.
//
// Two providers are wired:
//   - groq: OpenAI-compatible chat completions (the chatbot's default model).
//   - anthropic: the Anthropic Messages API via anthropic-sdk-go.
//
// Both stream tokens through the onToken callback when streaming is enabled and
// report failures as *Error so callers can tell authentication problems apart.
package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
)

const (
	ProviderGroq      = "groq"
	ProviderAnthropic = "anthropic"
)

// ErrMissingCredential is returned when no API key is configured.
var ErrMissingCredential = errors.New("provider: missing API key")

// Request is one generation call.
type Request struct {
	System    string
	Prompt    string
	Stop      []string
	MaxTokens int
}

// Model generates text for a request. onToken, if non-nil, receives text
// increments in order; their concatenation equals the returned text.
type Model interface {
	Generate(ctx context.Context, req Request, onToken func(string)) (string, error)
}

// AgentConfig selects and authenticates a model and bounds the agent loop that
// drives it. Built fresh per prompt submission from the current credential.
type AgentConfig struct {
	Provider   string
	ModelID    string
	Credential string
	Streaming  bool
	MaxSteps   int
}

// LogValue omits the credential.
func (c AgentConfig) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("provider", c.Provider),
		slog.String("model", c.ModelID),
		slog.Bool("streaming", c.Streaming),
		slog.Int("max_steps", c.MaxSteps),
	)
}

type options struct {
	httpClient *http.Client
	baseURL    string
}

// Option customizes transport details, mainly for tests.
type Option func(*options)

// WithHTTPClient sets the HTTP client used for API calls.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithBaseURL overrides the API endpoint.
func WithBaseURL(u string) Option {
	return func(o *options) { o.baseURL = strings.TrimRight(u, "/") }
}

// New returns the model selected by cfg.Provider.
func New(cfg AgentConfig, opts ...Option) (Model, error) {
	if strings.TrimSpace(cfg.Credential) == "" {
		return nil, ErrMissingCredential
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	switch cfg.Provider {
	case ProviderGroq, "":
		return newGroq(cfg, o), nil
	case ProviderAnthropic:
		return newAnthropic(cfg, o), nil
	default:
		return nil, fmt.Errorf("provider: unknown provider %q", cfg.Provider)
	}
}

// DefaultModelID returns the model used when none is configured.
func DefaultModelID(provider string) string {
	if provider == ProviderAnthropic {
		return string(DefaultAnthropicModel)
	}
	return DefaultGroqModel
}

// Error is a provider-level failure.
type Error struct {
	Provider   string
	StatusCode int // 0 when no HTTP response was received
	Message    string
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: http %d: %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// IsAuth reports whether err is an authentication or permission failure.
func IsAuth(err error) bool {
	var pe *Error
	if !errors.As(err, &pe) {
		return false
	}
	return pe.StatusCode == http.StatusUnauthorized || pe.StatusCode == http.StatusForbidden
}

// Describe renders err as a one-line message suitable for the chat transcript.
func Describe(err error) string {
	var pe *Error
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingCredential):
		return "No API key is set. Enter your API key in Settings to start chatting."
	case errors.Is(err, context.Canceled):
		return "The request was cancelled."
	case errors.Is(err, context.DeadlineExceeded):
		return "The language model did not respond in time. Please try again."
	case IsAuth(err):
		return "The language model provider rejected the API key. Check the key in Settings and try again."
	case errors.As(err, &pe) && pe.StatusCode == http.StatusTooManyRequests:
		return "The language model provider is rate limiting requests or the quota is exhausted. Wait a moment and try again."
	case errors.As(err, &pe):
		return fmt.Sprintf("The language model request failed (%s). Please try again.", pe.Message)
	default:
		return fmt.Sprintf("The request failed: %v", err)
	}
}
