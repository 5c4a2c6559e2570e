package provider_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/petasbytes/search-agent/internal/provider"
)

func TestNew_RequiresCredential(t *testing.T) {
	_, err := provider.New(provider.AgentConfig{Provider: provider.ProviderGroq, Credential: "   "})
	if !errors.Is(err, provider.ErrMissingCredential) {
		t.Fatalf("expected ErrMissingCredential, got %v", err)
	}
}

func TestNew_UnknownProvider(t *testing.T) {
	_, err := provider.New(provider.AgentConfig{Provider: "openai", Credential: "k"})
	if err == nil || !strings.Contains(err.Error(), `unknown provider "openai"`) {
		t.Fatalf("expected unknown provider error, got %v", err)
	}
}

func TestDefaultModelID(t *testing.T) {
	if got := provider.DefaultModelID(provider.ProviderGroq); got != "llama-3.1-8b-instant" {
		t.Fatalf("groq default: %q", got)
	}
	if got := provider.DefaultModelID(provider.ProviderAnthropic); got != string(provider.DefaultAnthropicModel) {
		t.Fatalf("anthropic default: %q", got)
	}
}

func TestAgentConfig_LogValueOmitsCredential(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	logger.Info("configured", "agent", provider.AgentConfig{Provider: "groq", Credential: "valid-key-123", MaxSteps: 6})
	if strings.Contains(buf.String(), "valid-key-123") {
		t.Fatalf("credential leaked: %s", buf.String())
	}
	if !strings.Contains(buf.String(), `"max_steps":6`) {
		t.Fatalf("expected fields in log: %s", buf.String())
	}
}

func TestDescribe(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{provider.ErrMissingCredential, "No API key is set"},
		{fmt.Errorf("wrapped: %w", context.Canceled), "cancelled"},
		{&provider.Error{Provider: "groq", StatusCode: 403, Message: "forbidden"}, "rejected the API key"},
		{&provider.Error{Provider: "groq", StatusCode: 500, Message: "Internal Server Error"}, "Internal Server Error"},
		{errors.New("boom"), "boom"},
	}
	for _, tc := range cases {
		got := provider.Describe(tc.err)
		if tc.want == "" {
			if got != "" {
				t.Fatalf("Describe(nil) = %q", got)
			}
			continue
		}
		if !strings.Contains(got, tc.want) {
			t.Fatalf("Describe(%v) = %q, want substring %q", tc.err, got, tc.want)
		}
	}
}
