package telemetry_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/petasbytes/search-agent/internal/telemetry"
)

func TestCountFeatures(t *testing.T) {
	tests := []struct {
		in   string
		want telemetry.Features
	}{
		{"", telemetry.Features{}},
		{"héllö 世界", telemetry.Features{Bytes: 14, Runes: 8, Words: 2, Lines: 1}},
		{"a\nb\n", telemetry.Features{Bytes: 4, Runes: 4, Words: 2, Lines: 3}},
		{"What is machine learning?", telemetry.Features{Bytes: 25, Runes: 25, Words: 4, Lines: 1}},
	}
	for _, tt := range tests {
		if got := telemetry.CountFeatures(tt.in); got != tt.want {
			t.Errorf("CountFeatures(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestEmitPromptFeatures_NoRawTextLeakage(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SEARCHAGENT_ARTIFACTS_DIR", dir)
	t.Setenv("SEARCHAGENT_OBSERVE_JSON", "1")

	ctx := telemetry.WithTurnID(context.Background(), "turn-privacy")
	prompt := "What is machine learning?"
	telemetry.EmitPromptFeatures(ctx, prompt)

	b, err := os.ReadFile(filepath.Join(dir, "events.jsonl"))
	if err != nil {
		t.Fatalf("read events: %v", err)
	}
	if strings.Contains(string(b), prompt) {
		t.Fatalf("raw prompt found in events.jsonl")
	}

	var m map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(string(b))), &m); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if m["event"] != "prompt_features" || m["turn_id"] != "turn-privacy" {
		t.Fatalf("unexpected event: %#v", m)
	}
	p := m["prompt"].(map[string]any)
	if p["words"] != float64(4) || p["lines"] != float64(1) {
		t.Fatalf("unexpected features: %#v", p)
	}
}
