package telemetry_test

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/petasbytes/search-agent/internal/telemetry"
)

// observeInto enables emission into a fresh artifacts dir and returns the events path.
func observeInto(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("SEARCHAGENT_ARTIFACTS_DIR", dir)
	t.Setenv("SEARCHAGENT_OBSERVE_JSON", "1")
	return filepath.Join(dir, "events.jsonl")
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func TestEmit_Disabled_NoFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SEARCHAGENT_ARTIFACTS_DIR", dir)
	t.Setenv("SEARCHAGENT_OBSERVE_JSON", "0")

	telemetry.Emit("test_event", map[string]any{"foo": "bar"})

	if _, err := os.Stat(filepath.Join(dir, "events.jsonl")); !os.IsNotExist(err) {
		t.Fatalf("expected no events.jsonl when observe=0, got err=%v", err)
	}
}

func TestEmit_HappyPath(t *testing.T) {
	path := observeInto(t)

	telemetry.Emit("test_event", map[string]any{"foo": "bar", "num": 42})

	lines := readLines(t, path)
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}

	var event map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &event); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if event["event"] != "test_event" {
		t.Errorf("expected event=test_event, got %v", event["event"])
	}
	if event["foo"] != "bar" {
		t.Errorf("expected foo=bar, got %v", event["foo"])
	}
	if event["num"] != float64(42) { // JSON numbers are float64
		t.Errorf("expected num=42, got %v", event["num"])
	}
	timeStr, ok := event["time"].(string)
	if !ok {
		t.Fatal("expected time field as string")
	}
	if _, err := time.Parse(time.RFC3339Nano, timeStr); err != nil {
		t.Errorf("time field not valid RFC3339Nano: %v", err)
	}
}

func TestEmit_MultipleEmissions_Ordered(t *testing.T) {
	path := observeInto(t)

	telemetry.Emit("event1", map[string]any{"id": 1})
	telemetry.Emit("event2", map[string]any{"id": 2})
	telemetry.Emit("event3", map[string]any{"id": 3})

	lines := readLines(t, path)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	for i, line := range lines {
		var event map[string]any
		if err := json.Unmarshal([]byte(line), &event); err != nil {
			t.Fatalf("line %d invalid JSON: %v", i+1, err)
		}
		if want := "event" + string(rune('1'+i)); event["event"] != want {
			t.Errorf("line %d: expected event=%s, got %v", i+1, want, event["event"])
		}
	}
}

func TestEmit_MapIsolation(t *testing.T) {
	_ = observeInto(t)

	fields := map[string]any{"key": "value"}
	telemetry.Emit("test", fields)

	if len(fields) != 1 || fields["key"] != "value" {
		t.Fatalf("caller map mutated: %#v", fields)
	}
}

func TestEmit_MarshalError_NoFile(t *testing.T) {
	path := observeInto(t)

	// NaN cannot be marshaled by encoding/json.
	telemetry.Emit("bad", map[string]any{"x": math.NaN()})

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected no events file on marshal error, got err=%v", err)
	}
}

func TestEmit_NilFields(t *testing.T) {
	path := observeInto(t)

	telemetry.Emit("nil_fields", nil)

	var event map[string]any
	if err := json.Unmarshal([]byte(readLines(t, path)[0]), &event); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	// Expect exactly 2 keys: event and time
	if len(event) != 2 {
		t.Fatalf("expected exactly 2 keys (event,time), got %d: %#v", len(event), event)
	}
}

func TestEmit_ReadOnlyFile_NoPanic(t *testing.T) {
	path := observeInto(t)
	if err := os.WriteFile(path, nil, 0o444); err != nil {
		t.Fatal(err)
	}

	// Should not panic; open will fail and be reported on stderr.
	telemetry.Emit("x", map[string]any{"a": 1})

	fi, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if fi.Size() != 0 && os.Geteuid() != 0 {
		t.Fatalf("expected read-only file size 0, got %d", fi.Size())
	}
}
