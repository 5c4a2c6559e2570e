package credential_test

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/petasbytes/search-agent/internal/credential"
)

func TestGate_EmptyIsClosed(t *testing.T) {
	g := credential.NewGate("")
	if g.Open() {
		t.Fatal("empty gate must be closed")
	}
	g.Set("   ")
	if g.Open() {
		t.Fatal("whitespace-only key must not open the gate")
	}
}

func TestGate_UserKeyOverridesDefault(t *testing.T) {
	g := credential.NewGate("env-key")
	if !g.Open() || g.Value() != "env-key" {
		t.Fatalf("want env-key, got %q", g.Value())
	}
	g.Set(" valid-key-123 ")
	if g.Value() != "valid-key-123" {
		t.Fatalf("want valid-key-123, got %q", g.Value())
	}
}

func TestGate_Clear(t *testing.T) {
	g := credential.NewGate("k")
	g.Clear()
	if g.Open() {
		t.Fatal("gate should be closed after Clear")
	}
}

func TestGate_NeverPrintsSecret(t *testing.T) {
	g := credential.NewGate("super-secret")
	if s := fmt.Sprint(g); strings.Contains(s, "super-secret") {
		t.Fatalf("secret leaked via String: %q", s)
	}

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	logger.Info("gate", "credential", g)
	if strings.Contains(buf.String(), "super-secret") {
		t.Fatalf("secret leaked into log: %s", buf.String())
	}
}
