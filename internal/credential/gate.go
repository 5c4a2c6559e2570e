// Package credential holds the provider API key for one session.
package credential

import (
	"log/slog"
	"strings"
	"sync"
)

const redacted = "[redacted]"

// Gate holds a single secret. Nothing downstream runs until it is open.
// The secret is never logged or persisted.
type Gate struct {
	mu     sync.RWMutex
	secret string
}

// NewGate returns a gate seeded with defaultKey, typically read from the
// environment for local development. It may be empty.
func NewGate(defaultKey string) *Gate {
	g := &Gate{}
	g.Set(defaultKey)
	return g
}

// Set replaces the secret. Surrounding whitespace is dropped; an empty value
// leaves the current secret in place so a user-entered key keeps precedence
// over nothing.
func (g *Gate) Set(secret string) {
	s := strings.TrimSpace(secret)
	if s == "" {
		return
	}
	g.mu.Lock()
	g.secret = s
	g.mu.Unlock()
}

// Clear closes the gate.
func (g *Gate) Clear() {
	g.mu.Lock()
	g.secret = ""
	g.mu.Unlock()
}

// Open reports whether a non-empty secret is present.
func (g *Gate) Open() bool {
	return g.Value() != ""
}

// Value returns the secret.
func (g *Gate) Value() string {
	if g == nil {
		return ""
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.secret
}

// String never reveals the secret.
func (g *Gate) String() string {
	if !g.Open() {
		return "<unset>"
	}
	return redacted
}

// LogValue keeps the secret out of structured logs.
func (g *Gate) LogValue() slog.Value {
	return slog.StringValue(g.String())
}
