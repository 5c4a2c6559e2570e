package tools_test

import (
	"testing"

	"github.com/petasbytes/search-agent/tools"
)

func TestRegistry_ToolCount(t *testing.T) {
	defs := tools.Registry(tools.DefaultOptions())
	wantCount := 3 // search, arxiv, wikipedia
	if len(defs) != wantCount {
		t.Fatalf("unexpected number of tools: got %d want %d", len(defs), wantCount)
	}
}

func TestRegistry_ToolNames(t *testing.T) {
	defs := tools.Registry(tools.DefaultOptions())
	want := map[string]struct{}{
		"search":    {},
		"arxiv":     {},
		"wikipedia": {},
	}

	// Unexpected names detected
	for _, d := range defs {
		if _, ok := want[d.Name]; !ok {
			t.Fatalf("unexpected tool in registry: %q", d.Name)
		}
	}

	// Missing expected names
	got := map[string]struct{}{}
	for _, d := range defs {
		got[d.Name] = struct{}{}
	}
	for name := range want {
		if _, ok := got[name]; !ok {
			t.Errorf("missing expected tool: %q", name)
		}
	}
	if t.Failed() {
		t.FailNow()
	}
}

func TestRegistry_LimitsFromOptions(t *testing.T) {
	defs := tools.Registry(tools.DefaultOptions())
	for _, name := range []string{"arxiv", "wikipedia"} {
		d, ok := tools.Lookup(defs, name)
		if !ok {
			t.Fatalf("missing %s", name)
		}
		if d.Limits.MaxResults != 1 || d.Limits.MaxExcerptRunes != 200 {
			t.Errorf("%s limits: got %+v", name, d.Limits)
		}
	}
}

func TestLookup_ExactMatchOnly(t *testing.T) {
	defs := tools.Registry(tools.DefaultOptions())
	if _, ok := tools.Lookup(defs, "search"); !ok {
		t.Fatal("expected search to resolve")
	}
	for _, name := range []string{"Search", " search", "google", ""} {
		if _, ok := tools.Lookup(defs, name); ok {
			t.Errorf("Lookup(%q) should not resolve", name)
		}
	}
}

func TestSignature_FromSchema(t *testing.T) {
	defs := tools.Registry(tools.DefaultOptions())
	d, _ := tools.Lookup(defs, "wikipedia")
	if got, want := d.Signature(), "wikipedia(query: string)"; got != want {
		t.Fatalf("signature: got %q want %q", got, want)
	}
}
