package windowing_test

import (
	"testing"

	"github.com/petasbytes/search-agent/internal/windowing"
)

func TestHeuristicCounter_OverheadGuard(t *testing.T) {
	// Guard: changing the per-entry overhead changes every budget decision.
	if got := (windowing.HeuristicCounter{}).Count("héllo"); got != 5+4 {
		t.Fatalf("unexpected count: %d", got)
	}
	if got := (windowing.HeuristicCounter{}).Count(""); got != 4 {
		t.Fatalf("unexpected empty count: %d", got)
	}
}

func TestPrepare_BudgetRespected_OrderPreserved(t *testing.T) {
	// Oldest -> newest; costs 10, 7, 8
	entries := []string{"oldest", "mid", "tail"}
	budget := 15

	window, stats := windowing.Prepare(entries, budget, windowing.HeuristicCounter{})

	if stats.Budget != budget || stats.Total != 15 || stats.IncludedEntries != 2 || stats.SkippedEntries != 1 || stats.OverBudgetNewest {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if len(window) != 2 || window[0] != "mid" || window[1] != "tail" {
		t.Fatalf("unexpected window: %q", window)
	}
}

func TestPrepare_AllFit(t *testing.T) {
	entries := []string{"oldest", "mid", "new"}
	window, stats := windowing.Prepare(entries, 24, windowing.HeuristicCounter{})
	if len(window) != 3 || stats.Total != 24 || stats.SkippedEntries != 0 {
		t.Fatalf("unexpected result: window=%q stats=%+v", window, stats)
	}
}

func TestPrepare_NewestOverBudget_KeptAlone(t *testing.T) {
	entries := []string{"a", "xxxxxxxxxxxx"} // newest costs 16
	window, stats := windowing.Prepare(entries, 10, windowing.HeuristicCounter{})
	if len(window) != 1 || window[0] != "xxxxxxxxxxxx" {
		t.Fatalf("expected only the newest entry, got %q", window)
	}
	if !stats.OverBudgetNewest || stats.IncludedEntries != 1 || stats.SkippedEntries != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestPrepare_StopsAtFirstMisfit(t *testing.T) {
	// Costs 5, 30, 5: the middle entry does not fit, so the oldest is skipped too.
	entries := []string{"a", "xxxxxxxxxxxxxxxxxxxxxxxxxx", "b"}
	window, stats := windowing.Prepare(entries, 12, windowing.HeuristicCounter{})
	if len(window) != 1 || window[0] != "b" || stats.SkippedEntries != 2 {
		t.Fatalf("unexpected result: window=%q stats=%+v", window, stats)
	}
}

func TestPrepare_UnlimitedBudget(t *testing.T) {
	entries := []string{"a", "b"}
	window, stats := windowing.Prepare(entries, 0, windowing.HeuristicCounter{})
	if len(window) != 2 || stats.Total != 10 || stats.IncludedEntries != 2 {
		t.Fatalf("unexpected result: window=%q stats=%+v", window, stats)
	}
}

func TestPrepare_Empty(t *testing.T) {
	window, stats := windowing.Prepare(nil, 123, windowing.HeuristicCounter{})
	if window != nil || stats.Budget != 123 || stats.Total != 0 || stats.OverBudgetNewest {
		t.Fatalf("unexpected result: window=%v stats=%+v", window, stats)
	}
}
