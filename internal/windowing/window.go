// Package windowing keeps the agent scratchpad within an input budget.
//
// The scratchpad is a list of entries, one per completed step (model output plus
// its observation). Entries are never split: the window is always a suffix of
// whole entries, scanned newest to oldest.
package windowing

import (
	"fmt"
	"os"
	"unicode/utf8"
)

// Counter estimates the input cost of one entry.
type Counter interface {
	Count(entry string) int
}

// HeuristicCounter counts runes plus a fixed per-entry overhead.
type HeuristicCounter struct{}

// Fixed per-entry overhead for deterministic counts; changing this requires updating the guard test.
const entryOverhead = 4

func (HeuristicCounter) Count(entry string) int {
	return utf8.RuneCountInString(entry) + entryOverhead
}

// Stats summarizes the result of window preparation.
//
// Fields:
// - Total: estimated cost of included entries only.
// - Budget: the budget used; <= 0 means unlimited.
// - IncludedEntries: number of entries in the window.
// - SkippedEntries: older entries left out.
// - OverBudgetNewest: true when the newest entry alone exceeds Budget.
type Stats struct {
	Total            int
	Budget           int
	IncludedEntries  int
	SkippedEntries   int
	OverBudgetNewest bool
}

// Prepare returns the newest suffix of entries that fits within budget.
//
// Rules:
//   - budget <= 0 disables windowing and returns all entries.
//   - The newest entry is always included, even when it alone exceeds budget;
//     OverBudgetNewest reports that case.
//   - Older entries are added while the running total stays within budget.
func Prepare(entries []string, budget int, c Counter) ([]string, Stats) {
	if len(entries) == 0 {
		return nil, Stats{Budget: budget}
	}

	if budget <= 0 {
		total := 0
		for _, e := range entries {
			total += c.Count(e)
		}
		return entries, Stats{Total: total, Budget: budget, IncludedEntries: len(entries)}
	}

	newest := len(entries) - 1
	total := c.Count(entries[newest])
	start := newest
	over := total > budget
	if over {
		vlogf("reason=over_budget_newest_entry budget=%d cost=%d", budget, total)
	} else {
		for i := newest - 1; i >= 0; i-- {
			cost := c.Count(entries[i])
			if total+cost > budget {
				break
			}
			total += cost
			start = i
		}
	}

	return entries[start:], Stats{
		Total:            total,
		Budget:           budget,
		IncludedEntries:  len(entries) - start,
		SkippedEntries:   start,
		OverBudgetNewest: over,
	}
}

var verbose = os.Getenv("SEARCHAGENT_VERBOSE_WINDOW_LOGS") == "1"

func vlogf(format string, args ...any) {
	if verbose {
		fmt.Fprintf(os.Stderr, "[windowing] "+format+"\n", args...)
	}
}
