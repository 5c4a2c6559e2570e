package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/petasbytes/search-agent/internal/runner"
	"github.com/petasbytes/search-agent/internal/session"
)

// agentEventMsg carries one runner event for submission run.
type agentEventMsg struct {
	run   int
	event runner.Event
}

// eventsClosedMsg signals that run's event channel is drained.
type eventsClosedMsg struct{ run int }

// submitDoneMsg is returned when Submit finishes.
type submitDoneMsg struct {
	run   int
	reply session.Reply
	err   error
}

// submitCmd runs one submission off the UI goroutine, forwarding events into
// events and closing it when the run is over.
func submitCmd(ctx context.Context, h Submitter, s *session.Session, prompt string, run int, events chan<- runner.Event) tea.Cmd {
	return func() tea.Msg {
		defer close(events)
		sink := runner.SinkFunc(func(e runner.Event) { events <- e })
		_, reply, err := h.Submit(ctx, s, prompt, sink)
		return submitDoneMsg{run: run, reply: reply, err: err}
	}
}

// waitForEvent blocks until the next event of run arrives.
func waitForEvent(run int, events <-chan runner.Event) tea.Cmd {
	return func() tea.Msg {
		e, ok := <-events
		if !ok {
			return eventsClosedMsg{run: run}
		}
		return agentEventMsg{run: run, event: e}
	}
}
