package runner

// EventKind labels an Event.
type EventKind string

const (
	EventStepStart   EventKind = "step_start"
	EventToken       EventKind = "token"
	EventAction      EventKind = "action"
	EventObservation EventKind = "observation"
	EventParseError  EventKind = "parse_error"
	EventFinalAnswer EventKind = "final_answer"
	EventStopped     EventKind = "stopped"
)

// Event is one observable moment of a run. Text holds the token, observation,
// parse error or answer depending on Kind.
type Event struct {
	Kind  EventKind
	Step  int
	Text  string
	Tool  string
	Input string
}

// EventSink receives events in the order they happen. OnEvent is called from the
// goroutine executing Run.
type EventSink interface {
	OnEvent(Event)
}

// SinkFunc adapts a function to EventSink.
type SinkFunc func(Event)

func (f SinkFunc) OnEvent(e Event) { f(e) }

// Discard drops every event.
var Discard EventSink = SinkFunc(func(Event) {})
