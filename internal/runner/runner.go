package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/petasbytes/search-agent/internal/provider"
	"github.com/petasbytes/search-agent/internal/telemetry"
	"github.com/petasbytes/search-agent/internal/windowing"
	"github.com/petasbytes/search-agent/tools"
)

// DefaultMaxSteps bounds a run when no budget is configured.
const DefaultMaxSteps = 6

// StoppedMessage is the answer reported when the step budget runs out.
const StoppedMessage = "Agent stopped due to iteration limit or time limit."

// ErrInvalidStepBudget is returned by Run when MaxSteps < 1.
var ErrInvalidStepBudget = errors.New("runner: step budget must be at least 1")

// Status says how a run ended.
type Status string

const (
	StatusAnswered Status = "answered"
	StatusStopped  Status = "stopped"
)

// Result is the outcome of a run. Steps counts model calls made.
type Result struct {
	Answer string
	Status Status
	Steps  int
}

type Runner struct {
	Model     provider.Model
	Tools     []tools.ToolDefinition
	MaxSteps  int
	MaxTokens int
	// ScratchpadBudget caps the estimated size of the step history sent to the
	// model; older steps are dropped whole. <= 0 means unlimited.
	ScratchpadBudget int
	Sink             EventSink
	Logger           *slog.Logger
}

func New(model provider.Model, toolDefs []tools.ToolDefinition) *Runner {
	return &Runner{
		Model:    model,
		Tools:    toolDefs,
		MaxSteps: DefaultMaxSteps,
		Sink:     Discard,
		Logger:   slog.Default(),
	}
}

func (r *Runner) emit(e Event) {
	if r.Sink != nil {
		r.Sink.OnEvent(e)
	}
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}

// Run answers question within the step budget.
func (r *Runner) Run(ctx context.Context, question string) (Result, error) {
	if r.MaxSteps < 1 {
		return Result{}, ErrInvalidStepBudget
	}
	ctx, turnID := telemetry.EnsureTurnID(ctx)
	log := r.logger().With("turn_id", turnID)
	telemetry.EmitPromptFeatures(ctx, question)

	system := systemPrompt(r.Tools)
	var entries []string

	for step := 1; step <= r.MaxSteps; step++ {
		if err := ctx.Err(); err != nil {
			return Result{Steps: step - 1}, err
		}
		r.emit(Event{Kind: EventStepStart, Step: step})

		start := time.Now()
		out, err := r.Model.Generate(ctx, provider.Request{
			System:    system,
			Prompt:    userPrompt(question, r.scratchpad(turnID, step, entries)),
			Stop:      stopSequences,
			MaxTokens: r.MaxTokens,
		}, func(tok string) {
			r.emit(Event{Kind: EventToken, Step: step, Text: tok})
		})
		if err != nil {
			r.emitStep(turnID, step, "error", time.Since(start), len(out))
			log.Error("model call failed", "step", step, "err", err)
			return Result{Steps: step}, fmt.Errorf("runner: step %d: %w", step, err)
		}

		dec, err := ParseOutput(out)
		var pe *ParseError
		switch {
		case errors.As(err, &pe):
			obs := parseErrorObservation(pe)
			log.Warn("unparseable model output", "step", step, "reason", pe.Reason)
			r.emit(Event{Kind: EventParseError, Step: step, Text: obs})
			entries = append(entries, scratchEntry(out, obs))
			r.emitStep(turnID, step, "parse_error", time.Since(start), len(out))

		case dec.Final:
			r.emit(Event{Kind: EventFinalAnswer, Step: step, Text: dec.Answer})
			r.emitStep(turnID, step, "final_answer", time.Since(start), len(out))
			log.Info("run answered", "steps", step)
			return Result{Answer: dec.Answer, Status: StatusAnswered, Steps: step}, nil

		default:
			r.emit(Event{Kind: EventAction, Step: step, Tool: dec.Tool, Input: dec.Input})
			obs := r.execTool(ctx, dec.Tool, dec.Input)
			r.emit(Event{Kind: EventObservation, Step: step, Tool: dec.Tool, Text: obs})
			entries = append(entries, scratchEntry(dec.Log, obs))
			r.emitStep(turnID, step, "action", time.Since(start), len(out))
		}
	}

	log.Info("run stopped", "max_steps", r.MaxSteps)
	r.emit(Event{Kind: EventStopped, Step: r.MaxSteps, Text: StoppedMessage})
	return Result{Answer: StoppedMessage, Status: StatusStopped, Steps: r.MaxSteps}, nil
}

// scratchpad renders the windowed step history for the next model call.
func (r *Runner) scratchpad(turnID string, step int, entries []string) string {
	if len(entries) == 0 {
		return ""
	}
	window, stats := windowing.Prepare(entries, r.ScratchpadBudget, windowing.HeuristicCounter{})
	if r.ScratchpadBudget > 0 {
		telemetry.Emit("window_prepared", map[string]any{
			"turn_id":            turnID,
			"step":               step,
			"budget":             stats.Budget,
			"total_estimated":    stats.Total,
			"included_entries":   stats.IncludedEntries,
			"skipped_entries":    stats.SkippedEntries,
			"over_budget_newest": stats.OverBudgetNewest,
		})
	}
	if stats.OverBudgetNewest {
		r.logger().Warn("newest step exceeds scratchpad budget", "turn_id", turnID, "budget", stats.Budget, "cost", stats.Total)
	}
	out := strings.Join(window, "")
	if stats.SkippedEntries > 0 {
		out = omittedNote(stats.SkippedEntries) + out
	}
	return out
}

func (r *Runner) emitStep(turnID string, step int, outcome string, d time.Duration, outputSize int) {
	telemetry.Emit("agent_step", map[string]any{
		"turn_id":     turnID,
		"step":        step,
		"max_steps":   r.MaxSteps,
		"outcome":     outcome,
		"duration_ms": d.Milliseconds(),
		"output_size": outputSize,
	})
}

// execTool runs one action and returns the observation text. Failures are
// reported to the model rather than to the caller.
func (r *Runner) execTool(ctx context.Context, name, input string) string {
	turnID, _ := telemetry.TurnIDFromContext(ctx)

	emit := func(durationMs int64, inputSize int, outputSize int, errStr string) {
		fields := map[string]any{
			"tool_name":   name,
			"duration_ms": durationMs,
			"input_size":  inputSize,
			"output_size": outputSize,
			"turn_id":     turnID,
		}
		if errStr != "" {
			fields["error"] = errStr
		} else {
			fields["error"] = nil
		}
		telemetry.Emit("tool_exec", fields)
	}

	start := time.Now()
	inSize := len(input)

	def, ok := tools.Lookup(r.Tools, name)
	if !ok {
		emit(time.Since(start).Milliseconds(), inSize, 0, "tool not found")
		return unknownToolObservation(name, r.Tools)
	}

	query, err := tools.DecodeQuery(input)
	if err != nil {
		emit(time.Since(start).Milliseconds(), inSize, 0, "bad input")
		return err.Error()
	}

	resp, err := def.Function(ctx, query)
	if err != nil {
		// Keep raw payloads out of telemetry; the model still sees the detail.
		emit(time.Since(start).Milliseconds(), inSize, 0, "tool error")
		r.logger().Warn("tool failed", "turn_id", turnID, "tool", name, "err", err)
		return err.Error()
	}
	emit(time.Since(start).Milliseconds(), inSize, len(resp), "")
	return resp
}
