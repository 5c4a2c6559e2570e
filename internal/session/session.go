// Package session owns the per-user chat state and the handler that turns one
// prompt submission into exactly one user turn and one assistant turn.
//
// The presentation layer only holds a *Session between interactions; all
// mutation goes through Handler.Submit.
package session

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/petasbytes/search-agent/internal/credential"
	"github.com/petasbytes/search-agent/internal/provider"
	"github.com/petasbytes/search-agent/internal/runner"
	"github.com/petasbytes/search-agent/memory"
	"github.com/petasbytes/search-agent/tools"
)

var (
	ErrLocked      = errors.New("session: no API key set")
	ErrEmptyPrompt = errors.New("session: empty prompt")
)

// Session is the explicit state of one chat.
type Session struct {
	Credential   *credential.Gate
	Conversation *memory.Conversation
}

// New returns a session seeded with defaultKey (may be empty) and greeting.
func New(defaultKey, greeting string) *Session {
	return &Session{
		Credential:   credential.NewGate(defaultKey),
		Conversation: memory.NewConversation(greeting),
	}
}

// ModelFactory builds the model for one submission.
type ModelFactory func(cfg provider.AgentConfig) (provider.Model, error)

// Handler runs submissions against a fixed tool set and model settings.
type Handler struct {
	Provider  string
	ModelID   string
	Streaming bool
	MaxSteps  int
	MaxTokens int
	// ScratchpadBudget bounds the step history resent to the model each step.
	ScratchpadBudget int
	Tools            []tools.ToolDefinition
	NewModel         ModelFactory
	Logger           *slog.Logger
}

// Reply describes the assistant turn appended by Submit.
type Reply struct {
	Text   string
	Status runner.Status
	Steps  int
	Failed bool
}

// AgentConfig builds the per-submission config for credential.
func (h *Handler) AgentConfig(cred string) provider.AgentConfig {
	maxSteps := h.MaxSteps
	if maxSteps == 0 {
		maxSteps = runner.DefaultMaxSteps
	}
	return provider.AgentConfig{
		Provider:   h.Provider,
		ModelID:    h.ModelID,
		Credential: cred,
		Streaming:  h.Streaming,
		MaxSteps:   maxSteps,
	}
}

func (h *Handler) logger() *slog.Logger {
	if h.Logger == nil {
		return slog.Default()
	}
	return h.Logger
}

// Submit handles one prompt. ErrLocked and ErrEmptyPrompt leave the
// conversation untouched. Otherwise the user turn is appended before the agent
// runs and exactly one assistant turn after it; agent and provider failures are
// rendered into that turn rather than returned.
func (h *Handler) Submit(ctx context.Context, s *Session, prompt string, sink runner.EventSink) (*Session, Reply, error) {
	if s == nil || !s.Credential.Open() {
		return s, Reply{}, ErrLocked
	}
	if strings.TrimSpace(prompt) == "" {
		return s, Reply{}, ErrEmptyPrompt
	}
	if err := s.Conversation.Append(memory.UserTurn(prompt)); err != nil {
		return s, Reply{}, err
	}

	reply := h.run(ctx, s.Credential.Value(), prompt, sink)
	if err := s.Conversation.Append(memory.AssistantTurn(reply.Text)); err != nil {
		return s, reply, err
	}
	return s, reply, nil
}

func (h *Handler) run(ctx context.Context, cred, prompt string, sink runner.EventSink) Reply {
	cfg := h.AgentConfig(cred)
	log := h.logger()

	newModel := h.NewModel
	if newModel == nil {
		newModel = func(c provider.AgentConfig) (provider.Model, error) { return provider.New(c) }
	}
	model, err := newModel(cfg)
	if err != nil {
		log.Error("build model", "agent", cfg, "err", err)
		return Reply{Text: provider.Describe(err), Failed: true}
	}

	r := runner.New(model, h.Tools)
	r.MaxSteps = cfg.MaxSteps
	r.MaxTokens = h.MaxTokens
	r.ScratchpadBudget = h.ScratchpadBudget
	r.Logger = log
	if sink != nil {
		r.Sink = sink
	}

	res, err := r.Run(ctx, prompt)
	if err != nil {
		log.Error("agent run failed", "agent", cfg, "steps", res.Steps, "err", err)
		return Reply{Text: provider.Describe(err), Steps: res.Steps, Failed: true}
	}
	text := res.Answer
	if strings.TrimSpace(text) == "" {
		text = "I could not find an answer to that."
	}
	return Reply{Text: text, Status: res.Status, Steps: res.Steps}
}
