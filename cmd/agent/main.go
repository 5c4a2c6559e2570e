package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/petasbytes/search-agent/internal/config"
	"github.com/petasbytes/search-agent/internal/provider"
	"github.com/petasbytes/search-agent/internal/session"
	"github.com/petasbytes/search-agent/internal/ui"
	"github.com/petasbytes/search-agent/memory"
	"github.com/petasbytes/search-agent/tools"
)

func main() {
	// A missing .env is normal outside local development.
	dotenvErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	logger, closeLog := newLogger(cfg)
	defer closeLog()
	slog.SetDefault(logger)
	if dotenvErr != nil {
		slog.Info("no .env file found, using environment variables")
	}
	slog.Info("starting",
		"provider", cfg.Agent.Provider,
		"model", cfg.Agent.Model,
		"max_steps", cfg.Agent.MaxSteps,
		"streaming", cfg.Agent.Streaming,
		"default_key_set", cfg.DefaultCredential() != "",
	)

	toolOpts := cfg.ToolOptions()
	toolOpts.HTTPClient = &http.Client{Timeout: cfg.HTTPTimeout.Duration}

	handler := &session.Handler{
		Provider:  cfg.Agent.Provider,
		ModelID:   cfg.Agent.Model,
		Streaming: cfg.Agent.Streaming,
		MaxSteps:  cfg.Agent.MaxSteps,
		MaxTokens: cfg.Agent.MaxTokens,
		Tools:     tools.Registry(toolOpts),
		Logger:    logger,

		ScratchpadBudget: cfg.Agent.ScratchpadBudget,
	}
	sess := session.New(cfg.DefaultCredential(), memory.DefaultGreeting)

	// Graceful shutdown on SIGTERM; ctrl+c is handled by the TUI itself.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	label := "Groq"
	if cfg.Agent.Provider == provider.ProviderAnthropic {
		label = "Anthropic"
	}
	model := ui.New(ctx, sess, handler, ui.Options{ProviderLabel: label})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		slog.Error("ui exited", "error", err)
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	slog.Info("exiting", "turns", sess.Conversation.Len())
}

// newLogger writes JSON logs to the configured file so they never interleave
// with the terminal UI.
func newLogger(cfg *config.Config) (*slog.Logger, func()) {
	level, _ := cfg.LogLevel()
	opts := &slog.HandlerOptions{Level: level}

	var w io.Writer = io.Discard
	closeFn := func() {}
	if err := os.MkdirAll(filepath.Dir(cfg.Log.Path), 0o755); err == nil {
		f, err := os.OpenFile(cfg.Log.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err == nil {
			w = f
			closeFn = func() { _ = f.Close() }
		} else {
			fmt.Fprintf(os.Stderr, "warning: cannot open log file %s: %v\n", cfg.Log.Path, err)
		}
	}
	return slog.New(slog.NewJSONHandler(w, opts)), closeFn
}
