// Package config loads application settings from defaults, an optional TOML
// file and environment variables, in that order of precedence (lowest first).
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/petasbytes/search-agent/internal/provider"
	"github.com/petasbytes/search-agent/tools"
)

const MaxStepsLimit = 50

// Config holds all application configuration. API keys come from the
// environment only and are never read from or written to the config file.
type Config struct {
	Agent       AgentConfig `toml:"agent"`
	Tools       ToolsConfig `toml:"tools"`
	Log         LogConfig   `toml:"log"`
	HTTPTimeout Duration    `toml:"http_timeout"`

	GroqAPIKey      string `toml:"-"`
	AnthropicAPIKey string `toml:"-"`
}

type AgentConfig struct {
	Provider  string `toml:"provider"`
	Model     string `toml:"model"`
	MaxSteps  int    `toml:"max_steps"`
	MaxTokens int    `toml:"max_tokens"`
	Streaming bool   `toml:"streaming"`
	// ScratchpadBudget is in estimated runes; 0 disables the cap.
	ScratchpadBudget int `toml:"scratchpad_budget"`
}

// ToolLimits caps one lookup tool's output.
type ToolLimits struct {
	MaxResults int `toml:"max_results"`
	MaxExcerpt int `toml:"max_excerpt"`
}

type ToolsConfig struct {
	Search    ToolLimits `toml:"search"`
	Arxiv     ToolLimits `toml:"arxiv"`
	Wikipedia ToolLimits `toml:"wikipedia"`
}

type LogConfig struct {
	Path  string `toml:"path"`
	Level string `toml:"level"`
}

// Duration decodes TOML strings such as "30s".
type Duration struct{ time.Duration }

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in configuration.
func Default() *Config {
	defs := tools.DefaultOptions()
	return &Config{
		Agent: AgentConfig{
			Provider:         provider.ProviderGroq,
			MaxSteps:         6,
			MaxTokens:        1024,
			Streaming:        true,
			ScratchpadBudget: 16000,
		},
		Tools: ToolsConfig{
			Search:    ToolLimits{MaxResults: defs.Search.Limits.MaxResults, MaxExcerpt: defs.Search.Limits.MaxExcerptRunes},
			Arxiv:     ToolLimits{MaxResults: defs.Arxiv.Limits.MaxResults, MaxExcerpt: defs.Arxiv.Limits.MaxExcerptRunes},
			Wikipedia: ToolLimits{MaxResults: defs.Wikipedia.Limits.MaxResults, MaxExcerpt: defs.Wikipedia.Limits.MaxExcerptRunes},
		},
		Log: LogConfig{
			Path:  ".agent/searchagent.log",
			Level: "info",
		},
		HTTPTimeout: Duration{30 * time.Second},
	}
}

// Load builds the configuration: defaults, then the TOML file named by
// SEARCHAGENT_CONFIG (if set), then environment overrides, then validation.
func Load() (*Config, error) {
	cfg := Default()
	if path := os.Getenv("SEARCHAGENT_CONFIG"); path != "" {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnvOverrides(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// LoadTOML decodes path over cfg. Keys absent from the file keep their values.
func LoadTOML(cfg *Config, path string) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to decode TOML file %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return fmt.Errorf("unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}
	return nil
}

// ApplyEnvOverrides applies SEARCHAGENT_* variables and the provider API keys.
// A set but unparseable numeric value is an error rather than a silent default.
func (c *Config) ApplyEnvOverrides() error {
	var errs []error

	c.Agent.Provider = strings.ToLower(getEnv("SEARCHAGENT_PROVIDER", c.Agent.Provider))
	c.Agent.Model = getEnv("SEARCHAGENT_MODEL", c.Agent.Model)
	c.Agent.Streaming = getEnvBool("SEARCHAGENT_STREAMING", c.Agent.Streaming)

	var err error
	if c.Agent.MaxSteps, err = getEnvInt("SEARCHAGENT_MAX_STEPS", c.Agent.MaxSteps); err != nil {
		errs = append(errs, err)
	}
	if c.Agent.MaxTokens, err = getEnvInt("SEARCHAGENT_MAX_TOKENS", c.Agent.MaxTokens); err != nil {
		errs = append(errs, err)
	}
	if c.Agent.ScratchpadBudget, err = getEnvInt("SEARCHAGENT_SCRATCHPAD_BUDGET", c.Agent.ScratchpadBudget); err != nil {
		errs = append(errs, err)
	}
	if v, ok := os.LookupEnv("SEARCHAGENT_HTTP_TIMEOUT"); ok {
		d, perr := time.ParseDuration(strings.TrimSpace(v))
		if perr != nil {
			errs = append(errs, fmt.Errorf("SEARCHAGENT_HTTP_TIMEOUT: %w", perr))
		} else {
			c.HTTPTimeout.Duration = d
		}
	}

	c.Log.Path = getEnv("SEARCHAGENT_LOG_PATH", c.Log.Path)
	c.Log.Level = getEnv("SEARCHAGENT_LOG_LEVEL", c.Log.Level)

	c.GroqAPIKey = strings.TrimSpace(getEnv("GROQ_API_KEY", c.GroqAPIKey))
	c.AnthropicAPIKey = strings.TrimSpace(getEnv("ANTHROPIC_API_KEY", c.AnthropicAPIKey))

	return errors.Join(errs...)
}

// Validate checks ranges and enumerations.
func (c *Config) Validate() error {
	switch c.Agent.Provider {
	case provider.ProviderGroq, provider.ProviderAnthropic:
	default:
		return fmt.Errorf("agent.provider %q must be one of: groq, anthropic", c.Agent.Provider)
	}
	if c.Agent.MaxSteps < 1 || c.Agent.MaxSteps > MaxStepsLimit {
		return fmt.Errorf("agent.max_steps must be between 1 and %d, got %d", MaxStepsLimit, c.Agent.MaxSteps)
	}
	if c.Agent.MaxTokens <= 0 {
		return fmt.Errorf("agent.max_tokens must be > 0")
	}
	if c.Agent.ScratchpadBudget < 0 {
		return fmt.Errorf("agent.scratchpad_budget must be >= 0")
	}
	for name, l := range map[string]ToolLimits{
		"search":    c.Tools.Search,
		"arxiv":     c.Tools.Arxiv,
		"wikipedia": c.Tools.Wikipedia,
	} {
		if l.MaxResults <= 0 || l.MaxExcerpt <= 0 {
			return fmt.Errorf("tools.%s limits must be > 0", name)
		}
	}
	if c.HTTPTimeout.Duration <= 0 {
		return fmt.Errorf("http_timeout must be > 0")
	}
	if c.Log.Path == "" {
		return fmt.Errorf("log.path cannot be empty")
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	return nil
}

// LogLevel parses Log.Level.
func (c *Config) LogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log.level %q: %w", c.Log.Level, err)
	}
	return lvl, nil
}

// DefaultCredential is the environment-supplied key for the selected provider.
func (c *Config) DefaultCredential() string {
	if c.Agent.Provider == provider.ProviderAnthropic {
		return c.AnthropicAPIKey
	}
	return c.GroqAPIKey
}

// ToolOptions maps tool limits onto the tool registry's options.
func (c *Config) ToolOptions() tools.Options {
	opts := tools.DefaultOptions()
	opts.Search.Limits = tools.Limits{MaxResults: c.Tools.Search.MaxResults, MaxExcerptRunes: c.Tools.Search.MaxExcerpt}
	opts.Arxiv.Limits = tools.Limits{MaxResults: c.Tools.Arxiv.MaxResults, MaxExcerptRunes: c.Tools.Arxiv.MaxExcerpt}
	opts.Wikipedia.Limits = tools.Limits{MaxResults: c.Tools.Wikipedia.MaxResults, MaxExcerptRunes: c.Tools.Wikipedia.MaxExcerpt}
	return opts
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvInt(key string, fallback int) (int, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback, fmt.Errorf("%s: %q is not an integer", key, value)
	}
	return n, nil
}
