// Package config defines the explicit configuration object constructed once
// at process start and handed into the model clients, tool gateway and graph.
// Core logic never reads the environment; everything it needs arrives here.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML accepts "30s" style strings.
type Duration time.Duration

// UnmarshalYAML parses either a duration string or a bare integer
// (interpreted as seconds).
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return fmt.Errorf("invalid duration node: %w", err)
	}
	if secs, err := strconv.ParseInt(raw, 10, 64); err == nil {
		*d = Duration(time.Duration(secs) * time.Second)
		return nil
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Known tool names a worker subset may reference.
var knownTools = map[string]bool{
	"get_stock_price":          true,
	"search_market_news":       true,
	"get_market_overview":      true,
	"get_technical_indicators": true,
}

// WorkerConfig customizes one worker.
type WorkerConfig struct {
	// Model overrides the top-level model for this worker.
	Model string `yaml:"model,omitempty"`
	// Tools names the worker's tool subset.
	Tools []string `yaml:"tools"`
}

// APIKeys hold provider credentials. Loaded from the config file or injected
// by the CLI from flags / environment.
type APIKeys struct {
	Groq      string `yaml:"groq,omitempty"`
	OpenAI    string `yaml:"openai,omitempty"`
	Anthropic string `yaml:"anthropic,omitempty"`
	Tavily    string `yaml:"tavily,omitempty"`
}

// Config is the full runtime configuration.
type Config struct {
	// Provider selects the model backend: groq, openai or anthropic.
	Provider string `yaml:"provider"`
	// Model is the default model identifier for supervisor and workers.
	Model string `yaml:"model"`
	// Temperature for model sampling.
	Temperature float64 `yaml:"temperature"`
	// GroqBaseURL overrides the OpenAI-compatible endpoint for groq.
	GroqBaseURL string `yaml:"groq_base_url,omitempty"`

	APIKeys APIKeys `yaml:"api_keys"`

	// Workers maps worker name to its configuration.
	Workers map[string]WorkerConfig `yaml:"workers"`

	// RiskTerms and Disclaimer configure the compliance guardrail. Empty
	// slices / strings fall back to the built-in defaults.
	RiskTerms  []string `yaml:"risk_terms,omitempty"`
	Disclaimer string   `yaml:"disclaimer,omitempty"`

	// MaxSteps bounds graph transitions per turn.
	MaxSteps int `yaml:"max_steps"`

	// ToolTimeout bounds a single tool call; TurnTimeout bounds a whole turn.
	ToolTimeout Duration `yaml:"tool_timeout"`
	TurnTimeout Duration `yaml:"turn_timeout"`

	// MockSeed seeds deterministic market data fallback; zero means
	// time-seeded mocks.
	MockSeed int64 `yaml:"mock_seed,omitempty"`

	// DedupeToolCalls answers repeated tool calls from history.
	DedupeToolCalls bool `yaml:"dedupe_tool_calls"`
}

// Default returns the configuration for a stock two-worker setup: a
// quantitative Analyst and a qualitative Researcher on Groq-hosted Llama.
func Default() Config {
	return Config{
		Provider:    "groq",
		Model:       "llama-3.3-70b-versatile",
		Temperature: 0,
		GroqBaseURL: "https://api.groq.com/openai/v1",
		Workers: map[string]WorkerConfig{
			"Analyst": {
				Tools: []string{"get_stock_price", "get_market_overview", "get_technical_indicators"},
			},
			"Researcher": {
				Tools: []string{"search_market_news"},
			},
		},
		MaxSteps:        50,
		ToolTimeout:     Duration(30 * time.Second),
		TurnTimeout:     Duration(5 * time.Minute),
		DedupeToolCalls: true,
	}
}

// Load reads a YAML config file on top of defaults. Unknown keys are
// rejected so a typo cannot silently fall back to a default.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects configurations the graph cannot run with.
func (c Config) Validate() error {
	switch c.Provider {
	case "groq", "openai", "anthropic":
	default:
		return fmt.Errorf("config: unknown provider %q", c.Provider)
	}
	if c.Model == "" {
		return fmt.Errorf("config: model is required")
	}
	if c.MaxSteps <= 0 {
		return fmt.Errorf("config: max_steps must be positive, got %d", c.MaxSteps)
	}
	if c.ToolTimeout <= 0 {
		return fmt.Errorf("config: tool_timeout must be positive")
	}
	if c.TurnTimeout <= 0 {
		return fmt.Errorf("config: turn_timeout must be positive")
	}
	if len(c.Workers) == 0 {
		return fmt.Errorf("config: at least one worker is required")
	}
	for name, wc := range c.Workers {
		for _, t := range wc.Tools {
			if !knownTools[t] {
				return fmt.Errorf("config: worker %q references unknown tool %q", name, t)
			}
		}
	}
	return nil
}
