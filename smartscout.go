// Package smartscout provides a high-level façade over the orchestration
// graph for Colombo Stock Exchange analysis: a routing supervisor, an Analyst
// worker for quantitative questions, a Researcher worker for news, a tool
// gateway for market data capabilities and a compliance guardrail. Most
// applications interact with this package by:
//  1. Building a config.Config (config.Default() works offline via mock data)
//  2. Creating an App via New() (optionally overriding stores and logger)
//  3. Feeding user turns through Run() and consuming the event stream
package smartscout

import (
	"context"
	"fmt"
	"sort"

	"github.com/senarath/smartscout/agent"
	"github.com/senarath/smartscout/config"
	"github.com/senarath/smartscout/core"
	"github.com/senarath/smartscout/gateway"
	"github.com/senarath/smartscout/graph"
	"github.com/senarath/smartscout/logging"
	"github.com/senarath/smartscout/market"
	"github.com/senarath/smartscout/model"
	"github.com/senarath/smartscout/model/anthropic"
	"github.com/senarath/smartscout/model/openai"
	"github.com/senarath/smartscout/runner"
	"github.com/senarath/smartscout/session"
	"github.com/senarath/smartscout/tool"
)

// Worker descriptions shown to the supervisor when routing.
var workerDescriptions = map[string]string{
	"Analyst":    "Quantitative analysis: stock prices, market overview, technical indicators (RSI, SMA).",
	"Researcher": "Qualitative research: recent news about listed companies and the market.",
}

// Worker personas.
var workerInstructions = map[string]string{
	"Analyst": `You are a Senior Financial Analyst for the Colombo Stock Exchange (CSE).

CORE RULES:
1. Context is King: only answer questions about Sri Lankan stocks.
2. Anti-Hallucination: base every number on tool results, never invent prices.
3. Formatting: always show prices clearly in LKR.
4. Never repeat a tool call whose answer is already in the conversation.`,
	"Researcher": `You are a Market Researcher covering the Colombo Stock Exchange (CSE).

CORE RULES:
1. Context is King: only report news relevant to Sri Lankan stocks.
2. Anti-Hallucination: if search returns unrelated items (sports, foreign
   companies), ignore them and say "No relevant financial news found."
3. Cite the headlines you relied on.
4. Never repeat a search whose results are already in the conversation.`,
}

// Options configure the App beyond what config.Config carries.
type Options struct {
	// SessionStore defaults to an in-memory implementation.
	SessionStore core.SessionStore
	// Logger defaults to NoOp.
	Logger logging.Logger
	// SupervisorModel and WorkerModels override the config-derived models,
	// mainly for tests.
	SupervisorModel model.Model
	WorkerModels    map[string]model.Model
}

// App aggregates the compiled graph and its runner.
type App struct {
	cfg    config.Config
	runner *runner.Runner
}

// New assembles the full orchestration stack from configuration.
func New(cfg config.Config, optFns ...func(o *Options)) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	opts := Options{
		SessionStore: session.NewInMemoryStore(),
		Logger:       logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	toolbox := buildToolbox(cfg)

	supervisorModel := opts.SupervisorModel
	if supervisorModel == nil {
		var err error
		supervisorModel, err = buildModel(cfg, "")
		if err != nil {
			return nil, err
		}
	}

	// Deterministic worker order keeps routing prompts stable across runs.
	names := make([]string, 0, len(cfg.Workers))
	for name := range cfg.Workers {
		names = append(names, name)
	}
	sort.Strings(names)

	workers := make([]*agent.Worker, 0, len(names))
	for _, name := range names {
		wc := cfg.Workers[name]

		m := opts.WorkerModels[name]
		if m == nil {
			var err error
			m, err = buildModel(cfg, wc.Model)
			if err != nil {
				return nil, err
			}
		}

		tools := make([]tool.Tool, 0, len(wc.Tools))
		for _, tn := range wc.Tools {
			t, ok := toolbox[tn]
			if !ok {
				return nil, fmt.Errorf("worker %q references unknown tool %q", name, tn)
			}
			tools = append(tools, t)
		}

		workers = append(workers, agent.NewWorker(
			name,
			workerDescriptions[name],
			workerInstructions[name],
			m,
			tools,
			func(o *agent.WorkerOptions) { o.DedupeToolCalls = cfg.DedupeToolCalls },
		))
	}

	supervisor := agent.NewSupervisor(supervisorModel, workers)

	guardrail := agent.NewGuardrail(func(o *agent.GuardrailOptions) {
		if len(cfg.RiskTerms) > 0 {
			o.RiskTerms = cfg.RiskTerms
		}
		if cfg.Disclaimer != "" {
			o.Disclaimer = cfg.Disclaimer
		}
	})

	gw := gateway.New(func(o *gateway.Options) { o.CallTimeout = cfg.ToolTimeout.Std() })

	g, err := graph.New(supervisor, workers, guardrail, gw, func(o *graph.Options) {
		o.MaxSteps = cfg.MaxSteps
	})
	if err != nil {
		return nil, err
	}

	r := runner.New(g, opts.SessionStore, func(o *runner.Options) {
		o.MaxSteps = cfg.MaxSteps
		o.TurnTimeout = cfg.TurnTimeout.Std()
		o.Logger = opts.Logger
	})

	return &App{cfg: cfg, runner: r}, nil
}

// Run starts one conversational turn and streams its events.
func (a *App) Run(ctx context.Context, sessionID, text string) (string, <-chan core.Event, <-chan error, error) {
	return a.runner.Run(ctx, sessionID, core.NewUserText(text))
}

// Cancel aborts an in-flight turn.
func (a *App) Cancel(turnID string) bool { return a.runner.Cancel(turnID) }

// buildToolbox wires the market data capabilities as callable tools.
func buildToolbox(cfg config.Config) map[string]tool.Tool {
	quotes := market.NewQuoteClient(func(o *market.QuoteClientOptions) {
		o.MockSeed = cfg.MockSeed
	})
	news := market.NewNewsClient(cfg.APIKeys.Tavily)

	tools := []tool.Tool{
		market.NewGetStockPriceTool(quotes),
		market.NewMarketOverviewTool(quotes),
		market.NewIndicatorsTool(quotes),
		market.NewSearchMarketNewsTool(news),
	}
	byName := make(map[string]tool.Tool, len(tools))
	for _, t := range tools {
		byName[t.Name()] = t
	}
	return byName
}

// buildModel constructs the provider-specific model client. The override
// replaces the config-level model identifier for one worker.
func buildModel(cfg config.Config, override string) (model.Model, error) {
	name := cfg.Model
	if override != "" {
		name = override
	}

	switch cfg.Provider {
	case "groq":
		return openai.NewModel(func(o *openai.Options) {
			o.Model = name
			o.Temperature = cfg.Temperature
			o.BaseURL = cfg.GroqBaseURL
			o.APIKey = cfg.APIKeys.Groq
		}), nil
	case "openai":
		return openai.NewModel(func(o *openai.Options) {
			o.Model = name
			o.Temperature = cfg.Temperature
			o.APIKey = cfg.APIKeys.OpenAI
		}), nil
	case "anthropic":
		return anthropic.NewModel(func(o *anthropic.Options) {
			o.Model = name
			o.Temperature = cfg.Temperature
			o.APIKey = cfg.APIKeys.Anthropic
		}), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}
