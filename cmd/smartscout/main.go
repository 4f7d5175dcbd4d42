// Command smartscout is an interactive terminal chat with the CSE analysis
// agents. It wires configuration from flags, environment and an optional
// YAML file into the orchestration stack, then feeds user turns through the
// runner and renders the streamed events.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/urfave/cli/v3"

	"github.com/senarath/smartscout"
	"github.com/senarath/smartscout/config"
	"github.com/senarath/smartscout/core"
	"github.com/senarath/smartscout/graph"
	"github.com/senarath/smartscout/logging"
)

const version = "0.3"

func main() {
	cmd := &cli.Command{
		Name:    "smartscout",
		Usage:   "agentic financial analyst for the Colombo Stock Exchange",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "path to a YAML configuration file", Sources: cli.EnvVars("SMARTSCOUT_CONFIG")},
			&cli.StringFlag{Name: "provider", Usage: "model provider: groq, openai or anthropic", Sources: cli.EnvVars("SMARTSCOUT_PROVIDER")},
			&cli.StringFlag{Name: "model", Aliases: []string{"m"}, Usage: "model identifier for supervisor and workers", Sources: cli.EnvVars("SMARTSCOUT_MODEL")},
			&cli.StringFlag{Name: "groq-key", Usage: "Groq API key", Sources: cli.EnvVars("GROQ_API_KEY")},
			&cli.StringFlag{Name: "openai-key", Usage: "OpenAI API key", Sources: cli.EnvVars("OPENAI_API_KEY")},
			&cli.StringFlag{Name: "anthropic-key", Usage: "Anthropic API key", Sources: cli.EnvVars("ANTHROPIC_API_KEY")},
			&cli.StringFlag{Name: "tavily-key", Usage: "Tavily API key for news search", Sources: cli.EnvVars("TAVILY_API_KEY")},
			&cli.IntFlag{Name: "max-steps", Usage: "graph transition ceiling per turn", Sources: cli.EnvVars("SMARTSCOUT_MAX_STEPS")},
			&cli.StringFlag{Name: "log-level", Value: "warn", Usage: "log level: debug, info, warn or error", Sources: cli.EnvVars("SMARTSCOUT_LOG_LEVEL")},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	logger := buildLogger(cmd.String("log-level"))

	app, err := smartscout.New(cfg, func(o *smartscout.Options) {
		o.Logger = logger
	})
	if err != nil {
		return err
	}

	fmt.Println("CSE Smart Scout: ask about JKH, Dialog, or current market trends.")
	fmt.Println("Type 'quit' to exit.")

	sessionID := core.NewID()
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("\nYou: ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "quit" || input == "exit" {
			return nil
		}

		if err := runTurn(ctx, app, sessionID, input); err != nil {
			return err
		}
	}
}

// runTurn feeds one user message through the graph and renders its events.
func runTurn(ctx context.Context, app *smartscout.App, sessionID, input string) error {
	_, events, errs, err := app.Run(ctx, sessionID, input)
	if err != nil {
		return err
	}

	var finalText string
	for ev := range events {
		renderEvent(ev, &finalText)
	}

	if err := <-errs; err != nil {
		var budgetErr *graph.BudgetExceededError
		if errors.As(err, &budgetErr) {
			fmt.Println("\nThe request was too broad to finish within the step budget. Try a narrower question.")
			return nil
		}
		var workerErr *graph.WorkerError
		if errors.As(err, &workerErr) {
			fmt.Printf("\nThe %s worker failed: %v\n", workerErr.Worker, workerErr.Err)
			return nil
		}
		return err
	}

	if finalText != "" {
		fmt.Printf("\nScout: %s\n", finalText)
	}
	return nil
}

// renderEvent prints live progress for one orchestration event and tracks
// the latest complete assistant text as the candidate final answer.
func renderEvent(ev core.Event, finalText *string) {
	if ev.IsPartial() {
		return
	}
	if route, ok := ev.Metadata["route"]; ok {
		fmt.Printf("  [route] %s\n", route)
		return
	}
	if ev.Content == nil {
		return
	}

	if calls := ev.GetFunctionCalls(); len(calls) > 0 {
		for _, c := range calls {
			fmt.Printf("  [%s] calling %s(%s)\n", ev.Author, c.Name, c.Arguments)
		}
		return
	}
	if responses := ev.GetFunctionResponses(); len(responses) > 0 {
		for _, r := range responses {
			fmt.Printf("  [tool] %s answered\n", r.Name)
		}
		return
	}
	if text := ev.Text(); text != "" {
		*finalText = text
	}
}

// buildConfig layers flag / environment overrides over the config file (or
// the defaults when no file is given).
func buildConfig(cmd *cli.Command) (config.Config, error) {
	cfg := config.Default()
	if path := cmd.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	if v := cmd.String("provider"); v != "" {
		cfg.Provider = v
	}
	if v := cmd.String("model"); v != "" {
		cfg.Model = v
	}
	if v := cmd.String("groq-key"); v != "" {
		cfg.APIKeys.Groq = v
	}
	if v := cmd.String("openai-key"); v != "" {
		cfg.APIKeys.OpenAI = v
	}
	if v := cmd.String("anthropic-key"); v != "" {
		cfg.APIKeys.Anthropic = v
	}
	if v := cmd.String("tavily-key"); v != "" {
		cfg.APIKeys.Tavily = v
	}
	if v := cmd.Int("max-steps"); v > 0 {
		cfg.MaxSteps = v
	}

	return cfg, cfg.Validate()
}

func buildLogger(level string) logging.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelWarn
	}

	handler := tint.NewHandler(os.Stderr, &tint.Options{
		Level:      lvl,
		TimeFormat: time.Kitchen,
	})
	return logging.NewSlogAdapter(slog.New(handler))
}
