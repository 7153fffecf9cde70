package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/abdul-hamid-achik/ask/internal/config"
	"github.com/abdul-hamid-achik/ask/internal/history"
	"github.com/abdul-hamid-achik/ask/internal/llm"
	"github.com/abdul-hamid-achik/ask/internal/logger"
	"github.com/abdul-hamid-achik/ask/internal/session"
	"github.com/abdul-hamid-achik/ask/internal/shell"
	"github.com/abdul-hamid-achik/ask/internal/ui"
)

var Version = "dev"

func main() {
	defer logger.CloseLogFile()

	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	os.Exit(code)
}

func run() (int, error) {
	args := os.Args[1:]

	if len(args) > 0 && (args[0] == "--version" || args[0] == "-v") {
		fmt.Printf("ask version %s\n", Version)
		return 0, nil
	}
	if len(args) > 0 && (args[0] == "--help" || args[0] == "-h") {
		printHelp()
		return 0, nil
	}

	var modelFlag, themeFlag string
	var promptParts []string

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--model":
			if i+1 >= len(args) {
				return 1, fmt.Errorf("--model requires a value")
			}
			i++
			modelFlag = args[i]
		case "--theme":
			if i+1 >= len(args) {
				return 1, fmt.Errorf("--theme requires a value")
			}
			i++
			themeFlag = args[i]
		case "--":
			promptParts = append(promptParts, args[i+1:]...)
			i = len(args)
		default:
			promptParts = append(promptParts, args[i])
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return 1, err
	}

	if themeFlag != "" {
		theme, err := config.ParseTheme(themeFlag)
		if err != nil {
			return 1, err
		}
		cfg.Theme = theme
		if err := cfg.Save(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not save theme preference: %v\n", err)
		}
	}

	logger.Debug("ask started, args=%v", args)

	output := ui.NewOutputHandler(cfg.Theme)
	input := ui.NewInputHandler()

	baseClient := llm.NewClient(cfg)
	baseClient.SetModel(cfg.ResolveModel(modelFlag))

	var generator llm.Generator = baseClient
	if cfg.RateLimit.EnableRateLimiting {
		generator = llm.NewRateLimitedClient(baseClient, &cfg.RateLimit)
	}

	wd, err := shell.NewWorkdir()
	if err != nil {
		return 1, fmt.Errorf("failed to determine working directory: %w", err)
	}

	store, err := session.NewStore()
	if err != nil {
		// Persistence is optional; run without it
		fmt.Fprintf(os.Stderr, "Warning: transcripts disabled: %v\n", err)
		store = nil
	}

	loop := session.New(session.Options{
		Config:    cfg,
		Generator: generator,
		Executor:  shell.NewExecutor(wd),
		History:   history.NewManager(cfg.Context),
		Input:     input,
		Output:    output,
		Store:     store,
	})

	ctx := context.Background()

	// A prompt argument selects single-shot mode; its absence starts
	// the interactive session.
	if len(promptParts) > 0 {
		rejected, err := loop.RunOnce(ctx, strings.Join(promptParts, " "))
		if err != nil {
			return 1, err
		}
		if rejected {
			return 1, nil
		}
		return 0, nil
	}

	if err := loop.RunInteractive(ctx); err != nil {
		return 1, err
	}
	return 0, nil
}

func printHelp() {
	fmt.Print(`ask - natural-language shell assistant

Usage:
  ask [--model MODEL] [--theme light|dark] <prompt>   Single prompt mode
  ask [--model MODEL] [--theme light|dark]            Interactive mode

Options:
  --model MODEL     Model ID or tier (fast|smart|genius)
  --theme MODE      Color theme (light or dark); saved as the default
  -v, --version     Show version
  -h, --help        Show this help message

Environment:
  ANTHROPIC_API_KEY must be set. A .env file in the working directory
  is also honored.

The tool sends your prompt to the model, previews the generated
commands, and asks for confirmation before executing each one in your
shell.

Command confirmation options:
  Y/yes (or Enter)  Execute the command
  n/no              Cancel this turn's remaining commands
  s/skip            Skip this command and continue to the next
  i/instruct        Execute a custom command first, then return

Interactive mode commands:
  exit / quit / q   Exit interactive mode
  clear             Clear screen and reset conversation context
  finder            Open the file browser at the current directory
  .                 Run pwd
  ..                Change to the parent directory
`)
}
