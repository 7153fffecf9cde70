// Package session orchestrates the interactive loop: classify each
// input line, run shortcuts and direct commands, route everything else
// through the model and the confirmation machine, and keep the
// conversational context current.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/abdul-hamid-achik/ask/internal/classify"
	"github.com/abdul-hamid-achik/ask/internal/config"
	"github.com/abdul-hamid-achik/ask/internal/confirm"
	askerrors "github.com/abdul-hamid-achik/ask/internal/errors"
	"github.com/abdul-hamid-achik/ask/internal/history"
	"github.com/abdul-hamid-achik/ask/internal/llm"
	"github.com/abdul-hamid-achik/ask/internal/logger"
	"github.com/abdul-hamid-achik/ask/internal/shell"
)

// InputHandler reads operator input
type InputHandler interface {
	ReadLine(prompt string) (string, error)
	Clear()
}

// OutputHandler displays session output
type OutputHandler interface {
	PromptText(text string) string
	CommandText(text string) string
	Helper(text string)
	Dim(text string)
	Text(text string)
	Raw(text string)
	RawErr(text string)
	RunMarker(command string)
	ConfirmMarker(command string)
	Error(err error)
	Warning(msg string)
	Blank()
}

// Loop is the session engine. All mutable session state (context and
// working directory) is owned here and mutated strictly sequentially.
type Loop struct {
	cfg       *config.Config
	gen       llm.Generator
	exec      *shell.Executor
	hist      *history.Manager
	confirmer *confirm.Confirmer
	input     InputHandler
	output    OutputHandler
	store     *Store // nil disables transcript persistence
}

// Options wires a Loop together
type Options struct {
	Config    *config.Config
	Generator llm.Generator
	Executor  *shell.Executor
	History   *history.Manager
	Input     InputHandler
	Output    OutputHandler
	Store     *Store
}

// New creates a session loop
func New(opts Options) *Loop {
	l := &Loop{
		cfg:    opts.Config,
		gen:    opts.Generator,
		exec:   opts.Executor,
		hist:   opts.History,
		input:  opts.Input,
		output: opts.Output,
		store:  opts.Store,
	}
	l.confirmer = confirm.New(opts.Input, opts.Output, l)
	return l
}

// Execute runs one command with interrupt handling: Ctrl-C kills the
// subprocess and returns control to the loop without touching the
// working directory or the recorded context.
func (l *Loop) Execute(ctx context.Context, command string) (*shell.Result, error) {
	ictx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()
	return l.exec.Execute(ictx, command)
}

// readResult carries one line read off the prompt goroutine
type readResult struct {
	line string
	err  error
}

// RunInteractive reads lines until a quit shortcut or closed stdin.
// Ctrl-C while waiting at the prompt is acknowledged and the session
// continues; only quit and EOF end it.
func (l *Loop) RunInteractive(ctx context.Context) error {
	l.banner()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	defer signal.Stop(sigCh)

	reads := make(chan readResult, 1)
	reading := false

	for {
		if !reading {
			// Drop any interrupt left over from a killed subprocess
			drainSignals(sigCh)
			go func() {
				line, err := l.input.ReadLine(l.prompt())
				reads <- readResult{line: line, err: err}
			}()
			reading = true
		}

		select {
		case <-sigCh:
			l.output.Dim("^C")
			continue

		case res := <-reads:
			reading = false
			if res.err != nil {
				if res.err == io.EOF {
					l.output.Text("Goodbye!")
					return nil
				}
				return askerrors.InputClosed(res.err)
			}

			quit, err := l.Dispatch(ctx, res.line)
			if err != nil {
				return err
			}
			if quit {
				l.output.Text("Goodbye!")
				return nil
			}

			l.saveTranscript()
		}
	}
}

func drainSignals(ch chan os.Signal) {
	for {
		select {
		case <-ch:
		default:
			return
		}
	}
}

// RunOnce handles single-shot mode: one dispatched turn. The returned
// flag reports whether the operator rejected the proposed commands,
// which maps to the process exit status.
func (l *Loop) RunOnce(ctx context.Context, prompt string) (rejected bool, err error) {
	res := classify.Classify(prompt)

	switch res.Kind {
	case classify.KindDirect:
		l.runDirect(ctx, prompt, res.Command)
		return false, nil
	case classify.KindGenerate:
		outcome, err := l.generate(ctx, prompt)
		if err != nil {
			return false, err
		}
		return outcome == turnRejected, nil
	}
	return false, nil
}

// Dispatch routes one input line. The returned flag is true for the
// quit shortcut.
func (l *Loop) Dispatch(ctx context.Context, line string) (bool, error) {
	res := classify.Classify(line)

	switch res.Kind {
	case classify.KindNone:
		return false, nil

	case classify.KindShortcut:
		return l.dispatchShortcut(ctx, res.Shortcut)

	case classify.KindDirect:
		l.runDirect(ctx, line, res.Command)
		return false, nil

	case classify.KindGenerate:
		if _, err := l.generate(ctx, line); err != nil {
			return false, err
		}
		l.output.Blank()
		return false, nil
	}

	return false, nil
}

func (l *Loop) dispatchShortcut(ctx context.Context, sc classify.Shortcut) (bool, error) {
	switch sc {
	case classify.ShortcutQuit:
		return true, nil

	case classify.ShortcutPwd:
		l.runDirect(ctx, "pwd", "pwd")

	case classify.ShortcutParent:
		l.runDirect(ctx, "cd ..", "cd ..")

	case classify.ShortcutFinder:
		if err := l.exec.OpenFileBrowser(); err != nil {
			l.output.Error(err)
		} else {
			l.output.Helper("Opened file browser at current directory")
		}

	case classify.ShortcutClear:
		l.input.Clear()
		l.hist.Clear()
		l.banner()
	}
	return false, nil
}

// runDirect executes an allow-listed command and records the turn.
// Failures are reported and the session continues; only a spawn-level
// failure leaves the turn unrecorded.
func (l *Loop) runDirect(ctx context.Context, prompt, command string) {
	l.output.RunMarker(command)

	res, err := l.Execute(ctx, command)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			// Interrupted: nothing is recorded
			l.output.Dim("^C")
			return
		}
		l.output.Error(err)
		return
	}

	l.showResult(res)
	l.hist.Record(prompt, command, res.Combined())
	l.warnIfCompacting()
}

// turnOutcome summarizes one generation turn for single-shot status
type turnOutcome int

const (
	turnCompleted turnOutcome = iota
	turnRejected
)

// generate runs one model turn: render context, call the adapter,
// display conversational text, then drive each candidate command
// through confirmation in reply order. Adapter failures are reported
// and the session continues.
func (l *Loop) generate(ctx context.Context, prompt string) (turnOutcome, error) {
	reply, err := l.gen.Generate(ctx, prompt, l.hist.Render())
	if err != nil {
		l.output.Error(err)
		logger.Warn("generation failed: %v", err)
		return turnCompleted, nil
	}

	for _, text := range reply.Conversational {
		l.output.Helper(text)
	}
	if len(reply.Conversational) > 0 {
		l.hist.Record(prompt, "", "")
	}

	for _, candidate := range reply.Commands {
		outcome, err := l.confirmer.Confirm(ctx, candidate)
		if err != nil {
			if askerrors.GetCategory(err) == askerrors.CategoryInput {
				return turnCompleted, err
			}
			l.output.Error(err)
			continue
		}

		switch outcome {
		case confirm.OutcomeRejected:
			l.output.Helper("Command execution cancelled")
			return turnRejected, nil

		case confirm.OutcomeSkipped:
			l.output.Helper("Skipping command: " + l.output.CommandText(candidate))
			continue

		case confirm.OutcomeAccepted:
			if done := l.runAccepted(ctx, prompt, candidate); done {
				return turnCompleted, nil
			}
		}
	}

	l.warnIfCompacting()
	return turnCompleted, nil
}

// runAccepted screens and executes one approved candidate. Returns
// true when an interrupt should end the turn.
func (l *Loop) runAccepted(ctx context.Context, prompt, candidate string) bool {
	if err := shell.CheckSafety(candidate); err != nil {
		l.output.Error(err)
		return false
	}

	res, err := l.Execute(ctx, candidate)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			// Interrupted mid-command; nothing is recorded
			l.output.Dim("^C")
			return true
		}
		l.output.Error(err)
		return false
	}

	l.showResult(res)
	l.hist.Record(prompt, candidate, res.Combined())
	return false
}

func (l *Loop) showResult(res *shell.Result) {
	if res.Stdout != "" {
		l.output.Raw(res.Stdout)
	}
	if res.Stderr != "" {
		l.output.RawErr(res.Stderr)
	}
	if !res.Success() {
		l.output.Warning(fmt.Sprintf("command exited with status %d", res.ExitCode))
	}
}

// warnIfCompacting surfaces a note once history starts being evicted.
func (l *Loop) warnIfCompacting() {
	if l.hist.Len() < l.hist.Total() {
		l.output.Dim("Note: context is being automatically compacted to fit within token limits.")
	}
}

func (l *Loop) prompt() string {
	return l.output.PromptText(fmt.Sprintf("ask [%s]>", l.exec.Workdir().Display())) + " "
}

func (l *Loop) banner() {
	l.output.Helper("Interactive mode. Commands: 'exit', 'clear', 'finder'")
	l.output.Dim("Common commands and scripts execute directly without confirmation")
	l.output.Dim("Shortcuts: q=quit, .=pwd, ..=cd ..")
	l.output.Dim("📁 " + l.exec.Workdir().Path())
	l.output.Blank()
}

// saveTranscript persists the session so far, best effort.
func (l *Loop) saveTranscript() {
	if l.store == nil || l.hist.Total() == 0 {
		return
	}
	if err := l.store.Save(l.hist.Records(), l.gen.GetModel()); err != nil {
		logger.Warn("transcript save failed: %v", err)
	}
}
