package session

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/abdul-hamid-achik/ask/internal/config"
	"github.com/abdul-hamid-achik/ask/internal/history"
	"github.com/abdul-hamid-achik/ask/internal/llm"
	"github.com/abdul-hamid-achik/ask/internal/shell"
)

// fakeGenerator implements llm.Generator with a canned reply
type fakeGenerator struct {
	reply       *llm.Reply
	err         error
	model       string
	lastContext string
	calls       int
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt, contextBlock string) (*llm.Reply, error) {
	f.calls++
	f.lastContext = contextBlock
	if f.err != nil {
		return nil, f.err
	}
	return f.reply, nil
}

func (f *fakeGenerator) SetModel(model string) { f.model = model }
func (f *fakeGenerator) GetModel() string      { return f.model }

// mockInput implements InputHandler, replaying scripted lines
type mockInput struct {
	lines   []string
	cleared bool
}

func (m *mockInput) ReadLine(prompt string) (string, error) {
	if len(m.lines) == 0 {
		return "", io.EOF
	}
	line := m.lines[0]
	m.lines = m.lines[1:]
	return line, nil
}

func (m *mockInput) Clear() { m.cleared = true }

// mockOutput implements OutputHandler, capturing what was shown.
// Guarded by a mutex so interactive-loop tests can poll from the test
// goroutine.
type mockOutput struct {
	mu       sync.Mutex
	confirms []string
	runs     []string
	helpers  []string
	dims     []string
	errors   []error
	warnings []string
}

func (m *mockOutput) PromptText(text string) string  { return text }
func (m *mockOutput) CommandText(text string) string { return text }

func (m *mockOutput) Helper(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.helpers = append(m.helpers, text)
}

func (m *mockOutput) Dim(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dims = append(m.dims, text)
}

func (m *mockOutput) Text(text string)   {}
func (m *mockOutput) Raw(text string)    {}
func (m *mockOutput) RawErr(text string) {}

func (m *mockOutput) RunMarker(command string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, command)
}

func (m *mockOutput) ConfirmMarker(command string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.confirms = append(m.confirms, command)
}

func (m *mockOutput) Error(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, err)
}

func (m *mockOutput) Warning(msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.warnings = append(m.warnings, msg)
}

func (m *mockOutput) Blank() {}

func (m *mockOutput) hasDim(text string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.dims {
		if d == text {
			return true
		}
	}
	return false
}

func newTestLoop(t *testing.T, gen llm.Generator, lines ...string) (*Loop, *mockInput, *mockOutput) {
	t.Helper()

	cfg := config.DefaultConfig()
	exec := shell.NewExecutor(tempWorkdir(t))
	input := &mockInput{lines: lines}
	output := &mockOutput{}

	loop := New(Options{
		Config:    cfg,
		Generator: gen,
		Executor:  exec,
		History:   history.NewManager(cfg.Context),
		Input:     input,
		Output:    output,
	})
	return loop, input, output
}

func tempWorkdir(t *testing.T) *shell.Workdir {
	t.Helper()
	wd, err := shell.NewWorkdir()
	if err != nil {
		t.Fatal(err)
	}
	return wd
}

func TestLoop_DispatchEmptyLine(t *testing.T) {
	loop, _, _ := newTestLoop(t, &fakeGenerator{})

	quit, err := loop.Dispatch(context.Background(), "   ")
	if err != nil || quit {
		t.Fatalf("empty line: quit=%v err=%v", quit, err)
	}
	if loop.hist.Total() != 0 {
		t.Errorf("empty line must not be recorded")
	}
}

func TestLoop_DispatchQuit(t *testing.T) {
	loop, _, _ := newTestLoop(t, &fakeGenerator{})

	quit, err := loop.Dispatch(context.Background(), "q")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !quit {
		t.Error("q should quit the session")
	}
}

func TestLoop_DirectCommandRecorded(t *testing.T) {
	gen := &fakeGenerator{}
	loop, _, output := newTestLoop(t, gen)

	quit, err := loop.Dispatch(context.Background(), "echo hello")
	if err != nil || quit {
		t.Fatalf("quit=%v err=%v", quit, err)
	}

	if gen.calls != 0 {
		t.Error("direct commands must not reach the model")
	}
	if len(output.confirms) != 0 {
		t.Error("direct commands must not be confirmed")
	}
	if loop.hist.Len() != 1 {
		t.Fatalf("hist.Len() = %d, want 1", loop.hist.Len())
	}

	rec := loop.hist.Records()[0]
	if rec.Prompt != "echo hello" || rec.Command != "echo hello" {
		t.Errorf("record = %+v", rec)
	}
	if !strings.Contains(rec.Output, "hello") {
		t.Errorf("record output = %q, want to contain hello", rec.Output)
	}
}

func TestLoop_GenerateAcceptExecutesAndRecords(t *testing.T) {
	gen := &fakeGenerator{reply: &llm.Reply{Commands: []string{"echo generated"}}}
	loop, _, output := newTestLoop(t, gen, "y")

	quit, err := loop.Dispatch(context.Background(), "say generated please")
	if err != nil || quit {
		t.Fatalf("quit=%v err=%v", quit, err)
	}

	if len(output.confirms) != 1 || output.confirms[0] != "echo generated" {
		t.Fatalf("confirmation prompts = %v", output.confirms)
	}
	if loop.hist.Len() != 1 {
		t.Fatalf("hist.Len() = %d, want 1", loop.hist.Len())
	}

	rec := loop.hist.Records()[0]
	if rec.Prompt != "say generated please" || rec.Command != "echo generated" {
		t.Errorf("record = %+v", rec)
	}
}

func TestLoop_GenerateSkipLeavesNoRecord(t *testing.T) {
	gen := &fakeGenerator{reply: &llm.Reply{Commands: []string{"echo skipped"}}}
	loop, _, _ := newTestLoop(t, gen, "s")

	if _, err := loop.Dispatch(context.Background(), "do the thing"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loop.hist.Len() != 0 {
		t.Errorf("skipped command must not be recorded, hist.Len() = %d", loop.hist.Len())
	}
}

func TestLoop_CandidatesConfirmedInOrder(t *testing.T) {
	gen := &fakeGenerator{reply: &llm.Reply{Commands: []string{"echo one", "echo two"}}}
	loop, _, output := newTestLoop(t, gen, "y", "y")

	if _, err := loop.Dispatch(context.Background(), "two steps"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(output.confirms) != 2 || output.confirms[0] != "echo one" || output.confirms[1] != "echo two" {
		t.Fatalf("confirmation order wrong: %v", output.confirms)
	}

	records := loop.hist.Records()
	if len(records) != 2 {
		t.Fatalf("hist.Len() = %d, want 2", len(records))
	}
	if records[0].Command != "echo one" || records[1].Command != "echo two" {
		t.Errorf("records out of order: %+v", records)
	}
}

func TestLoop_RejectAbandonsRemainingCandidates(t *testing.T) {
	gen := &fakeGenerator{reply: &llm.Reply{Commands: []string{"echo one", "echo two"}}}
	loop, _, output := newTestLoop(t, gen, "n")

	if _, err := loop.Dispatch(context.Background(), "two steps"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(output.confirms) != 1 {
		t.Errorf("rejection should stop the turn, got %d prompts", len(output.confirms))
	}
	if loop.hist.Len() != 0 {
		t.Errorf("rejected turn must not be recorded")
	}
}

func TestLoop_ConversationalReplyRecorded(t *testing.T) {
	gen := &fakeGenerator{reply: &llm.Reply{Conversational: []string{"You are in a shell."}}}
	loop, _, output := newTestLoop(t, gen)

	if _, err := loop.Dispatch(context.Background(), "where am I"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	found := false
	for _, h := range output.helpers {
		if h == "You are in a shell." {
			found = true
		}
	}
	if !found {
		t.Error("conversational reply not shown")
	}

	if loop.hist.Len() != 1 {
		t.Fatalf("hist.Len() = %d, want 1", loop.hist.Len())
	}
	rec := loop.hist.Records()[0]
	if rec.Command != "" || rec.Output != "" {
		t.Errorf("conversational record should carry no command: %+v", rec)
	}
}

func TestLoop_BlockedCandidateNotExecuted(t *testing.T) {
	gen := &fakeGenerator{reply: &llm.Reply{Commands: []string{"rm -rf /"}}}
	loop, _, output := newTestLoop(t, gen, "y")

	if _, err := loop.Dispatch(context.Background(), "wipe everything"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(output.errors) == 0 {
		t.Error("blocked command should surface an error")
	}
	if loop.hist.Len() != 0 {
		t.Errorf("blocked command must not be recorded")
	}
}

// A generation failure ends the turn, not the session.
func TestLoop_GeneratorErrorKeepsSession(t *testing.T) {
	gen := &fakeGenerator{err: fmt.Errorf("provider down")}
	loop, _, output := newTestLoop(t, gen)

	quit, err := loop.Dispatch(context.Background(), "do something")
	if err != nil {
		t.Fatalf("generation failure must not end the session: %v", err)
	}
	if quit {
		t.Error("generation failure must not quit")
	}
	if len(output.errors) == 0 {
		t.Error("failure should be displayed")
	}
}

func TestLoop_GenerateSendsRenderedContext(t *testing.T) {
	gen := &fakeGenerator{reply: &llm.Reply{Commands: []string{"echo ctx"}}}
	loop, _, _ := newTestLoop(t, gen, "y", "y")

	if _, err := loop.Dispatch(context.Background(), "first"); err != nil {
		t.Fatal(err)
	}
	if _, err := loop.Dispatch(context.Background(), "second"); err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(gen.lastContext, "User: first") {
		t.Errorf("second turn should see the first in context:\n%s", gen.lastContext)
	}
	if !strings.Contains(gen.lastContext, "Command: echo ctx") {
		t.Errorf("context missing executed command:\n%s", gen.lastContext)
	}
}

func TestLoop_ClearResetsContext(t *testing.T) {
	loop, input, _ := newTestLoop(t, &fakeGenerator{})

	if _, err := loop.Dispatch(context.Background(), "echo hello"); err != nil {
		t.Fatal(err)
	}
	if _, err := loop.Dispatch(context.Background(), "clear"); err != nil {
		t.Fatal(err)
	}

	if !input.cleared {
		t.Error("clear shortcut should clear the screen")
	}
	if loop.hist.Total() != 0 {
		t.Errorf("clear shortcut should reset context, Total = %d", loop.hist.Total())
	}
}

func TestLoop_RunOnce(t *testing.T) {
	t.Run("accepted", func(t *testing.T) {
		gen := &fakeGenerator{reply: &llm.Reply{Commands: []string{"echo once"}}}
		loop, _, _ := newTestLoop(t, gen, "y")

		rejected, err := loop.RunOnce(context.Background(), "say once")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rejected {
			t.Error("accepted run reported as rejected")
		}
	})

	t.Run("direct command bypasses the model", func(t *testing.T) {
		gen := &fakeGenerator{}
		loop, _, _ := newTestLoop(t, gen)

		rejected, err := loop.RunOnce(context.Background(), "echo direct")
		if err != nil || rejected {
			t.Fatalf("rejected=%v err=%v", rejected, err)
		}
		if gen.calls != 0 {
			t.Error("direct single-shot must not reach the model")
		}
		if loop.hist.Len() != 1 {
			t.Errorf("direct single-shot should be recorded, hist.Len() = %d", loop.hist.Len())
		}
	})

	t.Run("rejected", func(t *testing.T) {
		gen := &fakeGenerator{reply: &llm.Reply{Commands: []string{"echo once"}}}
		loop, _, _ := newTestLoop(t, gen, "n")

		rejected, err := loop.RunOnce(context.Background(), "say once")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !rejected {
			t.Error("rejected run not reported")
		}
	})
}

func TestLoop_RunInteractiveEOFEndsCleanly(t *testing.T) {
	loop, _, _ := newTestLoop(t, &fakeGenerator{})

	if err := loop.RunInteractive(context.Background()); err != nil {
		t.Errorf("EOF should end the session without error, got %v", err)
	}
}

// blockingInput implements InputHandler over a channel, so a test can
// hold the loop at the prompt.
type blockingInput struct {
	lines chan string
}

func (b *blockingInput) ReadLine(prompt string) (string, error) {
	line, ok := <-b.lines
	if !ok {
		return "", io.EOF
	}
	return line, nil
}

func (b *blockingInput) Clear() {}

// Ctrl-C at the prompt is acknowledged and the session keeps running;
// only quit ends it.
func TestLoop_RunInteractiveSurvivesInterruptAtPrompt(t *testing.T) {
	cfg := config.DefaultConfig()
	input := &blockingInput{lines: make(chan string)}
	output := &mockOutput{}

	loop := New(Options{
		Config:    cfg,
		Generator: &fakeGenerator{},
		Executor:  shell.NewExecutor(tempWorkdir(t)),
		History:   history.NewManager(cfg.Context),
		Input:     input,
		Output:    output,
	})

	done := make(chan error, 1)
	go func() { done <- loop.RunInteractive(context.Background()) }()

	// Let the loop install its handler and block at the prompt
	time.Sleep(200 * time.Millisecond)
	if err := syscall.Kill(os.Getpid(), syscall.SIGINT); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(2 * time.Second)
	for !output.hasDim("^C") {
		select {
		case err := <-done:
			t.Fatalf("interrupt at prompt ended the session: %v", err)
		case <-deadline:
			t.Fatal("interrupt at prompt was not acknowledged")
		case <-time.After(10 * time.Millisecond):
		}
	}

	input.lines <- "q"
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("session ended with error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("session did not quit")
	}
}
