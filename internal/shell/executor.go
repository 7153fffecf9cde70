package shell

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	askerrors "github.com/abdul-hamid-achik/ask/internal/errors"
	"github.com/abdul-hamid-achik/ask/internal/logger"
)

// Result captures one command execution
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Combined returns stdout and stderr joined for history recording.
func (r *Result) Combined() string {
	if r.Stderr == "" {
		return r.Stdout
	}
	if r.Stdout == "" {
		return r.Stderr
	}
	return r.Stdout + "\n" + r.Stderr
}

// Success reports whether the command exited cleanly.
func (r *Result) Success() bool {
	return r.ExitCode == 0
}

// Executor runs commands through the host shell with the tracked
// working directory. Directory changes never spawn a subprocess.
type Executor struct {
	wd    *Workdir
	shell string
}

// NewExecutor creates an executor bound to a working-directory tracker.
func NewExecutor(wd *Workdir) *Executor {
	sh := os.Getenv("SHELL")
	if sh == "" {
		sh = "/bin/sh"
	}
	return &Executor{wd: wd, shell: sh}
}

// Workdir exposes the tracker for prompt rendering.
func (e *Executor) Workdir() *Workdir {
	return e.wd
}

// Execute runs one command. cd is special-cased to mutate the tracker;
// everything else is spawned via the shell with the tracked directory
// as its cwd. A non-zero exit status is reported in the Result, not as
// an error; the returned error means the command could not run at all.
func (e *Executor) Execute(ctx context.Context, command string) (*Result, error) {
	command = strings.TrimSpace(command)
	fields := strings.Fields(command)
	if len(fields) > 0 && fields[0] == "cd" {
		return e.changeDir(fields[1:])
	}

	logger.Debug("exec: %q in %s", command, e.wd.Path())

	cmd := exec.CommandContext(ctx, e.shell, "-c", command)
	cmd.Dir = e.wd.Path()
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	res := &Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err != nil {
		if ctx.Err() != nil {
			// Interrupted: the process has been killed and reaped by
			// CommandContext; surface the cancellation to the caller.
			return res, ctx.Err()
		}
		if exitErr, ok := err.(*exec.ExitError); ok {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		return nil, askerrors.ExecutionFailed(command, err)
	}

	return res, nil
}

// changeDir resolves and validates a cd target, updating the tracker
// only on success. No argument means the home directory.
func (e *Executor) changeDir(args []string) (*Result, error) {
	target := ""
	if len(args) > 0 {
		target = strings.Join(args, " ")
	}

	path, err := e.resolveTarget(target)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, askerrors.DirectoryNavigationFailed(path, err)
	}
	if !info.IsDir() {
		return nil, askerrors.DirectoryNavigationFailed(path, fmt.Errorf("not a directory"))
	}

	e.wd.set(path)
	logger.Debug("cd: now in %s", path)
	return &Result{Stdout: fmt.Sprintf("Changed directory to: %s", path)}, nil
}

// resolveTarget turns a cd argument into an absolute path: empty and
// "~" mean home, relative paths resolve against the tracked directory.
func (e *Executor) resolveTarget(target string) (string, error) {
	if target == "" || target == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", askerrors.DirectoryNavigationFailed("~", err)
		}
		return home, nil
	}

	if after, ok := strings.CutPrefix(target, "~/"); ok {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", askerrors.DirectoryNavigationFailed(target, err)
		}
		target = filepath.Join(home, after)
	}

	if !filepath.IsAbs(target) {
		target = filepath.Join(e.wd.Path(), target)
	}
	return filepath.Clean(target), nil
}

// OpenFileBrowser opens the tracked directory in the platform's file
// browser. Fire-and-forget: output is not captured and the result is
// never recorded in context.
func (e *Executor) OpenFileBrowser() error {
	opener := "xdg-open"
	if runtime.GOOS == "darwin" {
		opener = "open"
	}

	cmd := exec.Command(opener, e.wd.Path())
	if err := cmd.Start(); err != nil {
		return askerrors.ExecutionFailed(opener, err)
	}
	// Reap in the background so the opener never becomes a zombie
	go func() { _ = cmd.Wait() }()
	return nil
}
