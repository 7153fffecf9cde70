// Package shell runs approved commands through the host interpreter
// and fakes directory persistence across otherwise-stateless command
// invocations.
package shell

import (
	"os"
	"path/filepath"
	"strings"
)

// Workdir tracks the session's simulated current directory. Each
// spawned command is stateless, so cd cannot stick on its own; the
// tracker is the single place that remembers where the session is.
// It is mutated only by a successful directory change.
type Workdir struct {
	path string
}

// NewWorkdir initializes the tracker to the process's actual starting
// directory.
func NewWorkdir() (*Workdir, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return &Workdir{path: cwd}, nil
}

// Path returns the current absolute path.
func (w *Workdir) Path() string {
	return w.path
}

// Display returns an abbreviated form for the interactive prompt:
// "~" for home, "~/name" under home, the base name elsewhere.
func (w *Workdir) Display() string {
	home, err := os.UserHomeDir()
	if err == nil {
		if w.path == home {
			return "~"
		}
		if rel, ok := strings.CutPrefix(w.path, home+string(os.PathSeparator)); ok {
			return "~/" + filepath.Base(rel)
		}
	}
	if w.path == "/" {
		return "/"
	}
	return filepath.Base(w.path)
}

// set replaces the tracked path. Callers have already validated it.
func (w *Workdir) set(path string) {
	w.path = path
}
