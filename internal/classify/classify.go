// Package classify maps raw input lines to a dispatch decision: a
// control shortcut, a safe direct command, or a request that needs the
// model. Classification is pure; allow and deny lists are package
// configuration data and deny always overrides allow.
package classify

import (
	"strings"
)

// Kind is the top-level classification of an input line
type Kind int

const (
	KindNone     Kind = iota // whitespace only, ignored by the session loop
	KindShortcut             // fixed control token
	KindDirect               // safe read-only command, executed without the model
	KindGenerate             // everything else goes to the model
)

// Shortcut identifies one of the fixed control tokens
type Shortcut int

const (
	ShortcutNone Shortcut = iota
	ShortcutQuit
	ShortcutPwd    // "."
	ShortcutParent // ".."
	ShortcutFinder
	ShortcutClear
)

// Result is the outcome of classifying one input line
type Result struct {
	Kind     Kind
	Shortcut Shortcut
	Command  string // for KindDirect: the command to execute (possibly rewritten)
}

// allowVerbs are read-only/informational leading verbs that may execute
// without model involvement or confirmation.
var allowVerbs = map[string]bool{
	// File listing and navigation
	"ls": true, "ll": true, "la": true, "dir": true, "pwd": true, "tree": true, "cd": true,
	// File reading (non-destructive)
	"cat": true, "head": true, "tail": true, "less": true, "more": true,
	"wc": true, "file": true, "stat": true, "grep": true, "find": true, "diff": true,
	// System information
	"date": true, "uptime": true, "whoami": true, "hostname": true, "uname": true, "id": true,
	"df": true, "du": true, "free": true, "top": true, "ps": true, "who": true, "w": true,
	// Network information (read-only)
	"ifconfig": true, "ping": true, "netstat": true, "dig": true, "nslookup": true,
	"curl": true, "wget": true,
	// Environment
	"env": true, "printenv": true, "echo": true, "which": true, "type": true, "alias": true,
	// History and help
	"history": true, "help": true, "man": true,
}

// allowPairs are namespaced two-token invocations treated as one verb.
var allowPairs = map[string]bool{
	"git status": true, "git log": true, "git diff": true, "git branch": true,
	"git remote": true, "git show": true, "git blame": true,
	"brew list": true, "npm list": true, "pip list": true,
}

// denyVerbs are mutating operations that disqualify a line from direct
// execution no matter where they appear in it.
var denyVerbs = map[string]bool{
	// File/dir creation and deletion
	"rm": true, "rmdir": true, "mv": true, "cp": true, "mkdir": true, "touch": true,
	"ln": true, "dd": true, "shred": true, "truncate": true,
	// Permission changes
	"chmod": true, "chown": true, "chgrp": true,
	// Process/system mutation
	"kill": true, "killall": true, "pkill": true,
	"shutdown": true, "reboot": true, "halt": true, "poweroff": true,
	// Privilege escalation
	"sudo": true, "su": true, "doas": true,
	// Package installation
	"apt": true, "apt-get": true, "yum": true, "dnf": true, "pacman": true,
}

// denyPairs are two-token operations that disqualify a line.
var denyPairs = map[string]bool{
	"git push": true, "git commit": true, "git merge": true, "git rebase": true,
	"git reset": true, "git checkout": true, "git add": true, "git rm": true,
	"git clean": true, "git stash": true,
	"brew install": true, "npm install": true, "pip install": true, "cargo install": true,
	"go install": true, "gem install": true,
}

// scriptInterpreters are leading tokens that mark a script invocation.
var scriptInterpreters = map[string]bool{
	"python": true, "python3": true, "node": true, "ruby": true,
	"perl": true, "php": true, "bash": true, "sh": true, "zsh": true,
}

// scriptExtensions map file extensions to the interpreter used for a
// bare script name.
var scriptExtensions = map[string]string{
	"sh": "bash", "bash": "bash", "zsh": "zsh",
	"py": "python3",
	"js": "node", "mjs": "node",
	"rb": "ruby",
	"pl": "perl",
	"php": "php",
}

// Classify maps a raw input line to a dispatch decision.
func Classify(input string) Result {
	line := strings.TrimSpace(input)
	if line == "" {
		return Result{Kind: KindNone}
	}

	if sc := matchShortcut(line); sc != ShortcutNone {
		return Result{Kind: KindShortcut, Shortcut: sc}
	}

	// Deny wins over allow: any disqualifying token forces the line
	// through the model path instead of direct execution.
	if containsDisqualifier(line) {
		return Result{Kind: KindGenerate}
	}

	if cmd, ok := directCommand(line); ok {
		return Result{Kind: KindDirect, Command: cmd}
	}

	return Result{Kind: KindGenerate}
}

func matchShortcut(line string) Shortcut {
	switch strings.ToLower(line) {
	case "q", "exit", "quit":
		return ShortcutQuit
	case ".":
		return ShortcutPwd
	case "..":
		return ShortcutParent
	case "finder":
		return ShortcutFinder
	case "clear":
		return ShortcutClear
	}
	return ShortcutNone
}

// containsDisqualifier scans every token of the line for deny-list
// verbs, privilege escalation, and output redirection.
func containsDisqualifier(line string) bool {
	tokens := tokenize(line)
	for i, tok := range tokens {
		if strings.Contains(tok, ">") {
			return true
		}
		if denyVerbs[tok] {
			return true
		}
		if i+1 < len(tokens) && denyPairs[tok+" "+tokens[i+1]] {
			return true
		}
	}
	return false
}

// tokenize splits a line into lowercase tokens, stripping shell
// punctuation so "ls|rm" and "ls;rm -rf" still expose their verbs.
func tokenize(line string) []string {
	fields := strings.FieldsFunc(strings.ToLower(line), func(r rune) bool {
		switch r {
		case ' ', '\t', '|', ';', '&', '(', ')':
			return true
		}
		return false
	})
	return fields
}

// directCommand decides whether the line's leading verb is on the
// allow-list, returning the command to execute (with rewrites applied).
func directCommand(line string) (string, bool) {
	if isScriptExecution(line) {
		return scriptCommand(line), true
	}

	fields := strings.Fields(line)
	verb := strings.ToLower(fields[0])

	if len(fields) >= 2 && allowPairs[verb+" "+strings.ToLower(fields[1])] {
		return line, true
	}

	if !allowVerbs[verb] {
		return "", false
	}

	// Plain 'ls' is rewritten for more useful output
	if line == "ls" {
		return "ls -l", true
	}

	return line, true
}

// isScriptExecution reports whether the line looks like running a
// script: an explicit interpreter, a ./relative invocation, or a bare
// file name with a known script extension.
func isScriptExecution(line string) bool {
	fields := strings.Fields(line)
	first := fields[0]

	if scriptInterpreters[strings.ToLower(first)] && len(fields) > 1 {
		return true
	}
	if strings.HasPrefix(first, "./") {
		return true
	}

	// Bare script name: single token with a known extension
	if len(fields) == 1 {
		if idx := strings.LastIndex(first, "."); idx > 0 {
			_, ok := scriptExtensions[strings.ToLower(first[idx+1:])]
			return ok
		}
	}
	return false
}

// scriptCommand prepends the inferred interpreter to a bare script name.
func scriptCommand(line string) string {
	fields := strings.Fields(line)
	if len(fields) != 1 {
		return line
	}
	first := fields[0]
	if strings.HasPrefix(first, "./") {
		return line
	}
	if idx := strings.LastIndex(first, "."); idx > 0 {
		if interp, ok := scriptExtensions[strings.ToLower(first[idx+1:])]; ok {
			return interp + " " + line
		}
	}
	return line
}
