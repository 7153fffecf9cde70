// Package history maintains the bounded conversational context: an
// ordered log of interaction records, a cheap token estimate, and a
// compaction pass that keeps the rendered form within a fixed budget.
package history

import (
	"fmt"
	"strings"

	"github.com/abdul-hamid-achik/ask/internal/config"
	"github.com/abdul-hamid-achik/ask/internal/logger"
)

// Record is one resolved user turn. Command is empty for skipped or
// purely conversational turns; Output is empty when nothing ran.
type Record struct {
	Prompt  string
	Command string
	Output  string
}

const truncationMarker = "... (truncated)"

// renderHeader opens every rendered context block
const renderHeader = "Previous commands and outputs in this session:\n\n"

// Manager owns the session context. It is not safe for concurrent use;
// the session loop is its only caller.
type Manager struct {
	cfg      config.ContextConfig
	records  []Record
	total    int // all-time turn count, including evicted records
	estimate int // token estimate of the current rendered form
}

// NewManager creates a context manager with the given budgets.
func NewManager(cfg config.ContextConfig) *Manager {
	if cfg.MaxContextTokens <= 0 {
		cfg.MaxContextTokens = 3000
	}
	if cfg.TokenEstimateRatio <= 0 {
		cfg.TokenEstimateRatio = 4
	}
	if cfg.OutputCapNormal <= 0 {
		cfg.OutputCapNormal = 500
	}
	if cfg.OutputCapCompact <= 0 {
		cfg.OutputCapCompact = 200
	}
	m := &Manager{cfg: cfg}
	m.estimate = m.Estimate(m.Render())
	return m
}

// Record appends one interaction. Output is truncated to the normal
// cap before it is stored, so the size estimate never counts text that
// was not retained. Compaction runs after every append.
func (m *Manager) Record(prompt, command, output string) {
	m.records = append(m.records, Record{
		Prompt:  prompt,
		Command: command,
		Output:  truncate(output, m.cfg.OutputCapNormal),
	})
	m.total++
	m.CompactIfNeeded()
}

// Len returns the number of retained records.
func (m *Manager) Len() int {
	return len(m.records)
}

// Total returns the all-time number of recorded turns, including
// records evicted by compaction.
func (m *Manager) Total() int {
	return m.total
}

// Records returns a copy of the retained records in chronological order.
func (m *Manager) Records() []Record {
	out := make([]Record, len(m.records))
	copy(out, m.records)
	return out
}

// Estimate is the cheap size heuristic: character count divided by a
// fixed ratio. No tokenizer; the budget is a policy constant.
func (m *Manager) Estimate(text string) int {
	return len(text) / m.cfg.TokenEstimateRatio
}

// RenderedEstimate returns the token estimate of the current rendered form.
func (m *Manager) RenderedEstimate() int {
	return m.estimate
}

// Render produces the context block fed to the model: retained records
// in chronological order, preceded by an eviction notice when older
// turns have been dropped.
func (m *Manager) Render() string {
	var b strings.Builder
	b.WriteString(renderHeader)

	if len(m.records) < m.total {
		fmt.Fprintf(&b, "(Note: showing recent %d of %d total interactions due to length)\n\n",
			len(m.records), m.total)
	}

	for _, r := range m.records {
		fmt.Fprintf(&b, "User: %s\n", r.Prompt)
		if r.Command != "" {
			fmt.Fprintf(&b, "Command: %s\n", r.Command)
		}
		if r.Output != "" {
			fmt.Fprintf(&b, "Output: %s\n", r.Output)
		}
		b.WriteString("\n")
	}

	return b.String()
}

// CompactIfNeeded evicts oldest records while the rendered estimate
// exceeds the budget. If eviction alone does not get under budget, all
// retained outputs are re-truncated to the stricter cap and eviction
// resumes. A single record whose minimal form still exceeds the budget
// is retained as-is; there is no smaller representation.
func (m *Manager) CompactIfNeeded() {
	m.estimate = m.Estimate(m.Render())
	if m.estimate <= m.cfg.MaxContextTokens {
		return
	}

	evicted := 0
	maxEvictions := len(m.records)
	for m.estimate > m.cfg.MaxContextTokens && len(m.records) > 1 && evicted < maxEvictions {
		m.records = m.records[1:]
		evicted++
		m.estimate = m.Estimate(m.Render())
	}

	if m.estimate <= m.cfg.MaxContextTokens {
		logger.Debug("context compacted: evicted %d records, estimate=%d", evicted, m.estimate)
		return
	}

	// Eviction was not enough: tighten every retained output
	for i := range m.records {
		m.records[i].Output = truncate(m.records[i].Output, m.cfg.OutputCapCompact)
	}
	m.estimate = m.Estimate(m.Render())

	for m.estimate > m.cfg.MaxContextTokens && len(m.records) > 1 {
		m.records = m.records[1:]
		evicted++
		m.estimate = m.Estimate(m.Render())
	}

	logger.Debug("context compacted (strict): evicted %d records, estimate=%d", evicted, m.estimate)
}

// Clear drops all records and resets the estimate.
func (m *Manager) Clear() {
	m.records = nil
	m.total = 0
	m.estimate = m.Estimate(m.Render())
}

// truncate caps text at max characters, appending a marker when text
// was dropped. Text already carrying the marker is re-capped cleanly.
func truncate(text string, max int) string {
	if len(text) <= max {
		return text
	}
	trimmed := strings.TrimSuffix(text, truncationMarker)
	if len(trimmed) <= max {
		return text
	}
	return trimmed[:max] + truncationMarker
}
