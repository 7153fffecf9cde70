// Package confirm drives the per-command approval loop: each candidate
// command is asked about until the operator accepts, rejects, or skips
// it, with an "instruct" branch that runs an ad-hoc command first and
// then re-asks the original question.
package confirm

import (
	"context"
	"strings"

	askerrors "github.com/abdul-hamid-achik/ask/internal/errors"
	"github.com/abdul-hamid-achik/ask/internal/shell"
)

// State is one node of the confirmation state machine.
type State int

const (
	StateAsking State = iota
	StateAccepted
	StateRejected
	StateSkipped
	StateInstructing
)

// Outcome is the terminal result of one confirmation cycle.
type Outcome int

const (
	OutcomeAccepted Outcome = iota // proceed to execution, then next candidate
	OutcomeRejected                // abandon all remaining candidates this turn
	OutcomeSkipped                 // abandon only this candidate
)

// Decision is the parsed form of one confirmation input token.
type Decision int

const (
	DecisionAccept Decision = iota
	DecisionReject
	DecisionSkip
	DecisionInstruct
	DecisionInvalid
)

// ParseDecision maps a raw input token to a decision. Empty input
// means yes; anything unrecognized is invalid and re-prompts.
func ParseDecision(token string) Decision {
	switch token {
	case "", "y", "yes":
		return DecisionAccept
	case "n", "no":
		return DecisionReject
	case "s", "skip":
		return DecisionSkip
	case "i", "instruct":
		return DecisionInstruct
	default:
		return DecisionInvalid
	}
}

// Transition advances the state machine by one decision. Invalid input
// stays in Asking; instruct detours through Instructing and the caller
// returns to Asking for the same candidate afterwards.
func Transition(state State, d Decision) State {
	if state != StateAsking {
		return state
	}
	switch d {
	case DecisionAccept:
		return StateAccepted
	case DecisionReject:
		return StateRejected
	case DecisionSkip:
		return StateSkipped
	case DecisionInstruct:
		return StateInstructing
	default:
		return StateAsking
	}
}

// InputHandler reads operator responses
type InputHandler interface {
	ReadLine(prompt string) (string, error)
}

// OutputHandler displays prompts and instruct results
type OutputHandler interface {
	ConfirmMarker(command string)
	RunMarker(command string)
	PromptText(text string) string
	Helper(text string)
	Error(err error)
	Raw(text string)
	RawErr(text string)
}

// Runner executes instruct sub-commands
type Runner interface {
	Execute(ctx context.Context, command string) (*shell.Result, error)
}

// Confirmer owns one candidate command for the lifetime of its
// confirmation cycle.
type Confirmer struct {
	input  InputHandler
	output OutputHandler
	runner Runner
}

// New creates a confirmer
func New(input InputHandler, output OutputHandler, runner Runner) *Confirmer {
	return &Confirmer{input: input, output: output, runner: runner}
}

// Confirm drives the state machine for one candidate command to a
// terminal outcome. Only an accepted outcome means the candidate should
// execute; instruct sub-commands run here directly and their results
// are never part of the session context.
func (c *Confirmer) Confirm(ctx context.Context, command string) (Outcome, error) {
	state := StateAsking
	for {
		switch state {
		case StateAsking:
			c.output.ConfirmMarker(command)
			token, err := c.input.ReadLine("")
			if err != nil {
				return OutcomeRejected, askerrors.InputClosed(err)
			}

			decision := ParseDecision(normalize(token))
			if decision == DecisionInvalid {
				c.output.Helper("Invalid response. Please use Y(es), n(o), s(kip), or i(nstruct).")
			}
			state = Transition(state, decision)

		case StateInstructing:
			if err := c.runInstruct(ctx); err != nil {
				if askerrors.GetCategory(err) == askerrors.CategoryInput {
					return OutcomeRejected, err
				}
				c.output.Error(err)
			}
			c.output.Helper("Returning to original command:")
			state = StateAsking

		case StateAccepted:
			return OutcomeAccepted, nil
		case StateRejected:
			return OutcomeRejected, nil
		case StateSkipped:
			return OutcomeSkipped, nil
		}
	}
}

// runInstruct reads one free-text command and executes it immediately.
func (c *Confirmer) runInstruct(ctx context.Context) error {
	sub, err := c.input.ReadLine(c.output.PromptText("enter>") + " ")
	if err != nil {
		return askerrors.InputClosed(err)
	}
	if sub == "" {
		return nil
	}

	c.output.RunMarker(sub)
	res, err := c.runner.Execute(ctx, sub)
	if err != nil {
		return err
	}
	if res.Stdout != "" {
		c.output.Raw(res.Stdout)
	}
	if res.Stderr != "" {
		c.output.RawErr(res.Stderr)
	}
	return nil
}

func normalize(token string) string {
	return strings.ToLower(strings.TrimSpace(token))
}
