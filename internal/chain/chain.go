// Package chain implements the Sequential Chain half of C9 (spec.md §4.9):
// an ordered list of Agents run in sequence, each stage's output feeding
// the next stage's user prompt, with an append-only memory log.
package chain

import (
	"context"
	"time"

	"github.com/ByteBell/pyano/internal/agent"
)

// MemoryLogEntry records one agent invocation within a chain run.
type MemoryLogEntry struct {
	AgentName string
	Input     string
	Output    string
	Timestamp time.Time
}

// Chain holds an ordered list of Agents and the append-only log of their
// invocations across Run calls.
type Chain struct {
	agents []*agent.Agent
	log    []MemoryLogEntry
}

// New constructs a Chain over agents, run in the given order.
func New(agents ...*agent.Agent) *Chain {
	return &Chain{agents: agents}
}

// Run executes every agent in order. The first agent is invoked with its
// own UserPrompt; each subsequent agent's UserPrompt is prefixed with the
// previous agent's output, passed forward verbatim. An agent failure
// aborts the chain and propagates the error; log entries already produced
// remain (spec.md §4.9).
//
// Cancellation is only checked at agent boundaries — an in-flight
// completion always runs to completion or failure before ctx.Err() is
// observed (spec.md §5).
func (c *Chain) Run(ctx context.Context) (string, error) {
	var output string

	for i, a := range c.agents {
		select {
		case <-ctx.Done():
			return output, ctx.Err()
		default:
		}

		input := a.UserPrompt
		if i > 0 {
			input = output + a.UserPrompt
		}

		result, err := a.Run(ctx, input, nil)
		if err != nil {
			return output, err
		}

		c.log = append(c.log, MemoryLogEntry{
			AgentName: a.Name,
			Input:     input,
			Output:    result,
			Timestamp: time.Now(),
		})
		output = result
	}

	return output, nil
}

// MemoryLogs returns an immutable snapshot of every entry appended so far.
func (c *Chain) MemoryLogs() []MemoryLogEntry {
	out := make([]MemoryLogEntry, len(c.log))
	copy(out, c.log)
	return out
}
