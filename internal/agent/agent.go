// Package agent implements the Agent half of C9 (spec.md §4.9): an
// immutable bundle of a name, prompt pair, streaming flag, and LLM client.
package agent

import (
	"context"

	"github.com/google/uuid"
)

// Tool is left abstract: spec.md describes an "optional tool set" without
// constraining its shape, so Agent only threads it through opaquely for
// whatever a Client implementation chooses to do with it.
type Tool any

// Completer is the LLM Invocation Client surface an Agent needs. Accepting
// the interface rather than *llm.Client directly lets tests drive a Chain
// or Agent without a real backend behind it.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, stream bool, sink func(string)) (string, error)
}

// Agent is an immutable {name, system prompt, user prompt, streaming flag,
// LLM client, optional tools} bundle, built via Builder. Each Agent carries
// a uuid so chain log lines can be correlated without relying on slice
// position.
type Agent struct {
	ID           uuid.UUID
	Name         string
	SystemPrompt string
	UserPrompt   string
	Stream       bool
	Client       Completer
	Tools        []Tool
}

// Run invokes the agent's client with its configured prompts, optionally
// overriding the user prompt (used by a Chain to thread forward the
// previous stage's output). sink receives streamed chunks as they arrive
// when the agent is configured to stream; it may be nil.
func (a *Agent) Run(ctx context.Context, userPrompt string, sink func(string)) (string, error) {
	return a.Client.Complete(ctx, a.SystemPrompt, userPrompt, a.Stream, sink)
}

// Builder constructs an Agent. Omitting the system prompt, user prompt, or
// client is a fatal programmer error (spec.md §4.9) — Build panics rather
// than returning an error, since these are invariants a caller controls at
// compile time, not values that can legitimately fail at runtime.
type Builder struct {
	name         string
	systemPrompt string
	userPrompt   string
	stream       bool
	client       Completer
	tools        []Tool
}

func NewBuilder(name string) *Builder {
	return &Builder{name: name}
}

func (b *Builder) SystemPrompt(s string) *Builder { b.systemPrompt = s; return b }
func (b *Builder) UserPrompt(s string) *Builder    { b.userPrompt = s; return b }
func (b *Builder) Stream(v bool) *Builder          { b.stream = v; return b }
func (b *Builder) Client(c Completer) *Builder     { b.client = c; return b }
func (b *Builder) Tools(tools ...Tool) *Builder     { b.tools = tools; return b }

// Build returns the constructed Agent. It panics if systemPrompt,
// userPrompt, or client were never set.
func (b *Builder) Build() *Agent {
	if b.systemPrompt == "" {
		panic("agent: SystemPrompt is required")
	}
	if b.userPrompt == "" {
		panic("agent: UserPrompt is required")
	}
	if b.client == nil {
		panic("agent: Client is required")
	}
	return &Agent{
		ID:           uuid.New(),
		Name:         b.name,
		SystemPrompt: b.systemPrompt,
		UserPrompt:   b.userPrompt,
		Stream:       b.stream,
		Client:       b.client,
		Tools:        b.tools,
	}
}
