package chain

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByteBell/pyano/internal/agent"
)

type fakeCompleter struct {
	response string
	err      error
}

func (f *fakeCompleter) Complete(ctx context.Context, systemPrompt, userPrompt string, stream bool, sink func(string)) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func buildAgent(t *testing.T, name, userPrompt, response string) *agent.Agent {
	t.Helper()
	return agent.NewBuilder(name).
		SystemPrompt("be helpful").
		UserPrompt(userPrompt).
		Client(&fakeCompleter{response: response}).
		Build()
}

func TestRun_FeedsOutputForward(t *testing.T) {
	a1 := buildAgent(t, "writer", "write something", "draft text")
	a2 := buildAgent(t, "reviewer", "review it", "reviewed: draft text")

	c := New(a1, a2)
	out, err := c.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "reviewed: draft text", out)

	logs := c.MemoryLogs()
	require.Len(t, logs, 2)
	assert.Equal(t, "writer", logs[0].AgentName)
	assert.Equal(t, "write something", logs[0].Input)
	assert.Equal(t, "draft text", logs[0].Output)

	assert.Equal(t, "reviewer", logs[1].AgentName)
	assert.Equal(t, "draft textreview it", logs[1].Input, "the previous stage's output prefixes the next stage's own user prompt verbatim")
}

func TestRun_AbortsOnFirstFailureButKeepsPriorLogs(t *testing.T) {
	a1 := buildAgent(t, "writer", "write something", "draft text")
	failing := agent.NewBuilder("reviewer").
		SystemPrompt("be helpful").
		UserPrompt("review it").
		Client(&fakeCompleter{err: errors.New("backend down")}).
		Build()
	a3 := buildAgent(t, "never-runs", "irrelevant", "unreachable")

	c := New(a1, failing, a3)
	_, err := c.Run(context.Background())
	require.Error(t, err)

	logs := c.MemoryLogs()
	require.Len(t, logs, 1, "only the successful first stage should be logged")
	assert.Equal(t, "writer", logs[0].AgentName)
}

func TestMemoryLogs_ReturnsImmutableSnapshot(t *testing.T) {
	a1 := buildAgent(t, "writer", "write something", "draft text")
	c := New(a1)
	_, err := c.Run(context.Background())
	require.NoError(t, err)

	snapshot := c.MemoryLogs()
	snapshot[0].Output = "mutated"

	assert.Equal(t, "draft text", c.MemoryLogs()[0].Output, "mutating a snapshot must not affect the chain's internal log")
}

func TestRun_CancelledContextStopsAtBoundary(t *testing.T) {
	a1 := buildAgent(t, "writer", "write something", "draft text")
	a2 := buildAgent(t, "reviewer", "review it", "reviewed")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := New(a1, a2)
	_, err := c.Run(ctx)
	require.Error(t, err)
	assert.Empty(t, c.MemoryLogs(), "cancellation observed before the first agent boundary runs nothing")
}
