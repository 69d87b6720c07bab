package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ByteBell/pyano/internal/agent"
	"github.com/ByteBell/pyano/internal/app"
	"github.com/ByteBell/pyano/internal/chain"
	"github.com/ByteBell/pyano/internal/llm"
)

func init() {
	rootCmd.AddCommand(chainCmd)
}

var chainCmd = &cobra.Command{
	Use:   "chain MODEL1:PROMPT1 [MODEL2:PROMPT2 ...]",
	Short: "Run a sequence of single-model agents, each fed the previous stage's output",
	Long: `Each argument is a MODEL:PROMPT pair. The first agent runs with its own
prompt; every later agent's prompt is prefixed with the previous agent's
output. After the run completes, every stage's memory log entry is printed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runChain,
}

func runChain(cmd *cobra.Command, args []string) error {
	a, err := app.New()
	if err != nil {
		return err
	}

	ctx := context.Background()
	var agents []*agent.Agent

	for i, arg := range args {
		modelName, prompt, ok := strings.Cut(arg, ":")
		if !ok {
			return fmt.Errorf("stage %d: expected MODEL:PROMPT, got %q", i+1, arg)
		}

		req, err := a.Manager.GetLLM(ctx, modelName, nil)
		if err != nil {
			return err
		}
		client := llm.NewClient(a.Manager, req.State)
		ag := agent.NewBuilder(fmt.Sprintf("stage-%d-%s", i+1, modelName)).
			SystemPrompt("You are a helpful assistant.").
			UserPrompt(prompt).
			Client(client).
			Build()
		agents = append(agents, ag)
	}

	c := chain.New(agents...)
	result, err := c.Run(ctx)
	if err != nil {
		fmt.Println("chain failed:", err)
	}
	fmt.Println("final output:", result)

	for _, entry := range c.MemoryLogs() {
		fmt.Printf("[%s] %s -> %s (%s)\n",
			entry.AgentName, entry.Input, entry.Output, entry.Timestamp.Format("15:04:05"))
	}

	return err
}
