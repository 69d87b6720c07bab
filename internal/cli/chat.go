package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ByteBell/pyano/internal/agent"
	"github.com/ByteBell/pyano/internal/app"
	"github.com/ByteBell/pyano/internal/llm"
)

var (
	chatSystemPrompt string
	chatStream       bool
)

var chatCmd = &cobra.Command{
	Use:   "chat MODEL PROMPT",
	Short: "Send one prompt to a model through a single Agent and print the response",
	Args:  cobra.ExactArgs(2),
	RunE:  runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().StringVar(&chatSystemPrompt, "system", "You are a helpful assistant.", "system prompt")
	chatCmd.Flags().BoolVar(&chatStream, "stream", false, "stream tokens to stdout as they arrive")
}

func runChat(cmd *cobra.Command, args []string) error {
	name, prompt := args[0], args[1]

	a, err := app.New()
	if err != nil {
		return err
	}

	ctx := context.Background()
	req, err := a.Manager.GetLLM(ctx, name, nil)
	if err != nil {
		return err
	}

	client := llm.NewClient(a.Manager, req.State)
	ag := agent.NewBuilder(name).
		SystemPrompt(chatSystemPrompt).
		UserPrompt(prompt).
		Stream(chatStream).
		Client(client).
		Build()

	sink := func(chunk string) { fmt.Print(chunk) }
	if !chatStream {
		sink = nil
	}

	result, err := ag.Run(ctx, ag.UserPrompt, sink)
	if err != nil {
		return err
	}
	if !chatStream {
		fmt.Println(result)
	} else {
		fmt.Println()
	}
	return nil
}
