package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ByteBell/pyano/internal/app"
)

func init() {
	rootCmd.AddCommand(pullCmd)
}

var pullCmd = &cobra.Command{
	Use:   "pull MODEL",
	Short: "Download a registered model's weights if they're missing",
	Args:  cobra.ExactArgs(1),
	RunE:  runPull,
}

func runPull(cmd *cobra.Command, args []string) error {
	name := args[0]

	a, err := app.New()
	if err != nil {
		return err
	}

	cfg, ok := a.Registry.Get(name)
	if !ok {
		return fmt.Errorf("no registered model named %q", name)
	}
	if cfg.ModelConfig.ModelURL == nil {
		return fmt.Errorf("model %q has no model_url configured", name)
	}

	fmt.Fprintf(os.Stderr, "pulling %s...\n", name)
	req, err := a.Manager.GetLLM(context.Background(), name, nil)
	if err != nil {
		return err
	}
	fmt.Printf("%s: weights ready at %s\n", name, req.Config.ModelConfig.ModelPath)
	return nil
}
