package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ByteBell/pyano/internal/app"
)

func init() {
	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(unloadCmd)
}

var loadCmd = &cobra.Command{
	Use:   "load MODEL",
	Short: "Load a registered model into memory and wait for it to become ready",
	Args:  cobra.ExactArgs(1),
	RunE:  runLoad,
}

var unloadCmd = &cobra.Command{
	Use:   "unload MODEL",
	Short: "Stop a loaded model's process and free its memory",
	Args:  cobra.ExactArgs(1),
	RunE:  runUnload,
}

func runLoad(cmd *cobra.Command, args []string) error {
	name := args[0]

	a, err := app.New()
	if err != nil {
		return err
	}

	ctx := context.Background()
	req, err := a.Manager.GetLLM(ctx, name, nil)
	if err != nil {
		return err
	}
	if err := a.Manager.Load(ctx, req.State); err != nil {
		return err
	}
	fmt.Printf("%s: running\n", name)
	return nil
}

func runUnload(cmd *cobra.Command, args []string) error {
	name := args[0]

	a, err := app.New()
	if err != nil {
		return err
	}
	if err := a.Manager.Unload(context.Background(), name); err != nil {
		return err
	}
	fmt.Printf("%s: stopped\n", name)
	return nil
}
