package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ByteBell/pyano/internal/app"
)

func init() {
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(listCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status MODEL",
	Short: "Report a model's current lifecycle status",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatus,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List every model currently loaded in memory",
	RunE:  runList,
}

func runStatus(cmd *cobra.Command, args []string) error {
	name := args[0]

	a, err := app.New()
	if err != nil {
		return err
	}
	status, err := a.Manager.Status(name)
	if err != nil {
		return err
	}
	fmt.Println(status.String())
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	a, err := app.New()
	if err != nil {
		return err
	}

	names := a.Manager.List()
	if len(names) == 0 {
		fmt.Println("No models currently loaded.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSTATUS")
	for _, name := range names {
		status, err := a.Manager.Status(name)
		if err != nil {
			continue
		}
		fmt.Fprintf(w, "%s\t%s\n", name, status.String())
	}
	return w.Flush()
}
