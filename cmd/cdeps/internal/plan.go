package internal

import (
	"fmt"

	"github.com/spf13/cobra"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Print the build order and every phase without running anything",
	Args:  cobra.NoArgs,
	RunE:  runPlan,
}

func init() {
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	b, err := newBuilder()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "# strategy %s\n", b.Graph().Strategy())
	for _, step := range b.Plan() {
		fmt.Fprintf(out, "%-9s %-13s %s\n", step.Unit, step.Phase.Label, step.Phase)
	}
	return nil
}
