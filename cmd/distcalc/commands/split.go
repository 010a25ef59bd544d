package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mpz/devops/tools/value-distribution/internal/machine"
	"github.com/mpz/devops/tools/value-distribution/internal/numeric"
	"github.com/mpz/devops/tools/value-distribution/internal/numfmt"
	"github.com/mpz/devops/tools/value-distribution/internal/types"
)

func splitCmd(formatter func() *numfmt.Formatter) *cobra.Command {
	var (
		total string
		pcts  []string
		fill  bool
	)

	cmd := &cobra.Command{
		Use:   "split",
		Short: "Print the amount of each distribution of a total",
		Example: `  distcalc split --total 1000 --pct 40 --pct 30 --fill
  distcalc split --total 2500000 --pct 12.5 --locale en`,
		RunE: func(cmd *cobra.Command, args []string) error {
			state := machine.InitialState()
			for _, action := range splitActions(total, pcts, fill) {
				state = machine.Reduce(state, action)
			}

			f := formatter()
			out := cmd.OutOrStdout()
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "#\tPERCENTAGE\tAMOUNT")
			for i, pct := range state.Distributions {
				if pct == types.Hole {
					continue
				}
				fmt.Fprintf(w, "%d\t%s%%\t%s\n", i+1, machine.InputValue(pct), f.Format(machine.Amount(state.TotalValue, pct)))
			}
			if err := w.Flush(); err != nil {
				return err
			}

			line := fmt.Sprintf("Total Distribution Percentage: %s%%", numeric.FormatNumber(machine.TotalPercentage(state.Distributions)))
			if machine.IsOverLimit(state.Distributions) {
				line += " (over 100%)"
			}
			_, err := fmt.Fprintln(out, line)
			return err
		},
	}

	cmd.Flags().StringVar(&total, "total", "", "total value to distribute")
	cmd.Flags().StringArrayVar(&pcts, "pct", nil, "percentage of a distribution (repeatable)")
	cmd.Flags().BoolVar(&fill, "fill", false, "append a distribution holding the remaining percentage")
	_ = cmd.MarkFlagRequired("total")
	return cmd
}

// splitActions builds the actions a user would take in the form to enter
// the given percentages.
func splitActions(total string, pcts []string, fill bool) []types.Action {
	actions := []types.Action{types.ChangeTotalValue(total)}
	for i, pct := range pcts {
		if i > 0 {
			actions = append(actions, types.AddDistribution())
		}
		actions = append(actions, types.ChangeDistributionPercentage(i, pct))
	}
	if fill {
		actions = append(actions, types.AddDistribution())
	}
	return actions
}
