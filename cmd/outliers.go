package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/chrisdamba/foodwaste/internal/aggregate"
	"github.com/chrisdamba/foodwaste/internal/models"
	"github.com/chrisdamba/foodwaste/internal/source"
)

var outliersCmd = &cobra.Command{
	Use:   "outliers FILE",
	Short: "List rows whose cost price is above a quantile cutoff",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rows, err := source.ReadFile(args[0], models.ColumnCostPrice)
		if err != nil {
			return err
		}
		agg, err := aggregate.NewAggregator(cfg.CoercionPolicy, cfg.ExcludeCourses)
		if err != nil {
			return err
		}
		outliers, cutoff, err := agg.FlagCostOutliers(rows, cfg.OutlierQuantile)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "cutoff (q=%.2f): %.2f, %d of %d rows above\n", cfg.OutlierQuantile, cutoff, len(outliers), len(rows))
		if len(outliers) == 0 {
			return nil
		}
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "LINE\tDATE\tCOURSE\tITEM\tCOST PRICE")
		for _, o := range outliers {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%.2f\n", o.Row.Line, o.Row.EventDate, o.Row.CourseName, o.Row.ItemName, o.CostPrice)
		}
		return tw.Flush()
	},
}

func init() {
	outliersCmd.Flags().Float64("quantile", 0.99, "Quantile of cost prices used as the cutoff")
	bindFlags(outliersCmd.Flags(), map[string]string{"outlier_quantile": "quantile"})
	rootCmd.AddCommand(outliersCmd)
}
