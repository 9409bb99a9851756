package cmd

import (
	"fmt"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/chrisdamba/foodwaste/internal/models"
	"github.com/chrisdamba/foodwaste/internal/report"
	"github.com/chrisdamba/foodwaste/internal/source"
)

var weeklyCmd = &cobra.Command{
	Use:   "weekly",
	Short: "Build the weekly pre/post service cost summary",
	Example: `  foodwaste weekly --input EVK=evk.csv --input IRC=irc.csv --input UV=uv.xlsx
  foodwaste weekly --from-db --week-label "Week 3"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		inputs, _ := cmd.Flags().GetStringToString("input")
		fromDB, _ := cmd.Flags().GetBool("from-db")
		if len(inputs) == 0 && !fromDB {
			return fmt.Errorf("either --input CODE=PATH or --from-db is required")
		}

		ctx := cmd.Context()
		gen, closeFn, err := report.NewGeneratorFromConfig(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeFn()

		var venues []models.VenueRows
		if fromDB {
			venues, err = loadFromPostgres(ctx, cfg)
		} else {
			venues, err = readWeeklyInputs(gen, inputs)
		}
		if err != nil {
			return err
		}

		doc, err := gen.Weekly(ctx, venues)
		if err != nil {
			return err
		}
		printDocument(cmd, doc)
		return nil
	},
}

func init() {
	weeklyCmd.Flags().StringToString("input", nil, "Venue export as CODE=PATH (csv or xlsx); repeat per venue")
	weeklyCmd.Flags().Bool("from-db", false, "Read venue rows from the Postgres staging table")
	weeklyCmd.Flags().String("week-label", "", "Label appended to the report period, e.g. \"Week 1\"")
	weeklyCmd.Flags().Float64("variance-alert", -0.10, "Variance at or below which a day is highlighted")
	bindFlags(weeklyCmd.Flags(), map[string]string{
		"week_label":               "week-label",
		"variance_alert_threshold": "variance-alert",
	})
	rootCmd.AddCommand(weeklyCmd)
}

func readWeeklyInputs(gen *report.Generator, inputs map[string]string) ([]models.VenueRows, error) {
	bar := progressbar.Default(int64(len(inputs)), "reading exports")
	rows := make(map[string][]models.TransactionRow, len(inputs))
	for code, path := range inputs {
		venueRows, err := source.ReadFile(path, source.WeeklyColumns...)
		if err != nil {
			return nil, fmt.Errorf("venue %s (%s): %w", code, path, err)
		}
		rows[strings.ToUpper(code)] = venueRows
		_ = bar.Add(1)
	}
	return gen.OrderVenues(rows)
}
