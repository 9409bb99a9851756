package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/chrisdamba/foodwaste/internal/models"
	"github.com/chrisdamba/foodwaste/internal/report"
	"github.com/chrisdamba/foodwaste/internal/source"
)

var monthlyCmd = &cobra.Command{
	Use:   "monthly",
	Short: "Build the monthly over-production summary",
	Long: `Reads one sheet per configured venue from a monthly workbook (or the
venue rows staged in Postgres) and writes the over-production summary.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		input, _ := cmd.Flags().GetString("input")
		fromDB, _ := cmd.Flags().GetBool("from-db")
		if input == "" && !fromDB {
			return fmt.Errorf("either --input or --from-db is required")
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
			venues, err = readMonthlyInput(gen, input)
		}
		if err != nil {
			return err
		}

		doc, err := gen.Monthly(ctx, venues)
		if err != nil {
			return err
		}
		printDocument(cmd, doc)
		return nil
	},
}

func init() {
	monthlyCmd.Flags().StringP("input", "i", "", "Monthly workbook with one sheet per venue")
	monthlyCmd.Flags().Bool("from-db", false, "Read venue rows from the Postgres staging table")
	monthlyCmd.Flags().String("organization", "", "Organization named in the report title")
	monthlyCmd.Flags().String("audience", "", "Audience line under the report title")
	bindFlags(monthlyCmd.Flags(), map[string]string{
		"organization": "organization",
		"audience":     "audience",
	})
	rootCmd.AddCommand(monthlyCmd)
}

func readMonthlyInput(gen *report.Generator, path string) ([]models.VenueRows, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return gen.ReadMonthlyWorkbook(f)
}

func loadFromPostgres(ctx context.Context, cfg *models.Config) ([]models.VenueRows, error) {
	if cfg.Database.DSN == "" {
		return nil, fmt.Errorf("database.dsn is required to read from Postgres")
	}
	pool, err := source.Connect(ctx, cfg.Database.DSN)
	if err != nil {
		return nil, err
	}
	defer pool.Close()

	src := source.NewPostgresSource(pool, cfg.Database.Table)
	bar := progressbar.Default(int64(len(cfg.Venues)), "loading venues")
	return src.Load(ctx, cfg.Venues, func(models.Venue) { _ = bar.Add(1) })
}

func printDocument(cmd *cobra.Command, doc *report.Document) {
	log.Info().Str("run_id", doc.RunID).Str("location", doc.Location).Msg("done")
	if doc.Location != "" {
		fmt.Fprintln(cmd.OutOrStdout(), doc.Location)
	}
}
