package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/chrisdamba/foodwaste/internal/factories"
	"github.com/chrisdamba/foodwaste/internal/models"
	"github.com/chrisdamba/foodwaste/internal/source"
)

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Generate synthetic venue exports",
	Long: `Generates deterministic venue exports for every configured venue: a
monthly workbook with one sheet per venue plus one CSV per venue. With
--load-db the rows are also staged in Postgres.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		seed, _ := cmd.Flags().GetInt64("seed")
		start, _ := cmd.Flags().GetString("start-date")
		days, _ := cmd.Flags().GetInt("days")
		outDir, _ := cmd.Flags().GetString("out")
		loadDB, _ := cmd.Flags().GetBool("load-db")

		from, err := time.Parse("2006-01-02", start)
		if err != nil {
			return fmt.Errorf("invalid --start-date: %w", err)
		}
		if days < 1 {
			return fmt.Errorf("--days must be at least 1")
		}
		if err := os.MkdirAll(outDir, os.ModePerm); err != nil {
			return err
		}

		bar := progressbar.Default(int64(len(cfg.Venues)), "generating venues")
		venues := make([]models.VenueRows, 0, len(cfg.Venues))
		for i, v := range cfg.Venues {
			rows := factories.NewTransactionFactory(seed + int64(i)).CreateVenueExport(from, days)
			venues = append(venues, models.VenueRows{Venue: v, Rows: rows})
			if err := writeCSVFile(filepath.Join(outDir, strings.ToLower(v.Code)+".csv"), rows); err != nil {
				return err
			}
			_ = bar.Add(1)
		}

		workbookPath := filepath.Join(outDir, "monthly.xlsx")
		f, err := os.Create(workbookPath)
		if err != nil {
			return err
		}
		if err := source.WriteWorkbook(f, venues); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		log.Info().Str("dir", outDir).Int("venues", len(venues)).Int("days", days).Msg("sample exports written")

		if loadDB {
			return stageInPostgres(cmd, venues)
		}
		return nil
	},
}

func init() {
	sampleCmd.Flags().Int64("seed", 42, "Random seed")
	sampleCmd.Flags().String("start-date", time.Now().AddDate(0, 0, -7).Format("2006-01-02"), "First service day (YYYY-MM-DD)")
	sampleCmd.Flags().Int("days", 7, "Number of service days")
	sampleCmd.Flags().String("out", "sample", "Output directory")
	sampleCmd.Flags().Bool("load-db", false, "Also stage the rows in Postgres, replacing each venue's previous rows")
	rootCmd.AddCommand(sampleCmd)
}

func writeCSVFile(path string, rows []models.TransactionRow) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := source.WriteCSV(f, rows); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func stageInPostgres(cmd *cobra.Command, venues []models.VenueRows) error {
	if cfg.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required with --load-db")
	}
	ctx := cmd.Context()
	pool, err := source.Connect(ctx, cfg.Database.DSN)
	if err != nil {
		return err
	}
	defer pool.Close()

	src := source.NewPostgresSource(pool, cfg.Database.Table)
	if err := src.EnsureTable(ctx); err != nil {
		return err
	}
	for _, v := range venues {
		if err := src.DeleteVenue(ctx, v.Venue.Code); err != nil {
			return err
		}
		if err := src.BulkCreate(ctx, v.Venue.Code, v.Rows); err != nil {
			return err
		}
		log.Info().Str("venue", v.Venue.Code).Int("rows", len(v.Rows)).Msg("staged venue rows")
	}
	return nil
}
