package report

import (
	"context"
	"fmt"
	"time"

	"github.com/chrisdamba/foodwaste/internal/aggregate"
	"github.com/chrisdamba/foodwaste/internal/models"
	"github.com/chrisdamba/foodwaste/internal/workbook"
)

// BuildWeekly runs the two weekly stages for every venue: the daily summary
// first, then the revenue table derived from it.
func (g *Generator) BuildWeekly(venues []models.VenueRows) ([]models.VenueWeek, error) {
	weeks := make([]models.VenueWeek, 0, len(venues))
	for _, v := range venues {
		summary, err := g.agg.DailySummary(v.Venue.Code, v.Rows)
		if err != nil {
			return nil, fmt.Errorf("venue %s: %w", v.Venue.Code, err)
		}
		weeks = append(weeks, models.VenueWeek{
			Venue:   v.Venue,
			Summary: summary,
			Revenue: aggregate.RevenueTable(summary),
		})
	}
	return weeks, nil
}

// Weekly generates the pre/post service cost document.
func (g *Generator) Weekly(ctx context.Context, venues []models.VenueRows) (*Document, error) {
	if len(venues) == 0 {
		return nil, fmt.Errorf("%w: no venues supplied", ErrMissingVenue)
	}
	weeks, err := g.BuildWeekly(venues)
	if err != nil {
		return nil, err
	}

	data, err := workbook.RenderWeekly(weeks, workbook.WeeklyOptions{
		WeekLabel:     g.cfg.WeekLabel,
		VarianceAlert: g.cfg.VarianceAlertThreshold,
	})
	if err != nil {
		return nil, err
	}

	var (
		start, end time.Time
		postCost   float64
	)
	for _, w := range weeks {
		postCost += w.Summary.Totals.PostServiceCost
		first, last, ok := w.Summary.Period()
		if !ok {
			continue
		}
		if start.IsZero() || first.Before(start) {
			start = first
		}
		if last.After(end) {
			end = last
		}
	}

	runID := g.newRunID()
	doc := &Document{
		RunID:    runID,
		Cadence:  models.CadenceWeekly,
		FileName: g.cfg.WeeklyFileName,
		Data:     data,
		Event: models.ReportGeneratedEvent{
			RunID:       runID,
			Cadence:     models.CadenceWeekly,
			FileName:    g.cfg.WeeklyFileName,
			Venues:      venueCodes(venues),
			PeriodStart: start,
			PeriodEnd:   end,
			TotalCost:   postCost,
			SizeBytes:   len(data),
			GeneratedAt: g.now().UTC(),
		},
	}
	return g.finish(ctx, doc, func(ctx context.Context) error {
		_, err := g.exporter.ExportWeeks(ctx, runID, weeks)
		return err
	})
}
