package report

import (
	"context"
	"fmt"

	"github.com/chrisdamba/foodwaste/internal/aggregate"
	"github.com/chrisdamba/foodwaste/internal/models"
	"github.com/chrisdamba/foodwaste/internal/workbook"
)

// MonthlyResult holds the intermediate tables of a monthly run.
type MonthlyResult struct {
	Pivots  []*models.CategoryPivot
	Summary *models.ExecutiveSummary
}

// BuildMonthly computes the venue pivots and the executive summary.
func (g *Generator) BuildMonthly(venues []models.VenueRows) (*MonthlyResult, error) {
	result := &MonthlyResult{}
	for _, v := range venues {
		pivot, err := g.agg.CategoryPivot(v.Venue.Code, v.Rows)
		if err != nil {
			return nil, err
		}
		result.Pivots = append(result.Pivots, pivot)
	}
	summary, err := aggregate.ExecutiveSummary(result.Pivots)
	if err != nil {
		return nil, err
	}
	result.Summary = summary
	return result, nil
}

// Monthly generates the over-production summary document.
func (g *Generator) Monthly(ctx context.Context, venues []models.VenueRows) (*Document, error) {
	if len(venues) == 0 {
		return nil, fmt.Errorf("%w: no venues supplied", ErrMissingVenue)
	}
	result, err := g.BuildMonthly(venues)
	if err != nil {
		return nil, err
	}

	sets := make([][]models.TransactionRow, len(venues))
	blocks := make([]workbook.MonthlyBlock, len(venues))
	for i, v := range venues {
		sets[i] = v.Rows
		blocks[i] = workbook.MonthlyBlock{Venue: v.Venue, Pivot: result.Pivots[i]}
	}
	opts := workbook.MonthlyOptions{Organization: g.cfg.Organization, Audience: g.cfg.Audience}
	if from, to, ok := g.agg.DateRange(sets...); ok {
		opts.From, opts.To = from, to
	}

	data, err := workbook.RenderMonthly(result.Summary, blocks, opts)
	if err != nil {
		return nil, err
	}

	runID := g.newRunID()
	doc := &Document{
		RunID:    runID,
		Cadence:  models.CadenceMonthly,
		FileName: g.cfg.MonthlyFileName,
		Data:     data,
		Event: models.ReportGeneratedEvent{
			RunID:       runID,
			Cadence:     models.CadenceMonthly,
			FileName:    g.cfg.MonthlyFileName,
			Venues:      venueCodes(venues),
			PeriodStart: opts.From,
			PeriodEnd:   opts.To,
			TotalCost:   result.Summary.OverProduction(),
			SizeBytes:   len(data),
			GeneratedAt: g.now().UTC(),
		},
	}
	return g.finish(ctx, doc, func(ctx context.Context) error {
		_, err := g.exporter.ExportPivots(ctx, runID, result.Summary, result.Pivots)
		return err
	})
}
