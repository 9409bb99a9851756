// Package report runs the monthly and weekly pipelines end to end.
package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/lucsky/cuid"
	"github.com/rs/zerolog/log"

	"github.com/chrisdamba/foodwaste/internal/aggregate"
	"github.com/chrisdamba/foodwaste/internal/models"
	"github.com/chrisdamba/foodwaste/internal/notify"
	"github.com/chrisdamba/foodwaste/internal/output"
	"github.com/chrisdamba/foodwaste/internal/source"
)

// ErrMissingVenue is returned when a configured venue has no input.
var ErrMissingVenue = errors.New("missing venue input")

// Document is a generated report.
type Document struct {
	RunID    string
	Cadence  string
	FileName string
	Data     []byte
	// Location is where the destination stored the document, if anywhere.
	Location string
	Event    models.ReportGeneratedEvent
}

// Generator builds monthly and weekly reports and hands them to the
// configured sinks.
type Generator struct {
	cfg         *models.Config
	agg         *aggregate.Aggregator
	destination output.Destination
	exporter    *output.ParquetExporter
	publisher   notify.Publisher
	now         func() time.Time
	newRunID    func() string
}

// Option configures a Generator.
type Option func(*Generator)

// WithDestination stores rendered workbooks at d.
func WithDestination(d output.Destination) Option {
	return func(g *Generator) { g.destination = d }
}

// WithParquetExporter writes the aggregated tables to parquet as well.
func WithParquetExporter(p *output.ParquetExporter) Option {
	return func(g *Generator) { g.exporter = p }
}

// WithPublisher announces each generated report through p.
func WithPublisher(p notify.Publisher) Option {
	return func(g *Generator) { g.publisher = p }
}

// WithClock overrides the clock used to stamp generated reports.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// NewGenerator returns a Generator with no sinks unless options add them.
func NewGenerator(cfg *models.Config, opts ...Option) (*Generator, error) {
	agg, err := aggregate.NewAggregator(cfg.CoercionPolicy, cfg.ExcludeCourses)
	if err != nil {
		return nil, err
	}
	g := &Generator{cfg: cfg, agg: agg, now: time.Now, newRunID: cuid.New}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// NewGeneratorFromConfig wires the sinks cfg enables. The returned close
// function releases the publisher.
func NewGeneratorFromConfig(ctx context.Context, cfg *models.Config) (*Generator, func() error, error) {
	var opts []Option
	dest, err := output.NewDestination(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	if dest != nil {
		opts = append(opts, WithDestination(dest))
	}
	if cfg.ParquetExport.Enabled {
		exporter, err := output.NewParquetExporter(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, WithParquetExporter(exporter))
	}
	publisher, err := notify.NewPublisher(ctx, cfg.Notifications)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() error { return nil }
	if publisher != nil {
		opts = append(opts, WithPublisher(publisher))
		closeFn = publisher.Close
	}
	g, err := NewGenerator(cfg, opts...)
	if err != nil {
		_ = closeFn()
		return nil, nil, err
	}
	return g, closeFn, nil
}

// Config returns the configuration the Generator was built with.
func (g *Generator) Config() *models.Config {
	return g.cfg
}

// OrderVenues arranges per-venue inputs in configured venue order. Codes
// match case-insensitively; every configured venue must be present.
func (g *Generator) OrderVenues(inputs map[string][]models.TransactionRow) ([]models.VenueRows, error) {
	byCode := make(map[string][]models.TransactionRow, len(inputs))
	for code, rows := range inputs {
		byCode[strings.ToUpper(code)] = rows
	}
	out := make([]models.VenueRows, 0, len(g.cfg.Venues))
	var missing []string
	for _, v := range g.cfg.Venues {
		rows, ok := byCode[strings.ToUpper(v.Code)]
		if !ok {
			missing = append(missing, v.Code)
			continue
		}
		out = append(out, models.VenueRows{Venue: v, Rows: rows})
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingVenue, strings.Join(missing, ", "))
	}
	return out, nil
}

// ReadMonthlyWorkbook reads every configured venue's sheet.
func (g *Generator) ReadMonthlyWorkbook(r io.Reader) ([]models.VenueRows, error) {
	return source.ReadWorkbook(r, g.cfg.Venues, source.MonthlyColumns...)
}

func venueCodes(venues []models.VenueRows) []string {
	codes := make([]string, len(venues))
	for i, v := range venues {
		codes[i] = v.Venue.Code
	}
	return codes
}

// finish sends a rendered document through the configured sinks. Any sink
// failure fails the whole generation.
func (g *Generator) finish(ctx context.Context, doc *Document, export func(ctx context.Context) error) (*Document, error) {
	if g.destination != nil {
		location, err := g.destination.Save(ctx, doc.FileName, doc.Data)
		if err != nil {
			return nil, fmt.Errorf("unable to store %s: %w", doc.FileName, err)
		}
		doc.Location = location
		doc.Event.Location = location
	}
	if g.exporter != nil {
		if err := export(ctx); err != nil {
			return nil, fmt.Errorf("parquet export failed: %w", err)
		}
	}
	if g.publisher != nil {
		if err := g.publisher.Publish(ctx, doc.Event); err != nil {
			return nil, fmt.Errorf("unable to publish report event: %w", err)
		}
	}

	log.Info().
		Str("run_id", doc.RunID).
		Str("cadence", doc.Cadence).
		Str("file", doc.FileName).
		Str("location", doc.Location).
		Int("bytes", len(doc.Data)).
		Msg("report generated")
	return doc, nil
}
