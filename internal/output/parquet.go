package output

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/chrisdamba/foodwaste/internal/cloudwriter"
	"github.com/chrisdamba/foodwaste/internal/models"
)

const (
	PivotTable = "category_pivots"
	DailyTable = "daily_summaries"

	// ExecutiveVenue labels executive summary rows in the pivot export.
	ExecutiveVenue = "ALL"
)

type CategoryRecord struct {
	RunID      string   `parquet:"name=run_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	Venue      string   `parquet:"name=venue, type=BYTE_ARRAY, convertedtype=UTF8"`
	Category   string   `parquet:"name=category, type=BYTE_ARRAY, convertedtype=UTF8"`
	Total      float64  `parquet:"name=total, type=DOUBLE"`
	Percentage *float64 `parquet:"name=percentage, type=DOUBLE, repetitiontype=OPTIONAL"`
}

type DailyRecord struct {
	RunID                string   `parquet:"name=run_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	Venue                string   `parquet:"name=venue, type=BYTE_ARRAY, convertedtype=UTF8"`
	Date                 string   `parquet:"name=date, type=BYTE_ARRAY, convertedtype=UTF8"`
	DayName              string   `parquet:"name=day_name, type=BYTE_ARRAY, convertedtype=UTF8"`
	PreServiceCustomers  float64  `parquet:"name=pre_service_customer_count, type=DOUBLE"`
	PostServiceCustomers float64  `parquet:"name=post_service_customer_count, type=DOUBLE"`
	PreServiceCost       float64  `parquet:"name=pre_service_total_cost, type=DOUBLE"`
	PostServiceCost      float64  `parquet:"name=post_service_total_cost, type=DOUBLE"`
	Revenue              float64  `parquet:"name=revenue, type=DOUBLE"`
	Variance             *float64 `parquet:"name=total_cost_variance, type=DOUBLE, repetitiontype=OPTIONAL"`
	SalesPerPerson       *float64 `parquet:"name=sales_per_person, type=DOUBLE, repetitiontype=OPTIONAL"`
	CostPerPerson        *float64 `parquet:"name=cost_per_person, type=DOUBLE, repetitiontype=OPTIONAL"`
	Margin               *float64 `parquet:"name=margin, type=DOUBLE, repetitiontype=OPTIONAL"`
	MarginPercentage     *float64 `parquet:"name=margin_percentage, type=DOUBLE, repetitiontype=OPTIONAL"`
}

// ParquetExporter writes report tables as parquet files partitioned by
// table and generation date, either under a local folder or to a bucket.
type ParquetExporter struct {
	basePath           string
	folder             string
	cloudWriterFactory cloudwriter.CloudWriterFactory
	cloudBucketName    string
	now                func() time.Time
}

func NewParquetExporter(ctx context.Context, cfg *models.Config) (*ParquetExporter, error) {
	p := &ParquetExporter{
		basePath: cfg.OutputDir,
		folder:   cfg.ParquetExport.Folder,
		now:      time.Now,
	}
	if cfg.OutputDestination == "cloud" {
		factory, err := cloudwriter.NewFactory(ctx, cfg.CloudStorage.Provider, cfg.CloudStorage.Region)
		if err != nil {
			return nil, err
		}
		p.cloudWriterFactory = factory
		p.cloudBucketName = cfg.CloudStorage.BucketName
		p.basePath = cfg.CloudStorage.Prefix
	}
	return p, nil
}

// NewLocalParquetExporter writes under basePath/folder.
func NewLocalParquetExporter(basePath, folder string) *ParquetExporter {
	return &ParquetExporter{basePath: basePath, folder: folder, now: time.Now}
}

// ExportPivots writes the executive summary and every venue pivot to one file.
func (p *ParquetExporter) ExportPivots(ctx context.Context, runID string, summary *models.ExecutiveSummary, pivots []*models.CategoryPivot) (string, error) {
	var records []interface{}
	for _, line := range summary.Lines {
		records = append(records, CategoryRecord{
			RunID: runID, Venue: ExecutiveVenue, Category: line.Category, Total: line.Total, Percentage: line.Percentage,
		})
	}
	for _, pivot := range pivots {
		for _, line := range pivot.Lines {
			records = append(records, CategoryRecord{
				RunID: runID, Venue: pivot.Venue, Category: line.Category, Total: line.Total, Percentage: line.Percentage,
			})
		}
	}
	return p.write(ctx, PivotTable, runID, new(CategoryRecord), records)
}

// ExportWeeks writes each venue's daily rows, Totals row included, joined
// with the matching revenue row.
func (p *ParquetExporter) ExportWeeks(ctx context.Context, runID string, weeks []models.VenueWeek) (string, error) {
	var records []interface{}
	for _, week := range weeks {
		revenue := week.Revenue.All()
		for i, day := range week.Summary.Rows() {
			rec := DailyRecord{
				RunID:                runID,
				Venue:                week.Venue.Code,
				Date:                 day.Label,
				DayName:              day.DayName,
				PreServiceCustomers:  day.PreServiceCustomers,
				PostServiceCustomers: day.PostServiceCustomers,
				PreServiceCost:       day.PreServiceCost,
				PostServiceCost:      day.PostServiceCost,
				Revenue:              day.Revenue,
				Variance:             day.Variance,
			}
			if i < len(revenue) {
				rec.SalesPerPerson = revenue[i].SalesPerPerson
				rec.CostPerPerson = revenue[i].CostPerPerson
				rec.Margin = revenue[i].Margin
				rec.MarginPercentage = revenue[i].MarginPercentage
			}
			records = append(records, rec)
		}
	}
	return p.write(ctx, DailyTable, runID, new(DailyRecord), records)
}

func (p *ParquetExporter) partitionPath(table string) string {
	year, month, day := p.now().Date()
	return fmt.Sprintf("%s/year=%d/month=%02d/day=%02d", table, year, month, day)
}

func (p *ParquetExporter) write(ctx context.Context, table, runID string, schema interface{}, records []interface{}) (string, error) {
	fileName := runID + ".parquet"
	var (
		file     source.ParquetFile
		location string
		err      error
	)
	if p.cloudWriterFactory != nil {
		objectPath := path.Join(p.basePath, p.folder, p.partitionPath(table), fileName)
		cw, err := p.cloudWriterFactory.NewWriter(ctx, p.cloudBucketName, objectPath, "application/vnd.apache.parquet")
		if err != nil {
			return "", fmt.Errorf("failed to create cloud writer: %w", err)
		}
		file = NewCloudParquetFile(cw)
		location = p.cloudBucketName + "/" + objectPath
	} else {
		dir := filepath.Join(p.basePath, p.folder, filepath.FromSlash(p.partitionPath(table)))
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return "", err
		}
		location = filepath.Join(dir, fileName)
		file, err = local.NewLocalFileWriter(location)
		if err != nil {
			return "", fmt.Errorf("failed to create parquet file: %w", err)
		}
	}

	pw, err := writer.NewParquetWriter(file, schema, 4)
	if err != nil {
		_ = file.Close()
		return "", fmt.Errorf("failed to create parquet writer: %w", err)
	}
	for _, rec := range records {
		if err := pw.Write(rec); err != nil {
			_ = file.Close()
			return "", fmt.Errorf("failed to write %s record: %w", table, err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		_ = file.Close()
		return "", fmt.Errorf("failed to finish parquet file: %w", err)
	}
	if err := file.Close(); err != nil {
		return "", err
	}
	log.Debug().Str("table", table).Int("records", len(records)).Str("location", location).Msg("parquet export written")
	return location, nil
}

// CloudParquetFile adapts a CloudWriter to the write-only subset of
// source.ParquetFile the parquet writer uses.
type CloudParquetFile struct {
	cloudWriter cloudwriter.CloudWriter
	offset      int64
}

func NewCloudParquetFile(cloudWriter cloudwriter.CloudWriter) *CloudParquetFile {
	return &CloudParquetFile{cloudWriter: cloudWriter}
}

// Open and Create return the receiver; the object is created by writing.
func (c *CloudParquetFile) Open(string) (source.ParquetFile, error) {
	return c, nil
}

func (c *CloudParquetFile) Create(string) (source.ParquetFile, error) {
	return c, nil
}

func (c *CloudParquetFile) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		c.offset = offset
	case io.SeekCurrent:
		c.offset += offset
	case io.SeekEnd:
		return 0, fmt.Errorf("seek from end not supported for cloud storage")
	}
	return c.offset, nil
}

func (c *CloudParquetFile) Read([]byte) (int, error) {
	return 0, fmt.Errorf("read not supported for cloud storage")
}

func (c *CloudParquetFile) Write(p []byte) (int, error) {
	n, err := c.cloudWriter.Write(p)
	c.offset += int64(n)
	return n, err
}

func (c *CloudParquetFile) Close() error {
	return c.cloudWriter.Close()
}
