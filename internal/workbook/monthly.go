package workbook

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/chrisdamba/foodwaste/internal/models"
)

const (
	MonthlySheet = "Over Production Summary"

	headerBand    = "#7B1FA2"
	subheaderBand = "#DCE6F1"
	execHeader    = "#2F75B5"
	execData      = "#DCE6F1"

	execHeaderRow = 4
	blockGap      = 10
)

// MonthlyBlock is one venue's section of the monthly document.
type MonthlyBlock struct {
	Venue models.Venue
	Pivot *models.CategoryPivot
}

type MonthlyOptions struct {
	Organization string
	Audience     string
	// From and To bound the reporting period; a zero From omits the range.
	From, To time.Time
}

// Title is the header band text.
func (o MonthlyOptions) Title() string {
	title := fmt.Sprintf("%s - Over Production Monthly Summary", o.Organization)
	if o.From.IsZero() {
		return title
	}
	return fmt.Sprintf("%s (%s - %s)", title, o.From.Format("01/02/2006"), o.To.Format("01/02/2006"))
}

// RenderMonthly lays out the executive summary and the venue blocks on a
// single sheet and returns the encoded workbook.
func RenderMonthly(summary *models.ExecutiveSummary, blocks []MonthlyBlock, opts MonthlyOptions) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), MonthlySheet); err != nil {
		return nil, err
	}
	w := &sheetWriter{f: f, sheet: MonthlySheet, styles: newStyleSet(f)}

	w.merge(1, 1, 8, 1, opts.Title(), "header", func() *excelize.Style {
		return &excelize.Style{
			Font: &excelize.Font{Size: 14, Color: "FFFFFF"},
			Fill: solidFill(headerBand),
		}
	})
	w.merge(1, 2, 8, 2, opts.Audience, "subheader", func() *excelize.Style {
		return &excelize.Style{
			Font:      &excelize.Font{Size: 18},
			Fill:      solidFill(subheaderBand),
			Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		}
	})
	w.colWidth("A", 15)
	w.colWidth("B", 18)
	w.colWidth("C", 15)
	w.colWidth("D", 5)
	for _, col := range []string{"E", "F", "G", "H", "I"} {
		w.colWidth(col, 15)
	}

	palette := tablePalette{key: "exec", header: execHeader, headerFont: "FFFFFF", data: execData}
	end := writeCategoryTable(w, execHeaderRow, []string{"Category", "Total", "Percentage"}, summary.Lines, palette)
	w.chart(cellName(5, execHeaderRow), pieChart("Executive Summary", execHeaderRow+1, end-1))

	row := end + blockGap
	for _, block := range blocks {
		key := "block-" + block.Venue.Code
		w.merge(1, row, 8, row, block.Venue.BlockTitle(), key+"-band", func() *excelize.Style {
			return &excelize.Style{
				Font:      &excelize.Font{Size: 18},
				Fill:      solidFill(block.Venue.BandColor),
				Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
			}
		})
		palette := tablePalette{key: key, header: block.Venue.HeaderColor, data: block.Venue.DataColor}
		end := writeCategoryTable(w, row+1, []string{"Category", "Cost", "Percentage"}, block.Pivot.Lines, palette)
		w.chart(cellName(5, row+2), pieChart("", row+2, end-1))
		row = end + 1 + blockGap
	}

	if w.err != nil {
		return nil, fmt.Errorf("unable to render monthly summary: %w", w.err)
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type tablePalette struct {
	key        string
	header     string
	headerFont string
	data       string
}

// writeCategoryTable writes a header row at headerRow followed by one row
// per category line and returns the row of the last line. The Over
// Production row is left unshaded.
func writeCategoryTable(w *sheetWriter, headerRow int, headers []string, lines []models.CategoryLine, p tablePalette) int {
	for i, h := range headers {
		w.styled(i+1, headerRow, h, p.key+"-header", func() *excelize.Style {
			style := &excelize.Style{
				Fill:      solidFill(p.header),
				Alignment: &excelize.Alignment{Horizontal: "center"},
			}
			if p.headerFont != "" {
				style.Font = &excelize.Font{Color: p.headerFont}
			}
			return style
		})
	}

	row := headerRow
	for _, line := range lines {
		row++
		fill, key := p.data, p.key
		if line.Category == models.CategoryOverProduction {
			fill, key = "", "total"
		}
		w.styled(1, row, line.Category, key+"-label", func() *excelize.Style {
			return &excelize.Style{Fill: solidFill(fill)}
		})
		w.styled(2, row, line.Total, key+"-currency", func() *excelize.Style {
			return &excelize.Style{Fill: solidFill(fill), CustomNumFmt: numFmt(currencyFormat)}
		})
		w.styled(3, row, optional(line.Percentage), key+"-percent", func() *excelize.Style {
			return &excelize.Style{Fill: solidFill(fill), CustomNumFmt: numFmt(percentFormat)}
		})
	}
	return row
}

// pieChart plots the percentage column of the disposition rows firstRow
// through lastRow.
func pieChart(title string, firstRow, lastRow int) *excelize.Chart {
	ref := func(col string) string {
		return fmt.Sprintf("'%s'!$%s$%d:$%s$%d", MonthlySheet, col, firstRow, col, lastRow)
	}
	chart := &excelize.Chart{
		Type: excelize.Pie,
		Series: []excelize.ChartSeries{
			{Name: title, Categories: ref("A"), Values: ref("C")},
		},
		Format:    excelize.GraphicOptions{OffsetX: 25},
		Dimension: excelize.ChartDimension{Width: 340, Height: 220},
		Legend:    excelize.ChartLegend{Position: "right"},
		PlotArea: excelize.ChartPlotArea{
			ShowVal: true,
			NumFmt:  excelize.ChartNumFmt{CustomNumFmt: percentFormat},
		},
	}
	if title != "" {
		chart.Title = []excelize.RichTextRun{{Text: title}}
	}
	return chart
}
