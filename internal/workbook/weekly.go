package workbook

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/chrisdamba/foodwaste/internal/aggregate"
	"github.com/chrisdamba/foodwaste/internal/models"
)

const (
	WeeklyTitle = "Pre-Post Service Cost Summary"

	weeklyHeaderRow = 3
	weeklyHeaderBg  = "#D9D9D9"
	weeklyFont      = "Arial"
)

var (
	weeklyHeaders = []string{
		"Day", "Date", "Pre-Service Customer Count", "Post-Service Customer Count",
		"Pre-Service Total Cost", "Post-Service (Prepped) Total", "Total Cost Variance",
	}
	revenueHeaders = []string{"Revenue", "Sales Per Person", "Cost Per Person", "Margin ($)", "Margin (%)"}
	weeklyColumnPx = []int{94, 82, 121, 130, 122, 129, 64}
)

type WeeklyOptions struct {
	WeekLabel     string
	VarianceAlert float64
}

// Subtitle is the period line under a venue's title.
func (o WeeklyOptions) Subtitle(summary *models.DailySummary) string {
	first, last, ok := summary.Period()
	if !ok {
		return fmt.Sprintf("(no service days) - %s", o.WeekLabel)
	}
	return fmt.Sprintf("(%s to %s) - %s", first.Format("1/2/2006"), last.Format("1/2/2006"), o.WeekLabel)
}

// RenderWeekly writes one sheet per venue with the daily cost table and the
// revenue table beneath it.
func RenderWeekly(weeks []models.VenueWeek, opts WeeklyOptions) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	styles := newStyleSet(f)
	for i, week := range weeks {
		sheet := week.Venue.Code
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
				return nil, err
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
		w := &sheetWriter{f: f, sheet: sheet, styles: styles}
		writeWeeklySheet(w, week, opts)
		if w.err != nil {
			return nil, fmt.Errorf("unable to render weekly sheet %s: %w", sheet, w.err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func cellStyle(bold bool, format, fill string) func() *excelize.Style {
	return func() *excelize.Style {
		return &excelize.Style{
			Font:         &excelize.Font{Size: 8, Family: weeklyFont, Bold: bold},
			Border:       thinBorder(),
			Fill:         solidFill(fill),
			Alignment:    &excelize.Alignment{Horizontal: "center", Vertical: "center"},
			CustomNumFmt: numFmt(format),
		}
	}
}

func styleKey(bold bool, format, fill string) string {
	return fmt.Sprintf("weekly-%t-%s-%s", bold, format, fill)
}

func (w *sheetWriter) weeklyCell(col, row int, v interface{}, bold bool, format, fill string) {
	w.styled(col, row, v, styleKey(bold, format, fill), cellStyle(bold, format, fill))
}

func writeWeeklySheet(w *sheetWriter, week models.VenueWeek, opts WeeklyOptions) {
	w.merge(1, 1, 7, 1, WeeklyTitle, "weekly-title", func() *excelize.Style {
		return &excelize.Style{
			Font:      &excelize.Font{Size: 18, Bold: true, Italic: true, Family: weeklyFont},
			Border:    thinBorder(),
			Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		}
	})
	w.rowHeight(1, 23.25)
	subtitle := opts.Subtitle(week.Summary)
	w.merge(1, 2, 6, 2, subtitle, "weekly-subtitle", subtitleStyle)
	w.rowHeight(2, 20)

	for i, h := range weeklyHeaders {
		w.styled(i+1, weeklyHeaderRow, h, "weekly-header", headerStyle)
	}
	for i, px := range weeklyColumnPx {
		col, _ := excelize.ColumnNumberToName(i + 1)
		w.colWidth(col, pixelsToWidth(px))
	}

	row := weeklyHeaderRow
	for _, day := range week.Summary.Rows() {
		row++
		bold := day.IsTotals()
		if bold {
			w.merge(1, row, 2, row, day.Label, "weekly-totals-label", func() *excelize.Style {
				return &excelize.Style{
					Font:      &excelize.Font{Size: 8, Family: weeklyFont, Bold: true},
					Border:    thinBorder(),
					Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
				}
			})
		} else {
			w.weeklyCell(1, row, day.DayName, false, countFormat, "")
			w.weeklyCell(2, row, day.Label, false, countFormat, "")
		}
		w.weeklyCell(3, row, day.PreServiceCustomers, bold, countFormat, "")
		w.weeklyCell(4, row, day.PostServiceCustomers, bold, countFormat, "")
		w.weeklyCell(5, row, round2(day.PreServiceCost), bold, amountFormat, "")
		w.weeklyCell(6, row, round2(day.PostServiceCost), bold, amountFormat, "")
		w.weeklyCell(7, row, optional(day.Variance), false, percentFormat, varianceFill(day.Variance, opts.VarianceAlert))
	}

	row++
	w.merge(1, row, 5, row, "Report Period "+subtitle, "weekly-subtitle", subtitleStyle)
	row++
	for i, h := range revenueHeaders {
		w.styled(i+1, row, h, "weekly-header", headerStyle)
	}
	for _, r := range week.Revenue.All() {
		row++
		bold := r.Label == models.TotalsLabel
		w.weeklyCell(1, row, r.Revenue, bold, amountFormat, "")
		w.weeklyCell(2, row, optional(r.SalesPerPerson), bold, amountFormat, "")
		w.weeklyCell(3, row, optional(r.CostPerPerson), bold, amountFormat, "")
		w.weeklyCell(4, row, optional(r.Margin), bold, amountFormat, "")
		w.weeklyCell(5, row, optional(r.MarginPercentage), false, percentFormat, "")
	}
}

func subtitleStyle() *excelize.Style {
	return &excelize.Style{
		Font:      &excelize.Font{Size: 11, Bold: true, Family: "Calibri"},
		Border:    thinBorder(),
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	}
}

func headerStyle() *excelize.Style {
	return &excelize.Style{
		Font:      &excelize.Font{Size: 8, Italic: true, Family: weeklyFont},
		Border:    thinBorder(),
		Fill:      solidFill(weeklyHeaderBg),
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	}
}

func varianceFill(variance *float64, threshold float64) string {
	switch {
	case variance == nil:
		return ""
	case aggregate.VarianceAlert(variance, threshold):
		return alertFill
	default:
		return okFill
	}
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
