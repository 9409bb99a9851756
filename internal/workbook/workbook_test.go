package workbook

import (
	"bytes"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/chrisdamba/foodwaste/internal/aggregate"
	"github.com/chrisdamba/foodwaste/internal/models"
)

func open(t *testing.T, doc []byte) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(doc))
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func raw(t *testing.T, f *excelize.File, sheet, cell string) string {
	t.Helper()
	v, err := f.GetCellValue(sheet, cell, excelize.Options{RawCellValue: true})
	if err != nil {
		t.Fatalf("GetCellValue(%s) error = %v", cell, err)
	}
	return v
}

func pivotFor(t *testing.T, a *aggregate.Aggregator, venue string, totals ...string) *models.CategoryPivot {
	t.Helper()
	courses := []string{"**Reused", "**Thrown", "**Donated"}
	var rows []models.TransactionRow
	for i, total := range totals {
		rows = append(rows, models.TransactionRow{CourseName: courses[i], TotalCost: total})
	}
	p, err := a.CategoryPivot(venue, rows)
	if err != nil {
		t.Fatalf("CategoryPivot() error = %v", err)
	}
	return p
}

func TestRenderMonthly(t *testing.T) {
	a, _ := aggregate.NewAggregator(models.CoercionZeroFill, nil)
	venues := models.DefaultVenues()
	blocks := []MonthlyBlock{
		{Venue: venues[0], Pivot: pivotFor(t, a, "EVK", "30", "50", "20")},
		{Venue: venues[1], Pivot: pivotFor(t, a, "IRC", "10", "10", "0")},
		{Venue: venues[2], Pivot: pivotFor(t, a, "UV")},
	}
	pivots := []*models.CategoryPivot{blocks[0].Pivot, blocks[1].Pivot, blocks[2].Pivot}
	summary, err := aggregate.ExecutiveSummary(pivots)
	if err != nil {
		t.Fatal(err)
	}
	opts := MonthlyOptions{
		Organization: "USC Hospitality",
		Audience:     "Residential (All units)",
		From:         time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		To:           time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
	}

	doc, err := RenderMonthly(summary, blocks, opts)
	if err != nil {
		t.Fatalf("RenderMonthly() error = %v", err)
	}
	f := open(t, doc)
	if got := f.GetSheetList(); len(got) != 1 || got[0] != MonthlySheet {
		t.Fatalf("sheets = %v, want [%s]", got, MonthlySheet)
	}

	tests := []struct {
		cell string
		want string
	}{
		{"A1", "USC Hospitality - Over Production Monthly Summary (03/01/2025 - 03/31/2025)"},
		{"A2", "Residential (All units)"},
		{"A4", "Category"},
		{"B4", "Total"},
		{"A5", "Reused"},
		{"B5", "40"},
		{"A8", "Over Production"},
		{"B8", "120"},
		{"C8", "1"},
		{"A18", "EVK Breakdown"},
		{"B19", "Cost"},
		{"B20", "30"},
		{"C21", "0.5"},
		{"A34", "IRC Breakdown"},
		{"C38", "0"},
		{"A50", "UV Breakdown"},
		{"B55", "0"},
		// undefined percentages stay blank
		{"C55", ""},
	}
	for _, tt := range tests {
		if got := raw(t, f, MonthlySheet, tt.cell); got != tt.want {
			t.Errorf("%s = %q, want %q", tt.cell, got, tt.want)
		}
	}

	merged, err := f.GetMergeCells(MonthlySheet)
	if err != nil {
		t.Fatal(err)
	}
	if len(merged) != 5 {
		t.Errorf("got %d merged ranges, want 5", len(merged))
	}
	if merged[0].GetStartAxis() != "A1" || merged[0].GetEndAxis() != "H1" {
		t.Errorf("header band spans %s:%s, want A1:H1", merged[0].GetStartAxis(), merged[0].GetEndAxis())
	}
}

func TestMonthlyTitleWithoutRange(t *testing.T) {
	opts := MonthlyOptions{Organization: "USC Hospitality"}
	if got, want := opts.Title(), "USC Hospitality - Over Production Monthly Summary"; got != want {
		t.Errorf("Title() = %q, want %q", got, want)
	}
}

func weekFor(t *testing.T, venue models.Venue, rows []models.TransactionRow) models.VenueWeek {
	t.Helper()
	a, _ := aggregate.NewAggregator(models.CoercionZeroFill, nil)
	summary, err := a.DailySummary(venue.Code, rows)
	if err != nil {
		t.Fatal(err)
	}
	return models.VenueWeek{Venue: venue, Summary: summary, Revenue: aggregate.RevenueTable(summary)}
}

func day(date, fcst, served, cust string) models.TransactionRow {
	return models.TransactionRow{
		EventDate: date, CourseName: "Grill", ItemName: "Burger",
		ForecastPortionCount: fcst, ServedPortionCount: served, CostPrice: "1",
		ForecastCustomerCount: cust, SoldCustomerCount: cust,
	}
}

func TestRenderWeekly(t *testing.T) {
	venues := models.DefaultVenues()
	weeks := []models.VenueWeek{
		weekFor(t, venues[0], []models.TransactionRow{
			day("2025-03-31", "100", "90", "10"),
			day("2025-04-01", "200", "250", "20"),
			day("2025-04-02", "300", "280", "30"),
			{EventDate: "2025-04-01", ItemName: models.RevenueItemPrefix + "LUNCH", SoldPortionCount: "400", SoldCustomerCount: "20"},
		}),
		weekFor(t, venues[1], []models.TransactionRow{
			day("2025-03-31", "0", "5", "0"),
		}),
	}
	opts := WeeklyOptions{WeekLabel: "Week 1", VarianceAlert: aggregate.DefaultVarianceAlert}

	doc, err := RenderWeekly(weeks, opts)
	if err != nil {
		t.Fatalf("RenderWeekly() error = %v", err)
	}
	f := open(t, doc)
	if got := f.GetSheetList(); len(got) != 2 || got[0] != "EVK" || got[1] != "IRC" {
		t.Fatalf("sheets = %v, want [EVK IRC]", got)
	}

	tests := []struct {
		cell string
		want string
	}{
		{"A1", WeeklyTitle},
		{"A2", "(3/31/2025 to 4/2/2025) - Week 1"},
		{"C3", "Pre-Service Customer Count"},
		{"A4", "Monday"},
		{"B4", "03/31/2025"},
		{"E4", "100"},
		{"G4", "-0.1"},
		{"A7", "Totals"},
		{"E7", "600"},
		{"F7", "620"},
		{"A8", "Report Period (3/31/2025 to 4/2/2025) - Week 1"},
		{"A9", "Revenue"},
		{"E9", "Margin (%)"},
		{"A11", "400"},
		{"B11", "20"},
		{"A13", "400"},
	}
	for _, tt := range tests {
		if got := raw(t, f, "EVK", tt.cell); got != tt.want {
			t.Errorf("EVK %s = %q, want %q", tt.cell, got, tt.want)
		}
	}

	alert, _ := f.GetCellStyle("EVK", "G4")
	ok, _ := f.GetCellStyle("EVK", "G5")
	totals, _ := f.GetCellStyle("EVK", "G7")
	if alert == ok {
		t.Error("alert and non-alert variances share a style")
	}
	if totals != ok {
		t.Error("totals variance above the threshold is not styled like other non-alert rows")
	}

	if got := raw(t, f, "IRC", "G4"); got != "" {
		t.Errorf("IRC undefined variance = %q, want blank", got)
	}
	blank, _ := f.GetCellStyle("IRC", "G4")
	if blank == ok || blank == alert {
		t.Error("undefined variance carries a highlight")
	}
	if got := raw(t, f, "IRC", "B9"); got != "" {
		t.Errorf("IRC sales per person = %q, want blank", got)
	}
}
