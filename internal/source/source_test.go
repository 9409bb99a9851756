package source

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/chrisdamba/foodwaste/internal/models"
)

const weeklyCSV = "\ufeffeventdate,srvcrsname,itemname,fcst_prtncount,served_prtncount,sold_prtncount,fcst_custcount,sold_custcount,costprice\n" +
	"2025-03-31,Entrees,Chicken Bowl,120,100,95,300,280,2.15\n" +
	",,,,,,,,\n" +
	"2025-03-31,Revenue,RES _REVENUE_DINNER,0,0,\"1,250.00\",300,280,0\n"

func TestReadCSV(t *testing.T) {
	rows, err := ReadCSV(strings.NewReader(weeklyCSV), WeeklyColumns...)
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].EventDate != "2025-03-31" || rows[0].CostPrice != "2.15" {
		t.Errorf("row 1 = %+v", rows[0])
	}
	if rows[1].SoldPortionCount != "1,250.00" || rows[1].Line != 3 {
		t.Errorf("row 2 = %+v", rows[1])
	}
	if rows[0].TotalCost != "" {
		t.Errorf("absent column read as %q", rows[0].TotalCost)
	}
}

func TestReadCSVMissingColumn(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("srvcrsname,itemname\n**Reused,Rice\n"), MonthlyColumns...)
	if !errors.Is(err, ErrMissingColumn) {
		t.Fatalf("error = %v, want ErrMissingColumn", err)
	}
	if !strings.Contains(err.Error(), models.ColumnTotalCost) {
		t.Errorf("error %q does not name the column", err)
	}

	if _, err := ReadCSV(strings.NewReader("")); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("empty input error = %v, want ErrEmptyInput", err)
	}
}

func TestCSVRoundTrip(t *testing.T) {
	want := []models.TransactionRow{
		{Line: 1, EventDate: "2025-04-01", CourseName: "**Thrown", ItemName: "Pasta, baked", TotalCost: "12.5"},
		{Line: 2, EventDate: "2025-04-02", CourseName: "Deli", ItemName: "Club \"Classic\"", CostPrice: "3"},
	}
	var buf bytes.Buffer
	if err := WriteCSV(&buf, want); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}
	got, err := ReadCSV(&buf, MonthlyColumns...)
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestWorkbookRoundTrip(t *testing.T) {
	venues := []models.VenueRows{
		{Venue: models.Venue{Code: "EVK", Sheet: "EVK"}, Rows: []models.TransactionRow{
			{EventDate: "2025-03-31", CourseName: "**Reused", ItemName: "Rice", TotalCost: "30.25"},
		}},
		{Venue: models.Venue{Code: "IRC", Sheet: "IRC"}, Rows: []models.TransactionRow{
			{EventDate: "2025-03-31", CourseName: "**Thrown", ItemName: "Soup", TotalCost: "5"},
			{EventDate: "2025-04-01", CourseName: "**Donated", ItemName: "Bread", TotalCost: "7.5"},
		}},
	}
	var buf bytes.Buffer
	if err := WriteWorkbook(&buf, venues); err != nil {
		t.Fatalf("WriteWorkbook() error = %v", err)
	}

	got, err := ReadWorkbook(bytes.NewReader(buf.Bytes()), []models.Venue{venues[1].Venue, venues[0].Venue}, MonthlyColumns...)
	if err != nil {
		t.Fatalf("ReadWorkbook() error = %v", err)
	}
	if got[0].Venue.Code != "IRC" || len(got[0].Rows) != 2 {
		t.Fatalf("first venue = %s with %d rows, want IRC with 2", got[0].Venue.Code, len(got[0].Rows))
	}
	if got[0].Rows[1].TotalCost != "7.5" || got[0].Rows[1].CourseName != "**Donated" {
		t.Errorf("IRC row 2 = %+v", got[0].Rows[1])
	}
	if got[1].Rows[0].TotalCost != "30.25" {
		t.Errorf("EVK total = %q, want 30.25", got[1].Rows[0].TotalCost)
	}

	_, err = ReadWorkbook(bytes.NewReader(buf.Bytes()), []models.Venue{{Code: "UV", Sheet: "UV"}})
	if !errors.Is(err, ErrMissingSheet) {
		t.Errorf("error = %v, want ErrMissingSheet", err)
	}
}

func TestReadWorkbookDateSerials(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	_ = f.SetSheetRow(sheet, "A1", &[]interface{}{"eventdate", "srvcrsname", "Total_Cost"})
	// 45747 is 2025-03-31
	_ = f.SetSheetRow(sheet, "A2", &[]interface{}{45747, "**Reused", 10})
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		t.Fatal(err)
	}

	rows, err := ReadFirstSheet(&buf, MonthlyColumns...)
	if err != nil {
		t.Fatalf("ReadFirstSheet() error = %v", err)
	}
	if rows[0].EventDate != "2025-03-31 00:00:00" {
		t.Errorf("EventDate = %q, want 2025-03-31 00:00:00", rows[0].EventDate)
	}
}

func TestSerialToDate(t *testing.T) {
	tests := []struct{ raw, want string }{
		{"45748.5", "2025-04-01 12:00:00"},
		{"04/01/2025", "04/01/2025"},
		{"", ""},
		{"-3", "-3"},
	}
	for _, tt := range tests {
		if got := serialToDate(tt.raw); got != tt.want {
			t.Errorf("serialToDate(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}
