package aggregate

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/chrisdamba/foodwaste/internal/models"
)

func TestQuantile(t *testing.T) {
	hundred := make([]float64, 100)
	for i := range hundred {
		hundred[i] = float64(100 - i)
	}
	tests := []struct {
		name   string
		values []float64
		q      float64
		want   float64
	}{
		{"empty", nil, 0.5, 0},
		{"single value", []float64{4}, 0.99, 4},
		{"median of even count", []float64{4, 1, 3, 2}, 0.5, 2.5},
		{"interpolated 99th", hundred, 0.99, 99.01},
		{"max", hundred, 1, 100},
		{"clamped below zero", hundred, -1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Quantile(tt.values, tt.q); !approx(got, tt.want) {
				t.Errorf("Quantile() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFlagCostOutliers(t *testing.T) {
	var rows []models.TransactionRow
	for i := 1; i <= 100; i++ {
		rows = append(rows, models.TransactionRow{
			Line:       i,
			CourseName: "Entrees",
			ItemName:   fmt.Sprintf("item %d", i),
			CostPrice:  fmt.Sprintf("%d", i),
		})
	}
	rows = append(rows, models.TransactionRow{Line: 101, CourseName: "Bars", CostPrice: "$5,000"})

	a := mustAggregator(t, models.CoercionZeroFill, "Bars")
	outliers, cutoff, err := a.FlagCostOutliers(rows, 0.99)
	if err != nil {
		t.Fatalf("FlagCostOutliers() error = %v", err)
	}
	if !approx(cutoff, 99.01) {
		t.Errorf("cutoff = %v, want 99.01", cutoff)
	}
	if len(outliers) != 1 || outliers[0].Row.Line != 100 {
		t.Fatalf("outliers = %+v, want line 100 only", outliers)
	}

	flat := []models.TransactionRow{{CostPrice: "3"}, {CostPrice: "3"}}
	outliers, _, err = a.FlagCostOutliers(flat, 0.99)
	if err != nil || len(outliers) != 0 {
		t.Errorf("equal prices flagged %d rows (err %v), want none", len(outliers), err)
	}

	strict := mustAggregator(t, models.CoercionStrict)
	if _, _, err := strict.FlagCostOutliers([]models.TransactionRow{{CostPrice: "free"}}, 0.99); !errors.Is(err, ErrUnparseableValue) {
		t.Errorf("strict error = %v, want ErrUnparseableValue", err)
	}
}

func TestExcludeCourses(t *testing.T) {
	rows := []models.TransactionRow{{CourseName: "Bars"}, {CourseName: " Bars "}, {CourseName: "Grill"}}

	a := mustAggregator(t, models.CoercionZeroFill, "Bars")
	if got := a.ExcludeCourses(rows); len(got) != 1 || got[0].CourseName != "Grill" {
		t.Errorf("ExcludeCourses() = %+v, want only Grill", got)
	}
	if len(rows) != 3 {
		t.Error("input rows were modified")
	}

	none := mustAggregator(t, models.CoercionZeroFill)
	if got := none.ExcludeCourses(rows); len(got) != 3 {
		t.Errorf("ExcludeCourses() without exclusions kept %d rows", len(got))
	}
}

func TestCoercer(t *testing.T) {
	if _, err := NewCoercer("lenient"); err == nil {
		t.Error("NewCoercer accepted an unknown policy")
	}
	tests := []struct {
		raw        string
		want       float64
		strictFail bool
	}{
		{"12.5", 12.5, false},
		{"$1,234.50", 1234.5, false},
		{" 7 ", 7, false},
		{"", 0, false},
		{"-3", -3, false},
		{"N/A", 0, true},
	}
	zero, _ := NewCoercer(models.CoercionZeroFill)
	strict, _ := NewCoercer(models.CoercionStrict)
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			d, err := zero.Decimal(tt.raw)
			if err != nil || d.InexactFloat64() != tt.want {
				t.Errorf("zero-fill Decimal(%q) = %v, %v; want %v", tt.raw, d, err, tt.want)
			}
			_, err = strict.Decimal(tt.raw)
			if (err != nil) != tt.strictFail {
				t.Errorf("strict Decimal(%q) error = %v, want failure %v", tt.raw, err, tt.strictFail)
			}
		})
	}
}

func TestCoercerDate(t *testing.T) {
	c, _ := NewCoercer(models.CoercionZeroFill)
	want := time.Date(2025, time.March, 31, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		raw    string
		wantOK bool
	}{
		{"2025-03-31", true},
		{"2025-03-31 14:30:00", true},
		{"2025-03-31 14:30", true},
		{"2025-03-31T14:30:00", true},
		{"3/31/2025", true},
		{"03/31/2025 14:30", true},
		{"3/31/2025 14:30:00", true},
		{"3/31/2025 2:30 PM", true},
		{"03/31/2025 2:30 PM", true},
		{"3/31/2025 2:30:15 PM", true},
		{" 31-Mar-2025 ", true},
		{"someday", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := c.Date(tt.raw)
			if ok != tt.wantOK {
				t.Fatalf("Date(%q) ok = %v, want %v", tt.raw, ok, tt.wantOK)
			}
			if ok && !calendarDate(got).Equal(want) {
				t.Errorf("Date(%q) = %v, want %v", tt.raw, calendarDate(got), want)
			}
		})
	}
}
