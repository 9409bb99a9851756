package aggregate

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/chrisdamba/foodwaste/internal/models"
)

func costRow(course, total string) models.TransactionRow {
	return models.TransactionRow{EventDate: "2025-03-31", CourseName: course, ItemName: "item", TotalCost: total}
}

func mustAggregator(t *testing.T, policy string, exclude ...string) *Aggregator {
	t.Helper()
	a, err := NewAggregator(policy, exclude)
	if err != nil {
		t.Fatalf("NewAggregator(%q) error = %v", policy, err)
	}
	return a
}

func pct(t *testing.T, line models.CategoryLine) float64 {
	t.Helper()
	if line.Percentage == nil {
		t.Fatalf("%s percentage is undefined", line.Category)
	}
	return *line.Percentage
}

func TestCategoryPivot(t *testing.T) {
	tests := []struct {
		name         string
		rows         []models.TransactionRow
		exclude      []string
		validateFunc func(t *testing.T, p *models.CategoryPivot)
	}{
		{
			name: "dispositions add up to over production",
			rows: []models.TransactionRow{
				costRow("**Reused", "10"),
				costRow("**Reused", "20"),
				costRow("**Thrown", "50"),
				costRow("**Donated", "20"),
				costRow("Entrees", "999"),
				costRow("", "5"),
			},
			validateFunc: func(t *testing.T, p *models.CategoryPivot) {
				want := map[string][2]float64{
					models.CategoryReused:         {30, 0.30},
					models.CategoryWaste:          {50, 0.50},
					models.CategoryDonated:        {20, 0.20},
					models.CategoryOverProduction: {100, 1.00},
				}
				for i, line := range p.Lines {
					if line.Category != models.CategoryOrder[i] {
						t.Errorf("line %d = %s, want %s", i, line.Category, models.CategoryOrder[i])
					}
					w := want[line.Category]
					if math.Abs(line.Total-w[0]) > 0.001 {
						t.Errorf("%s total = %v, want %v", line.Category, line.Total, w[0])
					}
					if math.Abs(pct(t, line)-w[1]) > 0.001 {
						t.Errorf("%s percentage = %v, want %v", line.Category, *line.Percentage, w[1])
					}
				}
				if p.Empty {
					t.Error("pivot flagged empty")
				}
			},
		},
		{
			name: "missing category is zero filled",
			rows: []models.TransactionRow{
				costRow("**Reused", "$1,000.00"),
				costRow("**Thrown", "500"),
			},
			validateFunc: func(t *testing.T, p *models.CategoryPivot) {
				donated, _ := p.Line(models.CategoryDonated)
				if donated.Total != 0 || pct(t, donated) != 0 {
					t.Errorf("Donated = %+v, want zero", donated)
				}
				if p.OverProduction() != 1500 {
					t.Errorf("OverProduction = %v, want 1500", p.OverProduction())
				}
				reused, _ := p.Line(models.CategoryReused)
				if pct(t, reused) != 0.67 {
					t.Errorf("Reused percentage = %v, want 0.67", *reused.Percentage)
				}
			},
		},
		{
			name: "over production adds the rounded disposition totals",
			rows: []models.TransactionRow{
				costRow("**Reused", "1.004"),
				costRow("**Waste", "1.004"),
				costRow("**Donated", "2.004"),
			},
			validateFunc: func(t *testing.T, p *models.CategoryPivot) {
				// 4.012 unrounded would give 4.01.
				if p.OverProduction() != 4 {
					t.Errorf("OverProduction = %v, want 4", p.OverProduction())
				}
				reused, _ := p.Line(models.CategoryReused)
				donated, _ := p.Line(models.CategoryDonated)
				if reused.Total != 1 || donated.Total != 2 {
					t.Errorf("Reused = %v, Donated = %v, want 1 and 2", reused.Total, donated.Total)
				}
				if pct(t, reused) != 0.25 || pct(t, donated) != 0.5 {
					t.Errorf("percentages = %v/%v, want 0.25/0.5", *reused.Percentage, *donated.Percentage)
				}
			},
		},
		{
			name: "unknown categories are reported and left out of the total",
			rows: []models.TransactionRow{
				costRow("**Reused", "40"),
				costRow("**Compost", "7.5"),
			},
			validateFunc: func(t *testing.T, p *models.CategoryPivot) {
				if p.OverProduction() != 40 {
					t.Errorf("OverProduction = %v, want 40", p.OverProduction())
				}
				if got := p.Unrecognized["Compost"]; got != 7.5 {
					t.Errorf("Unrecognized[Compost] = %v, want 7.5", got)
				}
			},
		},
		{
			name: "no over-production rows leaves percentages undefined",
			rows: []models.TransactionRow{
				costRow("Entrees", "12"),
			},
			validateFunc: func(t *testing.T, p *models.CategoryPivot) {
				if !p.Empty {
					t.Error("pivot not flagged empty")
				}
				for _, line := range p.Lines {
					if line.Percentage != nil {
						t.Errorf("%s percentage = %v, want undefined", line.Category, *line.Percentage)
					}
				}
			},
		},
		{
			name:    "excluded courses are ignored",
			exclude: []string{"**Donated"},
			rows: []models.TransactionRow{
				costRow("**Reused", "10"),
				costRow("**Donated", "90"),
			},
			validateFunc: func(t *testing.T, p *models.CategoryPivot) {
				if p.OverProduction() != 10 {
					t.Errorf("OverProduction = %v, want 10", p.OverProduction())
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := mustAggregator(t, models.CoercionZeroFill, tt.exclude...)
			p, err := a.CategoryPivot("EVK", tt.rows)
			if err != nil {
				t.Fatalf("CategoryPivot() error = %v", err)
			}
			if len(p.Lines) != len(models.CategoryOrder) {
				t.Fatalf("got %d lines, want %d", len(p.Lines), len(models.CategoryOrder))
			}
			var sum, pctSum float64
			for _, line := range p.Lines[:3] {
				sum += line.Total
			}
			if math.Abs(sum-p.OverProduction()) > 0.01 {
				t.Errorf("dispositions sum to %v, over production is %v", sum, p.OverProduction())
			}
			if !p.Empty {
				for _, line := range p.Lines[:3] {
					pctSum += *line.Percentage
				}
				if math.Abs(pctSum-1) > 0.01 {
					t.Errorf("disposition percentages sum to %v, want 1", pctSum)
				}
			}
			tt.validateFunc(t, p)
		})
	}
}

func TestCategoryPivotStrictPolicy(t *testing.T) {
	rows := []models.TransactionRow{costRow("**Reused", "ten dollars")}

	lenient := mustAggregator(t, models.CoercionZeroFill)
	p, err := lenient.CategoryPivot("IRC", rows)
	if err != nil {
		t.Fatalf("zero-fill CategoryPivot() error = %v", err)
	}
	if p.OverProduction() != 0 {
		t.Errorf("zero-fill OverProduction = %v, want 0", p.OverProduction())
	}

	strict := mustAggregator(t, models.CoercionStrict)
	if _, err := strict.CategoryPivot("IRC", rows); !errors.Is(err, ErrUnparseableValue) {
		t.Errorf("strict CategoryPivot() error = %v, want ErrUnparseableValue", err)
	}
}

func TestExecutiveSummary(t *testing.T) {
	a := mustAggregator(t, models.CoercionZeroFill)
	venues := map[string][]models.TransactionRow{
		"EVK": {costRow("**Reused", "30"), costRow("**Thrown", "50"), costRow("**Donated", "20")},
		"IRC": {costRow("**Reused", "10"), costRow("**Thrown", "10")},
		"UV":  {costRow("**Donated", "80.25")},
	}
	var pivots []*models.CategoryPivot
	var opSum float64
	for _, code := range []string{"EVK", "IRC", "UV"} {
		p, err := a.CategoryPivot(code, venues[code])
		if err != nil {
			t.Fatalf("CategoryPivot(%s) error = %v", code, err)
		}
		opSum += p.OverProduction()
		pivots = append(pivots, p)
	}

	summary, err := ExecutiveSummary(pivots)
	if err != nil {
		t.Fatalf("ExecutiveSummary() error = %v", err)
	}
	if math.Abs(summary.OverProduction()-opSum) > 0.001 {
		t.Errorf("OverProduction = %v, want %v", summary.OverProduction(), opSum)
	}
	donated, _ := summary.Line(models.CategoryDonated)
	if math.Abs(donated.Total-100.25) > 0.001 {
		t.Errorf("Donated total = %v, want 100.25", donated.Total)
	}
	var pctSum float64
	for _, line := range summary.Lines[:3] {
		pctSum += pct(t, line)
	}
	if math.Abs(pctSum-1) > 0.01 {
		t.Errorf("percentages sum to %v, want 1", pctSum)
	}

	t.Run("joins by label not position", func(t *testing.T) {
		reordered := *pivots[1]
		reordered.Lines = []models.CategoryLine{
			pivots[1].Lines[3], pivots[1].Lines[2], pivots[1].Lines[0], pivots[1].Lines[1],
		}
		got, err := ExecutiveSummary([]*models.CategoryPivot{pivots[0], &reordered, pivots[2]})
		if err != nil {
			t.Fatalf("ExecutiveSummary() error = %v", err)
		}
		if !reflect.DeepEqual(got.Lines, summary.Lines) {
			t.Errorf("lines = %+v, want %+v", got.Lines, summary.Lines)
		}
	})

	t.Run("mismatched labels are fatal", func(t *testing.T) {
		broken := *pivots[2]
		broken.Lines = append([]models.CategoryLine(nil), pivots[2].Lines...)
		broken.Lines[1].Category = models.CategoryThrown
		_, err := ExecutiveSummary([]*models.CategoryPivot{pivots[0], &broken})
		if !errors.Is(err, ErrCategoryMismatch) {
			t.Errorf("error = %v, want ErrCategoryMismatch", err)
		}
	})

	t.Run("all zero venues leave percentages undefined", func(t *testing.T) {
		empty, _ := a.CategoryPivot("UV", nil)
		got, err := ExecutiveSummary([]*models.CategoryPivot{empty})
		if err != nil {
			t.Fatalf("ExecutiveSummary() error = %v", err)
		}
		if !got.Empty {
			t.Error("summary not flagged empty")
		}
		for _, line := range got.Lines {
			if line.Percentage != nil {
				t.Errorf("%s percentage defined", line.Category)
			}
		}
	})
}

func TestMonthlyIsDeterministic(t *testing.T) {
	a := mustAggregator(t, models.CoercionZeroFill)
	rows := []models.TransactionRow{
		costRow("**Reused", "0.1"), costRow("**Reused", "0.2"), costRow("**Thrown", "33.333"),
		costRow("**Donated", "12.005"), costRow("**Other", "1"),
	}
	first, err := a.CategoryPivot("EVK", rows)
	if err != nil {
		t.Fatal(err)
	}
	second, err := a.CategoryPivot("EVK", rows)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("pivots differ between runs: %+v vs %+v", first, second)
	}
}

func TestDateRange(t *testing.T) {
	a := mustAggregator(t, models.CoercionZeroFill)
	evk := []models.TransactionRow{{EventDate: "04/06/2025"}, {EventDate: "not a date"}}
	uv := []models.TransactionRow{{EventDate: "2025-03-31 11:30:00"}}

	first, last, ok := a.DateRange(evk, uv)
	if !ok {
		t.Fatal("DateRange() found no dates")
	}
	if got := first.Format("01/02/2006"); got != "03/31/2025" {
		t.Errorf("first = %s, want 03/31/2025", got)
	}
	if got := last.Format("01/02/2006"); got != "04/06/2025" {
		t.Errorf("last = %s, want 04/06/2025", got)
	}

	if _, _, ok := a.DateRange(nil); ok {
		t.Error("DateRange(nil) reported a range")
	}
}
