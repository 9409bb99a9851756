package aggregate

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/chrisdamba/foodwaste/internal/models"
)

// ErrCategoryMismatch is returned when venue pivots do not share the
// canonical category labels.
var ErrCategoryMismatch = errors.New("category axis mismatch")

// Aggregator runs the monthly and weekly transforms over venue exports.
type Aggregator struct {
	coercer  *Coercer
	excluded map[string]bool
}

// NewAggregator returns an Aggregator using the named coercion policy.
// Rows whose course name is in excludeCourses are ignored by every transform.
func NewAggregator(policy string, excludeCourses []string) (*Aggregator, error) {
	coercer, err := NewCoercer(policy)
	if err != nil {
		return nil, err
	}
	excluded := make(map[string]bool, len(excludeCourses))
	for _, c := range excludeCourses {
		if c = strings.TrimSpace(c); c != "" {
			excluded[c] = true
		}
	}
	return &Aggregator{coercer: coercer, excluded: excluded}, nil
}

// CategoryPivot sums the over-production rows of one venue by disposition.
func (a *Aggregator) CategoryPivot(venue string, rows []models.TransactionRow) (*models.CategoryPivot, error) {
	sums := make(map[string]decimal.Decimal)
	var dropped int
	for _, row := range a.ExcludeCourses(rows) {
		course := strings.TrimSpace(row.CourseName)
		if course == "" {
			dropped++
			continue
		}
		if !strings.HasPrefix(course, models.OverProductionMarker) {
			continue
		}
		category := strings.TrimSpace(strings.ReplaceAll(course, models.OverProductionMarker, ""))
		if category == models.CategoryThrown {
			category = models.CategoryWaste
		}
		cost, err := a.coercer.Field(row, models.ColumnTotalCost)
		if err != nil {
			return nil, fmt.Errorf("venue %s: %w", venue, err)
		}
		sums[category] = sums[category].Add(cost)
	}
	if dropped > 0 {
		log.Debug().Str("venue", venue).Int("rows", dropped).Msg("dropped rows without a course name")
	}

	pivot := &models.CategoryPivot{Venue: venue}
	known := make(map[string]bool, len(models.DispositionCategories))
	overProduction := decimal.Zero
	totals := make(map[string]float64, len(models.CategoryOrder))
	for _, cat := range models.DispositionCategories {
		known[cat] = true
		total := sums[cat].Round(2)
		overProduction = overProduction.Add(total)
		totals[cat] = total.InexactFloat64()
	}
	totals[models.CategoryOverProduction] = overProduction.InexactFloat64()

	for cat, total := range sums {
		if known[cat] {
			continue
		}
		if pivot.Unrecognized == nil {
			pivot.Unrecognized = make(map[string]float64)
		}
		pivot.Unrecognized[cat] = total.Round(2).InexactFloat64()
	}
	if len(pivot.Unrecognized) > 0 {
		log.Warn().Str("venue", venue).Strs("categories", sortedKeys(pivot.Unrecognized)).
			Msg("over-production categories outside the known dispositions were excluded")
	}

	op := totals[models.CategoryOverProduction]
	pivot.Empty = op == 0
	for _, cat := range models.CategoryOrder {
		line := models.CategoryLine{Category: cat, Total: totals[cat]}
		if p := ratio(totals[cat], op); p != nil {
			rounded := round2(*p)
			line.Percentage = &rounded
		}
		pivot.Lines = append(pivot.Lines, line)
	}
	return pivot, nil
}

// ExecutiveSummary adds the venue pivots together category by category.
func ExecutiveSummary(pivots []*models.CategoryPivot) (*models.ExecutiveSummary, error) {
	totals := make(map[string]decimal.Decimal, len(models.CategoryOrder))
	summary := &models.ExecutiveSummary{}
	for _, pivot := range pivots {
		if err := checkCategoryAxis(pivot); err != nil {
			return nil, err
		}
		summary.Venues = append(summary.Venues, pivot.Venue)
		for _, line := range pivot.Lines {
			totals[line.Category] = totals[line.Category].Add(decimal.NewFromFloat(line.Total))
		}
	}

	op := totals[models.CategoryOverProduction].Round(2).InexactFloat64()
	summary.Empty = op == 0
	for _, cat := range models.CategoryOrder {
		total := totals[cat].Round(2).InexactFloat64()
		summary.Lines = append(summary.Lines, models.CategoryLine{
			Category:   cat,
			Total:      total,
			Percentage: ratio(total, op),
		})
	}
	return summary, nil
}

func checkCategoryAxis(pivot *models.CategoryPivot) error {
	labels := make([]string, 0, len(pivot.Lines))
	seen := make(map[string]bool, len(pivot.Lines))
	for _, line := range pivot.Lines {
		labels = append(labels, line.Category)
		seen[line.Category] = true
	}
	ok := len(pivot.Lines) == len(models.CategoryOrder) && len(seen) == len(models.CategoryOrder)
	for _, cat := range models.CategoryOrder {
		ok = ok && seen[cat]
	}
	if !ok {
		return fmt.Errorf("%w: venue %s has categories %v, want %v",
			ErrCategoryMismatch, pivot.Venue, labels, models.CategoryOrder)
	}
	return nil
}

// DateRange returns the earliest and latest parseable event dates across
// all row sets.
func (a *Aggregator) DateRange(sets ...[]models.TransactionRow) (time.Time, time.Time, bool) {
	var first, last time.Time
	found := false
	for _, rows := range sets {
		for _, row := range rows {
			t, ok := a.coercer.Date(row.EventDate)
			if !ok {
				continue
			}
			t = calendarDate(t)
			if !found || t.Before(first) {
				first = t
			}
			if !found || t.After(last) {
				last = t
			}
			found = true
		}
	}
	return first, last, found
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
