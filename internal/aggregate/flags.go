package aggregate

import (
	"math"
	"sort"
	"strings"

	"github.com/chrisdamba/foodwaste/internal/models"
)

// ExcludeCourses drops rows whose course name is on the aggregator's
// exclusion list. The input slice is not modified.
func (a *Aggregator) ExcludeCourses(rows []models.TransactionRow) []models.TransactionRow {
	if len(a.excluded) == 0 {
		return rows
	}
	kept := make([]models.TransactionRow, 0, len(rows))
	for _, row := range rows {
		if a.excluded[strings.TrimSpace(row.CourseName)] {
			continue
		}
		kept = append(kept, row)
	}
	return kept
}

// CostOutlier is a row whose cost price is above the venue's cutoff.
type CostOutlier struct {
	Row       models.TransactionRow
	CostPrice float64
	Cutoff    float64
}

// FlagCostOutliers returns the rows whose cost price is strictly greater than
// the q-quantile of all cost prices in rows, along with the cutoff.
func (a *Aggregator) FlagCostOutliers(rows []models.TransactionRow, q float64) ([]CostOutlier, float64, error) {
	rows = a.ExcludeCourses(rows)
	if len(rows) == 0 {
		return nil, 0, nil
	}
	prices := make([]float64, len(rows))
	for i, row := range rows {
		d, err := a.coercer.Field(row, models.ColumnCostPrice)
		if err != nil {
			return nil, 0, err
		}
		prices[i] = d.InexactFloat64()
	}

	cutoff := Quantile(prices, q)
	var outliers []CostOutlier
	for i, row := range rows {
		if prices[i] > cutoff {
			outliers = append(outliers, CostOutlier{Row: row, CostPrice: prices[i], Cutoff: cutoff})
		}
	}
	return outliers, cutoff, nil
}

// Quantile returns the q-quantile of values using linear interpolation
// between closest ranks. q is clamped to [0, 1].
func Quantile(values []float64, q float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	q = math.Max(0, math.Min(1, q))

	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}
