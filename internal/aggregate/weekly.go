package aggregate

import (
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/chrisdamba/foodwaste/internal/models"
)

// DefaultVarianceAlert is the variance at or below which a day is flagged.
const DefaultVarianceAlert = -0.10

type dayTotals struct {
	preCost, postCost float64
	revenue           float64
	preCustomers      map[customerKey]bool
	postCustomers     map[customerKey]bool
}

// customerKey identifies a customer count by the timestamp it was recorded
// at. Rows repeating the same count at the same instant count once.
type customerKey struct {
	at    time.Time
	count float64
}

// DailySummary aggregates one venue's weekly export into a row per calendar
// date followed by a Totals row.
func (a *Aggregator) DailySummary(venue string, rows []models.TransactionRow) (*models.DailySummary, error) {
	excluded := make(map[string]bool, len(models.WeeklyExcludedCourses))
	for _, c := range models.WeeklyExcludedCourses {
		excluded[c] = true
	}

	summary := &models.DailySummary{Venue: venue}
	days := make(map[time.Time]*dayTotals)
	for _, row := range a.ExcludeCourses(rows) {
		if excluded[strings.TrimSpace(row.CourseName)] {
			continue
		}
		t, ok := a.coercer.Date(row.EventDate)
		if !ok {
			summary.DroppedRows++
			continue
		}
		date := calendarDate(t)

		values, err := a.weeklyValues(row)
		if err != nil {
			return nil, err
		}
		day, ok := days[date]
		if !ok {
			day = &dayTotals{preCustomers: map[customerKey]bool{}, postCustomers: map[customerKey]bool{}}
			days[date] = day
		}
		day.preCost += values.forecast * values.costPrice
		day.postCost += values.served * values.costPrice
		day.preCustomers[customerKey{at: t.UTC(), count: values.forecastCustomers}] = true
		day.postCustomers[customerKey{at: t.UTC(), count: values.soldCustomers}] = true
		if strings.HasPrefix(strings.TrimSpace(row.ItemName), models.RevenueItemPrefix) {
			day.revenue += values.sold
		}
	}
	if summary.DroppedRows > 0 {
		log.Debug().Str("venue", venue).Int("rows", summary.DroppedRows).Msg("dropped rows with unparseable event dates")
	}

	dates := make([]time.Time, 0, len(days))
	for d := range days {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	totals := models.DailyRow{Label: models.TotalsLabel, DayName: models.TotalsLabel}
	for _, date := range dates {
		day := days[date]
		row := models.DailyRow{
			Date:                 date,
			Label:                date.Format("01/02/2006"),
			DayName:              date.Weekday().String(),
			PreServiceCustomers:  sumKeys(day.preCustomers),
			PostServiceCustomers: sumKeys(day.postCustomers),
			PreServiceCost:       day.preCost,
			PostServiceCost:      day.postCost,
			Revenue:              day.revenue,
		}
		row.Variance = variance(row)
		summary.Days = append(summary.Days, row)

		totals.PreServiceCustomers += row.PreServiceCustomers
		totals.PostServiceCustomers += row.PostServiceCustomers
		totals.PreServiceCost += row.PreServiceCost
		totals.PostServiceCost += row.PostServiceCost
		totals.Revenue += row.Revenue
	}
	totals.Variance = variance(totals)
	summary.Totals = totals
	return summary, nil
}

type weeklyRowValues struct {
	forecast, served, sold           float64
	forecastCustomers, soldCustomers float64
	costPrice                        float64
}

func (a *Aggregator) weeklyValues(row models.TransactionRow) (weeklyRowValues, error) {
	var v weeklyRowValues
	targets := []struct {
		column string
		dst    *float64
	}{
		{models.ColumnForecastPortionCount, &v.forecast},
		{models.ColumnServedPortionCount, &v.served},
		{models.ColumnSoldPortionCount, &v.sold},
		{models.ColumnForecastCustomerCount, &v.forecastCustomers},
		{models.ColumnSoldCustomerCount, &v.soldCustomers},
		{models.ColumnCostPrice, &v.costPrice},
	}
	for _, target := range targets {
		d, err := a.coercer.Field(row, target.column)
		if err != nil {
			return weeklyRowValues{}, err
		}
		*target.dst = d.InexactFloat64()
	}
	return v, nil
}

func variance(row models.DailyRow) *float64 {
	return ratio(row.PostServiceCost-row.PreServiceCost, row.PreServiceCost)
}

// sumKeys adds the distinct customer counts of a day in timestamp order so
// the float sum does not depend on map iteration.
func sumKeys(m map[customerKey]bool) float64 {
	keys := make([]customerKey, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if !keys[i].at.Equal(keys[j].at) {
			return keys[i].at.Before(keys[j].at)
		}
		return keys[i].count < keys[j].count
	})
	var total float64
	for _, k := range keys {
		total += k.count
	}
	return total
}

// RevenueTable derives the revenue and margin rows from a finished
// DailySummary. The total row divides by the summary's Totals row.
func RevenueTable(summary *models.DailySummary) *models.RevenueTable {
	table := &models.RevenueTable{}
	var revenue float64
	for _, day := range summary.Days {
		table.Rows = append(table.Rows, revenueRow(day.Label, day.Revenue, day))
		revenue += day.Revenue
	}
	table.Total = revenueRow(models.TotalsLabel, revenue, summary.Totals)
	return table
}

func revenueRow(label string, revenue float64, basis models.DailyRow) models.RevenueRow {
	row := models.RevenueRow{
		Label:          label,
		Revenue:        revenue,
		SalesPerPerson: ratio(revenue, basis.PostServiceCustomers),
		CostPerPerson:  ratio(basis.PostServiceCost, basis.PostServiceCustomers),
	}
	if row.SalesPerPerson != nil && row.CostPerPerson != nil {
		margin := *row.SalesPerPerson - *row.CostPerPerson
		row.Margin = &margin
		row.MarginPercentage = ratio(*row.CostPerPerson, *row.SalesPerPerson)
	}
	return row
}

// VarianceAlert reports whether a variance should be highlighted. Undefined
// variances are never alerts.
func VarianceAlert(variance *float64, threshold float64) bool {
	return variance != nil && *variance <= threshold
}
