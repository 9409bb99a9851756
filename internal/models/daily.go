package models

import "time"

// DailyRow is one calendar date of the weekly report, or the Totals row.
type DailyRow struct {
	Date                 time.Time `json:"date"`
	Label                string    `json:"label"` // MM/DD/YYYY, or TotalsLabel
	DayName              string    `json:"day_name"`
	PreServiceCustomers  float64   `json:"pre_service_customer_count"`
	PostServiceCustomers float64   `json:"post_service_customer_count"`
	PreServiceCost       float64   `json:"pre_service_total_cost"`
	PostServiceCost      float64   `json:"post_service_total_cost"`
	Revenue              float64   `json:"revenue"`
	// Variance is (post - pre) / pre; nil when the pre-service total is zero.
	Variance *float64 `json:"total_cost_variance"`
}

// IsTotals reports whether the row is the synthetic Totals row.
func (r DailyRow) IsTotals() bool {
	return r.Label == TotalsLabel
}

// DailySummary is a venue's weekly aggregation.
type DailySummary struct {
	Venue  string     `json:"venue"`
	Days   []DailyRow `json:"days"`
	Totals DailyRow   `json:"totals"`
	// DroppedRows counts rows discarded for an unparseable event date.
	DroppedRows int `json:"dropped_rows"`
}

// Rows returns the daily rows followed by the Totals row.
func (s *DailySummary) Rows() []DailyRow {
	rows := make([]DailyRow, 0, len(s.Days)+1)
	rows = append(rows, s.Days...)
	return append(rows, s.Totals)
}

// Period returns the first and last calendar dates covered.
func (s *DailySummary) Period() (time.Time, time.Time, bool) {
	if len(s.Days) == 0 {
		return time.Time{}, time.Time{}, false
	}
	return s.Days[0].Date, s.Days[len(s.Days)-1].Date, true
}

// RevenueRow is one row of the revenue/margin table. Ratios are nil when
// their divisor is zero.
type RevenueRow struct {
	Label            string   `json:"label"`
	Revenue          float64  `json:"revenue"`
	SalesPerPerson   *float64 `json:"sales_per_person"`
	CostPerPerson    *float64 `json:"cost_per_person"`
	Margin           *float64 `json:"margin"`
	MarginPercentage *float64 `json:"margin_percentage"`
}

// RevenueTable is derived from a finished DailySummary.
type RevenueTable struct {
	Rows  []RevenueRow `json:"rows"`
	Total RevenueRow   `json:"total"`
}

// All returns the daily rows followed by the total row.
func (t *RevenueTable) All() []RevenueRow {
	rows := make([]RevenueRow, 0, len(t.Rows)+1)
	rows = append(rows, t.Rows...)
	return append(rows, t.Total)
}

// VenueWeek bundles the two weekly stages for one venue.
type VenueWeek struct {
	Venue   Venue
	Summary *DailySummary
	Revenue *RevenueTable
}
