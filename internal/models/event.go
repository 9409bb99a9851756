package models

import "time"

// ReportGeneratedEvent is published once a report document has been rendered
// and stored.
type ReportGeneratedEvent struct {
	RunID       string    `json:"runId"`
	Cadence     string    `json:"cadence"`
	FileName    string    `json:"fileName"`
	Location    string    `json:"location,omitempty"`
	Venues      []string  `json:"venues"`
	PeriodStart time.Time `json:"periodStart,omitempty"`
	PeriodEnd   time.Time `json:"periodEnd,omitempty"`
	// TotalCost is the executive Over Production total for monthly runs and
	// the summed post-service cost across venues for weekly runs.
	TotalCost   float64   `json:"totalCost"`
	SizeBytes   int       `json:"sizeBytes"`
	GeneratedAt time.Time `json:"generatedAt"`
}
