package models

// CategoryLine is one row of a category pivot. Percentage is nil when the
// Over Production total is zero and the ratio is undefined.
type CategoryLine struct {
	Category   string   `json:"category"`
	Total      float64  `json:"total"`
	Percentage *float64 `json:"percentage"`
}

// CategoryPivot is a venue's over-production cost broken down by disposition,
// in CategoryOrder.
type CategoryPivot struct {
	Venue string         `json:"venue"`
	Lines []CategoryLine `json:"lines"`
	// Unrecognized holds marker categories outside CategoryOrder; they are not
	// part of the Over Production total.
	Unrecognized map[string]float64 `json:"unrecognized,omitempty"`
	// Empty is set when the Over Production total is zero.
	Empty bool `json:"empty"`
}

// Line looks up a category by label.
func (p *CategoryPivot) Line(category string) (CategoryLine, bool) {
	for _, l := range p.Lines {
		if l.Category == category {
			return l, true
		}
	}
	return CategoryLine{}, false
}

// OverProduction returns the pivot's Over Production total.
func (p *CategoryPivot) OverProduction() float64 {
	l, _ := p.Line(CategoryOverProduction)
	return l.Total
}

// ExecutiveSummary is the cross-venue roll-up of the category pivots.
type ExecutiveSummary struct {
	Venues []string       `json:"venues"`
	Lines  []CategoryLine `json:"lines"`
	Empty  bool           `json:"empty"`
}

// Line looks up a category by label.
func (s *ExecutiveSummary) Line(category string) (CategoryLine, bool) {
	for _, l := range s.Lines {
		if l.Category == category {
			return l, true
		}
	}
	return CategoryLine{}, false
}

// OverProduction returns the combined Over Production total.
func (s *ExecutiveSummary) OverProduction() float64 {
	l, _ := s.Line(CategoryOverProduction)
	return l.Total
}
