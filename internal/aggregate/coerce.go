package aggregate

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/chrisdamba/foodwaste/internal/models"
)

// ErrUnparseableValue is returned by a strict Coercer for a non-blank cell
// that is not a number.
var ErrUnparseableValue = errors.New("unparseable value")

var numberCleaner = strings.NewReplacer("$", "", ",", "", " ", "", "\u00a0", "")

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"01/02/2006",
	"1/2/2006",
	"01/02/2006 15:04",
	"1/2/2006 15:04",
	"01/02/2006 15:04:05",
	"1/2/2006 15:04:05",
	"01/02/2006 3:04 PM",
	"1/2/2006 3:04 PM",
	"01/02/2006 3:04:05 PM",
	"1/2/2006 3:04:05 PM",
	"1/2/06",
	"02-Jan-2006",
}

// Coercer turns export cells into numbers and dates.
type Coercer struct {
	strict bool
}

// NewCoercer returns a Coercer for a coercion policy name. An empty name
// selects zero-fill.
func NewCoercer(policy string) (*Coercer, error) {
	switch policy {
	case "", models.CoercionZeroFill:
		return &Coercer{}, nil
	case models.CoercionStrict:
		return &Coercer{strict: true}, nil
	}
	return nil, fmt.Errorf("unknown coercion policy %q", policy)
}

// Decimal parses a cell. Currency symbols, thousands separators and spaces
// are ignored. Blank cells are zero under every policy; any other unparseable
// cell is zero under zero-fill and an error under strict.
func (c *Coercer) Decimal(raw string) (decimal.Decimal, error) {
	cleaned := numberCleaner.Replace(strings.TrimSpace(raw))
	if cleaned == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		if c.strict {
			return decimal.Zero, fmt.Errorf("%w: %q", ErrUnparseableValue, raw)
		}
		return decimal.Zero, nil
	}
	return d, nil
}

// Field coerces one column of a row, naming the row in errors.
func (c *Coercer) Field(row models.TransactionRow, column string) (decimal.Decimal, error) {
	d, err := c.Decimal(row.Field(column))
	if err != nil {
		return decimal.Zero, fmt.Errorf("line %d column %s: %w", row.Line, column, err)
	}
	return d, nil
}

// Date parses an event date. Unparseable dates are reported with ok=false
// under every policy; the caller drops the row.
func (c *Coercer) Date(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func calendarDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// ratio divides n by d, returning nil for a zero divisor.
func ratio(n, d float64) *float64 {
	if d == 0 {
		return nil
	}
	r := n / d
	return &r
}
