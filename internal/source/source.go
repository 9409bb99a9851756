// Package source reads venue transaction exports from delimited text,
// spreadsheets and Postgres, and writes sample exports back out.
package source

import (
	"errors"
	"fmt"
	"strings"

	"github.com/chrisdamba/foodwaste/internal/models"
)

var (
	ErrMissingSheet  = errors.New("missing sheet")
	ErrMissingColumn = errors.New("missing column")
	ErrEmptyInput    = errors.New("input has no header row")
)

// MonthlyColumns are the export columns the monthly pivot reads.
var MonthlyColumns = []string{
	models.ColumnCourseName,
	models.ColumnTotalCost,
}

// WeeklyColumns are the export columns the weekly summary reads.
var WeeklyColumns = []string{
	models.ColumnEventDate,
	models.ColumnCourseName,
	models.ColumnItemName,
	models.ColumnForecastPortionCount,
	models.ColumnServedPortionCount,
	models.ColumnSoldPortionCount,
	models.ColumnForecastCustomerCount,
	models.ColumnSoldCustomerCount,
	models.ColumnCostPrice,
}

func normalizeHeader(header string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(header, "\ufeff")))
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// headerIndex maps each export column to its position in header, or -1.
func headerIndex(header []string, required []string) (map[string]int, error) {
	positions := make(map[string]int, len(header))
	for i, h := range header {
		if _, dup := positions[normalizeHeader(h)]; !dup {
			positions[normalizeHeader(h)] = i
		}
	}
	index := make(map[string]int, len(models.ExportColumns))
	for _, column := range models.ExportColumns {
		idx, ok := positions[normalizeHeader(column)]
		if !ok {
			idx = -1
		}
		index[column] = idx
	}
	var missing []string
	for _, column := range required {
		if index[column] < 0 {
			missing = append(missing, column)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return index, nil
}

// rowsFromTable turns a header row plus data rows into transaction rows.
// Entirely blank lines are skipped.
func rowsFromTable(table [][]string, required []string) ([]models.TransactionRow, error) {
	if len(table) == 0 {
		return nil, ErrEmptyInput
	}
	index, err := headerIndex(table[0], required)
	if err != nil {
		return nil, err
	}
	rows := make([]models.TransactionRow, 0, len(table)-1)
	for i, record := range table[1:] {
		if isBlank(record) {
			continue
		}
		row := models.TransactionRow{Line: i + 1}
		for column, idx := range index {
			row.SetField(column, cellValue(record, idx))
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func isBlank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
