package source

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/chrisdamba/foodwaste/internal/models"
)

// ReadWorkbook reads one sheet per venue from a monthly workbook. A venue
// whose sheet is absent fails the whole read with ErrMissingSheet.
func ReadWorkbook(r io.Reader, venues []models.Venue, required ...string) ([]models.VenueRows, error) {
	file, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("unable to open workbook: %w", err)
	}
	defer func() { _ = file.Close() }()

	out := make([]models.VenueRows, 0, len(venues))
	for _, venue := range venues {
		rows, err := readSheet(file, venue.SheetName(), required)
		if err != nil {
			return nil, fmt.Errorf("venue %s: %w", venue.Code, err)
		}
		out = append(out, models.VenueRows{Venue: venue, Rows: rows})
	}
	return out, nil
}

// ReadFirstSheet reads a single-venue export stored as a workbook.
func ReadFirstSheet(r io.Reader, required ...string) ([]models.TransactionRow, error) {
	file, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("unable to open workbook: %w", err)
	}
	defer func() { _ = file.Close() }()

	sheet := file.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("%w: workbook has no worksheets", ErrMissingSheet)
	}
	return readSheet(file, sheet, required)
}

// ReadFile reads a single-venue export, choosing the format by extension.
func ReadFile(path string, required ...string) ([]models.TransactionRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadNamed(f, path, required...)
}

// ReadNamed reads a single-venue export from r, choosing the format by the
// extension of name.
func ReadNamed(r io.Reader, name string, required ...string) ([]models.TransactionRow, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return ReadFirstSheet(r, required...)
	default:
		return ReadCSV(r, required...)
	}
}

func readSheet(file *excelize.File, sheet string, required []string) ([]models.TransactionRow, error) {
	if idx, err := file.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrMissingSheet, sheet)
	}
	table, err := file.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("unable to read sheet %q: %w", sheet, err)
	}
	rows, err := rowsFromTable(table, required)
	if err != nil {
		return nil, fmt.Errorf("sheet %q: %w", sheet, err)
	}
	for i := range rows {
		rows[i].EventDate = serialToDate(rows[i].EventDate)
	}
	return rows, nil
}

// serialToDate rewrites an Excel date serial as an ISO timestamp. Any other
// text is returned unchanged.
func serialToDate(raw string) string {
	serial, err := strconv.ParseFloat(raw, 64)
	if err != nil || serial <= 0 {
		return raw
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return raw
	}
	return t.Format("2006-01-02 15:04:05")
}

// WriteWorkbook writes one sheet per venue under the canonical export header.
// Numeric cells are stored as numbers.
func WriteWorkbook(w io.Writer, venues []models.VenueRows) error {
	file := excelize.NewFile()
	defer func() { _ = file.Close() }()

	for i, venue := range venues {
		sheet := venue.Venue.SheetName()
		if i == 0 {
			if err := file.SetSheetName(file.GetSheetName(0), sheet); err != nil {
				return err
			}
		} else if _, err := file.NewSheet(sheet); err != nil {
			return err
		}

		header := make([]interface{}, len(models.ExportColumns))
		for j, column := range models.ExportColumns {
			header[j] = column
		}
		if err := file.SetSheetRow(sheet, "A1", &header); err != nil {
			return err
		}
		for r, row := range venue.Rows {
			values := row.Values()
			cells := make([]interface{}, len(values))
			for j, v := range values {
				cells[j] = sheetValue(models.ExportColumns[j], v)
			}
			cell, err := excelize.CoordinatesToCellName(1, r+2)
			if err != nil {
				return err
			}
			if err := file.SetSheetRow(sheet, cell, &cells); err != nil {
				return err
			}
		}
	}
	_, err := file.WriteTo(w)
	return err
}

func sheetValue(column, v string) interface{} {
	switch column {
	case models.ColumnEventDate, models.ColumnCourseName, models.ColumnItemName:
		return v
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	return v
}
