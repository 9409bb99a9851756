package source

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/chrisdamba/foodwaste/internal/models"
)

// ReadCSV reads a delimited-text venue export. The first record is the header.
func ReadCSV(r io.Reader, required ...string) ([]models.TransactionRow, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	table, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("unable to read csv: %w", err)
	}
	return rowsFromTable(table, required)
}

// WriteCSV writes rows under the canonical export header.
func WriteCSV(w io.Writer, rows []models.TransactionRow) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(models.ExportColumns); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writer.Write(row.Values()); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
