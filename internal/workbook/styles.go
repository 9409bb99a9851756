// Package workbook renders report documents as xlsx workbooks.
package workbook

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const (
	currencyFormat = `"$"#,##0.00`
	amountFormat   = `$#,##0.00`
	countFormat    = `#,##0`
	percentFormat  = `0%`

	alertFill = "#FFC7CE"
	okFill    = "#C6EFCE"
)

// styleSet registers each distinct style once per file.
type styleSet struct {
	f     *excelize.File
	cache map[string]int
}

func newStyleSet(f *excelize.File) *styleSet {
	return &styleSet{f: f, cache: make(map[string]int)}
}

func (s *styleSet) get(key string, build func() *excelize.Style) (int, error) {
	if id, ok := s.cache[key]; ok {
		return id, nil
	}
	id, err := s.f.NewStyle(build())
	if err != nil {
		return 0, fmt.Errorf("style %s: %w", key, err)
	}
	s.cache[key] = id
	return id, nil
}

func solidFill(color string) excelize.Fill {
	if color == "" {
		return excelize.Fill{}
	}
	return excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1}
}

func thinBorder() []excelize.Border {
	return []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}
}

func numFmt(format string) *string {
	if format == "" {
		return nil
	}
	return &format
}

// sheetWriter writes cells to one sheet and remembers the first error, so
// layout code can run straight through and check once at the end.
type sheetWriter struct {
	f      *excelize.File
	sheet  string
	styles *styleSet
	err    error
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func (w *sheetWriter) value(col, row int, v interface{}) {
	if w.err != nil {
		return
	}
	w.err = w.f.SetCellValue(w.sheet, cellName(col, row), v)
}

func (w *sheetWriter) style(fromCol, fromRow, toCol, toRow int, key string, build func() *excelize.Style) {
	if w.err != nil {
		return
	}
	id, err := w.styles.get(key, build)
	if err != nil {
		w.err = err
		return
	}
	w.err = w.f.SetCellStyle(w.sheet, cellName(fromCol, fromRow), cellName(toCol, toRow), id)
}

// styled writes v (when non-nil) and applies a style to the cell.
func (w *sheetWriter) styled(col, row int, v interface{}, key string, build func() *excelize.Style) {
	if v != nil {
		w.value(col, row, v)
	}
	w.style(col, row, col, row, key, build)
}

func (w *sheetWriter) merge(fromCol, fromRow, toCol, toRow int, v interface{}, key string, build func() *excelize.Style) {
	if w.err != nil {
		return
	}
	if w.err = w.f.MergeCell(w.sheet, cellName(fromCol, fromRow), cellName(toCol, toRow)); w.err != nil {
		return
	}
	w.value(fromCol, fromRow, v)
	w.style(fromCol, fromRow, toCol, toRow, key, build)
}

func (w *sheetWriter) colWidth(col string, width float64) {
	if w.err != nil {
		return
	}
	w.err = w.f.SetColWidth(w.sheet, col, col, width)
}

func (w *sheetWriter) rowHeight(row int, height float64) {
	if w.err != nil {
		return
	}
	w.err = w.f.SetRowHeight(w.sheet, row, height)
}

func (w *sheetWriter) chart(cell string, chart *excelize.Chart) {
	if w.err != nil {
		return
	}
	w.err = w.f.AddChart(w.sheet, cell, chart)
}

// pixelsToWidth converts a column width in pixels to character units for the
// default 11pt Calibri font.
func pixelsToWidth(px int) float64 {
	if px <= 12 {
		return float64(px) / 12
	}
	return float64(px-5) / 7
}

// optional unwraps an undefined ratio as a blank cell.
func optional(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
