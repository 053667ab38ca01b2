package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// SheetName is the only sheet of the workbook.
const SheetName = "Call Analytics"

// sheetWriter appends rows top to bottom and keeps the first error.
type sheetWriter struct {
	f   *excelize.File
	row int
	err error
}

func (s *sheetWriter) put(style int, values ...any) {
	if s.err != nil {
		return
	}
	s.row++
	if len(values) == 0 {
		return
	}
	first, err := excelize.CoordinatesToCellName(1, s.row)
	if err != nil {
		s.err = err
		return
	}
	if s.err = s.f.SetSheetRow(SheetName, first, &values); s.err != nil {
		return
	}
	if style == 0 {
		return
	}
	last, err := excelize.CoordinatesToCellName(len(values), s.row)
	if err != nil {
		s.err = err
		return
	}
	s.err = s.f.SetCellStyle(SheetName, first, last, style)
}

// WriteXLSX writes a single-sheet workbook with the same layout as the CSV.
func WriteXLSX(w io.Writer, r Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("xlsx: %w", err)
	}
	title, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	if err != nil {
		return fmt.Errorf("xlsx: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("xlsx: %w", err)
	}

	s := &sheetWriter{f: f}
	s.put(title, r.Company)
	s.put(0, r.PeriodLabel())
	s.put(0)
	s.put(bold, titleDaily)
	s.put(bold, "Date", "Calls")
	for _, d := range r.activeDays() {
		s.put(0, d.Label, d.Calls)
	}
	s.put(0)
	s.put(bold, titleUsers)
	header := make([]any, len(userHeader))
	for i, h := range userHeader {
		header[i] = h
	}
	s.put(bold, header...)
	for _, u := range r.Users {
		s.put(0, userRow(u)...)
	}
	if s.err != nil {
		return fmt.Errorf("xlsx: %w", s.err)
	}

	if err := f.SetColWidth(SheetName, "A", "A", 32); err != nil {
		return fmt.Errorf("xlsx: %w", err)
	}
	if err := f.SetColWidth(SheetName, "B", "F", 14); err != nil {
		return fmt.Errorf("xlsx: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("xlsx: %w", err)
	}
	return nil
}
