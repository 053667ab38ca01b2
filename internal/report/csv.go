package report

import (
	"encoding/csv"
	"fmt"
	"io"
)

// WriteCSV writes the company line, the period, the daily table and the user table.
func WriteCSV(w io.Writer, r Report) error {
	cw := csv.NewWriter(w)
	rows := [][]string{
		{r.Company},
		{r.PeriodLabel()},
		{},
		{titleDaily},
		{"Date", "Calls"},
	}
	for _, d := range r.activeDays() {
		rows = append(rows, []string{d.Label, fmt.Sprint(d.Calls)})
	}
	rows = append(rows, []string{}, []string{titleUsers}, userHeader)
	for _, u := range r.Users {
		cells := userRow(u)
		row := make([]string, len(cells))
		for i, c := range cells {
			row[i] = fmt.Sprint(c)
		}
		rows = append(rows, row)
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}
