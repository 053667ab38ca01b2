package report

import (
	"fmt"
	"io"
	"strings"
	"time"
	"unicode"

	"rc-analytics/internal/analytics"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

// ParseFormat accepts csv, xlsx or pdf, case-insensitively.
func ParseFormat(v string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(v))); f {
	case FormatCSV, FormatXLSX, FormatPDF:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported report format %q", v)
	}
}

func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatPDF:
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}

// Report is everything an export renders.
type Report struct {
	Company     string
	From        time.Time
	To          time.Time
	Daily       []analytics.DailyPoint
	Users       []analytics.UserRecord
	GeneratedAt time.Time
}

const (
	titleDaily = "Daily Call Summary"
	titleUsers = "User Call Summary"
)

var userHeader = []string{"User Name", "Extension", "Total Calls", "Answered", "Missed", "SMS Total"}

// PeriodLabel renders "Report Period: Mar 1, 2025 - Mar 31, 2025".
func (r Report) PeriodLabel() string {
	return "Report Period: " + r.From.Format("Jan 2, 2006") + " - " + r.To.Format("Jan 2, 2006")
}

// activeDays are the daily points with at least one call, labelled "Jan 2".
func (r Report) activeDays() []dayRow {
	var out []dayRow
	for _, p := range r.Daily {
		if p.Calls <= 0 {
			continue
		}
		label := p.Date
		if t, err := time.Parse("2006-01-02", p.Date); err == nil {
			label = t.Format("Jan 2")
		}
		out = append(out, dayRow{Label: label, Calls: p.Calls})
	}
	return out
}

type dayRow struct {
	Label string
	Calls int
}

func userRow(u analytics.UserRecord) []any {
	return []any{u.UserName, u.ExtensionNumber, u.Calls.Total, u.Calls.Answered, u.Calls.Missed, u.SMS.Total}
}

// Filename is "<Company-Slug>-Call-Analytics-YYYY-MM-DD.<ext>".
func Filename(company string, f Format, day time.Time) string {
	return fmt.Sprintf("%s-Call-Analytics-%s.%s", slug(company), day.Format("2006-01-02"), f)
}

func slug(s string) string {
	var words []string
	for _, w := range strings.FieldsFunc(s, func(r rune) bool { return !unicode.IsLetter(r) && !unicode.IsDigit(r) }) {
		words = append(words, w)
	}
	if len(words) == 0 {
		return "Report"
	}
	return strings.Join(words, "-")
}

// Write renders r in format f.
func Write(w io.Writer, f Format, r Report) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, r)
	case FormatXLSX:
		return WriteXLSX(w, r)
	case FormatPDF:
		return WritePDF(w, r)
	default:
		return fmt.Errorf("unsupported report format %q", f)
	}
}
