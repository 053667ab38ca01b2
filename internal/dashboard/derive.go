package dashboard

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"rc-analytics/internal/analytics"
)

// FilterByUser keeps rows whose extension number or user id equals sel.
// An empty selection returns the input unchanged.
func FilterByUser(records []analytics.UserRecord, sel string) []analytics.UserRecord {
	if sel == "" {
		return records
	}
	out := make([]analytics.UserRecord, 0, 1)
	for _, r := range records {
		if r.ExtensionNumber == sel || r.UserID == sel {
			out = append(out, r)
		}
	}
	return out
}

// SortRecords returns a sorted copy. Names compare case-insensitively with the
// extension as tie-break; calls tie-break on name. Desc is the reverse of asc.
func SortRecords(records []analytics.UserRecord, field SortField, order SortOrder) []analytics.UserRecord {
	out := slices.Clone(records)
	compare := compareByName
	if field == SortByCalls {
		compare = compareByCalls
	}
	if order == Desc {
		asc := compare
		compare = func(a, b analytics.UserRecord) int { return -asc(a, b) }
	}
	slices.SortStableFunc(out, compare)
	return out
}

func compareByName(a, b analytics.UserRecord) int {
	if c := cmp.Compare(strings.ToLower(a.UserName), strings.ToLower(b.UserName)); c != 0 {
		return c
	}
	return cmp.Compare(a.ExtensionNumber, b.ExtensionNumber)
}

func compareByCalls(a, b analytics.UserRecord) int {
	if c := cmp.Compare(a.Calls.Total, b.Calls.Total); c != 0 {
		return c
	}
	return compareByName(a, b)
}

func TotalCalls(records []analytics.UserRecord) int {
	n := 0
	for _, r := range records {
		n += r.Calls.Total
	}
	return n
}

// Series is chart-ready data. TickEvery is the label stride for the X axis.
type Series struct {
	Labels    []string
	Values    []int
	TickEvery int
}

func (s Series) Empty() bool { return len(s.Values) == 0 }

// ChartSeries derives the plotted series. User charts plot non-zero rows labelled
// "name (ext)"; daily charts plot every day with a label on every ceil(n/10)th point.
func ChartSeries(chart ChartType, records []analytics.UserRecord, daily []analytics.DailyPoint) Series {
	s := Series{TickEvery: 1}
	if chart.Daily() {
		for _, p := range daily {
			s.Labels = append(s.Labels, DayLabel(p.Date))
			s.Values = append(s.Values, p.Calls)
		}
		s.TickEvery = max(1, (len(s.Values)+9)/10)
		return s
	}
	for _, r := range records {
		if r.Calls.Total <= 0 {
			continue
		}
		s.Labels = append(s.Labels, UserLabel(r))
		s.Values = append(s.Values, r.Calls.Total)
	}
	return s
}

func UserLabel(r analytics.UserRecord) string {
	return fmt.Sprintf("%s (%s)", r.UserName, r.ExtensionNumber)
}

// DayLabel renders YYYY-MM-DD as "Jan 2"; other input is returned as is.
func DayLabel(date string) string {
	t, err := time.Parse(dateLayout, date)
	if err != nil {
		return date
	}
	return t.Format("Jan 2")
}
