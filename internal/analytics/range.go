package analytics

import (
	"strings"
	"time"

	"rc-analytics/internal/apperr"
)

// Client-facing validation messages.
const (
	MsgFromAfterTo  = "From date cannot be after To date"
	MsgFutureDates  = "Date range cannot include future dates"
	MsgInvalidFrom  = "invalid dateFrom"
	MsgInvalidTo    = "invalid dateTo"
	dateLayout      = "2006-01-02"
	localTimeLayout = "2006-01-02T15:04:05"
)

// Range is an inclusive instant window.
type Range struct {
	From time.Time
	To   time.Time
}

func (r Range) Period() Period {
	return Period{From: r.From, To: r.To}
}

// ParseRange resolves the dateFrom/dateTo query values against now.
//
// Calendar dates are read in loc (nil means UTC): a plain YYYY-MM-DD is midnight in loc,
// and a plain dateTo means the end of that day. A zone-less timestamp is also read in loc;
// RFC 3339 values keep their own offset. Missing values default to the start of the
// current month in loc and now. "Today" is the current date in loc. A To later today is
// clamped to now.
func ParseRange(dateFrom, dateTo string, now time.Time, loc *time.Location) (Range, error) {
	const op = "analytics.ParseRange"
	if loc == nil {
		loc = time.UTC
	}
	now = now.In(loc)

	r := Range{
		From: time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc),
		To:   now,
	}
	if v := strings.TrimSpace(dateFrom); v != "" {
		t, _, ok := parseInstant(v, loc)
		if !ok {
			return Range{}, apperr.Validation(op, MsgInvalidFrom)
		}
		r.From = t
	}
	if v := strings.TrimSpace(dateTo); v != "" {
		t, dateOnly, ok := parseInstant(v, loc)
		if !ok {
			return Range{}, apperr.Validation(op, MsgInvalidTo)
		}
		if dateOnly {
			t = t.AddDate(0, 0, 1).Add(-time.Millisecond)
		}
		r.To = t
	}

	if r.From.After(r.To) {
		return Range{}, apperr.Validation(op, MsgFromAfterTo)
	}
	today := now.Format(dateLayout)
	if r.From.In(loc).Format(dateLayout) > today || r.To.In(loc).Format(dateLayout) > today {
		return Range{}, apperr.Validation(op, MsgFutureDates)
	}
	if r.To.After(now) {
		r.To = now
	}
	if r.From.After(r.To) {
		return Range{}, apperr.Validation(op, MsgFutureDates)
	}
	return r, nil
}

func parseInstant(v string, loc *time.Location) (t time.Time, dateOnly bool, ok bool) {
	if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
		return t.UTC(), false, true
	}
	if t, err := time.ParseInLocation(localTimeLayout, v, loc); err == nil {
		return t, false, true
	}
	if t, err := time.ParseInLocation(dateLayout, v, loc); err == nil {
		return t, true, true
	}
	return time.Time{}, false, false
}
