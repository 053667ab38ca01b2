package dashboard

import (
	"net/url"
	"time"
)

type ChartType string

const (
	ChartBar      ChartType = "bar"
	ChartLine     ChartType = "line"
	ChartDaily    ChartType = "daily"
	ChartDailyBar ChartType = "dailyBar"
	ChartPie      ChartType = "pie"
)

// ChartTypes lists chart types in display order.
var ChartTypes = []ChartType{ChartBar, ChartLine, ChartDaily, ChartDailyBar, ChartPie}

func (c ChartType) valid() bool {
	for _, t := range ChartTypes {
		if c == t {
			return true
		}
	}
	return false
}

// Daily reports whether the chart plots daily points instead of users.
func (c ChartType) Daily() bool { return c == ChartDaily || c == ChartDailyBar }

type SortField string

const (
	SortByName  SortField = "name"
	SortByCalls SortField = "calls"
)

type SortOrder string

const (
	Asc  SortOrder = "asc"
	Desc SortOrder = "desc"
)

const dateLayout = "2006-01-02"

// State is the dashboard view state. It round-trips through query parameters so every
// view is a plain link.
type State struct {
	From         string
	To           string
	SelectedUser string
	Chart        ChartType
	SortField    SortField
	SortOrder    SortOrder
}

// DefaultState is this month so far in loc, bar chart, busiest users first.
func DefaultState(now time.Time, loc *time.Location) State {
	from, to, _ := QuickRange("month", now, loc)
	return State{
		From:      from,
		To:        to,
		Chart:     ChartBar,
		SortField: SortByCalls,
		SortOrder: Desc,
	}
}

// ParseState reads the view state from query values. Unknown enum values fall back to
// the defaults; dates are passed through for range validation.
func ParseState(q url.Values, now time.Time, loc *time.Location) State {
	s := DefaultState(now, loc)
	if v := firstOf(q, "from", "dateFrom", "fromDate"); v != "" {
		s.From = v
	}
	if v := firstOf(q, "to", "dateTo", "toDate"); v != "" {
		s.To = v
	}
	s.SelectedUser = q.Get("user")
	if c := ChartType(q.Get("chart")); c.valid() {
		s.Chart = c
	}
	switch f := SortField(q.Get("sort")); f {
	case SortByName, SortByCalls:
		s.SortField = f
	}
	switch o := SortOrder(q.Get("order")); o {
	case Asc, Desc:
		s.SortOrder = o
	}
	return s
}

func firstOf(q url.Values, keys ...string) string {
	for _, k := range keys {
		if v := q.Get(k); v != "" {
			return v
		}
	}
	return ""
}

// Query encodes the state back into query values.
func (s State) Query() url.Values {
	q := url.Values{}
	q.Set("from", s.From)
	q.Set("to", s.To)
	if s.SelectedUser != "" {
		q.Set("user", s.SelectedUser)
	}
	q.Set("chart", string(s.Chart))
	q.Set("sort", string(s.SortField))
	q.Set("order", string(s.SortOrder))
	return q
}

// Toggle flips the order when field is already selected; otherwise it selects field
// in descending order.
func (s State) Toggle(field SortField) State {
	if s.SortField == field {
		if s.SortOrder == Asc {
			s.SortOrder = Desc
		} else {
			s.SortOrder = Asc
		}
		return s
	}
	s.SortField = field
	s.SortOrder = Desc
	return s
}

func (s State) WithChart(c ChartType) State {
	s.Chart = c
	return s
}

func (s State) WithUser(user string) State {
	s.SelectedUser = user
	return s
}

// WithQuickRange applies a quick filter; unknown kinds leave the state unchanged.
func (s State) WithQuickRange(kind string, now time.Time, loc *time.Location) State {
	if from, to, ok := QuickRange(kind, now, loc); ok {
		s.From, s.To = from, to
	}
	return s
}

// QuickRange returns the from/to dates of a quick filter: today, week (Sunday start)
// or month. Dates are calendar dates in loc; nil means UTC.
func QuickRange(kind string, now time.Time, loc *time.Location) (from, to string, ok bool) {
	if loc == nil {
		loc = time.UTC
	}
	now = now.In(loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	to = today.Format(dateLayout)
	switch kind {
	case "today":
		return to, to, true
	case "week":
		return today.AddDate(0, 0, -int(today.Weekday())).Format(dateLayout), to, true
	case "month":
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc).Format(dateLayout), to, true
	default:
		return "", "", false
	}
}
