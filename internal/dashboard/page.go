package dashboard

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"rc-analytics/internal/analytics"
	"rc-analytics/internal/apperr"
	"rc-analytics/pkg/logger"
)

//go:embed templates/*.html
var templatesFS embed.FS

// MsgLoadFailed is shown when the vendor cannot be reached.
const MsgLoadFailed = "Failed to load data from the server."

// Source is the analytics read side used by the page.
type Source interface {
	Summary(ctx context.Context, q analytics.Query) (analytics.Summary, error)
	Daily(ctx context.Context, r analytics.Range) (analytics.Daily, error)
}

// ParseTemplates loads the embedded HTML templates.
func ParseTemplates() (*template.Template, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return tmpl, nil
}

// Handler serves the server-rendered dashboard.
type Handler struct {
	Source  Source
	Company string
	// Location decides calendar dates and "today"; nil means UTC.
	Location *time.Location
	Now      func() time.Time
}

type link struct {
	Label  string
	URL    string
	Active bool
}

type userOption struct {
	Value    string
	Label    string
	Selected bool
}

type view struct {
	Company   string
	Period    string
	State     State
	Error     string
	Records   []analytics.UserRecord
	Users     []userOption
	Total     int
	ChartName string
	Chart     template.HTML

	Charts      []link
	Quick       []link
	SortName    link
	SortCalls   link
	Exports     []link
	ClearFilter string
}

// Page renders GET /.
func (h Handler) Page(c *gin.Context) {
	log := logger.FromGin(c)
	now := time.Now
	if h.Now != nil {
		now = h.Now
	}
	t := now()
	state := ParseState(c.Request.URL.Query(), t, h.Location)

	v := view{Company: h.Company, State: state, Period: periodLabel(state.From, state.To)}
	v.Charts, v.Quick, v.SortName, v.SortCalls, v.Exports = links(state, t, h.Location)
	v.ClearFilter = "/?" + state.WithUser("").Query().Encode()

	var (
		all   []analytics.UserRecord
		daily []analytics.DailyPoint
	)
	r, err := analytics.ParseRange(state.From, state.To, t, h.Location)
	if err != nil {
		v.Error = apperr.PublicMessage(err) + "."
	} else {
		ctx := c.Request.Context()
		sum, err := h.Source.Summary(ctx, analytics.Query{Range: r})
		if err == nil && state.Chart.Daily() {
			var d analytics.Daily
			d, err = h.Source.Daily(ctx, r)
			daily = d.Points
		}
		if err != nil {
			log.Error("dashboard data load failed", "kind", apperr.KindOf(err).String(), "err", err)
			v.Error = MsgLoadFailed
			daily = nil
		} else {
			all = sum.Records
		}
	}

	for _, rec := range all {
		v.Users = append(v.Users, userOption{
			Value:    rec.ExtensionNumber,
			Label:    UserLabel(rec),
			Selected: rec.ExtensionNumber == state.SelectedUser,
		})
	}
	v.Records = SortRecords(FilterByUser(all, state.SelectedUser), state.SortField, state.SortOrder)
	v.Total = TotalCalls(v.Records)
	if state.Chart.Daily() {
		v.ChartName = "Daily Call Volume"
	} else {
		v.ChartName = "Calls by User"
	}
	v.Chart = RenderChart(state.Chart, ChartSeries(state.Chart, v.Records, daily))

	c.HTML(http.StatusOK, "index.html", v)
}

func links(s State, now time.Time, loc *time.Location) (charts, quick []link, byName, byCalls link, exports []link) {
	names := map[ChartType]string{
		ChartBar:      "Bar",
		ChartLine:     "Line",
		ChartDaily:    "Daily Line",
		ChartDailyBar: "Daily Bar",
		ChartPie:      "Pie",
	}
	for _, ct := range ChartTypes {
		charts = append(charts, link{Label: names[ct], URL: "/?" + s.WithChart(ct).Query().Encode(), Active: ct == s.Chart})
	}
	for _, q := range []struct{ kind, label string }{{"today", "Today"}, {"week", "This Week"}, {"month", "This Month"}} {
		quick = append(quick, link{Label: q.label, URL: "/?" + s.WithQuickRange(q.kind, now, loc).Query().Encode()})
	}
	byName = link{Label: "User Name" + arrow(s, SortByName), URL: "/?" + s.Toggle(SortByName).Query().Encode()}
	byCalls = link{Label: "Total Calls" + arrow(s, SortByCalls), URL: "/?" + s.Toggle(SortByCalls).Query().Encode()}
	for _, f := range []struct{ format, label string }{{"csv", "Download CSV"}, {"xlsx", "Download Excel"}, {"pdf", "Download PDF"}} {
		q := s.Query()
		q.Set("format", f.format)
		exports = append(exports, link{Label: f.label, URL: "/api/reports/export?" + q.Encode()})
	}
	return charts, quick, byName, byCalls, exports
}

func arrow(s State, f SortField) string {
	if s.SortField != f {
		return ""
	}
	if s.SortOrder == Asc {
		return " ↑"
	}
	return " ↓"
}

func periodLabel(from, to string) string {
	return longDate(from) + " - " + longDate(to)
}

func longDate(d string) string {
	t, err := time.Parse(dateLayout, d)
	if err != nil {
		return d
	}
	return t.Format("Jan 2, 2006")
}
