package report

import (
	"context"
	"net/url"
	"time"

	"golang.org/x/sync/errgroup"

	"rc-analytics/internal/analytics"
	"rc-analytics/internal/dashboard"
)

// Source is the analytics read side an export needs.
type Source interface {
	Summary(ctx context.Context, q analytics.Query) (analytics.Summary, error)
	Daily(ctx context.Context, r analytics.Range) (analytics.Daily, error)
}

// Build assembles the report for the dashboard view described by q: same range,
// user filter and sort order, with calendar dates read in loc. Validation failures come
// back as apperr validation errors.
func Build(ctx context.Context, src Source, q url.Values, company string, now time.Time, loc *time.Location) (Report, error) {
	state := dashboard.ParseState(q, now, loc)
	r, err := analytics.ParseRange(state.From, state.To, now, loc)
	if err != nil {
		return Report{}, err
	}

	var (
		sum   analytics.Summary
		daily analytics.Daily
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		sum, err = src.Summary(gctx, analytics.Query{Range: r})
		return err
	})
	g.Go(func() error {
		var err error
		daily, err = src.Daily(gctx, r)
		return err
	})
	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	users := dashboard.FilterByUser(sum.Records, state.SelectedUser)
	return Report{
		Company:     company,
		From:        r.From,
		To:          r.To,
		Daily:       daily.Points,
		Users:       dashboard.SortRecords(users, state.SortField, state.SortOrder),
		GeneratedAt: now,
	}, nil
}
