package report

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"rc-analytics/internal/analytics"
	"rc-analytics/internal/apperr"
)

type stubSource struct {
	records []analytics.UserRecord
	points  []analytics.DailyPoint
	err     error
}

func (s stubSource) Summary(context.Context, analytics.Query) (analytics.Summary, error) {
	return analytics.Summary{Records: s.records}, s.err
}

func (s stubSource) Daily(context.Context, analytics.Range) (analytics.Daily, error) {
	return analytics.Daily{Points: s.points}, s.err
}

var buildNow = time.Date(2025, 5, 15, 18, 30, 0, 0, time.UTC)

func TestBuild_FollowsDashboardState(t *testing.T) {
	src := stubSource{
		records: []analytics.UserRecord{
			{UserID: "1", UserName: "bob", ExtensionNumber: "102", Calls: analytics.CallCounters{Total: 2}},
			{UserID: "2", UserName: "Alice", ExtensionNumber: "101", Calls: analytics.CallCounters{Total: 5}},
			{UserID: "3", UserName: "Carol", ExtensionNumber: "103", Calls: analytics.CallCounters{Total: 1}},
		},
		points: []analytics.DailyPoint{{Date: "2025-05-01", Calls: 8}},
	}
	q := url.Values{"from": {"2025-05-01"}, "to": {"2025-05-10"}, "sort": {"name"}, "order": {"asc"}}

	rep, err := Build(context.Background(), src, q, "Acme", buildNow, time.UTC)
	require.NoError(t, err)
	require.Equal(t, "Acme", rep.Company)
	require.Equal(t, time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC), rep.From)
	require.Len(t, rep.Daily, 1)
	require.Equal(t, []string{"Alice", "bob", "Carol"}, []string{rep.Users[0].UserName, rep.Users[1].UserName, rep.Users[2].UserName})
	require.Equal(t, buildNow, rep.GeneratedAt)
}

func TestBuild_UserFilter(t *testing.T) {
	src := stubSource{records: []analytics.UserRecord{
		{UserID: "1", UserName: "Alice", ExtensionNumber: "101"},
		{UserID: "2", UserName: "Bob", ExtensionNumber: "102"},
	}}
	rep, err := Build(context.Background(), src, url.Values{"user": {"102"}}, "", buildNow, time.UTC)
	require.NoError(t, err)
	require.Len(t, rep.Users, 1)
	require.Equal(t, "Bob", rep.Users[0].UserName)
}

func TestBuild_InvalidRange(t *testing.T) {
	_, err := Build(context.Background(), stubSource{}, url.Values{"from": {"2025-05-10"}, "to": {"2025-05-01"}}, "", buildNow, time.UTC)
	require.Error(t, err)
	require.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestBuild_SourceError(t *testing.T) {
	boom := errors.New("boom")
	_, err := Build(context.Background(), stubSource{err: boom}, url.Values{}, "", buildNow, time.UTC)
	require.ErrorIs(t, err, boom)
}

func TestBuild_DefaultRangeInZoneAheadOfUTC(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)
	// 08:00 June 1 in Tokyo, 23:00 May 31 in UTC.
	clock := time.Date(2025, 5, 31, 23, 0, 0, 0, time.UTC)

	rep, err := Build(context.Background(), stubSource{}, url.Values{}, "", clock, tokyo)
	require.NoError(t, err)
	require.True(t, rep.From.Equal(time.Date(2025, 6, 1, 0, 0, 0, 0, tokyo)))
	require.True(t, rep.To.Equal(clock))
}
