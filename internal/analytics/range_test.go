package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"rc-analytics/internal/apperr"
)

var fixedNow = time.Date(2025, 5, 15, 18, 30, 0, 0, time.UTC)

func TestParseRange_Defaults(t *testing.T) {
	r, err := ParseRange("", "", fixedNow, time.UTC)
	require.NoError(t, err)
	require.Equal(t, time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC), r.From)
	require.Equal(t, fixedNow, r.To)
}

func TestParseRange_Formats(t *testing.T) {
	r, err := ParseRange("2025-03-01T00:00:00.000Z", "2025-03-31", fixedNow, time.UTC)
	require.NoError(t, err)
	require.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), r.From)
	require.Equal(t, time.Date(2025, 3, 31, 23, 59, 59, int(999*time.Millisecond), time.UTC), r.To)

	r, err = ParseRange("2025-03-01T08:00:00-08:00", "2025-03-02T10:00:00", fixedNow, time.UTC)
	require.NoError(t, err)
	require.Equal(t, time.Date(2025, 3, 1, 16, 0, 0, 0, time.UTC), r.From)
	require.Equal(t, time.Date(2025, 3, 2, 10, 0, 0, 0, time.UTC), r.To)
}

func TestParseRange_Validation(t *testing.T) {
	cases := []struct {
		name     string
		from, to string
		want     string
	}{
		{"from after to", "2025-04-10", "2025-04-01", MsgFromAfterTo},
		{"future to", "2025-05-01", "2025-05-16", MsgFutureDates},
		{"future from defaults to now", "2025-06-01", "2025-06-02", MsgFutureDates},
		{"bad from", "yesterday", "", MsgInvalidFrom},
		{"bad to", "", "03/31/2025", MsgInvalidTo},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseRange(tc.from, tc.to, fixedNow, time.UTC)
			require.Error(t, err)
			require.Equal(t, apperr.KindValidation, apperr.KindOf(err))
			require.Equal(t, tc.want, apperr.PublicMessage(err))
		})
	}
}

func TestParseRange_TodayIsAllowedAndClamped(t *testing.T) {
	r, err := ParseRange("2025-05-15", "2025-05-15", fixedNow, time.UTC)
	require.NoError(t, err)
	require.Equal(t, time.Date(2025, 5, 15, 0, 0, 0, 0, time.UTC), r.From)
	require.Equal(t, fixedNow, r.To)
}

func TestParseRange_PlainDatesUseZone(t *testing.T) {
	la, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)

	r, err := ParseRange("2025-05-01", "2025-05-03", fixedNow, la)
	require.NoError(t, err)
	require.True(t, r.From.Equal(time.Date(2025, 5, 1, 0, 0, 0, 0, la)), "from %v", r.From)
	require.True(t, r.To.Equal(time.Date(2025, 5, 3, 23, 59, 59, int(999*time.Millisecond), la)), "to %v", r.To)

	r, err = ParseRange("", "", fixedNow, la)
	require.NoError(t, err)
	require.True(t, r.From.Equal(time.Date(2025, 5, 1, 0, 0, 0, 0, la)), "default from %v", r.From)
}

func TestParseRange_TodayFollowsZone(t *testing.T) {
	// 21:00 UTC on May 31 is already June 1 in Sydney and still May 31 in Los Angeles.
	now := time.Date(2025, 5, 31, 21, 0, 0, 0, time.UTC)
	sydney, err := time.LoadLocation("Australia/Sydney")
	require.NoError(t, err)
	la, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)

	cases := []struct {
		name     string
		loc      *time.Location
		from, to string
		want     string
	}{
		{"sydney today", sydney, "2025-06-01", "2025-06-01", ""},
		{"sydney month", sydney, "", "", ""},
		{"sydney tomorrow", sydney, "2025-06-02", "2025-06-02", MsgFutureDates},
		{"la today", la, "2025-05-31", "2025-05-31", ""},
		{"la tomorrow", la, "2025-06-01", "2025-06-01", MsgFutureDates},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r, err := ParseRange(tc.from, tc.to, now, tc.loc)
			if tc.want != "" {
				require.Error(t, err)
				require.Equal(t, tc.want, apperr.PublicMessage(err))
				return
			}
			require.NoError(t, err)
			require.True(t, r.To.Equal(now))
			require.False(t, r.From.After(r.To))
		})
	}
}
