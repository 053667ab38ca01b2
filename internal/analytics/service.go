package analytics

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"rc-analytics/internal/apperr"
	"rc-analytics/internal/metrics"
	"rc-analytics/internal/ringcentral"
	"rc-analytics/pkg/logger"
	"rc-analytics/pkg/utils"
)

// ErrWalkLimit is returned when too many message-store walks are already running.
var ErrWalkLimit = errors.New("vendor walk limit reached")

const (
	walkCapKey = "rc-analytics:walks"
	walkCapTTL = 5 * time.Minute
)

type Options struct {
	// TimeZone is sent with analytics queries and used to bucket daily points.
	TimeZone string

	// ExtensionConcurrency bounds parallel message-store walks within one request.
	ExtensionConcurrency int

	// WalkLimit caps walks across processes. Ignored when Limiter is nil.
	WalkLimit int
	Limiter   redis.Scripter

	// Cache holds Summary results. Nil disables caching.
	Cache Cache

	Now func() time.Time
}

type Service struct {
	api  ringcentral.API
	opts Options
	loc  *time.Location
}

func NewService(api ringcentral.API, opts Options) (*Service, error) {
	if api == nil {
		return nil, errors.New("analytics: vendor client is required")
	}
	if opts.TimeZone == "" {
		opts.TimeZone = "UTC"
	}
	loc, err := time.LoadLocation(opts.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("analytics: load time zone: %w", err)
	}
	if opts.ExtensionConcurrency <= 0 {
		opts.ExtensionConcurrency = 1
	}
	if opts.WalkLimit <= 0 {
		opts.WalkLimit = 1
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{api: api, opts: opts, loc: loc}, nil
}

// Now is the clock used to resolve default ranges.
func (s *Service) Now() time.Time { return s.opts.Now() }

// Location is the configured vendor zone. Calendar dates and "today" are decided in it.
func (s *Service) Location() *time.Location { return s.loc }

func (s *Service) timeSettings(r Range) ringcentral.TimeSettings {
	return ringcentral.TimeSettings{
		TimeZone:  s.opts.TimeZone,
		TimeRange: ringcentral.NewTimeRange(r.From, r.To),
	}
}

func (s *Service) callRequest(r Range, groupBy string) ringcentral.AggregationRequest {
	return ringcentral.AggregationRequest{
		Grouping:     ringcentral.Grouping{GroupBy: groupBy},
		TimeSettings: s.timeSettings(r),
		ResponseOptions: ringcentral.ResponseOptions{
			Counters: ringcentral.Sums(ringcentral.CounterAllCalls, ringcentral.CounterCallsByResponse),
			Timers:   ringcentral.Sums(ringcentral.TimerAllCallsDuration),
		},
	}
}

// Summary returns per-user call counters with SMS counters left-joined on the grouping key.
func (s *Service) Summary(ctx context.Context, q Query) (Summary, error) {
	key := fmt.Sprintf("summary:%d:%d:%s", q.Range.From.UnixMilli(), q.Range.To.UnixMilli(), q.Extension)
	if out, ok := s.cached(ctx, key); ok {
		return out, nil
	}

	var calls, sms []ringcentral.AggregationRecord
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		calls, err = s.api.CallAggregation(gctx, s.callRequest(q.Range, ringcentral.GroupByUsers))
		return err
	})
	g.Go(func() error {
		var err error
		sms, err = s.api.SMSAggregation(gctx, ringcentral.AggregationRequest{
			Grouping:     ringcentral.Grouping{GroupBy: ringcentral.GroupByUsers},
			TimeSettings: s.timeSettings(q.Range),
			ResponseOptions: ringcentral.ResponseOptions{
				Counters: ringcentral.Sums(ringcentral.CounterAllMessages, ringcentral.CounterMessagesByDirection),
			},
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}

	out := Summary{
		Period:  q.Range.Period(),
		Records: filterByExtension(joinRecords(calls, sms), q.Extension),
	}
	sortByName(out.Records)

	s.store(ctx, key, out)
	return out, nil
}

// joinRecords keeps every call row and attaches the SMS row with the same key, if any.
func joinRecords(calls, sms []ringcentral.AggregationRecord) []UserRecord {
	byKey := make(map[string]SMSCounters, len(sms))
	for _, r := range sms {
		c := r.Counter(ringcentral.CounterMessagesByDirection)
		byKey[r.Key] = SMSCounters{
			Total:    int(r.Counter(ringcentral.CounterAllMessages).Total),
			Sent:     int(c.Part("outbound")),
			Received: int(c.Part("inbound")),
		}
	}

	out := make([]UserRecord, 0, len(calls))
	for _, r := range calls {
		resp := r.Counter(ringcentral.CounterCallsByResponse)
		out = append(out, UserRecord{
			UserID:          r.Key,
			UserName:        r.Info.Name,
			ExtensionNumber: r.Info.ExtensionNumber,
			Calls: CallCounters{
				Total:           int(r.Counter(ringcentral.CounterAllCalls).Total),
				Answered:        int(resp.Part("answered")),
				Missed:          int(resp.Part("notAnswered")),
				DurationSeconds: int64(r.Timer(ringcentral.TimerAllCallsDuration).Total),
			},
			SMS: byKey[r.Key],
		})
	}
	return out
}

func filterByExtension(in []UserRecord, ext string) []UserRecord {
	if ext == "" {
		return in
	}
	out := make([]UserRecord, 0, 1)
	for _, r := range in {
		if r.ExtensionNumber == ext || r.UserID == ext {
			out = append(out, r)
		}
	}
	return out
}

func sortByName(in []UserRecord) {
	slices.SortStableFunc(in, func(a, b UserRecord) int {
		if c := cmp.Compare(strings.ToLower(a.UserName), strings.ToLower(b.UserName)); c != 0 {
			return c
		}
		return cmp.Compare(a.ExtensionNumber, b.ExtensionNumber)
	})
}

// Daily returns company-wide calls per day, one point per calendar day of the range
// in the configured zone. Days the vendor omits are zero.
func (s *Service) Daily(ctx context.Context, r Range) (Daily, error) {
	recs, err := s.api.CallTimeline(ctx, "Day", s.callRequest(r, ringcentral.GroupByCompany))
	if err != nil {
		return Daily{}, err
	}

	counts := map[string]int{}
	for _, rec := range recs {
		for _, p := range rec.Points {
			day, ok := s.dayOf(p.Time)
			if !ok {
				continue
			}
			counts[day] += int(p.Counters[ringcentral.CounterAllCalls].Values.Total)
		}
	}

	out := Daily{Period: r.Period(), Points: []DailyPoint{}}
	from := r.From.In(s.loc)
	to := r.To.In(s.loc)
	day := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, s.loc)
	last := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, s.loc)
	for !day.After(last) {
		d := day.Format(dateLayout)
		out.Points = append(out.Points, DailyPoint{Date: d, Calls: counts[d]})
		day = day.AddDate(0, 0, 1)
	}
	return out, nil
}

func (s *Service) dayOf(v string) (string, bool) {
	if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
		return t.In(s.loc).Format(dateLayout), true
	}
	if len(v) >= len(dateLayout) {
		if _, err := time.Parse(dateLayout, v[:len(dateLayout)]); err == nil {
			return v[:len(dateLayout)], true
		}
	}
	return "", false
}

// Communications walks every extension's SMS message store and joins the counts with
// per-user call totals.
func (s *Service) Communications(ctx context.Context, r Range, includeLogs bool) (Communications, error) {
	const op = "analytics.Communications"

	if s.opts.Limiter != nil {
		ok, err := utils.AcquireConcurrencyCap(ctx, s.opts.Limiter, walkCapKey, s.opts.WalkLimit, walkCapTTL)
		if err != nil {
			return Communications{}, apperr.Persistence(op, err)
		}
		if !ok {
			return Communications{}, apperr.UpstreamRequest(op, ErrWalkLimit)
		}
		defer func() {
			if err := utils.ReleaseConcurrencyCap(context.WithoutCancel(ctx), s.opts.Limiter, walkCapKey); err != nil {
				logger.From(ctx).Warn("release walk cap failed", "err", err)
			}
		}()
	}

	var (
		exts  []ringcentral.Extension
		calls []ringcentral.AggregationRecord
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		exts, err = s.api.Extensions(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		calls, err = s.api.CallAggregation(gctx, s.callRequest(r, ringcentral.GroupByUsers))
		return err
	})
	if err := g.Wait(); err != nil {
		return Communications{}, err
	}

	callsByKey := make(map[string]int, len(calls))
	for _, c := range calls {
		n := int(c.Counter(ringcentral.CounterAllCalls).Total)
		callsByKey[c.Key] = n
		if c.Info.ExtensionNumber != "" {
			if _, ok := callsByKey["ext:"+c.Info.ExtensionNumber]; !ok {
				callsByKey["ext:"+c.Info.ExtensionNumber] = n
			}
		}
	}

	logs := make([][]ringcentral.Message, len(exts))
	walk, wctx := errgroup.WithContext(ctx)
	walk.SetLimit(s.opts.ExtensionConcurrency)
	for i, ext := range exts {
		i, ext := i, ext
		walk.Go(func() error {
			msgs, err := s.api.Messages(wctx, ext.ID.String(), r.From, r.To)
			if err != nil {
				return err
			}
			logs[i] = msgs
			return nil
		})
	}
	if err := walk.Wait(); err != nil {
		return Communications{}, err
	}

	out := Communications{Period: r.Period(), Extensions: make([]ExtensionSMSSummary, 0, len(exts))}
	for i, ext := range exts {
		id := ext.ID.String()
		sum := ExtensionSMSSummary{
			ExtensionID:     id,
			ExtensionNumber: ext.ExtensionNumber,
			Name:            ext.DisplayName(),
			Total:           len(logs[i]),
		}
		if n, ok := callsByKey[id]; ok {
			sum.Calls = n
		} else {
			sum.Calls = callsByKey["ext:"+ext.ExtensionNumber]
		}
		for _, m := range logs[i] {
			switch m.Direction {
			case ringcentral.DirectionInbound:
				sum.Inbound++
			case ringcentral.DirectionOutbound:
				sum.Outbound++
			}
			if includeLogs {
				out.SMSLogs = append(out.SMSLogs, SMSLog{Message: m, ExtensionID: id, Name: sum.Name})
			}
		}
		out.TotalSMSMessages += sum.Total
		out.Extensions = append(out.Extensions, sum)
	}
	return out, nil
}

func (s *Service) cached(ctx context.Context, key string) (Summary, bool) {
	if s.opts.Cache == nil {
		return Summary{}, false
	}
	b, ok, err := s.opts.Cache.Get(ctx, key)
	if err != nil {
		logger.From(ctx).Warn("analytics cache read failed", "key", key, "err", err)
		return Summary{}, false
	}
	metrics.CacheLookup(ok)
	if !ok {
		return Summary{}, false
	}
	var out Summary
	if err := json.Unmarshal(b, &out); err != nil {
		logger.From(ctx).Warn("analytics cache entry unreadable", "key", key, "err", err)
		return Summary{}, false
	}
	return out, true
}

func (s *Service) store(ctx context.Context, key string, v Summary) {
	if s.opts.Cache == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.opts.Cache.Set(ctx, key, b); err != nil {
		logger.From(ctx).Warn("analytics cache write failed", "key", key, "err", err)
	}
}
