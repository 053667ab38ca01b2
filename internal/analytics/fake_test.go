package analytics

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"rc-analytics/internal/ringcentral"
)

type fakeAPI struct {
	calls    []ringcentral.AggregationRecord
	sms      []ringcentral.AggregationRecord
	timeline []ringcentral.TimelineRecord
	exts     []ringcentral.Extension
	messages map[string][]ringcentral.Message

	callErr    error
	messageErr error

	mu           sync.Mutex
	lastRequests []ringcentral.AggregationRequest
	callCount    atomic.Int32
	inFlight     atomic.Int32
	maxInFlight  atomic.Int32
	walkDelay    time.Duration
}

func (f *fakeAPI) record(req ringcentral.AggregationRequest) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastRequests = append(f.lastRequests, req)
}

func (f *fakeAPI) CallAggregation(_ context.Context, req ringcentral.AggregationRequest) ([]ringcentral.AggregationRecord, error) {
	f.record(req)
	f.callCount.Add(1)
	return f.calls, f.callErr
}

func (f *fakeAPI) SMSAggregation(_ context.Context, req ringcentral.AggregationRequest) ([]ringcentral.AggregationRecord, error) {
	f.record(req)
	return f.sms, nil
}

func (f *fakeAPI) CallTimeline(_ context.Context, _ string, req ringcentral.AggregationRequest) ([]ringcentral.TimelineRecord, error) {
	f.record(req)
	return f.timeline, nil
}

func (f *fakeAPI) Extensions(context.Context) ([]ringcentral.Extension, error) {
	return f.exts, nil
}

func (f *fakeAPI) Messages(ctx context.Context, extensionID string, _, _ time.Time) ([]ringcentral.Message, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		m := f.maxInFlight.Load()
		if n <= m || f.maxInFlight.CompareAndSwap(m, n) {
			break
		}
	}
	if f.walkDelay > 0 {
		select {
		case <-time.After(f.walkDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.messageErr != nil {
		return nil, f.messageErr
	}
	return f.messages[extensionID], nil
}

func callRow(key, ext, name string, total, answered, missed, secs float64) ringcentral.AggregationRecord {
	return ringcentral.AggregationRecord{
		Key:  key,
		Info: ringcentral.RecordInfo{ExtensionNumber: ext, Name: name},
		Counters: map[string]ringcentral.Value{
			ringcentral.CounterAllCalls: {Values: ringcentral.Values{Total: total}},
			ringcentral.CounterCallsByResponse: {Values: ringcentral.Values{
				Total: answered + missed,
				Parts: map[string]float64{"answered": answered, "notAnswered": missed},
			}},
		},
		Timers: map[string]ringcentral.Value{
			ringcentral.TimerAllCallsDuration: {Values: ringcentral.Values{Total: secs}},
		},
	}
}

func smsRow(key string, inbound, outbound float64) ringcentral.AggregationRecord {
	return ringcentral.AggregationRecord{
		Key: key,
		Counters: map[string]ringcentral.Value{
			ringcentral.CounterAllMessages: {Values: ringcentral.Values{Total: inbound + outbound}},
			ringcentral.CounterMessagesByDirection: {Values: ringcentral.Values{
				Total: inbound + outbound,
				Parts: map[string]float64{"inbound": inbound, "outbound": outbound},
			}},
		},
	}
}
