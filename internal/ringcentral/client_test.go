package ringcentral

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rc-analytics/internal/apperr"
)

func testJWT(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	s, err := tok.SignedString([]byte("vendor-secret"))
	require.NoError(t, err)
	return s
}

type fakeVendor struct {
	*httptest.Server
	tokenCalls atomic.Int32
	tokenFail  atomic.Bool
	lastAuth   atomic.Value
}

func newFakeVendor(t *testing.T, mux *http.ServeMux) *fakeVendor {
	t.Helper()
	f := &fakeVendor{}
	mux.HandleFunc("/restapi/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		f.tokenCalls.Add(1)
		id, secret, ok := r.BasicAuth()
		if f.tokenFail.Load() || !ok || id != "cid" || secret != "csecret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"error":"invalid_client"}`)
			return
		}
		_ = r.ParseForm()
		if r.PostForm.Get("grant_type") != jwtBearerGrant || r.PostForm.Get("assertion") == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"access_token":"at-1","token_type":"bearer","expires_in":3600}`)
	})
	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.lastAuth.Store(r.Header.Get("Authorization"))
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(f.Close)
	return f
}

func newTestClient(t *testing.T, f *fakeVendor) *Client {
	t.Helper()
	c, err := NewClient(context.Background(), Config{
		ServerURL:    f.URL,
		ClientID:     "cid",
		ClientSecret: "csecret",
		UserJWT:      testJWT(t, time.Now().Add(time.Hour)),
		Timeout:      5 * time.Second,
	})
	require.NoError(t, err)
	return c
}

func TestNewClient_RejectsExpiredCredential(t *testing.T) {
	_, err := NewClient(context.Background(), Config{
		ServerURL:    "https://platform.example.com",
		ClientID:     "cid",
		ClientSecret: "csecret",
		UserJWT:      testJWT(t, time.Now().Add(-time.Minute)),
	})
	require.ErrorIs(t, err, ErrCredentialExpired)
}

func TestNewClient_RejectsMalformedCredential(t *testing.T) {
	_, err := NewClient(context.Background(), Config{
		ServerURL:    "https://platform.example.com",
		ClientID:     "cid",
		ClientSecret: "csecret",
		UserJWT:      "not-a-jwt",
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "malformed")
}

func TestCallAggregation_PagesAndDecodes(t *testing.T) {
	mux := http.NewServeMux()
	var (
		mu     sync.Mutex
		bodies []AggregationRequest
	)
	mux.HandleFunc("/analytics/calls/v1/accounts/~/aggregation/fetch", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var req AggregationRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		mu.Lock()
		bodies = append(bodies, req)
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("page") {
		case "1":
			_, _ = io.WriteString(w, `{"data":{"records":[{"key":"101","info":{"extensionNumber":"101","name":"Alice"},
				"counters":{"allCalls":{"valueType":"Instances","values":7},
				"callsByResponse":{"valueType":"Instances","values":{"answered":5,"notAnswered":2}}},
				"timers":{"allCallsDuration":{"valueType":"Seconds","values":420}}}]},
				"paging":{"page":1,"perPage":100,"totalPages":2,"totalElements":2}}`)
		default:
			_, _ = io.WriteString(w, `{"data":{"records":[{"key":"102","info":{"extensionNumber":"102","name":"Bob"},
				"counters":{"allCalls":{"values":1}}}]},"paging":{"page":2,"perPage":100,"totalPages":2}}`)
		}
	})
	f := newFakeVendor(t, mux)
	c := newTestClient(t, f)

	req := AggregationRequest{
		Grouping: Grouping{GroupBy: GroupByUsers},
		TimeSettings: TimeSettings{
			TimeZone:  "America/Los_Angeles",
			TimeRange: NewTimeRange(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)),
		},
		ResponseOptions: ResponseOptions{Counters: Sums(CounterAllCalls, CounterCallsByResponse)},
	}
	recs, err := c.CallAggregation(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	mu.Lock()
	defer mu.Unlock()
	require.Len(t, bodies, 2)
	require.Equal(t, "2025-03-01T00:00:00.000Z", bodies[0].TimeSettings.TimeRange.TimeFrom)
	require.Equal(t, AggregationSum, bodies[0].ResponseOptions.Counters[CounterAllCalls].AggregationType)

	alice := recs[0]
	require.Equal(t, "Alice", alice.Info.Name)
	require.Equal(t, 7.0, alice.Counter(CounterAllCalls).Total)
	require.Equal(t, 5.0, alice.Counter(CounterCallsByResponse).Part("answered"))
	require.Equal(t, 2.0, alice.Counter(CounterCallsByResponse).Part("notAnswered"))
	require.Equal(t, 420.0, alice.Timer(TimerAllCallsDuration).Total)
	require.Equal(t, 0.0, recs[1].Counter(CounterCallsByResponse).Part("answered"))

	require.Equal(t, "Bearer at-1", f.lastAuth.Load())
	require.Equal(t, int32(1), f.tokenCalls.Load(), "token should be reused across pages")
}

func TestDoJSON_TokenRejectedIsAuthError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/analytics/sms/v1/accounts/~/aggregation/fetch", func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("api should not be reached without a token")
	})
	f := newFakeVendor(t, mux)
	f.tokenFail.Store(true)
	c := newTestClient(t, f)

	_, err := c.SMSAggregation(context.Background(), AggregationRequest{})
	require.Error(t, err)
	require.Equal(t, apperr.KindUpstreamAuth, apperr.KindOf(err))
	require.Contains(t, err.Error(), "401")
}

func TestDoJSON_StatusMapping(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/restapi/v1.0/account/~/extension", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `{"errorCode":"InsufficientPermissions"}`)
	})
	mux.HandleFunc("/restapi/v1.0/account/~/extension/7/message-store", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = io.WriteString(w, "upstream down")
	})
	f := newFakeVendor(t, mux)
	c := newTestClient(t, f)

	_, err := c.Extensions(context.Background())
	require.Equal(t, apperr.KindUpstreamAuth, apperr.KindOf(err))

	_, err = c.Messages(context.Background(), "7", time.Now().Add(-time.Hour), time.Now())
	require.Equal(t, apperr.KindUpstreamRequest, apperr.KindOf(err))
	require.Contains(t, err.Error(), "upstream down")
}

func TestDoJSON_BadBodyIsRequestError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/analytics/calls/v1/accounts/~/timeline/fetch", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"data":`)
	})
	f := newFakeVendor(t, mux)
	c := newTestClient(t, f)

	_, err := c.CallTimeline(context.Background(), "Day", AggregationRequest{})
	require.Equal(t, apperr.KindUpstreamRequest, apperr.KindOf(err))
}

func TestMessages_QueryAndPaging(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/restapi/v1.0/account/~/extension/42/message-store", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "SMS", q.Get("messageType"))
		assert.Equal(t, "1000", q.Get("perPage"))
		assert.True(t, strings.HasSuffix(q.Get("dateFrom"), "Z"))
		if q.Get("page") == "1" {
			_, _ = io.WriteString(w, `{"records":[{"id":1,"direction":"Inbound"},{"id":2,"direction":"Outbound"}],"paging":{"page":1,"totalPages":2}}`)
			return
		}
		_, _ = io.WriteString(w, `{"records":[{"id":"3","direction":"Inbound"}],"paging":{"page":2,"totalPages":2}}`)
	})
	f := newFakeVendor(t, mux)
	c := newTestClient(t, f)

	msgs, err := c.Messages(context.Background(), "42", time.Now().Add(-24*time.Hour), time.Now())
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	require.Equal(t, "3", msgs[2].ID.String())
	require.Equal(t, DirectionOutbound, msgs[1].Direction)
}

func TestValues_ScalarAndBreakdown(t *testing.T) {
	var v struct {
		A Values `json:"a"`
		B Values `json:"b"`
		C Values `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":3,"b":{"inbound":2,"outbound":4},"c":null}`), &v))
	require.Equal(t, 3.0, v.A.Total)
	require.Equal(t, 6.0, v.B.Total)
	require.Equal(t, 4.0, v.B.Part("outbound"))
	require.Zero(t, v.C.Total)
}

func TestExtension_DisplayName(t *testing.T) {
	require.Equal(t, "Ann Lee", Extension{ID: "1", Contact: Contact{FirstName: "Ann", LastName: "Lee"}}.DisplayName())
	require.Equal(t, "Front Desk", Extension{ID: "2", Name: "Front Desk"}.DisplayName())
	require.Equal(t, "Extension 3", Extension{ID: "3"}.DisplayName())
}
