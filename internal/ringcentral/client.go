package ringcentral

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/oauth2"

	"rc-analytics/internal/apperr"
	"rc-analytics/internal/metrics"
)

// API is the subset of the RingCentral platform used by analytics.
// No vendor HTTP calls outside this package.
type API interface {
	CallAggregation(ctx context.Context, req AggregationRequest) ([]AggregationRecord, error)
	SMSAggregation(ctx context.Context, req AggregationRequest) ([]AggregationRecord, error)
	CallTimeline(ctx context.Context, interval string, req AggregationRequest) ([]TimelineRecord, error)
	Extensions(ctx context.Context) ([]Extension, error)
	Messages(ctx context.Context, extensionID string, from, to time.Time) ([]Message, error)
}

// Config configures a Client.
type Config struct {
	ServerURL    string
	ClientID     string
	ClientSecret string
	UserJWT      string
	Timeout      time.Duration

	// Base is the transport used for token and API calls; nil means http.DefaultTransport.
	Base http.RoundTripper
	Now  func() time.Time
}

const (
	analyticsPageSize = 100
	directoryPageSize = 1000
)

// Client is the RingCentral REST client. Safe for concurrent use.
type Client struct {
	baseURL string
	hc      *http.Client
}

var _ API = (*Client)(nil)

// NewClient validates the credential and builds an authorized HTTP client.
// ctx bounds token exchanges; pass a long-lived context.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.ServerURL == "" {
		return nil, errors.New("ringcentral: server url is required")
	}
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, errors.New("ringcentral: client id and secret are required")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if err := inspectCredential(cfg.UserJWT, cfg.Now()); err != nil {
		return nil, err
	}
	base := cfg.Base
	if base == nil {
		base = http.DefaultTransport
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	src := &jwtBearerSource{
		ctx:          ctx,
		tokenURL:     cfg.ServerURL + "/restapi/oauth/token",
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		assertion:    cfg.UserJWT,
		hc:           &http.Client{Transport: base, Timeout: cfg.Timeout},
		now:          cfg.Now,
	}

	return &Client{
		baseURL: cfg.ServerURL,
		hc: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &oauth2.Transport{
				Source: oauth2.ReuseTokenSource(nil, src),
				Base:   base,
			},
		},
	}, nil
}

// StatusError is a non-2xx vendor response.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("ringcentral: unexpected status %d", e.Status)
	}
	return fmt.Sprintf("ringcentral: unexpected status %d: %s", e.Status, e.Body)
}

func (c *Client) CallAggregation(ctx context.Context, req AggregationRequest) ([]AggregationRecord, error) {
	return c.aggregation(ctx, "call_aggregation", "/analytics/calls/v1/accounts/~/aggregation/fetch", req)
}

func (c *Client) SMSAggregation(ctx context.Context, req AggregationRequest) ([]AggregationRecord, error) {
	return c.aggregation(ctx, "sms_aggregation", "/analytics/sms/v1/accounts/~/aggregation/fetch", req)
}

func (c *Client) aggregation(ctx context.Context, endpoint, path string, req AggregationRequest) ([]AggregationRecord, error) {
	var out []AggregationRecord
	for page := 1; ; page++ {
		q := url.Values{}
		q.Set("perPage", strconv.Itoa(analyticsPageSize))
		q.Set("page", strconv.Itoa(page))

		var resp aggregationResponse
		if err := c.doJSON(ctx, endpoint, http.MethodPost, path, q, req, &resp); err != nil {
			return nil, err
		}
		out = append(out, resp.Data.Records...)
		if !resp.Paging.hasNext(page) {
			return out, nil
		}
	}
}

// CallTimeline fetches call counters bucketed by interval (Hour, Day, Week, Month).
func (c *Client) CallTimeline(ctx context.Context, interval string, req AggregationRequest) ([]TimelineRecord, error) {
	var out []TimelineRecord
	for page := 1; ; page++ {
		q := url.Values{}
		q.Set("interval", interval)
		q.Set("perPage", strconv.Itoa(analyticsPageSize))
		q.Set("page", strconv.Itoa(page))

		var resp timelineResponse
		if err := c.doJSON(ctx, "call_timeline", http.MethodPost, "/analytics/calls/v1/accounts/~/timeline/fetch", q, req, &resp); err != nil {
			return nil, err
		}
		out = append(out, resp.Data.Records...)
		if !resp.Paging.hasNext(page) {
			return out, nil
		}
	}
}

// Extensions lists the whole account extension directory.
func (c *Client) Extensions(ctx context.Context) ([]Extension, error) {
	var out []Extension
	for page := 1; ; page++ {
		q := url.Values{}
		q.Set("perPage", strconv.Itoa(directoryPageSize))
		q.Set("page", strconv.Itoa(page))

		var resp extensionList
		if err := c.doJSON(ctx, "extensions", http.MethodGet, "/restapi/v1.0/account/~/extension", q, nil, &resp); err != nil {
			return nil, err
		}
		out = append(out, resp.Records...)
		if !resp.Paging.hasNext(page) {
			return out, nil
		}
	}
}

// Messages lists SMS message-store entries of one extension created in [from, to].
func (c *Client) Messages(ctx context.Context, extensionID string, from, to time.Time) ([]Message, error) {
	if extensionID == "" {
		return nil, apperr.UpstreamRequest("ringcentral.messages", errors.New("extension id is required"))
	}
	path := "/restapi/v1.0/account/~/extension/" + url.PathEscape(extensionID) + "/message-store"

	var out []Message
	for page := 1; ; page++ {
		q := url.Values{}
		q.Set("messageType", "SMS")
		q.Set("dateFrom", FormatTime(from))
		q.Set("dateTo", FormatTime(to))
		q.Set("perPage", strconv.Itoa(directoryPageSize))
		q.Set("page", strconv.Itoa(page))

		var resp messageList
		if err := c.doJSON(ctx, "message_store", http.MethodGet, path, q, nil, &resp); err != nil {
			return nil, err
		}
		out = append(out, resp.Records...)
		if !resp.Paging.hasNext(page) {
			return out, nil
		}
	}
}

func (c *Client) doJSON(ctx context.Context, endpoint, method, path string, q url.Values, in, out any) error {
	op := "ringcentral." + endpoint

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return apperr.UpstreamRequest(op, err)
		}
		body = bytes.NewReader(b)
	}

	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return apperr.UpstreamRequest(op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		observe(endpoint, 0, start)
		// Token failures arrive here already classified.
		if apperr.KindOf(err) == apperr.KindUpstreamAuth {
			return err
		}
		return apperr.UpstreamRequest(op, err)
	}
	defer resp.Body.Close()
	observe(endpoint, resp.StatusCode, start)

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return apperr.UpstreamRequest(op, err)
	}
	if resp.StatusCode/100 != 2 {
		serr := &StatusError{Status: resp.StatusCode, Body: excerpt(raw)}
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return apperr.UpstreamAuth(op, serr)
		}
		return apperr.UpstreamRequest(op, serr)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return apperr.UpstreamRequest(op, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

func observe(endpoint string, status int, start time.Time) {
	metrics.ObserveVendorRequest(endpoint, status, time.Since(start))
}

func excerpt(b []byte) string {
	const limit = 512
	b = bytes.TrimSpace(b)
	if len(b) > limit {
		return string(b[:limit]) + "..."
	}
	return string(b)
}
