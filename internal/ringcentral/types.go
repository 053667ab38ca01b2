package ringcentral

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// Grouping values accepted by the analytics endpoints.
const (
	GroupByUsers   = "Users"
	GroupByCompany = "Company"
)

// AggregationSum is the only aggregation type this service asks for.
const AggregationSum = "Sum"

// Counter and timer names used by the call and SMS analytics endpoints.
const (
	CounterAllCalls            = "allCalls"
	CounterCallsByResponse     = "callsByResponse"
	TimerAllCallsDuration      = "allCallsDuration"
	CounterAllMessages         = "allMessages"
	CounterMessagesByDirection = "messagesByDirection"
)

// AggregationRequest is the body of the aggregation and timeline fetch endpoints.
type AggregationRequest struct {
	Grouping        Grouping        `json:"grouping"`
	TimeSettings    TimeSettings    `json:"timeSettings"`
	ResponseOptions ResponseOptions `json:"responseOptions"`
}

type Grouping struct {
	GroupBy string   `json:"groupBy"`
	Keys    []string `json:"keys,omitempty"`
}

type TimeSettings struct {
	TimeZone  string    `json:"timeZone"`
	TimeRange TimeRange `json:"timeRange"`
}

type TimeRange struct {
	TimeFrom string `json:"timeFrom"`
	TimeTo   string `json:"timeTo"`
}

type ResponseOptions struct {
	Counters map[string]Aggregation `json:"counters,omitempty"`
	Timers   map[string]Aggregation `json:"timers,omitempty"`
}

type Aggregation struct {
	AggregationType string `json:"aggregationType"`
}

// NewTimeRange formats an instant pair the way the analytics API expects.
func NewTimeRange(from, to time.Time) TimeRange {
	return TimeRange{TimeFrom: FormatTime(from), TimeTo: FormatTime(to)}
}

// FormatTime renders t as UTC ISO 8601 with millisecond precision.
func FormatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}

// Sums builds a ResponseOptions map requesting Sum for every name.
func Sums(names ...string) map[string]Aggregation {
	out := make(map[string]Aggregation, len(names))
	for _, n := range names {
		out[n] = Aggregation{AggregationType: AggregationSum}
	}
	return out
}

type Paging struct {
	Page          int `json:"page"`
	PerPage       int `json:"perPage"`
	TotalPages    int `json:"totalPages"`
	TotalElements int `json:"totalElements"`
}

// hasNext reports whether another page follows page.
// A missing paging block means a single page.
func (p Paging) hasNext(page int) bool {
	return p.TotalPages > page
}

type aggregationResponse struct {
	Data struct {
		Records []AggregationRecord `json:"records"`
	} `json:"data"`
	Paging Paging `json:"paging"`
}

// AggregationRecord is one grouped row from an aggregation fetch.
type AggregationRecord struct {
	Key      string           `json:"key"`
	Info     RecordInfo       `json:"info"`
	Counters map[string]Value `json:"counters,omitempty"`
	Timers   map[string]Value `json:"timers,omitempty"`
}

type RecordInfo struct {
	ExtensionNumber string `json:"extensionNumber,omitempty"`
	Name            string `json:"name,omitempty"`
}

// Counter returns the named counter, zero when absent.
func (r AggregationRecord) Counter(name string) Values {
	return r.Counters[name].Values
}

// Timer returns the named timer, zero when absent.
func (r AggregationRecord) Timer(name string) Values {
	return r.Timers[name].Values
}

type Value struct {
	ValueType string `json:"valueType,omitempty"`
	Values    Values `json:"values"`
}

// Values holds either a scalar or a breakdown such as {"answered": 3, "notAnswered": 1}.
// Total is the scalar, or the sum of the breakdown.
type Values struct {
	Total float64
	Parts map[string]float64
}

// Part returns one breakdown entry, zero when absent.
func (v Values) Part(name string) float64 {
	return v.Parts[name]
}

func (v *Values) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		*v = Values{}
		return nil
	case b[0] == '{':
		parts := map[string]float64{}
		if err := json.Unmarshal(b, &parts); err != nil {
			return err
		}
		var total float64
		for _, n := range parts {
			total += n
		}
		*v = Values{Total: total, Parts: parts}
		return nil
	default:
		var n float64
		if err := json.Unmarshal(b, &n); err != nil {
			return err
		}
		*v = Values{Total: n}
		return nil
	}
}

func (v Values) MarshalJSON() ([]byte, error) {
	if v.Parts != nil {
		return json.Marshal(v.Parts)
	}
	return json.Marshal(v.Total)
}

type timelineResponse struct {
	Data struct {
		Records []TimelineRecord `json:"records"`
	} `json:"data"`
	Paging Paging `json:"paging"`
}

// TimelineRecord is one grouped series from a timeline fetch.
type TimelineRecord struct {
	Key    string          `json:"key"`
	Info   RecordInfo      `json:"info"`
	Points []TimelinePoint `json:"points"`
}

type TimelinePoint struct {
	Time     string           `json:"time"`
	Counters map[string]Value `json:"counters,omitempty"`
	Timers   map[string]Value `json:"timers,omitempty"`
}

// Extension is an entry of the account extension directory.
type Extension struct {
	ID              json.Number `json:"id"`
	ExtensionNumber string      `json:"extensionNumber"`
	Name            string      `json:"name"`
	Type            string      `json:"type"`
	Status          string      `json:"status"`
	Contact         Contact     `json:"contact"`
}

type Contact struct {
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Email     string `json:"email,omitempty"`
}

// DisplayName is "First Last", falling back to the directory name and then "Extension <id>".
func (e Extension) DisplayName() string {
	if n := strings.TrimSpace(e.Contact.FirstName + " " + e.Contact.LastName); n != "" {
		return n
	}
	if e.Name != "" {
		return e.Name
	}
	return "Extension " + e.ID.String()
}

type extensionList struct {
	Records []Extension `json:"records"`
	Paging  Paging      `json:"paging"`
}

// Message directions reported by the message store.
const (
	DirectionInbound  = "Inbound"
	DirectionOutbound = "Outbound"
)

// Message is a message-store entry.
type Message struct {
	ID            json.Number `json:"id"`
	Type          string      `json:"type"`
	Direction     string      `json:"direction"`
	CreationTime  string      `json:"creationTime"`
	MessageStatus string      `json:"messageStatus"`
	Subject       string      `json:"subject"`
	From          Party       `json:"from"`
	To            []Party     `json:"to"`
}

type Party struct {
	PhoneNumber string `json:"phoneNumber,omitempty"`
	Name        string `json:"name,omitempty"`
}

type messageList struct {
	Records []Message `json:"records"`
	Paging  Paging    `json:"paging"`
}
