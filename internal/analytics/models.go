package analytics

import (
	"time"

	"rc-analytics/internal/ringcentral"
)

// Period echoes the resolved query window.
type Period struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

type CallCounters struct {
	Total           int   `json:"total"`
	Answered        int   `json:"answered"`
	Missed          int   `json:"missed"`
	DurationSeconds int64 `json:"durationSeconds"`
}

type SMSCounters struct {
	Total    int `json:"total"`
	Sent     int `json:"sent"`
	Received int `json:"received"`
}

// UserRecord is one user's call row with SMS counters left-joined by grouping key.
type UserRecord struct {
	UserID          string       `json:"userId"`
	UserName        string       `json:"userName"`
	ExtensionNumber string       `json:"extensionNumber"`
	Calls           CallCounters `json:"calls"`
	SMS             SMSCounters  `json:"sms"`
}

type Summary struct {
	Period  Period       `json:"period"`
	Records []UserRecord `json:"records"`
}

// Query selects a window and, optionally, one user by extension number or user id.
type Query struct {
	Range     Range
	Extension string
}

// DailyPoint is the company-wide call count of one calendar day (YYYY-MM-DD).
type DailyPoint struct {
	Date  string `json:"date"`
	Calls int    `json:"calls"`
}

type Daily struct {
	Period Period       `json:"period"`
	Points []DailyPoint `json:"points"`
}

// ExtensionSMSSummary counts one extension's message-store walk.
type ExtensionSMSSummary struct {
	ExtensionID     string `json:"extensionId"`
	ExtensionNumber string `json:"extensionNumber"`
	Name            string `json:"name"`
	Inbound         int    `json:"inbound"`
	Outbound        int    `json:"outbound"`
	Total           int    `json:"total"`
	Calls           int    `json:"calls"`
}

// SMSLog is a message-store entry tagged with the extension it was read from.
type SMSLog struct {
	ringcentral.Message
	ExtensionID string `json:"extensionId"`
	Name        string `json:"name"`
}

type Communications struct {
	Period           Period                `json:"period"`
	Extensions       []ExtensionSMSSummary `json:"extensions"`
	TotalSMSMessages int                   `json:"totalSmsMessages"`
	SMSLogs          []SMSLog              `json:"smsLogs,omitempty"`
}
