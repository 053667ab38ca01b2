package webhooks

import "time"

// Kind names a webhook feed. Values double as route suffixes and metric labels.
type Kind string

const (
	KindMissedCall Kind = "missed_call"
	KindSMS        Kind = "msg_receive"
	KindVendor     Kind = "ringcentral"
)

// MissedCall is a persisted missed-call notification.
//
// Invariants:
// - Records are never updated or deleted.
// - No idempotency key: a redelivered notification is stored again.
type MissedCall struct {
	ID string `json:"id" bson:"_id"`

	CallID          string `json:"callid" bson:"callid"`
	CallerPhone     string `json:"caller_phone" bson:"caller_phone"`
	RecipientPhone  string `json:"recipient_phone" bson:"recipient_phone"`
	RecipientName   string `json:"recipient_name" bson:"recipient_name"`
	CallDirection   string `json:"call_direction" bson:"call_direction"`
	CallEndDate     string `json:"call_end_date" bson:"call_end_date"`
	CallEndTime     string `json:"call_end_time" bson:"call_end_time"`
	AccountID       string `json:"account_id" bson:"account_id"`
	ExtensionID     string `json:"extension_id" bson:"extension_id"`
	FirstName       string `json:"first_name" bson:"first_name"`
	Email           string `json:"email" bson:"email"`
	ExtensionNumber string `json:"extension_number" bson:"extension_number"`

	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// SMSMessage is a persisted inbound SMS notification. Same invariants as MissedCall.
type SMSMessage struct {
	ID string `json:"id" bson:"_id"`

	SenderPhone     string `json:"sender_phone" bson:"sender_phone"`
	SenderName      string `json:"sender_name" bson:"sender_name"`
	RecipientPhone  string `json:"recipient_phone" bson:"recipient_phone"`
	Message         string `json:"message" bson:"message"`
	ReceivedDate    string `json:"received_date" bson:"received_date"`
	ReceivedTime    string `json:"received_time" bson:"received_time"`
	AccountID       string `json:"account_id" bson:"account_id"`
	ExtensionID     string `json:"extension_id" bson:"extension_id"`
	FirstName       string `json:"first_name" bson:"first_name"`
	Email           string `json:"email" bson:"email"`
	ExtensionNumber string `json:"extension_number" bson:"extension_number"`

	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

func (m *MissedCall) fields() map[string]*string {
	return map[string]*string{
		"callid":           &m.CallID,
		"caller_phone":     &m.CallerPhone,
		"recipient_phone":  &m.RecipientPhone,
		"recipient_name":   &m.RecipientName,
		"call_direction":   &m.CallDirection,
		"call_end_date":    &m.CallEndDate,
		"call_end_time":    &m.CallEndTime,
		"account_id":       &m.AccountID,
		"extension_id":     &m.ExtensionID,
		"first_name":       &m.FirstName,
		"email":            &m.Email,
		"extension_number": &m.ExtensionNumber,
	}
}

func (m *SMSMessage) fields() map[string]*string {
	return map[string]*string{
		"sender_phone":     &m.SenderPhone,
		"sender_name":      &m.SenderName,
		"recipient_phone":  &m.RecipientPhone,
		"message":          &m.Message,
		"received_date":    &m.ReceivedDate,
		"received_time":    &m.ReceivedTime,
		"account_id":       &m.AccountID,
		"extension_id":     &m.ExtensionID,
		"first_name":       &m.FirstName,
		"email":            &m.Email,
		"extension_number": &m.ExtensionNumber,
	}
}
