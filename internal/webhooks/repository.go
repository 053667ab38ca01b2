package webhooks

import "context"

// Repository is the persistence contract for webhook documents.
//
// It MUST be append-only: no Update/Delete methods.
// List returns every document of a kind, oldest first.
type Repository interface {
	InsertMissedCall(ctx context.Context, m MissedCall) error
	ListMissedCalls(ctx context.Context) ([]MissedCall, error)

	InsertSMS(ctx context.Context, m SMSMessage) error
	ListSMS(ctx context.Context) ([]SMSMessage, error)
}
