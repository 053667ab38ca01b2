package webhooks

import (
	"context"
	"sync"
)

// MemoryRepo is a simple in-memory append-only repository useful for tests and local runs.
// It is not intended for production use.
type MemoryRepo struct {
	mu     sync.Mutex
	missed []MissedCall
	sms    []SMSMessage
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{} }

func (r *MemoryRepo) InsertMissedCall(_ context.Context, m MissedCall) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.missed = append(r.missed, m)
	return nil
}

func (r *MemoryRepo) ListMissedCalls(context.Context) ([]MissedCall, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]MissedCall, len(r.missed))
	copy(out, r.missed)
	return out, nil
}

func (r *MemoryRepo) InsertSMS(_ context.Context, m SMSMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sms = append(r.sms, m)
	return nil
}

func (r *MemoryRepo) ListSMS(context.Context) ([]SMSMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]SMSMessage, len(r.sms))
	copy(out, r.sms)
	return out, nil
}
