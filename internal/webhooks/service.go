package webhooks

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"rc-analytics/internal/apperr"
	"rc-analytics/internal/metrics"
)

// MsgInvalidBody is the client-facing message for undecodable payloads.
const MsgInvalidBody = "invalid JSON body"

// Service ingests vendor notifications into the document store.
type Service struct {
	repo  Repository
	clock func() time.Time
	newID func() string
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now, newID: uuid.NewString}
}

var errNoRepo = errors.New("webhooks: repository not configured")

// RecordMissedCall decodes body, stamps timestamps and appends a new document.
func (s *Service) RecordMissedCall(ctx context.Context, body []byte) (MissedCall, error) {
	const op = "webhooks.RecordMissedCall"
	if s.repo == nil {
		return MissedCall{}, apperr.Persistence(op, errNoRepo)
	}
	m, err := decodeMissedCall(body)
	if err != nil {
		metrics.WebhookIngested(string(KindMissedCall), "rejected")
		return MissedCall{}, &apperr.Error{Kind: apperr.KindValidation, Op: op, Message: MsgInvalidBody, Err: err}
	}
	now := s.clock().UTC()
	m.ID = s.newID()
	m.CreatedAt, m.UpdatedAt = now, now

	if err := s.repo.InsertMissedCall(ctx, m); err != nil {
		metrics.WebhookIngested(string(KindMissedCall), "failed")
		return MissedCall{}, apperr.Persistence(op, err)
	}
	metrics.WebhookIngested(string(KindMissedCall), "stored")
	return m, nil
}

func (s *Service) MissedCalls(ctx context.Context) ([]MissedCall, error) {
	if s.repo == nil {
		return nil, apperr.Persistence("webhooks.MissedCalls", errNoRepo)
	}
	out, err := s.repo.ListMissedCalls(ctx)
	if err != nil {
		return nil, apperr.Persistence("webhooks.MissedCalls", err)
	}
	return out, nil
}

// RecordSMS decodes body, stamps timestamps and appends a new document.
func (s *Service) RecordSMS(ctx context.Context, body []byte) (SMSMessage, error) {
	const op = "webhooks.RecordSMS"
	if s.repo == nil {
		return SMSMessage{}, apperr.Persistence(op, errNoRepo)
	}
	m, err := decodeSMS(body)
	if err != nil {
		metrics.WebhookIngested(string(KindSMS), "rejected")
		return SMSMessage{}, &apperr.Error{Kind: apperr.KindValidation, Op: op, Message: MsgInvalidBody, Err: err}
	}
	now := s.clock().UTC()
	m.ID = s.newID()
	m.CreatedAt, m.UpdatedAt = now, now

	if err := s.repo.InsertSMS(ctx, m); err != nil {
		metrics.WebhookIngested(string(KindSMS), "failed")
		return SMSMessage{}, apperr.Persistence(op, err)
	}
	metrics.WebhookIngested(string(KindSMS), "stored")
	return m, nil
}

func (s *Service) SMSMessages(ctx context.Context) ([]SMSMessage, error) {
	if s.repo == nil {
		return nil, apperr.Persistence("webhooks.SMSMessages", errNoRepo)
	}
	out, err := s.repo.ListSMS(ctx)
	if err != nil {
		return nil, apperr.Persistence("webhooks.SMSMessages", err)
	}
	return out, nil
}
