package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"supplement-iq/internal/logging"
	"supplement-iq/internal/model"
)

// EventSubmissionReviewed is carried in the "type" attribute.
const EventSubmissionReviewed = "submission.reviewed"

// SubmissionReviewed is emitted after a moderator approves or rejects a
// pending product.
type SubmissionReviewed struct {
	SubmissionID    int                    `json:"submission_id"`
	ProductID       *int                   `json:"product_id,omitempty"`
	JobType         model.JobType          `json:"job_type"`
	Status          model.SubmissionStatus `json:"status"`
	Category        model.Category         `json:"category"`
	ProductName     string                 `json:"product_name"`
	SubmittedBy     uuid.UUID              `json:"submitted_by"`
	ReviewedBy      uuid.UUID              `json:"reviewed_by"`
	RejectionReason *string                `json:"rejection_reason,omitempty"`
	ReviewedAt      time.Time              `json:"reviewed_at"`
}

// Publisher sends moderation events. With a nil MQ events are only logged.
type Publisher struct {
	mq    *MQ
	queue string
	log   logging.Logger
}

func NewPublisher(m *MQ, queue string, log logging.Logger) *Publisher {
	return &Publisher{mq: m, queue: queue, log: log}
}

func (p *Publisher) PublishSubmissionReviewed(ctx context.Context, ev SubmissionReviewed) error {
	if p.mq == nil {
		p.log.Info(ctx, "submission reviewed",
			"submission_id", ev.SubmissionID, "status", ev.Status, "job_type", ev.JobType)
		return nil
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	id, err := p.mq.Publish(ctx, p.queue, data, map[string]string{"type": EventSubmissionReviewed})
	if err != nil {
		return fmt.Errorf("publish %s: %w", EventSubmissionReviewed, err)
	}
	p.log.Info(ctx, "event published", "message_id", id, "submission_id", ev.SubmissionID)
	return nil
}

// ConsumeSubmissionReviewed decodes events from queue and hands them to fn.
// Undecodable payloads are logged and acknowledged so they do not loop.
func ConsumeSubmissionReviewed(ctx context.Context, m *MQ, queue string, log logging.Logger, fn func(context.Context, SubmissionReviewed) error) error {
	return m.Subscribe(ctx, queue, func(ctx context.Context, msg Message) error {
		var ev SubmissionReviewed
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			log.Warn(ctx, "drop malformed event", "message_id", msg.ID, "error", err)
			return nil
		}
		return fn(ctx, ev)
	})
}
