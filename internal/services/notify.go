package services

import (
	"context"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/log"
)

// Publisher receives change notifications once a write has committed.
type Publisher interface {
	PublishChange(ctx context.Context, msg *amqp.ChangeMessage) error
}

type notifier struct {
	pub    Publisher
	logger *log.Logger
}

// changed publishes a notification. Failures are logged and never surface
// to the caller since the write is already durable.
func (n notifier) changed(ctx context.Context, kind core.Kind, op amqp.Op, id, userID int64) {
	if n.pub == nil {
		return
	}
	if err := n.pub.PublishChange(ctx, amqp.NewChangeMessage(string(kind), op, id, userID)); err != nil {
		n.logger.WarnContext(ctx, "Failed to publish change message",
			log.FieldKind, kind,
			log.FieldRecordID, id,
			log.FieldError, err)
	}
}
