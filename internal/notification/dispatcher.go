package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/phegon/phegonbank/internal/domain"
)

type outboxRepo interface {
	GetPending(ctx context.Context, limit int) ([]domain.Notification, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.NotificationStatus) error
}

type sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Dispatcher drains the notification outbox. It runs strictly after the
// enqueueing transaction has committed, so delivery failures can never undo a
// financial operation; a failed send leaves the row pending for the next poll.
type Dispatcher struct {
	outbox    outboxRepo
	mailer    sender
	logger    *slog.Logger
	interval  time.Duration
	batchSize int
}

func NewDispatcher(outbox outboxRepo, mailer sender, logger *slog.Logger, interval time.Duration, batchSize int) *Dispatcher {
	return &Dispatcher{
		outbox:    outbox,
		mailer:    mailer,
		logger:    logger,
		interval:  interval,
		batchSize: batchSize,
	}
}

func (d *Dispatcher) Start(ctx context.Context) {
	d.logger.Info("notification dispatcher started", "interval", d.interval)

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("notification dispatcher stopped")
			return
		case <-ticker.C:
			d.poll(ctx)
		}
	}
}

func (d *Dispatcher) poll(ctx context.Context) {
	pending, err := d.outbox.GetPending(ctx, d.batchSize)
	if err != nil {
		d.logger.Error("failed to fetch pending notifications", "error", err)
		return
	}

	for _, n := range pending {
		if err := d.deliver(ctx, n); err != nil {
			d.logger.Error("failed to deliver notification",
				"notification_id", n.ID,
				"template", n.TemplateName,
				"error", err,
			)
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, n domain.Notification) error {
	var vars map[string]any
	if err := json.Unmarshal(n.TemplateVariables, &vars); err != nil {
		d.logger.Error("malformed notification variables", "notification_id", n.ID, "error", err)
		return d.outbox.UpdateStatus(ctx, n.ID, domain.NotificationStatusFailed)
	}

	body, err := Render(n.TemplateName, vars)
	if err != nil {
		d.logger.Error("notification template render failed", "notification_id", n.ID, "error", err)
		return d.outbox.UpdateStatus(ctx, n.ID, domain.NotificationStatusFailed)
	}

	// Transient gateway errors leave the row pending; the next poll retries.
	if err := d.mailer.Send(ctx, n.Recipient, n.Subject, body); err != nil {
		return fmt.Errorf("deliver: %w", err)
	}

	if err := d.outbox.UpdateStatus(ctx, n.ID, domain.NotificationStatusSent); err != nil {
		return fmt.Errorf("deliver: %w", err)
	}

	d.logger.Info("notification delivered",
		"notification_id", n.ID,
		"template", n.TemplateName,
		"recipient", n.Recipient,
	)
	return nil
}
