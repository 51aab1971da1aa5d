package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/phegon/phegonbank/internal/domain"
)

const notificationColumns = `id, recipient, subject, template_name, template_variables,
	status, attempts, last_attempt, created_at`

// NotificationRepository is the outbox the dispatcher drains. Enqueue happens
// inside the ledger engine's transaction; delivery status transitions happen
// outside it.
type NotificationRepository struct {
	db *sql.DB
}

func NewNotificationRepository(db *sql.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Enqueue inserts the pending row within tx so a rolled-back operation leaves
// no notification behind.
func (r *NotificationRepository) Enqueue(ctx context.Context, tx *sql.Tx, n *domain.Notification) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO notifications (
			id, recipient, subject, template_name, template_variables,
			status, attempts, last_attempt, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		n.ID, n.Recipient, n.Subject, n.TemplateName, n.TemplateVariables,
		n.Status, n.Attempts, n.LastAttempt, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("Enqueue: %w", err)
	}
	return nil
}

func (r *NotificationRepository) GetPending(ctx context.Context, limit int) ([]domain.Notification, error) {
	// FOR UPDATE SKIP LOCKED keeps concurrent dispatchers off the same rows
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+notificationColumns+` FROM notifications
		WHERE status = $1 ORDER BY created_at LIMIT $2 FOR UPDATE SKIP LOCKED`,
		domain.NotificationStatusPending, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("GetPending: %w", err)
	}
	defer rows.Close()

	var pending []domain.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("GetPending: scan: %w", err)
		}
		pending = append(pending, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetPending: rows: %w", err)
	}
	return pending, nil
}

func (r *NotificationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.NotificationStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET status = $1, attempts = attempts + 1, last_attempt = now()
		WHERE id = $2`,
		status, id,
	)
	if err != nil {
		return fmt.Errorf("UpdateStatus: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("UpdateStatus: rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("UpdateStatus: %w", domain.ErrNotFound)
	}
	return nil
}

func scanNotification(s scanner) (*domain.Notification, error) {
	var n domain.Notification
	err := s.Scan(
		&n.ID, &n.Recipient, &n.Subject, &n.TemplateName, &n.TemplateVariables,
		&n.Status, &n.Attempts, &n.LastAttempt, &n.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &n, nil
}
