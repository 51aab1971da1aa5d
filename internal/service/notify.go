package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/phegon/phegonbank/internal/domain"
)

func (s *AccountService) enqueueClosedNotice(ctx context.Context, tx *sql.Tx, owner *domain.User, accountNumber string, closedAt time.Time) error {
	n, err := buildNotification(owner.Email, "Account Closed", "account-closed", map[string]any{
		"name":          owner.FirstName,
		"accountNumber": accountNumber,
		"date":          closedAt.Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("enqueueClosedNotice: %w", err)
	}
	if err := s.notifications.Enqueue(ctx, tx, n); err != nil {
		return fmt.Errorf("enqueueClosedNotice: %w", err)
	}
	return nil
}

func buildNotification(recipient, subject, template string, vars map[string]any) (*domain.Notification, error) {
	payload, err := json.Marshal(vars)
	if err != nil {
		return nil, fmt.Errorf("buildNotification: marshal vars: %w", err)
	}
	return &domain.Notification{
		ID:                uuid.New(),
		Recipient:         recipient,
		Subject:           subject,
		TemplateName:      template,
		TemplateVariables: payload,
		Status:            domain.NotificationStatusPending,
		CreatedAt:         time.Now().UTC(),
	}, nil
}
