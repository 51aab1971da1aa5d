package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/phegon/phegonbank/internal/domain"
)

// Alert rows are enqueued inside the operation's transaction; the dispatcher
// delivers them after commit. A rolled-back operation therefore never alerts.

func (s *Service) enqueueCreditAlert(ctx context.Context, tx *sql.Tx, owner *domain.User, accountNumber string, amount, balance decimal.Decimal, at time.Time) error {
	return s.enqueueAlert(ctx, tx, owner, "Credit Alert", "credit-alert", accountNumber, amount, balance, at)
}

func (s *Service) enqueueDebitAlert(ctx context.Context, tx *sql.Tx, owner *domain.User, accountNumber string, amount, balance decimal.Decimal, at time.Time) error {
	return s.enqueueAlert(ctx, tx, owner, "Debit Alert", "debit-alert", accountNumber, amount, balance, at)
}

func (s *Service) enqueueAlert(ctx context.Context, tx *sql.Tx, owner *domain.User, subject, template, accountNumber string, amount, balance decimal.Decimal, at time.Time) error {
	vars, err := json.Marshal(map[string]any{
		"name":          owner.FirstName,
		"amount":        amount,
		"accountNumber": accountNumber,
		"date":          at.Format(time.RFC3339),
		"balance":       balance,
	})
	if err != nil {
		return fmt.Errorf("enqueueAlert: marshal vars: %w", err)
	}

	n := &domain.Notification{
		ID:                uuid.New(),
		Recipient:         owner.Email,
		Subject:           subject,
		TemplateName:      template,
		TemplateVariables: vars,
		Status:            domain.NotificationStatusPending,
		CreatedAt:         at,
	}
	if err := s.notifications.Enqueue(ctx, tx, n); err != nil {
		return fmt.Errorf("enqueueAlert: %w", err)
	}
	return nil
}
