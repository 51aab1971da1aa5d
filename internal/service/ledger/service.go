// Package ledger is the transaction engine: the only writer of account
// balances and the only creator of transaction records. Every operation runs
// as one database transaction so the balance check, the balance mutation and
// the ledger append commit together or not at all.
package ledger

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/phegon/phegonbank/internal/domain"
)

type accountRepo interface {
	GetByAccountNumber(ctx context.Context, number string) (*domain.Account, error)
	GetForUpdate(ctx context.Context, tx *sql.Tx, number string) (*domain.Account, error)
	UpdateBalance(ctx context.Context, tx *sql.Tx, number string, newBalance decimal.Decimal, newVersion int64) error
}

type transactionRepo interface {
	Create(ctx context.Context, tx *sql.Tx, txn *domain.Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	GetByAccountNumber(ctx context.Context, number string, limit, offset int) ([]domain.Transaction, int, error)
}

type notificationRepo interface {
	Enqueue(ctx context.Context, tx *sql.Tx, n *domain.Notification) error
}

type userRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

type Service struct {
	accounts      accountRepo
	transactions  transactionRepo
	notifications notificationRepo
	users         userRepo
	db            *sql.DB
}

func NewService(
	accounts accountRepo,
	transactions transactionRepo,
	notifications notificationRepo,
	users userRepo,
	db *sql.DB,
) *Service {
	return &Service{
		accounts:      accounts,
		transactions:  transactions,
		notifications: notifications,
		users:         users,
		db:            db,
	}
}

// GetTransactionForOwner reports ownership mismatches as not-found so callers
// cannot probe for foreign transaction ids.
func (s *Service) GetTransactionForOwner(ctx context.Context, id, ownerID uuid.UUID) (*domain.Transaction, error) {
	txn, err := s.transactions.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("GetTransactionForOwner: %w", err)
	}

	acct, err := s.accounts.GetByAccountNumber(ctx, txn.AccountNumber)
	if err != nil {
		return nil, fmt.Errorf("GetTransactionForOwner: %w", err)
	}
	if acct.OwnerID != ownerID {
		return nil, fmt.Errorf("GetTransactionForOwner: %w", domain.ErrNotFound)
	}

	return txn, nil
}

// GetTransactionsForAccount returns one page ordered by date descending plus
// the total count. The account must belong to the requesting owner.
func (s *Service) GetTransactionsForAccount(ctx context.Context, number string, ownerID uuid.UUID, page, size int) ([]domain.Transaction, int, error) {
	acct, err := s.accounts.GetByAccountNumber(ctx, number)
	if err != nil {
		return nil, 0, fmt.Errorf("GetTransactionsForAccount: %w", err)
	}
	if acct.OwnerID != ownerID {
		return nil, 0, fmt.Errorf("GetTransactionsForAccount: %w", domain.ErrAccountNotFound)
	}

	txns, total, err := s.transactions.GetByAccountNumber(ctx, number, size, page*size)
	if err != nil {
		return nil, 0, fmt.Errorf("GetTransactionsForAccount: %w", err)
	}
	return txns, total, nil
}

func validateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("validateAmount: %w", domain.ErrInvalidAmount)
	}
	return nil
}

func verifyActive(acct *domain.Account, role string) error {
	if acct.Status != domain.AccountStatusActive {
		return fmt.Errorf("%s: %w", role, domain.ErrAccountClosed)
	}
	return nil
}

func optionalDescription(description string) *string {
	if description == "" {
		return nil
	}
	return &description
}
