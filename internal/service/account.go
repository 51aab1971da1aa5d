package service

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/phegon/phegonbank/internal/domain"
	"github.com/phegon/phegonbank/internal/logging"
)

type accountRepo interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByAccountNumber(ctx context.Context, number string) (*domain.Account, error)
	GetByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]domain.Account, error)
	ExistsByAccountNumber(ctx context.Context, number string) (bool, error)
	GetForUpdate(ctx context.Context, tx *sql.Tx, number string) (*domain.Account, error)
	Close(ctx context.Context, tx *sql.Tx, number string, closedAt time.Time) error
}

type ownerChecker interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

type notificationEnqueuer interface {
	Enqueue(ctx context.Context, tx *sql.Tx, n *domain.Notification) error
}

type AccountService struct {
	accounts      accountRepo
	users         ownerChecker
	notifications notificationEnqueuer
	db            *sql.DB
}

func NewAccountService(accounts accountRepo, users ownerChecker, notifications notificationEnqueuer, db *sql.DB) *AccountService {
	return &AccountService{accounts: accounts, users: users, notifications: notifications, db: db}
}

func (s *AccountService) OpenAccount(ctx context.Context, ownerID uuid.UUID, accountType domain.AccountType, currency domain.Currency) (*domain.Account, error) {
	log := logging.FromContext(ctx)

	if _, err := s.users.GetByID(ctx, ownerID); err != nil {
		return nil, fmt.Errorf("OpenAccount: %w", err)
	}
	if !accountType.IsValid() {
		return nil, fmt.Errorf("OpenAccount: %w", domain.ErrInvalidAccountType)
	}
	if !currency.IsValid() {
		return nil, fmt.Errorf("OpenAccount: %w", domain.ErrInvalidCurrency)
	}

	number, err := s.generateAccountNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("OpenAccount: %w", err)
	}

	account := &domain.Account{
		ID:            uuid.New(),
		OwnerID:       ownerID,
		AccountNumber: number,
		AccountType:   accountType,
		Currency:      currency,
		Balance:       decimal.Zero,
		Version:       1,
		Status:        domain.AccountStatusActive,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("OpenAccount: %w", err)
	}

	log.Info("account opened",
		"account_number", account.AccountNumber,
		"owner_id", ownerID,
		"account_type", accountType,
		"currency", currency,
	)

	return account, nil
}

func (s *AccountService) GetOwnerAccounts(ctx context.Context, ownerID uuid.UUID) ([]domain.Account, error) {
	accounts, err := s.accounts.GetByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("GetOwnerAccounts: %w", err)
	}
	return accounts, nil
}

// GetAccountForOwner reports a foreign account as not-found rather than
// forbidden, so callers cannot confirm that a number exists.
func (s *AccountService) GetAccountForOwner(ctx context.Context, number string, ownerID uuid.UUID) (*domain.Account, error) {
	account, err := s.accounts.GetByAccountNumber(ctx, number)
	if err != nil {
		return nil, fmt.Errorf("GetAccountForOwner: %w", err)
	}
	if account.OwnerID != ownerID {
		return nil, fmt.Errorf("GetAccountForOwner: %w", domain.ErrAccountNotFound)
	}
	return account, nil
}

// CloseAccount transitions ACTIVE to CLOSED, one-way. The balance must be zero
// at the moment of closure, checked under the row lock.
func (s *AccountService) CloseAccount(ctx context.Context, number string, ownerID uuid.UUID) (*domain.Account, error) {
	log := logging.FromContext(ctx)

	owner, err := s.users.GetByID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("CloseAccount: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("CloseAccount: begin tx: %w", err)
	}
	defer tx.Rollback()

	account, err := s.accounts.GetForUpdate(ctx, tx, number)
	if err != nil {
		return nil, fmt.Errorf("CloseAccount: %w", err)
	}
	if account.OwnerID != ownerID {
		return nil, fmt.Errorf("CloseAccount: %w", domain.ErrAccountNotFound)
	}
	if account.Status != domain.AccountStatusActive {
		return nil, fmt.Errorf("CloseAccount: %w", domain.ErrAccountClosed)
	}
	if !account.Balance.IsZero() {
		return nil, fmt.Errorf("CloseAccount: %w", domain.ErrNonZeroBalance)
	}

	closedAt := time.Now().UTC()
	if err := s.accounts.Close(ctx, tx, number, closedAt); err != nil {
		return nil, fmt.Errorf("CloseAccount: %w", err)
	}

	if err := s.enqueueClosedNotice(ctx, tx, owner, number, closedAt); err != nil {
		return nil, fmt.Errorf("CloseAccount: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("CloseAccount: commit: %w", err)
	}

	log.Info("account closed", "account_number", number, "owner_id", ownerID)

	account.Status = domain.AccountStatusClosed
	account.ClosedAt = &closedAt
	return account, nil
}

// generateAccountNumber produces a "66"-prefixed 10-digit number and retries
// on collision. The space is 10^8, so retries are rare; store errors propagate
// immediately instead of retrying forever against a failing store. The source
// is deliberately non-cryptographic: account numbers are identifiers, not
// secrets.
func (s *AccountService) generateAccountNumber(ctx context.Context) (string, error) {
	for {
		candidate := "66" + strconv.Itoa(rand.IntN(90_000_000)+10_000_000)

		exists, err := s.accounts.ExistsByAccountNumber(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("generateAccountNumber: %w", err)
		}
		if !exists {
			return candidate, nil
		}
	}
}
