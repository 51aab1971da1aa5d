package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/phegon/phegonbank/internal/domain"
	"github.com/phegon/phegonbank/internal/logging"
)

type DepositRequest struct {
	AccountNumber string
	Amount        decimal.Decimal
	Description   string
}

func (s *Service) Deposit(ctx context.Context, req DepositRequest) (*domain.Transaction, error) {
	log := logging.FromContext(ctx)

	if err := validateAmount(req.Amount); err != nil {
		return nil, fmt.Errorf("Deposit: %w", err)
	}

	owner, err := s.ownerOfAccount(ctx, req.AccountNumber)
	if err != nil {
		return nil, fmt.Errorf("Deposit: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("Deposit: begin tx: %w", err)
	}
	defer tx.Rollback()

	acct, err := s.accounts.GetForUpdate(ctx, tx, req.AccountNumber)
	if err != nil {
		return nil, fmt.Errorf("Deposit: %w", err)
	}
	if err := verifyActive(acct, "account"); err != nil {
		return nil, fmt.Errorf("Deposit: %w", err)
	}

	newBalance := acct.Balance.Add(req.Amount)
	now := time.Now().UTC()

	txn := &domain.Transaction{
		ID:                uuid.New(),
		AccountNumber:     acct.AccountNumber,
		TransactionType:   domain.TransactionTypeDeposit,
		TransactionStatus: domain.TransactionStatusSuccess,
		Amount:            req.Amount,
		Description:       optionalDescription(req.Description),
		TransactionDate:   now,
	}
	if err := s.transactions.Create(ctx, tx, txn); err != nil {
		return nil, fmt.Errorf("Deposit: create transaction: %w", err)
	}

	if err := s.accounts.UpdateBalance(ctx, tx, acct.AccountNumber, newBalance, acct.Version+1); err != nil {
		return nil, fmt.Errorf("Deposit: update balance: %w", err)
	}

	if err := s.enqueueCreditAlert(ctx, tx, owner, acct.AccountNumber, req.Amount, newBalance, now); err != nil {
		return nil, fmt.Errorf("Deposit: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("Deposit: commit: %w", err)
	}

	log.Info("deposit completed",
		"transaction_id", txn.ID,
		"account_number", acct.AccountNumber,
		"amount", req.Amount,
	)

	return txn, nil
}

// ownerOfAccount resolves the owning user before the locking transaction
// starts; the owner of an account never changes, so the read is safe outside
// the atomic unit.
func (s *Service) ownerOfAccount(ctx context.Context, number string) (*domain.User, error) {
	acct, err := s.accounts.GetByAccountNumber(ctx, number)
	if err != nil {
		return nil, fmt.Errorf("ownerOfAccount: %w", err)
	}
	owner, err := s.users.GetByID(ctx, acct.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("ownerOfAccount: %w", err)
	}
	return owner, nil
}
