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

type WithdrawRequest struct {
	AccountNumber string
	Amount        decimal.Decimal
	Description   string
}

func (s *Service) Withdraw(ctx context.Context, req WithdrawRequest) (*domain.Transaction, error) {
	log := logging.FromContext(ctx)

	if err := validateAmount(req.Amount); err != nil {
		return nil, fmt.Errorf("Withdraw: %w", err)
	}

	owner, err := s.ownerOfAccount(ctx, req.AccountNumber)
	if err != nil {
		return nil, fmt.Errorf("Withdraw: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("Withdraw: begin tx: %w", err)
	}
	defer tx.Rollback()

	acct, err := s.accounts.GetForUpdate(ctx, tx, req.AccountNumber)
	if err != nil {
		return nil, fmt.Errorf("Withdraw: %w", err)
	}
	if err := verifyActive(acct, "account"); err != nil {
		return nil, fmt.Errorf("Withdraw: %w", err)
	}

	// The balance check and the mutation share the row lock: two concurrent
	// withdrawals can never both pass the check and overdraw the account.
	if acct.Balance.LessThan(req.Amount) {
		return nil, fmt.Errorf("Withdraw: %w", domain.ErrInsufficientBalance)
	}

	newBalance := acct.Balance.Sub(req.Amount)
	now := time.Now().UTC()

	txn := &domain.Transaction{
		ID:                uuid.New(),
		AccountNumber:     acct.AccountNumber,
		TransactionType:   domain.TransactionTypeWithdraw,
		TransactionStatus: domain.TransactionStatusSuccess,
		Amount:            req.Amount,
		Description:       optionalDescription(req.Description),
		TransactionDate:   now,
	}
	if err := s.transactions.Create(ctx, tx, txn); err != nil {
		return nil, fmt.Errorf("Withdraw: create transaction: %w", err)
	}

	if err := s.accounts.UpdateBalance(ctx, tx, acct.AccountNumber, newBalance, acct.Version+1); err != nil {
		return nil, fmt.Errorf("Withdraw: update balance: %w", err)
	}

	if err := s.enqueueDebitAlert(ctx, tx, owner, acct.AccountNumber, req.Amount, newBalance, now); err != nil {
		return nil, fmt.Errorf("Withdraw: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("Withdraw: commit: %w", err)
	}

	log.Info("withdrawal completed",
		"transaction_id", txn.ID,
		"account_number", acct.AccountNumber,
		"amount", req.Amount,
	)

	return txn, nil
}
