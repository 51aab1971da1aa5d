package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/phegon/phegonbank/internal/domain"
	"github.com/phegon/phegonbank/internal/logging"
)

type TransferRequest struct {
	SourceAccountNumber      string
	DestinationAccountNumber string
	Amount                   decimal.Decimal
	Description              string
}

// Transfer debits the source and credits the destination atomically, filing a
// single transaction record against the source account. A failed transfer
// leaves both balances untouched and appends nothing.
func (s *Service) Transfer(ctx context.Context, req TransferRequest) (*domain.Transaction, error) {
	log := logging.FromContext(ctx)

	if err := validateAmount(req.Amount); err != nil {
		return nil, fmt.Errorf("Transfer: %w", err)
	}

	if req.SourceAccountNumber == req.DestinationAccountNumber {
		return s.selfTransfer(ctx, req)
	}

	srcOwner, err := s.ownerOfAccount(ctx, req.SourceAccountNumber)
	if err != nil {
		return nil, fmt.Errorf("Transfer: source: %w", err)
	}
	destOwner, err := s.ownerOfAccount(ctx, req.DestinationAccountNumber)
	if err != nil {
		return nil, fmt.Errorf("Transfer: destination: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("Transfer: begin tx: %w", err)
	}
	defer tx.Rollback()

	locked, err := lockAccountsInOrder(ctx, tx, s.accounts, req.SourceAccountNumber, req.DestinationAccountNumber)
	if err != nil {
		return nil, fmt.Errorf("Transfer: %w", err)
	}
	source, dest := locked[req.SourceAccountNumber], locked[req.DestinationAccountNumber]

	if err := verifyActive(source, "source"); err != nil {
		return nil, fmt.Errorf("Transfer: %w", err)
	}
	if err := verifyActive(dest, "destination"); err != nil {
		return nil, fmt.Errorf("Transfer: %w", err)
	}

	if source.Balance.LessThan(req.Amount) {
		return nil, fmt.Errorf("Transfer: %w", domain.ErrInsufficientBalance)
	}

	sourceBalance := source.Balance.Sub(req.Amount)
	destBalance := dest.Balance.Add(req.Amount)
	now := time.Now().UTC()

	txn := transferRecord(source.AccountNumber, dest.AccountNumber, req, now)
	if err := s.transactions.Create(ctx, tx, txn); err != nil {
		return nil, fmt.Errorf("Transfer: create transaction: %w", err)
	}

	if err := s.accounts.UpdateBalance(ctx, tx, source.AccountNumber, sourceBalance, source.Version+1); err != nil {
		return nil, fmt.Errorf("Transfer: update source: %w", err)
	}
	if err := s.accounts.UpdateBalance(ctx, tx, dest.AccountNumber, destBalance, dest.Version+1); err != nil {
		return nil, fmt.Errorf("Transfer: update destination: %w", err)
	}

	if err := s.enqueueDebitAlert(ctx, tx, srcOwner, source.AccountNumber, req.Amount, sourceBalance, now); err != nil {
		return nil, fmt.Errorf("Transfer: %w", err)
	}
	if err := s.enqueueCreditAlert(ctx, tx, destOwner, dest.AccountNumber, req.Amount, destBalance, now); err != nil {
		return nil, fmt.Errorf("Transfer: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("Transfer: commit: %w", err)
	}

	log.Info("transfer completed",
		"transaction_id", txn.ID,
		"source_account", source.AccountNumber,
		"destination_account", dest.AccountNumber,
		"amount", req.Amount,
	)

	return txn, nil
}

// selfTransfer keeps a source==destination request consistent: one row lock,
// the usual preconditions, exactly one transaction record, and a net-zero
// balance effect. The account is never double-charged.
func (s *Service) selfTransfer(ctx context.Context, req TransferRequest) (*domain.Transaction, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("selfTransfer: begin tx: %w", err)
	}
	defer tx.Rollback()

	acct, err := s.accounts.GetForUpdate(ctx, tx, req.SourceAccountNumber)
	if err != nil {
		return nil, fmt.Errorf("selfTransfer: %w", err)
	}
	if err := verifyActive(acct, "account"); err != nil {
		return nil, fmt.Errorf("selfTransfer: %w", err)
	}
	if acct.Balance.LessThan(req.Amount) {
		return nil, fmt.Errorf("selfTransfer: %w", domain.ErrInsufficientBalance)
	}

	now := time.Now().UTC()
	txn := transferRecord(acct.AccountNumber, acct.AccountNumber, req, now)
	if err := s.transactions.Create(ctx, tx, txn); err != nil {
		return nil, fmt.Errorf("selfTransfer: create transaction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("selfTransfer: commit: %w", err)
	}

	return txn, nil
}

func transferRecord(sourceNumber, destNumber string, req TransferRequest, now time.Time) *domain.Transaction {
	return &domain.Transaction{
		ID:                 uuid.New(),
		AccountNumber:      sourceNumber,
		TransactionType:    domain.TransactionTypeTransfer,
		TransactionStatus:  domain.TransactionStatusSuccess,
		Amount:             req.Amount,
		Description:        optionalDescription(req.Description),
		SourceAccount:      &sourceNumber,
		DestinationAccount: &destNumber,
		TransactionDate:    now,
	}
}

// lockAccountsInOrder acquires row locks in ascending account-number order so
// concurrent reverse-direction transfers cannot deadlock.
func lockAccountsInOrder(ctx context.Context, tx *sql.Tx, accounts accountRepo, numbers ...string) (map[string]*domain.Account, error) {
	sorted := make([]string, len(numbers))
	copy(sorted, numbers)
	sort.Strings(sorted)

	result := make(map[string]*domain.Account, len(numbers))
	for _, number := range sorted {
		acct, err := accounts.GetForUpdate(ctx, tx, number)
		if err != nil {
			return nil, fmt.Errorf("lockAccountsInOrder: account %s: %w", number, err)
		}
		result[number] = acct
	}
	return result, nil
}
