package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/phegon/phegonbank/internal/domain"
)

const accountColumns = `id, owner_id, account_number, account_type, currency,
	balance, version, status, created_at, closed_at`

// AccountRepository is passive persistence for accounts. It enforces the
// uniqueness constraint on account_number and nothing else; business rules live
// in the services that call it.
type AccountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO accounts (
			id, owner_id, account_number, account_type, currency,
			balance, version, status, created_at, closed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		account.ID, account.OwnerID, account.AccountNumber, account.AccountType,
		account.Currency, account.Balance, account.Version, account.Status,
		account.CreatedAt, account.ClosedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *AccountRepository) GetByAccountNumber(ctx context.Context, number string) (*domain.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE account_number = $1`, number,
	)
	a, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByAccountNumber: %w", domain.ErrAccountNotFound)
		}
		return nil, fmt.Errorf("GetByAccountNumber: %w", err)
	}
	return a, nil
}

func (r *AccountRepository) GetByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]domain.Account, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE owner_id = $1 ORDER BY created_at`, ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("GetByOwnerID: %w", err)
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("GetByOwnerID: scan: %w", err)
		}
		accounts = append(accounts, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetByOwnerID: rows: %w", err)
	}
	return accounts, nil
}

func (r *AccountRepository) ExistsByAccountNumber(ctx context.Context, number string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM accounts WHERE account_number = $1)`, number,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("ExistsByAccountNumber: %w", err)
	}
	return exists, nil
}

// GetForUpdate locks the account row for the duration of tx. Callers that lock
// more than one account must acquire the locks in ascending account-number
// order to stay deadlock-free.
func (r *AccountRepository) GetForUpdate(ctx context.Context, tx *sql.Tx, number string) (*domain.Account, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE account_number = $1 FOR UPDATE`, number,
	)
	a, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetForUpdate: %w", domain.ErrAccountNotFound)
		}
		return nil, fmt.Errorf("GetForUpdate: %w", err)
	}
	return a, nil
}

func (r *AccountRepository) UpdateBalance(ctx context.Context, tx *sql.Tx, number string, newBalance decimal.Decimal, newVersion int64) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE accounts SET balance = $1, version = $2
		WHERE account_number = $3 AND version = $4`,
		newBalance, newVersion, number, newVersion-1,
	)
	if err != nil {
		return fmt.Errorf("UpdateBalance: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("UpdateBalance: rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("UpdateBalance: %w", domain.ErrVersionConflict)
	}
	return nil
}

func (r *AccountRepository) Close(ctx context.Context, tx *sql.Tx, number string, closedAt time.Time) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE accounts SET status = $1, closed_at = $2
		WHERE account_number = $3 AND status = $4`,
		domain.AccountStatusClosed, closedAt, number, domain.AccountStatusActive,
	)
	if err != nil {
		return fmt.Errorf("Close: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("Close: rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("Close: %w", domain.ErrAccountClosed)
	}
	return nil
}

func scanAccount(s scanner) (*domain.Account, error) {
	var a domain.Account
	err := s.Scan(
		&a.ID, &a.OwnerID, &a.AccountNumber, &a.AccountType, &a.Currency,
		&a.Balance, &a.Version, &a.Status, &a.CreatedAt, &a.ClosedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
