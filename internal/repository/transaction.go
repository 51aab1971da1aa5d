package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/phegon/phegonbank/internal/domain"
)

const transactionColumns = `id, account_number, transaction_type, transaction_status,
	amount, description, source_account, destination_account, transaction_date`

// TransactionRepository is the append-only ledger. There is deliberately no
// update or delete: a persisted transaction is the audit trail.
type TransactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Create appends the record within tx so it commits or rolls back together
// with the balance mutation it documents.
func (r *TransactionRepository) Create(ctx context.Context, tx *sql.Tx, txn *domain.Transaction) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO transactions (
			id, account_number, transaction_type, transaction_status,
			amount, description, source_account, destination_account, transaction_date
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		txn.ID, txn.AccountNumber, txn.TransactionType, txn.TransactionStatus,
		txn.Amount, txn.Description, txn.SourceAccount, txn.DestinationAccount,
		txn.TransactionDate,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *TransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = $1`, id,
	)
	t, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return t, nil
}

// GetByAccountNumber returns one page ordered by transaction date descending,
// plus the total row count for page metadata.
func (r *TransactionRepository) GetByAccountNumber(ctx context.Context, number string, limit, offset int) ([]domain.Transaction, int, error) {
	var total int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE account_number = $1`, number,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("GetByAccountNumber: count: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions
		WHERE account_number = $1
		ORDER BY transaction_date DESC, id LIMIT $2 OFFSET $3`,
		number, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("GetByAccountNumber: %w", err)
	}
	defer rows.Close()

	var txns []domain.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("GetByAccountNumber: scan: %w", err)
		}
		txns = append(txns, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("GetByAccountNumber: rows: %w", err)
	}
	return txns, total, nil
}

func scanTransaction(s scanner) (*domain.Transaction, error) {
	var t domain.Transaction
	err := s.Scan(
		&t.ID, &t.AccountNumber, &t.TransactionType, &t.TransactionStatus,
		&t.Amount, &t.Description, &t.SourceAccount, &t.DestinationAccount,
		&t.TransactionDate,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
