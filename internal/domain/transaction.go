package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeDeposit  TransactionType = "DEPOSIT"
	TransactionTypeWithdraw TransactionType = "WITHDRAW"
	TransactionTypeTransfer TransactionType = "TRANSFER"
)

func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypeDeposit, TransactionTypeWithdraw, TransactionTypeTransfer:
		return true
	}
	return false
}

type TransactionStatus string

const (
	TransactionStatusSuccess TransactionStatus = "SUCCESS"
	TransactionStatusFailed  TransactionStatus = "FAILED"
)

// Transaction is the immutable audit record of one completed operation. It is
// created already in its terminal status within the same database transaction
// as the balance mutation it records; rows are never updated or deleted.
//
// AccountNumber is the account the record is filed against: the target for a
// deposit or withdrawal, the source for a transfer. SourceAccount and
// DestinationAccount are set only for transfers.
type Transaction struct {
	ID                 uuid.UUID
	AccountNumber      string
	TransactionType    TransactionType
	TransactionStatus  TransactionStatus
	Amount             decimal.Decimal
	Description        *string
	SourceAccount      *string
	DestinationAccount *string
	TransactionDate    time.Time
}
