package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
)

func (c Currency) IsValid() bool {
	switch c {
	case CurrencyUSD, CurrencyEUR, CurrencyGBP:
		return true
	}
	return false
}

type AccountType string

const (
	AccountTypeSavings      AccountType = "SAVINGS"
	AccountTypeChecking     AccountType = "CHECKING"
	AccountTypeFixedDeposit AccountType = "FIXED_DEPOSIT"
)

func (t AccountType) IsValid() bool {
	switch t {
	case AccountTypeSavings, AccountTypeChecking, AccountTypeFixedDeposit:
		return true
	}
	return false
}

type AccountStatus string

const (
	AccountStatusActive AccountStatus = "ACTIVE"
	AccountStatusClosed AccountStatus = "CLOSED"
)

// Account balances are mutated only by the ledger engine, inside a database
// transaction paired with the transaction record it produces. Version backs the
// optimistic check on every balance write.
type Account struct {
	ID            uuid.UUID
	OwnerID       uuid.UUID
	AccountNumber string
	AccountType   AccountType
	Currency      Currency
	Balance       decimal.Decimal
	Version       int64
	Status        AccountStatus
	CreatedAt     time.Time
	ClosedAt      *time.Time
}
