package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phegon/phegonbank/internal/domain"
)

func TestValidateAmount(t *testing.T) {
	tests := []struct {
		name    string
		amount  decimal.Decimal
		wantErr error
	}{
		{
			name:   "positive amount",
			amount: decimal.NewFromInt(100),
		},
		{
			name:   "fractional amount",
			amount: decimal.RequireFromString("0.01"),
		},
		{
			name:    "zero amount",
			amount:  decimal.Zero,
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name:    "negative amount",
			amount:  decimal.NewFromInt(-50),
			wantErr: domain.ErrInvalidAmount,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := validateAmount(tc.amount)

			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestVerifyActive(t *testing.T) {
	active := &domain.Account{Status: domain.AccountStatusActive}
	closed := &domain.Account{Status: domain.AccountStatusClosed}

	require.NoError(t, verifyActive(active, "account"))
	require.ErrorIs(t, verifyActive(closed, "account"), domain.ErrAccountClosed)
}

func TestTransferRecord(t *testing.T) {
	req := TransferRequest{
		SourceAccountNumber:      "6610000001",
		DestinationAccountNumber: "6610000002",
		Amount:                   decimal.NewFromInt(250),
		Description:              "rent",
	}

	txn := transferRecord(req.SourceAccountNumber, req.DestinationAccountNumber, req, time.Now().UTC())

	assert.Equal(t, "6610000001", txn.AccountNumber, "record is filed against the source account")
	assert.Equal(t, domain.TransactionTypeTransfer, txn.TransactionType)
	assert.Equal(t, domain.TransactionStatusSuccess, txn.TransactionStatus)
	assert.True(t, txn.Amount.Equal(decimal.NewFromInt(250)))
	require.NotNil(t, txn.SourceAccount)
	require.NotNil(t, txn.DestinationAccount)
	assert.Equal(t, "6610000001", *txn.SourceAccount)
	assert.Equal(t, "6610000002", *txn.DestinationAccount)
	require.NotNil(t, txn.Description)
	assert.Equal(t, "rent", *txn.Description)
}

func TestOptionalDescription(t *testing.T) {
	assert.Nil(t, optionalDescription(""))
	require.NotNil(t, optionalDescription("salary"))
	assert.Equal(t, "salary", *optionalDescription("salary"))
}
