package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phegon/phegonbank/internal/auth"
	"github.com/phegon/phegonbank/internal/domain"
	"github.com/phegon/phegonbank/internal/service/ledger"
)

type stubLedger struct {
	txn *domain.Transaction
	err error

	depositCalls  int
	withdrawCalls int
	transferCalls int
}

func (s *stubLedger) Deposit(ctx context.Context, req ledger.DepositRequest) (*domain.Transaction, error) {
	s.depositCalls++
	return s.txn, s.err
}

func (s *stubLedger) Withdraw(ctx context.Context, req ledger.WithdrawRequest) (*domain.Transaction, error) {
	s.withdrawCalls++
	return s.txn, s.err
}

func (s *stubLedger) Transfer(ctx context.Context, req ledger.TransferRequest) (*domain.Transaction, error) {
	s.transferCalls++
	return s.txn, s.err
}

func (s *stubLedger) GetTransactionForOwner(ctx context.Context, id, ownerID uuid.UUID) (*domain.Transaction, error) {
	return s.txn, s.err
}

func (s *stubLedger) GetTransactionsForAccount(ctx context.Context, number string, ownerID uuid.UUID, page, size int) ([]domain.Transaction, int, error) {
	if s.err != nil {
		return nil, 0, s.err
	}
	return []domain.Transaction{*s.txn}, 1, nil
}

func successTxn() *domain.Transaction {
	return &domain.Transaction{
		ID:                uuid.New(),
		AccountNumber:     "6610000001",
		TransactionType:   domain.TransactionTypeDeposit,
		TransactionStatus: domain.TransactionStatusSuccess,
		Amount:            decimal.NewFromInt(100),
		TransactionDate:   time.Now().UTC(),
	}
}

func authedRequest(method, target, body string) *http.Request {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	ctx := auth.ContextWithOwnerID(r.Context(), uuid.New())
	return r.WithContext(ctx)
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestTransactionHandler_Create_RoutesByType(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		wantDeposit  int
		wantWithdraw int
		wantTransfer int
	}{
		{
			name:        "deposit",
			body:        `{"transaction_type":"DEPOSIT","account_number":"6610000001","amount":100}`,
			wantDeposit: 1,
		},
		{
			name:         "withdraw",
			body:         `{"transaction_type":"WITHDRAW","account_number":"6610000001","amount":100}`,
			wantWithdraw: 1,
		},
		{
			name:         "transfer",
			body:         `{"transaction_type":"TRANSFER","account_number":"6610000001","destination_account_number":"6610000002","amount":100}`,
			wantTransfer: 1,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			stub := &stubLedger{txn: successTxn()}
			h := NewTransactionHandler(stub)

			rec := httptest.NewRecorder()
			h.Create(rec, authedRequest(http.MethodPost, "/api/v1/transactions", tc.body))

			assert.Equal(t, http.StatusCreated, rec.Code)
			assert.Equal(t, tc.wantDeposit, stub.depositCalls)
			assert.Equal(t, tc.wantWithdraw, stub.withdrawCalls)
			assert.Equal(t, tc.wantTransfer, stub.transferCalls)

			resp := decodeResponse(t, rec)
			assert.True(t, resp.Success)
		})
	}
}

func TestTransactionHandler_Create_Validation(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode string
	}{
		{
			name:     "unknown type",
			body:     `{"transaction_type":"REVERSAL","account_number":"6610000001","amount":100}`,
			wantCode: "INVALID_TRANSACTION_TYPE",
		},
		{
			name:     "missing account number",
			body:     `{"transaction_type":"DEPOSIT","amount":100}`,
			wantCode: "VALIDATION_FAILED",
		},
		{
			name:     "zero amount",
			body:     `{"transaction_type":"DEPOSIT","account_number":"6610000001","amount":0}`,
			wantCode: "VALIDATION_FAILED",
		},
		{
			name:     "transfer without destination",
			body:     `{"transaction_type":"TRANSFER","account_number":"6610000001","amount":100}`,
			wantCode: "VALIDATION_FAILED",
		},
		{
			name:     "malformed body",
			body:     `{not json`,
			wantCode: "INVALID_REQUEST",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			stub := &stubLedger{txn: successTxn()}
			h := NewTransactionHandler(stub)

			rec := httptest.NewRecorder()
			h.Create(rec, authedRequest(http.MethodPost, "/api/v1/transactions", tc.body))

			assert.Equal(t, http.StatusBadRequest, rec.Code)

			resp := decodeResponse(t, rec)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tc.wantCode, resp.Error.Code)
			assert.Equal(t, 0, stub.depositCalls+stub.withdrawCalls+stub.transferCalls)
		})
	}
}

func TestTransactionHandler_Create_DomainErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "insufficient balance",
			err:        domain.ErrInsufficientBalance,
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "INSUFFICIENT_BALANCE",
		},
		{
			name:       "account closed",
			err:        domain.ErrAccountClosed,
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "ACCOUNT_CLOSED",
		},
		{
			name:       "account missing",
			err:        domain.ErrAccountNotFound,
			wantStatus: http.StatusNotFound,
			wantCode:   "ACCOUNT_NOT_FOUND",
		},
		{
			name:       "version conflict",
			err:        domain.ErrVersionConflict,
			wantStatus: http.StatusConflict,
			wantCode:   "VERSION_CONFLICT",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			stub := &stubLedger{err: tc.err}
			h := NewTransactionHandler(stub)

			rec := httptest.NewRecorder()
			body := `{"transaction_type":"DEPOSIT","account_number":"6610000001","amount":100}`
			h.Create(rec, authedRequest(http.MethodPost, "/api/v1/transactions", body))

			assert.Equal(t, tc.wantStatus, rec.Code)

			resp := decodeResponse(t, rec)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tc.wantCode, resp.Error.Code)
		})
	}
}

func TestTransactionHandler_Create_Unauthenticated(t *testing.T) {
	h := NewTransactionHandler(&stubLedger{})

	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/v1/transactions", strings.NewReader(`{}`))
	h.Create(rec, r)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPageParams(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		wantPage int
		wantSize int
	}{
		{name: "defaults", query: "", wantPage: 0, wantSize: 50},
		{name: "explicit", query: "?page=2&size=10", wantPage: 2, wantSize: 10},
		{name: "negative page ignored", query: "?page=-1", wantPage: 0, wantSize: 50},
		{name: "zero size ignored", query: "?size=0", wantPage: 0, wantSize: 50},
		{name: "oversized capped to default", query: "?size=5000", wantPage: 0, wantSize: 50},
		{name: "garbage ignored", query: "?page=abc&size=xyz", wantPage: 0, wantSize: 50},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/v1/transactions/account/66"+tc.query, nil)
			page, size := pageParams(r)
			assert.Equal(t, tc.wantPage, page)
			assert.Equal(t, tc.wantSize, size)
		})
	}
}

func TestTransactionHandler_ListForAccount_Meta(t *testing.T) {
	stub := &stubLedger{txn: successTxn()}
	h := NewTransactionHandler(stub)

	rec := httptest.NewRecorder()
	r := authedRequest(http.MethodGet, "/api/v1/transactions/account/6610000001?page=0&size=2", "")
	r.SetPathValue("accountNumber", "6610000001")
	h.ListForAccount(rec, r)

	assert.Equal(t, http.StatusOK, rec.Code)

	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 0, resp.Meta.CurrentPage)
	assert.Equal(t, 1, resp.Meta.TotalItems)
	assert.Equal(t, 1, resp.Meta.TotalPages)
	assert.Equal(t, 2, resp.Meta.PageSize)
}
