package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/phegon/phegonbank/internal/domain"
	"github.com/phegon/phegonbank/internal/logging"
	"github.com/phegon/phegonbank/internal/service/ledger"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

type ledgerService interface {
	Deposit(ctx context.Context, req ledger.DepositRequest) (*domain.Transaction, error)
	Withdraw(ctx context.Context, req ledger.WithdrawRequest) (*domain.Transaction, error)
	Transfer(ctx context.Context, req ledger.TransferRequest) (*domain.Transaction, error)
	GetTransactionForOwner(ctx context.Context, id, ownerID uuid.UUID) (*domain.Transaction, error)
	GetTransactionsForAccount(ctx context.Context, number string, ownerID uuid.UUID, page, size int) ([]domain.Transaction, int, error)
}

type TransactionHandler struct {
	ledger ledgerService
}

func NewTransactionHandler(ledgerSvc ledgerService) *TransactionHandler {
	return &TransactionHandler{ledger: ledgerSvc}
}

type createTransactionRequest struct {
	TransactionType          string          `json:"transaction_type"`
	AccountNumber            string          `json:"account_number"`
	Amount                   decimal.Decimal `json:"amount"`
	Description              string          `json:"description"`
	DestinationAccountNumber string          `json:"destination_account_number"`
}

func (r createTransactionRequest) Validate() []FieldError {
	var errs []FieldError

	if r.TransactionType == "" {
		errs = append(errs, FieldError{Field: "transaction_type", Message: "required"})
	}
	if r.AccountNumber == "" {
		errs = append(errs, FieldError{Field: "account_number", Message: "required"})
	}
	if r.Amount.LessThanOrEqual(decimal.Zero) {
		errs = append(errs, FieldError{Field: "amount", Message: "must be greater than 0"})
	}
	if domain.TransactionType(r.TransactionType) == domain.TransactionTypeTransfer && r.DestinationAccountNumber == "" {
		errs = append(errs, FieldError{Field: "destination_account_number", Message: "required for transfers"})
	}

	return errs
}

type transactionDTO struct {
	ID                 uuid.UUID       `json:"id"`
	AccountNumber      string          `json:"account_number"`
	TransactionType    string          `json:"transaction_type"`
	TransactionStatus  string          `json:"transaction_status"`
	Amount             decimal.Decimal `json:"amount"`
	Description        *string         `json:"description,omitempty"`
	SourceAccount      *string         `json:"source_account,omitempty"`
	DestinationAccount *string         `json:"destination_account,omitempty"`
	TransactionDate    time.Time       `json:"transaction_date"`
}

func toTransactionDTO(t *domain.Transaction) transactionDTO {
	return transactionDTO{
		ID:                 t.ID,
		AccountNumber:      t.AccountNumber,
		TransactionType:    string(t.TransactionType),
		TransactionStatus:  string(t.TransactionStatus),
		Amount:             t.Amount,
		Description:        t.Description,
		SourceAccount:      t.SourceAccount,
		DestinationAccount: t.DestinationAccount,
		TransactionDate:    t.TransactionDate,
	}
}

func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	if _, appErr := ownerFromRequest(r); appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	var (
		txn *domain.Transaction
		err error
	)
	switch domain.TransactionType(req.TransactionType) {
	case domain.TransactionTypeDeposit:
		txn, err = h.ledger.Deposit(r.Context(), ledger.DepositRequest{
			AccountNumber: req.AccountNumber,
			Amount:        req.Amount,
			Description:   req.Description,
		})
	case domain.TransactionTypeWithdraw:
		txn, err = h.ledger.Withdraw(r.Context(), ledger.WithdrawRequest{
			AccountNumber: req.AccountNumber,
			Amount:        req.Amount,
			Description:   req.Description,
		})
	case domain.TransactionTypeTransfer:
		txn, err = h.ledger.Transfer(r.Context(), ledger.TransferRequest{
			SourceAccountNumber:      req.AccountNumber,
			DestinationAccountNumber: req.DestinationAccountNumber,
			Amount:                   req.Amount,
			Description:              req.Description,
		})
	default:
		RespondAppError(w, ErrInvalidTransactionType, nil)
		return
	}
	if err != nil {
		log.Warn("transaction failed", "type", req.TransactionType, "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, toTransactionDTO(txn))
}

func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	ownerID, appErr := ownerFromRequest(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	txn, err := h.ledger.GetTransactionForOwner(r.Context(), id, ownerID)
	if err != nil {
		logging.FromContext(r.Context()).Warn("transaction lookup failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toTransactionDTO(txn))
}

func (h *TransactionHandler) ListForAccount(w http.ResponseWriter, r *http.Request) {
	ownerID, appErr := ownerFromRequest(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	page, size := pageParams(r)

	txns, total, err := h.ledger.GetTransactionsForAccount(r.Context(), r.PathValue("accountNumber"), ownerID, page, size)
	if err != nil {
		logging.FromContext(r.Context()).Warn("transaction listing failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	dtos := make([]transactionDTO, len(txns))
	for i := range txns {
		dtos[i] = toTransactionDTO(&txns[i])
	}

	totalPages := total / size
	if total%size != 0 {
		totalPages++
	}

	RespondPage(w, http.StatusOK, dtos, PageMeta{
		CurrentPage: page,
		TotalItems:  total,
		TotalPages:  totalPages,
		PageSize:    size,
	})
}

func pageParams(r *http.Request) (page, size int) {
	page = 0
	size = defaultPageSize

	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			page = n
		}
	}
	if v := r.URL.Query().Get("size"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= maxPageSize {
			size = n
		}
	}
	return page, size
}
