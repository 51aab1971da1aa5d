package domain

import "errors"

var (
	ErrNotFound               = errors.New("not found")
	ErrAccountNotFound        = errors.New("account not found")
	ErrInsufficientBalance    = errors.New("insufficient balance")
	ErrAccountClosed          = errors.New("account closed")
	ErrNonZeroBalance         = errors.New("account balance must be zero before closing")
	ErrInvalidAmount          = errors.New("amount must be greater than zero")
	ErrInvalidTransactionType = errors.New("invalid transaction type")
	ErrInvalidCurrency        = errors.New("invalid currency")
	ErrInvalidAccountType     = errors.New("invalid account type")
	ErrEmailExists            = errors.New("email already registered")
	ErrVersionConflict        = errors.New("optimistic lock conflict")
	ErrInvalidRequest         = errors.New("invalid request")
)
