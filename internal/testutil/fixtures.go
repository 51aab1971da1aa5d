package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/phegon/phegonbank/internal/domain"
)

func SeedTestUser(t *testing.T, db *sql.DB, email, firstName, lastName string) *domain.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	u := &domain.User{
		ID:           uuid.New(),
		Email:        email,
		FirstName:    firstName,
		LastName:     lastName,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}

	_, err = db.Exec(
		`INSERT INTO users (id, email, first_name, last_name, password_hash, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		u.ID, u.Email, u.FirstName, u.LastName, u.PasswordHash, u.CreatedAt,
	)
	if err != nil {
		t.Fatalf("seed test user %s: %v", email, err)
	}
	return u
}

func SeedTestAccount(t *testing.T, db *sql.DB, ownerID uuid.UUID, number string, balance decimal.Decimal) *domain.Account {
	t.Helper()

	a := &domain.Account{
		ID:            uuid.New(),
		OwnerID:       ownerID,
		AccountNumber: number,
		AccountType:   domain.AccountTypeSavings,
		Currency:      domain.CurrencyUSD,
		Balance:       balance,
		Version:       1,
		Status:        domain.AccountStatusActive,
		CreatedAt:     time.Now().UTC(),
	}

	_, err := db.Exec(
		`INSERT INTO accounts (id, owner_id, account_number, account_type, currency, balance, version, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		a.ID, a.OwnerID, a.AccountNumber, a.AccountType, a.Currency, a.Balance, a.Version, a.Status, a.CreatedAt,
	)
	if err != nil {
		t.Fatalf("seed test account %s: %v", number, err)
	}
	return a
}

func CloseTestAccount(t *testing.T, db *sql.DB, number string) {
	t.Helper()

	_, err := db.Exec(
		`UPDATE accounts SET status = $1, closed_at = now() WHERE account_number = $2`,
		domain.AccountStatusClosed, number,
	)
	if err != nil {
		t.Fatalf("close test account %s: %v", number, err)
	}
}

func GetAccountBalance(t *testing.T, db *sql.DB, number string) decimal.Decimal {
	t.Helper()

	var balance decimal.Decimal
	err := db.QueryRow(`SELECT balance FROM accounts WHERE account_number = $1`, number).Scan(&balance)
	if err != nil {
		t.Fatalf("get account balance %s: %v", number, err)
	}
	return balance
}

func CountTransactions(t *testing.T, db *sql.DB, number string) int {
	t.Helper()

	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM transactions WHERE account_number = $1`, number).Scan(&count)
	if err != nil {
		t.Fatalf("count transactions for account %s: %v", number, err)
	}
	return count
}

func CountPendingNotifications(t *testing.T, db *sql.DB, recipient string) int {
	t.Helper()

	var count int
	err := db.QueryRow(
		`SELECT COUNT(*) FROM notifications WHERE recipient = $1 AND status = 'pending'`,
		recipient,
	).Scan(&count)
	if err != nil {
		t.Fatalf("count pending notifications for %s: %v", recipient, err)
	}
	return count
}
