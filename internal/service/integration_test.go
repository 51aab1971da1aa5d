package service_test

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phegon/phegonbank/internal/domain"
	"github.com/phegon/phegonbank/internal/repository"
	"github.com/phegon/phegonbank/internal/service"
	"github.com/phegon/phegonbank/internal/testutil"
)

func setupAccountService(t *testing.T, db *sql.DB) *service.AccountService {
	t.Helper()
	return service.NewAccountService(
		repository.NewAccountRepository(db),
		repository.NewUserRepository(db),
		repository.NewNotificationRepository(db),
		db,
	)
}

func setupUserService(t *testing.T, db *sql.DB) *service.UserService {
	t.Helper()
	return service.NewUserService(
		repository.NewUserRepository(db),
		setupAccountService(t, db),
		repository.NewNotificationRepository(db),
		db,
	)
}

func TestOpenAccount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupAccountService(t, db)
	ctx := context.Background()

	owner := testutil.SeedTestUser(t, db, "owner@test.com", "Ada", "Obi")

	acct, err := svc.OpenAccount(ctx, owner.ID, domain.AccountTypeChecking, domain.CurrencyEUR)
	require.NoError(t, err)

	assert.Len(t, acct.AccountNumber, 10)
	assert.True(t, strings.HasPrefix(acct.AccountNumber, "66"), "account number %s must start with 66", acct.AccountNumber)
	assert.True(t, acct.Balance.IsZero())
	assert.Equal(t, domain.AccountStatusActive, acct.Status)
	assert.Equal(t, domain.AccountTypeChecking, acct.AccountType)
	assert.Equal(t, domain.CurrencyEUR, acct.Currency)
	assert.Equal(t, int64(1), acct.Version)

	stored, err := svc.GetAccountForOwner(ctx, acct.AccountNumber, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, acct.ID, stored.ID)
}

func TestOpenAccount_InvalidInputs(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupAccountService(t, db)
	ctx := context.Background()

	owner := testutil.SeedTestUser(t, db, "owner@test.com", "Ada", "Obi")

	_, err := svc.OpenAccount(ctx, owner.ID, domain.AccountType("CRYPTO"), domain.CurrencyUSD)
	require.ErrorIs(t, err, domain.ErrInvalidAccountType)

	_, err = svc.OpenAccount(ctx, owner.ID, domain.AccountTypeSavings, domain.Currency("NGN"))
	require.ErrorIs(t, err, domain.ErrInvalidCurrency)
}

func TestOpenAccount_NumbersAreUnique(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupAccountService(t, db)
	ctx := context.Background()

	owner := testutil.SeedTestUser(t, db, "owner@test.com", "Ada", "Obi")

	seen := make(map[string]bool)
	for range 10 {
		acct, err := svc.OpenAccount(ctx, owner.ID, domain.AccountTypeSavings, domain.CurrencyUSD)
		require.NoError(t, err)
		assert.False(t, seen[acct.AccountNumber], "duplicate account number %s", acct.AccountNumber)
		seen[acct.AccountNumber] = true
	}
}

func TestGetAccountForOwner_ForeignOwner(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupAccountService(t, db)
	ctx := context.Background()

	owner := testutil.SeedTestUser(t, db, "owner@test.com", "Ada", "Obi")
	stranger := testutil.SeedTestUser(t, db, "stranger@test.com", "Ben", "Eze")
	acct := testutil.SeedTestAccount(t, db, owner.ID, "6610000001", decimal.Zero)

	_, err := svc.GetAccountForOwner(ctx, acct.AccountNumber, stranger.ID)
	require.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestCloseAccount_HappyPath(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupAccountService(t, db)
	ctx := context.Background()

	owner := testutil.SeedTestUser(t, db, "owner@test.com", "Ada", "Obi")
	acct := testutil.SeedTestAccount(t, db, owner.ID, "6610000001", decimal.Zero)

	closed, err := svc.CloseAccount(ctx, acct.AccountNumber, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AccountStatusClosed, closed.Status)
	require.NotNil(t, closed.ClosedAt)

	assert.Equal(t, 1, testutil.CountPendingNotifications(t, db, owner.Email))

	// Closure is one-way.
	_, err = svc.CloseAccount(ctx, acct.AccountNumber, owner.ID)
	require.ErrorIs(t, err, domain.ErrAccountClosed)
}

func TestCloseAccount_NonZeroBalance(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupAccountService(t, db)
	ctx := context.Background()

	owner := testutil.SeedTestUser(t, db, "owner@test.com", "Ada", "Obi")
	acct := testutil.SeedTestAccount(t, db, owner.ID, "6610000001", decimal.NewFromInt(25))

	_, err := svc.CloseAccount(ctx, acct.AccountNumber, owner.ID)
	require.ErrorIs(t, err, domain.ErrNonZeroBalance)

	stored, err := svc.GetAccountForOwner(ctx, acct.AccountNumber, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AccountStatusActive, stored.Status)
}

func TestCloseAccount_ForeignOwner(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupAccountService(t, db)
	ctx := context.Background()

	owner := testutil.SeedTestUser(t, db, "owner@test.com", "Ada", "Obi")
	stranger := testutil.SeedTestUser(t, db, "stranger@test.com", "Ben", "Eze")
	acct := testutil.SeedTestAccount(t, db, owner.ID, "6610000001", decimal.Zero)

	_, err := svc.CloseAccount(ctx, acct.AccountNumber, stranger.ID)
	require.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestRegister(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupUserService(t, db)
	ctx := context.Background()

	user, acct, err := svc.Register(ctx, service.RegisterRequest{
		FirstName: "Ada",
		LastName:  "Obi",
		Email:     "ada@test.com",
		Password:  "password123",
	})
	require.NoError(t, err)

	assert.Equal(t, "ada@test.com", user.Email)
	assert.NotEqual(t, "password123", user.PasswordHash)

	// Registration auto-opens the first account.
	assert.Equal(t, domain.AccountTypeSavings, acct.AccountType)
	assert.Equal(t, domain.CurrencyUSD, acct.Currency)
	assert.True(t, acct.Balance.IsZero())
	assert.True(t, strings.HasPrefix(acct.AccountNumber, "66"))

	// Welcome plus account-created mails.
	assert.Equal(t, 2, testutil.CountPendingNotifications(t, db, user.Email))
}

func TestRegister_DuplicateEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupUserService(t, db)
	ctx := context.Background()

	testutil.SeedTestUser(t, db, "ada@test.com", "Ada", "Obi")

	_, _, err := svc.Register(ctx, service.RegisterRequest{
		FirstName: "Ada",
		LastName:  "Obi",
		Email:     "ada@test.com",
		Password:  "password123",
	})
	require.ErrorIs(t, err, domain.ErrEmailExists)
}
