package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/phegon/phegonbank/internal/domain"
	"github.com/phegon/phegonbank/internal/logging"
)

type userRepo interface {
	Create(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type accountOpener interface {
	OpenAccount(ctx context.Context, ownerID uuid.UUID, accountType domain.AccountType, currency domain.Currency) (*domain.Account, error)
}

type UserService struct {
	users         userRepo
	accounts      accountOpener
	notifications notificationEnqueuer
	db            *sql.DB
}

func NewUserService(users userRepo, accounts accountOpener, notifications notificationEnqueuer, db *sql.DB) *UserService {
	return &UserService{users: users, accounts: accounts, notifications: notifications, db: db}
}

type RegisterRequest struct {
	FirstName   string
	LastName    string
	Email       string
	PhoneNumber string
	Password    string
}

// Register creates the user and auto-opens their first account (SAVINGS/USD),
// then queues the welcome emails. A notification failure is logged, never
// surfaced: the registration has already succeeded.
func (s *UserService) Register(ctx context.Context, req RegisterRequest) (*domain.User, *domain.Account, error) {
	log := logging.FromContext(ctx)

	_, err := s.users.GetByEmail(ctx, req.Email)
	if err == nil {
		return nil, nil, fmt.Errorf("Register: %w", domain.ErrEmailExists)
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, nil, fmt.Errorf("Register: check email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, fmt.Errorf("Register: hash password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if req.PhoneNumber != "" {
		user.PhoneNumber = &req.PhoneNumber
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, nil, fmt.Errorf("Register: %w", err)
	}

	account, err := s.accounts.OpenAccount(ctx, user.ID, domain.AccountTypeSavings, domain.CurrencyUSD)
	if err != nil {
		return nil, nil, fmt.Errorf("Register: open initial account: %w", err)
	}

	if err := s.sendWelcomeNotifications(ctx, user, account); err != nil {
		log.Warn("failed to queue welcome notifications", "error", err, "user_id", user.ID)
	}

	log.Info("user registered", "user_id", user.ID, "account_number", account.AccountNumber)

	return user, account, nil
}

func (s *UserService) sendWelcomeNotifications(ctx context.Context, user *domain.User, account *domain.Account) error {
	welcome, err := buildNotification(user.Email, "Welcome to Phegon Bank", "welcome", map[string]any{
		"name": user.FirstName,
	})
	if err != nil {
		return fmt.Errorf("sendWelcomeNotifications: %w", err)
	}

	created, err := buildNotification(user.Email, "Your New Bank Account Has Been Created", "account-created", map[string]any{
		"name":          user.FirstName,
		"accountNumber": account.AccountNumber,
		"accountType":   account.AccountType,
		"currency":      account.Currency,
	})
	if err != nil {
		return fmt.Errorf("sendWelcomeNotifications: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sendWelcomeNotifications: begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := s.notifications.Enqueue(ctx, tx, welcome); err != nil {
		return fmt.Errorf("sendWelcomeNotifications: %w", err)
	}
	if err := s.notifications.Enqueue(ctx, tx, created); err != nil {
		return fmt.Errorf("sendWelcomeNotifications: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sendWelcomeNotifications: commit: %w", err)
	}
	return nil
}
