package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is the account owner principal. Authentication is handled at the edge;
// the ledger engine only ever sees the owner id.
type User struct {
	ID           uuid.UUID
	Email        string
	FirstName    string
	LastName     string
	PhoneNumber  *string
	PasswordHash string
	CreatedAt    time.Time
}
