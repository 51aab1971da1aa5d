package auth

import (
	"context"

	"github.com/google/uuid"
)

type ownerIDKey struct{}

func ContextWithOwnerID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, ownerIDKey{}, id)
}

// OwnerIDFromContext supplies the calling principal's owner id, the
// currentOwnerId the ledger engine relies on for ownership checks.
func OwnerIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(ownerIDKey{}).(uuid.UUID)
	return id, ok
}
