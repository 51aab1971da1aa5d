package handler

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/phegon/phegonbank/internal/auth"
)

func ownerFromRequest(r *http.Request) (uuid.UUID, *AppError) {
	ownerID, ok := auth.OwnerIDFromContext(r.Context())
	if !ok {
		return uuid.Nil, ErrMissingToken
	}
	return ownerID, nil
}
