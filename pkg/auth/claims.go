package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/tracksplit/tracksplit-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID      uuid.UUID
	RecipientID *uuid.UUID
	Role        enums.AccessRole
}

// AccessTokenClaims represents the typed JWT issued to clients. RecipientID is
// set for recipient accounts and absent for pure admin users.
type AccessTokenClaims struct {
	UserID      uuid.UUID        `json:"user_id"`
	RecipientID *uuid.UUID       `json:"recipient_id,omitempty"`
	Role        enums.AccessRole `json:"role"`
	jwt.RegisteredClaims
}
