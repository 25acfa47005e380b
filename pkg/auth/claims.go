package auth

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/kayalabs/studiocart-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT. Token
// issuance belongs to the external identity provider; minting here exists for
// local development and tests.
type AccessTokenPayload struct {
	UserID string
	Email  string
	Role   enums.Role
	JTI    string
}

// AccessTokenClaims represents the typed JWT presented by clients.
type AccessTokenClaims struct {
	UserID string     `json:"user_id"`
	Email  string     `json:"email,omitempty"`
	Role   enums.Role `json:"role"`
	jwt.RegisteredClaims
}
