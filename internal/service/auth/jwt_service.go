// Package auth verifies the bearer tokens issued by the user subsystem.
// Flashbox never handles credentials; it only needs to know which user a
// request acts for.
package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AccessTokenType is the only token type accepted for API calls. Tokens
// without a type claim are treated as access tokens.
const AccessTokenType = "access"

// JWTService signs and verifies HS256 access tokens with a shared secret.
type JWTService interface {
	// GenerateToken creates a signed access token for userID valid for lifetime.
	// Production tokens come from the user subsystem; this exists for tooling and tests.
	GenerateToken(ctx context.Context, userID uuid.UUID, lifetime time.Duration) (string, error)

	// ValidateToken verifies the signature and time claims of tokenString and
	// returns its claims. The user is taken from the "sub" claim.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims are the verified contents of an access token.
type Claims struct {
	UserID    uuid.UUID
	TokenType string
	IssuedAt  time.Time
	ExpiresAt time.Time
	ID        string
}
