package auth

import "errors"

// Token verification errors. All of them map to 401 at the HTTP boundary.
var (
	ErrInvalidToken     = errors.New("invalid authentication token")
	ErrExpiredToken     = errors.New("authentication token has expired")
	ErrTokenNotYetValid = errors.New("authentication token not yet valid")
	ErrMissingToken     = errors.New("authentication token is missing")
	// ErrWrongTokenType rejects refresh and other non-access tokens minted
	// with the same secret.
	ErrWrongTokenType = errors.New("wrong token type")
)
