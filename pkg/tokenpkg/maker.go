// Package tokenpkg issues and verifies the signed tokens that carry a logged in account.
package tokenpkg

import (
	"fmt"
	"time"
)

// Supported token types.
const (
	TypePaseto = "paseto"
	TypeJWT    = "jwt"
)

// Maker is an interface for managing tokens.
type Maker interface {
	// CreateToken creates a new token of the given kind for a specific account number and duration.
	CreateToken(accountNumber int64, kind Kind, duration time.Duration) (string, *Payload, error)
	// VerifyToken checks if the token is valid or not.
	VerifyToken(token string) (*Payload, error)
}

// NewMaker returns the Maker for the given token type.
func NewMaker(tokenType, key string) (Maker, error) {
	switch tokenType {
	case TypePaseto, "":
		return NewPasetoMaker(key)
	case TypeJWT:
		return NewJWTMaker(key)
	}

	return nil, fmt.Errorf("unsupported token type %q", tokenType)
}
