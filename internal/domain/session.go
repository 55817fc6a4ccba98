package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrBlockedSession indicates that the session is blocked.
	ErrBlockedSession = errors.New("blocked session")
	// ErrMismatchedRefreshToken indicates mismatch between the given token and the session token.
	ErrMismatchedRefreshToken = errors.New("mismatched session token")
	// ErrInvalidAccount indicates that the session belongs to another account.
	ErrInvalidAccount = errors.New("incorrect session account")
	// ErrExpiredSession indicates that the expired session.
	ErrExpiredSession = errors.New("expired session")
	// ErrSessionNotFound indicates that the session is not found.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionNotStarted indicates a committed registration whose login session could not be created.
	ErrSessionNotStarted = errors.New("account created but session not started, log in to continue")
)

// Session holds the refresh session of a logged in account.
type Session struct {
	ID            uuid.UUID `json:"id"`
	AccountNumber int64     `json:"account_number"`
	RefreshToken  string    `json:"refresh_token"`
	UserAgent     string    `json:"user_agent"`
	ClientIP      string    `json:"client_ip"`
	IsBlocked     bool      `json:"is_blocked"`
	ExpiresAt     time.Time `json:"expires_at"`
	CreatedAt     time.Time `json:"created_at"`
}

// CreateSessionParams holds data nedeed for Session creation.
type CreateSessionParams struct {
	ID            uuid.UUID `json:"id"`
	AccountNumber int64     `json:"account_number"`
	RefreshToken  string    `json:"refresh_token"`
	UserAgent     string    `json:"user_agent"`
	ClientIP      string    `json:"client_ip"`
	IsBlocked     bool      `json:"is_blocked"`
	ExpiresAt     time.Time `json:"expires_at"`
}
