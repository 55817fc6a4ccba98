package tokenpkg

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Different types of error returned by the VerifyToken function.
var (
	ErrInvalidToken = errors.New("token is invalid")
	ErrExpiredToken = errors.New("token has expired")
)

// ErrWrongTokenKind indicates a valid token used where the other kind is required.
var ErrWrongTokenKind = errors.New("wrong token kind")

// Kind tells access tokens from refresh tokens.
type Kind string

// Token kinds.
const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

// Payload contains the payload data of the token.
type Payload struct {
	ID            uuid.UUID `json:"id"`
	AccountNumber int64     `json:"account_number"`
	Kind          Kind      `json:"kind"`
	IssuedAt      time.Time `json:"issued_at"`
	ExpiredAt     time.Time `json:"expired_at"`
}

// NewPayload creates a new token payload of the given kind for a specific account number and duration.
func NewPayload(accountNumber int64, kind Kind, duration time.Duration) (*Payload, error) {
	tokenID, err := uuid.NewRandom()
	if err != nil {
		return nil, err
	}

	payload := &Payload{
		ID:            tokenID,
		AccountNumber: accountNumber,
		Kind:          kind,
		IssuedAt:      time.Now(),
		ExpiredAt:     time.Now().Add(duration),
	}

	return payload, nil
}

// Require returns ErrWrongTokenKind unless the payload is of the given kind.
func (payload *Payload) Require(kind Kind) error {
	if payload.Kind != kind {
		return ErrWrongTokenKind
	}

	return nil
}

// Valid checks if the token payload is valid or not.
func (payload *Payload) Valid() error {
	if time.Now().After(payload.ExpiredAt) {
		return ErrExpiredToken
	}

	return nil
}
