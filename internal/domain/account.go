// Package domain provides defenitions of all entities.
package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrValidation is wrapped by every malformed-input error.
	ErrValidation = errors.New("validation failed")
	// ErrEmptyName indicates that the account holder name is empty.
	ErrEmptyName = fmt.Errorf("%w: empty name", ErrValidation)
	// ErrEmptyCredential indicates that the password is empty.
	ErrEmptyCredential = fmt.Errorf("%w: empty password", ErrValidation)
	// ErrCredentialTooLong indicates that the password exceeds the hashable length.
	ErrCredentialTooLong = fmt.Errorf("%w: password too long", ErrValidation)
	// ErrInvalidAmount indicates an unparsable amount or one with sub-cent precision.
	ErrInvalidAmount = fmt.Errorf("%w: invalid amount", ErrValidation)
	// ErrNegativeAmount indicates negative amount.
	ErrNegativeAmount = fmt.Errorf("%w: negative amount", ErrValidation)
	// ErrBalanceLimit indicates a deposit that would take the balance past the storable maximum.
	ErrBalanceLimit = fmt.Errorf("%w: balance limit exceeded", ErrValidation)

	// ErrAccountNotFound indicates that the account is not found.
	ErrAccountNotFound = errors.New("account not found")
	// ErrAuthFailure indicates an unknown account number or a wrong password.
	ErrAuthFailure = errors.New("incorrect account number or password")
	// ErrInsufficientFunds indicates that the account does not have sufficient balance.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrRegistration indicates that the account could not be stored.
	ErrRegistration = errors.New("account registration failed")
)

// Account holds the ledger row of one account holder.
type Account struct {
	Number         int64           `json:"account_number"`
	Name           string          `json:"name"`
	HashedPassword string          `json:"-"`
	Balance        decimal.Decimal `json:"balance"`
	CreatedAt      time.Time       `json:"created_at"`
}

// Profile is the public view of an account.
type Profile struct {
	Number  int64           `json:"account_number"`
	Name    string          `json:"name"`
	Balance decimal.Decimal `json:"balance"`
}

// BalanceFunc computes the new balance from the current one.
//
// Returning an error aborts the mutation and leaves the balance unchanged.
type BalanceFunc func(current decimal.Decimal) (decimal.Decimal, error)
