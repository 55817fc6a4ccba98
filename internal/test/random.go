package test

import (
	"time"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/randompkg"
)

// RandomAccount returns a random account that was never stored.
func RandomAccount() domain.Account {
	return domain.Account{
		Number:    randompkg.AccountNumber(),
		Name:      randompkg.Name(),
		Balance:   randompkg.MoneyAmountBetween(1000, 10_000),
		CreatedAt: time.Now().Truncate(time.Second).UTC(),
	}
}
