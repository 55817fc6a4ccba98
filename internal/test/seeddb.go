// Package test provides shared test helpers.
package test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-ledger/internal/accountrepo"
	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/dbpkg"
	"github.com/go-petr/pet-ledger/pkg/passpkg"
	"github.com/go-petr/pet-ledger/pkg/randompkg"
)

// SeedAccount creates a random Account with the given balance and returns it with its password.
func SeedAccount(t *testing.T, db dbpkg.SQLInterface, balance decimal.Decimal) (domain.Account, string) {
	t.Helper()

	password := randompkg.Password()

	hashedPassword, err := passpkg.Hash(password)
	if err != nil {
		t.Fatalf("passpkg.Hash(%v) returned error: %v", password, err)
	}

	name := randompkg.Name()

	accountRepo := accountrepo.NewTxRepoPGS(db)

	account, err := accountRepo.Create(context.Background(), name, hashedPassword, balance)
	if err != nil {
		t.Fatalf("accountRepo.Create(context.Background(), %v, hash, %v) returned error: %v",
			name, balance, err)
	}

	return account, password
}

// SeedAccountWith1000Balance creates Account with 1000 on balance.
func SeedAccountWith1000Balance(t *testing.T, db dbpkg.SQLInterface) (domain.Account, string) {
	t.Helper()

	return SeedAccount(t, db, decimal.NewFromInt(1000))
}
