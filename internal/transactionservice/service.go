// Package transactionservice manages business logic layer of deposits and withdrawals.
package transactionservice

import (
	"context"
	"math"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/amountpkg"
)

// Repo provides data access layer interface needed by transaction service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package transactionservice
type Repo interface {
	GetBalance(ctx context.Context, number int64) (decimal.Decimal, error)
	UpdateBalance(ctx context.Context, number int64, fn domain.BalanceFunc) (decimal.Decimal, error)
}

// EntryRepo reads the journal of committed balance changes.
type EntryRepo interface {
	List(ctx context.Context, number int64, limit, offset int32) ([]domain.Entry, error)
}

// Service facilitates transaction service layer logic.
type Service struct {
	repo      Repo
	entryRepo EntryRepo
}

// New returns transaction service struct to manage balance mutations.
func New(r Repo, er EntryRepo) *Service {
	return &Service{
		repo:      r,
		entryRepo: er,
	}
}

func parseAmount(ctx context.Context, amount string) (decimal.Decimal, error) {
	x, err := amountpkg.Parse(amount)
	if err != nil {
		zerolog.Ctx(ctx).Info().Err(err).Str("amount", amount).Send()
		return decimal.Zero, err
	}

	return x, nil
}

// Deposit adds amount to the balance and returns the new balance.
//
// A deposit that would take the balance past amountpkg.MaxAmount fails with
// domain.ErrBalanceLimit and leaves the balance as it was.
func (s *Service) Deposit(ctx context.Context, number int64, amount string) (decimal.Decimal, error) {
	x, err := parseAmount(ctx, amount)
	if err != nil {
		return decimal.Zero, err
	}

	balance, err := s.repo.UpdateBalance(ctx, number, func(current decimal.Decimal) (decimal.Decimal, error) {
		next := current.Add(x)
		if next.GreaterThan(amountpkg.MaxAmount) {
			return decimal.Zero, domain.ErrBalanceLimit
		}

		return next, nil
	})
	if err != nil {
		if err == domain.ErrBalanceLimit {
			zerolog.Ctx(ctx).Info().Int64("account_number", number).Str("amount", amount).Msg("balance limit")
		}

		return decimal.Zero, err
	}

	return balance, nil
}

// Withdraw subtracts amount from the balance and returns the new balance.
//
// If amount exceeds the current balance, domain.ErrInsufficientFunds is returned and the
// balance is left as it was.
func (s *Service) Withdraw(ctx context.Context, number int64, amount string) (decimal.Decimal, error) {
	x, err := parseAmount(ctx, amount)
	if err != nil {
		return decimal.Zero, err
	}

	balance, err := s.repo.UpdateBalance(ctx, number, func(current decimal.Decimal) (decimal.Decimal, error) {
		if x.GreaterThan(current) {
			return decimal.Zero, domain.ErrInsufficientFunds
		}

		return current.Sub(x), nil
	})
	if err != nil {
		if err == domain.ErrInsufficientFunds {
			zerolog.Ctx(ctx).Info().Int64("account_number", number).Str("amount", amount).Msg("insufficient funds")
		}

		return decimal.Zero, err
	}

	return balance, nil
}

// CheckBalance returns the committed balance of the account.
func (s *Service) CheckBalance(ctx context.Context, number int64) (decimal.Decimal, error) {
	return s.repo.GetBalance(ctx, number)
}

// History returns the pageID-th page of the account's entries, oldest first. Pages start at 1.
//
// A page whose offset does not fit int32 is rejected with domain.ErrInvalidPage.
func (s *Service) History(ctx context.Context, number int64, pageID, pageSize int32) ([]domain.Entry, error) {
	if pageID < 1 || pageSize < 1 {
		return nil, domain.ErrInvalidPage
	}

	offset := int64(pageID-1) * int64(pageSize)
	if offset > math.MaxInt32 {
		zerolog.Ctx(ctx).Info().Int32("page_id", pageID).Int32("page_size", pageSize).Msg("page out of range")
		return nil, domain.ErrInvalidPage
	}

	return s.entryRepo.List(ctx, number, pageSize, int32(offset))
}
