// Package accountservice manages business logic layer of accounts.
//
// It onboards account holders, checks their credentials and builds the identity artifact
// payload handed out at registration.
package accountservice

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/amountpkg"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
	"github.com/go-petr/pet-ledger/pkg/passpkg"
)

// Repo provides data access layer interface needed by account service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package accountservice
type Repo interface {
	Create(ctx context.Context, name, hashedPassword string, balance decimal.Decimal) (domain.Account, error)
	FindByCredentials(ctx context.Context, number int64, password string) (domain.Account, error)
	GetProfile(ctx context.Context, number int64) (domain.Profile, error)
}

// Service facilitates account service layer logic.
type Service struct {
	repo Repo
}

// New returns account service struct to manage account bussines logic.
func New(ar Repo) *Service {
	return &Service{repo: ar}
}

// ArtifactPayload renders the text encoded into the account QR code.
// The balance is printed exactly as the holder entered it.
func ArtifactPayload(number int64, name, balance string) string {
	return fmt.Sprintf("Account Number: %d\nName: %s\nBalance: %s Rs.", number, name, balance)
}

// Register creates an account and returns it with its identity artifact payload.
func (s *Service) Register(ctx context.Context, name, password, initialBalance string) (domain.Account, string, error) {
	l := zerolog.Ctx(ctx)

	switch {
	case name == "":
		return domain.Account{}, "", domain.ErrEmptyName
	case password == "":
		return domain.Account{}, "", domain.ErrEmptyCredential
	case len(password) > passpkg.MaxLength:
		return domain.Account{}, "", domain.ErrCredentialTooLong
	}

	balance, err := amountpkg.Parse(initialBalance)
	if err != nil {
		l.Info().Err(err).Str("initial_balance", initialBalance).Send()
		return domain.Account{}, "", err
	}

	hashedPassword, err := passpkg.Hash(password)
	if err != nil {
		l.Error().Err(err).Send()
		return domain.Account{}, "", errorspkg.ErrInternal
	}

	account, err := s.repo.Create(ctx, name, hashedPassword, balance)
	if err != nil {
		l.Error().Err(err).Msg("cannot store account")
		return domain.Account{}, "", domain.ErrRegistration
	}

	return account, ArtifactPayload(account.Number, account.Name, initialBalance), nil
}

// Authenticate returns the account if the password is valid for the account number.
//
// Unknown accounts and wrong passwords are both reported as domain.ErrAuthFailure.
func (s *Service) Authenticate(ctx context.Context, number int64, password string) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	if number <= 0 || password == "" {
		return domain.Account{}, domain.ErrAuthFailure
	}

	account, err := s.repo.FindByCredentials(ctx, number, password)
	if err != nil {
		if err == domain.ErrAccountNotFound {
			l.Warn().Int64("account_number", number).Msg("authentication failed")
			return domain.Account{}, domain.ErrAuthFailure
		}

		return domain.Account{}, err
	}

	return account, nil
}

// GetProfile returns the name and balance of the account.
func (s *Service) GetProfile(ctx context.Context, number int64) (domain.Profile, error) {
	profile, err := s.repo.GetProfile(ctx, number)
	if err != nil {
		return domain.Profile{}, err
	}

	return profile, nil
}
