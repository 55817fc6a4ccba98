// Package accountrepo manages repository layer of accounts.
//
// It is the ledger store: the only place that assigns account numbers and persists balances.
package accountrepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/internal/entryrepo"
	"github.com/go-petr/pet-ledger/pkg/dbpkg"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
	"github.com/go-petr/pet-ledger/pkg/passpkg"
)

// RepoPGS facilitates account repository layer logic.
type RepoPGS struct {
	db   dbpkg.SQLInterface
	conn *sql.DB
}

// NewRepoPGS returns account RepoPGS with connection to start transactions.
func NewRepoPGS(db *sql.DB) *RepoPGS {
	return &RepoPGS{
		db:   db,
		conn: db,
	}
}

// NewTxRepoPGS returns account RepoPGS bound to an existing transaction.
//
// Balance updates then run inside the caller's transaction instead of opening their own.
func NewTxRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

const createQuery = `
INSERT INTO
    Accounts (Name, Password, Balance)
VALUES
    ($1, $2, $3)
RETURNING AccountNumber, Name, Password, Balance, CreatedAt
`

// Create stores a new account and returns it with the assigned account number.
func (r *RepoPGS) Create(ctx context.Context, name, hashedPassword string, balance decimal.Decimal) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	var a domain.Account

	switch {
	case name == "":
		return a, domain.ErrEmptyName
	case hashedPassword == "":
		return a, domain.ErrEmptyCredential
	case balance.IsNegative():
		return a, domain.ErrNegativeAmount
	}

	row := r.db.QueryRowContext(ctx, createQuery, name, hashedPassword, balance)

	err := row.Scan(
		&a.Number,
		&a.Name,
		&a.HashedPassword,
		&a.Balance,
		&a.CreatedAt,
	)

	if err != nil {
		l.Error().Err(err).Msgf("Create(ctx, %q, hash, %v)", name, balance)
		return domain.Account{}, mapConstraintErr(err)
	}

	return a, nil
}

const getQuery = `
SELECT
	AccountNumber, Name, Password, Balance, CreatedAt
FROM Accounts
WHERE AccountNumber = $1
`

// Get returns the account with the given account number.
func (r *RepoPGS) Get(ctx context.Context, number int64) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, getQuery, number)

	var a domain.Account

	err := row.Scan(
		&a.Number,
		&a.Name,
		&a.HashedPassword,
		&a.Balance,
		&a.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Account{}, domain.ErrAccountNotFound
		}

		l.Error().Err(err).Send()

		return domain.Account{}, errorspkg.ErrInternal
	}

	return a, nil
}

// FindByCredentials returns the account if the password matches its stored hash.
//
// An unknown account and a wrong password both yield domain.ErrAccountNotFound and cost one
// bcrypt comparison each.
func (r *RepoPGS) FindByCredentials(ctx context.Context, number int64, password string) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	a, err := r.Get(ctx, number)
	if err != nil {
		if err == domain.ErrAccountNotFound {
			_ = passpkg.CheckAbsent(password)
		}

		return domain.Account{}, err
	}

	if err := passpkg.Check(password, a.HashedPassword); err != nil {
		l.Warn().Err(err).Int64("account_number", number).Msg("credential mismatch")
		return domain.Account{}, domain.ErrAccountNotFound
	}

	return a, nil
}

const getBalanceQuery = `
SELECT Balance
FROM Accounts
WHERE AccountNumber = $1
`

// GetBalance returns the committed balance of the account.
func (r *RepoPGS) GetBalance(ctx context.Context, number int64) (decimal.Decimal, error) {
	l := zerolog.Ctx(ctx)

	var balance decimal.Decimal

	err := r.db.QueryRowContext(ctx, getBalanceQuery, number).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, domain.ErrAccountNotFound
		}

		l.Error().Err(err).Send()

		return decimal.Zero, errorspkg.ErrInternal
	}

	return balance, nil
}

const setBalanceQuery = `
UPDATE Accounts
SET Balance = $1
WHERE AccountNumber = $2
RETURNING Balance
`

// SetBalance overwrites the balance unconditionally.
//
// It does not read the previous value; use UpdateBalance for read-modify-write.
func (r *RepoPGS) SetBalance(ctx context.Context, number int64, balance decimal.Decimal) error {
	if balance.IsNegative() {
		return domain.ErrNegativeAmount
	}

	_, err := setBalance(ctx, r.db, number, balance)

	return err
}

const getProfileQuery = `
SELECT
	AccountNumber, Name, Balance
FROM Accounts
WHERE AccountNumber = $1
`

// GetProfile returns the account holder name and balance.
func (r *RepoPGS) GetProfile(ctx context.Context, number int64) (domain.Profile, error) {
	l := zerolog.Ctx(ctx)

	var p domain.Profile

	err := r.db.QueryRowContext(ctx, getProfileQuery, number).Scan(
		&p.Number,
		&p.Name,
		&p.Balance,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Profile{}, domain.ErrAccountNotFound
		}

		l.Error().Err(err).Send()

		return domain.Profile{}, errorspkg.ErrInternal
	}

	return p, nil
}

const lockBalanceQuery = `
SELECT Balance
FROM Accounts
WHERE AccountNumber = $1
FOR UPDATE
`

// UpdateBalance atomically replaces the balance with fn(current) and returns the stored result.
//
// The row stays locked from the read until commit, so concurrent updates of the same account
// are serialized. The change is journaled as an entry in the same transaction. If fn or any
// statement fails, or ctx is cancelled, nothing is written.
func (r *RepoPGS) UpdateBalance(ctx context.Context, number int64, fn domain.BalanceFunc) (decimal.Decimal, error) {
	if r.conn == nil {
		return updateBalance(ctx, r.db, number, fn)
	}

	l := zerolog.Ctx(ctx)

	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		l.Error().Err(err).Send()
		return decimal.Zero, errorspkg.ErrInternal
	}

	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			l.Error().Err(err).Send()
		}
	}()

	balance, err := updateBalance(ctx, tx, number, fn)
	if err != nil {
		return decimal.Zero, err
	}

	if err := tx.Commit(); err != nil {
		l.Error().Err(err).Send()
		return decimal.Zero, errorspkg.ErrInternal
	}

	return balance, nil
}

func updateBalance(ctx context.Context, q dbpkg.SQLInterface, number int64, fn domain.BalanceFunc) (decimal.Decimal, error) {
	l := zerolog.Ctx(ctx)

	var current decimal.Decimal

	err := q.QueryRowContext(ctx, lockBalanceQuery, number).Scan(&current)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, domain.ErrAccountNotFound
		}

		l.Error().Err(err).Send()

		return decimal.Zero, errorspkg.ErrInternal
	}

	next, err := fn(current)
	if err != nil {
		return decimal.Zero, err
	}

	stored, err := setBalance(ctx, q, number, next)
	if err != nil {
		return decimal.Zero, err
	}

	if _, err := entryrepo.NewRepoPGS(q).Create(ctx, number, stored.Sub(current)); err != nil {
		return decimal.Zero, err
	}

	return stored, nil
}

func setBalance(ctx context.Context, q dbpkg.SQLInterface, number int64, balance decimal.Decimal) (decimal.Decimal, error) {
	l := zerolog.Ctx(ctx)

	var stored decimal.Decimal

	err := q.QueryRowContext(ctx, setBalanceQuery, balance, number).Scan(&stored)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, domain.ErrAccountNotFound
		}

		l.Error().Err(err).Msgf("setBalance(ctx, %v, %v)", number, balance)

		return decimal.Zero, mapConstraintErr(err)
	}

	return stored, nil
}

func mapConstraintErr(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Constraint {
		case "accounts_balance_check":
			return domain.ErrInsufficientFunds
		case "accounts_name_check":
			return domain.ErrEmptyName
		case "accounts_password_check":
			return domain.ErrEmptyCredential
		}
	}

	return errorspkg.ErrInternal
}
