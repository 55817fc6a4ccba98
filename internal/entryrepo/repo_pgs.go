// Package entryrepo manages repository layer of balance entries.
package entryrepo

import (
	"context"
	"errors"

	"github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/dbpkg"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
)

// RepoPGS facilitates entry repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns entry RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{db: db}
}

const entryColumns = `id, account_number, amount, created_at`

const createQuery = `
INSERT INTO
    entries (account_number, amount)
VALUES
    ($1, $2)
RETURNING ` + entryColumns

// Create records a balance change of the account.
func (r *RepoPGS) Create(ctx context.Context, number int64, amount decimal.Decimal) (domain.Entry, error) {
	l := zerolog.Ctx(ctx)

	var e domain.Entry

	err := r.db.QueryRowContext(ctx, createQuery, number, amount).Scan(
		&e.ID,
		&e.AccountNumber,
		&e.Amount,
		&e.CreatedAt,
	)

	if err != nil {
		l.Error().Err(err).Msgf("Create(ctx, %v, %v)", number, amount)

		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Constraint == "entries_account_number_fkey" {
			return domain.Entry{}, domain.ErrAccountNotFound
		}

		return domain.Entry{}, errorspkg.ErrInternal
	}

	return e, nil
}

const listQuery = `
SELECT ` + entryColumns + `
FROM entries
WHERE account_number = $1
ORDER BY id
LIMIT $2 OFFSET $3
`

// List returns a page of entries of the account, oldest first.
func (r *RepoPGS) List(ctx context.Context, number int64, limit, offset int32) ([]domain.Entry, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listQuery, number, limit, offset)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.Entry{}

	for rows.Next() {
		var e domain.Entry
		if err := rows.Scan(
			&e.ID,
			&e.AccountNumber,
			&e.Amount,
			&e.CreatedAt,
		); err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, e)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}
