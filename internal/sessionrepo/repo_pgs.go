// Package sessionrepo manages repository layer of sessions.
package sessionrepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/dbpkg"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
)

// RepoPGS facilitates session repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns session RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

const sessionColumns = `id, account_number, refresh_token, user_agent, client_ip, is_blocked, expires_at, created_at`

const createQuery = `
INSERT INTO sessions (
	id,
	account_number,
	refresh_token,
	user_agent,
	client_ip,
	is_blocked,
	expires_at
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7
	) RETURNING ` + sessionColumns

func scanSession(row *sql.Row) (domain.Session, error) {
	var s domain.Session

	err := row.Scan(
		&s.ID,
		&s.AccountNumber,
		&s.RefreshToken,
		&s.UserAgent,
		&s.ClientIP,
		&s.IsBlocked,
		&s.ExpiresAt,
		&s.CreatedAt,
	)

	return s, err
}

// Create creates the session and then returns it.
func (r *RepoPGS) Create(ctx context.Context, arg domain.CreateSessionParams) (domain.Session, error) {
	l := zerolog.Ctx(ctx)

	s, err := scanSession(r.db.QueryRowContext(ctx, createQuery,
		arg.ID,
		arg.AccountNumber,
		arg.RefreshToken,
		arg.UserAgent,
		arg.ClientIP,
		arg.IsBlocked,
		arg.ExpiresAt,
	))
	if err != nil {
		l.Error().Err(err).Send()

		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Constraint == "sessions_account_number_fkey" {
			return domain.Session{}, domain.ErrAccountNotFound
		}

		return domain.Session{}, errorspkg.ErrInternal
	}

	return s, nil
}

const getQuery = `
SELECT ` + sessionColumns + `
FROM sessions
WHERE id = $1
`

// Get returns session with the given id.
func (r *RepoPGS) Get(ctx context.Context, id uuid.UUID) (domain.Session, error) {
	l := zerolog.Ctx(ctx)

	s, err := scanSession(r.db.QueryRowContext(ctx, getQuery, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Session{}, domain.ErrSessionNotFound
		}

		l.Error().Err(err).Send()

		return domain.Session{}, errorspkg.ErrInternal
	}

	return s, nil
}

const blockQuery = `
UPDATE sessions
SET is_blocked = TRUE
WHERE id = $1
RETURNING ` + sessionColumns

// Block marks the session as blocked so its refresh token can no longer be used.
func (r *RepoPGS) Block(ctx context.Context, id uuid.UUID) (domain.Session, error) {
	l := zerolog.Ctx(ctx)

	s, err := scanSession(r.db.QueryRowContext(ctx, blockQuery, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Session{}, domain.ErrSessionNotFound
		}

		l.Error().Err(err).Send()

		return domain.Session{}, errorspkg.ErrInternal
	}

	return s, nil
}
