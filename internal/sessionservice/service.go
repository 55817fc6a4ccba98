// Package sessionservice manages business logic layer of sessions.
package sessionservice

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/configpkg"
	"github.com/go-petr/pet-ledger/pkg/tokenpkg"
)

// Repo provides data access layer interface needed by session service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package sessionservice
type Repo interface {
	Create(ctx context.Context, arg domain.CreateSessionParams) (domain.Session, error)
	Get(ctx context.Context, id uuid.UUID) (domain.Session, error)
	Block(ctx context.Context, id uuid.UUID) (domain.Session, error)
}

// Service facilitates session service layer logic.
type Service struct {
	repo       Repo
	TokenMaker tokenpkg.Maker
	config     configpkg.Config
}

// New returns session service struct to manage session bussines logic.
func New(sr Repo, config configpkg.Config, tm tokenpkg.Maker) (*Service, error) {
	if tm == nil {
		var err error

		tm, err = tokenpkg.NewMaker(config.TokenType, config.TokenSymmetricKey)
		if err != nil {
			return nil, err
		}
	}

	return &Service{
		repo:       sr,
		TokenMaker: tm,
		config:     config,
	}, nil
}

// Create issues an access token and stores a refresh session for the account.
//
// The refresh token and its expiry are set on the returned session.
func (s *Service) Create(ctx context.Context, arg domain.CreateSessionParams) (string, time.Time, domain.Session, error) {
	l := zerolog.Ctx(ctx)

	accessToken, accessPayload, err := s.TokenMaker.CreateToken(arg.AccountNumber, tokenpkg.KindAccess, s.config.AccessTokenDuration)
	if err != nil {
		l.Error().Err(err).Send()
		return "", time.Time{}, domain.Session{}, err
	}

	refreshToken, refreshPayload, err := s.TokenMaker.CreateToken(arg.AccountNumber, tokenpkg.KindRefresh, s.config.RefreshTokenDuration)
	if err != nil {
		l.Error().Err(err).Send()
		return "", time.Time{}, domain.Session{}, err
	}

	arg.ID = refreshPayload.ID
	arg.RefreshToken = refreshToken
	arg.ExpiresAt = refreshPayload.ExpiredAt

	session, err := s.repo.Create(ctx, arg)
	if err != nil {
		return "", time.Time{}, domain.Session{}, err
	}

	return accessToken, accessPayload.ExpiredAt, session, nil
}

// verifyRefreshToken returns the session the refresh token belongs to.
func (s *Service) verifyRefreshToken(ctx context.Context, refreshToken string) (domain.Session, error) {
	l := zerolog.Ctx(ctx)

	refreshPayload, err := s.TokenMaker.VerifyToken(refreshToken)
	if err == nil {
		err = refreshPayload.Require(tokenpkg.KindRefresh)
	}

	if err != nil {
		l.Info().Err(err).Send()
		return domain.Session{}, err
	}

	session, err := s.repo.Get(ctx, refreshPayload.ID)
	if err != nil {
		return domain.Session{}, err
	}

	switch {
	case session.IsBlocked:
		return domain.Session{}, domain.ErrBlockedSession
	case session.AccountNumber != refreshPayload.AccountNumber:
		return domain.Session{}, domain.ErrInvalidAccount
	case session.RefreshToken != refreshToken:
		return domain.Session{}, domain.ErrMismatchedRefreshToken
	case time.Now().After(session.ExpiresAt):
		return domain.Session{}, domain.ErrExpiredSession
	}

	return session, nil
}

// RenewAccessToken issues a new access token for a valid refresh token.
func (s *Service) RenewAccessToken(ctx context.Context, refreshToken string) (string, time.Time, error) {
	l := zerolog.Ctx(ctx)

	session, err := s.verifyRefreshToken(ctx, refreshToken)
	if err != nil {
		l.Info().Err(err).Msg("refresh rejected")
		return "", time.Time{}, err
	}

	accessToken, accessPayload, err := s.TokenMaker.CreateToken(session.AccountNumber, tokenpkg.KindAccess, s.config.AccessTokenDuration)
	if err != nil {
		l.Error().Err(err).Send()
		return "", time.Time{}, err
	}

	return accessToken, accessPayload.ExpiredAt, nil
}

// Logout blocks the session of the refresh token.
//
// Access tokens already issued stay valid until they expire.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	session, err := s.verifyRefreshToken(ctx, refreshToken)
	if err != nil {
		return err
	}

	if _, err := s.repo.Block(ctx, session.ID); err != nil {
		return err
	}

	zerolog.Ctx(ctx).Info().Int64("account_number", session.AccountNumber).Msg("logged out")

	return nil
}
