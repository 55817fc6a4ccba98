// Package accountdelivery manages delivery layer of accounts.
package accountdelivery

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/internal/middleware"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
	"github.com/go-petr/pet-ledger/pkg/web"
)

// Service provides service layer interface needed by account delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package accountdelivery
type Service interface {
	Register(ctx context.Context, name, password, initialBalance string) (domain.Account, string, error)
	Authenticate(ctx context.Context, number int64, password string) (domain.Account, error)
	GetProfile(ctx context.Context, number int64) (domain.Profile, error)
}

// SessionMaker facilitates session creation.
type SessionMaker interface {
	Create(ctx context.Context, arg domain.CreateSessionParams) (string, time.Time, domain.Session, error)
}

// Handler facilitates account delivery layer logic.
type Handler struct {
	service      Service
	sessionMaker SessionMaker
}

// NewHandler returns account handler.
func NewHandler(as Service, sm SessionMaker) *Handler {
	return &Handler{
		service:      as,
		sessionMaker: sm,
	}
}

func bindError(gctx *gin.Context, err error) {
	zerolog.Ctx(gctx.Request.Context()).Info().Err(err).Send()

	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		gctx.JSON(http.StatusBadRequest, web.Response{Error: web.GetErrorMsg(ve)})
		return
	}

	gctx.JSON(http.StatusBadRequest, web.Error(err))
}

// startSession creates a session for the account and returns the response carrying its tokens.
func (h *Handler) startSession(gctx *gin.Context, accountNumber int64, data any) (web.Response, error) {
	ctx := gctx.Request.Context()

	arg := domain.CreateSessionParams{
		AccountNumber: accountNumber,
		UserAgent:     gctx.Request.UserAgent(),
		ClientIP:      gctx.ClientIP(),
	}

	accessToken, accessTokenExpiresAt, session, err := h.sessionMaker.Create(ctx, arg)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("account_number", accountNumber).Msg("cannot start session")
		return web.Response{}, err
	}

	return web.Response{
		AccessToken:           accessToken,
		AccessTokenExpiresAt:  web.FormatTime(accessTokenExpiresAt),
		RefreshToken:          session.RefreshToken,
		RefreshTokenExpiresAt: web.FormatTime(session.ExpiresAt),
		Data:                  data,
	}, nil
}

type registerRequest struct {
	Name           string `json:"name" binding:"required,max=100"`
	Password       string `json:"password" binding:"required,max=72"`
	InitialBalance string `json:"initial_balance" binding:"omitempty,amount"`
}

// RegisterData is the payload of a successful registration.
type RegisterData struct {
	Account  domain.Account `json:"account"`
	Artifact string         `json:"artifact"`
}

// Register handles http request to open an account.
func (h *Handler) Register(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var req registerRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		bindError(gctx, err)
		return
	}

	if req.InitialBalance == "" {
		req.InitialBalance = "0"
	}

	account, artifact, err := h.service.Register(ctx, req.Name, req.Password, req.InitialBalance)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			gctx.JSON(http.StatusBadRequest, web.Error(err))
			return
		}

		if err == domain.ErrRegistration {
			gctx.JSON(http.StatusInternalServerError, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	data := RegisterData{
		Account:  account,
		Artifact: artifact,
	}

	// The account is already committed, so its number and artifact are returned even without tokens.
	res, err := h.startSession(gctx, account.Number, data)
	if err != nil {
		gctx.JSON(http.StatusOK, web.Response{
			Data:  data,
			Error: domain.ErrSessionNotStarted.Error(),
		})

		return
	}

	gctx.JSON(http.StatusOK, res)
}

type loginRequest struct {
	AccountNumber int64  `json:"account_number" binding:"required,min=1"`
	Password      string `json:"password" binding:"required"`
}

// AccountData wraps an account in responses.
type AccountData struct {
	Account domain.Account `json:"account"`
}

// Login handles http login request and returns account and session data.
func (h *Handler) Login(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var req loginRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		bindError(gctx, err)
		return
	}

	account, err := h.service.Authenticate(ctx, req.AccountNumber, req.Password)
	if err != nil {
		if err == domain.ErrAuthFailure {
			gctx.JSON(http.StatusUnauthorized, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	res, err := h.startSession(gctx, account.Number, AccountData{Account: account})
	if err != nil {
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
		return
	}

	gctx.JSON(http.StatusOK, res)
}

// ProfileData wraps a profile in responses.
type ProfileData struct {
	Profile domain.Profile `json:"profile"`
}

// Profile handles http request to view the caller's account details.
func (h *Handler) Profile(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	profile, err := h.service.GetProfile(ctx, middleware.AccountNumber(gctx))
	if err != nil {
		if err == domain.ErrAccountNotFound {
			gctx.JSON(http.StatusNotFound, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: ProfileData{Profile: profile}})
}
