// Package sessiondelivery manages delivery layer of sessions.
package sessiondelivery

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
	"github.com/go-petr/pet-ledger/pkg/tokenpkg"
	"github.com/go-petr/pet-ledger/pkg/web"
)

// Service provides service layer interface needed by session delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package sessiondelivery
type Service interface {
	RenewAccessToken(ctx context.Context, refreshToken string) (string, time.Time, error)
	Logout(ctx context.Context, refreshToken string) error
}

// Handler facilitates session delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns session handler.
func NewHandler(ss Service) *Handler {
	return &Handler{
		service: ss,
	}
}

type refreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

func bindRefreshToken(gctx *gin.Context) (string, bool) {
	var req refreshTokenRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		zerolog.Ctx(gctx.Request.Context()).Info().Err(err).Send()

		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			gctx.JSON(http.StatusBadRequest, web.Response{Error: web.GetErrorMsg(ve)})
			return "", false
		}

		gctx.JSON(http.StatusBadRequest, web.Error(err))

		return "", false
	}

	return req.RefreshToken, true
}

func writeError(gctx *gin.Context, err error) {
	switch err {
	case tokenpkg.ErrInvalidToken,
		tokenpkg.ErrExpiredToken,
		tokenpkg.ErrWrongTokenKind,
		domain.ErrBlockedSession,
		domain.ErrInvalidAccount,
		domain.ErrMismatchedRefreshToken,
		domain.ErrExpiredSession:
		gctx.JSON(http.StatusUnauthorized, web.Error(err))
	case domain.ErrSessionNotFound:
		gctx.JSON(http.StatusNotFound, web.Error(err))
	default:
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
	}
}

// RenewAccessToken handles http request to renew access token.
func (h *Handler) RenewAccessToken(gctx *gin.Context) {
	refreshToken, ok := bindRefreshToken(gctx)
	if !ok {
		return
	}

	accessToken, accessTokenExpiresAt, err := h.service.RenewAccessToken(gctx.Request.Context(), refreshToken)
	if err != nil {
		writeError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{
		AccessToken:          accessToken,
		AccessTokenExpiresAt: web.FormatTime(accessTokenExpiresAt),
	})
}

// Logout handles http request to block the session of a refresh token.
func (h *Handler) Logout(gctx *gin.Context) {
	refreshToken, ok := bindRefreshToken(gctx)
	if !ok {
		return
	}

	if err := h.service.Logout(gctx.Request.Context(), refreshToken); err != nil {
		writeError(gctx, err)
		return
	}

	gctx.Status(http.StatusNoContent)
}
