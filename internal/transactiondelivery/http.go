// Package transactiondelivery manages delivery layer of deposits, withdrawals and balance checks.
package transactiondelivery

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/internal/middleware"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
	"github.com/go-petr/pet-ledger/pkg/web"
)

// Service provides service layer interface needed by transaction delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package transactiondelivery
type Service interface {
	Deposit(ctx context.Context, number int64, amount string) (decimal.Decimal, error)
	Withdraw(ctx context.Context, number int64, amount string) (decimal.Decimal, error)
	CheckBalance(ctx context.Context, number int64) (decimal.Decimal, error)
	History(ctx context.Context, number int64, pageID, pageSize int32) ([]domain.Entry, error)
}

// Handler facilitates transaction delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns transaction handler.
func NewHandler(ts Service) *Handler {
	return &Handler{service: ts}
}

type amountRequest struct {
	Amount string `json:"amount" binding:"required,amount"`
}

// BalanceData is the payload of every transaction response.
type BalanceData struct {
	Balance decimal.Decimal `json:"balance"`
}

type listRequest struct {
	PageID   int32 `form:"page_id" binding:"required,min=1,max=100000"`
	PageSize int32 `form:"page_size" binding:"required,min=5,max=50"`
}

// EntriesData is the payload of the history response.
type EntriesData struct {
	Entries []domain.Entry `json:"entries"`
}

func statusCode(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case err == domain.ErrAccountNotFound:
		return http.StatusNotFound
	case err == domain.ErrInsufficientFunds:
		return http.StatusConflict
	}

	return http.StatusInternalServerError
}

func writeResult(gctx *gin.Context, balance decimal.Decimal, err error) {
	if err != nil {
		code := statusCode(err)
		if code == http.StatusInternalServerError {
			err = errorspkg.ErrInternal
		}

		gctx.JSON(code, web.Error(err))

		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: BalanceData{Balance: balance}})
}

func bindAmount(gctx *gin.Context) (string, bool) {
	var req amountRequest
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

	return req.Amount, true
}

// Deposit handles http request to add money to the caller's account.
func (h *Handler) Deposit(gctx *gin.Context) {
	amount, ok := bindAmount(gctx)
	if !ok {
		return
	}

	balance, err := h.service.Deposit(gctx.Request.Context(), middleware.AccountNumber(gctx), amount)
	writeResult(gctx, balance, err)
}

// Withdraw handles http request to take money from the caller's account.
func (h *Handler) Withdraw(gctx *gin.Context) {
	amount, ok := bindAmount(gctx)
	if !ok {
		return
	}

	balance, err := h.service.Withdraw(gctx.Request.Context(), middleware.AccountNumber(gctx), amount)
	writeResult(gctx, balance, err)
}

// Balance handles http request to read the caller's balance.
func (h *Handler) Balance(gctx *gin.Context) {
	balance, err := h.service.CheckBalance(gctx.Request.Context(), middleware.AccountNumber(gctx))
	writeResult(gctx, balance, err)
}

// History handles http request to list the caller's deposits and withdrawals.
func (h *Handler) History(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var req listRequest
	if err := gctx.ShouldBindQuery(&req); err != nil {
		zerolog.Ctx(ctx).Info().Err(err).Send()

		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			gctx.JSON(http.StatusBadRequest, web.Response{Error: web.GetErrorMsg(ve)})
			return
		}

		gctx.JSON(http.StatusBadRequest, web.Error(err))

		return
	}

	entries, err := h.service.History(ctx, middleware.AccountNumber(gctx), req.PageID, req.PageSize)
	if err != nil {
		code := statusCode(err)
		if code == http.StatusInternalServerError {
			err = errorspkg.ErrInternal
		}

		gctx.JSON(code, web.Error(err))

		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: EntriesData{Entries: entries}})
}
