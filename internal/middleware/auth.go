// Package middleware provides gin middlewares shared by all delivery handlers.
package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/go-petr/pet-ledger/pkg/tokenpkg"
	"github.com/go-petr/pet-ledger/pkg/web"
)

const (
	// AuthTypeBearer is the only supported authorization scheme.
	AuthTypeBearer = "bearer"
	// AuthHeaderKey is the header carrying the access token.
	AuthHeaderKey = "authorization"
	// AuthPayloadKey is the gin context key of the verified *tokenpkg.Payload.
	AuthPayloadKey = "authorization_payload"
)

var (
	// ErrAuthHeaderNotFound indicates a request without authorization header.
	ErrAuthHeaderNotFound = errors.New("authorization header is not provided")
	// ErrBadAuthHeaderFormat indicates a header that is not "<type> <token>".
	ErrBadAuthHeaderFormat = errors.New("invalid authorization header format")
	// ErrUnsupportedAuthType indicates an authorization type other than bearer.
	ErrUnsupportedAuthType = errors.New("unsupported authorization type")
)

// AddAuthorization creates an access token for the account and sets it as the request authorization header.
func AddAuthorization(r *http.Request, tm tokenpkg.Maker, authType string, accountNumber int64, duration time.Duration) error {
	token, _, err := tm.CreateToken(accountNumber, tokenpkg.KindAccess, duration)
	if err != nil {
		return err
	}

	r.Header.Set(AuthHeaderKey, fmt.Sprintf("%s %s", authType, token))

	return nil
}

// AuthMiddleware verifies the bearer access token and stores its payload in the gin context.
func AuthMiddleware(tm tokenpkg.Maker) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		l := zerolog.Ctx(gctx.Request.Context())

		authHeader := gctx.GetHeader(AuthHeaderKey)
		if len(authHeader) == 0 {
			gctx.AbortWithStatusJSON(http.StatusUnauthorized, web.Error(ErrAuthHeaderNotFound))
			return
		}

		fields := strings.Fields(authHeader)
		if len(fields) != 2 {
			gctx.AbortWithStatusJSON(http.StatusUnauthorized, web.Error(ErrBadAuthHeaderFormat))
			return
		}

		if strings.ToLower(fields[0]) != AuthTypeBearer {
			gctx.AbortWithStatusJSON(http.StatusUnauthorized, web.Error(ErrUnsupportedAuthType))
			return
		}

		payload, err := tm.VerifyToken(fields[1])
		if err == nil {
			err = payload.Require(tokenpkg.KindAccess)
		}

		if err != nil {
			l.Info().Err(err).Send()
			gctx.AbortWithStatusJSON(http.StatusUnauthorized, web.Error(err))

			return
		}

		gctx.Set(AuthPayloadKey, payload)
		gctx.Next()
	}
}

// AccountNumber returns the account number of the authenticated caller.
//
// It must only be used behind AuthMiddleware.
func AccountNumber(gctx *gin.Context) int64 {
	return gctx.MustGet(AuthPayloadKey).(*tokenpkg.Payload).AccountNumber
}
