// Package httpserver manages server creation and api routing.
package httpserver

import (
	"database/sql"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/go-petr/pet-ledger/internal/accountdelivery"
	"github.com/go-petr/pet-ledger/internal/accountrepo"
	"github.com/go-petr/pet-ledger/internal/accountservice"
	"github.com/go-petr/pet-ledger/internal/entryrepo"
	"github.com/go-petr/pet-ledger/internal/middleware"
	"github.com/go-petr/pet-ledger/internal/sessiondelivery"
	"github.com/go-petr/pet-ledger/internal/sessionrepo"
	"github.com/go-petr/pet-ledger/internal/sessionservice"
	"github.com/go-petr/pet-ledger/internal/transactiondelivery"
	"github.com/go-petr/pet-ledger/internal/transactionservice"
	"github.com/go-petr/pet-ledger/pkg/amountpkg"
	"github.com/go-petr/pet-ledger/pkg/configpkg"
	"github.com/go-petr/pet-ledger/pkg/tokenpkg"
)

// Server holds db connection, handlers router and configuration.
type Server struct {
	DB     *sql.DB
	Engine *gin.Engine
	Config configpkg.Config
}

// ServeHTTP implements the http.Handler interface for the Server type.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Engine.ServeHTTP(w, r)
}

// New creates Server type with instantiated domains and routes.
func New(conn *sql.DB, logger zerolog.Logger, config configpkg.Config) (*Server, error) {
	accountRepo := accountrepo.NewRepoPGS(conn)
	sessionRepo := sessionrepo.NewRepoPGS(conn)
	entryRepo := entryrepo.NewRepoPGS(conn)

	tokenMaker, err := tokenpkg.NewMaker(config.TokenType, config.TokenSymmetricKey)
	if err != nil {
		return nil, fmt.Errorf("cannot create token maker: %w", err)
	}

	accountService := accountservice.New(accountRepo)
	transactionService := transactionservice.New(accountRepo, entryRepo)

	sessionService, err := sessionservice.New(sessionRepo, config, tokenMaker)
	if err != nil {
		return nil, fmt.Errorf("cannot initialize session service: %w", err)
	}

	accountHandler := accountdelivery.NewHandler(accountService, sessionService)
	transactionHandler := transactiondelivery.NewHandler(transactionService)
	sessionHandler := sessiondelivery.NewHandler(sessionService)

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := v.RegisterValidation("amount", amountpkg.ValidAmount); err != nil {
			return nil, fmt.Errorf("cannot register amount validator: %w", err)
		}
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(middleware.RequestLogger(logger))

	engine.POST("/accounts", accountHandler.Register)
	engine.POST("/accounts/login", accountHandler.Login)
	engine.POST("/sessions", sessionHandler.RenewAccessToken)
	engine.DELETE("/sessions", sessionHandler.Logout)

	authRoutes := engine.Group("/accounts/me").Use(middleware.AuthMiddleware(sessionService.TokenMaker))

	authRoutes.GET("", accountHandler.Profile)
	authRoutes.GET("/balance", transactionHandler.Balance)
	authRoutes.POST("/deposit", transactionHandler.Deposit)
	authRoutes.POST("/withdraw", transactionHandler.Withdraw)
	authRoutes.GET("/entries", transactionHandler.History)

	server := &Server{
		DB:     conn,
		Engine: engine,
		Config: config,
	}

	return server, nil
}
