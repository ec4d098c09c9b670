// Package rest provides functionality for initializing a server
package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/boostup/smmpanel/internal/api/rest/handlers"
	"github.com/boostup/smmpanel/internal/api/rest/middleware"
	"github.com/boostup/smmpanel/internal/config"
	"github.com/boostup/smmpanel/internal/service/processor/v1/processor"
	"github.com/boostup/smmpanel/internal/service/secretary/v1/secretary"
	"github.com/boostup/smmpanel/internal/storage/v1/inpsql"
	"github.com/go-chi/chi"
	"github.com/rs/zerolog"
)

// InitServer returns a http.Server object ready to be listening and serving.
func InitServer(ctx context.Context, cfg *config.Config, log *zerolog.Logger) (server *http.Server, err error) {
	// initialize storage
	st, err := inpsql.InitStorage(ctx, cfg.StorageConfig, log)
	if err != nil {
		return nil, err
	}

	// initialize secretary
	secretaryService, err := secretary.NewSecretaryService(cfg.SecretConfig)
	if err != nil {
		return nil, err
	}

	// initialize token handler
	tokenHandler, err := middleware.NewTokenHandler(secretaryService)
	if err != nil {
		return nil, err
	}

	// initialize main service
	mainService, err := processor.InitService(st, secretaryService)
	if err != nil {
		return nil, err
	}

	urlHandler, err := handlers.InitHandlers(mainService, cfg.ServerConfig, log)
	if err != nil {
		return nil, err
	}

	r := NewRouter(urlHandler, tokenHandler)

	srv := &http.Server{
		Addr:         cfg.ServerConfig.ServerAddress,
		Handler:      r,
		IdleTimeout:  60 * time.Second,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
	}
	return srv, nil
}

// NewRouter assembles the endpoint routing table.
func NewRouter(urlHandler *handlers.Handler, tokenHandler *middleware.TokenHandler) chi.Router {
	r := chi.NewRouter()
	publicGroup := r.Group(nil)
	publicGroup.Post("/auth/register", urlHandler.HandleRegister())
	publicGroup.Post("/auth/login", urlHandler.HandleLogin())
	publicGroup.Get("/services", urlHandler.HandleGetServices())
	mainGroup := r.Group(nil)
	mainGroup.Use(tokenHandler.TokenHandle)
	mainGroup.Get("/auth/me", urlHandler.HandleGetMe())
	mainGroup.Post("/orders", urlHandler.HandleNewOrder())
	mainGroup.Get("/orders", urlHandler.HandleGetOrders())
	mainGroup.Get("/orders/{orderID}", urlHandler.HandleGetOrder())
	mainGroup.Get("/user/balance", urlHandler.HandleGetBalance())
	mainGroup.Post("/user/deposit", urlHandler.HandleNewDeposit())
	adminGroup := r.Group(nil)
	adminGroup.Use(tokenHandler.TokenHandle)
	adminGroup.Post("/admin/services", urlHandler.HandleNewService())
	adminGroup.Get("/admin/users", urlHandler.HandleGetUsers())
	adminGroup.Get("/admin/orders", urlHandler.HandleGetAllOrders())
	adminGroup.Put("/admin/orders/{orderID}/status", urlHandler.HandleOrderStatusUpdate())
	adminGroup.Get("/admin/deposits", urlHandler.HandleGetDeposits())
	adminGroup.Put("/admin/deposits/{transactionID}", urlHandler.HandleDepositResolution())
	adminGroup.Get("/stats", urlHandler.HandleGetStats())
	return r
}
