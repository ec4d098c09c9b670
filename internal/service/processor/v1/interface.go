// Package processor provides intermediary layer functionality between the DB and API endpoint handlers.
package processor

import (
	"context"

	"github.com/boostup/smmpanel/internal/models/modeldto"
)

type Processor interface {
	AddNewUser(ctx context.Context, register modeldto.RegisterRequest) (string, modeldto.User, error)
	LoginUser(ctx context.Context, login modeldto.LoginRequest) (string, modeldto.User, error)
	GetUserByToken(ctx context.Context, accessToken string) (modeldto.User, error)
	RequireRole(user modeldto.User, role string) error
	GetAllUsers(ctx context.Context) ([]modeldto.User, error)
	AddNewService(ctx context.Context, newService modeldto.NewService) (modeldto.Service, error)
	GetServices(ctx context.Context, platform string) ([]modeldto.Service, error)
	AddNewOrder(ctx context.Context, userID string, newOrder modeldto.NewOrder) (modeldto.Order, error)
	GetOrder(ctx context.Context, userID, orderID string) (modeldto.Order, error)
	GetOrders(ctx context.Context, userID string) ([]modeldto.Order, error)
	GetAllOrders(ctx context.Context) ([]modeldto.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID, status string) error
	GetBalance(ctx context.Context, userID string) (modeldto.Balance, error)
	AddNewDeposit(ctx context.Context, userID string, deposit modeldto.NewDeposit) (modeldto.Transaction, error)
	GetDeposits(ctx context.Context) ([]modeldto.Transaction, error)
	ResolveDeposit(ctx context.Context, transactionID, action string) (modeldto.Transaction, error)
	GetStats(ctx context.Context) (modeldto.Stats, error)
}
