package storage

import (
	"context"

	"github.com/boostup/smmpanel/internal/models/modelstorage"
	"github.com/shopspring/decimal"
)

type UserStore interface {
	AddNewUser(ctx context.Context, user modelstorage.UserStorageEntry) error
	GetUserByEmail(ctx context.Context, email string) (modelstorage.UserStorageEntry, error)
	GetUserByID(ctx context.Context, userID string) (modelstorage.UserStorageEntry, error)
	GetUsers(ctx context.Context) ([]modelstorage.UserStorageEntry, error)
	GetCurrentBalance(ctx context.Context, userID string) (decimal.Decimal, error)
}

type CatalogStore interface {
	AddNewService(ctx context.Context, service modelstorage.ServiceStorageEntry) error
	GetService(ctx context.Context, serviceID string) (modelstorage.ServiceStorageEntry, error)
	GetServices(ctx context.Context, platform string) ([]modelstorage.ServiceStorageEntry, error)
}

type OrderStore interface {
	// AddNewOrder debits the owner balance and persists the order and its
	// ledger entry as one committed unit.
	AddNewOrder(ctx context.Context, order modelstorage.OrderStorageEntry) error
	GetOrder(ctx context.Context, orderID, userID string) (modelstorage.OrderStorageEntry, error)
	GetOrders(ctx context.Context, userID string) ([]modelstorage.OrderStorageEntry, error)
	GetAllOrders(ctx context.Context) ([]modelstorage.OrderStorageEntry, error)
	UpdateOrderStatus(ctx context.Context, orderID, status, completedAt string) error
}

type LedgerStore interface {
	AddNewTransaction(ctx context.Context, transaction modelstorage.TransactionStorageEntry) error
	GetTransactions(ctx context.Context, transactionType string) ([]modelstorage.TransactionStorageEntry, error)
	// ResolveTransaction moves a pending transaction to the terminal status
	// and, when approved, credits the owner balance as one committed unit.
	ResolveTransaction(ctx context.Context, transactionID, status string) (modelstorage.TransactionStorageEntry, error)
}

type StatsStore interface {
	CountUsers(ctx context.Context) (int64, error)
	CountOrders(ctx context.Context) (int64, error)
	CountPendingDeposits(ctx context.Context) (int64, error)
}

type Storage interface {
	UserStore
	CatalogStore
	OrderStore
	LedgerStore
	StatsStore
}
