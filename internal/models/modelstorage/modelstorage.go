// Package modelstorage provides types for querying relational DB.

package modelstorage

import (
	"database/sql"

	"github.com/shopspring/decimal"
)

type UserStorageEntry struct {
	ID           uint            `db:"id"`
	UserID       string          `db:"user_id"`
	Email        string          `db:"email"`
	Name         string          `db:"name"`
	PasswordHash string          `db:"password_hash"`
	Balance      decimal.Decimal `db:"balance"`
	Role         string          `db:"role"`
	RegisteredAt string          `db:"registered_at"`
}

type ServiceStorageEntry struct {
	ID          uint            `db:"id"`
	ServiceID   string          `db:"service_id"`
	Platform    string          `db:"platform"`
	ServiceType string          `db:"service_type"`
	Name        string          `db:"name"`
	Rate        decimal.Decimal `db:"rate"`
	MinQuantity int64           `db:"min_quantity"`
	MaxQuantity int64           `db:"max_quantity"`
	Description string          `db:"description"`
	CreatedAt   string          `db:"created_at"`
}

type OrderStorageEntry struct {
	ID          uint            `db:"id"`
	OrderID     string          `db:"order_id"`
	UserID      string          `db:"user_id"`
	ServiceID   string          `db:"service_id"`
	Link        string          `db:"link"`
	Quantity    int64           `db:"quantity"`
	TotalCost   decimal.Decimal `db:"total_cost"`
	Status      string          `db:"status"`
	CreatedAt   string          `db:"created_at"`
	CompletedAt sql.NullString  `db:"completed_at"`
}

type TransactionStorageEntry struct {
	ID            uint            `db:"id"`
	TransactionID string          `db:"transaction_id"`
	UserID        string          `db:"user_id"`
	Amount        decimal.Decimal `db:"amount"`
	Type          string          `db:"type"`
	Status        string          `db:"status"`
	CreatedAt     string          `db:"created_at"`
}
