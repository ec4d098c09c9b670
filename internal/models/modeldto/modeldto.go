// Package modeldto provides types for API request and response bodies.

package modeldto

import "github.com/shopspring/decimal"

type (
	RegisterRequest struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
	}
	LoginRequest struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	User struct {
		ID           string          `json:"id"`
		Email        string          `json:"email"`
		Name         string          `json:"name"`
		Balance      decimal.Decimal `json:"balance"`
		Role         string          `json:"role"`
		RegisteredAt string          `json:"created_at"`
	}
	AuthResponse struct {
		Token string `json:"token"`
		User  User   `json:"user"`
	}
	NewService struct {
		Platform    string          `json:"platform"`
		ServiceType string          `json:"service_type"`
		Name        string          `json:"name"`
		Rate        decimal.Decimal `json:"rate"`
		MinQuantity int64           `json:"min_quantity"`
		MaxQuantity int64           `json:"max_quantity"`
		Description string          `json:"description"`
	}
	Service struct {
		ID          string          `json:"id"`
		Platform    string          `json:"platform"`
		ServiceType string          `json:"service_type"`
		Name        string          `json:"name"`
		Rate        decimal.Decimal `json:"rate"`
		MinQuantity int64           `json:"min_quantity"`
		MaxQuantity int64           `json:"max_quantity"`
		Description string          `json:"description"`
		CreatedAt   string          `json:"created_at"`
	}
	NewOrder struct {
		ServiceID string `json:"service_id"`
		Link      string `json:"link"`
		Quantity  int64  `json:"quantity"`
	}
	Order struct {
		ID          string          `json:"id"`
		UserID      string          `json:"user_id"`
		ServiceID   string          `json:"service_id"`
		Link        string          `json:"link"`
		Quantity    int64           `json:"quantity"`
		TotalCost   decimal.Decimal `json:"total_cost"`
		Status      string          `json:"status"`
		CreatedAt   string          `json:"created_at"`
		CompletedAt string          `json:"completed_at,omitempty"`
	}
	OrderStatusUpdate struct {
		Status string `json:"status"`
	}
	Balance struct {
		Balance decimal.Decimal `json:"balance"`
	}
	NewDeposit struct {
		Amount decimal.Decimal `json:"amount"`
	}
	Transaction struct {
		ID        string          `json:"id"`
		UserID    string          `json:"user_id"`
		Amount    decimal.Decimal `json:"amount"`
		Type      string          `json:"type"`
		Status    string          `json:"status"`
		CreatedAt string          `json:"created_at"`
	}
	DepositResolution struct {
		Action string `json:"action"`
	}
	Stats struct {
		TotalUsers      int64 `json:"total_users"`
		TotalOrders     int64 `json:"total_orders"`
		PendingDeposits int64 `json:"pending_deposits"`
	}
	Message struct {
		Message string `json:"message"`
	}
)
