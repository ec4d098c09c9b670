// Package processor provides intermediary layer functionality between the DB and API endpoint handlers.

package processor

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/boostup/smmpanel/internal/models/modeldto"
	"github.com/boostup/smmpanel/internal/models/modelstorage"
	serviceErrors "github.com/boostup/smmpanel/internal/service/processor/v1/errors"
	"github.com/boostup/smmpanel/internal/service/secretary/v1"
	"github.com/boostup/smmpanel/internal/storage/v1"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// User roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Order statuses. Any status may move to any other, the graph is
// deliberately unrestricted.
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusCompleted  = "completed"
	OrderStatusCancelled  = "cancelled"
)

// Transaction types and statuses.
const (
	TransactionTypeDeposit = "deposit"
	TransactionTypeOrder   = "order"

	TransactionStatusPending  = "pending"
	TransactionStatusApproved = "approved"
	TransactionStatusRejected = "rejected"
)

// rateUnit is the quantity a service rate is quoted per.
var rateUnit = decimal.NewFromInt(1000)

// Processor defines attributes of a struct available to its methods.
type Processor struct {
	storage   storage.Storage
	secretary secretary.Secretary
}

// InitService initializes an intermediary service for data processing.
func InitService(st storage.Storage, sec secretary.Secretary) (*Processor, error) {
	if st == nil {
		return nil, &serviceErrors.ServiceFoundNilArgument{Msg: "nil storage was passed to service initializer"}
	}
	if sec == nil {
		return nil, &serviceErrors.ServiceFoundNilArgument{Msg: "nil secretary was passed to service initializer"}
	}
	processor := &Processor{
		storage:   st,
		secretary: sec,
	}
	return processor, nil
}

// AddNewUser processes user register requests.
func (proc *Processor) AddNewUser(ctx context.Context, register modeldto.RegisterRequest) (string, modeldto.User, error) {
	accessToken, userID, err := proc.secretary.NewToken()
	if err != nil {
		return "", modeldto.User{}, err
	}
	passwordHash, err := proc.secretary.HashPassword(register.Password)
	if err != nil {
		return "", modeldto.User{}, err
	}
	entry := modelstorage.UserStorageEntry{
		UserID:       userID,
		Email:        register.Email,
		Name:         register.Name,
		PasswordHash: passwordHash,
		Balance:      decimal.Zero,
		Role:         RoleUser,
		RegisteredAt: time.Now().Format(time.RFC3339),
	}
	err = proc.storage.AddNewUser(ctx, entry)
	if err != nil {
		return "", modeldto.User{}, err
	}
	return accessToken, newUserDTO(entry), nil
}

// LoginUser processes user login requests.
func (proc *Processor) LoginUser(ctx context.Context, login modeldto.LoginRequest) (string, modeldto.User, error) {
	entry, err := proc.storage.GetUserByEmail(ctx, login.Email)
	if err != nil {
		return "", modeldto.User{}, &serviceErrors.ServiceInvalidCredentials{Msg: "invalid credentials"}
	}
	if !proc.secretary.VerifyPassword(login.Password, entry.PasswordHash) {
		return "", modeldto.User{}, &serviceErrors.ServiceInvalidCredentials{Msg: "invalid credentials"}
	}
	accessToken, err := proc.secretary.GetTokenForUser(entry.UserID)
	if err != nil {
		return "", modeldto.User{}, err
	}
	return accessToken, newUserDTO(entry), nil
}

// GetUserByToken retrieves the identity a token is bound to.
func (proc *Processor) GetUserByToken(ctx context.Context, accessToken string) (modeldto.User, error) {
	userID, err := proc.secretary.ValidateToken(accessToken)
	if err != nil {
		return modeldto.User{}, err
	}
	entry, err := proc.storage.GetUserByID(ctx, userID)
	if err != nil {
		return modeldto.User{}, err
	}
	return newUserDTO(entry), nil
}

// RequireRole gates an operation on the stored role of an identity.
func (proc *Processor) RequireRole(user modeldto.User, role string) error {
	if user.Role != role {
		return &serviceErrors.ServiceForbidden{Msg: fmt.Sprintf("%s access required", role)}
	}
	return nil
}

// GetAllUsers processes admin user listing requests. Password hashes never
// leave this layer.
func (proc *Processor) GetAllUsers(ctx context.Context) ([]modeldto.User, error) {
	entries, err := proc.storage.GetUsers(ctx)
	if err != nil {
		return nil, err
	}
	users := make([]modeldto.User, 0, len(entries))
	for _, entry := range entries {
		users = append(users, newUserDTO(entry))
	}
	return users, nil
}

// AddNewService processes catalog entry creation requests.
func (proc *Processor) AddNewService(ctx context.Context, newService modeldto.NewService) (modeldto.Service, error) {
	if !newService.Rate.IsPositive() {
		return modeldto.Service{}, &serviceErrors.ServiceInvalidServiceSpec{Msg: "rate must be positive"}
	}
	if newService.MinQuantity <= 0 || newService.MaxQuantity <= 0 {
		return modeldto.Service{}, &serviceErrors.ServiceInvalidServiceSpec{Msg: "quantity bounds must be positive"}
	}
	if newService.MinQuantity > newService.MaxQuantity {
		return modeldto.Service{}, &serviceErrors.ServiceInvalidServiceSpec{Msg: "min quantity must not exceed max quantity"}
	}
	entry := modelstorage.ServiceStorageEntry{
		ServiceID:   uuid.New().String(),
		Platform:    newService.Platform,
		ServiceType: newService.ServiceType,
		Name:        newService.Name,
		Rate:        newService.Rate,
		MinQuantity: newService.MinQuantity,
		MaxQuantity: newService.MaxQuantity,
		Description: newService.Description,
		CreatedAt:   time.Now().Format(time.RFC3339),
	}
	err := proc.storage.AddNewService(ctx, entry)
	if err != nil {
		return modeldto.Service{}, err
	}
	return newServiceDTO(entry), nil
}

// GetServices processes catalog query requests.
func (proc *Processor) GetServices(ctx context.Context, platform string) ([]modeldto.Service, error) {
	entries, err := proc.storage.GetServices(ctx, platform)
	if err != nil {
		return nil, err
	}
	services := make([]modeldto.Service, 0, len(entries))
	for _, entry := range entries {
		services = append(services, newServiceDTO(entry))
	}
	return services, nil
}

// AddNewOrder processes new order requests. The balance check and debit are
// delegated to storage as one atomic settlement operation.
func (proc *Processor) AddNewOrder(ctx context.Context, userID string, newOrder modeldto.NewOrder) (modeldto.Order, error) {
	err := validateLink(newOrder.Link)
	if err != nil {
		return modeldto.Order{}, err
	}
	service, err := proc.storage.GetService(ctx, newOrder.ServiceID)
	if err != nil {
		return modeldto.Order{}, err
	}
	if newOrder.Quantity < service.MinQuantity || newOrder.Quantity > service.MaxQuantity {
		return modeldto.Order{}, &serviceErrors.ServiceQuantityOutOfRange{Msg: fmt.Sprintf("quantity must be between %d and %d", service.MinQuantity, service.MaxQuantity)}
	}
	totalCost := service.Rate.Mul(decimal.NewFromInt(newOrder.Quantity)).Div(rateUnit)
	entry := modelstorage.OrderStorageEntry{
		OrderID:   uuid.New().String(),
		UserID:    userID,
		ServiceID: service.ServiceID,
		Link:      newOrder.Link,
		Quantity:  newOrder.Quantity,
		TotalCost: totalCost,
		Status:    OrderStatusPending,
		CreatedAt: time.Now().Format(time.RFC3339),
	}
	err = proc.storage.AddNewOrder(ctx, entry)
	if err != nil {
		return modeldto.Order{}, err
	}
	return newOrderDTO(entry), nil
}

// GetOrder processes order query requests. Lookup is scoped by both order
// and owner identifiers so that foreign orders stay invisible.
func (proc *Processor) GetOrder(ctx context.Context, userID, orderID string) (modeldto.Order, error) {
	entry, err := proc.storage.GetOrder(ctx, orderID, userID)
	if err != nil {
		return modeldto.Order{}, err
	}
	return newOrderDTO(entry), nil
}

// GetOrders processes orders query requests.
func (proc *Processor) GetOrders(ctx context.Context, userID string) ([]modeldto.Order, error) {
	entries, err := proc.storage.GetOrders(ctx, userID)
	if err != nil {
		return nil, err
	}
	return newOrderDTOs(entries), nil
}

// GetAllOrders processes admin orders query requests.
func (proc *Processor) GetAllOrders(ctx context.Context) ([]modeldto.Order, error) {
	entries, err := proc.storage.GetAllOrders(ctx)
	if err != nil {
		return nil, err
	}
	return newOrderDTOs(entries), nil
}

// UpdateOrderStatus processes order status transition requests. Moving into
// completed stamps the completion time, moving elsewhere leaves a previous
// stamp untouched.
func (proc *Processor) UpdateOrderStatus(ctx context.Context, orderID, status string) error {
	switch status {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusCompleted, OrderStatusCancelled:
	default:
		return &serviceErrors.ServiceInvalidStatus{Msg: fmt.Sprintf("illegal order status %s", status)}
	}
	var completedAt string
	if status == OrderStatusCompleted {
		completedAt = time.Now().Format(time.RFC3339)
	}
	return proc.storage.UpdateOrderStatus(ctx, orderID, status, completedAt)
}

// GetBalance processes balance query requests.
func (proc *Processor) GetBalance(ctx context.Context, userID string) (modeldto.Balance, error) {
	amount, err := proc.storage.GetCurrentBalance(ctx, userID)
	if err != nil {
		return modeldto.Balance{}, err
	}
	return modeldto.Balance{Balance: amount}, nil
}

// AddNewDeposit processes deposit requests. The balance is not touched until
// an administrator approves the transaction.
func (proc *Processor) AddNewDeposit(ctx context.Context, userID string, deposit modeldto.NewDeposit) (modeldto.Transaction, error) {
	if !deposit.Amount.IsPositive() {
		return modeldto.Transaction{}, &serviceErrors.ServiceInvalidAmount{Msg: "amount must be positive"}
	}
	entry := modelstorage.TransactionStorageEntry{
		TransactionID: uuid.New().String(),
		UserID:        userID,
		Amount:        deposit.Amount,
		Type:          TransactionTypeDeposit,
		Status:        TransactionStatusPending,
		CreatedAt:     time.Now().Format(time.RFC3339),
	}
	err := proc.storage.AddNewTransaction(ctx, entry)
	if err != nil {
		return modeldto.Transaction{}, err
	}
	return newTransactionDTO(entry), nil
}

// GetDeposits processes admin deposit listing requests.
func (proc *Processor) GetDeposits(ctx context.Context) ([]modeldto.Transaction, error) {
	entries, err := proc.storage.GetTransactions(ctx, TransactionTypeDeposit)
	if err != nil {
		return nil, err
	}
	transactions := make([]modeldto.Transaction, 0, len(entries))
	for _, entry := range entries {
		transactions = append(transactions, newTransactionDTO(entry))
	}
	return transactions, nil
}

// ResolveDeposit processes deposit approval or rejection requests. A
// transaction resolves exactly once.
func (proc *Processor) ResolveDeposit(ctx context.Context, transactionID, action string) (modeldto.Transaction, error) {
	var status string
	switch action {
	case "approve":
		status = TransactionStatusApproved
	case "reject":
		status = TransactionStatusRejected
	default:
		return modeldto.Transaction{}, &serviceErrors.ServiceInvalidAction{Msg: fmt.Sprintf("illegal action %s", action)}
	}
	entry, err := proc.storage.ResolveTransaction(ctx, transactionID, status)
	if err != nil {
		return modeldto.Transaction{}, err
	}
	return newTransactionDTO(entry), nil
}

// GetStats processes admin aggregate counts requests.
func (proc *Processor) GetStats(ctx context.Context) (modeldto.Stats, error) {
	var stats modeldto.Stats
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		total, err := proc.storage.CountUsers(ctx)
		stats.TotalUsers = total
		return err
	})
	g.Go(func() error {
		total, err := proc.storage.CountOrders(ctx)
		stats.TotalOrders = total
		return err
	})
	g.Go(func() error {
		total, err := proc.storage.CountPendingDeposits(ctx)
		stats.PendingDeposits = total
		return err
	})
	err := g.Wait()
	if err != nil {
		return modeldto.Stats{}, err
	}
	return stats, nil
}

// validateLink checks that an order target is an absolute http(s) URL with a host.
func validateLink(link string) error {
	parsed, err := url.ParseRequestURI(link)
	if err != nil {
		return &serviceErrors.ServiceIllegalLink{Msg: fmt.Sprintf("illegal order link %s", link)}
	}
	if (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return &serviceErrors.ServiceIllegalLink{Msg: fmt.Sprintf("illegal order link %s", link)}
	}
	return nil
}

func newUserDTO(entry modelstorage.UserStorageEntry) modeldto.User {
	return modeldto.User{
		ID:           entry.UserID,
		Email:        entry.Email,
		Name:         entry.Name,
		Balance:      entry.Balance,
		Role:         entry.Role,
		RegisteredAt: entry.RegisteredAt,
	}
}

func newServiceDTO(entry modelstorage.ServiceStorageEntry) modeldto.Service {
	return modeldto.Service{
		ID:          entry.ServiceID,
		Platform:    entry.Platform,
		ServiceType: entry.ServiceType,
		Name:        entry.Name,
		Rate:        entry.Rate,
		MinQuantity: entry.MinQuantity,
		MaxQuantity: entry.MaxQuantity,
		Description: entry.Description,
		CreatedAt:   entry.CreatedAt,
	}
}

func newOrderDTO(entry modelstorage.OrderStorageEntry) modeldto.Order {
	order := modeldto.Order{
		ID:        entry.OrderID,
		UserID:    entry.UserID,
		ServiceID: entry.ServiceID,
		Link:      entry.Link,
		Quantity:  entry.Quantity,
		TotalCost: entry.TotalCost,
		Status:    entry.Status,
		CreatedAt: entry.CreatedAt,
	}
	if entry.CompletedAt.Valid {
		order.CompletedAt = entry.CompletedAt.String
	}
	return order
}

func newOrderDTOs(entries []modelstorage.OrderStorageEntry) []modeldto.Order {
	orders := make([]modeldto.Order, 0, len(entries))
	for _, entry := range entries {
		orders = append(orders, newOrderDTO(entry))
	}
	return orders
}

func newTransactionDTO(entry modelstorage.TransactionStorageEntry) modeldto.Transaction {
	return modeldto.Transaction{
		ID:        entry.TransactionID,
		UserID:    entry.UserID,
		Amount:    entry.Amount,
		Type:      entry.Type,
		Status:    entry.Status,
		CreatedAt: entry.CreatedAt,
	}
}
