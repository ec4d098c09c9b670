// Package inmem provides in-process storage functionality for tests and
// local development. It mirrors the inpsql settlement semantics: the balance
// check and debit happen under one lock acquisition.
package inmem

import (
	"context"
	"sort"
	"sync"

	"github.com/boostup/smmpanel/internal/models/modelstorage"
	storageErrors "github.com/boostup/smmpanel/internal/storage/v1/errors"
	"github.com/shopspring/decimal"
)

type Storage struct {
	mu           sync.Mutex
	seq          uint
	users        map[string]*modelstorage.UserStorageEntry
	services     map[string]*modelstorage.ServiceStorageEntry
	orders       map[string]*modelstorage.OrderStorageEntry
	transactions map[string]*modelstorage.TransactionStorageEntry
}

func InitStorage() *Storage {
	return &Storage{
		users:        make(map[string]*modelstorage.UserStorageEntry),
		services:     make(map[string]*modelstorage.ServiceStorageEntry),
		orders:       make(map[string]*modelstorage.OrderStorageEntry),
		transactions: make(map[string]*modelstorage.TransactionStorageEntry),
	}
}

func (s *Storage) nextID() uint {
	s.seq++
	return s.seq
}

func (s *Storage) AddNewUser(_ context.Context, user modelstorage.UserStorageEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == user.Email {
			return &storageErrors.AlreadyExistsError{ID: user.Email}
		}
	}
	if _, ok := s.users[user.UserID]; ok {
		return &storageErrors.AlreadyExistsError{ID: user.UserID}
	}
	user.ID = s.nextID()
	s.users[user.UserID] = &user
	return nil
}

func (s *Storage) GetUserByEmail(_ context.Context, email string) (modelstorage.UserStorageEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Email == email {
			return *user, nil
		}
	}
	return modelstorage.UserStorageEntry{}, &storageErrors.NotFoundError{}
}

func (s *Storage) GetUserByID(_ context.Context, userID string) (modelstorage.UserStorageEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return modelstorage.UserStorageEntry{}, &storageErrors.NotFoundError{}
	}
	return *user, nil
}

func (s *Storage) GetUsers(_ context.Context) ([]modelstorage.UserStorageEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := make([]modelstorage.UserStorageEntry, 0, len(s.users))
	for _, user := range s.users {
		users = append(users, *user)
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].ID > users[j].ID
	})
	return users, nil
}

func (s *Storage) GetCurrentBalance(_ context.Context, userID string) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return decimal.Zero, &storageErrors.NotFoundError{}
	}
	return user.Balance, nil
}

func (s *Storage) AddNewService(_ context.Context, service modelstorage.ServiceStorageEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.services[service.ServiceID]; ok {
		return &storageErrors.AlreadyExistsError{ID: service.ServiceID}
	}
	service.ID = s.nextID()
	s.services[service.ServiceID] = &service
	return nil
}

func (s *Storage) GetService(_ context.Context, serviceID string) (modelstorage.ServiceStorageEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	service, ok := s.services[serviceID]
	if !ok {
		return modelstorage.ServiceStorageEntry{}, &storageErrors.NotFoundError{}
	}
	return *service, nil
}

func (s *Storage) GetServices(_ context.Context, platform string) ([]modelstorage.ServiceStorageEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	services := make([]modelstorage.ServiceStorageEntry, 0, len(s.services))
	for _, service := range s.services {
		if platform != "" && service.Platform != platform {
			continue
		}
		services = append(services, *service)
	}
	sort.Slice(services, func(i, j int) bool {
		return services[i].ID < services[j].ID
	})
	return services, nil
}

func (s *Storage) AddNewOrder(_ context.Context, order modelstorage.OrderStorageEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[order.UserID]
	if !ok {
		return &storageErrors.NotFoundError{}
	}
	if user.Balance.LessThan(order.TotalCost) {
		return &storageErrors.NotEnoughFundsError{ID: order.UserID}
	}
	user.Balance = user.Balance.Sub(order.TotalCost)
	order.ID = s.nextID()
	s.orders[order.OrderID] = &order
	ledgerEntry := modelstorage.TransactionStorageEntry{
		ID:            s.nextID(),
		TransactionID: order.OrderID,
		UserID:        order.UserID,
		Amount:        order.TotalCost,
		Type:          "order",
		Status:        "approved",
		CreatedAt:     order.CreatedAt,
	}
	s.transactions[ledgerEntry.TransactionID] = &ledgerEntry
	return nil
}

func (s *Storage) GetOrder(_ context.Context, orderID, userID string) (modelstorage.OrderStorageEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[orderID]
	if !ok || order.UserID != userID {
		return modelstorage.OrderStorageEntry{}, &storageErrors.NotFoundError{}
	}
	return *order, nil
}

func (s *Storage) GetOrders(_ context.Context, userID string) ([]modelstorage.OrderStorageEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	orders := make([]modelstorage.OrderStorageEntry, 0, len(s.orders))
	for _, order := range s.orders {
		if order.UserID != userID {
			continue
		}
		orders = append(orders, *order)
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].ID > orders[j].ID
	})
	return orders, nil
}

func (s *Storage) GetAllOrders(_ context.Context) ([]modelstorage.OrderStorageEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	orders := make([]modelstorage.OrderStorageEntry, 0, len(s.orders))
	for _, order := range s.orders {
		orders = append(orders, *order)
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].ID > orders[j].ID
	})
	return orders, nil
}

func (s *Storage) UpdateOrderStatus(_ context.Context, orderID, status, completedAt string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[orderID]
	if !ok {
		return &storageErrors.NotFoundError{}
	}
	order.Status = status
	if completedAt != "" {
		order.CompletedAt.String = completedAt
		order.CompletedAt.Valid = true
	}
	return nil
}

func (s *Storage) AddNewTransaction(_ context.Context, transaction modelstorage.TransactionStorageEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.transactions[transaction.TransactionID]; ok {
		return &storageErrors.AlreadyExistsError{ID: transaction.TransactionID}
	}
	transaction.ID = s.nextID()
	s.transactions[transaction.TransactionID] = &transaction
	return nil
}

func (s *Storage) GetTransactions(_ context.Context, transactionType string) ([]modelstorage.TransactionStorageEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	transactions := make([]modelstorage.TransactionStorageEntry, 0, len(s.transactions))
	for _, transaction := range s.transactions {
		if transaction.Type != transactionType {
			continue
		}
		transactions = append(transactions, *transaction)
	}
	sort.Slice(transactions, func(i, j int) bool {
		return transactions[i].ID > transactions[j].ID
	})
	return transactions, nil
}

func (s *Storage) ResolveTransaction(_ context.Context, transactionID, status string) (modelstorage.TransactionStorageEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	transaction, ok := s.transactions[transactionID]
	if !ok {
		return modelstorage.TransactionStorageEntry{}, &storageErrors.NotFoundError{}
	}
	if transaction.Status != "pending" {
		return modelstorage.TransactionStorageEntry{}, &storageErrors.AlreadyProcessedError{ID: transactionID}
	}
	transaction.Status = status
	if status == "approved" {
		user, ok := s.users[transaction.UserID]
		if !ok {
			return modelstorage.TransactionStorageEntry{}, &storageErrors.NotFoundError{}
		}
		user.Balance = user.Balance.Add(transaction.Amount)
	}
	return *transaction, nil
}

func (s *Storage) CountUsers(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.users)), nil
}

func (s *Storage) CountOrders(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.orders)), nil
}

func (s *Storage) CountPendingDeposits(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total int64
	for _, transaction := range s.transactions {
		if transaction.Type == "deposit" && transaction.Status == "pending" {
			total++
		}
	}
	return total, nil
}
