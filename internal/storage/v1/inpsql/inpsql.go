// Package inpsql provides PSQL-based storage functionality.
package inpsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/boostup/smmpanel/internal/config"
	"github.com/boostup/smmpanel/internal/models/modelstorage"
	storageErrors "github.com/boostup/smmpanel/internal/storage/v1/errors"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type Storage struct {
	mu  sync.Mutex
	Cfg *config.StorageConfig
	DB  *sql.DB
	log *zerolog.Logger
}

func InitStorage(ctx context.Context, cfg *config.StorageConfig, log *zerolog.Logger) (*Storage, error) {
	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("")
	}
	st := Storage{
		Cfg: cfg,
		DB:  db,
		log: log,
	}
	err = st.createTables(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("")
	}
	log.Info().Msg("PSQL DB connection was established")
	return &st, nil
}

func (s *Storage) AddNewUser(ctx context.Context, user modelstorage.UserStorageEntry) error {
	newUserStmt, err := s.DB.PrepareContext(ctx, "INSERT INTO users (user_id, email, name, password_hash, balance, role, registered_at) VALUES ($1, $2, $3, $4, $5, $6, $7)")
	if err != nil {
		return &storageErrors.StatementPSQLError{Err: err}
	}
	defer newUserStmt.Close()
	chanOk := make(chan bool)
	chanEr := make(chan error)
	go func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		_, err := newUserStmt.ExecContext(ctx, user.UserID, user.Email, user.Name, user.PasswordHash, user.Balance, user.Role, user.RegisteredAt)
		if err != nil {
			if err, ok := err.(*pgconn.PgError); ok && err.Code == pgerrcode.UniqueViolation {
				chanEr <- &storageErrors.AlreadyExistsError{Err: err, ID: user.Email}
				return
			}
			chanEr <- &storageErrors.ExecutionPSQLError{Err: err}
			return
		}
		chanOk <- true
	}()

	select {
	case <-ctx.Done():
		s.log.Error().Err(ctx.Err()).Msg(fmt.Sprintf("adding new user failed for %s", user.Email))
		return &storageErrors.ContextTimeoutExceededError{Err: ctx.Err()}
	case methodErr := <-chanEr:
		s.log.Error().Err(methodErr).Msg(fmt.Sprintf("adding new user failed for %s", user.Email))
		return methodErr
	case <-chanOk:
		s.log.Info().Msg(fmt.Sprintf("adding new user done for %s", user.Email))
		return nil
	}
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (modelstorage.UserStorageEntry, error) {
	selectStmt, err := s.DB.PrepareContext(ctx, "SELECT id, user_id, email, name, password_hash, balance, role, registered_at FROM users WHERE email = $1")
	if err != nil {
		return modelstorage.UserStorageEntry{}, &storageErrors.StatementPSQLError{Err: err}
	}
	defer selectStmt.Close()
	chanOk := make(chan modelstorage.UserStorageEntry)
	chanEr := make(chan error)
	go func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		var queryOutput modelstorage.UserStorageEntry
		err := selectStmt.QueryRowContext(ctx, email).Scan(&queryOutput.ID, &queryOutput.UserID, &queryOutput.Email, &queryOutput.Name, &queryOutput.PasswordHash, &queryOutput.Balance, &queryOutput.Role, &queryOutput.RegisteredAt)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				chanEr <- &storageErrors.NotFoundError{Err: err}
				return
			default:
				chanEr <- err
				return
			}
		}
		chanOk <- queryOutput
	}()

	select {
	case <-ctx.Done():
		s.log.Error().Err(ctx.Err()).Msg("getting user by email failed")
		return modelstorage.UserStorageEntry{}, &storageErrors.ContextTimeoutExceededError{Err: ctx.Err()}
	case methodErr := <-chanEr:
		s.log.Error().Err(methodErr).Msg("getting user by email failed")
		return modelstorage.UserStorageEntry{}, methodErr
	case user := <-chanOk:
		return user, nil
	}
}

func (s *Storage) GetUserByID(ctx context.Context, userID string) (modelstorage.UserStorageEntry, error) {
	selectStmt, err := s.DB.PrepareContext(ctx, "SELECT id, user_id, email, name, password_hash, balance, role, registered_at FROM users WHERE user_id = $1")
	if err != nil {
		return modelstorage.UserStorageEntry{}, &storageErrors.StatementPSQLError{Err: err}
	}
	defer selectStmt.Close()
	chanOk := make(chan modelstorage.UserStorageEntry)
	chanEr := make(chan error)
	go func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		var queryOutput modelstorage.UserStorageEntry
		err := selectStmt.QueryRowContext(ctx, userID).Scan(&queryOutput.ID, &queryOutput.UserID, &queryOutput.Email, &queryOutput.Name, &queryOutput.PasswordHash, &queryOutput.Balance, &queryOutput.Role, &queryOutput.RegisteredAt)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				chanEr <- &storageErrors.NotFoundError{Err: err}
				return
			default:
				chanEr <- err
				return
			}
		}
		chanOk <- queryOutput
	}()

	select {
	case <-ctx.Done():
		s.log.Error().Err(ctx.Err()).Msg("getting user by ID failed")
		return modelstorage.UserStorageEntry{}, &storageErrors.ContextTimeoutExceededError{Err: ctx.Err()}
	case methodErr := <-chanEr:
		s.log.Error().Err(methodErr).Msg("getting user by ID failed")
		return modelstorage.UserStorageEntry{}, methodErr
	case user := <-chanOk:
		return user, nil
	}
}

func (s *Storage) GetUsers(ctx context.Context) ([]modelstorage.UserStorageEntry, error) {
	selectStmt, err := s.DB.PrepareContext(ctx, "SELECT id, user_id, email, name, password_hash, balance, role, registered_at FROM users ORDER BY registered_at DESC")
	if err != nil {
		return nil, &storageErrors.StatementPSQLError{Err: err}
	}
	defer selectStmt.Close()
	chanOk := make(chan []modelstorage.UserStorageEntry)
	chanEr := make(chan error)
	go func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		rows, err := selectStmt.QueryContext(ctx)
		if err != nil {
			chanEr <- &storageErrors.ExecutionPSQLError{Err: err}
			return
		}
		defer rows.Close()
		var queryOutput []modelstorage.UserStorageEntry
		for rows.Next() {
			var queryOutputRow modelstorage.UserStorageEntry
			err = rows.Scan(&queryOutputRow.ID, &queryOutputRow.UserID, &queryOutputRow.Email, &queryOutputRow.Name, &queryOutputRow.PasswordHash, &queryOutputRow.Balance, &queryOutputRow.Role, &queryOutputRow.RegisteredAt)
			if err != nil {
				chanEr <- &storageErrors.ScanningPSQLError{Err: err}
				return
			}
			queryOutput = append(queryOutput, queryOutputRow)
		}
		err = rows.Err()
		if err != nil {
			chanEr <- &storageErrors.ScanningPSQLError{Err: err}
			return
		}
		chanOk <- queryOutput
	}()

	select {
	case <-ctx.Done():
		s.log.Error().Err(ctx.Err()).Msg("getting users failed")
		return nil, &storageErrors.ContextTimeoutExceededError{Err: ctx.Err()}
	case methodErr := <-chanEr:
		s.log.Error().Err(methodErr).Msg("getting users failed")
		return nil, methodErr
	case users := <-chanOk:
		return users, nil
	}
}

func (s *Storage) GetCurrentBalance(ctx context.Context, userID string) (decimal.Decimal, error) {
	selectStmt, err := s.DB.PrepareContext(ctx, "SELECT balance FROM users WHERE user_id = $1")
	if err != nil {
		return decimal.Zero, &storageErrors.StatementPSQLError{Err: err}
	}
	defer selectStmt.Close()
	chanOk := make(chan decimal.Decimal)
	chanEr := make(chan error)
	go func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		var amount decimal.Decimal
		err := selectStmt.QueryRowContext(ctx, userID).Scan(&amount)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				chanEr <- &storageErrors.NotFoundError{Err: err}
				return
			default:
				chanEr <- err
				return
			}
		}
		chanOk <- amount
	}()

	select {
	case <-ctx.Done():
		s.log.Error().Err(ctx.Err()).Msg("getting current balance failed")
		return decimal.Zero, &storageErrors.ContextTimeoutExceededError{Err: ctx.Err()}
	case methodErr := <-chanEr:
		s.log.Error().Err(methodErr).Msg("getting current balance failed")
		return decimal.Zero, methodErr
	case amount := <-chanOk:
		return amount, nil
	}
}

func (s *Storage) AddNewService(ctx context.Context, service modelstorage.ServiceStorageEntry) error {
	newServiceStmt, err := s.DB.PrepareContext(ctx, "INSERT INTO services (service_id, platform, service_type, name, rate, min_quantity, max_quantity, description, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)")
	if err != nil {
		return &storageErrors.StatementPSQLError{Err: err}
	}
	defer newServiceStmt.Close()
	chanOk := make(chan bool)
	chanEr := make(chan error)
	go func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		_, err := newServiceStmt.ExecContext(ctx, service.ServiceID, service.Platform, service.ServiceType, service.Name, service.Rate, service.MinQuantity, service.MaxQuantity, service.Description, service.CreatedAt)
		if err != nil {
			if err, ok := err.(*pgconn.PgError); ok && err.Code == pgerrcode.UniqueViolation {
				chanEr <- &storageErrors.AlreadyExistsError{Err: err, ID: service.ServiceID}
				return
			}
			chanEr <- &storageErrors.ExecutionPSQLError{Err: err}
			return
		}
		chanOk <- true
	}()

	select {
	case <-ctx.Done():
		s.log.Error().Err(ctx.Err()).Msg(fmt.Sprintf("adding new service failed for %s", service.Name))
		return &storageErrors.ContextTimeoutExceededError{Err: ctx.Err()}
	case methodErr := <-chanEr:
		s.log.Error().Err(methodErr).Msg(fmt.Sprintf("adding new service failed for %s", service.Name))
		return methodErr
	case <-chanOk:
		s.log.Info().Msg(fmt.Sprintf("adding new service done for %s", service.Name))
		return nil
	}
}

func (s *Storage) GetService(ctx context.Context, serviceID string) (modelstorage.ServiceStorageEntry, error) {
	selectStmt, err := s.DB.PrepareContext(ctx, "SELECT id, service_id, platform, service_type, name, rate, min_quantity, max_quantity, description, created_at FROM services WHERE service_id = $1")
	if err != nil {
		return modelstorage.ServiceStorageEntry{}, &storageErrors.StatementPSQLError{Err: err}
	}
	defer selectStmt.Close()
	chanOk := make(chan modelstorage.ServiceStorageEntry)
	chanEr := make(chan error)
	go func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		var queryOutput modelstorage.ServiceStorageEntry
		err := selectStmt.QueryRowContext(ctx, serviceID).Scan(&queryOutput.ID, &queryOutput.ServiceID, &queryOutput.Platform, &queryOutput.ServiceType, &queryOutput.Name, &queryOutput.Rate, &queryOutput.MinQuantity, &queryOutput.MaxQuantity, &queryOutput.Description, &queryOutput.CreatedAt)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				chanEr <- &storageErrors.NotFoundError{Err: err}
				return
			default:
				chanEr <- err
				return
			}
		}
		chanOk <- queryOutput
	}()

	select {
	case <-ctx.Done():
		s.log.Error().Err(ctx.Err()).Msg("getting service failed")
		return modelstorage.ServiceStorageEntry{}, &storageErrors.ContextTimeoutExceededError{Err: ctx.Err()}
	case methodErr := <-chanEr:
		s.log.Error().Err(methodErr).Msg("getting service failed")
		return modelstorage.ServiceStorageEntry{}, methodErr
	case service := <-chanOk:
		return service, nil
	}
}

func (s *Storage) GetServices(ctx context.Context, platform string) ([]modelstorage.ServiceStorageEntry, error) {
	query := "SELECT id, service_id, platform, service_type, name, rate, min_quantity, max_quantity, description, created_at FROM services"
	args := make([]interface{}, 0, 1)
	if platform != "" {
		query += " WHERE platform = $1"
		args = append(args, platform)
	}
	selectStmt, err := s.DB.PrepareContext(ctx, query)
	if err != nil {
		return nil, &storageErrors.StatementPSQLError{Err: err}
	}
	defer selectStmt.Close()
	chanOk := make(chan []modelstorage.ServiceStorageEntry)
	chanEr := make(chan error)
	go func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		rows, err := selectStmt.QueryContext(ctx, args...)
		if err != nil {
			chanEr <- &storageErrors.ExecutionPSQLError{Err: err}
			return
		}
		defer rows.Close()
		var queryOutput []modelstorage.ServiceStorageEntry
		for rows.Next() {
			var queryOutputRow modelstorage.ServiceStorageEntry
			err = rows.Scan(&queryOutputRow.ID, &queryOutputRow.ServiceID, &queryOutputRow.Platform, &queryOutputRow.ServiceType, &queryOutputRow.Name, &queryOutputRow.Rate, &queryOutputRow.MinQuantity, &queryOutputRow.MaxQuantity, &queryOutputRow.Description, &queryOutputRow.CreatedAt)
			if err != nil {
				chanEr <- &storageErrors.ScanningPSQLError{Err: err}
				return
			}
			queryOutput = append(queryOutput, queryOutputRow)
		}
		err = rows.Err()
		if err != nil {
			chanEr <- &storageErrors.ScanningPSQLError{Err: err}
			return
		}
		chanOk <- queryOutput
	}()

	select {
	case <-ctx.Done():
		s.log.Error().Err(ctx.Err()).Msg("getting services failed")
		return nil, &storageErrors.ContextTimeoutExceededError{Err: ctx.Err()}
	case methodErr := <-chanEr:
		s.log.Error().Err(methodErr).Msg("getting services failed")
		return nil, methodErr
	case services := <-chanOk:
		return services, nil
	}
}

// AddNewOrder performs order settlement: the guarded balance decrement, the
// order insert and the ledger entry insert share one DB transaction, so a
// debit never commits without its order. A decrement which matches no row
// means the balance is short of the order cost.
func (s *Storage) AddNewOrder(ctx context.Context, order modelstorage.OrderStorageEntry) error {
	chanOk := make(chan bool)
	chanEr := make(chan error)
	go func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		tx, err := s.DB.BeginTx(ctx, nil)
		if err != nil {
			chanEr <- &storageErrors.TransactionPSQLError{Err: err}
			return
		}
		defer tx.Rollback()
		res, err := tx.ExecContext(ctx, "UPDATE users SET balance = balance - $2 WHERE user_id = $1 AND balance >= $2", order.UserID, order.TotalCost)
		if err != nil {
			chanEr <- &storageErrors.ExecutionPSQLError{Err: err}
			return
		}
		affected, err := res.RowsAffected()
		if err != nil {
			chanEr <- &storageErrors.ExecutionPSQLError{Err: err}
			return
		}
		if affected == 0 {
			chanEr <- &storageErrors.NotEnoughFundsError{ID: order.UserID}
			return
		}
		_, err = tx.ExecContext(ctx, "INSERT INTO orders (order_id, user_id, service_id, link, quantity, total_cost, status, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)", order.OrderID, order.UserID, order.ServiceID, order.Link, order.Quantity, order.TotalCost, order.Status, order.CreatedAt)
		if err != nil {
			chanEr <- &storageErrors.ExecutionPSQLError{Err: err}
			return
		}
		_, err = tx.ExecContext(ctx, "INSERT INTO transactions (transaction_id, user_id, amount, type, status, created_at) VALUES ($1, $2, $3, 'order', 'approved', $4)", order.OrderID, order.UserID, order.TotalCost, order.CreatedAt)
		if err != nil {
			chanEr <- &storageErrors.ExecutionPSQLError{Err: err}
			return
		}
		err = tx.Commit()
		if err != nil {
			chanEr <- &storageErrors.TransactionPSQLError{Err: err}
			return
		}
		chanOk <- true
	}()

	select {
	case <-ctx.Done():
		s.log.Error().Err(ctx.Err()).Msg(fmt.Sprintf("adding new order failed for %s", order.OrderID))
		return &storageErrors.ContextTimeoutExceededError{Err: ctx.Err()}
	case methodErr := <-chanEr:
		s.log.Error().Err(methodErr).Msg(fmt.Sprintf("adding new order failed for %s", order.OrderID))
		return methodErr
	case <-chanOk:
		s.log.Info().Msg(fmt.Sprintf("adding new order done for %s", order.OrderID))
		return nil
	}
}

func (s *Storage) GetOrder(ctx context.Context, orderID, userID string) (modelstorage.OrderStorageEntry, error) {
	selectStmt, err := s.DB.PrepareContext(ctx, "SELECT id, order_id, user_id, service_id, link, quantity, total_cost, status, created_at, completed_at FROM orders WHERE order_id = $1 AND user_id = $2")
	if err != nil {
		return modelstorage.OrderStorageEntry{}, &storageErrors.StatementPSQLError{Err: err}
	}
	defer selectStmt.Close()
	chanOk := make(chan modelstorage.OrderStorageEntry)
	chanEr := make(chan error)
	go func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		var queryOutput modelstorage.OrderStorageEntry
		err := selectStmt.QueryRowContext(ctx, orderID, userID).Scan(&queryOutput.ID, &queryOutput.OrderID, &queryOutput.UserID, &queryOutput.ServiceID, &queryOutput.Link, &queryOutput.Quantity, &queryOutput.TotalCost, &queryOutput.Status, &queryOutput.CreatedAt, &queryOutput.CompletedAt)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				chanEr <- &storageErrors.NotFoundError{Err: err}
				return
			default:
				chanEr <- err
				return
			}
		}
		chanOk <- queryOutput
	}()

	select {
	case <-ctx.Done():
		s.log.Error().Err(ctx.Err()).Msg("getting order failed")
		return modelstorage.OrderStorageEntry{}, &storageErrors.ContextTimeoutExceededError{Err: ctx.Err()}
	case methodErr := <-chanEr:
		s.log.Error().Err(methodErr).Msg("getting order failed")
		return modelstorage.OrderStorageEntry{}, methodErr
	case order := <-chanOk:
		return order, nil
	}
}

func (s *Storage) GetOrders(ctx context.Context, userID string) ([]modelstorage.OrderStorageEntry, error) {
	return s.getOrders(ctx, "SELECT id, order_id, user_id, service_id, link, quantity, total_cost, status, created_at, completed_at FROM orders WHERE user_id = $1 ORDER BY created_at DESC", userID)
}

func (s *Storage) GetAllOrders(ctx context.Context) ([]modelstorage.OrderStorageEntry, error) {
	return s.getOrders(ctx, "SELECT id, order_id, user_id, service_id, link, quantity, total_cost, status, created_at, completed_at FROM orders ORDER BY created_at DESC")
}

func (s *Storage) getOrders(ctx context.Context, query string, args ...interface{}) ([]modelstorage.OrderStorageEntry, error) {
	selectStmt, err := s.DB.PrepareContext(ctx, query)
	if err != nil {
		return nil, &storageErrors.StatementPSQLError{Err: err}
	}
	defer selectStmt.Close()
	chanOk := make(chan []modelstorage.OrderStorageEntry)
	chanEr := make(chan error)
	go func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		rows, err := selectStmt.QueryContext(ctx, args...)
		if err != nil {
			chanEr <- &storageErrors.ExecutionPSQLError{Err: err}
			return
		}
		defer rows.Close()
		var queryOutput []modelstorage.OrderStorageEntry
		for rows.Next() {
			var queryOutputRow modelstorage.OrderStorageEntry
			err = rows.Scan(&queryOutputRow.ID, &queryOutputRow.OrderID, &queryOutputRow.UserID, &queryOutputRow.ServiceID, &queryOutputRow.Link, &queryOutputRow.Quantity, &queryOutputRow.TotalCost, &queryOutputRow.Status, &queryOutputRow.CreatedAt, &queryOutputRow.CompletedAt)
			if err != nil {
				chanEr <- &storageErrors.ScanningPSQLError{Err: err}
				return
			}
			queryOutput = append(queryOutput, queryOutputRow)
		}
		err = rows.Err()
		if err != nil {
			chanEr <- &storageErrors.ScanningPSQLError{Err: err}
			return
		}
		chanOk <- queryOutput
	}()

	select {
	case <-ctx.Done():
		s.log.Error().Err(ctx.Err()).Msg("getting orders failed")
		return nil, &storageErrors.ContextTimeoutExceededError{Err: ctx.Err()}
	case methodErr := <-chanEr:
		s.log.Error().Err(methodErr).Msg("getting orders failed")
		return nil, methodErr
	case orders := <-chanOk:
		return orders, nil
	}
}

func (s *Storage) UpdateOrderStatus(ctx context.Context, orderID, status, completedAt string) error {
	query := "UPDATE orders SET status = $2 WHERE order_id = $1"
	args := []interface{}{orderID, status}
	if completedAt != "" {
		query = "UPDATE orders SET status = $2, completed_at = $3 WHERE order_id = $1"
		args = append(args, completedAt)
	}
	updateStmt, err := s.DB.PrepareContext(ctx, query)
	if err != nil {
		return &storageErrors.StatementPSQLError{Err: err}
	}
	defer updateStmt.Close()
	chanOk := make(chan bool)
	chanEr := make(chan error)
	go func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		res, err := updateStmt.ExecContext(ctx, args...)
		if err != nil {
			chanEr <- &storageErrors.ExecutionPSQLError{Err: err}
			return
		}
		affected, err := res.RowsAffected()
		if err != nil {
			chanEr <- &storageErrors.ExecutionPSQLError{Err: err}
			return
		}
		if affected == 0 {
			chanEr <- &storageErrors.NotFoundError{Err: sql.ErrNoRows}
			return
		}
		chanOk <- true
	}()

	select {
	case <-ctx.Done():
		s.log.Error().Err(ctx.Err()).Msg(fmt.Sprintf("updating order status failed for %s", orderID))
		return &storageErrors.ContextTimeoutExceededError{Err: ctx.Err()}
	case methodErr := <-chanEr:
		s.log.Error().Err(methodErr).Msg(fmt.Sprintf("updating order status failed for %s", orderID))
		return methodErr
	case <-chanOk:
		s.log.Info().Msg(fmt.Sprintf("updating order status done for %s", orderID))
		return nil
	}
}

func (s *Storage) AddNewTransaction(ctx context.Context, transaction modelstorage.TransactionStorageEntry) error {
	newTransactionStmt, err := s.DB.PrepareContext(ctx, "INSERT INTO transactions (transaction_id, user_id, amount, type, status, created_at) VALUES ($1, $2, $3, $4, $5, $6)")
	if err != nil {
		return &storageErrors.StatementPSQLError{Err: err}
	}
	defer newTransactionStmt.Close()
	chanOk := make(chan bool)
	chanEr := make(chan error)
	go func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		_, err := newTransactionStmt.ExecContext(ctx, transaction.TransactionID, transaction.UserID, transaction.Amount, transaction.Type, transaction.Status, transaction.CreatedAt)
		if err != nil {
			if err, ok := err.(*pgconn.PgError); ok && err.Code == pgerrcode.UniqueViolation {
				chanEr <- &storageErrors.AlreadyExistsError{Err: err, ID: transaction.TransactionID}
				return
			}
			chanEr <- &storageErrors.ExecutionPSQLError{Err: err}
			return
		}
		chanOk <- true
	}()

	select {
	case <-ctx.Done():
		s.log.Error().Err(ctx.Err()).Msg(fmt.Sprintf("adding new transaction failed for %s", transaction.TransactionID))
		return &storageErrors.ContextTimeoutExceededError{Err: ctx.Err()}
	case methodErr := <-chanEr:
		s.log.Error().Err(methodErr).Msg(fmt.Sprintf("adding new transaction failed for %s", transaction.TransactionID))
		return methodErr
	case <-chanOk:
		s.log.Info().Msg(fmt.Sprintf("adding new transaction done for %s", transaction.TransactionID))
		return nil
	}
}

func (s *Storage) GetTransactions(ctx context.Context, transactionType string) ([]modelstorage.TransactionStorageEntry, error) {
	selectStmt, err := s.DB.PrepareContext(ctx, "SELECT id, transaction_id, user_id, amount, type, status, created_at FROM transactions WHERE type = $1 ORDER BY created_at DESC")
	if err != nil {
		return nil, &storageErrors.StatementPSQLError{Err: err}
	}
	defer selectStmt.Close()
	chanOk := make(chan []modelstorage.TransactionStorageEntry)
	chanEr := make(chan error)
	go func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		rows, err := selectStmt.QueryContext(ctx, transactionType)
		if err != nil {
			chanEr <- &storageErrors.ExecutionPSQLError{Err: err}
			return
		}
		defer rows.Close()
		var queryOutput []modelstorage.TransactionStorageEntry
		for rows.Next() {
			var queryOutputRow modelstorage.TransactionStorageEntry
			err = rows.Scan(&queryOutputRow.ID, &queryOutputRow.TransactionID, &queryOutputRow.UserID, &queryOutputRow.Amount, &queryOutputRow.Type, &queryOutputRow.Status, &queryOutputRow.CreatedAt)
			if err != nil {
				chanEr <- &storageErrors.ScanningPSQLError{Err: err}
				return
			}
			queryOutput = append(queryOutput, queryOutputRow)
		}
		err = rows.Err()
		if err != nil {
			chanEr <- &storageErrors.ScanningPSQLError{Err: err}
			return
		}
		chanOk <- queryOutput
	}()

	select {
	case <-ctx.Done():
		s.log.Error().Err(ctx.Err()).Msg("getting transactions failed")
		return nil, &storageErrors.ContextTimeoutExceededError{Err: ctx.Err()}
	case methodErr := <-chanEr:
		s.log.Error().Err(methodErr).Msg("getting transactions failed")
		return nil, methodErr
	case transactions := <-chanOk:
		return transactions, nil
	}
}

// ResolveTransaction moves a pending transaction into a terminal status and
// credits the owner balance within the same DB transaction when the terminal
// status is approved. The status guard in the UPDATE makes resolution
// single-shot under concurrent admin requests.
func (s *Storage) ResolveTransaction(ctx context.Context, transactionID, status string) (modelstorage.TransactionStorageEntry, error) {
	chanOk := make(chan modelstorage.TransactionStorageEntry)
	chanEr := make(chan error)
	go func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		tx, err := s.DB.BeginTx(ctx, nil)
		if err != nil {
			chanEr <- &storageErrors.TransactionPSQLError{Err: err}
			return
		}
		defer tx.Rollback()
		var queryOutput modelstorage.TransactionStorageEntry
		err = tx.QueryRowContext(ctx, "UPDATE transactions SET status = $2 WHERE transaction_id = $1 AND status = 'pending' RETURNING id, transaction_id, user_id, amount, type, status, created_at", transactionID, status).Scan(&queryOutput.ID, &queryOutput.TransactionID, &queryOutput.UserID, &queryOutput.Amount, &queryOutput.Type, &queryOutput.Status, &queryOutput.CreatedAt)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				var existingStatus string
				err := tx.QueryRowContext(ctx, "SELECT status FROM transactions WHERE transaction_id = $1", transactionID).Scan(&existingStatus)
				if errors.Is(err, sql.ErrNoRows) {
					chanEr <- &storageErrors.NotFoundError{Err: err}
					return
				}
				if err != nil {
					chanEr <- &storageErrors.ExecutionPSQLError{Err: err}
					return
				}
				chanEr <- &storageErrors.AlreadyProcessedError{ID: transactionID}
				return
			}
			chanEr <- &storageErrors.ExecutionPSQLError{Err: err}
			return
		}
		if status == "approved" {
			_, err = tx.ExecContext(ctx, "UPDATE users SET balance = balance + $2 WHERE user_id = $1", queryOutput.UserID, queryOutput.Amount)
			if err != nil {
				chanEr <- &storageErrors.ExecutionPSQLError{Err: err}
				return
			}
		}
		err = tx.Commit()
		if err != nil {
			chanEr <- &storageErrors.TransactionPSQLError{Err: err}
			return
		}
		chanOk <- queryOutput
	}()

	select {
	case <-ctx.Done():
		s.log.Error().Err(ctx.Err()).Msg(fmt.Sprintf("resolving transaction failed for %s", transactionID))
		return modelstorage.TransactionStorageEntry{}, &storageErrors.ContextTimeoutExceededError{Err: ctx.Err()}
	case methodErr := <-chanEr:
		s.log.Error().Err(methodErr).Msg(fmt.Sprintf("resolving transaction failed for %s", transactionID))
		return modelstorage.TransactionStorageEntry{}, methodErr
	case transaction := <-chanOk:
		s.log.Info().Msg(fmt.Sprintf("resolving transaction done for %s", transactionID))
		return transaction, nil
	}
}

func (s *Storage) CountUsers(ctx context.Context) (int64, error) {
	return s.count(ctx, "SELECT COUNT(*) FROM users")
}

func (s *Storage) CountOrders(ctx context.Context) (int64, error) {
	return s.count(ctx, "SELECT COUNT(*) FROM orders")
}

func (s *Storage) CountPendingDeposits(ctx context.Context) (int64, error) {
	return s.count(ctx, "SELECT COUNT(*) FROM transactions WHERE type = 'deposit' AND status = 'pending'")
}

func (s *Storage) count(ctx context.Context, query string) (int64, error) {
	chanOk := make(chan int64)
	chanEr := make(chan error)
	go func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		var total int64
		err := s.DB.QueryRowContext(ctx, query).Scan(&total)
		if err != nil {
			chanEr <- &storageErrors.ExecutionPSQLError{Err: err}
			return
		}
		chanOk <- total
	}()

	select {
	case <-ctx.Done():
		s.log.Error().Err(ctx.Err()).Msg("counting entries failed")
		return 0, &storageErrors.ContextTimeoutExceededError{Err: ctx.Err()}
	case methodErr := <-chanEr:
		s.log.Error().Err(methodErr).Msg("counting entries failed")
		return 0, methodErr
	case total := <-chanOk:
		return total, nil
	}
}

func (s *Storage) createTables(ctx context.Context) error {
	var queries []string
	query := `CREATE TABLE IF NOT EXISTS users (
		id            BIGSERIAL      NOT NULL,
		user_id       TEXT           NOT NULL UNIQUE,
		email         TEXT           NOT NULL UNIQUE,
		name          TEXT           NOT NULL,
		password_hash TEXT           NOT NULL,
		balance       NUMERIC(12, 4) NOT NULL,
		role          TEXT           NOT NULL,
		registered_at TIMESTAMPTZ    NOT NULL
	);`
	queries = append(queries, query)
	query = `CREATE TABLE IF NOT EXISTS services (
		id           BIGSERIAL      NOT NULL,
		service_id   TEXT           NOT NULL UNIQUE,
		platform     TEXT           NOT NULL,
		service_type TEXT           NOT NULL,
		name         TEXT           NOT NULL,
		rate         NUMERIC(12, 4) NOT NULL,
		min_quantity BIGINT         NOT NULL,
		max_quantity BIGINT         NOT NULL,
		description  TEXT           NOT NULL,
		created_at   TIMESTAMPTZ    NOT NULL
	);`
	queries = append(queries, query)
	query = `CREATE TABLE IF NOT EXISTS orders (
		id           BIGSERIAL      NOT NULL,
		order_id     TEXT           NOT NULL UNIQUE,
		user_id      TEXT           NOT NULL,
		service_id   TEXT           NOT NULL,
		link         TEXT           NOT NULL,
		quantity     BIGINT         NOT NULL,
		total_cost   NUMERIC(12, 4) NOT NULL,
		status       TEXT           NOT NULL,
		created_at   TIMESTAMPTZ    NOT NULL,
		completed_at TIMESTAMPTZ
	);`
	queries = append(queries, query)
	query = `CREATE TABLE IF NOT EXISTS transactions (
		id             BIGSERIAL      NOT NULL,
		transaction_id TEXT           NOT NULL UNIQUE,
		user_id        TEXT           NOT NULL,
		amount         NUMERIC(12, 4) NOT NULL,
		type           TEXT           NOT NULL,
		status         TEXT           NOT NULL,
		created_at     TIMESTAMPTZ    NOT NULL
	);`
	queries = append(queries, query)
	for _, subquery := range queries {
		_, err := s.DB.ExecContext(ctx, subquery)
		if err != nil {
			return err
		}
	}
	return nil
}
