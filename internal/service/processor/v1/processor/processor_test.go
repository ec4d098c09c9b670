package processor

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/boostup/smmpanel/internal/config"
	"github.com/boostup/smmpanel/internal/models/modeldto"
	serviceErrors "github.com/boostup/smmpanel/internal/service/processor/v1/errors"
	"github.com/boostup/smmpanel/internal/service/secretary/v1/secretary"
	storageErrors "github.com/boostup/smmpanel/internal/storage/v1/errors"
	"github.com/boostup/smmpanel/internal/storage/v1/inmem"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProcessor(t *testing.T) *Processor {
	st := inmem.InitStorage()
	sec, err := secretary.NewSecretaryService(&config.SecretConfig{SecretKey: "test_secret_key"})
	require.NoError(t, err)
	proc, err := InitService(st, sec)
	require.NoError(t, err)
	return proc
}

func registerUser(t *testing.T, proc *Processor, email string) modeldto.User {
	_, user, err := proc.AddNewUser(context.Background(), modeldto.RegisterRequest{
		Email:    email,
		Password: "user123",
		Name:     "Test User",
	})
	require.NoError(t, err)
	return user
}

func addService(t *testing.T, proc *Processor, rate string, minQuantity, maxQuantity int64) modeldto.Service {
	service, err := proc.AddNewService(context.Background(), modeldto.NewService{
		Platform:    "instagram",
		ServiceType: "followers",
		Name:        "Instagram Followers",
		Rate:        decimal.RequireFromString(rate),
		MinQuantity: minQuantity,
		MaxQuantity: maxQuantity,
		Description: "test service",
	})
	require.NoError(t, err)
	return service
}

func fundUser(t *testing.T, proc *Processor, userID, amount string) {
	transaction, err := proc.AddNewDeposit(context.Background(), userID, modeldto.NewDeposit{Amount: decimal.RequireFromString(amount)})
	require.NoError(t, err)
	_, err = proc.ResolveDeposit(context.Background(), transaction.ID, "approve")
	require.NoError(t, err)
}

func TestRegisterAndLogin(t *testing.T) {
	proc := newTestProcessor(t)
	accessToken, user, err := proc.AddNewUser(context.Background(), modeldto.RegisterRequest{
		Email:    "user@test.com",
		Password: "user123",
		Name:     "Test User",
	})
	require.NoError(t, err)
	assert.Equal(t, RoleUser, user.Role)
	assert.True(t, user.Balance.IsZero())

	fromToken, err := proc.GetUserByToken(context.Background(), accessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, fromToken.ID)

	_, logged, err := proc.LoginUser(context.Background(), modeldto.LoginRequest{Email: "user@test.com", Password: "user123"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	proc := newTestProcessor(t)
	registerUser(t, proc, "user@test.com")
	_, _, err := proc.AddNewUser(context.Background(), modeldto.RegisterRequest{
		Email:    "user@test.com",
		Password: "other123",
		Name:     "Other User",
	})
	var alreadyExistsError *storageErrors.AlreadyExistsError
	assert.ErrorAs(t, err, &alreadyExistsError)
}

func TestLoginInvalidCredentials(t *testing.T) {
	proc := newTestProcessor(t)
	registerUser(t, proc, "user@test.com")
	var invalidCredentialsError *serviceErrors.ServiceInvalidCredentials

	_, _, err := proc.LoginUser(context.Background(), modeldto.LoginRequest{Email: "user@test.com", Password: "wrong"})
	assert.ErrorAs(t, err, &invalidCredentialsError)

	_, _, err = proc.LoginUser(context.Background(), modeldto.LoginRequest{Email: "nobody@test.com", Password: "user123"})
	assert.ErrorAs(t, err, &invalidCredentialsError)
}

func TestRequireRole(t *testing.T) {
	proc := newTestProcessor(t)
	user := registerUser(t, proc, "user@test.com")
	var forbiddenError *serviceErrors.ServiceForbidden
	assert.ErrorAs(t, proc.RequireRole(user, RoleAdmin), &forbiddenError)
	assert.NoError(t, proc.RequireRole(user, RoleUser))
}

func TestAddNewServiceValidation(t *testing.T) {
	proc := newTestProcessor(t)
	var invalidServiceSpecError *serviceErrors.ServiceInvalidServiceSpec

	_, err := proc.AddNewService(context.Background(), modeldto.NewService{Rate: decimal.Zero, MinQuantity: 10, MaxQuantity: 100})
	assert.ErrorAs(t, err, &invalidServiceSpecError)

	_, err = proc.AddNewService(context.Background(), modeldto.NewService{Rate: decimal.NewFromInt(1), MinQuantity: 0, MaxQuantity: 100})
	assert.ErrorAs(t, err, &invalidServiceSpecError)

	_, err = proc.AddNewService(context.Background(), modeldto.NewService{Rate: decimal.NewFromInt(1), MinQuantity: 100, MaxQuantity: 10})
	assert.ErrorAs(t, err, &invalidServiceSpecError)
}

func TestGetServicesPlatformFilter(t *testing.T) {
	proc := newTestProcessor(t)
	addService(t, proc, "2.50", 100, 10000)
	_, err := proc.AddNewService(context.Background(), modeldto.NewService{
		Platform:    "tiktok",
		ServiceType: "likes",
		Name:        "TikTok Likes",
		Rate:        decimal.RequireFromString("1.50"),
		MinQuantity: 50,
		MaxQuantity: 10000,
	})
	require.NoError(t, err)

	all, err := proc.GetServices(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	instagramOnly, err := proc.GetServices(context.Background(), "instagram")
	require.NoError(t, err)
	require.Len(t, instagramOnly, 1)
	assert.Equal(t, "instagram", instagramOnly[0].Platform)
}

func TestPlaceOrderCostAndDebit(t *testing.T) {
	proc := newTestProcessor(t)
	user := registerUser(t, proc, "user@test.com")
	service := addService(t, proc, "2.50", 100, 10000)
	fundUser(t, proc, user.ID, "100")

	order, err := proc.AddNewOrder(context.Background(), user.ID, modeldto.NewOrder{
		ServiceID: service.ID,
		Link:      "https://instagram.com/someone",
		Quantity:  500,
	})
	require.NoError(t, err)
	assert.Equal(t, OrderStatusPending, order.Status)
	assert.True(t, order.TotalCost.Equal(decimal.RequireFromString("1.25")), "total cost was %s", order.TotalCost)

	balance, err := proc.GetBalance(context.Background(), user.ID)
	require.NoError(t, err)
	assert.True(t, balance.Balance.Equal(decimal.RequireFromString("98.75")), "balance was %s", balance.Balance)
}

func TestPlaceOrderQuantityBounds(t *testing.T) {
	proc := newTestProcessor(t)
	user := registerUser(t, proc, "user@test.com")
	service := addService(t, proc, "2.50", 100, 10000)
	fundUser(t, proc, user.ID, "100")
	var quantityOutOfRangeError *serviceErrors.ServiceQuantityOutOfRange

	for _, quantity := range []int64{99, 10001} {
		_, err := proc.AddNewOrder(context.Background(), user.ID, modeldto.NewOrder{
			ServiceID: service.ID,
			Link:      "https://instagram.com/someone",
			Quantity:  quantity,
		})
		assert.ErrorAs(t, err, &quantityOutOfRangeError)
	}

	// rejected orders must leave no trace
	orders, err := proc.GetOrders(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Empty(t, orders)
	balance, err := proc.GetBalance(context.Background(), user.ID)
	require.NoError(t, err)
	assert.True(t, balance.Balance.Equal(decimal.NewFromInt(100)))
}

func TestPlaceOrderIllegalLink(t *testing.T) {
	proc := newTestProcessor(t)
	user := registerUser(t, proc, "user@test.com")
	service := addService(t, proc, "2.50", 100, 10000)
	fundUser(t, proc, user.ID, "100")
	var illegalLinkError *serviceErrors.ServiceIllegalLink

	for _, link := range []string{"", "not-a-url", "ftp://instagram.com/someone", "https://"} {
		_, err := proc.AddNewOrder(context.Background(), user.ID, modeldto.NewOrder{
			ServiceID: service.ID,
			Link:      link,
			Quantity:  500,
		})
		assert.ErrorAs(t, err, &illegalLinkError, "link %q was accepted", link)
	}
}

func TestPlaceOrderUnknownService(t *testing.T) {
	proc := newTestProcessor(t)
	user := registerUser(t, proc, "user@test.com")
	var notFoundError *storageErrors.NotFoundError
	_, err := proc.AddNewOrder(context.Background(), user.ID, modeldto.NewOrder{
		ServiceID: "missing",
		Link:      "https://instagram.com/someone",
		Quantity:  500,
	})
	assert.ErrorAs(t, err, &notFoundError)
}

func TestPlaceOrderInsufficientFunds(t *testing.T) {
	proc := newTestProcessor(t)
	user := registerUser(t, proc, "user@test.com")
	service := addService(t, proc, "2.50", 100, 10000)
	fundUser(t, proc, user.ID, "1")

	var notEnoughFundsError *storageErrors.NotEnoughFundsError
	_, err := proc.AddNewOrder(context.Background(), user.ID, modeldto.NewOrder{
		ServiceID: service.ID,
		Link:      "https://instagram.com/someone",
		Quantity:  500,
	})
	assert.ErrorAs(t, err, &notEnoughFundsError)

	orders, err := proc.GetOrders(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Empty(t, orders)
	balance, err := proc.GetBalance(context.Background(), user.ID)
	require.NoError(t, err)
	assert.True(t, balance.Balance.Equal(decimal.NewFromInt(1)))
}

func TestOrderOwnershipScope(t *testing.T) {
	proc := newTestProcessor(t)
	owner := registerUser(t, proc, "owner@test.com")
	other := registerUser(t, proc, "other@test.com")
	service := addService(t, proc, "2.50", 100, 10000)
	fundUser(t, proc, owner.ID, "100")

	order, err := proc.AddNewOrder(context.Background(), owner.ID, modeldto.NewOrder{
		ServiceID: service.ID,
		Link:      "https://instagram.com/someone",
		Quantity:  500,
	})
	require.NoError(t, err)

	var notFoundError *storageErrors.NotFoundError
	_, err = proc.GetOrder(context.Background(), other.ID, order.ID)
	assert.ErrorAs(t, err, &notFoundError)

	foreign, err := proc.GetOrders(context.Background(), other.ID)
	require.NoError(t, err)
	assert.Empty(t, foreign)

	all, err := proc.GetAllOrders(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestUpdateOrderStatus(t *testing.T) {
	proc := newTestProcessor(t)
	user := registerUser(t, proc, "user@test.com")
	service := addService(t, proc, "2.50", 100, 10000)
	fundUser(t, proc, user.ID, "100")
	order, err := proc.AddNewOrder(context.Background(), user.ID, modeldto.NewOrder{
		ServiceID: service.ID,
		Link:      "https://instagram.com/someone",
		Quantity:  500,
	})
	require.NoError(t, err)

	var invalidStatusError *serviceErrors.ServiceInvalidStatus
	err = proc.UpdateOrderStatus(context.Background(), order.ID, "finished")
	assert.ErrorAs(t, err, &invalidStatusError)

	require.NoError(t, proc.UpdateOrderStatus(context.Background(), order.ID, OrderStatusCompleted))
	updated, err := proc.GetOrder(context.Background(), user.ID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, OrderStatusCompleted, updated.Status)
	assert.NotEmpty(t, updated.CompletedAt)

	// transitions are unrestricted and a previous stamp survives
	require.NoError(t, proc.UpdateOrderStatus(context.Background(), order.ID, OrderStatusPending))
	reverted, err := proc.GetOrder(context.Background(), user.ID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, OrderStatusPending, reverted.Status)
	assert.Equal(t, updated.CompletedAt, reverted.CompletedAt)

	var notFoundError *storageErrors.NotFoundError
	err = proc.UpdateOrderStatus(context.Background(), "missing", OrderStatusCompleted)
	assert.ErrorAs(t, err, &notFoundError)
}

func TestDepositLifecycle(t *testing.T) {
	proc := newTestProcessor(t)
	user := registerUser(t, proc, "user@test.com")

	var invalidAmountError *serviceErrors.ServiceInvalidAmount
	_, err := proc.AddNewDeposit(context.Background(), user.ID, modeldto.NewDeposit{Amount: decimal.Zero})
	assert.ErrorAs(t, err, &invalidAmountError)
	_, err = proc.AddNewDeposit(context.Background(), user.ID, modeldto.NewDeposit{Amount: decimal.NewFromInt(-5)})
	assert.ErrorAs(t, err, &invalidAmountError)

	transaction, err := proc.AddNewDeposit(context.Background(), user.ID, modeldto.NewDeposit{Amount: decimal.NewFromInt(50)})
	require.NoError(t, err)
	assert.Equal(t, TransactionStatusPending, transaction.Status)

	// the balance stays untouched until approval
	balance, err := proc.GetBalance(context.Background(), user.ID)
	require.NoError(t, err)
	assert.True(t, balance.Balance.IsZero())

	var invalidActionError *serviceErrors.ServiceInvalidAction
	_, err = proc.ResolveDeposit(context.Background(), transaction.ID, "accept")
	assert.ErrorAs(t, err, &invalidActionError)

	resolved, err := proc.ResolveDeposit(context.Background(), transaction.ID, "approve")
	require.NoError(t, err)
	assert.Equal(t, TransactionStatusApproved, resolved.Status)
	balance, err = proc.GetBalance(context.Background(), user.ID)
	require.NoError(t, err)
	assert.True(t, balance.Balance.Equal(decimal.NewFromInt(50)))

	// a transaction resolves exactly once
	var alreadyProcessedError *storageErrors.AlreadyProcessedError
	_, err = proc.ResolveDeposit(context.Background(), transaction.ID, "approve")
	assert.ErrorAs(t, err, &alreadyProcessedError)
	balance, err = proc.GetBalance(context.Background(), user.ID)
	require.NoError(t, err)
	assert.True(t, balance.Balance.Equal(decimal.NewFromInt(50)))
}

func TestDepositRejectionLeavesBalance(t *testing.T) {
	proc := newTestProcessor(t)
	user := registerUser(t, proc, "user@test.com")
	transaction, err := proc.AddNewDeposit(context.Background(), user.ID, modeldto.NewDeposit{Amount: decimal.NewFromInt(50)})
	require.NoError(t, err)

	resolved, err := proc.ResolveDeposit(context.Background(), transaction.ID, "reject")
	require.NoError(t, err)
	assert.Equal(t, TransactionStatusRejected, resolved.Status)

	balance, err := proc.GetBalance(context.Background(), user.ID)
	require.NoError(t, err)
	assert.True(t, balance.Balance.IsZero())
}

func TestResolveUnknownDeposit(t *testing.T) {
	proc := newTestProcessor(t)
	var notFoundError *storageErrors.NotFoundError
	_, err := proc.ResolveDeposit(context.Background(), "missing", "approve")
	assert.ErrorAs(t, err, &notFoundError)
}

func TestGetDepositsExcludesOrderEntries(t *testing.T) {
	proc := newTestProcessor(t)
	user := registerUser(t, proc, "user@test.com")
	service := addService(t, proc, "2.50", 100, 10000)
	fundUser(t, proc, user.ID, "100")
	_, err := proc.AddNewOrder(context.Background(), user.ID, modeldto.NewOrder{
		ServiceID: service.ID,
		Link:      "https://instagram.com/someone",
		Quantity:  500,
	})
	require.NoError(t, err)

	deposits, err := proc.GetDeposits(context.Background())
	require.NoError(t, err)
	require.Len(t, deposits, 1)
	assert.Equal(t, TransactionTypeDeposit, deposits[0].Type)
}

func TestGetStats(t *testing.T) {
	proc := newTestProcessor(t)
	user := registerUser(t, proc, "user@test.com")
	registerUser(t, proc, "other@test.com")
	service := addService(t, proc, "2.50", 100, 10000)
	fundUser(t, proc, user.ID, "100")
	_, err := proc.AddNewOrder(context.Background(), user.ID, modeldto.NewOrder{
		ServiceID: service.ID,
		Link:      "https://instagram.com/someone",
		Quantity:  500,
	})
	require.NoError(t, err)
	_, err = proc.AddNewDeposit(context.Background(), user.ID, modeldto.NewDeposit{Amount: decimal.NewFromInt(10)})
	require.NoError(t, err)

	stats, err := proc.GetStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalUsers)
	assert.Equal(t, int64(1), stats.TotalOrders)
	assert.Equal(t, int64(1), stats.PendingDeposits)
}

func TestConcurrentOrdersNeverOverdraw(t *testing.T) {
	proc := newTestProcessor(t)
	user := registerUser(t, proc, "user@test.com")
	service := addService(t, proc, "3.00", 100, 10000)
	fundUser(t, proc, user.ID, "10")

	// each order costs 3, the balance of 10 covers exactly three of them
	var wg sync.WaitGroup
	results := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := proc.AddNewOrder(context.Background(), user.ID, modeldto.NewOrder{
				ServiceID: service.ID,
				Link:      "https://instagram.com/someone",
				Quantity:  1000,
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var placed, rejected int
	var notEnoughFundsError *storageErrors.NotEnoughFundsError
	for err := range results {
		if err == nil {
			placed++
			continue
		}
		require.True(t, errors.As(err, &notEnoughFundsError), "unexpected error: %v", err)
		rejected++
	}
	assert.Equal(t, 3, placed)
	assert.Equal(t, 7, rejected)

	balance, err := proc.GetBalance(context.Background(), user.ID)
	require.NoError(t, err)
	assert.True(t, balance.Balance.Equal(decimal.NewFromInt(1)), "balance was %s", balance.Balance)
}
