package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/boostup/smmpanel/internal/api/rest/client"
	"github.com/boostup/smmpanel/internal/api/rest/handlers"
	"github.com/boostup/smmpanel/internal/api/rest/middleware"
	"github.com/boostup/smmpanel/internal/config"
	"github.com/boostup/smmpanel/internal/logger"
	"github.com/boostup/smmpanel/internal/models/modeldto"
	"github.com/boostup/smmpanel/internal/models/modelstorage"
	"github.com/boostup/smmpanel/internal/service/processor/v1/processor"
	"github.com/boostup/smmpanel/internal/service/secretary/v1/secretary"
	"github.com/boostup/smmpanel/internal/storage/v1/inmem"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testPanel struct {
	server     *httptest.Server
	secretary  *secretary.Secretary
	storage    *inmem.Storage
	adminToken string
}

func newTestPanel(t *testing.T) *testPanel {
	log := logger.InitLog()
	st := inmem.InitStorage()
	sec, err := secretary.NewSecretaryService(&config.SecretConfig{SecretKey: "test_secret_key"})
	require.NoError(t, err)
	mainService, err := processor.InitService(st, sec)
	require.NoError(t, err)
	tokenHandler, err := middleware.NewTokenHandler(sec)
	require.NoError(t, err)
	urlHandler, err := handlers.InitHandlers(mainService, &config.ServerConfig{}, log)
	require.NoError(t, err)

	adminID := uuid.New().String()
	hash, err := sec.HashPassword("admin123")
	require.NoError(t, err)
	require.NoError(t, st.AddNewUser(context.Background(), modelstorage.UserStorageEntry{
		UserID:       adminID,
		Email:        "admin@boostup.com",
		Name:         "Admin User",
		PasswordHash: hash,
		Balance:      decimal.NewFromInt(1000),
		Role:         processor.RoleAdmin,
		RegisteredAt: time.Now().Format(time.RFC3339),
	}))
	adminToken, err := sec.GetTokenForUser(adminID)
	require.NoError(t, err)

	ts := httptest.NewServer(NewRouter(urlHandler, tokenHandler))
	t.Cleanup(ts.Close)
	return &testPanel{server: ts, secretary: sec, storage: st, adminToken: adminToken}
}

func (p *testPanel) do(t *testing.T, method, path, token string, body interface{}) (int, []byte) {
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	request, err := http.NewRequest(method, p.server.URL+path, reader)
	require.NoError(t, err)
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}
	response, err := http.DefaultClient.Do(request)
	require.NoError(t, err)
	defer response.Body.Close()
	b, err := ioutil.ReadAll(response.Body)
	require.NoError(t, err)
	return response.StatusCode, b
}

func (p *testPanel) addCatalogService(t *testing.T, rate string) modeldto.Service {
	code, body := p.do(t, http.MethodPost, "/admin/services", p.adminToken, modeldto.NewService{
		Platform:    "instagram",
		ServiceType: "followers",
		Name:        "Instagram Followers",
		Rate:        decimal.RequireFromString(rate),
		MinQuantity: 100,
		MaxQuantity: 10000,
		Description: "test service",
	})
	require.Equal(t, http.StatusOK, code, "body: %s", body)
	var service modeldto.Service
	require.NoError(t, json.Unmarshal(body, &service))
	return service
}

func (p *testPanel) approveDeposit(t *testing.T, transactionID string) {
	code, body := p.do(t, http.MethodPut, "/admin/deposits/"+transactionID, p.adminToken, modeldto.DepositResolution{Action: "approve"})
	require.Equal(t, http.StatusOK, code, "body: %s", body)
}

func TestRegisterLoginAndMe(t *testing.T) {
	panel := newTestPanel(t)
	log := logger.InitLog()
	panelClient := client.InitClient(panel.server.URL, log)

	auth, err := panelClient.Register(context.Background(), modeldto.RegisterRequest{
		Email:    "user@test.com",
		Password: "user123",
		Name:     "Test User",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, auth.Token)
	assert.Equal(t, "user", auth.User.Role)

	auth, err = panelClient.Login(context.Background(), modeldto.LoginRequest{Email: "user@test.com", Password: "user123"})
	require.NoError(t, err)

	me, err := panelClient.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, auth.User.ID, me.ID)
}

func TestRegisterDuplicateEmailRejected(t *testing.T) {
	panel := newTestPanel(t)
	register := modeldto.RegisterRequest{Email: "user@test.com", Password: "user123", Name: "Test User"}
	code, _ := panel.do(t, http.MethodPost, "/auth/register", "", register)
	require.Equal(t, http.StatusOK, code)
	code, body := panel.do(t, http.MethodPost, "/auth/register", "", register)
	assert.Equal(t, http.StatusBadRequest, code)
	var message modeldto.Message
	require.NoError(t, json.Unmarshal(body, &message))
	assert.Equal(t, "email already registered", message.Message)
}

func TestLoginBadCredentialsRejected(t *testing.T) {
	panel := newTestPanel(t)
	code, _ := panel.do(t, http.MethodPost, "/auth/login", "", modeldto.LoginRequest{Email: "admin@boostup.com", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestUnauthorizedRejected(t *testing.T) {
	panel := newTestPanel(t)
	code, _ := panel.do(t, http.MethodGet, "/orders", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	code, _ = panel.do(t, http.MethodGet, "/orders", "not.a.token", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestAdminAccessControl(t *testing.T) {
	panel := newTestPanel(t)
	code, body := panel.do(t, http.MethodPost, "/auth/register", "", modeldto.RegisterRequest{Email: "user@test.com", Password: "user123", Name: "Test User"})
	require.Equal(t, http.StatusOK, code)
	var auth modeldto.AuthResponse
	require.NoError(t, json.Unmarshal(body, &auth))

	code, _ = panel.do(t, http.MethodGet, "/admin/users", auth.Token, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, body = panel.do(t, http.MethodGet, "/admin/users", panel.adminToken, nil)
	require.Equal(t, http.StatusOK, code)
	var users []map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &users))
	require.Len(t, users, 2)
	for _, user := range users {
		assert.NotContains(t, user, "password_hash")
	}
}

func TestCatalogIsPublic(t *testing.T) {
	panel := newTestPanel(t)
	panel.addCatalogService(t, "2.50")

	code, body := panel.do(t, http.MethodGet, "/services", "", nil)
	require.Equal(t, http.StatusOK, code)
	var services []modeldto.Service
	require.NoError(t, json.Unmarshal(body, &services))
	require.Len(t, services, 1)
	assert.Equal(t, "instagram", services[0].Platform)

	code, body = panel.do(t, http.MethodGet, "/services?platform=tiktok", "", nil)
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(body, &services))
	assert.Empty(t, services)
}

func TestDepositAndOrderFlow(t *testing.T) {
	panel := newTestPanel(t)
	service := panel.addCatalogService(t, "2.50")
	log := logger.InitLog()
	panelClient := client.InitClient(panel.server.URL, log)
	_, err := panelClient.Register(context.Background(), modeldto.RegisterRequest{
		Email:    "user@test.com",
		Password: "user123",
		Name:     "Test User",
	})
	require.NoError(t, err)

	// unfunded accounts cannot place orders
	_, err = panelClient.PlaceOrder(context.Background(), modeldto.NewOrder{
		ServiceID: service.ID,
		Link:      "https://instagram.com/someone",
		Quantity:  500,
	})
	assert.Error(t, err)

	transaction, err := panelClient.RequestDeposit(context.Background(), modeldto.NewDeposit{Amount: decimal.NewFromInt(100)})
	require.NoError(t, err)
	assert.Equal(t, "pending", transaction.Status)

	panel.approveDeposit(t, transaction.ID)

	balance, err := panelClient.GetBalance(context.Background())
	require.NoError(t, err)
	assert.True(t, balance.Balance.Equal(decimal.NewFromInt(100)))

	order, err := panelClient.PlaceOrder(context.Background(), modeldto.NewOrder{
		ServiceID: service.ID,
		Link:      "https://instagram.com/someone",
		Quantity:  500,
	})
	require.NoError(t, err)
	assert.True(t, order.TotalCost.Equal(decimal.RequireFromString("1.25")))

	balance, err = panelClient.GetBalance(context.Background())
	require.NoError(t, err)
	assert.True(t, balance.Balance.Equal(decimal.RequireFromString("98.75")))

	// double resolution is rejected
	code, _ := panel.do(t, http.MethodPut, "/admin/deposits/"+transaction.ID, panel.adminToken, modeldto.DepositResolution{Action: "approve"})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestOrderStatusUpdateEndpoint(t *testing.T) {
	panel := newTestPanel(t)
	service := panel.addCatalogService(t, "2.50")
	log := logger.InitLog()
	panelClient := client.InitClient(panel.server.URL, log)
	_, err := panelClient.Register(context.Background(), modeldto.RegisterRequest{
		Email:    "user@test.com",
		Password: "user123",
		Name:     "Test User",
	})
	require.NoError(t, err)
	transaction, err := panelClient.RequestDeposit(context.Background(), modeldto.NewDeposit{Amount: decimal.NewFromInt(100)})
	require.NoError(t, err)
	panel.approveDeposit(t, transaction.ID)
	order, err := panelClient.PlaceOrder(context.Background(), modeldto.NewOrder{
		ServiceID: service.ID,
		Link:      "https://instagram.com/someone",
		Quantity:  500,
	})
	require.NoError(t, err)

	code, _ := panel.do(t, http.MethodPut, "/admin/orders/"+order.ID+"/status", panel.adminToken, modeldto.OrderStatusUpdate{Status: "finished"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = panel.do(t, http.MethodPut, "/admin/orders/"+order.ID+"/status", panel.adminToken, modeldto.OrderStatusUpdate{Status: "completed"})
	require.Equal(t, http.StatusOK, code)

	code, body := panel.do(t, http.MethodGet, "/orders/"+order.ID, "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, body = panel.do(t, http.MethodGet, "/admin/orders", panel.adminToken, nil)
	require.Equal(t, http.StatusOK, code)
	var orders []modeldto.Order
	require.NoError(t, json.Unmarshal(body, &orders))
	require.Len(t, orders, 1)
	assert.Equal(t, "completed", orders[0].Status)
	assert.NotEmpty(t, orders[0].CompletedAt)

	code, _ = panel.do(t, http.MethodPut, "/admin/orders/missing/status", panel.adminToken, modeldto.OrderStatusUpdate{Status: "completed"})
	assert.Equal(t, http.StatusNotFound, code)
}

func TestStatsEndpoint(t *testing.T) {
	panel := newTestPanel(t)
	log := logger.InitLog()
	panelClient := client.InitClient(panel.server.URL, log)
	_, err := panelClient.Register(context.Background(), modeldto.RegisterRequest{
		Email:    "user@test.com",
		Password: "user123",
		Name:     "Test User",
	})
	require.NoError(t, err)
	_, err = panelClient.RequestDeposit(context.Background(), modeldto.NewDeposit{Amount: decimal.NewFromInt(10)})
	require.NoError(t, err)

	code, body := panel.do(t, http.MethodGet, "/stats", panel.adminToken, nil)
	require.Equal(t, http.StatusOK, code)
	var stats modeldto.Stats
	require.NoError(t, json.Unmarshal(body, &stats))
	assert.Equal(t, int64(2), stats.TotalUsers)
	assert.Equal(t, int64(0), stats.TotalOrders)
	assert.Equal(t, int64(1), stats.PendingDeposits)
}
