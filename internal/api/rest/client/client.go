// Package client implements a typed client for querying the panel API.
package client

import (
	"context"
	"fmt"

	"github.com/boostup/smmpanel/internal/models/modeldto"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

// Client defines attributes of a struct available to its methods.
type Client struct {
	client      *resty.Client
	baseAddress string
	accessToken string
	log         *zerolog.Logger
}

// InitClient initializes a resty client against a panel instance.
func InitClient(baseAddress string, log *zerolog.Logger) *Client {
	panelClient := resty.New()
	log.Info().Msg("panel client initialized")
	return &Client{client: panelClient, baseAddress: baseAddress, log: log}
}

// SetToken stores a bearer token for subsequent authorized calls.
func (c *Client) SetToken(accessToken string) {
	c.accessToken = accessToken
}

// Register creates an account and stores the issued token.
func (c *Client) Register(ctx context.Context, register modeldto.RegisterRequest) (*modeldto.AuthResponse, error) {
	var auth modeldto.AuthResponse
	response, err := c.client.R().SetContext(ctx).SetBody(register).SetResult(&auth).Post(c.baseAddress + "/auth/register")
	if err != nil {
		c.log.Err(err).Msg(fmt.Sprintf("register request failed for %s", register.Email))
		return nil, err
	}
	if response.IsError() {
		return nil, fmt.Errorf("register request rejected with code %d", response.StatusCode())
	}
	c.accessToken = auth.Token
	return &auth, nil
}

// Login authenticates an account and stores the issued token.
func (c *Client) Login(ctx context.Context, login modeldto.LoginRequest) (*modeldto.AuthResponse, error) {
	var auth modeldto.AuthResponse
	response, err := c.client.R().SetContext(ctx).SetBody(login).SetResult(&auth).Post(c.baseAddress + "/auth/login")
	if err != nil {
		c.log.Err(err).Msg(fmt.Sprintf("login request failed for %s", login.Email))
		return nil, err
	}
	if response.IsError() {
		return nil, fmt.Errorf("login request rejected with code %d", response.StatusCode())
	}
	c.accessToken = auth.Token
	return &auth, nil
}

// Me retrieves the identity bound to the stored token.
func (c *Client) Me(ctx context.Context) (*modeldto.User, error) {
	var user modeldto.User
	response, err := c.client.R().SetContext(ctx).SetAuthToken(c.accessToken).SetResult(&user).Get(c.baseAddress + "/auth/me")
	if err != nil {
		c.log.Err(err).Msg("identity request failed")
		return nil, err
	}
	if response.IsError() {
		return nil, fmt.Errorf("identity request rejected with code %d", response.StatusCode())
	}
	return &user, nil
}

// GetServices retrieves the service catalog, optionally narrowed to one platform.
func (c *Client) GetServices(ctx context.Context, platform string) ([]modeldto.Service, error) {
	var services []modeldto.Service
	request := c.client.R().SetContext(ctx).SetResult(&services)
	if platform != "" {
		request.SetQueryParam("platform", platform)
	}
	response, err := request.Get(c.baseAddress + "/services")
	if err != nil {
		c.log.Err(err).Msg("catalog request failed")
		return nil, err
	}
	if response.IsError() {
		return nil, fmt.Errorf("catalog request rejected with code %d", response.StatusCode())
	}
	return services, nil
}

// PlaceOrder submits a new order with the stored token.
func (c *Client) PlaceOrder(ctx context.Context, newOrder modeldto.NewOrder) (*modeldto.Order, error) {
	var order modeldto.Order
	response, err := c.client.R().SetContext(ctx).SetAuthToken(c.accessToken).SetBody(newOrder).SetResult(&order).Post(c.baseAddress + "/orders")
	if err != nil {
		c.log.Err(err).Msg(fmt.Sprintf("order request failed for service %s", newOrder.ServiceID))
		return nil, err
	}
	if response.IsError() {
		return nil, fmt.Errorf("order request rejected with code %d", response.StatusCode())
	}
	return &order, nil
}

// GetBalance retrieves the current balance of the stored identity.
func (c *Client) GetBalance(ctx context.Context) (*modeldto.Balance, error) {
	var balance modeldto.Balance
	response, err := c.client.R().SetContext(ctx).SetAuthToken(c.accessToken).SetResult(&balance).Get(c.baseAddress + "/user/balance")
	if err != nil {
		c.log.Err(err).Msg("balance request failed")
		return nil, err
	}
	if response.IsError() {
		return nil, fmt.Errorf("balance request rejected with code %d", response.StatusCode())
	}
	return &balance, nil
}

// RequestDeposit submits a deposit request with the stored token.
func (c *Client) RequestDeposit(ctx context.Context, deposit modeldto.NewDeposit) (*modeldto.Transaction, error) {
	var transaction modeldto.Transaction
	response, err := c.client.R().SetContext(ctx).SetAuthToken(c.accessToken).SetBody(deposit).SetResult(&transaction).Post(c.baseAddress + "/user/deposit")
	if err != nil {
		c.log.Err(err).Msg("deposit request failed")
		return nil, err
	}
	if response.IsError() {
		return nil, fmt.Errorf("deposit request rejected with code %d", response.StatusCode())
	}
	return &transaction, nil
}
