// Command smoke exercises a running panel instance end to end over HTTP:
// register, authenticate, browse the catalog, request a deposit and place
// an order. Run it against a freshly seeded instance.
package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/boostup/smmpanel/internal/api/rest/client"
	"github.com/boostup/smmpanel/internal/logger"
	"github.com/boostup/smmpanel/internal/models/modeldto"
	"github.com/shopspring/decimal"
)

func main() {
	baseAddress := flag.String("a", "http://localhost:8080", "Panel base address")
	flag.Parse()

	log := logger.InitLog()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	panelClient := client.InitClient(*baseAddress, log)

	email := fmt.Sprintf("smoke-%d@test.com", time.Now().UnixNano())
	auth, err := panelClient.Register(ctx, modeldto.RegisterRequest{
		Email:    email,
		Name:     "Smoke Tester",
		Password: "smoke123",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("register step failed")
	}
	log.Info().Msg(fmt.Sprintf("registered %s with balance %s", auth.User.Email, auth.User.Balance))

	auth, err = panelClient.Login(ctx, modeldto.LoginRequest{Email: email, Password: "smoke123"})
	if err != nil {
		log.Fatal().Err(err).Msg("login step failed")
	}

	me, err := panelClient.Me(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("identity step failed")
	}
	log.Info().Msg(fmt.Sprintf("authenticated as %s (%s)", me.Name, me.Role))

	services, err := panelClient.GetServices(ctx, "instagram")
	if err != nil {
		log.Fatal().Err(err).Msg("catalog step failed")
	}
	if len(services) == 0 {
		log.Fatal().Msg("catalog is empty, seed the database first")
	}
	log.Info().Msg(fmt.Sprintf("catalog returned %d instagram services", len(services)))

	transaction, err := panelClient.RequestDeposit(ctx, modeldto.NewDeposit{Amount: decimal.RequireFromString("50")})
	if err != nil {
		log.Fatal().Err(err).Msg("deposit step failed")
	}
	log.Info().Msg(fmt.Sprintf("deposit %s requested, status %s", transaction.ID, transaction.Status))

	// a fresh account holds no funds, the order must be rejected
	service := services[0]
	_, err = panelClient.PlaceOrder(ctx, modeldto.NewOrder{
		ServiceID: service.ID,
		Link:      "https://instagram.com/smoke",
		Quantity:  service.MinQuantity,
	})
	if err == nil {
		log.Fatal().Msg("order on an unfunded account was not rejected")
	}
	log.Info().Msg(fmt.Sprintf("unfunded order rejected as expected: %s", err.Error()))

	balance, err := panelClient.GetBalance(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("balance step failed")
	}
	log.Info().Msg(fmt.Sprintf("balance is %s", balance.Balance))

	log.Info().Msg("smoke run completed")
}
