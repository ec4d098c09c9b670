// Command seed provisions a panel database with an admin account, a test
// account and a starter service catalog. Safe to run repeatedly.
package main

import (
	"context"
	"fmt"
	"time"

	"github.com/boostup/smmpanel/internal/config"
	"github.com/boostup/smmpanel/internal/logger"
	"github.com/boostup/smmpanel/internal/models/modelstorage"
	"github.com/boostup/smmpanel/internal/service/secretary/v1/secretary"
	"github.com/boostup/smmpanel/internal/storage/v1/inpsql"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type seedUser struct {
	email    string
	name     string
	password string
	balance  string
	role     string
}

type seedService struct {
	platform    string
	serviceType string
	name        string
	rate        string
	minQuantity int64
	maxQuantity int64
	description string
}

var seedUsers = []seedUser{
	{email: "admin@boostup.com", name: "Admin User", password: "admin123", balance: "1000", role: "admin"},
	{email: "user@test.com", name: "Test User", password: "user123", balance: "100", role: "user"},
}

var seedServices = []seedService{
	{platform: "instagram", serviceType: "followers", name: "Instagram Followers - High Quality", rate: "2.50", minQuantity: 100, maxQuantity: 10000, description: "Real and active Instagram followers with fast delivery"},
	{platform: "instagram", serviceType: "likes", name: "Instagram Likes - Instant", rate: "1.00", minQuantity: 50, maxQuantity: 5000, description: "Instant likes from real accounts"},
	{platform: "instagram", serviceType: "views", name: "Instagram Video Views", rate: "0.50", minQuantity: 100, maxQuantity: 50000, description: "High retention video views"},
	{platform: "tiktok", serviceType: "followers", name: "TikTok Followers - Premium", rate: "3.00", minQuantity: 100, maxQuantity: 10000, description: "Premium TikTok followers with high engagement"},
	{platform: "tiktok", serviceType: "likes", name: "TikTok Likes - Fast", rate: "1.50", minQuantity: 50, maxQuantity: 10000, description: "Fast and reliable TikTok likes"},
	{platform: "tiktok", serviceType: "views", name: "TikTok Views - Organic", rate: "0.80", minQuantity: 1000, maxQuantity: 100000, description: "Organic looking views for your TikTok videos"},
	{platform: "youtube", serviceType: "subscribers", name: "YouTube Subscribers - Real", rate: "5.00", minQuantity: 50, maxQuantity: 5000, description: "Real YouTube subscribers that won't drop"},
	{platform: "youtube", serviceType: "views", name: "YouTube Views - High Retention", rate: "2.00", minQuantity: 100, maxQuantity: 50000, description: "High retention YouTube views from real users"},
	{platform: "youtube", serviceType: "likes", name: "YouTube Likes", rate: "3.00", minQuantity: 50, maxQuantity: 5000, description: "Real likes for your YouTube videos"},
	{platform: "facebook", serviceType: "likes", name: "Facebook Page Likes", rate: "4.00", minQuantity: 100, maxQuantity: 10000, description: "Real Facebook page likes from active users"},
	{platform: "facebook", serviceType: "followers", name: "Facebook Profile Followers", rate: "3.50", minQuantity: 100, maxQuantity: 5000, description: "Increase your profile followers"},
	{platform: "twitter", serviceType: "followers", name: "Twitter Followers - Active", rate: "4.50", minQuantity: 100, maxQuantity: 10000, description: "Active Twitter followers from real accounts"},
	{platform: "twitter", serviceType: "retweets", name: "Twitter Retweets", rate: "2.50", minQuantity: 10, maxQuantity: 1000, description: "Real retweets for your tweets"},
}

func main() {
	log := logger.InitLog()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.NewConfiguration()
	if err != nil {
		log.Fatal().Err(err).Msg("")
	}
	cfg.ParseFlags()

	st, err := inpsql.InitStorage(ctx, cfg.StorageConfig, log)
	if err != nil {
		log.Fatal().Err(err).Msg("storage initialization failed")
	}

	secretaryService, err := secretary.NewSecretaryService(cfg.SecretConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("secretary initialization failed")
	}

	for _, u := range seedUsers {
		_, err := st.GetUserByEmail(ctx, u.email)
		if err == nil {
			log.Info().Msg(fmt.Sprintf("user %s already exists, skipping", u.email))
			continue
		}
		hash, err := secretaryService.HashPassword(u.password)
		if err != nil {
			log.Fatal().Err(err).Msg("password hashing failed")
		}
		entry := modelstorage.UserStorageEntry{
			UserID:       uuid.New().String(),
			Email:        u.email,
			Name:         u.name,
			PasswordHash: hash,
			Balance:      decimal.RequireFromString(u.balance),
			Role:         u.role,
			RegisteredAt: time.Now().Format(time.RFC3339),
		}
		if err := st.AddNewUser(ctx, entry); err != nil {
			log.Fatal().Err(err).Msg(fmt.Sprintf("seeding user %s failed", u.email))
		}
		log.Info().Msg(fmt.Sprintf("user %s created", u.email))
	}

	existing, err := st.GetServices(ctx, "")
	if err != nil {
		log.Fatal().Err(err).Msg("catalog lookup failed")
	}
	if len(existing) > 0 {
		log.Info().Msg(fmt.Sprintf("catalog already has %d services, skipping", len(existing)))
		return
	}
	for _, s := range seedServices {
		entry := modelstorage.ServiceStorageEntry{
			ServiceID:   uuid.New().String(),
			Platform:    s.platform,
			ServiceType: s.serviceType,
			Name:        s.name,
			Rate:        decimal.RequireFromString(s.rate),
			MinQuantity: s.minQuantity,
			MaxQuantity: s.maxQuantity,
			Description: s.description,
			CreatedAt:   time.Now().Format(time.RFC3339),
		}
		if err := st.AddNewService(ctx, entry); err != nil {
			log.Fatal().Err(err).Msg(fmt.Sprintf("seeding service %s failed", s.name))
		}
	}
	log.Info().Msg(fmt.Sprintf("created %d sample services", len(seedServices)))

	log.Info().Msg("database seeding completed")
}
