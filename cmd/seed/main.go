package main

import (
	"context"
	"errors"
	"time"

	"github.com/dfn-network/internal/config"
	"github.com/dfn-network/internal/constants"
	"github.com/dfn-network/internal/logger"
	"github.com/dfn-network/internal/models"
	"github.com/dfn-network/internal/provider"
	"github.com/dfn-network/internal/repository"
	"github.com/dfn-network/internal/service"

	"github.com/shopspring/decimal"
)

const seedPassword = "dfn-demo-2024"

func main() {
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	defer logger.Sync()
	stdLog := logger.StdLogger()

	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}, cfg.Database.Debug); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 种子数据直接写库，不经过队列
	cfg.Queue.Enabled = false
	c := provider.NewContainer(cfg)

	maker := ensureUser(c, "maker@dfn.local", "Shenzhen Parts Co.", constants.UserRoleProvider)
	alice := ensureUser(c, "alice@dfn.local", "Alice", constants.UserRoleExplorer)
	bob := ensureUser(c, "bob@dfn.local", "Bob", constants.UserRoleExplorer)

	seedComponents(c, maker.ID)
	seedStores(c)
	seedCampaign(c, alice.ID, bob.ID)

	stdLog.Printf("Seed completed, demo password: %s", seedPassword)
}

func ensureUser(c *provider.Container, email, name, role string) *models.User {
	result, err := c.UserAuthService.Register(service.RegisterInput{
		Email:       email,
		Password:    seedPassword,
		DisplayName: name,
		Role:        role,
	})
	if err == nil {
		logger.Infow("seed_user_created", "email", email, "role", role)
		return result.User
	}
	if !errors.Is(err, service.ErrEmailExists) {
		logger.StdLogger().Fatalf("seed user %s failed: %v", email, err)
	}
	user, err := c.UserRepo.GetByEmail(email)
	if err != nil || user == nil {
		logger.StdLogger().Fatalf("load user %s failed: %v", email, err)
	}
	return user
}

func seedComponents(c *provider.Container, providerID uint) {
	_, total, err := c.CatalogService.ListComponents(repository.ComponentListFilter{ProviderID: providerID, Page: 1, PageSize: 1})
	if err == nil && total > 0 {
		logger.Infow("seed_components_skipped", "existing", total)
		return
	}
	components := []service.CreateComponentInput{
		{Name: "ESP32-WROOM-32E", Category: "mcu", Price: money("3.20"), Description: "Wi-Fi + BLE module"},
		{Name: "STM32F103C8T6", Category: "mcu", Price: money("2.45"), Description: "Cortex-M3, 64KB flash"},
		{Name: "AMS1117-3.3", Category: "power", Price: money("0.12"), Description: "LDO regulator, SOT-223"},
		{Name: "CH340C", Category: "interface", Price: money("0.48"), Description: "USB to UART bridge"},
	}
	for _, input := range components {
		input.ProviderID = providerID
		input.Currency = constants.DefaultCurrency
		input.InStock = true
		if _, err := c.CatalogService.CreateComponent(input); err != nil {
			logger.Warnw("seed_component_failed", "name", input.Name, "error", err)
			continue
		}
		logger.Infow("seed_component_created", "name", input.Name)
	}
}

func seedStores(c *provider.Container) {
	ctx := context.Background()
	existing, err := c.CatalogService.ListActiveAffiliateStores(ctx)
	if err == nil && len(existing) > 0 {
		logger.Infow("seed_stores_skipped", "existing", len(existing))
		return
	}
	stores := []service.CreateAffiliateStoreInput{
		{Name: "LCSC", BaseURL: "https://www.lcsc.com", Country: "CN", CommissionRate: money("4.00")},
		{Name: "DigiKey", BaseURL: "https://www.digikey.com", Country: "US", CommissionRate: money("3.50")},
		{Name: "Mouser", BaseURL: "https://www.mouser.com", Country: "US", CommissionRate: money("3.00")},
	}
	for _, input := range stores {
		if _, err := c.CatalogService.CreateAffiliateStore(ctx, input); err != nil {
			logger.Warnw("seed_store_failed", "name", input.Name, "error", err)
			continue
		}
		logger.Infow("seed_store_created", "name", input.Name)
	}
}

func seedCampaign(c *provider.Container, organizerID, participantID uint) {
	mine, total, err := c.GroupBuyingService.ListMyCampaigns(organizerID, 1, 1)
	if err == nil && total > 0 {
		logger.Infow("seed_campaign_skipped", "existing", len(mine))
		return
	}
	maximum := 500
	campaign, err := c.GroupBuyingService.CreateCampaign(service.CreateCampaignInput{
		OrganizerID:     organizerID,
		ComponentName:   "RP2040 bulk reel",
		Description:     "Shared reel, split shipping from Shenzhen",
		SupplierName:    "LCSC",
		SupplierCountry: "CN",
		UnitPrice:       money("0.70"),
		Currency:        constants.DefaultCurrency,
		ShippingCost:    money("45.00"),
		CustomsDuty:     money("12.00"),
		MinimumQuantity: 200,
		MaximumQuantity: &maximum,
		Deadline:        time.Now().Add(30 * 24 * time.Hour),
	})
	if err != nil {
		logger.Warnw("seed_campaign_failed", "error", err)
		return
	}
	if _, err := c.GroupBuyingService.JoinCampaign(context.Background(), participantID, campaign.ID, 50); err != nil {
		logger.Warnw("seed_campaign_join_failed", "error", err)
	}
	logger.Infow("seed_campaign_created", "campaign_id", campaign.ID)
}

func money(raw string) models.Money {
	return models.NewMoneyFromDecimal(decimal.RequireFromString(raw))
}
