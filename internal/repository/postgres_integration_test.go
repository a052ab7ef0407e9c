//go:build integration
// +build integration

package repository

import (
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dfn-network/internal/constants"
	"github.com/dfn-network/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupPostgresIntegrationDB 初始化 PostgreSQL 集成测试数据库。
func setupPostgresIntegrationDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := strings.TrimSpace(os.Getenv("TEST_POSTGRES_DSN"))
	if dsn == "" {
		t.Skip("skip postgres integration test: TEST_POSTGRES_DSN is empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: models.NewGormLogger(false), TranslateError: true})
	if err != nil {
		t.Fatalf("open postgres failed: %v", err)
	}

	cleanupModels := []interface{}{
		&models.Notification{},
		&models.GroupBuyingParticipant{},
		&models.GroupBuyingCampaign{},
		&models.CartItem{},
		&models.Cart{},
		&models.AffiliateStore{},
		&models.Component{},
		&models.User{},
	}
	_ = db.Migrator().DropTable(cleanupModels...)

	if err := models.MigrateAll(db); err != nil {
		t.Fatalf("migrate postgres models failed: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Migrator().DropTable(cleanupModels...)
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}

func TestPostgresComponentSearchIsCaseInsensitive(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	provider := createRepoUser(t, db, "pg-provider@example.com")

	repo := NewComponentRepository(db)
	for _, name := range []string{"ATmega328P", "attiny85", "STM32F103"} {
		component := &models.Component{
			ProviderID: provider.ID,
			Name:       name,
			Price:      repoMoney("1.00"),
			Currency:   "USD",
			InStock:    true,
			IsActive:   true,
		}
		if err := repo.Create(component); err != nil {
			t.Fatalf("create component failed: %v", err)
		}
	}

	_, total, err := repo.List(ComponentListFilter{Page: 1, PageSize: 10, Search: "AT"})
	if err != nil {
		t.Fatalf("list components failed: %v", err)
	}
	if total != 2 {
		t.Fatalf("ilike search want 2 got %d", total)
	}
}

func TestPostgresCampaignJoinHoldsCapacityUnderContention(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	organizer := createRepoUser(t, db, "pg-organizer@example.com")
	repo := NewCampaignRepository(db)
	maximum := 50
	campaign := createRepoCampaign(t, repo, organizer.ID, 50, &maximum)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		applied int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := repo.ApplyJoin(campaign.ID, 10, repoMoney("15.00"), time.Now())
			if err != nil {
				t.Errorf("apply join failed: %v", err)
				return
			}
			if ok {
				mu.Lock()
				applied++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if applied != 5 {
		t.Fatalf("applied joins want 5 got %d", applied)
	}
	reloaded, err := repo.GetByID(campaign.ID)
	if err != nil || reloaded == nil {
		t.Fatalf("reload campaign failed: %v", err)
	}
	if reloaded.CurrentQuantity != 50 || reloaded.TotalFunding.String() != "75.00" {
		t.Fatalf("unexpected totals: quantity=%d funding=%s", reloaded.CurrentQuantity, reloaded.TotalFunding.String())
	}

	promoted, err := repo.PromoteToFunding(campaign.ID, time.Now())
	if err != nil || !promoted {
		t.Fatalf("promote failed: promoted=%v err=%v", promoted, err)
	}
	if err := repo.Transaction(func(tx *gorm.DB) error {
		locked, err := repo.WithTx(tx).GetByIDForUpdate(campaign.ID)
		if err != nil {
			return err
		}
		if locked.Status != constants.CampaignStatusFunding {
			t.Errorf("locked campaign status want funding got %s", locked.Status)
		}
		return nil
	}); err != nil {
		t.Fatalf("locked read failed: %v", err)
	}
}

func TestPostgresCartMergeUpsert(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	user := createRepoUser(t, db, "pg-buyer@example.com")
	repo := NewCartRepository(db)

	cart, err := repo.GetOrCreateByUserID(user.ID)
	if err != nil {
		t.Fatalf("create cart failed: %v", err)
	}
	for _, quantity := range []int{2, 5} {
		now := time.Now()
		if err := repo.MergeItem(&models.CartItem{
			CartID:     cart.ID,
			ProductKey: "affiliate:9:LM358",
			Quantity:   quantity,
			Price:      repoMoney("0.20"),
			CreatedAt:  now,
			UpdatedAt:  now,
		}); err != nil {
			t.Fatalf("merge item failed: %v", err)
		}
	}
	item, err := repo.GetItemByProductKey(cart.ID, "affiliate:9:LM358")
	if err != nil || item == nil {
		t.Fatalf("get item failed: %v", err)
	}
	if item.Quantity != 7 {
		t.Fatalf("merged quantity want 7 got %d", item.Quantity)
	}
}
