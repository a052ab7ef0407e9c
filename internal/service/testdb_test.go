package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dfn-network/internal/constants"
	"github.com/dfn-network/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupServiceDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:service_%s_%d?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: models.NewGormLogger(false), TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, models.MigrateAll(db))
	models.DB = db
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email, role string) *models.User {
	t.Helper()
	user := &models.User{
		Email:        email,
		PasswordHash: "hash",
		DisplayName:  email,
		Role:         role,
		Status:       constants.UserStatusActive,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func money(raw string) models.Money {
	return models.NewMoneyFromDecimal(decimal.RequireFromString(raw))
}

type recordingNotifier struct {
	mu     sync.Mutex
	inputs []NotifyInput
}

func (n *recordingNotifier) Notify(_ context.Context, input NotifyInput) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.inputs = append(n.inputs, input)
}

func (n *recordingNotifier) byType(kind string) []NotifyInput {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []NotifyInput
	for _, input := range n.inputs {
		if input.Type == kind {
			out = append(out, input)
		}
	}
	return out
}
