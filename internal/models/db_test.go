package models

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	applog "github.com/dfn-network/internal/logger"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
)

func TestSQLiteDSNAddsBusyTimeout(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "dfn.db", want: "dfn.db?_pragma=busy_timeout(5000)"},
		{in: "file:dfn?mode=memory", want: "file:dfn?mode=memory&_pragma=busy_timeout(5000)"},
		{in: "dfn.db?_pragma=busy_timeout(100)", want: "dfn.db?_pragma=busy_timeout(100)"},
	}
	for _, tc := range cases {
		if got := sqliteDSN(tc.in); got != tc.want {
			t.Fatalf("sqliteDSN(%q) want %q got %q", tc.in, tc.want, got)
		}
	}
}

func TestOpenDialectorRejectsUnknownDriver(t *testing.T) {
	if _, err := openDialector("mysql", "root@/dfn"); err == nil || !strings.Contains(err.Error(), "mysql") {
		t.Fatalf("expected unsupported driver error, got %v", err)
	}
	for _, driver := range []string{"", "SQLite", " postgres ", "postgresql"} {
		if _, err := openDialector(driver, "x"); err != nil {
			t.Fatalf("driver %q should be supported: %v", driver, err)
		}
	}
}

func TestInitDBAndMigrate(t *testing.T) {
	prev := DB
	t.Cleanup(func() { DB = prev })

	dsn := fmt.Sprintf("file:models_%d?mode=memory&cache=shared", time.Now().UnixNano())
	if err := InitDB("sqlite", dsn, DBPoolConfig{MaxOpenConns: 4, MaxIdleConns: 2}, false); err != nil {
		t.Fatalf("init db failed: %v", err)
	}
	if err := AutoMigrate(); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	for _, table := range []string{"users", "carts", "cart_items", "group_buying_campaigns", "group_buying_participants", "notifications"} {
		if !DB.Migrator().HasTable(table) {
			t.Fatalf("table %s missing after migrate", table)
		}
	}
	sqlDB, err := DB.DB()
	if err != nil {
		t.Fatalf("sql db failed: %v", err)
	}
	if got := sqlDB.Stats().MaxOpenConnections; got != 4 {
		t.Fatalf("max open conns want 4 got %d", got)
	}
}

func TestMigrateAllRequiresConnection(t *testing.T) {
	if err := MigrateAll(nil); err == nil {
		t.Fatalf("expected error for nil db")
	}
}

func TestGormLoggerSkipsRecordNotFound(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	prev := applog.L
	applog.L = zap.New(core)
	t.Cleanup(func() { applog.L = prev })

	gl := NewGormLogger(false)
	query := func() (string, int64) { return "SELECT * FROM carts WHERE user_id = 1", 0 }
	gl.Trace(context.Background(), time.Now(), query, gorm.ErrRecordNotFound)
	if logs.Len() != 0 {
		t.Fatalf("record not found should not be logged, got %d entries", logs.Len())
	}
	gl.Trace(context.Background(), time.Now(), query, errors.New("disk I/O error"))
	if logs.Len() != 1 {
		t.Fatalf("query errors should be logged once, got %d entries", logs.Len())
	}
}
