package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dfn-network/internal/config"
	"github.com/dfn-network/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type fakeService struct {
	name     string
	startErr error
	block    bool
	stopped  atomic.Bool
}

func (s *fakeService) Name() string { return s.name }

func (s *fakeService) Start(ctx context.Context) error {
	if s.block {
		<-ctx.Done()
		return nil
	}
	return s.startErr
}

func (s *fakeService) Stop(context.Context) error {
	s.stopped.Store(true)
	return nil
}

func TestRunnerStopsAllWhenOneFails(t *testing.T) {
	failing := &fakeService{name: "failing", startErr: errors.New("boom")}
	blocking := &fakeService{name: "blocking", block: true}
	runner := NewRunner(failing, blocking)
	cleaned := false
	runner.OnStop(func() error {
		cleaned = true
		return nil
	})

	err := runner.Run(context.Background(), time.Second, nil)
	if err == nil || err.Error() != "boom" {
		t.Fatalf("want boom got %v", err)
	}
	if !failing.stopped.Load() || !blocking.stopped.Load() {
		t.Fatalf("all services should be stopped")
	}
	if !cleaned {
		t.Fatalf("cleanup hook should run")
	}
}

func TestRunnerCancelIsCleanExit(t *testing.T) {
	blocking := &fakeService{name: "blocking", block: true}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := NewRunner(blocking).Run(ctx, time.Second, nil); err != nil {
		t.Fatalf("cancel should exit cleanly, got %v", err)
	}
}

func TestRunnerWithoutServices(t *testing.T) {
	if err := NewRunner().Run(context.Background(), time.Second, nil); err == nil {
		t.Fatalf("empty runner should fail")
	}
}

func loadTestConfig(t *testing.T) *config.Config {
	t.Helper()
	dsn := fmt.Sprintf("file:app_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: models.NewGormLogger(false), TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := models.MigrateAll(db); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	models.DB = db

	cfg, err := config.LoadFile(filepath.Join(t.TempDir(), "absent.yml"))
	if err != nil {
		t.Fatalf("load config failed: %v", err)
	}
	cfg.Queue.Enabled = false
	return cfg
}

func TestBuildRunnerModes(t *testing.T) {
	cfg := loadTestConfig(t)

	runner, err := BuildRunner(cfg, ModeAll)
	if err != nil {
		t.Fatalf("build all failed: %v", err)
	}
	if names := runner.Services(); len(names) != 1 || names[0] != "http" {
		t.Fatalf("queue disabled should only run http, got %v", names)
	}

	if _, err := BuildRunner(cfg, ModeWorker); err == nil {
		t.Fatalf("worker mode without queue should fail")
	}
	if _, err := BuildRunner(cfg, "cron"); err == nil {
		t.Fatalf("unknown mode should fail")
	}
	if _, err := BuildRunner(nil, ModeAPI); err == nil {
		t.Fatalf("nil config should fail")
	}
}

func TestNormalizeOptions(t *testing.T) {
	opts := normalizeOptions(Options{Mode: " API "})
	if opts.Mode != ModeAPI {
		t.Fatalf("mode should be normalized, got %q", opts.Mode)
	}
	if opts.ShutdownTimeout != defaultShutdownTimeout {
		t.Fatalf("default shutdown timeout not applied")
	}
	if opts.Logger == nil {
		t.Fatalf("logger should default")
	}
}

func TestNormalizeOptionsUsesConfiguredShutdown(t *testing.T) {
	cfg := loadTestConfig(t)
	cfg.Server.ShutdownTimeoutSeconds = 3
	opts := normalizeOptions(Options{Config: cfg})
	if opts.ShutdownTimeout != 3*time.Second {
		t.Fatalf("want 3s shutdown timeout, got %s", opts.ShutdownTimeout)
	}
	if opts.Mode != ModeAll {
		t.Fatalf("empty mode should default to all, got %q", opts.Mode)
	}
}

func TestHTTPServiceLifecycle(t *testing.T) {
	svc := NewHTTPService(config.ServerConfig{Host: "127.0.0.1", Port: "0"}, http.NotFoundHandler())
	if svc.Addr() != "127.0.0.1:0" || svc.Name() != "http" {
		t.Fatalf("unexpected service %s %s", svc.Name(), svc.Addr())
	}
	done := make(chan error, 1)
	go func() { done <- svc.Start(context.Background()) }()
	time.Sleep(50 * time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := svc.Stop(ctx); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("start should return nil after stop, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("start did not return after stop")
	}
}
