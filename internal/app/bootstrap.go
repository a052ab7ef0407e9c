package app

import (
	"errors"
	"fmt"

	"github.com/dfn-network/internal/config"
	"github.com/dfn-network/internal/logger"
	"github.com/dfn-network/internal/provider"
	"github.com/dfn-network/internal/router"
	"github.com/dfn-network/internal/worker"
)

// BuildRunner 按启动模式组装 HTTP 与通知 Worker
func BuildRunner(cfg *config.Config, mode string) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	mode = normalizeMode(mode)
	if !validMode(mode) {
		return nil, fmt.Errorf("unknown mode %q", mode)
	}
	if mode == ModeWorker && !cfg.Queue.Enabled {
		return nil, errors.New("worker mode requires queue.enabled")
	}

	container := provider.NewContainer(cfg)

	var services []Service
	if servesHTTP(mode) {
		engine := router.SetupRouter(cfg, container)
		services = append(services, NewHTTPService(cfg.Server, engine))
	}

	if runsWorker(mode) {
		if cfg.Queue.Enabled {
			workerService, err := worker.NewService(&cfg.Queue, worker.NewConsumer(container))
			if err != nil {
				return nil, err
			}
			services = append(services, workerService)
		} else {
			// 队列关闭时通知直接落库
			logger.Infow("worker_skipped_queue_disabled", "mode", mode)
		}
	}

	if len(services) == 0 {
		return nil, errors.New("no services initialized (check mode and config)")
	}

	runner := NewRunner(services...)
	if container.QueueClient != nil {
		runner.OnStop(container.QueueClient.Close)
	}
	return runner, nil
}

// Run 应用启动入口
func Run(opts Options) error {
	opts = normalizeOptions(opts)
	if opts.Config == nil {
		return errors.New("config is nil")
	}

	runner, err := BuildRunner(opts.Config, opts.Mode)
	if err != nil {
		return err
	}

	opts.Logger.Infow("app_start", "addr", listenAddr(opts.Config.Server), "mode", opts.Mode, "services", runner.Services(), "queue", opts.Config.Queue.Enabled)
	return RunWithOptions(runner, opts)
}
