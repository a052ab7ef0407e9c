package worker

import (
	"context"
	"errors"
	"time"

	"github.com/dfn-network/internal/config"
	"github.com/dfn-network/internal/logger"
	"github.com/dfn-network/internal/queue"

	"github.com/hibiken/asynq"
)

const shutdownTimeout = 10 * time.Second

var (
	errQueueDisabled  = errors.New("queue disabled")
	errNilConsumer    = errors.New("consumer is nil")
	errNotInitialized = errors.New("worker not initialized")
)

// Service 通知投递 worker，消费 asynq 队列
type Service struct {
	server *asynq.Server
	mux    *asynq.ServeMux
}

// NewService 创建 worker 服务，队列未启用时返回错误
func NewService(cfg *config.QueueConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errQueueDisabled
	}
	if consumer == nil {
		return nil, errNilConsumer
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	serverCfg.Logger = logger.SW("component", "asynq")
	serverCfg.ErrorHandler = asynq.ErrorHandlerFunc(reportTaskFailure)
	serverCfg.ShutdownTimeout = shutdownTimeout

	mux := asynq.NewServeMux()
	consumer.Register(mux)
	return &Service{server: asynq.NewServer(opt, serverCfg), mux: mux}, nil
}

// reportTaskFailure 记录任务失败，重试耗尽时升级为 error
func reportTaskFailure(ctx context.Context, task *asynq.Task, err error) {
	retried, _ := asynq.GetRetryCount(ctx)
	maxRetry, _ := asynq.GetMaxRetry(ctx)
	queueName, _ := asynq.GetQueueName(ctx)
	fields := []interface{}{
		"task", task.Type(),
		"queue", queueName,
		"retried", retried,
		"max_retry", maxRetry,
		"error", err,
	}
	if retried >= maxRetry || errors.Is(err, asynq.SkipRetry) {
		logger.Errorw("worker_task_dropped", fields...)
		return
	}
	logger.Warnw("worker_task_failed", fields...)
}

func (s *Service) Name() string {
	return "worker"
}

// Start 阻塞运行直到 Stop
func (s *Service) Start(_ context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errNotInitialized
	}
	logger.Infow("worker_started")
	return s.server.Run(s.mux)
}

func (s *Service) Stop(_ context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	s.server.Shutdown()
	logger.Infow("worker_stopped")
	return nil
}
