package worker

import (
	"context"
	"errors"

	"github.com/dfn-network/internal/logger"
	"github.com/dfn-network/internal/provider"
	"github.com/dfn-network/internal/queue"
	"github.com/dfn-network/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskNotificationCreate, c.handleNotificationCreate)
}

func (c *Consumer) handleNotificationCreate(_ context.Context, task *asynq.Task) error {
	if c == nil || c.Container == nil || task == nil {
		logger.Debugw("worker_notification_create_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	payload, err := queue.ParseNotificationCreatePayload(task)
	if err != nil {
		logger.Warnw("worker_notification_create_unmarshal_failed", "error", err)
		return errors.Join(err, asynq.SkipRetry)
	}
	if payload.UserID == 0 {
		logger.Debugw("worker_notification_create_skip_invalid_payload", "type", payload.Type)
		return nil
	}
	if c.NotificationService == nil {
		logger.Warnw("worker_notification_create_skip_service_nil", "user_id", payload.UserID)
		return nil
	}
	_, err = c.NotificationService.Create(service.NotifyInput{
		UserID:  payload.UserID,
		Type:    payload.Type,
		Title:   payload.Title,
		Message: payload.Message,
		Link:    payload.Link,
	})
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			logger.Debugw("worker_notification_create_skip_invalid", "user_id", payload.UserID, "error", err)
			return nil
		}
		logger.Warnw("worker_notification_create_failed", "user_id", payload.UserID, "type", payload.Type, "error", err)
		return err
	}
	return nil
}
