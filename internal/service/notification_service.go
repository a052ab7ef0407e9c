package service

import (
	"context"
	"strings"
	"time"

	"github.com/dfn-network/internal/logger"
	"github.com/dfn-network/internal/models"
	"github.com/dfn-network/internal/queue"
	"github.com/dfn-network/internal/repository"
)

// NotifyInput 站内通知参数
type NotifyInput struct {
	UserID  uint
	Type    string
	Title   string
	Message string
	Link    string
}

// Notifier 通知投递（失败不影响业务主流程）
type Notifier interface {
	Notify(ctx context.Context, input NotifyInput)
}

// NotificationService 站内通知服务
type NotificationService struct {
	repo        repository.NotificationRepository
	queueClient *queue.Client
	now         func() time.Time
}

// NewNotificationService 创建通知服务
func NewNotificationService(repo repository.NotificationRepository, queueClient *queue.Client) *NotificationService {
	return &NotificationService{
		repo:        repo,
		queueClient: queueClient,
		now:         time.Now,
	}
}

// Notify 投递通知：队列可用时异步写入，否则直接落库
func (s *NotificationService) Notify(ctx context.Context, input NotifyInput) {
	if s == nil || input.UserID == 0 {
		return
	}
	if s.queueClient.Enabled() {
		err := s.queueClient.EnqueueNotification(ctx, queue.NotificationCreatePayload{
			UserID:  input.UserID,
			Type:    input.Type,
			Title:   input.Title,
			Message: input.Message,
			Link:    input.Link,
		})
		if err == nil {
			return
		}
		logger.Warnw("notification_enqueue_failed",
			"user_id", input.UserID,
			"type", input.Type,
			"error", err,
		)
	}
	if _, err := s.Create(input); err != nil {
		logger.Warnw("notification_create_failed",
			"user_id", input.UserID,
			"type", input.Type,
			"error", err,
		)
	}
}

// Create 写入通知
func (s *NotificationService) Create(input NotifyInput) (*models.Notification, error) {
	if input.UserID == 0 || strings.TrimSpace(input.Type) == "" {
		return nil, categorized(ErrValidation, "notification user and type are required")
	}
	notification := &models.Notification{
		UserID:    input.UserID,
		Type:      strings.TrimSpace(input.Type),
		Title:     strings.TrimSpace(input.Title),
		Message:   input.Message,
		Link:      strings.TrimSpace(input.Link),
		CreatedAt: s.now(),
	}
	if err := s.repo.Create(notification); err != nil {
		return nil, err
	}
	return notification, nil
}

// List 用户通知列表
func (s *NotificationService) List(userID uint, unreadOnly bool, page, pageSize int) ([]models.Notification, int64, error) {
	return s.repo.List(repository.NotificationListFilter{
		Page:       page,
		PageSize:   pageSize,
		UserID:     userID,
		UnreadOnly: unreadOnly,
	})
}

// MarkRead 标记通知已读
func (s *NotificationService) MarkRead(userID, id uint) error {
	ok, err := s.repo.MarkRead(userID, id, s.now())
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotificationNotFound
	}
	return nil
}
