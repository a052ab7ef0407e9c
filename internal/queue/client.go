package queue

import (
	"context"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/dfn-network/internal/config"
	"github.com/dfn-network/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	notificationMaxRetry = 3
	notificationTimeout  = 30 * time.Second
	defaultConcurrency   = 10
)

// 成团与付款通知走高优先级队列，其余走默认队列
var criticalNotificationTypes = map[string]bool{
	constants.NotificationTypeCampaignFunding: true,
	constants.NotificationTypeParticipantPaid: true,
}

// Client 队列客户端封装，nil 或未启用时所有投递为空操作
type Client struct {
	client *asynq.Client
}

// NewClient 创建队列客户端
func NewClient(cfg *config.QueueConfig) (*Client, error) {
	if cfg == nil || !cfg.Enabled {
		return &Client{}, nil
	}
	return &Client{client: asynq.NewClient(RedisOpt(cfg))}, nil
}

// Enabled 判断是否启用
func (c *Client) Enabled() bool {
	return c != nil && c.client != nil
}

// Close 关闭客户端
func (c *Client) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}

// QueueForNotification 按通知类型选择队列
func QueueForNotification(notificationType string) string {
	if criticalNotificationTypes[strings.TrimSpace(notificationType)] {
		return constants.QueueCritical
	}
	return constants.QueueDefault
}

// EnqueueNotification 推送站内通知任务
func (c *Client) EnqueueNotification(ctx context.Context, payload NotificationCreatePayload, opts ...asynq.Option) error {
	if !c.Enabled() {
		return nil
	}
	task, err := NewNotificationCreateTask(payload)
	if err != nil {
		return err
	}
	options := append([]asynq.Option{
		asynq.Queue(QueueForNotification(payload.Type)),
		asynq.MaxRetry(notificationMaxRetry),
		asynq.Timeout(notificationTimeout),
	}, opts...)
	_, err = c.client.EnqueueContext(ctx, task, options...)
	return err
}

// BuildServerConfig 生成队列服务配置，未配置队列权重时 critical:default 为 6:3
func BuildServerConfig(cfg *config.QueueConfig) (asynq.RedisClientOpt, asynq.Config) {
	concurrency := defaultConcurrency
	queues := map[string]int{constants.QueueCritical: 6, constants.QueueDefault: 3}
	if cfg != nil {
		if cfg.Concurrency > 0 {
			concurrency = cfg.Concurrency
		}
		if len(cfg.Queues) > 0 {
			queues = cfg.Queues
		}
	}
	return RedisOpt(cfg), asynq.Config{
		Concurrency: concurrency,
		Queues:      queues,
	}
}

// RedisOpt 队列使用的 Redis 连接参数
func RedisOpt(cfg *config.QueueConfig) asynq.RedisClientOpt {
	opt := asynq.RedisClientOpt{Addr: "127.0.0.1:6379"}
	if cfg == nil {
		return opt
	}
	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		host = "127.0.0.1"
	}
	port := cfg.Port
	if port <= 0 {
		port = 6379
	}
	opt.Addr = net.JoinHostPort(host, strconv.Itoa(port))
	opt.Password = cfg.Password
	opt.DB = cfg.DB
	return opt
}
