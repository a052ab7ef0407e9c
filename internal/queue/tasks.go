package queue

import (
	"encoding/json"

	"github.com/dfn-network/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskNotificationCreate 站内通知写入任务
	TaskNotificationCreate = constants.TaskNotificationCreate
)

// NotificationCreatePayload 站内通知任务载荷
type NotificationCreatePayload struct {
	UserID  uint   `json:"user_id"`
	Type    string `json:"type"`
	Title   string `json:"title"`
	Message string `json:"message"`
	Link    string `json:"link"`
}

// NewNotificationCreateTask 创建站内通知任务
func NewNotificationCreateTask(payload NotificationCreatePayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskNotificationCreate, body), nil
}

// ParseNotificationCreatePayload 解析站内通知任务载荷
func ParseNotificationCreatePayload(task *asynq.Task) (NotificationCreatePayload, error) {
	var payload NotificationCreatePayload
	if task == nil {
		return payload, nil
	}
	err := json.Unmarshal(task.Payload(), &payload)
	return payload, err
}
