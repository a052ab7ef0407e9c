package public

import (
	"strconv"

	handlershared "github.com/dfn-network/internal/http/handlers/shared"
	"github.com/dfn-network/internal/http/response"

	"github.com/gin-gonic/gin"
)

// ListNotifications 我的通知
func (h *Handler) ListNotifications(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	page, pageSize := handlershared.ReadPagination(c)
	unreadOnly, _ := strconv.ParseBool(c.Query("unread"))
	items, total, err := h.NotificationService.List(uid, unreadOnly, page, pageSize)
	if err != nil {
		respondWithMappedError(c, err, notificationErrorRules, "error.notification_fetch_failed")
		return
	}
	response.SuccessWithPage(c, items, response.BuildPagination(page, pageSize, total))
}

// MarkNotificationRead 标记已读
func (h *Handler) MarkNotificationRead(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.NotificationService.MarkRead(uid, id); err != nil {
		respondWithMappedError(c, err, notificationErrorRules, "error.notification_fetch_failed")
		return
	}
	response.Success(c, gin.H{"read": true})
}
