package shared

import (
	"github.com/dfn-network/internal/http/response"
	"github.com/dfn-network/internal/i18n"
	"github.com/dfn-network/internal/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLog 提供携带 request_id 的日志实例。
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if c == nil {
		return logger.S()
	}
	return logger.ForRequest(c.GetString("request_id"))
}

// RespondError 按消息 key 返回本地化错误响应。
func RespondError(c *gin.Context, code int, key string, err error) {
	respond(c, response.NewAppError(code, i18n.T(i18n.ResolveLocale(c), key), err))
}

// RespondErrorWithMsg 返回已格式化消息的错误响应。
func RespondErrorWithMsg(c *gin.Context, code int, msg string, err error) {
	respond(c, response.NewAppError(code, msg, err))
}

// 5xx 记 error，业务拒绝（容量不足、状态不允许等）只记 warn
func respond(c *gin.Context, appErr *response.AppError) {
	if appErr.Err != nil {
		fields := []interface{}{
			"status", appErr.Status,
			"path", c.FullPath(),
			"error", appErr.Err,
		}
		if appErr.ServerSide() {
			RequestLog(c).Errorw("handler_error", fields...)
		} else {
			RequestLog(c).Warnw("handler_rejected", fields...)
		}
	}
	response.Error(c, appErr.Status, appErr.Message)
}
