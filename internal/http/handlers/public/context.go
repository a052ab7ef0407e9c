package public

import (
	handlershared "github.com/dfn-network/internal/http/handlers/shared"
	"github.com/dfn-network/internal/http/response"

	"github.com/gin-gonic/gin"
)

// 鉴权中间件写入的上下文键
const (
	ContextUserIDKey    = "user_id"
	ContextUserEmailKey = "user_email"
	ContextUserRoleKey  = "user_role"
)

func getContextUintWithKeys(c *gin.Context, key, invalidKey, typeInvalidKey string) (uint, bool) {
	return handlershared.GetContextUintWithKeys(c, key, invalidKey, typeInvalidKey)
}

func getUserID(c *gin.Context) (uint, bool) {
	return getContextUintWithKeys(c, ContextUserIDKey, "error.user_id_invalid", "error.user_id_type_invalid")
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	return handlershared.ParseIDParam(c, name)
}

func respondError(c *gin.Context, code int, key string, err error) {
	handlershared.RespondError(c, code, key, err)
}

func respondErrorWithMsg(c *gin.Context, code int, msg string, err error) {
	handlershared.RespondErrorWithMsg(c, code, msg, err)
}

func respondBadRequest(c *gin.Context, err error) {
	handlershared.RequestLog(c).Debugw("request_bind_failed", "error", err)
	respondError(c, response.CodeBadRequest, "error.bad_request", nil)
}
