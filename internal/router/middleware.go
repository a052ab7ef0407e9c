package router

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dfn-network/internal/authz"
	publichandlers "github.com/dfn-network/internal/http/handlers/public"
	"github.com/dfn-network/internal/http/response"
	"github.com/dfn-network/internal/i18n"
	"github.com/dfn-network/internal/logger"
	"github.com/dfn-network/internal/metrics"
	"github.com/dfn-network/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	requestIDKey    = "request_id"
	requestIDHeader = "X-Request-ID"
	maxRequestIDLen = 64
	unmatchedRoute  = "unmatched"
)

// RequestIDMiddleware 沿用调用方传入的 X-Request-ID，缺失或过长时生成 uuid
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if requestID == "" || len(requestID) > maxRequestIDLen {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Writer.Header().Set(requestIDHeader, requestID)
		c.Next()
	}
}

func getRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

func routeOf(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return unmatchedRoute
}

// LoggerMiddleware 访问日志：5xx 记 error，4xx 记 warn，其余 info
func LoggerMiddleware(base *zap.Logger) gin.HandlerFunc {
	if base == nil {
		base = logger.Z()
	}
	sugar := base.Sugar()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []interface{}{
			"request_id", getRequestID(c),
			"method", c.Request.Method,
			"route", routeOf(c),
			"path", c.Request.URL.Path,
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if userID := c.GetUint(publichandlers.ContextUserIDKey); userID != 0 {
			fields = append(fields, "user_id", userID, "role", c.GetString(publichandlers.ContextUserRoleKey))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, "errors", c.Errors.String())
		}
		switch {
		case status >= http.StatusInternalServerError:
			sugar.Errorw("request", fields...)
		case status >= http.StatusBadRequest:
			sugar.Warnw("request", fields...)
		default:
			sugar.Infow("request", fields...)
		}
	}
}

// MetricsMiddleware 按路由模板记录耗时
func MetricsMiddleware(collector *metrics.Collector) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		collector.ObserveHTTP(routeOf(c), c.Writer.Status(), time.Since(start))
	}
}

// TokenAuthenticator 校验访问令牌
type TokenAuthenticator interface {
	Authenticate(ctx context.Context, token string) (*service.UserJWTClaims, error)
}

// bearerToken 解析 Authorization 头，scheme 不区分大小写
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// UserJWTAuthMiddleware 校验令牌并把用户 id、邮箱、角色写入上下文
func UserJWTAuthMiddleware(authenticator TokenAuthenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortWith(c, http.StatusUnauthorized, "error.auth_header_missing")
			return
		}
		token, ok := bearerToken(header)
		if !ok {
			abortWith(c, http.StatusUnauthorized, "error.auth_header_invalid")
			return
		}
		if authenticator == nil {
			logger.Errorw("user_authenticator_missing", "request_id", getRequestID(c))
			abortWith(c, http.StatusInternalServerError, "error.internal")
			return
		}

		claims, err := authenticator.Authenticate(c.Request.Context(), token)
		switch {
		case err == nil:
		case errors.Is(err, service.ErrUserDisabled):
			abortWith(c, http.StatusForbidden, "error.user_disabled")
			return
		case errors.Is(err, service.ErrUnauthorized):
			abortWith(c, http.StatusUnauthorized, "error.token_invalid")
			return
		default:
			logger.ForRequest(getRequestID(c)).Errorw("user_authenticate_failed", "error", err)
			abortWith(c, http.StatusInternalServerError, "error.internal")
			return
		}

		c.Set(publichandlers.ContextUserIDKey, claims.UserID)
		c.Set(publichandlers.ContextUserEmailKey, claims.Email)
		c.Set(publichandlers.ContextUserRoleKey, claims.Role)
		c.Next()
	}
}

// RoleAuthzMiddleware 以路由模板为资源执行 casbin 角色鉴权
func RoleAuthzMiddleware(authzService *authz.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := strings.TrimSpace(c.GetString(publichandlers.ContextUserRoleKey))
		if role == "" {
			abortWith(c, http.StatusUnauthorized, "error.unauthorized")
			return
		}
		resource := c.FullPath()
		if resource == "" {
			resource = c.Request.URL.Path
		}
		log := logger.ForRequest(getRequestID(c)).With(
			"role", role,
			"method", c.Request.Method,
			"resource", authz.NormalizeObject(resource),
		)

		allowed, err := authzService.EnforceRole(role, resource, c.Request.Method)
		if err != nil {
			log.Errorw("role_authz_enforce_failed", "error", err)
			abortWith(c, http.StatusInternalServerError, "error.internal")
			return
		}
		if !allowed {
			log.Warnw("role_authz_permission_denied")
			abortWith(c, http.StatusForbidden, "error.forbidden")
			return
		}
		c.Next()
	}
}

func abortWith(c *gin.Context, status int, key string) {
	msg := i18n.T(i18n.ResolveLocale(c), key)
	switch status {
	case http.StatusUnauthorized:
		response.Unauthorized(c, msg)
	case http.StatusForbidden:
		response.Forbidden(c, msg)
	default:
		response.Error(c, status, msg)
	}
	c.Abort()
}
