package router

import (
	"strings"

	"github.com/dfn-network/internal/cache"
	"github.com/dfn-network/internal/config"
	publichandlers "github.com/dfn-network/internal/http/handlers/public"
	"github.com/dfn-network/internal/logger"
	"github.com/dfn-network/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	h := publichandlers.New(c)
	redisClient := cache.Client()
	loginRule := RateLimitRule{
		Prefix:        cache.Key("rate", "login"),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.LoginRateLimit.BlockSeconds,
		MessageKey:    "error.login_too_many",
	}
	writeRule := RateLimitRule{
		Prefix:        cache.Key("rate", "write"),
		WindowSeconds: cfg.Security.APIRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.APIRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.APIRateLimit.BlockSeconds,
	}
	writeLimit := RateLimitMiddleware(redisClient, writeRule, KeyByUser)

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(MetricsMiddleware(c.Metrics))
	r.Use(CORSMiddleware(cfg.CORS))

	api := r.Group("/api")
	{
		// 认证
		auth := api.Group("/auth")
		{
			auth.POST("/register", RateLimitMiddleware(redisClient, loginRule, KeyByIP), h.Register)
			auth.POST("/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("email")), h.Login)
		}

		// 公开浏览
		api.GET("/components", h.ListComponents)
		api.GET("/components/:id", h.GetComponent)
		api.GET("/affiliate-stores", h.ListAffiliateStores)
		api.GET("/groupbuying", h.ListCampaigns)
		api.GET("/groupbuying/:id", h.GetCampaign)

		// 需鉴权，按角色执行 casbin 策略
		user := api.Group("")
		user.Use(UserJWTAuthMiddleware(c.UserAuthService), RoleAuthzMiddleware(c.AuthzService))
		{
			user.GET("/auth/me", h.GetCurrentUser)
			user.POST("/auth/logout", h.Logout)

			user.POST("/components", h.CreateComponent)
			user.POST("/affiliate-stores", h.CreateAffiliateStore)

			user.GET("/cart", h.GetCart)
			user.DELETE("/cart", writeLimit, h.ClearCart)
			user.POST("/cart/items", writeLimit, h.AddCartItem)
			user.PUT("/cart/items/:id", writeLimit, h.UpdateCartItem)
			user.DELETE("/cart/items/:id", writeLimit, h.DeleteCartItem)
			user.POST("/cart/import", writeLimit, h.ImportCartItems)

			user.POST("/groupbuying", writeLimit, h.CreateCampaign)
			user.GET("/groupbuying/mine", h.ListMyCampaigns)
			user.GET("/groupbuying/participations", h.ListMyParticipations)
			user.POST("/groupbuying/:id/join", writeLimit, h.JoinCampaign)
			user.POST("/groupbuying/:id/leave", writeLimit, h.LeaveCampaign)
			user.PUT("/groupbuying/:id/status", writeLimit, h.UpdateCampaignStatus)
			user.POST("/groupbuying/:id/participants/:user_id/paid", writeLimit, h.MarkParticipantPaid)
			user.GET("/groupbuying/:id/audit", h.AuditCampaign)

			user.GET("/notifications", h.ListNotifications)
			user.POST("/notifications/:id/read", h.MarkNotificationRead)
		}
	}

	if cfg.Metrics.Enabled {
		path := strings.TrimSpace(cfg.Metrics.Path)
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, gin.WrapH(c.Metrics.Handler()))
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
