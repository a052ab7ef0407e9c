package provider

import (
	"github.com/dfn-network/internal/authz"
	"github.com/dfn-network/internal/cache"
	"github.com/dfn-network/internal/config"
	"github.com/dfn-network/internal/logger"
	"github.com/dfn-network/internal/metrics"
	"github.com/dfn-network/internal/models"
	"github.com/dfn-network/internal/queue"
	"github.com/dfn-network/internal/repository"
	"github.com/dfn-network/internal/service"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client
	Metrics     *metrics.Collector

	// Repositories
	UserRepo           repository.UserRepository
	ComponentRepo      repository.ComponentRepository
	AffiliateStoreRepo repository.AffiliateStoreRepository
	CartRepo           repository.CartRepository
	CampaignRepo       repository.CampaignRepository
	NotificationRepo   repository.NotificationRepository

	// Services
	AuthzService        *authz.Service
	UserAuthService     *service.UserAuthService
	CatalogService      *service.CatalogService
	CartService         *service.CartService
	GroupBuyingService  *service.GroupBuyingService
	NotificationService *service.NotificationService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
		Metrics:     newMetrics(cfg.Metrics),
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func newMetrics(cfg config.MetricsConfig) *metrics.Collector {
	if !cfg.Enabled {
		return metrics.New(nil)
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return metrics.New(reg,
		service.ErrValidation,
		service.ErrNotFound,
		service.ErrForbidden,
		service.ErrConflict,
		service.ErrCapacity,
		service.ErrInvalidState,
		service.ErrExpired,
		service.ErrUnauthorized,
	)
}

func (c *Container) initRepositories() {
	db := models.DB
	c.UserRepo = repository.NewUserRepository(db)
	c.ComponentRepo = repository.NewComponentRepository(db)
	c.AffiliateStoreRepo = repository.NewAffiliateStoreRepository(db)
	c.CartRepo = repository.NewCartRepository(db)
	c.CampaignRepo = repository.NewCampaignRepository(db)
	c.NotificationRepo = repository.NewNotificationRepository(db)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	c.UserAuthService = service.NewUserAuthService(c.Config, c.UserRepo)
	c.CatalogService = service.NewCatalogService(c.ComponentRepo, c.AffiliateStoreRepo)
	c.NotificationService = service.NewNotificationService(c.NotificationRepo, c.QueueClient)
	c.CartService = service.NewCartService(c.CartRepo, c.ComponentRepo, c.AffiliateStoreRepo, c.Metrics)
	c.GroupBuyingService = service.NewGroupBuyingService(c.CampaignRepo, c.NotificationService, c.Metrics, c.Config.GroupBuying)
}
