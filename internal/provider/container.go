package provider

import (
	"strings"
	"time"

	"github.com/paygate-next/internal/authz"
	"github.com/paygate-next/internal/cache"
	"github.com/paygate-next/internal/config"
	"github.com/paygate-next/internal/logger"
	"github.com/paygate-next/internal/models"
	"github.com/paygate-next/internal/queue"
	"github.com/paygate-next/internal/repository"
	"github.com/paygate-next/internal/secret"
	"github.com/paygate-next/internal/service"
	"github.com/paygate-next/internal/tenancy"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client
	RouteCache  *cache.TenantRouteCache

	// Repositories
	TenantRepo         *repository.GormTenantRepository
	TenantSettingsRepo *repository.GormTenantSettingsRepository
	PaymentAccountRepo *repository.GormPaymentAccountRepository
	TransactionRepo    *repository.GormTransactionRepository

	// Services
	AuthzService          *authz.Service
	TenantResolver        *tenancy.Resolver
	TenantService         *service.TenantService
	TenantSettingsService *service.TenantSettingsService
	PaymentAccountService *service.PaymentAccountService
	LedgerService         *service.LedgerService
	WebhookService        *service.WebhookService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端，未启用时推送静默跳过
	queueClient, err := queue.NewClient(&cfg.Queue)
	if err != nil {
		logger.Errorw("provider_init_queue_client_failed", "error", err)
		queueClient, _ = queue.NewClient(nil)
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
		RouteCache:  cache.NewTenantRouteCache(time.Duration(cfg.Tenancy.RouteCacheTTLSeconds) * time.Second),
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.TenantRepo = repository.NewTenantRepository(db)
	c.TenantSettingsRepo = repository.NewTenantSettingsRepository(db)
	c.PaymentAccountRepo = repository.NewPaymentAccountRepository(db)
	c.TransactionRepo = repository.NewTransactionRepository(db)
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

	masterKey := strings.TrimSpace(c.Config.Security.SecretKey)
	if masterKey == "" {
		masterKey = c.Config.JWT.SecretKey
	}
	box, err := secret.NewBox(masterKey)
	if err != nil {
		logger.Errorw("provider_init_credential_box_failed", "error", err)
		panic(err)
	}

	c.TenantResolver = tenancy.NewResolver(c.TenantRepo, c.RouteCache)
	c.TenantService = service.NewTenantService(c.TenantRepo, c.TenantSettingsRepo, c.RouteCache, c.Config.Ledger.DefaultCurrency)
	c.TenantSettingsService = service.NewTenantSettingsService(c.TenantSettingsRepo)
	c.PaymentAccountService = service.NewPaymentAccountService(c.PaymentAccountRepo, box)
	c.LedgerService = service.NewLedgerService(
		c.TransactionRepo,
		c.PaymentAccountRepo,
		c.TenantSettingsRepo,
		service.NewSimulatedCapturer(c.Config.Ledger.CaptureMode),
		c.QueueClient,
	)
	c.WebhookService = service.NewWebhookService(
		c.TransactionRepo,
		c.PaymentAccountService,
		time.Duration(c.Config.Ledger.WebhookTimeoutMS)*time.Millisecond,
	)
}
