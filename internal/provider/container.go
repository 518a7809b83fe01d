package provider

import (
	"github.com/freshcart-next/internal/authz"
	"github.com/freshcart-next/internal/cache"
	"github.com/freshcart-next/internal/config"
	"github.com/freshcart-next/internal/logger"
	"github.com/freshcart-next/internal/models"
	"github.com/freshcart-next/internal/queue"
	"github.com/freshcart-next/internal/repository"
	"github.com/freshcart-next/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	UserRepo          repository.UserRepository
	ProductRepo       repository.ProductRepository
	CartRepo          repository.CartRepository
	PaymentIntentRepo repository.PaymentIntentRepository
	OrderRepo         repository.OrderRepository

	// Services
	AuthzService    *authz.Service
	UserAuthService *service.UserAuthService
	CaptchaService  *service.CaptchaService
	ProductService  *service.ProductService
	CartService     *service.CartService
	DeliveryService *service.DeliveryService
	CheckoutService *service.CheckoutService
	OrderService    *service.OrderService
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
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.UserRepo = repository.NewUserRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.CartRepo = repository.NewCartRepository(db)
	c.PaymentIntentRepo = repository.NewPaymentIntentRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
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
	c.CaptchaService = service.NewCaptchaService(c.Config.Captcha)
	c.ProductService = service.NewProductService(c.ProductRepo)
	c.CartService = service.NewCartService(c.CartRepo, c.ProductRepo)
	c.DeliveryService = service.NewDeliveryService(c.Config.Store, c.Config.Delivery, service.NewRouteProvider(c.Config.Routing))
	c.CheckoutService = service.NewCheckoutService(
		models.DB,
		c.Config.Payment,
		c.Config.Checkout,
		c.CartService,
		c.DeliveryService,
		service.NewStripeGateway(c.Config.Payment),
		c.CartRepo,
		c.PaymentIntentRepo,
		c.OrderRepo,
		c.QueueClient,
	)
	c.OrderService = service.NewOrderService(c.OrderRepo, c.QueueClient)
}
