package provider

import (
	"github.com/storefront-next/internal/cache"
	"github.com/storefront-next/internal/catalog"
	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/queue"
	"github.com/storefront-next/internal/repository"
	"github.com/storefront-next/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	DiscountRepo repository.DiscountRepository
	GiftCardRepo repository.GiftCardRepository
	ProductRepo  repository.ProductRepository
	CategoryRepo repository.CategoryRepository
	CustomerRepo repository.CustomerRepository
	OrderRepo    repository.OrderRepository

	// Shared infrastructure
	Snapshotter *catalog.Snapshotter
	DraftStore  cache.DraftStore

	// Services
	ProductService       *service.ProductService
	DraftService         *service.DraftService
	CheckoutService      *service.CheckoutService
	SettlementService    *service.SettlementService
	DiscountAdminService *service.DiscountAdminService
	GiftCardAdminService *service.GiftCardAdminService
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

	c.initRepositories()
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.DiscountRepo = repository.NewDiscountRepository(db)
	c.GiftCardRepo = repository.NewGiftCardRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.CategoryRepo = repository.NewCategoryRepository(db)
	c.CustomerRepo = repository.NewCustomerRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
}

func (c *Container) initServices() {
	db := models.DB
	c.Snapshotter = catalog.NewSnapshotter(c.DiscountRepo, c.ProductRepo, c.CustomerRepo)
	c.DraftStore = cache.NewDraftStore()

	c.ProductService = service.NewProductService(c.ProductRepo, c.CategoryRepo, c.Snapshotter, nil)
	c.DraftService = service.NewDraftService(c.DraftStore, c.Snapshotter, nil)
	c.SettlementService = service.NewSettlementService(
		db,
		repository.NewDiscountRepository(db),
		repository.NewGiftCardRepository(db),
		repository.NewOrderRepository(db),
	)
	c.CheckoutService = service.NewCheckoutService(
		c.DraftService,
		c.SettlementService,
		c.OrderRepo,
		c.QueueClient,
		nil,
	)
	c.DiscountAdminService = service.NewDiscountAdminService(c.DiscountRepo)
	c.GiftCardAdminService = service.NewGiftCardAdminService(c.GiftCardRepo, c.CustomerRepo)
}
