package provider

import (
	"time"

	"github.com/realcpa-hub/internal/authz"
	"github.com/realcpa-hub/internal/cache"
	"github.com/realcpa-hub/internal/config"
	"github.com/realcpa-hub/internal/eventbus"
	"github.com/realcpa-hub/internal/idempotency"
	"github.com/realcpa-hub/internal/logger"
	"github.com/realcpa-hub/internal/models"
	"github.com/realcpa-hub/internal/queue"
	"github.com/realcpa-hub/internal/repository"
	"github.com/realcpa-hub/internal/service"

	"gorm.io/gorm"
)

// Container 依赖注入容器
type Container struct {
	Config           *config.Config
	QueueClient      *queue.Client
	Publisher        eventbus.Publisher
	IdempotencyStore idempotency.Store

	// Repositories
	UserRepo          repository.UserRepository
	OfferRepo         repository.OfferRepository
	TrackingLinkRepo  repository.TrackingLinkRepository
	ParticipationRepo repository.ParticipationRepository
	EventRepo         repository.EventRepository
	PayoutRepo        repository.PayoutRepository
	NotificationRepo  repository.NotificationRepository
	DashboardRepo     repository.DashboardRepository
	ProfileRepo       repository.ProfileRepository

	// Services
	AuthzService         *authz.Service
	UserAuthService      *service.UserAuthService
	EmailService         *service.EmailService
	NotificationService  *service.NotificationService
	TrackingService      *service.TrackingService
	EventService         *service.EventService
	EarningsService      *service.EarningsService
	PayoutService        *service.PayoutService
	ParticipationService *service.ParticipationService
	OfferService         *service.OfferService
	StatsService         *service.StatsService
	ProfileService       *service.ProfileService
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

	publisher, err := eventbus.New(cfg.Kafka)
	if err != nil {
		logger.Warnw("provider_init_eventbus_failed", "error", err)
		publisher = eventbus.NoopPublisher{}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
		Publisher:   publisher,
	}
	c.initIdempotencyStore()

	// 1. 初始化 Repositories
	c.initRepositories(models.DB)

	// 2. 初始化 Services
	c.initServices(models.DB)

	return c
}

// IdempotencyTTL 幂等记录保留时长
func (c *Container) IdempotencyTTL() time.Duration {
	if c.Config.Idempotency.TTLSeconds <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.Config.Idempotency.TTLSeconds) * time.Second
}

// Close 释放容器持有的外部连接
func (c *Container) Close() {
	if c.Publisher != nil {
		if err := c.Publisher.Close(); err != nil {
			logger.Warnw("provider_close_eventbus_failed", "error", err)
		}
	}
	if c.IdempotencyStore != nil {
		if err := c.IdempotencyStore.Close(); err != nil {
			logger.Warnw("provider_close_idempotency_store_failed", "error", err)
		}
	}
	if c.QueueClient != nil {
		_ = c.QueueClient.Close()
	}
}

// initIdempotencyStore 优先使用 Redis，未启用时退回本地 bolt 文件
func (c *Container) initIdempotencyStore() {
	if !c.Config.Idempotency.Enabled {
		return
	}
	if client := cache.Client(); client != nil {
		c.IdempotencyStore = idempotency.NewRedisStore(client, c.Config.Redis.Prefix)
		return
	}
	store, err := idempotency.NewBoltStore(c.Config.Idempotency.BoltPath)
	if err != nil {
		logger.Warnw("provider_init_idempotency_store_failed", "path", c.Config.Idempotency.BoltPath, "error", err)
		return
	}
	c.IdempotencyStore = store
}

func (c *Container) initRepositories(db *gorm.DB) {
	c.UserRepo = repository.NewUserRepository(db)
	c.OfferRepo = repository.NewOfferRepository(db)
	c.TrackingLinkRepo = repository.NewTrackingLinkRepository(db)
	c.ParticipationRepo = repository.NewParticipationRepository(db)
	c.EventRepo = repository.NewEventRepository(db)
	c.PayoutRepo = repository.NewPayoutRepository(db)
	c.NotificationRepo = repository.NewNotificationRepository(db)
	c.DashboardRepo = repository.NewDashboardRepository(db)
	c.ProfileRepo = repository.NewProfileRepository(db)
}

func (c *Container) initServices(db *gorm.DB) {
	authzService, err := authz.NewService(db)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	c.EmailService = service.NewEmailService(&c.Config.Email)
	c.UserAuthService = service.NewUserAuthService(c.Config, c.UserRepo, c.EmailService)
	c.ProfileService = service.NewProfileService(c.ProfileRepo)
	c.NotificationService = service.NewNotificationService(c.NotificationRepo, c.UserRepo, c.QueueClient, c.EmailService)
	c.TrackingService = service.NewTrackingService(c.TrackingLinkRepo, c.EventRepo, c.Config.Tracking.BaseURL)
	c.EventService = service.NewEventService(c.TrackingLinkRepo, c.OfferRepo, c.EventRepo, c.Publisher)
	c.EarningsService = service.NewEarningsService(c.TrackingLinkRepo, c.EventRepo)
	c.PayoutService = service.NewPayoutService(
		c.UserRepo,
		c.TrackingLinkRepo,
		c.PayoutRepo,
		c.EarningsService,
		c.NotificationService,
		c.Publisher,
		service.NewPayoutSettings(c.Config.Payout.MinAmount, c.Config.Payout.Currency),
	)
	c.ParticipationService = service.NewParticipationService(
		c.ParticipationRepo,
		c.OfferRepo,
		c.TrackingLinkRepo,
		service.NewTokenGenerator(c.Config.Tracking.TokenStrategy),
		c.TrackingService,
		c.NotificationService,
	)
	c.OfferService = service.NewOfferService(c.OfferRepo)
	c.StatsService = service.NewStatsService(
		c.UserRepo,
		c.OfferRepo,
		c.TrackingLinkRepo,
		c.EventRepo,
		c.PayoutRepo,
		c.ParticipationRepo,
		c.DashboardRepo,
		c.EarningsService,
	)
}
