package container

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"fieldserve-backend/internal/config"
	infraCache "fieldserve-backend/internal/infrastructure/cache"
	"fieldserve-backend/internal/infrastructure/database"
	"fieldserve-backend/internal/infrastructure/notification"
	"fieldserve-backend/internal/infrastructure/payment"
	"fieldserve-backend/pkg/cache"
	"fieldserve-backend/pkg/jwt"

	agentHandler "fieldserve-backend/internal/domains/agent/handler"
	agentRepo "fieldserve-backend/internal/domains/agent/repository"
	agentService "fieldserve-backend/internal/domains/agent/service"
	bookingHandler "fieldserve-backend/internal/domains/booking/handler"
	bookingRepo "fieldserve-backend/internal/domains/booking/repository"
	bookingService "fieldserve-backend/internal/domains/booking/service"
	couponHandler "fieldserve-backend/internal/domains/coupon/handler"
	couponRepo "fieldserve-backend/internal/domains/coupon/repository"
	couponService "fieldserve-backend/internal/domains/coupon/service"
)

// Container holds the application dependency graph. Everything in it is
// a singleton built once at startup, in dependency order: config, then
// infrastructure, then repositories, services, handlers.
type Container struct {
	// Infrastructure
	Config      *config.Config
	DB          *database.PostgresDB
	Redis       *infraCache.RedisClient
	Cache       cache.Cache
	JWTManager  *jwt.Manager
	AsynqClient *asynq.Client

	// Repositories
	BookingRepo bookingRepo.BookingRepository
	AgentRepo   agentRepo.AgentRepository
	CouponRepo  couponRepo.CouponRepository

	// Services
	BookingService    bookingService.BookingService
	AssignmentService bookingService.AssignmentService
	CouponService     couponService.CouponService
	AgentService      agentService.AgentService

	// Handlers
	BookingHandler *bookingHandler.BookingHandler
	CouponHandler  *couponHandler.CouponHandler
	AgentHandler   *agentHandler.AgentHandler
}

// NewContainer builds the whole dependency graph. A failure anywhere
// aborts startup.
func NewContainer() (*Container, error) {
	c := &Container{}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg
	log.Info().Str("environment", cfg.App.Environment).Msg("config loaded")

	if err := c.initInfrastructure(); err != nil {
		return nil, err
	}

	c.initRepositories()
	c.initServices()
	c.initHandlers()

	log.Info().Msg("container initialized")
	return c, nil
}

func (c *Container) initInfrastructure() error {
	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return fmt.Errorf("failed to load database config: %w", err)
	}
	db := database.NewPostgresDB(dbConfig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	c.DB = db

	redisClient := infraCache.NewRedisClient(
		c.Config.Redis.Host,
		c.Config.Redis.Password,
		c.Config.Redis.DB,
	)
	// Redis failure is not fatal at startup; presence and dispatch
	// degrade, the booking core keeps working
	if err := redisClient.Connect(context.Background()); err != nil {
		log.Warn().Err(err).Msg("redis connection failed, continuing degraded")
	}
	c.Redis = redisClient
	c.Cache = infraCache.NewRedisCache(redisClient)

	c.JWTManager = jwt.NewManager(c.Config.JWT.Secret)

	c.AsynqClient = asynq.NewClient(asynq.RedisClientOpt{
		Addr:     c.Config.Redis.Host,
		Password: c.Config.Redis.Password,
		DB:       c.Config.Redis.DB,
	})

	return nil
}

func (c *Container) initRepositories() {
	c.BookingRepo = bookingRepo.NewPostgresBookingRepository(c.DB.Pool)
	c.AgentRepo = agentRepo.NewPostgresAgentRepository(c.DB.Pool)
	c.CouponRepo = couponRepo.NewPostgresCouponRepository(c.DB.Pool)
}

func (c *Container) initServices() {
	c.CouponService = couponService.NewCouponService(c.CouponRepo)
	c.AgentService = agentService.NewAgentService(c.AgentRepo, c.Cache)

	dispatcher := notification.NewAsynqDispatcher(c.AsynqClient)
	gateway := payment.NewMockGateway()
	references := bookingService.NewReferenceGenerator(c.Config.Booking.ReferencePrefix, c.BookingRepo)

	svc := bookingService.NewBookingService(
		c.BookingRepo,
		c.AgentRepo,
		c.CouponService,
		dispatcher,
		gateway,
		references,
	)
	c.BookingService = svc
	c.AssignmentService = svc
}

func (c *Container) initHandlers() {
	c.BookingHandler = bookingHandler.NewBookingHandler(c.BookingService, c.AssignmentService)
	c.CouponHandler = couponHandler.NewCouponHandler(c.CouponService)
	c.AgentHandler = agentHandler.NewAgentHandler(c.AgentService)
}

// Cleanup releases infrastructure resources on shutdown
func (c *Container) Cleanup() {
	if c.AsynqClient != nil {
		if err := c.AsynqClient.Close(); err != nil {
			log.Warn().Err(err).Msg("asynq client close failed")
		}
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			log.Warn().Err(err).Msg("redis close failed")
		}
	}
	if c.DB != nil {
		_ = c.DB.Close()
	}
}
