package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"

	_ "github.com/lib/pq" // PostgreSQL driver

	"clinicq/internal/broker"
	"clinicq/internal/config"
	"clinicq/internal/constants"
	"clinicq/internal/logger"
	"clinicq/internal/rules"
	"clinicq/internal/templates"
	"clinicq/pkg/bootstrap"
	"clinicq/pkg/health"
	"clinicq/pkg/metrics"
	"clinicq/pkg/middleware"
	"clinicq/pkg/migrations"
	"clinicq/pkg/ratelimit"
	"clinicq/pkg/retry"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type App struct {
	config      *config.Config
	logger      logger.Logger
	dbConnector *bootstrap.DatabaseConnector
	db          *sql.DB
	mongoClient *mongo.Client
	redisClient *redis.Client
	producer    broker.Producer
	server      *http.Server
	router      *gin.Engine
}

func NewApp(cfg *config.Config, log logger.Logger) *App {
	return &App{
		config:      cfg,
		logger:      log,
		dbConnector: bootstrap.NewDatabaseConnector(cfg, log),
	}
}

func (a *App) Initialize(ctx context.Context) error {
	if err := a.initDatabase(ctx); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := a.initRouter(ctx); err != nil {
		return fmt.Errorf("failed to initialize router: %w", err)
	}

	if err := a.initServer(); err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	return nil
}

func (a *App) initDatabase(ctx context.Context) error {
	db, err := a.dbConnector.InitPostgreSQL(ctx)
	if err != nil {
		return err
	}
	a.db = db

	if a.config.Database.RunMigrations {
		if err := a.dbConnector.RunMigrations(db, a.config.Database.MigrationsDir); err != nil {
			return err
		}
	}

	return nil
}

func (a *App) initRouter(ctx context.Context) error {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	router.Use(middleware.RecoveryMiddleware(a.logger))
	router.Use(middleware.LoggerMiddleware(a.logger))
	router.Use(middleware.RequestIDMiddleware())

	if a.config.API.RateLimit.Enabled {
		rateLimitConfig := ratelimit.RateLimitConfig{
			RPS:             a.config.API.RateLimit.RPS,
			Burst:           a.config.API.RateLimit.Burst,
			CleanupInterval: time.Duration(a.config.API.RateLimit.CleanupInterval) * time.Second,
			MaxAge:          time.Duration(a.config.API.RateLimit.MaxAge) * time.Second,
		}
		router.Use(ratelimit.RateLimitMiddleware(rateLimitConfig))
		a.logger.InfowCtx(ctx, "Rate limiting enabled", "rps", rateLimitConfig.RPS, "burst", rateLimitConfig.Burst)
	}

	ruleRepo := rules.NewRepository(a.db)
	versioningRepo := rules.NewVersioningRepository(a.db)

	changeEvents := a.initChangeEvents(ctx)
	templateService := a.initTemplateService(ctx, changeEvents)
	conflictCache := a.initConflictCache(ctx)

	opts := []rules.ServiceOption{rules.WithVersioning(versioningRepo)}
	if templateService != nil {
		opts = append(opts, rules.WithTemplates(templateService))
	}
	if conflictCache != nil {
		opts = append(opts, rules.WithConflictCache(conflictCache))
	}
	if changeEvents != nil {
		opts = append(opts, rules.WithChangeEvents(changeEvents))
	}

	ruleService := rules.NewService(ruleRepo, opts...)

	rulesHandler := rules.NewHandler(ruleService, a.logger)
	rulesHandler.RegisterRoutes(router)

	if templateService != nil {
		templatesHandler := templates.NewHandler(templateService, a.logger)
		templatesHandler.RegisterRoutes(router)
	}

	metrics.RegisterConditionMetrics()
	metrics.RegisterCircuitBreakerMetrics()

	healthRegistry := health.NewCheckerRegistry()
	healthRegistry.Register(health.NewPostgreSQLChecker(a.db))
	if a.mongoClient != nil {
		healthRegistry.Register(health.NewMongoDBChecker(a.mongoClient))
	}
	if a.redisClient != nil {
		healthRegistry.Register(health.NewRedisChecker(a.redisClient))
	}

	router.GET("/health", func(c *gin.Context) {
		h := healthRegistry.Check(c.Request.Context())
		statusCode := http.StatusOK
		if h.Status == health.StatusUnhealthy {
			statusCode = http.StatusServiceUnavailable
		}
		c.JSON(statusCode, h)
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	a.router = router
	return nil
}

// initTemplateService wires the MongoDB template store behind a circuit
// breaker. A missing Mongo URI leaves the console rules-only.
func (a *App) initTemplateService(ctx context.Context, changeEvents *rules.ChangeEventProducer) templates.Service {
	if a.config.Database.MongoDB.URI == "" {
		return nil
	}

	initCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	mongoClient, err := a.dbConnector.InitMongoDB(initCtx)
	if err != nil {
		a.logger.WarnwCtx(initCtx, "MongoDB connection failed, continuing without templates", "error", err)
		return nil
	}
	if mongoClient == nil {
		return nil
	}
	a.mongoClient = mongoClient

	dbName := a.config.Database.MongoDB.Database
	if dbName == "" {
		dbName = constants.DefaultMongoDBName
	}
	mongoDB := mongoClient.Database(dbName)

	if err := migrations.EnsureMongoCollection(initCtx, mongoDB); err != nil {
		a.logger.WarnwCtx(initCtx, "Failed to ensure template indexes", "error", err)
	}

	repo := templates.NewCircuitBreakerRepository(templates.NewRepository(mongoDB), a.config.CircuitBreaker)

	var opts []templates.ServiceOption
	if changeEvents != nil {
		opts = append(opts, templates.WithChangeNotifier(changeEvents))
	}
	return templates.NewService(repo, opts...)
}

func (a *App) initChangeEvents(ctx context.Context) *rules.ChangeEventProducer {
	if a.config.Broker.Type == "" || a.config.Broker.Kafka.ChangeEventTopic == "" {
		return nil
	}

	producer, err := broker.NewProducer(a.config.Broker, a.logger)
	if err != nil {
		a.logger.WarnwCtx(ctx, "Failed to create change event producer, change events will be disabled", "error", err)
		return nil
	}
	a.producer = producer

	policy := retry.DefaultPolicy()
	retryCfg := a.config.Broker.Kafka.Retry
	if retryCfg.MaxAttempts > 0 {
		policy.MaxAttempts = retryCfg.MaxAttempts
	}
	if retryCfg.InitialInterval > 0 {
		policy.InitialInterval = retryCfg.InitialInterval
	}
	if retryCfg.MaxInterval > 0 {
		policy.MaxInterval = retryCfg.MaxInterval
	}
	if retryCfg.Multiplier > 0 {
		policy.Multiplier = retryCfg.Multiplier
	}
	if retryCfg.MaxElapsedTime > 0 {
		policy.MaxElapsedTime = retryCfg.MaxElapsedTime
	}

	a.logger.InfowCtx(ctx, "Change event producer initialized", "topic", a.config.Broker.Kafka.ChangeEventTopic)
	return rules.NewChangeEventProducer(producer, a.config.Broker.Kafka.ChangeEventTopic, policy, a.logger)
}

func (a *App) initConflictCache(ctx context.Context) *rules.ConflictCache {
	redisClient, err := a.dbConnector.InitRedis(ctx)
	if err != nil {
		a.logger.WarnwCtx(ctx, "Redis connection failed, conflict reports will not be cached", "error", err)
		return nil
	}
	if redisClient == nil {
		return nil
	}
	a.redisClient = redisClient

	ttl := time.Duration(a.config.Conflicts.CacheTTLSeconds) * time.Second
	return rules.NewConflictCache(redisClient, ttl)
}

func (a *App) initServer() error {
	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.config.Server.Port),
		Handler:      a.router,
		ReadTimeout:  a.config.Server.ReadTimeoutSeconds,
		WriteTimeout: a.config.Server.WriteTimeoutSeconds,
	}
	return nil
}

func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.InfowCtx(gctx, "Server listening", "port", a.config.Server.Port)
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		return a.Shutdown(gctx)
	})

	return g.Wait()
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.InfowCtx(ctx, "Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer cancel()

	var errs []error

	if a.server != nil {
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
		}
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("producer close error: %w", err))
		}
	}

	dbErrs := a.dbConnector.ShutdownDatabases(shutdownCtx, a.redisClient, a.db, a.mongoClient)
	errs = append(errs, dbErrs...)

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}

	a.logger.InfowCtx(ctx, "Server exited successfully")
	return nil
}
