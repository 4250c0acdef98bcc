package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/redis/go-redis/v9"

	insightQueries "github.com/felixgeelhaar/taskwise/internal/insights/application/queries"
	insightServices "github.com/felixgeelhaar/taskwise/internal/insights/application/services"
	insightWorkers "github.com/felixgeelhaar/taskwise/internal/insights/application/workers"
	insightsDomain "github.com/felixgeelhaar/taskwise/internal/insights/domain"
	insightPersistence "github.com/felixgeelhaar/taskwise/internal/insights/infrastructure/persistence"
	notifCommands "github.com/felixgeelhaar/taskwise/internal/notifications/application/commands"
	notifQueries "github.com/felixgeelhaar/taskwise/internal/notifications/application/queries"
	notifServices "github.com/felixgeelhaar/taskwise/internal/notifications/application/services"
	notifDomain "github.com/felixgeelhaar/taskwise/internal/notifications/domain"
	"github.com/felixgeelhaar/taskwise/internal/notifications/infrastructure/dispatch"
	notifPersistence "github.com/felixgeelhaar/taskwise/internal/notifications/infrastructure/persistence"
	sharedApplication "github.com/felixgeelhaar/taskwise/internal/shared/application"
	"github.com/felixgeelhaar/taskwise/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/taskwise/internal/shared/infrastructure/database/postgres"
	"github.com/felixgeelhaar/taskwise/internal/shared/infrastructure/database/sqlite"
	"github.com/felixgeelhaar/taskwise/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/taskwise/internal/shared/infrastructure/migrations"
	"github.com/felixgeelhaar/taskwise/internal/shared/infrastructure/outbox"
	taskCommands "github.com/felixgeelhaar/taskwise/internal/tasks/application/commands"
	taskQueries "github.com/felixgeelhaar/taskwise/internal/tasks/application/queries"
	"github.com/felixgeelhaar/taskwise/internal/tasks/domain/activity"
	"github.com/felixgeelhaar/taskwise/internal/tasks/domain/task"
	taskPersistence "github.com/felixgeelhaar/taskwise/internal/tasks/infrastructure/persistence"
	"github.com/felixgeelhaar/taskwise/pkg/config"
	"github.com/felixgeelhaar/taskwise/pkg/observability"
)

// Container holds all application dependencies.
type Container struct {
	Config  *config.Config
	Logger  *slog.Logger
	Metrics *observability.PrometheusMetrics

	// Database
	DBConn   database.Connection
	DBDriver database.Driver

	// Redis
	RedisClient *redis.Client

	// Repositories
	TaskRepo     task.Repository
	ActivityRepo activity.Repository
	InsightRepo  insightsDomain.Repository
	SettingsRepo notifDomain.SettingsRepository
	OutboxRepo   outbox.Repository
	UnitOfWork   sharedApplication.UnitOfWork

	// Messaging
	EventPublisher  eventbus.Publisher
	OutboxProcessor *outbox.Processor

	// Insight pipeline
	Analyzer         *insightServices.Analyzer
	InsightGenerator *insightServices.InsightGenerator
	PlanService      *notifServices.PlanService
	RefreshWorker    *insightWorkers.RefreshWorker

	// Task handlers
	CreateTaskHandler   *taskCommands.CreateTaskHandler
	UpdateTaskHandler   *taskCommands.UpdateTaskHandler
	CompleteTaskHandler *taskCommands.CompleteTaskHandler
	DeleteTaskHandler   *taskCommands.DeleteTaskHandler
	ListTasksHandler    *taskQueries.ListTasksHandler
	GetTaskHandler      *taskQueries.GetTaskHandler

	// Insight handlers
	GetInsightsHandler *insightQueries.GetInsightsHandler

	// Notification handlers
	GetSettingsHandler    *notifQueries.GetSettingsHandler
	UpdateSettingsHandler *notifCommands.UpdateSettingsHandler
}

// NewContainer wires all application dependencies.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	c := &Container{
		Config:  cfg,
		Logger:  logger,
		Metrics: observability.NewPrometheusMetrics("taskwise"),
	}

	conn, err := connect(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	c.DBConn = conn
	c.DBDriver = conn.Driver()

	if err := migrations.Run(ctx, conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	// Redis backs cross-process refresh debouncing. Optional in
	// development.
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			if !cfg.IsDevelopment() {
				conn.Close()
				return nil, fmt.Errorf("parse Redis URL: %w", err)
			}
			logger.Warn("invalid Redis URL, refresh debouncing stays local", "error", err)
		} else {
			redisClient := redis.NewClient(opt)
			if err := redisClient.Ping(ctx).Err(); err != nil {
				if !cfg.IsDevelopment() {
					conn.Close()
					return nil, fmt.Errorf("connect to Redis: %w", err)
				}
				logger.Warn("Redis not available, refresh debouncing stays local", "error", err)
			} else {
				c.RedisClient = redisClient
				logger.Info("connected to Redis")
			}
		}
	}

	// Repositories
	c.TaskRepo = taskPersistence.NewSQLTaskRepository(conn)
	c.ActivityRepo = taskPersistence.NewSQLActivityRepository(conn)
	c.InsightRepo = insightPersistence.NewSQLInsightRepository(conn)
	c.SettingsRepo = notifPersistence.NewSQLSettingsRepository(conn)
	c.OutboxRepo = outbox.NewSQLRepository(conn)
	c.UnitOfWork = database.NewUnitOfWork(conn)

	// Event publisher, falling back to noop in development
	publisher, err := eventbus.NewRabbitMQPublisher(cfg.RabbitMQURL, logger)
	if err != nil {
		if !cfg.IsDevelopment() {
			conn.Close()
			return nil, fmt.Errorf("connect to RabbitMQ: %w", err)
		}
		logger.Warn("RabbitMQ not available, using noop publisher")
		c.EventPublisher = eventbus.NewNoopPublisher(logger)
	} else {
		c.EventPublisher = publisher
	}

	processorConfig := outbox.DefaultProcessorConfig()
	processorConfig.PollInterval = cfg.OutboxPollInterval
	processorConfig.BatchSize = cfg.OutboxBatchSize
	processorConfig.MaxRetries = cfg.OutboxMaxRetries
	c.OutboxProcessor = outbox.NewProcessor(c.OutboxRepo, c.EventPublisher, processorConfig, logger, c.Metrics)

	// Insight pipeline
	c.Analyzer = insightServices.NewAnalyzer()
	dispatcher := dispatch.NewDispatcher(c.EventPublisher, dispatch.DefaultDispatcherConfig(), logger, c.Metrics)
	c.PlanService = notifServices.NewPlanService(c.SettingsRepo, c.TaskRepo, c.InsightRepo, dispatcher, logger, c.Metrics)
	c.InsightGenerator = insightServices.NewInsightGenerator(
		c.TaskRepo, c.ActivityRepo, c.InsightRepo, c.Analyzer, c.PlanService, logger, c.Metrics,
	)
	c.RefreshWorker = insightWorkers.NewRefreshWorker(
		c.InsightGenerator,
		c.TaskRepo,
		insightWorkers.RefreshWorkerConfig{
			Interval: cfg.RefreshInterval,
			Debounce: cfg.RefreshDebounce,
		},
		c.RedisClient,
		logger,
		c.Metrics,
	)

	// Task handlers
	c.CreateTaskHandler = taskCommands.NewCreateTaskHandler(c.TaskRepo, c.ActivityRepo, c.OutboxRepo, c.UnitOfWork, c.RefreshWorker)
	c.UpdateTaskHandler = taskCommands.NewUpdateTaskHandler(c.TaskRepo, c.ActivityRepo, c.OutboxRepo, c.UnitOfWork, c.RefreshWorker)
	c.CompleteTaskHandler = taskCommands.NewCompleteTaskHandler(c.TaskRepo, c.ActivityRepo, c.OutboxRepo, c.UnitOfWork, c.RefreshWorker)
	c.DeleteTaskHandler = taskCommands.NewDeleteTaskHandler(c.TaskRepo, c.ActivityRepo, c.OutboxRepo, c.UnitOfWork)
	c.ListTasksHandler = taskQueries.NewListTasksHandler(c.TaskRepo)
	c.GetTaskHandler = taskQueries.NewGetTaskHandler(c.TaskRepo)

	// Insight handlers
	c.GetInsightsHandler = insightQueries.NewGetInsightsHandler(c.InsightRepo)

	// Notification handlers
	c.GetSettingsHandler = notifQueries.NewGetSettingsHandler(c.PlanService)
	c.UpdateSettingsHandler = notifCommands.NewUpdateSettingsHandler(c.PlanService, c.SettingsRepo, c.PlanService, logger)

	return c, nil
}

// connect opens the backend DATABASE_URL points at, falling back to
// the local SQLite file for zero-config development.
func connect(ctx context.Context, cfg *config.Config, logger *slog.Logger) (database.Connection, error) {
	if database.DetectDriver(cfg.DatabaseURL) == database.DriverPostgres {
		conn, err := postgres.NewConnection(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		logger.Info("connected to database", "driver", database.DriverPostgres)
		return conn, nil
	}

	path := cfg.SQLitePath
	if cfg.DatabaseURL != "" {
		path = strings.TrimPrefix(cfg.DatabaseURL, "sqlite://")
	}
	conn, err := sqlite.NewConnection(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	logger.Info("connected to database", "driver", database.DriverSQLite, "path", path)
	return conn, nil
}

// Close releases all resources held by the container.
func (c *Container) Close() {
	if c.RefreshWorker != nil {
		c.RefreshWorker.Stop()
	}
	if c.OutboxProcessor != nil {
		c.OutboxProcessor.Stop()
	}
	if c.EventPublisher != nil {
		if err := c.EventPublisher.Close(); err != nil {
			c.Logger.Error("failed to close event publisher", "error", err)
		}
	}
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			c.Logger.Error("failed to close Redis client", "error", err)
		}
	}
	if c.DBConn != nil {
		c.DBConn.Close()
	}
}
