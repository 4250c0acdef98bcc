package workers

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/felixgeelhaar/taskwise/internal/insights/domain"
	"github.com/felixgeelhaar/taskwise/internal/tasks/domain/task"
	"github.com/felixgeelhaar/taskwise/pkg/observability"
)

// Generator regenerates the full insight set for one user.
type Generator interface {
	Generate(ctx context.Context, userID uuid.UUID) ([]*domain.Insight, error)
}

// debounceKeyPrefix namespaces the per-user refresh locks in Redis.
const debounceKeyPrefix = "taskwise:insights:refresh:"

// requestBuffer bounds the queue of on-demand refresh requests.
const requestBuffer = 256

// RefreshWorkerConfig tunes the periodic insight refresh.
type RefreshWorkerConfig struct {
	// Interval between full refresh sweeps over all active users.
	Interval time.Duration
	// Debounce suppresses repeat refreshes for the same user within
	// this window. Duplicate runs are harmless but wasteful.
	Debounce time.Duration
}

// RefreshWorker regenerates insights for every active user on a fixed
// interval and on demand after task mutations. On-demand requests are
// debounced per user, through Redis when available so debouncing holds
// across processes, otherwise in memory.
type RefreshWorker struct {
	generator Generator
	taskRepo  task.Repository
	config    RefreshWorkerConfig
	redis     *redis.Client
	logger    *slog.Logger
	metrics   observability.Metrics

	requests chan uuid.UUID

	mu      sync.Mutex
	lastRun map[uuid.UUID]time.Time
	wg      sync.WaitGroup
	stop    chan struct{}
	running bool
}

// NewRefreshWorker creates a refresh worker. redisClient may be nil.
func NewRefreshWorker(
	generator Generator,
	taskRepo task.Repository,
	config RefreshWorkerConfig,
	redisClient *redis.Client,
	logger *slog.Logger,
	metrics observability.Metrics,
) *RefreshWorker {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	if config.Interval <= 0 {
		config.Interval = 24 * time.Hour
	}
	if config.Debounce <= 0 {
		config.Debounce = 5 * time.Minute
	}
	return &RefreshWorker{
		generator: generator,
		taskRepo:  taskRepo,
		config:    config,
		redis:     redisClient,
		logger:    logger,
		metrics:   metrics,
		requests:  make(chan uuid.UUID, requestBuffer),
		lastRun:   make(map[uuid.UUID]time.Time),
		stop:      make(chan struct{}),
	}
}

// Start launches the sweep loop and the on-demand consumer.
func (w *RefreshWorker) Start(ctx context.Context) {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.stop = make(chan struct{})
	w.mu.Unlock()

	w.wg.Add(1)
	go w.run(ctx)

	w.logger.Info("insight refresh worker started",
		"interval", w.config.Interval,
		"debounce", w.config.Debounce,
	)
}

// Stop waits for in-flight work to finish.
func (w *RefreshWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	close(w.stop)
	w.mu.Unlock()

	w.wg.Wait()
	w.logger.Info("insight refresh worker stopped")
}

// RequestRefresh queues a debounced regeneration for one user. It never
// blocks the caller; when the queue is full the request is dropped and
// the next sweep picks the user up.
func (w *RefreshWorker) RequestRefresh(ctx context.Context, userID uuid.UUID) {
	if !w.acquireDebounce(ctx, userID) {
		w.metrics.Counter("insight_refresh_debounced", 1)
		return
	}

	select {
	case w.requests <- userID:
	default:
		w.logger.Warn("refresh queue full, dropping request", "user_id", userID)
		w.metrics.Counter("insight_refresh_dropped", 1)
	}
}

func (w *RefreshWorker) run(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stop:
			return
		case userID := <-w.requests:
			w.refreshOne(ctx, userID)
		case <-ticker.C:
			w.RefreshAll(ctx)
		}
	}
}

// RefreshAll regenerates insights for every user with stored tasks.
func (w *RefreshWorker) RefreshAll(ctx context.Context) {
	users, err := w.taskRepo.ListActiveUsers(ctx)
	if err != nil {
		w.logger.Error("failed to list active users", "error", err)
		return
	}

	w.logger.Info("refreshing insights for all users", "users", len(users))
	for _, userID := range users {
		w.refreshOne(ctx, userID)
	}
}

func (w *RefreshWorker) refreshOne(ctx context.Context, userID uuid.UUID) {
	if _, err := w.generator.Generate(ctx, userID); err != nil {
		w.logger.Error("insight refresh failed", "user_id", userID, "error", err)
		w.metrics.Counter("insight_refresh_failed", 1)
		return
	}
	w.metrics.Counter("insight_refresh_completed", 1)
}

// acquireDebounce reports whether a refresh for the user may run now.
func (w *RefreshWorker) acquireDebounce(ctx context.Context, userID uuid.UUID) bool {
	if w.redis != nil {
		ok, err := w.redis.SetNX(ctx, debounceKeyPrefix+userID.String(), 1, w.config.Debounce).Result()
		if err == nil {
			return ok
		}
		w.logger.Warn("redis debounce unavailable, falling back to local", "error", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	now := time.Now()
	if last, ok := w.lastRun[userID]; ok && now.Sub(last) < w.config.Debounce {
		return false
	}
	w.lastRun[userID] = now
	return true
}
