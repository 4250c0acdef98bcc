// Package dispatch hands finished notification plans to the message
// broker, shielded by a circuit breaker so a broker outage cannot
// stall insight generation.
package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/felixgeelhaar/taskwise/internal/notifications/domain"
	"github.com/felixgeelhaar/taskwise/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/taskwise/pkg/observability"
)

// DispatcherConfig tunes the circuit breaker around the broker.
type DispatcherConfig struct {
	// MaxRequests allowed through while half-open.
	MaxRequests uint32
	// Timeout is how long the breaker stays open after tripping.
	Timeout time.Duration
	// FailureThreshold trips the breaker after this many consecutive
	// publish failures.
	FailureThreshold uint32
}

func DefaultDispatcherConfig() DispatcherConfig {
	return DispatcherConfig{
		MaxRequests:      1,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
	}
}

// Dispatcher publishes plan-created events to the broker.
type Dispatcher struct {
	publisher eventbus.Publisher
	breaker   *gobreaker.CircuitBreaker[any]
	logger    *slog.Logger
	metrics   observability.Metrics
}

func NewDispatcher(publisher eventbus.Publisher, config DispatcherConfig, logger *slog.Logger, metrics observability.Metrics) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}

	settings := gobreaker.Settings{
		Name:        "notification-dispatch",
		MaxRequests: config.MaxRequests,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= config.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info("circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	}

	return &Dispatcher{
		publisher: publisher,
		breaker:   gobreaker.NewCircuitBreaker[any](settings),
		logger:    logger,
		metrics:   metrics,
	}
}

// Dispatch serializes the plan event and publishes it. Returns the
// breaker's error while open.
func (d *Dispatcher) Dispatch(ctx context.Context, event *domain.PlanCreated) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal plan event: %w", err)
	}

	_, err = d.breaker.Execute(func() (any, error) {
		return nil, d.publisher.Publish(ctx, event.RoutingKey(), payload)
	})
	if err != nil {
		d.metrics.Counter("notification_dispatch_failed", 1)
		return fmt.Errorf("publish notification plan: %w", err)
	}

	d.metrics.Counter("notification_dispatched", 1, observability.T("candidates", fmt.Sprint(len(event.Candidates))))
	return nil
}
