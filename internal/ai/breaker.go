package ai

import (
	"context"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

const (
	DefaultBreakerFailureThreshold = 5
	DefaultBreakerOpenTimeout      = time.Minute
)

// BreakerSettings configure the circuit breaker in front of a Generator.
type BreakerSettings struct {
	// FailureThreshold is the number of consecutive failures that opens the circuit.
	FailureThreshold uint32
	// OpenTimeout is how long the circuit stays open before a trial call is let through.
	OpenTimeout time.Duration
}

type breakerGenerator struct {
	next Generator
	cb   *gobreaker.CircuitBreaker[string]
}

// WithBreaker wraps next with a circuit breaker. While the circuit is open,
// calls fail immediately with gobreaker.ErrOpenState.
func WithBreaker(next Generator, settings BreakerSettings, logger *zap.Logger) Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if settings.FailureThreshold == 0 {
		settings.FailureThreshold = DefaultBreakerFailureThreshold
	}
	if settings.OpenTimeout <= 0 {
		settings.OpenTimeout = DefaultBreakerOpenTimeout
	}

	cb := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        "ranking-model",
		MaxRequests: 1,
		Timeout:     settings.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= settings.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &breakerGenerator{next: next, cb: cb}
}

func (b *breakerGenerator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	return b.cb.Execute(func() (string, error) {
		return b.next.GenerateContent(ctx, prompt)
	})
}
