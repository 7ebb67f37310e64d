package payments

import (
	"errors"
	"time"

	"folio/internal/metrics"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// newBreaker wraps every outbound call of one gateway. Only transport failures and 5xx
// responses count against the breaker; a rejected signature says nothing about gateway health.
func newBreaker(name string, logger *zap.SugaredLogger) *gobreaker.CircuitBreaker {
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.6
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			var ue *UpstreamError
			if errors.As(err, &ue) {
				return ue.StatusCode != 0 && ue.StatusCode < 500
			}
			return true
		},
		OnStateChange: func(cbName string, from, to gobreaker.State) {
			state := float64(0)
			switch to {
			case gobreaker.StateOpen:
				state = 1
			case gobreaker.StateHalfOpen:
				state = 2
			}
			metrics.CircuitBreakerState.WithLabelValues(cbName).Set(state)
			logger.Warnw("circuit breaker state changed", "circuit", cbName, "from", from.String(), "to", to.String())
		},
	})
}

// guarded runs fn through cb and converts breaker rejections into upstream errors,
// so an open breaker fails closed like any other gateway outage.
func guarded[T any](cb *gobreaker.CircuitBreaker, gateway, op string, fn func() (T, error)) (T, error) {
	out, err := cb.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		var zero T
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerFailures.WithLabelValues(cb.Name()).Inc()
			return zero, &UpstreamError{Gateway: gateway, Op: op, Err: err}
		}
		var ue *UpstreamError
		if errors.As(err, &ue) {
			metrics.CircuitBreakerFailures.WithLabelValues(cb.Name()).Inc()
		}
		if v, ok := out.(T); ok {
			return v, err
		}
		return zero, err
	}
	v, _ := out.(T)
	return v, nil
}
