package payment

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"
)

// BreakerAuthorizer wraps an Authorizer with a circuit breaker so a dead
// processor fails fast instead of holding the lane for the full settle
// timeout on every sale. Declines are normal business outcomes and do not
// count against the breaker.
type BreakerAuthorizer struct {
	inner Authorizer
	cb    *gobreaker.CircuitBreaker[Result]
}

func NewBreakerAuthorizer(inner Authorizer) *BreakerAuthorizer {
	cb := gobreaker.NewCircuitBreaker[Result](gobreaker.Settings{
		Name:        "payment-authorizer",
		MaxRequests: 1,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrDeclined)
		},
	})
	return &BreakerAuthorizer{inner: inner, cb: cb}
}

func (b *BreakerAuthorizer) Authorize(ctx context.Context, req Request) (Result, error) {
	return b.cb.Execute(func() (Result, error) {
		return b.inner.Authorize(ctx, req)
	})
}
