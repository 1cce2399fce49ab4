package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Annan-Ogero/nexusmarket-pro/internal/domain"
)

// DefaultSettleDelay approximates how long the terminal takes to settle
// with the processor.
const DefaultSettleDelay = 600 * time.Millisecond

var (
	ErrDeclined      = errors.New("payment declined")
	ErrUnknownMethod = errors.New("unknown payment method")
)

type Request struct {
	Method domain.PaymentMethod
	Amount float64
}

type Result struct {
	AuthCode string
}

type Authorizer interface {
	Authorize(ctx context.Context, req Request) (Result, error)
}

// TerminalAuthorizer settles cash locally and routes card/NFC charges
// through a pluggable status source.
type TerminalAuthorizer struct {
	settleDelay time.Duration
	status      StatusSource
}

func NewTerminalAuthorizer(settleDelay time.Duration, status StatusSource) *TerminalAuthorizer {
	if settleDelay <= 0 {
		settleDelay = DefaultSettleDelay
	}
	return &TerminalAuthorizer{
		settleDelay: settleDelay,
		status:      status,
	}
}

func (a *TerminalAuthorizer) Authorize(ctx context.Context, req Request) (Result, error) {
	if !req.Method.Valid() {
		return Result{}, ErrUnknownMethod
	}

	select {
	case <-time.After(a.settleDelay):
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}

	// Cash never leaves the drawer; tender checks happen at the session
	// boundary before the authorizer is ever called.
	if req.Method == domain.PaymentCash {
		return Result{AuthCode: authCode()}, nil
	}

	ok, refusal := a.status.Outcome()
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrDeclined, refusal)
	}
	return Result{AuthCode: authCode()}, nil
}

func authCode() string {
	return fmt.Sprintf("AUTH-%d", time.Now().UnixNano())
}
