package catalog

import (
	"context"
	"errors"

	"github.com/Annan-Ogero/nexusmarket-pro/internal/domain"
)

type ProductCache interface {
	Get(ctx context.Context) ([]*domain.Product, error)
	Set(ctx context.Context, products []*domain.Product) error
	Invalidate(ctx context.Context) error
}

var ErrCacheMiss = errors.New("cache miss")
