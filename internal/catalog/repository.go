package catalog

import (
	"context"
	"errors"

	"github.com/Annan-Ogero/nexusmarket-pro/internal/domain"
)

var ErrProductNotFound = errors.New("product not found")

// Repository is the terminal's embedded product database.
type Repository interface {
	ListProducts(ctx context.Context) ([]*domain.Product, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	GetProductBySKU(ctx context.Context, sku string) (*domain.Product, error)
	UpsertProduct(ctx context.Context, product *domain.Product) (int64, error)
	Close() error
}
