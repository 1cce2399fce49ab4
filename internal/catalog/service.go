package catalog

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/Annan-Ogero/nexusmarket-pro/internal/domain"
	"golang.org/x/sync/singleflight"
)

// Service serves catalog reads through the cache with a singleflight
// guard, so a cold cache costs one repository query no matter how many
// lanes ask at once.
type Service struct {
	repo  Repository
	cache ProductCache
	sfg   singleflight.Group
}

func NewService(repo Repository, cache ProductCache) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
	}
}

func (s *Service) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	v, err, _ := s.sfg.Do(catalogKey, func() (interface{}, error) {
		products, err := s.cache.Get(ctx)
		if err == nil {
			return products, nil
		}

		if !errors.Is(err, ErrCacheMiss) {
			log.Printf("catalog cache get error: %v", err) // log cache error but continue
		}

		products, errList := s.repo.ListProducts(ctx)
		if errList != nil {
			return nil, errList
		}

		go func() {
			errSet := s.cache.Set(context.Background(), products)
			if errSet != nil {
				log.Printf("catalog cache set error: %v", errSet)
			}
		}()

		return products, nil
	})

	if err != nil {
		return nil, err
	}

	return v.([]*domain.Product), nil
}

func (s *Service) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	return s.repo.GetProduct(ctx, id)
}

func (s *Service) GetProductBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	return s.repo.GetProductBySKU(ctx, sku)
}

// ProductAt resolves a quick-pick slot (1-based) against the ordered
// catalog, for the digit hotkeys.
func (s *Service) ProductAt(ctx context.Context, position int) (*domain.Product, error) {
	products, err := s.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	if position < 1 || position > len(products) {
		return nil, ErrProductNotFound
	}
	return products[position-1], nil
}

func (s *Service) UpsertProduct(ctx context.Context, product *domain.Product) (int64, error) {
	id, err := s.repo.UpsertProduct(ctx, product)
	if err != nil {
		log.Printf("repo upsert product error: %v", err)
		return 0, err
	}

	s.invalidateCache()
	return id, nil
}

func (s *Service) invalidateCache() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Invalidate(ctx); err != nil {
		log.Printf("catalog cache invalidate error: %v", err)
	}
}
