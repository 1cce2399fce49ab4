package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Annan-Ogero/nexusmarket-pro/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	m        sync.Mutex
	products []*domain.Product
	err      error
	listed   int
}

func (m *mockRepo) ListProducts(context.Context) ([]*domain.Product, error) {
	m.m.Lock()
	defer m.m.Unlock()
	m.listed++
	if m.err != nil {
		return nil, m.err
	}
	return m.products, nil
}

func (m *mockRepo) GetProduct(_ context.Context, id int64) (*domain.Product, error) {
	m.m.Lock()
	defer m.m.Unlock()
	for _, p := range m.products {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, ErrProductNotFound
}

func (m *mockRepo) GetProductBySKU(_ context.Context, sku string) (*domain.Product, error) {
	m.m.Lock()
	defer m.m.Unlock()
	for _, p := range m.products {
		if p.SKU == sku {
			return p, nil
		}
	}
	return nil, ErrProductNotFound
}

func (m *mockRepo) UpsertProduct(_ context.Context, p *domain.Product) (int64, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	m.products = append(m.products, p)
	return int64(len(m.products)), nil
}

func (m *mockRepo) Close() error { return nil }

type mockCache struct {
	m           sync.Mutex
	products    []*domain.Product
	invalidated int
}

func (m *mockCache) Get(context.Context) ([]*domain.Product, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.products == nil {
		return nil, ErrCacheMiss
	}
	return m.products, nil
}

func (m *mockCache) Set(_ context.Context, products []*domain.Product) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.products = products
	return nil
}

func (m *mockCache) Invalidate(context.Context) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.products = nil
	m.invalidated++
	return nil
}

func (m *mockCache) invalidations() int {
	m.m.Lock()
	defer m.m.Unlock()
	return m.invalidated
}

func TestListProducts_CacheHitSkipsRepo(t *testing.T) {
	repo := &mockRepo{}
	cache := &mockCache{products: testProducts()}
	svc := NewService(repo, cache)

	products, err := svc.ListProducts(context.Background())
	require.NoError(t, err)
	assert.Len(t, products, 2)
	assert.Zero(t, repo.listed)
}

func TestListProducts_CacheMissFillsCache(t *testing.T) {
	repo := &mockRepo{products: testProducts()}
	cache := &mockCache{}
	svc := NewService(repo, cache)

	products, err := svc.ListProducts(context.Background())
	require.NoError(t, err)
	assert.Len(t, products, 2)

	// Cache set is async
	require.Eventually(t, func() bool {
		got, err := cache.Get(context.Background())
		return err == nil && len(got) == 2
	}, time.Second, 5*time.Millisecond)
}

func TestListProducts_RepoError(t *testing.T) {
	repo := &mockRepo{err: errors.New("disk gone")}
	svc := NewService(repo, &mockCache{})

	_, err := svc.ListProducts(context.Background())
	assert.ErrorContains(t, err, "disk gone")
}

func TestProductAt(t *testing.T) {
	svc := NewService(&mockRepo{}, &mockCache{products: testProducts()})

	p, err := svc.ProductAt(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Milk 1L", p.Name)

	p, err = svc.ProductAt(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "Eggs 12pk", p.Name)

	_, err = svc.ProductAt(context.Background(), 3)
	assert.ErrorIs(t, err, ErrProductNotFound)

	_, err = svc.ProductAt(context.Background(), 0)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestUpsert_InvalidatesCache(t *testing.T) {
	repo := &mockRepo{}
	cache := &mockCache{products: testProducts()}
	svc := NewService(repo, cache)

	_, err := svc.UpsertProduct(context.Background(), &domain.Product{SKU: "1", Name: "Bread", Price: 1.20})
	require.NoError(t, err)
	assert.Equal(t, 1, cache.invalidations())
}
