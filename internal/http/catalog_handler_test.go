package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Annan-Ogero/nexusmarket-pro/internal/catalog"
	"github.com/Annan-Ogero/nexusmarket-pro/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type catalogMock struct {
	products []*domain.Product
	err      error
	upserted []*domain.Product
}

func (m *catalogMock) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.products, nil
}

func (m *catalogMock) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, p := range m.products {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, catalog.ErrProductNotFound
}

func (m *catalogMock) GetProductBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, p := range m.products {
		if p.SKU == sku {
			return p, nil
		}
	}
	return nil, catalog.ErrProductNotFound
}

func (m *catalogMock) UpsertProduct(ctx context.Context, product *domain.Product) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.upserted = append(m.upserted, product)
	return int64(len(m.upserted)), nil
}

func storeCatalog() *catalogMock {
	return &catalogMock{products: []*domain.Product{
		{ID: 1, SKU: "MILK-1L", Name: "Whole Milk 1L", Price: 1.50, Stock: 40},
		{ID: 2, SKU: "EGGS-12", Name: "Eggs Dozen", Price: 3.00, Stock: 12},
	}}
}

func TestCatalogList(t *testing.T) {
	handler := NewCatalogHandler(storeCatalog(), 5*time.Second)
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("GET", "/api/v1/catalog", nil)

	handler.List(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)
	var resp ProductsResponse
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
	require.Len(t, resp.Products, 2)
	assert.Equal(t, "MILK-1L", resp.Products[0].SKU)
	assert.Equal(t, 1.50, resp.Products[0].Price)
}

func TestCatalogList_Empty(t *testing.T) {
	handler := NewCatalogHandler(&catalogMock{}, 5*time.Second)
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("GET", "/api/v1/catalog", nil)

	handler.List(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `{"products":[]}`, recorder.Body.String())
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestCatalogGet(t *testing.T) {
	handler := NewCatalogHandler(storeCatalog(), 5*time.Second)
	recorder := httptest.NewRecorder()
	request := withURLParam(httptest.NewRequest("GET", "/api/v1/catalog/2", nil), "product_id", "2")

	handler.Get(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)
	var product domain.Product
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&product))
	assert.Equal(t, "Eggs Dozen", product.Name)
}

func TestCatalogGet_NotFound(t *testing.T) {
	handler := NewCatalogHandler(storeCatalog(), 5*time.Second)
	recorder := httptest.NewRecorder()
	request := withURLParam(httptest.NewRequest("GET", "/api/v1/catalog/99", nil), "product_id", "99")

	handler.Get(recorder, request)

	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestCatalogGet_InvalidID(t *testing.T) {
	handler := NewCatalogHandler(storeCatalog(), 5*time.Second)
	recorder := httptest.NewRecorder()
	request := withURLParam(httptest.NewRequest("GET", "/api/v1/catalog/abc", nil), "product_id", "abc")

	handler.Get(recorder, request)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestCatalogUpsert(t *testing.T) {
	mock := storeCatalog()
	handler := NewCatalogHandler(mock, 5*time.Second)
	recorder := httptest.NewRecorder()
	body := bytes.NewBufferString(`{"sku":"BREAD-W","name":"White Bread","price":2.20,"stock":8}`)
	request := httptest.NewRequest("POST", "/api/v1/catalog", body)

	handler.Upsert(recorder, request)

	require.Equal(t, http.StatusCreated, recorder.Code)
	require.Len(t, mock.upserted, 1)
	assert.Equal(t, "BREAD-W", mock.upserted[0].SKU)
}

func TestCatalogUpsert_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
		code string
	}{
		{"missing sku", `{"name":"x","price":1}`, "invalid_sku"},
		{"missing name", `{"sku":"X","price":1}`, "invalid_name"},
		{"zero price", `{"sku":"X","name":"x","price":0}`, "invalid_price"},
		{"negative stock", `{"sku":"X","name":"x","price":1,"stock":-1}`, "invalid_stock"},
		{"bad json", `{`, "invalid_request"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewCatalogHandler(storeCatalog(), 5*time.Second)
			recorder := httptest.NewRecorder()
			request := httptest.NewRequest("POST", "/api/v1/catalog", bytes.NewBufferString(tt.body))

			handler.Upsert(recorder, request)

			require.Equal(t, http.StatusBadRequest, recorder.Code)
			var resp ErrorResponse
			require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
			assert.Equal(t, tt.code, resp.Code)
		})
	}
}
