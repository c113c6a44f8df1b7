package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/pricefeed-service/internal/app/catalog/contracts"
	"github.com/light-bringer/pricefeed-service/internal/app/catalog/domain"
	"github.com/light-bringer/pricefeed-service/internal/app/catalog/queries"
)

type stubFinder struct {
	filter   *contracts.ProductFilter
	products []*domain.Product
}

func (f *stubFinder) FindProducts(_ context.Context, filter *contracts.ProductFilter) ([]*domain.Product, error) {
	f.filter = filter
	return f.products, nil
}

func (f *stubFinder) GetByHash(context.Context, string) (*domain.Product, error) {
	return nil, domain.ErrProductNotFound
}

func strPtr(s string) *string { return &s }

func newTestHandler(finder *stubFinder) *CatalogHandler {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewCatalogHandler(queries.NewService(finder), log)
}

func TestCatalogHandlerListsProducts(t *testing.T) {
	region := "us-east1"
	finder := &stubFinder{products: []*domain.Product{{
		ProductHash:   "abc",
		SKU:           "SKU-1",
		VendorName:    "gcp",
		Region:        &region,
		Service:       "Compute Engine",
		ProductFamily: "Compute",
		Attributes:    map[string]string{"description": "N2 Instance Core"},
		Prices: []domain.Price{
			{PriceHash: "p1", PurchaseOption: "on_demand", Unit: "Hours", USD: strPtr("0.05")},
			{PriceHash: "p2", PurchaseOption: "preemptible", Unit: "Hours", USD: strPtr("0.01")},
		},
	}}}
	handler := newTestHandler(finder)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products?vendor_name=gcp&region=/^us-/i&attr.description=/Core/&price.purchase_option=on_demand", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp ListProductsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Products, 1)
	assert.Equal(t, 1, resp.TotalCount)
	assert.Equal(t, "abc", resp.Products[0].ProductHash)
	require.Len(t, resp.Products[0].Prices, 1)
	assert.Equal(t, "p1", resp.Products[0].Prices[0].PriceHash)

	// filter syntax reached the store filter
	require.NotNil(t, finder.filter)
	require.NotNil(t, finder.filter.Region)
	assert.Equal(t, "(?i)^us-", *finder.filter.Region.Regex)
	require.Len(t, finder.filter.AttributeFilters, 1)
	assert.Equal(t, "description", finder.filter.AttributeFilters[0].Key)
}

func TestCatalogHandlerEmptyParamMatchesUnset(t *testing.T) {
	finder := &stubFinder{}
	handler := newTestHandler(finder)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products?region=", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, finder.filter)
	require.NotNil(t, finder.filter.Region)
	assert.True(t, finder.filter.Region.EmptyOrNull)
}

func TestCatalogHandlerRejectsUnknownPriceField(t *testing.T) {
	handler := newTestHandler(&stubFinder{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products?price.color=red", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCatalogHandlerMethodNotAllowed(t *testing.T) {
	handler := newTestHandler(&stubFinder{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/products", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
