package testutil

import (
	"context"
	"testing"

	"cloud.google.com/go/spanner"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/pricefeed-service/internal/app/catalog/domain"
	"github.com/light-bringer/pricefeed-service/internal/app/catalog/repo"
)

// StrPtr returns a pointer to s.
func StrPtr(s string) *string {
	return &s
}

// NewProduct builds a catalog product with its hash computed.
func NewProduct(vendor string, region *string, sku, service, family string, attributes map[string]string) *domain.Product {
	return &domain.Product{
		ProductHash:   domain.ProductHash(vendor, region, sku),
		SKU:           sku,
		VendorName:    vendor,
		Region:        region,
		Service:       service,
		ProductFamily: family,
		Attributes:    attributes,
	}
}

// AddPrice appends a price to the product with its hash computed.
func AddPrice(product *domain.Product, price domain.Price) *domain.Product {
	price.ProductHash = product.ProductHash
	price.PriceHash = domain.PriceHash(product.ProductHash, price)
	product.Prices = append(product.Prices, price)
	return product
}

// NewReferenceProduct builds a compute component product (CPU or RAM rate)
// the derived price tests look up by description.
func NewReferenceProduct(region, description, usd string) *domain.Product {
	product := NewProduct("gcp", &region, "ref-"+description, "Compute Engine", "Compute",
		map[string]string{"description": description})
	return AddPrice(product, domain.Price{
		PurchaseOption:     "on_demand",
		Unit:               "Hours",
		USD:                &usd,
		EffectiveStartDate: "2023-01-01T00:00:00Z",
	})
}

// PersistProduct writes a product and its prices directly to the database.
func PersistProduct(t *testing.T, client *spanner.Client, product *domain.Product) {
	t.Helper()

	ctx := context.Background()
	catalogRepo := repo.NewCatalogRepo(client)

	muts := make([]*spanner.Mutation, 0, 1+len(product.Prices))
	mut, err := catalogRepo.UpsertProductMut(product)
	require.NoError(t, err, "failed to build product mutation")
	muts = append(muts, mut)

	for i := range product.Prices {
		mut, err := catalogRepo.UpsertPriceMut(&product.Prices[i])
		require.NoError(t, err, "failed to build price mutation")
		muts = append(muts, mut)
	}

	_, err = client.Apply(ctx, muts)
	require.NoError(t, err, "failed to persist test product")
}

// FetchProduct reads a product with prices back through the repository.
func FetchProduct(t *testing.T, client *spanner.Client, hash string) *domain.Product {
	t.Helper()

	catalogRepo := repo.NewCatalogRepo(client)
	product, err := catalogRepo.GetByHash(context.Background(), hash)
	require.NoError(t, err, "failed to fetch product %s", hash)
	return product
}
