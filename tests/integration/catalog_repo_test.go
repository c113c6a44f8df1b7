//go:build integration

package integration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/pricefeed-service/internal/app/catalog/contracts"
	"github.com/light-bringer/pricefeed-service/internal/app/catalog/domain"
	"github.com/light-bringer/pricefeed-service/internal/app/catalog/repo"
	"github.com/light-bringer/pricefeed-service/tests/testutil"
)

func TestCatalogRepository_UpsertIsIdempotent(t *testing.T) {
	client, cleanup := testutil.SetupSpannerTest(t)
	defer cleanup()

	region := "us-east1"
	product := testutil.NewProduct("gcp", &region, "0001-AAAA-BBBB", "Compute Engine", "Compute",
		map[string]string{"description": "N2 Instance Core running in Virginia"})
	testutil.AddPrice(product, domain.Price{
		PurchaseOption:     "on_demand",
		Unit:               "Hours",
		USD:                testutil.StrPtr("0.031611000"),
		EffectiveStartDate: "2023-01-01T00:00:00Z",
	})

	testutil.PersistProduct(t, client, product)
	testutil.PersistProduct(t, client, product)

	testutil.AssertRowCount(t, client, "products", 1)
	testutil.AssertRowCount(t, client, "prices", 1)

	// re-ingesting with a changed field keeps one row, latest value wins
	product.Prices[0].USD = testutil.StrPtr("0.035000000")
	testutil.PersistProduct(t, client, product)

	testutil.AssertRowCount(t, client, "prices", 1)
	got := testutil.FetchProduct(t, client, product.ProductHash)
	require.Len(t, got.Prices, 1)
	assert.Equal(t, "0.035000000", *got.Prices[0].USD)
}

func TestCatalogRepository_GetByHashLoadsPrices(t *testing.T) {
	client, cleanup := testutil.SetupSpannerTest(t)
	defer cleanup()

	region := "eu-west1"
	product := testutil.NewProduct("aws", &region, "ABCDEF123456", "AmazonEC2", "Compute Instance",
		map[string]string{"instanceType": "m5.large"})
	testutil.AddPrice(product, domain.Price{PurchaseOption: "on_demand", Unit: "Hrs", USD: testutil.StrPtr("0.096")})
	testutil.AddPrice(product, domain.Price{
		PurchaseOption: "reserved",
		Unit:           "Hrs",
		USD:            testutil.StrPtr("0.060"),
		TermLength:     testutil.StrPtr("1yr"),
	})
	testutil.PersistProduct(t, client, product)

	got := testutil.FetchProduct(t, client, product.ProductHash)

	assert.Equal(t, "aws", got.VendorName)
	require.NotNil(t, got.Region)
	assert.Equal(t, "eu-west1", *got.Region)
	assert.Equal(t, "m5.large", got.Attributes["instanceType"])
	assert.Len(t, got.Prices, 2)
}

func TestCatalogRepository_GetByHashNotFound(t *testing.T) {
	client, cleanup := testutil.SetupSpannerTest(t)
	defer cleanup()

	catalogRepo := repo.NewCatalogRepo(client)
	_, err := catalogRepo.GetByHash(context.Background(), "no-such-hash")
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestCatalogRepository_FindProducts(t *testing.T) {
	client, cleanup := testutil.SetupSpannerTest(t)
	defer cleanup()

	usEast := "us-east1"
	euWest := "eu-west1"
	testutil.PersistProduct(t, client, testutil.NewReferenceProduct(usEast, "N2 Instance Core running in Virginia", "0.05"))
	testutil.PersistProduct(t, client, testutil.NewReferenceProduct(euWest, "N2 Instance Core running in Ireland", "0.06"))
	testutil.PersistProduct(t, client, testutil.NewProduct("gcp", nil, "GLOBAL-0001", "Cloud DNS", "Network", nil))

	ctx := context.Background()
	catalogRepo := repo.NewCatalogRepo(client)

	t.Run("exact region", func(t *testing.T) {
		got, err := catalogRepo.FindProducts(ctx, &contracts.ProductFilter{
			Region: contracts.Exact(usEast),
		})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, usEast, *got[0].Region)
		// prices come back eagerly
		require.Len(t, got[0].Prices, 1)
		assert.Equal(t, "0.05", *got[0].Prices[0].USD)
	})

	t.Run("attribute regex", func(t *testing.T) {
		got, err := catalogRepo.FindProducts(ctx, &contracts.ProductFilter{
			VendorName: contracts.Exact("gcp"),
			AttributeFilters: []contracts.AttributeFilter{
				{Key: "description", Match: *contracts.Regex("^N2 Instance Core")},
			},
		})
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("empty region matches null", func(t *testing.T) {
		got, err := catalogRepo.FindProducts(ctx, &contracts.ProductFilter{
			Region: &contracts.Match{EmptyOrNull: true},
		})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Cloud DNS", got[0].Service)
	})

	t.Run("limit", func(t *testing.T) {
		got, err := catalogRepo.FindProducts(ctx, &contracts.ProductFilter{
			VendorName: contracts.Exact("gcp"),
			Limit:      1,
		})
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})
}
