package synth

import (
	"context"
	"io"
	"log/slog"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/pricefeed-service/internal/app/catalog/contracts"
	"github.com/light-bringer/pricefeed-service/internal/app/catalog/domain"
	"github.com/light-bringer/pricefeed-service/internal/pkg/clock"
)

// stubFinder answers FindProducts from a fixed slice using the same match
// semantics as the store: exact compares literally, regex runs RE2 against
// the value with a missing attribute reading as "".
type stubFinder struct {
	products []*domain.Product
	lastErr  error
}

func (f *stubFinder) FindProducts(_ context.Context, filter *contracts.ProductFilter) ([]*domain.Product, error) {
	if f.lastErr != nil {
		return nil, f.lastErr
	}
	var out []*domain.Product
	for _, p := range f.products {
		if !matchField(filter.VendorName, p.VendorName) ||
			!matchField(filter.Service, p.Service) ||
			!matchField(filter.ProductFamily, p.ProductFamily) {
			continue
		}
		region := ""
		if p.Region != nil {
			region = *p.Region
		}
		if !matchField(filter.Region, region) {
			continue
		}
		ok := true
		for _, af := range filter.AttributeFilters {
			if !matchField(&af.Match, p.Attributes[af.Key]) {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		out = append(out, p)
		if filter.Limit > 0 && int64(len(out)) >= filter.Limit {
			break
		}
	}
	return out, nil
}

func (f *stubFinder) GetByHash(_ context.Context, hash string) (*domain.Product, error) {
	for _, p := range f.products {
		if p.ProductHash == hash {
			return p, nil
		}
	}
	return nil, domain.ErrProductNotFound
}

func matchField(m *contracts.Match, value string) bool {
	if m == nil {
		return true
	}
	if m.EmptyOrNull {
		return value == ""
	}
	if m.Exact != nil {
		return value == *m.Exact
	}
	if m.Regex != nil {
		re, err := regexp.Compile(*m.Regex)
		if err != nil {
			return false
		}
		return re.MatchString(value)
	}
	return true
}

func strPtr(s string) *string { return &s }

func referenceProduct(region, description, usd, effective string) *domain.Product {
	sku := "ref-" + description
	hash := domain.ProductHash("gcp", &region, sku)
	price := domain.Price{
		ProductHash:        hash,
		PurchaseOption:     PurchaseOptionOnDemand,
		Unit:               "Hours",
		USD:                &usd,
		EffectiveStartDate: effective,
	}
	price.PriceHash = domain.PriceHash(hash, price)
	return &domain.Product{
		ProductHash:   hash,
		SKU:           sku,
		VendorName:    "gcp",
		Region:        &region,
		Service:       "Compute Engine",
		ProductFamily: "Compute",
		Attributes:    map[string]string{"description": description},
		Prices:        []domain.Price{price},
	}
}

func newTestSynthesizer(finder contracts.Finder) *Synthesizer {
	clk := clock.NewMockClock(time.Date(2023, 4, 1, 12, 0, 0, 0, time.UTC))
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewSynthesizer(finder, clk, log)
}

func TestSynthesizerProduct(t *testing.T) {
	s := newTestSynthesizer(&stubFinder{})

	product := s.Product("us-east1", MachineType{Name: "n2-standard-4", GuestCPUs: 4, MemoryMB: 16384})

	assert.Equal(t, "gcp-machine-type-generated-n2-standard-4", product.SKU)
	assert.Equal(t, "gcp", product.VendorName)
	require.NotNil(t, product.Region)
	assert.Equal(t, "us-east1", *product.Region)
	assert.Equal(t, "Compute Engine", product.Service)
	assert.Equal(t, "Compute Instance", product.ProductFamily)
	assert.Equal(t, "n2-standard-4", product.Attributes["machine_type"])
	assert.Equal(t, domain.ProductHash("gcp", product.Region, product.SKU), product.ProductHash)
}

func TestSynthesizerPriceFromComponents(t *testing.T) {
	finder := &stubFinder{products: []*domain.Product{
		referenceProduct("us-east1", "N2 Instance Core running in Virginia", "0.05", "2023-01-01T00:00:00Z"),
		referenceProduct("us-east1", "N2 Instance Ram running in Virginia", "0.01", "2023-02-01T00:00:00Z"),
	}}
	s := newTestSynthesizer(finder)
	mt := MachineType{Name: "n2-standard-4", GuestCPUs: 4, MemoryMB: 16384}
	product := s.Product("us-east1", mt)

	price, err := s.Price(context.Background(), product, mt, PurchaseOptionOnDemand)
	require.NoError(t, err)
	require.NotNil(t, price)

	// 4 * 0.05 + 16 * 0.01
	require.NotNil(t, price.USD)
	assert.Equal(t, "0.36", *price.USD)
	assert.Equal(t, "Hours", price.Unit)
	assert.Equal(t, PurchaseOptionOnDemand, price.PurchaseOption)
	assert.Equal(t, product.ProductHash, price.ProductHash)
	assert.Equal(t, domain.PriceHash(product.ProductHash, *price), price.PriceHash)
	// earlier of the two component dates
	assert.Equal(t, "2023-01-01T00:00:00Z", price.EffectiveStartDate)
}

func TestSynthesizerPriceSharedCoreOverride(t *testing.T) {
	finder := &stubFinder{products: []*domain.Product{
		referenceProduct("us-east1", "E2 Instance Core running in Virginia", "0.02", "2023-01-01T00:00:00Z"),
		referenceProduct("us-east1", "E2 Instance Ram running in Virginia", "0.004", "2023-01-01T00:00:00Z"),
	}}
	s := newTestSynthesizer(finder)
	// e2-micro exposes 2 vCPUs but bills 0.25
	mt := MachineType{Name: "e2-micro", GuestCPUs: 2, MemoryMB: 1024}
	product := s.Product("us-east1", mt)

	price, err := s.Price(context.Background(), product, mt, PurchaseOptionOnDemand)
	require.NoError(t, err)
	require.NotNil(t, price)

	// 0.25 * 0.02 + 1 * 0.004
	assert.Equal(t, "0.009", *price.USD)
}

func TestSynthesizerPriceFlatRate(t *testing.T) {
	finder := &stubFinder{products: []*domain.Product{
		referenceProduct("us-east1", "Micro Instance with burstable CPU running in Virginia", "0.0076", "2023-01-01T00:00:00Z"),
	}}
	s := newTestSynthesizer(finder)
	mt := MachineType{Name: "f1-micro", GuestCPUs: 1, MemoryMB: 614}
	product := s.Product("us-east1", mt)

	price, err := s.Price(context.Background(), product, mt, PurchaseOptionOnDemand)
	require.NoError(t, err)
	require.NotNil(t, price)
	assert.Equal(t, "0.0076", *price.USD)
	assert.Equal(t, "2023-01-01T00:00:00Z", price.EffectiveStartDate)
}

func TestSynthesizerPricePreemptiblePrefix(t *testing.T) {
	finder := &stubFinder{products: []*domain.Product{
		referenceProduct("us-east1", "N2 Instance Core running in Virginia", "0.05", "2023-01-01T00:00:00Z"),
		referenceProduct("us-east1", "N2 Instance Ram running in Virginia", "0.01", "2023-01-01T00:00:00Z"),
		referenceProduct("us-east1", "Spot Preemptible N2 Instance Core running in Virginia", "0.012", "2023-01-01T00:00:00Z"),
		referenceProduct("us-east1", "Spot Preemptible N2 Instance Ram running in Virginia", "0.002", "2023-01-01T00:00:00Z"),
	}}
	s := newTestSynthesizer(finder)
	mt := MachineType{Name: "n2-standard-2", GuestCPUs: 2, MemoryMB: 8192}
	product := s.Product("us-east1", mt)

	price, err := s.Price(context.Background(), product, mt, PurchaseOptionPreemptible)
	require.NoError(t, err)
	require.NotNil(t, price)

	// 2 * 0.012 + 8 * 0.002, from the Spot Preemptible SKUs only
	assert.Equal(t, "0.04", *price.USD)
	assert.Equal(t, PurchaseOptionPreemptible, price.PurchaseOption)
}

func TestSynthesizerPriceMissingReference(t *testing.T) {
	finder := &stubFinder{products: []*domain.Product{
		referenceProduct("us-east1", "N2 Instance Core running in Virginia", "0.05", "2023-01-01T00:00:00Z"),
		// no RAM reference in this region
	}}
	s := newTestSynthesizer(finder)
	mt := MachineType{Name: "n2-standard-4", GuestCPUs: 4, MemoryMB: 16384}
	product := s.Product("us-east1", mt)

	price, err := s.Price(context.Background(), product, mt, PurchaseOptionOnDemand)
	require.NoError(t, err)
	assert.Nil(t, price)
}

func TestSynthesizerPriceUnknownSeries(t *testing.T) {
	s := newTestSynthesizer(&stubFinder{})
	mt := MachineType{Name: "t2d-standard-1", GuestCPUs: 1, MemoryMB: 4096}
	product := s.Product("us-east1", mt)

	price, err := s.Price(context.Background(), product, mt, PurchaseOptionOnDemand)
	require.NoError(t, err)
	assert.Nil(t, price)
}

func TestSynthesizerPriceOpenTierSelection(t *testing.T) {
	ref := referenceProduct("us-east1", "N2 Instance Core running in Virginia", "0.05", "2023-01-01T00:00:00Z")
	// prepend a bounded tier; the open one must win
	bounded := ref.Prices[0]
	bounded.USD = strPtr("0.08")
	bounded.StartUsageAmount = strPtr("0")
	bounded.EndUsageAmount = strPtr("100")
	bounded.PriceHash = domain.PriceHash(ref.ProductHash, bounded)
	open := ref.Prices[0]
	open.StartUsageAmount = strPtr("100")
	open.PriceHash = domain.PriceHash(ref.ProductHash, open)
	ref.Prices = []domain.Price{bounded, open}

	finder := &stubFinder{products: []*domain.Product{
		ref,
		referenceProduct("us-east1", "N2 Instance Ram running in Virginia", "0.01", "2023-01-01T00:00:00Z"),
	}}
	s := newTestSynthesizer(finder)
	mt := MachineType{Name: "n2-standard-2", GuestCPUs: 2, MemoryMB: 4096}
	product := s.Product("us-east1", mt)

	price, err := s.Price(context.Background(), product, mt, PurchaseOptionOnDemand)
	require.NoError(t, err)
	require.NotNil(t, price)

	// 2 * 0.05 + 4 * 0.01 using the unbounded tier rate
	assert.Equal(t, "0.14", *price.USD)
}

func TestSynthesizerPriceClockFallback(t *testing.T) {
	finder := &stubFinder{products: []*domain.Product{
		referenceProduct("us-east1", "N2 Instance Core running in Virginia", "0.05", ""),
		referenceProduct("us-east1", "N2 Instance Ram running in Virginia", "0.01", "2023-01-01T00:00:00Z"),
	}}
	s := newTestSynthesizer(finder)
	mt := MachineType{Name: "n2-standard-4", GuestCPUs: 4, MemoryMB: 16384}
	product := s.Product("us-east1", mt)

	price, err := s.Price(context.Background(), product, mt, PurchaseOptionOnDemand)
	require.NoError(t, err)
	require.NotNil(t, price)
	assert.Equal(t, "2023-04-01T12:00:00Z", price.EffectiveStartDate)
}
