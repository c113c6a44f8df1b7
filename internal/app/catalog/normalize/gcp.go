package normalize

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/light-bringer/pricefeed-service/internal/app/catalog/domain"
)

// VendorGCP is the canonical vendor name written by the GCP normalizer.
const VendorGCP = "gcp"

// GCP raw shapes follow the Cloud Billing catalog JSON, one document per
// service. int64 money units arrive as JSON strings, nanos as numbers.

type GCPCatalogDocument struct {
	SKUs []GCPSKU `json:"skus"`
}

type GCPSKU struct {
	SKUID          string           `json:"skuId"`
	Description    string           `json:"description"`
	ServiceRegions []string         `json:"serviceRegions"`
	Category       GCPCategory      `json:"category"`
	PricingInfo    []GCPPricingInfo `json:"pricingInfo"`
}

type GCPCategory struct {
	ServiceDisplayName string `json:"serviceDisplayName"`
	ResourceFamily     string `json:"resourceFamily"`
	ResourceGroup      string `json:"resourceGroup"`
	UsageType          string `json:"usageType"`
}

type GCPPricingInfo struct {
	EffectiveTime     string               `json:"effectiveTime"`
	PricingExpression GCPPricingExpression `json:"pricingExpression"`
}

type GCPPricingExpression struct {
	UsageUnitDescription string          `json:"usageUnitDescription"`
	TieredRates          []GCPTieredRate `json:"tieredRates"`
}

type GCPTieredRate struct {
	StartUsageAmount json.Number `json:"startUsageAmount"`
	UnitPrice        GCPMoney    `json:"unitPrice"`
}

type GCPMoney struct {
	CurrencyCode string `json:"currencyCode"`
	Units        int64  `json:"units,string"`
	Nanos        int64  `json:"nanos"`
}

// GCPNormalizer maps Cloud Billing catalog documents into canonical
// products. Attribute keys it writes: description, resource_group.
type GCPNormalizer struct {
	log *slog.Logger
}

// NewGCP creates a GCP catalog normalizer.
func NewGCP(log *slog.Logger) *GCPNormalizer {
	return &GCPNormalizer{log: log}
}

// Normalize expands every SKU across its service regions: a SKU spanning N
// regions becomes N products with distinct hashes and identical attributes,
// each carrying its own copy of the price list. SKUs without regions are
// global and get a single product with a nil region.
//
// A malformed SKU is logged and skipped; it never aborts the document.
func (n *GCPNormalizer) Normalize(doc []byte) ([]*domain.Product, error) {
	var catalog GCPCatalogDocument
	if err := json.Unmarshal(doc, &catalog); err != nil {
		return nil, fmt.Errorf("decoding gcp catalog document: %w", err)
	}

	products := make([]*domain.Product, 0, len(catalog.SKUs))
	for _, sku := range catalog.SKUs {
		if sku.SKUID == "" {
			n.log.Warn("skipping gcp sku without id", "description", sku.Description)
			continue
		}
		if len(sku.ServiceRegions) == 0 {
			products = append(products, n.product(sku, nil))
			continue
		}
		for _, region := range sku.ServiceRegions {
			region := region
			products = append(products, n.product(sku, &region))
		}
	}
	return products, nil
}

func (n *GCPNormalizer) product(sku GCPSKU, region *string) *domain.Product {
	hash := domain.ProductHash(VendorGCP, region, sku.SKUID)
	return &domain.Product{
		ProductHash:   hash,
		SKU:           sku.SKUID,
		VendorName:    VendorGCP,
		Region:        region,
		Service:       sku.Category.ServiceDisplayName,
		ProductFamily: sku.Category.ResourceFamily,
		Attributes: map[string]string{
			"description":    sku.Description,
			"resource_group": sku.Category.ResourceGroup,
		},
		Prices: n.prices(hash, sku),
	}
}

// prices flattens tiered rates into canonical price rows. Each tier's end
// usage amount is the next tier's start amount; the last tier is open-ended
// and gets none. This lookahead pairing is the contract tier selection
// depends on downstream.
func (n *GCPNormalizer) prices(productHash string, sku GCPSKU) []domain.Price {
	var prices []domain.Price
	for _, info := range sku.PricingInfo {
		rates := info.PricingExpression.TieredRates
		for i, tier := range rates {
			start := tier.StartUsageAmount.String()
			if start == "" {
				start = "0"
			}
			var end *string
			if i+1 < len(rates) {
				next := rates[i+1].StartUsageAmount.String()
				end = &next
			}
			usd := formatUnitPrice(tier.UnitPrice)
			price := domain.Price{
				ProductHash:        productHash,
				PurchaseOption:     sku.Category.UsageType,
				Unit:               info.PricingExpression.UsageUnitDescription,
				USD:                &usd,
				EffectiveStartDate: info.EffectiveTime,
				StartUsageAmount:   &start,
				EndUsageAmount:     end,
			}
			price.PriceHash = domain.PriceHash(productHash, price)
			prices = append(prices, price)
		}
	}
	return prices
}

// formatUnitPrice joins integer units and fractional nanos textually.
// Going through a float here would lose precision on nano-denominated
// rates, so the amount is formatted, not converted.
func formatUnitPrice(m GCPMoney) string {
	return fmt.Sprintf("%d.%09d", m.Units, m.Nanos)
}
