package domain

// Product is a priceable vendor SKU scoped to a region. Identity is the
// (vendor, region, sku) triple: the same SKU offered in two regions is two
// distinct products. Global products carry a nil region.
//
// Attributes is an open string mapping of vendor-specific metadata. Each
// normalizer documents the keys it writes; the store's attribute predicate
// matches against these values.
type Product struct {
	ProductHash   string
	SKU           string
	VendorName    string
	Region        *string
	Service       string
	ProductFamily string
	Attributes    map[string]string
	Prices        []Price
}

// Price is one pricing line for a product under a specific purchase option
// and usage tier. A nil EndUsageAmount marks the open (unbounded) tier.
type Price struct {
	PriceHash          string
	ProductHash        string
	PurchaseOption     string
	Unit               string
	USD                *string
	CNY                *string
	EffectiveStartDate string
	EffectiveDateEnd   *string
	StartUsageAmount   *string
	EndUsageAmount     *string
	TermLength         *string
	TermPurchaseOption *string
	TermOfferingClass  *string
	Description        *string
	TierModel          *string
	Country            *string
	Currency           *string
	PartNumber         *string
}

// OpenTierPrice returns the price representing the steady-state rate: the
// tier with no upper usage bound, or the first price when every tier is
// bounded. Returns nil for a product without prices.
func (p *Product) OpenTierPrice() *Price {
	for i := range p.Prices {
		if p.Prices[i].EndUsageAmount == nil {
			return &p.Prices[i]
		}
	}
	if len(p.Prices) > 0 {
		return &p.Prices[0]
	}
	return nil
}
