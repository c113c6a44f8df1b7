package queries

import (
	"context"
	"fmt"

	"github.com/light-bringer/pricefeed-service/internal/app/catalog/contracts"
	"github.com/light-bringer/pricefeed-service/internal/app/catalog/domain"
)

const productLimit = 1000

// AttributeQuery filters on one attribute key; the value uses the same
// filter syntax as the top-level fields.
type AttributeQuery struct {
	Key   string
	Value string
}

// ProductQuery is a client-facing product filter. Nil fields are not
// applied; set fields go through ParseMatch.
type ProductQuery struct {
	VendorName    *string
	Service       *string
	ProductFamily *string
	Region        *string
	Attributes    []AttributeQuery
}

// PriceQuery filters the prices of a matched product. All fields are
// optional and follow the same syntax as ProductQuery.
type PriceQuery struct {
	PurchaseOption     *string
	Unit               *string
	USD                *string
	CNY                *string
	EffectiveStartDate *string
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

// Service answers catalog read queries over a product finder.
type Service struct {
	finder contracts.Finder
}

// NewService creates a query Service.
func NewService(finder contracts.Finder) *Service {
	return &Service{finder: finder}
}

// Products returns products matching the query, prices eagerly loaded,
// capped at a fixed limit.
func (s *Service) Products(ctx context.Context, q *ProductQuery) ([]*domain.Product, error) {
	filter := &contracts.ProductFilter{Limit: productLimit}
	if q != nil {
		if q.VendorName != nil {
			filter.VendorName = ParseMatch(*q.VendorName)
		}
		if q.Service != nil {
			filter.Service = ParseMatch(*q.Service)
		}
		if q.ProductFamily != nil {
			filter.ProductFamily = ParseMatch(*q.ProductFamily)
		}
		if q.Region != nil {
			filter.Region = ParseMatch(*q.Region)
		}
		for _, attr := range q.Attributes {
			filter.AttributeFilters = append(filter.AttributeFilters, contracts.AttributeFilter{
				Key:   attr.Key,
				Match: *ParseMatch(attr.Value),
			})
		}
	}
	return s.finder.FindProducts(ctx, filter)
}

// FilterPrices applies a price filter to an already-loaded product in
// memory. Unset price fields match the empty-string predicate.
func FilterPrices(product *domain.Product, q *PriceQuery) ([]domain.Price, error) {
	if q == nil {
		return product.Prices, nil
	}

	fields := []struct {
		name   string
		filter *string
		value  func(p *domain.Price) *string
	}{
		{"purchase_option", q.PurchaseOption, func(p *domain.Price) *string { return &p.PurchaseOption }},
		{"unit", q.Unit, func(p *domain.Price) *string { return &p.Unit }},
		{"usd", q.USD, func(p *domain.Price) *string { return p.USD }},
		{"cny", q.CNY, func(p *domain.Price) *string { return p.CNY }},
		{"effective_start_date", q.EffectiveStartDate, func(p *domain.Price) *string { return &p.EffectiveStartDate }},
		{"effective_date_end", q.EffectiveDateEnd, func(p *domain.Price) *string { return p.EffectiveDateEnd }},
		{"start_usage_amount", q.StartUsageAmount, func(p *domain.Price) *string { return p.StartUsageAmount }},
		{"end_usage_amount", q.EndUsageAmount, func(p *domain.Price) *string { return p.EndUsageAmount }},
		{"term_length", q.TermLength, func(p *domain.Price) *string { return p.TermLength }},
		{"term_purchase_option", q.TermPurchaseOption, func(p *domain.Price) *string { return p.TermPurchaseOption }},
		{"term_offering_class", q.TermOfferingClass, func(p *domain.Price) *string { return p.TermOfferingClass }},
		{"description", q.Description, func(p *domain.Price) *string { return p.Description }},
		{"tier_model", q.TierModel, func(p *domain.Price) *string { return p.TierModel }},
		{"country", q.Country, func(p *domain.Price) *string { return p.Country }},
		{"currency", q.Currency, func(p *domain.Price) *string { return p.Currency }},
		{"part_number", q.PartNumber, func(p *domain.Price) *string { return p.PartNumber }},
	}

	var out []domain.Price
	for i := range product.Prices {
		price := &product.Prices[i]
		keep := true
		for _, f := range fields {
			if f.filter == nil {
				continue
			}
			ok, err := evalMatch(ParseMatch(*f.filter), f.value(price))
			if err != nil {
				return nil, fmt.Errorf("price filter %s: %w", f.name, err)
			}
			if !ok {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, *price)
		}
	}
	return out, nil
}
