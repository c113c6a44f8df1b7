package repo

import (
	"fmt"

	"cloud.google.com/go/spanner"

	"github.com/light-bringer/pricefeed-service/internal/app/catalog/domain"
	"github.com/light-bringer/pricefeed-service/internal/models/m_price"
	"github.com/light-bringer/pricefeed-service/internal/models/m_product"
)

func productToData(p *domain.Product) *m_product.Data {
	attributes := spanner.NullJSON{}
	if p.Attributes != nil {
		attributes = spanner.NullJSON{Value: p.Attributes, Valid: true}
	}
	return &m_product.Data{
		ProductHash:   p.ProductHash,
		SKU:           p.SKU,
		VendorName:    p.VendorName,
		Region:        nullString(p.Region),
		Service:       p.Service,
		ProductFamily: p.ProductFamily,
		Attributes:    attributes,
	}
}

func dataToDomain(data *m_product.Data) (*domain.Product, error) {
	attributes, err := attributesFromJSON(data.Attributes)
	if err != nil {
		return nil, fmt.Errorf("product %s: %w", data.ProductHash, err)
	}
	return &domain.Product{
		ProductHash:   data.ProductHash,
		SKU:           data.SKU,
		VendorName:    data.VendorName,
		Region:        stringPtr(data.Region),
		Service:       data.Service,
		ProductFamily: data.ProductFamily,
		Attributes:    attributes,
	}, nil
}

func priceToData(p *domain.Price) *m_price.Data {
	return &m_price.Data{
		ProductHash:        p.ProductHash,
		PriceHash:          p.PriceHash,
		PurchaseOption:     p.PurchaseOption,
		Unit:               p.Unit,
		USD:                nullString(p.USD),
		CNY:                nullString(p.CNY),
		EffectiveStartDate: p.EffectiveStartDate,
		EffectiveDateEnd:   nullString(p.EffectiveDateEnd),
		StartUsageAmount:   nullString(p.StartUsageAmount),
		EndUsageAmount:     nullString(p.EndUsageAmount),
		TermLength:         nullString(p.TermLength),
		TermPurchaseOption: nullString(p.TermPurchaseOption),
		TermOfferingClass:  nullString(p.TermOfferingClass),
		Description:        nullString(p.Description),
		TierModel:          nullString(p.TierModel),
		Country:            nullString(p.Country),
		Currency:           nullString(p.Currency),
		PartNumber:         nullString(p.PartNumber),
	}
}

func priceToDomain(data *m_price.Data) *domain.Price {
	return &domain.Price{
		ProductHash:        data.ProductHash,
		PriceHash:          data.PriceHash,
		PurchaseOption:     data.PurchaseOption,
		Unit:               data.Unit,
		USD:                stringPtr(data.USD),
		CNY:                stringPtr(data.CNY),
		EffectiveStartDate: data.EffectiveStartDate,
		EffectiveDateEnd:   stringPtr(data.EffectiveDateEnd),
		StartUsageAmount:   stringPtr(data.StartUsageAmount),
		EndUsageAmount:     stringPtr(data.EndUsageAmount),
		TermLength:         stringPtr(data.TermLength),
		TermPurchaseOption: stringPtr(data.TermPurchaseOption),
		TermOfferingClass:  stringPtr(data.TermOfferingClass),
		Description:        stringPtr(data.Description),
		TierModel:          stringPtr(data.TierModel),
		Country:            stringPtr(data.Country),
		Currency:           stringPtr(data.Currency),
		PartNumber:         stringPtr(data.PartNumber),
	}
}

// attributesFromJSON flattens the decoded JSON mapping back to strings.
// Numeric values are kept as their JSON token text.
func attributesFromJSON(nj spanner.NullJSON) (map[string]string, error) {
	if !nj.Valid || nj.Value == nil {
		return nil, nil
	}
	raw, ok := nj.Value.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("attributes column is not a JSON object")
	}
	attributes := make(map[string]string, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case string:
			attributes[k] = val
		default:
			attributes[k] = fmt.Sprint(val)
		}
	}
	return attributes, nil
}

func nullString(s *string) spanner.NullString {
	if s == nil {
		return spanner.NullString{}
	}
	return spanner.NullString{StringVal: *s, Valid: true}
}

func stringPtr(ns spanner.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.StringVal
	return &s
}
