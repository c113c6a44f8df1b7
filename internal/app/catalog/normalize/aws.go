package normalize

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/light-bringer/pricefeed-service/internal/app/catalog/domain"
)

// VendorAWS is the canonical vendor name written by the AWS normalizer.
const VendorAWS = "aws"

// AWS raw shapes follow the bulk price list offer file: products keyed by
// SKU, terms keyed by term type, SKU and offer term code.

type AWSOfferDocument struct {
	OfferCode string                          `json:"offerCode"`
	Products  map[string]AWSProduct           `json:"products"`
	Terms     map[string]map[string]AWSTermSet `json:"terms"`
}

type AWSTermSet map[string]AWSTerm

type AWSProduct struct {
	SKU           string            `json:"sku"`
	ProductFamily string            `json:"productFamily"`
	Attributes    map[string]string `json:"attributes"`
}

type AWSTerm struct {
	EffectiveDate   string                       `json:"effectiveDate"`
	PriceDimensions map[string]AWSPriceDimension `json:"priceDimensions"`
	TermAttributes  map[string]string            `json:"termAttributes"`
}

type AWSPriceDimension struct {
	Description  string            `json:"description"`
	Unit         string            `json:"unit"`
	BeginRange   string            `json:"beginRange"`
	EndRange     string            `json:"endRange"`
	PricePerUnit map[string]string `json:"pricePerUnit"`
}

// AWSNormalizer maps bulk offer files into canonical products. The region
// comes from the regionCode product attribute; SKUs without one are global.
// Attribute keys are passed through from the offer file verbatim
// (instanceType, location, operatingSystem, ...).
type AWSNormalizer struct {
	log *slog.Logger
}

// NewAWS creates an AWS bulk offer normalizer.
func NewAWS(log *slog.Logger) *AWSNormalizer {
	return &AWSNormalizer{log: log}
}

// Normalize converts one offer file. Terms referencing a SKU missing from
// the products section are logged and skipped.
func (n *AWSNormalizer) Normalize(doc []byte) ([]*domain.Product, error) {
	var offer AWSOfferDocument
	if err := json.Unmarshal(doc, &offer); err != nil {
		return nil, fmt.Errorf("decoding aws offer document: %w", err)
	}

	byHash := make(map[string]*domain.Product, len(offer.Products))
	products := make([]*domain.Product, 0, len(offer.Products))
	for _, raw := range offer.Products {
		if raw.SKU == "" {
			n.log.Warn("skipping aws product without sku", "offer_code", offer.OfferCode)
			continue
		}
		product := n.product(offer.OfferCode, raw)
		byHash[raw.SKU] = product
		products = append(products, product)
	}

	for termType, skuTerms := range offer.Terms {
		purchaseOption := awsPurchaseOption(termType)
		for sku, terms := range skuTerms {
			product, ok := byHash[sku]
			if !ok {
				n.log.Warn("skipping aws term for unknown sku", "sku", sku, "term_type", termType)
				continue
			}
			for _, term := range terms {
				product.Prices = append(product.Prices, n.prices(product.ProductHash, purchaseOption, term)...)
			}
		}
	}
	return products, nil
}

func (n *AWSNormalizer) product(offerCode string, raw AWSProduct) *domain.Product {
	var region *string
	if code, ok := raw.Attributes["regionCode"]; ok && code != "" {
		region = &code
	}
	hash := domain.ProductHash(VendorAWS, region, raw.SKU)

	attributes := make(map[string]string, len(raw.Attributes))
	for k, v := range raw.Attributes {
		attributes[k] = v
	}

	return &domain.Product{
		ProductHash:   hash,
		SKU:           raw.SKU,
		VendorName:    VendorAWS,
		Region:        region,
		Service:       offerCode,
		ProductFamily: raw.ProductFamily,
		Attributes:    attributes,
	}
}

func (n *AWSNormalizer) prices(productHash, purchaseOption string, term AWSTerm) []domain.Price {
	prices := make([]domain.Price, 0, len(term.PriceDimensions))
	for _, dim := range term.PriceDimensions {
		dim := dim
		price := domain.Price{
			ProductHash:        productHash,
			PurchaseOption:     purchaseOption,
			Unit:               dim.Unit,
			EffectiveStartDate: term.EffectiveDate,
			Description:        &dim.Description,
		}
		if usd, ok := dim.PricePerUnit["USD"]; ok {
			price.USD = &usd
		}
		if cny, ok := dim.PricePerUnit["CNY"]; ok {
			price.CNY = &cny
		}
		if dim.BeginRange != "" {
			price.StartUsageAmount = &dim.BeginRange
		}
		// "Inf" marks the open tier; the canonical model uses absence.
		if dim.EndRange != "" && dim.EndRange != "Inf" {
			end := dim.EndRange
			price.EndUsageAmount = &end
		}
		if v, ok := term.TermAttributes["LeaseContractLength"]; ok && v != "" {
			price.TermLength = &v
		}
		if v, ok := term.TermAttributes["PurchaseOption"]; ok && v != "" {
			price.TermPurchaseOption = &v
		}
		if v, ok := term.TermAttributes["OfferingClass"]; ok && v != "" {
			price.TermOfferingClass = &v
		}
		price.PriceHash = domain.PriceHash(productHash, price)
		prices = append(prices, price)
	}
	return prices
}

// awsPurchaseOption maps the offer file term type to the canonical
// purchase option vocabulary.
func awsPurchaseOption(termType string) string {
	switch termType {
	case "OnDemand":
		return "on_demand"
	case "Reserved":
		return "reserved"
	default:
		return strings.ToLower(termType)
	}
}
