package normalize

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/light-bringer/pricefeed-service/internal/app/catalog/domain"
)

// VendorAzure is the canonical vendor name written by the Azure normalizer.
const VendorAzure = "azure"

// Azure raw shapes follow the Retail Prices API response. Each item is one
// meter at one tier; items sharing (skuId, armRegionName) form one product.

type AzureRetailDocument struct {
	Items []AzureRetailItem `json:"Items"`
}

type AzureRetailItem struct {
	CurrencyCode       string      `json:"currencyCode"`
	TierMinimumUnits   json.Number `json:"tierMinimumUnits"`
	RetailPrice        json.Number `json:"retailPrice"`
	ArmRegionName      string      `json:"armRegionName"`
	MeterID            string      `json:"meterId"`
	MeterName          string      `json:"meterName"`
	ProductName        string      `json:"productName"`
	SkuID              string      `json:"skuId"`
	SkuName            string      `json:"skuName"`
	ArmSkuName         string      `json:"armSkuName"`
	ServiceName        string      `json:"serviceName"`
	ServiceFamily      string      `json:"serviceFamily"`
	UnitOfMeasure      string      `json:"unitOfMeasure"`
	Type               string      `json:"type"`
	ReservationTerm    string      `json:"reservationTerm"`
	EffectiveStartDate string      `json:"effectiveStartDate"`
}

// AzureNormalizer maps Retail Prices responses into canonical products.
// Attribute keys it writes: description (product name), meter_name,
// sku_name, arm_sku_name, service_family.
type AzureNormalizer struct {
	log *slog.Logger
}

// NewAzure creates an Azure retail normalizer.
func NewAzure(log *slog.Logger) *AzureNormalizer {
	return &AzureNormalizer{log: log}
}

// Normalize converts one retail prices document. Items with the same
// (skuId, region, meterId, type) form a tier chain: sorted by tier minimum,
// each tier ends where the next begins and the last is open.
func (n *AzureNormalizer) Normalize(doc []byte) ([]*domain.Product, error) {
	var retail AzureRetailDocument
	if err := json.Unmarshal(doc, &retail); err != nil {
		return nil, fmt.Errorf("decoding azure retail document: %w", err)
	}

	byKey := make(map[string]*domain.Product)
	chains := make(map[string][]AzureRetailItem)
	var order []string

	for _, item := range retail.Items {
		if item.SkuID == "" {
			n.log.Warn("skipping azure item without sku id", "meter_name", item.MeterName)
			continue
		}
		key := item.SkuID + "\x00" + item.ArmRegionName
		if _, ok := byKey[key]; !ok {
			byKey[key] = n.product(item)
			order = append(order, key)
		}
		chainKey := key + "\x00" + item.MeterID + "\x00" + item.Type + "\x00" + item.ReservationTerm
		chains[chainKey] = append(chains[chainKey], item)
	}

	chainKeys := make([]string, 0, len(chains))
	for k := range chains {
		chainKeys = append(chainKeys, k)
	}
	sort.Strings(chainKeys)

	for _, chainKey := range chainKeys {
		parts := strings.SplitN(chainKey, "\x00", 3)
		key := parts[0] + "\x00" + parts[1]
		product := byKey[key]
		product.Prices = append(product.Prices, n.prices(product.ProductHash, chains[chainKey])...)
	}

	products := make([]*domain.Product, 0, len(order))
	for _, key := range order {
		products = append(products, byKey[key])
	}
	return products, nil
}

func (n *AzureNormalizer) product(item AzureRetailItem) *domain.Product {
	var region *string
	if item.ArmRegionName != "" && !strings.EqualFold(item.ArmRegionName, "Global") {
		region = &item.ArmRegionName
	}
	hash := domain.ProductHash(VendorAzure, region, item.SkuID)
	return &domain.Product{
		ProductHash:   hash,
		SKU:           item.SkuID,
		VendorName:    VendorAzure,
		Region:        region,
		Service:       item.ServiceName,
		ProductFamily: item.ServiceFamily,
		Attributes: map[string]string{
			"description":    item.ProductName,
			"meter_name":     item.MeterName,
			"sku_name":       item.SkuName,
			"arm_sku_name":   item.ArmSkuName,
			"service_family": item.ServiceFamily,
		},
	}
}

// prices converts one tier chain into canonical price rows.
func (n *AzureNormalizer) prices(productHash string, chain []AzureRetailItem) []domain.Price {
	sort.SliceStable(chain, func(i, j int) bool {
		return tierMinimum(chain[i]).LessThan(tierMinimum(chain[j]))
	})

	prices := make([]domain.Price, 0, len(chain))
	for i, item := range chain {
		start := item.TierMinimumUnits.String()
		if start == "" {
			start = "0"
		}
		var end *string
		if i+1 < len(chain) {
			next := chain[i+1].TierMinimumUnits.String()
			end = &next
		}
		amount := item.RetailPrice.String()
		price := domain.Price{
			ProductHash:        productHash,
			PurchaseOption:     azurePurchaseOption(item),
			Unit:               item.UnitOfMeasure,
			EffectiveStartDate: item.EffectiveStartDate,
			StartUsageAmount:   &start,
			EndUsageAmount:     end,
			Currency:           &item.CurrencyCode,
			Description:        &item.MeterName,
		}
		switch item.CurrencyCode {
		case "CNY":
			price.CNY = &amount
		default:
			price.USD = &amount
		}
		if item.ReservationTerm != "" {
			price.TermLength = &item.ReservationTerm
		}
		price.PriceHash = domain.PriceHash(productHash, price)
		prices = append(prices, price)
	}
	return prices
}

// tierMinimum parses the tier boundary for ordering only; the stored
// amount keeps the raw token.
func tierMinimum(item AzureRetailItem) decimal.Decimal {
	d, err := decimal.NewFromString(item.TierMinimumUnits.String())
	if err != nil {
		return decimal.Zero
	}
	return d
}

// azurePurchaseOption maps the retail item to the canonical purchase
// option vocabulary. Spot and low priority meters are flagged in the meter
// or SKU name rather than the type field.
func azurePurchaseOption(item AzureRetailItem) string {
	name := item.SkuName + " " + item.MeterName
	switch {
	case strings.Contains(name, "Spot"):
		return "spot"
	case strings.Contains(name, "Low Priority"):
		return "low_priority"
	case item.Type == "Reservation":
		return "reserved"
	case item.Type == "DevTestConsumption":
		return "dev_test"
	default:
		return "on_demand"
	}
}
