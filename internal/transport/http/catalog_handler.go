package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/light-bringer/pricefeed-service/internal/app/catalog/domain"
	"github.com/light-bringer/pricefeed-service/internal/app/catalog/queries"
)

// CatalogHandler handles HTTP requests for catalog products.
type CatalogHandler struct {
	queries *queries.Service
	log     *slog.Logger
}

// NewCatalogHandler creates a new HTTP catalog handler.
func NewCatalogHandler(svc *queries.Service, log *slog.Logger) *CatalogHandler {
	return &CatalogHandler{queries: svc, log: log}
}

// ProductResponse represents one product in the HTTP response.
type ProductResponse struct {
	ProductHash   string            `json:"product_hash"`
	SKU           string            `json:"sku"`
	VendorName    string            `json:"vendor_name"`
	Region        *string           `json:"region"`
	Service       string            `json:"service"`
	ProductFamily string            `json:"product_family"`
	Attributes    map[string]string `json:"attributes"`
	Prices        []PriceResponse   `json:"prices"`
}

// PriceResponse represents one price in the HTTP response.
type PriceResponse struct {
	PriceHash          string  `json:"price_hash"`
	PurchaseOption     string  `json:"purchase_option"`
	Unit               string  `json:"unit"`
	USD                *string `json:"usd,omitempty"`
	CNY                *string `json:"cny,omitempty"`
	EffectiveStartDate string  `json:"effective_start_date"`
	EffectiveDateEnd   *string `json:"effective_date_end,omitempty"`
	StartUsageAmount   *string `json:"start_usage_amount,omitempty"`
	EndUsageAmount     *string `json:"end_usage_amount,omitempty"`
	TermLength         *string `json:"term_length,omitempty"`
	TermPurchaseOption *string `json:"term_purchase_option,omitempty"`
	TermOfferingClass  *string `json:"term_offering_class,omitempty"`
	Description        *string `json:"description,omitempty"`
	TierModel          *string `json:"tier_model,omitempty"`
	Country            *string `json:"country,omitempty"`
	Currency           *string `json:"currency,omitempty"`
	PartNumber         *string `json:"part_number,omitempty"`
}

// ListProductsResponse represents the HTTP response for listing products.
type ListProductsResponse struct {
	Products   []ProductResponse `json:"products"`
	TotalCount int               `json:"total_count"`
}

// ServeHTTP handles GET /api/v1/products requests. Filter parameters use
// the catalog filter syntax: plain values match exactly, /pattern/flags
// is a regex, and an explicitly empty value matches unset fields.
// Attribute filters use attr.<key> parameters, price filters price.<field>.
func (h *CatalogHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	params := r.URL.Query()
	q := &queries.ProductQuery{}

	// Has distinguishes ?region= (match unset) from an absent parameter
	for _, field := range []struct {
		name string
		dst  **string
	}{
		{"vendor_name", &q.VendorName},
		{"service", &q.Service},
		{"product_family", &q.ProductFamily},
		{"region", &q.Region},
	} {
		if params.Has(field.name) {
			value := params.Get(field.name)
			*field.dst = &value
		}
	}

	for name := range params {
		if key, ok := strings.CutPrefix(name, "attr."); ok {
			q.Attributes = append(q.Attributes, queries.AttributeQuery{
				Key:   key,
				Value: params.Get(name),
			})
		}
	}

	priceQuery, err := parsePriceQuery(params)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	products, err := h.queries.Products(r.Context(), q)
	if err != nil {
		h.log.Error("product query failed", "error", err)
		http.Error(w, "Failed to fetch products", http.StatusInternalServerError)
		return
	}

	response := ListProductsResponse{Products: make([]ProductResponse, 0, len(products))}
	for _, product := range products {
		prices, err := queries.FilterPrices(product, priceQuery)
		if err != nil {
			http.Error(w, "Invalid price filter: "+err.Error(), http.StatusBadRequest)
			return
		}
		response.Products = append(response.Products, toProductResponse(product, prices))
	}
	response.TotalCount = len(response.Products)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.log.Error("encoding response failed", "error", err)
	}
}

// parsePriceQuery collects price.<field> parameters; unknown field names
// are rejected.
func parsePriceQuery(params map[string][]string) (*queries.PriceQuery, error) {
	q := &queries.PriceQuery{}
	fields := map[string]**string{
		"purchase_option":      &q.PurchaseOption,
		"unit":                 &q.Unit,
		"usd":                  &q.USD,
		"cny":                  &q.CNY,
		"effective_start_date": &q.EffectiveStartDate,
		"effective_date_end":   &q.EffectiveDateEnd,
		"start_usage_amount":   &q.StartUsageAmount,
		"end_usage_amount":     &q.EndUsageAmount,
		"term_length":          &q.TermLength,
		"term_purchase_option": &q.TermPurchaseOption,
		"term_offering_class":  &q.TermOfferingClass,
		"description":          &q.Description,
		"tier_model":           &q.TierModel,
		"country":              &q.Country,
		"currency":             &q.Currency,
		"part_number":          &q.PartNumber,
	}

	found := false
	for name, values := range params {
		field, ok := strings.CutPrefix(name, "price.")
		if !ok {
			continue
		}
		dst, known := fields[field]
		if !known {
			return nil, errors.New("unknown price filter field: " + field)
		}
		if len(values) == 0 {
			continue
		}
		value := values[0]
		*dst = &value
		found = true
	}
	if !found {
		return nil, nil
	}
	return q, nil
}

func toProductResponse(product *domain.Product, prices []domain.Price) ProductResponse {
	resp := ProductResponse{
		ProductHash:   product.ProductHash,
		SKU:           product.SKU,
		VendorName:    product.VendorName,
		Region:        product.Region,
		Service:       product.Service,
		ProductFamily: product.ProductFamily,
		Attributes:    product.Attributes,
		Prices:        make([]PriceResponse, 0, len(prices)),
	}
	for i := range prices {
		p := &prices[i]
		resp.Prices = append(resp.Prices, PriceResponse{
			PriceHash:          p.PriceHash,
			PurchaseOption:     p.PurchaseOption,
			Unit:               p.Unit,
			USD:                p.USD,
			CNY:                p.CNY,
			EffectiveStartDate: p.EffectiveStartDate,
			EffectiveDateEnd:   p.EffectiveDateEnd,
			StartUsageAmount:   p.StartUsageAmount,
			EndUsageAmount:     p.EndUsageAmount,
			TermLength:         p.TermLength,
			TermPurchaseOption: p.TermPurchaseOption,
			TermOfferingClass:  p.TermOfferingClass,
			Description:        p.Description,
			TierModel:          p.TierModel,
			Country:            p.Country,
			Currency:           p.Currency,
			PartNumber:         p.PartNumber,
		})
	}
	return resp
}
