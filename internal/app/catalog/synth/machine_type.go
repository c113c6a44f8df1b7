package synth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/light-bringer/pricefeed-service/internal/app/catalog/contracts"
	"github.com/light-bringer/pricefeed-service/internal/app/catalog/domain"
	"github.com/light-bringer/pricefeed-service/internal/pkg/clock"
)

// Purchase options a machine type price is derived for.
const (
	PurchaseOptionOnDemand    = "on_demand"
	PurchaseOptionPreemptible = "preemptible"
)

const (
	vendorGCP = "gcp"

	computeService    = "Compute Engine"
	computeFamily     = "Compute"
	machineTypeFamily = "Compute Instance"
	unitHours         = "Hours"

	// Preemptible reference SKUs carry this prefix in their description.
	spotPrefix = "Spot Preemptible "

	skuPrefix = "gcp-machine-type-generated-"
)

// componentLookup names the reference SKU descriptions for one machine type
// series. Either Total is set (flat instance rate) or CPU and Memory are
// (decomposed core/RAM rates). Patterns are RE2 fragments anchored at line
// start by the lookup.
type componentLookup struct {
	CPU    string
	Memory string
	Total  string
}

var descriptionLookups = map[string]componentLookup{
	"c2": {CPU: "Compute optimized Core", Memory: "Compute optimized Ram"},
	"e2": {CPU: "E2 Instance Core", Memory: "E2 Instance Ram"},
	"f1": {Total: "Micro Instance with burstable CPU"},
	"g1": {Total: "Small Instance with 1 VCPU"},
	"m1": {CPU: "Memory-optimized Instance Core", Memory: "Memory-optimized (Instance )?Ram"},
	"n1": {CPU: "N1 Predefined Instance Core", Memory: "N1 Predefined Instance Ram"},
	"n2": {CPU: "N2 Instance Core", Memory: "N2 Instance Ram"},
	"n2d": {CPU: "N2D AMD Instance Core", Memory: "N2D AMD Instance Ram"},
	"a2": {CPU: "A2 Instance Core", Memory: "A2 Instance Ram"},
}

// quantityOverride replaces the raw core count or memory for SKUs whose
// billing differs from the hardware shape, keyed by exact machine type
// name. Shared-core E2 types bill fractional vCPUs.
type quantityOverride struct {
	CPU    *decimal.Decimal
	Memory *decimal.Decimal
}

var quantityOverrides = map[string]quantityOverride{
	"e2-micro":  {CPU: dec("0.25")},
	"e2-small":  {CPU: dec("0.5")},
	"e2-medium": {CPU: dec("1")},
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

var mbPerGB = decimal.NewFromInt(1024)

// MachineType is the raw shape of one machine type as reported by the
// compute API fetcher.
type MachineType struct {
	Name      string `json:"name"`
	GuestCPUs int64  `json:"guest_cpus"`
	MemoryMB  int64  `json:"memory_mb"`
}

// Synthesizer computes machine type prices from component rates already
// ingested by the catalog scraper. Lookups run against committed data, so
// the catalog unit must have run before synthesis in the same batch.
type Synthesizer struct {
	finder contracts.Finder
	clock  clock.Clock
	log    *slog.Logger
}

// NewSynthesizer creates a Synthesizer.
func NewSynthesizer(finder contracts.Finder, clk clock.Clock, log *slog.Logger) *Synthesizer {
	return &Synthesizer{finder: finder, clock: clk, log: log}
}

// Product builds the catalog entry for a machine type in one region. The
// entry exists even when no rate can be derived: an instance keeps its
// identity and attributes without a price.
func (s *Synthesizer) Product(region string, mt MachineType) *domain.Product {
	sku := skuPrefix + mt.Name
	hash := domain.ProductHash(vendorGCP, &region, sku)
	return &domain.Product{
		ProductHash:   hash,
		SKU:           sku,
		VendorName:    vendorGCP,
		Region:        &region,
		Service:       computeService,
		ProductFamily: machineTypeFamily,
		Attributes: map[string]string{
			"machine_type": mt.Name,
		},
	}
}

// Price derives the hourly rate for one purchase option. It returns
// (nil, nil) when the series is unknown or a component reference is
// missing: the caller persists the product without the price. Store
// errors propagate.
func (s *Synthesizer) Price(ctx context.Context, product *domain.Product, mt MachineType, purchaseOption string) (*domain.Price, error) {
	series, _, _ := strings.Cut(mt.Name, "-")
	lookup, ok := descriptionLookups[series]
	if !ok {
		s.log.Warn("machine type series has no description lookup",
			"series", series, "machine_type", mt.Name)
		return nil, nil
	}

	var (
		amount    decimal.Decimal
		effective string
		err       error
	)
	if lookup.Total != "" {
		amount, effective, err = s.fromTotal(ctx, product.Region, purchaseOption, lookup.Total)
	} else {
		amount, effective, err = s.fromComponents(ctx, product.Region, mt, purchaseOption, lookup)
	}
	if err != nil {
		if errors.Is(err, domain.ErrMissingReference) {
			s.log.Warn("could not derive machine type price",
				"machine_type", mt.Name,
				"region", regionLabel(product.Region),
				"purchase_option", purchaseOption,
				"error", err)
			return nil, nil
		}
		return nil, err
	}

	usd := amount.String()
	price := &domain.Price{
		ProductHash:        product.ProductHash,
		PurchaseOption:     purchaseOption,
		Unit:               unitHours,
		USD:                &usd,
		EffectiveStartDate: effective,
	}
	price.PriceHash = domain.PriceHash(product.ProductHash, *price)
	return price, nil
}

// fromTotal resolves a flat instance rate from a single reference product.
func (s *Synthesizer) fromTotal(ctx context.Context, region *string, purchaseOption, description string) (decimal.Decimal, string, error) {
	ref, err := s.findReference(ctx, region, purchaseOption, description)
	if err != nil {
		return decimal.Zero, "", err
	}
	price := ref.OpenTierPrice()
	if price == nil {
		return decimal.Zero, "", fmt.Errorf("%w: reference %s has no prices", domain.ErrMissingReference, ref.ProductHash)
	}

	effective := price.EffectiveStartDate
	if effective == "" {
		effective = s.now()
	}
	return refAmount(price), effective, nil
}

// fromComponents resolves core and RAM rates and sums
// cpus*core_rate + memory_gb*ram_rate. Quantities come from the machine
// type shape unless the override table replaces them.
func (s *Synthesizer) fromComponents(ctx context.Context, region *string, mt MachineType, purchaseOption string, lookup componentLookup) (decimal.Decimal, string, error) {
	cpuRef, err := s.findReference(ctx, region, purchaseOption, lookup.CPU)
	if err != nil {
		return decimal.Zero, "", fmt.Errorf("cpu component: %w", err)
	}
	memRef, err := s.findReference(ctx, region, purchaseOption, lookup.Memory)
	if err != nil {
		return decimal.Zero, "", fmt.Errorf("memory component: %w", err)
	}

	cpuPrice := cpuRef.OpenTierPrice()
	memPrice := memRef.OpenTierPrice()
	if cpuPrice == nil || memPrice == nil {
		return decimal.Zero, "", fmt.Errorf("%w: component reference has no prices", domain.ErrMissingReference)
	}

	cpus := decimal.NewFromInt(mt.GuestCPUs)
	memory := decimal.NewFromInt(mt.MemoryMB)
	if override, ok := quantityOverrides[mt.Name]; ok {
		if override.CPU != nil {
			cpus = *override.CPU
		}
		if override.Memory != nil {
			memory = *override.Memory
		}
	}
	memoryGB := memory.Div(mbPerGB)

	amount := cpus.Mul(refAmount(cpuPrice)).Add(memoryGB.Mul(refAmount(memPrice)))

	// Provenance is the earlier of the two component dates; without both,
	// fall back to the clock. Best-effort, not authoritative.
	effective := minDate(cpuPrice.EffectiveStartDate, memPrice.EffectiveStartDate)
	if effective == "" {
		effective = s.now()
		s.log.Debug("missing component effective dates, using current time",
			"machine_type", mt.Name)
	}
	return amount, effective, nil
}

// findReference queries already-ingested compute products whose description
// starts with the looked-up pattern, in the same region. Preemptible rates
// live under a Spot Preemptible prefixed description.
func (s *Synthesizer) findReference(ctx context.Context, region *string, purchaseOption, description string) (*domain.Product, error) {
	pattern := "^" + description
	if purchaseOption == PurchaseOptionPreemptible {
		pattern = "^" + spotPrefix + description
	}

	regionMatch := &contracts.Match{EmptyOrNull: true}
	if region != nil {
		regionMatch = contracts.Exact(*region)
	}

	filter := &contracts.ProductFilter{
		VendorName:    contracts.Exact(vendorGCP),
		Service:       contracts.Exact(computeService),
		ProductFamily: contracts.Exact(computeFamily),
		Region:        regionMatch,
		AttributeFilters: []contracts.AttributeFilter{
			{Key: "description", Match: *contracts.Regex(pattern)},
		},
		Limit: 1,
	}

	products, err := s.finder.FindProducts(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("looking up reference products: %w", err)
	}
	if len(products) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrMissingReference, pattern)
	}
	return products[0], nil
}

func (s *Synthesizer) now() string {
	return s.clock.Now().UTC().Format(time.RFC3339)
}

// refAmount reads a reference price as a decimal; unpublished amounts
// count as zero.
func refAmount(price *domain.Price) decimal.Decimal {
	if price.USD == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(*price.USD)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// minDate returns the lexicographically earlier of two RFC3339 dates, or
// "" when either is missing.
func minDate(a, b string) string {
	if a == "" || b == "" {
		return ""
	}
	if a < b {
		return a
	}
	return b
}

func regionLabel(region *string) string {
	if region == nil {
		return ""
	}
	return *region
}

