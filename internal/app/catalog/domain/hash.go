package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Identity hashes are SHA-256 digests over a delimiter-joined concatenation
// of fields in a fixed order. The order is a strict contract: changing it
// changes every identity in the catalog and breaks idempotent re-ingestion.
// Absent optional fields are omitted from the join entirely, never replaced
// with a placeholder, so a nil region hashes distinctly from region "".

// ProductHash derives the identity of a product from vendor, region and the
// vendor-native SKU id.
func ProductHash(vendorName string, region *string, sku string) string {
	parts := make([]string, 0, 3)
	parts = append(parts, vendorName)
	if region != nil {
		parts = append(parts, *region)
	}
	parts = append(parts, sku)
	return digest(strings.Join(parts, "-"))
}

// PriceHash derives the identity of a price within its product. The hash
// covers the purchase option, billing unit, tier boundaries and term fields,
// in that order.
func PriceHash(productHash string, price Price) string {
	parts := []string{price.PurchaseOption, price.Unit}
	for _, field := range []*string{
		price.StartUsageAmount,
		price.EndUsageAmount,
		price.TermLength,
		price.TermPurchaseOption,
		price.TermOfferingClass,
	} {
		if field != nil {
			parts = append(parts, *field)
		}
	}
	return digest(productHash + "-" + strings.Join(parts, "-"))
}

func digest(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
