package m_product

import (
	"time"

	"cloud.google.com/go/spanner"
)

// Data represents the database model for the products table.
type Data struct {
	ProductHash   string             `spanner:"product_hash"`
	SKU           string             `spanner:"sku"`
	VendorName    string             `spanner:"vendor_name"`
	Region        spanner.NullString `spanner:"region"`
	Service       string             `spanner:"service"`
	ProductFamily string             `spanner:"product_family"`
	Attributes    spanner.NullJSON   `spanner:"attributes"`
	UpdatedAt     time.Time          `spanner:"updated_at"`
}
