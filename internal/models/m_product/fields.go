package m_product

// Field name constants for the products table.
// These provide type-safe field references and prevent typos.
const (
	TableName = "products"

	ProductHash   = "product_hash"
	SKU           = "sku"
	VendorName    = "vendor_name"
	Region        = "region"
	Service       = "service"
	ProductFamily = "product_family"
	Attributes    = "attributes"
	UpdatedAt     = "updated_at"
)

// Columns lists every column in read order.
var Columns = []string{
	ProductHash,
	SKU,
	VendorName,
	Region,
	Service,
	ProductFamily,
	Attributes,
	UpdatedAt,
}
