package m_product

import (
	"cloud.google.com/go/spanner"
)

// Model provides a facade for type-safe operations on the products table.
type Model struct{}

// NewModel creates a new Model instance.
func NewModel() *Model {
	return &Model{}
}

// UpsertMut creates a mutation keyed by product_hash. A second upsert with
// the same hash overwrites the row (last-write-wins), which is what makes
// re-ingestion of the same source document idempotent.
func (m *Model) UpsertMut(data *Data) *spanner.Mutation {
	return spanner.InsertOrUpdate(
		TableName,
		[]string{
			ProductHash,
			SKU,
			VendorName,
			Region,
			Service,
			ProductFamily,
			Attributes,
			UpdatedAt,
		},
		[]interface{}{
			data.ProductHash,
			data.SKU,
			data.VendorName,
			data.Region,
			data.Service,
			data.ProductFamily,
			data.Attributes,
			spanner.CommitTimestamp,
		},
	)
}

// DeleteMut creates a mutation deleting a product. Interleaved price rows
// are removed by the ON DELETE CASCADE clause.
func (m *Model) DeleteMut(productHash string) *spanner.Mutation {
	return spanner.Delete(TableName, spanner.Key{productHash})
}
