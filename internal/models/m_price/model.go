package m_price

import (
	"cloud.google.com/go/spanner"
)

// Model provides a facade for type-safe operations on the prices table.
type Model struct{}

// NewModel creates a new Model instance.
func NewModel() *Model {
	return &Model{}
}

// UpsertMut creates a mutation keyed by (product_hash, price_hash).
// Re-upserting the same hash overwrites the row.
func (m *Model) UpsertMut(data *Data) *spanner.Mutation {
	return spanner.InsertOrUpdate(
		TableName,
		[]string{
			ProductHash,
			PriceHash,
			PurchaseOption,
			Unit,
			USD,
			CNY,
			EffectiveStartDate,
			EffectiveDateEnd,
			StartUsageAmount,
			EndUsageAmount,
			TermLength,
			TermPurchaseOption,
			TermOfferingClass,
			Description,
			TierModel,
			Country,
			Currency,
			PartNumber,
			UpdatedAt,
		},
		[]interface{}{
			data.ProductHash,
			data.PriceHash,
			data.PurchaseOption,
			data.Unit,
			data.USD,
			data.CNY,
			data.EffectiveStartDate,
			data.EffectiveDateEnd,
			data.StartUsageAmount,
			data.EndUsageAmount,
			data.TermLength,
			data.TermPurchaseOption,
			data.TermOfferingClass,
			data.Description,
			data.TierModel,
			data.Country,
			data.Currency,
			data.PartNumber,
			spanner.CommitTimestamp,
		},
	)
}

// DeleteMut creates a mutation deleting a single price row.
func (m *Model) DeleteMut(productHash, priceHash string) *spanner.Mutation {
	return spanner.Delete(TableName, spanner.Key{productHash, priceHash})
}
