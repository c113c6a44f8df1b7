package m_price

import (
	"time"

	"cloud.google.com/go/spanner"
)

// Data represents the database model for the prices table. Rows are
// interleaved in their parent product, so the primary key is
// (product_hash, price_hash).
type Data struct {
	ProductHash        string             `spanner:"product_hash"`
	PriceHash          string             `spanner:"price_hash"`
	PurchaseOption     string             `spanner:"purchase_option"`
	Unit               string             `spanner:"unit"`
	USD                spanner.NullString `spanner:"usd"`
	CNY                spanner.NullString `spanner:"cny"`
	EffectiveStartDate string             `spanner:"effective_start_date"`
	EffectiveDateEnd   spanner.NullString `spanner:"effective_date_end"`
	StartUsageAmount   spanner.NullString `spanner:"start_usage_amount"`
	EndUsageAmount     spanner.NullString `spanner:"end_usage_amount"`
	TermLength         spanner.NullString `spanner:"term_length"`
	TermPurchaseOption spanner.NullString `spanner:"term_purchase_option"`
	TermOfferingClass  spanner.NullString `spanner:"term_offering_class"`
	Description        spanner.NullString `spanner:"description"`
	TierModel          spanner.NullString `spanner:"tier_model"`
	Country            spanner.NullString `spanner:"country"`
	Currency           spanner.NullString `spanner:"currency"`
	PartNumber         spanner.NullString `spanner:"part_number"`
	UpdatedAt          time.Time          `spanner:"updated_at"`
}
