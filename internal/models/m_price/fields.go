package m_price

// Field name constants for the prices table.
const (
	TableName = "prices"

	ProductHash        = "product_hash"
	PriceHash          = "price_hash"
	PurchaseOption     = "purchase_option"
	Unit               = "unit"
	USD                = "usd"
	CNY                = "cny"
	EffectiveStartDate = "effective_start_date"
	EffectiveDateEnd   = "effective_date_end"
	StartUsageAmount   = "start_usage_amount"
	EndUsageAmount     = "end_usage_amount"
	TermLength         = "term_length"
	TermPurchaseOption = "term_purchase_option"
	TermOfferingClass  = "term_offering_class"
	Description        = "description"
	TierModel          = "tier_model"
	Country            = "country"
	Currency           = "currency"
	PartNumber         = "part_number"
	UpdatedAt          = "updated_at"
)

// Columns lists every column in read order.
var Columns = []string{
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
}
