package contracts

import (
	"context"

	"cloud.google.com/go/spanner"

	"github.com/light-bringer/pricefeed-service/internal/app/catalog/domain"
)

// Match is a single filter predicate value. Exactly one of the fields is
// set: Exact compares literally, Regex is an RE2 pattern, EmptyOrNull
// matches both the empty string and an absent value.
type Match struct {
	Exact       *string
	Regex       *string
	EmptyOrNull bool
}

// Exact builds an exact-match predicate.
func Exact(s string) *Match {
	return &Match{Exact: &s}
}

// Regex builds a regex predicate from an RE2 pattern source.
func Regex(pattern string) *Match {
	return &Match{Regex: &pattern}
}

// AttributeFilter matches one key of the product attributes mapping.
type AttributeFilter struct {
	Key   string
	Match Match
}

// ProductFilter selects products by exact or pattern predicates. Nil fields
// are unconstrained.
type ProductFilter struct {
	VendorName       *Match
	Service          *Match
	ProductFamily    *Match
	Region           *Match
	AttributeFilters []AttributeFilter
	Limit            int64
}

// Finder is the read side of the catalog, consumed by the derived price
// synthesizer and the query service. Products are returned with their
// prices loaded.
type Finder interface {
	// FindProducts returns products matching the filter.
	FindProducts(ctx context.Context, filter *ProductFilter) ([]*domain.Product, error)

	// GetByHash retrieves a single product with its prices.
	// Returns domain.ErrProductNotFound when no row exists.
	GetByHash(ctx context.Context, productHash string) (*domain.Product, error)
}

// CatalogRepository is the full catalog store contract. Write operations
// return mutations without applying them; callers batch mutations into a
// commit plan and apply the plan atomically per source document.
type CatalogRepository interface {
	Finder

	// UpsertProductMut creates a last-write-wins mutation keyed by the
	// product's deterministic hash.
	UpsertProductMut(product *domain.Product) (*spanner.Mutation, error)

	// UpsertPriceMut creates a last-write-wins mutation keyed by
	// (product_hash, price_hash).
	UpsertPriceMut(price *domain.Price) (*spanner.Mutation, error)
}
