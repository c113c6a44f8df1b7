package repo

import (
	"context"
	"fmt"

	"cloud.google.com/go/spanner"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"

	"github.com/light-bringer/pricefeed-service/internal/app/catalog/contracts"
	"github.com/light-bringer/pricefeed-service/internal/app/catalog/domain"
	"github.com/light-bringer/pricefeed-service/internal/models/m_price"
	"github.com/light-bringer/pricefeed-service/internal/models/m_product"
	"github.com/light-bringer/pricefeed-service/internal/pkg/query"
)

// defaultLimit caps unbounded product queries.
const defaultLimit = 1000

// CatalogRepo implements CatalogRepository for Spanner.
type CatalogRepo struct {
	client   *spanner.Client
	products *m_product.Model
	prices   *m_price.Model
}

// NewCatalogRepo creates a new CatalogRepo.
func NewCatalogRepo(client *spanner.Client) contracts.CatalogRepository {
	return &CatalogRepo{
		client:   client,
		products: m_product.NewModel(),
		prices:   m_price.NewModel(),
	}
}

// UpsertProductMut creates a mutation for upserting a product by hash.
func (r *CatalogRepo) UpsertProductMut(product *domain.Product) (*spanner.Mutation, error) {
	if product.ProductHash == "" {
		return nil, domain.ErrMissingHash
	}
	return r.products.UpsertMut(productToData(product)), nil
}

// UpsertPriceMut creates a mutation for upserting a price by
// (product_hash, price_hash). The product hash must be set: orphan prices
// are invalid.
func (r *CatalogRepo) UpsertPriceMut(price *domain.Price) (*spanner.Mutation, error) {
	if price.PriceHash == "" {
		return nil, domain.ErrMissingHash
	}
	if price.ProductHash == "" {
		return nil, domain.ErrOrphanPrice
	}
	return r.prices.UpsertMut(priceToData(price)), nil
}

// GetByHash retrieves a product by hash together with its prices.
func (r *CatalogRepo) GetByHash(ctx context.Context, productHash string) (*domain.Product, error) {
	row, err := r.client.Single().ReadRow(ctx, m_product.TableName, spanner.Key{productHash}, m_product.Columns)
	if err != nil {
		if spanner.ErrCode(err) == codes.NotFound {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to read product: %w", err)
	}

	var data m_product.Data
	if err := row.ToStruct(&data); err != nil {
		return nil, fmt.Errorf("failed to parse product: %w", err)
	}

	product, err := dataToDomain(&data)
	if err != nil {
		return nil, err
	}
	if err := r.loadPrices(ctx, []*domain.Product{product}); err != nil {
		return nil, err
	}
	return product, nil
}

// FindProducts returns products matching the filter, with prices loaded
// eagerly. A product without price rows is returned as-is: brand-new
// products legitimately have no prices yet.
func (r *CatalogRepo) FindProducts(ctx context.Context, filter *contracts.ProductFilter) ([]*domain.Product, error) {
	qb := query.From(m_product.TableName).Select(m_product.Columns...)

	for _, fc := range []struct {
		field string
		match *contracts.Match
	}{
		{m_product.VendorName, filter.VendorName},
		{m_product.Service, filter.Service},
		{m_product.ProductFamily, filter.ProductFamily},
		{m_product.Region, filter.Region},
	} {
		if cond := matchCondition(fc.field, fc.match); cond != nil {
			qb = qb.Where(cond)
		}
	}

	for _, af := range filter.AttributeFilters {
		cond, err := attributeCondition(af)
		if err != nil {
			return nil, err
		}
		qb = qb.Where(cond)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	stmt := qb.OrderBy(query.Asc, m_product.ProductHash).Limit(limit).Build()

	iter := r.client.Single().Query(ctx, stmt)
	defer iter.Stop()

	var products []*domain.Product
	for {
		row, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate products: %w", err)
		}

		var data m_product.Data
		if err := row.ToStruct(&data); err != nil {
			return nil, fmt.Errorf("failed to parse product: %w", err)
		}

		product, err := dataToDomain(&data)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}

	if err := r.loadPrices(ctx, products); err != nil {
		return nil, err
	}
	return products, nil
}

// loadPrices attaches price rows to the given products in one query.
func (r *CatalogRepo) loadPrices(ctx context.Context, products []*domain.Product) error {
	if len(products) == 0 {
		return nil
	}

	byHash := make(map[string]*domain.Product, len(products))
	hashes := make([]string, 0, len(products))
	for _, p := range products {
		byHash[p.ProductHash] = p
		hashes = append(hashes, p.ProductHash)
	}

	stmt := query.From(m_price.TableName).
		Select(m_price.Columns...).
		Where(query.InUnnest(m_price.ProductHash, hashes)).
		OrderBy(query.Asc, m_price.ProductHash, m_price.PriceHash).
		Build()

	iter := r.client.Single().Query(ctx, stmt)
	defer iter.Stop()

	for {
		row, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to iterate prices: %w", err)
		}

		var data m_price.Data
		if err := row.ToStruct(&data); err != nil {
			return fmt.Errorf("failed to parse price: %w", err)
		}

		if product, ok := byHash[data.ProductHash]; ok {
			product.Prices = append(product.Prices, *priceToDomain(&data))
		}
	}
	return nil
}

// matchCondition turns a Match predicate into a query condition.
// Nil matches mean the field is unconstrained.
func matchCondition(field string, m *contracts.Match) query.Condition {
	switch {
	case m == nil:
		return nil
	case m.EmptyOrNull:
		return query.EmptyOrNull(field)
	case m.Regex != nil:
		return query.Regexp(field, *m.Regex)
	case m.Exact != nil:
		return query.Eq(field, *m.Exact)
	default:
		return nil
	}
}

// attributeCondition builds the JSON-value predicate for one attribute key.
func attributeCondition(af contracts.AttributeFilter) (query.Condition, error) {
	if !validAttributeKey(af.Key) {
		return nil, fmt.Errorf("invalid attribute filter key %q", af.Key)
	}
	switch {
	case af.Match.Regex != nil:
		return query.JSONValueRegexp(m_product.Attributes, af.Key, *af.Match.Regex), nil
	case af.Match.Exact != nil:
		return query.JSONValueEq(m_product.Attributes, af.Key, *af.Match.Exact), nil
	case af.Match.EmptyOrNull:
		return query.JSONValueRegexp(m_product.Attributes, af.Key, "^$"), nil
	default:
		return nil, fmt.Errorf("attribute filter for %q has no predicate", af.Key)
	}
}

// validAttributeKey guards the JSON path built into the SQL text.
func validAttributeKey(k string) bool {
	if k == "" {
		return false
	}
	for _, c := range k {
		if !((c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_') {
			return false
		}
	}
	return true
}
