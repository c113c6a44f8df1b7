package domain

import "errors"

// Domain errors as sentinel values
var (
	ErrProductNotFound = errors.New("product not found")
	ErrMissingHash     = errors.New("identity hash is empty")
	ErrOrphanPrice     = errors.New("price does not reference a product")

	// ErrMissingReference signals that the synthesizer found no ingested
	// product matching a component description. Callers skip the derived
	// price and keep the product.
	ErrMissingReference = errors.New("no reference product matches description")
)
