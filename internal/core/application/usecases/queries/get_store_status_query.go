package queries

import (
	"errors"

	"retail/internal/core/domain/model/rollup"
	"retail/internal/pkg/guard"
)

var (
	ErrGetStoreStatusQueryIsNotConstructed = errors.New(
		"GetStoreStatusQuery must be created via NewGetStoreStatusQuery constructor",
	)
)

// GetStoreStatusQuery retrieves the store-wide roll-up: product quantities of
// every live order grouped by status, the cumulative picked-up counters, and
// the number of joined customers.
type GetStoreStatusQuery struct {
	guard guard.ConstructorGuard
}

// NewGetStoreStatusQuery creates a store status query. There is a single
// store, so the query carries no parameters.
func NewGetStoreStatusQuery() GetStoreStatusQuery {
	return GetStoreStatusQuery{guard: guard.NewConstructorGuard()}
}

// Validate ensures the query was created through the constructor.
func (q GetStoreStatusQuery) Validate() error {
	return q.guard.Validate(ErrGetStoreStatusQueryIsNotConstructed)
}

// GetStoreStatusQueryResponse is the store read model.
type GetStoreStatusQueryResponse struct {
	rollup.StoreView

	Customers int `json:"customers"`
}
