// Package queries contains read operations over the published entity state.
// Queries never touch entity internals: they read the same lane values the
// subscription side observes, so a query result is always a view some
// subscriber could have seen.
package queries

import (
	"errors"

	"retail/internal/core/domain/model/kernel"
	"retail/internal/pkg/guard"
)

var (
	ErrGetCustomerStatusQueryIsNotConstructed = errors.New(
		"GetCustomerStatusQuery must be created via NewGetCustomerStatusQuery constructor",
	)
)

// GetCustomerStatusQuery retrieves one customer's current roll-up view: the
// per-status product quantities of the live orders, the notify flag and the
// cumulative picked-up counters.
type GetCustomerStatusQuery struct {
	customer kernel.Address

	guard guard.ConstructorGuard
}

// NewGetCustomerStatusQuery creates a query for the given customer.
func NewGetCustomerStatusQuery(customerID string) (GetCustomerStatusQuery, error) {
	customer, err := kernel.NewCustomerAddress(customerID)
	if err != nil {
		return GetCustomerStatusQuery{}, err
	}

	return GetCustomerStatusQuery{
		customer: customer,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetCustomerStatusQuery) Validate() error {
	return q.guard.Validate(ErrGetCustomerStatusQueryIsNotConstructed)
}

// Customer returns the queried customer's address.
func (q GetCustomerStatusQuery) Customer() kernel.Address {
	return q.customer
}
