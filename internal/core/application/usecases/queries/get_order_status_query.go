package queries

import (
	"errors"

	"retail/internal/core/domain/model/kernel"
	"retail/internal/pkg/guard"
)

var (
	ErrGetOrderStatusQueryIsNotConstructed = errors.New(
		"GetOrderStatusQuery must be created via NewGetOrderStatusQuery constructor",
	)
	ErrGetOrderHistoryQueryIsNotConstructed = errors.New(
		"GetOrderHistoryQuery must be created via NewGetOrderHistoryQuery constructor",
	)
)

// GetOrderStatusQuery retrieves one order's last published snapshot.
type GetOrderStatusQuery struct {
	order kernel.Address

	guard guard.ConstructorGuard
}

// NewGetOrderStatusQuery creates a query for the given order identifier.
func NewGetOrderStatusQuery(orderID string) (GetOrderStatusQuery, error) {
	order, err := kernel.NewAddress(kernel.KindOrder, orderID)
	if err != nil {
		return GetOrderStatusQuery{}, err
	}

	return GetOrderStatusQuery{
		order: order,
		guard: guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetOrderStatusQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderStatusQueryIsNotConstructed)
}

// Order returns the queried order's address.
func (q GetOrderStatusQuery) Order() kernel.Address {
	return q.order
}

// GetOrderHistoryQuery retrieves one order's append-only status history.
type GetOrderHistoryQuery struct {
	order kernel.Address

	guard guard.ConstructorGuard
}

// NewGetOrderHistoryQuery creates a history query for the given order
// identifier.
func NewGetOrderHistoryQuery(orderID string) (GetOrderHistoryQuery, error) {
	order, err := kernel.NewAddress(kernel.KindOrder, orderID)
	if err != nil {
		return GetOrderHistoryQuery{}, err
	}

	return GetOrderHistoryQuery{
		order: order,
		guard: guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetOrderHistoryQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderHistoryQueryIsNotConstructed)
}

// Order returns the queried order's address.
func (q GetOrderHistoryQuery) Order() kernel.Address {
	return q.order
}
