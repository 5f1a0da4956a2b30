package queries

import (
	"context"

	"retail/internal/core/domain/model/rollup"
	"retail/internal/core/ports"
	"retail/internal/pkg/errs"
)

// GetCustomerStatusQueryHandler reads a customer's published roll-up view off
// its status lane.
type GetCustomerStatusQueryHandler struct {
	reader ports.StateReader
}

// NewGetCustomerStatusQueryHandler creates a handler over the given state
// reader.
func NewGetCustomerStatusQueryHandler(reader ports.StateReader) GetCustomerStatusQueryHandler {
	return GetCustomerStatusQueryHandler{reader: reader}
}

// Handle returns the customer's current view. A customer that was never
// materialized has no published state and reports as not found.
func (h GetCustomerStatusQueryHandler) Handle(
	_ context.Context,
	query GetCustomerStatusQuery,
) (rollup.View, error) {
	if err := query.Validate(); err != nil {
		return rollup.View{}, err
	}

	value, defined := h.reader.GetState(query.Customer(), ports.StatusLane)
	if !defined {
		return rollup.View{}, errs.NewObjectNotFoundError("customer", query.Customer().ID())
	}

	view, ok := value.(rollup.View)
	if !ok {
		return rollup.View{}, errs.NewObjectNotFoundError("customer", query.Customer().ID())
	}
	return view.Clone(), nil
}
