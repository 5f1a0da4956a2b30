package queries

import (
	"context"

	"retail/internal/core/domain/model/kernel"
	"retail/internal/core/domain/model/rollup"
	"retail/internal/core/ports"
	"retail/internal/pkg/errs"
)

// GetStoreStatusQueryHandler reads the store's published roll-up and joined
// customer count off its lanes.
type GetStoreStatusQueryHandler struct {
	reader ports.StateReader
}

// NewGetStoreStatusQueryHandler creates a handler over the given state
// reader.
func NewGetStoreStatusQueryHandler(reader ports.StateReader) GetStoreStatusQueryHandler {
	return GetStoreStatusQueryHandler{reader: reader}
}

// Handle returns the store read model. Before the store entity has started,
// no state is published and the store reports as not found.
func (h GetStoreStatusQueryHandler) Handle(
	_ context.Context,
	query GetStoreStatusQuery,
) (GetStoreStatusQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetStoreStatusQueryResponse{}, err
	}

	store := kernel.MainStoreAddress()

	value, defined := h.reader.GetState(store, ports.StatusLane)
	if !defined {
		return GetStoreStatusQueryResponse{}, errs.NewObjectNotFoundError("store", store.ID())
	}
	view, ok := value.(rollup.StoreView)
	if !ok {
		return GetStoreStatusQueryResponse{}, errs.NewObjectNotFoundError("store", store.ID())
	}

	response := GetStoreStatusQueryResponse{StoreView: view.Clone()}
	if count, defined := h.reader.GetState(store, ports.CustomersLane); defined {
		if customers, ok := count.(int); ok {
			response.Customers = customers
		}
	}
	return response, nil
}
