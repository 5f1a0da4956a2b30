package queries

import (
	"context"

	"retail/internal/core/domain/model/order"
	"retail/internal/core/ports"
	"retail/internal/pkg/errs"
)

// GetOrderStatusQueryHandler reads an order's last published snapshot off its
// status lane.
type GetOrderStatusQueryHandler struct {
	reader ports.StateReader
}

// NewGetOrderStatusQueryHandler creates a handler over the given state
// reader.
func NewGetOrderStatusQueryHandler(reader ports.StateReader) GetOrderStatusQueryHandler {
	return GetOrderStatusQueryHandler{reader: reader}
}

// Handle returns the order's snapshot. An order that never published — never
// placed, or never materialized — reports as not found.
func (h GetOrderStatusQueryHandler) Handle(
	_ context.Context,
	query GetOrderStatusQuery,
) (order.Snapshot, error) {
	if err := query.Validate(); err != nil {
		return order.Snapshot{}, err
	}

	value, defined := h.reader.GetState(query.Order(), ports.StatusLane)
	if !defined {
		return order.Snapshot{}, errs.NewObjectNotFoundError("order", query.Order().ID())
	}
	snap, ok := value.(order.Snapshot)
	if !ok {
		return order.Snapshot{}, errs.NewObjectNotFoundError("order", query.Order().ID())
	}
	return snap.Clone(), nil
}

// GetOrderHistoryQueryHandler reads an order's status history lane.
type GetOrderHistoryQueryHandler struct {
	reader ports.StateReader
}

// NewGetOrderHistoryQueryHandler creates a handler over the given state
// reader.
func NewGetOrderHistoryQueryHandler(reader ports.StateReader) GetOrderHistoryQueryHandler {
	return GetOrderHistoryQueryHandler{reader: reader}
}

// Handle returns the order's history entries, oldest first. An order with no
// recorded transitions reports as not found.
func (h GetOrderHistoryQueryHandler) Handle(
	_ context.Context,
	query GetOrderHistoryQuery,
) ([]ports.HistoryRecord, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	log := h.reader.History(query.Order(), ports.StatusHistoryLane)
	if len(log) == 0 {
		return nil, errs.NewObjectNotFoundError("order", query.Order().ID())
	}
	return log, nil
}
