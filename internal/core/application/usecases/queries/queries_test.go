package queries_test

import (
	"context"
	"testing"

	"retail/internal/core/application/usecases/queries"
	"retail/internal/core/domain/model/kernel"
	"retail/internal/core/domain/model/order"
	"retail/internal/core/domain/model/rollup"
	"retail/internal/core/ports"
	"retail/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type laneKey struct {
	Target kernel.Address
	Lane   string
}

// fakeStateReader serves canned lane values, standing in for the substrate.
type fakeStateReader struct {
	states map[laneKey]any
	logs   map[laneKey][]ports.HistoryRecord
}

func newFakeStateReader() *fakeStateReader {
	return &fakeStateReader{
		states: make(map[laneKey]any),
		logs:   make(map[laneKey][]ports.HistoryRecord),
	}
}

func (r *fakeStateReader) GetState(target kernel.Address, lane string) (any, bool) {
	value, ok := r.states[laneKey{Target: target, Lane: lane}]
	return value, ok
}

func (r *fakeStateReader) History(target kernel.Address, lane string) []ports.HistoryRecord {
	return r.logs[laneKey{Target: target, Lane: lane}]
}

func TestGetCustomerStatusQuery(t *testing.T) {
	t.Run("rejects_empty_customer_id", func(t *testing.T) {
		_, err := queries.NewGetCustomerStatusQuery("")
		require.Error(t, err)
	})

	t.Run("not_constructed_query_fails_validation", func(t *testing.T) {
		var query queries.GetCustomerStatusQuery
		require.ErrorIs(t, query.Validate(), queries.ErrGetCustomerStatusQueryIsNotConstructed)
	})
}

func TestGetCustomerStatusQueryHandler(t *testing.T) {
	reader := newFakeStateReader()
	handler := queries.NewGetCustomerStatusQueryHandler(reader)

	customer, err := kernel.NewCustomerAddress("Customer0")
	require.NoError(t, err)

	t.Run("unknown_customer_is_not_found", func(t *testing.T) {
		query, err := queries.NewGetCustomerStatusQuery("Customer0")
		require.NoError(t, err)

		_, err = handler.Handle(context.Background(), query)
		require.ErrorIs(t, err, errs.ErrObjectNotFound)
	})

	t.Run("returns_published_view", func(t *testing.T) {
		reader.states[laneKey{Target: customer, Lane: ports.StatusLane}] = rollup.View{
			Orders: map[order.Status]map[string]int{
				order.ReadyForPickup: {"productA": 2},
			},
			Notify:   true,
			PickedUp: map[string]int{"productB": 1},
		}

		query, err := queries.NewGetCustomerStatusQuery("Customer0")
		require.NoError(t, err)

		view, err := handler.Handle(context.Background(), query)
		require.NoError(t, err)
		assert.True(t, view.Notify)
		assert.Equal(t, map[string]int{"productA": 2}, view.Orders[order.ReadyForPickup])
		assert.Equal(t, map[string]int{"productB": 1}, view.PickedUp)
	})
}

func TestGetStoreStatusQueryHandler(t *testing.T) {
	reader := newFakeStateReader()
	handler := queries.NewGetStoreStatusQueryHandler(reader)
	store := kernel.MainStoreAddress()

	t.Run("unstarted_store_is_not_found", func(t *testing.T) {
		_, err := handler.Handle(context.Background(), queries.NewGetStoreStatusQuery())
		require.ErrorIs(t, err, errs.ErrObjectNotFound)
	})

	t.Run("returns_rollup_and_customer_count", func(t *testing.T) {
		reader.states[laneKey{Target: store, Lane: ports.StatusLane}] = rollup.StoreView{
			Orders: map[order.Status]map[string]int{
				order.Placed: {"productC": 3},
			},
			PickedUp: map[string]int{"productA": 5},
		}
		reader.states[laneKey{Target: store, Lane: ports.CustomersLane}] = 4

		response, err := handler.Handle(context.Background(), queries.NewGetStoreStatusQuery())
		require.NoError(t, err)
		assert.Equal(t, map[string]int{"productC": 3}, response.Orders[order.Placed])
		assert.Equal(t, map[string]int{"productA": 5}, response.PickedUp)
		assert.Equal(t, 4, response.Customers)
	})

	t.Run("not_constructed_query_fails_validation", func(t *testing.T) {
		var query queries.GetStoreStatusQuery
		_, err := handler.Handle(context.Background(), query)
		require.ErrorIs(t, err, queries.ErrGetStoreStatusQueryIsNotConstructed)
	})
}

func TestGetOrderStatusQueryHandler(t *testing.T) {
	reader := newFakeStateReader()
	handler := queries.NewGetOrderStatusQueryHandler(reader)
	orderAddr := kernel.NewOrderAddress()

	t.Run("unknown_order_is_not_found", func(t *testing.T) {
		query, err := queries.NewGetOrderStatusQuery(orderAddr.ID())
		require.NoError(t, err)

		_, err = handler.Handle(context.Background(), query)
		require.ErrorIs(t, err, errs.ErrObjectNotFound)
	})

	t.Run("returns_published_snapshot", func(t *testing.T) {
		reader.states[laneKey{Target: orderAddr, Lane: ports.StatusLane}] = order.Snapshot{
			OrderID:    orderAddr.ID(),
			CustomerID: "Customer0",
			Products:   map[string]int{"productA": 1},
			Status:     order.Processed,
			Timestamp:  1234,
		}

		query, err := queries.NewGetOrderStatusQuery(orderAddr.ID())
		require.NoError(t, err)

		snap, err := handler.Handle(context.Background(), query)
		require.NoError(t, err)
		assert.Equal(t, order.Processed, snap.Status)
		assert.Equal(t, "Customer0", snap.CustomerID)
		assert.Equal(t, int64(1234), snap.Timestamp)
	})
}

func TestGetOrderHistoryQueryHandler(t *testing.T) {
	reader := newFakeStateReader()
	handler := queries.NewGetOrderHistoryQueryHandler(reader)
	orderAddr := kernel.NewOrderAddress()

	t.Run("order_without_history_is_not_found", func(t *testing.T) {
		query, err := queries.NewGetOrderHistoryQuery(orderAddr.ID())
		require.NoError(t, err)

		_, err = handler.Handle(context.Background(), query)
		require.ErrorIs(t, err, errs.ErrObjectNotFound)
	})

	t.Run("returns_history_oldest_first", func(t *testing.T) {
		reader.logs[laneKey{Target: orderAddr, Lane: ports.StatusHistoryLane}] = []ports.HistoryRecord{
			{Timestamp: 100, Value: "orderPlaced"},
			{Timestamp: 200, Value: "orderProcessed"},
		}

		query, err := queries.NewGetOrderHistoryQuery(orderAddr.ID())
		require.NoError(t, err)

		log, err := handler.Handle(context.Background(), query)
		require.NoError(t, err)
		require.Len(t, log, 2)
		assert.Equal(t, "orderPlaced", log[0].Value)
		assert.Equal(t, "orderProcessed", log[1].Value)
	})
}
