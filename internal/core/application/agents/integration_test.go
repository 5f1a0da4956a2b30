package agents_test

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"retail/internal/adapters/out/fabric"
	"retail/internal/core/application/agents"
	"retail/internal/core/application/usecases/commands"
	"retail/internal/core/domain/model/kernel"
	"retail/internal/core/domain/model/order"
	"retail/internal/core/domain/model/rollup"
	"retail/internal/core/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRunningFabric(t *testing.T) *fabric.Fabric {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	f := fabric.New(logger)
	f.RegisterKind(kernel.KindOrder, agents.NewOrderAgentFactory(logger))
	f.RegisterKind(kernel.KindCustomer, agents.NewCustomerAgentFactory(logger))
	f.RegisterKind(kernel.KindStore, agents.NewStoreAgentFactory(logger))
	t.Cleanup(f.Close)
	return f
}

func customerView(f *fabric.Fabric, customer kernel.Address) (rollup.View, bool) {
	value, defined := f.GetState(customer, ports.StatusLane)
	if !defined {
		return rollup.View{}, false
	}
	view, ok := value.(rollup.View)
	return view, ok
}

func storeView(f *fabric.Fabric) (rollup.StoreView, bool) {
	value, defined := f.GetState(kernel.MainStoreAddress(), ports.StatusLane)
	if !defined {
		return rollup.StoreView{}, false
	}
	view, ok := value.(rollup.StoreView)
	return view, ok
}

// The full round trip: a customer places an order, the order walks its
// lifecycle, the customer and store roll-ups track it, and completion folds
// the quantities into the cumulative counters on both sides.
func TestOrderLifecycleEndToEnd(t *testing.T) {
	f := newRunningFabric(t)

	customer, err := kernel.NewCustomerAddress("Customer0")
	require.NoError(t, err)
	f.Send(customer, commands.NewInitializeCommand("Customer0"))

	orderAddr := kernel.NewOrderAddress()
	place := mustPlaceCommand(t, map[string]int{"productA": 2, "productC": 1}).WithOrder(orderAddr)
	f.Send(customer, place)

	// Placement propagates to the customer roll-up.
	require.Eventually(t, func() bool {
		view, ok := customerView(f, customer)
		return ok && view.Orders[order.Placed]["productA"] == 2
	}, 2*time.Second, 5*time.Millisecond)

	view, _ := customerView(f, customer)
	assert.Equal(t, map[string]int{"productA": 2, "productC": 1}, view.Orders[order.Placed])
	assert.False(t, view.Notify)

	// ...and to the store roll-up, plus the customer join count.
	require.Eventually(t, func() bool {
		view, ok := storeView(f)
		return ok && view.Orders[order.Placed]["productA"] == 2
	}, 2*time.Second, 5*time.Millisecond)

	require.Eventually(t, func() bool {
		count, defined := f.GetState(kernel.MainStoreAddress(), ports.CustomersLane)
		return defined && count == 1
	}, 2*time.Second, 5*time.Millisecond)

	// Advance to ready: the notify flag must rise, since nothing is pending.
	f.Send(orderAddr, commands.NewUpdateOrderCommand()) // processed
	f.Send(orderAddr, commands.NewUpdateOrderCommand()) // ready for pickup

	require.Eventually(t, func() bool {
		view, ok := customerView(f, customer)
		return ok && view.Notify
	}, 2*time.Second, 5*time.Millisecond)

	view, _ = customerView(f, customer)
	assert.Equal(t, map[string]int{"productA": 2, "productC": 1}, view.Orders[order.ReadyForPickup])
	assert.Empty(t, view.Orders[order.Placed])
	assert.Empty(t, view.Orders[order.Processed])

	// Complete the pickup: both roll-ups evict the order and fold its
	// quantities into the cumulative counters.
	f.Send(orderAddr, commands.NewUpdateOrderCommand())

	require.Eventually(t, func() bool {
		view, ok := customerView(f, customer)
		return ok && view.PickedUp["productA"] == 2
	}, 2*time.Second, 5*time.Millisecond)

	view, _ = customerView(f, customer)
	assert.Empty(t, view.Orders)
	assert.False(t, view.Notify)
	assert.Equal(t, map[string]int{"productA": 2, "productC": 1}, view.PickedUp)

	require.Eventually(t, func() bool {
		view, ok := storeView(f)
		return ok && view.PickedUp["productA"] == 2
	}, 2*time.Second, 5*time.Millisecond)

	sView, _ := storeView(f)
	assert.Empty(t, sView.Orders)
	assert.Equal(t, map[string]int{"productA": 2, "productC": 1}, sView.PickedUp)

	// The order's history lane carries the full walk.
	log := f.History(orderAddr, ports.StatusHistoryLane)
	require.Len(t, log, 4)
	assert.Equal(t, "orderPlaced", log[0].Value)
	assert.Equal(t, "orderProcessed", log[1].Value)
	assert.Equal(t, "readyForPickup", log[2].Value)
	assert.Equal(t, "pickupCompleted", log[3].Value)
}

// Two customers with interleaved orders: the notify flag is per customer and
// the store sees the union.
func TestNotifyFlagIsPerCustomer(t *testing.T) {
	f := newRunningFabric(t)

	customerA, err := kernel.NewCustomerAddress("CustomerA")
	require.NoError(t, err)
	customerB, err := kernel.NewCustomerAddress("CustomerB")
	require.NoError(t, err)

	orderA := kernel.NewOrderAddress()
	orderB := kernel.NewOrderAddress()
	f.Send(customerA, mustPlaceCommand(t, map[string]int{"productA": 1}).WithOrder(orderA))
	f.Send(customerB, mustPlaceCommand(t, map[string]int{"productB": 2}).WithOrder(orderB))

	// Wait for both placements to land before advancing anything.
	require.Eventually(t, func() bool {
		viewA, okA := customerView(f, customerA)
		viewB, okB := customerView(f, customerB)
		return okA && okB &&
			viewA.Orders[order.Placed]["productA"] == 1 &&
			viewB.Orders[order.Placed]["productB"] == 2
	}, 2*time.Second, 5*time.Millisecond)

	// Only customer A's order becomes ready.
	f.Send(orderA, commands.NewUpdateOrderCommand())
	f.Send(orderA, commands.NewUpdateOrderCommand())

	require.Eventually(t, func() bool {
		view, ok := customerView(f, customerA)
		return ok && view.Notify
	}, 2*time.Second, 5*time.Millisecond)

	viewB, ok := customerView(f, customerB)
	require.True(t, ok)
	assert.False(t, viewB.Notify, "customer B has nothing ready")

	require.Eventually(t, func() bool {
		view, ok := storeView(f)
		return ok &&
			view.Orders[order.ReadyForPickup]["productA"] == 1 &&
			view.Orders[order.Placed]["productB"] == 2
	}, 2*time.Second, 5*time.Millisecond)

	require.Eventually(t, func() bool {
		count, defined := f.GetState(kernel.MainStoreAddress(), ports.CustomersLane)
		return defined && count == 2
	}, 2*time.Second, 5*time.Millisecond)
}

// A second order keeps the flag down until everything is ready.
func TestNotifyWaitsForAllPendingOrders(t *testing.T) {
	f := newRunningFabric(t)

	customer, err := kernel.NewCustomerAddress("Customer0")
	require.NoError(t, err)

	orderA := kernel.NewOrderAddress()
	orderB := kernel.NewOrderAddress()
	f.Send(customer, mustPlaceCommand(t, map[string]int{"productA": 1}).WithOrder(orderA))
	f.Send(customer, mustPlaceCommand(t, map[string]int{"productB": 1}).WithOrder(orderB))

	require.Eventually(t, func() bool {
		view, ok := customerView(f, customer)
		return ok &&
			view.Orders[order.Placed]["productA"] == 1 &&
			view.Orders[order.Placed]["productB"] == 1
	}, 2*time.Second, 5*time.Millisecond)

	// First order fully ready, second still placed: no notification yet.
	f.Send(orderA, commands.NewUpdateOrderCommand())
	f.Send(orderA, commands.NewUpdateOrderCommand())

	require.Eventually(t, func() bool {
		view, ok := customerView(f, customer)
		return ok && view.Orders[order.ReadyForPickup]["productA"] == 1
	}, 2*time.Second, 5*time.Millisecond)

	view, _ := customerView(f, customer)
	assert.False(t, view.Notify, "a pending order must hold the flag down")

	// Second order catches up: now the flag rises.
	f.Send(orderB, commands.NewUpdateOrderCommand())
	f.Send(orderB, commands.NewUpdateOrderCommand())

	require.Eventually(t, func() bool {
		view, ok := customerView(f, customer)
		return ok && view.Notify
	}, 2*time.Second, 5*time.Millisecond)
}
