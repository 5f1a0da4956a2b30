package services_test

import (
	"testing"

	"retail/internal/core/domain/model/kernel"
	"retail/internal/core/domain/model/order"
	"retail/internal/core/domain/model/rollup"
	"retail/internal/core/domain/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// orderAggregator builds the customer-style aggregation used across these
// tests: roll up order snapshots, evict at PickedUp, fold into cumulative.
func orderAggregator(cumulative map[string]int) *services.Aggregator[order.Snapshot, rollup.View] {
	return services.NewAggregator(
		func(snapshots map[kernel.Address]order.Snapshot) rollup.View {
			grouped := rollup.Grouped(snapshots)
			view := rollup.View{Orders: grouped, Notify: rollup.NotifyFlag(grouped)}
			view.PickedUp = map[string]int{}
			rollup.Fold(view.PickedUp, cumulative)
			return view
		},
		func(s order.Snapshot) bool { return s.Status.IsTerminal() },
		func(s order.Snapshot) { rollup.Fold(cumulative, s.Products) },
	)
}

func placedSnap(products map[string]int) *order.Snapshot {
	return &order.Snapshot{Status: order.Placed, Products: products}
}

func TestAggregator_Add(t *testing.T) {
	t.Run("add_is_idempotent", func(t *testing.T) {
		agg := orderAggregator(map[string]int{})
		addr := kernel.NewOrderAddress()

		assert.True(t, agg.Add(addr, 1))
		assert.False(t, agg.Add(addr, 2))
		assert.Equal(t, 1, agg.Size())

		// The original handle survives the duplicate add.
		handle, ok := agg.Remove(addr)
		require.True(t, ok)
		assert.Equal(t, uint64(1), handle)
	})

	t.Run("member_without_snapshot_contributes_nothing", func(t *testing.T) {
		agg := orderAggregator(map[string]int{})
		agg.Add(kernel.NewOrderAddress(), 1)

		view := agg.Compute()

		assert.Empty(t, view.Orders)
		assert.False(t, view.Notify)
	})
}

func TestAggregator_Remove(t *testing.T) {
	t.Run("remove_returns_handle", func(t *testing.T) {
		agg := orderAggregator(map[string]int{})
		addr := kernel.NewOrderAddress()
		agg.Add(addr, 7)

		handle, ok := agg.Remove(addr)

		assert.True(t, ok)
		assert.Equal(t, uint64(7), handle)
		assert.False(t, agg.Contains(addr))
	})

	t.Run("removing_a_non_member_is_a_noop", func(t *testing.T) {
		agg := orderAggregator(map[string]int{})

		_, ok := agg.Remove(kernel.NewOrderAddress())

		assert.False(t, ok)
	})

	t.Run("explicit_removal_does_not_fold", func(t *testing.T) {
		cumulative := map[string]int{}
		agg := orderAggregator(cumulative)
		addr := kernel.NewOrderAddress()
		agg.Add(addr, 1)
		agg.Apply(addr, placedSnap(map[string]int{"productA": 2}))

		agg.Remove(addr)

		assert.Empty(t, cumulative)
	})
}

func TestAggregator_Apply(t *testing.T) {
	t.Run("rollup_reflects_current_member_set", func(t *testing.T) {
		agg := orderAggregator(map[string]int{})
		a, b := kernel.NewOrderAddress(), kernel.NewOrderAddress()
		agg.Add(a, 1)
		agg.Add(b, 2)

		agg.Apply(a, placedSnap(map[string]int{"productA": 2}))
		res := agg.Apply(b, placedSnap(map[string]int{"productA": 3}))

		require.True(t, res.Applied)
		assert.Equal(t, map[string]int{"productA": 5}, res.View.Orders[order.Placed])

		// Dropping a member recomputes from the survivors only; the stale
		// contribution of the removed member never lingers.
		agg.Remove(a)
		res = agg.Apply(b, placedSnap(map[string]int{"productA": 3}))
		require.True(t, res.Applied)
		assert.Equal(t, map[string]int{"productA": 3}, res.View.Orders[order.Placed])
	})

	t.Run("undefined_snapshot_evicts_without_fold", func(t *testing.T) {
		cumulative := map[string]int{}
		agg := orderAggregator(cumulative)
		addr := kernel.NewOrderAddress()
		agg.Add(addr, 9)
		agg.Apply(addr, placedSnap(map[string]int{"productA": 2}))

		res := agg.Apply(addr, nil)

		require.True(t, res.Applied)
		assert.True(t, res.Evicted)
		assert.Equal(t, uint64(9), res.Handle)
		assert.False(t, agg.Contains(addr))
		assert.Empty(t, cumulative)
		assert.Empty(t, res.View.Orders)
	})

	t.Run("terminal_snapshot_folds_once_and_evicts", func(t *testing.T) {
		cumulative := map[string]int{}
		agg := orderAggregator(cumulative)
		addr := kernel.NewOrderAddress()
		agg.Add(addr, 3)

		terminal := &order.Snapshot{Status: order.PickedUp, Products: map[string]int{"productA": 2}}
		res := agg.Apply(addr, terminal)

		require.True(t, res.Applied)
		assert.True(t, res.Evicted)
		assert.Equal(t, uint64(3), res.Handle)
		assert.Equal(t, map[string]int{"productA": 2}, cumulative)

		// Repeated delivery of the same terminal snapshot must not
		// double-count: the member is gone, so the delivery is ignored.
		res = agg.Apply(addr, terminal)
		assert.False(t, res.Applied)
		assert.Equal(t, map[string]int{"productA": 2}, cumulative)
	})

	t.Run("notification_for_unknown_member_is_ignored", func(t *testing.T) {
		agg := orderAggregator(map[string]int{})

		res := agg.Apply(kernel.NewOrderAddress(), placedSnap(map[string]int{"productA": 1}))

		assert.False(t, res.Applied)
		assert.False(t, res.Evicted)
	})

	t.Run("late_notification_after_removal_does_not_readd", func(t *testing.T) {
		agg := orderAggregator(map[string]int{})
		addr := kernel.NewOrderAddress()
		agg.Add(addr, 1)
		agg.Remove(addr)

		res := agg.Apply(addr, placedSnap(map[string]int{"productA": 1}))

		assert.False(t, res.Applied)
		assert.False(t, agg.Contains(addr))
		assert.Equal(t, 0, agg.Size())
	})

	t.Run("cumulative_counters_are_monotone_across_evictions", func(t *testing.T) {
		cumulative := map[string]int{}
		agg := orderAggregator(cumulative)

		previous := 0
		for i := 0; i < 4; i++ {
			addr := kernel.NewOrderAddress()
			agg.Add(addr, uint64(i))
			agg.Apply(addr, &order.Snapshot{Status: order.PickedUp, Products: map[string]int{"productA": 1}})

			assert.Greater(t, cumulative["productA"], previous)
			previous = cumulative["productA"]
		}
		assert.Equal(t, 4, cumulative["productA"])
	})
}

func TestAggregator_InterleavedMembershipAndDeliveries(t *testing.T) {
	// Exercise a mixed sequence of adds, removals and deliveries and check
	// the final roll-up equals the algorithm applied to the surviving
	// snapshots alone.
	cumulative := map[string]int{}
	agg := orderAggregator(cumulative)

	a, b, c := kernel.NewOrderAddress(), kernel.NewOrderAddress(), kernel.NewOrderAddress()
	agg.Add(a, 1)
	agg.Add(b, 2)
	agg.Apply(a, placedSnap(map[string]int{"productA": 2}))
	agg.Add(c, 3)
	agg.Apply(b, &order.Snapshot{Status: order.Processed, Products: map[string]int{"productB": 1}})
	agg.Apply(c, placedSnap(map[string]int{"productA": 1}))
	agg.Remove(b)
	agg.Apply(b, &order.Snapshot{Status: order.ReadyForPickup, Products: map[string]int{"productB": 1}}) // late
	res := agg.Apply(a, &order.Snapshot{Status: order.PickedUp, Products: map[string]int{"productA": 2}})

	require.True(t, res.Applied)
	expected := rollup.Grouped(map[kernel.Address]order.Snapshot{
		c: {Status: order.Placed, Products: map[string]int{"productA": 1}},
	})
	assert.Equal(t, expected, res.View.Orders)
	assert.Equal(t, map[string]int{"productA": 2}, cumulative)
	assert.Equal(t, 1, agg.Size())
}

func TestAggregator_WithoutEvictionPredicate(t *testing.T) {
	// The store's customer membership uses the engine with no terminal
	// state: members only leave on explicit removal or undefined snapshots.
	agg := services.NewAggregator[rollup.View, int](
		func(snapshots map[kernel.Address]rollup.View) int { return len(snapshots) },
		nil,
		nil,
	)

	addr, err := kernel.NewCustomerAddress("Customer0")
	require.NoError(t, err)
	agg.Add(addr, 1)

	res := agg.Apply(addr, &rollup.View{Notify: true})
	require.True(t, res.Applied)
	assert.False(t, res.Evicted)
	assert.Equal(t, 1, res.View)

	res = agg.Apply(addr, nil)
	require.True(t, res.Applied)
	assert.True(t, res.Evicted)
	assert.Equal(t, 0, res.View)
}
