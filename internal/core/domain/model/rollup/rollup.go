// Package rollup implements the pure status roll-up algorithm: grouping the
// product quantities of a set of subscribed order snapshots by status,
// deriving the customer notify flag, and folding terminal quantities into
// cumulative picked-up counters.
package rollup

import (
	"maps"

	"retail/internal/core/domain/model/kernel"
	"retail/internal/core/domain/model/order"
)

// View is the aggregate a customer entity publishes on its "status" lane.
// It is a pure function of the current non-evicted member snapshots, except
// for PickedUp, which is a running counter folded forward at eviction time.
type View struct {
	Orders   map[order.Status]map[string]int `json:"orders"`
	Notify   bool                            `json:"notify"`
	PickedUp map[string]int                  `json:"pickedUpOrders"`
}

// Clone returns a deep copy of the view.
func (v View) Clone() View {
	v.Orders = cloneGrouped(v.Orders)
	v.PickedUp = maps.Clone(v.PickedUp)
	return v
}

// StoreView is the aggregate the store entity publishes on its "status"
// lane. It carries no notify flag.
type StoreView struct {
	Orders   map[order.Status]map[string]int `json:"orders"`
	PickedUp map[string]int                  `json:"pickedUpOrders"`
}

// Clone returns a deep copy of the view.
func (v StoreView) Clone() StoreView {
	v.Orders = cloneGrouped(v.Orders)
	v.PickedUp = maps.Clone(v.PickedUp)
	return v
}

// Grouped computes the status roll-up over the given member snapshots:
// for each status, the per-product quantities summed across all orders
// currently in that status. Snapshots with an undefined status are "not yet
// reporting" and contribute to no group.
func Grouped(snapshots map[kernel.Address]order.Snapshot) map[order.Status]map[string]int {
	grouped := make(map[order.Status]map[string]int)
	for _, snap := range snapshots {
		if !snap.IsReporting() {
			continue
		}
		group := grouped[snap.Status]
		if group == nil {
			group = make(map[string]int)
			grouped[snap.Status] = group
		}
		for code, qty := range snap.Products {
			group[code] += qty
		}
	}
	return grouped
}

// NotifyFlag derives the customer notification flag from a grouped roll-up:
// true iff nothing is pending (no Placed or Processed quantity) and something
// is ready for pickup. The flag holds for as long as the roll-up stays in
// that region; it is the subscriber's published state, not an edge-triggered
// event, so recomputing it from the same inputs never "re-fires".
func NotifyFlag(grouped map[order.Status]map[string]int) bool {
	pending := groupTotal(grouped[order.Placed]) + groupTotal(grouped[order.Processed])
	ready := groupTotal(grouped[order.ReadyForPickup])
	return pending == 0 && ready > 0
}

// Fold adds the given product quantities into the cumulative counters.
// Counters only ever grow; eviction-time folding is the single point where a
// completed order's quantities enter them.
func Fold(cumulative, products map[string]int) {
	for code, qty := range products {
		cumulative[code] += qty
	}
}

func groupTotal(group map[string]int) int {
	total := 0
	for _, qty := range group {
		total += qty
	}
	return total
}

func cloneGrouped(grouped map[order.Status]map[string]int) map[order.Status]map[string]int {
	if grouped == nil {
		return nil
	}
	out := make(map[order.Status]map[string]int, len(grouped))
	for status, group := range grouped {
		out[status] = maps.Clone(group)
	}
	return out
}
