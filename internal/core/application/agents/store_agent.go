package agents

import (
	"context"
	"log/slog"
	"maps"

	"retail/internal/core/application/usecases/commands"
	"retail/internal/core/domain/model/kernel"
	"retail/internal/core/domain/model/order"
	"retail/internal/core/domain/model/rollup"
	"retail/internal/core/domain/services"
	"retail/internal/core/ports"
)

// StoreAgent is the behavior of the single store entity. It runs two
// independent joins: one over every live order, published as the store-wide
// status roll-up, and one over the joined customers, published as a plain
// count on the customers lane.
//
// Orders join at startup and leave by reaching their terminal status, which
// folds their quantities into the store's cumulative picked-up counters.
// Customers join at startup and normally never leave.
type StoreAgent struct {
	rt     ports.AgentRuntime
	logger *slog.Logger

	orders    *services.Aggregator[order.Snapshot, rollup.StoreView]
	customers *services.Aggregator[rollup.View, int]
	pickedUp  map[string]int
}

// NewStoreAgentFactory returns the factory the substrate uses to materialize
// the store entity.
func NewStoreAgentFactory(logger *slog.Logger) ports.AgentFactory {
	return func(rt ports.AgentRuntime) ports.Agent {
		a := &StoreAgent{
			rt:       rt,
			logger:   logger.With("component", "store-agent", "store", rt.Address().String()),
			pickedUp: make(map[string]int),
		}
		a.orders = services.NewAggregator[order.Snapshot, rollup.StoreView](
			a.computeView,
			func(snap order.Snapshot) bool { return snap.Status.IsTerminal() },
			func(snap order.Snapshot) { rollup.Fold(a.pickedUp, snap.Products) },
		)
		a.customers = services.NewAggregator[rollup.View, int](
			func(snapshots map[kernel.Address]rollup.View) int { return len(snapshots) },
			nil, nil,
		)
		return a
	}
}

// DidStart publishes the initial empty roll-up and customer count.
func (a *StoreAgent) DidStart(_ context.Context) {
	a.rt.SetState(ports.StatusLane, a.orders.Compute())
	a.rt.SetState(ports.CustomersLane, a.customers.Compute())
}

// HandleCommand processes membership changes. The member's address kind
// decides which join it belongs to. Unknown command types are ignored.
func (a *StoreAgent) HandleCommand(_ context.Context, command any) {
	switch cmd := command.(type) {
	case commands.AddMemberCommand:
		a.addMember(cmd)
	case commands.RemoveMemberCommand:
		a.removeMember(cmd)
	default:
		a.logger.Warn("ignoring unknown command", "type", typeName(command))
	}
}

// HandleNotification routes one change notification to the join matching the
// source's kind.
func (a *StoreAgent) HandleNotification(_ context.Context, note ports.Notification) {
	switch note.Source.Kind() {
	case kernel.KindOrder:
		a.applyOrder(note)
	case kernel.KindCustomer:
		a.applyCustomer(note)
	default:
		a.logger.Warn("ignoring notification from unexpected source", "source", note.Source.String())
	}
}

func (a *StoreAgent) addMember(cmd commands.AddMemberCommand) {
	if err := cmd.Validate(); err != nil {
		a.logger.Warn("dropping malformed membership change", "error", err)
		return
	}

	member := cmd.Member()
	switch member.Kind() {
	case kernel.KindOrder:
		if !a.orders.Contains(member) {
			sub := a.rt.Subscribe(member, ports.StatusLane)
			a.orders.Add(member, uint64(sub))
		}
	case kernel.KindCustomer:
		if !a.customers.Contains(member) {
			sub := a.rt.Subscribe(member, ports.StatusLane)
			a.customers.Add(member, uint64(sub))
		}
	default:
		a.logger.Warn("ignoring member of unexpected kind", "member", member.String())
	}
}

func (a *StoreAgent) removeMember(cmd commands.RemoveMemberCommand) {
	if err := cmd.Validate(); err != nil {
		a.logger.Warn("dropping malformed membership change", "error", err)
		return
	}

	member := cmd.Member()
	switch member.Kind() {
	case kernel.KindOrder:
		if handle, ok := a.orders.Remove(member); ok {
			a.rt.Unsubscribe(ports.SubscriptionID(handle))
			a.rt.SetState(ports.StatusLane, a.orders.Compute())
		}
	case kernel.KindCustomer:
		if handle, ok := a.customers.Remove(member); ok {
			a.rt.Unsubscribe(ports.SubscriptionID(handle))
			a.rt.SetState(ports.CustomersLane, a.customers.Compute())
		}
	}
}

func (a *StoreAgent) applyOrder(note ports.Notification) {
	var snap *order.Snapshot
	if note.Value != nil {
		s, ok := note.Value.(order.Snapshot)
		if !ok {
			a.logger.Warn("ignoring notification with unexpected payload", "type", typeName(note.Value))
			return
		}
		snap = &s
	}

	res := a.orders.Apply(note.Source, snap)
	if res.Evicted {
		a.rt.Unsubscribe(ports.SubscriptionID(res.Handle))
	}
	if res.Applied {
		a.rt.SetState(ports.StatusLane, res.View)
	}
}

func (a *StoreAgent) applyCustomer(note ports.Notification) {
	var view *rollup.View
	if note.Value != nil {
		v, ok := note.Value.(rollup.View)
		if !ok {
			a.logger.Warn("ignoring notification with unexpected payload", "type", typeName(note.Value))
			return
		}
		view = &v
	}

	res := a.customers.Apply(note.Source, view)
	if res.Evicted {
		a.rt.Unsubscribe(ports.SubscriptionID(res.Handle))
	}
	if res.Applied {
		a.rt.SetState(ports.CustomersLane, res.View)
	}
}

func (a *StoreAgent) computeView(snapshots map[kernel.Address]order.Snapshot) rollup.StoreView {
	return rollup.StoreView{
		Orders:   rollup.Grouped(snapshots),
		PickedUp: maps.Clone(a.pickedUp),
	}
}
