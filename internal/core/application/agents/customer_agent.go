package agents

import (
	"context"
	"fmt"
	"log/slog"
	"maps"

	"retail/internal/core/application/usecases/commands"
	"retail/internal/core/domain/model/kernel"
	"retail/internal/core/domain/model/order"
	"retail/internal/core/domain/model/rollup"
	"retail/internal/core/domain/services"
	"retail/internal/core/ports"
)

// CustomerAgent is the behavior of one customer entity. It maintains the
// dynamic join over the customer's live orders and publishes the roll-up
// view — per-status product quantities, the notify flag and the cumulative
// picked-up counters — on its status lane.
//
// Orders join by sending AddMemberCommand when they are placed and leave the
// aggregation on their own, by reaching the terminal status: the terminal
// snapshot is folded into the picked-up counters exactly once and the member
// is evicted.
type CustomerAgent struct {
	rt     ports.AgentRuntime
	logger *slog.Logger

	name     string
	orders   *services.Aggregator[order.Snapshot, rollup.View]
	pickedUp map[string]int
}

// NewCustomerAgentFactory returns the factory the substrate uses to
// materialize customer entities.
func NewCustomerAgentFactory(logger *slog.Logger) ports.AgentFactory {
	return func(rt ports.AgentRuntime) ports.Agent {
		a := &CustomerAgent{
			rt:       rt,
			logger:   logger.With("component", "customer-agent", "customer", rt.Address().String()),
			pickedUp: make(map[string]int),
		}
		a.orders = services.NewAggregator[order.Snapshot, rollup.View](
			a.computeView,
			func(snap order.Snapshot) bool { return snap.Status.IsTerminal() },
			func(snap order.Snapshot) { rollup.Fold(a.pickedUp, snap.Products) },
		)
		return a
	}
}

// DidStart publishes the initial empty view and joins the store's customer
// aggregation.
func (a *CustomerAgent) DidStart(_ context.Context) {
	a.rt.SetState(ports.StatusLane, a.orders.Compute())

	if join, err := commands.NewAddMemberCommand(a.rt.Address()); err == nil {
		a.rt.Send(kernel.MainStoreAddress(), join)
	}
}

// HandleCommand processes initialization, placement routing and membership
// changes. Unknown command types are ignored.
func (a *CustomerAgent) HandleCommand(_ context.Context, command any) {
	switch cmd := command.(type) {
	case commands.InitializeCommand:
		a.name = cmd.Name
		a.logger.Debug("customer initialized", "name", a.name)
	case commands.PlaceOrderCommand:
		a.routePlacement(cmd)
	case commands.AddMemberCommand:
		a.addOrder(cmd)
	case commands.RemoveMemberCommand:
		a.removeOrder(cmd)
	default:
		a.logger.Warn("ignoring unknown command", "type", typeName(command))
	}
}

// HandleNotification folds one order status change into the aggregation.
// A nil value means the order's published state is gone; it leaves the join
// without touching the picked-up counters. Late notifications for orders that
// already left are absorbed without effect.
func (a *CustomerAgent) HandleNotification(_ context.Context, note ports.Notification) {
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

// routePlacement forwards a placement to the order entity, generating an
// order address when the caller did not choose one and stamping in this
// customer as the owner. The order joins the aggregation on its own, once
// placed.
func (a *CustomerAgent) routePlacement(cmd commands.PlaceOrderCommand) {
	if err := cmd.Validate(); err != nil {
		a.logger.Warn("dropping malformed placement", "error", err)
		return
	}

	target := cmd.Order()
	if target.IsZero() {
		target = kernel.NewOrderAddress()
	}

	a.rt.Send(target, cmd.WithOrder(target).WithCustomer(a.rt.Address()))
}

func (a *CustomerAgent) addOrder(cmd commands.AddMemberCommand) {
	if err := cmd.Validate(); err != nil {
		a.logger.Warn("dropping malformed membership change", "error", err)
		return
	}
	member := cmd.Member()
	if member.Kind() != kernel.KindOrder {
		a.logger.Warn("ignoring non-order member", "member", member.String())
		return
	}
	if a.orders.Contains(member) {
		return
	}

	// Subscribe first so the aggregator holds a closeable handle from the
	// moment the member exists.
	sub := a.rt.Subscribe(member, ports.StatusLane)
	a.orders.Add(member, uint64(sub))
}

func (a *CustomerAgent) removeOrder(cmd commands.RemoveMemberCommand) {
	if err := cmd.Validate(); err != nil {
		a.logger.Warn("dropping malformed membership change", "error", err)
		return
	}

	handle, ok := a.orders.Remove(cmd.Member())
	if !ok {
		return
	}
	a.rt.Unsubscribe(ports.SubscriptionID(handle))
	a.rt.SetState(ports.StatusLane, a.orders.Compute())
}

// computeView derives the published view from the surviving member
// snapshots. The picked-up counters are copied so the published value stays
// immutable as later evictions fold into them.
func (a *CustomerAgent) computeView(snapshots map[kernel.Address]order.Snapshot) rollup.View {
	grouped := rollup.Grouped(snapshots)
	return rollup.View{
		Orders:   grouped,
		Notify:   rollup.NotifyFlag(grouped),
		PickedUp: maps.Clone(a.pickedUp),
	}
}

func typeName(v any) string {
	return fmt.Sprintf("%T", v)
}
