// Package agents implements the behaviors of the three entity kinds: orders
// walking their lifecycle, customers rolling up their own orders, and the
// single store rolling up everything. Each behavior runs on its entity's
// sequential executor, so none of them locks.
package agents

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"retail/internal/core/application/usecases/commands"
	"retail/internal/core/domain/model/kernel"
	"retail/internal/core/domain/model/order"
	"retail/internal/core/ports"
)

const (
	selfProgressInterval    = time.Second
	selfProgressProbability = 0.1
)

// OrderOption configures order entity behavior.
type OrderOption func(*OrderAgent)

// WithStrictOrderAdvance rejects explicit status updates that would move an
// order backward in its lifecycle.
func WithStrictOrderAdvance() OrderOption {
	return func(a *OrderAgent) {
		a.strict = true
	}
}

// WithOrderClock overrides the wall clock, for deterministic tests.
func WithOrderClock(now func() int64) OrderOption {
	return func(a *OrderAgent) {
		a.now = now
	}
}

// WithProgressChance overrides the self-progression coin flip, for
// deterministic tests.
func WithProgressChance(chance func() float64) OrderOption {
	return func(a *OrderAgent) {
		a.chance = chance
	}
}

// OrderAgent is the behavior of one order entity. It owns the order's
// lifecycle record, publishes a fresh snapshot on every applied transition,
// and appends each transition to the status history lane.
//
// On placement the order joins the store-wide aggregation and, the owning
// customer now being known, that customer's aggregation too.
type OrderAgent struct {
	rt     ports.AgentRuntime
	logger *slog.Logger
	record *order.Record

	strict       bool
	selfProgress bool
	now          func() int64
	chance       func() float64
}

// NewOrderAgentFactory returns the factory the substrate uses to materialize
// order entities.
func NewOrderAgentFactory(logger *slog.Logger, opts ...OrderOption) ports.AgentFactory {
	return func(rt ports.AgentRuntime) ports.Agent {
		a := &OrderAgent{
			rt:     rt,
			logger: logger.With("component", "order-agent", "order", rt.Address().String()),
			now:    func() int64 { return time.Now().UnixMilli() },
			chance: rand.Float64,
		}
		for _, opt := range opts {
			opt(a)
		}
		return a
	}
}

// DidStart creates the lifecycle record. An entity materialized by a stray
// command for an unknown order stays empty and joins nothing.
func (a *OrderAgent) DidStart(_ context.Context) {
	var recordOpts []order.Option
	if a.strict {
		recordOpts = append(recordOpts, order.WithStrictAdvance())
	}

	record, err := order.NewRecord(a.rt.Address(), recordOpts...)
	if err != nil {
		a.logger.Error("failed to create order record", "error", err)
		return
	}
	a.record = record
}

// HandleCommand processes placement and lifecycle-update commands. Unknown
// command types are ignored.
func (a *OrderAgent) HandleCommand(_ context.Context, command any) {
	if a.record == nil {
		return
	}

	switch cmd := command.(type) {
	case commands.PlaceOrderCommand:
		a.place(cmd)
	case commands.UpdateOrderCommand:
		a.update(cmd)
	default:
		a.logger.Warn("ignoring unknown command", "type", typeName(command))
	}
}

// HandleNotification is unused: order entities subscribe to nothing.
func (a *OrderAgent) HandleNotification(_ context.Context, _ ports.Notification) {}

func (a *OrderAgent) place(cmd commands.PlaceOrderCommand) {
	if err := cmd.Validate(); err != nil {
		a.logger.Warn("dropping malformed placement", "error", err)
		return
	}

	applied, err := a.record.Place(cmd.Products(), cmd.Customer(), a.now())
	if err != nil {
		a.logger.Warn("rejecting placement", "error", err)
		return
	}
	if !applied {
		return
	}

	a.publish()

	// Join the owning customer's and the store-wide aggregations.
	if join, err := commands.NewAddMemberCommand(a.rt.Address()); err == nil {
		a.rt.Send(a.record.Customer(), join)
		a.rt.Send(kernel.MainStoreAddress(), join)
	}

	if cmd.SelfProgress() && !a.selfProgress {
		a.selfProgress = true
		a.rt.ScheduleAfter(selfProgressInterval, a.progressTick)
	}
}

func (a *OrderAgent) update(cmd commands.UpdateOrderCommand) {
	if err := cmd.Validate(); err != nil {
		a.logger.Warn("dropping malformed update", "error", err)
		return
	}

	applied, err := a.record.Advance(cmd.Explicit(), a.now())
	if err != nil {
		a.logger.Warn("rejecting update", "error", err)
		return
	}
	if applied {
		a.publish()
	}
}

// progressTick is the self-progression timer: each second the order advances
// one step with a small probability, until it reaches its terminal status.
func (a *OrderAgent) progressTick(_ context.Context) {
	if a.record.Status().IsTerminal() {
		a.selfProgress = false
		return
	}

	if a.chance() < selfProgressProbability {
		if applied, err := a.record.Advance(order.Unknown, a.now()); err == nil && applied {
			a.publish()
		}
	}

	a.rt.ScheduleAfter(selfProgressInterval, a.progressTick)
}

// publish pushes the current snapshot to the status lane and appends the
// transition to the history lane.
func (a *OrderAgent) publish() {
	snap := a.record.Snapshot()
	a.rt.SetState(ports.StatusLane, snap)
	a.rt.AppendHistory(ports.StatusHistoryLane, snap.Timestamp, snap.Status.String())
	a.logger.Debug("order transitioned", "status", snap.Status.String())
}
