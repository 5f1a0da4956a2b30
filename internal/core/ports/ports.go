// Package ports defines the contracts between the entity behaviors and the
// external substrate that hosts them: state lanes, subscriptions, command
// delivery and timers. The substrate guarantees that everything delivered to
// one entity — commands, change notifications, timer callbacks — is processed
// one at a time, in arrival order, by that entity's own executor.
package ports

import (
	"context"
	"time"

	"retail/internal/core/domain/model/kernel"
)

// Lane names published by the core entities.
const (
	// StatusLane carries an order's Snapshot, or an aggregator's roll-up
	// view, depending on the entity kind.
	StatusLane = "status"

	// StatusHistoryLane is the append-only timestamp/status log published by
	// order entities.
	StatusHistoryLane = "statusHistory"

	// CustomersLane carries the store's count of joined customers.
	CustomersLane = "customers"
)

// SubscriptionID is the opaque handle of an open change-notification
// subscription.
type SubscriptionID uint64

// Notification is a change notification delivered to a subscriber. A nil
// Value means the source's published state became undefined or the source is
// gone; subscribers treat that as loss of the member, not as an error.
// Using a single message type with a nil snapshot for removal keeps the
// subscriber to one inbox and one handler.
type Notification struct {
	Source kernel.Address
	Lane   string
	Value  any
}

// HistoryRecord is one entry of a map lane, as read back by the query side.
type HistoryRecord struct {
	Timestamp int64  `json:"timestamp"`
	Value     string `json:"value"`
}

// Agent is the behavior of one addressable entity. All three methods are
// invoked only from the entity's own executor.
type Agent interface {
	// DidStart runs once, before any command or notification is delivered.
	DidStart(ctx context.Context)

	// HandleCommand processes one inbound command. Commands are the typed
	// values of the commands package; unknown types are ignored.
	HandleCommand(ctx context.Context, command any)

	// HandleNotification processes one change notification from a
	// subscription this entity opened.
	HandleNotification(ctx context.Context, note Notification)
}

// AgentRuntime is the per-entity facade onto the substrate. It must only be
// used from within the owning entity's executor; handing it to another
// goroutine breaks the serialization guarantee.
type AgentRuntime interface {
	// Address returns the entity's own address.
	Address() kernel.Address

	// SetState replaces the value published on one of the entity's lanes and
	// fans the change out to subscribers. Published values must be treated
	// as immutable by everyone; publish fresh copies.
	SetState(lane string, value any)

	// GetState reads back the entity's own published lane value.
	GetState(lane string) (any, bool)

	// AppendHistory appends one entry to a map lane.
	AppendHistory(lane string, timestamp int64, value string)

	// Subscribe opens a change-notification subscription on another entity's
	// lane. If the target lane already has a defined value it is delivered
	// immediately as the first notification.
	Subscribe(target kernel.Address, lane string) SubscriptionID

	// Unsubscribe closes a subscription opened by this entity. In-flight
	// notifications may still be delivered afterwards and must be absorbed
	// by the subscriber.
	Unsubscribe(id SubscriptionID)

	// Send delivers a command to another entity, fire and forget. The
	// target entity is created on demand. Delivery is FIFO per
	// (sender, target) pair; there is no ordering across targets.
	Send(target kernel.Address, command any)

	// ScheduleAfter runs fn on this entity's executor after the given
	// duration. One-shot; periodic behavior reschedules from the callback.
	ScheduleAfter(d time.Duration, fn func(ctx context.Context))
}

// AgentFactory creates the behavior for a newly materialized entity.
type AgentFactory func(rt AgentRuntime) Agent

// CommandSender is the outside-in command surface of the substrate, used by
// the HTTP facade and the workload simulator.
type CommandSender interface {
	Send(target kernel.Address, command any)
}

// StateReader is the outside-in read surface of the substrate, used by the
// query handlers.
type StateReader interface {
	// GetState reads an entity's published lane value. The second return is
	// false when the entity or lane is undefined.
	GetState(target kernel.Address, lane string) (any, bool)

	// History reads a map lane's entries, oldest first.
	History(target kernel.Address, lane string) []HistoryRecord
}
