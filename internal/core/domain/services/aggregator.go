package services

import (
	"retail/internal/core/domain/model/kernel"
)

// RollupFunc turns the current member snapshots into the view the owner
// publishes. It must be a pure function of its input.
type RollupFunc[S, V any] func(snapshots map[kernel.Address]S) V

// EvictFunc decides whether a freshly delivered snapshot is terminal, i.e.
// whether its member should leave the aggregation.
type EvictFunc[S any] func(snapshot S) bool

// FoldFunc absorbs an evicted member's terminal snapshot into the owner's
// running cumulative counters. It is invoked exactly once per eviction, at
// eviction time.
type FoldFunc[S any] func(snapshot S)

// Aggregator is the generic dynamic-membership join engine shared by the
// customer and store entities. It tracks which entities the owner is
// subscribed to, keeps each member's last-known snapshot, evicts members
// whose source disappears or reaches a terminal state, and recomputes the
// owner's roll-up over the surviving member set.
//
// The aggregator holds no substrate resources itself: subscription handles
// pass through it as opaque values so the owning agent can close the
// underlying downlink when a member is evicted. It is owned exclusively by
// one entity's sequential executor and is not safe for concurrent use.
type Aggregator[S, V any] struct {
	members map[kernel.Address]*member[S]
	compute RollupFunc[S, V]
	evict   EvictFunc[S]
	fold    FoldFunc[S]
}

type member[S any] struct {
	handle   uint64
	snapshot *S // nil until the first notification arrives
}

// ApplyResult describes the outcome of delivering one change notification.
type ApplyResult[V any] struct {
	// Applied is true when the notification targeted a current member and
	// the roll-up was recomputed. Notifications for unknown members — for
	// example in-flight deliveries racing a removal — are ignored and leave
	// Applied false.
	Applied bool

	// Evicted is true when the member left the aggregation; Handle then
	// carries its subscription handle for the caller to close.
	Evicted bool
	Handle  uint64

	// View is the recomputed roll-up over the post-eviction member set.
	// Only meaningful when Applied is true.
	View V
}

// NewAggregator creates a join engine with the given roll-up function,
// eviction predicate and cumulative fold. evict and fold may be nil for
// aggregations without a terminal state.
func NewAggregator[S, V any](compute RollupFunc[S, V], evict EvictFunc[S], fold FoldFunc[S]) *Aggregator[S, V] {
	return &Aggregator[S, V]{
		members: make(map[kernel.Address]*member[S]),
		compute: compute,
		evict:   evict,
		fold:    fold,
	}
}

// Contains reports whether the given entity is a current member.
func (a *Aggregator[S, V]) Contains(addr kernel.Address) bool {
	_, ok := a.members[addr]
	return ok
}

// Size returns the number of current members.
func (a *Aggregator[S, V]) Size() int {
	return len(a.members)
}

// Add registers a new member with its subscription handle. Returns false if
// the entity is already a member; adding is idempotent and a duplicate add
// changes nothing. The caller opens the subscription before adding, so at
// most one subscription exists per (owner, member) pair.
func (a *Aggregator[S, V]) Add(addr kernel.Address, handle uint64) bool {
	if a.Contains(addr) {
		return false
	}
	a.members[addr] = &member[S]{handle: handle}
	return true
}

// Remove drops a member if present, returning its subscription handle so the
// caller can close the downlink. Removing a non-member is a no-op. No
// cumulative fold happens on explicit removal.
func (a *Aggregator[S, V]) Remove(addr kernel.Address) (uint64, bool) {
	m, ok := a.members[addr]
	if !ok {
		return 0, false
	}
	delete(a.members, addr)
	return m.handle, true
}

// Apply delivers a change notification for one member. A nil snapshot means
// the source's state became undefined: the member is evicted without a fold.
// A defined snapshot is stored; if the eviction predicate holds for it, the
// snapshot is folded into the cumulative counters exactly once and the
// member is evicted. In every applied case the roll-up is recomputed over
// the post-eviction member set.
//
// Notifications for entities that are not current members are ignored. This
// is what makes removal safe against in-flight notifications: once a member
// is gone, a late delivery cannot re-add it or perturb the roll-up.
func (a *Aggregator[S, V]) Apply(addr kernel.Address, snapshot *S) ApplyResult[V] {
	m, ok := a.members[addr]
	if !ok {
		return ApplyResult[V]{}
	}

	if snapshot == nil {
		delete(a.members, addr)
		return ApplyResult[V]{Applied: true, Evicted: true, Handle: m.handle, View: a.Compute()}
	}

	m.snapshot = snapshot
	if a.evict != nil && a.evict(*snapshot) {
		if a.fold != nil {
			a.fold(*snapshot)
		}
		delete(a.members, addr)
		return ApplyResult[V]{Applied: true, Evicted: true, Handle: m.handle, View: a.Compute()}
	}

	return ApplyResult[V]{Applied: true, View: a.Compute()}
}

// Compute recomputes the roll-up from a point-in-time copy of the current
// members' last-known snapshots. Members that have not delivered a snapshot
// yet contribute nothing.
func (a *Aggregator[S, V]) Compute() V {
	snapshots := make(map[kernel.Address]S, len(a.members))
	for addr, m := range a.members {
		if m.snapshot != nil {
			snapshots[addr] = *m.snapshot
		}
	}
	return a.compute(snapshots)
}
